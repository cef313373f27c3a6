package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	reportDomain "github.com/davicafu/hexaprojector/internal/salesreport/domain"
	sharedDB "github.com/davicafu/hexaprojector/internal/shared/infra/platform/db"
)

// ReportRepoSQL lee los buckets del informe de ventas que escribe sqlstore.
type ReportRepoSQL struct {
	db      *sql.DB
	dialect sharedDB.Dialect
}

var _ reportDomain.ReportReadRepository = (*ReportRepoSQL)(nil)

func NewReportRepoSQL(db *sql.DB, dialect sharedDB.Dialect) *ReportRepoSQL {
	return &ReportRepoSQL{db: db, dialect: dialect}
}

// InitReportSchema crea la tabla 'sales_report' si no existe.
// Una fila por (fecha de snapshot, categoría, región).
func InitReportSchema(ctx context.Context, db *sql.DB, dialect sharedDB.Dialect) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS sales_report (
			report_date         TEXT NOT NULL,
			category            TEXT NOT NULL,
			region              TEXT NOT NULL,
			daily_sales         %[1]s NOT NULL DEFAULT 0,
			target_sales        %[1]s NOT NULL DEFAULT 0,
			total_monthly_sales %[1]s NOT NULL DEFAULT 0,
			target_hit_rate     %[1]s NOT NULL DEFAULT 0,
			PRIMARY KEY (report_date, category, region)
		)`, dialect.NumericType()))
	if err != nil {
		return fmt.Errorf("failed to create sales_report table: %w", err)
	}
	return nil
}

func (r *ReportRepoSQL) GetReport(ctx context.Context, date string) (*reportDomain.SalesReport, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(`
		SELECT category, region, daily_sales, target_sales, total_monthly_sales, target_hit_rate
		FROM sales_report WHERE report_date = ? ORDER BY category, region`), date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	report := reportDomain.NewSalesReport(date)
	found := false
	for rows.Next() {
		var (
			category, region string
			s                reportDomain.RegionSales
		)
		if err := rows.Scan(&category, &region, &s.DailySales, &s.TargetSales, &s.TotalMonthlySales, &s.TargetHitRate); err != nil {
			return nil, fmt.Errorf("db scan error: %w", err)
		}
		report.Put(category, region, s)
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, reportDomain.ErrReportNotFound
	}
	return report, nil
}
