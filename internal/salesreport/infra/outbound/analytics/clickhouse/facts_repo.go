package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	reportDomain "github.com/davicafu/hexaprojector/internal/salesreport/domain"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
)

// SalesFactsRepo guarda una fila analítica por línea de pedido y sirve el trend diario.
// ClickHouse no tiene transacciones: se escriben primero las filas y después el
// checkpoint. Las filas se deduplican por (order_id, line_no), así que una reentrega
// tras un fallo entre ambos pasos no duplica ventas.
type SalesFactsRepo struct {
	db  *sql.DB
	log *zap.Logger
}

var (
	_ sharedDomain.ProjectionStore      = (*SalesFactsRepo)(nil)
	_ reportDomain.SalesTrendRepository = (*SalesFactsRepo)(nil)
)

// NewSalesFactsRepo abre la conexión y comprueba que responde.
func NewSalesFactsRepo(addr string, dbName string, log *zap.Logger) (*SalesFactsRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &SalesFactsRepo{db: conn, log: log}, nil
}

func (r *SalesFactsRepo) Close() error { return r.db.Close() }

// InitSchema crea las tablas de hechos y checkpoints si no existen.
func (r *SalesFactsRepo) InitSchema(ctx context.Context) error {
	// Particionada por mes; la versión (position) decide qué fila sobrevive al deduplicar.
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sales_facts (
			order_id   String,
			line_no    UInt32,
			product_id String,
			category   LowCardinality(String),
			region     LowCardinality(String),
			quantity   Int32,
			amount     Decimal(18, 4),
			currency   LowCardinality(String),
			ordered_at DateTime64(3),
			position   UInt64
		) ENGINE = ReplacingMergeTree(position)
		PARTITION BY toYYYYMM(ordered_at)
		ORDER BY (order_id, line_no);
	`)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS checkpoints (
			read_model_name String,
			checkpoint      UInt64
		) ENGINE = ReplacingMergeTree(checkpoint)
		ORDER BY read_model_name;
	`)
	return err
}

// --- Checkpoints ---

// GetCheckpoint lee el máximo: con ReplacingMergeTree un valor menor nunca gana.
func (r *SalesFactsRepo) GetCheckpoint(ctx context.Context, readModel string) (uint64, bool, error) {
	var (
		pos   uint64
		count uint64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT max(checkpoint), count() FROM checkpoints WHERE read_model_name = ?", readModel).Scan(&pos, &count)
	if err != nil {
		return 0, false, classify(err)
	}
	return pos, count > 0, nil
}

func (r *SalesFactsRepo) UpsertCheckpoint(ctx context.Context, cp sharedDomain.Checkpoint) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO checkpoints (read_model_name, checkpoint) VALUES (?, ?)", cp.ReadModel, cp.Position)
	return classify(err)
}

// --- Unidad de trabajo ---

// Apply inserta el lote de hechos y después avanza el checkpoint.
func (r *SalesFactsRepo) Apply(ctx context.Context, mutations []sharedDomain.Mutation, cp sharedDomain.Checkpoint) error {
	rows := make([][]interface{}, 0, len(mutations))
	for _, m := range mutations {
		row, err := factRow(m, cp.Position)
		if err != nil {
			return sharedDomain.Permanent(err)
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		if err := r.insertBatch(ctx, rows); err != nil {
			return err
		}
	}
	return r.UpsertCheckpoint(ctx, cp)
}

func (r *SalesFactsRepo) insertBatch(ctx context.Context, rows [][]interface{}) error {
	// ClickHouse funciona mejor con inserciones en lotes.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO sales_facts (order_id, line_no, product_id, category, region, quantity, amount, currency, ordered_at, position)")
	if err != nil {
		return classify(err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return classify(fmt.Errorf("failed to exec statement for order %v line %v: %w", row[0], row[1], err))
		}
	}
	if err := tx.Commit(); err != nil {
		return classify(err)
	}
	r.log.Debug("Sales facts inserted", zap.Int("rows", len(rows)))
	return nil
}

// factRow convierte una mutación upsert-if-absent sobre sales_facts en una fila.
func factRow(m sharedDomain.Mutation, position uint64) ([]interface{}, error) {
	if m.Kind != sharedDomain.MutationUpsertIfAbsent || m.Entity != reportDomain.EntitySalesFacts {
		return nil, fmt.Errorf("sales facts store only appends %s rows, got %s on %s",
			reportDomain.EntitySalesFacts, m.Kind, m.Entity)
	}

	values := make(map[string]interface{}, len(m.Key)+len(m.Fields))
	for _, f := range m.Key {
		values[f.Name] = f.Value
	}
	for _, f := range m.Fields {
		values[f.Name] = f.Value
	}

	orderID, _ := values["order_id"].(string)
	lineNo, ok := values["line_no"].(uint32)
	if orderID == "" || !ok {
		return nil, fmt.Errorf("sales fact without (order_id, line_no) key: %s", m.KeyString())
	}
	amount, err := sharedDomain.ToDecimal(values["amount"])
	if err != nil {
		return nil, fmt.Errorf("sales fact amount: %w", err)
	}
	orderedAt, _ := values["ordered_at"].(time.Time)
	quantity, _ := values["quantity"].(int32)

	return []interface{}{
		orderID,
		lineNo,
		str(values["product_id"]),
		str(values["category"]),
		str(values["region"]),
		quantity,
		amount,
		str(values["currency"]),
		orderedAt,
		position,
	}, nil
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

// --- Consultas ---

// DailyTrend agrega ventas por día y categoría en [from, to).
func (r *SalesFactsRepo) DailyTrend(ctx context.Context, from, to time.Time) ([]reportDomain.DailySales, error) {
	query := `
		SELECT
			toDate(ordered_at) AS day,
			category,
			uniqExact(order_id) AS orders,
			sum(amount) AS amount
		FROM sales_facts FINAL
		WHERE ordered_at >= ? AND ordered_at < ?
		GROUP BY day, category
		ORDER BY day, category
	`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trend []reportDomain.DailySales
	for rows.Next() {
		var (
			day    time.Time
			sales  reportDomain.DailySales
			amount decimal.Decimal
		)
		if err := rows.Scan(&day, &sales.Category, &sales.Orders, &amount); err != nil {
			return nil, err
		}
		sales.Day = day.Format(reportDomain.DateLayout)
		sales.Amount = amount
		trend = append(trend, sales)
	}
	return trend, rows.Err()
}
