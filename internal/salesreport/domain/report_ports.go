package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrReportNotFound = errors.New("sales report not found")
	ErrInvalidDate    = errors.New("invalid report date, expected yyyy-MM-dd")
)

// ReportReadRepository devuelve el informe tal y como estaba en una fecha.
type ReportReadRepository interface {
	GetReport(ctx context.Context, date string) (*SalesReport, error)
}

// SalesTrendRepository agrega los hechos de venta por día y categoría.
type SalesTrendRepository interface {
	DailyTrend(ctx context.Context, from, to time.Time) ([]DailySales, error)
}

func ReportCacheKeyByDate(date string) string {
	return fmt.Sprintf("sales-report:date:%s", date)
}
