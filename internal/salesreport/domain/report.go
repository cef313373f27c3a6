package domain

import (
	"sort"

	"github.com/shopspring/decimal"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
)

const ReadModelName = "sales-report"

const SourceStream = "$et-order-placed"

// DateLayout es el formato de las fechas de snapshot (yyyy-MM-dd).
const DateLayout = "2006-01-02"

// Entidad y columnas del read model. Una fila por (fecha, categoría, región).
const (
	EntitySalesReport    = "sales_report"
	ColReportDate        = "report_date"
	ColCategory          = "category"
	ColRegion            = "region"
	ColDailySales        = "daily_sales"
	ColTargetSales       = "target_sales"
	ColTotalMonthlySales = "total_monthly_sales"
	ColTargetHitRate     = "target_hit_rate"
)

// RegionSales son las cifras de una categoría en una región a fecha del snapshot.
type RegionSales struct {
	DailySales        decimal.Decimal `json:"dailySales"`
	TargetSales       decimal.Decimal `json:"targetSales"`
	TotalMonthlySales decimal.Decimal `json:"totalMonthlySales"`
	TargetHitRate     decimal.Decimal `json:"targetHitRate"`
}

// SalesReport es el informe tal y como estaba en ReportDate.
type SalesReport struct {
	ReportDate string                            `json:"reportDate"`
	Categories map[string]map[string]RegionSales `json:"categories"`
}

func NewSalesReport(date string) *SalesReport {
	return &SalesReport{ReportDate: date, Categories: make(map[string]map[string]RegionSales)}
}

// Put guarda las cifras de (category, region).
func (r *SalesReport) Put(category, region string, sales RegionSales) {
	regions, ok := r.Categories[category]
	if !ok {
		regions = make(map[string]RegionSales)
		r.Categories[category] = regions
	}
	regions[region] = sales
}

// Bucket devuelve las cifras de (category, region) si existen.
func (r *SalesReport) Bucket(category, region string) (RegionSales, bool) {
	sales, ok := r.Categories[category][region]
	return sales, ok
}

// CategoryNames devuelve las categorías ordenadas.
func (r *SalesReport) CategoryNames() []string {
	names := make([]string, 0, len(r.Categories))
	for name := range r.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DailySales es una fila del trend analítico.
type DailySales struct {
	Day      string          `json:"day"`
	Category string          `json:"category"`
	Orders   uint64          `json:"orders"`
	Amount   decimal.Decimal `json:"amount"`
}

// Hechos analíticos: una fila por línea de pedido.
const (
	FactsReadModelName = "sales-facts"
	EntitySalesFacts   = "sales_facts"
)

// RegionSalesFromRow lee las cifras de una fila genérica del read model.
// Valores ausentes o no numéricos cuentan como 0.
func RegionSalesFromRow(row map[string]interface{}) RegionSales {
	num := func(col string) decimal.Decimal {
		d, err := sharedDomain.ToDecimal(row[col])
		if err != nil {
			return decimal.Zero
		}
		return d
	}
	return RegionSales{
		DailySales:        num(ColDailySales),
		TargetSales:       num(ColTargetSales),
		TotalMonthlySales: num(ColTotalMonthlySales),
		TargetHitRate:     num(ColTargetHitRate),
	}
}
