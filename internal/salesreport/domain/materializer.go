package domain

import (
	"time"

	"github.com/shopspring/decimal"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
)

// Materializer proyecta un pedido sobre la serie de snapshots diarios que
// van desde el día del pedido hasta fin de mes.
type Materializer struct {
	cfg ReportConfig
}

func NewMaterializer(cfg ReportConfig) *Materializer {
	return &Materializer{cfg: cfg}
}

// Config devuelve la configuración con la que se construyó.
func (m *Materializer) Config() ReportConfig {
	return m.cfg
}

// Bucket identifica una fila del informe: (fecha, categoría, región).
type Bucket struct {
	Date     time.Time
	Category string
	Region   string
}

// BucketAsOf devuelve el bucket del informe tal y como estaba en asOf.
func BucketAsOf(asOf time.Time, category, region string) Bucket {
	return Bucket{Date: civilDate(asOf), Category: category, Region: region}
}

// DateString formatea la fecha del bucket como yyyy-MM-dd.
func (b Bucket) DateString() string {
	return b.Date.Format(DateLayout)
}

// categorySales es el importe de un pedido en una categoría.
type categorySales struct {
	category string
	amount   decimal.Decimal
}

// Materialize traduce un OrderPlaced a mutaciones sobre sales_report.
// Para cada categoría del pedido: crea si faltan los buckets de T..fin de mes,
// suma el importe al total mensual de todos ellos y a las ventas diarias solo del día T.
func (m *Materializer) Materialize(evt sharedEvents.OrderPlaced) []sharedDomain.Mutation {
	region := evt.Store.GeographicRegion
	orderDay := civilDate(evt.At)

	var mutations []sharedDomain.Mutation
	for _, cs := range salesByCategory(evt.LineItems) {
		if !m.cfg.Reports(cs.category, region) {
			continue
		}
		for _, day := range snapshotDays(evt.At) {
			b := BucketAsOf(day, cs.category, region)
			key := bucketKey(b)
			mutations = append(mutations,
				sharedDomain.UpsertIfAbsent(EntitySalesReport, key, bucketDefaults(m.cfg, b)...),
				sharedDomain.Increment(EntitySalesReport, key, ColTotalMonthlySales, cs.amount).
					WithRatio(ColTargetHitRate, ColTotalMonthlySales, ColTargetSales),
			)
			if day.Equal(orderDay) {
				mutations = append(mutations, sharedDomain.Increment(EntitySalesReport, key, ColDailySales, cs.amount))
			}
		}
	}
	return mutations
}

// salesByCategory agrupa las líneas por categoría en orden de aparición.
// Las líneas sin categoría no cuentan.
func salesByCategory(lines []sharedEvents.LineItem) []categorySales {
	var out []categorySales
	index := make(map[string]int)
	for _, line := range lines {
		if line.Category == "" {
			continue
		}
		i, ok := index[line.Category]
		if !ok {
			i = len(out)
			index[line.Category] = i
			out = append(out, categorySales{category: line.Category, amount: decimal.Zero})
		}
		out[i].amount = out[i].amount.Add(line.Total())
	}
	return out
}

// civilDate se queda con la fecha de t en su propio huso, a medianoche UTC.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// monthEnd es el último día natural del mes de t.
func monthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// snapshotDays devuelve los días desde t hasta fin de mes, ambos incluidos.
func snapshotDays(t time.Time) []time.Time {
	start, end := civilDate(t), monthEnd(t)
	days := make([]time.Time, 0, end.Day()-start.Day()+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func bucketKey(b Bucket) []sharedDomain.Field {
	return []sharedDomain.Field{
		sharedDomain.F(ColReportDate, b.DateString()),
		sharedDomain.F(ColCategory, b.Category),
		sharedDomain.F(ColRegion, b.Region),
	}
}

// bucketDefaults son los valores de un bucket recién creado.
func bucketDefaults(cfg ReportConfig, b Bucket) []sharedDomain.Field {
	return []sharedDomain.Field{
		sharedDomain.F(ColDailySales, decimal.Zero),
		sharedDomain.F(ColTargetSales, cfg.TargetFor(b.Date.Year(), b.Date.Month(), b.Category, b.Region)),
		sharedDomain.F(ColTotalMonthlySales, decimal.Zero),
		sharedDomain.F(ColTargetHitRate, decimal.Zero),
	}
}
