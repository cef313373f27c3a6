package filesystem

import (
	"fmt"

	"github.com/shopspring/decimal"

	reportDomain "github.com/davicafu/hexaprojector/internal/salesreport/domain"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
)

// bucketRef localiza un bucket dentro del documento a partir de la clave de la mutación.
type bucketRef struct {
	date, category, region string
}

func refOf(m sharedDomain.Mutation) (bucketRef, error) {
	if m.Entity != reportDomain.EntitySalesReport {
		return bucketRef{}, fmt.Errorf("json report store does not hold entity %q", m.Entity)
	}
	var ref bucketRef
	for _, k := range m.Key {
		v, ok := k.Value.(string)
		if !ok {
			return bucketRef{}, fmt.Errorf("key %s must be a string, got %T", k.Name, k.Value)
		}
		switch k.Name {
		case reportDomain.ColReportDate:
			ref.date = v
		case reportDomain.ColCategory:
			ref.category = v
		case reportDomain.ColRegion:
			ref.region = v
		}
	}
	if ref.date == "" || ref.category == "" || ref.region == "" {
		return bucketRef{}, fmt.Errorf("incomplete sales report key %s", m.KeyString())
	}
	return ref, nil
}

func (d *document) bucket(ref bucketRef) (reportDomain.RegionSales, bool) {
	report, ok := d.Reports[ref.date]
	if !ok {
		return reportDomain.RegionSales{}, false
	}
	return report.Bucket(ref.category, ref.region)
}

func (d *document) put(ref bucketRef, sales reportDomain.RegionSales) {
	report, ok := d.Reports[ref.date]
	if !ok {
		report = reportDomain.NewSalesReport(ref.date)
		d.Reports[ref.date] = report
	}
	report.Put(ref.category, ref.region, sales)
}

func (d *document) remove(ref bucketRef) {
	report, ok := d.Reports[ref.date]
	if !ok {
		return
	}
	delete(report.Categories[ref.category], ref.region)
	if len(report.Categories[ref.category]) == 0 {
		delete(report.Categories, ref.category)
	}
}

// toRow/fromRow permiten aplicar las mutaciones genéricas por nombre de columna.
func toRow(s reportDomain.RegionSales) map[string]interface{} {
	return map[string]interface{}{
		reportDomain.ColDailySales:        s.DailySales,
		reportDomain.ColTargetSales:       s.TargetSales,
		reportDomain.ColTotalMonthlySales: s.TotalMonthlySales,
		reportDomain.ColTargetHitRate:     s.TargetHitRate,
	}
}

func setColumn(row map[string]interface{}, col string, v interface{}) error {
	if _, ok := row[col]; !ok {
		return fmt.Errorf("unknown sales report column %q", col)
	}
	d, err := sharedDomain.ToDecimal(v)
	if err != nil {
		return fmt.Errorf("%s: %w", col, err)
	}
	row[col] = d
	return nil
}

func applyMutation(doc *document, m sharedDomain.Mutation) error {
	ref, err := refOf(m)
	if err != nil {
		return err
	}
	current, exists := doc.bucket(ref)

	switch m.Kind {
	case sharedDomain.MutationUpsertIfAbsent:
		if exists {
			return nil
		}
		row := toRow(reportDomain.RegionSales{})
		for _, f := range m.Fields {
			if err := setColumn(row, f.Name, f.Value); err != nil {
				return err
			}
		}
		doc.put(ref, reportDomain.RegionSalesFromRow(row))

	case sharedDomain.MutationFieldSet:
		if !exists {
			return nil
		}
		row := toRow(current)
		for _, f := range m.Fields {
			if err := setColumn(row, f.Name, f.Value); err != nil {
				return err
			}
		}
		doc.put(ref, reportDomain.RegionSalesFromRow(row))

	case sharedDomain.MutationIncrement:
		if !exists {
			return nil
		}
		row := toRow(current)
		cur, ok := row[m.Field].(decimal.Decimal)
		if !ok {
			return fmt.Errorf("unknown sales report column %q", m.Field)
		}
		row[m.Field] = cur.Add(m.Delta)
		if r := m.Ratio; r != nil {
			num, _ := row[r.Numerator].(decimal.Decimal)
			den, _ := row[r.Denominator].(decimal.Decimal)
			if err := setColumn(row, r.Field, sharedDomain.SafeRatio(num, den)); err != nil {
				return err
			}
		}
		doc.put(ref, reportDomain.RegionSalesFromRow(row))

	case sharedDomain.MutationDeleteIfZero:
		if !exists {
			return nil
		}
		cur, ok := toRow(current)[m.Field].(decimal.Decimal)
		if !ok {
			return fmt.Errorf("unknown sales report column %q", m.Field)
		}
		if cur.IsZero() {
			doc.remove(ref)
		}
	}
	return nil
}
