package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reportDomain "github.com/davicafu/hexaprojector/internal/salesreport/domain"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
	"github.com/davicafu/hexaprojector/internal/shared/infra/store/memstore"
)

func electronicsOrder(day int, amount string) sharedEvents.OrderPlaced {
	return sharedEvents.OrderPlaced{
		OrderID: "o-1",
		Store:   sharedEvents.Store{GeographicRegion: "Asia"},
		LineItems: []sharedEvents.LineItem{
			{ProductID: "tv", Category: "Electronics", Quantity: 2,
				Price: sharedEvents.Price{Amount: decimal.RequireFromString(amount).Div(decimal.NewFromInt(2))}},
		},
		At: time.Date(2025, 1, day, 9, 0, 0, 0, time.UTC),
	}
}

func salesOn(t *testing.T, store *memstore.Store, date string) reportDomain.RegionSales {
	row, ok := store.Get(reportDomain.EntitySalesReport,
		sharedDomain.F(reportDomain.ColReportDate, date),
		sharedDomain.F(reportDomain.ColCategory, "Electronics"),
		sharedDomain.F(reportDomain.ColRegion, "Asia"))
	require.True(t, ok, date)
	return reportDomain.RegionSalesFromRow(row)
}

func TestProjection_FanOutOnMemoryStore(t *testing.T) {
	// Arrange
	cfg := reportDomain.ReportConfig{Targets: reportDomain.MonthlyTargets{
		"2025-01": {"Electronics": {"Asia": decimal.NewFromInt(1000)}},
	}}
	d := NewProjection(reportDomain.NewMaterializer(cfg))
	store := memstore.New()

	// Act
	mutations, err := d.Project(electronicsOrder(10, "100"))
	require.NoError(t, err)
	require.NoError(t, store.Apply(context.Background(), mutations,
		sharedDomain.Checkpoint{ReadModel: reportDomain.ReadModelName, Position: 0}))

	// Assert
	assert.Len(t, store.Rows(reportDomain.EntitySalesReport), 22)
	first := salesOn(t, store, "2025-01-10")
	assert.True(t, first.DailySales.Equal(decimal.NewFromInt(100)))
	last := salesOn(t, store, "2025-01-31")
	assert.True(t, last.DailySales.IsZero())
	assert.True(t, last.TotalMonthlySales.Equal(decimal.NewFromInt(100)))
	assert.True(t, last.TargetHitRate.Equal(decimal.RequireFromString("0.1")))
}

func TestProjection_UnconfiguredTargetGivesZeroRate(t *testing.T) {
	d := NewProjection(reportDomain.NewMaterializer(reportDomain.ReportConfig{}))
	store := memstore.New()

	mutations, err := d.Project(electronicsOrder(31, "40"))
	require.NoError(t, err)
	require.NoError(t, store.Apply(context.Background(), mutations,
		sharedDomain.Checkpoint{ReadModel: reportDomain.ReadModelName, Position: 0}))

	sales := salesOn(t, store, "2025-01-31")
	assert.True(t, sales.TargetSales.IsZero())
	assert.True(t, sales.TargetHitRate.IsZero())
	assert.True(t, sales.DailySales.Equal(decimal.NewFromInt(40)))
}

func TestFactsProjection_OneRowPerLine(t *testing.T) {
	evt := electronicsOrder(10, "100")
	evt.LineItems = append(evt.LineItems, sharedEvents.LineItem{
		ProductID: "cable", Category: "Accessories", Quantity: 3, Currency: "USD",
		Price: sharedEvents.Price{Amount: decimal.RequireFromString("2.5")},
	})

	mutations, err := NewFactsProjection().Project(evt)

	require.NoError(t, err)
	require.Len(t, mutations, 2)
	assert.Equal(t, "o-1|1", mutations[1].KeyString())
	assert.Equal(t, sharedDomain.MutationUpsertIfAbsent, mutations[1].Kind)
	for _, f := range mutations[1].Fields {
		if f.Name == "amount" {
			assert.True(t, f.Value.(decimal.Decimal).Equal(decimal.RequireFromString("7.5")))
		}
	}
	assert.Contains(t, mutations[1].Fields, sharedDomain.F("currency", "USD"))
}
