package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	reportDomain "github.com/davicafu/hexaprojector/internal/salesreport/domain"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
)

func targets(amount int64) reportDomain.ReportConfig {
	return reportDomain.ReportConfig{Targets: reportDomain.MonthlyTargets{
		"2025-01": {"Electronics": {"Asia": decimal.NewFromInt(amount)}},
	}}
}

func order(id string, day int, amount string) sharedEvents.OrderPlaced {
	return sharedEvents.OrderPlaced{
		OrderID: id,
		Store:   sharedEvents.Store{GeographicRegion: "Asia"},
		LineItems: []sharedEvents.LineItem{{
			ProductID: "tv", Category: "Electronics", Quantity: 1,
			Price: sharedEvents.Price{Currency: "USD", Amount: decimal.RequireFromString(amount)},
		}},
		At: time.Date(2025, 1, day, 15, 0, 0, 0, time.UTC),
	}
}

func project(t *testing.T, store *JSONReportStore, m *reportDomain.Materializer, pos uint64, evt sharedEvents.OrderPlaced) {
	require.NoError(t, store.Apply(context.Background(), m.Materialize(evt),
		sharedDomain.Checkpoint{ReadModel: reportDomain.ReadModelName, Position: pos}))
}

func bucket(t *testing.T, store *JSONReportStore, day int) reportDomain.RegionSales {
	report, err := store.GetReport(context.Background(), fmt.Sprintf("2025-01-%02d", day))
	require.NoError(t, err)
	sales, ok := report.Bucket("Electronics", "Asia")
	require.True(t, ok)
	return sales
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSnapshotFanOut_SingleOrder(t *testing.T) {
	// Arrange
	store := NewJSONReportStore(filepath.Join(t.TempDir(), "report.json"), zap.NewNop())
	m := reportDomain.NewMaterializer(targets(1000))

	// Act
	project(t, store, m, 0, order("o-1", 10, "100"))

	// Assert
	for day := 10; day <= 31; day++ {
		sales := bucket(t, store, day)
		assert.True(t, sales.TotalMonthlySales.Equal(dec("100")), "total day %d", day)
		assert.True(t, sales.TargetHitRate.Equal(dec("0.10")), "rate day %d", day)
		assert.True(t, sales.TargetSales.Equal(dec("1000")), "target day %d", day)
		if day == 10 {
			assert.True(t, sales.DailySales.Equal(dec("100")))
		} else {
			assert.True(t, sales.DailySales.IsZero(), "daily day %d", day)
		}
	}
	_, err := store.GetReport(context.Background(), "2025-01-09")
	assert.ErrorIs(t, err, reportDomain.ErrReportNotFound)
	_, err = store.GetReport(context.Background(), "2025-02-01")
	assert.ErrorIs(t, err, reportDomain.ErrReportNotFound)
}

func TestSnapshotFanOut_TwoOrdersSameMonth(t *testing.T) {
	store := NewJSONReportStore(filepath.Join(t.TempDir(), "report.json"), zap.NewNop())
	m := reportDomain.NewMaterializer(targets(100))

	project(t, store, m, 0, order("o-1", 1, "50"))
	project(t, store, m, 1, order("o-2", 15, "30"))

	for day := 1; day <= 14; day++ {
		assert.True(t, bucket(t, store, day).TotalMonthlySales.Equal(dec("50")), "day %d", day)
	}
	for day := 15; day <= 31; day++ {
		assert.True(t, bucket(t, store, day).TotalMonthlySales.Equal(dec("80")), "day %d", day)
	}
	assert.True(t, bucket(t, store, 20).TargetHitRate.Equal(dec("0.8")))

	// Σ ventas diarias hasta D == total de D
	running := decimal.Zero
	for day := 1; day <= 31; day++ {
		sales := bucket(t, store, day)
		running = running.Add(sales.DailySales)
		assert.True(t, running.Equal(sales.TotalMonthlySales), "day %d", day)
	}
}

func TestJSONReportStore_PersistsCheckpointWithDocument(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "report.json")
	store := NewJSONReportStore(path, zap.NewNop())
	m := reportDomain.NewMaterializer(targets(1000))
	project(t, store, m, 7, order("o-1", 30, "10"))

	// Act: otra instancia lee el mismo fichero
	reopened := NewJSONReportStore(path, zap.NewNop())
	pos, found, err := reopened.GetCheckpoint(context.Background(), reportDomain.ReadModelName)

	// Assert
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(7), pos)
	report, err := reopened.GetReport(context.Background(), "2025-01-31")
	require.NoError(t, err)
	sales, ok := report.Bucket("Electronics", "Asia")
	require.True(t, ok)
	assert.True(t, sales.TotalMonthlySales.Equal(dec("10")))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestJSONReportStore_CheckpointNeverRegresses(t *testing.T) {
	store := NewJSONReportStore(filepath.Join(t.TempDir(), "report.json"), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.UpsertCheckpoint(ctx, sharedDomain.Checkpoint{ReadModel: reportDomain.ReadModelName, Position: 9}))
	require.NoError(t, store.UpsertCheckpoint(ctx, sharedDomain.Checkpoint{ReadModel: reportDomain.ReadModelName, Position: 3}))

	pos, _, err := store.GetCheckpoint(ctx, reportDomain.ReadModelName)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), pos)
}

func TestJSONReportStore_FailedUnitLeavesDocumentUntouched(t *testing.T) {
	// Arrange
	store := NewJSONReportStore(filepath.Join(t.TempDir(), "report.json"), zap.NewNop())
	m := reportDomain.NewMaterializer(targets(1000))
	mutations := append(m.Materialize(order("o-1", 10, "100")),
		sharedDomain.Increment("carts", []sharedDomain.Field{sharedDomain.F("cart_id", "c1")}, "quantity", decimal.NewFromInt(1)))

	// Act
	err := store.Apply(context.Background(), mutations, sharedDomain.Checkpoint{ReadModel: reportDomain.ReadModelName, Position: 1})

	// Assert
	assert.ErrorIs(t, err, sharedDomain.ErrPermanentStore)
	_, found, _ := store.GetCheckpoint(context.Background(), reportDomain.ReadModelName)
	assert.False(t, found)
	_, err = store.GetReport(context.Background(), "2025-01-10")
	assert.ErrorIs(t, err, reportDomain.ErrReportNotFound)
}
