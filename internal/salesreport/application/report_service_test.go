package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/hexaprojector/internal/mocks"
	reportDomain "github.com/davicafu/hexaprojector/internal/salesreport/domain"
)

func TestGetReport_ValidatesDateAndCaches(t *testing.T) {
	// Arrange
	repo := new(mocks.MockReportRepo)
	cache := mocks.NewDummyCache()
	service := NewReportService(repo, nil, cache, 60, zap.NewNop())
	repo.On("GetReport", mock.Anything, "2025-01-10").Return(reportDomain.NewSalesReport("2025-01-10"), nil).Once()

	// Act
	_, err := service.GetReport(context.Background(), "10/01/2025")
	assert.ErrorIs(t, err, reportDomain.ErrInvalidDate)

	report, err := service.GetReport(context.Background(), "2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", report.ReportDate)

	// Assert
	require.Eventually(t, func() bool {
		return cache.Has(reportDomain.ReportCacheKeyByDate("2025-01-10"))
	}, time.Second, 5*time.Millisecond)
	_, err = service.GetReport(context.Background(), "2025-01-10")
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "GetReport", 1)
}

func TestTrend_InclusiveRange(t *testing.T) {
	repo := new(mocks.MockReportRepo)
	service := NewReportService(repo, repo, nil, 60, zap.NewNop())
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.On("DailyTrend", mock.Anything, from, from.AddDate(0, 0, 31)).
		Return([]reportDomain.DailySales{{Day: "2025-01-10", Category: "Electronics"}}, nil)

	trend, err := service.Trend(context.Background(), "2025-01-01", "2025-01-31")

	require.NoError(t, err)
	assert.Len(t, trend, 1)
	repo.AssertExpectations(t)
}

func TestTrend_Errors(t *testing.T) {
	repo := new(mocks.MockReportRepo)

	_, err := NewReportService(repo, nil, nil, 60, zap.NewNop()).Trend(context.Background(), "2025-01-01", "2025-01-31")
	assert.ErrorIs(t, err, ErrTrendUnavailable)

	service := NewReportService(repo, repo, nil, 60, zap.NewNop())
	_, err = service.Trend(context.Background(), "2025-02-01", "2025-01-31")
	assert.ErrorIs(t, err, reportDomain.ErrInvalidDate)
	_, err = service.Trend(context.Background(), "yesterday", "2025-01-31")
	assert.ErrorIs(t, err, reportDomain.ErrInvalidDate)
}
