package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	reportDomain "github.com/davicafu/hexaprojector/internal/salesreport/domain"
)

// MockReportRepo simula el repositorio de lectura del informe y el de trend.
type MockReportRepo struct {
	mock.Mock
}

var (
	_ reportDomain.ReportReadRepository = (*MockReportRepo)(nil)
	_ reportDomain.SalesTrendRepository = (*MockReportRepo)(nil)
)

func (m *MockReportRepo) GetReport(ctx context.Context, date string) (*reportDomain.SalesReport, error) {
	args := m.Called(ctx, date)
	if r := args.Get(0); r != nil {
		return r.(*reportDomain.SalesReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReportRepo) DailyTrend(ctx context.Context, from, to time.Time) ([]reportDomain.DailySales, error) {
	args := m.Called(ctx, from, to)
	if r := args.Get(0); r != nil {
		return r.([]reportDomain.DailySales), args.Error(1)
	}
	return nil, args.Error(1)
}
