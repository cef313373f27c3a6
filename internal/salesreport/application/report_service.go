package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	reportDomain "github.com/davicafu/hexaprojector/internal/salesreport/domain"
	sharedCache "github.com/davicafu/hexaprojector/internal/shared/infra/platform/cache"
)

var ErrTrendUnavailable = errors.New("sales trend store not configured")

// ReportService sirve el informe "tal y como estaba" en una fecha y el trend analítico.
type ReportService struct {
	repo     reportDomain.ReportReadRepository
	trend    reportDomain.SalesTrendRepository
	cache    sharedCache.Cache
	cacheTTL int
	log      *zap.Logger
}

// NewReportService crea el servicio. trend puede ser nil si no hay almacén analítico.
func NewReportService(repo reportDomain.ReportReadRepository, trend reportDomain.SalesTrendRepository, cache sharedCache.Cache, cacheTTL int, log *zap.Logger) *ReportService {
	return &ReportService{repo: repo, trend: trend, cache: cache, cacheTTL: cacheTTL, log: log}
}

func (s *ReportService) GetReport(ctx context.Context, date string) (*reportDomain.SalesReport, error) {
	if _, err := time.Parse(reportDomain.DateLayout, date); err != nil {
		return nil, reportDomain.ErrInvalidDate
	}
	return sharedCache.GetOrLoad(ctx, s.cache, reportDomain.ReportCacheKeyByDate(date), s.cacheTTL, s.log,
		func(ctx context.Context) (*reportDomain.SalesReport, error) {
			return s.repo.GetReport(ctx, date)
		})
}

// Trend devuelve las ventas por día y categoría entre from y to, ambos incluidos.
func (s *ReportService) Trend(ctx context.Context, from, to string) ([]reportDomain.DailySales, error) {
	if s.trend == nil {
		return nil, ErrTrendUnavailable
	}
	start, err := time.Parse(reportDomain.DateLayout, from)
	if err != nil {
		return nil, reportDomain.ErrInvalidDate
	}
	end, err := time.Parse(reportDomain.DateLayout, to)
	if err != nil || end.Before(start) {
		return nil, reportDomain.ErrInvalidDate
	}

	trend, err := s.trend.DailyTrend(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		s.log.Error("Failed to query sales trend", zap.String("from", from), zap.String("to", to), zap.Error(err))
		return nil, err
	}
	return trend, nil
}
