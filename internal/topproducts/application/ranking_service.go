package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	rankingDomain "github.com/davicafu/hexaprojector/internal/topproducts/domain"
)

// RankingService sirve el top de productos por hora o por ventana de horas.
type RankingService struct {
	repo rankingDomain.RankingRepository
	now  func() time.Time
	log  *zap.Logger
}

func NewRankingService(repo rankingDomain.RankingRepository, log *zap.Logger) *RankingService {
	return &RankingService{repo: repo, now: time.Now, log: log}
}

// TopOfHour devuelve el top de una hora yyyyMMddHH.
func (s *RankingService) TopOfHour(ctx context.Context, hour string, limit int) ([]rankingDomain.ProductRanking, error) {
	if _, err := time.Parse(rankingDomain.HourLayout, hour); err != nil {
		return nil, rankingDomain.ErrInvalidHour
	}
	ranking, err := s.repo.HourRanking(ctx, hour)
	if err != nil {
		return nil, err
	}
	return s.withNames(ctx, rankingDomain.Merge(limit, ranking))
}

// TopOfLastHours suma las últimas n horas (la actual incluida), en UTC.
func (s *RankingService) TopOfLastHours(ctx context.Context, hours, limit int) ([]rankingDomain.ProductRanking, error) {
	if hours <= 0 {
		hours = 24
	}
	now := s.now().UTC()
	rankings := make([][]rankingDomain.ProductRanking, 0, hours)
	for i := 0; i < hours; i++ {
		ranking, err := s.repo.HourRanking(ctx, rankingDomain.HourKey(now.Add(-time.Duration(i)*time.Hour)))
		if err != nil {
			return nil, err
		}
		rankings = append(rankings, ranking)
	}
	return s.withNames(ctx, rankingDomain.Merge(limit, rankings...))
}

// withNames completa los nombres; si fallan, se devuelve el ranking sin ellos.
func (s *RankingService) withNames(ctx context.Context, ranking []rankingDomain.ProductRanking) ([]rankingDomain.ProductRanking, error) {
	if len(ranking) == 0 {
		return ranking, nil
	}
	ids := make([]string, len(ranking))
	for i, p := range ranking {
		ids[i] = p.ProductID
	}
	names, err := s.repo.ProductNames(ctx, ids)
	if err != nil {
		s.log.Warn("Failed to resolve product names", zap.Error(err))
		return ranking, nil
	}
	for i := range ranking {
		ranking[i].ProductName = names[ranking[i].ProductID]
	}
	return ranking, nil
}
