// Package ranking lists shops ordered by their latest score snapshot.
package ranking

import (
	"context"

	"intel_server/core/domain"
	portin "intel_server/core/port/in"
	"intel_server/core/port/out"
	"intel_server/pkg/logger"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type Service struct {
	scores out.ScoringRepository
	log    *logger.Logger
}

var _ portin.RankingService = (*Service)(nil)

func NewService(scores out.ScoringRepository, log *logger.Logger) *Service {
	return &Service{scores: scores, log: log}
}

// RankedShops returns pages with their latest snapshot, ordered by score
// descending. An optional tier narrows results to that tier's score
// range; the range always comes from the tiering module so filters can
// never drift from classification.
func (s *Service) RankedShops(ctx context.Context, tier *domain.Tier, limit, offset int) ([]*out.RankedShop, int, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	filter := &out.RankedShopsFilter{Limit: limit, Offset: offset}
	if tier != nil {
		low, high := domain.TierToScoreRange(*tier)
		filter.MinScore = &low
		// The top tier's range is closed at 100; no upper bound needed.
		if *tier != domain.TierXXL {
			filter.MaxScore = &high
		}
	}

	shops, total, err := s.scores.ListRanked(ctx, filter)
	if err != nil {
		s.log.WithContext(ctx).WithError(err).Error("failed to list ranked shops")
		return nil, 0, err
	}
	return shops, total, nil
}
