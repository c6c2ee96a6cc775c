package app

import (
	"context"
	"fmt"

	"counsel_locator/internal/domain"
)

// WarmResult reports what a warm-up run left in the cache.
type WarmResult struct {
	Count int
	Live  bool // false when only mock records were produced
}

// WarmService refreshes cached results for well-known locations ahead of
// user traffic.
type WarmService struct {
	p     *Pipeline
	cache domain.ResultCache
}

func NewWarmService(p *Pipeline, cache domain.ResultCache) *WarmService {
	return &WarmService{p: p, cache: cache}
}

// Warm evicts the cached entry for the location and runs the pipeline again.
// Upstream misses are not errors: the location is reported as not live.
func (s *WarmService) Warm(ctx context.Context, lat, lng, radiusKm float64) (WarmResult, error) {
	if !domain.ValidCoordinates(lat, lng) {
		return WarmResult{}, fmt.Errorf("warm %.4f,%.4f: %w", lat, lng, domain.ErrInvalidCoordinates)
	}
	// Evict first so a stale snapshot is never served after a refresh.
	if s.cache != nil {
		s.cache.Delete(ctx, lat, lng, radiusKm)
	}

	recs := s.p.Process(ctx, lat, lng, radiusKm)
	if err := ctx.Err(); err != nil {
		return WarmResult{}, err
	}

	res := WarmResult{Count: len(recs)}
	for _, a := range recs {
		if a.Source != domain.SourceMock {
			res.Live = true
			break
		}
	}
	return res, nil
}
