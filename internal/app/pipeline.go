package app

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"counsel_locator/internal/adapters/observability"
	"counsel_locator/internal/domain"
)

type PipelineConfig struct {
	CacheEnabled   bool
	EnrichEnabled  bool
	FallbackToMock bool
	CacheTTL       time.Duration
	MaxResults     int
	FeaturedCount  int
	KeyPrecision   int
	// DirectoryLimit caps how many stored records are merged per query.
	DirectoryLimit int
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		CacheEnabled:   true,
		EnrichEnabled:  true,
		FallbackToMock: true,
		CacheTTL:       24 * time.Hour,
		MaxResults:     50,
		FeaturedCount:  3,
		KeyPrecision:   domain.DefaultKeyPrecision,
		DirectoryLimit: 200,
	}
}

// Pipeline turns a coordinate and radius into a ranked attorney list.
type Pipeline struct {
	geo        domain.GeoClient
	cache      domain.ResultCache
	dir        domain.AttorneyDirectory
	classifier *Classifier
	dedup      *Deduplicator
	mocks      *MockGenerator
	rnd        *Rand
	now        func() time.Time
	cfg        PipelineConfig
}

type Option func(*Pipeline)

func WithCache(c domain.ResultCache) Option { return func(p *Pipeline) { p.cache = c } }
func WithDirectory(d domain.AttorneyDirectory) Option { return func(p *Pipeline) { p.dir = d } }
func WithClassifier(c *Classifier) Option { return func(p *Pipeline) { p.classifier = c } }
func WithDeduplicator(d *Deduplicator) Option { return func(p *Pipeline) { p.dedup = d } }
func WithRand(r *Rand) Option { return func(p *Pipeline) { p.rnd = r } }
func WithClock(now func() time.Time) Option { return func(p *Pipeline) { p.now = now } }

func NewPipeline(geo domain.GeoClient, cfg PipelineConfig, opts ...Option) *Pipeline {
	p := &Pipeline{geo: geo, cfg: cfg, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	if p.classifier == nil {
		p.classifier = DefaultClassifier()
	}
	if p.dedup == nil {
		p.dedup = NewDeduplicator(DefaultDuplicateThreshold)
	}
	if p.rnd == nil {
		p.rnd = NewRand(0)
	}
	if p.cfg.FeaturedCount <= 0 {
		p.cfg.FeaturedCount = 3
	}
	if p.cfg.KeyPrecision <= 0 {
		p.cfg.KeyPrecision = domain.DefaultKeyPrecision
	}
	p.mocks = NewMockGenerator(p.rnd, p.now)
	return p
}

// Process never fails: upstream or internal errors degrade to mock records
// when FallbackToMock is set, and to an empty list otherwise.
func (p *Pipeline) Process(ctx context.Context, lat, lng, radiusKm float64) []domain.Attorney {
	logger := log.With().Float64("lat", lat).Float64("lng", lng).Float64("radius_km", radiusKm).Logger()

	if p.cfg.CacheEnabled && p.cache != nil {
		if hit, ok := p.cache.Get(ctx, lat, lng, radiusKm); ok {
			observability.ObservePipeline("cache", len(hit))
			logger.Debug().Int("count", len(hit)).Msg("attorney cache hit")
			return hit
		}
	}

	out, outcome, err := p.resolve(ctx, lat, lng, radiusKm)
	if err != nil {
		logger.Warn().Err(err).Msg("attorney pipeline failed")
		if !p.cfg.FallbackToMock {
			observability.ObservePipeline("error", 0)
			return []domain.Attorney{}
		}
		out = p.finalize(p.mocks.Generate(lat, lng), lat, lng)
		observability.ObservePipeline("mock", len(out))
		return out
	}

	if p.cfg.CacheEnabled && p.cache != nil {
		p.cache.Set(ctx, lat, lng, radiusKm, domain.CloneAll(out), p.cfg.CacheTTL)
	}
	if outcome == "live" {
		p.persist(ctx, out)
	}
	observability.ObservePipeline(outcome, len(out))
	logger.Info().Str("outcome", outcome).Int("count", len(out)).Msg("attorneys resolved")
	return out
}

// resolve runs fetch, classification and dedup. Panics are turned into errors
// so the caller can degrade.
func (p *Pipeline) resolve(ctx context.Context, lat, lng, radiusKm float64) (out []domain.Attorney, outcome string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, outcome, err = nil, "", fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	cands := p.gather(ctx, lat, lng, radiusKm)
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if len(cands) == 0 {
		p.logMiss(ctx, lat, lng, radiusKm, "no upstream records")
		return p.finalize(p.mocks.Generate(lat, lng), lat, lng), "mock", nil
	}

	now := p.now().UTC()
	recs := make([]domain.Attorney, 0, len(cands))
	for _, c := range cands {
		if !p.cfg.EnrichEnabled {
			recs = append(recs, minimal(p.classifier, c, now))
			continue
		}
		a, ok := enrich(p.classifier, c, now)
		if !ok {
			observability.ObserveExcluded()
			log.Debug().Str("name", c.rec.Name).Msg("record excluded by classifier")
			continue
		}
		recs = append(recs, a)
	}
	recs = p.dedup.Dedupe(recs)

	if len(recs) == 0 {
		p.logMiss(ctx, lat, lng, radiusKm, "all records excluded")
		if !p.cfg.FallbackToMock {
			return []domain.Attorney{}, "live", nil
		}
		return p.finalize(p.mocks.Generate(lat, lng), lat, lng), "mock", nil
	}
	return p.finalize(recs, lat, lng), "live", nil
}

// gather collects upstream POIs first and stored directory records second,
// so fresh data wins deduplication.
func (p *Pipeline) gather(ctx context.Context, lat, lng, radiusKm float64) []candidate {
	var cands []candidate
	for _, poi := range p.geo.Nearby(ctx, lat, lng, radiusKm) {
		if c, ok := mapPOI(poi, p.rnd); ok {
			cands = append(cands, c)
		}
	}
	if p.dir == nil {
		return cands
	}
	bounds := searchBounds(lat, lng, radiusKm)
	stored, err := p.dir.ListNear(ctx, toBoundingBox(bounds), p.cfg.DirectoryLimit)
	if err != nil {
		log.Warn().Err(err).Msg("directory lookup failed")
		return cands
	}
	for _, a := range stored {
		if a.Source == domain.SourceMock || !inBounds(bounds, a) {
			continue
		}
		cands = append(cands, fromDirectory(a))
	}
	return cands
}

// finalize ranks, caps, and marks the leading records as featured.
func (p *Pipeline) finalize(recs []domain.Attorney, lat, lng float64) []domain.Attorney {
	for i := range recs {
		if recs[i].Lat != nil && recs[i].Lng != nil {
			d := approxDistanceKm(lat, lng, *recs[i].Lat, *recs[i].Lng)
			recs[i].DistanceFromUser = &d
		}
	}
	SortAttorneys(recs)
	if p.cfg.MaxResults > 0 && len(recs) > p.cfg.MaxResults {
		recs = recs[:p.cfg.MaxResults]
	}
	for i := range recs {
		recs[i].Featured = i < p.cfg.FeaturedCount
	}
	return recs
}

// SortAttorneys orders by verified, featured, rating, then cases, all
// descending. Ties keep input order.
func SortAttorneys(recs []domain.Attorney) {
	slices.SortStableFunc(recs, func(a, b domain.Attorney) int {
		if a.Verified != b.Verified {
			if a.Verified {
				return -1
			}
			return 1
		}
		if a.Featured != b.Featured {
			if a.Featured {
				return -1
			}
			return 1
		}
		if a.Rating != b.Rating {
			if a.Rating > b.Rating {
				return -1
			}
			return 1
		}
		return b.Cases - a.Cases
	})
}

func (p *Pipeline) persist(ctx context.Context, recs []domain.Attorney) {
	if p.dir == nil {
		return
	}
	if err := p.dir.UpsertAttorneys(ctx, recs); err != nil {
		log.Warn().Err(err).Int("count", len(recs)).Msg("directory upsert failed")
	}
}

func (p *Pipeline) logMiss(ctx context.Context, lat, lng, radiusKm float64, reason string) {
	if p.dir == nil {
		return
	}
	key := domain.CacheKey(lat, lng, radiusKm, p.cfg.KeyPrecision)
	if err := p.dir.LogMiss(ctx, key, reason); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("log miss failed")
	}
}
