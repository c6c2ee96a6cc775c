package domain

import (
	"context"
	"time"
)

// GeoClient finds raw POIs around a point. An empty result means "nothing
// usable upstream"; implementations never return errors to the caller.
type GeoClient interface {
	Nearby(ctx context.Context, lat, lng, radiusKm float64) []POI
}

// ResultCache stores finalized result sets keyed by a quantized query.
type ResultCache interface {
	Get(ctx context.Context, lat, lng, radiusKm float64) ([]Attorney, bool)
	Set(ctx context.Context, lat, lng, radiusKm float64, data []Attorney, ttl time.Duration)
	Has(ctx context.Context, lat, lng, radiusKm float64) bool
	Delete(ctx context.Context, lat, lng, radiusKm float64)
	Clear(ctx context.Context)
}

// AttorneyDirectory is the persistence collaborator: previously resolved
// records plus a log of upstream misses.
type AttorneyDirectory interface {
	UpsertAttorneys(ctx context.Context, as []Attorney) error
	ListNear(ctx context.Context, box BoundingBox, limit int) ([]Attorney, error)
	LogMiss(ctx context.Context, key string, reason string) error
}

// BoundingBox is an axis-aligned lat/lng window.
type BoundingBox struct {
	MinLat, MinLng, MaxLat, MaxLng float64
}
