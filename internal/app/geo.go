package app

import (
	"math"

	"github.com/twpayne/go-geom"

	"counsel_locator/internal/domain"
)

// kmPerDegree is the length of one degree of latitude.
const kmPerDegree = 111.0

// searchBounds returns the lat/lng box that contains a radiusKm circle
// around (lat, lng). X is longitude, Y is latitude.
func searchBounds(lat, lng, radiusKm float64) *geom.Bounds {
	dLat := radiusKm / kmPerDegree
	cos := math.Cos(lat * math.Pi / 180)
	dLng := dLat
	if cos > 1e-6 {
		dLng = radiusKm / (kmPerDegree * cos)
	}
	return geom.NewBounds(geom.XY).Set(lng-dLng, lat-dLat, lng+dLng, lat+dLat)
}

func toBoundingBox(b *geom.Bounds) domain.BoundingBox {
	return domain.BoundingBox{
		MinLng: b.Min(0), MinLat: b.Min(1),
		MaxLng: b.Max(0), MaxLat: b.Max(1),
	}
}

func inBounds(b *geom.Bounds, a domain.Attorney) bool {
	if a.Lat == nil || a.Lng == nil {
		return false
	}
	return b.OverlapsPoint(geom.XY, geom.Coord{*a.Lng, *a.Lat})
}

// approxDistanceKm is a flat-earth approximation: degree deltas scaled by
// kmPerDegree. Fine at city scale, not geodesic.
func approxDistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	d := math.Hypot(lat2-lat1, lng2-lng1) * kmPerDegree
	return math.Round(d*10) / 10
}
