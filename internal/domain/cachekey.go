package domain

import (
	"math"
	"strconv"
)

// DefaultKeyPrecision rounds coordinates to ~111m.
const DefaultKeyPrecision = 3

// CacheKey quantizes a query into "lat_lng_radius". Lat/lng are rounded to
// precision decimals, radius to whole kilometers, so nearby queries share an entry.
func CacheKey(lat, lng, radiusKm float64, precision int) string {
	if precision < 0 {
		precision = DefaultKeyPrecision
	}
	return formatRounded(lat, precision) + "_" + formatRounded(lng, precision) + "_" +
		strconv.FormatFloat(roundTo(radiusKm, 0), 'f', -1, 64)
}

func formatRounded(v float64, decimals int) string {
	r := roundTo(v, decimals)
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
