package domain_test

import (
	"math"
	"testing"

	"counsel_locator/internal/domain"
)

func TestCacheKey_Quantization(t *testing.T) {
	a := domain.CacheKey(40.7128, -74.0060, 50, 3)
	b := domain.CacheKey(40.71279, -74.00601, 50, 3)
	if a != b {
		t.Fatalf("expected same key, got %q vs %q", a, b)
	}
	if a != "40.713_-74.006_50" {
		t.Fatalf("unexpected key %q", a)
	}
}

func TestCacheKey_RadiusRoundsToKilometer(t *testing.T) {
	if got := domain.CacheKey(1, 2, 49.6, 3); got != "1_2_50" {
		t.Fatalf("unexpected key %q", got)
	}
	if domain.CacheKey(1, 2, 10, 3) == domain.CacheKey(1, 2, 11, 3) {
		t.Fatalf("different radii must not collide")
	}
}

func TestCacheKey_NegativeZero(t *testing.T) {
	if got := domain.CacheKey(-0.0001, 0.0001, 5, 3); got != "0_0_5" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestValidCoordinates(t *testing.T) {
	cases := []struct {
		lat, lng float64
		ok       bool
	}{
		{24.8607, 67.0011, true},
		{-90, 180, true},
		{90.01, 0, false},
		{0, -180.5, false},
		{math.NaN(), 0, false},
	}
	for _, c := range cases {
		if got := domain.ValidCoordinates(c.lat, c.lng); got != c.ok {
			t.Errorf("ValidCoordinates(%v, %v) = %v, want %v", c.lat, c.lng, got, c.ok)
		}
	}
}
