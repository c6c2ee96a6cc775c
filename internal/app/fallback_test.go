package app

import (
	"math"
	"strings"
	"testing"
	"time"

	"counsel_locator/internal/domain"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func TestMockGenerator_Shape(t *testing.T) {
	g := NewMockGenerator(NewRand(7), func() time.Time { return fixedNow })
	got := g.Generate(24.8607, 67.0011)

	if len(got) != MockCount {
		t.Fatalf("want %d mocks, got %d", MockCount, len(got))
	}
	ids := map[string]bool{}
	for i, a := range got {
		if a.Source != domain.SourceMock || !a.Verified {
			t.Fatalf("mock %d: source=%q verified=%v", i, a.Source, a.Verified)
		}
		if a.Rating < 3 || a.Rating >= 5 {
			t.Fatalf("mock %d rating out of range: %v", i, a.Rating)
		}
		if !strings.HasPrefix(a.ID, "mock-") || ids[a.ID] {
			t.Fatalf("mock %d: bad or duplicate id %q", i, a.ID)
		}
		ids[a.ID] = true
		if a.Lat == nil || a.Lng == nil ||
			math.Abs(*a.Lat-24.8607) > mockJitter || math.Abs(*a.Lng-67.0011) > mockJitter {
			t.Fatalf("mock %d not within jitter of the query point", i)
		}
		if a.Featured != (i < 3) {
			t.Fatalf("mock %d featured=%v", i, a.Featured)
		}
		if len(a.Specialization) == 0 || len(a.Reviews) == 0 {
			t.Fatalf("mock %d missing specialization or reviews", i)
		}
		if a.Reviews[0].Date != "2025-05-25" {
			t.Fatalf("first review should be a week old, got %s", a.Reviews[0].Date)
		}
		if !a.LastUpdated.Equal(fixedNow) {
			t.Fatalf("lastUpdated: %s", a.LastUpdated)
		}
	}
}

func TestMockGenerator_StableIdsPerArea(t *testing.T) {
	g := NewMockGenerator(NewRand(1), func() time.Time { return fixedNow })
	a := g.Generate(24.8607, 67.0011)
	b := g.Generate(24.86071, 67.00112)
	c := g.Generate(31.5204, 74.3587)
	if a[0].ID != b[0].ID {
		t.Fatalf("ids should be stable within a cache cell: %s vs %s", a[0].ID, b[0].ID)
	}
	if a[0].ID == c[0].ID {
		t.Fatalf("ids should differ between areas")
	}
}

func TestMockGenerator_SeededJitterIsReproducible(t *testing.T) {
	now := func() time.Time { return fixedNow }
	a := NewMockGenerator(NewRand(99), now).Generate(10, 10)
	b := NewMockGenerator(NewRand(99), now).Generate(10, 10)
	for i := range a {
		if *a[i].Lat != *b[i].Lat || *a[i].Lng != *b[i].Lng {
			t.Fatalf("same seed should give same coordinates at %d", i)
		}
	}
}
