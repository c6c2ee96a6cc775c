package app

import (
	"slices"
	"testing"

	"counsel_locator/internal/domain"
)

func TestMapPOI(t *testing.T) {
	p := domain.POI{
		ID: 123, Kind: "node", Lat: 24.86, Lng: 67.0,
		Tags: domain.Tags{
			"name":             "Karachi Legal Aid Centre",
			"addr:housenumber": "12",
			"addr:street":      "Court Road",
			"addr:city":        "Karachi",
			"language:ur":      "yes",
			"language:en":      "yes",
			"contact:facebook": "https://facebook.com/klac",
			"description":      "pro bono help for tenants",
		},
	}
	c, ok := mapPOI(p, NewRand(3))
	if !ok {
		t.Fatalf("named POI dropped")
	}
	a := c.rec
	if a.ID != "osm-node-123" || a.Source != domain.SourceOSM {
		t.Fatalf("id/source: %s %s", a.ID, a.Source)
	}
	if a.Location != "Karachi" || a.DetailedLocation != "12 Court Road, Karachi" {
		t.Fatalf("location: %q / %q", a.Location, a.DetailedLocation)
	}
	if !slices.Equal(a.Languages, []string{"en", "ur"}) {
		t.Fatalf("languages: %v", a.Languages)
	}
	if a.SocialMedia["facebook"] == "" {
		t.Fatalf("social media not mapped: %v", a.SocialMedia)
	}
	if a.Rating < 3 || a.Rating >= 5 || a.Cases < 50 || a.Cases > 250 {
		t.Fatalf("synthetic metrics out of range: %v %d", a.Rating, a.Cases)
	}
	if c.text != "Karachi Legal Aid Centre pro bono help for tenants" {
		t.Fatalf("classifier text: %q", c.text)
	}
}

func TestMapPOI_MissingFields(t *testing.T) {
	if _, ok := mapPOI(domain.POI{ID: 1, Kind: "way", Tags: domain.Tags{"amenity": "lawyer"}}, NewRand(1)); ok {
		t.Fatalf("unnamed POI should be dropped")
	}
	c, ok := mapPOI(domain.POI{ID: 2, Kind: "way", Tags: domain.Tags{"name": "Rights Chambers"}}, NewRand(1))
	if !ok {
		t.Fatalf("named POI dropped")
	}
	if c.rec.Location != domain.NotAvailable || c.rec.DetailedLocation != domain.NotAvailable {
		t.Fatalf("missing address should read %q: %+v", domain.NotAvailable, c.rec)
	}
	if c.rec.Languages == nil {
		t.Fatalf("languages must be an empty list, not nil")
	}
}

func TestEnrichAndMinimal(t *testing.T) {
	cl := DefaultClassifier()
	c, _ := mapPOI(domain.POI{ID: 9, Kind: "node", Tags: domain.Tags{"name": "Refugee Legal Aid"}}, NewRand(5))

	a, ok := enrich(cl, c, fixedNow)
	if !ok {
		t.Fatalf("record should not be excluded")
	}
	if !a.Verified || !slices.Equal(a.Specialization, a.PracticeAreas) || a.Reviews == nil {
		t.Fatalf("enriched record: %+v", a)
	}
	if !slices.Contains(a.Specialization, "Immigration Law") || !slices.Contains(a.Specialization, "Legal Aid") {
		t.Fatalf("labels: %v", a.Specialization)
	}

	m := minimal(cl, c, fixedNow)
	if m.Verified || len(m.PracticeAreas) != 0 || len(m.Specialization) == 0 {
		t.Fatalf("minimal record: %+v", m)
	}

	ex, _ := mapPOI(domain.POI{ID: 10, Kind: "node", Tags: domain.Tags{"name": "Patent Attorneys Ltd"}}, NewRand(5))
	if _, ok := enrich(cl, ex, fixedNow); ok {
		t.Fatalf("excluded record should be dropped")
	}
}
