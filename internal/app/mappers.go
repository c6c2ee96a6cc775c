package app

import (
	"math"
	"strings"
	"time"

	"counsel_locator/internal/domain"
)

// candidate is a record on its way through the pipeline, plus the free text
// the classifier should see for it.
type candidate struct {
	rec  domain.Attorney
	text string
}

/********** tiny helpers **********/

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, sep)
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.NotAvailable
	}
	return s
}

// syntheticRating is in [3.0, 5.0) with one decimal.
func syntheticRating(rnd *Rand) float64 {
	return math.Floor(rnd.Between(3, 5)*10) / 10
}

// syntheticCases is in [50, 250].
func syntheticCases(rnd *Rand) int {
	return 50 + rnd.IntN(201)
}

/********** POI mapper **********/

// mapPOI converts an upstream element into a raw record. Elements without a
// name are dropped.
func mapPOI(p domain.POI, rnd *Rand) (candidate, bool) {
	name := p.Tags.Name()
	if name == "" {
		return candidate{}, false
	}

	street := joinNonEmpty(" ", p.Tags.HouseNumber(), p.Tags.Street())
	address := p.Tags.FullAddress()
	if address == "" {
		address = joinNonEmpty(", ", street, p.Tags.City(), p.Tags.Postcode())
	}
	lat, lng := p.Lat, p.Lng

	rec := domain.Attorney{
		ID:               "osm-" + strings.ReplaceAll(p.Key(), "/", "-"),
		Name:             name,
		Location:         orNotAvailable(p.Tags.City()),
		DetailedLocation: orNotAvailable(address),
		Rating:           syntheticRating(rnd),
		Cases:            syntheticCases(rnd),
		Languages:        p.Tags.Languages(),
		Phone:            p.Tags.Phone(),
		Website:          p.Tags.Website(),
		Email:            p.Tags.Email(),
		Address:          address,
		Lat:              &lat,
		Lng:              &lng,
		SocialMedia:      p.Tags.SocialMedia(),
		Source:           domain.SourceOSM,
	}
	if rec.Languages == nil {
		rec.Languages = []string{}
	}
	return candidate{rec: rec, text: joinNonEmpty(" ", name, p.Tags.Description())}, true
}

// fromDirectory wraps a stored record for re-classification. Stored featured
// flags belong to an older result set.
func fromDirectory(a domain.Attorney) candidate {
	rec := a.Clone()
	rec.Featured = false
	rec.DistanceFromUser = nil
	return candidate{rec: rec, text: a.ClassifierText()}
}

/********** enrichment **********/

// enrich classifies c and fills the enrichment fields. It reports false when
// the classifier excluded the record.
func enrich(cl *Classifier, c candidate, now time.Time) (domain.Attorney, bool) {
	labels := cl.Classify(c.rec.ID, c.text)
	if len(labels) == 0 {
		return domain.Attorney{}, false
	}
	a := c.rec
	a.Specialization = labels
	a.PracticeAreas = append([]string(nil), labels...)
	if a.Reviews == nil {
		a.Reviews = []domain.Review{}
	}
	if a.Languages == nil {
		a.Languages = []string{}
	}
	a.Verified = true
	a.LastUpdated = now
	return a, true
}

// minimal is the cheap path used when enrichment is disabled: no
// classification cost beyond the deterministic fallback bundle.
func minimal(cl *Classifier, c candidate, now time.Time) domain.Attorney {
	a := c.rec
	if len(a.Specialization) == 0 {
		a.Specialization = cl.Fallback(a.ID)
	}
	a.PracticeAreas = []string{}
	a.Reviews = []domain.Review{}
	a.SocialMedia = nil
	if a.Languages == nil {
		a.Languages = []string{}
	}
	a.Verified = false
	a.LastUpdated = now
	return a
}
