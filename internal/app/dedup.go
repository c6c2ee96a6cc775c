package app

import (
	"strings"

	"counsel_locator/internal/domain"
)

// DefaultDuplicateThreshold is the name similarity above which two records
// are considered the same office.
const DefaultDuplicateThreshold = 0.8

type Deduplicator struct {
	Threshold float64
}

func NewDeduplicator(threshold float64) *Deduplicator {
	if threshold <= 0 {
		threshold = DefaultDuplicateThreshold
	}
	return &Deduplicator{Threshold: threshold}
}

// Dedupe keeps the first occurrence of each office. A record is dropped when
// its id was already kept or its name is more than Threshold similar to a
// kept name.
func (d *Deduplicator) Dedupe(in []domain.Attorney) []domain.Attorney {
	out := make([]domain.Attorney, 0, len(in))
	kept := make([][]string, 0, len(in))
	ids := make(map[string]struct{}, len(in))

	for _, a := range in {
		if _, dup := ids[a.ID]; dup {
			continue
		}
		words := nameWords(a.Name)
		dup := false
		for _, other := range kept {
			if similarity(words, other) > d.Threshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		ids[a.ID] = struct{}{}
		kept = append(kept, words)
		out = append(out, a)
	}
	return out
}

// Similarity scores name a against name b in [0, 1].
func Similarity(a, b string) float64 {
	return similarity(nameWords(a), nameWords(b))
}

func similarity(a, b []string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	matches := 0
	for _, w := range a {
		for _, o := range b {
			if strings.Contains(o, w) || strings.Contains(w, o) {
				matches++
				break
			}
		}
	}
	return float64(matches) / float64(longest)
}

func nameWords(name string) []string {
	return strings.Fields(fold(name))
}
