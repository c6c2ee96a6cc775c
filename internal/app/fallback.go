package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"counsel_locator/internal/domain"
)

// MockCount is the size of every fallback result set.
const MockCount = 5

// mockJitter is the max coordinate offset, in degrees, applied to mocks.
const mockJitter = 0.005

type mockProfile struct {
	name      string
	areas     []string
	rating    float64
	cases     int
	languages []string
	street    string
	reviews   []domain.Review
}

var mockProfiles = [MockCount]mockProfile{
	{
		name:      "Justice Legal Aid Associates",
		areas:     []string{"Civil Rights Law", "Human Rights"},
		rating:    4.8,
		cases:     210,
		languages: []string{"English", "Urdu"},
		street:    "12 Court Road",
		reviews: []domain.Review{
			{Rating: 5, Comment: "Took my case when nobody else would.", Source: "community"},
			{Rating: 4.5, Comment: "Clear advice and fast follow-up.", Source: "community"},
		},
	},
	{
		name:      "Women's Rights Legal Clinic",
		areas:     []string{"Women's Rights", "Family Law"},
		rating:    4.7,
		cases:     180,
		languages: []string{"English", "Urdu", "Sindhi"},
		street:    "45 Clinic Street",
		reviews: []domain.Review{
			{Rating: 5, Comment: "Supportive through a difficult khula process.", Source: "community"},
		},
	},
	{
		name:      "Constitutional Rights Chambers",
		areas:     []string{"Constitutional Law", "Civil Rights Law"},
		rating:    4.6,
		cases:     150,
		languages: []string{"English"},
		street:    "3 High Court Avenue",
		reviews: []domain.Review{
			{Rating: 4.5, Comment: "Knows petition procedure inside out.", Source: "community"},
		},
	},
	{
		name:      "Migrant & Refugee Defense Center",
		areas:     []string{"Immigration Law", "Asylum & Refugee Law"},
		rating:    4.5,
		cases:     120,
		languages: []string{"English", "Pashto", "Dari"},
		street:    "88 Harbor Lane",
		reviews: []domain.Review{
			{Rating: 4.5, Comment: "Helped our family with asylum paperwork.", Source: "community"},
		},
	},
	{
		name:      "Police Accountability Law Office",
		areas:     []string{"Police Misconduct", "Criminal Defense"},
		rating:    4.4,
		cases:     95,
		languages: []string{"English", "Punjabi"},
		street:    "7 Station Road",
		reviews: []domain.Review{
			{Rating: 4, Comment: "Persistent and honest about the odds.", Source: "community"},
		},
	},
}

// MockGenerator synthesizes plausible records near a point so callers never
// see an empty list.
type MockGenerator struct {
	rnd *Rand
	now func() time.Time
}

func NewMockGenerator(rnd *Rand, now func() time.Time) *MockGenerator {
	if now == nil {
		now = time.Now
	}
	return &MockGenerator{rnd: rnd, now: now}
}

func (g *MockGenerator) Generate(lat, lng float64) []domain.Attorney {
	now := g.now().UTC()
	area := domain.CacheKey(lat, lng, 0, domain.DefaultKeyPrecision)
	out := make([]domain.Attorney, 0, MockCount)
	for i, p := range mockProfiles {
		la := lat + g.rnd.Between(-mockJitter, mockJitter)
		ln := lng + g.rnd.Between(-mockJitter, mockJitter)
		reviews := make([]domain.Review, len(p.reviews))
		for j, r := range p.reviews {
			r.Date = now.AddDate(0, 0, -7*(j+1)).Format(time.DateOnly)
			reviews[j] = r
		}
		out = append(out, domain.Attorney{
			ID:               "mock-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", area, i))).String(),
			Name:             p.name,
			Specialization:   append([]string(nil), p.areas...),
			PracticeAreas:    append([]string(nil), p.areas...),
			Location:         "Near your location",
			DetailedLocation: p.street,
			Address:          p.street,
			Rating:           p.rating,
			Cases:            p.cases,
			Languages:        append([]string(nil), p.languages...),
			Featured:         i < 3,
			Lat:              &la,
			Lng:              &ln,
			Reviews:          reviews,
			Verified:         true,
			LastUpdated:      now,
			Source:           domain.SourceMock,
		})
	}
	return out
}
