package domain

import "time"

// NotAvailable is stored in location fields when the source had nothing usable.
const NotAvailable = "not available"

// Record sources.
const (
	SourceOSM    = "osm"
	SourceGoogle = "google"
	SourceMock   = "mock"
)

type Attorney struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Specialization   []string          `json:"specialization"`
	Location         string            `json:"location"`
	DetailedLocation string            `json:"detailedLocation"`
	Rating           float64           `json:"rating"`
	Cases            int               `json:"cases"`
	Languages        []string          `json:"languages"`
	Featured         bool              `json:"featured"`
	Phone            string            `json:"phone,omitempty"`
	Website          string            `json:"website,omitempty"`
	Email            string            `json:"email,omitempty"`
	Address          string            `json:"address,omitempty"`
	Lat              *float64          `json:"lat,omitempty"`
	Lng              *float64          `json:"lng,omitempty"`
	PracticeAreas    []string          `json:"practiceAreas"`
	Reviews          []Review          `json:"reviews"`
	SocialMedia      map[string]string `json:"socialMedia,omitempty"`
	Verified         bool              `json:"verified"`
	LastUpdated      time.Time         `json:"lastUpdated"`
	Source           string            `json:"source"`
	DistanceFromUser *float64          `json:"distanceFromUser,omitempty"`
}

type Review struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
	Source  string  `json:"source"`
	Date    string  `json:"date"`
}

// ClassifierText is the free text a classifier looks at for this record.
func (a Attorney) ClassifierText() string {
	text := a.Name
	for _, s := range a.Specialization {
		text += " " + s
	}
	return text
}

// Clone returns a copy that shares no slices or maps with a.
func (a Attorney) Clone() Attorney {
	out := a
	out.Specialization = append([]string(nil), a.Specialization...)
	out.Languages = append([]string(nil), a.Languages...)
	out.PracticeAreas = append([]string(nil), a.PracticeAreas...)
	out.Reviews = append([]Review(nil), a.Reviews...)
	if a.SocialMedia != nil {
		out.SocialMedia = make(map[string]string, len(a.SocialMedia))
		for k, v := range a.SocialMedia {
			out.SocialMedia[k] = v
		}
	}
	if a.Lat != nil {
		v := *a.Lat
		out.Lat = &v
	}
	if a.Lng != nil {
		v := *a.Lng
		out.Lng = &v
	}
	if a.DistanceFromUser != nil {
		v := *a.DistanceFromUser
		out.DistanceFromUser = &v
	}
	return out
}

func CloneAll(in []Attorney) []Attorney {
	if in == nil {
		return nil
	}
	out := make([]Attorney, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
