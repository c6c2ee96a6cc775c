package domain

import (
	"sort"
	"strconv"
	"strings"
)

// POI is a single point of interest returned by the geodata API.
type POI struct {
	ID   int64
	Kind string // node|way|relation
	Lat  float64
	Lng  float64
	Tags Tags
}

// Key is unique across element kinds ("node/123").
func (p POI) Key() string {
	return p.Kind + "/" + strconv.FormatInt(p.ID, 10)
}

// Tags is the free-text tag map carried by an upstream element.
type Tags map[string]string

func (t Tags) first(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(t[k]); v != "" {
			return v
		}
	}
	return ""
}

func (t Tags) Name() string        { return t.first("name", "name:en", "official_name", "operator") }
func (t Tags) Phone() string       { return t.first("phone", "contact:phone") }
func (t Tags) Website() string     { return t.first("website", "contact:website", "url") }
func (t Tags) Email() string       { return t.first("email", "contact:email") }
func (t Tags) Street() string      { return t.first("addr:street") }
func (t Tags) HouseNumber() string { return t.first("addr:housenumber") }
func (t Tags) City() string        { return t.first("addr:city", "addr:town", "addr:suburb") }
func (t Tags) Postcode() string    { return t.first("addr:postcode") }
func (t Tags) FullAddress() string { return t.first("addr:full") }
func (t Tags) Description() string { return t.first("description", "description:en") }

// Languages lists "language:xx=yes" tags as language codes, sorted.
func (t Tags) Languages() []string {
	var out []string
	for k, v := range t {
		if code, ok := strings.CutPrefix(k, "language:"); ok && v == "yes" && code != "" {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}

// SocialMedia collects contact:<network> profile links.
func (t Tags) SocialMedia() map[string]string {
	var out map[string]string
	for _, network := range []string{"facebook", "twitter", "instagram", "linkedin", "youtube"} {
		if v := t.first("contact:"+network, network); v != "" {
			if out == nil {
				out = map[string]string{}
			}
			out[network] = v
		}
	}
	return out
}
