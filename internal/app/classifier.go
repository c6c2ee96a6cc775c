package app

import (
	"hash/fnv"
	"strings"

	"golang.org/x/text/cases"
)

// Predicate reports whether case-folded text satisfies a rule.
type Predicate func(text string) bool

// AnyOf matches when at least one keyword occurs in the text.
func AnyOf(keywords ...string) Predicate {
	return func(text string) bool {
		for _, k := range keywords {
			if strings.Contains(text, k) {
				return true
			}
		}
		return false
	}
}

// AllOf matches when every keyword occurs in the text.
func AllOf(keywords ...string) Predicate {
	return func(text string) bool {
		for _, k := range keywords {
			if !strings.Contains(text, k) {
				return false
			}
		}
		return true
	}
}

type Rule struct {
	Name   string
	Match  Predicate
	Labels []string
}

// DefaultExclusions are practices that are definitely not civil-rights work.
var DefaultExclusions = []string{
	"tax", "trademark", "patent", "intellectual property",
	"corporate", "business", "commercial", "banking", "finance",
	"real estate", "property",
	"registration", "documentation", "document agency", "visa agency",
}

// DefaultRules is evaluated in order; a record collects the labels of every
// rule it matches.
var DefaultRules = []Rule{
	{Name: "immigration", Match: AnyOf("immigration", "asylum", "refugee"), Labels: []string{"Immigration Law", "Asylum & Refugee Law"}},
	{Name: "women", Match: AnyOf("women", "woman", "marriage", "divorce", "khula", "family"), Labels: []string{"Women's Rights"}},
	{Name: "family", Match: AnyOf("family", "marriage", "divorce"), Labels: []string{"Family Law"}},
	{Name: "police", Match: AllOf("police", "misconduct"), Labels: []string{"Police Misconduct"}},
	{Name: "civil-rights", Match: AnyOf("civil rights", "civil liberties"), Labels: []string{"Civil Rights Law"}},
	{Name: "human-rights", Match: AnyOf("human rights"), Labels: []string{"Human Rights"}},
	{Name: "constitutional", Match: AnyOf("constitution"), Labels: []string{"Constitutional Law"}},
	{Name: "discrimination", Match: AnyOf("discrimination", "equality", "equal rights"), Labels: []string{"Discrimination Law"}},
	{Name: "labor", Match: AnyOf("labor", "labour", "employment", "worker"), Labels: []string{"Labor & Employment Rights"}},
	{Name: "criminal", Match: AnyOf("criminal", "defense", "defence", "bail"), Labels: []string{"Criminal Defense"}},
	{Name: "minority", Match: AnyOf("minority", "minorities", "religious", "blasphemy"), Labels: []string{"Minority Rights"}},
	{Name: "child", Match: AnyOf("child", "juvenile"), Labels: []string{"Child Rights"}},
	{Name: "housing", Match: AnyOf("housing", "tenant", "eviction"), Labels: []string{"Housing Rights"}},
	{Name: "disability", Match: AnyOf("disability", "disabled"), Labels: []string{"Disability Rights"}},
	{Name: "legal-aid", Match: AnyOf("legal aid", "pro bono"), Labels: []string{"Legal Aid"}},
}

// DefaultFallbackBundles spreads unmatched records over varied labels.
var DefaultFallbackBundles = [][]string{
	{"Civil Rights Law", "Human Rights"},
	{"Constitutional Law"},
	{"Criminal Defense", "Civil Rights Law"},
	{"Immigration Law"},
	{"Women's Rights", "Family Law"},
	{"Labor & Employment Rights"},
	{"Police Misconduct", "Civil Rights Law"},
	{"Minority Rights", "Human Rights"},
}

// Classifier infers practice-area labels from free text.
type Classifier struct {
	exclude  Predicate
	rules    []Rule
	fallback [][]string
}

func NewClassifier(rules []Rule, exclusions []string, fallback [][]string) *Classifier {
	if len(fallback) == 0 {
		fallback = DefaultFallbackBundles
	}
	return &Classifier{exclude: AnyOf(exclusions...), rules: rules, fallback: fallback}
}

func DefaultClassifier() *Classifier {
	return NewClassifier(DefaultRules, DefaultExclusions, DefaultFallbackBundles)
}

func fold(s string) string { return cases.Fold().String(s) }

// Excluded reports whether text names a practice we never list.
func (c *Classifier) Excluded(text string) bool {
	return c.exclude(fold(text))
}

// Match returns the labels of every matching rule, in rule order, without
// duplicates. Exclusion is not considered.
func (c *Classifier) Match(text string) []string {
	return c.match(fold(text))
}

func (c *Classifier) match(folded string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, r := range c.rules {
		if !r.Match(folded) {
			continue
		}
		for _, l := range r.Labels {
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	return out
}

// Classify returns nil when the text is excluded. Otherwise it returns the
// matched labels, or a fallback bundle chosen by hashing id.
func (c *Classifier) Classify(id, text string) []string {
	folded := fold(text)
	if c.exclude(folded) {
		return nil
	}
	if labels := c.match(folded); len(labels) > 0 {
		return labels
	}
	return c.Fallback(id)
}

// Fallback picks a bundle deterministically from id.
func (c *Classifier) Fallback(id string) []string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	bundle := c.fallback[int(h.Sum32()%uint32(len(c.fallback)))]
	return append([]string(nil), bundle...)
}
