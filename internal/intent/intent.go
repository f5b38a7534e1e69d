// Package intent classifies free-text questions into a fixed set of topics
// using keyword rules, and maps each topic to an advisor persona.
package intent

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Intent is a query topic.
type Intent string

const (
	Scholarships          Intent = "scholarships"
	AdmissionRequirements Intent = "admission_requirements"
	CulturalDifferences   Intent = "cultural_differences"
	PartTimeJobs          Intent = "part_time_jobs"
	FullTimeJobs          Intent = "full_time_jobs"
	Rent                  Intent = "rent"
	CityLife              Intent = "city_life"
	Internships           Intent = "internships"
	General               Intent = "general"
)

// rule pairs an intent with its keyword phrases. Rules are checked in
// slice order and the first hit wins.
type rule struct {
	intent   Intent
	keywords []string
	re       *regexp.Regexp
}

var rules = compile([]rule{
	{intent: Scholarships, keywords: []string{"scholarship", "financial aid", "funding", "bursary"}},
	{intent: AdmissionRequirements, keywords: []string{"admission requirement", "entry requirement", "eligibility", "criteria"}},
	{intent: CulturalDifferences, keywords: []string{"culture", "cultural difference", "tradition", "custom"}},
	{intent: PartTimeJobs, keywords: []string{"part-time job", "part time job", "part-time work", "part time work", "side job"}},
	{intent: FullTimeJobs, keywords: []string{"full-time job", "full time job", "career", "employment"}},
	{intent: Rent, keywords: []string{"rent", "housing cost", "accommodation cost", "living cost"}},
	{intent: CityLife, keywords: []string{"city life", "urban life", "local life", "city experience"}},
	{intent: Internships, keywords: []string{"internship", "intern"}},
})

// compile builds one whole-phrase pattern per rule. Phrases match at word
// boundaries, tolerate a plural suffix and any run of whitespace between
// words.
func compile(rs []rule) []rule {
	for i := range rs {
		alts := make([]string, len(rs[i].keywords))
		for j, kw := range rs[i].keywords {
			alts[j] = phrasePattern(kw)
		}
		rs[i].re = regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)(?:e?s)?\b`)
	}
	return rs
}

func phrasePattern(phrase string) string {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, `\s+`)
}

// Classify returns the first intent whose keywords occur in text, or
// General.
func Classify(text string) Intent {
	folded := cases.Fold().String(text)
	for _, r := range rules {
		if r.re.MatchString(folded) {
			return r.intent
		}
	}
	return General
}

// All returns every intent in classification order, General last.
func All() []Intent {
	out := make([]Intent, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.intent)
	}
	return append(out, General)
}

// Parse maps a stored intent name back to an Intent.
func Parse(name string) (Intent, bool) {
	for _, it := range All() {
		if string(it) == name {
			return it, true
		}
	}
	return "", false
}
