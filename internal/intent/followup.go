package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// FollowUp is a question with numbered options offered after a reply.
type FollowUp struct {
	Question string
	Options  []string
}

var followUps = map[Intent]FollowUp{
	Scholarships: {
		Question: "Which type of scholarship would you like to know more about?",
		Options:  []string{"Merit-based", "Need-based", "Country-specific", "Subject-specific"},
	},
	PartTimeJobs: {
		Question: "What kind of part-time work are you looking for?",
		Options:  []string{"On-campus", "Off-campus", "Remote", "Work-study"},
	},
	Rent: {
		Question: "What type of accommodation do you prefer?",
		Options:  []string{"University dormitory", "Shared apartment", "Private studio", "Homestay"},
	},
	CityLife: {
		Question: "Which part of city life interests you most?",
		Options:  []string{"Public transport", "Food and dining", "Safety", "Nightlife"},
	},
}

var optionPatterns = compileOptions()

func compileOptions() map[Intent][]*regexp.Regexp {
	fold := cases.Fold()
	out := make(map[Intent][]*regexp.Regexp, len(followUps))
	for it, f := range followUps {
		for _, opt := range f.Options {
			out[it] = append(out[it], regexp.MustCompile(`\b`+phrasePattern(fold.String(opt))+`\b`))
		}
	}
	return out
}

// FollowUpFor returns the follow-up question attached to an intent.
func FollowUpFor(it Intent) (FollowUp, bool) {
	f, ok := followUps[it]
	return f, ok
}

// Render formats the question followed by "1. option" lines.
func (f FollowUp) Render() string {
	var b strings.Builder
	b.WriteString(f.Question)
	for i, opt := range f.Options {
		fmt.Fprintf(&b, "\n%d. %s", i+1, opt)
	}
	return b.String()
}

// MatchOption checks whether text picks one of the options offered for
// pending. A reply consisting only of an option number counts, as does any
// whole-phrase, case-insensitive mention of an option label.
func MatchOption(pending Intent, text string) (string, bool) {
	f, ok := followUps[pending]
	if !ok {
		return "", false
	}

	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "."))
	if n, err := strconv.Atoi(trimmed); err == nil && n >= 1 && n <= len(f.Options) {
		return f.Options[n-1], true
	}

	folded := cases.Fold().String(text)
	for i, re := range optionPatterns[pending] {
		if re.MatchString(folded) {
			return f.Options[i], true
		}
	}
	return "", false
}
