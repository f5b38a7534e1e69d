// Package matcher scores universities against a student profile and keeps
// the best candidates.
package matcher

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/uniadvisor/uniadvisor/internal/dataset"
	"github.com/uniadvisor/uniadvisor/internal/profile"
)

// DefaultLimit is the number of matches returned when none is configured.
const DefaultLimit = 5

// Result is one university that cleared the policy threshold.
type Result struct {
	University dataset.University
	Score      float64
	Criteria   Criteria
}

// Matcher applies a Policy to a dataset. It holds no mutable state and is
// safe for concurrent use.
type Matcher struct {
	policy Policy
	limit  int
}

// New creates a Matcher. A non-positive limit means DefaultLimit.
func New(policy Policy, limit int) *Matcher {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Matcher{policy: policy, limit: limit}
}

// Policy returns the active policy.
func (m *Matcher) Policy() Policy {
	return m.policy
}

// Match scores every row of ds against p and returns at most the
// configured number of results, best first. Rows with equal scores keep
// dataset order. An empty dataset or no qualifying row gives nil.
func (m *Matcher) Match(p profile.Profile, ds *dataset.Dataset) []Result {
	if ds.Len() == 0 {
		return nil
	}

	// cases.Caser is not safe for concurrent use; one per call.
	fold := cases.Fold()
	education := fold.String(p.Education())
	subject := fold.String(p.Subject)

	var results []Result
	for _, u := range ds.All() {
		program := fold.String(u.ProgramDetails)
		c := Criteria{
			Education: strings.Contains(program, education),
			Subject:   subject != "" && strings.Contains(program, subject),
			IELTS:     p.IELTSScore >= u.IELTS.Or(0),
			Budget:    u.TuitionFees.Or(0) <= p.Budget,
			Grades:    !u.Grades.Valid || p.Grades >= u.Grades.Value,
		}

		points := m.policy.points(c)
		if !m.policy.accepts(points) {
			continue
		}
		results = append(results, Result{
			University: u,
			Score:      float64(points) / 100,
			Criteria:   c,
		})
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(results) > m.limit {
		results = results[:m.limit]
	}
	return results
}
