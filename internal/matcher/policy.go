package matcher

import (
	"fmt"
	"strings"
)

// Criteria records which individual checks a university passed for a
// profile.
type Criteria struct {
	Education bool // profile education level appears in the program details
	Subject   bool // profile subject appears in the program details
	IELTS     bool // profile IELTS meets the requirement (absent requirement = 0)
	Budget    bool // fees fit the budget (absent fees = 0)
	Grades    bool // profile grades meet the requirement (absent requirement = met)
}

// Policy turns Criteria into a score. Weights are integer points out of
// 100 so that sums are exact.
type Policy struct {
	Name string

	Education int
	Subject   int
	IELTS     int
	Budget    int
	Grades    int

	// Threshold in points. A score must exceed it, or reach it when
	// Inclusive is set.
	Threshold int
	Inclusive bool
}

// Weighted is the default policy: education 0.4, IELTS 0.3, budget 0.3,
// keep anything strictly above 0.5.
var Weighted = Policy{
	Name:      "weighted",
	Education: 40,
	IELTS:     30,
	Budget:    30,
	Threshold: 50,
}

// Equal weighs five criteria equally and keeps anything at or above 0.6.
var Equal = Policy{
	Name:      "equal",
	Education: 20,
	Subject:   20,
	IELTS:     20,
	Budget:    20,
	Grades:    20,
	Threshold: 60,
	Inclusive: true,
}

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Weighted.Name:
		return Weighted, nil
	case Equal.Name:
		return Equal, nil
	}
	return Policy{}, fmt.Errorf("unknown match policy %q", name)
}

// points returns the summed weight of the satisfied criteria.
func (p Policy) points(c Criteria) int {
	total := 0
	if c.Education {
		total += p.Education
	}
	if c.Subject {
		total += p.Subject
	}
	if c.IELTS {
		total += p.IELTS
	}
	if c.Budget {
		total += p.Budget
	}
	if c.Grades {
		total += p.Grades
	}
	return total
}

// Score returns the score in [0, 1] for c.
func (p Policy) Score(c Criteria) float64 {
	return float64(p.points(c)) / 100
}

// accepts reports whether points clear the threshold.
func (p Policy) accepts(points int) bool {
	if p.Inclusive {
		return points >= p.Threshold
	}
	return points > p.Threshold
}
