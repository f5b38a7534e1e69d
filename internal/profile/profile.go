// Package profile holds the in-memory student profiles and their
// conversation state.
package profile

import (
	"slices"
	"strings"
)

// StudyIdea records whether the student already knows what to study.
type StudyIdea string

const (
	StudyDecided    StudyIdea = "decided"
	StudyNotDecided StudyIdea = "notDecided"
)

// ParseStudyIdea maps form values onto a StudyIdea. Anything other than
// "notDecided" (case-insensitive) counts as decided.
func ParseStudyIdea(raw string) StudyIdea {
	if strings.EqualFold(strings.TrimSpace(raw), string(StudyNotDecided)) {
		return StudyNotDecided
	}
	return StudyDecided
}

// Exchange is one query and the reply sent back for it.
type Exchange struct {
	Query string
	Reply string
}

// Profile is everything known about one student.
type Profile struct {
	ID               string
	StudentName      string
	HighestEducation string
	OtherEducation   string
	Subject          string
	TargetCountry    string
	IELTSScore       float64
	Budget           float64
	Currency         string
	Grades           float64
	StudyPursue      string
	OtherStudy       string
	StudyIdea        StudyIdea

	History  []Exchange
	Feedback []string

	// PendingFollowUp is the intent whose follow-up question was appended
	// to the last reply, or empty.
	PendingFollowUp string
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	p.History = slices.Clone(p.History)
	p.Feedback = slices.Clone(p.Feedback)
	return p
}

// Education returns the education level used for matching. "Other" on the
// form defers to the free-text field.
func (p Profile) Education() string {
	if strings.EqualFold(p.HighestEducation, "other") && p.OtherEducation != "" {
		return p.OtherEducation
	}
	return p.HighestEducation
}

// Study returns the intended field of study, preferring the free-text entry.
func (p Profile) Study() string {
	if p.OtherStudy != "" {
		return p.OtherStudy
	}
	return p.StudyPursue
}
