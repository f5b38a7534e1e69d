package recommend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/uniadvisor/uniadvisor/internal/profile"
)

// Token budgets per call.
const (
	recommendationTokens = 1500
	topicQueryTokens     = 1000
	generalQueryTokens   = 500
)

const (
	advisorPersona = "You are an educational advisor specialized in global universities. " +
		"Use the user's profile information to provide personalized and detailed recommendations " +
		"according to their Budget, IELTS Score, Country, and course."

	initialPersona = "You are an educational advisor specialized in global universities. " +
		"Use the user's profile information to provide personalized and detailed initial recommendations."

	studyPersona = "You are an educational advisor specialized in global universities. " +
		"Use the user's profile information to provide personalized and detailed study recommendations."
)

const alternativesTemplate = `User's Profile:
%s

Provide alternative universities that closely match the user's profile but might not meet all criteria exactly. Ensure the recommendations are unbiased, ethical, and maintain user privacy. Format the recommendations as follows:

-  Top Recommendation:
  University Name: [Name]
  Location: [Location]
  Program: [ProgramDetails]
  Tuition Fees: [TuitionFees]
  IELTS Requirement: [IELTS]

-  Alternative Recommendations:
  1. University Name: [Name]
     Location: [Location]
     Program: [ProgramDetails]
     Tuition Fees: [TuitionFees]
     IELTS Requirement: [IELTS]
  2. University Name: [Name]
     Location: [Location]
     Program: [ProgramDetails]
     Tuition Fees: [TuitionFees]
     IELTS Requirement: [IELTS]
  3. University Name: [Name]
     Location: [Location]
     Program: [ProgramDetails]
     Tuition Fees: [TuitionFees]
     IELTS Requirement: [IELTS]
  4. University Name: [Name]
     Location: [Location]
     Program: [ProgramDetails]
     Tuition Fees: [TuitionFees]
     IELTS Requirement: [IELTS]`

const initialTemplate = `User's Profile:
%s

Based on the user's profile, provide initial recommendations for universities that closely match the user's preferences.`

const studyTemplate = `User's Profile:
%s

Suggest suitable studies based on the user's preferences and qualifications. Ensure the recommendations are unbiased, ethical, and maintain user privacy. Format the recommendations as follows:

-  Recommended Study:
  Study Name: [Name]
  Reason: [Reason]

Provide a detailed and personalized response.`

const queryTemplate = `User's Profile:
%s

Conversation History:
%s

User's Query: %s

%s`

const conciseInstruction = "As an educational advisor, provide a specific and concise response to the user's query. " +
	"Focus on directly answering the question asked, while leveraging your expertise as a study abroad consultant. " +
	"Ensure the response is unbiased, ethical, and maintains user privacy."

// ProfileText renders the profile as "key: value" lines in form order.
// Empty fields are left out; conversation state is never included.
func ProfileText(p profile.Profile) string {
	fields := []struct{ key, value string }{
		{"student_name", p.StudentName},
		{"highest_education", p.HighestEducation},
		{"other_education", p.OtherEducation},
		{"subject", p.Subject},
		{"ielts_score", formatFloat(p.IELTSScore)},
		{"grades", formatFloat(p.Grades)},
		{"target_country", p.TargetCountry},
		{"study_pursue", p.StudyPursue},
		{"other_study", p.OtherStudy},
		{"budget_in_target_currency", formatFloat(p.Budget)},
		{"currency", p.Currency},
	}

	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		lines = append(lines, f.key+": "+f.value)
	}
	return strings.Join(lines, "\n")
}

// formatFloat prints whole numbers without decimals; zero is left out.
func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func alternativesPrompt(p profile.Profile) string {
	return fmt.Sprintf(alternativesTemplate, ProfileText(p))
}

func initialPrompt(p profile.Profile) string {
	return fmt.Sprintf(initialTemplate, ProfileText(p))
}

func studyPrompt(p profile.Profile) string {
	return fmt.Sprintf(studyTemplate, ProfileText(p))
}

// historyText renders exchanges oldest first.
func historyText(history []profile.Exchange) string {
	if len(history) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, ex := range history {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "User: %s\nAdvisor: %s", ex.Query, ex.Reply)
	}
	return b.String()
}
