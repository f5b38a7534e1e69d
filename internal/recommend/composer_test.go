package recommend

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniadvisor/uniadvisor/internal/dataset"
	"github.com/uniadvisor/uniadvisor/internal/genai"
	"github.com/uniadvisor/uniadvisor/internal/intent"
	"github.com/uniadvisor/uniadvisor/internal/matcher"
	"github.com/uniadvisor/uniadvisor/internal/profile"
)

// fakeLLM records requests and answers with a fixed text or error.
type fakeLLM struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []genai.Request
}

func (f *fakeLLM) Complete(_ context.Context, req genai.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.text, f.err
}

func (f *fakeLLM) Provider() genai.Provider { return "fake" }

func student() profile.Profile {
	return profile.Profile{
		ID:               "u1",
		StudentName:      "Asha",
		HighestEducation: "Bachelor",
		Subject:          "Computer Science",
		TargetCountry:    "Germany",
		IELTSScore:       7,
		Budget:           20000,
		Currency:         "EUR",
	}
}

func TestCompose_FallbackWhenNoMatches(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{text: "Try TU Berlin."}
	reply, err := NewComposer(llm, 5).Compose(context.Background(), student(), nil)
	require.NoError(t, err)

	assert.Equal(t, StrategyFallback, reply.Strategy)
	assert.Equal(t, "Try TU Berlin.", reply.Text)
	require.Len(t, llm.requests, 1)
	req := llm.requests[0]
	assert.Equal(t, genai.PurposeFallback, req.Purpose)
	assert.Equal(t, 1500, req.MaxTokens)
	assert.Contains(t, req.Prompt, "Provide alternative universities")
	assert.Contains(t, req.Prompt, "student_name: Asha")
}

func TestCompose_BlendedKeepsMatchesOutOfPrompt(t *testing.T) {
	t.Parallel()

	matches := []matcher.Result{
		{University: dataset.University{Name: "TUM", Location: "Munich", ProgramDetails: "BSc Informatics", TuitionFees: dataset.Some(3000), IELTS: dataset.Some(6.5)}, Score: 1},
		{University: dataset.University{Name: "RWTH", Location: "Aachen", ProgramDetails: "BSc CS"}, Score: 0.7},
	}
	llm := &fakeLLM{text: "Consider Germany's public universities."}

	reply, err := NewComposer(llm, 5).Compose(context.Background(), student(), matches)
	require.NoError(t, err)
	assert.Equal(t, StrategyBlended, reply.Strategy)

	require.Len(t, llm.requests, 1)
	req := llm.requests[0]
	assert.Equal(t, genai.PurposeInitial, req.Purpose)
	assert.Equal(t, 1500, req.MaxTokens)
	assert.NotContains(t, req.Prompt, "TUM", "dataset matches must never reach the prompt")
	assert.NotContains(t, req.Prompt, "RWTH")

	// Order: profile echo, LLM text, database matches.
	profileAt := strings.Index(reply.Text, "User's Profile:\nstudent_name: Asha")
	llmAt := strings.Index(reply.Text, "Consider Germany's public universities.")
	dbAt := strings.Index(reply.Text, "Additional university recommendations from our database:\n- University Name: TUM")
	require.True(t, profileAt >= 0 && llmAt >= 0 && dbAt >= 0, "reply missing a section:\n%s", reply.Text)
	assert.Less(t, profileAt, llmAt)
	assert.Less(t, llmAt, dbAt)

	assert.True(t, strings.HasSuffix(reply.Text, "- University Name: RWTH\n  Location: Aachen\n  Program: BSc CS\n  Tuition Fees: N/A\n  IELTS Requirement: N/A"))
}

func TestCompose_PropagatesLLMError(t *testing.T) {
	t.Parallel()

	llmErr := &genai.LLMError{Kind: genai.KindTimeout, Provider: "fake", Err: errors.New("slow")}
	c := NewComposer(&fakeLLM{err: llmErr}, 5)

	_, err := c.Compose(context.Background(), student(), nil)
	assert.Equal(t, genai.KindTimeout, genai.KindOf(err))

	_, err = c.Compose(context.Background(), student(), []matcher.Result{{Score: 1}})
	assert.ErrorIs(t, err, llmErr)
}

func TestSuggestStudies(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{text: "Study Data Science."}
	p := student()
	p.StudyIdea = profile.StudyNotDecided

	reply, err := NewComposer(llm, 5).SuggestStudies(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, StrategySuggest, reply.Strategy)
	assert.Equal(t, "Study Data Science.", reply.Text)

	req := llm.requests[0]
	assert.Equal(t, genai.PurposeSuggest, req.Purpose)
	assert.Contains(t, req.Prompt, "Suggest suitable studies")
	assert.Contains(t, req.System, "study recommendations")
}

func TestRenderMatches(t *testing.T) {
	t.Parallel()

	got := RenderMatches([]matcher.Result{
		{University: dataset.University{Name: "A", Location: "L", ProgramDetails: "P", TuitionFees: dataset.Some(25000), IELTS: dataset.Some(6.5)}},
	})
	want := "- University Name: A\n  Location: L\n  Program: P\n  Tuition Fees: 25000\n  IELTS Requirement: 6.5"
	assert.Equal(t, want, got)
	assert.Empty(t, RenderMatches(nil))
}

func TestProfileText(t *testing.T) {
	t.Parallel()

	got := ProfileText(student())
	want := strings.Join([]string{
		"student_name: Asha",
		"highest_education: Bachelor",
		"subject: Computer Science",
		"ielts_score: 7",
		"target_country: Germany",
		"budget_in_target_currency: 20000",
		"currency: EUR",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestAnswer_TopicWithFollowUp(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{text: "Rent in Berlin is about 700 EUR."}
	ans, err := NewComposer(llm, 5).Answer(context.Background(), student(), "Tell me about rent in Berlin")
	require.NoError(t, err)

	assert.Equal(t, intent.Rent, ans.Intent)
	assert.Equal(t, string(intent.Rent), ans.PendingFollowUp)
	f, _ := intent.FollowUpFor(intent.Rent)
	assert.Equal(t, "Rent in Berlin is about 700 EUR.\n\n"+f.Render(), ans.Text)

	req := llm.requests[0]
	assert.Equal(t, intent.Persona(intent.Rent), req.System)
	assert.Equal(t, 1000, req.MaxTokens)
	assert.Equal(t, genai.PurposeQuery, req.Purpose)
	assert.Contains(t, req.Prompt, "User's Query: Tell me about rent in Berlin")
}

func TestAnswer_GeneralIsConcise(t *testing.T) {
	t.Parallel()

	llm := &fakeLLM{text: "Sunny."}
	ans, err := NewComposer(llm, 5).Answer(context.Background(), student(), "What's the weather?")
	require.NoError(t, err)

	assert.Equal(t, intent.General, ans.Intent)
	assert.Empty(t, ans.PendingFollowUp)
	assert.Equal(t, "Sunny.", ans.Text)
	assert.Equal(t, 500, llm.requests[0].MaxTokens)
	assert.Contains(t, llm.requests[0].Prompt, "specific and concise response")
}

func TestAnswer_PicksPendingOption(t *testing.T) {
	t.Parallel()

	p := student()
	p.PendingFollowUp = string(intent.Rent)

	llm := &fakeLLM{text: "Shared flats cost less."}
	ans, err := NewComposer(llm, 5).Answer(context.Background(), p, "2")
	require.NoError(t, err)

	assert.Equal(t, intent.Rent, ans.Intent)
	assert.Equal(t, "Shared apartment", ans.Option)
	assert.Empty(t, ans.PendingFollowUp, "an answered follow-up is not offered again")
	assert.Equal(t, "Shared flats cost less.", ans.Text)
	assert.Contains(t, llm.requests[0].Prompt, `"Shared apartment"`)
}

func TestAnswer_PendingButUnrelatedQuery(t *testing.T) {
	t.Parallel()

	p := student()
	p.PendingFollowUp = string(intent.Rent)

	llm := &fakeLLM{text: "Yes."}
	ans, err := NewComposer(llm, 5).Answer(context.Background(), p, "Any scholarships?")
	require.NoError(t, err)
	assert.Equal(t, intent.Scholarships, ans.Intent)
	assert.Empty(t, ans.Option)
	assert.Equal(t, string(intent.Scholarships), ans.PendingFollowUp)
}

func TestAnswer_HistoryWindow(t *testing.T) {
	t.Parallel()

	p := student()
	for _, q := range []string{"q1", "q2", "q3"} {
		p.History = append(p.History, profile.Exchange{Query: q, Reply: "r-" + q})
	}

	llm := &fakeLLM{text: "ok"}
	_, err := NewComposer(llm, 2).Answer(context.Background(), p, "hello")
	require.NoError(t, err)

	prompt := llm.requests[0].Prompt
	assert.NotContains(t, prompt, "User: q1")
	assert.Contains(t, prompt, "User: q2\nAdvisor: r-q2\nUser: q3\nAdvisor: r-q3")

	_, err = NewComposer(llm, 0).Answer(context.Background(), p, "hello")
	require.NoError(t, err)
	assert.Contains(t, llm.requests[1].Prompt, "Conversation History:\n(none)")
}

func TestAnswer_Error(t *testing.T) {
	t.Parallel()

	llmErr := &genai.LLMError{Kind: genai.KindQuota, Err: errors.New("quota")}
	ans, err := NewComposer(&fakeLLM{err: llmErr}, 5).Answer(context.Background(), student(), "rent?")
	require.ErrorIs(t, err, llmErr)
	assert.Equal(t, intent.Rent, ans.Intent)
	assert.Empty(t, ans.Text)
}
