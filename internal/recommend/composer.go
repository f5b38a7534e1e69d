// Package recommend turns profiles, dataset matches and questions into
// advisor replies backed by an LLM.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/uniadvisor/uniadvisor/internal/genai"
	"github.com/uniadvisor/uniadvisor/internal/intent"
	"github.com/uniadvisor/uniadvisor/internal/matcher"
	"github.com/uniadvisor/uniadvisor/internal/profile"
	"github.com/uniadvisor/uniadvisor/internal/sliceutil"
)

// Strategy names how a recommendation reply was produced.
type Strategy string

const (
	// StrategyFallback asks the LLM for alternatives because nothing matched.
	StrategyFallback Strategy = "fallback"
	// StrategyBlended combines LLM text with rendered dataset matches.
	StrategyBlended Strategy = "blended"
	// StrategySuggest suggests fields of study; the dataset is not used.
	StrategySuggest Strategy = "suggest"
)

// Reply is a finished recommendation.
type Reply struct {
	Text     string
	Strategy Strategy
}

// Answer is a finished chat reply plus the conversation state to store.
type Answer struct {
	Text   string
	Intent intent.Intent
	// Option is the follow-up option the query picked, if any.
	Option string
	// PendingFollowUp is the intent whose follow-up question was appended
	// to Text, or empty.
	PendingFollowUp string
}

// Composer builds prompts and calls the LLM. It holds no per-user state.
type Composer struct {
	llm           genai.Completer
	historyWindow int
}

// NewComposer creates a Composer. historyWindow is the number of most
// recent exchanges included in chat prompts.
func NewComposer(llm genai.Completer, historyWindow int) *Composer {
	return &Composer{llm: llm, historyWindow: max(historyWindow, 0)}
}

// Compose produces a recommendation. With no matches it asks the LLM for
// alternatives. Otherwise it asks the LLM for profile-only suggestions and
// appends the matches rendered from the dataset; matches never enter a
// prompt.
func (c *Composer) Compose(ctx context.Context, p profile.Profile, matches []matcher.Result) (Reply, error) {
	if len(matches) == 0 {
		slog.DebugContext(ctx, "no dataset matches, asking for alternatives")
		text, err := c.llm.Complete(ctx, genai.Request{
			System:    advisorPersona,
			Prompt:    alternativesPrompt(p),
			MaxTokens: recommendationTokens,
			Purpose:   genai.PurposeFallback,
		})
		if err != nil {
			return Reply{Strategy: StrategyFallback}, err
		}
		return Reply{Text: text, Strategy: StrategyFallback}, nil
	}

	initial, err := c.llm.Complete(ctx, genai.Request{
		System:    initialPersona,
		Prompt:    initialPrompt(p),
		MaxTokens: recommendationTokens,
		Purpose:   genai.PurposeInitial,
	})
	if err != nil {
		return Reply{Strategy: StrategyBlended}, err
	}

	text := fmt.Sprintf("User's Profile:\n%s\n"+
		"Based on the user's profile, here are some personalized university recommendations:\n\n"+
		"%s\n\n"+
		"Additional university recommendations from our database:\n%s",
		ProfileText(p), initial, RenderMatches(matches))
	return Reply{Text: text, Strategy: StrategyBlended}, nil
}

// SuggestStudies suggests fields of study for students who have not chosen
// one yet. The dataset is not consulted.
func (c *Composer) SuggestStudies(ctx context.Context, p profile.Profile) (Reply, error) {
	text, err := c.llm.Complete(ctx, genai.Request{
		System:    studyPersona,
		Prompt:    studyPrompt(p),
		MaxTokens: recommendationTokens,
		Purpose:   genai.PurposeSuggest,
	})
	if err != nil {
		return Reply{Strategy: StrategySuggest}, err
	}
	return Reply{Text: text, Strategy: StrategySuggest}, nil
}

// Answer replies to a free-text question.
//
// When the profile has a pending follow-up and the query picks one of its
// options, the answer focuses on that option and no new follow-up is
// offered. Otherwise the query is classified and, if its intent has a
// follow-up question, the question is appended to the reply.
func (c *Composer) Answer(ctx context.Context, p profile.Profile, query string) (Answer, error) {
	var (
		it     intent.Intent
		option string
	)
	if pending, ok := intent.Parse(p.PendingFollowUp); ok {
		if opt, picked := intent.MatchOption(pending, query); picked {
			it, option = pending, opt
		}
	}
	if option == "" {
		it = intent.Classify(query)
	}

	persona := intent.Persona(it)
	instruction := persona
	tokens := topicQueryTokens
	switch {
	case option != "":
		instruction = fmt.Sprintf("%s The user picked %q from your previous follow-up question. Focus the answer on that option.", persona, option)
	case it == intent.General:
		instruction = conciseInstruction
		tokens = generalQueryTokens
	}

	history := sliceutil.Tail(p.History, c.historyWindow)
	prompt := fmt.Sprintf(queryTemplate, ProfileText(p), historyText(history), query, instruction)

	text, err := c.llm.Complete(ctx, genai.Request{
		System:    persona,
		Prompt:    prompt,
		MaxTokens: tokens,
		Purpose:   genai.PurposeQuery,
	})
	if err != nil {
		return Answer{Intent: it, Option: option}, err
	}

	ans := Answer{Text: text, Intent: it, Option: option}
	if option == "" {
		if f, ok := intent.FollowUpFor(it); ok {
			ans.Text += "\n\n" + f.Render()
			ans.PendingFollowUp = string(it)
		}
	}
	return ans, nil
}

// RenderMatches formats matches as fixed blocks, one per university, in
// rank order. Absent numbers print as N/A.
func RenderMatches(matches []matcher.Result) string {
	blocks := make([]string, len(matches))
	for i, m := range matches {
		u := m.University
		blocks[i] = fmt.Sprintf("- University Name: %s\n  Location: %s\n  Program: %s\n  Tuition Fees: %s\n  IELTS Requirement: %s",
			u.Name, u.Location, u.ProgramDetails, u.TuitionFees, u.IELTS)
	}
	return strings.Join(blocks, "\n")
}
