package advisor

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniadvisor/uniadvisor/internal/dataset"
	errs "github.com/uniadvisor/uniadvisor/internal/errors"
	"github.com/uniadvisor/uniadvisor/internal/genai"
	"github.com/uniadvisor/uniadvisor/internal/intent"
	"github.com/uniadvisor/uniadvisor/internal/logger"
	"github.com/uniadvisor/uniadvisor/internal/matcher"
	"github.com/uniadvisor/uniadvisor/internal/metrics"
	"github.com/uniadvisor/uniadvisor/internal/profile"
	"github.com/uniadvisor/uniadvisor/internal/ratelimit"
	"github.com/uniadvisor/uniadvisor/internal/recommend"
)

type fakeLLM struct {
	mu       sync.Mutex
	text     string
	err      error
	panics   bool
	requests []genai.Request
}

func (f *fakeLLM) Complete(_ context.Context, req genai.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics {
		panic("provider exploded")
	}
	f.requests = append(f.requests, req)
	return f.text, f.err
}

func (f *fakeLLM) Provider() genai.Provider { return "fake" }

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type staticDatasets struct{ ds *dataset.Dataset }

func (s staticDatasets) Current() *dataset.Dataset { return s.ds }

func universities() *dataset.Dataset {
	return dataset.New("test", []dataset.University{
		{Name: "TU Berlin", Location: "Berlin", ProgramDetails: "Bachelor of Science in Computer Science", TuitionFees: dataset.Some(15000), IELTS: dataset.Some(6.5)},
		{Name: "Expensive U", Location: "Munich", ProgramDetails: "Master of Arts", TuitionFees: dataset.Some(90000), IELTS: dataset.Some(8.5)},
	})
}

type harness struct {
	svc     *Service
	llm     *fakeLLM
	store   *profile.Store
	metrics *metrics.Metrics
}

func newHarness(t *testing.T, limiter *ratelimit.KeyedLimiter) *harness {
	t.Helper()
	llm := &fakeLLM{text: "LLM says hello."}
	store := profile.NewStore()
	m := metrics.New(prometheus.NewRegistry())
	svc := New(Config{
		Store:          store,
		Datasets:       staticDatasets{universities()},
		Matcher:        matcher.New(matcher.Weighted, 5),
		Composer:       recommend.NewComposer(llm, 5),
		Limiter:        limiter,
		Metrics:        m,
		Logger:         logger.NewWithWriter("error", io.Discard),
		MaxQueryLength: 50,
	})
	return &harness{svc: svc, llm: llm, store: store, metrics: m}
}

func submission(id string) Submission {
	return Submission{
		UserID:           id,
		StudentName:      "Asha",
		HighestEducation: "Bachelor",
		Subject:          "Computer Science",
		IELTSScore:       7,
		TargetCountry:    "Germany",
		Budget:           20000,
		StudyIdea:        "decided",
	}
}

func TestSubmitProfile(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ctx := context.Background()

	res := h.svc.SubmitProfile(ctx, submission("u1"))
	require.Equal(t, StatusOK, res.Status)

	p, ok := h.store.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, profile.StudyDecided, p.StudyIdea)

	second := submission("u1")
	second.TargetCountry = "Narnia"
	second.StudentName = ""
	h.svc.SubmitProfile(ctx, second)
	p, _ = h.store.Get("u1")
	assert.Equal(t, "INR", p.Currency)
	assert.Empty(t, p.StudentName)
}

func TestSubmitProfile_RequiresUserID(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)

	res := h.svc.SubmitProfile(context.Background(), submission("  "))
	assert.Equal(t, StatusError, res.Status)
	assert.True(t, errs.IsInvalidInput(res.Err))
	assert.Zero(t, h.store.Len())
}

func TestUnknownUserGetsGuidance(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ctx := context.Background()

	for name, res := range map[string]Result{
		"recommend": h.svc.GetRecommendation(ctx, "ghost"),
		"query":     h.svc.AskQuery(ctx, "ghost", "any scholarships?"),
		"feedback":  h.svc.SubmitFeedback(ctx, "ghost", "nice"),
	} {
		assert.Equal(t, StatusGuidance, res.Status, name)
		assert.Equal(t, GuidanceMessage, res.Reply, name)
	}
	assert.Zero(t, h.llm.calls())
}

func TestGetRecommendation_Blended(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ctx := context.Background()
	h.svc.SubmitProfile(ctx, submission("u1"))

	res := h.svc.GetRecommendation(ctx, "u1")
	require.Equal(t, StatusOK, res.Status, res.Error)
	assert.Contains(t, res.Reply, "LLM says hello.")
	assert.Contains(t, res.Reply, "- University Name: TU Berlin")
	assert.NotContains(t, res.Reply, "Expensive U")

	require.Equal(t, 1, h.llm.calls())
	assert.Equal(t, genai.PurposeInitial, h.llm.requests[0].Purpose)
}

func TestGetRecommendation_FallbackWhenNothingMatches(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ctx := context.Background()

	sub := submission("u1")
	sub.HighestEducation = "Doctorate"
	sub.IELTSScore = 5
	h.svc.SubmitProfile(ctx, sub)

	res := h.svc.GetRecommendation(ctx, "u1")
	require.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "LLM says hello.", res.Reply)
	assert.Equal(t, genai.PurposeFallback, h.llm.requests[0].Purpose)
}

func TestGetRecommendation_StudyNotDecided(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ctx := context.Background()

	sub := submission("u1")
	sub.StudyIdea = "notDecided"
	h.svc.SubmitProfile(ctx, sub)

	res := h.svc.GetRecommendation(ctx, "u1")
	require.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "LLM says hello.", res.Reply)
	assert.Equal(t, genai.PurposeSuggest, h.llm.requests[0].Purpose)
}

func TestGetRecommendation_LLMError(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ctx := context.Background()
	h.svc.SubmitProfile(ctx, submission("u1"))

	h.llm.err = &genai.LLMError{Kind: genai.KindTimeout, Provider: "fake", Err: errors.New("no response within 45s")}
	res := h.svc.GetRecommendation(ctx, "u1")

	assert.Equal(t, StatusError, res.Status)
	assert.Contains(t, res.Error, "no response within 45s")
	assert.Equal(t, genai.KindTimeout, genai.KindOf(res.Err))
	assert.ErrorIs(t, res.Err, errs.ErrTimeout)
	assert.Equal(t, 1, h.llm.calls(), "failures are not retried")
}

func TestAskQuery_RecordsHistoryAndFollowUp(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ctx := context.Background()
	h.svc.SubmitProfile(ctx, submission("u1"))

	res := h.svc.AskQuery(ctx, "u1", "How much is rent in Berlin?")
	require.Equal(t, StatusOK, res.Status)
	f, _ := intent.FollowUpFor(intent.Rent)
	assert.True(t, strings.HasSuffix(res.Reply, f.Render()))

	p, _ := h.store.Get("u1")
	require.Len(t, p.History, 1)
	assert.Equal(t, "How much is rent in Berlin?", p.History[0].Query)
	assert.Equal(t, res.Reply, p.History[0].Reply)
	assert.Equal(t, string(intent.Rent), p.PendingFollowUp)

	res = h.svc.AskQuery(ctx, "u1", "homestay")
	require.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "LLM says hello.", res.Reply)
	assert.Contains(t, h.llm.requests[1].Prompt, `"Homestay"`)
	assert.Contains(t, h.llm.requests[1].Prompt, "User: How much is rent in Berlin?")

	p, _ = h.store.Get("u1")
	assert.Len(t, p.History, 2)
	assert.Empty(t, p.PendingFollowUp)
}

func TestAskQuery_FailureLeavesHistoryUntouched(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ctx := context.Background()
	h.svc.SubmitProfile(ctx, submission("u1"))

	h.llm.err = &genai.LLMError{Kind: genai.KindUnavailable, Err: errors.New("503")}
	res := h.svc.AskQuery(ctx, "u1", "rent?")
	assert.Equal(t, StatusError, res.Status)

	p, _ := h.store.Get("u1")
	assert.Empty(t, p.History)
	assert.Empty(t, p.PendingFollowUp)
}

func TestAskQuery_Validation(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ctx := context.Background()
	h.svc.SubmitProfile(ctx, submission("u1"))

	for _, q := range []string{"", "   ", strings.Repeat("é", 51)} {
		res := h.svc.AskQuery(ctx, "u1", q)
		assert.Equal(t, StatusError, res.Status)
		assert.True(t, errs.IsInvalidInput(res.Err))
	}
	assert.Equal(t, StatusOK, h.svc.AskQuery(ctx, "u1", strings.Repeat("é", 50)).Status)
	assert.Equal(t, 1, h.llm.calls())
}

func TestRateLimit(t *testing.T) {
	t.Parallel()
	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "llm",
		Burst:         2,
		RefillRate:    ratelimit.PerHour(1),
		CleanupPeriod: time.Hour,
	})
	t.Cleanup(limiter.Stop)

	h := newHarness(t, limiter)
	ctx := context.Background()
	h.svc.SubmitProfile(ctx, submission("u1"))
	h.svc.SubmitProfile(ctx, submission("u2"))

	assert.Equal(t, StatusOK, h.svc.GetRecommendation(ctx, "u1").Status)
	assert.Equal(t, StatusOK, h.svc.AskQuery(ctx, "u1", "hi").Status)

	res := h.svc.AskQuery(ctx, "u1", "hi again")
	assert.Equal(t, StatusError, res.Status)
	assert.True(t, errs.IsRateLimitExceeded(res.Err))
	assert.Equal(t, 2, h.llm.calls())

	assert.Equal(t, StatusOK, h.svc.AskQuery(ctx, "u2", "hi").Status, "other users are unaffected")
	assert.Equal(t, StatusOK, h.svc.SubmitFeedback(ctx, "u1", "thanks").Status, "feedback is not limited")
}

func TestPanicBecomesErrorResult(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ctx := context.Background()
	h.svc.SubmitProfile(ctx, submission("u1"))
	h.llm.panics = true

	res := h.svc.GetRecommendation(ctx, "u1")
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, "internal error", res.Error)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "provider exploded")
}

func TestSubmitFeedback(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ctx := context.Background()
	h.svc.SubmitProfile(ctx, submission("u1"))

	require.Equal(t, StatusOK, h.svc.SubmitFeedback(ctx, "u1", " very helpful ").Status)
	require.Equal(t, StatusOK, h.svc.SubmitFeedback(ctx, "u1", "more please").Status)
	assert.Equal(t, StatusError, h.svc.SubmitFeedback(ctx, "u1", "").Status)

	p, _ := h.store.Get("u1")
	assert.Equal(t, []string{"very helpful", "more please"}, p.Feedback)
}
