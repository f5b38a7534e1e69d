// Package advisor implements the caller-facing operations: profile
// submission, recommendations, chat queries and feedback.
//
// Every operation returns a Result and never panics; failures become
// StatusError results and unknown users get a guidance reply.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"github.com/uniadvisor/uniadvisor/internal/currency"
	"github.com/uniadvisor/uniadvisor/internal/dataset"
	errs "github.com/uniadvisor/uniadvisor/internal/errors"
	"github.com/uniadvisor/uniadvisor/internal/genai"
	"github.com/uniadvisor/uniadvisor/internal/logger"
	"github.com/uniadvisor/uniadvisor/internal/matcher"
	"github.com/uniadvisor/uniadvisor/internal/metrics"
	"github.com/uniadvisor/uniadvisor/internal/profile"
	"github.com/uniadvisor/uniadvisor/internal/ratelimit"
	"github.com/uniadvisor/uniadvisor/internal/recommend"
	"github.com/uniadvisor/uniadvisor/internal/sentry"
)

// GuidanceMessage is the reply for users who have not submitted a profile.
const GuidanceMessage = "Please provide your profile information first."

const moduleName = "advisor"

// Status is the outcome class of an operation.
type Status string

const (
	StatusOK       Status = "ok"
	StatusGuidance Status = "guidance"
	StatusError    Status = "error"
)

// Result is what every operation returns.
type Result struct {
	Status Status
	Reply  string
	// Error is the message shown to the caller when Status is StatusError.
	Error string
	// Err is the underlying failure, kept for status-code mapping.
	Err error
}

// Datasets serves the active dataset. *dataset.Holder implements it.
type Datasets interface {
	Current() *dataset.Dataset
}

// Submission is a profile as sent by the form.
type Submission struct {
	UserID           string
	StudentName      string
	HighestEducation string
	OtherEducation   string
	Subject          string
	IELTSScore       float64
	TargetCountry    string
	StudyPursue      string
	OtherStudy       string
	Budget           float64
	Grades           float64
	StudyIdea        string
}

// Profile converts the submission, deriving the currency from the target
// country.
func (s Submission) Profile() profile.Profile {
	return profile.Profile{
		ID:               s.UserID,
		StudentName:      s.StudentName,
		HighestEducation: s.HighestEducation,
		OtherEducation:   s.OtherEducation,
		Subject:          s.Subject,
		TargetCountry:    s.TargetCountry,
		IELTSScore:       s.IELTSScore,
		Budget:           s.Budget,
		Currency:         currency.ForCountry(s.TargetCountry),
		Grades:           s.Grades,
		StudyPursue:      s.StudyPursue,
		OtherStudy:       s.OtherStudy,
		StudyIdea:        profile.ParseStudyIdea(s.StudyIdea),
	}
}

// Config holds the Service collaborators. Limiter and Metrics are optional.
type Config struct {
	Store          *profile.Store
	Datasets       Datasets
	Matcher        *matcher.Matcher
	Composer       *recommend.Composer
	Limiter        *ratelimit.KeyedLimiter
	Metrics        *metrics.Metrics
	Logger         *logger.Logger
	MaxQueryLength int
}

// Service wires the profile store, matcher, composer and LLM limiter.
type Service struct {
	store          *profile.Store
	datasets       Datasets
	matcher        *matcher.Matcher
	composer       *recommend.Composer
	limiter        *ratelimit.KeyedLimiter
	metrics        *metrics.Metrics
	logger         *logger.Logger
	maxQueryLength int
}

// New creates a Service.
func New(cfg Config) *Service {
	log := cfg.Logger
	if log == nil {
		log = logger.New("info")
	}
	return &Service{
		store:          cfg.Store,
		datasets:       cfg.Datasets,
		matcher:        cfg.Matcher,
		composer:       cfg.Composer,
		limiter:        cfg.Limiter,
		metrics:        cfg.Metrics,
		logger:         log.WithModule(moduleName),
		maxQueryLength: cfg.MaxQueryLength,
	}
}

// SubmitProfile stores the submission, replacing any earlier profile for
// the same user.
func (s *Service) SubmitProfile(ctx context.Context, sub Submission) (res Result) {
	defer s.recoverPanic(ctx, "submit_profile", &res)

	sub.UserID = strings.TrimSpace(sub.UserID)
	if sub.UserID == "" {
		return invalid(errs.NewValidationError("userId", "is required"))
	}

	s.store.Put(sub.UserID, sub.Profile())
	if s.metrics != nil {
		s.metrics.SetProfilesStored(s.store.Len())
	}
	s.logger.WithField("user_id", sub.UserID).Debug("Profile stored")
	return Result{Status: StatusOK, Reply: "Profile saved."}
}

// GetRecommendation answers with university recommendations, or with
// study suggestions when the student has not decided what to study.
func (s *Service) GetRecommendation(ctx context.Context, userID string) (res Result) {
	defer s.recoverPanic(ctx, "recommend", &res)

	p, ok := s.store.Get(userID)
	if !ok {
		return guidance()
	}
	if !s.allow(userID) {
		return rateLimited()
	}

	var (
		reply recommend.Reply
		err   error
	)
	if p.StudyIdea == profile.StudyNotDecided {
		reply, err = s.composer.SuggestStudies(ctx, p)
	} else {
		matches := s.matcher.Match(p, s.datasets.Current())
		if s.metrics != nil {
			s.metrics.RecordMatches(s.matcher.Policy().Name, len(matches))
		}
		reply, err = s.composer.Compose(ctx, p, matches)
	}

	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = string(genai.KindOf(err))
		}
		s.metrics.RecordRecommendation(string(reply.Strategy), status)
	}
	if err != nil {
		return s.fail(ctx, "recommend", err)
	}

	s.logger.WithField("user_id", userID).
		WithField("strategy", reply.Strategy).
		Info("Recommendation sent")
	return Result{Status: StatusOK, Reply: reply.Text}
}

// AskQuery answers a chat message and records the exchange in the
// user's history.
func (s *Service) AskQuery(ctx context.Context, userID, query string) (res Result) {
	defer s.recoverPanic(ctx, "ask_query", &res)

	p, ok := s.store.Get(userID)
	if !ok {
		return guidance()
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return invalid(errs.NewValidationError("message", "is required"))
	}
	if s.maxQueryLength > 0 && utf8.RuneCountInString(query) > s.maxQueryLength {
		return invalid(errs.NewValidationError("message",
			fmt.Sprintf("must be at most %d characters", s.maxQueryLength)))
	}
	if !s.allow(userID) {
		return rateLimited()
	}

	ans, err := s.composer.Answer(ctx, p, query)
	if s.metrics != nil {
		s.metrics.RecordIntent(string(ans.Intent))
	}
	if err != nil {
		return s.fail(ctx, "ask_query", err)
	}

	err = s.store.Update(userID, func(p *profile.Profile) error {
		p.History = append(p.History, profile.Exchange{Query: query, Reply: ans.Text})
		p.PendingFollowUp = ans.PendingFollowUp
		return nil
	})
	if err != nil {
		// Only possible if the profile vanished mid-request; the answer
		// is still valid.
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to record exchange")
	}

	s.logger.WithField("user_id", userID).
		WithField("intent", ans.Intent).
		WithField("option", ans.Option).
		Debug("Query answered")
	return Result{Status: StatusOK, Reply: ans.Text}
}

// SubmitFeedback appends free-text feedback to the user's profile.
func (s *Service) SubmitFeedback(ctx context.Context, userID, text string) (res Result) {
	defer s.recoverPanic(ctx, "submit_feedback", &res)

	text = strings.TrimSpace(text)
	if text == "" {
		return invalid(errs.NewValidationError("feedback", "is required"))
	}

	if err := s.store.AppendFeedback(userID, text); err != nil {
		if errs.IsUnknownUser(err) {
			return guidance()
		}
		return s.fail(ctx, "submit_feedback", err)
	}
	if s.metrics != nil {
		s.metrics.RecordFeedback()
	}
	return Result{Status: StatusOK, Reply: "Thank you for your feedback!"}
}

func (s *Service) allow(userID string) bool {
	return s.limiter == nil || s.limiter.Allow(userID)
}

func guidance() Result {
	return Result{Status: StatusGuidance, Reply: GuidanceMessage}
}

func invalid(err error) Result {
	return Result{Status: StatusError, Error: err.Error(), Err: err}
}

func rateLimited() Result {
	return Result{
		Status: StatusError,
		Error:  "Too many requests. Please wait a moment and try again.",
		Err:    errs.ErrRateLimitExceeded,
	}
}

// fail logs and reports err and turns it into an error Result carrying the
// underlying message.
func (s *Service) fail(ctx context.Context, op string, err error) Result {
	wrapped := errs.NewWrapper(moduleName, op).Wrap(err, "request failed")

	log := s.logger.WithError(wrapped).WithField("operation", op)
	var llmErr *genai.LLMError
	if errors.As(err, &llmErr) {
		log = log.WithField("llm_kind", llmErr.Kind).WithField("provider", llmErr.Provider)
	}
	if errors.Is(err, context.Canceled) || genai.KindOf(err) == genai.KindCanceled {
		log.Warn("Request canceled")
	} else {
		log.Error("Operation failed")
		sentry.CaptureExceptionWithContext(ctx, moduleName, wrapped)
	}

	return Result{Status: StatusError, Error: err.Error(), Err: wrapped}
}

// recoverPanic converts a panic in an operation into an error Result.
func (s *Service) recoverPanic(ctx context.Context, op string, res *Result) {
	r := recover()
	if r == nil {
		return
	}
	err := fmt.Errorf("panic in %s: %v", op, r)
	s.logger.WithField("operation", op).
		WithField("panic", r).
		WithField("stack", string(debug.Stack())).
		Error("Operation panicked")
	sentry.CaptureExceptionWithContext(ctx, moduleName, err)
	*res = Result{Status: StatusError, Error: "internal error", Err: err}
}
