package genai

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"

	errs "github.com/uniadvisor/uniadvisor/internal/errors"
)

// Kind classifies an LLM failure.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindRateLimit   Kind = "rate_limit"
	KindQuota       Kind = "quota"
	KindAuth        Kind = "auth"
	KindBadRequest  Kind = "bad_request"
	KindUnavailable Kind = "unavailable"
	KindMalformed   Kind = "malformed"
	KindCanceled    Kind = "canceled"
	KindUnknown     Kind = "unknown"
)

// ErrEmptyResponse is returned when the provider answered without any text.
var ErrEmptyResponse = errors.New("empty completion")

// LLMError is the single error type returned by Completer implementations.
type LLMError struct {
	Kind       Kind
	Provider   Provider
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *LLMError) Error() string {
	msg := string(e.Provider) + " " + string(e.Kind) + ": " + e.Err.Error()
	if e.StatusCode > 0 {
		msg += " (status: " + strconv.Itoa(e.StatusCode) + ")"
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *LLMError) Unwrap() error {
	return e.Err
}

// Is lets timeouts match errs.ErrTimeout and rate limits match
// errs.ErrRateLimitExceeded.
func (e *LLMError) Is(target error) bool {
	switch target {
	case errs.ErrTimeout:
		return e.Kind == KindTimeout
	case errs.ErrRateLimitExceeded:
		return e.Kind == KindRateLimit
	}
	return false
}

// KindOf returns the Kind of err, or KindUnknown if err is not an LLMError.
func KindOf(err error) Kind {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Kind
	}
	return KindUnknown
}

// WrapError converts a provider error into an *LLMError. An existing
// LLMError is returned unchanged.
func WrapError(err error, provider Provider) error {
	if err == nil {
		return nil
	}
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr
	}
	status := statusCode(err)
	return &LLMError{
		Kind:       classify(err, status),
		Provider:   provider,
		StatusCode: status,
		Err:        err,
	}
}

// statusCode extracts the HTTP status from either SDK's error type.
func statusCode(err error) int {
	var oaiErr *openai.Error
	if errors.As(err, &oaiErr) {
		return oaiErr.StatusCode
	}
	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return 0
}

// classify determines the Kind from the context, status code and message,
// in that order.
func classify(err error, status int) Kind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, ErrEmptyResponse):
		return KindMalformed
	}

	msg := strings.ToLower(err.Error())
	quota := containsAny(msg, "quota", "daily limit", "monthly limit", "billing", "insufficient_quota")

	switch {
	case status == http.StatusTooManyRequests:
		if quota {
			return KindQuota
		}
		return KindRateLimit
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 500 && status < 600:
		return KindUnavailable
	case status >= 400 && status < 500:
		return KindBadRequest
	}

	switch {
	case quota:
		return KindQuota
	case containsAny(msg, "rate limit", "too many requests", "resource_exhausted"):
		return KindRateLimit
	case containsAny(msg, "unauthorized", "unauthenticated", "invalid api key", "permission denied"):
		return KindAuth
	case containsAny(msg, "timeout", "deadline"):
		return KindTimeout
	case containsAny(msg, "unavailable", "overloaded", "bad gateway", "internal server error", "connection refused"):
		return KindUnavailable
	case containsAny(msg, "invalid", "bad request", "malformed"):
		return KindBadRequest
	}
	return KindUnknown
}

// containsAny checks if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
