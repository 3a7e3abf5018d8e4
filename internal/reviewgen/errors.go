package reviewgen

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spacesedan/reviewseed/internal/clients"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAPI
	KindParsing
	KindValidation
	KindRateLimited
	KindAuth
)

func (k ErrorKind) String() string {
	switch k {
	case KindAPI:
		return "API_ERROR"
	case KindParsing:
		return "PARSING_ERROR"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindRateLimited:
		return "RATE_LIMIT"
	case KindAuth:
		return "AUTHENTICATION"
	default:
		return "UNKNOWN"
	}
}

// Retryable is fixed per kind: only transient provider conditions are worth another attempt.
func (k ErrorKind) Retryable() bool {
	return k == KindAPI || k == KindRateLimited
}

type ClassifiedError struct {
	Kind       ErrorKind
	Message    string
	Retryable  bool
	RetryAfter time.Duration
	Cause      error
}

func newError(kind ErrorKind, message string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Kind:      kind,
		Message:   message,
		Retryable: kind.Retryable(),
		Cause:     cause,
	}
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// Classify maps a raw failure onto an ErrorKind. Errors that are already classified pass through.
func Classify(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce
	}

	status := 0
	var retryAfter time.Duration
	msg := err.Error()
	var pe *clients.ProviderError
	if errors.As(err, &pe) {
		status = pe.StatusCode
		retryAfter = pe.RetryAfter
	}

	var out *ClassifiedError
	switch {
	case status == http.StatusServiceUnavailable || strings.Contains(msg, "overloaded"):
		out = newError(KindRateLimited, "provider is temporarily overloaded", err)
	case status == http.StatusUnauthorized || strings.Contains(msg, "API key"):
		out = newError(KindAuth, "invalid or missing provider API key", err)
	case status == http.StatusTooManyRequests || strings.Contains(msg, "rate limit"):
		out = newError(KindRateLimited, "rate limit exceeded", err)
	case status >= 500:
		out = newError(KindAPI, "provider server error", err)
	case status >= 400 && status < 500:
		out = newError(KindValidation, "request validation failed", err)
	case strings.Contains(msg, "JSON") || strings.Contains(msg, "parse"):
		out = newError(KindParsing, "failed to parse provider response", err)
	default:
		out = newError(KindUnknown, msg, err)
	}
	out.RetryAfter = retryAfter
	return out
}
