package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// Kind classifies an upstream model failure
type Kind string

const (
	// KindAuth means the API key was missing, invalid, or lacked access
	KindAuth Kind = "auth"
	// KindRateLimit means the upstream throttled the request
	KindRateLimit Kind = "rate_limit"
	// KindTransport means the request never produced an upstream answer
	KindTransport Kind = "transport"
	// KindUpstream means the model API returned an error payload
	KindUpstream Kind = "upstream"
)

// Error is a classified upstream model failure. All AI-call failures are
// fatal to the current request and propagate unchanged to the HTTP boundary.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Cause      error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("llm %s error", e.Kind)
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As
func (e *Error) Unwrap() error {
	return e.Cause
}

// Classify categorizes an error from the underlying client into the
// package's taxonomy
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		e := &Error{
			Message:    apiErr.Message,
			StatusCode: apiErr.HTTPStatusCode,
			Cause:      err,
		}
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			e.Kind = KindAuth
		case http.StatusTooManyRequests:
			e.Kind = KindRateLimit
		default:
			e.Kind = KindUpstream
		}
		return e
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		e := &Error{
			Message:    "request failed",
			StatusCode: reqErr.HTTPStatusCode,
			Cause:      err,
		}
		switch reqErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			e.Kind = KindAuth
		case http.StatusTooManyRequests:
			e.Kind = KindRateLimit
		default:
			e.Kind = KindUpstream
		}
		return e
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTransport, Message: "network failure", Cause: err}
	}

	return &Error{Kind: KindTransport, Message: "request failed", Cause: err}
}
