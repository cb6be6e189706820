package parser

import (
	"fmt"
	"strings"
)

// MalformedResponseError reports that the model's output could not be turned
// into a valid structured record, naming the fields that failed validation
// when known
type MalformedResponseError struct {
	Fields []string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *MalformedResponseError) Error() string {
	msg := "malformed model response"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if len(e.Fields) > 0 {
		msg += fmt.Sprintf(" (fields: %s)", strings.Join(e.Fields, ", "))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// NewMalformedResponseError builds a MalformedResponseError for the named
// fields
func NewMalformedResponseError(reason string, err error, fields ...string) *MalformedResponseError {
	return &MalformedResponseError{Fields: fields, Reason: reason, Err: err}
}
