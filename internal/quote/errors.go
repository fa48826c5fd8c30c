package quote

import (
	"errors"
	"fmt"
)

// ErrMalformedQuote matches every error returned by Normalize and Parse.
var ErrMalformedQuote = errors.New("malformed quote")

// MalformedError describes why a provider payload could not become Details.
type MalformedError struct {
	// Field is the provider key at fault; empty when the whole record is unusable.
	Field  string
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	msg := "malformed quote"
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedError) Unwrap() error { return e.Err }

func (e *MalformedError) Is(target error) bool { return target == ErrMalformedQuote }

func malformed(field, reason string, err error) error {
	return &MalformedError{Field: field, Reason: reason, Err: err}
}
