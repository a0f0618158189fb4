package normalize

import (
	"errors"
	"fmt"
)

// ErrMalformedData is matched by every structural failure of an upstream payload
var ErrMalformedData = errors.New("malformed market data")

// MalformedDataError describes which part of a payload could not be normalized.
// Index is the offending entry position, or -1 when the payload as a whole is wrong.
type MalformedDataError struct {
	Source string
	Index  int
	Reason string
}

// Error implements the error interface
func (e *MalformedDataError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s: %s", ErrMalformedData, e.Source, e.Reason)
	}
	return fmt.Sprintf("%s: %s entry %d: %s", ErrMalformedData, e.Source, e.Index, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformedData
func (e *MalformedDataError) Unwrap() error {
	return ErrMalformedData
}

func malformed(source string, index int, format string, args ...any) error {
	return &MalformedDataError{Source: source, Index: index, Reason: fmt.Sprintf(format, args...)}
}

// APIError is an application-level error reported inside an exchange envelope
type APIError struct {
	Source string
	Code   string
	Msg    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s api error: code %s", e.Source, e.Code)
	}
	return fmt.Sprintf("%s api error: code %s: %s", e.Source, e.Code, e.Msg)
}
