package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input that blocks progression (e.g. an empty required answer).
	ErrValidation = errors.New("validation failed")

	// ErrSessionNotFound is returned by stores for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
)

// ErrorKind classifies failures of external collaborators.
type ErrorKind string

const (
	KindNetwork ErrorKind = "network"
	KindStatus  ErrorKind = "status"
	KindDecode  ErrorKind = "decode"
	KindEmpty   ErrorKind = "empty"
	KindStorage ErrorKind = "storage"
	KindTimeout ErrorKind = "timeout"
	KindUnknown ErrorKind = "unknown"
)

// AdapterError is returned by every adapter wrapping an external service.
type AdapterError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func NewAdapterError(kind ErrorKind, op string, err error) *AdapterError {
	return &AdapterError{Kind: kind, Op: op, Err: err}
}

func (e *AdapterError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first AdapterError in err's chain.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ae *AdapterError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}
