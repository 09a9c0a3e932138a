package models

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by a split or merge unwraps to
// exactly one of these.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrSourceMissing    = errors.New("source missing")
	ErrSourceUnreadable = errors.New("source unreadable")
	ErrWriteFailure     = errors.New("write failure")
	ErrEmptyInputSet    = errors.New("empty input set")
)

// OperationError carries the failure kind, the path or parameter at fault,
// and the underlying cause.
type OperationError struct {
	Kind    error
	Subject string
	Err     error
}

func (e *OperationError) Error() string {
	switch {
	case e.Subject != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Subject, e.Err)
	case e.Subject != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Subject)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *OperationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError builds an OperationError of the given kind
func NewError(kind error, subject string, err error) error {
	return &OperationError{Kind: kind, Subject: subject, Err: err}
}

// Kind reports which failure kind err belongs to, or nil for foreign errors
func Kind(err error) error {
	for _, kind := range []error{ErrInvalidArgument, ErrSourceMissing, ErrSourceUnreadable, ErrWriteFailure, ErrEmptyInputSet} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
