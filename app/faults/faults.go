package faults

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindServiceUnavailable Kind = "service_unavailable"
	KindDimensionMismatch  Kind = "dimension_mismatch"
	KindParse              Kind = "parse"
	KindConfiguration      Kind = "configuration"
	KindInvalidInput       Kind = "invalid_input"
)

var (
	ErrServiceUnavailable = &Error{Kind: KindServiceUnavailable}
	ErrDimensionMismatch  = &Error{Kind: KindDimensionMismatch}
	ErrParse              = &Error{Kind: KindParse}
	ErrConfiguration      = &Error{Kind: KindConfiguration}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
)

// Error carries the failure kind and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind only, so the sentinels above work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Unavailable(op string, err error) error {
	return New(KindServiceUnavailable, op, err)
}

func Parse(op string, err error) error {
	return New(KindParse, op, err)
}

func Configuration(op string, err error) error {
	return New(KindConfiguration, op, err)
}

func InvalidInput(op string, err error) error {
	return New(KindInvalidInput, op, err)
}

func DimensionMismatch(op string, want, got int) error {
	return New(KindDimensionMismatch, op, fmt.Errorf("expected %d dimensions, got %d", want, got))
}

func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
