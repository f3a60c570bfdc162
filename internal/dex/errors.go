package dex

import (
	"errors"
	"fmt"
)

// Kind classifies a failed pool operation.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindSlippageExceeded
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindSlippageExceeded:
		return "slippage_exceeded"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is a business-rule failure. Nothing is mutated when one is returned.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// Is matches another *Error of the same kind; a target with a message must match it too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrSlippageExceeded = &Error{Kind: KindSlippageExceeded}
	ErrNotFound         = &Error{Kind: KindNotFound}
)

// KindOf reports the kind of err, or KindUnknown for errors raised outside this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// NewError builds an error of the given kind.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...any) *Error {
	return NewError(KindValidation, format, args...)
}

func conflictf(format string, args ...any) *Error {
	return NewError(KindConflict, format, args...)
}
