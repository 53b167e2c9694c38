package domain

import (
	"errors"
	"fmt"
)

// Kind classifies every error the core returns. Transports map kinds to
// protocol codes; the core never inspects messages.
type Kind int

const (
	KindInternal Kind = iota
	KindNotEligible
	KindAlreadyVoted
	KindValidation
	KindConflict
	KindNotFound
	KindPrecondition
	KindNotAuthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotEligible:
		return "not_eligible"
	case KindAlreadyVoted:
		return "already_voted"
	case KindValidation:
		return "validation_error"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindPrecondition:
		return "precondition_failed"
	case KindNotAuthorized:
		return "not_authorized"
	default:
		return "internal"
	}
}

// Error is the structured error carried out of the core. Op names the
// operation, Detail is safe to show to the caller.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of Op and Detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotEligible   = &Error{Kind: KindNotEligible}
	ErrAlreadyVoted  = &Error{Kind: KindAlreadyVoted}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrPrecondition  = &Error{Kind: KindPrecondition}
	ErrNotAuthorized = &Error{Kind: KindNotAuthorized}
)

func newError(kind Kind, op, detail string) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail}
}

func NotEligible(op, detail string) error   { return newError(KindNotEligible, op, detail) }
func AlreadyVoted(op, detail string) error  { return newError(KindAlreadyVoted, op, detail) }
func Validation(op, detail string) error    { return newError(KindValidation, op, detail) }
func Conflict(op, detail string) error      { return newError(KindConflict, op, detail) }
func NotFound(op, detail string) error      { return newError(KindNotFound, op, detail) }
func Precondition(op, detail string) error  { return newError(KindPrecondition, op, detail) }
func NotAuthorized(op, detail string) error { return newError(KindNotAuthorized, op, detail) }

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
