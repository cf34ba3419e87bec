package autherr

import (
	"errors"
	"time"

	"github.com/samber/oops"
)

// Kind classifies an authentication outcome for callers and transports.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindTemporarilyLocked
	KindTooManyAttempts
	KindNotFound
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindTemporarilyLocked:
		return "temporarily_locked"
	case KindTooManyAttempts:
		return "too_many_attempts"
	case KindNotFound:
		return "not_found"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the structured failure returned by every engine operation.
//
// Message is safe to show to end users. The wrapped cause, if any, is not:
// it carries backend detail and is only reachable through errors.Unwrap.
type Error struct {
	Kind         Kind
	Code         string
	Message      string
	AttemptsLeft int
	RetryAfter   time.Duration
	Details      map[string]string

	cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches another *Error by kind, and by code when the target has one.
// A code-less target therefore matches every error of its kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// New returns a structured error with no cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// WithAttemptsLeft returns a copy of e carrying the remaining attempt budget.
func (e *Error) WithAttemptsLeft(n int) *Error {
	out := e.clone()
	out.AttemptsLeft = n
	return out
}

// WithRetryAfter returns a copy of e carrying how long the caller should wait.
func (e *Error) WithRetryAfter(d time.Duration) *Error {
	out := e.clone()
	if d > 0 {
		out.RetryAfter = d
	}
	return out
}

// WithDetails returns a copy of e carrying per-field details.
func (e *Error) WithDetails(details map[string]string) *Error {
	out := e.clone()
	out.Details = details
	return out
}

// WithMessage returns a copy of e with a different user-facing message.
func (e *Error) WithMessage(message string) *Error {
	out := e.clone()
	out.Message = message
	return out
}

func (e *Error) clone() *Error {
	out := *e
	if e.Details != nil {
		out.Details = make(map[string]string, len(e.Details))
		for k, v := range e.Details {
			out.Details[k] = v
		}
	}
	return &out
}

// Wrap scopes an unexpected failure to an operation. The cause is wrapped
// with oops so logs keep the code, the operation and a stacktrace.
func Wrap(base *Error, operation string, err error) *Error {
	out := base.clone()
	if err != nil {
		out.cause = oops.
			Code(base.Code).
			With("operation", operation).
			Wrap(err)
	}
	return out
}

// As reports whether err carries a structured *Error.
func As(err error) (*Error, bool) {
	var out *Error
	if errors.As(err, &out) && out != nil {
		return out, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindUnknown for unstructured errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// PassThrough returns err unchanged when it is already structured, and
// otherwise wraps it into base for the given operation.
func PassThrough(base *Error, operation string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return Wrap(base, operation, err)
}
