package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so handlers can pick an HTTP status
// without inspecting message text.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindNotFound
)

// Error is a typed application error. Validation failures and absent
// entities are the only kinds the core produces; anything else propagates
// unchanged to the top-level handler.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// BadRequest reports malformed input or a failed business invariant.
func BadRequest(format string, args ...any) error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a referenced entity that does not exist (or that the
// caller is not allowed to know exists).
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or 0 if err is not an application error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsBadRequest(err error) bool { return KindOf(err) == KindBadRequest }

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
