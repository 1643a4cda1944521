package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure. The HTTP layer maps kinds to status
// codes; the message travels to the client unchanged.
type Kind int

const (
	// KindNotFound covers missing entities and read-path access denials.
	// Denials deliberately share this kind so an unauthorized caller
	// cannot learn that a booking exists.
	KindNotFound Kind = iota
	// KindNotAvailable means the operation is not permitted under current
	// state. See Reason for the specific cause.
	KindNotAvailable
	// KindConditionsNotMet means the input violates a structural
	// invariant, such as a booking ending before it starts.
	KindConditionsNotMet
	// KindInvalidArgument means a malformed parameter, such as an
	// unknown state token.
	KindInvalidArgument
	// KindConflict means a uniqueness violation, such as a duplicate
	// email.
	KindConflict
)

// Reason discriminates the causes that share KindNotAvailable. All of
// them map to the same outward status.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonItemUnavailable
	ReasonNotOwner
	ReasonNoCompletedBooking
)

// Error is the single error type raised by the services.
type Error struct {
	Kind   Kind
	Reason Reason
	msg    string
}

func (e *Error) Error() string { return e.msg }

// AsError unwraps err into a *Error, or nil if it is not one.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return nil
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	de := AsError(err)
	return de != nil && de.Kind == kind
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

func NotAvailable(reason Reason, format string, args ...any) error {
	return &Error{Kind: KindNotAvailable, Reason: reason, msg: fmt.Sprintf(format, args...)}
}

func ConditionsNotMet(format string, args ...any) error {
	return &Error{Kind: KindConditionsNotMet, msg: fmt.Sprintf(format, args...)}
}

func InvalidArgument(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, msg: fmt.Sprintf(format, args...)}
}
