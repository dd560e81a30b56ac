package authz

import "errors"

// Reason classifies why an action was denied.
type Reason string

const (
	ReasonNotFound   Reason = "NOT_FOUND"
	ReasonForbidden  Reason = "FORBIDDEN"
	ReasonConflict   Reason = "CONFLICT"
	ReasonBadRequest Reason = "BAD_REQUEST"
)

// Category sentinels. Every *Denial unwraps to exactly one of them.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")
)

// Decision is the outcome of a guard check. The zero value allows.
type Decision struct {
	Reason  Reason
	Message string
}

// Allow returns a decision that permits the action.
func Allow() Decision {
	return Decision{}
}

// Deny returns a decision that rejects the action for reason.
func Deny(reason Reason, message string) Decision {
	return Decision{Reason: reason, Message: message}
}

// Allowed reports whether the decision permits the action.
func (d Decision) Allowed() bool {
	return d.Reason == ""
}

// Err returns nil for an allowed decision and a *Denial otherwise.
func (d Decision) Err() error {
	if d.Allowed() {
		return nil
	}
	return &Denial{Reason: d.Reason, Message: d.Message}
}

// Denial is the error form of a rejected decision.
type Denial struct {
	Reason  Reason
	Message string
}

func (e *Denial) Error() string {
	return e.Message
}

// Unwrap exposes the category sentinel so callers can use errors.Is.
func (e *Denial) Unwrap() error {
	switch e.Reason {
	case ReasonNotFound:
		return ErrNotFound
	case ReasonForbidden:
		return ErrForbidden
	case ReasonConflict:
		return ErrConflict
	case ReasonBadRequest:
		return ErrBadRequest
	}
	return nil
}

// NotFound builds a not-found denial error.
func NotFound(message string) *Denial { return &Denial{Reason: ReasonNotFound, Message: message} }

// Forbidden builds a forbidden denial error.
func Forbidden(message string) *Denial { return &Denial{Reason: ReasonForbidden, Message: message} }

// Conflict builds a conflict denial error.
func Conflict(message string) *Denial { return &Denial{Reason: ReasonConflict, Message: message} }

// BadRequest builds a bad-request denial error.
func BadRequest(message string) *Denial { return &Denial{Reason: ReasonBadRequest, Message: message} }
