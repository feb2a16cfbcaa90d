package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable category every engine error reports to its caller.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindState        ErrorKind = "state"
	KindPrecondition ErrorKind = "precondition"
)

// ValidationError is returned when input is missing, an enum value is unknown
// or the offer/request targets do not line up. Callers fix the input; it is
// never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Kind() ErrorKind { return KindValidation }

// UserMessage is the default text shown to an end user.
func (e *ValidationError) UserMessage() string {
	return "The submitted data is invalid: " + e.Reason
}

// StateCode identifies why a transition was refused.
type StateCode string

const (
	StateAlreadyAccepted   StateCode = "ALREADY_ACCEPTED"
	StateAlreadyRejected   StateCode = "ALREADY_REJECTED"
	StateSideClosed        StateCode = "SIDE_CLOSED"
	StateSideAlreadyBound  StateCode = "SIDE_ALREADY_BOUND"
	StateIllegalTransition StateCode = "ILLEGAL_TRANSITION"
)

var stateMessages = map[StateCode]string{
	StateAlreadyAccepted:   "Agreement already accepted",
	StateAlreadyRejected:   "Agreement already rejected",
	StateSideClosed:        "The offer or request of this agreement is already closed",
	StateSideAlreadyBound:  "The offer or request already has an accepted agreement",
	StateIllegalTransition: "This status change is not allowed",
}

// StateError is returned when an agreement, or one of the exchanges it links,
// is not in a state that allows the requested transition.
type StateError struct {
	Code        StateCode
	AgreementID string
	Detail      string
}

func NewStateError(code StateCode, agreementID string) *StateError {
	return &StateError{Code: code, AgreementID: agreementID}
}

func (e *StateError) WithDetail(detail string) *StateError {
	e.Detail = detail
	return e
}

func (e *StateError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.UserMessage())
	if e.AgreementID != "" {
		msg += fmt.Sprintf(" (agreement=%s)", e.AgreementID)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *StateError) Kind() ErrorKind { return KindState }

func (e *StateError) UserMessage() string {
	if msg, ok := stateMessages[e.Code]; ok {
		return msg
	}
	return "The agreement is not in a valid state for this action"
}

// PreconditionError is returned by the response linker when the source post
// can no longer be responded to.
type PreconditionError struct {
	SourceID string
	Status   string
}

func NewPreconditionError(sourceID, status string) *PreconditionError {
	return &PreconditionError{SourceID: sourceID, Status: status}
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: source %s has status %s", e.SourceID, e.Status)
}

func (e *PreconditionError) Kind() ErrorKind { return KindPrecondition }

func (e *PreconditionError) UserMessage() string {
	return "Cannot respond to a source that is not open or matched"
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsState reports whether err wraps a StateError.
func IsState(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// StateCodeOf returns the StateCode of a wrapped StateError, or "".
func StateCodeOf(err error) StateCode {
	var se *StateError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsPrecondition reports whether err wraps a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
