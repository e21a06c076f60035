/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error kinds in one place. Every error here is recoverable and
  user-facing: callers surface the kind and message to the requester or
  approver. Nothing in this file should ever crash the process.

ERROR CATEGORIES:
  1. Accrual errors      - Missing contract data
  2. Eligibility errors  - Day-off window violations
  3. Capacity errors     - Overlaps and medical-leave blocks
  4. Workflow errors     - Invalid transitions, stale reads
  5. Override errors     - Manual balance rules

USAGE:
  Callers branch with errors.Is:

    if errors.Is(err, leave.ErrOutsideWindow) {
        var w *leave.OutsideWindowError
        errors.As(err, &w)
        // w.Window.Start tells the user when the window opens
    }

SEE ALSO:
  - workflow.go: InvalidTransitionError and StaleStateError producers
  - capacity.go: OverlapConflictError and CapacityBlockedError producers
*/
package leave

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingContractDate is returned when accrual is requested for a
	// person whose contract start date is unset. Accrual is undefined
	// without it.
	ErrMissingContractDate = errors.New("missing contract start date")

	// ErrMissingBirthDate is returned when day-off eligibility is requested
	// for a person without a birth date on file.
	ErrMissingBirthDate = errors.New("missing birth date")

	// ErrAlreadyUsedThisYear is returned when the birthday day-off has
	// already been taken in the current cycle.
	ErrAlreadyUsedThisYear = errors.New("day-off already used this year")

	// ErrOutsideWindow is returned when a day-off request falls outside the
	// birthday eligibility window.
	ErrOutsideWindow = errors.New("requested date outside eligibility window")

	// ErrDateRangeInvalid is returned when end date precedes start date.
	ErrDateRangeInvalid = errors.New("invalid date range: end before start")

	// ErrOverlapConflict is returned when a requested range overlaps an
	// existing non-cancelled, non-rejected request.
	ErrOverlapConflict = errors.New("date range overlaps existing request")

	// ErrCapacityBlocked is returned when an active medical leave blocks
	// new requests for the person or team.
	ErrCapacityBlocked = errors.New("capacity blocked by active medical leave")

	// ErrInvalidTransition is returned when a state/action/role combination
	// is not in the transition table. State is left unchanged.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrStaleState is returned when an optimistic version check fails:
	// the request changed between read and write. Callers should re-read
	// and retry.
	ErrStaleState = errors.New("stale request state")

	// ErrJustificationRequired is returned when a manual balance override
	// is attempted with a blank justification.
	ErrJustificationRequired = errors.New("justification required for manual balance")

	// ErrRequestNotFound is returned when a referenced request doesn't exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrPersonNotFound is returned when a referenced person doesn't exist.
	ErrPersonNotFound = errors.New("person not found")

	// ErrMedicalLeaveNotFound is returned when a referenced medical leave
	// doesn't exist.
	ErrMedicalLeaveNotFound = errors.New("medical leave not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OutsideWindowError surfaces the eligibility window to the caller so the
// message can tell the requester when the window opens.
type OutsideWindowError struct {
	Requested LocalDate
	Window    DateWindow
}

func (e *OutsideWindowError) Error() string {
	return fmt.Sprintf("date %s outside eligibility window: opens %s, closes %s",
		e.Requested, e.Window.Start, e.Window.End)
}

func (e *OutsideWindowError) Unwrap() error { return ErrOutsideWindow }

// OverlapConflictError lists the requests that collide with the new range.
type OverlapConflictError struct {
	PersonID    string
	Start, End  LocalDate
	ConflictIDs []string
}

func (e *OverlapConflictError) Error() string {
	return fmt.Sprintf("range %s..%s overlaps requests [%s]",
		e.Start, e.End, strings.Join(e.ConflictIDs, ", "))
}

func (e *OverlapConflictError) Unwrap() error { return ErrOverlapConflict }

// CapacityBlockedError names the medical leave causing the block.
type CapacityBlockedError struct {
	PersonID       string
	MedicalLeaveID string
	Until          LocalDate
}

func (e *CapacityBlockedError) Error() string {
	return fmt.Sprintf("person %s blocked by medical leave %s until %s",
		e.PersonID, e.MedicalLeaveID, e.Until)
}

func (e *CapacityBlockedError) Unwrap() error { return ErrCapacityBlocked }

// InvalidTransitionError describes the rejected edge.
type InvalidTransitionError struct {
	RequestID string
	From      RequestStatus
	Action    Action
	Role      Role
	Detail    string
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("cannot %s request %s in state %s as %s",
		e.Action, e.RequestID, e.From, e.Role)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// StaleStateError reports an optimistic concurrency failure.
type StaleStateError struct {
	RequestID       string
	ExpectedVersion int64
}

func (e *StaleStateError) Error() string {
	return fmt.Sprintf("request %s changed since version %d was read",
		e.RequestID, e.ExpectedVersion)
}

func (e *StaleStateError) Unwrap() error { return ErrStaleState }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on a re-read and retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStaleState)
}

// IsClientError returns true if the error is due to invalid caller input
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingContractDate) ||
		errors.Is(err, ErrMissingBirthDate) ||
		errors.Is(err, ErrAlreadyUsedThisYear) ||
		errors.Is(err, ErrOutsideWindow) ||
		errors.Is(err, ErrDateRangeInvalid) ||
		errors.Is(err, ErrOverlapConflict) ||
		errors.Is(err, ErrCapacityBlocked) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrJustificationRequired)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrPersonNotFound) ||
		errors.Is(err, ErrMedicalLeaveNotFound)
}

// Kind returns the stable machine-readable code for an engine error, or ""
// for errors the engine doesn't own. API collaborators use it for the error
// payload's code field.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrMissingContractDate):
		return "MissingContractDate"
	case errors.Is(err, ErrMissingBirthDate):
		return "MissingBirthDate"
	case errors.Is(err, ErrAlreadyUsedThisYear):
		return "AlreadyUsedThisYear"
	case errors.Is(err, ErrOutsideWindow):
		return "OutsideWindow"
	case errors.Is(err, ErrDateRangeInvalid):
		return "DateRangeInvalid"
	case errors.Is(err, ErrOverlapConflict):
		return "OverlapConflict"
	case errors.Is(err, ErrCapacityBlocked):
		return "CapacityBlocked"
	case errors.Is(err, ErrInvalidTransition):
		return "InvalidTransition"
	case errors.Is(err, ErrStaleState):
		return "StaleState"
	case errors.Is(err, ErrJustificationRequired):
		return "JustificationRequired"
	default:
		return ""
	}
}
