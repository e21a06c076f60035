/*
Package leave implements the vacation accrual and approval rules engine.

PURPOSE:
  This package contains the domain types and algorithms for employee leave:
  accrual arithmetic over contract anniversaries, birthday-linked day-off
  eligibility, overlap and medical-leave capacity guards, the multi-level
  approval state machine, and manual balance overrides.

KEY CONCEPTS IN THIS FILE (types.go):
  - Person: contract data the engine reads (never writes)
  - LeaveRequest: the unit the state machine drives; soft lifecycle only
  - Approval: append-only decision audit trail, one row per decision
  - MedicalLeave: capacity-affecting absence record
  - VacationBalance: accrued/used/balance per person/year, manual or automatic

DESIGN PRINCIPLES:
  1. Purity: evaluators take snapshots in, results out - no ambient state
  2. Precision: decimal.Decimal for day amounts (2.5 days/month is exact)
  3. Soft lifecycle: requests are never deleted; terminal states end them
  4. Auditability: every decision appends an Approval record

SEE ALSO:
  - dates.go: LocalDate and calendar rules
  - workflow.go: the transition table over these types
  - accrual.go: VacationBalance computation
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERSON - Read-only identity and contract data
// =============================================================================

type ContractModel string

const (
	ContractCLT               ContractModel = "CLT"
	ContractCLTFixedAllowance ContractModel = "CLT_FIXED_ALLOWANCE"
	ContractCLTFreeAllowance  ContractModel = "CLT_FREE_ALLOWANCE"
	ContractPJ                ContractModel = "PJ"
)

func (m ContractModel) Valid() bool {
	switch m {
	case ContractCLT, ContractCLTFixedAllowance, ContractCLTFreeAllowance, ContractPJ:
		return true
	}
	return false
}

type Role string

const (
	RoleCollaborator Role = "COLLABORATOR"
	RoleManager      Role = "MANAGER"
	RoleDirector     Role = "DIRECTOR"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCollaborator, RoleManager, RoleDirector:
		return true
	}
	return false
}

// Person is owned by HR flows outside the engine; the engine only reads it.
// ContractStart and BirthDate are nil while the person is still in setup.
type Person struct {
	ID            string
	Name          string
	Email         string
	ContractStart *LocalDate
	BirthDate     *LocalDate
	ContractModel ContractModel
	Role          Role
	ManagerID     *string
	Active        bool
}

// =============================================================================
// LEAVE REQUEST - Driven exclusively by the state machine
// =============================================================================

type LeaveType string

const (
	TypeVacation     LeaveType = "VACATION"
	TypeDayOff       LeaveType = "DAY_OFF"
	TypeMedicalLeave LeaveType = "MEDICAL_LEAVE"
)

type RequestStatus string

const (
	StatusDraft            RequestStatus = "DRAFT"
	StatusPending          RequestStatus = "PENDING"
	StatusAwaitingManager  RequestStatus = "AWAITING_MANAGER"
	StatusAwaitingDirector RequestStatus = "AWAITING_DIRECTOR"
	StatusApprovedFinal    RequestStatus = "APPROVED_FINAL"
	StatusRejected         RequestStatus = "REJECTED"
	StatusCancelled        RequestStatus = "CANCELLED"
	StatusCompleted        RequestStatus = "COMPLETED"
	StatusInfoRequested    RequestStatus = "INFO_REQUESTED"
)

// IsTerminal reports whether no further transitions are possible.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsTerminalNegative reports whether the request no longer occupies its
// date range (used by the overlap guard and used-day accounting).
func (s RequestStatus) IsTerminalNegative() bool {
	return s == StatusRejected || s == StatusCancelled
}

// CountsAsUsed reports whether the request consumes balance days.
func (s RequestStatus) CountsAsUsed() bool {
	return s == StatusApprovedFinal || s == StatusCompleted
}

// LeaveRequest dates are inclusive on both ends. Version backs the
// optimistic concurrency check: every successful transition increments it.
type LeaveRequest struct {
	ID          string
	RequesterID string
	Type        LeaveType
	StartDate   LocalDate
	EndDate     LocalDate
	Status      RequestStatus
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Days returns the inclusive span of the request in days.
func (r *LeaveRequest) Days() int {
	return DaysInclusive(r.StartDate, r.EndDate)
}

// DaysInYear returns the inclusive days of the request falling in year.
func (r *LeaveRequest) DaysInYear(year int) int {
	s, e, ok := ClipToYear(r.StartDate, r.EndDate, year)
	if !ok {
		return 0
	}
	return DaysInclusive(s, e)
}

// Overlaps reports range intersection with another request.
func (r *LeaveRequest) Overlaps(start, end LocalDate) bool {
	return start.BeforeOrEqual(r.EndDate) && end.AfterOrEqual(r.StartDate)
}

// Elapsed reports whether the leave period is fully in the past.
func (r *LeaveRequest) Elapsed(today LocalDate) bool {
	return r.EndDate.Before(today)
}

// =============================================================================
// APPROVAL - Append-only decision audit trail
// =============================================================================

type ApprovalLevel string

const (
	LevelManager  ApprovalLevel = "MANAGER"
	LevelDirector ApprovalLevel = "DIRECTOR"
)

type ApprovalAction string

const (
	ApprovalApproved      ApprovalAction = "APPROVED"
	ApprovalRejected      ApprovalAction = "REJECTED"
	ApprovalInfoRequested ApprovalAction = "INFO_REQUESTED"
)

// Approval rows are never mutated or deleted. Exactly one is written per
// approve/reject/request_info decision, atomically with the status change.
type Approval struct {
	ID         string
	RequestID  string
	ApproverID string
	Level      ApprovalLevel
	Action     ApprovalAction
	Comment    string
	CreatedAt  time.Time
}

// =============================================================================
// MEDICAL LEAVE - Capacity-affecting absence
// =============================================================================

type MedicalLeaveStatus string

const (
	MedicalActive MedicalLeaveStatus = "ACTIVE"
	MedicalEnded  MedicalLeaveStatus = "ENDED"
)

type MedicalLeave struct {
	ID                  string
	PersonID            string
	StartDate           LocalDate
	EndDate             LocalDate
	Status              MedicalLeaveStatus
	AffectsTeamCapacity bool
	Justification       string
	CreatedBy           string
	CreatedAt           time.Time
	EndedAt             *time.Time
}

// BlocksOn reports whether this leave blocks new requests on the given day.
func (m *MedicalLeave) BlocksOn(day LocalDate) bool {
	return m.Status == MedicalActive &&
		m.AffectsTeamCapacity &&
		m.StartDate.BeforeOrEqual(day) &&
		day.BeforeOrEqual(m.EndDate)
}

// =============================================================================
// VACATION BALANCE - Accrued/used/balance per person and year
// =============================================================================

// VacationBalance is either fully automatic (Balance = Accrued - Used holds)
// or fully manual (IsManual set, automatic figures retained as advisory).
type VacationBalance struct {
	PersonID            string
	Year                int
	AccruedDays         decimal.Decimal
	UsedDays            decimal.Decimal
	BalanceDays         decimal.Decimal
	IsManual            bool
	ManualJustification string
	ContractAnniversary LocalDate

	// AccumulationWarning is advisory only: set for PJ contracts holding
	// 30 or more unused accrued days. Never blocks anything.
	AccumulationWarning bool
}

// =============================================================================
// LIFECYCLE EVENTS - Emitted on every transition, consumed externally
// =============================================================================

// TransitionEvent is handed to the notification dispatcher and audit sink.
// The engine does not format messages or call any delivery API.
type TransitionEvent struct {
	RequestID string
	From      RequestStatus
	To        RequestStatus
	ActorID   string
	Comment   string
	At        time.Time
}

// EventSink receives post-transition events. Implementations must not block;
// the engine calls Publish synchronously after the write commits.
type EventSink interface {
	Publish(event TransitionEvent)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(TransitionEvent)

func (f EventSinkFunc) Publish(e TransitionEvent) { f(e) }

// NopSink discards events.
type NopSink struct{}

func (NopSink) Publish(TransitionEvent) {}
