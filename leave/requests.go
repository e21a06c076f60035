/*
requests.go - Request intake: the gates in front of the state machine

PURPOSE:
  A new-request submission passes through the eligibility evaluator and the
  capacity guard before it enters the approval workflow. This file owns
  that control flow plus the medical leave open/end operations.

INTAKE FLOW:

  Submit ──▶ validate range ──▶ day-off eligibility ──▶ medical block
                                                            │
            workflow (DRAFT ──submit──▶ AWAITING_MANAGER) ◀─┘
                         ▲
                overlap guard

  Requests are created in DRAFT and immediately submitted unless the caller
  asks to keep the draft. Both steps emit through the workflow so every
  state change produces exactly one lifecycle event.

SEE ALSO:
  - eligibility.go, capacity.go: the gates
  - workflow.go: the machine behind them
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewRequest is the submission payload.
type NewRequest struct {
	RequesterID string
	Type        LeaveType
	StartDate   LocalDate
	EndDate     LocalDate

	// KeepDraft leaves the request in DRAFT instead of submitting it.
	KeepDraft bool
}

// RequestService orchestrates intake and exposes medical leave operations.
type RequestService struct {
	Requests RequestStore
	People   PersonStore
	Medical  MedicalLeaveStore
	Workflow *Workflow
	Clock    func() time.Time
}

func (s *RequestService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// Submit runs the gates and creates the request. On success the request is
// in AWAITING_MANAGER (or DRAFT when KeepDraft is set).
func (s *RequestService) Submit(ctx context.Context, actor Actor, in NewRequest) (*LeaveRequest, error) {
	if actor.ID == "" {
		panic("leave: Submit called without a resolved actor identity")
	}
	if actor.ID != in.RequesterID {
		return nil, fmt.Errorf("actor %s cannot submit for %s: %w", actor.ID, in.RequesterID, ErrInvalidTransition)
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, ErrDateRangeInvalid
	}

	person, err := s.People.GetPerson(ctx, in.RequesterID)
	if err != nil {
		return nil, err
	}
	today := DateOf(s.now())

	history, err := s.Requests.ListRequestsByPerson(ctx, in.RequesterID)
	if err != nil {
		return nil, err
	}

	switch in.Type {
	case TypeVacation:
		// Accrual is undefined without a contract date; the person is
		// still in setup and cannot take vacation.
		if person.ContractStart == nil {
			return nil, ErrMissingContractDate
		}
	case TypeDayOff:
		if !in.StartDate.Equal(in.EndDate) {
			return nil, fmt.Errorf("day-off must be a single day: %w", ErrDateRangeInvalid)
		}
		result := EvaluateDayOff(DayOffInput{
			BirthDate:           person.BirthDate,
			AlreadyUsedThisYear: dayOffUsedThisYear(history, today.Year()),
			IsDirector:          person.Role == RoleDirector,
			Today:               today,
			RequestedDate:       in.StartDate,
		})
		if !result.Allowed {
			return nil, result.Reason
		}
	}

	// Medical leaves don't go through the capacity gate: the gate exists
	// to protect coverage from discretionary leave, not from illness.
	if in.Type != TypeMedicalLeave {
		leaves, err := s.Medical.ListMedicalLeavesByPerson(ctx, in.RequesterID)
		if err != nil {
			return nil, err
		}
		if err := CheckMedicalBlock(in.RequesterID, today, leaves); err != nil {
			return nil, err
		}
	}

	if err := CheckOverlap(in.RequesterID, in.StartDate, in.EndDate, history); err != nil {
		return nil, err
	}

	now := s.now()
	req := &LeaveRequest{
		ID:          uuid.NewString(),
		RequesterID: in.RequesterID,
		Type:        in.Type,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      StatusDraft,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Requests.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	if in.KeepDraft {
		return req, nil
	}
	return s.Workflow.Apply(ctx, req.ID, ActionSubmit, actor, "")
}

func dayOffUsedThisYear(history []LeaveRequest, year int) bool {
	for i := range history {
		r := &history[i]
		if r.Type == TypeDayOff && !r.Status.IsTerminalNegative() && r.StartDate.Year() == year {
			return true
		}
	}
	return false
}

// =============================================================================
// MEDICAL LEAVES
// =============================================================================

// OpenMedicalLeave records a new medical leave for a person. createdBy is
// the authorized actor opening it.
func (s *RequestService) OpenMedicalLeave(ctx context.Context, actor Actor, personID string, start, end LocalDate, affectsCapacity bool, justification string) (*MedicalLeave, error) {
	if actor.ID == "" {
		panic("leave: OpenMedicalLeave called without a resolved actor identity")
	}
	if end.Before(start) {
		return nil, ErrDateRangeInvalid
	}
	if _, err := s.People.GetPerson(ctx, personID); err != nil {
		return nil, err
	}

	m := &MedicalLeave{
		ID:                  uuid.NewString(),
		PersonID:            personID,
		StartDate:           start,
		EndDate:             end,
		Status:              MedicalActive,
		AffectsTeamCapacity: affectsCapacity,
		Justification:       justification,
		CreatedBy:           actor.ID,
		CreatedAt:           s.now(),
	}
	if err := s.Medical.CreateMedicalLeave(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// EndMedicalLeave ends an active leave, atomically lifting any capacity
// block it imposed. Requests already past the gate are unaffected.
func (s *RequestService) EndMedicalLeave(ctx context.Context, actor Actor, leaveID string) (*MedicalLeave, error) {
	if actor.ID == "" {
		panic("leave: EndMedicalLeave called without a resolved actor identity")
	}
	endedAt := s.now()
	if err := s.Medical.EndMedicalLeave(ctx, leaveID, endedAt); err != nil {
		return nil, err
	}
	return s.Medical.GetMedicalLeave(ctx, leaveID)
}
