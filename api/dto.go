/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// PersonDTO represents a person in API responses.
type PersonDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email,omitempty"`
	ContractStart *string `json:"contract_start,omitempty"`
	BirthDate     *string `json:"birth_date,omitempty"`
	ContractModel string  `json:"contract_model"`
	Role          string  `json:"role"`
	ManagerID     *string `json:"manager_id,omitempty"`
	Active        bool    `json:"active"`
}

// SavePersonRequest creates or updates a person record.
type SavePersonRequest struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email,omitempty"`
	ContractStart *string `json:"contract_start,omitempty"` // ISO date
	BirthDate     *string `json:"birth_date,omitempty"`     // ISO date
	ContractModel string  `json:"contract_model"`
	Role          string  `json:"role"`
	ManagerID     *string `json:"manager_id,omitempty"`
	Active        *bool   `json:"active,omitempty"` // default true
}

// RequestDTO represents a leave request.
type RequestDTO struct {
	ID          string `json:"id"`
	RequesterID string `json:"requester_id"`
	Type        string `json:"type"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Status      string `json:"status"`
	Days        int    `json:"days"`
	Version     int64  `json:"version"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// SubmitRequestDTO is the body for submitting a new leave request.
type SubmitRequestDTO struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date"` // ISO date
	EndDate   string `json:"end_date"`   // ISO date
	KeepDraft bool   `json:"keep_draft,omitempty"`
}

// TransitionDTO is the body for approve/reject/request-info/cancel calls.
type TransitionDTO struct {
	Comment string `json:"comment,omitempty"`
}

// ApprovalDTO represents one decision in the audit trail.
type ApprovalDTO struct {
	ID         string `json:"id"`
	RequestID  string `json:"request_id"`
	ApproverID string `json:"approver_id"`
	Level      string `json:"level"`
	Action     string `json:"action"`
	Comment    string `json:"comment,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// RequestDetailDTO is a request together with its decision trail.
type RequestDetailDTO struct {
	Request   RequestDTO    `json:"request"`
	Approvals []ApprovalDTO `json:"approvals"`
}

// BalanceDTO represents a vacation balance snapshot.
type BalanceDTO struct {
	PersonID            string `json:"person_id"`
	Year                int    `json:"year"`
	AccruedDays         string `json:"accrued_days"`
	UsedDays            string `json:"used_days"`
	BalanceDays         string `json:"balance_days"`
	IsManual            bool   `json:"is_manual"`
	ManualJustification string `json:"manual_justification,omitempty"`
	ContractAnniversary string `json:"contract_anniversary,omitempty"`
	AccumulationWarning bool   `json:"accumulation_warning,omitempty"`
}

// ManualBalanceDTO is the body for setting a manual balance.
type ManualBalanceDTO struct {
	BalanceDays   string `json:"balance_days"` // decimal string
	Justification string `json:"justification"`
}

// MedicalLeaveDTO represents a medical leave record.
type MedicalLeaveDTO struct {
	ID                  string  `json:"id"`
	PersonID            string  `json:"person_id"`
	StartDate           string  `json:"start_date"`
	EndDate             string  `json:"end_date"`
	Status              string  `json:"status"`
	AffectsTeamCapacity bool    `json:"affects_team_capacity"`
	Justification       string  `json:"justification,omitempty"`
	CreatedBy           string  `json:"created_by"`
	EndedAt             *string `json:"ended_at,omitempty"`
}

// OpenMedicalLeaveDTO is the body for opening a medical leave.
type OpenMedicalLeaveDTO struct {
	PersonID            string `json:"person_id"`
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date"`
	AffectsTeamCapacity bool   `json:"affects_team_capacity"`
	Justification       string `json:"justification,omitempty"`
}

// EligibilityDTO is the day-off pre-check response.
type EligibilityDTO struct {
	Allowed     bool    `json:"allowed"`
	Reason      string  `json:"reason,omitempty"`
	WindowStart *string `json:"window_start,omitempty"`
	WindowEnd   *string `json:"window_end,omitempty"`
}

// TeamCapacityDTO is the manager-scoped capacity check response.
type TeamCapacityDTO struct {
	Blocked         bool    `json:"blocked"`
	Date            string  `json:"date"`
	BlockedPersonID string  `json:"blocked_person_id,omitempty"`
	MedicalLeaveID  string  `json:"medical_leave_id,omitempty"`
	BlockedUntil    *string `json:"blocked_until,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toPersonDTO(p leave.Person) PersonDTO {
	return PersonDTO{
		ID:            p.ID,
		Name:          p.Name,
		Email:         p.Email,
		ContractStart: datePtrString(p.ContractStart),
		BirthDate:     datePtrString(p.BirthDate),
		ContractModel: string(p.ContractModel),
		Role:          string(p.Role),
		ManagerID:     p.ManagerID,
		Active:        p.Active,
	}
}

func toRequestDTO(r leave.LeaveRequest) RequestDTO {
	return RequestDTO{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		Type:        string(r.Type),
		StartDate:   r.StartDate.String(),
		EndDate:     r.EndDate.String(),
		Status:      string(r.Status),
		Days:        r.Days(),
		Version:     r.Version,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
	}
}

func toRequestDTOs(requests []leave.LeaveRequest) []RequestDTO {
	dtos := make([]RequestDTO, len(requests))
	for i, r := range requests {
		dtos[i] = toRequestDTO(r)
	}
	return dtos
}

func toApprovalDTO(a leave.Approval) ApprovalDTO {
	return ApprovalDTO{
		ID:         a.ID,
		RequestID:  a.RequestID,
		ApproverID: a.ApproverID,
		Level:      string(a.Level),
		Action:     string(a.Action),
		Comment:    a.Comment,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
}

func toBalanceDTO(b leave.VacationBalance) BalanceDTO {
	dto := BalanceDTO{
		PersonID:            b.PersonID,
		Year:                b.Year,
		AccruedDays:         b.AccruedDays.String(),
		UsedDays:            b.UsedDays.String(),
		BalanceDays:         b.BalanceDays.String(),
		IsManual:            b.IsManual,
		ManualJustification: b.ManualJustification,
		AccumulationWarning: b.AccumulationWarning,
	}
	if !b.ContractAnniversary.IsZero() {
		dto.ContractAnniversary = b.ContractAnniversary.String()
	}
	return dto
}

func toMedicalLeaveDTO(m leave.MedicalLeave) MedicalLeaveDTO {
	dto := MedicalLeaveDTO{
		ID:                  m.ID,
		PersonID:            m.PersonID,
		StartDate:           m.StartDate.String(),
		EndDate:             m.EndDate.String(),
		Status:              string(m.Status),
		AffectsTeamCapacity: m.AffectsTeamCapacity,
		Justification:       m.Justification,
		CreatedBy:           m.CreatedBy,
	}
	if m.EndedAt != nil {
		s := m.EndedAt.Format(time.RFC3339)
		dto.EndedAt = &s
	}
	return dto
}

func datePtrString(d *leave.LocalDate) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
