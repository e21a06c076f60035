/*
store.go - Persistence ports for the leave engine

PURPOSE:
  Defines the interfaces between the engine and the storage collaborator.
  Persistence technology is an implementation detail; the engine only needs
  these contracts.

KEY INTERFACES:
  RequestStore:      Leave requests + the atomic Transition write
  PersonStore:       Read-mostly people records (owned by HR flows)
  MedicalLeaveStore: Medical leave records
  BalanceStore:      VacationBalance snapshots
  Store:             All of the above (what the server wires)

TRANSITION CONTRACT:
  Transition is the single mutating entry point for request state. It must
  persist the status change AND the approval row (when present) in one
  atomic write, guarded by the expected version:
  - if the stored version differs, fail with StaleStateError and write
    nothing (the caller re-reads and retries)
  - if the approval row cannot be written, the status change must not be
    persisted either, and vice versa

APPEND-ONLY APPROVALS:
  Approval rows are an audit trail: no update or delete operations exist
  for them, by contract.

IMPLEMENTATIONS:
  - store/sqlite: production store (database/sql, WAL)
  - leave/store:  in-memory store for tests and dev
*/
package leave

import (
	"context"
	"time"
)

// =============================================================================
// REQUEST STORE
// =============================================================================

type RequestStore interface {
	// CreateRequest persists a new request at version 1.
	CreateRequest(ctx context.Context, req *LeaveRequest) error

	// GetRequest returns ErrRequestNotFound when the id is unknown.
	GetRequest(ctx context.Context, id string) (*LeaveRequest, error)

	// ListRequestsByPerson returns every request the person ever made,
	// newest first. Requests are never physically deleted.
	ListRequestsByPerson(ctx context.Context, personID string) ([]LeaveRequest, error)

	// ListRequestsByStatus returns all requests in any of the given states.
	ListRequestsByStatus(ctx context.Context, statuses ...RequestStatus) ([]LeaveRequest, error)

	// Transition atomically persists req (whose Version has already been
	// incremented) together with the optional approval row, guarded by
	// expectedVersion. See the package comment for the contract.
	Transition(ctx context.Context, req *LeaveRequest, expectedVersion int64, approval *Approval) error

	// ListApprovals returns the append-only decision trail, oldest first.
	ListApprovals(ctx context.Context, requestID string) ([]Approval, error)
}

// =============================================================================
// PERSON STORE
// =============================================================================

type PersonStore interface {
	GetPerson(ctx context.Context, id string) (*Person, error)
	ListPeople(ctx context.Context) ([]Person, error)
	SavePerson(ctx context.Context, p *Person) error

	// ListTeam returns the active people reporting to managerID.
	ListTeam(ctx context.Context, managerID string) ([]Person, error)
}

// =============================================================================
// MEDICAL LEAVE STORE
// =============================================================================

type MedicalLeaveStore interface {
	CreateMedicalLeave(ctx context.Context, m *MedicalLeave) error
	GetMedicalLeave(ctx context.Context, id string) (*MedicalLeave, error)

	// EndMedicalLeave flips status to ENDED and records the timestamp.
	// This is the only mutation medical leaves support.
	EndMedicalLeave(ctx context.Context, id string, endedAt time.Time) error

	ListMedicalLeavesByPerson(ctx context.Context, personID string) ([]MedicalLeave, error)
	ListActiveMedicalLeaves(ctx context.Context) ([]MedicalLeave, error)
}

// =============================================================================
// BALANCE STORE
// =============================================================================

type BalanceStore interface {
	// GetBalance returns (nil, nil) when no snapshot exists yet.
	GetBalance(ctx context.Context, personID string, year int) (*VacationBalance, error)
	SaveBalance(ctx context.Context, b *VacationBalance) error
	ListBalances(ctx context.Context, year int) ([]VacationBalance, error)
}

// =============================================================================
// COMBINED STORE
// =============================================================================

// Store is what the server wires: one collaborator providing every port.
type Store interface {
	RequestStore
	PersonStore
	MedicalLeaveStore
	BalanceStore
}
