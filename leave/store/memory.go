// Package store provides an in-memory leave.Store implementation for
// tests and development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	people    map[string]leave.Person
	requests  map[string]leave.LeaveRequest
	approvals map[string][]leave.Approval // request id -> decisions, oldest first
	medical   map[string]leave.MedicalLeave
	balances  map[balanceKey]leave.VacationBalance
}

type balanceKey struct {
	PersonID string
	Year     int
}

func NewMemory() *Memory {
	return &Memory{
		people:    make(map[string]leave.Person),
		requests:  make(map[string]leave.LeaveRequest),
		approvals: make(map[string][]leave.Approval),
		medical:   make(map[string]leave.MedicalLeave),
		balances:  make(map[balanceKey]leave.VacationBalance),
	}
}

var _ leave.Store = (*Memory)(nil)

// =============================================================================
// REQUESTS
// =============================================================================

func (m *Memory) CreateRequest(_ context.Context, req *leave.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = *req
	return nil
}

func (m *Memory) GetRequest(_ context.Context, id string) (*leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, leave.ErrRequestNotFound
	}
	return &r, nil
}

func (m *Memory) ListRequestsByPerson(_ context.Context, personID string) ([]leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []leave.LeaveRequest
	for _, r := range m.requests {
		if r.RequesterID == personID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListRequestsByStatus(_ context.Context, statuses ...leave.RequestStatus) ([]leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[leave.RequestStatus]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}
	var out []leave.LeaveRequest
	for _, r := range m.requests {
		if wanted[r.Status] {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Transition applies the versioned update and approval append atomically
// under the store lock: both happen or neither does.
func (m *Memory) Transition(_ context.Context, req *leave.LeaveRequest, expectedVersion int64, approval *leave.Approval) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.requests[req.ID]
	if !ok {
		return leave.ErrRequestNotFound
	}
	if current.Version != expectedVersion {
		return &leave.StaleStateError{RequestID: req.ID, ExpectedVersion: expectedVersion}
	}
	m.requests[req.ID] = *req
	if approval != nil {
		m.approvals[req.ID] = append(m.approvals[req.ID], *approval)
	}
	return nil
}

func (m *Memory) ListApprovals(_ context.Context, requestID string) ([]leave.Approval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]leave.Approval, len(m.approvals[requestID]))
	copy(out, m.approvals[requestID])
	return out, nil
}

// =============================================================================
// PEOPLE
// =============================================================================

func (m *Memory) GetPerson(_ context.Context, id string) (*leave.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.people[id]
	if !ok {
		return nil, leave.ErrPersonNotFound
	}
	return &p, nil
}

func (m *Memory) ListPeople(_ context.Context) ([]leave.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]leave.Person, 0, len(m.people))
	for _, p := range m.people {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SavePerson(_ context.Context, p *leave.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.people[p.ID] = *p
	return nil
}

func (m *Memory) ListTeam(_ context.Context, managerID string) ([]leave.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []leave.Person
	for _, p := range m.people {
		if p.Active && p.ManagerID != nil && *p.ManagerID == managerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// MEDICAL LEAVES
// =============================================================================

func (m *Memory) CreateMedicalLeave(_ context.Context, ml *leave.MedicalLeave) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.medical[ml.ID] = *ml
	return nil
}

func (m *Memory) GetMedicalLeave(_ context.Context, id string) (*leave.MedicalLeave, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ml, ok := m.medical[id]
	if !ok {
		return nil, leave.ErrMedicalLeaveNotFound
	}
	return &ml, nil
}

func (m *Memory) EndMedicalLeave(_ context.Context, id string, endedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ml, ok := m.medical[id]
	if !ok {
		return leave.ErrMedicalLeaveNotFound
	}
	ml.Status = leave.MedicalEnded
	ml.EndedAt = &endedAt
	m.medical[id] = ml
	return nil
}

func (m *Memory) ListMedicalLeavesByPerson(_ context.Context, personID string) ([]leave.MedicalLeave, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []leave.MedicalLeave
	for _, ml := range m.medical {
		if ml.PersonID == personID {
			out = append(out, ml)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListActiveMedicalLeaves(_ context.Context) ([]leave.MedicalLeave, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []leave.MedicalLeave
	for _, ml := range m.medical {
		if ml.Status == leave.MedicalActive {
			out = append(out, ml)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// =============================================================================
// BALANCES
// =============================================================================

func (m *Memory) GetBalance(_ context.Context, personID string, year int) (*leave.VacationBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.balances[balanceKey{PersonID: personID, Year: year}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *Memory) SaveBalance(_ context.Context, b *leave.VacationBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[balanceKey{PersonID: b.PersonID, Year: b.Year}] = *b
	return nil
}

func (m *Memory) ListBalances(_ context.Context, year int) ([]leave.VacationBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []leave.VacationBalance
	for k, b := range m.balances {
		if k.Year == year {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PersonID < out[j].PersonID })
	return out, nil
}
