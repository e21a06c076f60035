package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func datePtr(d leave.LocalDate) *leave.LocalDate { return &d }

// =============================================================================
// PEOPLE
// =============================================================================

func TestSQLite_PersonRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mgr := "mgr-1"

	p := &leave.Person{
		ID:            "p1",
		Name:          "Carla Nunes",
		Email:         "carla@example.com",
		ContractStart: datePtr(leave.NewDate(2023, time.February, 1)),
		BirthDate:     datePtr(leave.NewDate(1993, time.June, 15)),
		ContractModel: leave.ContractCLT,
		Role:          leave.RoleCollaborator,
		ManagerID:     &mgr,
		Active:        true,
	}
	require.NoError(t, store.SavePerson(ctx, p))

	got, err := store.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.True(t, got.ContractStart.Equal(*p.ContractStart))
	assert.True(t, got.BirthDate.Equal(*p.BirthDate))
	require.NotNil(t, got.ManagerID)
	assert.Equal(t, mgr, *got.ManagerID)

	// Save is an upsert
	p.Name = "Carla N. Silva"
	p.Active = false
	require.NoError(t, store.SavePerson(ctx, p))
	got, err = store.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Carla N. Silva", got.Name)
	assert.False(t, got.Active)

	_, err = store.GetPerson(ctx, "missing")
	assert.ErrorIs(t, err, leave.ErrPersonNotFound)
}

func TestSQLite_NilDatesSurviveRoundTrip(t *testing.T) {
	// A person still in setup has no contract or birth date.
	store := newTestStore(t)
	ctx := context.Background()

	p := &leave.Person{ID: "p1", Name: "New Hire",
		ContractModel: leave.ContractPJ, Role: leave.RoleCollaborator, Active: true}
	require.NoError(t, store.SavePerson(ctx, p))

	got, err := store.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got.ContractStart)
	assert.Nil(t, got.BirthDate)
	assert.Nil(t, got.ManagerID)
}

// =============================================================================
// REQUESTS AND TRANSITIONS
// =============================================================================

func seedSQLRequest(t *testing.T, store *sqlite.Store, id string, status leave.RequestStatus) *leave.LeaveRequest {
	t.Helper()
	now := time.Now()
	req := &leave.LeaveRequest{
		ID:          id,
		RequesterID: "p1",
		Type:        leave.TypeVacation,
		StartDate:   leave.NewDate(2025, time.July, 1),
		EndDate:     leave.NewDate(2025, time.July, 10),
		Status:      status,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, store.CreateRequest(context.Background(), req))
	return req
}

func TestSQLite_TransitionVersionGuard(t *testing.T) {
	// GIVEN: A request at version 1
	store := newTestStore(t)
	ctx := context.Background()
	req := seedSQLRequest(t, store, "r1", leave.StatusAwaitingManager)

	// WHEN: The first writer transitions it with an approval
	updated := *req
	updated.Status = leave.StatusAwaitingDirector
	updated.Version = 2
	updated.UpdatedAt = time.Now()
	approval := &leave.Approval{
		ID: "a1", RequestID: "r1", ApproverID: "mgr-1",
		Level: leave.LevelManager, Action: leave.ApprovalApproved,
		Comment: "ok", CreatedAt: time.Now(),
	}
	require.NoError(t, store.Transition(ctx, &updated, 1, approval))

	// THEN: The stale writer fails and its approval row is not written
	stale := *req
	stale.Status = leave.StatusRejected
	stale.Version = 2
	err := store.Transition(ctx, &stale, 1, &leave.Approval{
		ID: "a2", RequestID: "r1", ApproverID: "mgr-1",
		Level: leave.LevelManager, Action: leave.ApprovalRejected, CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, leave.ErrStaleState)

	got, err := store.GetRequest(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusAwaitingDirector, got.Status)
	assert.Equal(t, int64(2), got.Version)

	approvals, err := store.ListApprovals(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, approvals, 1)
	assert.Equal(t, "a1", approvals[0].ID)
	assert.Equal(t, "ok", approvals[0].Comment)
}

func TestSQLite_TransitionMissingRequest(t *testing.T) {
	store := newTestStore(t)
	req := &leave.LeaveRequest{ID: "ghost", Status: leave.StatusCancelled, Version: 2, UpdatedAt: time.Now()}
	err := store.Transition(context.Background(), req, 1, nil)
	assert.ErrorIs(t, err, leave.ErrRequestNotFound)
}

func TestSQLite_ListRequestsByStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedSQLRequest(t, store, "r1", leave.StatusAwaitingManager)
	seedSQLRequest(t, store, "r2", leave.StatusApprovedFinal)
	seedSQLRequest(t, store, "r3", leave.StatusAwaitingDirector)

	pending, err := store.ListRequestsByStatus(ctx,
		leave.StatusAwaitingManager, leave.StatusAwaitingDirector)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	none, err := store.ListRequestsByStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, none)
}

// =============================================================================
// MEDICAL LEAVES
// =============================================================================

func TestSQLite_MedicalLeaveLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := &leave.MedicalLeave{
		ID:                  "m1",
		PersonID:            "p1",
		StartDate:           leave.NewDate(2025, time.April, 1),
		EndDate:             leave.NewDate(2025, time.April, 30),
		Status:              leave.MedicalActive,
		AffectsTeamCapacity: true,
		Justification:       "surgery recovery",
		CreatedBy:           "mgr-1",
		CreatedAt:           time.Now(),
	}
	require.NoError(t, store.CreateMedicalLeave(ctx, m))

	active, err := store.ListActiveMedicalLeaves(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	endedAt := time.Now()
	require.NoError(t, store.EndMedicalLeave(ctx, "m1", endedAt))

	got, err := store.GetMedicalLeave(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, leave.MedicalEnded, got.Status)
	require.NotNil(t, got.EndedAt)

	active, err = store.ListActiveMedicalLeaves(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	assert.ErrorIs(t, store.EndMedicalLeave(ctx, "ghost", endedAt), leave.ErrMedicalLeaveNotFound)
}

// =============================================================================
// BALANCES
// =============================================================================

func TestSQLite_BalanceUpsertKeepsDecimalsExact(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	b := &leave.VacationBalance{
		PersonID:            "p1",
		Year:                2025,
		AccruedDays:         decimal.RequireFromString("12.5"),
		UsedDays:            decimal.NewFromInt(5),
		BalanceDays:         decimal.RequireFromString("7.5"),
		ContractAnniversary: leave.NewDate(2025, time.February, 1),
	}
	require.NoError(t, store.SaveBalance(ctx, b))

	got, err := store.GetBalance(ctx, "p1", 2025)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.AccruedDays.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, got.BalanceDays.Equal(decimal.RequireFromString("7.5")))
	assert.True(t, got.ContractAnniversary.Equal(leave.NewDate(2025, time.February, 1)))

	// Upsert to a manual override
	b.IsManual = true
	b.ManualJustification = "negotiated"
	b.BalanceDays = decimal.NewFromInt(20)
	require.NoError(t, store.SaveBalance(ctx, b))

	got, err = store.GetBalance(ctx, "p1", 2025)
	require.NoError(t, err)
	assert.True(t, got.IsManual)
	assert.Equal(t, "negotiated", got.ManualJustification)
	assert.True(t, got.BalanceDays.Equal(decimal.NewFromInt(20)))

	// Absent balance is (nil, nil)
	got, err = store.GetBalance(ctx, "p1", 2030)
	require.NoError(t, err)
	assert.Nil(t, got)
}
