package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/leave/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var (
	collaborator = leave.Actor{ID: "col-1", Role: leave.RoleCollaborator}
	manager      = leave.Actor{ID: "mgr-1", Role: leave.RoleManager}
	director     = leave.Actor{ID: "dir-1", Role: leave.RoleDirector}
	outsider     = leave.Actor{ID: "col-2", Role: leave.RoleCollaborator}
)

// newTestWorkflow seeds the standard org chart:
// dir-1 manages mgr-1, mgr-1 manages col-1 and col-2.
func newTestWorkflow(t *testing.T) (*leave.Workflow, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	mgrID := manager.ID
	dirID := director.ID
	people := []leave.Person{
		{ID: dirID, Name: "Director", Role: leave.RoleDirector, ContractModel: leave.ContractCLT, Active: true, ManagerID: &mgrID},
		{ID: mgrID, Name: "Manager", Role: leave.RoleManager, ContractModel: leave.ContractCLT, Active: true, ManagerID: &dirID},
		{ID: collaborator.ID, Name: "Collaborator", Role: leave.RoleCollaborator, ContractModel: leave.ContractCLT, Active: true, ManagerID: &mgrID},
		{ID: outsider.ID, Name: "Other Collaborator", Role: leave.RoleCollaborator, ContractModel: leave.ContractCLT, Active: true, ManagerID: &mgrID},
	}
	for i := range people {
		require.NoError(t, mem.SavePerson(ctx, &people[i]))
	}

	wf := &leave.Workflow{
		Requests: mem,
		People:   mem,
		Clock:    func() time.Time { return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC) },
	}
	return wf, mem
}

func seedRequest(t *testing.T, mem *store.Memory, id, requesterID string, status leave.RequestStatus) *leave.LeaveRequest {
	t.Helper()
	req := &leave.LeaveRequest{
		ID:          id,
		RequesterID: requesterID,
		Type:        leave.TypeVacation,
		StartDate:   leave.NewDate(2025, time.July, 1),
		EndDate:     leave.NewDate(2025, time.July, 10),
		Status:      status,
		Version:     1,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, mem.CreateRequest(context.Background(), req))
	return req
}

// =============================================================================
// HAPPY PATH
// =============================================================================

func TestWorkflow_FullApprovalChain(t *testing.T) {
	// GIVEN: A draft vacation request from col-1
	// WHEN: Submit, manager approve, director approve
	// THEN: DRAFT -> AWAITING_MANAGER -> AWAITING_DIRECTOR -> APPROVED_FINAL,
	//       with one Approval row per decision

	wf, mem := newTestWorkflow(t)
	ctx := context.Background()
	req := seedRequest(t, mem, "r1", collaborator.ID, leave.StatusDraft)

	r, err := wf.Apply(ctx, req.ID, leave.ActionSubmit, collaborator, "")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusAwaitingManager, r.Status)

	r, err = wf.Apply(ctx, req.ID, leave.ActionApprove, manager, "coverage ok")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusAwaitingDirector, r.Status)

	r, err = wf.Apply(ctx, req.ID, leave.ActionApprove, director, "")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApprovedFinal, r.Status)
	assert.Equal(t, int64(4), r.Version, "three transitions from version 1")

	approvals, err := mem.ListApprovals(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, approvals, 2, "submit writes no approval row")
	assert.Equal(t, leave.LevelManager, approvals[0].Level)
	assert.Equal(t, "coverage ok", approvals[0].Comment)
	assert.Equal(t, leave.LevelDirector, approvals[1].Level)
	assert.Equal(t, leave.ApprovalApproved, approvals[1].Action)
}

func TestWorkflow_InfoRequestRoundTrip(t *testing.T) {
	// AWAITING_MANAGER -> INFO_REQUESTED -> PENDING -> AWAITING_DIRECTOR
	wf, mem := newTestWorkflow(t)
	ctx := context.Background()
	req := seedRequest(t, mem, "r1", collaborator.ID, leave.StatusAwaitingManager)

	r, err := wf.Apply(ctx, req.ID, leave.ActionRequestInfo, manager, "which days exactly?")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusInfoRequested, r.Status)

	r, err = wf.Apply(ctx, req.ID, leave.ActionResubmit, collaborator, "dates confirmed")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, r.Status)

	r, err = wf.Apply(ctx, req.ID, leave.ActionApprove, manager, "")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusAwaitingDirector, r.Status)
}

// =============================================================================
// GATES
// =============================================================================

func TestWorkflow_ManagerStageRequiresTheManager(t *testing.T) {
	wf, mem := newTestWorkflow(t)
	ctx := context.Background()
	req := seedRequest(t, mem, "r1", collaborator.ID, leave.StatusAwaitingManager)

	// Another collaborator cannot approve
	_, err := wf.Apply(ctx, req.ID, leave.ActionApprove, outsider, "")
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)

	// Even the director cannot stand in at the manager stage
	_, err = wf.Apply(ctx, req.ID, leave.ActionApprove, director, "")
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)

	// State unchanged after the rejected attempts
	current, err := mem.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusAwaitingManager, current.Status)
	assert.Equal(t, int64(1), current.Version)
}

func TestWorkflow_DirectorCannotApproveOwnRequest(t *testing.T) {
	// GIVEN: The director's own request at the director stage
	wf, mem := newTestWorkflow(t)
	ctx := context.Background()
	req := seedRequest(t, mem, "r1", director.ID, leave.StatusAwaitingDirector)

	// WHEN: The same director tries to give final approval
	_, err := wf.Apply(ctx, req.ID, leave.ActionApprove, director, "")

	// THEN: Rejected; self-approval is not a legal edge
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)
}

func TestWorkflow_CancelGates(t *testing.T) {
	wf, mem := newTestWorkflow(t)
	ctx := context.Background()

	// The requester may cancel their own pending request
	req := seedRequest(t, mem, "r1", collaborator.ID, leave.StatusAwaitingManager)
	r, err := wf.Apply(ctx, req.ID, leave.ActionCancel, collaborator, "changed plans")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, r.Status)

	// A director may cancel anyone's, even post-approval
	req2 := seedRequest(t, mem, "r2", collaborator.ID, leave.StatusApprovedFinal)
	r, err = wf.Apply(ctx, req2.ID, leave.ActionCancel, director, "project emergency")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, r.Status)

	// The manager, being neither, may not
	req3 := seedRequest(t, mem, "r3", collaborator.ID, leave.StatusAwaitingManager)
	_, err = wf.Apply(ctx, req3.ID, leave.ActionCancel, manager, "")
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)
}

func TestWorkflow_TerminalStatesAreDeadEnds(t *testing.T) {
	wf, mem := newTestWorkflow(t)
	ctx := context.Background()

	for i, status := range []leave.RequestStatus{
		leave.StatusRejected, leave.StatusCancelled, leave.StatusCompleted,
	} {
		req := seedRequest(t, mem, string(rune('a'+i)), collaborator.ID, status)
		for _, action := range []leave.Action{
			leave.ActionSubmit, leave.ActionApprove, leave.ActionReject,
			leave.ActionRequestInfo, leave.ActionResubmit, leave.ActionCancel,
			leave.ActionElapse,
		} {
			_, err := wf.Apply(ctx, req.ID, action, director, "")
			assert.ErrorIs(t, err, leave.ErrInvalidTransition,
				"%s on %s should be invalid", action, status)
		}
	}
}

func TestWorkflow_EmptyActorPanics(t *testing.T) {
	wf, mem := newTestWorkflow(t)
	seedRequest(t, mem, "r1", collaborator.ID, leave.StatusDraft)

	assert.Panics(t, func() {
		wf.Apply(context.Background(), "r1", leave.ActionSubmit, leave.Actor{}, "")
	})
}

// =============================================================================
// OPTIMISTIC CONCURRENCY
// =============================================================================

func TestWorkflow_StaleStateOnConcurrentTransition(t *testing.T) {
	// GIVEN: Two actors read the same request version
	// WHEN: Both try to transition it
	// THEN: The second write fails with StaleState and changes nothing

	wf, mem := newTestWorkflow(t)
	ctx := context.Background()
	req := seedRequest(t, mem, "r1", collaborator.ID, leave.StatusAwaitingManager)

	// First writer wins
	_, err := wf.Apply(ctx, req.ID, leave.ActionApprove, manager, "")
	require.NoError(t, err)

	// Simulate the loser holding the old version
	stale := *req
	stale.Status = leave.StatusCancelled
	stale.Version = req.Version + 1
	err = mem.Transition(ctx, &stale, req.Version, nil)
	assert.ErrorIs(t, err, leave.ErrStaleState)
	assert.True(t, leave.IsRetryable(err))

	current, err := mem.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusAwaitingDirector, current.Status)
}

// =============================================================================
// EVENTS AND ELAPSE
// =============================================================================

func TestWorkflow_PublishesOneEventPerTransition(t *testing.T) {
	wf, mem := newTestWorkflow(t)
	ctx := context.Background()

	var events []leave.TransitionEvent
	wf.Sink = leave.EventSinkFunc(func(e leave.TransitionEvent) { events = append(events, e) })

	req := seedRequest(t, mem, "r1", collaborator.ID, leave.StatusDraft)
	_, err := wf.Apply(ctx, req.ID, leave.ActionSubmit, collaborator, "")
	require.NoError(t, err)
	_, err = wf.Apply(ctx, req.ID, leave.ActionReject, manager, "no coverage")
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, leave.StatusDraft, events[0].From)
	assert.Equal(t, leave.StatusAwaitingManager, events[0].To)
	assert.Equal(t, leave.StatusRejected, events[1].To)
	assert.Equal(t, manager.ID, events[1].ActorID)
	assert.Equal(t, "no coverage", events[1].Comment)

	// A failed transition publishes nothing
	_, err = wf.Apply(ctx, req.ID, leave.ActionApprove, manager, "")
	require.Error(t, err)
	assert.Len(t, events, 2)
}

func TestWorkflow_ElapseDue(t *testing.T) {
	// GIVEN: Two approved requests, one fully in the past
	wf, mem := newTestWorkflow(t)
	ctx := context.Background()

	past := &leave.LeaveRequest{
		ID:          "r-past",
		RequesterID: collaborator.ID,
		Type:        leave.TypeVacation,
		StartDate:   leave.NewDate(2025, time.May, 1),
		EndDate:     leave.NewDate(2025, time.May, 5),
		Status:      leave.StatusApprovedFinal,
		Version:     1,
	}
	require.NoError(t, mem.CreateRequest(ctx, past))

	seedRequest(t, mem, "r-future", outsider.ID, leave.StatusApprovedFinal)

	// WHEN: Sweeping with today = 2025-06-01
	completed, err := wf.ElapseDue(ctx, leave.NewDate(2025, time.June, 1))
	require.NoError(t, err)

	// THEN: Only the elapsed one completes
	assert.Equal(t, []string{"r-past"}, completed)

	got, err := mem.GetRequest(ctx, "r-past")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCompleted, got.Status)

	got, err = mem.GetRequest(ctx, "r-future")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApprovedFinal, got.Status)
}
