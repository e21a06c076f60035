/*
workflow.go - Approval state machine for leave requests

PURPOSE:
  Owns the request lifecycle. Transitions are validated against a closed
  table keyed by (state, action); each edge carries a gate deciding which
  actor may take it. Anything not in the table fails with
  InvalidTransition and writes nothing.

STATE DIAGRAM:

  DRAFT ──submit──▶ AWAITING_MANAGER ──approve──▶ AWAITING_DIRECTOR
                        │   ▲                          │
                        │   │                       approve
            request_info│   │resubmit                  │
                        ▼   │ (via PENDING)            ▼
                   INFO_REQUESTED              APPROVED_FINAL ──elapse──▶ COMPLETED

  reject  (manager or director stage) ──▶ REJECTED
  cancel  (any non-terminal, requester or director) ──▶ CANCELLED

  PENDING is equivalent to AWAITING_MANAGER for gating purposes: it is the
  entry state for resubmissions and for callers that submit without the
  draft step.

GATES:
  approve at manager stage   the requester's resolved manager
  approve at director stage  any DIRECTOR except the requester themselves
                             (self-approval is explicitly rejected)
  reject / request_info      same actor rule as approve at that stage
  resubmit                   the requester
  cancel                     the requester or any DIRECTOR
  elapse                     the system clock (end date passed)

ATOMICITY:
  Every approve/reject/request_info appends exactly one Approval record,
  written in the same store transaction as the status change. A failed
  write leaves both untouched. Concurrent transitions on one request are
  serialized by an optimistic version check: the second writer gets
  StaleState and must re-read.

EVENTS:
  After a transition commits, the engine publishes a TransitionEvent to the
  configured EventSink. Notification delivery is the sink's problem.

SEE ALSO:
  - requests.go: submission gates in front of this machine
  - store.go: the Transition persistence contract
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ACTIONS AND ACTORS
// =============================================================================

type Action string

const (
	ActionSubmit      Action = "submit"
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
	ActionRequestInfo Action = "request_info"
	ActionResubmit    Action = "resubmit"
	ActionCancel      Action = "cancel"
	ActionElapse      Action = "elapse"
)

// Actor is the resolved identity behind every mutating call. Authorization
// is enforced here, not assumed upstream.
type Actor struct {
	ID   string
	Role Role
}

// SystemActor drives clock-based transitions (elapse).
var SystemActor = Actor{ID: "system"}

// =============================================================================
// TRANSITION TABLE
// =============================================================================

type gate int

const (
	gateRequester gate = iota
	gateManagerStage
	gateDirectorStage
	gateRequesterOrDirector
	gateSystem
)

type transitionRule struct {
	From   RequestStatus
	Action Action
	To     RequestStatus
	Gate   gate

	// Decision actions append one Approval row at this level.
	Level ApprovalLevel
}

// transitionTable is the complete set of legal edges. Everything else is
// InvalidTransition.
var transitionTable = []transitionRule{
	{From: StatusDraft, Action: ActionSubmit, To: StatusAwaitingManager, Gate: gateRequester},

	{From: StatusPending, Action: ActionApprove, To: StatusAwaitingDirector, Gate: gateManagerStage, Level: LevelManager},
	{From: StatusAwaitingManager, Action: ActionApprove, To: StatusAwaitingDirector, Gate: gateManagerStage, Level: LevelManager},
	{From: StatusAwaitingDirector, Action: ActionApprove, To: StatusApprovedFinal, Gate: gateDirectorStage, Level: LevelDirector},

	{From: StatusPending, Action: ActionReject, To: StatusRejected, Gate: gateManagerStage, Level: LevelManager},
	{From: StatusAwaitingManager, Action: ActionReject, To: StatusRejected, Gate: gateManagerStage, Level: LevelManager},
	{From: StatusAwaitingDirector, Action: ActionReject, To: StatusRejected, Gate: gateDirectorStage, Level: LevelDirector},

	{From: StatusPending, Action: ActionRequestInfo, To: StatusInfoRequested, Gate: gateManagerStage, Level: LevelManager},
	{From: StatusAwaitingManager, Action: ActionRequestInfo, To: StatusInfoRequested, Gate: gateManagerStage, Level: LevelManager},
	{From: StatusAwaitingDirector, Action: ActionRequestInfo, To: StatusInfoRequested, Gate: gateDirectorStage, Level: LevelDirector},

	{From: StatusInfoRequested, Action: ActionResubmit, To: StatusPending, Gate: gateRequester},

	{From: StatusDraft, Action: ActionCancel, To: StatusCancelled, Gate: gateRequesterOrDirector},
	{From: StatusPending, Action: ActionCancel, To: StatusCancelled, Gate: gateRequesterOrDirector},
	{From: StatusAwaitingManager, Action: ActionCancel, To: StatusCancelled, Gate: gateRequesterOrDirector},
	{From: StatusAwaitingDirector, Action: ActionCancel, To: StatusCancelled, Gate: gateRequesterOrDirector},
	{From: StatusInfoRequested, Action: ActionCancel, To: StatusCancelled, Gate: gateRequesterOrDirector},
	{From: StatusApprovedFinal, Action: ActionCancel, To: StatusCancelled, Gate: gateRequesterOrDirector},

	{From: StatusApprovedFinal, Action: ActionElapse, To: StatusCompleted, Gate: gateSystem},
}

func findRule(from RequestStatus, action Action) *transitionRule {
	for i := range transitionTable {
		if transitionTable[i].From == from && transitionTable[i].Action == action {
			return &transitionTable[i]
		}
	}
	return nil
}

// =============================================================================
// WORKFLOW ENGINE
// =============================================================================

// Workflow applies role-gated transitions to leave requests. Clock defaults
// to time.Now and Sink to NopSink when unset.
type Workflow struct {
	Requests RequestStore
	People   PersonStore
	Sink     EventSink
	Clock    func() time.Time
}

func (w *Workflow) now() time.Time {
	if w.Clock != nil {
		return w.Clock()
	}
	return time.Now()
}

func (w *Workflow) publish(e TransitionEvent) {
	if w.Sink != nil {
		w.Sink.Publish(e)
	}
}

// Apply executes one transition. On success the returned request reflects
// the new state; on any error the stored state is unchanged.
//
// Calling Apply without a resolved actor identity is a programming error
// and panics; every other failure is a recoverable, user-facing error.
func (w *Workflow) Apply(ctx context.Context, requestID string, action Action, actor Actor, comment string) (*LeaveRequest, error) {
	if actor.ID == "" {
		panic("leave: Apply called without a resolved actor identity")
	}

	req, err := w.Requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	rule := findRule(req.Status, action)
	if rule == nil {
		return nil, &InvalidTransitionError{RequestID: req.ID, From: req.Status, Action: action, Role: actor.Role}
	}
	if err := w.checkGate(ctx, rule, req, action, actor); err != nil {
		return nil, err
	}

	now := w.now()
	updated := *req
	updated.Status = rule.To
	updated.UpdatedAt = now
	updated.Version = req.Version + 1

	var approval *Approval
	if action == ActionApprove || action == ActionReject || action == ActionRequestInfo {
		approval = &Approval{
			ID:         uuid.NewString(),
			RequestID:  req.ID,
			ApproverID: actor.ID,
			Level:      rule.Level,
			Action:     approvalAction(action),
			Comment:    comment,
			CreatedAt:  now,
		}
	}

	if err := w.Requests.Transition(ctx, &updated, req.Version, approval); err != nil {
		return nil, err
	}

	w.publish(TransitionEvent{
		RequestID: req.ID,
		From:      req.Status,
		To:        updated.Status,
		ActorID:   actor.ID,
		Comment:   comment,
		At:        now,
	})
	return &updated, nil
}

func approvalAction(a Action) ApprovalAction {
	switch a {
	case ActionApprove:
		return ApprovalApproved
	case ActionReject:
		return ApprovalRejected
	default:
		return ApprovalInfoRequested
	}
}

func (w *Workflow) checkGate(ctx context.Context, rule *transitionRule, req *LeaveRequest, action Action, actor Actor) error {
	invalid := func(detail string) error {
		return &InvalidTransitionError{RequestID: req.ID, From: req.Status, Action: action, Role: actor.Role, Detail: detail}
	}

	switch rule.Gate {
	case gateRequester:
		if actor.ID != req.RequesterID {
			return invalid("only the requester may do this")
		}

	case gateManagerStage:
		requester, err := w.People.GetPerson(ctx, req.RequesterID)
		if err != nil {
			return err
		}
		if requester.ManagerID == nil {
			return invalid("requester has no resolved manager")
		}
		if actor.ID != *requester.ManagerID {
			return invalid("only the requester's manager may decide at this stage")
		}

	case gateDirectorStage:
		if actor.Role != RoleDirector {
			return invalid("director stage requires a DIRECTOR")
		}
		if action == ActionApprove && actor.ID == req.RequesterID {
			return invalid("directors may not approve their own request")
		}

	case gateRequesterOrDirector:
		if actor.ID != req.RequesterID && actor.Role != RoleDirector {
			return invalid("only the requester or a director may cancel")
		}

	case gateSystem:
		if actor.ID != SystemActor.ID {
			return invalid("clock-driven transition")
		}
	}
	return nil
}

// =============================================================================
// ELAPSE SWEEP - Lazily completes approved requests whose period passed
// =============================================================================

// ElapseDue moves every APPROVED_FINAL request whose end date is before
// today to COMPLETED. Intended for an external scheduler tick or lazy
// evaluation on read; the engine owns no timer. Returns the completed ids.
func (w *Workflow) ElapseDue(ctx context.Context, today LocalDate) ([]string, error) {
	due, err := w.Requests.ListRequestsByStatus(ctx, StatusApprovedFinal)
	if err != nil {
		return nil, err
	}

	var completed []string
	for i := range due {
		r := &due[i]
		if !r.Elapsed(today) {
			continue
		}
		if _, err := w.Apply(ctx, r.ID, ActionElapse, SystemActor, ""); err != nil {
			// A concurrent transition beat us; skip and let the next
			// sweep pick up whatever state remains.
			if IsRetryable(err) {
				continue
			}
			return completed, fmt.Errorf("elapse %s: %w", r.ID, err)
		}
		completed = append(completed, r.ID)
	}
	return completed, nil
}
