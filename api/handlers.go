/*
handlers.go - HTTP API handlers for the leave engine

PURPOSE:
  Exposes the leave engine via REST API. Handles HTTP request/response,
  JSON serialization, actor resolution, and delegates to domain logic.

ENDPOINTS:
  People:
    GET    /api/people                        List people
    POST   /api/people                        Create or update a person
    GET    /api/people/{id}                   Get person details
    GET    /api/people/{id}/team              Direct reports
    GET    /api/people/{id}/team/capacity     Team medical-block check (?date=)
    GET    /api/people/{id}/requests          Request history
    POST   /api/people/{id}/requests          Submit a leave request
    GET    /api/people/{id}/balance           Balance snapshot (?year=)
    POST   /api/people/{id}/balance/recompute Force recomputation
    PUT    /api/people/{id}/balance           Manual balance override
    DELETE /api/people/{id}/balance           Restore automatic balance
    GET    /api/people/{id}/day-off           Day-off eligibility (?date=)
    GET    /api/people/{id}/medical-leaves    Medical leave history

  Requests:
    GET    /api/requests/pending              Requests awaiting decision
    GET    /api/requests/{id}                 Request plus decision trail
    POST   /api/requests/{id}/submit          Submit a kept draft
    POST   /api/requests/{id}/approve         Approve at current stage
    POST   /api/requests/{id}/reject          Reject at current stage
    POST   /api/requests/{id}/request-info    Ask the requester for info
    POST   /api/requests/{id}/resubmit        Resubmit after info request
    POST   /api/requests/{id}/cancel          Cancel

  Medical leaves:
    POST   /api/medical-leaves                Open a medical leave
    POST   /api/medical-leaves/{id}/end       End it, lifting the block

  Admin:
    POST   /api/admin/elapse                  Run the completion sweep now
    POST   /api/admin/seed                    Load the demo organization

ACTOR RESOLUTION:
  Every mutating endpoint reads the X-Actor-ID header and resolves it to a
  stored person. The resolved identity and role gate the transition inside
  the domain layer; the handler never bypasses those checks.

ERROR HANDLING:
  Engine errors carry a stable code (leave.Kind) surfaced in the JSON
  payload:
  - 400: validation and eligibility failures
  - 404: missing person/request/medical leave
  - 409: overlap conflicts and stale optimistic reads
  - 500: everything else

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
  - seed.go: demo organization loader
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    leave.Store
	Workflow *leave.Workflow
	Requests *leave.RequestService
	Balances *leave.BalanceManager
	Log      *logrus.Logger
	Metrics  *Metrics

	// Clock defaults to time.Now; tests pin it.
	Clock func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

func (h *Handler) today() leave.LocalDate { return leave.DateOf(h.now()) }

// NewHandler wires the domain services around a store and installs the
// event sink that keeps balances and metrics in step with transitions.
func NewHandler(store leave.Store, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	h := &Handler{
		Store:   store,
		Log:     log,
		Metrics: NewMetrics(),
	}
	h.Workflow = &leave.Workflow{
		Requests: store,
		People:   store,
		Sink:     leave.EventSinkFunc(h.onTransition),
	}
	h.Requests = &leave.RequestService{
		Requests: store,
		People:   store,
		Medical:  store,
		Workflow: h.Workflow,
	}
	h.Balances = &leave.BalanceManager{
		Balances: store,
		Requests: store,
		People:   store,
		Calc:     &leave.Calculator{},
	}
	return h
}

// onTransition runs after every committed transition: it logs the edge,
// bumps the counter, and refreshes the requester's balance when the request
// reached a state that changes used days.
func (h *Handler) onTransition(e leave.TransitionEvent) {
	h.Log.WithFields(logrus.Fields{
		"request_id": e.RequestID,
		"from":       e.From,
		"to":         e.To,
		"actor_id":   e.ActorID,
	}).Info("request transition")
	h.Metrics.Transitions.WithLabelValues(string(e.From), string(e.To)).Inc()

	if !e.To.CountsAsUsed() && !e.From.CountsAsUsed() {
		return
	}

	ctx := context.Background()
	req, err := h.Store.GetRequest(ctx, e.RequestID)
	if err != nil {
		h.Log.WithError(err).WithField("request_id", e.RequestID).
			Warn("balance refresh skipped: request lookup failed")
		return
	}
	asOf := leave.DateOf(e.At)
	for year := req.StartDate.Year(); year <= req.EndDate.Year(); year++ {
		if _, err := h.Balances.Recompute(ctx, req.RequesterID, year, asOf); err != nil {
			h.Log.WithError(err).WithFields(logrus.Fields{
				"person_id": req.RequesterID,
				"year":      year,
			}).Warn("balance refresh failed")
			continue
		}
		h.Metrics.Recomputes.Inc()
	}
}

// actor resolves the X-Actor-ID header to a stored person. Mutations
// without a resolvable actor stop here; the domain layer treats an empty
// actor as a programming error.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (leave.Actor, bool) {
	id := r.Header.Get("X-Actor-ID")
	if id == "" {
		writeError(w, http.StatusBadRequest, "X-Actor-ID header required", "MissingActor", nil)
		return leave.Actor{}, false
	}
	person, err := h.Store.GetPerson(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusForbidden, "unknown actor "+id, "UnknownActor", nil)
		return leave.Actor{}, false
	}
	return leave.Actor{ID: person.ID, Role: person.Role}, true
}

// =============================================================================
// PEOPLE HANDLERS
// =============================================================================

// ListPeople returns everyone on file.
func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.Store.ListPeople(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]PersonDTO, len(people))
	for i, p := range people {
		dtos[i] = toPersonDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SavePerson creates or updates a person record.
func (h *Handler) SavePerson(w http.ResponseWriter, r *http.Request) {
	var in SavePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error(), "BadRequest", nil)
		return
	}
	if in.ID == "" || in.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", "BadRequest", nil)
		return
	}

	model := leave.ContractModel(in.ContractModel)
	if !model.Valid() {
		writeError(w, http.StatusBadRequest, "unknown contract model "+in.ContractModel, "BadRequest", nil)
		return
	}
	role := leave.Role(in.Role)
	if !role.Valid() {
		writeError(w, http.StatusBadRequest, "unknown role "+in.Role, "BadRequest", nil)
		return
	}

	contractStart, err := parseOptionalDate(in.ContractStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "contract_start: "+err.Error(), "BadRequest", nil)
		return
	}
	birthDate, err := parseOptionalDate(in.BirthDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "birth_date: "+err.Error(), "BadRequest", nil)
		return
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	person := &leave.Person{
		ID:            in.ID,
		Name:          in.Name,
		Email:         in.Email,
		ContractStart: contractStart,
		BirthDate:     birthDate,
		ContractModel: model,
		Role:          role,
		ManagerID:     in.ManagerID,
		Active:        active,
	}
	if err := h.Store.SavePerson(r.Context(), person); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPersonDTO(*person))
}

// GetPerson returns one person.
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	person, err := h.Store.GetPerson(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonDTO(*person))
}

// GetTeam returns the active direct reports of a manager.
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.Store.ListTeam(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]PersonDTO, len(team))
	for i, p := range team {
		dtos[i] = toPersonDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// ListPersonRequests returns a person's request history, newest first.
func (h *Handler) ListPersonRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Store.ListRequestsByPerson(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// SubmitRequest runs intake for a new leave request.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error(), "BadRequest", nil)
		return
	}
	start, err := leave.ParseLocalDate(in.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date: "+err.Error(), "BadRequest", nil)
		return
	}
	end, err := leave.ParseLocalDate(in.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date: "+err.Error(), "BadRequest", nil)
		return
	}
	leaveType := leave.LeaveType(in.Type)
	switch leaveType {
	case leave.TypeVacation, leave.TypeDayOff, leave.TypeMedicalLeave:
	default:
		writeError(w, http.StatusBadRequest, "unknown leave type "+in.Type, "BadRequest", nil)
		return
	}

	req, err := h.Requests.Submit(r.Context(), actor, leave.NewRequest{
		RequesterID: chi.URLParam(r, "id"),
		Type:        leaveType,
		StartDate:   start,
		EndDate:     end,
		KeepDraft:   in.KeepDraft,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(*req))
}

// ListPendingRequests returns every request waiting on a decision.
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Store.ListRequestsByStatus(r.Context(),
		leave.StatusPending, leave.StatusAwaitingManager, leave.StatusAwaitingDirector)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// GetRequest returns one request together with its decision trail.
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req, err := h.Store.GetRequest(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	approvals, err := h.Store.ListApprovals(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	detail := RequestDetailDTO{
		Request:   toRequestDTO(*req),
		Approvals: make([]ApprovalDTO, len(approvals)),
	}
	for i, a := range approvals {
		detail.Approvals[i] = toApprovalDTO(a)
	}
	writeJSON(w, http.StatusOK, detail)
}

// Transition builds one state-machine endpoint. All six mutation endpoints
// share this shape: resolve actor, read optional comment, apply.
func (h *Handler) Transition(action leave.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := h.actor(w, r)
		if !ok {
			return
		}
		var in TransitionDTO
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error(), "BadRequest", nil)
				return
			}
		}
		req, err := h.Workflow.Apply(r.Context(), chi.URLParam(r, "id"), action, actor, in.Comment)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRequestDTO(*req))
	}
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// balanceParams reads the ?year= and ?as_of= query knobs, defaulting to the
// current year and today.
func (h *Handler) balanceParams(r *http.Request) (int, leave.LocalDate, error) {
	asOf := h.today()
	if s := r.URL.Query().Get("as_of"); s != "" {
		d, err := leave.ParseLocalDate(s)
		if err != nil {
			return 0, leave.LocalDate{}, err
		}
		asOf = d
	}
	year := asOf.Year()
	if s := r.URL.Query().Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			return 0, leave.LocalDate{}, err
		}
		year = y
	}
	return year, asOf, nil
}

// GetBalance returns the balance snapshot, computing one on first read.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	year, asOf, err := h.balanceParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "BadRequest", nil)
		return
	}
	b, err := h.Balances.Get(r.Context(), chi.URLParam(r, "id"), year, asOf)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(*b))
}

// RecomputeBalance forces a fresh automatic computation. Manual balances
// are left untouched.
func (h *Handler) RecomputeBalance(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}
	year, asOf, err := h.balanceParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "BadRequest", nil)
		return
	}
	b, err := h.Balances.Recompute(r.Context(), chi.URLParam(r, "id"), year, asOf)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.Metrics.Recomputes.Inc()
	writeJSON(w, http.StatusOK, toBalanceDTO(*b))
}

// SetManualBalance replaces the computed balance with a justified manual
// value.
func (h *Handler) SetManualBalance(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	year, _, err := h.balanceParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "BadRequest", nil)
		return
	}
	var in ManualBalanceDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error(), "BadRequest", nil)
		return
	}
	days, err := decimal.NewFromString(in.BalanceDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, "balance_days: "+err.Error(), "BadRequest", nil)
		return
	}
	b, err := h.Balances.SetManualBalance(r.Context(), chi.URLParam(r, "id"), year, days, in.Justification, actor.ID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(*b))
}

// RestoreAutomaticBalance clears a manual override and recomputes.
func (h *Handler) RestoreAutomaticBalance(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}
	year, asOf, err := h.balanceParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "BadRequest", nil)
		return
	}
	b, err := h.Balances.RestoreAutomatic(r.Context(), chi.URLParam(r, "id"), year, asOf)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(*b))
}

// =============================================================================
// ELIGIBILITY HANDLER
// =============================================================================

// CheckDayOff previews day-off eligibility for a date without creating
// anything.
func (h *Handler) CheckDayOff(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "id")
	person, err := h.Store.GetPerson(r.Context(), personID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	today := h.today()
	requested := today
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := leave.ParseLocalDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date: "+err.Error(), "BadRequest", nil)
			return
		}
		requested = d
	}
	history, err := h.Store.ListRequestsByPerson(r.Context(), personID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	used := false
	for i := range history {
		req := &history[i]
		if req.Type == leave.TypeDayOff && !req.Status.IsTerminalNegative() && req.StartDate.Year() == today.Year() {
			used = true
			break
		}
	}

	result := leave.EvaluateDayOff(leave.DayOffInput{
		BirthDate:           person.BirthDate,
		AlreadyUsedThisYear: used,
		IsDirector:          person.Role == leave.RoleDirector,
		Today:               today,
		RequestedDate:       requested,
	})

	dto := EligibilityDTO{Allowed: result.Allowed}
	if result.Reason != nil {
		dto.Reason = result.Reason.Error()
	}
	if result.Window != nil {
		s, e := result.Window.Start.String(), result.Window.End.String()
		dto.WindowStart, dto.WindowEnd = &s, &e
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetTeamCapacity is the manager-scoped capacity view: whether any member
// of the team has a capacity-affecting medical leave covering a date.
func (h *Handler) GetTeamCapacity(w http.ResponseWriter, r *http.Request) {
	managerID := chi.URLParam(r, "id")
	if _, err := h.Store.GetPerson(r.Context(), managerID); err != nil {
		h.writeDomainError(w, err)
		return
	}

	date := h.today()
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := leave.ParseLocalDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date: "+err.Error(), "BadRequest", nil)
			return
		}
		date = d
	}

	team, err := h.Store.ListTeam(r.Context(), managerID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	memberIDs := make([]string, len(team))
	for i, p := range team {
		memberIDs[i] = p.ID
	}
	leaves, err := h.Store.ListActiveMedicalLeaves(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dto := TeamCapacityDTO{Date: date.String()}
	if err := leave.CheckTeamMedicalBlock(memberIDs, date, leaves); err != nil {
		var blocked *leave.CapacityBlockedError
		if !errors.As(err, &blocked) {
			h.writeDomainError(w, err)
			return
		}
		until := blocked.Until.String()
		dto.Blocked = true
		dto.BlockedPersonID = blocked.PersonID
		dto.MedicalLeaveID = blocked.MedicalLeaveID
		dto.BlockedUntil = &until
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// MEDICAL LEAVE HANDLERS
// =============================================================================

// ListPersonMedicalLeaves returns a person's medical leave history.
func (h *Handler) ListPersonMedicalLeaves(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.Store.ListMedicalLeavesByPerson(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]MedicalLeaveDTO, len(leaves))
	for i, m := range leaves {
		dtos[i] = toMedicalLeaveDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// OpenMedicalLeave records a new medical leave.
func (h *Handler) OpenMedicalLeave(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in OpenMedicalLeaveDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error(), "BadRequest", nil)
		return
	}
	start, err := leave.ParseLocalDate(in.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date: "+err.Error(), "BadRequest", nil)
		return
	}
	end, err := leave.ParseLocalDate(in.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date: "+err.Error(), "BadRequest", nil)
		return
	}
	m, err := h.Requests.OpenMedicalLeave(r.Context(), actor, in.PersonID, start, end, in.AffectsTeamCapacity, in.Justification)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMedicalLeaveDTO(*m))
}

// EndMedicalLeave ends an active medical leave, lifting its capacity block.
func (h *Handler) EndMedicalLeave(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	m, err := h.Requests.EndMedicalLeave(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMedicalLeaveDTO(*m))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// RunElapse sweeps approved requests whose period has passed.
func (h *Handler) RunElapse(w http.ResponseWriter, r *http.Request) {
	completed, err := h.Workflow.ElapseDue(r.Context(), h.today())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.Metrics.SweepsCompleted.Add(float64(len(completed)))
	writeJSON(w, http.StatusOK, map[string]any{"completed": completed})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, code string, details any) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code, Details: details})
}

// writeDomainError maps engine errors to HTTP. The stable code from
// leave.Kind rides along so clients can branch without parsing messages.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	code := leave.Kind(err)
	status := http.StatusInternalServerError
	switch {
	case leave.IsNotFound(err):
		status = http.StatusNotFound
		if code == "" {
			code = "NotFound"
		}
	case errors.Is(err, leave.ErrStaleState), errors.Is(err, leave.ErrOverlapConflict):
		status = http.StatusConflict
	case leave.IsClientError(err):
		status = http.StatusBadRequest
	}

	var details any
	var overlap *leave.OverlapConflictError
	if errors.As(err, &overlap) {
		details = map[string]any{"conflict_ids": overlap.ConflictIDs}
	}
	var window *leave.OutsideWindowError
	if errors.As(err, &window) {
		details = map[string]any{
			"window_start": window.Window.Start.String(),
			"window_end":   window.Window.End.String(),
		}
	}

	if status == http.StatusInternalServerError {
		h.Log.WithError(err).Error("internal error")
	}
	if code != "" {
		h.Metrics.RequestsRejected.WithLabelValues(code).Inc()
	}
	writeError(w, status, err.Error(), code, details)
}

func parseOptionalDate(s *string) (*leave.LocalDate, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := leave.ParseLocalDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
