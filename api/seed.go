/*
seed.go - Demo organization loader

PURPOSE:
  Populates the store with a small organization and a handful of requests
  in different lifecycle states, for demos and manual poking. Everything
  goes through the real intake and workflow paths so the seeded data obeys
  the same rules as production traffic.

THE ORG:
  dir-ana    DIRECTOR, manages mgr-bruno
  mgr-bruno  MANAGER, manages the three collaborators
  col-carla  CLT, hired two years ago
  col-diego  PJ, hired 18 months ago
  col-eva    CLT_FREE_ALLOWANCE, hired last month (no vacation accrued yet)

SEE ALSO:
  - handlers.go: the /api/admin/seed endpoint
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/warp/leave-engine/leave"
)

// LoadSeed loads the demo organization. Safe to call more than once for
// people (upsert); requests accumulate, so use a fresh store for a clean
// demo.
func (h *Handler) LoadSeed(w http.ResponseWriter, r *http.Request) {
	if err := h.seed(r.Context()); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}

func (h *Handler) seed(ctx context.Context) error {
	today := h.today()
	dir := "dir-ana"
	mgr := "mgr-bruno"

	people := []leave.Person{
		{
			ID: dir, Name: "Ana Duarte", Email: "ana@example.com",
			ContractStart: datePtr(today.AddYears(-6)),
			BirthDate:     datePtr(leave.NewDate(1980, 3, 12)),
			ContractModel: leave.ContractCLT, Role: leave.RoleDirector, Active: true,
		},
		{
			ID: mgr, Name: "Bruno Lima", Email: "bruno@example.com",
			ContractStart: datePtr(today.AddYears(-4)),
			BirthDate:     datePtr(leave.NewDate(1987, 11, 2)),
			ContractModel: leave.ContractCLT, Role: leave.RoleManager,
			ManagerID: &dir, Active: true,
		},
		{
			ID: "col-carla", Name: "Carla Nunes", Email: "carla@example.com",
			ContractStart: datePtr(today.AddYears(-2)),
			BirthDate:     datePtr(leave.NewDate(1993, 6, 15)),
			ContractModel: leave.ContractCLT, Role: leave.RoleCollaborator,
			ManagerID: &mgr, Active: true,
		},
		{
			ID: "col-diego", Name: "Diego Prado", Email: "diego@example.com",
			ContractStart: datePtr(today.AddMonths(-18)),
			BirthDate:     datePtr(leave.NewDate(1990, 1, 30)),
			ContractModel: leave.ContractPJ, Role: leave.RoleCollaborator,
			ManagerID: &mgr, Active: true,
		},
		{
			ID: "col-eva", Name: "Eva Sampaio", Email: "eva@example.com",
			ContractStart: datePtr(today.AddMonths(-1)),
			BirthDate:     datePtr(leave.NewDate(1998, 9, 21)),
			ContractModel: leave.ContractCLTFreeAllowance, Role: leave.RoleCollaborator,
			ManagerID: &mgr, Active: true,
		},
	}
	for i := range people {
		if err := h.Store.SavePerson(ctx, &people[i]); err != nil {
			return fmt.Errorf("seed person %s: %w", people[i].ID, err)
		}
	}

	carla := leave.Actor{ID: "col-carla", Role: leave.RoleCollaborator}
	diego := leave.Actor{ID: "col-diego", Role: leave.RoleCollaborator}
	bruno := leave.Actor{ID: mgr, Role: leave.RoleManager}
	ana := leave.Actor{ID: dir, Role: leave.RoleDirector}

	// Carla: vacation fully approved, both stages.
	vac, err := h.Requests.Submit(ctx, carla, leave.NewRequest{
		RequesterID: carla.ID,
		Type:        leave.TypeVacation,
		StartDate:   today.AddDays(30),
		EndDate:     today.AddDays(39),
	})
	if err != nil {
		return fmt.Errorf("seed vacation: %w", err)
	}
	if _, err := h.Workflow.Apply(ctx, vac.ID, leave.ActionApprove, bruno, "coverage confirmed"); err != nil {
		return fmt.Errorf("seed manager approval: %w", err)
	}
	if _, err := h.Workflow.Apply(ctx, vac.ID, leave.ActionApprove, ana, ""); err != nil {
		return fmt.Errorf("seed director approval: %w", err)
	}

	// Diego: vacation waiting on the manager.
	if _, err := h.Requests.Submit(ctx, diego, leave.NewRequest{
		RequesterID: diego.ID,
		Type:        leave.TypeVacation,
		StartDate:   today.AddDays(60),
		EndDate:     today.AddDays(64),
	}); err != nil {
		return fmt.Errorf("seed pending vacation: %w", err)
	}

	// Carla: a draft she hasn't submitted yet.
	if _, err := h.Requests.Submit(ctx, carla, leave.NewRequest{
		RequesterID: carla.ID,
		Type:        leave.TypeVacation,
		StartDate:   today.AddDays(120),
		EndDate:     today.AddDays(124),
		KeepDraft:   true,
	}); err != nil {
		return fmt.Errorf("seed draft: %w", err)
	}

	h.Log.Info("demo organization seeded")
	return nil
}

func datePtr(d leave.LocalDate) *leave.LocalDate { return &d }
