package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/leave/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestBalanceManager(t *testing.T) (*leave.BalanceManager, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	person := &leave.Person{
		ID:            "p1",
		Name:          "Test Person",
		ContractStart: datePtr(leave.NewDate(2025, time.January, 15)),
		ContractModel: leave.ContractCLT,
		Role:          leave.RoleCollaborator,
		Active:        true,
	}
	require.NoError(t, mem.SavePerson(context.Background(), person))

	bm := &leave.BalanceManager{
		Balances: mem,
		Requests: mem,
		People:   mem,
		Calc:     &leave.Calculator{},
	}
	return bm, mem
}

var asOfJune = leave.NewDate(2025, time.June, 15)

// =============================================================================
// RECOMPUTE AND PROVENANCE
// =============================================================================

func TestBalanceManager_GetComputesOnFirstRead(t *testing.T) {
	bm, mem := newTestBalanceManager(t)
	ctx := context.Background()

	b, err := bm.Get(ctx, "p1", 2025, asOfJune)
	require.NoError(t, err)
	assert.False(t, b.IsManual)
	// Cycle start 2025-01-15, five complete months by June 15 = 12.5
	assert.True(t, b.AccruedDays.Equal(decimal.RequireFromString("12.5")),
		"accrued = %s", b.AccruedDays)

	// The snapshot was persisted
	stored, err := mem.GetBalance(ctx, "p1", 2025)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestBalanceManager_ManualOverride(t *testing.T) {
	// GIVEN: An automatic balance
	bm, _ := newTestBalanceManager(t)
	ctx := context.Background()
	_, err := bm.Recompute(ctx, "p1", 2025, asOfJune)
	require.NoError(t, err)

	// WHEN: An authorized actor sets a manual value with a justification
	b, err := bm.SetManualBalance(ctx, "p1", 2025,
		decimal.NewFromInt(20), "credited days from previous employer", "hr-1")
	require.NoError(t, err)

	// THEN: Balance is manual; the automatic figures survive as history
	assert.True(t, b.IsManual)
	assert.True(t, b.BalanceDays.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "credited days from previous employer", b.ManualJustification)
	assert.True(t, b.AccruedDays.Equal(decimal.RequireFromString("12.5")),
		"automatic accrued should be retained, got %s", b.AccruedDays)
}

func TestBalanceManager_JustificationRequired(t *testing.T) {
	bm, _ := newTestBalanceManager(t)

	_, err := bm.SetManualBalance(context.Background(), "p1", 2025,
		decimal.NewFromInt(20), "   ", "hr-1")
	assert.ErrorIs(t, err, leave.ErrJustificationRequired)
}

func TestBalanceManager_EmptyActorPanics(t *testing.T) {
	bm, _ := newTestBalanceManager(t)

	assert.Panics(t, func() {
		bm.SetManualBalance(context.Background(), "p1", 2025,
			decimal.NewFromInt(20), "reason", "")
	})
}

func TestBalanceManager_RecomputeNeverTouchesManual(t *testing.T) {
	// GIVEN: A manual balance
	bm, _ := newTestBalanceManager(t)
	ctx := context.Background()
	_, err := bm.SetManualBalance(ctx, "p1", 2025,
		decimal.NewFromInt(20), "negotiated", "hr-1")
	require.NoError(t, err)

	// WHEN: Something triggers a recompute
	b, err := bm.Recompute(ctx, "p1", 2025, asOfJune)
	require.NoError(t, err)

	// THEN: The manual value stands
	assert.True(t, b.IsManual)
	assert.True(t, b.BalanceDays.Equal(decimal.NewFromInt(20)))
}

func TestBalanceManager_RestoreAutomatic(t *testing.T) {
	bm, _ := newTestBalanceManager(t)
	ctx := context.Background()
	_, err := bm.SetManualBalance(ctx, "p1", 2025,
		decimal.NewFromInt(20), "negotiated", "hr-1")
	require.NoError(t, err)

	// Restoring clears the manual fields and recomputes from scratch
	b, err := bm.RestoreAutomatic(ctx, "p1", 2025, asOfJune)
	require.NoError(t, err)
	assert.False(t, b.IsManual)
	assert.Empty(t, b.ManualJustification)
	assert.True(t, b.BalanceDays.Equal(decimal.RequireFromString("12.5")),
		"balance = %s", b.BalanceDays)

	// Idempotent on an already-automatic balance
	again, err := bm.RestoreAutomatic(ctx, "p1", 2025, asOfJune)
	require.NoError(t, err)
	assert.True(t, again.BalanceDays.Equal(b.BalanceDays))
}
