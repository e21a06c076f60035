package leave_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func datePtr(d leave.LocalDate) *leave.LocalDate { return &d }

func cltPerson(id string, contractStart leave.LocalDate) leave.Person {
	return leave.Person{
		ID:            id,
		Name:          "Test Person",
		ContractStart: datePtr(contractStart),
		ContractModel: leave.ContractCLT,
		Role:          leave.RoleCollaborator,
		Active:        true,
	}
}

func approvedVacation(id, personID string, start, end leave.LocalDate) leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:          id,
		RequesterID: personID,
		Type:        leave.TypeVacation,
		StartDate:   start,
		EndDate:     end,
		Status:      leave.StatusApprovedFinal,
	}
}

// =============================================================================
// ACCRUAL TESTS
// =============================================================================

func TestComputeBalance_AccruesPerCompleteMonth(t *testing.T) {
	// GIVEN: Contract started 2025-01-10, evaluated on 2025-07-10
	// WHEN: Computing the 2025 balance
	// THEN: Six complete months at 2.5 days each = 15 days

	calc := &leave.Calculator{}
	person := cltPerson("p1", leave.NewDate(2025, time.January, 10))

	b, err := calc.ComputeBalance(person, 2025, nil, leave.NewDate(2025, time.July, 10))
	require.NoError(t, err)

	assert.True(t, b.AccruedDays.Equal(decimal.RequireFromString("15")),
		"expected 15 accrued, got %s", b.AccruedDays)
	assert.True(t, b.BalanceDays.Equal(b.AccruedDays.Sub(b.UsedDays)),
		"balance must equal accrued minus used")
	assert.False(t, b.IsManual)
}

func TestComputeBalance_CapsAtAnnualEntitlement(t *testing.T) {
	// A long-tenured contract never accrues past 30 days in a cycle.
	calc := &leave.Calculator{}
	person := cltPerson("p1", leave.NewDate(2010, time.March, 1))

	b, err := calc.ComputeBalance(person, 2025, nil, leave.NewDate(2025, time.December, 31))
	require.NoError(t, err)

	assert.True(t, b.AccruedDays.Equal(decimal.NewFromInt(30)),
		"expected cap of 30, got %s", b.AccruedDays)
}

func TestComputeBalance_MissingContractDate(t *testing.T) {
	calc := &leave.Calculator{}
	person := leave.Person{ID: "p1", ContractModel: leave.ContractCLT}

	_, err := calc.ComputeBalance(person, 2025, nil, leave.NewDate(2025, time.June, 1))
	assert.ErrorIs(t, err, leave.ErrMissingContractDate)
}

func TestComputeBalance_UsedDaysClippedToYear(t *testing.T) {
	// GIVEN: An approved vacation spanning the 2025/2026 boundary
	calc := &leave.Calculator{}
	person := cltPerson("p1", leave.NewDate(2023, time.January, 1))
	history := []leave.LeaveRequest{
		approvedVacation("r1", "p1",
			leave.NewDate(2025, time.December, 29), leave.NewDate(2026, time.January, 3)),
	}

	// WHEN: Computing each year's balance
	b25, err := calc.ComputeBalance(person, 2025, history, leave.NewDate(2026, time.February, 1))
	require.NoError(t, err)
	b26, err := calc.ComputeBalance(person, 2026, history, leave.NewDate(2026, time.February, 1))
	require.NoError(t, err)

	// THEN: Each year only sees its own days
	assert.True(t, b25.UsedDays.Equal(decimal.NewFromInt(3)), "2025 used = %s", b25.UsedDays)
	assert.True(t, b26.UsedDays.Equal(decimal.NewFromInt(3)), "2026 used = %s", b26.UsedDays)
}

func TestComputeBalance_RejectedRequestsDontCount(t *testing.T) {
	calc := &leave.Calculator{}
	person := cltPerson("p1", leave.NewDate(2023, time.January, 1))
	rejected := approvedVacation("r1", "p1",
		leave.NewDate(2025, time.March, 3), leave.NewDate(2025, time.March, 7))
	rejected.Status = leave.StatusRejected

	b, err := calc.ComputeBalance(person, 2025, []leave.LeaveRequest{rejected}, leave.NewDate(2025, time.June, 1))
	require.NoError(t, err)
	assert.True(t, b.UsedDays.IsZero(), "rejected request counted as used: %s", b.UsedDays)
}

func TestComputeBalance_Deterministic(t *testing.T) {
	// Same inputs twice must give identical output.
	calc := &leave.Calculator{}
	person := cltPerson("p1", leave.NewDate(2024, time.May, 20))
	history := []leave.LeaveRequest{
		approvedVacation("r1", "p1",
			leave.NewDate(2025, time.February, 10), leave.NewDate(2025, time.February, 14)),
	}
	asOf := leave.NewDate(2025, time.August, 1)

	first, err := calc.ComputeBalance(person, 2025, history, asOf)
	require.NoError(t, err)
	second, err := calc.ComputeBalance(person, 2025, history, asOf)
	require.NoError(t, err)

	assert.True(t, first.AccruedDays.Equal(second.AccruedDays))
	assert.True(t, first.UsedDays.Equal(second.UsedDays))
	assert.True(t, first.BalanceDays.Equal(second.BalanceDays))
}

func TestComputeBalance_PJAccumulationWarning(t *testing.T) {
	// GIVEN: A PJ contract sitting on a full cycle of unused days
	calc := &leave.Calculator{}
	person := cltPerson("p1", leave.NewDate(2015, time.January, 1))
	person.ContractModel = leave.ContractPJ

	// WHEN: Nothing was used
	b, err := calc.ComputeBalance(person, 2025, nil, leave.NewDate(2025, time.December, 31))
	require.NoError(t, err)

	// THEN: Advisory warning only; figures are unchanged
	assert.True(t, b.AccumulationWarning)
	assert.True(t, b.BalanceDays.Equal(decimal.NewFromInt(30)))

	// CLT never warns
	person.ContractModel = leave.ContractCLT
	b, err = calc.ComputeBalance(person, 2025, nil, leave.NewDate(2025, time.December, 31))
	require.NoError(t, err)
	assert.False(t, b.AccumulationWarning)
}

func TestComputeBalance_AnniversaryRelativeCycle(t *testing.T) {
	// GIVEN: Contract anniversary mid-year (2023-07-01)
	// WHEN: Evaluating 2025 in October
	// THEN: Accrual counts from the 2024-07-01 anniversary, not Jan 1

	calc := &leave.Calculator{}
	person := cltPerson("p1", leave.NewDate(2023, time.July, 1))

	b, err := calc.ComputeBalance(person, 2025, nil, leave.NewDate(2025, time.October, 1))
	require.NoError(t, err)

	// 2024-07-01 .. 2025-10-01 = 15 complete months, 15 * 2.5 = 37.5, capped to 30
	assert.True(t, b.AccruedDays.Equal(decimal.NewFromInt(30)),
		"expected 30 (capped), got %s", b.AccruedDays)
	assert.True(t, b.ContractAnniversary.Equal(leave.NewDate(2025, time.July, 1)))
}
