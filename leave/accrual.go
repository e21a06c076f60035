/*
accrual.go - Vacation balance computation

PURPOSE:
  Computes accrued/used/balance days for a person and year. Accrual is
  contract-anniversary-relative, not calendar-year: days accrue monthly from
  the later of the contract start and the most recent anniversary before the
  year begins, and cap at the annual entitlement.

RATE TABLE:
  All contract models accrue 2.5 days per complete month, capped at 30 days
  per cycle (the standard CLT entitlement). Models that differ only in
  allowance (abono) rules do not change accrual; the contract model is kept
  on the person so reporting collaborators can render it. PJ contracts carry
  an advisory accumulation warning once 30 unused days pile up - it never
  blocks a request.

USED DAYS:
  Sum of inclusive day spans of VACATION and DAY_OFF requests in final
  approved or completed state whose range intersects the year. A request
  spanning a year boundary contributes only the days inside the year.

DETERMINISM:
  ComputeBalance is pure: same inputs, same output, no side effects. It is
  safe to call repeatedly; callers decide when to persist the snapshot.

SEE ALSO:
  - override.go: supersedes/restores these figures
  - factory/contracts.go: per-model plan presets
*/
package leave

import "github.com/shopspring/decimal"

// =============================================================================
// ACCRUAL PLAN
// =============================================================================

// AccrualPlan holds the accrual constants for a contract model.
type AccrualPlan struct {
	Model            ContractModel
	MonthlyRate      decimal.Decimal // days accrued per complete month
	AnnualCap        decimal.Decimal // entitlement ceiling per cycle
	WarningThreshold decimal.Decimal // advisory; zero disables
}

// DefaultPlan returns the accrual constants for a contract model.
// Accrual is identical across models; only the PJ advisory warning differs.
func DefaultPlan(model ContractModel) AccrualPlan {
	plan := AccrualPlan{
		Model:       model,
		MonthlyRate: decimal.RequireFromString("2.5"),
		AnnualCap:   decimal.NewFromInt(30),
	}
	if model == ContractPJ {
		plan.WarningThreshold = decimal.NewFromInt(30)
	}
	return plan
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator computes vacation balances. Zero value uses DefaultPlan for
// every model; Plans overrides per model when set.
type Calculator struct {
	Plans map[ContractModel]AccrualPlan
}

func (c *Calculator) plan(model ContractModel) AccrualPlan {
	if c != nil && c.Plans != nil {
		if p, ok := c.Plans[model]; ok {
			return p
		}
	}
	return DefaultPlan(model)
}

// ComputeBalance computes the automatic balance for person/year as of the
// given evaluation date. approvedRequests is the person's request history
// snapshot; only final-approved and completed VACATION/DAY_OFF entries
// intersecting the year count as used.
func (c *Calculator) ComputeBalance(person Person, year int, approvedRequests []LeaveRequest, asOf LocalDate) (VacationBalance, error) {
	if person.ContractStart == nil {
		return VacationBalance{}, ErrMissingContractDate
	}
	start := *person.ContractStart
	plan := c.plan(person.ContractModel)

	accrued := c.accruedDays(start, year, asOf, plan)
	used := usedDaysInYear(person.ID, year, approvedRequests)

	b := VacationBalance{
		PersonID:            person.ID,
		Year:                year,
		AccruedDays:         accrued,
		UsedDays:            used,
		BalanceDays:         accrued.Sub(used),
		ContractAnniversary: RealizeAnniversary(start, year),
	}
	if !plan.WarningThreshold.IsZero() && b.BalanceDays.GreaterThanOrEqual(plan.WarningThreshold) {
		b.AccumulationWarning = true
	}
	return b, nil
}

// accruedDays counts complete months from the cycle start to the evaluation
// point at the plan's monthly rate, capped at the annual entitlement.
func (c *Calculator) accruedDays(contractStart LocalDate, year int, asOf LocalDate, plan AccrualPlan) decimal.Decimal {
	cycleStart := c.cycleStart(contractStart, year)
	if asOf.Before(cycleStart) {
		return decimal.Zero
	}
	months := CompleteMonthsBetween(cycleStart, asOf)
	accrued := plan.MonthlyRate.Mul(decimal.NewFromInt(int64(months)))
	if accrued.GreaterThan(plan.AnnualCap) {
		return plan.AnnualCap
	}
	return accrued
}

// cycleStart is the later of the contract start and the most recent contract
// anniversary before the year begins (the anniversary realized in year-1).
func (c *Calculator) cycleStart(contractStart LocalDate, year int) LocalDate {
	return contractStart.Max(RealizeAnniversary(contractStart, year-1))
}

func usedDaysInYear(personID string, year int, requests []LeaveRequest) decimal.Decimal {
	total := 0
	for i := range requests {
		r := &requests[i]
		if r.RequesterID != personID {
			continue
		}
		if r.Type != TypeVacation && r.Type != TypeDayOff {
			continue
		}
		if !r.Status.CountsAsUsed() {
			continue
		}
		total += r.DaysInYear(year)
	}
	return decimal.NewFromInt(int64(total))
}
