/*
Package factory provides JSON to Go accrual plan conversion.

PURPOSE:
  Converts JSON plan definitions into leave.AccrualPlan values. HR can
  tune accrual constants per contract model without code changes; the
  engine consumes the resulting plan table through leave.Calculator.

JSON SCHEMA:
  {
    "model": "PJ",
    "monthly_rate": "2.5",
    "annual_cap": "30",
    "warning_threshold": "30"
  }

  Rates are decimal strings to keep 2.5 days/month exact. Omitted fields
  fall back to the engine defaults for the model; a zero warning threshold
  disables the advisory warning.

USAGE:
  plans, err := factory.ParsePlans(jsonString)
  calc := &leave.Calculator{Plans: plans}

SEE ALSO:
  - leave/accrual.go: AccrualPlan and DefaultPlan
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PlanJSON is the JSON representation of an accrual plan.
type PlanJSON struct {
	Model            string `json:"model"`
	MonthlyRate      string `json:"monthly_rate,omitempty"`
	AnnualCap        string `json:"annual_cap,omitempty"`
	WarningThreshold string `json:"warning_threshold,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParsePlan converts a single JSON plan into an AccrualPlan, starting from
// the engine defaults for the model.
func ParsePlan(p PlanJSON) (leave.AccrualPlan, error) {
	model := leave.ContractModel(p.Model)
	if !model.Valid() {
		return leave.AccrualPlan{}, fmt.Errorf("unknown contract model %q", p.Model)
	}

	plan := leave.DefaultPlan(model)
	var err error
	if p.MonthlyRate != "" {
		if plan.MonthlyRate, err = decimal.NewFromString(p.MonthlyRate); err != nil {
			return leave.AccrualPlan{}, fmt.Errorf("monthly_rate: %w", err)
		}
	}
	if p.AnnualCap != "" {
		if plan.AnnualCap, err = decimal.NewFromString(p.AnnualCap); err != nil {
			return leave.AccrualPlan{}, fmt.Errorf("annual_cap: %w", err)
		}
	}
	if p.WarningThreshold != "" {
		if plan.WarningThreshold, err = decimal.NewFromString(p.WarningThreshold); err != nil {
			return leave.AccrualPlan{}, fmt.Errorf("warning_threshold: %w", err)
		}
	}
	return plan, nil
}

// ParsePlans parses a JSON array of plans into a per-model table.
func ParsePlans(raw string) (map[leave.ContractModel]leave.AccrualPlan, error) {
	var items []PlanJSON
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("invalid plan config: %w", err)
	}

	plans := make(map[leave.ContractModel]leave.AccrualPlan, len(items))
	for _, item := range items {
		plan, err := ParsePlan(item)
		if err != nil {
			return nil, fmt.Errorf("plan %q: %w", item.Model, err)
		}
		if _, dup := plans[plan.Model]; dup {
			return nil, fmt.Errorf("duplicate plan for model %q", item.Model)
		}
		plans[plan.Model] = plan
	}
	return plans, nil
}

// DefaultPlans returns the full default table, one plan per contract model.
func DefaultPlans() map[leave.ContractModel]leave.AccrualPlan {
	models := []leave.ContractModel{
		leave.ContractCLT,
		leave.ContractCLTFixedAllowance,
		leave.ContractCLTFreeAllowance,
		leave.ContractPJ,
	}
	plans := make(map[leave.ContractModel]leave.AccrualPlan, len(models))
	for _, m := range models {
		plans[m] = leave.DefaultPlan(m)
	}
	return plans
}
