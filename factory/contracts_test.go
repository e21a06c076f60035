package factory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/leave"
)

func TestParsePlans_OverridesOnTopOfDefaults(t *testing.T) {
	raw := `[
		{"model": "PJ", "monthly_rate": "2.0", "warning_threshold": "25"},
		{"model": "CLT"}
	]`

	plans, err := factory.ParsePlans(raw)
	require.NoError(t, err)
	require.Len(t, plans, 2)

	pj := plans[leave.ContractPJ]
	assert.True(t, pj.MonthlyRate.Equal(decimal.RequireFromString("2.0")))
	assert.True(t, pj.AnnualCap.Equal(decimal.NewFromInt(30)), "cap falls back to default")
	assert.True(t, pj.WarningThreshold.Equal(decimal.NewFromInt(25)))

	clt := plans[leave.ContractCLT]
	assert.True(t, clt.MonthlyRate.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, clt.WarningThreshold.IsZero(), "CLT has no warning by default")
}

func TestParsePlans_Rejections(t *testing.T) {
	_, err := factory.ParsePlans(`[{"model": "FREELANCE"}]`)
	assert.Error(t, err, "unknown model")

	_, err = factory.ParsePlans(`[{"model": "CLT", "monthly_rate": "two"}]`)
	assert.Error(t, err, "bad decimal")

	_, err = factory.ParsePlans(`[{"model": "CLT"}, {"model": "CLT"}]`)
	assert.Error(t, err, "duplicate model")

	_, err = factory.ParsePlans(`not json`)
	assert.Error(t, err)
}

func TestDefaultPlans_CoversEveryModel(t *testing.T) {
	plans := factory.DefaultPlans()
	for _, m := range []leave.ContractModel{
		leave.ContractCLT, leave.ContractCLTFixedAllowance,
		leave.ContractCLTFreeAllowance, leave.ContractPJ,
	} {
		p, ok := plans[m]
		require.True(t, ok, "missing plan for %s", m)
		assert.True(t, p.MonthlyRate.Equal(decimal.RequireFromString("2.5")))
	}
}
