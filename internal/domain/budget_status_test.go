package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestNewBudgetUsage_NoBudget(t *testing.T) {
	usage := NewBudgetUsage(dec("5000"), nil, nil)

	assert.Equal(t, StatusNoBudget, usage.Status)
	assert.Nil(t, usage.Amount)
	assert.Nil(t, usage.Remaining)
	assert.Nil(t, usage.PercentUsed)
	assert.True(t, usage.Spent.Equal(dec("5000")))
}

func TestNewBudgetUsage_Warn(t *testing.T) {
	usage := NewBudgetUsage(dec("8500"), decPtr("10000"), decPtr("0.8"))

	assert.Equal(t, StatusWarn, usage.Status)
	require.NotNil(t, usage.PercentUsed)
	assert.True(t, usage.PercentUsed.Equal(dec("0.85")), "got %s", usage.PercentUsed)
	require.NotNil(t, usage.Remaining)
	assert.True(t, usage.Remaining.Equal(dec("1500")))
}

func TestNewBudgetUsage_ExceededWithNegativeRemaining(t *testing.T) {
	usage := NewBudgetUsage(dec("2100"), decPtr("2000"), decPtr("0.8"))

	assert.Equal(t, StatusExceeded, usage.Status)
	assert.True(t, usage.Remaining.Equal(dec("-100")))
}

func TestNewBudgetUsage_ExactlyAtBudgetIsExceeded(t *testing.T) {
	// threshold above 1 must not turn an exact hit into a warning
	for _, warn := range []string{"0.5", "0.8", "1", "1.005"} {
		usage := NewBudgetUsage(dec("2000"), decPtr("2000"), decPtr(warn))
		assert.Equal(t, StatusExceeded, usage.Status, "warn=%s", warn)
	}
}

func TestNewBudgetUsage_ZeroBudgetSkipsDivision(t *testing.T) {
	usage := NewBudgetUsage(dec("150"), decPtr("0"), decPtr("0.8"))

	assert.Equal(t, StatusOK, usage.Status)
	assert.Nil(t, usage.PercentUsed)
	assert.True(t, usage.Remaining.Equal(dec("-150")))
}

func TestNewBudgetUsage_NilThresholdNeverWarns(t *testing.T) {
	usage := NewBudgetUsage(dec("990"), decPtr("1000"), nil)
	assert.Equal(t, StatusOK, usage.Status)
}

func TestNewBudgetUsage_Monotonic(t *testing.T) {
	amount := decPtr("1000")
	warn := decPtr("0.75")

	prev := 0
	for spent := int64(0); spent <= 1500; spent += 25 {
		usage := NewBudgetUsage(decimal.NewFromInt(spent), amount, warn)
		rank := usage.Status.Rank()
		assert.GreaterOrEqual(t, rank, prev, "status went backwards at spent=%d", spent)
		assert.NotEqual(t, StatusNoBudget, usage.Status)
		prev = rank
	}
	assert.Equal(t, StatusExceeded.Rank(), prev)
}

func TestNewLimitUsage(t *testing.T) {
	assert.Equal(t, StatusNoBudget, NewLimitUsage(dec("10"), nil).Status)

	limit := &BudgetLimit{Amount: dec("100"), WarnThreshold: dec("0.9")}
	assert.Equal(t, StatusWarn, NewLimitUsage(dec("90"), limit).Status)
	assert.Equal(t, StatusOK, NewLimitUsage(dec("89.99"), limit).Status)
}
