package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int32Ptr(v int32) *int32 { return &v }

func TestBudgetValidate(t *testing.T) {
	tests := []struct {
		name    string
		budget  Budget
		wantErr error
	}{
		{
			name:   "valid overall",
			budget: Budget{Scope: BudgetScopeOverall, Amount: dec("100"), WarnThreshold: dec("0.8")},
		},
		{
			name:   "valid category",
			budget: Budget{Scope: BudgetScopeCategory, CategoryID: int32Ptr(3), Amount: dec("100"), WarnThreshold: dec("1.0")},
		},
		{
			name:    "unknown scope",
			budget:  Budget{Scope: "weekly", Amount: dec("100"), WarnThreshold: dec("0.8")},
			wantErr: ErrInvalidBudgetScope,
		},
		{
			name:    "zero amount",
			budget:  Budget{Scope: BudgetScopeOverall, Amount: dec("0"), WarnThreshold: dec("0.8")},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "threshold at upper bound",
			budget:  Budget{Scope: BudgetScopeOverall, Amount: dec("100"), WarnThreshold: dec("1.01")},
			wantErr: ErrInvalidWarnThreshold,
		},
		{
			name:    "zero threshold",
			budget:  Budget{Scope: BudgetScopeOverall, Amount: dec("100"), WarnThreshold: dec("0")},
			wantErr: ErrInvalidWarnThreshold,
		},
		{
			name:    "category scope without category",
			budget:  Budget{Scope: BudgetScopeCategory, Amount: dec("100"), WarnThreshold: dec("0.8")},
			wantErr: ErrBudgetCategoryRequired,
		},
		{
			name:    "overall scope with category",
			budget:  Budget{Scope: BudgetScopeOverall, CategoryID: int32Ptr(1), Amount: dec("100"), WarnThreshold: dec("0.8")},
			wantErr: ErrBudgetCategoryNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.budget.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolveOverallBudget(t *testing.T) {
	t.Run("nothing configured", func(t *testing.T) {
		assert.Nil(t, ResolveOverallBudget(BudgetConfig{}))
	})

	t.Run("scoped budget keeps its own threshold", func(t *testing.T) {
		got := ResolveOverallBudget(BudgetConfig{
			Overall: &BudgetLimit{Amount: dec("5000"), WarnThreshold: dec("0.6")},
		})
		require.NotNil(t, got)
		assert.Equal(t, OverallSourceScopedBudget, got.Source)
		assert.True(t, got.Amount.Equal(dec("5000")))
		assert.True(t, got.WarnThreshold.Equal(dec("0.6")))
	})

	t.Run("monthly total wins with default threshold", func(t *testing.T) {
		got := ResolveOverallBudget(BudgetConfig{
			Overall:      &BudgetLimit{Amount: dec("5000"), WarnThreshold: dec("0.6")},
			MonthlyTotal: decPtr("7000"),
		})
		require.NotNil(t, got)
		assert.Equal(t, OverallSourceMonthlyBudget, got.Source)
		assert.True(t, got.Amount.Equal(dec("7000")))
		assert.True(t, got.WarnThreshold.Equal(DefaultWarnThreshold))
	})
}

func TestBuildBudgetConfig(t *testing.T) {
	budgets := []*Budget{
		{Scope: BudgetScopeOverall, Amount: dec("10000"), WarnThreshold: dec("0.8")},
		{Scope: BudgetScopeCategory, CategoryID: int32Ptr(1), Amount: dec("2000"), WarnThreshold: dec("0.9")},
		{Scope: BudgetScopeCategory, CategoryID: int32Ptr(2), Amount: dec("500"), WarnThreshold: dec("0.5")},
	}
	cfg := BuildBudgetConfig(budgets, &MonthlyBudget{TotalBudget: dec("12000")})

	require.NotNil(t, cfg.Overall)
	assert.True(t, cfg.Overall.Amount.Equal(dec("10000")))
	assert.Len(t, cfg.ByCategory, 2)
	assert.True(t, cfg.ByCategory[2].WarnThreshold.Equal(dec("0.5")))
	require.NotNil(t, cfg.MonthlyTotal)
	assert.True(t, cfg.MonthlyTotal.Equal(dec("12000")))
}

func TestScopeFor(t *testing.T) {
	admin := ScopeFor(Owner{WorkspaceID: 4, Role: RoleAdmin})
	assert.Nil(t, admin.WorkspaceID)

	user := ScopeFor(Owner{WorkspaceID: 4, Role: RoleUser})
	require.NotNil(t, user.WorkspaceID)
	assert.Equal(t, int32(4), *user.WorkspaceID)
}
