package service

import (
	"testing"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	categories *testutil.MockCategoryRepository
	sources    *testutil.MockIncomeSourceRepository
	service    *CatalogService
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		categories: testutil.NewMockCategoryRepository(),
		sources:    testutil.NewMockIncomeSourceRepository(),
	}
	now := time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC)
	f.service = NewCatalogService(f.categories, f.sources, domain.FixedClock{T: now})
	return f
}

func TestCreateSystemCategory_VisibleToEveryWorkspace(t *testing.T) {
	f := newCatalogFixture()

	category, err := f.service.CreateSystemCategory(CategoryInput{Name: " Pets ", Icon: "paw"})
	require.NoError(t, err)

	assert.True(t, category.IsSystem)
	assert.Nil(t, category.WorkspaceID)
	assert.Equal(t, "Pets", category.Name)
	assert.True(t, category.VisibleTo(1))
	assert.True(t, category.VisibleTo(42))

	_, err = f.service.CreateSystemCategory(CategoryInput{Name: "pets"})
	assert.ErrorIs(t, err, domain.ErrCategoryNameExists)
}

func TestUpdateSystemCategory_IgnoresWorkspaceCategories(t *testing.T) {
	f := newCatalogFixture()
	ws := int32(1)
	f.categories.AddCategory(&domain.Category{ID: 1, Name: "Food", IsSystem: true})
	f.categories.AddCategory(&domain.Category{ID: 2, WorkspaceID: &ws, Name: "Hobby"})

	updated, err := f.service.UpdateSystemCategory(1, CategoryInput{Name: "Food & Dining", ColorToken: "orange"})
	require.NoError(t, err)
	assert.Equal(t, "Food & Dining", updated.Name)

	_, err = f.service.UpdateSystemCategory(2, CategoryInput{Name: "Hijacked"})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assert.ErrorIs(t, f.service.DeleteSystemCategory(2), domain.ErrCategoryNotFound)

	require.NoError(t, f.service.DeleteSystemCategory(1))
	assert.NotContains(t, f.categories.Categories, int32(1))
}

func TestListSystemCategories_CarriesUsage(t *testing.T) {
	f := newCatalogFixture()
	ws := int32(1)
	f.categories.AddCategory(&domain.Category{ID: 1, Name: "Transport", IsSystem: true})
	f.categories.AddCategory(&domain.Category{ID: 2, Name: "Food", IsSystem: true})
	f.categories.AddCategory(&domain.Category{ID: 3, WorkspaceID: &ws, Name: "Hobby"})
	f.categories.Usage[1] = &domain.UsageStats{TotalCount: 4, TotalAmount: money("120.50")}

	categories, err := f.service.ListSystemCategories()
	require.NoError(t, err)

	require.Len(t, categories, 2)
	assert.Equal(t, "Food", categories[0].Name)
	assert.Equal(t, int64(0), categories[0].UsageCount)
	assert.Equal(t, "Transport", categories[1].Name)
	assert.Equal(t, int64(4), categories[1].UsageCount)
	assert.True(t, categories[1].TotalAmount.Equal(money("120.50")))
}

func TestSystemCategoryUsage_FillsSixMonths(t *testing.T) {
	f := newCatalogFixture()
	f.categories.AddCategory(&domain.Category{ID: 1, Name: "Food", IsSystem: true})
	f.categories.Usage[1] = &domain.UsageStats{
		TotalAmount: money("700"),
		TotalCount:  3,
		AvgAmount:   money("233.33"),
		UniqueUsers: 2,
		Monthly: []*domain.MonthlyUsage{
			{Month: d(2025, 6, 1), Total: money("400"), Count: 1},
			{Month: d(2025, 12, 1), Total: money("100"), Count: 1},
			{Month: d(2026, 3, 1), Total: money("200"), Count: 1},
		},
	}

	stats, err := f.service.SystemCategoryUsage(1)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.UniqueUsers)
	require.Len(t, stats.Monthly, 6)
	assert.Equal(t, d(2025, 10, 1), stats.Monthly[0].Month)
	assert.Equal(t, d(2026, 3, 1), stats.Monthly[5].Month)

	totals := make([]string, len(stats.Monthly))
	for i, m := range stats.Monthly {
		totals[i] = m.Total.StringFixed(2)
	}
	assert.Equal(t, []string{"0.00", "0.00", "100.00", "0.00", "0.00", "200.00"}, totals)

	_, err = f.service.SystemCategoryUsage(9)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestSystemIncomeSources(t *testing.T) {
	f := newCatalogFixture()

	source, err := f.service.CreateSystemIncomeSource("Pension")
	require.NoError(t, err)
	assert.True(t, source.IsSystem)
	assert.Nil(t, source.WorkspaceID)

	ws := int32(1)
	f.sources.AddSource(&domain.IncomeSource{ID: 10, WorkspaceID: &ws, Name: "Tutoring"})
	_, err = f.service.UpdateSystemIncomeSource(10, "Hijacked")
	assert.ErrorIs(t, err, domain.ErrIncomeSourceNotFound)

	f.sources.Usage[source.ID] = &domain.UsageStats{TotalCount: 2, TotalAmount: money("3000"), AvgAmount: money("1500"), UniqueUsers: 1}
	listed, err := f.service.ListSystemIncomeSources()
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(2), listed[0].UsageCount)

	stats, err := f.service.SystemIncomeSourceUsage(source.ID)
	require.NoError(t, err)
	assert.True(t, stats.AvgAmount.Equal(money("1500")))
	assert.Empty(t, stats.Monthly)

	require.NoError(t, f.service.DeleteSystemIncomeSource(source.ID))
	_, err = f.service.SystemIncomeSourceUsage(source.ID)
	assert.ErrorIs(t, err, domain.ErrIncomeSourceNotFound)
}
