package service

import (
	"strings"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory_Success(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryService := NewCategoryService(categoryRepo)

	category, err := categoryService.CreateCategory(1, CategoryInput{Name: "  Groceries ", Icon: "cart"})
	require.NoError(t, err)

	assert.Equal(t, "Groceries", category.Name)
	require.NotNil(t, category.WorkspaceID)
	assert.Equal(t, int32(1), *category.WorkspaceID)
	assert.False(t, category.IsSystem)
}

func TestCreateCategory_InvalidName(t *testing.T) {
	categoryService := NewCategoryService(testutil.NewMockCategoryRepository())

	_, err := categoryService.CreateCategory(1, CategoryInput{Name: "   "})
	assert.Equal(t, domain.ErrNameRequired, err)

	_, err = categoryService.CreateCategory(1, CategoryInput{Name: strings.Repeat("a", domain.MaxCategoryNameLength+1)})
	assert.Equal(t, domain.ErrNameTooLong, err)
}

func TestCreateCategory_DuplicateNamePerWorkspace(t *testing.T) {
	categoryService := NewCategoryService(testutil.NewMockCategoryRepository())

	_, err := categoryService.CreateCategory(1, CategoryInput{Name: "Food"})
	require.NoError(t, err)

	_, err = categoryService.CreateCategory(1, CategoryInput{Name: "food"})
	assert.ErrorIs(t, err, domain.ErrCategoryNameExists)

	// another workspace may reuse the name
	_, err = categoryService.CreateCategory(2, CategoryInput{Name: "Food"})
	assert.NoError(t, err)
}

func TestGetCategories_IncludesSystem(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryRepo.AddCategory(&domain.Category{ID: 1, Name: "Transport", IsSystem: true})
	ws2 := int32(2)
	categoryRepo.AddCategory(&domain.Category{ID: 2, Name: "Other workspace", WorkspaceID: &ws2})
	categoryService := NewCategoryService(categoryRepo)
	_, err := categoryService.CreateCategory(1, CategoryInput{Name: "Books"})
	require.NoError(t, err)

	categories, err := categoryService.GetCategories(1)
	require.NoError(t, err)

	require.Len(t, categories, 2)
	assert.Equal(t, "Books", categories[0].Name)
	assert.Equal(t, "Transport", categories[1].Name)
}

func TestUpdateCategory(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryRepo.AddCategory(&domain.Category{ID: 1, Name: "Transport", IsSystem: true})
	categoryService := NewCategoryService(categoryRepo)
	own, err := categoryService.CreateCategory(1, CategoryInput{Name: "Books"})
	require.NoError(t, err)

	t.Run("renames own category", func(t *testing.T) {
		updated, err := categoryService.UpdateCategory(1, own.ID, CategoryInput{Name: "Comics", ColorToken: "blue"})
		require.NoError(t, err)
		assert.Equal(t, "Comics", updated.Name)
		assert.Equal(t, "blue", updated.ColorToken)
	})

	t.Run("system category is read-only", func(t *testing.T) {
		_, err := categoryService.UpdateCategory(1, 1, CategoryInput{Name: "Travel"})
		assert.ErrorIs(t, err, domain.ErrSystemCategory)
	})

	t.Run("other workspace cannot see it", func(t *testing.T) {
		_, err := categoryService.UpdateCategory(9, own.ID, CategoryInput{Name: "Mine"})
		assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	})
}

func TestDeleteCategory(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryRepo.AddCategory(&domain.Category{ID: 1, Name: "Transport", IsSystem: true})
	categoryService := NewCategoryService(categoryRepo)
	own, err := categoryService.CreateCategory(1, CategoryInput{Name: "Books"})
	require.NoError(t, err)

	assert.ErrorIs(t, categoryService.DeleteCategory(1, 1), domain.ErrSystemCategory)
	require.NoError(t, categoryService.DeleteCategory(1, own.ID))
	_, err = categoryService.GetCategoryByID(1, own.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}
