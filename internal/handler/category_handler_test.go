package handler

import (
	"net/http"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCategoryFixture() (*CategoryHandler, *testutil.MockCategoryRepository) {
	repo := testutil.NewMockCategoryRepository()
	repo.AddCategory(&domain.Category{ID: 1, Name: "Food", IsSystem: true})
	repo.AddCategory(&domain.Category{ID: 2, Name: "Books", WorkspaceID: int32Ptr(1)})
	repo.AddCategory(&domain.Category{ID: 3, Name: "Golf", WorkspaceID: int32Ptr(2)})
	return NewCategoryHandler(service.NewCategoryService(repo)), repo
}

func TestGetCategories_SystemAndOwn(t *testing.T) {
	h, _ := newCategoryFixture()
	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodGet, "/api/v1/categories", "")

	require.NoError(t, h.GetCategories(c))
	expectStatus(t, rec, http.StatusOK)

	var response []CategoryResponse
	decodeBody(t, rec, &response)
	require.Len(t, response, 2)
	assert.Equal(t, "Books", response[0].Name)
	assert.Equal(t, "Food", response[1].Name)
	assert.True(t, response[1].IsSystem)
}

func TestGetCategories_RequiresWorkspace(t *testing.T) {
	h, _ := newCategoryFixture()
	c, rec := newRequest(newTestEcho(), http.MethodGet, "/api/v1/categories", "")

	require.NoError(t, h.GetCategories(c))
	expectProblem(t, rec, http.StatusUnauthorized, ErrorTypeUnauthorized)
}

func TestCreateCategory(t *testing.T) {
	h, _ := newCategoryFixture()
	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodPost, "/api/v1/categories", `{"name":" Travel ","icon":"plane"}`)

	require.NoError(t, h.CreateCategory(c))
	expectStatus(t, rec, http.StatusCreated)

	var response CategoryResponse
	decodeBody(t, rec, &response)
	assert.Equal(t, "Travel", response.Name)
	assert.Equal(t, "plane", response.Icon)
	assert.False(t, response.IsSystem)
}

func TestCreateCategory_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"missing name", `{"icon":"x"}`, http.StatusBadRequest, "name"},
		{"malformed body", `{"name":`, http.StatusBadRequest, ""},
		{"duplicate", `{"name":"Books"}`, http.StatusConflict, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newCategoryFixture()
			c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodPost, "/api/v1/categories", tt.body)

			require.NoError(t, h.CreateCategory(c))
			expectStatus(t, rec, tt.status)
			if tt.field != "" {
				var problem ProblemDetails
				decodeBody(t, rec, &problem)
				require.NotEmpty(t, problem.Errors)
				assert.Equal(t, tt.field, problem.Errors[0].Field)
			}
		})
	}
}

func TestUpdateCategory_SystemIsReadOnly(t *testing.T) {
	h, _ := newCategoryFixture()
	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodPut, "/api/v1/categories/1", `{"name":"Groceries"}`)
	setParam(c, "id", "1")

	require.NoError(t, h.UpdateCategory(c))
	expectProblem(t, rec, http.StatusForbidden, ErrorTypeForbidden)
}

func TestUpdateCategory_OtherWorkspace(t *testing.T) {
	h, _ := newCategoryFixture()
	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodPut, "/api/v1/categories/3", `{"name":"Tennis"}`)
	setParam(c, "id", "3")

	require.NoError(t, h.UpdateCategory(c))
	expectProblem(t, rec, http.StatusNotFound, ErrorTypeNotFound)
}

func TestDeleteCategory(t *testing.T) {
	h, repo := newCategoryFixture()
	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodDelete, "/api/v1/categories/2", "")
	setParam(c, "id", "2")

	require.NoError(t, h.DeleteCategory(c))
	expectStatus(t, rec, http.StatusNoContent)
	_, exists := repo.Categories[2]
	assert.False(t, exists)
}

func TestDeleteCategory_InvalidID(t *testing.T) {
	h, _ := newCategoryFixture()
	c, rec := newOwnerRequest(newTestEcho(), testOwner, http.MethodDelete, "/api/v1/categories/abc", "")
	setParam(c, "id", "abc")

	require.NoError(t, h.DeleteCategory(c))
	expectStatus(t, rec, http.StatusBadRequest)
}
