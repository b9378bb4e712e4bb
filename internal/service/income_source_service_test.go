package service

import (
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSourceService() (*IncomeSourceService, *testutil.MockIncomeSourceRepository) {
	repo := testutil.NewMockIncomeSourceRepository()
	repo.AddSource(&domain.IncomeSource{ID: 1, Name: "Salary", IsSystem: true})
	repo.AddSource(&domain.IncomeSource{ID: 2, Name: "Bonus", IsSystem: true})
	return NewIncomeSourceService(repo), repo
}

func TestCreateSource_TrimsAndScopesToWorkspace(t *testing.T) {
	svc, _ := newSourceService()

	source, err := svc.CreateSource(1, "  Tutoring ")
	require.NoError(t, err)
	assert.Equal(t, "Tutoring", source.Name)
	assert.False(t, source.IsSystem)
	require.NotNil(t, source.WorkspaceID)
	assert.Equal(t, int32(1), *source.WorkspaceID)

	_, err = svc.CreateSource(1, "tutoring")
	assert.ErrorIs(t, err, domain.ErrIncomeSourceNameExists)

	_, err = svc.CreateSource(2, "Tutoring")
	assert.NoError(t, err, "names are unique per workspace")

	_, err = svc.CreateSource(1, "   ")
	assert.ErrorIs(t, err, domain.ErrNameRequired)
}

func TestGetSources_SystemFirst(t *testing.T) {
	svc, _ := newSourceService()
	_, err := svc.CreateSource(1, "Allowance")
	require.NoError(t, err)
	_, err = svc.CreateSource(2, "Hidden")
	require.NoError(t, err)

	sources, err := svc.GetSources(1)
	require.NoError(t, err)

	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"Bonus", "Salary", "Allowance"}, names)
}

func TestSystemSources_ReadOnlyForWorkspaces(t *testing.T) {
	svc, _ := newSourceService()

	_, err := svc.UpdateSource(1, 1, "Wages")
	assert.ErrorIs(t, err, domain.ErrSystemIncomeSource)
	assert.ErrorIs(t, svc.DeleteSource(1, 1), domain.ErrSystemIncomeSource)
}

func TestUpdateAndDeleteSource_OwnOnly(t *testing.T) {
	svc, repo := newSourceService()
	source, err := svc.CreateSource(1, "Tutoring")
	require.NoError(t, err)

	_, err = svc.UpdateSource(2, source.ID, "Mine now")
	assert.ErrorIs(t, err, domain.ErrIncomeSourceNotFound)

	renamed, err := svc.UpdateSource(1, source.ID, "Lessons")
	require.NoError(t, err)
	assert.Equal(t, "Lessons", renamed.Name)

	assert.ErrorIs(t, svc.DeleteSource(2, source.ID), domain.ErrIncomeSourceNotFound)
	require.NoError(t, svc.DeleteSource(1, source.ID))
	assert.NotContains(t, repo.Sources, source.ID)
}
