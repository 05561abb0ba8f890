package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/startificial/requireflow/internal/errors"
	"github.com/startificial/requireflow/internal/logger"
	"github.com/startificial/requireflow/internal/model"
	"github.com/startificial/requireflow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepository(t *testing.T) store.Repository {
	t.Helper()
	logger.Init("error", true)

	repo, err := store.NewRepository(store.Config{
		DBPath: filepath.Join(t.TempDir(), "requireflow.db"),
	}, logger.Default())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedProject(t *testing.T, repo store.Repository) *model.Project {
	t.Helper()
	ctx := context.Background()

	customer := &model.Customer{Name: "Acme Corp"}
	require.NoError(t, repo.CreateCustomer(ctx, customer))

	project := &model.Project{CustomerID: customer.ID, Name: "CRM Migration"}
	require.NoError(t, repo.CreateProject(ctx, project))
	return project
}

func TestCustomerCRUD(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()

	customer := &model.Customer{Name: "Acme Corp", Industry: "Manufacturing"}
	require.NoError(t, repo.CreateCustomer(ctx, customer))
	require.NotEmpty(t, customer.ID)

	got, err := repo.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Name)
	assert.Equal(t, "Manufacturing", got.Industry)

	got.Description = "Longtime client"
	require.NoError(t, repo.UpdateCustomer(ctx, got))

	customers, err := repo.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Longtime client", customers[0].Description)

	require.NoError(t, repo.DeleteCustomer(ctx, customer.ID))
	_, err = repo.GetCustomer(ctx, customer.ID)
	c := errors.Classify(err)
	require.True(t, c.Known)
	assert.Equal(t, errors.CodeNotFound, c.Err.Code)
}

func TestDuplicateCustomerNameConflicts(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateCustomer(ctx, &model.Customer{Name: "Acme Corp"}))
	err := repo.CreateCustomer(ctx, &model.Customer{Name: "Acme Corp"})
	require.Error(t, err)

	c := errors.Classify(err)
	require.True(t, c.Known)
	assert.Equal(t, errors.CodeConflict, c.Err.Code)
	assert.Equal(t, 409, c.Err.StatusCode)
}

func TestProjectCascadeDelete(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()

	project := seedProject(t, repo)
	requirement := &model.Requirement{
		ProjectID: project.ID,
		Title:     "Import legacy contacts",
		Category:  model.CategoryFunctional,
		Priority:  model.PriorityHigh,
	}
	require.NoError(t, repo.CreateRequirement(ctx, requirement))

	require.NoError(t, repo.DeleteProject(ctx, project.ID))

	_, err := repo.GetRequirement(ctx, requirement.ID)
	c := errors.Classify(err)
	require.True(t, c.Known)
	assert.Equal(t, errors.CodeNotFound, c.Err.Code)
}

func TestRequirementCRUD(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()
	project := seedProject(t, repo)

	requirement := &model.Requirement{
		ProjectID:   project.ID,
		Title:       "Audit log retention",
		Description: "Retain audit logs for 90 days",
		Category:    model.CategorySecurity,
		Priority:    model.PriorityMedium,
	}
	require.NoError(t, repo.CreateRequirement(ctx, requirement))

	got, err := repo.GetRequirement(ctx, requirement.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CategorySecurity, got.Category)

	got.Priority = model.PriorityHigh
	require.NoError(t, repo.UpdateRequirement(ctx, got))

	list, err := repo.ListRequirements(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.PriorityHigh, list[0].Priority)

	require.NoError(t, repo.DeleteRequirement(ctx, requirement.ID))
	err = repo.DeleteRequirement(ctx, requirement.ID)
	c := errors.Classify(err)
	require.True(t, c.Known)
	assert.Equal(t, errors.CodeNotFound, c.Err.Code)
}

func TestInputSources(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()
	project := seedProject(t, repo)

	source := &model.InputSource{
		ProjectID:   project.ID,
		Type:        model.SourceDocument,
		Name:        "rfp.pdf",
		ContentType: "application/pdf",
		SizeBytes:   12345,
	}
	require.NoError(t, repo.CreateInputSource(ctx, source))

	sources, err := repo.ListInputSources(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, model.SourceDocument, sources[0].Type)
	assert.Equal(t, int64(12345), sources[0].SizeBytes)
}

func TestUsersAndSessions(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()

	user := &model.User{Email: "jamie@example.com", Name: "Jamie", PasswordHash: "$2a$10$abc"}
	require.NoError(t, repo.CreateUser(ctx, user))

	got, err := repo.GetUserByEmail(ctx, "jamie@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	err = repo.CreateUser(ctx, &model.User{Email: "jamie@example.com", Name: "Dup", PasswordHash: "x"})
	c := errors.Classify(err)
	require.True(t, c.Known)
	assert.Equal(t, errors.CodeConflict, c.Err.Code)

	session := &model.Session{
		Token:     "tok-1",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Hour).UTC(),
	}
	require.NoError(t, repo.CreateSession(ctx, session))

	deleted, err := repo.DeleteExpiredSessions(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetSession(ctx, "tok-1")
	c = errors.Classify(err)
	require.True(t, c.Known)
	assert.Equal(t, errors.CodeNotFound, c.Err.Code)
}
