package httpapi_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/startificial/requireflow/internal/apiclient"
	"github.com/startificial/requireflow/internal/auth"
	"github.com/startificial/requireflow/internal/cache"
	"github.com/startificial/requireflow/internal/errors"
	"github.com/startificial/requireflow/internal/generate"
	"github.com/startificial/requireflow/internal/httpapi"
	"github.com/startificial/requireflow/internal/logger"
	"github.com/startificial/requireflow/internal/model"
	"github.com/startificial/requireflow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	client *apiclient.Client
	repo   store.Repository
	cache  *cache.Service
}

// newEnv stands up the full API over a temp database and returns a pipeline
// client with ambient cookie credentials, the way the frontend talks to it.
func newEnv(t *testing.T, collaborator http.HandlerFunc) *env {
	t.Helper()
	logger.Init("error", true)

	repo, err := store.NewRepository(store.Config{
		DBPath: filepath.Join(t.TempDir(), "requireflow.db"),
	}, logger.Default())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	c := cache.New(time.Minute)
	authSvc := auth.NewService(repo, time.Hour, logger.Default())

	genCfg := generate.Config{Enabled: false}
	var genClient *apiclient.Client
	if collaborator != nil {
		collabSrv := httptest.NewServer(collaborator)
		t.Cleanup(collabSrv.Close)
		genClient = apiclient.New(apiclient.Config{BaseURL: collabSrv.URL})
		genCfg = generate.Config{Enabled: true, Model: "gemini-2.0-flash", MaxAttempts: 2}
	}
	genSvc := generate.NewService(genClient, repo, c, genCfg, logger.Default())

	srv := httptest.NewServer(httpapi.NewMux(httpapi.Options{
		Repository: repo,
		Cache:      c,
		Auth:       authSvc,
		Generator:  genSvc,
		Logger:     logger.Default(),
	}))
	t.Cleanup(srv.Close)

	client := apiclient.New(apiclient.Config{
		BaseURL:     srv.URL,
		Credentials: true,
	})
	return &env{client: client, repo: repo, cache: c}
}

func (e *env) login(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	err := e.client.Post(ctx, "/api/auth/register", map[string]string{
		"email": "pm@example.com", "name": "PM", "password": "hunter22",
	}, nil)
	require.NoError(t, err)

	err = e.client.Post(ctx, "/api/auth/login", map[string]string{
		"email": "pm@example.com", "password": "hunter22",
	}, nil)
	require.NoError(t, err)
}

func TestHealthz(t *testing.T) {
	e := newEnv(t, nil)
	var body map[string]string
	require.NoError(t, e.client.Get(context.Background(), "/healthz", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestAuthFlow(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	// No session yet.
	err := e.client.Get(ctx, "/api/auth/me", nil)
	c := errors.Classify(err)
	require.True(t, c.Known, "error envelope should reconstruct a variant")
	assert.Equal(t, errors.CodeAuthentication, c.Err.Code)
	assert.Equal(t, 401, c.Err.StatusCode)

	e.login(t)

	var me model.User
	require.NoError(t, e.client.Get(ctx, "/api/auth/me", &me))
	assert.Equal(t, "pm@example.com", me.Email)

	require.NoError(t, e.client.Post(ctx, "/api/auth/logout", nil, nil))
	err = e.client.Get(ctx, "/api/auth/me", nil)
	require.Error(t, err)
}

func TestBadCredentials(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.login(t)

	err := e.client.Post(ctx, "/api/auth/login", map[string]string{
		"email": "pm@example.com", "password": "nope",
	}, nil)
	c := errors.Classify(err)
	require.True(t, c.Known)
	assert.Equal(t, errors.CodeAuthentication, c.Err.Code)
	assert.Equal(t, "Invalid email or password", c.Err.Message)
}

func TestCustomerLifecycle(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.login(t)

	var customer model.Customer
	err := e.client.Post(ctx, "/api/customers", model.Customer{Name: "Acme Corp"}, &customer)
	require.NoError(t, err)
	require.NotEmpty(t, customer.ID)

	// Duplicate names surface as Conflict variants on the client side.
	err = e.client.Post(ctx, "/api/customers", model.Customer{Name: "Acme Corp"}, nil)
	c := errors.Classify(err)
	require.True(t, c.Known)
	assert.Equal(t, errors.CodeConflict, c.Err.Code)

	var customers []model.Customer
	require.NoError(t, e.client.Get(ctx, "/api/customers", &customers))
	require.Len(t, customers, 1)

	customer.Industry = "Manufacturing"
	require.NoError(t, e.client.Put(ctx, "/api/customers/"+customer.ID, customer, nil))

	require.NoError(t, e.client.Delete(ctx, "/api/customers/"+customer.ID, nil))
	err = e.client.Get(ctx, "/api/customers/"+customer.ID, nil)
	c = errors.Classify(err)
	require.True(t, c.Known)
	assert.Equal(t, errors.CodeNotFound, c.Err.Code)
}

func TestValidationEnvelopeRoundTrip(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.login(t)

	err := e.client.Post(ctx, "/api/customers", model.Customer{}, nil)
	c := errors.Classify(err)
	require.True(t, c.Known)
	assert.Equal(t, errors.CodeValidation, c.Err.Code)
	assert.Equal(t, 400, c.Err.StatusCode)
}

func TestRequirementLifecycleAndCaching(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.login(t)

	var customer model.Customer
	require.NoError(t, e.client.Post(ctx, "/api/customers", model.Customer{Name: "Acme Corp"}, &customer))
	var project model.Project
	require.NoError(t, e.client.Post(ctx, "/api/projects",
		model.Project{CustomerID: customer.ID, Name: "CRM Migration"}, &project))

	var requirement model.Requirement
	require.NoError(t, e.client.Post(ctx, "/api/projects/"+project.ID+"/requirements",
		model.Requirement{Title: "Import contacts", Category: model.CategoryFunctional, Priority: model.PriorityHigh},
		&requirement))

	var list []model.Requirement
	require.NoError(t, e.client.Get(ctx, "/api/projects/"+project.ID+"/requirements", &list))
	require.Len(t, list, 1)

	// The list is now cached; a write must invalidate it.
	require.NoError(t, e.client.Post(ctx, "/api/projects/"+project.ID+"/requirements",
		model.Requirement{Title: "Deduplicate on import"}, nil))
	require.NoError(t, e.client.Get(ctx, "/api/projects/"+project.ID+"/requirements", &list))
	require.Len(t, list, 2)

	requirement.Priority = model.PriorityLow
	require.NoError(t, e.client.Put(ctx, "/api/requirements/"+requirement.ID, requirement, &requirement))
	assert.Equal(t, model.PriorityLow, requirement.Priority)

	require.NoError(t, e.client.Delete(ctx, "/api/requirements/"+requirement.ID, nil))
	require.NoError(t, e.client.Get(ctx, "/api/projects/"+project.ID+"/requirements", &list))
	require.Len(t, list, 1)
}

func TestGenerateEndpoint(t *testing.T) {
	e := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"requirements":[{"title":"Imported requirement","category":"functional","priority":"medium"}]}`))
	})
	ctx := context.Background()
	e.login(t)

	var customer model.Customer
	require.NoError(t, e.client.Post(ctx, "/api/customers", model.Customer{Name: "Acme Corp"}, &customer))
	var project model.Project
	require.NoError(t, e.client.Post(ctx, "/api/projects",
		model.Project{CustomerID: customer.ID, Name: "CRM Migration"}, &project))

	var created []model.Requirement
	require.NoError(t, e.client.Post(ctx, "/api/projects/"+project.ID+"/generate", nil, &created))
	require.Len(t, created, 1)
	assert.Equal(t, "Imported requirement", created[0].Title)
}

func TestGenerateUnavailableWithoutEndpoint(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.login(t)

	var customer model.Customer
	require.NoError(t, e.client.Post(ctx, "/api/customers", model.Customer{Name: "Acme Corp"}, &customer))
	var project model.Project
	require.NoError(t, e.client.Post(ctx, "/api/projects",
		model.Project{CustomerID: customer.ID, Name: "CRM Migration"}, &project))

	err := e.client.Post(ctx, "/api/projects/"+project.ID+"/generate", nil, nil)
	c := errors.Classify(err)
	require.True(t, c.Known)
	assert.Equal(t, errors.CodeServiceUnavailable, c.Err.Code)
	assert.Equal(t, 503, c.Err.StatusCode)
}

func TestExportYAML(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.login(t)

	var customer model.Customer
	require.NoError(t, e.client.Post(ctx, "/api/customers", model.Customer{Name: "Acme Corp"}, &customer))
	var project model.Project
	require.NoError(t, e.client.Post(ctx, "/api/projects",
		model.Project{CustomerID: customer.ID, Name: "CRM Migration"}, &project))

	resp, err := e.client.Do(ctx, "/api/projects/"+project.ID+"/export?format=yaml",
		apiclient.Descriptor{Raw: true}, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "CRM Migration")
}
