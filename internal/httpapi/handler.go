// Package httpapi exposes Requireflow's REST API and maps taxonomy errors
// onto HTTP responses.
package httpapi

import (
	"net/http"

	"github.com/startificial/requireflow/internal/auth"
	"github.com/startificial/requireflow/internal/cache"
	"github.com/startificial/requireflow/internal/generate"
	"github.com/startificial/requireflow/internal/logger"
	"github.com/startificial/requireflow/internal/store"
)

type Options struct {
	Repository store.Repository
	Cache      *cache.Service
	Auth       *auth.Service
	Generator  *generate.Service
	Logger     logger.Logger
}

type handler struct {
	repo      store.Repository
	cache     *cache.Service
	auth      *auth.Service
	generator *generate.Service
	logger    logger.Logger
}

// NewMux builds the API router.
func NewMux(opt Options) http.Handler {
	log := opt.Logger
	if log == nil {
		log = logger.Default()
	}
	h := &handler{
		repo:      opt.Repository,
		cache:     opt.Cache,
		auth:      opt.Auth,
		generator: opt.Generator,
		logger:    log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)

	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.HandleFunc("GET /api/auth/me", h.requireAuth(h.handleMe))

	mux.HandleFunc("GET /api/customers", h.requireAuth(h.handleListCustomers))
	mux.HandleFunc("POST /api/customers", h.requireAuth(h.handleCreateCustomer))
	mux.HandleFunc("GET /api/customers/{id}", h.requireAuth(h.handleGetCustomer))
	mux.HandleFunc("PUT /api/customers/{id}", h.requireAuth(h.handleUpdateCustomer))
	mux.HandleFunc("DELETE /api/customers/{id}", h.requireAuth(h.handleDeleteCustomer))

	mux.HandleFunc("GET /api/projects", h.requireAuth(h.handleListProjects))
	mux.HandleFunc("POST /api/projects", h.requireAuth(h.handleCreateProject))
	mux.HandleFunc("GET /api/projects/{id}", h.requireAuth(h.handleGetProject))
	mux.HandleFunc("PUT /api/projects/{id}", h.requireAuth(h.handleUpdateProject))
	mux.HandleFunc("DELETE /api/projects/{id}", h.requireAuth(h.handleDeleteProject))

	mux.HandleFunc("GET /api/projects/{id}/requirements", h.requireAuth(h.handleListRequirements))
	mux.HandleFunc("POST /api/projects/{id}/requirements", h.requireAuth(h.handleCreateRequirement))
	mux.HandleFunc("GET /api/requirements/{id}", h.requireAuth(h.handleGetRequirement))
	mux.HandleFunc("PUT /api/requirements/{id}", h.requireAuth(h.handleUpdateRequirement))
	mux.HandleFunc("DELETE /api/requirements/{id}", h.requireAuth(h.handleDeleteRequirement))

	mux.HandleFunc("GET /api/projects/{id}/sources", h.requireAuth(h.handleListSources))
	mux.HandleFunc("POST /api/projects/{id}/sources", h.requireAuth(h.handleCreateSource))

	mux.HandleFunc("POST /api/projects/{id}/generate", h.requireAuth(h.handleGenerate))
	mux.HandleFunc("GET /api/projects/{id}/export", h.requireAuth(h.handleExport))

	return h.logRequests(mux)
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
