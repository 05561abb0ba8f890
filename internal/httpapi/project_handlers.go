package httpapi

import (
	"net/http"

	"github.com/startificial/requireflow/internal/export"
	"github.com/startificial/requireflow/internal/model"
)

func (h *handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.repo.ListProjects(r.Context(), r.URL.Query().Get("customerId"))
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, projects)
}

func (h *handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var project model.Project
	if err := decodeJSON(r, &project); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	if err := project.Validate(); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	// Reject unknown customers with a NotFound rather than a bare
	// foreign key conflict.
	if _, err := h.repo.GetCustomer(r.Context(), project.CustomerID); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	project.ID = ""
	if err := h.repo.CreateProject(r.Context(), &project); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, project)
}

func (h *handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.repo.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, project)
}

func (h *handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var project model.Project
	if err := decodeJSON(r, &project); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	project.ID = r.PathValue("id")

	current, err := h.repo.GetProject(r.Context(), project.ID)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	project.CustomerID = current.CustomerID

	if err := project.Validate(); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	if err := h.repo.UpdateProject(r.Context(), &project); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	h.cache.DeletePrefix("projects:" + project.ID + ":")
	WriteJSON(w, http.StatusOK, project)
}

func (h *handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.repo.DeleteProject(r.Context(), id); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	h.cache.DeletePrefix("projects:" + id + ":")
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := r.Context()

	project, err := h.repo.GetProject(ctx, id)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	customer, err := h.repo.GetCustomer(ctx, project.CustomerID)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	sources, err := h.repo.ListInputSources(ctx, id)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	requirements, err := h.repo.ListRequirements(ctx, id)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	data, contentType, err := export.Render(export.Document{
		Project:      *project,
		Customer:     *customer,
		Sources:      sources,
		Requirements: requirements,
	}, export.Format(r.URL.Query().Get("format")))
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
