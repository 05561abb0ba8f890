package httpapi

import (
	"net/http"

	"github.com/startificial/requireflow/internal/model"
)

func requirementsCacheKey(projectID string) string {
	return "projects:" + projectID + ":requirements"
}

func (h *handler) handleListRequirements(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	key := requirementsCacheKey(projectID)

	if cached, ok := h.cache.Get(key); ok {
		WriteJSON(w, http.StatusOK, cached)
		return
	}

	if _, err := h.repo.GetProject(r.Context(), projectID); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	requirements, err := h.repo.ListRequirements(r.Context(), projectID)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	h.cache.Set(key, requirements)
	WriteJSON(w, http.StatusOK, requirements)
}

func (h *handler) handleCreateRequirement(w http.ResponseWriter, r *http.Request) {
	var requirement model.Requirement
	if err := decodeJSON(r, &requirement); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	requirement.ProjectID = r.PathValue("id")
	if requirement.Category == "" {
		requirement.Category = model.CategoryFunctional
	}
	if requirement.Priority == "" {
		requirement.Priority = model.PriorityMedium
	}
	if err := requirement.Validate(); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	if _, err := h.repo.GetProject(r.Context(), requirement.ProjectID); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	requirement.ID = ""
	if err := h.repo.CreateRequirement(r.Context(), &requirement); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	h.cache.Delete(requirementsCacheKey(requirement.ProjectID))
	WriteJSON(w, http.StatusCreated, requirement)
}

func (h *handler) handleGetRequirement(w http.ResponseWriter, r *http.Request) {
	requirement, err := h.repo.GetRequirement(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, requirement)
}

func (h *handler) handleUpdateRequirement(w http.ResponseWriter, r *http.Request) {
	var requirement model.Requirement
	if err := decodeJSON(r, &requirement); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	requirement.ID = r.PathValue("id")

	current, err := h.repo.GetRequirement(r.Context(), requirement.ID)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	requirement.ProjectID = current.ProjectID

	if err := requirement.Validate(); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	if err := h.repo.UpdateRequirement(r.Context(), &requirement); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	h.cache.Delete(requirementsCacheKey(requirement.ProjectID))
	WriteJSON(w, http.StatusOK, requirement)
}

func (h *handler) handleDeleteRequirement(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	requirement, err := h.repo.GetRequirement(r.Context(), id)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	if err := h.repo.DeleteRequirement(r.Context(), id); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	h.cache.Delete(requirementsCacheKey(requirement.ProjectID))
	w.WriteHeader(http.StatusNoContent)
}
