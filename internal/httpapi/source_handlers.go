package httpapi

import (
	"net/http"

	"github.com/startificial/requireflow/internal/model"
)

func (h *handler) handleListSources(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if _, err := h.repo.GetProject(r.Context(), projectID); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	sources, err := h.repo.ListInputSources(r.Context(), projectID)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, sources)
}

func (h *handler) handleCreateSource(w http.ResponseWriter, r *http.Request) {
	var source model.InputSource
	if err := decodeJSON(r, &source); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	source.ProjectID = r.PathValue("id")
	if err := source.Validate(); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	if _, err := h.repo.GetProject(r.Context(), source.ProjectID); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	source.ID = ""
	if err := h.repo.CreateInputSource(r.Context(), &source); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, source)
}

type generateRequest struct {
	SourceID string `json:"sourceId"`
}

func (h *handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			WriteError(w, h.logger, err)
			return
		}
	}

	created, err := h.generator.Generate(r.Context(), r.PathValue("id"), req.SourceID)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}
