package httpapi

import (
	"net/http"

	"github.com/startificial/requireflow/internal/model"
)

const customersCacheKey = "customers:list"

func (h *handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.cache.Get(customersCacheKey); ok {
		WriteJSON(w, http.StatusOK, cached)
		return
	}

	customers, err := h.repo.ListCustomers(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	h.cache.Set(customersCacheKey, customers)
	WriteJSON(w, http.StatusOK, customers)
}

func (h *handler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var customer model.Customer
	if err := decodeJSON(r, &customer); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	if err := customer.Validate(); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	customer.ID = ""
	if err := h.repo.CreateCustomer(r.Context(), &customer); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	h.cache.Delete(customersCacheKey)
	WriteJSON(w, http.StatusCreated, customer)
}

func (h *handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.repo.GetCustomer(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, customer)
}

func (h *handler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var customer model.Customer
	if err := decodeJSON(r, &customer); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	customer.ID = r.PathValue("id")
	if err := customer.Validate(); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	if err := h.repo.UpdateCustomer(r.Context(), &customer); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	h.cache.Delete(customersCacheKey)
	WriteJSON(w, http.StatusOK, customer)
}

func (h *handler) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteCustomer(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, h.logger, err)
		return
	}
	h.cache.Delete(customersCacheKey)
	w.WriteHeader(http.StatusNoContent)
}
