package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/startificial/requireflow/internal/errors"
	"github.com/startificial/requireflow/internal/logger"
)

// errorBody is the JSON error envelope. Its field names are shared with the
// request pipeline, which parses the same shape on the client side.
type errorBody struct {
	Message          string              `json:"message"`
	Code             string              `json:"code"`
	ValidationErrors map[string][]string `json:"validationErrors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates any error into a response. Operational taxonomy
// variants expose their message and code; everything else is logged in full
// and masked with a generic message so internals never leak to clients.
func WriteError(w http.ResponseWriter, log logger.Logger, err error) {
	c := errors.Classify(err)
	if c.Known && c.Operational {
		log.Debug().
			Str("error_code", string(c.Err.Code)).
			Int("status_code", c.Err.StatusCode).
			Msg(c.Err.Message)
		WriteJSON(w, c.Err.StatusCode, errorBody{
			Message:          c.Err.Message,
			Code:             string(c.Err.Code),
			ValidationErrors: c.Err.ValidationErrors(),
		})
		return
	}

	log.Error().Err(err).Msg("Unhandled error")
	WriteJSON(w, http.StatusInternalServerError, errorBody{
		Message: "An unexpected error occurred",
		Code:    string(errors.CodeAPI),
	})
}

// decodeJSON reads a request body into v, limiting its size.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return errors.NewValidation("Invalid request body: "+err.Error(), nil)
	}
	return nil
}
