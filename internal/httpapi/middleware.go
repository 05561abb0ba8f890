package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/startificial/requireflow/internal/errors"
	"github.com/startificial/requireflow/internal/model"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "requireflow_session"

type contextKey int

const userKey contextKey = iota

// UserFromContext returns the authenticated user attached by requireAuth.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

// requireAuth resolves the session cookie and puts the user on the request
// context. Requests without a valid session never reach next.
func (h *handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil {
			WriteError(w, h.logger, errors.NewAuthentication("Authentication required"))
			return
		}

		user, err := h.auth.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			WriteError(w, h.logger, err)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	}
}
