package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hopebridge/shiftcover/pkg/core/model"
	"github.com/hopebridge/shiftcover/pkg/core/subrequest"
	"github.com/hopebridge/shiftcover/pkg/db"
)

type contextKey string

const userContextKey contextKey = "user"

// requireAuth resolves the session to a user and rejects unauthenticated
// requests. The resolved user rides on the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.sessions.Get(r, sessionName)

		userID, ok := session.Values["user_id"].(string)
		if !ok || userID == "" {
			s.writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		user, err := s.store.GetUser(r.Context(), userID)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if user.Status != "active" {
			s.writeError(w, http.StatusForbidden, "account inactive")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(r *http.Request) model.User {
	user, _ := r.Context().Value(userContextKey).(model.User)
	return user
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service-layer errors onto HTTP statuses:
// authorization failures are 403, missing rows 404, guard violations 409.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, subrequest.ErrForbidden):
		s.writeError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, db.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, subrequest.ErrRequestNotOpen),
		errors.Is(err, subrequest.ErrNotAwaitingVolunteer),
		errors.Is(err, subrequest.ErrNotAwaitingNomination),
		errors.Is(err, subrequest.ErrNotAccepted),
		errors.Is(err, subrequest.ErrNotReopenable),
		errors.Is(err, subrequest.ErrNotCancellable),
		errors.Is(err, subrequest.ErrNotTrade),
		errors.Is(err, subrequest.ErrNoOfferedVolunteer):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("Request failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}
