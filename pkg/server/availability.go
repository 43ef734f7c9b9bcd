package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hopebridge/shiftcover/pkg/core/model"
)

// handleSetAvailability records the authenticated user's availability for a
// recurrence, optionally narrowed to one occurrence date.
func (s *Server) handleSetAvailability(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ShiftRecurrenceID string  `json:"shiftRecurrenceID"`
		Date              *string `json:"date"`
		Level             string  `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if body.ShiftRecurrenceID == "" {
		s.writeError(w, http.StatusBadRequest, "shiftRecurrenceID is required")
		return
	}
	level := model.AvailabilityLevel(body.Level)
	if level != model.AvailabilityUsually && level != model.AvailabilityMaybe {
		s.writeError(w, http.StatusBadRequest, "level must be usually or maybe")
		return
	}
	if body.Date != nil {
		if _, err := time.Parse(dateLayout, *body.Date); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
	}

	err := s.store.UpsertPreference(r.Context(), model.AvailabilityPreference{
		UserID:            currentUser(r).ID,
		ShiftRecurrenceID: body.ShiftRecurrenceID,
		Date:              body.Date,
		Level:             level,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
