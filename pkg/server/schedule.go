package server

import (
	"net/http"
	"time"

	"github.com/hopebridge/shiftcover/pkg/core/services"
)

const dateLayout = "2006-01-02"

func (s *Server) handleShiftInstances(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(dateLayout, r.URL.Query().Get("start"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid or missing start date")
		return
	}
	end, err := time.Parse(dateLayout, r.URL.Query().Get("end"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid or missing end date")
		return
	}
	if end.Before(start) {
		s.writeError(w, http.StatusBadRequest, "end date is before start date")
		return
	}

	instances, err := services.GenerateShiftInstances(r.Context(), s.store, s.logger, s.closures, s.cfg.DefaultShiftSize, start, end)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, instances)
}
