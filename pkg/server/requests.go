package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hopebridge/shiftcover/pkg/core/model"
	"github.com/hopebridge/shiftcover/pkg/core/services"
)

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ShiftID           string `json:"shiftID"`
		ShiftRecurrenceID string `json:"shiftRecurrenceID"`
		Date              string `json:"date"`
		Type              string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	created, err := services.CreateSubRequest(r.Context(), s.store, s.hub, s.logger, currentUser(r), services.CreateSubRequestParams{
		ShiftID:           body.ShiftID,
		ShiftRecurrenceID: body.ShiftRecurrenceID,
		Date:              body.Date,
		Type:              model.RequestType(body.Type),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListOpenRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.store.ListOpenRequests(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, requests)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.store.GetRequest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := services.GetAvailabilityMatches(r.Context(), s.store, s.store, s.store, s.logger, mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleVolunteer(w http.ResponseWriter, r *http.Request) {
	err := services.VolunteerForSub(r.Context(), s.store, s.hub, s.logger, currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWithdrawVolunteer(w http.ResponseWriter, r *http.Request) {
	err := services.WithdrawVolunteer(r.Context(), s.store, s.hub, s.logger, currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAcceptVolunteer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VolunteerUserID string `json:"volunteerUserID"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	err := services.AcceptVolunteer(r.Context(), s.store, s.hub, s.logger, currentUser(r), mux.Vars(r)["id"], body.VolunteerUserID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNominate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WorkerUserID string `json:"workerUserID"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	err := services.NominateSubstitute(r.Context(), s.store, s.hub, s.logger, currentUser(r), mux.Vars(r)["id"], body.WorkerUserID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConfirmNomination(w http.ResponseWriter, r *http.Request) {
	err := services.ConfirmNominatedSub(r.Context(), s.store, s.hub, s.logger, currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeclineNomination(w http.ResponseWriter, r *http.Request) {
	err := services.DeclineNominatedSub(r.Context(), s.store, s.hub, s.logger, currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWithdrawAccepted(w http.ResponseWriter, r *http.Request) {
	err := services.WithdrawAcceptedSub(r.Context(), s.store, s.hub, s.logger, currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReopen(w http.ResponseWriter, r *http.Request) {
	err := services.ReopenSubRequest(r.Context(), s.store, s.logger, currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	err := services.CancelSubRequest(r.Context(), s.store, s.hub, s.logger, currentUser(r), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateTradeOffer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
		Options []struct {
			ShiftID           string `json:"shiftID"`
			ShiftRecurrenceID string `json:"shiftRecurrenceID"`
			Date              string `json:"date"`
		} `json:"options"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	options := make([]services.TradeOptionParams, 0, len(body.Options))
	for _, option := range body.Options {
		options = append(options, services.TradeOptionParams{
			ShiftID:           option.ShiftID,
			ShiftRecurrenceID: option.ShiftRecurrenceID,
			Date:              option.Date,
		})
	}

	offer, err := services.CreateTradeOffer(r.Context(), s.store, s.hub, s.logger, currentUser(r), mux.Vars(r)["id"], body.Message, options)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, offer)
}

func (s *Server) handleListTradeOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := s.store.GetTradeOffersForRequest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	type offerWithOptions struct {
		model.TradeOffer
		Options []model.TradeOfferOption `json:"options"`
	}

	response := make([]offerWithOptions, 0, len(offers))
	for _, offer := range offers {
		options, err := s.store.GetTradeOptionsForOffer(r.Context(), offer.ID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		response = append(response, offerWithOptions{TradeOffer: offer, Options: options})
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleSelectTradeOption(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OfferID  string `json:"offerID"`
		OptionID string `json:"optionID"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	err := services.SelectTradeOption(r.Context(), s.store, s.hub, s.logger, currentUser(r), mux.Vars(r)["id"], body.OfferID, body.OptionID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
