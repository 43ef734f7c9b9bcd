package services

import (
	"context"
	"maps"
	"slices"

	"github.com/hopebridge/shiftcover/pkg/core/model"
	"github.com/hopebridge/shiftcover/pkg/db"
	"github.com/hopebridge/shiftcover/pkg/notify"
)

// mockTx is an in-memory test double for db.RequestTx
type mockTx struct {
	requests      map[string]model.SubstituteRequest
	volunteers    []model.SubVolunteer
	offers        map[string]model.TradeOffer
	options       map[string]model.TradeOfferOption
	definitions   map[string]model.ShiftDefinition
	exceptions    []model.ShiftException
	users         map[string]model.User
	notifications []model.Notification
	covers        map[string]bool

	lockedRequestIDs []string
}

func newMockTx() *mockTx {
	return &mockTx{
		requests:    make(map[string]model.SubstituteRequest),
		offers:      make(map[string]model.TradeOffer),
		options:     make(map[string]model.TradeOfferOption),
		definitions: make(map[string]model.ShiftDefinition),
		users:       make(map[string]model.User),
		covers:      make(map[string]bool),
	}
}

func (m *mockTx) clone() *mockTx {
	c := &mockTx{
		requests:         maps.Clone(m.requests),
		volunteers:       slices.Clone(m.volunteers),
		offers:           maps.Clone(m.offers),
		options:          maps.Clone(m.options),
		definitions:      maps.Clone(m.definitions),
		exceptions:       slices.Clone(m.exceptions),
		users:            maps.Clone(m.users),
		notifications:    slices.Clone(m.notifications),
		covers:           maps.Clone(m.covers),
		lockedRequestIDs: slices.Clone(m.lockedRequestIDs),
	}
	return c
}

func coverKey(shiftID, recurrenceID, date, userID string) string {
	return shiftID + "|" + recurrenceID + "|" + date + "|" + userID
}

func (m *mockTx) GetRequest(ctx context.Context, id string) (model.SubstituteRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return model.SubstituteRequest{}, db.ErrNotFound
	}
	return req, nil
}

func (m *mockTx) GetRequestForUpdate(ctx context.Context, id string) (model.SubstituteRequest, error) {
	m.lockedRequestIDs = append(m.lockedRequestIDs, id)
	return m.GetRequest(ctx, id)
}

func (m *mockTx) InsertRequest(ctx context.Context, req model.SubstituteRequest) error {
	m.requests[req.ID] = req
	return nil
}

func (m *mockTx) UpdateRequest(ctx context.Context, req model.SubstituteRequest) error {
	if _, ok := m.requests[req.ID]; !ok {
		return db.ErrNotFound
	}
	m.requests[req.ID] = req
	return nil
}

func (m *mockTx) GetVolunteers(ctx context.Context, requestID string) ([]model.SubVolunteer, error) {
	var result []model.SubVolunteer
	for _, volunteer := range m.volunteers {
		if volunteer.RequestID == requestID {
			result = append(result, volunteer)
		}
	}
	return result, nil
}

func (m *mockTx) InsertVolunteer(ctx context.Context, volunteer model.SubVolunteer) error {
	m.volunteers = append(m.volunteers, volunteer)
	return nil
}

func (m *mockTx) UpdateVolunteerStatus(ctx context.Context, volunteerID string, status model.VolunteerStatus) error {
	for i := range m.volunteers {
		if m.volunteers[i].ID == volunteerID {
			m.volunteers[i].Status = status
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *mockTx) GetTradeOffer(ctx context.Context, offerID string) (model.TradeOffer, error) {
	offer, ok := m.offers[offerID]
	if !ok {
		return model.TradeOffer{}, db.ErrNotFound
	}
	return offer, nil
}

func (m *mockTx) GetTradeOption(ctx context.Context, optionID string) (model.TradeOfferOption, error) {
	option, ok := m.options[optionID]
	if !ok {
		return model.TradeOfferOption{}, db.ErrNotFound
	}
	return option, nil
}

func (m *mockTx) GetSelectedTradeOption(ctx context.Context, requestID string) (model.TradeOfferOption, error) {
	for _, option := range m.options {
		if option.Status != model.OptionSelected {
			continue
		}
		if offer, ok := m.offers[option.OfferID]; ok && offer.RequestID == requestID {
			return option, nil
		}
	}
	return model.TradeOfferOption{}, db.ErrNotFound
}

func (m *mockTx) InsertTradeOffer(ctx context.Context, offer model.TradeOffer) error {
	m.offers[offer.ID] = offer
	return nil
}

func (m *mockTx) InsertTradeOption(ctx context.Context, option model.TradeOfferOption) error {
	m.options[option.ID] = option
	return nil
}

func (m *mockTx) UpdateTradeOptionStatus(ctx context.Context, optionID string, status model.OptionStatus) error {
	option, ok := m.options[optionID]
	if !ok {
		return db.ErrNotFound
	}
	option.Status = status
	m.options[optionID] = option
	return nil
}

func (m *mockTx) GetShiftDefinition(ctx context.Context, shiftID string) (model.ShiftDefinition, error) {
	def, ok := m.definitions[shiftID]
	if !ok {
		return model.ShiftDefinition{}, db.ErrNotFound
	}
	return def, nil
}

func (m *mockTx) InsertShiftException(ctx context.Context, exc model.ShiftException) error {
	m.exceptions = append(m.exceptions, exc)
	return nil
}

func (m *mockTx) DeleteShiftException(ctx context.Context, shiftID, date, userID string, override model.OverrideType) error {
	kept := m.exceptions[:0]
	for _, exc := range m.exceptions {
		if exc.ShiftID == shiftID && exc.Date == date && exc.UserID == userID && exc.OverrideType == override {
			continue
		}
		kept = append(kept, exc)
	}
	m.exceptions = kept
	return nil
}

func (m *mockTx) UserCoversOccurrence(ctx context.Context, shiftID, recurrenceID, date, userID string) (bool, error) {
	return m.covers[coverKey(shiftID, recurrenceID, date, userID)], nil
}

func (m *mockTx) GetUser(ctx context.Context, id string) (model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return model.User{}, db.ErrNotFound
	}
	return user, nil
}

func (m *mockTx) InsertNotification(ctx context.Context, notification model.Notification) error {
	m.notifications = append(m.notifications, notification)
	return nil
}

// mockStore implements db.RequestStore over a mockTx, rolling the tx state
// back when the transaction function fails.
type mockStore struct {
	tx    *mockTx
	txErr error
}

func newMockStore() *mockStore {
	return &mockStore{tx: newMockTx()}
}

func (s *mockStore) WithRequestTx(ctx context.Context, fn func(tx db.RequestTx) error) error {
	if s.txErr != nil {
		return s.txErr
	}
	snapshot := s.tx.clone()
	if err := fn(s.tx); err != nil {
		s.tx = snapshot
		return err
	}
	return nil
}

func (s *mockStore) GetRequest(ctx context.Context, id string) (model.SubstituteRequest, error) {
	return s.tx.GetRequest(ctx, id)
}

func (s *mockStore) GetRequestsForUser(ctx context.Context, userID string) ([]model.SubstituteRequest, error) {
	var result []model.SubstituteRequest
	for _, req := range s.tx.requests {
		if req.RequestedByUserID == userID {
			result = append(result, req)
		}
	}
	return result, nil
}

func (s *mockStore) ListOpenRequests(ctx context.Context) ([]model.SubstituteRequest, error) {
	var result []model.SubstituteRequest
	for _, req := range s.tx.requests {
		if req.Status == model.StatusOpen {
			result = append(result, req)
		}
	}
	return result, nil
}

func (s *mockStore) GetTradeOffersForRequest(ctx context.Context, requestID string) ([]model.TradeOffer, error) {
	var result []model.TradeOffer
	for _, offer := range s.tx.offers {
		if offer.RequestID == requestID {
			result = append(result, offer)
		}
	}
	return result, nil
}

func (s *mockStore) GetTradeOptionsForOffer(ctx context.Context, offerID string) ([]model.TradeOfferOption, error) {
	var result []model.TradeOfferOption
	for _, option := range s.tx.options {
		if option.OfferID == offerID {
			result = append(result, option)
		}
	}
	return result, nil
}

// mockHub records realtime events published after commit
type mockHub struct {
	events []notify.Event
}

func (h *mockHub) Publish(event notify.Event) {
	h.events = append(h.events, event)
}

// Shared fixtures

func worker(id, first, last string) model.User {
	return model.User{ID: id, FirstName: first, LastName: last, Role: model.RoleWorker, Status: "active"}
}

func openRequest(id, requesterID string) model.SubstituteRequest {
	return model.SubstituteRequest{
		ID:                id,
		ShiftID:           "shift-tue",
		ShiftRecurrenceID: "rec-tue",
		Date:              "2025-06-03",
		StartTime:         "09:00",
		EndTime:           "13:00",
		Type:              model.RequestSubstitute,
		Status:            model.StatusOpen,
		RequestedByUserID: requesterID,
	}
}
