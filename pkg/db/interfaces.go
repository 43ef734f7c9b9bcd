package db

import (
	"context"
	"errors"

	"github.com/hopebridge/shiftcover/pkg/core/model"
)

// ErrNotFound is returned when a referenced row does not exist
var ErrNotFound = errors.New("not found")

// ScheduleStore provides the committed scheduling state the generator
// projects from. Pure reads; safe to call concurrently.
type ScheduleStore interface {
	GetShiftDefinitions(ctx context.Context) ([]model.ShiftDefinition, error)
	GetShiftRecurrences(ctx context.Context) ([]model.ShiftRecurrence, error)
	GetShiftAssignments(ctx context.Context) ([]model.ShiftAssignment, error)
	// GetShiftExceptions returns exceptions overlapping [start, end],
	// ordered by created_at then id.
	GetShiftExceptions(ctx context.Context, start, end string) ([]model.ShiftException, error)
}

// UserStore provides user lookup for authentication and nomination targets
type UserStore interface {
	GetUser(ctx context.Context, id string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	InsertUser(ctx context.Context, user model.User) error
	ListActiveWorkers(ctx context.Context) ([]model.User, error)
}

// AvailabilityStore provides stated availability preferences for matching
type AvailabilityStore interface {
	GetPreferencesForRecurrence(ctx context.Context, recurrenceID string) ([]model.AvailabilityPreference, error)
	// UpsertPreference records or replaces one preference; a nil date means
	// the preference covers the recurrence generally.
	UpsertPreference(ctx context.Context, pref model.AvailabilityPreference) error
}

// NotificationStore provides the durable per-user message log
type NotificationStore interface {
	GetNotifications(ctx context.Context, userID string) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error
	// GetUnreadNotifications returns every unread row, for digest delivery
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
}

// RequestTx exposes the row operations available inside one substitute
// request transaction. Every state-machine transition runs against exactly
// one RequestTx; a returned error rolls the whole transition back,
// notifications included.
type RequestTx interface {
	GetRequest(ctx context.Context, id string) (model.SubstituteRequest, error)
	// GetRequestForUpdate reads the request under a row-level lock, for
	// transitions whose guard depends on sibling rows.
	GetRequestForUpdate(ctx context.Context, id string) (model.SubstituteRequest, error)
	InsertRequest(ctx context.Context, req model.SubstituteRequest) error
	UpdateRequest(ctx context.Context, req model.SubstituteRequest) error

	GetVolunteers(ctx context.Context, requestID string) ([]model.SubVolunteer, error)
	InsertVolunteer(ctx context.Context, volunteer model.SubVolunteer) error
	UpdateVolunteerStatus(ctx context.Context, volunteerID string, status model.VolunteerStatus) error

	GetTradeOffer(ctx context.Context, offerID string) (model.TradeOffer, error)
	GetTradeOption(ctx context.Context, optionID string) (model.TradeOfferOption, error)
	// GetSelectedTradeOption returns the option selected to resolve the
	// request's trade, or ErrNotFound when no option has been selected.
	GetSelectedTradeOption(ctx context.Context, requestID string) (model.TradeOfferOption, error)
	InsertTradeOffer(ctx context.Context, offer model.TradeOffer) error
	InsertTradeOption(ctx context.Context, option model.TradeOfferOption) error
	UpdateTradeOptionStatus(ctx context.Context, optionID string, status model.OptionStatus) error

	GetShiftDefinition(ctx context.Context, shiftID string) (model.ShiftDefinition, error)
	InsertShiftException(ctx context.Context, exc model.ShiftException) error
	DeleteShiftException(ctx context.Context, shiftID, date, userID string, override model.OverrideType) error
	// UserCoversOccurrence reports whether the user is on the effective
	// roster for the occurrence (primary assignment or add/replace exception).
	UserCoversOccurrence(ctx context.Context, shiftID, recurrenceID, date, userID string) (bool, error)

	GetUser(ctx context.Context, id string) (model.User, error)
	InsertNotification(ctx context.Context, notification model.Notification) error
}

// RequestStore owns substitute request transactions
type RequestStore interface {
	// WithRequestTx runs fn inside one database transaction, committing on
	// nil and rolling back on error.
	WithRequestTx(ctx context.Context, fn func(tx RequestTx) error) error
	GetRequest(ctx context.Context, id string) (model.SubstituteRequest, error)
	GetRequestsForUser(ctx context.Context, userID string) ([]model.SubstituteRequest, error)
	ListOpenRequests(ctx context.Context) ([]model.SubstituteRequest, error)
	GetTradeOffersForRequest(ctx context.Context, requestID string) ([]model.TradeOffer, error)
	GetTradeOptionsForOffer(ctx context.Context, offerID string) ([]model.TradeOfferOption, error)
}
