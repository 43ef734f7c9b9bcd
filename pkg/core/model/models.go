package model

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleScheduler Role = "scheduler"
	RoleWorker    Role = "worker"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleScheduler || r == RoleWorker
}

// User represents a centre worker or administrator
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Role         Role
	Status       string // "active" or "inactive"
	PasswordHash string
}

// FullName returns the user's display name
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// OverrideType is the kind of one-date roster override
type OverrideType string

const (
	OverrideAdd     OverrideType = "add"
	OverrideRemove  OverrideType = "remove"
	OverrideReplace OverrideType = "replace"
)

func (o OverrideType) IsValid() bool {
	return o == OverrideAdd || o == OverrideRemove || o == OverrideReplace
}

// ShiftDefinition is the recurring weekday + time-of-day template for a shift
type ShiftDefinition struct {
	ID        string
	Weekday   int    // 0 (Sunday) to 6 (Saturday)
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
	Active    bool
	Notes     string
}

// ShiftRecurrence is a named cadence tied to one shift definition.
// WeekOfMonth nil means every matching weekday; 1-5 means the Nth week only.
type ShiftRecurrence struct {
	ID          string
	ShiftID     string
	Label       string
	WeekOfMonth *int
	Active      bool
	SortOrder   int
}

// ShiftAssignment is one row of the steady-state roster
type ShiftAssignment struct {
	UserID            string
	ShiftRecurrenceID string
	IsPrimary         bool
}

// ShiftException is a one-date override layered on the roster
type ShiftException struct {
	ID           string
	ShiftID      string
	Date         string // "2006-01-02"
	OverrideType OverrideType
	UserID       string
	RequestedBy  string
	ApprovedBy   string
	Status       string
	CreatedAt    time.Time
}

// ShiftInstance is a concrete dated shift occurrence. It is derived on
// demand by the generator and never persisted.
type ShiftInstance struct {
	ShiftID           string
	ShiftRecurrenceID string
	Date              string // "2006-01-02"
	StartTime         string
	EndTime           string
	AssignedUserIDs   []string
	IsException       bool
	ExceptionType     OverrideType // last-applied override kind, empty if none
	Understaffed      bool         // fewer assignees than the configured shift size
}

// RequestType distinguishes one-way coverage from a shift trade
type RequestType string

const (
	RequestSubstitute RequestType = "substitute"
	RequestTrade      RequestType = "trade"
)

// RequestStatus is the substitute request lifecycle state
type RequestStatus string

const (
	StatusOpen                   RequestStatus = "open"
	StatusAwaitingRequestConf    RequestStatus = "awaiting_request_confirmation"
	StatusAwaitingNominationConf RequestStatus = "awaiting_nomination_confirmation"
	StatusAccepted               RequestStatus = "accepted"
	StatusCancelled              RequestStatus = "cancelled"
	StatusExpired                RequestStatus = "expired"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusAwaitingRequestConf, StatusAwaitingNominationConf,
		StatusAccepted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// IsReopenable reports whether the request can be returned to open
func (s RequestStatus) IsReopenable() bool {
	return s == StatusCancelled || s == StatusExpired
}

// SubstituteRequest is a worker's request for coverage of one shift occurrence
type SubstituteRequest struct {
	ID                   string
	ShiftID              string
	ShiftRecurrenceID    string
	Date                 string // "2006-01-02"
	StartTime            string
	EndTime              string
	Type                 RequestType
	Status               RequestStatus
	RequestedByUserID    string
	AcceptedByUserID     *string
	AcceptedAt           *time.Time
	NominatedSubUserID   *string
	HasNominatedSub      bool
	NominatedConfirmedAt *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// VolunteerStatus tracks one volunteer attempt; rows are never deleted
type VolunteerStatus string

const (
	VolunteerOffered   VolunteerStatus = "offered"
	VolunteerWithdrawn VolunteerStatus = "withdrawn"
)

// SubVolunteer is one worker's offer to cover a request
type SubVolunteer struct {
	ID              string
	RequestID       string
	VolunteerUserID string
	Status          VolunteerStatus
	CreatedAt       time.Time
}

// TradeOffer groups candidate swap shifts proposed by a counter-party
type TradeOffer struct {
	ID              string
	RequestID       string
	OfferedByUserID string
	Message         string
	CreatedAt       time.Time
}

// OptionStatus marks whether a trade option was chosen
type OptionStatus string

const (
	OptionProposed OptionStatus = "proposed"
	OptionSelected OptionStatus = "selected"
)

// TradeOfferOption is one candidate shift occurrence within an offer
type TradeOfferOption struct {
	ID                string
	OfferID           string
	ShiftID           string
	ShiftRecurrenceID string
	Date              string // "2006-01-02"
	Status            OptionStatus
}

// Notification is one append-only message log row
type Notification struct {
	ID        string
	UserID    string
	Type      string
	Message   string
	CreatedAt time.Time
	ReadAt    *time.Time
}

// AvailabilityLevel is a worker's stated willingness to cover
type AvailabilityLevel string

const (
	AvailabilityUsually AvailabilityLevel = "usually"
	AvailabilityMaybe   AvailabilityLevel = "maybe"
)

// AvailabilityPreference is a worker's stated availability for a recurrence,
// optionally narrowed to one exact occurrence date.
type AvailabilityPreference struct {
	UserID            string
	ShiftRecurrenceID string
	Date              *string // nil = declared for the recurrence generally
	Level             AvailabilityLevel
}
