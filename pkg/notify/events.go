package notify

// Notification type constants
const (
	TypeVolunteerOffered    = "volunteer_offered"
	TypeVolunteerAccepted   = "volunteer_accepted"
	TypeVolunteerWithdrawn  = "volunteer_withdrawn"
	TypeSubNominated        = "sub_nominated"
	TypeNominationConfirmed = "nomination_confirmed"
	TypeNominationDeclined  = "nomination_declined"
	TypeAcceptanceWithdrawn = "acceptance_withdrawn"
	TypeTradeOffered        = "trade_offered"
	TypeTradeSelected       = "trade_selected"
	TypeRequestCancelled    = "request_cancelled"
)

// Event is one realtime notification for a single user
type Event struct {
	UserID  string `json:"user_id"`
	Type    string `json:"type"`
	Message string `json:"message"`
}
