// Package subrequest holds the pure lifecycle rules for substitute requests.
// Guards evaluate a freshly-read request against the acting user and return a
// typed error naming the violated precondition; effect helpers return updated
// copies. Persistence and notification stay with the callers, so every rule
// here is testable without a database.
package subrequest

import (
	"errors"
	"fmt"
	"time"

	"github.com/hopebridge/shiftcover/pkg/core/model"
)

var (
	// ErrForbidden indicates the actor is not the one permitted for the transition
	ErrForbidden = errors.New("forbidden")
	// ErrRequestNotOpen indicates a transition that requires an open request
	ErrRequestNotOpen = errors.New("request not open")
	// ErrNotAwaitingVolunteer indicates no volunteer offer is pending confirmation
	ErrNotAwaitingVolunteer = errors.New("request not awaiting volunteer confirmation")
	// ErrNotAwaitingNomination indicates no nomination is pending confirmation
	ErrNotAwaitingNomination = errors.New("request not awaiting nomination confirmation")
	// ErrNotAccepted indicates the request has no accepted substitute
	ErrNotAccepted = errors.New("request not accepted")
	// ErrNotReopenable indicates the request is not cancelled or expired
	ErrNotReopenable = errors.New("request not cancelled or expired")
	// ErrNotCancellable indicates the request has already resolved
	ErrNotCancellable = errors.New("request cannot be cancelled")
	// ErrNotTrade indicates a trade operation on a plain substitute request
	ErrNotTrade = errors.New("request is not a trade request")
	// ErrNoOfferedVolunteer indicates the named volunteer has no offered row
	ErrNoOfferedVolunteer = errors.New("no offered volunteer for request")
)

// CanVolunteer checks whether actorID may offer to cover the request
func CanVolunteer(req model.SubstituteRequest, actorID string) error {
	if actorID == req.RequestedByUserID {
		return fmt.Errorf("requester cannot volunteer for own request: %w", ErrForbidden)
	}
	if req.Status != model.StatusOpen {
		return ErrRequestNotOpen
	}
	return nil
}

// CanAcceptVolunteer checks whether actorID may accept a pending volunteer
func CanAcceptVolunteer(req model.SubstituteRequest, actorID string) error {
	if actorID != req.RequestedByUserID {
		return ErrForbidden
	}
	if req.Status != model.StatusAwaitingRequestConf {
		return ErrNotAwaitingVolunteer
	}
	return nil
}

// CanWithdrawVolunteer checks the request-level guard for a volunteer
// withdrawing their offer. The caller must separately verify the actor owns
// an offered row.
func CanWithdrawVolunteer(req model.SubstituteRequest) error {
	if req.Status != model.StatusAwaitingRequestConf {
		return ErrNotAwaitingVolunteer
	}
	return nil
}

// CanNominate checks whether actorID may directly nominate a substitute
func CanNominate(req model.SubstituteRequest, actorID string) error {
	if actorID != req.RequestedByUserID {
		return ErrForbidden
	}
	if req.Status != model.StatusOpen {
		return ErrRequestNotOpen
	}
	return nil
}

// CanRespondToNomination checks whether actorID is the pending nominee
func CanRespondToNomination(req model.SubstituteRequest, actorID string) error {
	if req.Status != model.StatusAwaitingNominationConf {
		return ErrNotAwaitingNomination
	}
	if req.NominatedSubUserID == nil || *req.NominatedSubUserID != actorID {
		return ErrForbidden
	}
	return nil
}

// CanWithdrawAccepted checks whether actorID is the accepted substitute
func CanWithdrawAccepted(req model.SubstituteRequest, actorID string) error {
	if req.Status != model.StatusAccepted {
		return ErrNotAccepted
	}
	if req.AcceptedByUserID == nil || *req.AcceptedByUserID != actorID {
		return ErrForbidden
	}
	return nil
}

// CanReopen checks whether actorID may return the request to open
func CanReopen(req model.SubstituteRequest, actorID string) error {
	if actorID != req.RequestedByUserID {
		return ErrForbidden
	}
	if !req.Status.IsReopenable() {
		return ErrNotReopenable
	}
	return nil
}

// CanCancel checks whether actorID may cancel the request
func CanCancel(req model.SubstituteRequest, actorID string) error {
	if actorID != req.RequestedByUserID {
		return ErrForbidden
	}
	switch req.Status {
	case model.StatusOpen, model.StatusAwaitingRequestConf, model.StatusAwaitingNominationConf:
		return nil
	}
	return ErrNotCancellable
}

// CanOfferTrade checks whether actorID may propose a swap on the request
func CanOfferTrade(req model.SubstituteRequest, actorID string) error {
	if req.Type != model.RequestTrade {
		return ErrNotTrade
	}
	if actorID == req.RequestedByUserID {
		return fmt.Errorf("requester cannot offer a trade on own request: %w", ErrForbidden)
	}
	if req.Status != model.StatusOpen {
		return ErrRequestNotOpen
	}
	return nil
}

// CanSelectTradeOption checks whether actorID may resolve the trade
func CanSelectTradeOption(req model.SubstituteRequest, actorID string) error {
	if actorID != req.RequestedByUserID {
		return ErrForbidden
	}
	if req.Type != model.RequestTrade {
		return ErrNotTrade
	}
	if req.Status != model.StatusOpen {
		return ErrRequestNotOpen
	}
	return nil
}

// Accept records userID as the accepted substitute
func Accept(req model.SubstituteRequest, userID string, now time.Time) model.SubstituteRequest {
	req.Status = model.StatusAccepted
	req.AcceptedByUserID = &userID
	req.AcceptedAt = &now
	req.UpdatedAt = now
	return req
}

// ClearNomination drops the pending nomination and returns the request to open
func ClearNomination(req model.SubstituteRequest, now time.Time) model.SubstituteRequest {
	req.Status = model.StatusOpen
	req.NominatedSubUserID = nil
	req.HasNominatedSub = false
	req.NominatedConfirmedAt = nil
	req.UpdatedAt = now
	return req
}

// ClearAcceptance drops the accepted substitute and returns the request to open
func ClearAcceptance(req model.SubstituteRequest, now time.Time) model.SubstituteRequest {
	req.Status = model.StatusOpen
	req.AcceptedByUserID = nil
	req.AcceptedAt = nil
	req.UpdatedAt = now
	return req
}

// Reopen clears every nomination and acceptance field and reopens the request
func Reopen(req model.SubstituteRequest, now time.Time) model.SubstituteRequest {
	req = ClearAcceptance(req, now)
	req.NominatedSubUserID = nil
	req.HasNominatedSub = false
	req.NominatedConfirmedAt = nil
	return req
}

// CheckInvariant asserts that AcceptedByUserID is non-nil exactly when the
// request is accepted.
func CheckInvariant(req model.SubstituteRequest) error {
	accepted := req.Status == model.StatusAccepted
	hasAcceptedBy := req.AcceptedByUserID != nil
	if accepted != hasAcceptedBy {
		return fmt.Errorf("request %s violates acceptance invariant: status=%s acceptedBy set=%t",
			req.ID, req.Status, hasAcceptedBy)
	}
	return nil
}
