package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hopebridge/shiftcover/pkg/core/model"
	"github.com/hopebridge/shiftcover/pkg/core/subrequest"
	"github.com/hopebridge/shiftcover/pkg/db"
	"github.com/hopebridge/shiftcover/pkg/notify"
)

// CreateSubRequestParams describes the occurrence the worker needs covered
type CreateSubRequestParams struct {
	ShiftID           string
	ShiftRecurrenceID string
	Date              string // "2006-01-02"
	Type              model.RequestType
}

// CreateSubRequest opens a substitute or trade request for a shift
// occurrence the actor is on the effective roster for.
func CreateSubRequest(ctx context.Context, store db.RequestStore, hub Broadcaster, logger *zap.Logger, actor model.User, params CreateSubRequestParams) (*model.SubstituteRequest, error) {
	logger.Info("Creating substitute request",
		zap.String("actor_id", actor.ID),
		zap.String("shift_id", params.ShiftID),
		zap.String("date", params.Date),
		zap.String("type", string(params.Type)))

	if params.Type != model.RequestSubstitute && params.Type != model.RequestTrade {
		return nil, fmt.Errorf("invalid request type %q", params.Type)
	}
	if _, err := time.Parse("2006-01-02", params.Date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", params.Date, err)
	}

	var created model.SubstituteRequest
	err := store.WithRequestTx(ctx, func(tx db.RequestTx) error {
		covers, err := tx.UserCoversOccurrence(ctx, params.ShiftID, params.ShiftRecurrenceID, params.Date, actor.ID)
		if err != nil {
			return fmt.Errorf("failed to check occurrence roster: %w", err)
		}
		if !covers {
			return fmt.Errorf("actor is not assigned to this occurrence: %w", subrequest.ErrForbidden)
		}

		def, err := tx.GetShiftDefinition(ctx, params.ShiftID)
		if err != nil {
			return fmt.Errorf("failed to load shift definition: %w", err)
		}

		now := time.Now().UTC()
		created = model.SubstituteRequest{
			ID:                uuid.New().String(),
			ShiftID:           params.ShiftID,
			ShiftRecurrenceID: params.ShiftRecurrenceID,
			Date:              params.Date,
			StartTime:         def.StartTime,
			EndTime:           def.EndTime,
			Type:              params.Type,
			Status:            model.StatusOpen,
			RequestedByUserID: actor.ID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		return tx.InsertRequest(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Substitute request created", zap.String("request_id", created.ID))
	return &created, nil
}

// CancelSubRequest cancels an unresolved request. Offered volunteers and a
// pending nominee are notified that the request went away.
func CancelSubRequest(ctx context.Context, store db.RequestStore, hub Broadcaster, logger *zap.Logger, actor model.User, requestID string) error {
	logger.Info("Cancelling substitute request",
		zap.String("actor_id", actor.ID),
		zap.String("request_id", requestID))

	var staged []notify.Event
	err := store.WithRequestTx(ctx, func(tx db.RequestTx) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if err := subrequest.CanCancel(req, actor.ID); err != nil {
			return err
		}

		now := time.Now().UTC()
		nominee := req.NominatedSubUserID
		req = subrequest.Reopen(req, now)
		req.Status = model.StatusCancelled
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		message := fmt.Sprintf("The cover request for %s on %s was cancelled", req.StartTime, req.Date)
		if nominee != nil {
			if err := queueNotification(ctx, tx, &staged, *nominee, notify.TypeRequestCancelled, message); err != nil {
				return err
			}
		}
		volunteers, err := tx.GetVolunteers(ctx, requestID)
		if err != nil {
			return fmt.Errorf("failed to fetch volunteers: %w", err)
		}
		for _, volunteer := range volunteers {
			if volunteer.Status != model.VolunteerOffered {
				continue
			}
			if err := queueNotification(ctx, tx, &staged, volunteer.VolunteerUserID, notify.TypeRequestCancelled, message); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	publishStaged(hub, staged)
	logger.Info("Substitute request cancelled", zap.String("request_id", requestID))
	return nil
}

// ReopenSubRequest returns a cancelled or expired request to open. The
// request row is locked first so a reopen cannot race another transition
// into an inconsistent status.
func ReopenSubRequest(ctx context.Context, store db.RequestStore, logger *zap.Logger, actor model.User, requestID string) error {
	logger.Info("Reopening substitute request",
		zap.String("actor_id", actor.ID),
		zap.String("request_id", requestID))

	err := store.WithRequestTx(ctx, func(tx db.RequestTx) error {
		req, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if err := subrequest.CanReopen(req, actor.ID); err != nil {
			return err
		}

		req = subrequest.Reopen(req, time.Now().UTC())
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Substitute request reopened", zap.String("request_id", requestID))
	return nil
}

// WithdrawAcceptedSub lets the accepted substitute back out. The roster
// exception written at acceptance is removed and the requester notified.
// For a resolved trade the swap runs both ways, so the requester's exception
// on the offered occurrence is removed too and the option reverts to proposed.
func WithdrawAcceptedSub(ctx context.Context, store db.RequestStore, hub Broadcaster, logger *zap.Logger, actor model.User, requestID string) error {
	logger.Info("Withdrawing accepted substitute",
		zap.String("actor_id", actor.ID),
		zap.String("request_id", requestID))

	var staged []notify.Event
	err := store.WithRequestTx(ctx, func(tx db.RequestTx) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if err := subrequest.CanWithdrawAccepted(req, actor.ID); err != nil {
			return err
		}

		if err := tx.DeleteShiftException(ctx, req.ShiftID, req.Date, actor.ID, model.OverrideReplace); err != nil {
			return fmt.Errorf("failed to delete acceptance exception: %w", err)
		}

		if req.Type == model.RequestTrade {
			option, err := tx.GetSelectedTradeOption(ctx, requestID)
			if err != nil {
				return fmt.Errorf("failed to find selected trade option: %w", err)
			}
			if err := tx.DeleteShiftException(ctx, option.ShiftID, option.Date, req.RequestedByUserID, model.OverrideReplace); err != nil {
				return fmt.Errorf("failed to delete swap exception: %w", err)
			}
			if err := tx.UpdateTradeOptionStatus(ctx, option.ID, model.OptionProposed); err != nil {
				return fmt.Errorf("failed to revert trade option: %w", err)
			}
		}

		now := time.Now().UTC()
		req = subrequest.ClearAcceptance(req, now)
		req.NominatedSubUserID = nil
		req.HasNominatedSub = false
		req.NominatedConfirmedAt = nil
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		message := fmt.Sprintf("%s can no longer cover your shift on %s", actor.FullName(), req.Date)
		return queueNotification(ctx, tx, &staged, req.RequestedByUserID, notify.TypeAcceptanceWithdrawn, message)
	})
	if err != nil {
		return err
	}

	publishStaged(hub, staged)
	logger.Info("Accepted substitute withdrawn", zap.String("request_id", requestID))
	return nil
}
