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

// VolunteerForSub records the actor's offer to cover an open request and
// moves it to awaiting_request_confirmation.
func VolunteerForSub(ctx context.Context, store db.RequestStore, hub Broadcaster, logger *zap.Logger, actor model.User, requestID string) error {
	logger.Info("Volunteering for substitute request",
		zap.String("actor_id", actor.ID),
		zap.String("request_id", requestID))

	var staged []notify.Event
	err := store.WithRequestTx(ctx, func(tx db.RequestTx) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if err := subrequest.CanVolunteer(req, actor.ID); err != nil {
			return err
		}

		now := time.Now().UTC()
		volunteer := model.SubVolunteer{
			ID:              uuid.New().String(),
			RequestID:       req.ID,
			VolunteerUserID: actor.ID,
			Status:          model.VolunteerOffered,
			CreatedAt:       now,
		}
		if err := tx.InsertVolunteer(ctx, volunteer); err != nil {
			return fmt.Errorf("failed to insert volunteer: %w", err)
		}

		req.Status = model.StatusAwaitingRequestConf
		req.UpdatedAt = now
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		message := fmt.Sprintf("%s offered to cover your shift on %s", actor.FullName(), req.Date)
		return queueNotification(ctx, tx, &staged, req.RequestedByUserID, notify.TypeVolunteerOffered, message)
	})
	if err != nil {
		return err
	}

	publishStaged(hub, staged)
	logger.Info("Volunteer offer recorded",
		zap.String("actor_id", actor.ID),
		zap.String("request_id", requestID))
	return nil
}

// WithdrawVolunteer marks the actor's offer withdrawn. The request row is
// locked before the guard runs: whether the status reverts to open depends
// on how many other offered volunteers remain, and two concurrent
// withdrawals must not both see "one remaining".
func WithdrawVolunteer(ctx context.Context, store db.RequestStore, hub Broadcaster, logger *zap.Logger, actor model.User, requestID string) error {
	logger.Info("Withdrawing volunteer offer",
		zap.String("actor_id", actor.ID),
		zap.String("request_id", requestID))

	var staged []notify.Event
	err := store.WithRequestTx(ctx, func(tx db.RequestTx) error {
		req, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if err := subrequest.CanWithdrawVolunteer(req); err != nil {
			return err
		}

		volunteers, err := tx.GetVolunteers(ctx, requestID)
		if err != nil {
			return fmt.Errorf("failed to fetch volunteers: %w", err)
		}

		var own *model.SubVolunteer
		remainingOffered := 0
		for i, volunteer := range volunteers {
			if volunteer.Status != model.VolunteerOffered {
				continue
			}
			if volunteer.VolunteerUserID == actor.ID {
				own = &volunteers[i]
				continue
			}
			remainingOffered++
		}
		if own == nil {
			return fmt.Errorf("actor has no offered volunteer row: %w", subrequest.ErrForbidden)
		}

		if err := tx.UpdateVolunteerStatus(ctx, own.ID, model.VolunteerWithdrawn); err != nil {
			return fmt.Errorf("failed to update volunteer status: %w", err)
		}

		if remainingOffered == 0 {
			req.Status = model.StatusOpen
			req.UpdatedAt = time.Now().UTC()
			if err := tx.UpdateRequest(ctx, req); err != nil {
				return fmt.Errorf("failed to update request: %w", err)
			}
		}

		message := fmt.Sprintf("%s withdrew their offer to cover your shift on %s", actor.FullName(), req.Date)
		return queueNotification(ctx, tx, &staged, req.RequestedByUserID, notify.TypeVolunteerWithdrawn, message)
	})
	if err != nil {
		return err
	}

	publishStaged(hub, staged)
	logger.Info("Volunteer offer withdrawn",
		zap.String("actor_id", actor.ID),
		zap.String("request_id", requestID))
	return nil
}

// AcceptVolunteer resolves the request with the chosen volunteer and writes
// the roster exception covering the occurrence.
func AcceptVolunteer(ctx context.Context, store db.RequestStore, hub Broadcaster, logger *zap.Logger, actor model.User, requestID, volunteerUserID string) error {
	logger.Info("Accepting volunteer",
		zap.String("actor_id", actor.ID),
		zap.String("request_id", requestID),
		zap.String("volunteer_user_id", volunteerUserID))

	var staged []notify.Event
	err := store.WithRequestTx(ctx, func(tx db.RequestTx) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if err := subrequest.CanAcceptVolunteer(req, actor.ID); err != nil {
			return err
		}

		volunteers, err := tx.GetVolunteers(ctx, requestID)
		if err != nil {
			return fmt.Errorf("failed to fetch volunteers: %w", err)
		}
		offered := false
		for _, volunteer := range volunteers {
			if volunteer.VolunteerUserID == volunteerUserID && volunteer.Status == model.VolunteerOffered {
				offered = true
				break
			}
		}
		if !offered {
			return subrequest.ErrNoOfferedVolunteer
		}

		now := time.Now().UTC()
		req = subrequest.Accept(req, volunteerUserID, now)
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		if err := insertCoverException(ctx, tx, req, volunteerUserID, actor.ID, now); err != nil {
			return err
		}

		message := fmt.Sprintf("Your offer to cover the shift on %s was accepted", req.Date)
		return queueNotification(ctx, tx, &staged, volunteerUserID, notify.TypeVolunteerAccepted, message)
	})
	if err != nil {
		return err
	}

	publishStaged(hub, staged)
	logger.Info("Volunteer accepted",
		zap.String("request_id", requestID),
		zap.String("volunteer_user_id", volunteerUserID))
	return nil
}

// insertCoverException writes the date-scoped replace override that puts
// the covering worker on the occurrence roster.
func insertCoverException(ctx context.Context, tx db.RequestTx, req model.SubstituteRequest, coveringUserID, approvedBy string, now time.Time) error {
	exc := model.ShiftException{
		ID:           uuid.New().String(),
		ShiftID:      req.ShiftID,
		Date:         req.Date,
		OverrideType: model.OverrideReplace,
		UserID:       coveringUserID,
		RequestedBy:  req.RequestedByUserID,
		ApprovedBy:   approvedBy,
		Status:       "approved",
		CreatedAt:    now,
	}
	if err := tx.InsertShiftException(ctx, exc); err != nil {
		return fmt.Errorf("failed to insert cover exception: %w", err)
	}
	return nil
}
