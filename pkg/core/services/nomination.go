package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hopebridge/shiftcover/pkg/core/model"
	"github.com/hopebridge/shiftcover/pkg/core/subrequest"
	"github.com/hopebridge/shiftcover/pkg/db"
	"github.com/hopebridge/shiftcover/pkg/notify"
)

// NominateSubstitute directly picks a worker to cover the request, pending
// that worker's confirmation.
func NominateSubstitute(ctx context.Context, store db.RequestStore, hub Broadcaster, logger *zap.Logger, actor model.User, requestID, workerUserID string) error {
	logger.Info("Nominating substitute",
		zap.String("actor_id", actor.ID),
		zap.String("request_id", requestID),
		zap.String("worker_user_id", workerUserID))

	var staged []notify.Event
	err := store.WithRequestTx(ctx, func(tx db.RequestTx) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if err := subrequest.CanNominate(req, actor.ID); err != nil {
			return err
		}

		nominee, err := tx.GetUser(ctx, workerUserID)
		if err != nil {
			return fmt.Errorf("nominated user %s: %w", workerUserID, err)
		}

		req.Status = model.StatusAwaitingNominationConf
		req.NominatedSubUserID = &nominee.ID
		req.HasNominatedSub = true
		req.NominatedConfirmedAt = nil
		req.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		message := fmt.Sprintf("%s asked you to cover their shift on %s (%s-%s)",
			actor.FullName(), req.Date, req.StartTime, req.EndTime)
		return queueNotification(ctx, tx, &staged, nominee.ID, notify.TypeSubNominated, message)
	})
	if err != nil {
		return err
	}

	publishStaged(hub, staged)
	logger.Info("Substitute nominated",
		zap.String("request_id", requestID),
		zap.String("worker_user_id", workerUserID))
	return nil
}

// ConfirmNominatedSub lets the nominee take the shift. Acceptance writes
// the roster exception, same as the volunteer path.
func ConfirmNominatedSub(ctx context.Context, store db.RequestStore, hub Broadcaster, logger *zap.Logger, actor model.User, requestID string) error {
	logger.Info("Confirming nomination",
		zap.String("actor_id", actor.ID),
		zap.String("request_id", requestID))

	var staged []notify.Event
	err := store.WithRequestTx(ctx, func(tx db.RequestTx) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if err := subrequest.CanRespondToNomination(req, actor.ID); err != nil {
			return err
		}

		now := time.Now().UTC()
		req = subrequest.Accept(req, actor.ID, now)
		req.NominatedConfirmedAt = &now
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		if err := insertCoverException(ctx, tx, req, actor.ID, actor.ID, now); err != nil {
			return err
		}

		message := fmt.Sprintf("%s confirmed they will cover your shift on %s", actor.FullName(), req.Date)
		return queueNotification(ctx, tx, &staged, req.RequestedByUserID, notify.TypeNominationConfirmed, message)
	})
	if err != nil {
		return err
	}

	publishStaged(hub, staged)
	logger.Info("Nomination confirmed", zap.String("request_id", requestID))
	return nil
}

// DeclineNominatedSub lets the nominee turn the nomination down, returning
// the request to open.
func DeclineNominatedSub(ctx context.Context, store db.RequestStore, hub Broadcaster, logger *zap.Logger, actor model.User, requestID string) error {
	logger.Info("Declining nomination",
		zap.String("actor_id", actor.ID),
		zap.String("request_id", requestID))

	var staged []notify.Event
	err := store.WithRequestTx(ctx, func(tx db.RequestTx) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if err := subrequest.CanRespondToNomination(req, actor.ID); err != nil {
			return err
		}

		req = subrequest.ClearNomination(req, time.Now().UTC())
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		message := fmt.Sprintf("%s declined to cover your shift on %s", actor.FullName(), req.Date)
		return queueNotification(ctx, tx, &staged, req.RequestedByUserID, notify.TypeNominationDeclined, message)
	})
	if err != nil {
		return err
	}

	publishStaged(hub, staged)
	logger.Info("Nomination declined", zap.String("request_id", requestID))
	return nil
}
