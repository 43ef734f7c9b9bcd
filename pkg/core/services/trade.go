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

// TradeOptionParams is one candidate swap shift in a new offer
type TradeOptionParams struct {
	ShiftID           string
	ShiftRecurrenceID string
	Date              string // "2006-01-02"
}

// CreateTradeOffer records a counter-party's candidate swap shifts against
// an open trade request. The request status does not change; only selecting
// an option resolves the trade.
func CreateTradeOffer(ctx context.Context, store db.RequestStore, hub Broadcaster, logger *zap.Logger, actor model.User, requestID, message string, options []TradeOptionParams) (*model.TradeOffer, error) {
	logger.Info("Creating trade offer",
		zap.String("actor_id", actor.ID),
		zap.String("request_id", requestID),
		zap.Int("option_count", len(options)))

	if len(options) == 0 {
		return nil, fmt.Errorf("a trade offer needs at least one option")
	}
	for i, option := range options {
		if _, err := time.Parse("2006-01-02", option.Date); err != nil {
			return nil, fmt.Errorf("invalid date in option %d: %w", i, err)
		}
	}

	var offer model.TradeOffer
	var staged []notify.Event
	err := store.WithRequestTx(ctx, func(tx db.RequestTx) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if err := subrequest.CanOfferTrade(req, actor.ID); err != nil {
			return err
		}

		offer = model.TradeOffer{
			ID:              uuid.New().String(),
			RequestID:       req.ID,
			OfferedByUserID: actor.ID,
			Message:         message,
			CreatedAt:       time.Now().UTC(),
		}
		if err := tx.InsertTradeOffer(ctx, offer); err != nil {
			return fmt.Errorf("failed to insert trade offer: %w", err)
		}

		for _, option := range options {
			row := model.TradeOfferOption{
				ID:                uuid.New().String(),
				OfferID:           offer.ID,
				ShiftID:           option.ShiftID,
				ShiftRecurrenceID: option.ShiftRecurrenceID,
				Date:              option.Date,
				Status:            model.OptionProposed,
			}
			if err := tx.InsertTradeOption(ctx, row); err != nil {
				return fmt.Errorf("failed to insert trade option: %w", err)
			}
		}

		notification := fmt.Sprintf("%s proposed a shift trade for your request on %s", actor.FullName(), req.Date)
		return queueNotification(ctx, tx, &staged, req.RequestedByUserID, notify.TypeTradeOffered, notification)
	})
	if err != nil {
		return nil, err
	}

	publishStaged(hub, staged)
	logger.Info("Trade offer created", zap.String("offer_id", offer.ID))
	return &offer, nil
}

// SelectTradeOption resolves a trade: the chosen option is marked selected,
// the request is accepted with the offerer, and two symmetric replace
// exceptions swap the parties' shifts. All of it commits or none of it does.
func SelectTradeOption(ctx context.Context, store db.RequestStore, hub Broadcaster, logger *zap.Logger, actor model.User, requestID, offerID, optionID string) error {
	logger.Info("Selecting trade option",
		zap.String("actor_id", actor.ID),
		zap.String("request_id", requestID),
		zap.String("offer_id", offerID),
		zap.String("option_id", optionID))

	var staged []notify.Event
	err := store.WithRequestTx(ctx, func(tx db.RequestTx) error {
		req, err := tx.GetRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if err := subrequest.CanSelectTradeOption(req, actor.ID); err != nil {
			return err
		}

		offer, err := tx.GetTradeOffer(ctx, offerID)
		if err != nil {
			return fmt.Errorf("trade offer %s: %w", offerID, err)
		}
		if offer.RequestID != req.ID {
			return fmt.Errorf("trade offer %s does not belong to request %s: %w", offerID, req.ID, db.ErrNotFound)
		}

		option, err := tx.GetTradeOption(ctx, optionID)
		if err != nil {
			return fmt.Errorf("trade option %s: %w", optionID, err)
		}
		if option.OfferID != offer.ID {
			return fmt.Errorf("trade option %s does not belong to offer %s: %w", optionID, offerID, db.ErrNotFound)
		}

		if err := tx.UpdateTradeOptionStatus(ctx, option.ID, model.OptionSelected); err != nil {
			return fmt.Errorf("failed to mark option selected: %w", err)
		}

		now := time.Now().UTC()
		req = subrequest.Accept(req, offer.OfferedByUserID, now)
		if err := tx.UpdateRequest(ctx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		// The offerer takes the requester's occurrence
		if err := insertCoverException(ctx, tx, req, offer.OfferedByUserID, actor.ID, now); err != nil {
			return err
		}
		// The requester takes the offered occurrence
		swapBack := model.ShiftException{
			ID:           uuid.New().String(),
			ShiftID:      option.ShiftID,
			Date:         option.Date,
			OverrideType: model.OverrideReplace,
			UserID:       req.RequestedByUserID,
			RequestedBy:  offer.OfferedByUserID,
			ApprovedBy:   actor.ID,
			Status:       "approved",
			CreatedAt:    now,
		}
		if err := tx.InsertShiftException(ctx, swapBack); err != nil {
			return fmt.Errorf("failed to insert swap exception: %w", err)
		}

		message := fmt.Sprintf("Your trade offer was accepted: you cover %s and hand over %s", req.Date, option.Date)
		return queueNotification(ctx, tx, &staged, offer.OfferedByUserID, notify.TypeTradeSelected, message)
	})
	if err != nil {
		return err
	}

	publishStaged(hub, staged)
	logger.Info("Trade option selected",
		zap.String("request_id", requestID),
		zap.String("option_id", optionID))
	return nil
}
