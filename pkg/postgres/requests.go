package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hopebridge/shiftcover/pkg/core/model"
	"github.com/hopebridge/shiftcover/pkg/db"
)

const requestColumns = `id, shift_id, shift_recurrence_id, date, start_time, end_time,
	type, status, requested_by_user_id, accepted_by_user_id, accepted_at,
	nominated_sub_user_id, has_nominated_sub, nominated_confirmed_at, created_at, updated_at`

func scanRequest(row pgx.Row) (model.SubstituteRequest, error) {
	var req model.SubstituteRequest
	var date time.Time
	err := row.Scan(&req.ID, &req.ShiftID, &req.ShiftRecurrenceID, &date,
		&req.StartTime, &req.EndTime, &req.Type, &req.Status, &req.RequestedByUserID,
		&req.AcceptedByUserID, &req.AcceptedAt, &req.NominatedSubUserID,
		&req.HasNominatedSub, &req.NominatedConfirmedAt, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SubstituteRequest{}, db.ErrNotFound
	}
	if err != nil {
		return model.SubstituteRequest{}, fmt.Errorf("failed to scan substitute request: %w", err)
	}
	req.Date = date.Format("2006-01-02")
	return req, nil
}

func scanRequests(rows pgx.Rows) ([]model.SubstituteRequest, error) {
	defer rows.Close()

	var requests []model.SubstituteRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating substitute requests: %w", err)
	}

	return requests, nil
}

// WithRequestTx runs fn inside one database transaction. A nil return
// commits; any error rolls the whole transition back, notifications included.
func (d *DB) WithRequestTx(ctx context.Context, fn func(tx db.RequestTx) error) error {
	pgtx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&requestTx{tx: pgtx}); err != nil {
		if rbErr := pgtx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := pgtx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRequest retrieves one substitute request by id
func (d *DB) GetRequest(ctx context.Context, id string) (model.SubstituteRequest, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM substitute_request WHERE id = $1`, id)
	return scanRequest(row)
}

// GetRequestsForUser retrieves the requests a user raised, newest first
func (d *DB) GetRequestsForUser(ctx context.Context, userID string) ([]model.SubstituteRequest, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM substitute_request
		WHERE requested_by_user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	return scanRequests(rows)
}

// ListOpenRequests retrieves every request currently accepting volunteers
func (d *DB) ListOpenRequests(ctx context.Context) ([]model.SubstituteRequest, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM substitute_request
		WHERE status = 'open'
		ORDER BY date, start_time
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query open requests: %w", err)
	}
	return scanRequests(rows)
}

// GetTradeOffersForRequest retrieves the offers made against one request
func (d *DB) GetTradeOffersForRequest(ctx context.Context, requestID string) ([]model.TradeOffer, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, request_id, offered_by_user_id, message, created_at
		FROM trade_offer
		WHERE request_id = $1
		ORDER BY created_at
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade offers: %w", err)
	}
	defer rows.Close()

	var offers []model.TradeOffer
	for rows.Next() {
		var offer model.TradeOffer
		if err := rows.Scan(&offer.ID, &offer.RequestID, &offer.OfferedByUserID, &offer.Message, &offer.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trade offer: %w", err)
		}
		offers = append(offers, offer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade offers: %w", err)
	}

	return offers, nil
}

// GetTradeOptionsForOffer retrieves the candidate shifts within one offer
func (d *DB) GetTradeOptionsForOffer(ctx context.Context, offerID string) ([]model.TradeOfferOption, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, offer_id, shift_id, shift_recurrence_id, date, status
		FROM trade_offer_option
		WHERE offer_id = $1
		ORDER BY date
	`, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade options: %w", err)
	}
	defer rows.Close()

	var options []model.TradeOfferOption
	for rows.Next() {
		option, err := scanTradeOption(rows)
		if err != nil {
			return nil, err
		}
		options = append(options, option)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade options: %w", err)
	}

	return options, nil
}

func scanTradeOption(row pgx.Row) (model.TradeOfferOption, error) {
	var option model.TradeOfferOption
	var date time.Time
	err := row.Scan(&option.ID, &option.OfferID, &option.ShiftID, &option.ShiftRecurrenceID, &date, &option.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.TradeOfferOption{}, db.ErrNotFound
	}
	if err != nil {
		return model.TradeOfferOption{}, fmt.Errorf("failed to scan trade option: %w", err)
	}
	option.Date = date.Format("2006-01-02")
	return option, nil
}

// requestTx implements db.RequestTx over one pgx transaction
type requestTx struct {
	tx pgx.Tx
}

func (t *requestTx) GetRequest(ctx context.Context, id string) (model.SubstituteRequest, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+requestColumns+` FROM substitute_request WHERE id = $1`, id)
	return scanRequest(row)
}

// GetRequestForUpdate reads the request under a row-level lock so concurrent
// transitions against the same request serialize.
func (t *requestTx) GetRequestForUpdate(ctx context.Context, id string) (model.SubstituteRequest, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+requestColumns+` FROM substitute_request WHERE id = $1 FOR UPDATE`, id)
	return scanRequest(row)
}

func (t *requestTx) InsertRequest(ctx context.Context, req model.SubstituteRequest) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO substitute_request (
			id, shift_id, shift_recurrence_id, date, start_time, end_time,
			type, status, requested_by_user_id, accepted_by_user_id, accepted_at,
			nominated_sub_user_id, has_nominated_sub, nominated_confirmed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, req.ID, req.ShiftID, req.ShiftRecurrenceID, req.Date, req.StartTime, req.EndTime,
		req.Type, req.Status, req.RequestedByUserID, req.AcceptedByUserID, req.AcceptedAt,
		req.NominatedSubUserID, req.HasNominatedSub, req.NominatedConfirmedAt)
	if err != nil {
		return fmt.Errorf("failed to insert substitute request: %w", err)
	}
	return nil
}

func (t *requestTx) UpdateRequest(ctx context.Context, req model.SubstituteRequest) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE substitute_request SET
			status = $2,
			accepted_by_user_id = $3,
			accepted_at = $4,
			nominated_sub_user_id = $5,
			has_nominated_sub = $6,
			nominated_confirmed_at = $7,
			updated_at = NOW()
		WHERE id = $1
	`, req.ID, req.Status, req.AcceptedByUserID, req.AcceptedAt,
		req.NominatedSubUserID, req.HasNominatedSub, req.NominatedConfirmedAt)
	if err != nil {
		return fmt.Errorf("failed to update substitute request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (t *requestTx) GetVolunteers(ctx context.Context, requestID string) ([]model.SubVolunteer, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, request_id, volunteer_user_id, status, created_at
		FROM sub_volunteer
		WHERE request_id = $1
		ORDER BY created_at
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query volunteers: %w", err)
	}
	defer rows.Close()

	var volunteers []model.SubVolunteer
	for rows.Next() {
		var v model.SubVolunteer
		if err := rows.Scan(&v.ID, &v.RequestID, &v.VolunteerUserID, &v.Status, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan volunteer: %w", err)
		}
		volunteers = append(volunteers, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating volunteers: %w", err)
	}

	return volunteers, nil
}

func (t *requestTx) InsertVolunteer(ctx context.Context, volunteer model.SubVolunteer) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO sub_volunteer (id, request_id, volunteer_user_id, status)
		VALUES ($1, $2, $3, $4)
	`, volunteer.ID, volunteer.RequestID, volunteer.VolunteerUserID, volunteer.Status)
	if err != nil {
		return fmt.Errorf("failed to insert volunteer: %w", err)
	}
	return nil
}

func (t *requestTx) UpdateVolunteerStatus(ctx context.Context, volunteerID string, status model.VolunteerStatus) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE sub_volunteer SET status = $2 WHERE id = $1
	`, volunteerID, status)
	if err != nil {
		return fmt.Errorf("failed to update volunteer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (t *requestTx) GetTradeOffer(ctx context.Context, offerID string) (model.TradeOffer, error) {
	var offer model.TradeOffer
	err := t.tx.QueryRow(ctx, `
		SELECT id, request_id, offered_by_user_id, message, created_at
		FROM trade_offer WHERE id = $1
	`, offerID).Scan(&offer.ID, &offer.RequestID, &offer.OfferedByUserID, &offer.Message, &offer.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.TradeOffer{}, db.ErrNotFound
	}
	if err != nil {
		return model.TradeOffer{}, fmt.Errorf("failed to scan trade offer: %w", err)
	}
	return offer, nil
}

func (t *requestTx) GetTradeOption(ctx context.Context, optionID string) (model.TradeOfferOption, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT id, offer_id, shift_id, shift_recurrence_id, date, status
		FROM trade_offer_option WHERE id = $1
	`, optionID)
	return scanTradeOption(row)
}

// GetSelectedTradeOption returns the option selected to resolve the
// request's trade. At most one option per request ever holds the selected
// status, so a bare join suffices.
func (t *requestTx) GetSelectedTradeOption(ctx context.Context, requestID string) (model.TradeOfferOption, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT o.id, o.offer_id, o.shift_id, o.shift_recurrence_id, o.date, o.status
		FROM trade_offer_option o
		JOIN trade_offer t ON t.id = o.offer_id
		WHERE t.request_id = $1 AND o.status = 'selected'
	`, requestID)
	return scanTradeOption(row)
}

func (t *requestTx) InsertTradeOffer(ctx context.Context, offer model.TradeOffer) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO trade_offer (id, request_id, offered_by_user_id, message)
		VALUES ($1, $2, $3, $4)
	`, offer.ID, offer.RequestID, offer.OfferedByUserID, offer.Message)
	if err != nil {
		return fmt.Errorf("failed to insert trade offer: %w", err)
	}
	return nil
}

func (t *requestTx) InsertTradeOption(ctx context.Context, option model.TradeOfferOption) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO trade_offer_option (id, offer_id, shift_id, shift_recurrence_id, date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, option.ID, option.OfferID, option.ShiftID, option.ShiftRecurrenceID, option.Date, option.Status)
	if err != nil {
		return fmt.Errorf("failed to insert trade option: %w", err)
	}
	return nil
}

func (t *requestTx) UpdateTradeOptionStatus(ctx context.Context, optionID string, status model.OptionStatus) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE trade_offer_option SET status = $2 WHERE id = $1
	`, optionID, status)
	if err != nil {
		return fmt.Errorf("failed to update trade option status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (t *requestTx) GetShiftDefinition(ctx context.Context, shiftID string) (model.ShiftDefinition, error) {
	var def model.ShiftDefinition
	err := t.tx.QueryRow(ctx, `
		SELECT id, weekday, start_time, end_time, active, notes
		FROM shift_definition WHERE id = $1
	`, shiftID).Scan(&def.ID, &def.Weekday, &def.StartTime, &def.EndTime, &def.Active, &def.Notes)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ShiftDefinition{}, db.ErrNotFound
	}
	if err != nil {
		return model.ShiftDefinition{}, fmt.Errorf("failed to scan shift definition: %w", err)
	}
	return def, nil
}

func (t *requestTx) InsertShiftException(ctx context.Context, exc model.ShiftException) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO shift_exception (id, shift_id, date, override_type, user_id, requested_by, approved_by, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, exc.ID, exc.ShiftID, exc.Date, exc.OverrideType, exc.UserID, exc.RequestedBy, exc.ApprovedBy, exc.Status)
	if err != nil {
		return fmt.Errorf("failed to insert shift exception: %w", err)
	}
	return nil
}

func (t *requestTx) DeleteShiftException(ctx context.Context, shiftID, date, userID string, override model.OverrideType) error {
	_, err := t.tx.Exec(ctx, `
		DELETE FROM shift_exception
		WHERE shift_id = $1 AND date = $2 AND user_id = $3 AND override_type = $4
	`, shiftID, date, userID, override)
	if err != nil {
		return fmt.Errorf("failed to delete shift exception: %w", err)
	}
	return nil
}

// UserCoversOccurrence reports whether the user is on the effective roster
// for the occurrence: a primary assignment not displaced by overrides, or an
// add/replace exception naming them.
func (t *requestTx) UserCoversOccurrence(ctx context.Context, shiftID, recurrenceID, date, userID string) (bool, error) {
	var covers bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM shift_assignment
			WHERE shift_recurrence_id = $2 AND user_id = $4 AND is_primary
		) OR EXISTS (
			SELECT 1 FROM shift_exception
			WHERE shift_id = $1 AND date = $3 AND user_id = $4
			  AND override_type IN ('add', 'replace')
		)
	`, shiftID, recurrenceID, date, userID).Scan(&covers)
	if err != nil {
		return false, fmt.Errorf("failed to check occurrence coverage: %w", err)
	}
	return covers, nil
}

func (t *requestTx) GetUser(ctx context.Context, id string) (model.User, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (t *requestTx) InsertNotification(ctx context.Context, notification model.Notification) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO notification (id, user_id, type, message)
		VALUES ($1, $2, $3, $4)
	`, notification.ID, notification.UserID, notification.Type, notification.Message)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}
