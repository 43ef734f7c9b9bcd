package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hopebridge/shiftcover/pkg/core/model"
)

// GetPreferencesForRecurrence retrieves every stated availability preference
// for one shift recurrence, exact-date and recurrence-level rows alike.
func (d *DB) GetPreferencesForRecurrence(ctx context.Context, recurrenceID string) ([]model.AvailabilityPreference, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT user_id, shift_recurrence_id, date, level
		FROM availability_preference
		WHERE shift_recurrence_id = $1
	`, recurrenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability preferences: %w", err)
	}
	defer rows.Close()

	var preferences []model.AvailabilityPreference
	for rows.Next() {
		var pref model.AvailabilityPreference
		var date *time.Time
		if err := rows.Scan(&pref.UserID, &pref.ShiftRecurrenceID, &date, &pref.Level); err != nil {
			return nil, fmt.Errorf("failed to scan availability preference: %w", err)
		}
		if date != nil {
			formatted := date.Format("2006-01-02")
			pref.Date = &formatted
		}
		preferences = append(preferences, pref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating availability preferences: %w", err)
	}

	return preferences, nil
}

// UpsertPreference records or updates a worker's availability preference
func (d *DB) UpsertPreference(ctx context.Context, pref model.AvailabilityPreference) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO availability_preference (user_id, shift_recurrence_id, date, level)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, shift_recurrence_id, COALESCE(date, '0001-01-01'::date))
		DO UPDATE SET level = EXCLUDED.level
	`, pref.UserID, pref.ShiftRecurrenceID, pref.Date, pref.Level)
	if err != nil {
		return fmt.Errorf("failed to upsert availability preference: %w", err)
	}
	return nil
}
