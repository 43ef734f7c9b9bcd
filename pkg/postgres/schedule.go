package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hopebridge/shiftcover/pkg/core/model"
)

// GetShiftDefinitions retrieves all shift definition records
func (d *DB) GetShiftDefinitions(ctx context.Context) ([]model.ShiftDefinition, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, weekday, start_time, end_time, active, notes
		FROM shift_definition
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift definitions: %w", err)
	}
	defer rows.Close()

	var definitions []model.ShiftDefinition
	for rows.Next() {
		var def model.ShiftDefinition
		if err := rows.Scan(&def.ID, &def.Weekday, &def.StartTime, &def.EndTime, &def.Active, &def.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan shift definition: %w", err)
		}
		definitions = append(definitions, def)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shift definitions: %w", err)
	}

	return definitions, nil
}

// GetShiftRecurrences retrieves all shift recurrence records
func (d *DB) GetShiftRecurrences(ctx context.Context) ([]model.ShiftRecurrence, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, shift_id, label, week_of_month, active, sort_order
		FROM shift_recurrence
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift recurrences: %w", err)
	}
	defer rows.Close()

	var recurrences []model.ShiftRecurrence
	for rows.Next() {
		var rec model.ShiftRecurrence
		if err := rows.Scan(&rec.ID, &rec.ShiftID, &rec.Label, &rec.WeekOfMonth, &rec.Active, &rec.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan shift recurrence: %w", err)
		}
		recurrences = append(recurrences, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shift recurrences: %w", err)
	}

	return recurrences, nil
}

// GetShiftAssignments retrieves the full steady-state roster
func (d *DB) GetShiftAssignments(ctx context.Context) ([]model.ShiftAssignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT user_id, shift_recurrence_id, is_primary
		FROM shift_assignment
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.ShiftAssignment
	for rows.Next() {
		var a model.ShiftAssignment
		if err := rows.Scan(&a.UserID, &a.ShiftRecurrenceID, &a.IsPrimary); err != nil {
			return nil, fmt.Errorf("failed to scan shift assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shift assignments: %w", err)
	}

	return assignments, nil
}

// GetShiftExceptions retrieves exceptions dated within [start, end],
// ordered by created_at then id so the last-created override wins.
func (d *DB) GetShiftExceptions(ctx context.Context, start, end string) ([]model.ShiftException, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, shift_id, date, override_type, user_id, requested_by, approved_by, status, created_at
		FROM shift_exception
		WHERE date >= $1 AND date <= $2
		ORDER BY created_at, id
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []model.ShiftException
	for rows.Next() {
		var exc model.ShiftException
		var date time.Time
		if err := rows.Scan(&exc.ID, &exc.ShiftID, &date, &exc.OverrideType, &exc.UserID,
			&exc.RequestedBy, &exc.ApprovedBy, &exc.Status, &exc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shift exception: %w", err)
		}
		exc.Date = date.Format("2006-01-02")
		exceptions = append(exceptions, exc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shift exceptions: %w", err)
	}

	return exceptions, nil
}
