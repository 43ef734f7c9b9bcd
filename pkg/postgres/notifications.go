package postgres

import (
	"context"
	"fmt"

	"github.com/hopebridge/shiftcover/pkg/core/model"
	"github.com/hopebridge/shiftcover/pkg/db"
)

// GetNotifications retrieves a user's notifications, newest first
func (d *DB) GetNotifications(ctx context.Context, userID string) ([]model.Notification, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, user_id, type, message, created_at, read_at
		FROM notification
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}

// MarkNotificationRead stamps read_at on one of the user's own notifications
func (d *DB) MarkNotificationRead(ctx context.Context, id, userID string) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE notification SET read_at = NOW()
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// GetUnreadNotifications retrieves every unread notification across all
// users, oldest first, for digest delivery.
func (d *DB) GetUnreadNotifications(ctx context.Context) ([]model.Notification, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, user_id, type, message, created_at, read_at
		FROM notification
		WHERE read_at IS NULL
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unread notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}
