package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hopebridge/shiftcover/pkg/core/model"
	"github.com/hopebridge/shiftcover/pkg/db"
	"github.com/hopebridge/shiftcover/pkg/notify"
)

// Broadcaster receives events for realtime fan-out after commit.
// notify.Hub implements it.
type Broadcaster interface {
	Publish(event notify.Event)
}

// queueNotification writes the durable notification row inside the owning
// transaction and stages the realtime event. A rollback discards both; the
// staged events must only be published after a successful commit.
func queueNotification(ctx context.Context, tx db.RequestTx, staged *[]notify.Event, userID, notificationType, message string) error {
	notification := model.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      notificationType,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.InsertNotification(ctx, notification); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	*staged = append(*staged, notify.Event{
		UserID:  userID,
		Type:    notificationType,
		Message: message,
	})
	return nil
}

// publishStaged pushes staged events to the hub, best effort, post-commit
func publishStaged(hub Broadcaster, staged []notify.Event) {
	if hub == nil {
		return
	}
	for _, event := range staged {
		hub.Publish(event)
	}
}
