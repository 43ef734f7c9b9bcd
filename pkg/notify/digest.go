package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hopebridge/shiftcover/pkg/core/model"
	"github.com/hopebridge/shiftcover/pkg/db"
)

// Mailer sends one email. gmailclient.Client implements it.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// DigestResult summarizes a digest run
type DigestResult struct {
	UsersEmailed int
	Skipped      int
}

// SendDigests emails each user with unread notifications a single digest.
// Read state is untouched: the notification log is append-only and read
// receipts belong to the user, not the mailer.
func SendDigests(
	ctx context.Context,
	notifications db.NotificationStore,
	users db.UserStore,
	mailer Mailer,
	logger *zap.Logger,
	centreName string,
) (*DigestResult, error) {
	logger.Info("Starting notification digest run")

	unread, err := notifications.GetUnreadNotifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unread notifications: %w", err)
	}
	logger.Debug("Found unread notifications", zap.Int("count", len(unread)))

	byUser := make(map[string][]model.Notification)
	for _, notification := range unread {
		byUser[notification.UserID] = append(byUser[notification.UserID], notification)
	}

	result := &DigestResult{}
	for userID, userNotifications := range byUser {
		user, err := users.GetUser(ctx, userID)
		if err != nil {
			logger.Warn("Skipping digest for unknown user",
				zap.String("user_id", userID), zap.Error(err))
			result.Skipped++
			continue
		}
		if user.Email == "" {
			result.Skipped++
			continue
		}

		subject := fmt.Sprintf("%s: %d unread shift notifications", centreName, len(userNotifications))
		body := composeDigestBody(user, userNotifications)

		if err := mailer.SendEmail(user.Email, subject, body); err != nil {
			logger.Error("Failed to send digest email",
				zap.String("user_id", userID),
				zap.String("email", user.Email),
				zap.Error(err))
			result.Skipped++
			continue
		}

		logger.Info("Digest sent",
			zap.String("user_id", userID),
			zap.Int("notifications", len(userNotifications)))
		result.UsersEmailed++
	}

	logger.Info("Digest run completed",
		zap.Int("users_emailed", result.UsersEmailed),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

func composeDigestBody(user model.User, notifications []model.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nYou have %d unread notifications:\n\n", user.FirstName, len(notifications))
	for _, notification := range notifications {
		fmt.Fprintf(&b, "- [%s] %s\n", notification.CreatedAt.Format("2006-01-02 15:04"), notification.Message)
	}
	b.WriteString("\nSign in to respond.\n")
	return b.String()
}
