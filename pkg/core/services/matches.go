package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hopebridge/shiftcover/pkg/core/availability"
	"github.com/hopebridge/shiftcover/pkg/core/model"
	"github.com/hopebridge/shiftcover/pkg/db"
)

// GetAvailabilityMatches ranks candidate substitutes for a request by their
// stated availability. Pure read; no side effects.
func GetAvailabilityMatches(
	ctx context.Context,
	requests db.RequestStore,
	preferences db.AvailabilityStore,
	users db.UserStore,
	logger *zap.Logger,
	requestID string,
) ([]availability.Match, error) {
	logger.Debug("Computing availability matches", zap.String("request_id", requestID))

	req, err := requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", requestID, err)
	}

	prefs, err := preferences.GetPreferencesForRecurrence(ctx, req.ShiftRecurrenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability preferences: %w", err)
	}

	prefsByUser := make(map[string][]model.AvailabilityPreference)
	for _, pref := range prefs {
		prefsByUser[pref.UserID] = append(prefsByUser[pref.UserID], pref)
	}

	workers, err := users.ListActiveWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workers: %w", err)
	}

	matches := make([]availability.Match, 0, len(workers))
	for _, worker := range workers {
		if worker.ID == req.RequestedByUserID {
			continue
		}

		level, specificity := availability.BestPreference(prefsByUser[worker.ID], req.Date)
		matches = append(matches, availability.Match{
			UserID:      worker.ID,
			FullName:    worker.FullName(),
			Level:       level,
			Specificity: specificity,
			Score:       availability.Score(level, specificity),
		})
	}

	availability.Rank(matches)

	logger.Info("Availability matches computed",
		zap.String("request_id", requestID),
		zap.Int("candidates", len(matches)))

	return matches, nil
}
