package services

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/hopebridge/shiftcover/pkg/core/model"
	"github.com/hopebridge/shiftcover/pkg/core/schedule"
	"github.com/hopebridge/shiftcover/pkg/db"
)

// GenerateShiftInstances projects the committed scheduling state into
// concrete shift occurrences for the inclusive date range [start, end].
// Occurrences with fewer assignees than defaultShiftSize are flagged
// understaffed. Read-only; safe to call concurrently and repeatedly.
func GenerateShiftInstances(ctx context.Context, store db.ScheduleStore, logger *zap.Logger, closures []*rrule.RRule, defaultShiftSize int, start, end time.Time) ([]model.ShiftInstance, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	logger.Debug("Generating shift instances",
		zap.Time("start", start),
		zap.Time("end", end))

	definitions, err := store.GetShiftDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift definitions: %w", err)
	}
	recurrences, err := store.GetShiftRecurrences(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift recurrences: %w", err)
	}
	assignments, err := store.GetShiftAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift assignments: %w", err)
	}
	exceptions, err := store.GetShiftExceptions(ctx, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shift exceptions: %w", err)
	}

	data := schedule.RosterData{
		Definitions: definitions,
		Recurrences: recurrences,
		Assignments: assignments,
		Exceptions:  exceptions,
	}

	instances := schedule.Generate(start, end, data, closures)

	understaffed := 0
	for i := range instances {
		if len(instances[i].AssignedUserIDs) < defaultShiftSize {
			instances[i].Understaffed = true
			understaffed++
		}
	}

	logger.Info("Generated shift instances",
		zap.Int("count", len(instances)),
		zap.Int("recurrences", len(recurrences)),
		zap.Int("exceptions", len(exceptions)),
		zap.Int("understaffed", understaffed))

	return instances, nil
}
