package schedule

import (
	"iter"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/hopebridge/shiftcover/pkg/core/model"
)

const dateLayout = "2006-01-02"

// RosterData is the committed scheduling state the generator projects from.
// Exceptions for the same shift and date are applied in CreatedAt order
// (ties broken by ID), so the last-created override wins.
type RosterData struct {
	Definitions []model.ShiftDefinition
	Recurrences []model.ShiftRecurrence
	Assignments []model.ShiftAssignment
	Exceptions  []model.ShiftException
}

// Instances returns a lazy, restartable sequence of shift occurrences for
// the inclusive date range [start, end]. Each call to the returned sequence
// performs one fresh pass; the generator keeps no state between passes and
// holds no locks. Dates matched by a closure rule yield no instances.
// A recurrence referencing a missing or inactive definition is silently
// skipped: that is stale administrative data, not a runtime failure.
func Instances(start, end time.Time, data RosterData, closures []*rrule.RRule) iter.Seq[model.ShiftInstance] {
	startDay := truncateToDay(start)
	endDay := truncateToDay(end)

	defsByID := make(map[string]model.ShiftDefinition, len(data.Definitions))
	for _, def := range data.Definitions {
		defsByID[def.ID] = def
	}

	rosterByRecurrence := make(map[string][]string)
	for _, a := range data.Assignments {
		if a.IsPrimary {
			rosterByRecurrence[a.ShiftRecurrenceID] = append(rosterByRecurrence[a.ShiftRecurrenceID], a.UserID)
		}
	}

	exceptions := indexExceptions(data.Exceptions)

	recurrences := make([]model.ShiftRecurrence, len(data.Recurrences))
	copy(recurrences, data.Recurrences)
	sort.SliceStable(recurrences, func(i, j int) bool {
		return recurrences[i].SortOrder < recurrences[j].SortOrder
	})

	closed := closureDates(startDay, endDay, closures)

	return func(yield func(model.ShiftInstance) bool) {
		for date := startDay; !date.After(endDay); date = date.AddDate(0, 0, 1) {
			dateStr := date.Format(dateLayout)
			if closed[dateStr] {
				continue
			}

			for _, rec := range recurrences {
				if !rec.Active {
					continue
				}

				def, ok := defsByID[rec.ShiftID]
				if !ok || !def.Active {
					continue
				}

				if int(date.Weekday()) != def.Weekday {
					continue
				}
				if rec.WeekOfMonth != nil && weekOfMonth(date) != *rec.WeekOfMonth {
					continue
				}

				instance := model.ShiftInstance{
					ShiftID:           rec.ShiftID,
					ShiftRecurrenceID: rec.ID,
					Date:              dateStr,
					StartTime:         def.StartTime,
					EndTime:           def.EndTime,
				}

				instance.AssignedUserIDs = append(instance.AssignedUserIDs, rosterByRecurrence[rec.ID]...)

				for _, exc := range exceptions[exceptionKey{shiftID: rec.ShiftID, date: dateStr}] {
					applyException(&instance, exc)
				}

				if !yield(instance) {
					return
				}
			}
		}
	}
}

// Generate collects the full instance sequence into a slice
func Generate(start, end time.Time, data RosterData, closures []*rrule.RRule) []model.ShiftInstance {
	var instances []model.ShiftInstance
	for instance := range Instances(start, end, data, closures) {
		instances = append(instances, instance)
	}
	return instances
}

type exceptionKey struct {
	shiftID string
	date    string
}

// indexExceptions groups exceptions by shift and date, ordered by CreatedAt
// then ID. Last write wins when several overrides target the same occurrence.
func indexExceptions(exceptions []model.ShiftException) map[exceptionKey][]model.ShiftException {
	indexed := make(map[exceptionKey][]model.ShiftException)
	for _, exc := range exceptions {
		key := exceptionKey{shiftID: exc.ShiftID, date: exc.Date}
		indexed[key] = append(indexed[key], exc)
	}
	for key := range indexed {
		group := indexed[key]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].ID < group[j].ID
			}
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
	}
	return indexed
}

// applyException layers one override onto the instance roster
func applyException(instance *model.ShiftInstance, exc model.ShiftException) {
	switch exc.OverrideType {
	case model.OverrideRemove:
		instance.AssignedUserIDs = nil
	case model.OverrideAdd:
		instance.AssignedUserIDs = append(instance.AssignedUserIDs, exc.UserID)
	case model.OverrideReplace:
		instance.AssignedUserIDs = []string{exc.UserID}
	default:
		return
	}
	instance.IsException = true
	instance.ExceptionType = exc.OverrideType
}

// closureDates expands the configured closure rules over the range
func closureDates(start, end time.Time, closures []*rrule.RRule) map[string]bool {
	if len(closures) == 0 {
		return nil
	}

	closed := make(map[string]bool)
	// rrule Between is exclusive of the boundaries unless inc is set
	for _, rule := range closures {
		for _, occurrence := range rule.Between(start, end.AddDate(0, 0, 1), true) {
			closed[occurrence.Format(dateLayout)] = true
		}
	}
	return closed
}

// weekOfMonth returns which occurrence of its weekday within the month the
// date is: 1 for days 1-7, 2 for 8-14, and so on up to 5.
func weekOfMonth(date time.Time) int {
	return (date.Day() + 6) / 7
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
