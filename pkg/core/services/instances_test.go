package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/hopebridge/shiftcover/pkg/core/model"
)

type mockScheduleStore struct {
	definitions []model.ShiftDefinition
	recurrences []model.ShiftRecurrence
	assignments []model.ShiftAssignment
	exceptions  []model.ShiftException

	exceptionRange [2]string
}

func (m *mockScheduleStore) GetShiftDefinitions(ctx context.Context) ([]model.ShiftDefinition, error) {
	return m.definitions, nil
}

func (m *mockScheduleStore) GetShiftRecurrences(ctx context.Context) ([]model.ShiftRecurrence, error) {
	return m.recurrences, nil
}

func (m *mockScheduleStore) GetShiftAssignments(ctx context.Context) ([]model.ShiftAssignment, error) {
	return m.assignments, nil
}

func (m *mockScheduleStore) GetShiftExceptions(ctx context.Context, start, end string) ([]model.ShiftException, error) {
	m.exceptionRange = [2]string{start, end}
	return m.exceptions, nil
}

func TestGenerateShiftInstances_ProjectsStoreState(t *testing.T) {
	store := &mockScheduleStore{
		definitions: []model.ShiftDefinition{
			{ID: "shift-tue", Weekday: 2, StartTime: "09:00", EndTime: "13:00", Active: true},
		},
		recurrences: []model.ShiftRecurrence{
			{ID: "rec-tue", ShiftID: "shift-tue", Active: true},
		},
		assignments: []model.ShiftAssignment{
			{UserID: "rae", ShiftRecurrenceID: "rec-tue", IsPrimary: true},
		},
		exceptions: []model.ShiftException{
			{ID: "exc-1", ShiftID: "shift-tue", Date: "2025-06-10", OverrideType: model.OverrideReplace, UserID: "alice", CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	instances, err := GenerateShiftInstances(context.Background(), store, zap.NewNop(), nil, 1, start, end)
	require.NoError(t, err)

	// Tuesdays 3rd and 10th fall inside the range
	require.Len(t, instances, 2)
	assert.Equal(t, "2025-06-03", instances[0].Date)
	assert.Equal(t, []string{"rae"}, instances[0].AssignedUserIDs)
	assert.Equal(t, "2025-06-10", instances[1].Date)
	assert.Equal(t, []string{"alice"}, instances[1].AssignedUserIDs)
	assert.True(t, instances[1].IsException)

	// The exception fetch is scoped to the requested range
	assert.Equal(t, [2]string{"2025-06-01", "2025-06-14"}, store.exceptionRange)
}

func TestGenerateShiftInstances_ClosureSuppresses(t *testing.T) {
	store := &mockScheduleStore{
		definitions: []model.ShiftDefinition{
			{ID: "shift-tue", Weekday: 2, StartTime: "09:00", EndTime: "13:00", Active: true},
		},
		recurrences: []model.ShiftRecurrence{
			{ID: "rec-tue", ShiftID: "shift-tue", Active: true},
		},
	}

	closure, err := rrule.NewRRule(rrule.ROption{
		Freq:       rrule.YEARLY,
		Bymonth:    []int{6},
		Bymonthday: []int{3},
		Dtstart:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	instances, err := GenerateShiftInstances(context.Background(), store, zap.NewNop(), []*rrule.RRule{closure}, 1, start, end)
	require.NoError(t, err)

	require.Len(t, instances, 1)
	assert.Equal(t, "2025-06-10", instances[0].Date)
}

func TestGenerateShiftInstances_InvertedRange(t *testing.T) {
	store := &mockScheduleStore{}

	_, err := GenerateShiftInstances(context.Background(), store, zap.NewNop(), nil, 1,
		time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}

func TestGenerateShiftInstances_FlagsUnderstaffed(t *testing.T) {
	store := &mockScheduleStore{
		definitions: []model.ShiftDefinition{
			{ID: "shift-tue", Weekday: 2, StartTime: "09:00", EndTime: "13:00", Active: true},
		},
		recurrences: []model.ShiftRecurrence{
			{ID: "rec-tue", ShiftID: "shift-tue", Active: true},
		},
		assignments: []model.ShiftAssignment{
			{UserID: "rae", ShiftRecurrenceID: "rec-tue", IsPrimary: true},
		},
		exceptions: []model.ShiftException{
			{ID: "exc-1", ShiftID: "shift-tue", Date: "2025-06-10", OverrideType: model.OverrideAdd, UserID: "alice", CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	instances, err := GenerateShiftInstances(context.Background(), store, zap.NewNop(), nil, 2, start, end)
	require.NoError(t, err)
	require.Len(t, instances, 2)

	// One assignee against a shift size of two is short; the occurrence
	// with the added cover is fully staffed.
	assert.True(t, instances[0].Understaffed)
	assert.Len(t, instances[1].AssignedUserIDs, 2)
	assert.False(t, instances[1].Understaffed)
}
