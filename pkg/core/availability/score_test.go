package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hopebridge/shiftcover/pkg/core/model"
)

func TestScore_Values(t *testing.T) {
	assert.Equal(t, 100, Score(model.AvailabilityUsually, SpecificityExact))
	assert.Equal(t, 80, Score(model.AvailabilityUsually, SpecificityShiftOnly))
	assert.Equal(t, 60, Score(model.AvailabilityMaybe, SpecificityExact))
	assert.Equal(t, 40, Score(model.AvailabilityMaybe, SpecificityShiftOnly))
	assert.Equal(t, 0, Score("", SpecificityNone))
}

func TestScore_StrictOrdering(t *testing.T) {
	scores := []int{
		Score(model.AvailabilityUsually, SpecificityExact),
		Score(model.AvailabilityUsually, SpecificityShiftOnly),
		Score(model.AvailabilityMaybe, SpecificityExact),
		Score(model.AvailabilityMaybe, SpecificityShiftOnly),
		Score("", SpecificityNone),
	}
	for i := 1; i < len(scores); i++ {
		assert.Greater(t, scores[i-1], scores[i])
	}
}

func TestRank_ByScoreThenName(t *testing.T) {
	matches := []Match{
		{UserID: "u1", FullName: "zoe Adams", Score: 80},
		{UserID: "u2", FullName: "Alice Young", Score: 80},
		{UserID: "u3", FullName: "Bob Brown", Score: 100},
		{UserID: "u4", FullName: "carol White", Score: 0},
	}

	Rank(matches)

	assert.Equal(t, []string{"u3", "u2", "u1", "u4"}, []string{
		matches[0].UserID, matches[1].UserID, matches[2].UserID, matches[3].UserID,
	})
}

func TestBestPreference(t *testing.T) {
	exact := "2025-06-03"
	otherDate := "2025-06-10"

	tests := []struct {
		name            string
		prefs           []model.AvailabilityPreference
		wantLevel       model.AvailabilityLevel
		wantSpecificity Specificity
	}{
		{
			name:            "no preferences",
			prefs:           nil,
			wantSpecificity: SpecificityNone,
		},
		{
			name: "recurrence-level only",
			prefs: []model.AvailabilityPreference{
				{Level: model.AvailabilityMaybe},
			},
			wantLevel:       model.AvailabilityMaybe,
			wantSpecificity: SpecificityShiftOnly,
		},
		{
			name: "exact date wins over recurrence-level",
			prefs: []model.AvailabilityPreference{
				{Level: model.AvailabilityMaybe},
				{Level: model.AvailabilityUsually, Date: &exact},
			},
			wantLevel:       model.AvailabilityUsually,
			wantSpecificity: SpecificityExact,
		},
		{
			name: "exact date for another occurrence is ignored",
			prefs: []model.AvailabilityPreference{
				{Level: model.AvailabilityUsually, Date: &otherDate},
			},
			wantSpecificity: SpecificityNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, specificity := BestPreference(tt.prefs, "2025-06-03")
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantSpecificity, specificity)
		})
	}
}
