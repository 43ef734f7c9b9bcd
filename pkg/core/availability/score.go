package availability

import (
	"sort"
	"strings"

	"github.com/hopebridge/shiftcover/pkg/core/model"
)

// Specificity records how narrowly a preference was declared
type Specificity string

const (
	// SpecificityExact means the preference names the exact occurrence date
	SpecificityExact Specificity = "exact"
	// SpecificityShiftOnly means the preference covers the recurrence generally
	SpecificityShiftOnly Specificity = "shiftOnly"
	// SpecificityNone means no preference was declared
	SpecificityNone Specificity = "none"
)

// Match is one ranked substitute suggestion
type Match struct {
	UserID      string
	FullName    string
	Level       model.AvailabilityLevel
	Specificity Specificity
	Score       int
}

// Score converts a stated preference into a comparable rank value.
// An exact-date declaration always beats a recurrence-level one at the same
// level, and any "usually" beats any "maybe".
func Score(level model.AvailabilityLevel, specificity Specificity) int {
	switch {
	case level == model.AvailabilityUsually && specificity == SpecificityExact:
		return 100
	case level == model.AvailabilityUsually && specificity == SpecificityShiftOnly:
		return 80
	case level == model.AvailabilityMaybe && specificity == SpecificityExact:
		return 60
	case level == model.AvailabilityMaybe && specificity == SpecificityShiftOnly:
		return 40
	default:
		return 0
	}
}

// Rank orders matches descending by score, ties broken by full name
// ascending (case-insensitive).
func Rank(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return strings.ToLower(matches[i].FullName) < strings.ToLower(matches[j].FullName)
	})
}

// BestPreference picks the most specific preference a candidate declared for
// the given occurrence date: an exact-date row wins over a recurrence-level
// row. Returns SpecificityNone when the candidate declared nothing.
func BestPreference(prefs []model.AvailabilityPreference, date string) (model.AvailabilityLevel, Specificity) {
	var level model.AvailabilityLevel
	specificity := SpecificityNone

	for _, pref := range prefs {
		if pref.Date != nil {
			if *pref.Date == date {
				return pref.Level, SpecificityExact
			}
			continue
		}
		if specificity == SpecificityNone {
			level = pref.Level
			specificity = SpecificityShiftOnly
		}
	}

	return level, specificity
}
