package schedule

import (
	"fmt"
	"time"
)

// FrequencyType selects the advancement rule for a recurring entity.
type FrequencyType string

const (
	FrequencyMinutes      FrequencyType = "minutes"
	FrequencyDays         FrequencyType = "days"
	FrequencyMonthlyOnDay FrequencyType = "monthly_on_day"
)

// Frequency is the per-entity recurrence specification.
type Frequency struct {
	Type  FrequencyType
	Value int
}

// Validate checks the frequency before it is used to advance a timestamp.
func (f Frequency) Validate() error {
	if f.Value <= 0 {
		return fmt.Errorf("frequency value must be positive, got %d", f.Value)
	}
	switch f.Type {
	case FrequencyMinutes, FrequencyDays:
		return nil
	case FrequencyMonthlyOnDay:
		if f.Value > 31 {
			return fmt.Errorf("monthly_on_day value must be 1-31, got %d", f.Value)
		}
		return nil
	default:
		return fmt.Errorf("unknown frequency type %q", f.Type)
	}
}

// Next returns the first occurrence strictly after the base timestamp.
// The base is the previous next-run, not the processing time, so a late
// tick never shortens future intervals.
//
// For monthly_on_day the target is day-of-month Value in the following
// calendar month; when that month is shorter the day clamps to its last
// day rather than rolling over.
func (f Frequency) Next(after time.Time) time.Time {
	switch f.Type {
	case FrequencyMinutes:
		return after.Add(time.Duration(f.Value) * time.Minute)
	case FrequencyDays:
		return after.AddDate(0, 0, f.Value)
	case FrequencyMonthlyOnDay:
		year, month, _ := after.Date()
		firstOfNext := time.Date(year, month+1, 1, after.Hour(), after.Minute(), after.Second(), 0, after.Location())
		day := f.Value
		if last := daysInMonth(firstOfNext.Year(), firstOfNext.Month()); day > last {
			day = last
		}
		return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, after.Hour(), after.Minute(), after.Second(), 0, after.Location())
	default:
		return after
	}
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// State classifies a recurring entity relative to an instant.
type State string

const (
	StateScheduled State = "scheduled"
	StateDue       State = "due"
)

// StateAt reports whether an entity with the given next-run is due at the
// instant being evaluated. Due means next_run <= at.
func StateAt(nextRun, at time.Time) State {
	if nextRun.After(at) {
		return StateScheduled
	}
	return StateDue
}
