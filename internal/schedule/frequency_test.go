package schedule

import (
	"testing"
	"time"
)

func TestFrequencyNext_Minutes(t *testing.T) {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	f := Frequency{Type: FrequencyMinutes, Value: 30}
	got := f.Next(base)
	want := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestFrequencyNext_Days(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := Frequency{Type: FrequencyDays, Value: 7}
	got := f.Next(base)
	want := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestFrequencyNext_MonthlyOnDay(t *testing.T) {
	base := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	f := Frequency{Type: FrequencyMonthlyOnDay, Value: 15}
	got := f.Next(base)
	if got.Year() != 2024 || got.Month() != time.February || got.Day() != 15 {
		t.Fatalf("expected Feb 15, got %s", got)
	}
	if got.Hour() != 10 || got.Minute() != 30 {
		t.Fatalf("expected time of day preserved, got %s", got)
	}
}

func TestFrequencyNext_MonthlyClampsShortMonth(t *testing.T) {
	// Jan 31 -> February has no day 31, clamp to the last day.
	base := time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC)
	f := Frequency{Type: FrequencyMonthlyOnDay, Value: 31}
	got := f.Next(base)
	if got.Month() != time.February || got.Day() != 29 {
		t.Fatalf("expected Feb 29 (leap year clamp), got %s", got)
	}

	base = time.Date(2023, 1, 31, 8, 0, 0, 0, time.UTC)
	got = f.Next(base)
	if got.Month() != time.February || got.Day() != 28 {
		t.Fatalf("expected Feb 28 clamp, got %s", got)
	}
}

func TestFrequencyNext_MonthlyYearBoundary(t *testing.T) {
	base := time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC)
	f := Frequency{Type: FrequencyMonthlyOnDay, Value: 10}
	got := f.Next(base)
	if got.Year() != 2025 || got.Month() != time.January || got.Day() != 10 {
		t.Fatalf("expected 2025-01-10, got %s", got)
	}
}

func TestFrequencyNext_Monotonic(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	specs := []Frequency{
		{Type: FrequencyMinutes, Value: 1},
		{Type: FrequencyDays, Value: 1},
		{Type: FrequencyMonthlyOnDay, Value: 1},
	}
	for _, f := range specs {
		cur := base
		for i := 0; i < 10; i++ {
			next := f.Next(cur)
			if !next.After(cur) {
				t.Fatalf("%s/%d: next %s not after %s", f.Type, f.Value, next, cur)
			}
			cur = next
		}
	}
}

func TestFrequencyValidate(t *testing.T) {
	tests := []struct {
		name    string
		f       Frequency
		wantErr bool
	}{
		{"minutes ok", Frequency{FrequencyMinutes, 30}, false},
		{"days ok", Frequency{FrequencyDays, 7}, false},
		{"monthly ok", Frequency{FrequencyMonthlyOnDay, 15}, false},
		{"zero value", Frequency{FrequencyMinutes, 0}, true},
		{"negative value", Frequency{FrequencyDays, -1}, true},
		{"monthly out of range", Frequency{FrequencyMonthlyOnDay, 32}, true},
		{"unknown type", Frequency{"weekly", 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.f.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStateAt(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	if got := StateAt(at.Add(time.Minute), at); got != StateScheduled {
		t.Fatalf("future next_run should be scheduled, got %s", got)
	}
	if got := StateAt(at, at); got != StateDue {
		t.Fatalf("next_run == at should be due, got %s", got)
	}
	if got := StateAt(at.Add(-time.Hour), at); got != StateDue {
		t.Fatalf("past next_run should be due, got %s", got)
	}
}
