package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dayRange is an open/close window in minutes since midnight.
// Open is inclusive, Close exclusive.
type dayRange struct {
	Open  int
	Close int
}

// WeeklySchedule holds one optional open window per ISO weekday (1 =
// Monday … 7 = Sunday). Days without a valid entry are closed; the
// zero value is closed all week. Parsed once at restaurant load so that
// malformed schedule blobs fail closed, never "always open".
type WeeklySchedule struct {
	days map[int]dayRange
}

// ParseWeeklySchedule parses a schedule JSON blob of the form
// {"1":"08:00-22:00", ..., "7":"10:00-20:00"}. Entries that fail to
// parse are dropped, which leaves that day closed.
func ParseWeeklySchedule(raw string) (WeeklySchedule, error) {
	if strings.TrimSpace(raw) == "" {
		return WeeklySchedule{}, nil
	}

	var entries map[string]string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return WeeklySchedule{}, fmt.Errorf("parse weekly schedule: %w", err)
	}

	days := make(map[int]dayRange, len(entries))
	for key, window := range entries {
		day, err := strconv.Atoi(key)
		if err != nil || day < 1 || day > 7 {
			continue
		}
		r, ok := parseDayRange(window)
		if !ok {
			continue
		}
		days[day] = r
	}

	return WeeklySchedule{days: days}, nil
}

// MustSchedule is a test helper panicking on malformed input.
func MustSchedule(raw string) WeeklySchedule {
	s, err := ParseWeeklySchedule(raw)
	if err != nil {
		panic(err)
	}
	return s
}

func parseDayRange(window string) (dayRange, bool) {
	parts := strings.Split(strings.TrimSpace(window), "-")
	if len(parts) != 2 {
		return dayRange{}, false
	}

	openMin, ok := parseClock(parts[0])
	if !ok {
		return dayRange{}, false
	}
	closeMin, ok := parseClock(parts[1])
	if !ok {
		return dayRange{}, false
	}
	if closeMin <= openMin {
		return dayRange{}, false
	}

	return dayRange{Open: openMin, Close: closeMin}, true
}

func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// IsOpenAt reports whether the schedule has a window covering the
// given instant's local wall-clock time. The window is [open, close).
func (w WeeklySchedule) IsOpenAt(at time.Time) bool {
	r, ok := w.days[isoWeekday(at)]
	if !ok {
		return false
	}
	minutes := at.Hour()*60 + at.Minute()
	return minutes >= r.Open && minutes < r.Close
}

// isoWeekday maps Go's Sunday-based weekday to ISO 1..7 (Monday first).
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// MarshalJSON renders the schedule back to the wire format.
func (w WeeklySchedule) MarshalJSON() ([]byte, error) {
	entries := make(map[string]string, len(w.days))
	for day, r := range w.days {
		entries[strconv.Itoa(day)] = fmt.Sprintf("%02d:%02d-%02d:%02d",
			r.Open/60, r.Open%60, r.Close/60, r.Close%60)
	}
	return json.Marshal(entries)
}

// UnmarshalJSON accepts the wire format used by ParseWeeklySchedule.
func (w *WeeklySchedule) UnmarshalJSON(data []byte) error {
	parsed, err := ParseWeeklySchedule(string(data))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
