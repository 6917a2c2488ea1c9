package extractor

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate is returned when a date is neither YYYY-MM-DD nor a known relative phrase
var ErrInvalidDate = errors.New("invalid date")

type weekdayName struct {
	day        time.Weekday
	english    string
	indonesian string
}

var weekdayNames = []weekdayName{
	{time.Monday, "monday", "senin"},
	{time.Tuesday, "tuesday", "selasa"},
	{time.Wednesday, "wednesday", "rabu"},
	{time.Thursday, "thursday", "kamis"},
	{time.Friday, "friday", "jumat"},
	{time.Saturday, "saturday", "sabtu"},
	{time.Sunday, "sunday", "minggu"},
}

// DateOnly truncates t to midnight in its own location
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextWeekday returns the next occurrence of wd strictly after ref.
// When ref already falls on wd the result is a week later.
func NextWeekday(ref time.Time, wd time.Weekday) time.Time {
	ref = DateOnly(ref)
	days := (int(wd) - int(ref.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return ref.AddDate(0, 0, days)
}

// ParseDate accepts YYYY-MM-DD or a relative phrase resolved against ref:
// today/hari ini, tomorrow/besok, day after tomorrow/lusa,
// next <weekday> and <hari> depan.
func ParseDate(text string, ref time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if d, err := time.ParseInLocation(time.DateOnly, s, ref.Location()); err == nil {
		return d, nil
	}

	ref = DateOnly(ref)
	switch s {
	case "today", "hari ini":
		return ref, nil
	case "tomorrow", "besok":
		return ref.AddDate(0, 0, 1), nil
	case "day after tomorrow", "the day after tomorrow", "lusa":
		return ref.AddDate(0, 0, 2), nil
	}

	for _, w := range weekdayNames {
		if s == "next "+w.english || s == w.indonesian+" depan" {
			return NextWeekday(ref, w.day), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
}
