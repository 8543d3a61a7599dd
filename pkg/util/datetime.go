package util

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateFormat     = "2006-01-02"
	TimeFormat     = "15:04"
	TimeFormatSec  = "15:04:05"
	DateTimeFormat = "2006-01-02 15:04:05"
	ISO8601Format  = "2006-01-02T15:04:05Z"
)

func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeFormat)
}

func ParseDateTime(s string) (time.Time, error) {
	return time.Parse(DateTimeFormat, s)
}

func TimeToISO8601Str(t time.Time) string {
	return t.Format(ISO8601Format)
}

func ParseISO8601(s string) (time.Time, error) {
	return time.Parse(ISO8601Format, s)
}

// ComposeDateTime builds a timestamp from separate date and time fields in
// the given location. The date may arrive as a plain "2006-01-02" or as a
// full ISO string; only the date part is used. The time accepts "15:04" or
// "15:04:05".
func ComposeDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("date and time are required")
	}

	dateOnly := strings.SplitN(strings.SplitN(date, "T", 2)[0], " ", 2)[0]

	d, err := time.ParseInLocation(DateFormat, dateOnly, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	t, err := time.ParseInLocation(TimeFormat, clock, loc)
	if err != nil {
		t, err = time.ParseInLocation(TimeFormatSec, clock, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time %q: %w", clock, err)
		}
	}

	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}

// FormatCountdown renders a duration as MM:SS, or H:MM:SS past the hour.
// Negative durations are rendered as their absolute value.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	total := int(d.Round(time.Second).Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
