// Package daterange provides pure calendar-day arithmetic for reservations.
// A stay occupies every whole day from check-in through check-out inclusive,
// so a single-day stay (check-in == check-out) occupies exactly one day.
package daterange

import "time"

// DayFormat is the wire format for calendar days.
const DayFormat = "2006-01-02"

// Normalize truncates t to midnight UTC, the canonical representation of a
// calendar day throughout the service.
func Normalize(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a calendar day in DayFormat into its canonical form.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// FormatDay renders a calendar day in DayFormat.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// Span returns every occupied day from checkIn through checkOut inclusive,
// in ascending order. checkOut must not precede checkIn; an inverted range
// yields nil.
func Span(checkIn, checkOut time.Time) []time.Time {
	checkIn = Normalize(checkIn)
	checkOut = Normalize(checkOut)
	if checkOut.Before(checkIn) {
		return nil
	}

	days := make([]time.Time, 0, StayLength(checkIn, checkOut))
	for d := checkIn; !d.After(checkOut); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// StayLength returns the number of occupied days, (checkOut - checkIn) + 1.
// An inverted range yields 0.
func StayLength(checkIn, checkOut time.Time) int {
	checkIn = Normalize(checkIn)
	checkOut = Normalize(checkOut)
	if checkOut.Before(checkIn) {
		return 0
	}
	return int(checkOut.Sub(checkIn)/(24*time.Hour)) + 1
}
