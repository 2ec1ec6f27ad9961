package bookings

import (
	"fmt"
	"strconv"
	"time"
)

const (
	DateLayout   = "2006-01-02"
	minutesInDay = 24 * 60
)

// Slot is a half-open [Start, End) window on Date, in minutes after midnight.
type Slot struct {
	Date  time.Time
	Start int
	End   int
}

// ParseClock parses "HH:MM". 24:00 is accepted as the end of the day.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("clock %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, fmt.Errorf("clock %q: %w", s, err)
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil {
		return 0, fmt.Errorf("clock %q: %w", s, err)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("clock %q out of range", s)
	}
	return h*60 + m, nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func ParseSlot(date, start, end string) (Slot, error) {
	d, err := ParseDate(date)
	if err != nil {
		return Slot{}, ErrInvalidSlot.With(err)
	}
	s, err := ParseClock(start)
	if err != nil {
		return Slot{}, ErrInvalidSlot.With(err)
	}
	e, err := ParseClock(end)
	if err != nil {
		return Slot{}, ErrInvalidSlot.With(err)
	}
	if e <= s {
		return Slot{}, ErrInvalidSlot
	}
	return Slot{Date: d, Start: s, End: e}, nil
}

// Overlaps is strict: slots that only touch at an endpoint do not overlap.
func (s Slot) Overlaps(o Slot) bool {
	if !s.Date.Equal(o.Date) {
		return false
	}
	return s.Start < o.End && o.Start < s.End
}

func (s Slot) Minutes() int { return s.End - s.Start }

func (s Slot) DateString() string { return s.Date.Format(DateLayout) }

func (s Slot) StartClock() string { return FormatClock(s.Start) }

func (s Slot) EndClock() string { return FormatClock(s.End) }

// StartsAt is the wall-clock start of the slot in loc.
func (s Slot) StartsAt(loc *time.Location) time.Time {
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), 0, s.Start, 0, 0, loc)
}

func (s Slot) EndsAt(loc *time.Location) time.Time {
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), 0, s.End, 0, 0, loc)
}

// Within reports whether the slot fits inside opening hours [open, close).
func (s Slot) Within(open, close int) bool {
	return s.Start >= open && s.End <= close
}

// Price charges pricePerHour pro rata for the slot length, in minor units.
func Price(pricePerHour int64, minutes int) int64 {
	return pricePerHour * int64(minutes) / 60
}

// Bucket is one hour of a turf's day as shown by the availability endpoint.
type Bucket struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

// Buckets splits [open, close) into hourly windows and marks each one that
// does not overlap any taken slot. The last window is clipped to close.
func Buckets(date time.Time, open, close int, taken []Slot) []Bucket {
	if close > minutesInDay {
		close = minutesInDay
	}
	var out []Bucket
	for start := open; start < close; start += 60 {
		end := min(start+60, close)
		cand := Slot{Date: date, Start: start, End: end}
		free := true
		for _, t := range taken {
			if cand.Overlaps(t) {
				free = false
				break
			}
		}
		out = append(out, Bucket{StartTime: FormatClock(start), EndTime: FormatClock(end), Available: free})
	}
	return out
}
