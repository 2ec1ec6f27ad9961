package bookings

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

func mustSlot(t *testing.T, date, start, end string) Slot {
	t.Helper()
	s, err := ParseSlot(date, start, end)
	if err != nil {
		t.Fatalf("ParseSlot(%s, %s, %s): %v", date, start, end, err)
	}
	return s
}

func TestParseSlot(t *testing.T) {
	tests := []struct {
		date, start, end string
		ok               bool
	}{
		{"2026-05-01", "10:00", "11:00", true},
		{"2026-05-01", "23:00", "24:00", true},
		{"2026-05-01", "00:00", "00:30", true},
		{"2026-05-01", "11:00", "11:00", false},
		{"2026-05-01", "12:00", "11:00", false},
		{"2026-05-01", "24:00", "24:30", false},
		{"2026-05-01", "9:00", "10:00", false},
		{"2026-05-01", "10:60", "11:00", false},
		{"2026-13-01", "10:00", "11:00", false},
		{"01/05/2026", "10:00", "11:00", false},
	}

	for _, tt := range tests {
		_, err := ParseSlot(tt.date, tt.start, tt.end)
		if tt.ok && err != nil {
			t.Errorf("ParseSlot(%s %s-%s): unexpected error %v", tt.date, tt.start, tt.end, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidSlot) {
			t.Errorf("ParseSlot(%s %s-%s): got %v, want ErrInvalidSlot", tt.date, tt.start, tt.end, err)
		}
	}
}

func TestOverlapsStrict(t *testing.T) {
	base := mustSlot(t, "2026-05-01", "10:00", "11:00")

	tests := []struct {
		name     string
		other    Slot
		overlaps bool
	}{
		{"identical", mustSlot(t, "2026-05-01", "10:00", "11:00"), true},
		{"half past", mustSlot(t, "2026-05-01", "10:30", "11:30"), true},
		{"contains", mustSlot(t, "2026-05-01", "09:00", "12:00"), true},
		{"inside", mustSlot(t, "2026-05-01", "10:15", "10:45"), true},
		{"adjacent after", mustSlot(t, "2026-05-01", "11:00", "12:00"), false},
		{"adjacent before", mustSlot(t, "2026-05-01", "09:00", "10:00"), false},
		{"other day", mustSlot(t, "2026-05-02", "10:00", "11:00"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.overlaps {
				t.Fatalf("Overlaps = %v, want %v", got, tt.overlaps)
			}
			if got := tt.other.Overlaps(base); got != tt.overlaps {
				t.Fatalf("Overlaps is not symmetric")
			}
		})
	}
}

// Overlap must agree with a minute-by-minute occupancy check for any pair
// of slots on the same date.
func TestOverlapsMatchesOccupancy(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	date, _ := ParseDate("2026-05-01")

	random := func() Slot {
		start := rng.Intn(minutesInDay)
		end := start + 1 + rng.Intn(minutesInDay-start)
		return Slot{Date: date, Start: start, End: end}
	}

	for i := 0; i < 5000; i++ {
		a, b := random(), random()

		shared := false
		for m := a.Start; m < a.End; m++ {
			if m >= b.Start && m < b.End {
				shared = true
				break
			}
		}

		if got := a.Overlaps(b); got != shared {
			t.Fatalf("%+v vs %+v: Overlaps = %v, occupancy says %v", a, b, got, shared)
		}
		if a.End == b.Start && a.Overlaps(b) {
			t.Fatalf("adjacent slots %+v and %+v reported as overlapping", a, b)
		}
	}
}

func TestPrice(t *testing.T) {
	if got := Price(150000, 60); got != 150000 {
		t.Fatalf("1h = %d", got)
	}
	if got := Price(150000, 90); got != 225000 {
		t.Fatalf("1h30 = %d", got)
	}
}

func TestBuckets(t *testing.T) {
	date, _ := ParseDate("2026-05-01")
	taken := []Slot{mustSlot(t, "2026-05-01", "10:00", "11:00"), mustSlot(t, "2026-05-01", "12:30", "13:00")}

	got := Buckets(date, 9*60, 14*60+30, taken)
	want := []Bucket{
		{"09:00", "10:00", true},
		{"10:00", "11:00", false},
		{"11:00", "12:00", true},
		{"12:00", "13:00", false},
		{"13:00", "14:00", true},
		{"14:00", "14:30", true},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d buckets, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bucket %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStartsAt(t *testing.T) {
	s := mustSlot(t, "2026-05-01", "23:00", "24:00")
	end := s.EndsAt(time.UTC)
	if !end.Equal(time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("EndsAt = %v", end)
	}
}
