package venues

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type recordingSteps struct {
	calls  []string
	failAt string
	venues int64
}

func (s *recordingSteps) step(name string, n int64) (int64, error) {
	s.calls = append(s.calls, name)
	if s.failAt == name {
		return 0, errors.New(name + " failed")
	}
	return n, nil
}

func (s *recordingSteps) VenueImages(ctx context.Context, id int64) ([]string, error) {
	_, err := s.step("images", 0)
	return []string{"https://img/venue.jpg", "https://img/turf.jpg"}, err
}

func (s *recordingSteps) DeleteReviews(ctx context.Context, id int64) (int64, error) {
	return s.step("reviews", 2)
}

func (s *recordingSteps) DeleteBookings(ctx context.Context, id int64) (int64, error) {
	return s.step("bookings", 5)
}

func (s *recordingSteps) DeleteTurfs(ctx context.Context, id int64) (int64, error) {
	return s.step("turfs", 3)
}

func (s *recordingSteps) DeleteVenue(ctx context.Context, id int64) (int64, error) {
	return s.step("venue", s.venues)
}

func TestRunCascadeOrderAndCounts(t *testing.T) {
	s := &recordingSteps{venues: 1}

	res, err := RunCascade(context.Background(), s, 7)
	if err != nil {
		t.Fatalf("cascade: %v", err)
	}

	want := []string{"images", "reviews", "bookings", "turfs", "venue"}
	if !reflect.DeepEqual(s.calls, want) {
		t.Fatalf("calls = %v, want %v", s.calls, want)
	}
	if res.Reviews != 2 || res.Bookings != 5 || res.Turfs != 3 {
		t.Fatalf("unexpected counts %+v", res)
	}
	if len(res.ImageURLs) != 2 {
		t.Fatalf("image urls = %v", res.ImageURLs)
	}
}

func TestRunCascadeStopsOnFailure(t *testing.T) {
	s := &recordingSteps{venues: 1, failAt: "bookings"}

	res, err := RunCascade(context.Background(), s, 7)
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Reviews != 0 || res.Bookings != 0 || res.Turfs != 0 || res.ImageURLs != nil {
		t.Fatalf("partial counts leaked: %+v", res)
	}
	want := []string{"images", "reviews", "bookings"}
	if !reflect.DeepEqual(s.calls, want) {
		t.Fatalf("calls = %v, want %v", s.calls, want)
	}
}

func TestRunCascadeMissingVenue(t *testing.T) {
	s := &recordingSteps{venues: 0}
	if _, err := RunCascade(context.Background(), s, 7); !errors.Is(err, ErrVenueNotFound) {
		t.Fatalf("got %v, want ErrVenueNotFound", err)
	}
}
