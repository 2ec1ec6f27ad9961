package venues

import "context"

// CascadeSteps are the per-table deletes of a venue cascade. Implementations
// run them on one transaction.
type CascadeSteps interface {
	VenueImages(ctx context.Context, venueID int64) ([]string, error)
	DeleteReviews(ctx context.Context, venueID int64) (int64, error)
	DeleteBookings(ctx context.Context, venueID int64) (int64, error)
	DeleteTurfs(ctx context.Context, venueID int64) (int64, error)
	DeleteVenue(ctx context.Context, venueID int64) (int64, error)
}

// RunCascade removes a venue and everything under it, deepest dependents
// first. The first failing step aborts the run.
func RunCascade(ctx context.Context, s CascadeSteps, venueID int64) (CascadeResult, error) {
	var res CascadeResult

	urls, err := s.VenueImages(ctx, venueID)
	if err != nil {
		return res, err
	}

	if res.Reviews, err = s.DeleteReviews(ctx, venueID); err != nil {
		return CascadeResult{}, err
	}
	if res.Bookings, err = s.DeleteBookings(ctx, venueID); err != nil {
		return CascadeResult{}, err
	}
	if res.Turfs, err = s.DeleteTurfs(ctx, venueID); err != nil {
		return CascadeResult{}, err
	}

	n, err := s.DeleteVenue(ctx, venueID)
	if err != nil {
		return CascadeResult{}, err
	}
	if n == 0 {
		return CascadeResult{}, ErrVenueNotFound
	}

	res.ImageURLs = urls
	return res, nil
}
