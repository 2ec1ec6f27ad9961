package main

import (
	"context"
	"encoding/json"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"turfbook/internal/domain/admindashboard"
	"turfbook/internal/domain/approval"
	"turfbook/internal/domain/audit"
	"turfbook/internal/domain/bookings"
	"turfbook/internal/domain/reviews"
	"turfbook/internal/domain/storage"
	"turfbook/internal/domain/turfs"
	"turfbook/internal/domain/users"
	"turfbook/internal/domain/venues"
)

// memDB backs every store interface with maps so handlers can be driven
// through the real router without Postgres.
type memDB struct {
	mu       sync.Mutex
	seq      int64
	users    map[int64]*users.User
	refresh  map[int64]string
	venues   map[int64]*venues.Venue
	turfs    map[int64]*turfs.Turf
	bookings map[int64]*bookings.Booking
	reviews  map[int64]*reviews.Review
	audit    []audit.Entry
	tokens   map[int64][]string
	txCount  int
}

func newMemDB() *memDB {
	return &memDB{
		users:    map[int64]*users.User{},
		refresh:  map[int64]string{},
		venues:   map[int64]*venues.Venue{},
		turfs:    map[int64]*turfs.Turf{},
		bookings: map[int64]*bookings.Booking{},
		reviews:  map[int64]*reviews.Review{},
		tokens:   map[int64][]string{},
	}
}

func (db *memDB) next() int64 {
	db.seq++
	return db.seq
}

func (db *memDB) container() *storage.Container {
	return &storage.Container{
		Users:      memUsers{db},
		Venues:     memVenues{db},
		Turfs:      memTurfs{db},
		Bookings:   memBookings{db},
		Reviews:    memReviews{db},
		Audit:      memAudit{db},
		PushTokens: memPushTokens{db},
		Dashboard:  memDashboard{db},
		TxRunner: func(ctx context.Context, fn func(tx *storage.Tx) error) error {
			db.mu.Lock()
			db.txCount++
			db.mu.Unlock()
			return fn(&storage.Tx{
				Venues:   memVenues{db},
				Turfs:    memTurfs{db},
				Bookings: memBookings{db},
				Audit:    memAudit{db},
			})
		},
	}
}

func page[T any](items []T, limit, offset int) ([]T, int) {
	total := len(items)
	if offset >= total {
		return nil, total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return items[offset:end], total
}

// users

type memUsers struct{ db *memDB }

func (s memUsers) Create(_ context.Context, u *users.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.db.users {
		if existing.Email == u.Email {
			return users.ErrDuplicateEmail
		}
	}
	if u.Role == "" {
		u.Role = users.RoleGuest
	}
	u.ID = s.db.next()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	s.db.users[u.ID] = &cp
	return nil
}

func (s memUsers) GetByID(_ context.Context, id int64) (*users.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*users.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == strings.ToLower(email) && u.IsActive {
			cp := *u
			return &cp, nil
		}
	}
	return nil, users.ErrNotFound
}

func (s memUsers) List(_ context.Context, f users.Filter) ([]users.User, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []users.User
	for _, u := range s.db.users {
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(u.FullName()+" "+u.Email), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	items, total := page(out, f.Limit, f.Offset)
	return items, total, nil
}

func (s memUsers) Patch(_ context.Context, id int64, p users.Patch) (*users.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	cp := *u
	return &cp, nil
}

func (s memUsers) SaveRefreshTokenID(_ context.Context, userID int64, tokenID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.refresh[userID] = tokenID
	return nil
}

func (s memUsers) GetRefreshTokenID(_ context.Context, userID int64) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if u, ok := s.db.users[userID]; !ok || !u.IsActive {
		return "", users.ErrNotFound
	}
	return s.db.refresh[userID], nil
}

// venues

type memVenues struct{ db *memDB }

func copyVenue(v *venues.Venue) *venues.Venue {
	cp := *v
	cp.ImageURLs = slices.Clone(v.ImageURLs)
	cp.State = approval.Label(cp.ApprovalStatus, cp.IsActive)
	return &cp
}

func (s memVenues) Create(_ context.Context, v *venues.Venue) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.venues {
		if existing.OwnerID == v.OwnerID && existing.Name == v.Name {
			return venues.ErrVenueExists
		}
	}
	v.ID = s.db.next()
	v.ApprovalStatus = approval.Pending
	v.IsActive = false
	v.State = approval.Label(v.ApprovalStatus, v.IsActive)
	if v.ImageURLs == nil {
		v.ImageURLs = []string{}
	}
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	s.db.venues[v.ID] = copyVenue(v)
	return nil
}

func (s memVenues) GetByID(_ context.Context, id int64) (*venues.Venue, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	v, ok := s.db.venues[id]
	if !ok {
		return nil, venues.ErrVenueNotFound
	}
	return copyVenue(v), nil
}

func (s memVenues) GetForUpdate(ctx context.Context, id int64) (*venues.Venue, error) {
	return s.GetByID(ctx, id)
}

func (s memVenues) List(_ context.Context, f venues.Filter) ([]venues.Venue, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []venues.Venue
	for _, v := range s.db.venues {
		switch {
		case f.PublicOnly && !v.Listable(),
			f.OwnerID != nil && v.OwnerID != *f.OwnerID,
			f.City != nil && !strings.EqualFold(v.City, *f.City),
			f.Status != nil && v.ApprovalStatus != *f.Status,
			f.Search != "" && !strings.Contains(strings.ToLower(v.Name), strings.ToLower(f.Search)):
			continue
		}
		if f.Sport != nil {
			found := false
			for _, t := range s.db.turfs {
				if t.VenueID == v.ID && strings.EqualFold(t.Sport, *f.Sport) {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, *copyVenue(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	items, total := page(out, f.Limit, f.Offset)
	return items, total, nil
}

func (s memVenues) UpdateLifecycle(_ context.Context, id int64, res approval.Result, reviewerID int64) (*venues.Venue, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	v, ok := s.db.venues[id]
	if !ok {
		return nil, venues.ErrVenueNotFound
	}
	v.ApprovalStatus = res.Status
	v.IsActive = res.IsActive
	if res.Transitioned {
		now := time.Now()
		v.ReviewedBy = &reviewerID
		v.ReviewedAt = &now
	}
	return copyVenue(v), nil
}

func (s memVenues) AddPhotoURL(_ context.Context, id int64, url string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	v, ok := s.db.venues[id]
	if !ok {
		return venues.ErrVenueNotFound
	}
	v.ImageURLs = append(v.ImageURLs, url)
	return nil
}

func (s memVenues) RemovePhotoURL(_ context.Context, id int64, url string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	v, ok := s.db.venues[id]
	if !ok {
		return venues.ErrVenueNotFound
	}
	v.ImageURLs = slices.DeleteFunc(v.ImageURLs, func(u string) bool { return u == url })
	return nil
}

func (s memVenues) DeleteCascade(ctx context.Context, id int64) (venues.CascadeResult, error) {
	return venues.RunCascade(ctx, memCascade{s.db}, id)
}

type memCascade struct{ db *memDB }

func (c memCascade) VenueImages(_ context.Context, venueID int64) ([]string, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	var urls []string
	if v, ok := c.db.venues[venueID]; ok {
		urls = append(urls, v.ImageURLs...)
	}
	for _, t := range c.db.turfs {
		if t.VenueID == venueID {
			urls = append(urls, t.ImageURLs...)
		}
	}
	return urls, nil
}

func (c memCascade) DeleteReviews(_ context.Context, venueID int64) (int64, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	var n int64
	for id, r := range c.db.reviews {
		if r.VenueID == venueID {
			delete(c.db.reviews, id)
			n++
		}
	}
	return n, nil
}

func (c memCascade) DeleteBookings(_ context.Context, venueID int64) (int64, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	var n int64
	for id, b := range c.db.bookings {
		if b.VenueID == venueID {
			delete(c.db.bookings, id)
			n++
		}
	}
	return n, nil
}

func (c memCascade) DeleteTurfs(_ context.Context, venueID int64) (int64, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	var n int64
	for id, t := range c.db.turfs {
		if t.VenueID == venueID {
			delete(c.db.turfs, id)
			n++
		}
	}
	return n, nil
}

func (c memCascade) DeleteVenue(_ context.Context, venueID int64) (int64, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if _, ok := c.db.venues[venueID]; !ok {
		return 0, nil
	}
	delete(c.db.venues, venueID)
	return 1, nil
}

// turfs

type memTurfs struct{ db *memDB }

// withVenue copies t and fills its venue reference. Caller holds the lock.
func (s memTurfs) withVenue(t *turfs.Turf) *turfs.Turf {
	cp := *t
	cp.ImageURLs = slices.Clone(t.ImageURLs)
	cp.State = approval.Label(cp.ApprovalStatus, cp.IsActive)
	if v, ok := s.db.venues[t.VenueID]; ok {
		cp.Venue = turfs.VenueRef{
			Name:           v.Name,
			City:           v.City,
			OwnerID:        v.OwnerID,
			ApprovalStatus: v.ApprovalStatus,
			IsActive:       v.IsActive,
			OpeningTime:    v.OpeningTime,
			ClosingTime:    v.ClosingTime,
		}
	}
	return &cp
}

func (s memTurfs) Create(_ context.Context, t *turfs.Turf) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.venues[t.VenueID]; !ok {
		return venues.ErrVenueNotFound
	}
	t.ID = s.db.next()
	if t.ApprovalStatus == "" {
		t.ApprovalStatus = approval.Pending
	}
	if t.ImageURLs == nil {
		t.ImageURLs = []string{}
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	t.State = approval.Label(t.ApprovalStatus, t.IsActive)
	// like the insert, Create leaves t.Venue to the caller
	cp := *t
	cp.Venue = turfs.VenueRef{}
	s.db.turfs[t.ID] = &cp
	return nil
}

func (s memTurfs) GetByID(_ context.Context, id int64) (*turfs.Turf, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.turfs[id]
	if !ok {
		return nil, turfs.ErrTurfNotFound
	}
	return s.withVenue(t), nil
}

func (s memTurfs) GetForUpdate(ctx context.Context, id int64) (*turfs.Turf, error) {
	return s.GetByID(ctx, id)
}

func (s memTurfs) List(_ context.Context, f turfs.Filter) ([]turfs.Turf, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []turfs.Turf
	for _, raw := range s.db.turfs {
		t := s.withVenue(raw)
		switch {
		case f.PublicOnly && !t.Bookable(),
			f.VenueID != nil && t.VenueID != *f.VenueID,
			f.Sport != nil && !strings.EqualFold(t.Sport, *f.Sport),
			f.Status != nil && t.ApprovalStatus != *f.Status,
			f.Search != "" && !strings.Contains(strings.ToLower(t.Name+" "+t.Venue.Name), strings.ToLower(f.Search)):
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	items, total := page(out, f.Limit, f.Offset)
	return items, total, nil
}

func (s memTurfs) ListByVenue(ctx context.Context, venueID int64, publicOnly bool) ([]turfs.Turf, error) {
	list, _, err := s.List(ctx, turfs.Filter{VenueID: &venueID, PublicOnly: publicOnly})
	return list, err
}

func (s memTurfs) UpdateLifecycle(_ context.Context, id int64, res approval.Result) (*turfs.Turf, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.turfs[id]
	if !ok {
		return nil, turfs.ErrTurfNotFound
	}
	t.ApprovalStatus = res.Status
	t.IsActive = res.IsActive
	return s.withVenue(t), nil
}

func (s memTurfs) ApprovePending(_ context.Context, venueID int64) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, t := range s.db.turfs {
		if t.VenueID == venueID && t.ApprovalStatus == approval.Pending {
			t.ApprovalStatus = approval.Approved
			t.IsActive = true
			n++
		}
	}
	return n, nil
}

func (s memTurfs) AddPhotoURL(_ context.Context, id int64, url string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.turfs[id]
	if !ok {
		return turfs.ErrTurfNotFound
	}
	t.ImageURLs = append(t.ImageURLs, url)
	return nil
}

// bookings

type memBookings struct{ db *memDB }

func live(s bookings.Status) bool {
	return s == bookings.StatusPending || s == bookings.StatusConfirmed
}

// overlaps is the exclusion constraint. Caller holds the lock.
func (s memBookings) overlaps(turfID int64, slot bookings.Slot, excludeID int64) bool {
	for _, b := range s.db.bookings {
		if b.TurfID != turfID || b.ID == excludeID || !live(b.Status) {
			continue
		}
		other, err := b.Slot()
		if err == nil && slot.Overlaps(other) {
			return true
		}
	}
	return false
}

func (s memBookings) Create(_ context.Context, b *bookings.Booking) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	slot, err := b.Slot()
	if err != nil {
		return err
	}
	if s.overlaps(b.TurfID, slot, 0) {
		return bookings.ErrSlotUnavailable
	}
	b.ID = s.db.next()
	if b.Status == "" {
		b.Status = bookings.StatusPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = bookings.PaymentPending
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	s.db.bookings[b.ID] = &cp
	return nil
}

// joined copies b with the fields GetByID joins in. Caller holds the lock.
func (s memBookings) joined(b *bookings.Booking) *bookings.Booking {
	cp := *b
	if t, ok := s.db.turfs[b.TurfID]; ok {
		cp.TurfName = t.Name
		cp.Sport = t.Sport
	}
	if v, ok := s.db.venues[b.VenueID]; ok {
		cp.VenueName = v.Name
		cp.VenueOwnerID = v.OwnerID
	}
	if u, ok := s.db.users[b.UserID]; ok {
		cp.UserName = u.FullName()
	}
	return &cp
}

func (s memBookings) GetByID(_ context.Context, id int64) (*bookings.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.bookings[id]
	if !ok {
		return nil, bookings.ErrBookingNotFound
	}
	return s.joined(b), nil
}

func (s memBookings) HasOverlap(_ context.Context, turfID int64, slot bookings.Slot, excludeID int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.overlaps(turfID, slot, excludeID), nil
}

func (s memBookings) ListTaken(_ context.Context, turfID int64, date string) ([]bookings.Slot, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []bookings.Slot
	for _, b := range s.db.bookings {
		if b.TurfID == turfID && b.BookingDate == date && live(b.Status) {
			slot, err := b.Slot()
			if err != nil {
				return nil, err
			}
			out = append(out, slot)
		}
	}
	return out, nil
}

func (s memBookings) List(_ context.Context, f bookings.Filter) ([]bookings.Booking, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []bookings.Booking
	for _, raw := range s.db.bookings {
		b := s.joined(raw)
		switch {
		case f.UserID != nil && b.UserID != *f.UserID,
			f.OwnerID != nil && b.VenueOwnerID != *f.OwnerID,
			f.VenueID != nil && b.VenueID != *f.VenueID,
			f.TurfID != nil && b.TurfID != *f.TurfID,
			f.Status != nil && b.Status != *f.Status,
			f.Sport != nil && !strings.EqualFold(b.Sport, *f.Sport),
			f.Date != nil && b.BookingDate != *f.Date:
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	items, total := page(out, f.Limit, f.Offset)
	return items, total, nil
}

func (s memBookings) Apply(_ context.Context, id int64, c bookings.Change) (*bookings.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.bookings[id]
	if !ok {
		return nil, bookings.ErrBookingNotFound
	}
	if b.Status != c.FromStatus || b.PaymentStatus != c.FromPayment {
		return nil, bookings.ErrStaleBooking
	}
	b.Status = c.Status
	b.PaymentStatus = c.PaymentStatus
	if c.Cancelled() {
		now := time.Now()
		b.CancelledAt = &now
		if c.Reason != nil {
			b.CancellationReason = c.Reason
		}
	}
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (s memBookings) CompleteElapsed(_ context.Context, now time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, b := range s.db.bookings {
		if b.Status != bookings.StatusConfirmed {
			continue
		}
		slot, err := b.Slot()
		if err != nil {
			return n, err
		}
		if !slot.EndsAt(now.Location()).After(now) {
			b.Status = bookings.StatusCompleted
			n++
		}
	}
	return n, nil
}

// reviews

type memReviews struct{ db *memDB }

func (s memReviews) Create(_ context.Context, r *reviews.Review) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.bookings[r.BookingID]
	if !ok || b.UserID != r.UserID || b.Status != bookings.StatusCompleted {
		return reviews.ErrReviewNotAllowed
	}
	for _, existing := range s.db.reviews {
		if existing.BookingID == r.BookingID {
			return reviews.ErrAlreadyReviewed
		}
	}
	r.ID = s.db.next()
	r.TurfID = b.TurfID
	r.VenueID = b.VenueID
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	s.db.reviews[r.ID] = &cp
	return nil
}

func (s memReviews) List(_ context.Context, f reviews.Filter) ([]reviews.Review, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []reviews.Review
	for _, r := range s.db.reviews {
		switch {
		case f.TurfID != nil && r.TurfID != *f.TurfID,
			f.VenueID != nil && r.VenueID != *f.VenueID,
			f.UserID != nil && r.UserID != *f.UserID:
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	items, total := page(out, f.Limit, f.Offset)
	return items, total, nil
}

// audit

type memAudit struct{ db *memDB }

func (s memAudit) Record(_ context.Context, e *audit.Entry) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	e.ID = s.db.next()
	e.CreatedAt = time.Now()
	s.db.audit = append(s.db.audit, *e)
	return nil
}

func (s memAudit) List(_ context.Context, f audit.Filter) ([]audit.Entry, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []audit.Entry
	for i := len(s.db.audit) - 1; i >= 0; i-- {
		e := s.db.audit[i]
		if f.Entity != nil && e.Entity != *f.Entity {
			continue
		}
		out = append(out, e)
	}
	items, total := page(out, f.Limit, f.Offset)
	return items, total, nil
}

// push tokens

type memPushTokens struct{ db *memDB }

func (s memPushTokens) Upsert(_ context.Context, userID int64, token string, _ json.RawMessage) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if !slices.Contains(s.db.tokens[userID], token) {
		s.db.tokens[userID] = append(s.db.tokens[userID], token)
	}
	return nil
}

func (s memPushTokens) Remove(_ context.Context, userID int64, token string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.tokens[userID] = slices.DeleteFunc(s.db.tokens[userID], func(t string) bool { return t == token })
	return nil
}

func (s memPushTokens) RemoveTokens(_ context.Context, tokens []string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, list := range s.db.tokens {
		s.db.tokens[id] = slices.DeleteFunc(list, func(t string) bool { return slices.Contains(tokens, t) })
	}
	return nil
}

func (s memPushTokens) TokensFor(_ context.Context, userIDs []int64) (map[int64][]string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make(map[int64][]string, len(userIDs))
	for _, id := range userIDs {
		if len(s.db.tokens[id]) > 0 {
			out[id] = slices.Clone(s.db.tokens[id])
		}
	}
	return out, nil
}

func (s memPushTokens) PruneStale(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

// dashboard

type memDashboard struct{ db *memDB }

func (s memDashboard) GetOverview(context.Context) (*admindashboard.Overview, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o := &admindashboard.Overview{}
	for _, u := range s.db.users {
		o.TotalUsers++
		switch u.Role {
		case users.RoleGuest:
			o.TotalGuests++
		case users.RoleVenueOwner:
			o.TotalVenueOwners++
		case users.RoleAdmin:
			o.TotalAdmins++
		}
	}
	for _, v := range s.db.venues {
		o.TotalVenues++
		switch approval.Label(v.ApprovalStatus, v.IsActive) {
		case approval.StateLive:
			o.LiveVenues++
		case approval.StateMaintenance:
			o.MaintenanceVenues++
		case approval.StatePending:
			o.PendingVenues++
		case approval.StateRejected:
			o.RejectedVenues++
		}
	}
	for _, t := range s.db.turfs {
		o.TotalTurfs++
		if t.ApprovalStatus == approval.Pending {
			o.PendingTurfs++
		}
	}
	for _, b := range s.db.bookings {
		o.TotalBookings++
		switch b.Status {
		case bookings.StatusPending:
			o.PendingBookings++
		case bookings.StatusConfirmed:
			o.ConfirmedBookings++
		case bookings.StatusCompleted:
			o.CompletedBookings++
		case bookings.StatusCancelled:
			o.CancelledBookings++
		}
		if b.PaymentStatus == bookings.PaymentPaid {
			o.TotalRevenue += b.TotalAmount
		}
	}
	return o, nil
}

func (s memDashboard) GetRevenue(_ context.Context, from, to time.Time) (*admindashboard.Revenue, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := &admindashboard.Revenue{
		From:     from.Format(bookings.DateLayout),
		To:       to.Format(bookings.DateLayout),
		Daily:    []admindashboard.RevenuePoint{},
		TopVenue: []admindashboard.VenueRevenue{},
	}
	for _, b := range s.db.bookings {
		if b.PaymentStatus == bookings.PaymentPaid && b.BookingDate >= out.From && b.BookingDate <= out.To {
			out.Total += b.TotalAmount
		}
	}
	return out, nil
}
