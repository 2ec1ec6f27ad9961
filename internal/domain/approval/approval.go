// Package approval holds the listing lifecycle shared by venues and turfs:
// an admin-controlled approval status combined with an is_active flag.
package approval

import (
	"turfbook/internal/apperr"
)

type Status string

const (
	Pending  Status = "pending"
	Approved Status = "approved"
	Rejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case Pending, Approved, Rejected:
		return true
	}
	return false
}

// State is the label shown to users; maintenance is approved but switched off.
type State string

const (
	StateLive        State = "live"
	StateMaintenance State = "maintenance"
	StatePending     State = "pending"
	StateRejected    State = "rejected"
)

var (
	ErrInvalidStatus     = apperr.Validation("invalid_approval_status", "approval_status must be one of pending, approved, rejected")
	ErrInvalidTransition = apperr.Conflict("invalid_approval_transition", "approval status change is not allowed")
	ErrNotApproved       = apperr.Conflict("not_approved", "only approved listings can be activated")
	ErrOverrideNote      = apperr.Validation("override_note_required", "an override requires a note")
)

// Transition checks that an approval status may move from one value to
// another. Only pending listings move forward; everything else needs an
// explicit admin override.
func Transition(from, to Status, override bool) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	if from == to {
		return nil
	}
	if from == Pending && (to == Approved || to == Rejected) {
		return nil
	}
	if override {
		return nil
	}
	return ErrInvalidTransition.Withf("%s -> %s", from, to)
}

// CanActivate reports whether is_active may be set to active given status.
// Deactivation is always allowed.
func CanActivate(status Status, active bool) error {
	if active && status != Approved {
		return ErrNotApproved
	}
	return nil
}

func Label(status Status, active bool) State {
	switch status {
	case Approved:
		if active {
			return StateLive
		}
		return StateMaintenance
	case Rejected:
		return StateRejected
	default:
		return StatePending
	}
}

// Listable is the public visibility rule.
func Listable(status Status, active bool) bool {
	return status == Approved && active
}

// Change is a requested mutation of the two lifecycle fields.
type Change struct {
	Status   *Status
	IsActive *bool
	Override bool
	Note     string
}

// Result is the state after applying a Change.
type Result struct {
	From     Status
	Status   Status
	IsActive bool
	// Transitioned is true when the approval status actually changed.
	Transitioned bool
}

// Apply validates c against the current state and returns the new state.
// Approving without an explicit is_active also activates the listing.
func Apply(current Status, active bool, c Change) (Result, error) {
	res := Result{From: current, Status: current, IsActive: active}

	if c.Override && c.Note == "" {
		return res, ErrOverrideNote
	}

	if c.Status != nil {
		if err := Transition(current, *c.Status, c.Override); err != nil {
			return res, err
		}
		res.Status = *c.Status
		res.Transitioned = res.Status != current
		switch {
		case res.Status == Approved && res.Transitioned && c.IsActive == nil:
			res.IsActive = true
		case res.Status != Approved:
			res.IsActive = false
		}
	}

	if c.IsActive != nil {
		if err := CanActivate(res.Status, *c.IsActive); err != nil {
			return res, err
		}
		res.IsActive = *c.IsActive
	}

	return res, nil
}
