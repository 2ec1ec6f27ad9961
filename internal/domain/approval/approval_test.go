package approval

import (
	"errors"
	"testing"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		override bool
		wantErr  error
	}{
		{Pending, Approved, false, nil},
		{Pending, Rejected, false, nil},
		{Approved, Approved, false, nil},
		{Rejected, Rejected, false, nil},
		{Rejected, Approved, false, ErrInvalidTransition},
		{Rejected, Pending, false, ErrInvalidTransition},
		{Approved, Rejected, false, ErrInvalidTransition},
		{Approved, Pending, false, ErrInvalidTransition},
		{Rejected, Approved, true, nil},
		{Approved, Rejected, true, nil},
		{Pending, Status("archived"), true, ErrInvalidStatus},
	}

	for _, tt := range tests {
		err := Transition(tt.from, tt.to, tt.override)
		if tt.wantErr == nil && err != nil {
			t.Errorf("%s -> %s (override=%v): unexpected error %v", tt.from, tt.to, tt.override, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("%s -> %s (override=%v): got %v, want %v", tt.from, tt.to, tt.override, err, tt.wantErr)
		}
	}
}

func TestApplyApproveActivates(t *testing.T) {
	approved := Approved
	res, err := Apply(Pending, false, Change{Status: &approved})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !res.IsActive || res.Status != Approved || !res.Transitioned {
		t.Fatalf("unexpected result %+v", res)
	}
	if Label(res.Status, res.IsActive) != StateLive {
		t.Fatalf("label = %s", Label(res.Status, res.IsActive))
	}
}

func TestApplyMaintenanceToggle(t *testing.T) {
	off, on := false, true

	res, err := Apply(Approved, true, Change{IsActive: &off})
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if Label(res.Status, res.IsActive) != StateMaintenance {
		t.Fatalf("label = %s, want maintenance", Label(res.Status, res.IsActive))
	}

	res, err = Apply(res.Status, res.IsActive, Change{IsActive: &on})
	if err != nil || !res.IsActive {
		t.Fatalf("reactivate: %+v %v", res, err)
	}
	if res.Transitioned {
		t.Fatal("toggling is_active is not an approval transition")
	}
}

func TestApplyRejectedNeedsOverride(t *testing.T) {
	approved := Approved
	on := true

	if _, err := Apply(Rejected, false, Change{Status: &approved}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
	if _, err := Apply(Rejected, false, Change{IsActive: &on}); !errors.Is(err, ErrNotApproved) {
		t.Fatalf("got %v, want ErrNotApproved", err)
	}
	if _, err := Apply(Rejected, false, Change{Status: &approved, Override: true}); !errors.Is(err, ErrOverrideNote) {
		t.Fatalf("got %v, want ErrOverrideNote", err)
	}

	res, err := Apply(Rejected, false, Change{Status: &approved, Override: true, Note: "appeal accepted"})
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if res.Status != Approved || !res.IsActive {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRejectDeactivates(t *testing.T) {
	rejected := Rejected
	res, err := Apply(Approved, true, Change{Status: &rejected, Override: true, Note: "fraud"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.IsActive || Listable(res.Status, res.IsActive) {
		t.Fatalf("rejected listing must not stay active: %+v", res)
	}
}
