package workflow

import (
	"errors"
	"sync"
	"testing"

	"github.com/garyjia/hr-assistant/internal/domain/entity"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		terminal bool
	}{
		{StatePending, false},
		{StateApproved, false},
		{StateScheduled, false},
		{StateRejected, true},
		{StateCancelled, true},
		{StateCompleted, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.terminal)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	if !StatePending.IsValid() {
		t.Error("Pending should be valid")
	}
	if State("Archived").IsValid() {
		t.Error("Archived should not be valid")
	}
}

func TestBuilder_PanicsOnInvalidState(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid state")
		}
	}()
	NewBuilder().Configure(State("Bogus"))
}

func TestStateMachine_FireAndCanFire(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatePending).Permit(TriggerApprove, StateApproved)
	m := b.Build(StatePending)

	if !m.CanFire(TriggerApprove) {
		t.Fatal("approve should be permitted from Pending")
	}
	if m.CanFire(TriggerReject) {
		t.Error("reject should not be permitted")
	}
	if err := m.Fire(TriggerApprove); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if m.State() != StateApproved {
		t.Errorf("State() = %v, want %v", m.State(), StateApproved)
	}
	if err := m.Fire(TriggerApprove); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Fire() error = %v, want ErrInvalidTransition", err)
	}
}

func TestStateMachine_BuildIsIndependent(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatePending).Permit(TriggerApprove, StateApproved)
	m1 := b.Build(StatePending)
	m2 := b.Build(StatePending)

	if err := m1.Fire(TriggerApprove); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if m2.State() != StatePending {
		t.Errorf("m2 State() = %v, want Pending", m2.State())
	}
}

func TestStateMachine_PermittedTriggersSorted(t *testing.T) {
	m, err := LeaveMachine(entity.LeaveStatusPending)
	if err != nil {
		t.Fatalf("LeaveMachine() error = %v", err)
	}
	got := m.PermittedTriggers()
	want := []Trigger{TriggerApprove, TriggerCancel, TriggerReject}
	if len(got) != len(want) {
		t.Fatalf("PermittedTriggers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PermittedTriggers()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	terminal, _ := LeaveMachine(entity.LeaveStatusRejected)
	if n := len(terminal.PermittedTriggers()); n != 0 {
		t.Errorf("terminal state has %d permitted triggers, want 0", n)
	}
}

func TestNextLeaveStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    entity.LeaveStatus
		trigger Trigger
		want    entity.LeaveStatus
		wantErr error
	}{
		{"approve pending", entity.LeaveStatusPending, TriggerApprove, entity.LeaveStatusApproved, nil},
		{"reject pending", entity.LeaveStatusPending, TriggerReject, entity.LeaveStatusRejected, nil},
		{"cancel pending", entity.LeaveStatusPending, TriggerCancel, entity.LeaveStatusCancelled, nil},
		{"cancel approved", entity.LeaveStatusApproved, TriggerCancel, entity.LeaveStatusCancelled, nil},
		{"approve approved", entity.LeaveStatusApproved, TriggerApprove, "", ErrInvalidTransition},
		{"reject approved", entity.LeaveStatusApproved, TriggerReject, "", ErrInvalidTransition},
		{"cancel rejected", entity.LeaveStatusRejected, TriggerCancel, "", ErrInvalidTransition},
		{"cancel cancelled", entity.LeaveStatusCancelled, TriggerCancel, "", ErrInvalidTransition},
		{"approve cancelled", entity.LeaveStatusCancelled, TriggerApprove, "", ErrInvalidTransition},
		{"unknown status", entity.LeaveStatus("Archived"), TriggerApprove, "", ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextLeaveStatus(tt.from, tt.trigger)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NextLeaveStatus() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NextLeaveStatus() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("NextLeaveStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextReviewStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    entity.ReviewStatus
		trigger Trigger
		want    entity.ReviewStatus
		wantErr error
	}{
		{"submit scheduled", entity.ReviewStatusScheduled, TriggerSubmit, entity.ReviewStatusCompleted, nil},
		{"score scheduled", entity.ReviewStatusScheduled, TriggerScore, entity.ReviewStatusCompleted, nil},
		{"cancel scheduled", entity.ReviewStatusScheduled, TriggerCancel, entity.ReviewStatusCancelled, nil},
		{"submit completed", entity.ReviewStatusCompleted, TriggerSubmit, "", ErrInvalidTransition},
		{"cancel completed", entity.ReviewStatusCompleted, TriggerCancel, "", ErrInvalidTransition},
		{"score cancelled", entity.ReviewStatusCancelled, TriggerScore, "", ErrInvalidTransition},
		{"unknown status", entity.ReviewStatus(""), TriggerSubmit, "", ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextReviewStatus(tt.from, tt.trigger)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NextReviewStatus() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NextReviewStatus() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("NextReviewStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLeaveLifecycle_TerminalStatusesCannotBeCancelled(t *testing.T) {
	for _, from := range []entity.LeaveStatus{entity.LeaveStatusCancelled, entity.LeaveStatusRejected} {
		got, err := NextLeaveStatus(from, TriggerCancel)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("NextLeaveStatus(%s, cancel) error = %v, want %v", from, err, ErrInvalidTransition)
		}
		if got != "" {
			t.Errorf("NextLeaveStatus(%s, cancel) = %q, want empty status", from, got)
		}
	}
}

func TestLifecycles_ConcurrentFirstUse(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			got, err := NextLeaveStatus(entity.LeaveStatusPending, TriggerApprove)
			if err == nil && got != entity.LeaveStatusApproved {
				err = errors.New("pending leave was not approved")
			}
			errs <- err
		}()
		go func() {
			defer wg.Done()
			got, err := NextReviewStatus(entity.ReviewStatusScheduled, TriggerSubmit)
			if err == nil && got != entity.ReviewStatusCompleted {
				err = errors.New("scheduled review was not completed")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
}
