package workflow

import (
	"fmt"
	"sync"

	"github.com/garyjia/hr-assistant/internal/domain/entity"
)

// Lifecycles are configured on first use, never during package init.
var (
	leaveLifecycle  = sync.OnceValue(newLeaveLifecycle)
	reviewLifecycle = sync.OnceValue(newReviewLifecycle)
)

// Leave requests are created Approved by apply-leave when the balance suffices.
// Pending requests only arrive through seed data.
func newLeaveLifecycle() StateMachineBuilder {
	b := NewBuilder()
	b.Configure(StatePending).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerCancel, StateCancelled)
	b.Configure(StateApproved).
		Permit(TriggerCancel, StateCancelled)
	return b
}

func newReviewLifecycle() StateMachineBuilder {
	b := NewBuilder()
	b.Configure(StateScheduled).
		Permit(TriggerSubmit, StateCompleted).
		Permit(TriggerScore, StateCompleted).
		Permit(TriggerCancel, StateCancelled)
	return b
}

// LeaveMachine returns a machine positioned at the given leave status
func LeaveMachine(status entity.LeaveStatus) (StateMachine, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: leave status %q", ErrInvalidState, status)
	}
	return leaveLifecycle().Build(State(status)), nil
}

// ReviewMachine returns a machine positioned at the given review status
func ReviewMachine(status entity.ReviewStatus) (StateMachine, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: review status %q", ErrInvalidState, status)
	}
	return reviewLifecycle().Build(State(status)), nil
}

// NextLeaveStatus returns the status reached by firing trigger from current
func NextLeaveStatus(current entity.LeaveStatus, trigger Trigger) (entity.LeaveStatus, error) {
	m, err := LeaveMachine(current)
	if err != nil {
		return "", err
	}
	if err := m.Fire(trigger); err != nil {
		return "", err
	}
	return entity.LeaveStatus(m.State()), nil
}

// NextReviewStatus returns the status reached by firing trigger from current
func NextReviewStatus(current entity.ReviewStatus, trigger Trigger) (entity.ReviewStatus, error) {
	m, err := ReviewMachine(current)
	if err != nil {
		return "", err
	}
	if err := m.Fire(trigger); err != nil {
		return "", err
	}
	return entity.ReviewStatus(m.State()), nil
}
