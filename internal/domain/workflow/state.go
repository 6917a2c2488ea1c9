package workflow

import "github.com/garyjia/hr-assistant/internal/domain/entity"

// State is a lifecycle state shared by leave requests and performance reviews
type State string

const (
	StatePending   State = State(entity.LeaveStatusPending)
	StateApproved  State = State(entity.LeaveStatusApproved)
	StateRejected  State = State(entity.LeaveStatusRejected)
	StateCancelled State = State(entity.LeaveStatusCancelled)
	StateScheduled State = State(entity.ReviewStatusScheduled)
	StateCompleted State = State(entity.ReviewStatusCompleted)
)

// IsTerminal returns true if no transition leaves the state
func (s State) IsTerminal() bool {
	switch s {
	case StateRejected, StateCancelled, StateCompleted:
		return true
	}
	return false
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known lifecycle state
func (s State) IsValid() bool {
	switch s {
	case StatePending, StateApproved, StateRejected, StateCancelled, StateScheduled, StateCompleted:
		return true
	}
	return false
}
