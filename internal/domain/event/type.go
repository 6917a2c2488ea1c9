package event

// Type identifies the type of domain event
type Type string

const (
	TypeLeaveApplied   Type = "leave.applied"
	TypeLeaveApproved  Type = "leave.approved"
	TypeLeaveRejected  Type = "leave.rejected"
	TypeLeaveCancelled Type = "leave.cancelled"
	TypeBalanceUpdated Type = "balance.updated"

	TypeReviewScheduled Type = "review.scheduled"
	TypeReviewScored    Type = "review.scored"
	TypeReviewSubmitted Type = "review.submitted"
	TypeReviewCancelled Type = "review.cancelled"

	TypeEmployeeCreated       Type = "employee.created"
	TypeEmployeeUpdated       Type = "employee.updated"
	TypeEmployeeStatusChanged Type = "employee.status_changed"

	TypeExpenseSubmitted Type = "expense.submitted"
)

// Types lists every defined event type
var Types = []Type{
	TypeLeaveApplied,
	TypeLeaveApproved,
	TypeLeaveRejected,
	TypeLeaveCancelled,
	TypeBalanceUpdated,
	TypeReviewScheduled,
	TypeReviewScored,
	TypeReviewSubmitted,
	TypeReviewCancelled,
	TypeEmployeeCreated,
	TypeEmployeeUpdated,
	TypeEmployeeStatusChanged,
	TypeExpenseSubmitted,
}

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}
