package workflow

// Trigger is a user action that may move a record to another state
type Trigger string

const (
	TriggerApprove Trigger = "approve"
	TriggerReject  Trigger = "reject"
	TriggerCancel  Trigger = "cancel"
	TriggerSubmit  Trigger = "submit"
	TriggerScore   Trigger = "update score"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
