// Package intent defines the structured interpretation of a user utterance.
//
// An Intent is a closed sum type: each supported action or query has its own
// struct carrying only the fields that kind needs. Values are built per
// utterance by the extractor and never persisted.
package intent

import "github.com/garyjia/hr-assistant/internal/domain/entity"

// Tag is the discriminant of an Intent
type Tag string

// Action tags
const (
	TagApplyLeave           Tag = "apply_leave"
	TagScheduleReview       Tag = "schedule_review"
	TagCheckStatus          Tag = "check_status"
	TagDecideLeave          Tag = "approve_reject_leave"
	TagCancelLeave          Tag = "cancel_leave"
	TagUpdateLeaveBalance   Tag = "update_leave_balance"
	TagUpdateEmployeeData   Tag = "update_employee_data"
	TagUpdateEmployeeStatus Tag = "update_employee_status"
	TagCreateEmployee       Tag = "create_employee"
	TagUpdateReviewScore    Tag = "update_review_score"
	TagCancelReview         Tag = "cancel_review"
	TagSubmitReview         Tag = "submit_review"
	TagSubmitExpense        Tag = "submit_expense"
)

// Query tags
const (
	TagListByDepartment     Tag = "list_employees_by_department"
	TagListByTitle          Tag = "list_employees_by_title"
	TagListByStatus         Tag = "list_employees_by_status"
	TagCheckLeaveStatus     Tag = "check_leave_status"
	TagListPendingLeave     Tag = "list_pending_leave"
	TagLeaveHistory         Tag = "leave_history"
	TagListScheduledReviews Tag = "list_scheduled_reviews"
	TagReviewHistory        Tag = "review_history"
	TagEmployeeInfo         Tag = "employee_info"
	TagListLeaveBalances    Tag = "list_leave_balances"
)

var queryTags = map[Tag]bool{
	TagListByDepartment:     true,
	TagListByTitle:          true,
	TagListByStatus:         true,
	TagCheckLeaveStatus:     true,
	TagListPendingLeave:     true,
	TagLeaveHistory:         true,
	TagListScheduledReviews: true,
	TagReviewHistory:        true,
	TagEmployeeInfo:         true,
	TagListLeaveBalances:    true,
}

// IsQuery reports whether the tag names a read-only query
func (t Tag) IsQuery() bool {
	return queryTags[t]
}

// String returns the string representation of the tag
func (t Tag) String() string {
	return string(t)
}

// Intent is implemented only by the variants in this package
type Intent interface {
	Tag() Tag
	isIntent()
}

// IsQuery reports whether the intent should be answered by the query resolver
func IsQuery(i Intent) bool {
	return i != nil && i.Tag().IsQuery()
}

// ApplyLeave requests leave for an employee. Dates are kept as extracted;
// an empty LeaveType means Annual.
type ApplyLeave struct {
	EmployeeName string
	LeaveType    entity.LeaveType
	StartDate    string
	EndDate      string
}

// ScheduleReview books a performance review
type ScheduleReview struct {
	EmployeeName string
	ReviewerName string
	ReviewDate   string
}

// CheckStatus asks for an employee's latest leave request status
type CheckStatus struct {
	EmployeeName string
}

// DecideLeave approves or rejects a leave request
type DecideLeave struct {
	LeaveID  string
	Decision entity.LeaveStatus
}

type CancelLeave struct {
	LeaveID string
}

type UpdateLeaveBalance struct {
	EmployeeName string
	LeaveType    entity.LeaveType
	NewBalance   int
}

// UpdateEmployeeData moves an employee; empty fields keep their current value
type UpdateEmployeeData struct {
	EmployeeName string
	Department   string
	Title        string
}

type UpdateEmployeeStatus struct {
	EmployeeName string
	Status       string
}

type CreateEmployee struct {
	Name        string
	Email       string
	Title       string
	Department  string
	ManagerName string
}

type UpdateReviewScore struct {
	ReviewID string
	Score    int
}

type CancelReview struct {
	ReviewID string
}

type SubmitReview struct {
	ReviewID string
	Score    int
}

type SubmitExpense struct {
	EmployeeName string
	Category     string
	Amount       float64
}

type ListByDepartment struct {
	Department string
}

type ListByTitle struct {
	Title string
}

type ListByStatus struct {
	Status string
}

type CheckLeaveStatus struct {
	LeaveID string
}

type ListPendingLeave struct{}

type LeaveHistory struct {
	EmployeeName string
}

type ListScheduledReviews struct{}

type ReviewHistory struct {
	EmployeeName string
}

type EmployeeInfo struct {
	EmployeeName string
}

type ListLeaveBalances struct{}

// Unsupported carries a tag the pipeline has no handler for
type Unsupported struct {
	Name string
}

func (ApplyLeave) Tag() Tag           { return TagApplyLeave }
func (ScheduleReview) Tag() Tag       { return TagScheduleReview }
func (CheckStatus) Tag() Tag          { return TagCheckStatus }
func (DecideLeave) Tag() Tag          { return TagDecideLeave }
func (CancelLeave) Tag() Tag          { return TagCancelLeave }
func (UpdateLeaveBalance) Tag() Tag   { return TagUpdateLeaveBalance }
func (UpdateEmployeeData) Tag() Tag   { return TagUpdateEmployeeData }
func (UpdateEmployeeStatus) Tag() Tag { return TagUpdateEmployeeStatus }
func (CreateEmployee) Tag() Tag       { return TagCreateEmployee }
func (UpdateReviewScore) Tag() Tag    { return TagUpdateReviewScore }
func (CancelReview) Tag() Tag         { return TagCancelReview }
func (SubmitReview) Tag() Tag         { return TagSubmitReview }
func (SubmitExpense) Tag() Tag        { return TagSubmitExpense }
func (ListByDepartment) Tag() Tag     { return TagListByDepartment }
func (ListByTitle) Tag() Tag          { return TagListByTitle }
func (ListByStatus) Tag() Tag         { return TagListByStatus }
func (CheckLeaveStatus) Tag() Tag     { return TagCheckLeaveStatus }
func (ListPendingLeave) Tag() Tag     { return TagListPendingLeave }
func (LeaveHistory) Tag() Tag         { return TagLeaveHistory }
func (ListScheduledReviews) Tag() Tag { return TagListScheduledReviews }
func (ReviewHistory) Tag() Tag        { return TagReviewHistory }
func (EmployeeInfo) Tag() Tag         { return TagEmployeeInfo }
func (ListLeaveBalances) Tag() Tag    { return TagListLeaveBalances }
func (u Unsupported) Tag() Tag        { return Tag(u.Name) }

func (ApplyLeave) isIntent()           {}
func (ScheduleReview) isIntent()       {}
func (CheckStatus) isIntent()          {}
func (DecideLeave) isIntent()          {}
func (CancelLeave) isIntent()          {}
func (UpdateLeaveBalance) isIntent()   {}
func (UpdateEmployeeData) isIntent()   {}
func (UpdateEmployeeStatus) isIntent() {}
func (CreateEmployee) isIntent()       {}
func (UpdateReviewScore) isIntent()    {}
func (CancelReview) isIntent()         {}
func (SubmitReview) isIntent()         {}
func (SubmitExpense) isIntent()        {}
func (ListByDepartment) isIntent()     {}
func (ListByTitle) isIntent()          {}
func (ListByStatus) isIntent()         {}
func (CheckLeaveStatus) isIntent()     {}
func (ListPendingLeave) isIntent()     {}
func (LeaveHistory) isIntent()         {}
func (ListScheduledReviews) isIntent() {}
func (ReviewHistory) isIntent()        {}
func (EmployeeInfo) isIntent()         {}
func (ListLeaveBalances) isIntent()    {}
func (Unsupported) isIntent()          {}
