package entity

import (
	"strings"
	"time"
)

// LeaveType is the category a leave balance or request is drawn from
type LeaveType string

const (
	LeaveTypeAnnual    LeaveType = "Annual"
	LeaveTypeSick      LeaveType = "Sick"
	LeaveTypeMaternity LeaveType = "Maternity"
)

// LeaveTypes lists every supported leave type in display order
var LeaveTypes = []LeaveType{LeaveTypeAnnual, LeaveTypeSick, LeaveTypeMaternity}

// leaveTypeSynonyms maps lowercase substrings to the canonical type.
// Order matters: the first matching substring wins.
var leaveTypeSynonyms = []struct {
	fragment  string
	canonical LeaveType
}{
	{"tahunan", LeaveTypeAnnual},
	{"annual", LeaveTypeAnnual},
	{"sakit", LeaveTypeSick},
	{"sick", LeaveTypeSick},
	{"melahirkan", LeaveTypeMaternity},
	{"maternity", LeaveTypeMaternity},
}

// IsValid returns true if the leave type is one of the canonical values
func (t LeaveType) IsValid() bool {
	switch t {
	case LeaveTypeAnnual, LeaveTypeSick, LeaveTypeMaternity:
		return true
	}
	return false
}

// String returns the string representation of the leave type
func (t LeaveType) String() string {
	return string(t)
}

// NormalizeLeaveType folds free text onto a canonical leave type by case-insensitive
// substring matching. ok is false when nothing matched.
func NormalizeLeaveType(text string) (LeaveType, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return "", false
	}
	for _, s := range leaveTypeSynonyms {
		if strings.Contains(lower, s.fragment) {
			return s.canonical, true
		}
	}
	return "", false
}

// ParseLeaveType is the strict counterpart of NormalizeLeaveType
func ParseLeaveType(text string) (LeaveType, error) {
	t, ok := NormalizeLeaveType(text)
	if !ok {
		return "", &InvalidValueError{Field: "leave_type", Value: text, Err: ErrInvalidLeaveType}
	}
	return t, nil
}

// LeaveBalance is the remaining allowance of one leave type for one employee
type LeaveBalance struct {
	EmployeeID    int64     `json:"employee_id"`
	LeaveType     LeaveType `json:"leave_type"`
	RemainingDays int       `json:"remaining_days"`
}

// LeaveRequest represents a leave application
type LeaveRequest struct {
	ID         string      `json:"id"`
	EmployeeID int64       `json:"employee_id"`
	LeaveType  LeaveType   `json:"leave_type"`
	StartDate  time.Time   `json:"start_date"`
	EndDate    time.Time   `json:"end_date"`
	Status     LeaveStatus `json:"status"`
}

// Days returns the inclusive number of calendar days covered by the request
func (r *LeaveRequest) Days() int {
	return InclusiveDays(r.StartDate, r.EndDate)
}

// InclusiveDays counts calendar days from start to end, both included.
// Equal dates count as one day; end before start yields zero or less.
func InclusiveDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}
