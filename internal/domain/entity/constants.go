package entity

import (
	"errors"
	"fmt"
	"strings"
)

// LeaveStatus is the lifecycle status of a LeaveRequest
type LeaveStatus string

// Status constants for LeaveRequest
const (
	LeaveStatusPending   LeaveStatus = "Pending"
	LeaveStatusApproved  LeaveStatus = "Approved"
	LeaveStatusRejected  LeaveStatus = "Rejected"
	LeaveStatusCancelled LeaveStatus = "Cancelled"
)

// ReviewStatus is the lifecycle status of a PerformanceReview
type ReviewStatus string

// Status constants for PerformanceReview
const (
	ReviewStatusScheduled ReviewStatus = "Scheduled"
	ReviewStatusCompleted ReviewStatus = "Completed"
	ReviewStatusCancelled ReviewStatus = "Cancelled"
)

// Employment status constants
const (
	EmploymentStatusActive   = "Active"
	EmploymentStatusInactive = "Inactive"
)

// Expense status constants
const (
	ExpenseStatusSubmitted = "Submitted"
)

// StatusNotFound is returned by status lookups that match no record
const StatusNotFound = "Not found"

var (
	// ErrInvalidLeaveType is returned when a leave type is not Annual, Sick or Maternity
	ErrInvalidLeaveType = errors.New("invalid leave type")

	// ErrInvalidStatus is returned when a status string cannot be folded onto a known status
	ErrInvalidStatus = errors.New("invalid status")

	// ErrNegativeBalance is returned when a balance would drop below zero
	ErrNegativeBalance = errors.New("leave balance cannot be negative")
)

// InvalidValueError carries the offending field and value of a contract violation
type InvalidValueError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}

var leaveStatusWords = map[string]LeaveStatus{
	"pending":    LeaveStatusPending,
	"menunggu":   LeaveStatusPending,
	"approved":   LeaveStatusApproved,
	"approve":    LeaveStatusApproved,
	"disetujui":  LeaveStatusApproved,
	"setujui":    LeaveStatusApproved,
	"rejected":   LeaveStatusRejected,
	"reject":     LeaveStatusRejected,
	"ditolak":    LeaveStatusRejected,
	"tolak":      LeaveStatusRejected,
	"cancelled":  LeaveStatusCancelled,
	"canceled":   LeaveStatusCancelled,
	"cancel":     LeaveStatusCancelled,
	"dibatalkan": LeaveStatusCancelled,
	"batal":      LeaveStatusCancelled,
}

// ParseLeaveStatus folds English and Indonesian status words onto a LeaveStatus
func ParseLeaveStatus(text string) (LeaveStatus, error) {
	key := strings.ToLower(strings.TrimSpace(text))
	if s, ok := leaveStatusWords[key]; ok {
		return s, nil
	}
	// "Menunggu Persetujuan" and similar multi-word forms
	for word, s := range leaveStatusWords {
		if len(word) > 5 && strings.Contains(key, word) {
			return s, nil
		}
	}
	return "", &InvalidValueError{Field: "leave_status", Value: text, Err: ErrInvalidStatus}
}

// IsValid returns true if the status is one of the LeaveStatus constants
func (s LeaveStatus) IsValid() bool {
	switch s {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected, LeaveStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s LeaveStatus) String() string {
	return string(s)
}

var reviewStatusWords = map[string]ReviewStatus{
	"scheduled":   ReviewStatusScheduled,
	"terjadwal":   ReviewStatusScheduled,
	"dijadwalkan": ReviewStatusScheduled,
	"completed":   ReviewStatusCompleted,
	"complete":    ReviewStatusCompleted,
	"selesai":     ReviewStatusCompleted,
	"cancelled":   ReviewStatusCancelled,
	"canceled":    ReviewStatusCancelled,
	"dibatalkan":  ReviewStatusCancelled,
}

// ParseReviewStatus folds English and Indonesian status words onto a ReviewStatus
func ParseReviewStatus(text string) (ReviewStatus, error) {
	if s, ok := reviewStatusWords[strings.ToLower(strings.TrimSpace(text))]; ok {
		return s, nil
	}
	return "", &InvalidValueError{Field: "review_status", Value: text, Err: ErrInvalidStatus}
}

// IsValid returns true if the status is one of the ReviewStatus constants
func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusScheduled, ReviewStatusCompleted, ReviewStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s ReviewStatus) String() string {
	return string(s)
}

var employmentStatusWords = map[string]string{
	"active":      EmploymentStatusActive,
	"aktif":       EmploymentStatusActive,
	"inactive":    EmploymentStatusInactive,
	"nonaktif":    EmploymentStatusInactive,
	"non-aktif":   EmploymentStatusInactive,
	"tidak aktif": EmploymentStatusInactive,
}

// NormalizeEmploymentStatus maps known synonyms onto the canonical employment status.
// Unknown values are returned trimmed so custom statuses such as "Probation" survive.
func NormalizeEmploymentStatus(text string) string {
	trimmed := strings.TrimSpace(text)
	if s, ok := employmentStatusWords[strings.ToLower(trimmed)]; ok {
		return s
	}
	return trimmed
}
