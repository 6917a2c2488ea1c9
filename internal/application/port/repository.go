package port

import (
	"context"

	"github.com/garyjia/hr-assistant/internal/domain/entity"
)

// EmployeeRepository defines persistence operations for Employee.
// Lookups return nil, nil when no employee matches.
type EmployeeRepository interface {
	// FindEmployeeByName returns the lowest-id employee whose name contains text, case-insensitively
	FindEmployeeByName(ctx context.Context, text string) (*entity.Employee, error)

	FindEmployeeByID(ctx context.Context, id int64) (*entity.Employee, error)

	// ManagerOf returns nil when the employee has no manager or the manager row is missing
	ManagerOf(ctx context.Context, emp *entity.Employee) (*entity.Employee, error)

	// ListEmployees returns every employee ordered by id
	ListEmployees(ctx context.Context) ([]*entity.Employee, error)

	ListEmployeesByDepartment(ctx context.Context, department string) ([]*entity.Employee, error)
	ListEmployeesByTitle(ctx context.Context, title string) ([]*entity.Employee, error)
	ListEmployeesByStatus(ctx context.Context, status string) ([]*entity.Employee, error)

	// NextEmployeeID returns max(id)+1, or 1 for an empty roster
	NextEmployeeID(ctx context.Context) (int64, error)

	CreateEmployee(ctx context.Context, emp *entity.Employee) error

	// UpdateEmployeeFields overwrites department and title; empty values keep the stored value
	UpdateEmployeeFields(ctx context.Context, id int64, department, title string) error

	UpdateEmployeeStatus(ctx context.Context, id int64, status string) error
}

// LeaveRepository defines persistence operations for leave balances and requests
type LeaveRepository interface {
	// LeaveBalance returns 0 when no balance row exists
	LeaveBalance(ctx context.Context, employeeID int64, leaveType entity.LeaveType) (int, error)

	// SetLeaveBalance creates or overwrites the balance row
	SetLeaveBalance(ctx context.Context, employeeID int64, leaveType entity.LeaveType, days int) error

	// DebitLeaveBalance subtracts days only if the balance covers them and returns the new balance.
	// It returns ErrInsufficientBalance without mutating anything otherwise.
	DebitLeaveBalance(ctx context.Context, employeeID int64, leaveType entity.LeaveType, days int) (int, error)

	ListLeaveBalances(ctx context.Context) ([]*entity.LeaveBalance, error)

	InsertLeaveRequest(ctx context.Context, req *entity.LeaveRequest) error

	// LatestLeaveStatus returns the status of the request with the latest start date,
	// or entity.StatusNotFound
	LatestLeaveStatus(ctx context.Context, employeeID int64) (string, error)

	// LeaveStatusByID returns entity.StatusNotFound for unknown ids
	LeaveStatusByID(ctx context.Context, leaveID string) (string, error)

	GetLeaveRequest(ctx context.Context, leaveID string) (*entity.LeaveRequest, error)

	// SetLeaveStatus returns ErrNotFound for unknown ids
	SetLeaveStatus(ctx context.Context, leaveID string, status entity.LeaveStatus) error

	// CancelLeave cancels a Pending or Approved request. Terminal requests are left
	// untouched and ErrStatusConflict is returned.
	CancelLeave(ctx context.Context, leaveID string) error

	// ListPendingLeave returns pending requests ordered by start date
	ListPendingLeave(ctx context.Context) ([]*entity.LeaveRequest, error)

	// LeaveHistory returns the employee's requests, latest start date first
	LeaveHistory(ctx context.Context, employeeID int64) ([]*entity.LeaveRequest, error)
}

// ReviewRepository defines persistence operations for PerformanceReview
type ReviewRepository interface {
	InsertPerformanceReview(ctx context.Context, review *entity.PerformanceReview) error
	GetPerformanceReview(ctx context.Context, reviewID string) (*entity.PerformanceReview, error)

	// UpdateReviewScore records the score and completes the review
	UpdateReviewScore(ctx context.Context, reviewID string, score int) error

	// CancelReview cancels a Scheduled review; others yield ErrStatusConflict
	CancelReview(ctx context.Context, reviewID string) error

	// SubmitReview writes score and status unconditionally
	SubmitReview(ctx context.Context, reviewID string, score int, status entity.ReviewStatus) error

	// ScheduledReviews returns Scheduled reviews, earliest first
	ScheduledReviews(ctx context.Context) ([]*entity.PerformanceReview, error)

	// ReviewHistory returns the employee's reviews, latest first
	ReviewHistory(ctx context.Context, employeeID int64) ([]*entity.PerformanceReview, error)
}

// ExpenseRepository defines persistence operations for Expense
type ExpenseRepository interface {
	InsertExpense(ctx context.Context, expense *entity.Expense) error
	ListExpenses(ctx context.Context, employeeID int64) ([]*entity.Expense, error)
}

// EntityStore is the single record-access facade the assistant core depends on
type EntityStore interface {
	EmployeeRepository
	LeaveRepository
	ReviewRepository
	ExpenseRepository
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
