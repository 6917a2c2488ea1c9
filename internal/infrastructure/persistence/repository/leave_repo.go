package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/hr-assistant/internal/application/port"
	"github.com/garyjia/hr-assistant/internal/domain/entity"
	"github.com/garyjia/hr-assistant/internal/infrastructure/persistence/sqlite"
)

const leaveRequestColumns = `id, employee_id, leave_type, start_date, end_date, status`

// LeaveRepository implements port.LeaveRepository
type LeaveRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLeaveRepository creates a new leave repository
func NewLeaveRepository(db *sql.DB, logger *zap.Logger) *LeaveRepository {
	return &LeaveRepository{
		db:     db,
		logger: logger,
	}
}

// LeaveBalance returns the remaining days, 0 when no row exists
func (r *LeaveRepository) LeaveBalance(ctx context.Context, employeeID int64, leaveType entity.LeaveType) (int, error) {
	if !leaveType.IsValid() {
		return 0, &entity.InvalidValueError{Field: "leave_type", Value: string(leaveType), Err: entity.ErrInvalidLeaveType}
	}

	var days int
	err := r.getExecutor(ctx).QueryRowContext(ctx,
		`SELECT remaining_days FROM leave_balances WHERE employee_id = ? AND leave_type = ?`,
		employeeID, leaveType,
	).Scan(&days)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		r.logger.Error("Failed to get leave balance",
			zap.Int64("employee_id", employeeID), zap.String("leave_type", leaveType.String()), zap.Error(err))
		return 0, fmt.Errorf("failed to get leave balance: %w", err)
	}
	return days, nil
}

// SetLeaveBalance creates or overwrites a balance row
func (r *LeaveRepository) SetLeaveBalance(ctx context.Context, employeeID int64, leaveType entity.LeaveType, days int) error {
	if !leaveType.IsValid() {
		return &entity.InvalidValueError{Field: "leave_type", Value: string(leaveType), Err: entity.ErrInvalidLeaveType}
	}
	if days < 0 {
		return &entity.InvalidValueError{Field: "remaining_days", Value: fmt.Sprint(days), Err: entity.ErrNegativeBalance}
	}

	query := `
		INSERT INTO leave_balances (employee_id, leave_type, remaining_days)
		VALUES (?, ?, ?)
		ON CONFLICT (employee_id, leave_type) DO UPDATE SET remaining_days = excluded.remaining_days
	`
	if _, err := r.getExecutor(ctx).ExecContext(ctx, query, employeeID, leaveType, days); err != nil {
		r.logger.Error("Failed to set leave balance",
			zap.Int64("employee_id", employeeID), zap.String("leave_type", leaveType.String()), zap.Error(err))
		return fmt.Errorf("failed to set leave balance: %w", err)
	}
	return nil
}

// DebitLeaveBalance subtracts days in a single conditional statement so a
// concurrent debit can never drive the balance below zero
func (r *LeaveRepository) DebitLeaveBalance(ctx context.Context, employeeID int64, leaveType entity.LeaveType, days int) (int, error) {
	if !leaveType.IsValid() {
		return 0, &entity.InvalidValueError{Field: "leave_type", Value: string(leaveType), Err: entity.ErrInvalidLeaveType}
	}
	if days <= 0 {
		return 0, &entity.InvalidValueError{Field: "days", Value: fmt.Sprint(days), Err: entity.ErrNegativeBalance}
	}

	exec := r.getExecutor(ctx)
	result, err := exec.ExecContext(ctx, `
		UPDATE leave_balances
		SET remaining_days = remaining_days - ?
		WHERE employee_id = ? AND leave_type = ? AND remaining_days >= ?
	`, days, employeeID, leaveType, days)
	if err != nil {
		r.logger.Error("Failed to debit leave balance",
			zap.Int64("employee_id", employeeID), zap.Int("days", days), zap.Error(err))
		return 0, fmt.Errorf("failed to debit leave balance: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return 0, port.ErrInsufficientBalance
	}
	return r.LeaveBalance(ctx, employeeID, leaveType)
}

// ListLeaveBalances returns every balance row ordered by employee and type
func (r *LeaveRepository) ListLeaveBalances(ctx context.Context) ([]*entity.LeaveBalance, error) {
	rows, err := r.getExecutor(ctx).QueryContext(ctx, `
		SELECT employee_id, leave_type, remaining_days
		FROM leave_balances
		ORDER BY employee_id,
			CASE leave_type WHEN 'Annual' THEN 0 WHEN 'Sick' THEN 1 ELSE 2 END
	`)
	if err != nil {
		r.logger.Error("Failed to list leave balances", zap.Error(err))
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	var balances []*entity.LeaveBalance
	for rows.Next() {
		var b entity.LeaveBalance
		if err := rows.Scan(&b.EmployeeID, &b.LeaveType, &b.RemainingDays); err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balances = append(balances, &b)
	}
	return balances, rows.Err()
}

// InsertLeaveRequest stores a new leave request
func (r *LeaveRepository) InsertLeaveRequest(ctx context.Context, req *entity.LeaveRequest) error {
	if !req.LeaveType.IsValid() {
		return &entity.InvalidValueError{Field: "leave_type", Value: string(req.LeaveType), Err: entity.ErrInvalidLeaveType}
	}
	if !req.Status.IsValid() {
		return &entity.InvalidValueError{Field: "status", Value: string(req.Status), Err: entity.ErrInvalidStatus}
	}

	query := `
		INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		req.ID,
		req.EmployeeID,
		req.LeaveType,
		req.StartDate.Format(time.DateOnly),
		req.EndDate.Format(time.DateOnly),
		req.Status,
	)
	if err != nil {
		r.logger.Error("Failed to insert leave request", zap.String("id", req.ID), zap.Error(err))
		return fmt.Errorf("failed to insert leave request: %w", err)
	}
	return nil
}

// LatestLeaveStatus returns the status of the request with the latest start date
func (r *LeaveRepository) LatestLeaveStatus(ctx context.Context, employeeID int64) (string, error) {
	return r.status(ctx, `
		SELECT status FROM leave_requests
		WHERE employee_id = ?
		ORDER BY start_date DESC, created_at DESC, rowid DESC
		LIMIT 1
	`, employeeID)
}

// LeaveStatusByID returns the status of one request
func (r *LeaveRepository) LeaveStatusByID(ctx context.Context, leaveID string) (string, error) {
	return r.status(ctx, `SELECT status FROM leave_requests WHERE id = ?`, leaveID)
}

func (r *LeaveRepository) status(ctx context.Context, query string, arg any) (string, error) {
	var status string
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, arg).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.StatusNotFound, nil
	}
	if err != nil {
		r.logger.Error("Failed to get leave status", zap.Any("key", arg), zap.Error(err))
		return "", fmt.Errorf("failed to get leave status: %w", err)
	}
	return status, nil
}

// GetLeaveRequest retrieves a leave request by ID
func (r *LeaveRepository) GetLeaveRequest(ctx context.Context, leaveID string) (*entity.LeaveRequest, error) {
	req, err := scanLeaveRequest(r.getExecutor(ctx).QueryRowContext(ctx,
		`SELECT `+leaveRequestColumns+` FROM leave_requests WHERE id = ?`, leaveID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get leave request", zap.String("id", leaveID), zap.Error(err))
		return nil, fmt.Errorf("failed to get leave request: %w", err)
	}
	return req, nil
}

// SetLeaveStatus overwrites the status of a request
func (r *LeaveRepository) SetLeaveStatus(ctx context.Context, leaveID string, status entity.LeaveStatus) error {
	if !status.IsValid() {
		return &entity.InvalidValueError{Field: "status", Value: string(status), Err: entity.ErrInvalidStatus}
	}
	result, err := r.getExecutor(ctx).ExecContext(ctx, `UPDATE leave_requests SET status = ? WHERE id = ?`, status, leaveID)
	if err != nil {
		r.logger.Error("Failed to set leave status", zap.String("id", leaveID), zap.String("status", status.String()), zap.Error(err))
		return fmt.Errorf("failed to set leave status: %w", err)
	}
	return requireAffected(result, "leave request "+leaveID)
}

// CancelLeave cancels a Pending or Approved request
func (r *LeaveRepository) CancelLeave(ctx context.Context, leaveID string) error {
	result, err := r.getExecutor(ctx).ExecContext(ctx, `
		UPDATE leave_requests SET status = ?
		WHERE id = ? AND status IN (?, ?)
	`, entity.LeaveStatusCancelled, leaveID, entity.LeaveStatusPending, entity.LeaveStatusApproved)
	if err != nil {
		r.logger.Error("Failed to cancel leave", zap.String("id", leaveID), zap.Error(err))
		return fmt.Errorf("failed to cancel leave: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	status, err := r.LeaveStatusByID(ctx, leaveID)
	if err != nil {
		return err
	}
	if status == entity.StatusNotFound {
		return fmt.Errorf("leave request %s: %w", leaveID, port.ErrNotFound)
	}
	return fmt.Errorf("leave request %s is %s: %w", leaveID, status, port.ErrStatusConflict)
}

// ListPendingLeave returns pending requests ordered by start date
func (r *LeaveRepository) ListPendingLeave(ctx context.Context) ([]*entity.LeaveRequest, error) {
	return r.list(ctx, `SELECT `+leaveRequestColumns+` FROM leave_requests
		WHERE status = ? ORDER BY start_date, id`, entity.LeaveStatusPending)
}

// LeaveHistory returns an employee's requests, latest start date first
func (r *LeaveRepository) LeaveHistory(ctx context.Context, employeeID int64) ([]*entity.LeaveRequest, error) {
	return r.list(ctx, `SELECT `+leaveRequestColumns+` FROM leave_requests
		WHERE employee_id = ? ORDER BY start_date DESC, created_at DESC, rowid DESC`, employeeID)
}

func (r *LeaveRepository) list(ctx context.Context, query string, args ...any) ([]*entity.LeaveRequest, error) {
	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list leave requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.LeaveRequest
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *LeaveRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

func scanLeaveRequest(row rowScanner) (*entity.LeaveRequest, error) {
	var req entity.LeaveRequest
	var start, end string
	if err := row.Scan(&req.ID, &req.EmployeeID, &req.LeaveType, &start, &end, &req.Status); err != nil {
		return nil, err
	}

	var err error
	if req.StartDate, err = parseDate(start); err != nil {
		return nil, fmt.Errorf("leave request %s start date: %w", req.ID, err)
	}
	if req.EndDate, err = parseDate(end); err != nil {
		return nil, fmt.Errorf("leave request %s end date: %w", req.ID, err)
	}
	return &req, nil
}

// Verify interface compliance
var _ port.LeaveRepository = (*LeaveRepository)(nil)
