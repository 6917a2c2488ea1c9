package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/hr-assistant/internal/application/port"
	"github.com/garyjia/hr-assistant/internal/domain/entity"
	"github.com/garyjia/hr-assistant/internal/infrastructure/persistence/sqlite"
)

const employeeColumns = `id, name, email, title, department, manager_id, join_date, status`

// EmployeeRepository implements port.EmployeeRepository
type EmployeeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *sql.DB, logger *zap.Logger) *EmployeeRepository {
	return &EmployeeRepository{
		db:     db,
		logger: logger,
	}
}

// FindEmployeeByName returns the first employee, by id, whose name contains text
func (r *EmployeeRepository) FindEmployeeByName(ctx context.Context, text string) (*entity.Employee, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	query := `SELECT ` + employeeColumns + ` FROM employees
		WHERE instr(LOWER(name), LOWER(?)) > 0
		ORDER BY id
		LIMIT 1`

	emp, err := scanEmployee(r.getExecutor(ctx).QueryRowContext(ctx, query, text))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find employee by name", zap.String("name", text), zap.Error(err))
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	return emp, nil
}

// FindEmployeeByID retrieves an employee by ID
func (r *EmployeeRepository) FindEmployeeByID(ctx context.Context, id int64) (*entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = ?`

	emp, err := scanEmployee(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get employee by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// ManagerOf resolves the employee's manager
func (r *EmployeeRepository) ManagerOf(ctx context.Context, emp *entity.Employee) (*entity.Employee, error) {
	if emp == nil || !emp.HasManager() {
		return nil, nil
	}
	return r.FindEmployeeByID(ctx, *emp.ManagerID)
}

// ListEmployees returns the full roster ordered by id
func (r *EmployeeRepository) ListEmployees(ctx context.Context) ([]*entity.Employee, error) {
	return r.list(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id`)
}

// ListEmployeesByDepartment matches the department case-insensitively
func (r *EmployeeRepository) ListEmployeesByDepartment(ctx context.Context, department string) ([]*entity.Employee, error) {
	return r.list(ctx, `SELECT `+employeeColumns+` FROM employees WHERE LOWER(department) = LOWER(?) ORDER BY id`,
		strings.TrimSpace(department))
}

// ListEmployeesByTitle matches the title case-insensitively
func (r *EmployeeRepository) ListEmployeesByTitle(ctx context.Context, title string) ([]*entity.Employee, error) {
	return r.list(ctx, `SELECT `+employeeColumns+` FROM employees WHERE LOWER(title) = LOWER(?) ORDER BY id`,
		strings.TrimSpace(title))
}

// ListEmployeesByStatus matches the employment status case-insensitively
func (r *EmployeeRepository) ListEmployeesByStatus(ctx context.Context, status string) ([]*entity.Employee, error) {
	return r.list(ctx, `SELECT `+employeeColumns+` FROM employees WHERE LOWER(status) = LOWER(?) ORDER BY id`,
		strings.TrimSpace(status))
}

// NextEmployeeID returns the id a newly created employee should take
func (r *EmployeeRepository) NextEmployeeID(ctx context.Context) (int64, error) {
	var next int64
	err := r.getExecutor(ctx).QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM employees`).Scan(&next)
	if err != nil {
		r.logger.Error("Failed to compute next employee id", zap.Error(err))
		return 0, fmt.Errorf("failed to compute next employee id: %w", err)
	}
	return next, nil
}

// CreateEmployee inserts an employee with a caller-assigned id
func (r *EmployeeRepository) CreateEmployee(ctx context.Context, emp *entity.Employee) error {
	query := `
		INSERT INTO employees (id, name, email, title, department, manager_id, join_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var managerID sql.NullInt64
	if emp.HasManager() {
		managerID = sql.NullInt64{Int64: *emp.ManagerID, Valid: true}
	}

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		emp.ID,
		emp.Name,
		emp.Email,
		emp.Title,
		emp.Department,
		managerID,
		emp.JoinDate.Format(time.DateOnly),
		emp.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create employee", zap.Int64("id", emp.ID), zap.Error(err))
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// UpdateEmployeeFields moves an employee to a new department and/or title
func (r *EmployeeRepository) UpdateEmployeeFields(ctx context.Context, id int64, department, title string) error {
	query := `
		UPDATE employees
		SET department = COALESCE(NULLIF(?, ''), department),
			title = COALESCE(NULLIF(?, ''), title)
		WHERE id = ?
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, strings.TrimSpace(department), strings.TrimSpace(title), id)
	if err != nil {
		r.logger.Error("Failed to update employee", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update employee: %w", err)
	}
	return requireAffected(result, "employee")
}

// UpdateEmployeeStatus sets the employment status
func (r *EmployeeRepository) UpdateEmployeeStatus(ctx context.Context, id int64, status string) error {
	result, err := r.getExecutor(ctx).ExecContext(ctx, `UPDATE employees SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		r.logger.Error("Failed to update employee status", zap.Int64("id", id), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("failed to update employee status: %w", err)
	}
	return requireAffected(result, "employee")
}

func (r *EmployeeRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Employee, error) {
	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list employees", zap.Error(err))
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []*entity.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (r *EmployeeRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*entity.Employee, error) {
	var emp entity.Employee
	var managerID sql.NullInt64
	var joinDate string

	if err := row.Scan(
		&emp.ID,
		&emp.Name,
		&emp.Email,
		&emp.Title,
		&emp.Department,
		&managerID,
		&joinDate,
		&emp.Status,
	); err != nil {
		return nil, err
	}

	if managerID.Valid && managerID.Int64 != emp.ID {
		id := managerID.Int64
		emp.ManagerID = &id
	}

	d, err := parseDate(joinDate)
	if err != nil {
		return nil, fmt.Errorf("employee %d join date: %w", emp.ID, err)
	}
	emp.JoinDate = d
	return &emp, nil
}

// parseDate accepts the stored YYYY-MM-DD form and tolerates driver timestamps
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if len(s) > len(time.DateOnly) {
		s = s[:len(time.DateOnly)]
	}
	return time.Parse(time.DateOnly, s)
}

// requireAffected maps a zero-row update onto port.ErrNotFound
func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, port.ErrNotFound)
	}
	return nil
}

// Verify interface compliance
var _ port.EmployeeRepository = (*EmployeeRepository)(nil)
