package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/hr-assistant/internal/application/port"
	"github.com/garyjia/hr-assistant/internal/domain/entity"
	"github.com/garyjia/hr-assistant/internal/infrastructure/persistence/sqlite"
)

// ExpenseRepository implements port.ExpenseRepository
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

// InsertExpense stores a new expense claim
func (r *ExpenseRepository) InsertExpense(ctx context.Context, expense *entity.Expense) error {
	query := `
		INSERT INTO expenses (id, employee_id, category, amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		expense.ID,
		expense.EmployeeID,
		expense.Category,
		expense.Amount,
		expense.Status,
		expense.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert expense", zap.String("id", expense.ID), zap.Error(err))
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// ListExpenses returns an employee's expenses, newest first
func (r *ExpenseRepository) ListExpenses(ctx context.Context, employeeID int64) ([]*entity.Expense, error) {
	rows, err := r.getExecutor(ctx).QueryContext(ctx, `
		SELECT id, employee_id, category, amount, status, created_at
		FROM expenses
		WHERE employee_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, employeeID)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Int64("employee_id", employeeID), zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*entity.Expense
	for rows.Next() {
		var e entity.Expense
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Category, &e.Amount, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, &e)
	}
	return expenses, rows.Err()
}

func (r *ExpenseRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.ExpenseRepository = (*ExpenseRepository)(nil)
