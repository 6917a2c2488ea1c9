package repository

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/garyjia/hr-assistant/internal/application/port"
)

// Store bundles the repositories behind the port.EntityStore facade
type Store struct {
	*EmployeeRepository
	*LeaveRepository
	*ReviewRepository
	*ExpenseRepository
}

// NewStore creates every repository over the same database handle
func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	return &Store{
		EmployeeRepository: NewEmployeeRepository(db, logger),
		LeaveRepository:    NewLeaveRepository(db, logger),
		ReviewRepository:   NewReviewRepository(db, logger),
		ExpenseRepository:  NewExpenseRepository(db, logger),
	}
}

// Verify interface compliance
var _ port.EntityStore = (*Store)(nil)
