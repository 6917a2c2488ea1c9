// Package testutil opens throwaway HR databases for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/hr-assistant/internal/domain/entity"
	"github.com/garyjia/hr-assistant/internal/infrastructure/persistence/repository"
	"github.com/garyjia/hr-assistant/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/hr-assistant/pkg/database"
)

// Fixture employee ids
const (
	SantiID int64 = 1
	BudiID  int64 = 2
	RinaID  int64 = 3
	AndiID  int64 = 4
)

// NewDB returns an empty, migrated database in a temp dir
func NewDB(t testing.TB) (*repository.Store, *sqlite.DB) {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "hr.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Migrate())

	return repository.NewStore(db.DB, logger), sqlite.NewDB(db.DB, logger)
}

// NewSeededDB returns a database holding the standard roster:
// Santi manages Budi and Rina, Rina manages Andi.
func NewSeededDB(t testing.TB) (*repository.Store, *sqlite.DB) {
	t.Helper()
	store, tx := NewDB(t)
	Seed(t, store)
	return store, tx
}

// Seed inserts the standard roster into store
func Seed(t testing.TB, store *repository.Store) {
	t.Helper()
	ctx := context.Background()

	santi, rina := SantiID, RinaID
	employees := []*entity.Employee{
		{ID: SantiID, Name: "Santi Putri", Email: "santi.putri@company.co.id", Title: "HR Manager", Department: "HR", JoinDate: Date("2018-01-15"), Status: entity.EmploymentStatusActive},
		{ID: BudiID, Name: "Budi Santoso", Email: "budi.santoso@company.co.id", Title: "Software Engineer", Department: "Engineering", ManagerID: &santi, JoinDate: Date("2021-03-01"), Status: entity.EmploymentStatusActive},
		{ID: RinaID, Name: "Rina Wijaya", Email: "rina.wijaya@company.co.id", Title: "Product Manager", Department: "Product", ManagerID: &santi, JoinDate: Date("2020-06-15"), Status: entity.EmploymentStatusActive},
		{ID: AndiID, Name: "Andi Pratama", Email: "andi.pratama@company.co.id", Title: "Software Engineer", Department: "Engineering", ManagerID: &rina, JoinDate: Date("2022-02-01"), Status: entity.EmploymentStatusInactive},
	}
	for _, e := range employees {
		require.NoError(t, store.CreateEmployee(ctx, e))
	}

	balances := []entity.LeaveBalance{
		{EmployeeID: SantiID, LeaveType: entity.LeaveTypeAnnual, RemainingDays: 15},
		{EmployeeID: SantiID, LeaveType: entity.LeaveTypeSick, RemainingDays: 12},
		{EmployeeID: BudiID, LeaveType: entity.LeaveTypeAnnual, RemainingDays: 12},
		{EmployeeID: BudiID, LeaveType: entity.LeaveTypeSick, RemainingDays: 10},
		{EmployeeID: RinaID, LeaveType: entity.LeaveTypeAnnual, RemainingDays: 8},
		{EmployeeID: RinaID, LeaveType: entity.LeaveTypeMaternity, RemainingDays: 90},
	}
	for _, b := range balances {
		require.NoError(t, store.SetLeaveBalance(ctx, b.EmployeeID, b.LeaveType, b.RemainingDays))
	}

	requests := []*entity.LeaveRequest{
		{ID: "LR001", EmployeeID: BudiID, LeaveType: entity.LeaveTypeAnnual, StartDate: Date("2025-08-01"), EndDate: Date("2025-08-02"), Status: entity.LeaveStatusApproved},
		{ID: "LR002", EmployeeID: RinaID, LeaveType: entity.LeaveTypeSick, StartDate: Date("2025-09-10"), EndDate: Date("2025-09-10"), Status: entity.LeaveStatusCancelled},
		{ID: "LR003", EmployeeID: BudiID, LeaveType: entity.LeaveTypeAnnual, StartDate: Date("2025-11-10"), EndDate: Date("2025-11-11"), Status: entity.LeaveStatusPending},
		{ID: "LR004", EmployeeID: RinaID, LeaveType: entity.LeaveTypeAnnual, StartDate: Date("2025-12-01"), EndDate: Date("2025-12-03"), Status: entity.LeaveStatusRejected},
	}
	for _, r := range requests {
		require.NoError(t, store.InsertLeaveRequest(ctx, r))
	}

	reviews := []*entity.PerformanceReview{
		{ID: "REV-001", EmployeeID: BudiID, ReviewerID: SantiID, ReviewDate: Date("2025-10-20"), Status: entity.ReviewStatusScheduled},
		{ID: "REV-002", EmployeeID: RinaID, ReviewerID: SantiID, ReviewDate: Date("2025-06-01"), Score: 88, Status: entity.ReviewStatusCompleted},
		{ID: "REV-003", EmployeeID: BudiID, ReviewerID: SantiID, ReviewDate: Date("2025-04-01"), Status: entity.ReviewStatusCancelled},
	}
	for _, r := range reviews {
		require.NoError(t, store.InsertPerformanceReview(ctx, r))
	}
}

// Date parses a YYYY-MM-DD literal and panics on malformed input
func Date(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}
