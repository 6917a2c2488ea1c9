package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/hr-assistant/internal/application/port"
	"github.com/garyjia/hr-assistant/internal/domain/entity"
)

// BalanceSheet is the sheet name of the leave balance export
const BalanceSheet = "Leave Balances"

// Exporter writes leave balances as a workbook
type Exporter struct {
	store  port.EntityStore
	logger *zap.Logger
}

// NewExporter creates a new Exporter
func NewExporter(store port.EntityStore, logger *zap.Logger) *Exporter {
	return &Exporter{store: store, logger: logger}
}

// ExportLeaveBalances writes one row per employee with a column per leave type
func (ex *Exporter) ExportLeaveBalances(ctx context.Context, w io.Writer) (int, error) {
	employees, err := ex.store.ListEmployees(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list employees: %w", err)
	}
	balances, err := ex.store.ListLeaveBalances(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list leave balances: %w", err)
	}

	byEmployee := make(map[int64]map[entity.LeaveType]int)
	for _, b := range balances {
		if byEmployee[b.EmployeeID] == nil {
			byEmployee[b.EmployeeID] = make(map[entity.LeaveType]int)
		}
		byEmployee[b.EmployeeID][b.LeaveType] = b.RemainingDays
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", BalanceSheet); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{"Employee ID", "Name", "Department", "Status"}
	for _, lt := range entity.LeaveTypes {
		header = append(header, lt.String())
	}
	if err := f.SetSheetRow(BalanceSheet, "A1", &header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}
	ex.styleHeader(f, len(header))

	for i, emp := range employees {
		row := []interface{}{emp.ID, emp.Name, emp.Department, emp.Status}
		for _, lt := range entity.LeaveTypes {
			row = append(row, byEmployee[emp.ID][lt])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(BalanceSheet, cell, &row); err != nil {
			return 0, fmt.Errorf("failed to write row for employee %d: %w", emp.ID, err)
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}

	ex.logger.Info("Leave balances exported", zap.Int("employees", len(employees)))
	return len(employees), nil
}

// styleHeader bolds the header row; a failure only costs formatting
func (ex *Exporter) styleHeader(f *excelize.File, columns int) {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		ex.logger.Warn("Failed to create header style", zap.Error(err))
		return
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return
	}
	if err := f.SetCellStyle(BalanceSheet, "A1", last, style); err != nil {
		ex.logger.Warn("Failed to style header", zap.Error(err))
	}
}
