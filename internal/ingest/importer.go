// Package ingest loads seed HR records from CSV files or an XLSX workbook and
// exports leave balances as a workbook.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/hr-assistant/internal/application/port"
)

// Dataset names one kind of seed record. It is also the CSV base name and the sheet name.
type Dataset string

const (
	Employees          Dataset = "employees"
	LeaveBalances      Dataset = "leave_balances"
	LeaveRequests      Dataset = "leave_requests"
	PerformanceReviews Dataset = "performance_reviews"
)

// Datasets lists the seed datasets in load order
var Datasets = []Dataset{Employees, LeaveBalances, LeaveRequests, PerformanceReviews}

// Result counts the records loaded per dataset
type Result struct {
	Counts map[Dataset]int
}

// Total returns the number of records loaded across all datasets
func (r *Result) Total() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

// Importer loads seed records into the entity store
type Importer struct {
	store     port.EntityStore
	txManager port.TransactionManager
	logger    *zap.Logger
}

// NewImporter creates a new Importer
func NewImporter(store port.EntityStore, txManager port.TransactionManager, logger *zap.Logger) *Importer {
	return &Importer{
		store:     store,
		txManager: txManager,
		logger:    logger,
	}
}

// ImportDir loads <dataset>.csv files from dir in a single transaction.
// Missing files are skipped; employees.csv is required.
func (im *Importer) ImportDir(ctx context.Context, dir string) (*Result, error) {
	tables := make(map[Dataset][][]string)
	for _, ds := range Datasets {
		path := filepath.Join(dir, string(ds)+".csv")
		rows, err := readCSVFile(path)
		if errors.Is(err, os.ErrNotExist) {
			if ds == Employees {
				return nil, fmt.Errorf("failed to import %s: %w", dir, err)
			}
			im.logger.Info("Seed file not found, skipping", zap.String("path", path))
			continue
		}
		if err != nil {
			return nil, err
		}
		tables[ds] = rows
	}
	return im.load(ctx, tables)
}

// ImportCSV loads a single dataset from r
func (im *Importer) ImportCSV(ctx context.Context, ds Dataset, r io.Reader) (*Result, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s csv: %w", ds, err)
	}
	return im.load(ctx, map[Dataset][][]string{ds: rows})
}

// ImportWorkbook loads every sheet named after a dataset in a single transaction
func (im *Importer) ImportWorkbook(ctx context.Context, path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	tables := make(map[Dataset][][]string)
	for _, sheet := range f.GetSheetList() {
		ds := Dataset(normalizeHeader(sheet))
		if _, ok := columnSets[ds]; !ok {
			im.logger.Info("Ignoring unknown sheet", zap.String("sheet", sheet))
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		tables[ds] = rows
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("workbook %s has no seed sheets", path)
	}
	return im.load(ctx, tables)
}

func (im *Importer) load(ctx context.Context, tables map[Dataset][][]string) (*Result, error) {
	result := &Result{Counts: make(map[Dataset]int)}

	err := im.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		for _, ds := range Datasets {
			rows, ok := tables[ds]
			if !ok {
				continue
			}
			n, err := im.loadTable(ctx, ds, rows)
			if err != nil {
				return err
			}
			result.Counts[ds] = n
		}
		return nil
	})
	if err != nil {
		im.logger.Error("Failed to import seed data", zap.Error(err))
		return nil, err
	}

	im.logger.Info("Seed data imported",
		zap.Int("employees", result.Counts[Employees]),
		zap.Int("leave_balances", result.Counts[LeaveBalances]),
		zap.Int("leave_requests", result.Counts[LeaveRequests]),
		zap.Int("performance_reviews", result.Counts[PerformanceReviews]))
	return result, nil
}

func (im *Importer) loadTable(ctx context.Context, ds Dataset, rows [][]string) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	cols, err := newColumns(ds, rows[0])
	if err != nil {
		return 0, err
	}

	n := 0
	for i, raw := range rows[1:] {
		if isBlank(raw) {
			continue
		}
		// line numbers count the header as line 1
		row := record{cols: cols, values: raw}
		if err := im.insert(ctx, ds, row); err != nil {
			return n, &RowError{Dataset: ds, Line: i + 2, Err: err}
		}
		n++
	}
	return n, nil
}

func (im *Importer) insert(ctx context.Context, ds Dataset, row record) error {
	switch ds {
	case Employees:
		emp, err := row.employee()
		if err != nil {
			return err
		}
		return im.store.CreateEmployee(ctx, emp)
	case LeaveBalances:
		b, err := row.leaveBalance()
		if err != nil {
			return err
		}
		return im.store.SetLeaveBalance(ctx, b.EmployeeID, b.LeaveType, b.RemainingDays)
	case LeaveRequests:
		req, err := row.leaveRequest()
		if err != nil {
			return err
		}
		return im.store.InsertLeaveRequest(ctx, req)
	case PerformanceReviews:
		review, err := row.review()
		if err != nil {
			return err
		}
		return im.store.InsertPerformanceReview(ctx, review)
	}
	return fmt.Errorf("unknown dataset %q", ds)
}

// RowError locates a rejected seed row
type RowError struct {
	Dataset Dataset
	Line    int
	Err     error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s line %d: %v", e.Dataset, e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
