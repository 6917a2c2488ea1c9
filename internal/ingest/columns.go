package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/hr-assistant/internal/domain/entity"
	"github.com/garyjia/hr-assistant/pkg/utils"
)

var (
	// ErrMissingColumn is returned when a header lacks a required column
	ErrMissingColumn = errors.New("missing column")

	// ErrInvalidValue is returned for a cell that cannot be converted
	ErrInvalidValue = errors.New("invalid value")
)

// column is a canonical field name plus the header spellings that map onto it
type column struct {
	name     string
	aliases  []string
	required bool
}

var columnSets = map[Dataset][]column{
	Employees: {
		{name: "id", aliases: []string{"id_karyawan", "employee_id"}, required: true},
		{name: "name", aliases: []string{"nama"}, required: true},
		{name: "email"},
		{name: "title", aliases: []string{"jabatan", "position"}},
		{name: "department", aliases: []string{"departemen"}},
		{name: "manager_id", aliases: []string{"id_manajer"}},
		{name: "join_date", aliases: []string{"tanggal_bergabung"}},
		{name: "status", aliases: []string{"status_karyawan"}},
	},
	LeaveBalances: {
		{name: "employee_id", aliases: []string{"id_karyawan"}, required: true},
		{name: "leave_type", aliases: []string{"tipe_cuti", "jenis_cuti"}, required: true},
		{name: "remaining_days", aliases: []string{"sisa_hari", "sisa_cuti"}, required: true},
	},
	LeaveRequests: {
		{name: "id", aliases: []string{"id_request", "id_cuti", "leave_id"}, required: true},
		{name: "employee_id", aliases: []string{"id_karyawan"}, required: true},
		{name: "leave_type", aliases: []string{"tipe_cuti", "jenis_cuti"}, required: true},
		{name: "start_date", aliases: []string{"tanggal_mulai"}, required: true},
		{name: "end_date", aliases: []string{"tanggal_selesai"}},
		{name: "status", aliases: []string{"status_request", "status_cuti"}, required: true},
	},
	PerformanceReviews: {
		{name: "id", aliases: []string{"id_review", "review_id"}, required: true},
		{name: "employee_id", aliases: []string{"id_karyawan"}, required: true},
		{name: "reviewer_id", aliases: []string{"id_reviewer"}, required: true},
		{name: "review_date", aliases: []string{"tanggal_review"}, required: true},
		{name: "score", aliases: []string{"skor_performa", "skor"}},
		{name: "status", aliases: []string{"status_review"}, required: true},
	},
}

// columns maps canonical field names to cell positions
type columns map[string]int

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

func newColumns(ds Dataset, header []string) (columns, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		positions[normalizeHeader(h)] = i
	}

	cols := make(columns)
	for _, c := range columnSets[ds] {
		for _, name := range append([]string{c.name}, c.aliases...) {
			if i, ok := positions[name]; ok {
				cols[c.name] = i
				break
			}
		}
		if _, ok := cols[c.name]; !ok && c.required {
			return nil, fmt.Errorf("%s: %w %q", ds, ErrMissingColumn, c.name)
		}
	}
	return cols, nil
}

// record is one data row read through its header
type record struct {
	cols   columns
	values []string
}

func (r record) text(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

func invalid(name, value string) error {
	return fmt.Errorf("%w for %s: %q", ErrInvalidValue, name, value)
}

func (r record) int64Value(name string) (int64, error) {
	s := r.text(name)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, invalid(name, s)
	}
	return n, nil
}

func (r record) intValue(name string) (int, error) {
	n, err := r.int64Value(name)
	return int(n), err
}

var dateLayouts = []string{time.DateOnly, "1/2/2006", "2006/01/02"}

func (r record) date(name string) (time.Time, error) {
	s := r.text(name)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, invalid(name, s)
}

func (r record) leaveType() (entity.LeaveType, error) {
	return entity.ParseLeaveType(r.text("leave_type"))
}

func (r record) employee() (*entity.Employee, error) {
	id, err := r.int64Value("id")
	if err != nil {
		return nil, err
	}
	emp := &entity.Employee{
		ID:         id,
		Name:       r.text("name"),
		Email:      r.text("email"),
		Title:      r.text("title"),
		Department: r.text("department"),
		Status:     entity.NormalizeEmploymentStatus(r.text("status")),
	}
	if emp.Name == "" {
		return nil, invalid("name", "")
	}
	if emp.Email != "" {
		if err := utils.ValidateEmail(emp.Email); err != nil {
			return nil, invalid("email", emp.Email)
		}
	}
	if emp.Status == "" {
		emp.Status = entity.EmploymentStatusActive
	}
	if r.text("manager_id") != "" {
		managerID, err := r.int64Value("manager_id")
		if err != nil {
			return nil, err
		}
		emp.ManagerID = &managerID
	}
	if r.text("join_date") != "" {
		if emp.JoinDate, err = r.date("join_date"); err != nil {
			return nil, err
		}
	}
	return emp, nil
}

func (r record) leaveBalance() (*entity.LeaveBalance, error) {
	employeeID, err := r.int64Value("employee_id")
	if err != nil {
		return nil, err
	}
	leaveType, err := r.leaveType()
	if err != nil {
		return nil, err
	}
	days, err := r.intValue("remaining_days")
	if err != nil {
		return nil, err
	}
	if days < 0 {
		return nil, entity.ErrNegativeBalance
	}
	return &entity.LeaveBalance{EmployeeID: employeeID, LeaveType: leaveType, RemainingDays: days}, nil
}

func (r record) leaveRequest() (*entity.LeaveRequest, error) {
	employeeID, err := r.int64Value("employee_id")
	if err != nil {
		return nil, err
	}
	leaveType, err := r.leaveType()
	if err != nil {
		return nil, err
	}
	start, err := r.date("start_date")
	if err != nil {
		return nil, err
	}
	end := start
	if r.text("end_date") != "" {
		if end, err = r.date("end_date"); err != nil {
			return nil, err
		}
	}
	status, err := entity.ParseLeaveStatus(r.text("status"))
	if err != nil {
		return nil, err
	}
	return &entity.LeaveRequest{
		ID:         r.text("id"),
		EmployeeID: employeeID,
		LeaveType:  leaveType,
		StartDate:  start,
		EndDate:    end,
		Status:     status,
	}, nil
}

func (r record) review() (*entity.PerformanceReview, error) {
	employeeID, err := r.int64Value("employee_id")
	if err != nil {
		return nil, err
	}
	reviewerID, err := r.int64Value("reviewer_id")
	if err != nil {
		return nil, err
	}
	date, err := r.date("review_date")
	if err != nil {
		return nil, err
	}
	score := 0
	if r.text("score") != "" {
		if score, err = r.intValue("score"); err != nil {
			return nil, err
		}
	}
	status, err := entity.ParseReviewStatus(r.text("status"))
	if err != nil {
		return nil, err
	}
	return &entity.PerformanceReview{
		ID:         r.text("id"),
		EmployeeID: employeeID,
		ReviewerID: reviewerID,
		ReviewDate: date,
		Score:      score,
		Status:     status,
	}, nil
}
