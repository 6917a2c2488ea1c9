package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/garyjia/hr-assistant/internal/application/port"
	"github.com/garyjia/hr-assistant/internal/domain/entity"
	"github.com/garyjia/hr-assistant/internal/domain/intent"
)

const (
	msgUnknownQuestion = "Maaf, saya tidak tahu bagaimana menjawab pertanyaan ini."
	msgUnknownName     = "Saya tidak bisa mengenali nama karyawan dari pertanyaan tersebut."
)

// QueryService answers read-only questions about HR records
type QueryService interface {
	// Answer routes a free-text question by keyword
	Answer(ctx context.Context, question string) string

	// AnswerByIntent answers an extracted query intent
	AnswerByIntent(ctx context.Context, in intent.Intent) string

	// ExtractName finds the first employee, in id order, mentioned in text.
	// It returns nil, nil when nobody matches.
	ExtractName(ctx context.Context, text string) (*entity.Employee, error)
}

type queryServiceImpl struct {
	store  port.EntityStore
	logger Logger
}

// NewQueryService creates a new QueryService
func NewQueryService(store port.EntityStore, logger Logger) QueryService {
	return &queryServiceImpl{
		store:  store,
		logger: logger,
	}
}

var (
	whoWords      = []string{"siapa", "who"}
	managerWords  = []string{"manajer", "manager", "atasan"}
	titleWords    = []string{"jabatan", "posisi", "title", "position"}
	whatWords     = []string{"siapa", "apa", "who", "what"}
	emailWords    = []string{"email", "e-mail", "surel"}
	balanceWords  = []string{"sisa", "berapa", "remaining", "balance", "how many"}
	leaveWords    = []string{"cuti", "leave"}
	statusWords   = []string{"status"}
	historyWords  = []string{"riwayat", "history", "histori"}
	sickWords     = []string{"sakit", "sick"}
	maternityWord = []string{"melahirkan", "maternity"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Answer evaluates the keyword patterns in a fixed order; the first match wins
func (s *queryServiceImpl) Answer(ctx context.Context, question string) string {
	q := strings.ToLower(strings.TrimSpace(question))

	switch {
	case containsAny(q, whoWords) && containsAny(q, managerWords):
		return s.answerManager(ctx, q)
	case containsAny(q, titleWords) && containsAny(q, whatWords):
		return s.answerTitle(ctx, q)
	case containsAny(q, emailWords):
		return s.answerEmail(ctx, q)
	case containsAny(q, balanceWords) && containsAny(q, leaveWords):
		return s.answerLeaveBalance(ctx, q)
	case containsAny(q, statusWords) && containsAny(q, leaveWords):
		return s.answerLatestLeaveStatus(ctx, q)
	case containsAny(q, historyWords) && containsAny(q, leaveWords):
		return s.answerLeaveHistory(ctx, q)
	}
	return msgUnknownQuestion
}

// AnswerByIntent dispatches on the query intent table
func (s *queryServiceImpl) AnswerByIntent(ctx context.Context, in intent.Intent) string {
	switch q := in.(type) {
	case intent.ListByDepartment:
		return s.listByDepartment(ctx, q.Department)
	case intent.ListByTitle:
		return s.listByTitle(ctx, q.Title)
	case intent.ListByStatus:
		return s.listByStatus(ctx, q.Status)
	case intent.CheckLeaveStatus:
		return s.leaveStatusByID(ctx, q.LeaveID)
	case intent.ListPendingLeave:
		return s.listPendingLeave(ctx)
	case intent.LeaveHistory:
		return s.answerLeaveHistory(ctx, q.EmployeeName)
	case intent.ListScheduledReviews:
		return s.listScheduledReviews(ctx)
	case intent.ReviewHistory:
		return s.answerReviewHistory(ctx, q.EmployeeName)
	case intent.EmployeeInfo:
		return s.answerEmployeeInfo(ctx, q.EmployeeName)
	case intent.ListLeaveBalances:
		return s.listLeaveBalances(ctx)
	}

	tag := "<none>"
	if in != nil {
		tag = in.Tag().String()
	}
	return fmt.Sprintf("Maaf, intent query '%s' tidak dikenali.", tag)
}

// ExtractName matches name tokens of at least three letters against the
// question with non-letters blanked out
func (s *queryServiceImpl) ExtractName(ctx context.Context, text string) (*entity.Employee, error) {
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	for _, emp := range employees {
		full := strings.ToLower(emp.Name)
		for _, token := range strings.Fields(full) {
			if len([]rune(token)) >= 3 && strings.Contains(cleaned, token) {
				return emp, nil
			}
		}
		if full != "" && strings.Contains(strings.ToLower(text), full) {
			return emp, nil
		}
	}
	return nil, nil
}

// employeeFromQuestion resolves the employee a free-text question mentions.
// A nil employee comes with the message to show instead.
func (s *queryServiceImpl) employeeFromQuestion(ctx context.Context, q string) (*entity.Employee, string) {
	emp, err := s.ExtractName(ctx, q)
	if err != nil {
		s.logger.Error("Failed to resolve employee", "question", q, "error", err)
		return nil, failed("mengambil data karyawan", err)
	}
	if emp == nil {
		return nil, msgUnknownName
	}
	return emp, ""
}

// employeeByName resolves an extracted name through the stored-name index,
// then falls back to token matching
func (s *queryServiceImpl) employeeByName(ctx context.Context, name string) (*entity.Employee, string) {
	emp, err := s.store.FindEmployeeByName(ctx, name)
	if err != nil {
		s.logger.Error("Failed to find employee", "name", name, "error", err)
		return nil, failed("mengambil data karyawan", err)
	}
	if emp != nil {
		return emp, ""
	}
	return s.employeeFromQuestion(ctx, name)
}

func (s *queryServiceImpl) answerManager(ctx context.Context, q string) string {
	emp, msg := s.employeeFromQuestion(ctx, q)
	if emp == nil {
		return msg
	}
	manager, err := s.store.ManagerOf(ctx, emp)
	if err != nil {
		s.logger.Error("Failed to get manager", "employee_id", emp.ID, "error", err)
		return failed("mengambil data manajer", err)
	}
	if manager == nil {
		return fmt.Sprintf("%s tidak memiliki manajer.", emp.Name)
	}
	return fmt.Sprintf("Manajer %s adalah %s (%s).", emp.Name, manager.Name, manager.Title)
}

func (s *queryServiceImpl) answerTitle(ctx context.Context, q string) string {
	emp, msg := s.employeeFromQuestion(ctx, q)
	if emp == nil {
		return msg
	}
	return fmt.Sprintf("Jabatan %s adalah %s.", emp.Name, emp.Title)
}

func (s *queryServiceImpl) answerEmail(ctx context.Context, q string) string {
	emp, msg := s.employeeFromQuestion(ctx, q)
	if emp == nil {
		return msg
	}
	return fmt.Sprintf("Email %s adalah %s.", emp.Name, emp.Email)
}

func (s *queryServiceImpl) answerLeaveBalance(ctx context.Context, q string) string {
	emp, msg := s.employeeFromQuestion(ctx, q)
	if emp == nil {
		return msg
	}

	leaveType := entity.LeaveTypeAnnual
	if containsAny(q, sickWords) {
		leaveType = entity.LeaveTypeSick
	} else if containsAny(q, maternityWord) {
		leaveType = entity.LeaveTypeMaternity
	}

	days, err := s.store.LeaveBalance(ctx, emp.ID, leaveType)
	if err != nil {
		s.logger.Error("Failed to get leave balance", "employee_id", emp.ID, "error", err)
		return failed("mengambil sisa cuti", err)
	}
	return fmt.Sprintf("Sisa cuti %s %s adalah %d hari.", leaveTypeLabel(leaveType), emp.Name, days)
}

func (s *queryServiceImpl) answerLatestLeaveStatus(ctx context.Context, q string) string {
	emp, msg := s.employeeFromQuestion(ctx, q)
	if emp == nil {
		return msg
	}
	status, err := s.store.LatestLeaveStatus(ctx, emp.ID)
	if err != nil {
		s.logger.Error("Failed to get latest leave status", "employee_id", emp.ID, "error", err)
		return failed("mengecek status cuti", err)
	}
	return fmt.Sprintf("Status cuti terakhir %s: %s", emp.Name, status)
}

func (s *queryServiceImpl) answerLeaveHistory(ctx context.Context, text string) string {
	emp, msg := s.employeeByName(ctx, text)
	if emp == nil {
		return msg
	}
	requests, err := s.store.LeaveHistory(ctx, emp.ID)
	if err != nil {
		s.logger.Error("Failed to get leave history", "employee_id", emp.ID, "error", err)
		return failed("mengambil riwayat cuti", err)
	}
	if len(requests) == 0 {
		return fmt.Sprintf("Tidak ada riwayat cuti untuk %s.", emp.Name)
	}

	items := make([]string, 0, len(requests))
	for _, r := range requests {
		items = append(items, fmt.Sprintf("%s: %s (%s s/d %s) - Status: %s",
			r.ID, r.LeaveType, r.StartDate.Format(dateLayout), r.EndDate.Format(dateLayout), r.Status))
	}
	return bulletList(fmt.Sprintf("Riwayat cuti %s:", emp.Name), items)
}

func (s *queryServiceImpl) answerReviewHistory(ctx context.Context, text string) string {
	emp, msg := s.employeeByName(ctx, text)
	if emp == nil {
		return msg
	}
	reviews, err := s.store.ReviewHistory(ctx, emp.ID)
	if err != nil {
		s.logger.Error("Failed to get review history", "employee_id", emp.ID, "error", err)
		return failed("mengambil riwayat review", err)
	}
	if len(reviews) == 0 {
		return fmt.Sprintf("Tidak ada riwayat review untuk %s.", emp.Name)
	}

	items := make([]string, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, fmt.Sprintf("%s: Tanggal %s, Skor: %d, Status: %s",
			r.ID, r.ReviewDate.Format(dateLayout), r.Score, r.Status))
	}
	return bulletList(fmt.Sprintf("Riwayat review %s:", emp.Name), items)
}

func (s *queryServiceImpl) answerEmployeeInfo(ctx context.Context, text string) string {
	emp, msg := s.employeeByName(ctx, text)
	if emp == nil {
		return msg
	}
	manager, err := s.store.ManagerOf(ctx, emp)
	if err != nil {
		s.logger.Error("Failed to get manager", "employee_id", emp.ID, "error", err)
		return failed("mengambil data manajer", err)
	}
	if manager != nil {
		return fmt.Sprintf("Manajer %s adalah %s (%s).", emp.Name, manager.Name, manager.Title)
	}
	return fmt.Sprintf("%s bekerja sebagai %s di departemen %s (email: %s, status: %s).",
		emp.Name, emp.Title, emp.Department, emp.Email, emp.Status)
}

func (s *queryServiceImpl) listByDepartment(ctx context.Context, department string) string {
	employees, err := s.store.ListEmployeesByDepartment(ctx, department)
	if err != nil {
		s.logger.Error("Failed to list employees by department", "department", department, "error", err)
		return failed("mengambil data karyawan", err)
	}
	if len(employees) == 0 {
		return fmt.Sprintf("Tidak ada karyawan di departemen %s.", department)
	}

	items := make([]string, 0, len(employees))
	for _, e := range employees {
		items = append(items, fmt.Sprintf("%s (%s)", e.Name, e.Title))
	}
	return bulletList(fmt.Sprintf("Daftar karyawan di departemen %s:", department), items)
}

func (s *queryServiceImpl) listByTitle(ctx context.Context, title string) string {
	employees, err := s.store.ListEmployeesByTitle(ctx, title)
	if err != nil {
		s.logger.Error("Failed to list employees by title", "title", title, "error", err)
		return failed("mengambil data karyawan", err)
	}
	if len(employees) == 0 {
		return fmt.Sprintf("Tidak ada karyawan dengan jabatan %s.", title)
	}

	items := make([]string, 0, len(employees))
	for _, e := range employees {
		items = append(items, fmt.Sprintf("%s (%s)", e.Name, e.Department))
	}
	return bulletList(fmt.Sprintf("Daftar karyawan dengan jabatan %s:", title), items)
}

func (s *queryServiceImpl) listByStatus(ctx context.Context, status string) string {
	status = entity.NormalizeEmploymentStatus(status)
	employees, err := s.store.ListEmployeesByStatus(ctx, status)
	if err != nil {
		s.logger.Error("Failed to list employees by status", "status", status, "error", err)
		return failed("mengambil data karyawan", err)
	}
	if len(employees) == 0 {
		return fmt.Sprintf("Tidak ada karyawan dengan status %s.", status)
	}

	items := make([]string, 0, len(employees))
	for _, e := range employees {
		items = append(items, fmt.Sprintf("%s (%s - %s)", e.Name, e.Department, e.Title))
	}
	return bulletList(fmt.Sprintf("Daftar karyawan dengan status %s:", status), items)
}

func (s *queryServiceImpl) leaveStatusByID(ctx context.Context, leaveID string) string {
	status, err := s.store.LeaveStatusByID(ctx, leaveID)
	if err != nil {
		s.logger.Error("Failed to get leave status", "leave_id", leaveID, "error", err)
		return failed("mengecek status cuti", err)
	}
	return fmt.Sprintf("Status cuti dengan ID %s: %s", leaveID, status)
}

func (s *queryServiceImpl) listPendingLeave(ctx context.Context) string {
	requests, err := s.store.ListPendingLeave(ctx)
	if err != nil {
		s.logger.Error("Failed to list pending leave", "error", err)
		return failed("mengambil data cuti pending", err)
	}
	if len(requests) == 0 {
		return "Tidak ada pengajuan cuti yang menunggu approval."
	}

	names := newEmployeeNames(s.store)
	items := make([]string, 0, len(requests))
	for _, r := range requests {
		name, err := names.name(ctx, r.EmployeeID)
		if err != nil {
			return failed("mengambil data cuti pending", err)
		}
		items = append(items, fmt.Sprintf("ID: %s, Karyawan: %s, Jenis: %s, Tanggal: %s s/d %s",
			r.ID, name, r.LeaveType, r.StartDate.Format(dateLayout), r.EndDate.Format(dateLayout)))
	}
	return bulletList("Daftar cuti yang menunggu approval:", items)
}

func (s *queryServiceImpl) listScheduledReviews(ctx context.Context) string {
	reviews, err := s.store.ScheduledReviews(ctx)
	if err != nil {
		s.logger.Error("Failed to list scheduled reviews", "error", err)
		return failed("mengambil data review terjadwal", err)
	}
	if len(reviews) == 0 {
		return "Tidak ada review yang terjadwal."
	}

	names := newEmployeeNames(s.store)
	items := make([]string, 0, len(reviews))
	for _, r := range reviews {
		employee, err := names.name(ctx, r.EmployeeID)
		if err != nil {
			return failed("mengambil data review terjadwal", err)
		}
		reviewer, err := names.name(ctx, r.ReviewerID)
		if err != nil {
			return failed("mengambil data review terjadwal", err)
		}
		items = append(items, fmt.Sprintf("ID: %s, Karyawan: %s, Reviewer: %s, Tanggal: %s",
			r.ID, employee, reviewer, r.ReviewDate.Format(dateLayout)))
	}
	return bulletList("Daftar review yang terjadwal:", items)
}

func (s *queryServiceImpl) listLeaveBalances(ctx context.Context) string {
	balances, err := s.store.ListLeaveBalances(ctx)
	if err != nil {
		s.logger.Error("Failed to list leave balances", "error", err)
		return failed("mengambil data sisa cuti", err)
	}
	if len(balances) == 0 {
		return "Tidak ada data sisa cuti."
	}

	// rows arrive grouped by employee
	names := newEmployeeNames(s.store)
	var items []string
	var current int64 = -1
	var line strings.Builder
	flush := func() {
		if line.Len() > 0 {
			items = append(items, line.String())
			line.Reset()
		}
	}
	for _, b := range balances {
		if b.EmployeeID != current {
			flush()
			current = b.EmployeeID
			name, err := names.name(ctx, b.EmployeeID)
			if err != nil {
				return failed("mengambil data sisa cuti", err)
			}
			fmt.Fprintf(&line, "%s: ", name)
		} else {
			line.WriteString(", ")
		}
		fmt.Fprintf(&line, "%s=%d", b.LeaveType, b.RemainingDays)
	}
	flush()
	return bulletList("Daftar sisa cuti semua karyawan:", items)
}
