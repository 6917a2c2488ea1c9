package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/hr-assistant/internal/application/port"
	"github.com/garyjia/hr-assistant/internal/domain/entity"
	"github.com/garyjia/hr-assistant/internal/domain/event"
	"github.com/garyjia/hr-assistant/internal/domain/intent"
	"github.com/garyjia/hr-assistant/internal/domain/workflow"
	"github.com/garyjia/hr-assistant/internal/extractor"
)

const msgNotUnderstood = "❌ Maaf, saya tidak bisa memahami perintah tersebut."

// ActionService validates and applies state-changing commands.
// Both methods always return a display string and never panic.
type ActionService interface {
	// Execute extracts the intent from command and executes it
	Execute(ctx context.Context, command string) string

	// ExecuteIntent executes an already extracted intent
	ExecuteIntent(ctx context.Context, in intent.Intent) string
}

type actionServiceImpl struct {
	store     port.EntityStore
	txManager port.TransactionManager
	extractor port.IntentExtractor
	publisher port.EventPublisher
	now       func() time.Time
	logger    Logger
}

// NewActionService creates a new ActionService
func NewActionService(
	store port.EntityStore,
	txManager port.TransactionManager,
	extractor port.IntentExtractor,
	logger Logger,
	opts ...Option,
) ActionService {
	o := buildOptions(opts)
	return &actionServiceImpl{
		store:     store,
		txManager: txManager,
		extractor: extractor,
		publisher: o.publisher,
		now:       o.now,
		logger:    logger,
	}
}

// Execute extracts the intent from command and executes it
func (s *actionServiceImpl) Execute(ctx context.Context, command string) string {
	in, err := s.extractor.Extract(ctx, command, s.now())
	if err != nil || in == nil {
		s.logger.Info("Command not understood", "command", command, "error", err)
		return msgNotUnderstood
	}
	return s.ExecuteIntent(ctx, in)
}

// ExecuteIntent dispatches on the intent variant
func (s *actionServiceImpl) ExecuteIntent(ctx context.Context, in intent.Intent) (response string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Action panicked", "intent", fmt.Sprintf("%T", in), "panic", r)
			response = fmt.Sprintf("%s Terjadi kesalahan internal: %v", MarkFailure, r)
		}
	}()

	if in == nil {
		return msgNotUnderstood
	}

	switch a := in.(type) {
	case intent.ApplyLeave:
		return s.applyLeave(ctx, a)
	case intent.ScheduleReview:
		return s.scheduleReview(ctx, a)
	case intent.CheckStatus:
		return s.checkStatus(ctx, a)
	case intent.DecideLeave:
		return s.decideLeave(ctx, a)
	case intent.CancelLeave:
		return s.cancelLeave(ctx, a)
	case intent.UpdateLeaveBalance:
		return s.updateLeaveBalance(ctx, a)
	case intent.UpdateEmployeeData:
		return s.updateEmployeeData(ctx, a)
	case intent.UpdateEmployeeStatus:
		return s.updateEmployeeStatus(ctx, a)
	case intent.CreateEmployee:
		return s.createEmployee(ctx, a)
	case intent.UpdateReviewScore:
		return s.updateReviewScore(ctx, a)
	case intent.SubmitReview:
		return s.submitReview(ctx, a)
	case intent.CancelReview:
		return s.cancelReview(ctx, a)
	case intent.SubmitExpense:
		return s.submitExpense(ctx, a)
	}

	if intent.IsQuery(in) {
		return fmt.Sprintf("%s '%s' adalah pertanyaan, bukan perintah. Silakan ajukan sebagai pertanyaan.", MarkInfo, in.Tag())
	}
	return fmt.Sprintf("%s Intent '%s' belum didukung.", MarkFailure, in.Tag())
}

// insufficientBalanceError aborts the apply-leave transaction
type insufficientBalanceError struct {
	remaining int
	requested int
}

func (e *insufficientBalanceError) Error() string {
	return fmt.Sprintf("remaining %d days, requested %d days", e.remaining, e.requested)
}

func (s *actionServiceImpl) applyLeave(ctx context.Context, a intent.ApplyLeave) string {
	emp, err := s.store.FindEmployeeByName(ctx, a.EmployeeName)
	if err != nil {
		return s.storeFailure("mencari karyawan", err)
	}
	if emp == nil {
		return MarkFailure + " Nama karyawan tidak valid."
	}

	leaveType := a.LeaveType
	if leaveType == "" {
		leaveType = entity.LeaveTypeAnnual
	}

	ref := s.now()
	start, err := extractor.ParseDate(a.StartDate, ref)
	if err != nil {
		return MarkFailure + " Tanggal mulai tidak valid."
	}
	end := start
	if strings.TrimSpace(a.EndDate) != "" {
		end, err = extractor.ParseDate(a.EndDate, ref)
		if err != nil {
			return MarkFailure + " Tanggal selesai tidak valid."
		}
	}
	if end.Before(start) {
		return MarkFailure + " Tanggal selesai tidak boleh sebelum tanggal mulai."
	}
	days := entity.InclusiveDays(start, end)

	req := &entity.LeaveRequest{
		ID:         uuid.New().String(),
		EmployeeID: emp.ID,
		LeaveType:  leaveType,
		StartDate:  start,
		EndDate:    end,
		Status:     entity.LeaveStatusApproved,
	}

	var remaining int
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		balance, err := s.store.LeaveBalance(ctx, emp.ID, leaveType)
		if err != nil {
			return err
		}
		if days > balance {
			return &insufficientBalanceError{remaining: balance, requested: days}
		}

		remaining, err = s.store.DebitLeaveBalance(ctx, emp.ID, leaveType, days)
		if errors.Is(err, port.ErrInsufficientBalance) {
			return &insufficientBalanceError{remaining: balance, requested: days}
		}
		if err != nil {
			return err
		}

		return s.store.InsertLeaveRequest(ctx, req)
	})

	var insufficient *insufficientBalanceError
	if errors.As(err, &insufficient) {
		return fmt.Sprintf("%s Saldo cuti tidak cukup. Tersisa %d hari, diminta %d hari.",
			MarkFailure, insufficient.remaining, insufficient.requested)
	}
	if err != nil {
		return s.storeFailure("mengajukan cuti", err)
	}

	s.logger.Info("Leave applied", "leave_id", req.ID, "employee_id", emp.ID, "days", days, "remaining", remaining)
	s.publish(ctx, event.TypeLeaveApplied, req.ID, emp.ID, map[string]interface{}{
		"leave_type": leaveType.String(),
		"days":       days,
		"remaining":  remaining,
	})
	return fmt.Sprintf("%s Cuti %s untuk %s dari %s s/d %s (%d hari) telah disetujui. ID: %s\n💡 Sisa cuti %s sekarang: %d hari.",
		MarkSuccess, leaveTypeLabel(leaveType), emp.Name,
		start.Format(dateLayout), end.Format(dateLayout), days, req.ID,
		leaveTypeLabel(leaveType), remaining)
}

func (s *actionServiceImpl) scheduleReview(ctx context.Context, a intent.ScheduleReview) string {
	emp, err := s.store.FindEmployeeByName(ctx, a.EmployeeName)
	if err != nil {
		return s.storeFailure("mencari karyawan", err)
	}
	if emp == nil {
		return MarkFailure + " Nama karyawan tidak valid."
	}
	reviewer, err := s.store.FindEmployeeByName(ctx, a.ReviewerName)
	if err != nil {
		return s.storeFailure("mencari reviewer", err)
	}
	if reviewer == nil {
		return MarkFailure + " Nama reviewer tidak valid."
	}

	date, err := extractor.ParseDate(a.ReviewDate, s.now())
	if err != nil {
		return MarkFailure + " Tanggal review tidak valid."
	}

	review := &entity.PerformanceReview{
		ID:         uuid.New().String(),
		EmployeeID: emp.ID,
		ReviewerID: reviewer.ID,
		ReviewDate: date,
		Status:     entity.ReviewStatusScheduled,
	}
	if err := s.store.InsertPerformanceReview(ctx, review); err != nil {
		return s.storeFailure("menjadwalkan review", err)
	}

	s.logger.Info("Review scheduled", "review_id", review.ID, "employee_id", emp.ID, "reviewer_id", reviewer.ID)
	s.publish(ctx, event.TypeReviewScheduled, review.ID, emp.ID, map[string]interface{}{
		"reviewer_id": reviewer.ID,
		"review_date": date.Format(dateLayout),
	})
	return fmt.Sprintf("%s Review performa %s oleh %s dijadwalkan pada %s. ID: %s\n🗓 Jadwal review tercatat.",
		MarkSuccess, emp.Name, reviewer.Name, date.Format(dateLayout), review.ID)
}

func (s *actionServiceImpl) checkStatus(ctx context.Context, a intent.CheckStatus) string {
	emp, err := s.store.FindEmployeeByName(ctx, a.EmployeeName)
	if err != nil {
		return s.storeFailure("mencari karyawan", err)
	}
	if emp == nil {
		return MarkFailure + " Nama karyawan tidak valid."
	}

	status, err := s.store.LatestLeaveStatus(ctx, emp.ID)
	if err != nil {
		return s.storeFailure("mengecek status cuti", err)
	}
	return fmt.Sprintf("%s Status pengajuan cuti terakhir untuk %s adalah: %s", MarkInfo, emp.Name, status)
}

var decisionWords = map[entity.LeaveStatus]string{
	entity.LeaveStatusApproved: "disetujui",
	entity.LeaveStatusRejected: "ditolak",
}

func (s *actionServiceImpl) decideLeave(ctx context.Context, a intent.DecideLeave) string {
	trigger := workflow.TriggerApprove
	if a.Decision == entity.LeaveStatusRejected {
		trigger = workflow.TriggerReject
	}

	var employeeID int64
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		req, err := s.store.GetLeaveRequest(ctx, a.LeaveID)
		if err != nil {
			return err
		}
		if req == nil {
			return port.ErrNotFound
		}
		employeeID = req.EmployeeID
		next, err := workflow.NextLeaveStatus(req.Status, trigger)
		if err != nil {
			return err
		}
		return s.store.SetLeaveStatus(ctx, a.LeaveID, next)
	})
	if msg, ok := s.leaveTransitionFailure(a.LeaveID, err); ok {
		return msg
	}

	s.logger.Info("Leave decided", "leave_id", a.LeaveID, "decision", a.Decision)
	decided := event.TypeLeaveApproved
	if trigger == workflow.TriggerReject {
		decided = event.TypeLeaveRejected
	}
	s.publish(ctx, decided, a.LeaveID, employeeID, nil)
	return fmt.Sprintf("%s Cuti dengan ID %s telah %s.", MarkSuccess, a.LeaveID, decisionWords[a.Decision])
}

func (s *actionServiceImpl) cancelLeave(ctx context.Context, a intent.CancelLeave) string {
	var employeeID int64
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		req, err := s.store.GetLeaveRequest(ctx, a.LeaveID)
		if err != nil {
			return err
		}
		if req == nil {
			return port.ErrNotFound
		}
		employeeID = req.EmployeeID
		if _, err := workflow.NextLeaveStatus(req.Status, workflow.TriggerCancel); err != nil {
			return err
		}
		return s.store.CancelLeave(ctx, a.LeaveID)
	})
	if msg, ok := s.leaveTransitionFailure(a.LeaveID, err); ok {
		return msg
	}

	s.logger.Info("Leave cancelled", "leave_id", a.LeaveID)
	s.publish(ctx, event.TypeLeaveCancelled, a.LeaveID, employeeID, nil)
	return fmt.Sprintf("%s Cuti dengan ID %s telah dibatalkan.", MarkSuccess, a.LeaveID)
}

func (s *actionServiceImpl) leaveTransitionFailure(leaveID string, err error) (string, bool) {
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, port.ErrNotFound):
		return fmt.Sprintf("%s Cuti dengan ID %s tidak ditemukan.", MarkFailure, leaveID), true
	case errors.Is(err, workflow.ErrInvalidTransition), errors.Is(err, port.ErrStatusConflict):
		return fmt.Sprintf("%s Status cuti %s tidak dapat diubah: %v", MarkFailure, leaveID, err), true
	default:
		return s.storeFailure("memperbarui status cuti", err), true
	}
}

func (s *actionServiceImpl) updateLeaveBalance(ctx context.Context, a intent.UpdateLeaveBalance) string {
	emp, err := s.store.FindEmployeeByName(ctx, a.EmployeeName)
	if err != nil {
		return s.storeFailure("mencari karyawan", err)
	}
	if emp == nil {
		return MarkFailure + " Nama karyawan tidak valid."
	}
	if a.NewBalance < 0 {
		return MarkFailure + " Sisa cuti tidak boleh negatif."
	}

	leaveType := a.LeaveType
	if leaveType == "" {
		leaveType = entity.LeaveTypeAnnual
	}
	if err := s.store.SetLeaveBalance(ctx, emp.ID, leaveType, a.NewBalance); err != nil {
		return s.storeFailure("memperbarui sisa cuti", err)
	}

	s.logger.Info("Leave balance set", "employee_id", emp.ID, "leave_type", leaveType, "days", a.NewBalance)
	s.publish(ctx, event.TypeBalanceUpdated, strconv.FormatInt(emp.ID, 10), emp.ID, map[string]interface{}{
		"leave_type": leaveType.String(),
		"days":       a.NewBalance,
	})
	return fmt.Sprintf("%s Sisa cuti %s %s berhasil diperbarui menjadi %d hari.",
		MarkSuccess, leaveTypeLabel(leaveType), emp.Name, a.NewBalance)
}

func (s *actionServiceImpl) updateEmployeeData(ctx context.Context, a intent.UpdateEmployeeData) string {
	emp, err := s.store.FindEmployeeByName(ctx, a.EmployeeName)
	if err != nil {
		return s.storeFailure("mencari karyawan", err)
	}
	if emp == nil {
		return MarkFailure + " Nama karyawan tidak valid."
	}

	if err := s.store.UpdateEmployeeFields(ctx, emp.ID, a.Department, a.Title); err != nil {
		return s.storeFailure("memperbarui data karyawan", err)
	}

	department, title := emp.Department, emp.Title
	if a.Department != "" {
		department = a.Department
	}
	if a.Title != "" {
		title = a.Title
	}
	s.logger.Info("Employee updated", "employee_id", emp.ID, "department", department, "title", title)
	s.publish(ctx, event.TypeEmployeeUpdated, strconv.FormatInt(emp.ID, 10), emp.ID, map[string]interface{}{
		"department": department,
		"title":      title,
	})
	return fmt.Sprintf("%s Data karyawan %s berhasil diperbarui. Departemen: %s, Jabatan: %s",
		MarkSuccess, emp.Name, department, title)
}

func (s *actionServiceImpl) updateEmployeeStatus(ctx context.Context, a intent.UpdateEmployeeStatus) string {
	emp, err := s.store.FindEmployeeByName(ctx, a.EmployeeName)
	if err != nil {
		return s.storeFailure("mencari karyawan", err)
	}
	if emp == nil {
		return MarkFailure + " Nama karyawan tidak valid."
	}

	status := entity.NormalizeEmploymentStatus(a.Status)
	if err := s.store.UpdateEmployeeStatus(ctx, emp.ID, status); err != nil {
		return s.storeFailure("memperbarui status karyawan", err)
	}

	s.logger.Info("Employee status updated", "employee_id", emp.ID, "status", status)
	s.publish(ctx, event.TypeEmployeeStatusChanged, strconv.FormatInt(emp.ID, 10), emp.ID, map[string]interface{}{
		"from": emp.Status,
		"to":   status,
	})
	return fmt.Sprintf("%s Status karyawan %s berhasil diperbarui menjadi: %s", MarkSuccess, emp.Name, status)
}

func (s *actionServiceImpl) createEmployee(ctx context.Context, a intent.CreateEmployee) string {
	var managerID *int64
	if a.ManagerName != "" {
		manager, err := s.store.FindEmployeeByName(ctx, a.ManagerName)
		if err != nil {
			return s.storeFailure("mencari manajer", err)
		}
		if manager == nil {
			return fmt.Sprintf("%s Manajer '%s' tidak ditemukan.", MarkFailure, a.ManagerName)
		}
		managerID = &manager.ID
	}

	emp := &entity.Employee{
		Name:       a.Name,
		Email:      a.Email,
		Title:      a.Title,
		Department: a.Department,
		ManagerID:  managerID,
		JoinDate:   extractor.DateOnly(s.now()),
		Status:     entity.EmploymentStatusActive,
	}
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		id, err := s.store.NextEmployeeID(ctx)
		if err != nil {
			return err
		}
		emp.ID = id
		return s.store.CreateEmployee(ctx, emp)
	})
	if err != nil {
		return s.storeFailure("menambahkan karyawan baru", err)
	}

	s.logger.Info("Employee created", "employee_id", emp.ID, "name", emp.Name)
	s.publish(ctx, event.TypeEmployeeCreated, strconv.FormatInt(emp.ID, 10), emp.ID, map[string]interface{}{
		"name": emp.Name,
	})
	return fmt.Sprintf("%s Karyawan baru %s berhasil ditambahkan dengan ID %d.", MarkSuccess, emp.Name, emp.ID)
}

// transitionReview guards a review mutation with the review state machine
// and returns the reviewed employee's ID
func (s *actionServiceImpl) transitionReview(ctx context.Context, reviewID string, trigger workflow.Trigger, apply func(ctx context.Context) error) (int64, error) {
	var employeeID int64
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		review, err := s.store.GetPerformanceReview(ctx, reviewID)
		if err != nil {
			return err
		}
		if review == nil {
			return port.ErrNotFound
		}
		if _, err := workflow.NextReviewStatus(review.Status, trigger); err != nil {
			return err
		}
		employeeID = review.EmployeeID
		return apply(ctx)
	})
	return employeeID, err
}

func (s *actionServiceImpl) reviewTransitionFailure(reviewID, action string, err error) string {
	switch {
	case errors.Is(err, port.ErrNotFound):
		return fmt.Sprintf("%s Review dengan ID %s tidak ditemukan.", MarkFailure, reviewID)
	case errors.Is(err, workflow.ErrInvalidTransition), errors.Is(err, port.ErrStatusConflict):
		return fmt.Sprintf("%s Review %s tidak dapat diubah: %v", MarkFailure, reviewID, err)
	default:
		return s.storeFailure(action, err)
	}
}

func (s *actionServiceImpl) updateReviewScore(ctx context.Context, a intent.UpdateReviewScore) string {
	employeeID, err := s.transitionReview(ctx, a.ReviewID, workflow.TriggerScore, func(ctx context.Context) error {
		return s.store.UpdateReviewScore(ctx, a.ReviewID, a.Score)
	})
	if err != nil {
		return s.reviewTransitionFailure(a.ReviewID, "memperbarui skor review", err)
	}

	s.logger.Info("Review scored", "review_id", a.ReviewID, "score", a.Score)
	s.publish(ctx, event.TypeReviewScored, a.ReviewID, employeeID, map[string]interface{}{"score": a.Score})
	return fmt.Sprintf("%s Skor performa untuk review %s telah diperbarui menjadi %d.", MarkSuccess, a.ReviewID, a.Score)
}

func (s *actionServiceImpl) submitReview(ctx context.Context, a intent.SubmitReview) string {
	employeeID, err := s.transitionReview(ctx, a.ReviewID, workflow.TriggerSubmit, func(ctx context.Context) error {
		return s.store.SubmitReview(ctx, a.ReviewID, a.Score, entity.ReviewStatusCompleted)
	})
	if err != nil {
		return s.reviewTransitionFailure(a.ReviewID, "submit hasil review", err)
	}

	s.logger.Info("Review submitted", "review_id", a.ReviewID, "score", a.Score)
	s.publish(ctx, event.TypeReviewSubmitted, a.ReviewID, employeeID, map[string]interface{}{"score": a.Score})
	return fmt.Sprintf("%s Hasil review %s telah disubmit dengan skor %d.", MarkSuccess, a.ReviewID, a.Score)
}

func (s *actionServiceImpl) cancelReview(ctx context.Context, a intent.CancelReview) string {
	employeeID, err := s.transitionReview(ctx, a.ReviewID, workflow.TriggerCancel, func(ctx context.Context) error {
		return s.store.CancelReview(ctx, a.ReviewID)
	})
	if err != nil {
		return s.reviewTransitionFailure(a.ReviewID, "membatalkan review", err)
	}

	s.logger.Info("Review cancelled", "review_id", a.ReviewID)
	s.publish(ctx, event.TypeReviewCancelled, a.ReviewID, employeeID, nil)
	return fmt.Sprintf("%s Review dengan ID %s telah dibatalkan.", MarkSuccess, a.ReviewID)
}

func (s *actionServiceImpl) submitExpense(ctx context.Context, a intent.SubmitExpense) string {
	emp, err := s.store.FindEmployeeByName(ctx, a.EmployeeName)
	if err != nil {
		return s.storeFailure("mencari karyawan", err)
	}
	if emp == nil {
		return MarkFailure + " Nama karyawan tidak valid."
	}
	if a.Amount <= 0 {
		return MarkFailure + " Jumlah pengeluaran harus lebih dari 0."
	}

	expense := &entity.Expense{
		ID:         uuid.New().String(),
		EmployeeID: emp.ID,
		Category:   a.Category,
		Amount:     a.Amount,
		Status:     entity.ExpenseStatusSubmitted,
		CreatedAt:  s.now(),
	}
	if err := s.store.InsertExpense(ctx, expense); err != nil {
		return s.storeFailure("mengajukan laporan pengeluaran", err)
	}

	s.logger.Info("Expense submitted", "expense_id", expense.ID, "employee_id", emp.ID, "amount", a.Amount)
	s.publish(ctx, event.TypeExpenseSubmitted, expense.ID, emp.ID, map[string]interface{}{
		"category": a.Category,
		"amount":   a.Amount,
	})
	return fmt.Sprintf("%s Laporan pengeluaran %s untuk %s sebesar %s telah diajukan. ID: %s",
		MarkSuccess, a.Category, emp.Name, formatRupiah(a.Amount), expense.ID)
}

func (s *actionServiceImpl) publish(ctx context.Context, t event.Type, subject string, employeeID int64, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.DispatchAsync(ctx, event.NewEvent(t, subject, employeeID, payload))
}

func (s *actionServiceImpl) storeFailure(action string, err error) string {
	s.logger.Error("Action failed", "action", action, "error", err)
	return failed(action, err)
}
