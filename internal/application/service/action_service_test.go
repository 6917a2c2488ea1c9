package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/hr-assistant/internal/domain/entity"
	"github.com/garyjia/hr-assistant/internal/domain/intent"
	"github.com/garyjia/hr-assistant/internal/testutil"
)

func balance(t *testing.T, f *fixture, employeeID int64, leaveType entity.LeaveType) int {
	t.Helper()
	days, err := f.store.LeaveBalance(context.Background(), employeeID, leaveType)
	require.NoError(t, err)
	return days
}

func leaveStatus(t *testing.T, f *fixture, leaveID string) string {
	t.Helper()
	status, err := f.store.LeaveStatusByID(context.Background(), leaveID)
	require.NoError(t, err)
	return status
}

func TestActionService_ApplyLeave(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	got := f.actions.ExecuteIntent(ctx, intent.ApplyLeave{
		EmployeeName: "Budi",
		StartDate:    "2025-10-03",
		EndDate:      "2025-10-05",
	})

	assert.True(t, strings.HasPrefix(got, MarkSuccess), got)
	assert.Contains(t, got, "(3 hari)")
	assert.Contains(t, got, "Sisa cuti tahunan sekarang: 9 hari.")
	assert.Equal(t, 9, balance(t, f, testutil.BudiID, entity.LeaveTypeAnnual))

	history, err := f.store.LeaveHistory(ctx, testutil.BudiID)
	require.NoError(t, err)
	require.Len(t, history, 3)

	var created *entity.LeaveRequest
	for _, r := range history {
		if r.StartDate.Equal(testutil.Date("2025-10-03")) {
			created = r
		}
	}
	require.NotNil(t, created)
	assert.Equal(t, entity.LeaveStatusApproved, created.Status)
	assert.Equal(t, testutil.Date("2025-10-05"), created.EndDate)
	assert.Len(t, created.ID, 36, "uuid id")
	assert.Contains(t, got, created.ID)
}

func TestActionService_ApplyLeaveInsufficientBalance(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	got := f.actions.ExecuteIntent(ctx, intent.ApplyLeave{
		EmployeeName: "Budi",
		LeaveType:    entity.LeaveTypeAnnual,
		StartDate:    "2025-10-01",
		EndDate:      "2025-10-20",
	})

	assert.Equal(t, "❌ Saldo cuti tidak cukup. Tersisa 12 hari, diminta 20 hari.", got)
	assert.Equal(t, 12, balance(t, f, testutil.BudiID, entity.LeaveTypeAnnual))

	history, err := f.store.LeaveHistory(ctx, testutil.BudiID)
	require.NoError(t, err)
	assert.Len(t, history, 2, "no request is created on rejection")
}

func TestActionService_ApplyLeaveValidation(t *testing.T) {
	tests := []struct {
		name string
		in   intent.ApplyLeave
		want string
	}{
		{
			name: "unknown employee",
			in:   intent.ApplyLeave{EmployeeName: "Joko", StartDate: "2025-10-03"},
			want: "❌ Nama karyawan tidak valid.",
		},
		{
			name: "bad start date",
			in:   intent.ApplyLeave{EmployeeName: "Budi", StartDate: "3 Oktober"},
			want: "❌ Tanggal mulai tidak valid.",
		},
		{
			name: "missing start date",
			in:   intent.ApplyLeave{EmployeeName: "Budi"},
			want: "❌ Tanggal mulai tidak valid.",
		},
		{
			name: "bad end date",
			in:   intent.ApplyLeave{EmployeeName: "Budi", StartDate: "2025-10-03", EndDate: "2025-13-01"},
			want: "❌ Tanggal selesai tidak valid.",
		},
		{
			name: "end before start",
			in:   intent.ApplyLeave{EmployeeName: "Budi", StartDate: "2025-10-05", EndDate: "2025-10-03"},
			want: "❌ Tanggal selesai tidak boleh sebelum tanggal mulai.",
		},
		{
			name: "no balance row",
			in:   intent.ApplyLeave{EmployeeName: "Andi", StartDate: "2025-10-03"},
			want: "❌ Saldo cuti tidak cukup. Tersisa 0 hari, diminta 1 hari.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			assert.Equal(t, tt.want, f.actions.ExecuteIntent(context.Background(), tt.in))
			assert.Equal(t, 12, balance(t, f, testutil.BudiID, entity.LeaveTypeAnnual))
		})
	}
}

func TestActionService_ApplyLeaveRelativeDates(t *testing.T) {
	f := newFixture(t, nil)

	// reference date is Wednesday 2025-10-01
	got := f.actions.ExecuteIntent(context.Background(), intent.ApplyLeave{
		EmployeeName: "Rina",
		LeaveType:    entity.LeaveTypeMaternity,
		StartDate:    "besok",
		EndDate:      "jumat depan",
	})

	assert.Contains(t, got, "dari 2025-10-02 s/d 2025-10-03 (2 hari)")
	assert.Contains(t, got, "Sisa cuti melahirkan sekarang: 88 hari.")
	assert.Equal(t, 88, balance(t, f, testutil.RinaID, entity.LeaveTypeMaternity))
}

func TestActionService_ApplyLeaveConcurrent(t *testing.T) {
	f := newFixture(t, nil)

	const workers = 5
	var wg sync.WaitGroup
	results := make([]string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.actions.ExecuteIntent(context.Background(), intent.ApplyLeave{
				EmployeeName: "Budi",
				StartDate:    "2025-10-06",
				EndDate:      "2025-10-10",
			})
		}(i)
	}
	wg.Wait()

	approved := 0
	for _, r := range results {
		if strings.HasPrefix(r, MarkSuccess) {
			approved++
		}
	}
	remaining := balance(t, f, testutil.BudiID, entity.LeaveTypeAnnual)
	assert.GreaterOrEqual(t, remaining, 0)
	assert.Equal(t, 12-5*approved, remaining, "every approval debited exactly once")
	assert.LessOrEqual(t, approved, 2)
}

func TestActionService_DecideLeave(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	got := f.actions.ExecuteIntent(ctx, intent.DecideLeave{LeaveID: "LR003", Decision: entity.LeaveStatusApproved})
	assert.Equal(t, "✅ Cuti dengan ID LR003 telah disetujui.", got)
	assert.Equal(t, "Approved", leaveStatus(t, f, "LR003"))

	got = f.actions.ExecuteIntent(ctx, intent.DecideLeave{LeaveID: "LR003", Decision: entity.LeaveStatusRejected})
	assert.True(t, strings.HasPrefix(got, "❌ Status cuti LR003 tidak dapat diubah"), got)
	assert.Equal(t, "Approved", leaveStatus(t, f, "LR003"))

	got = f.actions.ExecuteIntent(ctx, intent.DecideLeave{LeaveID: "LR999", Decision: entity.LeaveStatusApproved})
	assert.Equal(t, "❌ Cuti dengan ID LR999 tidak ditemukan.", got)
}

func TestActionService_RejectLeave(t *testing.T) {
	f := newFixture(t, nil)

	got := f.actions.ExecuteIntent(context.Background(), intent.DecideLeave{LeaveID: "LR003", Decision: entity.LeaveStatusRejected})
	assert.Equal(t, "✅ Cuti dengan ID LR003 telah ditolak.", got)
	assert.Equal(t, "Rejected", leaveStatus(t, f, "LR003"))
}

func TestActionService_CancelLeave(t *testing.T) {
	tests := []struct {
		leaveID    string
		wantPrefix string
		wantStatus string
	}{
		{"LR001", MarkSuccess, "Cancelled"},
		{"LR003", MarkSuccess, "Cancelled"},
		{"LR002", "❌ Status cuti LR002 tidak dapat diubah", "Cancelled"},
		{"LR004", "❌ Status cuti LR004 tidak dapat diubah", "Rejected"},
		{"LR999", "❌ Cuti dengan ID LR999 tidak ditemukan.", entity.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.leaveID, func(t *testing.T) {
			f := newFixture(t, nil)
			got := f.actions.ExecuteIntent(context.Background(), intent.CancelLeave{LeaveID: tt.leaveID})
			assert.True(t, strings.HasPrefix(got, tt.wantPrefix), got)
			assert.Equal(t, tt.wantStatus, leaveStatus(t, f, tt.leaveID))
		})
	}
}

func TestActionService_ScheduleReview(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	got := f.actions.ExecuteIntent(ctx, intent.ScheduleReview{
		EmployeeName: "Rina",
		ReviewerName: "Santi",
		ReviewDate:   "next friday",
	})
	assert.True(t, strings.HasPrefix(got, MarkSuccess), got)
	assert.Contains(t, got, "Review performa Rina Wijaya oleh Santi Putri dijadwalkan pada 2025-10-03")

	reviews, err := f.store.ScheduledReviews(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, testutil.RinaID, reviews[0].EmployeeID, "earliest first")
	assert.Equal(t, testutil.SantiID, reviews[0].ReviewerID)
	assert.Equal(t, 0, reviews[0].Score)
	assert.Equal(t, entity.ReviewStatusScheduled, reviews[0].Status)
}

func TestActionService_ScheduleReviewValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	assert.Equal(t, "❌ Nama karyawan tidak valid.",
		f.actions.ExecuteIntent(ctx, intent.ScheduleReview{EmployeeName: "Joko", ReviewerName: "Santi", ReviewDate: "2025-10-10"}))
	assert.Equal(t, "❌ Nama reviewer tidak valid.",
		f.actions.ExecuteIntent(ctx, intent.ScheduleReview{EmployeeName: "Budi", ReviewerName: "Joko", ReviewDate: "2025-10-10"}))
	assert.Equal(t, "❌ Tanggal review tidak valid.",
		f.actions.ExecuteIntent(ctx, intent.ScheduleReview{EmployeeName: "Budi", ReviewerName: "Santi", ReviewDate: "soon"}))

	// self-review is accepted
	got := f.actions.ExecuteIntent(ctx, intent.ScheduleReview{EmployeeName: "Santi", ReviewerName: "Santi", ReviewDate: "2025-10-10"})
	assert.True(t, strings.HasPrefix(got, MarkSuccess), got)
}

func TestActionService_CheckStatus(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	assert.Equal(t, "ℹ️ Status pengajuan cuti terakhir untuk Budi Santoso adalah: Pending",
		f.actions.ExecuteIntent(ctx, intent.CheckStatus{EmployeeName: "budi"}))
	assert.Equal(t, "ℹ️ Status pengajuan cuti terakhir untuk Santi Putri adalah: Not found",
		f.actions.ExecuteIntent(ctx, intent.CheckStatus{EmployeeName: "Santi"}))
}

func TestActionService_UpdateLeaveBalance(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	got := f.actions.ExecuteIntent(ctx, intent.UpdateLeaveBalance{EmployeeName: "Rina", LeaveType: entity.LeaveTypeSick, NewBalance: 5})
	assert.Equal(t, "✅ Sisa cuti sakit Rina Wijaya berhasil diperbarui menjadi 5 hari.", got)
	assert.Equal(t, 5, balance(t, f, testutil.RinaID, entity.LeaveTypeSick))

	got = f.actions.ExecuteIntent(ctx, intent.UpdateLeaveBalance{EmployeeName: "Budi", NewBalance: 20})
	assert.Contains(t, got, "tahunan")
	assert.Equal(t, 20, balance(t, f, testutil.BudiID, entity.LeaveTypeAnnual))

	got = f.actions.ExecuteIntent(ctx, intent.UpdateLeaveBalance{EmployeeName: "Budi", NewBalance: -1})
	assert.Equal(t, "❌ Sisa cuti tidak boleh negatif.", got)
	assert.Equal(t, 20, balance(t, f, testutil.BudiID, entity.LeaveTypeAnnual))
}

func TestActionService_EmployeeMutations(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	got := f.actions.ExecuteIntent(ctx, intent.UpdateEmployeeData{EmployeeName: "Budi", Department: "Platform"})
	assert.Equal(t, "✅ Data karyawan Budi Santoso berhasil diperbarui. Departemen: Platform, Jabatan: Software Engineer", got)

	budi, err := f.store.FindEmployeeByID(ctx, testutil.BudiID)
	require.NoError(t, err)
	assert.Equal(t, "Platform", budi.Department)
	assert.Equal(t, "Software Engineer", budi.Title)

	got = f.actions.ExecuteIntent(ctx, intent.UpdateEmployeeStatus{EmployeeName: "Budi", Status: "nonaktif"})
	assert.Equal(t, "✅ Status karyawan Budi Santoso berhasil diperbarui menjadi: Inactive", got)

	budi, err = f.store.FindEmployeeByID(ctx, testutil.BudiID)
	require.NoError(t, err)
	assert.Equal(t, entity.EmploymentStatusInactive, budi.Status)
}

func TestActionService_CreateEmployee(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	got := f.actions.ExecuteIntent(ctx, intent.CreateEmployee{
		Name:        "Dewi Lestari",
		Email:       "dewi.lestari@company.co.id",
		Title:       "QA Engineer",
		Department:  "Engineering",
		ManagerName: "Santi",
	})
	assert.Equal(t, "✅ Karyawan baru Dewi Lestari berhasil ditambahkan dengan ID 5.", got)

	dewi, err := f.store.FindEmployeeByID(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, dewi)
	assert.Equal(t, "Dewi Lestari", dewi.Name)
	assert.Equal(t, entity.EmploymentStatusActive, dewi.Status)
	assert.Equal(t, testutil.Date("2025-10-01"), dewi.JoinDate)
	require.NotNil(t, dewi.ManagerID)
	assert.Equal(t, testutil.SantiID, *dewi.ManagerID)

	got = f.actions.ExecuteIntent(ctx, intent.CreateEmployee{Name: "Eko", ManagerName: "Joko"})
	assert.Equal(t, "❌ Manajer 'Joko' tidak ditemukan.", got)
}

func TestActionService_Reviews(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	got := f.actions.ExecuteIntent(ctx, intent.UpdateReviewScore{ReviewID: "REV-001", Score: 90})
	assert.Equal(t, "✅ Skor performa untuk review REV-001 telah diperbarui menjadi 90.", got)

	review, err := f.store.GetPerformanceReview(ctx, "REV-001")
	require.NoError(t, err)
	assert.Equal(t, 90, review.Score)
	assert.Equal(t, entity.ReviewStatusCompleted, review.Status)

	// Completed and Cancelled are terminal
	got = f.actions.ExecuteIntent(ctx, intent.CancelReview{ReviewID: "REV-002"})
	assert.True(t, strings.HasPrefix(got, "❌ Review REV-002 tidak dapat diubah"), got)

	got = f.actions.ExecuteIntent(ctx, intent.SubmitReview{ReviewID: "REV-003", Score: 70})
	assert.True(t, strings.HasPrefix(got, "❌ Review REV-003 tidak dapat diubah"), got)
	review, err = f.store.GetPerformanceReview(ctx, "REV-003")
	require.NoError(t, err)
	assert.Equal(t, entity.ReviewStatusCancelled, review.Status)
	assert.Equal(t, 0, review.Score)

	got = f.actions.ExecuteIntent(ctx, intent.SubmitReview{ReviewID: "REV-404", Score: 70})
	assert.Equal(t, "❌ Review dengan ID REV-404 tidak ditemukan.", got)
}

func TestActionService_SubmitAndCancelScheduledReview(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	got := f.actions.ExecuteIntent(ctx, intent.CancelReview{ReviewID: "REV-001"})
	assert.Equal(t, "✅ Review dengan ID REV-001 telah dibatalkan.", got)

	review, err := f.store.GetPerformanceReview(ctx, "REV-001")
	require.NoError(t, err)
	assert.Equal(t, entity.ReviewStatusCancelled, review.Status)

	f = newFixture(t, nil)
	got = f.actions.ExecuteIntent(ctx, intent.SubmitReview{ReviewID: "REV-001", Score: 85})
	assert.Equal(t, "✅ Hasil review REV-001 telah disubmit dengan skor 85.", got)

	review, err = f.store.GetPerformanceReview(ctx, "REV-001")
	require.NoError(t, err)
	assert.Equal(t, entity.ReviewStatusCompleted, review.Status)
	assert.Equal(t, 85, review.Score)
}

func TestActionService_SubmitExpense(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	got := f.actions.ExecuteIntent(ctx, intent.SubmitExpense{EmployeeName: "Budi", Category: "Transport", Amount: 150000})
	assert.True(t, strings.HasPrefix(got, "✅ Laporan pengeluaran Transport untuk Budi Santoso sebesar Rp 150.000 telah diajukan."), got)

	expenses, err := f.store.ListExpenses(ctx, testutil.BudiID)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, 150000.0, expenses[0].Amount)
	assert.Equal(t, entity.ExpenseStatusSubmitted, expenses[0].Status)

	got = f.actions.ExecuteIntent(ctx, intent.SubmitExpense{EmployeeName: "Budi", Category: "Transport", Amount: 0})
	assert.Equal(t, "❌ Jumlah pengeluaran harus lebih dari 0.", got)
}

func TestActionService_Routing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	got := f.actions.ExecuteIntent(ctx, intent.ListPendingLeave{})
	assert.True(t, strings.HasPrefix(got, MarkInfo), got)
	assert.Contains(t, got, "list_pending_leave")

	assert.Equal(t, "❌ Intent 'book_meeting_room' belum didukung.",
		f.actions.ExecuteIntent(ctx, intent.Unsupported{Name: "book_meeting_room"}))
	assert.Equal(t, msgNotUnderstood, f.actions.ExecuteIntent(ctx, nil))
}

func TestActionService_Execute(t *testing.T) {
	var gotRef time.Time
	extractor := &mockExtractor{extractFunc: func(ctx context.Context, utterance string, ref time.Time) (intent.Intent, error) {
		gotRef = ref
		return intent.DecideLeave{LeaveID: "LR003", Decision: entity.LeaveStatusApproved}, nil
	}}
	f := newFixture(t, extractor)

	got := f.actions.Execute(context.Background(), "approve cuti LR003")
	assert.Equal(t, "✅ Cuti dengan ID LR003 telah disetujui.", got)
	assert.Equal(t, referenceDate, gotRef)
	assert.Equal(t, 1, extractor.calls)
}

func TestActionService_ExecuteExtractionFailure(t *testing.T) {
	f := newFixture(t, &mockExtractor{})

	assert.Equal(t, msgNotUnderstood, f.actions.Execute(context.Background(), "ajukan cuti"))
}

func TestActionService_StoreFailure(t *testing.T) {
	store, tx := testutil.NewSeededDB(t)
	actions := NewActionService(&failingStore{EntityStore: store, err: errors.New("database is locked")}, tx, &mockExtractor{}, &mockLogger{}, fixedClock())

	got := actions.ExecuteIntent(context.Background(), intent.CheckStatus{EmployeeName: "Budi"})
	assert.Equal(t, "❌ Gagal mencari karyawan: database is locked", got)
}

func TestActionService_RecoversPanics(t *testing.T) {
	_, tx := testutil.NewSeededDB(t)
	// the embedded store is nil, so any store call panics
	actions := NewActionService(&failingStore{}, tx, &mockExtractor{}, &mockLogger{}, fixedClock())

	var got string
	require.NotPanics(t, func() {
		got = actions.ExecuteIntent(context.Background(), intent.CancelLeave{LeaveID: "LR003"})
	})
	assert.True(t, strings.HasPrefix(got, "❌ Terjadi kesalahan internal"), got)
}
