package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/hr-assistant/internal/domain/entity"
	"github.com/garyjia/hr-assistant/internal/domain/event"
	"github.com/garyjia/hr-assistant/internal/domain/intent"
	"github.com/garyjia/hr-assistant/internal/testutil"
)

func newPublishingActions(t *testing.T) (ActionService, *recordingPublisher) {
	t.Helper()
	store, tx := testutil.NewSeededDB(t)
	pub := &recordingPublisher{}
	return NewActionService(store, tx, &mockExtractor{}, &mockLogger{}, fixedClock(), WithPublisher(pub)), pub
}

func TestActionService_PublishesOnSuccess(t *testing.T) {
	tests := []struct {
		name        string
		in          intent.Intent
		want        event.Type
		wantSubject string
		wantEmp     int64
	}{
		{
			name:    "apply leave",
			in:      intent.ApplyLeave{EmployeeName: "Budi", StartDate: "2025-10-03"},
			want:    event.TypeLeaveApplied,
			wantEmp: testutil.BudiID,
		},
		{
			name:        "approve leave",
			in:          intent.DecideLeave{LeaveID: "LR003", Decision: entity.LeaveStatusApproved},
			want:        event.TypeLeaveApproved,
			wantSubject: "LR003",
		},
		{
			name:        "reject leave",
			in:          intent.DecideLeave{LeaveID: "LR003", Decision: entity.LeaveStatusRejected},
			want:        event.TypeLeaveRejected,
			wantSubject: "LR003",
		},
		{
			name:        "cancel leave",
			in:          intent.CancelLeave{LeaveID: "LR001"},
			want:        event.TypeLeaveCancelled,
			wantSubject: "LR001",
		},
		{
			name:        "set balance",
			in:          intent.UpdateLeaveBalance{EmployeeName: "Rina", LeaveType: entity.LeaveTypeAnnual, NewBalance: 10},
			want:        event.TypeBalanceUpdated,
			wantSubject: "3",
			wantEmp:     testutil.RinaID,
		},
		{
			name:        "update employee",
			in:          intent.UpdateEmployeeData{EmployeeName: "Budi", Title: "Lead Engineer"},
			want:        event.TypeEmployeeUpdated,
			wantSubject: "2",
			wantEmp:     testutil.BudiID,
		},
		{
			name:        "change status",
			in:          intent.UpdateEmployeeStatus{EmployeeName: "Budi", Status: "nonaktif"},
			want:        event.TypeEmployeeStatusChanged,
			wantSubject: "2",
			wantEmp:     testutil.BudiID,
		},
		{
			name:        "score review",
			in:          intent.UpdateReviewScore{ReviewID: "REV-001", Score: 90},
			want:        event.TypeReviewScored,
			wantSubject: "REV-001",
		},
		{
			name:        "cancel review",
			in:          intent.CancelReview{ReviewID: "REV-001"},
			want:        event.TypeReviewCancelled,
			wantSubject: "REV-001",
		},
		{
			name:    "expense",
			in:      intent.SubmitExpense{EmployeeName: "Rina", Category: "Transport", Amount: 150000},
			want:    event.TypeExpenseSubmitted,
			wantEmp: testutil.RinaID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions, pub := newPublishingActions(t)

			got := actions.ExecuteIntent(context.Background(), tt.in)
			require.Contains(t, got, MarkSuccess)
			require.Equal(t, []event.Type{tt.want}, pub.Types())

			evt := pub.events[0]
			assert.NotEmpty(t, evt.Subject)
			if tt.wantSubject != "" {
				assert.Equal(t, tt.wantSubject, evt.Subject)
			}
			if tt.wantEmp != 0 {
				assert.Equal(t, tt.wantEmp, evt.EmployeeID)
			} else {
				assert.NotZero(t, evt.EmployeeID)
			}
		})
	}
}

func TestActionService_PublishPayloads(t *testing.T) {
	actions, pub := newPublishingActions(t)
	ctx := context.Background()

	actions.ExecuteIntent(ctx, intent.ApplyLeave{EmployeeName: "Budi", StartDate: "2025-10-03", EndDate: "2025-10-05"})
	actions.ExecuteIntent(ctx, intent.UpdateEmployeeStatus{EmployeeName: "Budi", Status: "nonaktif"})

	require.Len(t, pub.events, 2)
	applied := pub.events[0]
	assert.Equal(t, int64(3), applied.GetPayloadInt("days"))
	assert.Equal(t, int64(9), applied.GetPayloadInt("remaining"))
	assert.Equal(t, "Annual", applied.GetPayloadString("leave_type"))

	changed := pub.events[1]
	assert.Equal(t, entity.EmploymentStatusActive, changed.GetPayloadString("from"))
	assert.Equal(t, entity.EmploymentStatusInactive, changed.GetPayloadString("to"))
}

func TestActionService_NoEventOnFailure(t *testing.T) {
	actions, pub := newPublishingActions(t)
	ctx := context.Background()

	failures := []intent.Intent{
		intent.ApplyLeave{EmployeeName: "Budi", StartDate: "2025-10-01", EndDate: "2025-12-31"},
		intent.DecideLeave{LeaveID: "LR002", Decision: entity.LeaveStatusApproved},
		intent.CancelLeave{LeaveID: "LR999"},
		intent.SubmitReview{ReviewID: "REV-003", Score: 80},
		intent.SubmitExpense{EmployeeName: "Nobody", Category: "Transport", Amount: 10},
		intent.CheckStatus{EmployeeName: "Budi"},
	}
	for _, in := range failures {
		actions.ExecuteIntent(ctx, in)
	}

	assert.Empty(t, pub.Types())
}
