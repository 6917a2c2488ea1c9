package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/garyjia/hr-assistant/internal/domain/entity"
)

var (
	// ErrMissingTag is returned when the payload carries no intent tag
	ErrMissingTag = errors.New("intent tag missing")

	// ErrMissingField is returned when a field required by the tag is absent
	ErrMissingField = errors.New("required field missing")

	// ErrInvalidField is returned when a field is present but unusable
	ErrInvalidField = errors.New("invalid field value")
)

// FieldError describes which field of which intent failed validation
type FieldError struct {
	Tag   Tag
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Tag, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// tagAliases maps the spellings models produce onto canonical tags.
// Keys are lowercased with spaces and hyphens folded to underscores.
var tagAliases = map[string]Tag{
	"apply_leave":                  TagApplyLeave,
	"ajukan_cuti":                  TagApplyLeave,
	"schedule_review":              TagScheduleReview,
	"jadwalkan_review":             TagScheduleReview,
	"check_status":                 TagCheckStatus,
	"approve_reject_leave":         TagDecideLeave,
	"approve_reject_cuti":          TagDecideLeave,
	"approve_leave":                TagDecideLeave,
	"reject_leave":                 TagDecideLeave,
	"cancel_leave":                 TagCancelLeave,
	"batalkan_cuti":                TagCancelLeave,
	"update_leave_balance":         TagUpdateLeaveBalance,
	"update_sisa_cuti":             TagUpdateLeaveBalance,
	"update_employee_data":         TagUpdateEmployeeData,
	"update_data_karyawan":         TagUpdateEmployeeData,
	"update_employee_status":       TagUpdateEmployeeStatus,
	"update_status_karyawan":       TagUpdateEmployeeStatus,
	"create_employee":              TagCreateEmployee,
	"tambah_karyawan":              TagCreateEmployee,
	"update_review_score":          TagUpdateReviewScore,
	"update_skor_review":           TagUpdateReviewScore,
	"cancel_review":                TagCancelReview,
	"batalkan_review":              TagCancelReview,
	"submit_review":                TagSubmitReview,
	"submit_hasil_review":          TagSubmitReview,
	"submit_expense":               TagSubmitExpense,
	"list_employees_by_department": TagListByDepartment,
	"list_karyawan_departemen":     TagListByDepartment,
	"list_employees_by_title":      TagListByTitle,
	"list_karyawan_jabatan":        TagListByTitle,
	"list_employees_by_status":     TagListByStatus,
	"list_karyawan_status":         TagListByStatus,
	"check_leave_status":           TagCheckLeaveStatus,
	"cek_status_cuti":              TagCheckLeaveStatus,
	"list_pending_leave":           TagListPendingLeave,
	"list_cuti_pending":            TagListPendingLeave,
	"leave_history":                TagLeaveHistory,
	"riwayat_cuti":                 TagLeaveHistory,
	"history_cuti":                 TagLeaveHistory,
	"list_scheduled_reviews":       TagListScheduledReviews,
	"list_review_terjadwal":        TagListScheduledReviews,
	"review_history":               TagReviewHistory,
	"history_review":               TagReviewHistory,
	"riwayat_review":               TagReviewHistory,
	"employee_info":                TagEmployeeInfo,
	"lookup_employee":              TagEmployeeInfo,
	"lookup_colleague":             TagEmployeeInfo,
	"query_employee_info":          TagEmployeeInfo,
	"list_leave_balances":          TagListLeaveBalances,
	"list_sisa_cuti":               TagListLeaveBalances,
}

// CanonicalTag folds a raw tag onto its canonical spelling.
// ok is false for tags with no handler.
func CanonicalTag(raw string) (Tag, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	tag, ok := tagAliases[key]
	return tag, ok
}

// Parse decodes a JSON object and maps it onto the matching Intent variant
func Parse(data []byte) (Intent, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode intent payload: %w", err)
	}
	return FromPayload(p)
}

// FromPayload maps a decoded payload onto the Intent variant named by its tag.
// Unknown tags produce Unsupported rather than an error.
func FromPayload(p Payload) (Intent, error) {
	raw := p.Intent.String()
	if raw == "" {
		return nil, ErrMissingTag
	}
	tag, ok := CanonicalTag(raw)
	if !ok {
		return Unsupported{Name: raw}, nil
	}

	v := validator{tag: tag}
	var result Intent

	switch tag {
	case TagApplyLeave:
		result = ApplyLeave{
			EmployeeName: v.required("employee_name", p.EmployeeName),
			LeaveType:    v.leaveType(p.LeaveType),
			StartDate:    p.StartDate.String(),
			EndDate:      p.EndDate.String(),
		}
	case TagScheduleReview:
		date := p.StartDate.String()
		if date == "" {
			// some models put the review date in end_date
			date = p.EndDate.String()
		}
		result = ScheduleReview{
			EmployeeName: v.required("employee_name", p.EmployeeName),
			ReviewerName: v.required("reviewer_name", p.ReviewerName),
			ReviewDate:   date,
		}
	case TagCheckStatus:
		result = CheckStatus{EmployeeName: v.required("employee_name", p.EmployeeName)}
	case TagDecideLeave:
		result = DecideLeave{
			LeaveID:  v.required("leave_id", p.LeaveID),
			Decision: v.decision(p.Status),
		}
	case TagCancelLeave:
		result = CancelLeave{LeaveID: v.required("leave_id", p.LeaveID)}
	case TagUpdateLeaveBalance:
		result = UpdateLeaveBalance{
			EmployeeName: v.required("employee_name", p.EmployeeName),
			LeaveType:    v.leaveType(p.LeaveType),
			NewBalance:   v.number("new_balance", p.NewBalance),
		}
	case TagUpdateEmployeeData:
		u := UpdateEmployeeData{
			EmployeeName: v.required("employee_name", p.EmployeeName),
			Department:   p.Department.String(),
			Title:        p.Position.String(),
		}
		if u.Department == "" && u.Title == "" {
			v.fail("department", ErrMissingField)
		}
		result = u
	case TagUpdateEmployeeStatus:
		result = UpdateEmployeeStatus{
			EmployeeName: v.required("employee_name", p.EmployeeName),
			Status:       v.required("status", p.Status),
		}
	case TagCreateEmployee:
		email := p.Email.String()
		if email == "" && strings.Contains(p.Category.String(), "@") {
			email = p.Category.String()
		}
		result = CreateEmployee{
			Name:        v.required("employee_name", p.EmployeeName),
			Email:       email,
			Title:       p.Position.String(),
			Department:  p.Department.String(),
			ManagerName: p.ManagerName.String(),
		}
	case TagUpdateReviewScore:
		result = UpdateReviewScore{
			ReviewID: v.required("review_id", p.ReviewID),
			Score:    v.number("score", p.Score),
		}
	case TagCancelReview:
		result = CancelReview{ReviewID: v.required("review_id", p.ReviewID)}
	case TagSubmitReview:
		result = SubmitReview{
			ReviewID: v.required("review_id", p.ReviewID),
			Score:    v.number("score", p.Score),
		}
	case TagSubmitExpense:
		e := SubmitExpense{
			EmployeeName: v.required("employee_name", p.EmployeeName),
			Category:     v.required("category", p.Category),
		}
		if p.Amount == nil {
			v.fail("amount", ErrMissingField)
		} else {
			e.Amount = float64(*p.Amount)
		}
		result = e
	case TagListByDepartment:
		result = ListByDepartment{Department: v.required("department", p.Department)}
	case TagListByTitle:
		result = ListByTitle{Title: v.required("position", p.Position)}
	case TagListByStatus:
		result = ListByStatus{Status: v.required("status", p.Status)}
	case TagCheckLeaveStatus:
		result = CheckLeaveStatus{LeaveID: v.required("leave_id", p.LeaveID)}
	case TagListPendingLeave:
		result = ListPendingLeave{}
	case TagLeaveHistory:
		result = LeaveHistory{EmployeeName: v.required("employee_name", p.EmployeeName)}
	case TagListScheduledReviews:
		result = ListScheduledReviews{}
	case TagReviewHistory:
		result = ReviewHistory{EmployeeName: v.required("employee_name", p.EmployeeName)}
	case TagEmployeeInfo:
		result = EmployeeInfo{EmployeeName: v.required("employee_name", p.EmployeeName)}
	case TagListLeaveBalances:
		result = ListLeaveBalances{}
	}

	if v.err != nil {
		return nil, v.err
	}
	return result, nil
}

// validator records the first field failure so each case stays declarative
type validator struct {
	tag Tag
	err error
}

func (v *validator) fail(field string, err error) {
	if v.err == nil {
		v.err = &FieldError{Tag: v.tag, Field: field, Err: err}
	}
}

func (v *validator) required(field string, value Text) string {
	s := value.String()
	if s == "" {
		v.fail(field, ErrMissingField)
	}
	return s
}

func (v *validator) number(field string, value *Number) int {
	if value == nil {
		v.fail(field, ErrMissingField)
		return 0
	}
	return value.Int()
}

// leaveType folds synonyms; empty means the caller's default
func (v *validator) leaveType(value Text) entity.LeaveType {
	s := value.String()
	if s == "" {
		return ""
	}
	lt, ok := entity.NormalizeLeaveType(s)
	if !ok {
		v.fail("leave_type", fmt.Errorf("%w: %q", ErrInvalidField, s))
	}
	return lt
}

func (v *validator) decision(value Text) entity.LeaveStatus {
	s := v.required("status", value)
	if s == "" {
		return ""
	}
	status, err := entity.ParseLeaveStatus(s)
	if err != nil || (status != entity.LeaveStatusApproved && status != entity.LeaveStatusRejected) {
		v.fail("status", fmt.Errorf("%w: %q is not approve or reject", ErrInvalidField, s))
		return ""
	}
	return status
}
