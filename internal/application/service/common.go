package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/garyjia/hr-assistant/internal/application/port"
	"github.com/garyjia/hr-assistant/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Response markers prefixed to every user-facing string
const (
	MarkSuccess = "✅"
	MarkFailure = "❌"
	MarkInfo    = "ℹ️"
)

// Option configures the assistant services
type Option func(*options)

type options struct {
	now       func() time.Time
	publisher port.EventPublisher
}

// WithClock sets the source of the reference date used to resolve relative dates
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithPublisher sets where the action service announces completed mutations
func WithPublisher(publisher port.EventPublisher) Option {
	return func(o *options) {
		o.publisher = publisher
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

var leaveTypeLabels = map[entity.LeaveType]string{
	entity.LeaveTypeAnnual:    "tahunan",
	entity.LeaveTypeSick:      "sakit",
	entity.LeaveTypeMaternity: "melahirkan",
}

// leaveTypeLabel renders a leave type the way users say it
func leaveTypeLabel(t entity.LeaveType) string {
	if label, ok := leaveTypeLabels[t]; ok {
		return label
	}
	return strings.ToLower(t.String())
}

// bulletList renders header followed by one "- " line per item
func bulletList(header string, items []string) string {
	var b strings.Builder
	b.WriteString(header)
	for _, item := range items {
		b.WriteString("\n- ")
		b.WriteString(item)
	}
	return b.String()
}

var rupiah = message.NewPrinter(language.Indonesian)

func formatRupiah(amount float64) string {
	return rupiah.Sprintf("Rp %d", int64(math.Round(amount)))
}

// employeeNames resolves ids to names once per response
type employeeNames struct {
	store port.EmployeeRepository
	cache map[int64]string
}

func newEmployeeNames(store port.EmployeeRepository) *employeeNames {
	return &employeeNames{store: store, cache: make(map[int64]string)}
}

func (n *employeeNames) name(ctx context.Context, id int64) (string, error) {
	if name, ok := n.cache[id]; ok {
		return name, nil
	}
	emp, err := n.store.FindEmployeeByID(ctx, id)
	if err != nil {
		return "", err
	}
	name := "ID " + strconv.FormatInt(id, 10)
	if emp != nil {
		name = emp.Name
	}
	n.cache[id] = name
	return name, nil
}

const dateLayout = time.DateOnly

// failed renders a store failure for the user
func failed(action string, err error) string {
	return fmt.Sprintf("%s Gagal %s: %v", MarkFailure, action, err)
}
