package service

import (
	"context"
	"sync"

	"github.com/garyjia/hr-assistant/internal/domain/event"
)

// DefaultActivityCapacity is how many events the feed keeps
const DefaultActivityCapacity = 200

// ActivityService keeps the most recent HR events in memory
type ActivityService interface {
	// Record stores evt, evicting the oldest event when full
	Record(ctx context.Context, evt *event.Event) error

	// Recent returns up to limit events, newest first
	Recent(limit int) []*event.Event

	// ForEmployee returns up to limit events about one employee, newest first
	ForEmployee(employeeID int64, limit int) []*event.Event
}

type activityServiceImpl struct {
	mu     sync.RWMutex
	ring   []*event.Event
	next   int
	full   bool
	logger Logger
}

// NewActivityService creates an ActivityService holding capacity events
func NewActivityService(capacity int, logger Logger) ActivityService {
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &activityServiceImpl{
		ring:   make([]*event.Event, capacity),
		logger: logger,
	}
}

// Record stores evt, evicting the oldest event when full
func (s *activityServiceImpl) Record(ctx context.Context, evt *event.Event) error {
	s.mu.Lock()
	s.ring[s.next] = evt
	s.next = (s.next + 1) % len(s.ring)
	if s.next == 0 {
		s.full = true
	}
	s.mu.Unlock()

	s.logger.Info("Activity recorded",
		"event_type", evt.Type,
		"subject", evt.Subject,
		"employee_id", evt.EmployeeID,
	)
	return nil
}

// Recent returns up to limit events, newest first
func (s *activityServiceImpl) Recent(limit int) []*event.Event {
	return s.collect(limit, func(*event.Event) bool { return true })
}

// ForEmployee returns up to limit events about one employee, newest first
func (s *activityServiceImpl) ForEmployee(employeeID int64, limit int) []*event.Event {
	return s.collect(limit, func(evt *event.Event) bool { return evt.EmployeeID == employeeID })
}

func (s *activityServiceImpl) collect(limit int, keep func(*event.Event) bool) []*event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.next
	if s.full {
		size = len(s.ring)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]*event.Event, 0, limit)
	for i := 1; i <= size && len(out) < limit; i++ {
		evt := s.ring[(s.next-i+len(s.ring))%len(s.ring)]
		if keep(evt) {
			out = append(out, evt)
		}
	}
	return out
}
