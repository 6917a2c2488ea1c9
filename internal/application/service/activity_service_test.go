package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/hr-assistant/internal/domain/event"
)

func subjects(events []*event.Event) []string {
	out := make([]string, len(events))
	for i, evt := range events {
		out[i] = evt.Subject
	}
	return out
}

func TestActivityService_RecentNewestFirst(t *testing.T) {
	s := NewActivityService(10, &mockLogger{})
	ctx := context.Background()

	assert.Empty(t, s.Recent(5))

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Record(ctx, event.NewEvent(event.TypeLeaveApplied, fmt.Sprintf("LR%d", i), 2, nil)))
	}

	assert.Equal(t, []string{"LR3", "LR2", "LR1"}, subjects(s.Recent(0)))
	assert.Equal(t, []string{"LR3", "LR2"}, subjects(s.Recent(2)))
	assert.Len(t, s.Recent(50), 3)
}

func TestActivityService_EvictsOldest(t *testing.T) {
	s := NewActivityService(3, &mockLogger{})
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Record(ctx, event.NewEvent(event.TypeReviewScheduled, fmt.Sprintf("REV-%d", i), 1, nil)))
	}

	assert.Equal(t, []string{"REV-5", "REV-4", "REV-3"}, subjects(s.Recent(0)))
}

func TestActivityService_ForEmployee(t *testing.T) {
	s := NewActivityService(0, &mockLogger{})
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, event.NewEvent(event.TypeLeaveApplied, "a", 2, nil)))
	require.NoError(t, s.Record(ctx, event.NewEvent(event.TypeLeaveApplied, "b", 3, nil)))
	require.NoError(t, s.Record(ctx, event.NewEvent(event.TypeLeaveCancelled, "c", 2, nil)))

	assert.Equal(t, []string{"c", "a"}, subjects(s.ForEmployee(2, 0)))
	assert.Equal(t, []string{"c"}, subjects(s.ForEmployee(2, 1)))
	assert.Empty(t, s.ForEmployee(99, 0))
}

func TestActivityService_ConcurrentRecord(t *testing.T) {
	s := NewActivityService(50, &mockLogger{})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Record(context.Background(), event.NewEvent(event.TypeExpenseSubmitted, fmt.Sprint(i), 1, nil))
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Recent(0), 50)
}
