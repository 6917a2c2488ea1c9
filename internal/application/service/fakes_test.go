package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/garyjia/hr-assistant/internal/application/port"
	"github.com/garyjia/hr-assistant/internal/domain/entity"
	"github.com/garyjia/hr-assistant/internal/domain/event"
	"github.com/garyjia/hr-assistant/internal/domain/intent"
	"github.com/garyjia/hr-assistant/internal/infrastructure/persistence/repository"
	"github.com/garyjia/hr-assistant/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/hr-assistant/internal/testutil"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockExtractor struct {
	extractFunc func(ctx context.Context, utterance string, ref time.Time) (intent.Intent, error)
	calls       int
}

func (m *mockExtractor) Extract(ctx context.Context, utterance string, ref time.Time) (intent.Intent, error) {
	m.calls++
	if m.extractFunc != nil {
		return m.extractFunc(ctx, utterance, ref)
	}
	return nil, errors.New("extraction unavailable")
}

func returning(in intent.Intent) *mockExtractor {
	return &mockExtractor{extractFunc: func(ctx context.Context, utterance string, ref time.Time) (intent.Intent, error) {
		return in, nil
	}}
}

// failingStore fails employee lookups and delegates everything else
type failingStore struct {
	port.EntityStore
	err error
}

func (f *failingStore) FindEmployeeByName(ctx context.Context, text string) (*entity.Employee, error) {
	return nil, f.err
}

func (f *failingStore) ListEmployees(ctx context.Context) ([]*entity.Employee, error) {
	return nil, f.err
}

// referenceDate is a Wednesday
var referenceDate = time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() Option {
	return WithClock(func() time.Time { return referenceDate })
}

type fixture struct {
	store   *repository.Store
	tx      *sqlite.DB
	queries QueryService
	actions ActionService
}

func newFixture(t *testing.T, extractor port.IntentExtractor) *fixture {
	t.Helper()
	store, tx := testutil.NewSeededDB(t)
	if extractor == nil {
		extractor = &mockExtractor{}
	}
	return &fixture{
		store:   store,
		tx:      tx,
		queries: NewQueryService(store, &mockLogger{}),
		actions: NewActionService(store, tx, extractor, &mockLogger{}, fixedClock()),
	}
}

// recordingPublisher keeps published events in order
type recordingPublisher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (r *recordingPublisher) DispatchAsync(ctx context.Context, evt *event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordingPublisher) Types() []event.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]event.Type, len(r.events))
	for i, evt := range r.events {
		types[i] = evt.Type
	}
	return types
}
