package port

import (
	"context"
	"time"

	"github.com/garyjia/hr-assistant/internal/domain/event"
	"github.com/garyjia/hr-assistant/internal/domain/intent"
)

// Completer is an opaque text-completion oracle.
// Implementations bound the call with their own timeout in addition to ctx.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// IntentExtractor turns an utterance into a typed intent. Relative dates in the
// utterance are resolved against referenceDate. Any error means extraction is unavailable.
type IntentExtractor interface {
	Extract(ctx context.Context, utterance string, referenceDate time.Time) (intent.Intent, error)
}

// EventPublisher receives an event after each successful mutation.
// Publishing never blocks the caller on subscribers.
type EventPublisher interface {
	DispatchAsync(ctx context.Context, evt *event.Event)
}
