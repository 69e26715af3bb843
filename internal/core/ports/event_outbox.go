package ports

import (
	"context"

	"orderflow/internal/core/domain/model/event"
)

// EventOutbox persists dispatched domain events for downstream consumers.
type EventOutbox interface {
	Append(ctx context.Context, events []event.Event) error
}

// EventSink receives domain events after the state change that produced them
// committed. Implementations must not fail the caller.
type EventSink interface {
	Dispatch(ctx context.Context, events []event.Event)
}
