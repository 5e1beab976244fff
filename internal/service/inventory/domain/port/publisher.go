package port

import (
	"context"

	"warehouse/internal/service/inventory/domain"
)

// EventPublisher is the outbound port for domain events. Publishing is
// best-effort from the engine's perspective: a failure is logged and
// swallowed, never rolled back into the transaction that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}
