package adapter

import (
	"context"

	"warehouse/internal/service/inventory/domain"
	"warehouse/internal/service/inventory/domain/port"
)

// MultiPublisher fans one event out to several publishers, typically kafka
// plus the websocket hub. The first error wins but every publisher still
// gets the event.
type MultiPublisher struct {
	targets []port.EventPublisher
}

func NewMultiPublisher(targets ...port.EventPublisher) *MultiPublisher {
	return &MultiPublisher{targets: targets}
}

func (p *MultiPublisher) Publish(ctx context.Context, event domain.Event) error {
	var firstErr error
	for _, t := range p.targets {
		if err := t.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
