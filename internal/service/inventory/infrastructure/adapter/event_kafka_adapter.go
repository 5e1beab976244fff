package adapter

import (
	"context"
	"encoding/json"

	pkgerrors "github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"warehouse/internal/pkg/mq"
	"warehouse/internal/service/inventory/domain"
)

// EventKafkaAdapter publishes domain events to the inventory event topic.
// Messages are keyed by SKU when the payload carries one, so per-SKU ordering
// survives partitioning.
type EventKafkaAdapter struct {
	writer *kafka.Writer
}

func NewEventKafkaAdapter(writer *kafka.Writer) *EventKafkaAdapter {
	return &EventKafkaAdapter{writer: writer}
}

func (a *EventKafkaAdapter) Publish(ctx context.Context, event domain.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return pkgerrors.Wrap(err, "marshal event")
	}
	key := []byte(event.ID)
	switch data := event.Data.(type) {
	case domain.StockLevelPayload:
		key = []byte(data.SKU)
	case domain.ReservationPayload:
		key = []byte(data.SKU)
	}
	if err := mq.ProduceMessage(ctx, a.writer, key, value); err != nil {
		return pkgerrors.Wrapf(err, "produce event %s", event.Type)
	}
	return nil
}

func (a *EventKafkaAdapter) Close() error {
	return a.writer.Close()
}
