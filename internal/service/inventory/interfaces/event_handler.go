package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"

	"warehouse/internal/pkg/logger"
	"warehouse/internal/pkg/mq"
	"warehouse/internal/service/inventory/application"
	"warehouse/internal/service/inventory/domain"
)

// Upstream event types the consumer reacts to.
const (
	eventProductCreated = "product.created"
	eventOrderCreated   = "order.created"
	eventOrderCancelled = "order.cancelled"
)

type upstreamEvent struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	CorrelationID string          `json:"correlationId"`
	Data          json.RawMessage `json:"data"`
}

type productCreatedPayload struct {
	ProductID    string `json:"productId"`
	SKU          string `json:"sku"`
	InitialStock int64  `json:"initialStock"`
	ReorderLevel int64  `json:"reorderLevel"`
	MaxStock     int64  `json:"maxStock"`
}

type orderEventPayload struct {
	OrderID string `json:"orderId"`
	Items   []struct {
		SKU      string `json:"sku"`
		Quantity int64  `json:"quantity"`
	} `json:"items"`
}

// EventConsumer drives the inventory engine from upstream kafka events:
// product onboarding creates items, order creation reserves stock, order
// cancellation releases it.
type EventConsumer struct {
	reader  *kafka.Reader
	service *application.InventoryApplicationService
	tracer  trace.Tracer
}

func NewEventConsumer(reader *kafka.Reader, service *application.InventoryApplicationService, tracer trace.Tracer) *EventConsumer {
	return &EventConsumer{reader: reader, service: service, tracer: tracer}
}

// Run blocks consuming messages until ctx is cancelled. Offsets commit only
// after handling, so a crash replays rather than drops; every handler is
// idempotent enough to tolerate the replay.
func (c *EventConsumer) Run(ctx context.Context) error {
	logger.Ctx(ctx).Info().Str("topic", c.reader.Config().Topic).Msg("event consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Ctx(ctx).Info().Msg("event consumer stopped")
				return ctx.Err()
			}
			logger.Ctx(ctx).Error().Err(err).Msg("failed to fetch message, retrying")
			time.Sleep(time.Second)
			continue
		}

		c.handle(mq.ExtractContext(ctx, &msg), msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			logger.Ctx(ctx).Error().Err(err).Msg("failed to commit offset")
		}
	}
}

func (c *EventConsumer) Close() error {
	return c.reader.Close()
}

func (c *EventConsumer) handle(ctx context.Context, msg kafka.Message) {
	ctx, span := c.tracer.Start(ctx, "inventory.HandleUpstreamEvent")
	defer span.End()

	var event upstreamEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("malformed event, skipping")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var err error
	switch event.Type {
	case eventProductCreated:
		err = c.handleProductCreated(ctx, event)
	case eventOrderCreated:
		err = c.handleOrderCreated(ctx, event)
	case eventOrderCancelled:
		err = c.handleOrderCancelled(ctx, event)
	default:
		// not ours, topic is shared
		return
	}
	if err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Error().Err(err).Str("event_type", event.Type).Str("event_id", event.ID).
			Msg("failed to handle upstream event")
	}
}

func (c *EventConsumer) handleProductCreated(ctx context.Context, event upstreamEvent) error {
	var payload productCreatedPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return err
	}
	_, err := c.service.CreateItem(ctx, application.CreateItemRequest{
		SKU:               payload.SKU,
		ProductID:         payload.ProductID,
		QuantityAvailable: payload.InitialStock,
		ReorderLevel:      payload.ReorderLevel,
		MaxStock:          payload.MaxStock,
		CorrelationID:     event.CorrelationID,
	})
	// replayed message, the item is already there
	if errors.Is(err, domain.ErrItemExists) {
		return nil
	}
	return err
}

func (c *EventConsumer) handleOrderCreated(ctx context.Context, event upstreamEvent) error {
	var payload orderEventPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return err
	}
	req := application.ReserveRequest{OrderID: payload.OrderID, CorrelationID: event.CorrelationID}
	for _, item := range payload.Items {
		req.Items = append(req.Items, application.StockQuery{SKU: item.SKU, Quantity: item.Quantity})
	}
	_, err := c.service.Reserve(ctx, req)
	return err
}

func (c *EventConsumer) handleOrderCancelled(ctx context.Context, event upstreamEvent) error {
	var payload orderEventPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return err
	}
	_, err := c.service.ReleaseOrder(ctx, payload.OrderID, event.CorrelationID)
	return err
}
