package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the inventory service.
const (
	EventInventoryCreated = "inventory.created"
	EventStockUpdated     = "inventory.stock.updated"
	EventStockReserved    = "inventory.stock.reserved"
	EventStockReleased    = "inventory.stock.released"
	EventLowStock         = "inventory.low.stock"
	EventOutOfStock       = "inventory.out.of.stock"
)

// Event is the envelope handed to the publisher port.
type Event struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`
	Source        string      `json:"source"`
	Time          time.Time   `json:"time"`
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
}

// NewEvent stamps an envelope around payload. An empty correlation id gets a
// fresh one so downstream consumers can always correlate.
func NewEvent(eventType string, payload interface{}, correlationID string) Event {
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	return Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        "inventory-service",
		Time:          time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          payload,
	}
}

// StockLevelPayload describes the quantity state after a ledger write.
type StockLevelPayload struct {
	SKU               string `json:"sku"`
	ProductID         string `json:"productId"`
	QuantityAvailable int64  `json:"quantityAvailable"`
	QuantityReserved  int64  `json:"quantityReserved"`
	MovementType      string `json:"movementType,omitempty"`
	Reference         string `json:"reference,omitempty"`
}

// ReservationPayload describes a reservation lifecycle event.
type ReservationPayload struct {
	ReservationID string `json:"reservationId"`
	OrderID       string `json:"orderId"`
	SKU           string `json:"sku"`
	ProductID     string `json:"productId"`
	Quantity      int64  `json:"quantity"`
	Reason        string `json:"reason,omitempty"`
	ExpiresAt     string `json:"expiresAt,omitempty"`
}
