// internal/service/inventory/application/dto.go
package application

import (
	"time"

	"warehouse/internal/service/inventory/domain"
	"warehouse/internal/service/inventory/domain/port"
)

// StockQuery is one (sku, quantity) pair of an availability or reserve call.
type StockQuery struct {
	SKU      string `json:"sku"`
	Quantity int64  `json:"quantity"`
}

// ItemAvailability is the per-item verdict of an availability check.
type ItemAvailability struct {
	SKU               string `json:"sku"`
	RequestedQuantity int64  `json:"requested_quantity"`
	AvailableQuantity int64  `json:"available_quantity"`
	Available         bool   `json:"available"`
}

// AvailabilityResult aggregates per-item verdicts; Available is the AND of
// all items.
type AvailabilityResult struct {
	Available bool               `json:"available"`
	Items     []ItemAvailability `json:"items"`
	CheckedAt time.Time          `json:"checked_at"`
}

// ReserveRequest holds stock for every item of an order, all or nothing.
// A nil TTL falls back to the configured default; an explicit zero creates a
// hold that is already due for the next sweep.
type ReserveRequest struct {
	OrderID       string       `json:"order_id"`
	Items         []StockQuery `json:"items"`
	TTLMinutes    *int         `json:"ttl_minutes"`
	CorrelationID string       `json:"-"`
}

type ReservationDTO struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	SKU       string    `json:"sku"`
	Quantity  int64     `json:"quantity"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type ReserveResult struct {
	Reservations []ReservationDTO `json:"reservations"`
	ExpiresAt    time.Time        `json:"expires_at"`
}

// AdjustRequest is a manual ledger correction outside the reservation flow.
type AdjustRequest struct {
	SKU           string              `json:"sku"`
	Quantity      int64               `json:"quantity"`
	MovementType  domain.MovementType `json:"movement_type"`
	Reference     string              `json:"reference"`
	Reason        string              `json:"reason"`
	Actor         string              `json:"actor"`
	CorrelationID string              `json:"-"`
}

type MovementDTO struct {
	ID        uint      `json:"id"`
	SKU       string    `json:"sku"`
	Type      string    `json:"movement_type"`
	Quantity  int64     `json:"quantity"`
	Reference string    `json:"reference,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateItemRequest onboards a SKU. Zero-value thresholds fall back to the
// domain defaults.
type CreateItemRequest struct {
	SKU               string  `json:"sku"`
	ProductID         string  `json:"product_id"`
	QuantityAvailable int64   `json:"quantity_available"`
	ReorderLevel      int64   `json:"reorder_level"`
	MaxStock          int64   `json:"max_stock"`
	CostPerUnit       float64 `json:"cost_per_unit"`
	CorrelationID     string  `json:"-"`
}

// UpdateItemRequest mutates item metadata. Quantities are deliberately
// absent: those change only through the ledger.
type UpdateItemRequest struct {
	ReorderLevel *int64   `json:"reorder_level"`
	MaxStock     *int64   `json:"max_stock"`
	CostPerUnit  *float64 `json:"cost_per_unit"`
	IsActive     *bool    `json:"is_active"`
}

// BulkOperation is one entry of a bulk metadata update.
type BulkOperation struct {
	SKU          string   `json:"sku"`
	ReorderLevel *int64   `json:"reorder_level"`
	MaxStock     *int64   `json:"max_stock"`
	CostPerUnit  *float64 `json:"cost_per_unit"`
	IsActive     *bool    `json:"is_active"`
}

type BulkResult struct {
	SKU     string `json:"sku"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type ItemDTO struct {
	SKU               string               `json:"sku"`
	ProductID         string               `json:"product_id"`
	QuantityAvailable int64                `json:"quantity_available"`
	QuantityReserved  int64                `json:"quantity_reserved"`
	TotalQuantity     int64                `json:"total_quantity"`
	ReorderLevel      int64                `json:"reorder_level"`
	MaxStock          int64                `json:"max_stock"`
	CostPerUnit       float64              `json:"cost_per_unit"`
	IsLowStock        bool                 `json:"is_low_stock"`
	IsActive          bool                 `json:"is_active"`
	LastRestocked     *time.Time           `json:"last_restocked,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	Product           *port.ProductDetails `json:"product,omitempty"`
}

func toReservationDTO(r *domain.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:        r.ID,
		OrderID:   r.OrderID,
		SKU:       r.SKU,
		Quantity:  r.Quantity,
		Status:    string(r.Status),
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
	}
}

func toMovementDTO(m *domain.StockMovement) MovementDTO {
	return MovementDTO{
		ID:        m.ID,
		SKU:       m.SKU,
		Type:      string(m.Type),
		Quantity:  m.Quantity,
		Reference: m.Reference,
		Reason:    m.Reason,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}

func toItemDTO(i *domain.InventoryItem) *ItemDTO {
	return &ItemDTO{
		SKU:               i.SKU,
		ProductID:         i.ProductID,
		QuantityAvailable: i.QuantityAvailable,
		QuantityReserved:  i.QuantityReserved,
		TotalQuantity:     i.TotalQuantity(),
		ReorderLevel:      i.ReorderLevel,
		MaxStock:          i.MaxStock,
		CostPerUnit:       i.CostPerUnit,
		IsLowStock:        i.IsLowStock(),
		IsActive:          i.IsActive,
		LastRestocked:     i.LastRestocked,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}
