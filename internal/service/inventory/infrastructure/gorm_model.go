package infrastructure

import (
	"time"

	"warehouse/internal/service/inventory/domain"
)

// InventoryItemModel maps to the inventory_items table.
type InventoryItemModel struct {
	ID                uint   `gorm:"primaryKey"`
	SKU               string `gorm:"size:64;uniqueIndex"`
	ProductID         string `gorm:"size:64;uniqueIndex"`
	QuantityAvailable int64  `gorm:"not null;default:0"`
	QuantityReserved  int64  `gorm:"not null;default:0"`
	ReorderLevel      int64  `gorm:"not null;default:10"`
	MaxStock          int64  `gorm:"not null;default:1000"`
	CostPerUnit       float64
	IsActive          bool `gorm:"default:true"`
	LastRestocked     *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// StockMovementModel maps to the stock_movements table. Rows are append-only:
// nothing in the codebase updates or deletes them.
type StockMovementModel struct {
	ID        uint      `gorm:"primaryKey"`
	SKU       string    `gorm:"size:64;index:idx_movements_sku_created,priority:1"`
	Type      string    `gorm:"size:16;not null"`
	Quantity  int64     `gorm:"not null"`
	Reference string    `gorm:"size:128;index"`
	Reason    string    `gorm:"size:255"`
	CreatedBy string    `gorm:"size:64"`
	CreatedAt time.Time `gorm:"index:idx_movements_sku_created,priority:2"`
}

func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ReservationModel maps to the reservations table. The composite
// (status, expires_at) index serves the sweeper's scan.
type ReservationModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	OrderID   string    `gorm:"size:128;index"`
	SKU       string    `gorm:"size:64;index"`
	Quantity  int64     `gorm:"not null"`
	Status    string    `gorm:"size:16;not null;index:idx_reservations_status_expires,priority:1"`
	ExpiresAt time.Time `gorm:"index:idx_reservations_status_expires,priority:2"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ReservationModel) TableName() string {
	return "reservations"
}

func toItemModel(i *domain.InventoryItem) *InventoryItemModel {
	return &InventoryItemModel{
		ID:                i.ID,
		SKU:               i.SKU,
		ProductID:         i.ProductID,
		QuantityAvailable: i.QuantityAvailable,
		QuantityReserved:  i.QuantityReserved,
		ReorderLevel:      i.ReorderLevel,
		MaxStock:          i.MaxStock,
		CostPerUnit:       i.CostPerUnit,
		IsActive:          i.IsActive,
		LastRestocked:     i.LastRestocked,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}

func toDomainItem(m *InventoryItemModel) *domain.InventoryItem {
	return &domain.InventoryItem{
		ID:                m.ID,
		SKU:               m.SKU,
		ProductID:         m.ProductID,
		QuantityAvailable: m.QuantityAvailable,
		QuantityReserved:  m.QuantityReserved,
		ReorderLevel:      m.ReorderLevel,
		MaxStock:          m.MaxStock,
		CostPerUnit:       m.CostPerUnit,
		IsActive:          m.IsActive,
		LastRestocked:     m.LastRestocked,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toMovementModel(m *domain.StockMovement) *StockMovementModel {
	return &StockMovementModel{
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

func toDomainMovement(m *StockMovementModel) *domain.StockMovement {
	return &domain.StockMovement{
		ID:        m.ID,
		SKU:       m.SKU,
		Type:      domain.MovementType(m.Type),
		Quantity:  m.Quantity,
		Reference: m.Reference,
		Reason:    m.Reason,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}

func toReservationModel(r *domain.Reservation) *ReservationModel {
	return &ReservationModel{
		ID:        r.ID,
		OrderID:   r.OrderID,
		SKU:       r.SKU,
		Quantity:  r.Quantity,
		Status:    string(r.Status),
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toDomainReservation(m *ReservationModel) *domain.Reservation {
	return &domain.Reservation{
		ID:        m.ID,
		OrderID:   m.OrderID,
		SKU:       m.SKU,
		Quantity:  m.Quantity,
		Status:    domain.ReservationStatus(m.Status),
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
