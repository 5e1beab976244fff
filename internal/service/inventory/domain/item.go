package domain

import "time"

// InventoryItem is the aggregate root of the stock ledger, one row per SKU.
// Quantities are mutated exclusively through Apply / ApplyConfirm so that
// every change is paired with a StockMovement by the application layer.
type InventoryItem struct {
	ID                uint
	SKU               string
	ProductID         string
	QuantityAvailable int64
	QuantityReserved  int64
	ReorderLevel      int64
	MaxStock          int64
	CostPerUnit       float64
	IsActive          bool
	LastRestocked     *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewInventoryItem creates an item with sane defaults for optional thresholds.
func NewInventoryItem(sku, productID string, initial int64) (*InventoryItem, error) {
	if sku == "" || productID == "" {
		return nil, ErrInvalidQuantity
	}
	if initial < 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now().UTC()
	return &InventoryItem{
		SKU:               sku,
		ProductID:         productID,
		QuantityAvailable: initial,
		ReorderLevel:      10,
		MaxStock:          1000,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (i *InventoryItem) TotalQuantity() int64 {
	return i.QuantityAvailable + i.QuantityReserved
}

func (i *InventoryItem) IsLowStock() bool {
	return i.QuantityAvailable <= i.ReorderLevel
}

func (i *InventoryItem) IsOutOfStock() bool {
	return i.QuantityAvailable == 0
}

// Apply mutates the quantities for one movement. A result that would go
// negative is rejected, never clamped: clamping would desynchronize the
// stored quantities from the movement history.
func (i *InventoryItem) Apply(t MovementType, quantity int64) error {
	if t == MovementAdjustment {
		if quantity < 0 {
			return ErrInvalidQuantity
		}
	} else if quantity <= 0 {
		return ErrInvalidQuantity
	}

	now := time.Now().UTC()
	switch t {
	case MovementIn:
		i.QuantityAvailable += quantity
		i.LastRestocked = &now
	case MovementOut:
		if i.QuantityAvailable < quantity {
			return ErrInsufficientStock
		}
		i.QuantityAvailable -= quantity
	case MovementReserved:
		if i.QuantityAvailable < quantity {
			return ErrInsufficientStock
		}
		i.QuantityAvailable -= quantity
		i.QuantityReserved += quantity
	case MovementReleased:
		if i.QuantityReserved < quantity {
			return ErrInvalidState
		}
		i.QuantityReserved -= quantity
		i.QuantityAvailable += quantity
	case MovementAdjustment:
		// absolute set of the available quantity
		i.QuantityAvailable = quantity
	default:
		return ErrInvalidQuantity
	}
	i.UpdatedAt = now
	return nil
}

// ApplyConfirm settles a reservation: the hold was already deducted from
// available at reserve time, so confirming only burns the reserved amount.
// Recorded as an OUT movement, but deliberately distinct from Apply(OUT).
func (i *InventoryItem) ApplyConfirm(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.QuantityReserved < quantity {
		return ErrInvalidState
	}
	i.QuantityReserved -= quantity
	i.UpdatedAt = time.Now().UTC()
	return nil
}
