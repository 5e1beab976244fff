package domain

import "time"

// MovementType classifies a single ledger mutation.
type MovementType string

const (
	MovementIn         MovementType = "IN"         // restock
	MovementOut        MovementType = "OUT"        // permanent deduction
	MovementReserved   MovementType = "RESERVED"   // hold against available stock
	MovementReleased   MovementType = "RELEASED"   // hold returned to available stock
	MovementAdjustment MovementType = "ADJUSTMENT" // absolute correction of available stock
)

// Valid reports whether t is one of the known movement types.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementReserved, MovementReleased, MovementAdjustment:
		return true
	}
	return false
}

// StockMovement is an immutable audit record. Every ledger mutation writes
// exactly one movement in the same transaction; movements are never updated
// or deleted.
type StockMovement struct {
	ID        uint
	SKU       string
	Type      MovementType
	Quantity  int64
	Reference string // order id, restock id, ...
	Reason    string
	CreatedBy string
	CreatedAt time.Time
}
