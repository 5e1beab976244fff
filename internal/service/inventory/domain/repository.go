// internal/service/inventory/domain/repository.go
package domain

import (
	"context"
	"time"
)

// ItemRepository persists inventory items. It lives in the domain layer and
// is implemented by the infrastructure layer.
type ItemRepository interface {
	Create(ctx context.Context, item *InventoryItem) error
	GetBySKU(ctx context.Context, sku string) (*InventoryItem, error)
	// GetBySKUForUpdate reads the row with an exclusive row lock. Only valid
	// inside a unit of work; every read-then-write path must use it.
	GetBySKUForUpdate(ctx context.Context, sku string) (*InventoryItem, error)
	GetByProductID(ctx context.Context, productID string) (*InventoryItem, error)
	GetManyBySKUs(ctx context.Context, skus []string) ([]*InventoryItem, error)
	Save(ctx context.Context, item *InventoryItem) error
	Delete(ctx context.Context, sku string) error
	ListLowStock(ctx context.Context) ([]*InventoryItem, error)
}

// MovementRepository appends to and reads the immutable audit log.
type MovementRepository interface {
	Append(ctx context.Context, m *StockMovement) error
	ListBySKU(ctx context.Context, sku string, limit int) ([]*StockMovement, error)
}

// ReservationRepository persists reservations and their transitions.
type ReservationRepository interface {
	Create(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	ListByOrderID(ctx context.Context, orderID string) ([]*Reservation, error)
	// TransitionStatus performs a compare-and-swap status update
	// (UPDATE ... WHERE id=? AND status=?). It returns false when the
	// reservation was not in the expected state, which is how concurrent
	// confirm/expire races lose deterministically.
	TransitionStatus(ctx context.Context, id string, from, to ReservationStatus) (bool, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*Reservation, error)
	// PurgeTerminal hard-deletes terminal reservations last touched before
	// the cutoff. Housekeeping only; never touches the ledger.
	PurgeTerminal(ctx context.Context, olderThan time.Time) (int64, error)
}

// Repositories bundles the stores bound to one transactional scope.
type Repositories struct {
	Items        ItemRepository
	Movements    MovementRepository
	Reservations ReservationRepository
}

// UnitOfWork runs fn inside a single atomic transaction. Either every write
// made through the passed repositories commits, or none do.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(r Repositories) error) error
}
