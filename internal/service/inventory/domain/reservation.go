package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus is the lifecycle state of a hold. PENDING is the only
// open state; all four terminal states are reachable from it exactly once.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusReleased  ReservationStatus = "RELEASED"
	StatusExpired   ReservationStatus = "EXPIRED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed out of s.
func (s ReservationStatus) Terminal() bool {
	return s != StatusPending
}

// Reservation is a time-bounded hold of stock against an order. Its quantity
// was moved from available to reserved at creation time; the one terminal
// transition reverses or settles that ledger effect.
type Reservation struct {
	ID        string
	OrderID   string
	SKU       string
	Quantity  int64
	Status    ReservationStatus
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReservation creates a pending reservation expiring after ttl.
func NewReservation(sku, orderID string, quantity int64, ttl time.Duration) (*Reservation, error) {
	if sku == "" || orderID == "" {
		return nil, ErrInvalidQuantity
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now().UTC()
	return &Reservation{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		SKU:       sku,
		Quantity:  quantity,
		Status:    StatusPending,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *Reservation) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
