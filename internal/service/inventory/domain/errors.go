package domain

import "errors"

// Domain errors surfaced by the ledger and the reservation store. The
// application layer maps them 1:1 to caller-visible failures; storage
// details never leak past the repositories.
var (
	ErrItemNotFound        = errors.New("inventory item not found")
	ErrItemExists          = errors.New("inventory item already exists")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidState        = errors.New("reservation state does not allow this transition")
	ErrOrderMismatch       = errors.New("order id does not match reservation")
	ErrReservationExpired  = errors.New("reservation has expired")
	ErrInvalidQuantity     = errors.New("quantity must be a positive integer")
)
