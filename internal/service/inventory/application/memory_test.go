package application

import (
	"context"
	"sync"
	"time"

	"warehouse/internal/service/inventory/domain"
	"warehouse/internal/service/inventory/domain/port"
)

// memoryUnitOfWork is an in-memory domain.UnitOfWork for tests. Transactions
// are serialized by a mutex, which models row locking coarsely but preserves
// the property under test: concurrent reserves never oversell.
type memoryUnitOfWork struct {
	mu             sync.Mutex
	items          map[string]*domain.InventoryItem
	movements      []*domain.StockMovement
	reservations   map[string]*domain.Reservation
	nextMovementID uint
}

func newMemoryUnitOfWork() *memoryUnitOfWork {
	return &memoryUnitOfWork{
		items:        make(map[string]*domain.InventoryItem),
		reservations: make(map[string]*domain.Reservation),
	}
}

func (u *memoryUnitOfWork) Execute(ctx context.Context, fn func(r domain.Repositories) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	snapItems := make(map[string]*domain.InventoryItem, len(u.items))
	for k, v := range u.items {
		c := *v
		snapItems[k] = &c
	}
	snapReservations := make(map[string]*domain.Reservation, len(u.reservations))
	for k, v := range u.reservations {
		c := *v
		snapReservations[k] = &c
	}
	snapMovements := make([]*domain.StockMovement, len(u.movements))
	copy(snapMovements, u.movements)
	snapNext := u.nextMovementID

	err := fn(domain.Repositories{
		Items:        &memItemRepo{u: u},
		Movements:    &memMovementRepo{u: u},
		Reservations: &memReservationRepo{u: u},
	})
	if err != nil {
		u.items = snapItems
		u.reservations = snapReservations
		u.movements = snapMovements
		u.nextMovementID = snapNext
	}
	return err
}

// seed installs an item outside any transaction.
func (u *memoryUnitOfWork) seed(item *domain.InventoryItem) {
	u.mu.Lock()
	defer u.mu.Unlock()
	c := *item
	u.items[item.SKU] = &c
}

func (u *memoryUnitOfWork) item(sku string) *domain.InventoryItem {
	u.mu.Lock()
	defer u.mu.Unlock()
	c := *u.items[sku]
	return &c
}

func (u *memoryUnitOfWork) reservation(id string) *domain.Reservation {
	u.mu.Lock()
	defer u.mu.Unlock()
	if r, ok := u.reservations[id]; ok {
		c := *r
		return &c
	}
	return nil
}

func (u *memoryUnitOfWork) movementsFor(sku string) []*domain.StockMovement {
	u.mu.Lock()
	defer u.mu.Unlock()
	var out []*domain.StockMovement
	for _, m := range u.movements {
		if m.SKU == sku {
			c := *m
			out = append(out, &c)
		}
	}
	return out
}

type memItemRepo struct{ u *memoryUnitOfWork }

func (r *memItemRepo) Create(ctx context.Context, item *domain.InventoryItem) error {
	if _, ok := r.u.items[item.SKU]; ok {
		return domain.ErrItemExists
	}
	for _, existing := range r.u.items {
		if existing.ProductID == item.ProductID {
			return domain.ErrItemExists
		}
	}
	c := *item
	r.u.items[item.SKU] = &c
	return nil
}

func (r *memItemRepo) GetBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	item, ok := r.u.items[sku]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	c := *item
	return &c, nil
}

func (r *memItemRepo) GetBySKUForUpdate(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	return r.GetBySKU(ctx, sku)
}

func (r *memItemRepo) GetByProductID(ctx context.Context, productID string) (*domain.InventoryItem, error) {
	for _, item := range r.u.items {
		if item.ProductID == productID {
			c := *item
			return &c, nil
		}
	}
	return nil, domain.ErrItemNotFound
}

func (r *memItemRepo) GetManyBySKUs(ctx context.Context, skus []string) ([]*domain.InventoryItem, error) {
	var out []*domain.InventoryItem
	for _, sku := range skus {
		if item, ok := r.u.items[sku]; ok {
			c := *item
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memItemRepo) Save(ctx context.Context, item *domain.InventoryItem) error {
	if _, ok := r.u.items[item.SKU]; !ok {
		return domain.ErrItemNotFound
	}
	c := *item
	r.u.items[item.SKU] = &c
	return nil
}

func (r *memItemRepo) Delete(ctx context.Context, sku string) error {
	if _, ok := r.u.items[sku]; !ok {
		return domain.ErrItemNotFound
	}
	delete(r.u.items, sku)
	return nil
}

func (r *memItemRepo) ListLowStock(ctx context.Context) ([]*domain.InventoryItem, error) {
	var out []*domain.InventoryItem
	for _, item := range r.u.items {
		if item.IsActive && item.IsLowStock() {
			c := *item
			out = append(out, &c)
		}
	}
	return out, nil
}

type memMovementRepo struct{ u *memoryUnitOfWork }

func (r *memMovementRepo) Append(ctx context.Context, m *domain.StockMovement) error {
	r.u.nextMovementID++
	m.ID = r.u.nextMovementID
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	c := *m
	r.u.movements = append(r.u.movements, &c)
	return nil
}

func (r *memMovementRepo) ListBySKU(ctx context.Context, sku string, limit int) ([]*domain.StockMovement, error) {
	var out []*domain.StockMovement
	for i := len(r.u.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if r.u.movements[i].SKU == sku {
			c := *r.u.movements[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

type memReservationRepo struct{ u *memoryUnitOfWork }

func (r *memReservationRepo) Create(ctx context.Context, res *domain.Reservation) error {
	c := *res
	r.u.reservations[res.ID] = &c
	return nil
}

func (r *memReservationRepo) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	res, ok := r.u.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	c := *res
	return &c, nil
}

func (r *memReservationRepo) ListByOrderID(ctx context.Context, orderID string) ([]*domain.Reservation, error) {
	var out []*domain.Reservation
	for _, res := range r.u.reservations {
		if res.OrderID == orderID {
			c := *res
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memReservationRepo) TransitionStatus(ctx context.Context, id string, from, to domain.ReservationStatus) (bool, error) {
	res, ok := r.u.reservations[id]
	if !ok || res.Status != from {
		return false, nil
	}
	res.Status = to
	res.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *memReservationRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]*domain.Reservation, error) {
	var out []*domain.Reservation
	for _, res := range r.u.reservations {
		if res.Status == domain.StatusPending && res.IsExpired(now) {
			c := *res
			out = append(out, &c)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memReservationRepo) PurgeTerminal(ctx context.Context, olderThan time.Time) (int64, error) {
	var purged int64
	for id, res := range r.u.reservations {
		if res.Status.Terminal() && res.UpdatedAt.Before(olderThan) {
			delete(r.u.reservations, id)
			purged++
		}
	}
	return purged, nil
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []domain.Event
	fail   bool
}

func (p *capturePublisher) Publish(ctx context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return context.DeadlineExceeded
	}
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) byType(eventType string) []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// stubRules evaluates the default threshold expressions without a real
// expression engine.
type stubRules struct{}

func (stubRules) Evaluate(ctx context.Context, rule string, fact port.StockFact) (bool, error) {
	switch rule {
	case "available == 0":
		return fact.Available == 0, nil
	case "available <= reorder_level && available > 0":
		return fact.Available <= fact.ReorderLevel && fact.Available > 0, nil
	}
	return false, nil
}
