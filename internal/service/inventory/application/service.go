// internal/service/inventory/application/service.go
package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"warehouse/internal/pkg/logger"
	"warehouse/internal/pkg/metrics"
	"warehouse/internal/service/inventory/domain"
	"warehouse/internal/service/inventory/domain/port"
)

// ErrUnsupportedMovement rejects manual adjustments with a movement type
// reserved for the reservation flow.
var ErrUnsupportedMovement = errors.New("movement type not allowed for manual adjustment")

// StockCache is the read-side cache consumed by the engine. A nil cache is
// valid; every method tolerates absence.
type StockCache interface {
	GetAvailability(ctx context.Context, key string) (*AvailabilityResult, bool)
	SetAvailability(ctx context.Context, key string, result *AvailabilityResult)
	GetItem(ctx context.Context, key string) (*ItemDTO, bool)
	SetItem(ctx context.Context, key string, item *ItemDTO)
	// Invalidate drops every stock-related entry. Called after any write.
	Invalidate(ctx context.Context)
}

// Options tunes engine behavior; zero values fall back to sane defaults.
type Options struct {
	DefaultTTL     time.Duration
	PurgeAfter     time.Duration
	LowStockRule   string
	OutOfStockRule string
}

// InventoryApplicationService is the inventory engine: it orchestrates the
// stock ledger and the reservation store inside single units of work and
// publishes domain events describing each state change.
type InventoryApplicationService struct {
	uow       domain.UnitOfWork
	tracer    trace.Tracer
	publisher port.EventPublisher
	products  port.ProductClient
	rules     port.StockRuleEngine
	cache     StockCache

	defaultTTL     time.Duration
	purgeAfter     time.Duration
	lowStockRule   string
	outOfStockRule string
}

func NewInventoryApplicationService(uow domain.UnitOfWork, tracer trace.Tracer, publisher port.EventPublisher, products port.ProductClient, rules port.StockRuleEngine, cache StockCache, opts Options) *InventoryApplicationService {
	if opts.DefaultTTL == 0 {
		opts.DefaultTTL = 30 * time.Minute
	}
	if opts.PurgeAfter == 0 {
		opts.PurgeAfter = 24 * time.Hour
	}
	if opts.LowStockRule == "" {
		opts.LowStockRule = "available <= reorder_level && available > 0"
	}
	if opts.OutOfStockRule == "" {
		opts.OutOfStockRule = "available == 0"
	}
	return &InventoryApplicationService{
		uow: uow, tracer: tracer, publisher: publisher,
		products: products, rules: rules, cache: cache,
		defaultTTL: opts.DefaultTTL, purgeAfter: opts.PurgeAfter,
		lowStockRule: opts.LowStockRule, outOfStockRule: opts.OutOfStockRule,
	}
}

// CheckAvailability is a pure read: no locks, no side effects. A missing SKU
// reports available quantity 0, not an error.
func (s *InventoryApplicationService) CheckAvailability(ctx context.Context, queries []StockQuery) (*AvailabilityResult, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.CheckAvailability")
	defer span.End()

	if len(queries) == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	for _, q := range queries {
		if q.SKU == "" || q.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
	}

	cacheKey := availabilityCacheKey(queries)
	if s.cache != nil {
		if cached, ok := s.cache.GetAvailability(ctx, cacheKey); ok {
			metrics.StockCheckCache.WithLabelValues("hit").Inc()
			span.AddEvent("stock check served from cache")
			return cached, nil
		}
		metrics.StockCheckCache.WithLabelValues("miss").Inc()
	}

	skus := make([]string, 0, len(queries))
	for _, q := range queries {
		skus = append(skus, q.SKU)
	}

	var items []*domain.InventoryItem
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		var err error
		items, err = r.Items.GetManyBySKUs(ctx, skus)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	bySKU := make(map[string]*domain.InventoryItem, len(items))
	for _, it := range items {
		bySKU[it.SKU] = it
	}

	result := &AvailabilityResult{Available: true, CheckedAt: time.Now().UTC()}
	for _, q := range queries {
		var available int64
		if it, ok := bySKU[q.SKU]; ok {
			available = it.QuantityAvailable
		}
		ok := available >= q.Quantity
		if !ok {
			result.Available = false
		}
		result.Items = append(result.Items, ItemAvailability{
			SKU:               q.SKU,
			RequestedQuantity: q.Quantity,
			AvailableQuantity: available,
			Available:         ok,
		})
	}

	if s.cache != nil {
		s.cache.SetAvailability(ctx, cacheKey, result)
	}
	return result, nil
}

// Reserve holds stock for every item of the order inside one transaction.
// Any single failure rolls back the whole batch: no partial holds survive.
func (s *InventoryApplicationService) Reserve(ctx context.Context, req ReserveRequest) (*ReserveResult, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.Reserve")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", req.OrderID), attribute.Int("order.items", len(req.Items)))

	if req.OrderID == "" || len(req.Items) == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	for _, item := range req.Items {
		if item.SKU == "" || item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
	}

	ttl := s.defaultTTL
	if req.TTLMinutes != nil {
		if *req.TTLMinutes < 0 {
			return nil, domain.ErrInvalidQuantity
		}
		ttl = time.Duration(*req.TTLMinutes) * time.Minute
	}
	expiresAt := time.Now().UTC().Add(ttl)

	var created []*domain.Reservation
	var events []domain.Event

	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		for _, item := range req.Items {
			it, err := r.Items.GetBySKUForUpdate(ctx, item.SKU)
			if err != nil {
				return err
			}
			if err := it.Apply(domain.MovementReserved, item.Quantity); err != nil {
				return err
			}

			res, err := domain.NewReservation(item.SKU, req.OrderID, item.Quantity, ttl)
			if err != nil {
				return err
			}
			res.ExpiresAt = expiresAt // one shared deadline for the batch

			if err := r.Reservations.Create(ctx, res); err != nil {
				return err
			}
			if err := r.Items.Save(ctx, it); err != nil {
				return err
			}
			if err := r.Movements.Append(ctx, &domain.StockMovement{
				SKU:       item.SKU,
				Type:      domain.MovementReserved,
				Quantity:  item.Quantity,
				Reference: req.OrderID,
				Reason:    fmt.Sprintf("Stock reserved for order %s", req.OrderID),
				CreatedBy: "system",
			}); err != nil {
				return err
			}

			created = append(created, res)
			events = append(events, domain.NewEvent(domain.EventStockReserved, domain.ReservationPayload{
				ReservationID: res.ID,
				OrderID:       req.OrderID,
				SKU:           item.SKU,
				ProductID:     it.ProductID,
				Quantity:      item.Quantity,
				ExpiresAt:     expiresAt.Format(time.RFC3339),
			}, req.CorrelationID))
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reservation batch failed")
		return nil, err
	}

	for _, res := range created {
		metrics.ReservationsCreatedTotal.Inc()
		metrics.MovementsTotal.WithLabelValues(string(domain.MovementReserved)).Inc()
		logger.Ctx(ctx).Info().Str("reservation_id", res.ID).Str("order_id", req.OrderID).
			Str("sku", res.SKU).Int64("quantity", res.Quantity).Msg("reservation created")
	}
	s.invalidateCache(ctx)
	s.publish(ctx, events...)

	result := &ReserveResult{ExpiresAt: expiresAt}
	for _, res := range created {
		result.Reservations = append(result.Reservations, toReservationDTO(res))
	}
	return result, nil
}

// ConfirmReservation settles a pending hold into a permanent deduction. The
// status flip is a compare-and-swap so a racing sweep loses deterministically.
func (s *InventoryApplicationService) ConfirmReservation(ctx context.Context, reservationID, orderID, correlationID string) error {
	ctx, span := s.tracer.Start(ctx, "inventory.ConfirmReservation")
	defer span.End()
	span.SetAttributes(attribute.String("reservation.id", reservationID), attribute.String("order.id", orderID))

	var snapshot *domain.InventoryItem
	var quantity int64

	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		res, err := r.Reservations.GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.OrderID != orderID {
			return domain.ErrOrderMismatch
		}
		if res.Status != domain.StatusPending {
			return domain.ErrInvalidState
		}
		if res.IsExpired(time.Now().UTC()) {
			return domain.ErrReservationExpired
		}

		ok, err := r.Reservations.TransitionStatus(ctx, reservationID, domain.StatusPending, domain.StatusConfirmed)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidState
		}

		it, err := r.Items.GetBySKUForUpdate(ctx, res.SKU)
		if err != nil {
			return err
		}
		if err := it.ApplyConfirm(res.Quantity); err != nil {
			return err
		}
		if err := r.Items.Save(ctx, it); err != nil {
			return err
		}
		if err := r.Movements.Append(ctx, &domain.StockMovement{
			SKU:       res.SKU,
			Type:      domain.MovementOut,
			Quantity:  res.Quantity,
			Reference: orderID,
			Reason:    fmt.Sprintf("Sold for order %s", orderID),
			CreatedBy: "system",
		}); err != nil {
			return err
		}
		snapshot = it
		quantity = res.Quantity
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	metrics.MovementsTotal.WithLabelValues(string(domain.MovementOut)).Inc()
	logger.Ctx(ctx).Info().Str("reservation_id", reservationID).Str("order_id", orderID).
		Int64("quantity", quantity).Msg("reservation confirmed")

	s.invalidateCache(ctx)
	s.publish(ctx, domain.NewEvent(domain.EventStockUpdated, domain.StockLevelPayload{
		SKU:               snapshot.SKU,
		ProductID:         snapshot.ProductID,
		QuantityAvailable: snapshot.QuantityAvailable,
		QuantityReserved:  snapshot.QuantityReserved,
		MovementType:      string(domain.MovementOut),
		Reference:         orderID,
	}, correlationID))
	s.maybeAlert(ctx, snapshot, correlationID)
	return nil
}

// CancelReservation releases a pending hold back to available stock. Only a
// PENDING reservation may be cancelled; terminal states are never overwritten.
func (s *InventoryApplicationService) CancelReservation(ctx context.Context, reservationID, correlationID string) error {
	return s.settle(ctx, reservationID, domain.StatusCancelled, "cancelled", correlationID)
}

// ReleaseReservation is the explicit, non-expiry release path.
func (s *InventoryApplicationService) ReleaseReservation(ctx context.Context, reservationID, correlationID string) error {
	return s.settle(ctx, reservationID, domain.StatusReleased, "released", correlationID)
}

// settle drives the one allowed PENDING -> terminal transition that returns
// stock: CANCELLED, RELEASED or EXPIRED. The ledger effect is identical in
// all three cases, only the terminal state and the event reason differ.
func (s *InventoryApplicationService) settle(ctx context.Context, reservationID string, terminal domain.ReservationStatus, reason, correlationID string) error {
	ctx, span := s.tracer.Start(ctx, "inventory.SettleReservation")
	defer span.End()
	span.SetAttributes(attribute.String("reservation.id", reservationID), attribute.String("reservation.terminal", string(terminal)))

	var res *domain.Reservation
	var productID string

	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		var err error
		res, err = r.Reservations.GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.Status != domain.StatusPending {
			return domain.ErrInvalidState
		}

		ok, err := r.Reservations.TransitionStatus(ctx, reservationID, domain.StatusPending, terminal)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidState
		}

		it, err := r.Items.GetBySKUForUpdate(ctx, res.SKU)
		if err != nil {
			return err
		}
		if err := it.Apply(domain.MovementReleased, res.Quantity); err != nil {
			return err
		}
		if err := r.Items.Save(ctx, it); err != nil {
			return err
		}
		if err := r.Movements.Append(ctx, &domain.StockMovement{
			SKU:       res.SKU,
			Type:      domain.MovementReleased,
			Quantity:  res.Quantity,
			Reference: res.OrderID,
			Reason:    fmt.Sprintf("Released %s reservation for order %s", reason, res.OrderID),
			CreatedBy: "system",
		}); err != nil {
			return err
		}
		productID = it.ProductID
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	metrics.MovementsTotal.WithLabelValues(string(domain.MovementReleased)).Inc()
	logger.Ctx(ctx).Info().Str("reservation_id", reservationID).Str("terminal", string(terminal)).
		Msg("reservation settled")

	s.invalidateCache(ctx)
	s.publish(ctx, domain.NewEvent(domain.EventStockReleased, domain.ReservationPayload{
		ReservationID: res.ID,
		OrderID:       res.OrderID,
		SKU:           res.SKU,
		ProductID:     productID,
		Quantity:      res.Quantity,
		Reason:        reason,
	}, correlationID))
	return nil
}

// ReleaseOrder releases every pending reservation of an order. Used when an
// order is cancelled upstream. Returns how many reservations were released.
func (s *InventoryApplicationService) ReleaseOrder(ctx context.Context, orderID, correlationID string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.ReleaseOrder")
	defer span.End()

	var pending []*domain.Reservation
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		all, err := r.Reservations.ListByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		for _, res := range all {
			if res.Status == domain.StatusPending {
				pending = append(pending, res)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	released := 0
	for _, res := range pending {
		if err := s.CancelReservation(ctx, res.ID, correlationID); err != nil {
			// a concurrent confirm or sweep already settled it
			if errors.Is(err, domain.ErrInvalidState) {
				continue
			}
			return released, err
		}
		released++
	}
	return released, nil
}

// AdjustStock applies a manual correction. RESERVED/RELEASED are refused
// here: holds move only through the reservation flow.
func (s *InventoryApplicationService) AdjustStock(ctx context.Context, req AdjustRequest) (*MovementDTO, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.AdjustStock")
	defer span.End()
	span.SetAttributes(attribute.String("sku", req.SKU), attribute.String("movement.type", string(req.MovementType)))

	switch req.MovementType {
	case domain.MovementIn, domain.MovementOut, domain.MovementAdjustment:
	default:
		return nil, ErrUnsupportedMovement
	}
	if req.Actor == "" {
		req.Actor = "system"
	}

	var snapshot *domain.InventoryItem
	movement := &domain.StockMovement{
		SKU:       req.SKU,
		Type:      req.MovementType,
		Quantity:  req.Quantity,
		Reference: req.Reference,
		Reason:    req.Reason,
		CreatedBy: req.Actor,
	}

	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		it, err := r.Items.GetBySKUForUpdate(ctx, req.SKU)
		if err != nil {
			return err
		}
		if err := it.Apply(req.MovementType, req.Quantity); err != nil {
			return err
		}
		if err := r.Items.Save(ctx, it); err != nil {
			return err
		}
		if err := r.Movements.Append(ctx, movement); err != nil {
			return err
		}
		snapshot = it
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	metrics.MovementsTotal.WithLabelValues(string(req.MovementType)).Inc()
	logger.Ctx(ctx).Info().Str("sku", req.SKU).Str("movement_type", string(req.MovementType)).
		Int64("quantity", req.Quantity).Msg("stock adjusted")

	s.invalidateCache(ctx)
	s.publish(ctx, domain.NewEvent(domain.EventStockUpdated, domain.StockLevelPayload{
		SKU:               snapshot.SKU,
		ProductID:         snapshot.ProductID,
		QuantityAvailable: snapshot.QuantityAvailable,
		QuantityReserved:  snapshot.QuantityReserved,
		MovementType:      string(req.MovementType),
		Reference:         req.Reference,
	}, req.CorrelationID))
	s.maybeAlert(ctx, snapshot, req.CorrelationID)

	dto := toMovementDTO(movement)
	return &dto, nil
}

// BulkUpdate applies independent metadata updates. Unlike Reserve, partial
// failure is allowed: each operation reports its own outcome and already
// applied operations stay applied.
func (s *InventoryApplicationService) BulkUpdate(ctx context.Context, ops []BulkOperation) []BulkResult {
	ctx, span := s.tracer.Start(ctx, "inventory.BulkUpdate")
	defer span.End()
	span.SetAttributes(attribute.Int("operations", len(ops)))

	results := make([]BulkResult, 0, len(ops))
	for _, op := range ops {
		err := s.uow.Execute(ctx, func(r domain.Repositories) error {
			it, err := r.Items.GetBySKUForUpdate(ctx, op.SKU)
			if err != nil {
				return err
			}
			if op.ReorderLevel != nil {
				it.ReorderLevel = *op.ReorderLevel
			}
			if op.MaxStock != nil {
				it.MaxStock = *op.MaxStock
			}
			if op.CostPerUnit != nil {
				it.CostPerUnit = *op.CostPerUnit
			}
			if op.IsActive != nil {
				it.IsActive = *op.IsActive
			}
			it.UpdatedAt = time.Now().UTC()
			return r.Items.Save(ctx, it)
		})
		if err != nil {
			results = append(results, BulkResult{SKU: op.SKU, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{SKU: op.SKU, Success: true})
	}
	s.invalidateCache(ctx)
	return results
}

// CreateItem onboards a SKU. Initial stock is recorded as an IN movement so
// the audit trail accounts for every unit from the start.
func (s *InventoryApplicationService) CreateItem(ctx context.Context, req CreateItemRequest) (*ItemDTO, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.CreateItem")
	defer span.End()

	item, err := domain.NewInventoryItem(req.SKU, req.ProductID, 0)
	if err != nil {
		return nil, err
	}
	if req.ReorderLevel > 0 {
		item.ReorderLevel = req.ReorderLevel
	}
	if req.MaxStock > 0 {
		item.MaxStock = req.MaxStock
	}
	item.CostPerUnit = req.CostPerUnit

	err = s.uow.Execute(ctx, func(r domain.Repositories) error {
		if err := r.Items.Create(ctx, item); err != nil {
			return err
		}
		if req.QuantityAvailable > 0 {
			if err := item.Apply(domain.MovementIn, req.QuantityAvailable); err != nil {
				return err
			}
			if err := r.Items.Save(ctx, item); err != nil {
				return err
			}
			return r.Movements.Append(ctx, &domain.StockMovement{
				SKU:       item.SKU,
				Type:      domain.MovementIn,
				Quantity:  req.QuantityAvailable,
				Reason:    "Initial stock",
				CreatedBy: "system",
			})
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("sku", item.SKU).Str("product_id", item.ProductID).Msg("inventory item created")
	s.invalidateCache(ctx)
	s.publish(ctx, domain.NewEvent(domain.EventInventoryCreated, domain.StockLevelPayload{
		SKU:               item.SKU,
		ProductID:         item.ProductID,
		QuantityAvailable: item.QuantityAvailable,
		QuantityReserved:  item.QuantityReserved,
	}, req.CorrelationID))
	return toItemDTO(item), nil
}

// GetItemBySKU returns the item enriched with product metadata when the
// product service answers in time; enrichment failures are non-fatal.
func (s *InventoryApplicationService) GetItemBySKU(ctx context.Context, sku string) (*ItemDTO, error) {
	return s.getItem(ctx, "inventory:"+sku, func(r domain.Repositories) (*domain.InventoryItem, error) {
		return r.Items.GetBySKU(ctx, sku)
	})
}

// GetItemByProductID is the product-service oriented lookup.
func (s *InventoryApplicationService) GetItemByProductID(ctx context.Context, productID string) (*ItemDTO, error) {
	return s.getItem(ctx, "inventory_pid:"+productID, func(r domain.Repositories) (*domain.InventoryItem, error) {
		return r.Items.GetByProductID(ctx, productID)
	})
}

func (s *InventoryApplicationService) getItem(ctx context.Context, cacheKey string, fetch func(r domain.Repositories) (*domain.InventoryItem, error)) (*ItemDTO, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.GetItem")
	defer span.End()

	if s.cache != nil {
		if cached, ok := s.cache.GetItem(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	var item *domain.InventoryItem
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		var err error
		item, err = fetch(r)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	dto := toItemDTO(item)
	if s.products != nil {
		details, err := s.products.GetProductByID(ctx, item.ProductID)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("product_id", item.ProductID).Msg("failed to fetch product details")
		} else {
			dto.Product = details
		}
	}

	if s.cache != nil {
		s.cache.SetItem(ctx, cacheKey, dto)
	}
	return dto, nil
}

// UpdateItem mutates metadata fields. Quantities never change here.
func (s *InventoryApplicationService) UpdateItem(ctx context.Context, productID string, req UpdateItemRequest) (*ItemDTO, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.UpdateItem")
	defer span.End()

	var item *domain.InventoryItem
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		it, err := r.Items.GetByProductID(ctx, productID)
		if err != nil {
			return err
		}
		it, err = r.Items.GetBySKUForUpdate(ctx, it.SKU)
		if err != nil {
			return err
		}
		if req.ReorderLevel != nil {
			it.ReorderLevel = *req.ReorderLevel
		}
		if req.MaxStock != nil {
			it.MaxStock = *req.MaxStock
		}
		if req.CostPerUnit != nil {
			it.CostPerUnit = *req.CostPerUnit
		}
		if req.IsActive != nil {
			it.IsActive = *req.IsActive
		}
		it.UpdatedAt = time.Now().UTC()
		item = it
		return r.Items.Save(ctx, it)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.invalidateCache(ctx)
	return toItemDTO(item), nil
}

// DeleteItem removes an item by product id.
func (s *InventoryApplicationService) DeleteItem(ctx context.Context, productID string) error {
	ctx, span := s.tracer.Start(ctx, "inventory.DeleteItem")
	defer span.End()

	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		it, err := r.Items.GetByProductID(ctx, productID)
		if err != nil {
			return err
		}
		return r.Items.Delete(ctx, it.SKU)
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// ListLowStockItems returns every item at or below its reorder level.
func (s *InventoryApplicationService) ListLowStockItems(ctx context.Context) ([]*ItemDTO, error) {
	var items []*domain.InventoryItem
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		var err error
		items, err = r.Items.ListLowStock(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	dtos := make([]*ItemDTO, 0, len(items))
	for _, it := range items {
		dtos = append(dtos, toItemDTO(it))
	}
	return dtos, nil
}

// ListMovements returns the most recent audit records for a SKU.
func (s *InventoryApplicationService) ListMovements(ctx context.Context, sku string, limit int) ([]MovementDTO, error) {
	if limit <= 0 {
		limit = 50
	}
	var movements []*domain.StockMovement
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		if _, err := r.Items.GetBySKU(ctx, sku); err != nil {
			return err
		}
		var err error
		movements, err = r.Movements.ListBySKU(ctx, sku, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	dtos := make([]MovementDTO, 0, len(movements))
	for _, m := range movements {
		dtos = append(dtos, toMovementDTO(m))
	}
	return dtos, nil
}

// GetReservation returns a single reservation.
func (s *InventoryApplicationService) GetReservation(ctx context.Context, id string) (*ReservationDTO, error) {
	var res *domain.Reservation
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		var err error
		res, err = r.Reservations.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	dto := toReservationDTO(res)
	return &dto, nil
}

// ProcessExpiredReservations transitions timed-out pending reservations to
// EXPIRED and returns their stock. Each reservation settles in its own
// transaction guarded by the CAS, so running the sweep twice over the same
// set releases stock exactly once.
func (s *InventoryApplicationService) ProcessExpiredReservations(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.ProcessExpiredReservations")
	defer span.End()

	var expired []*domain.Reservation
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		var err error
		expired, err = r.Reservations.ListExpired(ctx, time.Now().UTC(), 500)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	processed := 0
	var events []domain.Event
	for _, res := range expired {
		var productID string
		err := s.uow.Execute(ctx, func(r domain.Repositories) error {
			ok, err := r.Reservations.TransitionStatus(ctx, res.ID, domain.StatusPending, domain.StatusExpired)
			if err != nil {
				return err
			}
			if !ok {
				// confirmed or cancelled since we listed it
				return domain.ErrInvalidState
			}
			it, err := r.Items.GetBySKUForUpdate(ctx, res.SKU)
			if err != nil {
				return err
			}
			if err := it.Apply(domain.MovementReleased, res.Quantity); err != nil {
				return err
			}
			if err := r.Items.Save(ctx, it); err != nil {
				return err
			}
			productID = it.ProductID
			return r.Movements.Append(ctx, &domain.StockMovement{
				SKU:       res.SKU,
				Type:      domain.MovementReleased,
				Quantity:  res.Quantity,
				Reference: res.OrderID,
				Reason:    fmt.Sprintf("Released expired reservation for order %s", res.OrderID),
				CreatedBy: "system",
			})
		})
		if err != nil {
			if errors.Is(err, domain.ErrInvalidState) {
				continue
			}
			logger.Ctx(ctx).Error().Err(err).Str("reservation_id", res.ID).Msg("failed to expire reservation")
			continue
		}

		processed++
		metrics.ReservationsExpiredTotal.Inc()
		metrics.MovementsTotal.WithLabelValues(string(domain.MovementReleased)).Inc()
		events = append(events, domain.NewEvent(domain.EventStockReleased, domain.ReservationPayload{
			ReservationID: res.ID,
			OrderID:       res.OrderID,
			SKU:           res.SKU,
			ProductID:     productID,
			Quantity:      res.Quantity,
			Reason:        "expired",
		}, ""))
	}

	if processed > 0 {
		s.invalidateCache(ctx)
		s.publish(ctx, events...)
		logger.Ctx(ctx).Info().Int("processed", processed).Msg("expired reservations released")
	}
	span.SetAttributes(attribute.Int("reservations.expired", processed))
	return processed, nil
}

// PurgeStaleReservations hard-deletes terminal reservations past the
// retention window. Housekeeping only; the ledger is untouched.
func (s *InventoryApplicationService) PurgeStaleReservations(ctx context.Context) (int64, error) {
	var purged int64
	err := s.uow.Execute(ctx, func(r domain.Repositories) error {
		var err error
		purged, err = r.Reservations.PurgeTerminal(ctx, time.Now().UTC().Add(-s.purgeAfter))
		return err
	})
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		logger.Ctx(ctx).Info().Int64("purged", purged).Msg("stale reservations purged")
	}
	return purged, nil
}

// publish sends events best-effort on a detached context: a slow or dead
// broker must not fail or block the business operation that emitted them.
func (s *InventoryApplicationService) publish(ctx context.Context, events ...domain.Event) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	sc := trace.SpanContextFromContext(ctx)
	pubCtx := trace.ContextWithRemoteSpanContext(context.Background(), sc)
	pubCtx, cancel := context.WithTimeout(pubCtx, 3*time.Second)
	defer cancel()

	for _, ev := range events {
		if err := s.publisher.Publish(pubCtx, ev); err != nil {
			metrics.EventPublishFailures.WithLabelValues(ev.Type).Inc()
			logger.Ctx(ctx).Warn().Err(err).Str("event_type", ev.Type).Msg("failed to publish event")
		}
	}
}

// maybeAlert evaluates the configured threshold rules against the item state
// after a write and raises low-stock / out-of-stock events. Rule evaluation
// failures are logged and swallowed.
func (s *InventoryApplicationService) maybeAlert(ctx context.Context, item *domain.InventoryItem, correlationID string) {
	if s.rules == nil || item == nil {
		return
	}
	fact := port.StockFact{
		SKU:          item.SKU,
		Available:    item.QuantityAvailable,
		Reserved:     item.QuantityReserved,
		ReorderLevel: item.ReorderLevel,
		MaxStock:     item.MaxStock,
	}
	payload := domain.StockLevelPayload{
		SKU:               item.SKU,
		ProductID:         item.ProductID,
		QuantityAvailable: item.QuantityAvailable,
		QuantityReserved:  item.QuantityReserved,
	}

	if out, err := s.rules.Evaluate(ctx, s.outOfStockRule, fact); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("out-of-stock rule evaluation failed")
	} else if out {
		s.publish(ctx, domain.NewEvent(domain.EventOutOfStock, payload, correlationID))
		return
	}

	if low, err := s.rules.Evaluate(ctx, s.lowStockRule, fact); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("low-stock rule evaluation failed")
	} else if low {
		s.publish(ctx, domain.NewEvent(domain.EventLowStock, payload, correlationID))
	}
}

func (s *InventoryApplicationService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func availabilityCacheKey(queries []StockQuery) string {
	parts := make([]string, 0, len(queries))
	for _, q := range queries {
		parts = append(parts, fmt.Sprintf("%s=%d", q.SKU, q.Quantity))
	}
	sort.Strings(parts)
	return "stock_check:" + strings.Join(parts, ",")
}
