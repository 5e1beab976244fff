package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace/noop"

	"warehouse/internal/service/inventory/domain"
)

func newTestService(t *testing.T) (*InventoryApplicationService, *memoryUnitOfWork, *capturePublisher) {
	t.Helper()
	uow := newMemoryUnitOfWork()
	pub := &capturePublisher{}
	svc := NewInventoryApplicationService(uow, noop.NewTracerProvider().Tracer("test"), pub, nil, stubRules{}, nil, Options{})
	return svc, uow, pub
}

func seedItem(t *testing.T, uow *memoryUnitOfWork, sku string, available int64) {
	t.Helper()
	item, err := domain.NewInventoryItem(sku, "prod-"+sku, available)
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	uow.seed(item)
}

func forceExpire(uow *memoryUnitOfWork, id string) {
	uow.mu.Lock()
	defer uow.mu.Unlock()
	uow.reservations[id].ExpiresAt = time.Now().UTC().Add(-time.Minute)
}

func TestCheckAvailability(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)

	result, err := svc.CheckAvailability(context.Background(), []StockQuery{
		{SKU: "WIDGET-1", Quantity: 50},
		{SKU: "MISSING", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Available {
		t.Fatal("overall availability should be false when any item is short")
	}
	if !result.Items[0].Available || result.Items[0].AvailableQuantity != 100 {
		t.Fatalf("widget verdict wrong: %+v", result.Items[0])
	}
	// a missing SKU reports zero availability, not an error
	if result.Items[1].Available || result.Items[1].AvailableQuantity != 0 {
		t.Fatalf("missing sku verdict wrong: %+v", result.Items[1])
	}
}

func TestCheckAvailabilityValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.CheckAvailability(context.Background(), nil); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("err = %v, want ErrInvalidQuantity", err)
	}
	if _, err := svc.CheckAvailability(context.Background(), []StockQuery{{SKU: "X", Quantity: 0}}); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("err = %v, want ErrInvalidQuantity", err)
	}
}

func TestReserve(t *testing.T) {
	svc, uow, pub := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)

	result, err := svc.Reserve(context.Background(), ReserveRequest{
		OrderID: "order-1",
		Items:   []StockQuery{{SKU: "WIDGET-1", Quantity: 30}},
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if len(result.Reservations) != 1 {
		t.Fatalf("got %d reservations, want 1", len(result.Reservations))
	}

	item := uow.item("WIDGET-1")
	if item.QuantityAvailable != 70 || item.QuantityReserved != 30 {
		t.Fatalf("quantities after reserve: %d available, %d reserved", item.QuantityAvailable, item.QuantityReserved)
	}

	movements := uow.movementsFor("WIDGET-1")
	if len(movements) != 1 || movements[0].Type != domain.MovementReserved || movements[0].Reference != "order-1" {
		t.Fatalf("unexpected movement log: %+v", movements)
	}

	res := uow.reservation(result.Reservations[0].ID)
	if res.Status != domain.StatusPending {
		t.Fatalf("status = %s, want PENDING", res.Status)
	}
	if len(pub.byType(domain.EventStockReserved)) != 1 {
		t.Fatal("expected one stock.reserved event")
	}
}

func TestReserveAllOrNothing(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)
	seedItem(t, uow, "WIDGET-2", 5)

	_, err := svc.Reserve(context.Background(), ReserveRequest{
		OrderID: "order-1",
		Items: []StockQuery{
			{SKU: "WIDGET-1", Quantity: 30},
			{SKU: "WIDGET-2", Quantity: 10},
		},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	// the first item's hold must have been rolled back
	item := uow.item("WIDGET-1")
	if item.QuantityAvailable != 100 || item.QuantityReserved != 0 {
		t.Fatalf("partial hold survived: %d available, %d reserved", item.QuantityAvailable, item.QuantityReserved)
	}
	if len(uow.movementsFor("WIDGET-1")) != 0 {
		t.Fatal("movement recorded for a rolled back batch")
	}
}

func TestReserveSharedDeadline(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)
	seedItem(t, uow, "WIDGET-2", 100)

	result, err := svc.Reserve(context.Background(), ReserveRequest{
		OrderID: "order-1",
		Items: []StockQuery{
			{SKU: "WIDGET-1", Quantity: 1},
			{SKU: "WIDGET-2", Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	a := uow.reservation(result.Reservations[0].ID)
	b := uow.reservation(result.Reservations[1].ID)
	if !a.ExpiresAt.Equal(b.ExpiresAt) {
		t.Fatalf("batch reservations must share one deadline: %v vs %v", a.ExpiresAt, b.ExpiresAt)
	}
}

func TestConcurrentReservesNeverOversell(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 10)

	const workers = 8
	var wg sync.WaitGroup
	successes := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), ReserveRequest{
				OrderID: "order-" + string(rune('a'+n)),
				Items:   []StockQuery{{SKU: "WIDGET-1", Quantity: 3}},
			})
			if err == nil {
				successes <- struct{}{}
			} else if !errors.Is(err, domain.ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	close(successes)

	won := 0
	for range successes {
		won++
	}
	// 10 units, 3 per order: exactly 3 orders can win
	if won != 3 {
		t.Fatalf("%d reserves succeeded, want 3", won)
	}
	item := uow.item("WIDGET-1")
	if item.QuantityAvailable != 1 || item.QuantityReserved != 9 {
		t.Fatalf("final quantities: %d available, %d reserved", item.QuantityAvailable, item.QuantityReserved)
	}
}

func TestConfirmReservation(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)

	result, _ := svc.Reserve(context.Background(), ReserveRequest{
		OrderID: "order-1",
		Items:   []StockQuery{{SKU: "WIDGET-1", Quantity: 30}},
	})
	id := result.Reservations[0].ID

	if err := svc.ConfirmReservation(context.Background(), id, "order-1", ""); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	item := uow.item("WIDGET-1")
	// confirm burns the hold, available stays where the reserve left it
	if item.QuantityAvailable != 70 {
		t.Fatalf("available = %d, want 70", item.QuantityAvailable)
	}
	if item.QuantityReserved != 0 {
		t.Fatalf("reserved = %d, want 0", item.QuantityReserved)
	}

	movements := uow.movementsFor("WIDGET-1")
	if len(movements) != 2 || movements[1].Type != domain.MovementOut {
		t.Fatalf("expected RESERVED then OUT, got %+v", movements)
	}
	if uow.reservation(id).Status != domain.StatusConfirmed {
		t.Fatal("reservation not CONFIRMED")
	}
}

func TestConfirmGuards(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)

	result, _ := svc.Reserve(context.Background(), ReserveRequest{
		OrderID: "order-1",
		Items:   []StockQuery{{SKU: "WIDGET-1", Quantity: 10}},
	})
	id := result.Reservations[0].ID

	if err := svc.ConfirmReservation(context.Background(), "nope", "order-1", ""); !errors.Is(err, domain.ErrReservationNotFound) {
		t.Fatalf("unknown id: err = %v, want ErrReservationNotFound", err)
	}
	if err := svc.ConfirmReservation(context.Background(), id, "order-2", ""); !errors.Is(err, domain.ErrOrderMismatch) {
		t.Fatalf("wrong order: err = %v, want ErrOrderMismatch", err)
	}

	if err := svc.ConfirmReservation(context.Background(), id, "order-1", ""); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	// settlement is exactly-once
	if err := svc.ConfirmReservation(context.Background(), id, "order-1", ""); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("double confirm: err = %v, want ErrInvalidState", err)
	}

	item := uow.item("WIDGET-1")
	if item.QuantityAvailable != 90 || item.QuantityReserved != 0 {
		t.Fatalf("double confirm changed quantities: %d available, %d reserved", item.QuantityAvailable, item.QuantityReserved)
	}
}

func TestConfirmExpiredReservation(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)

	result, _ := svc.Reserve(context.Background(), ReserveRequest{
		OrderID: "order-1",
		Items:   []StockQuery{{SKU: "WIDGET-1", Quantity: 10}},
	})
	id := result.Reservations[0].ID
	forceExpire(uow, id)

	if err := svc.ConfirmReservation(context.Background(), id, "order-1", ""); !errors.Is(err, domain.ErrReservationExpired) {
		t.Fatalf("err = %v, want ErrReservationExpired", err)
	}
}

func TestCancelReservation(t *testing.T) {
	svc, uow, pub := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)

	result, _ := svc.Reserve(context.Background(), ReserveRequest{
		OrderID: "order-1",
		Items:   []StockQuery{{SKU: "WIDGET-1", Quantity: 40}},
	})
	id := result.Reservations[0].ID

	if err := svc.CancelReservation(context.Background(), id, ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	item := uow.item("WIDGET-1")
	if item.QuantityAvailable != 100 || item.QuantityReserved != 0 {
		t.Fatalf("stock not returned: %d available, %d reserved", item.QuantityAvailable, item.QuantityReserved)
	}
	if uow.reservation(id).Status != domain.StatusCancelled {
		t.Fatal("reservation not CANCELLED")
	}
	if len(pub.byType(domain.EventStockReleased)) != 1 {
		t.Fatal("expected one stock.released event")
	}

	// cancelling again is rejected, not silently repeated
	if err := svc.CancelReservation(context.Background(), id, ""); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("double cancel: err = %v, want ErrInvalidState", err)
	}
}

func TestCancelAfterConfirm(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)

	result, _ := svc.Reserve(context.Background(), ReserveRequest{
		OrderID: "order-1",
		Items:   []StockQuery{{SKU: "WIDGET-1", Quantity: 10}},
	})
	id := result.Reservations[0].ID
	svc.ConfirmReservation(context.Background(), id, "order-1", "")

	if err := svc.CancelReservation(context.Background(), id, ""); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
	// the confirmed deduction stays deducted
	if item := uow.item("WIDGET-1"); item.QuantityAvailable != 90 {
		t.Fatalf("available = %d, want 90", item.QuantityAvailable)
	}
}

func TestReleaseOrder(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)
	seedItem(t, uow, "WIDGET-2", 100)

	result, _ := svc.Reserve(context.Background(), ReserveRequest{
		OrderID: "order-1",
		Items: []StockQuery{
			{SKU: "WIDGET-1", Quantity: 10},
			{SKU: "WIDGET-2", Quantity: 20},
		},
	})
	// one reservation already settled
	svc.ConfirmReservation(context.Background(), result.Reservations[0].ID, "order-1", "")

	released, err := svc.ReleaseOrder(context.Background(), "order-1", "")
	if err != nil {
		t.Fatalf("release order: %v", err)
	}
	if released != 1 {
		t.Fatalf("released %d reservations, want 1", released)
	}
	if item := uow.item("WIDGET-2"); item.QuantityAvailable != 100 || item.QuantityReserved != 0 {
		t.Fatalf("widget-2 not returned: %+v", item)
	}
	if item := uow.item("WIDGET-1"); item.QuantityAvailable != 90 {
		t.Fatalf("confirmed deduction disturbed: %+v", item)
	}
}

func TestAdjustStock(t *testing.T) {
	svc, uow, pub := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 20)

	movement, err := svc.AdjustStock(context.Background(), AdjustRequest{
		SKU: "WIDGET-1", Quantity: 30, MovementType: domain.MovementIn, Reason: "restock", Actor: "ops",
	})
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if movement.CreatedBy != "ops" || movement.Type != string(domain.MovementIn) {
		t.Fatalf("unexpected movement: %+v", movement)
	}
	if item := uow.item("WIDGET-1"); item.QuantityAvailable != 50 {
		t.Fatalf("available = %d, want 50", item.QuantityAvailable)
	}
	if len(pub.byType(domain.EventStockUpdated)) != 1 {
		t.Fatal("expected one stock.updated event")
	}
}

func TestAdjustStockRejectsReservationMovements(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 20)

	for _, mt := range []domain.MovementType{domain.MovementReserved, domain.MovementReleased} {
		if _, err := svc.AdjustStock(context.Background(), AdjustRequest{
			SKU: "WIDGET-1", Quantity: 5, MovementType: mt,
		}); !errors.Is(err, ErrUnsupportedMovement) {
			t.Errorf("%s: err = %v, want ErrUnsupportedMovement", mt, err)
		}
	}
}

func TestAdjustStockOutAlerts(t *testing.T) {
	svc, uow, pub := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 12)

	// down to 2, at or below the default reorder level of 10
	if _, err := svc.AdjustStock(context.Background(), AdjustRequest{
		SKU: "WIDGET-1", Quantity: 10, MovementType: domain.MovementOut,
	}); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if len(pub.byType(domain.EventLowStock)) != 1 {
		t.Fatal("expected low.stock event")
	}

	if _, err := svc.AdjustStock(context.Background(), AdjustRequest{
		SKU: "WIDGET-1", Quantity: 2, MovementType: domain.MovementOut,
	}); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if len(pub.byType(domain.EventOutOfStock)) != 1 {
		t.Fatal("expected out.of.stock event")
	}
	_ = uow
}

func TestCreateItem(t *testing.T) {
	svc, uow, pub := newTestService(t)

	item, err := svc.CreateItem(context.Background(), CreateItemRequest{
		SKU: "WIDGET-1", ProductID: "prod-1", QuantityAvailable: 25,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.QuantityAvailable != 25 {
		t.Fatalf("available = %d, want 25", item.QuantityAvailable)
	}

	// initial stock is audited as an IN movement
	movements := uow.movementsFor("WIDGET-1")
	if len(movements) != 1 || movements[0].Type != domain.MovementIn || movements[0].Quantity != 25 {
		t.Fatalf("unexpected movement log: %+v", movements)
	}
	if len(pub.byType(domain.EventInventoryCreated)) != 1 {
		t.Fatal("expected inventory.created event")
	}

	if _, err := svc.CreateItem(context.Background(), CreateItemRequest{
		SKU: "WIDGET-1", ProductID: "prod-1",
	}); !errors.Is(err, domain.ErrItemExists) {
		t.Fatalf("duplicate: err = %v, want ErrItemExists", err)
	}
}

func TestUpdateItemMetadataOnly(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 50)

	level := int64(5)
	active := false
	item, err := svc.UpdateItem(context.Background(), "prod-WIDGET-1", UpdateItemRequest{
		ReorderLevel: &level,
		IsActive:     &active,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if item.ReorderLevel != 5 || item.IsActive {
		t.Fatalf("metadata not applied: %+v", item)
	}
	if item.QuantityAvailable != 50 {
		t.Fatalf("update touched quantities: %d", item.QuantityAvailable)
	}
}

func TestBulkUpdatePartialFailure(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 50)

	level := int64(3)
	results := svc.BulkUpdate(context.Background(), []BulkOperation{
		{SKU: "WIDGET-1", ReorderLevel: &level},
		{SKU: "MISSING", ReorderLevel: &level},
	})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !results[0].Success || results[1].Success {
		t.Fatalf("unexpected outcomes: %+v", results)
	}
	// the successful operation stays applied despite the failed one
	if item := uow.item("WIDGET-1"); item.ReorderLevel != 3 {
		t.Fatalf("reorder level = %d, want 3", item.ReorderLevel)
	}
}

func TestProcessExpiredReservations(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)

	result, _ := svc.Reserve(context.Background(), ReserveRequest{
		OrderID: "order-1",
		Items:   []StockQuery{{SKU: "WIDGET-1", Quantity: 30}},
	})
	id := result.Reservations[0].ID
	forceExpire(uow, id)

	processed, err := svc.ProcessExpiredReservations(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed = %d, want 1", processed)
	}
	if uow.reservation(id).Status != domain.StatusExpired {
		t.Fatal("reservation not EXPIRED")
	}
	if item := uow.item("WIDGET-1"); item.QuantityAvailable != 100 || item.QuantityReserved != 0 {
		t.Fatalf("stock not returned: %+v", item)
	}

	// sweeping again must be a no-op: settlement happened exactly once
	processed, err = svc.ProcessExpiredReservations(context.Background())
	if err != nil || processed != 0 {
		t.Fatalf("second sweep: processed = %d, err = %v", processed, err)
	}
	if item := uow.item("WIDGET-1"); item.QuantityAvailable != 100 {
		t.Fatalf("double release: available = %d", item.QuantityAvailable)
	}
}

func TestZeroTTLReservationExpiresOnNextSweep(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)

	zero := 0
	result, err := svc.Reserve(context.Background(), ReserveRequest{
		OrderID:    "order-1",
		Items:      []StockQuery{{SKU: "WIDGET-1", Quantity: 30}},
		TTLMinutes: &zero,
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	processed, err := svc.ProcessExpiredReservations(context.Background())
	if err != nil || processed != 1 {
		t.Fatalf("processed = %d, err = %v", processed, err)
	}
	if uow.reservation(result.Reservations[0].ID).Status != domain.StatusExpired {
		t.Fatal("zero-ttl reservation not expired")
	}
	if item := uow.item("WIDGET-1"); item.QuantityAvailable != 100 || item.QuantityReserved != 0 {
		t.Fatalf("stock not restored: %+v", item)
	}
}

func TestSweepSkipsSettledReservations(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)

	result, _ := svc.Reserve(context.Background(), ReserveRequest{
		OrderID: "order-1",
		Items:   []StockQuery{{SKU: "WIDGET-1", Quantity: 30}},
	})
	id := result.Reservations[0].ID
	svc.ConfirmReservation(context.Background(), id, "order-1", "")
	forceExpire(uow, id)

	processed, err := svc.ProcessExpiredReservations(context.Background())
	if err != nil || processed != 0 {
		t.Fatalf("processed = %d, err = %v; confirmed reservation must not be swept", processed, err)
	}
	if uow.reservation(id).Status != domain.StatusConfirmed {
		t.Fatal("sweep overwrote a terminal status")
	}
}

func TestPurgeStaleReservations(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)

	result, _ := svc.Reserve(context.Background(), ReserveRequest{
		OrderID: "order-1",
		Items:   []StockQuery{{SKU: "WIDGET-1", Quantity: 10}},
	})
	id := result.Reservations[0].ID
	svc.CancelReservation(context.Background(), id, "")

	// age the terminal reservation past the retention window
	uow.mu.Lock()
	uow.reservations[id].UpdatedAt = time.Now().UTC().Add(-48 * time.Hour)
	uow.mu.Unlock()

	purged, err := svc.PurgeStaleReservations(context.Background())
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged = %d, want 1", purged)
	}
	if uow.reservation(id) != nil {
		t.Fatal("terminal reservation still present after purge")
	}
	// the audit log is retention-exempt
	if len(uow.movementsFor("WIDGET-1")) != 2 {
		t.Fatal("purge touched the movement log")
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	svc, uow, pub := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)
	pub.fail = true

	if _, err := svc.Reserve(context.Background(), ReserveRequest{
		OrderID: "order-1",
		Items:   []StockQuery{{SKU: "WIDGET-1", Quantity: 10}},
	}); err != nil {
		t.Fatalf("reserve failed on publish error: %v", err)
	}
	if item := uow.item("WIDGET-1"); item.QuantityReserved != 10 {
		t.Fatal("reservation not applied")
	}
}

func TestListMovements(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 100)

	for i := 0; i < 3; i++ {
		if _, err := svc.AdjustStock(context.Background(), AdjustRequest{
			SKU: "WIDGET-1", Quantity: 1, MovementType: domain.MovementIn,
		}); err != nil {
			t.Fatalf("adjust: %v", err)
		}
	}

	movements, err := svc.ListMovements(context.Background(), "WIDGET-1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("got %d movements, want 2", len(movements))
	}

	if _, err := svc.ListMovements(context.Background(), "MISSING", 10); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("err = %v, want ErrItemNotFound", err)
	}
}

func TestListLowStockItems(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "LOW-1", 5)
	seedItem(t, uow, "OK-1", 500)

	items, err := svc.ListLowStockItems(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].SKU != "LOW-1" {
		t.Fatalf("unexpected low stock set: %+v", items)
	}
}

func TestDeleteItem(t *testing.T) {
	svc, uow, _ := newTestService(t)
	seedItem(t, uow, "WIDGET-1", 10)

	if err := svc.DeleteItem(context.Background(), "prod-WIDGET-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteItem(context.Background(), "prod-WIDGET-1"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("err = %v, want ErrItemNotFound", err)
	}
	_ = uow
}
