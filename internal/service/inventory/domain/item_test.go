package domain

import (
	"errors"
	"testing"
)

func TestNewInventoryItemDefaults(t *testing.T) {
	item, err := NewInventoryItem("WIDGET-1", "prod-1", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.QuantityAvailable != 50 || item.QuantityReserved != 0 {
		t.Fatalf("unexpected quantities: %d available, %d reserved", item.QuantityAvailable, item.QuantityReserved)
	}
	if item.ReorderLevel != 10 || item.MaxStock != 1000 || !item.IsActive {
		t.Fatalf("defaults not applied: %+v", item)
	}
}

func TestNewInventoryItemValidation(t *testing.T) {
	if _, err := NewInventoryItem("", "prod-1", 0); err == nil {
		t.Fatal("expected error for empty sku")
	}
	if _, err := NewInventoryItem("WIDGET-1", "", 0); err == nil {
		t.Fatal("expected error for empty product id")
	}
	if _, err := NewInventoryItem("WIDGET-1", "prod-1", -1); err == nil {
		t.Fatal("expected error for negative initial quantity")
	}
}

func TestApplyIn(t *testing.T) {
	item, _ := NewInventoryItem("WIDGET-1", "prod-1", 10)
	if err := item.Apply(MovementIn, 25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.QuantityAvailable != 35 {
		t.Fatalf("available = %d, want 35", item.QuantityAvailable)
	}
	if item.LastRestocked == nil {
		t.Fatal("LastRestocked not set by IN movement")
	}
}

func TestApplyOutInsufficient(t *testing.T) {
	item, _ := NewInventoryItem("WIDGET-1", "prod-1", 10)
	err := item.Apply(MovementOut, 11)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	// rejected, not clamped
	if item.QuantityAvailable != 10 {
		t.Fatalf("available mutated on rejected movement: %d", item.QuantityAvailable)
	}
}

func TestApplyReserveAndRelease(t *testing.T) {
	item, _ := NewInventoryItem("WIDGET-1", "prod-1", 100)
	if err := item.Apply(MovementReserved, 30); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if item.QuantityAvailable != 70 || item.QuantityReserved != 30 {
		t.Fatalf("after reserve: %d available, %d reserved", item.QuantityAvailable, item.QuantityReserved)
	}
	if err := item.Apply(MovementReleased, 30); err != nil {
		t.Fatalf("release: %v", err)
	}
	if item.QuantityAvailable != 100 || item.QuantityReserved != 0 {
		t.Fatalf("after release: %d available, %d reserved", item.QuantityAvailable, item.QuantityReserved)
	}
}

func TestApplyReleaseBeyondReserved(t *testing.T) {
	item, _ := NewInventoryItem("WIDGET-1", "prod-1", 100)
	item.Apply(MovementReserved, 10)
	if err := item.Apply(MovementReleased, 11); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestApplyAdjustmentIsAbsolute(t *testing.T) {
	item, _ := NewInventoryItem("WIDGET-1", "prod-1", 100)
	item.Apply(MovementReserved, 20)
	if err := item.Apply(MovementAdjustment, 55); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if item.QuantityAvailable != 55 {
		t.Fatalf("available = %d, want 55", item.QuantityAvailable)
	}
	// reserved untouched by an adjustment
	if item.QuantityReserved != 20 {
		t.Fatalf("reserved = %d, want 20", item.QuantityReserved)
	}
	if err := item.Apply(MovementAdjustment, -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("negative adjustment: err = %v, want ErrInvalidQuantity", err)
	}
}

func TestApplyRejectsNonPositiveQuantity(t *testing.T) {
	item, _ := NewInventoryItem("WIDGET-1", "prod-1", 100)
	for _, mt := range []MovementType{MovementIn, MovementOut, MovementReserved, MovementReleased} {
		if err := item.Apply(mt, 0); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("%s with zero quantity: err = %v, want ErrInvalidQuantity", mt, err)
		}
	}
}

// Confirming a reservation burns the hold without touching available: the
// deduction already happened at reserve time.
func TestApplyConfirm(t *testing.T) {
	item, _ := NewInventoryItem("WIDGET-1", "prod-1", 100)
	item.Apply(MovementReserved, 30)

	if err := item.ApplyConfirm(30); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if item.QuantityAvailable != 70 {
		t.Fatalf("available = %d, want 70 (confirm must not touch available)", item.QuantityAvailable)
	}
	if item.QuantityReserved != 0 {
		t.Fatalf("reserved = %d, want 0", item.QuantityReserved)
	}
}

func TestApplyConfirmBeyondReserved(t *testing.T) {
	item, _ := NewInventoryItem("WIDGET-1", "prod-1", 100)
	item.Apply(MovementReserved, 10)
	if err := item.ApplyConfirm(11); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestLowAndOutOfStock(t *testing.T) {
	item, _ := NewInventoryItem("WIDGET-1", "prod-1", 10)
	if !item.IsLowStock() {
		t.Fatal("10 available at reorder level 10 should be low stock")
	}
	if item.IsOutOfStock() {
		t.Fatal("not out of stock yet")
	}
	item.Apply(MovementOut, 10)
	if !item.IsOutOfStock() {
		t.Fatal("expected out of stock")
	}
}
