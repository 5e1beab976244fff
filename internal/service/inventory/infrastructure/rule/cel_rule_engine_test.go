package rule

import (
	"context"
	"testing"

	"warehouse/internal/service/inventory/domain/port"
)

func TestEvaluateThresholdRules(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	cases := []struct {
		name string
		rule string
		fact port.StockFact
		want bool
	}{
		{
			name: "low stock fires at reorder level",
			rule: "available <= reorder_level && available > 0",
			fact: port.StockFact{Available: 10, ReorderLevel: 10},
			want: true,
		},
		{
			name: "low stock quiet above reorder level",
			rule: "available <= reorder_level && available > 0",
			fact: port.StockFact{Available: 11, ReorderLevel: 10},
			want: false,
		},
		{
			name: "low stock quiet at zero",
			rule: "available <= reorder_level && available > 0",
			fact: port.StockFact{Available: 0, ReorderLevel: 10},
			want: false,
		},
		{
			name: "out of stock",
			rule: "available == 0",
			fact: port.StockFact{Available: 0},
			want: true,
		},
		{
			name: "overstock rule",
			rule: "available + reserved > max_stock",
			fact: port.StockFact{Available: 900, Reserved: 200, MaxStock: 1000},
			want: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := engine.Evaluate(context.Background(), tc.rule, tc.fact)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateInvalidRule(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if _, err := engine.Evaluate(context.Background(), "available <<", port.StockFact{}); err == nil {
		t.Fatal("expected compile error")
	}
	// a non-boolean expression is rejected at evaluation
	if _, err := engine.Evaluate(context.Background(), "available + 1", port.StockFact{Available: 1}); err == nil {
		t.Fatal("expected type error for non-boolean rule")
	}
}

func TestProgramCacheReuse(t *testing.T) {
	engine, err := NewCELRuleEngineAdapter()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	const rule = "available == 0"
	if _, err := engine.Evaluate(context.Background(), rule, port.StockFact{}); err != nil {
		t.Fatalf("first evaluate: %v", err)
	}
	if len(engine.programs) != 1 {
		t.Fatalf("cache size = %d, want 1", len(engine.programs))
	}
	if _, err := engine.Evaluate(context.Background(), rule, port.StockFact{Available: 5}); err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	if len(engine.programs) != 1 {
		t.Fatalf("cache size = %d after reuse, want 1", len(engine.programs))
	}
}
