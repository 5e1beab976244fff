package port

import "context"

// StockFact is the fact document threshold rules are evaluated against.
type StockFact struct {
	SKU          string
	Available    int64
	Reserved     int64
	ReorderLevel int64
	MaxStock     int64
}

// StockRuleEngine evaluates a configurable boolean expression against a
// fact. Used to decide when a ledger write should raise a low-stock or
// out-of-stock alert event.
type StockRuleEngine interface {
	Evaluate(ctx context.Context, rule string, fact StockFact) (bool, error)
}
