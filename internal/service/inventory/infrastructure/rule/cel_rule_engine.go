// internal/service/inventory/infrastructure/rule/cel_rule_engine.go
package rule

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	pkgerrors "github.com/pkg/errors"

	"warehouse/internal/service/inventory/domain/port"
)

// CELRuleEngineAdapter implements port.StockRuleEngine with CEL expressions.
// Rules reference the variables available, reserved, reorder_level and
// max_stock, e.g. "available <= reorder_level && available > 0".
type CELRuleEngineAdapter struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

func NewCELRuleEngineAdapter() (*CELRuleEngineAdapter, error) {
	env, err := cel.NewEnv(
		cel.Variable("available", cel.IntType),
		cel.Variable("reserved", cel.IntType),
		cel.Variable("reorder_level", cel.IntType),
		cel.Variable("max_stock", cel.IntType),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create cel environment")
	}
	return &CELRuleEngineAdapter{env: env, programs: make(map[string]cel.Program)}, nil
}

func (a *CELRuleEngineAdapter) Evaluate(ctx context.Context, ruleExpr string, fact port.StockFact) (bool, error) {
	prg, err := a.program(ruleExpr)
	if err != nil {
		return false, err
	}
	out, _, err := prg.ContextEval(ctx, map[string]interface{}{
		"available":     fact.Available,
		"reserved":      fact.Reserved,
		"reorder_level": fact.ReorderLevel,
		"max_stock":     fact.MaxStock,
	})
	if err != nil {
		return false, pkgerrors.Wrap(err, "evaluate rule")
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %q did not evaluate to a boolean", ruleExpr)
	}
	return result, nil
}

// program compiles ruleExpr once and caches the program; rules come from
// config so the cache stays tiny.
func (a *CELRuleEngineAdapter) program(ruleExpr string) (cel.Program, error) {
	a.mu.RLock()
	prg, ok := a.programs[ruleExpr]
	a.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := a.env.Compile(ruleExpr)
	if issues != nil && issues.Err() != nil {
		return nil, pkgerrors.Wrapf(issues.Err(), "compile rule %q", ruleExpr)
	}
	prg, err := a.env.Program(ast)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "build rule program")
	}

	a.mu.Lock()
	a.programs[ruleExpr] = prg
	a.mu.Unlock()
	return prg, nil
}
