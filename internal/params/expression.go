package params

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExpressionPrefix marks a parameter value that is evaluated per item.
const ExpressionPrefix = "="

// IsExpression reports whether a configured value is a per-item expression.
func IsExpression(s string) bool {
	return strings.HasPrefix(s, ExpressionPrefix)
}

// expressionBody strips the prefix and optional {{ }} wrapper.
func expressionBody(s string) string {
	body := strings.TrimSpace(strings.TrimPrefix(s, ExpressionPrefix))
	if strings.HasPrefix(body, "{{") && strings.HasSuffix(body, "}}") {
		body = strings.TrimSpace(body[2 : len(body)-2])
	}
	return body
}

// Evaluator compiles and runs per-item expressions. Compiled programs are
// cached by source text.
type Evaluator struct {
	cache map[string]*vm.Program
	mu    sync.RWMutex
}

// NewEvaluator creates an expression evaluator with an empty cache.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		cache: make(map[string]*vm.Program),
	}
}

// Evaluate runs an expression against one batch item. The item is exposed
// as `json` and its position as `index` (also bound as `itemIndex`):
//
//	={{ json.period.start }}
//	=index == 0 ? "DAILY" : "MONTHLY"
func (e *Evaluator) Evaluate(expression string, item Item, index int) (any, error) {
	program, err := e.compile(expressionBody(expression))
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", err)
	}

	env := map[string]any{
		"json":      map[string]any(item),
		"index":     index,
		"itemIndex": index,
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("expression evaluation failed: %w", err)
	}
	return result, nil
}

// compile compiles an expression and caches the result.
func (e *Evaluator) compile(source string) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.cache[source]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	prog, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[source] = prog
	e.mu.Unlock()

	return prog, nil
}

// CacheSize returns the number of cached programs.
func (e *Evaluator) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}
