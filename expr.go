package tinydi

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// KeyExpr compiles a boolean expr-lang expression over `key` into a Predicate, e.g.
//
//	key startsWith "db." && key != "db.legacy"
//
// A key for which the expression fails at run time is not matched.
func KeyExpr(expression string) (Predicate, error) {
	if expression == "" {
		return nil, newKeyExprError(fmt.Errorf("expression must not be empty"), expression)
	}

	program, err := exprlang.Compile(
		expression,
		exprlang.Env(map[string]any{"key": ""}),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, newKeyExprError(err, expression)
	}

	return exprPredicate(program), nil
}

// MustKeyExpr is like KeyExpr but panics on error.
func MustKeyExpr(expression string) Predicate {
	predicate, err := KeyExpr(expression)
	if err != nil {
		panic(err)
	}

	return predicate
}

func exprPredicate(program *exprvm.Program) Predicate {
	return func(key string) bool {
		out, err := exprlang.Run(program, map[string]any{"key": key})
		if err != nil {
			return false
		}

		matched, _ := out.(bool)

		return matched
	}
}
