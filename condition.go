package tinydi

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"regexp"

	"github.com/dlclark/regexp2"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const (
	// Condition matching every registered key.
	All = true
	// Condition matching nothing.
	None = false
)

// Predicate selects keys for ResolveAll and Using.
type Predicate func(key string) bool

var predicateType = reflect.TypeOf(Predicate(nil))

// ResolveAll resolves every key selected by conditions, preserving match order.
//
// Without conditions every key is resolved. A single condition is one of:
//   - a slice or array of conditions, resolved in order and concatenated;
//   - *regexp.Regexp or *regexp2.Regexp, matched against keys;
//   - Predicate or func(string) bool;
//   - All (true) for every key;
//   - None (false) or nil for no key;
//   - a string, string-kinded value or fmt.Stringer naming a single key.
//
// Several conditions are treated as a sequence.
// Falsy values are dropped from the result unless the Context was created with KeepFalsyValues.
func (c *Context) ResolveAll(ctx context.Context, conditions ...any) ([]any, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	switch len(conditions) {
	case 0:
		return c.resolveAll(ctx, All)
	case 1:
		return c.resolveAll(ctx, conditions[0])
	default:
		return c.resolveAll(ctx, conditions)
	}
}

// resolveAll starts every production in match order, then awaits them together.
// On failure the error of the earliest failing match is returned.
func (c *Context) resolveAll(ctx context.Context, condition any) ([]any, error) {
	futures := c.plan(ctx, condition)
	values := make([]any, len(futures))
	errs := make([]error, len(futures))

	var g errgroup.Group
	for i, future := range futures {
		g.Go(func() error {
			values[i], errs[i] = future.Await(ctx)

			return errs[i]
		})
	}

	if err := g.Wait(); err != nil {
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}

	return c.compact(values), nil
}

// plan expands condition into one Future per matched key.
// A condition that cannot be matched becomes a rejected Future at its position.
func (c *Context) plan(ctx context.Context, condition any) []*Future {
	var (
		keys []string
		err  error
	)

	switch condition := condition.(type) {
	case nil:
		return nil
	case bool:
		if !condition {
			return nil
		}

		keys = c.Keys()
	case string:
		keys = []string{condition}
	case []any:
		return c.planSequence(ctx, condition)
	case []string:
		return c.planSequence(ctx, lo.ToAnySlice(condition))
	case *regexp.Regexp:
		keys, err = c.matchKeys(func(key string) (bool, error) {
			return condition.MatchString(key), nil
		})
	case *regexp2.Regexp:
		keys, err = c.matchKeys(func(key string) (bool, error) {
			ok, err := condition.MatchString(key)
			if err != nil {
				return false, newPatternError(err, condition.String())
			}

			return ok, nil
		})
	case Predicate:
		keys, err = c.matchKeys(predicateMatcher(condition))
	case func(string) bool:
		keys, err = c.matchKeys(predicateMatcher(condition))
	case fmt.Stringer:
		keys = []string{condition.String()}
	default:
		v := reflect.ValueOf(condition)

		if v.Kind() == reflect.Func && v.Type().ConvertibleTo(predicateType) && !v.IsNil() {
			return c.plan(ctx, v.Convert(predicateType).Interface().(Predicate))
		}

		if v.Kind() == reflect.String {
			return c.plan(ctx, v.String())
		}

		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return []*Future{Rejected(newUnsupportedConditionError(condition))}
		}

		sequence := make([]any, v.Len())
		for i := range sequence {
			sequence[i] = v.Index(i).Interface()
		}

		return c.planSequence(ctx, sequence)
	}

	if err != nil {
		return []*Future{Rejected(err)}
	}

	return lo.Map(keys, func(key string, _ int) *Future {
		return c.future(ctx, key)
	})
}

func (c *Context) planSequence(ctx context.Context, conditions []any) []*Future {
	return lo.FlatMap(conditions, func(condition any, _ int) []*Future {
		return c.plan(ctx, condition)
	})
}

func (c *Context) compact(values []any) []any {
	if c.keepFalsy {
		return values
	}

	return lo.Filter(values, func(value any, _ int) bool { return truthy(value) })
}

func predicateMatcher(predicate func(string) bool) func(string) (bool, error) {
	return func(key string) (bool, error) {
		if predicate == nil {
			return false, nil
		}

		return predicate(key), nil
	}
}

// truthy reports false for nil, nil pointers, maps, slices, funcs, channels and interfaces,
// false, numeric zero, NaN and "".
// Structs, arrays and empty but non-nil collections are truthy.
func truthy(value any) bool {
	if value == nil {
		return false
	}

	v := reflect.ValueOf(value)

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Complex64, reflect.Complex128:
		return v.Complex() != 0
	case reflect.String:
		return v.Len() != 0
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return !v.IsNil()
	default:
		return true
	}
}
