package tinydi

import (
	"context"
	"fmt"
	"reflect"
)

// Get resolves key and asserts the value to T.
// A nil value is returned as the zero T.
func Get[T any](ctx context.Context, c *Context, key string) (T, error) {
	var zero T

	value, err := c.Resolve(ctx, key)
	if err != nil {
		return zero, err
	}

	return assert[T](key, value)
}

// MustGet is like Get but panics on error.
func MustGet[T any](ctx context.Context, c *Context, key string) T {
	service, err := Get[T](ctx, c, key)
	if err != nil {
		panic(fmt.Sprintf("error: %+v", err))
	}

	return service
}

// GetAll resolves conditions (see (*Context).ResolveAll) and asserts every value to T.
func GetAll[T any](ctx context.Context, c *Context, conditions ...any) ([]T, error) {
	values, err := c.ResolveAll(ctx, conditions...)
	if err != nil {
		return nil, err
	}

	result := make([]T, len(values))
	for i, value := range values {
		if result[i], err = assert[T](fmt.Sprintf("value %d", i), value); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func assert[T any](key string, value any) (T, error) {
	var zero T

	if value == nil {
		return zero, nil
	}

	service, ok := value.(T)
	if !ok {
		return zero, newTypeMismatchError(key, reflect.TypeOf(new(T)).Elem(), value)
	}

	return service, nil
}
