package tinydi

import (
	"context"
	"reflect"
)

const fieldTag = "tinydi"

// T returns S with exported fields set to values resolved from c.
// A field is resolved by the key in its `tinydi:"key"` tag or by its name;
// `tinydi:"-"` skips the field.
func T[S any](ctx context.Context, c *Context) (S, error) {
	var s S

	if err := fill(ctx, c, reflect.ValueOf(&s).Elem()); err != nil {
		var zero S
		return zero, err
	}

	return s, nil
}

// P is like T but returns *S.
func P[S any](ctx context.Context, c *Context) (*S, error) {
	s := new(S)

	if err := fill(ctx, c, reflect.ValueOf(s).Elem()); err != nil {
		return nil, err
	}

	return s, nil
}

func fill(ctx context.Context, c *Context, p reflect.Value) error {
	t := p.Type()

	if t.Kind() != reflect.Struct {
		return &StructError{T: t}
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		key := field.Name
		if tag, ok := field.Tag.Lookup(fieldTag); ok {
			if tag == "-" {
				continue
			}

			if tag != "" {
				key = tag
			}
		}

		value, err := c.Resolve(ctx, key)
		if err != nil {
			return newFieldError(err, t, field.Name)
		}

		if value == nil {
			continue
		}

		v := reflect.ValueOf(value)
		if !v.Type().AssignableTo(field.Type) {
			return newFieldError(newTypeMismatchError(key, field.Type, value), t, field.Name)
		}

		p.Field(i).Set(v)
	}

	return nil
}
