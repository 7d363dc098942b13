package tinydi

import (
	"context"
	"fmt"
	"reflect"
)

// Injected calls a consumer with resolved dependencies followed by args.
type Injected func(ctx context.Context, args ...any) (any, error)

// Async calls fn in a new goroutine.
func (fn Injected) Async(ctx context.Context, args ...any) *Future {
	return Async(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx, args...)
	})
}

// Using wraps consumer so that every call resolves condition (see ResolveAll)
// and passes resolved values as leading arguments, followed by call arguments.
// A leading context.Context parameter of consumer receives the call context.
//
// Consumer may return nothing, a value, an error, or a value and an error.
// Use All to inject every registered value; nil injects nothing.
func (c *Context) Using(condition any, consumer any) Injected {
	call, err := newConsumer(consumer)
	if err != nil {
		c.log.Warn("invalid consumer", "error", err)

		return func(context.Context, ...any) (any, error) {
			return nil, err
		}
	}

	return func(ctx context.Context, args ...any) (any, error) {
		if ctx == nil {
			return nil, ErrNilContext
		}

		deps, err := c.resolveAll(ctx, condition)
		if err != nil {
			return nil, err
		}

		return call.invoke(ctx, append(deps, args...))
	}
}

type consumer struct {
	fn          reflect.Value
	withContext bool
	withError   bool
	withValue   bool
}

func newConsumer(fn any) (*consumer, error) {
	if fn == nil {
		return nil, newBadConsumerError(ErrNilConsumer, nil)
	}

	v := reflect.ValueOf(fn)
	t := v.Type()

	if t.Kind() != reflect.Func {
		return nil, newBadConsumerError(&ConsumerTemplateError{SupportedConsumerTemplates: supportedConsumers}, t)
	}

	if v.IsNil() {
		return nil, newBadConsumerError(ErrNilConsumer, t)
	}

	c := &consumer{fn: v}
	c.withContext = t.NumIn() > 0 && t.In(0) == contextInterface

	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) == errorInterface {
			c.withError = true
		} else {
			c.withValue = true
		}
	case 2:
		if t.Out(1) != errorInterface {
			return nil, newBadConsumerError(&ConsumerTemplateError{SupportedConsumerTemplates: supportedConsumers}, t)
		}

		c.withValue, c.withError = true, true
	default:
		return nil, newBadConsumerError(&ConsumerTemplateError{SupportedConsumerTemplates: supportedConsumers}, t)
	}

	return c, nil
}

// invoke recovers a panic of the consumer into an error.
func (c *consumer) invoke(ctx context.Context, args []any) (value any, err error) {
	t := c.fn.Type()

	in := make([]reflect.Value, 0, len(args)+1)
	first := 0

	if c.withContext {
		in = append(in, reflect.ValueOf(ctx))
		first = 1
	}

	fixed := t.NumIn() - first
	if t.IsVariadic() {
		fixed--
	}

	if len(args) < fixed || !t.IsVariadic() && len(args) != fixed {
		return nil, newArityError(t, fixed, len(args))
	}

	for i, arg := range args {
		var param reflect.Type
		if i < fixed {
			param = t.In(first + i)
		} else {
			param = t.In(t.NumIn() - 1).Elem()
		}

		v, err := argumentValue(t, i, param, arg)
		if err != nil {
			return nil, err
		}

		in = append(in, v)
	}

	defer func() {
		if rp := recover(); rp != nil {
			value, err = nil, fmt.Errorf(recoveredPanicError, rp)
		}
	}()

	out := c.fn.Call(in)

	if c.withValue {
		value = out[0].Interface()
	}

	if c.withError {
		err, _ = out[len(out)-1].Interface().(error)
	}

	return value, err
}

func argumentValue(consumerType reflect.Type, index int, param reflect.Type, arg any) (reflect.Value, error) {
	if arg == nil {
		switch param.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(param), nil
		default:
			return reflect.Value{}, newArgumentTypeError(consumerType, index, param, nil)
		}
	}

	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(param) {
		return reflect.Value{}, newArgumentTypeError(consumerType, index, param, v.Type())
	}

	return v, nil
}
