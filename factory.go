package tinydi

import (
	"context"
	"fmt"
	"reflect"
)

type factoryType int

const (
	onlyValue factoryType = iota
	withError
	withErrorAndCleanup
)

type factory struct {
	fn          reflect.Value
	factoryType factoryType
	withContext bool
}

func newFactory(fn any) (*factory, error) {
	if fn == nil {
		return nil, newBadFactoryError(ErrNilFactory, nil)
	}

	v := reflect.ValueOf(fn)
	t := v.Type()

	if t.Kind() != reflect.Func {
		return nil, newFactoryUnsupportedError(t)
	}

	if v.IsNil() {
		return nil, newBadFactoryError(ErrNilFactory, t)
	}

	if t.IsVariadic() {
		return nil, newBadFactoryError(ErrVariadicFactory, t)
	}

	f := &factory{fn: v}

	switch t.NumIn() {
	case 0:
	case 1:
		if t.In(0) != contextInterface {
			return nil, newFactoryUnsupportedError(t)
		}

		f.withContext = true
	default:
		return nil, newFactoryUnsupportedError(t)
	}

	switch t.NumOut() {
	case 1:
		if out := t.Out(0); out.Implements(errorInterface) && out.Kind() == reflect.Interface {
			return nil, newFactoryUnsupportedError(t)
		}
	case 2:
		f.factoryType = withError

		if errType := t.Out(1); !errType.Implements(errorInterface) {
			return nil, newFactoryUnsupportedError(t)
		}
	case 3:
		f.factoryType = withErrorAndCleanup

		if cleanup := t.Out(1); !cleanup.ConvertibleTo(cleanupType) {
			return nil, newFactoryUnsupportedError(t)
		}

		if errType := t.Out(2); !errType.Implements(errorInterface) {
			return nil, newFactoryUnsupportedError(t)
		}
	default:
		return nil, newFactoryUnsupportedError(t)
	}

	return f, nil
}

func (f *factory) call(ctx context.Context) (value any, cleanup Cleanup, err error) {
	defer func() {
		if rp := recover(); rp != nil {
			value, cleanup, err = nil, nil, fmt.Errorf(recoveredPanicError, rp)
		}
	}()

	var args []reflect.Value
	if f.withContext {
		args = []reflect.Value{reflect.ValueOf(ctx)}
	}

	values := f.fn.Call(args)

	if f.factoryType == onlyValue && len(values) != 1 ||
		f.factoryType == withError && len(values) != 2 ||
		f.factoryType == withErrorAndCleanup && len(values) != 3 {
		return nil, nil, newUnexpectedResultError(values)
	}

	if f.factoryType != onlyValue {
		if err := resultError(values[len(values)-1]); err != nil {
			return nil, nil, err
		}
	}

	if f.factoryType == withErrorAndCleanup {
		if cleanupV := values[1]; !cleanupV.IsNil() {
			cleanup = Cleanup(cleanupV.Convert(cleanupType).Interface().(func()))
		}
	}

	return values[0].Interface(), cleanup, nil
}

// resultError treats a nil value of a concrete error type as no error.
func resultError(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}

	err, _ := v.Interface().(error)

	return err
}
