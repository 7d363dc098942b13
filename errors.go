package tinydi

import (
	"context"
	"fmt"
	"reflect"
)

const (
	factoryTypeStr            string = "func() [T|(T, error)|(T, func(), error)]"
	factoryWithContextTypeStr string = "func(context.Context) [T|(T, error)|(T, func(), error)]"

	supportedFactories  string = factoryTypeStr + " | " + factoryWithContextTypeStr
	supportedConsumers  string = "func([context.Context, ]T1, ...) [()|T|error|(T, error)]"
	recoveredPanicError string = "recovered from panic: %v"
)

var (
	errorInterface   = reflect.TypeOf((*error)(nil)).Elem()
	cleanupType      = reflect.TypeOf((*func())(nil)).Elem()
	contextInterface = reflect.TypeOf((*context.Context)(nil)).Elem()

	ErrVariadicFactory = fmt.Errorf("variadic factory is not supported")
	ErrNilFactory      = fmt.Errorf("got nil factory")
	ErrNilConsumer     = fmt.Errorf("got nil consumer")
	ErrNilContext      = fmt.Errorf("got nil context")
)

func newProviderNotFoundError(key string) error {
	return &ProviderNotFoundError{Key: key}
}

type ProviderNotFoundError struct {
	Key string
}

func (err *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("%s provider not found", err.Key)
}

func newUnconfiguredProviderError(key string) error {
	return &UnconfiguredProviderError{Key: key}
}

// Returned for a key that was registered with Provide but never given a strategy.
type UnconfiguredProviderError struct {
	Key string
}

func (err *UnconfiguredProviderError) Error() string {
	return fmt.Sprintf("%s provider is registered but not configured", err.Key)
}

func newBadFactoryError(cause error, factoryType reflect.Type) error {
	return &BadFactoryError{
		cause:       cause,
		FactoryType: factoryType,
	}
}

type BadFactoryError struct {
	cause       error
	FactoryType reflect.Type
}

func (err *BadFactoryError) Error() string {
	return fmt.Sprintf("bad factory %v: %s", err.FactoryType, err.cause)
}

func (err *BadFactoryError) Unwrap() error {
	return err.cause
}

func newFactoryUnsupportedError(factoryType reflect.Type) error {
	return newBadFactoryError(
		&FactoryTemplateError{SupportedFactoryTemplates: supportedFactories},
		factoryType,
	)
}

type FactoryTemplateError struct {
	SupportedFactoryTemplates string
}

func (err *FactoryTemplateError) Error() string {
	return fmt.Sprintf("only %s can be used as a factory", err.SupportedFactoryTemplates)
}

func newFactoryError(cause error, key string) error {
	return &FactoryError{
		cause: cause,
		Key:   key,
	}
}

// Wraps an error returned by a factory, a rejected eventual value or a recovered panic.
type FactoryError struct {
	cause error
	Key   string
}

func (err *FactoryError) Error() string {
	return fmt.Sprintf("cannot produce %s: %s", err.Key, err.cause)
}

func (err *FactoryError) Unwrap() error {
	return err.cause
}

func newUnexpectedResultError(values []reflect.Value) error {
	return &UnexpectedResultError{
		Result: values,
	}
}

type UnexpectedResultError struct {
	Result []reflect.Value
}

func (err *UnexpectedResultError) Error() string {
	return fmt.Sprintf("unexpected result: %#v", err.Result)
}

func newBadConsumerError(cause error, consumerType reflect.Type) error {
	return &BadConsumerError{
		cause:        cause,
		ConsumerType: consumerType,
	}
}

type BadConsumerError struct {
	cause        error
	ConsumerType reflect.Type
}

func (err *BadConsumerError) Error() string {
	return fmt.Sprintf("bad consumer %v: %s", err.ConsumerType, err.cause)
}

func (err *BadConsumerError) Unwrap() error {
	return err.cause
}

type ConsumerTemplateError struct {
	SupportedConsumerTemplates string
}

func (err *ConsumerTemplateError) Error() string {
	return fmt.Sprintf("only %s can be used as a consumer", err.SupportedConsumerTemplates)
}

func newArityError(consumerType reflect.Type, want, got int) error {
	return &ArgumentError{ConsumerType: consumerType, Index: -1, Want: want, Got: got}
}

func newArgumentTypeError(consumerType reflect.Type, index int, expected, actual reflect.Type) error {
	return &ArgumentError{ConsumerType: consumerType, Index: index, Expected: expected, Actual: actual}
}

// Index is -1 when the number of arguments does not match the consumer.
type ArgumentError struct {
	ConsumerType     reflect.Type
	Expected, Actual reflect.Type
	Index            int
	Want, Got        int
}

func (err *ArgumentError) Error() string {
	if err.Index < 0 {
		return fmt.Sprintf("%s expects %d arguments, got %d", err.ConsumerType, err.Want, err.Got)
	}

	return fmt.Sprintf(
		"%s argument %d: %v is not assignable to %s",
		err.ConsumerType,
		err.Index,
		err.Actual,
		err.Expected,
	)
}

func newUnsupportedConditionError(condition any) error {
	return &UnsupportedConditionError{Condition: condition}
}

type UnsupportedConditionError struct {
	Condition any
}

func (err *UnsupportedConditionError) Error() string {
	return fmt.Sprintf("%T cannot be used as a condition", err.Condition)
}

func newPatternError(cause error, pattern string) error {
	return &PatternError{cause: cause, Pattern: pattern}
}

type PatternError struct {
	cause   error
	Pattern string
}

func (err *PatternError) Error() string {
	return fmt.Sprintf("pattern %q failed: %s", err.Pattern, err.cause)
}

func (err *PatternError) Unwrap() error {
	return err.cause
}

func newKeyExprError(cause error, expr string) error {
	return &KeyExprError{cause: cause, Expr: expr}
}

type KeyExprError struct {
	cause error
	Expr  string
}

func (err *KeyExprError) Error() string {
	return fmt.Sprintf("key expression %q: %s", err.Expr, err.cause)
}

func (err *KeyExprError) Unwrap() error {
	return err.cause
}

func newTypeMismatchError(key string, expected reflect.Type, value any) error {
	return &TypeMismatchError{Key: key, Expected: expected, Actual: reflect.TypeOf(value)}
}

type TypeMismatchError struct {
	Expected, Actual reflect.Type
	Key              string
}

func (err *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s resolved to %s, expected %s", err.Key, err.Actual, err.Expected)
}

func newFieldError(cause error, t reflect.Type, field string) error {
	return &FieldError{cause: cause, T: t, Field: field}
}

type FieldError struct {
	cause error
	T     reflect.Type
	Field string
}

func (err *FieldError) Error() string {
	return fmt.Sprintf("cannot fill %s.%s: %s", err.T, err.Field, err.cause)
}

func (err *FieldError) Unwrap() error {
	return err.cause
}

type StructError struct {
	T reflect.Type
}

func (err *StructError) Error() string {
	return fmt.Sprintf("tinydi.T and tinydi.P can only be used with a struct, got %s", err.T)
}
