package tinydi

import (
	"context"
	"sync"
)

type strategyKind int

const (
	unconfigured strategyKind = iota
	literal
	factoryStrategy
	alias
	invalid
)

func (kind strategyKind) String() string {
	switch kind {
	case unconfigured:
		return "unconfigured"
	case literal:
		return "literal"
	case factoryStrategy:
		return "factory"
	case alias:
		return "alias"
	case invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

type strategy struct {
	value   any
	factory *factory
	err     error
	target  string
	kind    strategyKind
}

// Provider knows how to produce the value registered under one key of a Context.
// It is created by (*Context).Provide and configured with As, With or AliasTo;
// the last call wins.
type Provider struct {
	owner    *Context
	produced *Future
	strategy strategy
	key      string
	mu       sync.Mutex
}

func newProvider(owner *Context, key string) *Provider {
	return &Provider{owner: owner, key: key}
}

func (p *Provider) Key() string {
	return p.key
}

// As makes the Provider return value.
// If value is Eventual it is awaited once and its outcome is returned from then on.
func (p *Provider) As(value any) *Provider {
	p.configure(strategy{kind: literal, value: value})

	return p
}

// With makes the Provider produce its value by calling fn on first resolution.
// fn is invoked at most once; its outcome, including an error, is memoized.
//
// Supported shapes:
//
//	func() T
//	func() (T, error)
//	func() (T, Cleanup, error)
//	func(context.Context) T
//	func(context.Context) (T, error)
//	func(context.Context) (T, Cleanup, error)
//
// T may be Eventual. Cleanup functions run on (*Context).Close.
func (p *Provider) With(fn any) *Provider {
	f, err := newFactory(fn)
	if err != nil {
		p.owner.log.Warn("invalid factory", "key", p.key, "error", err)
		p.configure(strategy{kind: invalid, err: err})

		return p
	}

	p.configure(strategy{kind: factoryStrategy, factory: f})

	return p
}

// AliasTo makes the Provider resolve key on the owning Context instead.
func (p *Provider) AliasTo(key string) *Provider {
	p.configure(strategy{kind: alias, target: key})

	return p
}

func (p *Provider) configure(s strategy) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.strategy.kind != unconfigured {
		p.owner.log.Debug(
			"provider strategy replaced",
			"key", p.key,
			"from", p.strategy.kind.String(),
			"to", s.kind.String(),
		)
	}

	p.strategy = s
	p.produced = nil
}

// future starts production on first use and returns the memoized outcome.
// Aliases return the future of their target.
func (p *Provider) future(ctx context.Context) *Future {
	p.mu.Lock()

	switch p.strategy.kind {
	case unconfigured:
		p.mu.Unlock()
		return Rejected(newUnconfiguredProviderError(p.key))
	case invalid:
		err := p.strategy.err
		p.mu.Unlock()

		return Rejected(err)
	case alias:
		target := p.strategy.target
		p.mu.Unlock()

		return p.owner.future(ctx, target)
	}

	if p.produced == nil {
		p.produced = p.produce(ctx)
	}

	produced := p.produced
	p.mu.Unlock()

	return produced
}

// produce must be called with p.mu held.
// Factories receive ctx without its cancellation, so their outcome does not depend on one caller.
func (p *Provider) produce(ctx context.Context) *Future {
	switch p.strategy.kind {
	case literal:
		return p.settle(ctx, p.strategy.value)
	case factoryStrategy:
		p.owner.log.Debug("invoking factory", "key", p.key)

		value, cleanup, err := p.strategy.factory.call(context.WithoutCancel(ctx))
		if err != nil {
			return Rejected(newFactoryError(err, p.key))
		}

		p.owner.cleanups.push(p.key, cleanup)

		return p.settle(ctx, value)
	default:
		return Rejected(newUnconfiguredProviderError(p.key))
	}
}

// settle awaits Eventual values in the background on a context detached from ctx,
// so a cancelled caller does not decide the memoized outcome.
func (p *Provider) settle(ctx context.Context, value any) *Future {
	if _, ok := value.(Eventual); !ok {
		return Resolved(value)
	}

	key := p.key

	return Async(context.WithoutCancel(ctx), func(ctx context.Context) (any, error) {
		value, err := unwrap(ctx, value)
		if err != nil {
			return nil, newFactoryError(err, key)
		}

		return value, nil
	})
}
