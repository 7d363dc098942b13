package tinydi

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type ContextConfiguration struct {
	Logger          *slog.Logger
	Directory       *Directory
	Name            string
	KeepFalsyValues bool
}

type ContextOption func(*ContextConfiguration)

var (
	// Context is registered in the Directory passed with WithDirectory under this name.
	WithName = func(name string) ContextOption {
		return func(opt *ContextConfiguration) { opt.Name = name }
	}

	WithDirectory = func(dir *Directory) ContextOption {
		return func(opt *ContextConfiguration) { opt.Directory = dir }
	}

	WithLogger = func(logger *slog.Logger) ContextOption {
		return func(opt *ContextConfiguration) { opt.Logger = logger }
	}

	// ResolveAll drops falsy values (nil, false, 0, "") unless this option is set.
	KeepFalsyValues ContextOption = func(opt *ContextConfiguration) { opt.KeepFalsyValues = true }
)

// Context is a registry of keys and the Providers producing their values.
// It is safe for concurrent use.
type Context struct {
	log          *slog.Logger
	directory    *Directory
	providers    *orderedmap.OrderedMap[string, *Provider]
	cleanups     cleanupStack
	name         string
	providersRWM sync.RWMutex
	id           uuid.UUID
	keepFalsy    bool
}

// Returns new Context.
func New(opts ...ContextOption) *Context {
	conf := ContextConfiguration{}

	for _, opt := range opts {
		opt(&conf)
	}

	if conf.Logger == nil {
		conf.Logger = logger()
	}

	c := &Context{
		id:        uuid.New(),
		name:      conf.Name,
		directory: conf.Directory,
		providers: orderedmap.New[string, *Provider](),
		keepFalsy: conf.KeepFalsyValues,
	}

	c.log = conf.Logger.With("context", c.String())

	if c.name != "" && c.directory != nil {
		c.directory.set(c.name, c)
	}

	return c
}

func (c *Context) ID() uuid.UUID {
	return c.id
}

func (c *Context) Name() string {
	return c.name
}

func (c *Context) String() string {
	if c.name != "" {
		return c.name
	}

	return c.id.String()
}

// Provide registers a new Provider for key, replacing any previous one.
// A replaced key keeps its position in registration order.
func (c *Context) Provide(key string) *Provider {
	p := newProvider(c, key)

	c.providersRWM.Lock()
	_, replaced := c.providers.Set(key, p)
	c.providersRWM.Unlock()

	if replaced {
		c.log.Debug("provider replaced", "key", key)
	} else {
		c.log.Debug("provider registered", "key", key)
	}

	return p
}

func (c *Context) provider(key string) (*Provider, bool) {
	c.providersRWM.RLock()
	defer c.providersRWM.RUnlock()

	return c.providers.Get(key)
}

// Resolve returns the value registered under key.
// It blocks while the value is being produced or awaited.
func (c *Context) Resolve(ctx context.Context, key string) (any, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	return c.future(ctx, key).Await(ctx)
}

func (c *Context) future(ctx context.Context, key string) *Future {
	p, ok := c.provider(key)
	if !ok {
		return Rejected(newProviderNotFoundError(key))
	}

	return p.future(ctx)
}

func (c *Context) ResolveAsync(ctx context.Context, key string) *Future {
	return Async(ctx, func(ctx context.Context) (any, error) {
		return c.Resolve(ctx, key)
	})
}

func (c *Context) Has(key string) bool {
	_, ok := c.provider(key)

	return ok
}

func (c *Context) Len() int {
	c.providersRWM.RLock()
	defer c.providersRWM.RUnlock()

	return c.providers.Len()
}

// Keys returns registered keys in registration order.
func (c *Context) Keys() []string {
	keys, _ := c.matchKeys(func(string) (bool, error) { return true, nil })

	return keys
}

func (c *Context) matchKeys(match func(key string) (bool, error)) ([]string, error) {
	c.providersRWM.RLock()
	defer c.providersRWM.RUnlock()

	keys := make([]string, 0, c.providers.Len())
	for pair := c.providers.Oldest(); pair != nil; pair = pair.Next() {
		ok, err := match(pair.Key)
		if err != nil {
			return nil, err
		}

		if ok {
			keys = append(keys, pair.Key)
		}
	}

	return keys, nil
}

// Close runs cleanups returned by factories, latest first,
// and removes the Context from its Directory.
// Memoized values stay available.
func (c *Context) Close() {
	c.cleanups.run(c.log)

	if c.name != "" && c.directory != nil {
		c.directory.deleteContext(c.name, c)
	}
}
