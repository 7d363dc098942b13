/*
This package provides a minimal dependency-injection container.
Values are registered under string keys and produced lazily, at most once, on first resolution.

To install tinydi:

	go get -u github.com/andriiyaremenko/tinydi

How to use:

	c := tinydi.New()

	c.Provide("config").As(Config{DSN: "postgres://localhost/app"})
	c.Provide("db").With(func(ctx context.Context) (*sql.DB, tinydi.Cleanup, error) {
		conf := tinydi.MustGet[Config](ctx, c, "config")

		db, err := sql.Open("postgres", conf.DSN)
		if err != nil {
			return nil, nil, err
		}

		return db, func() { db.Close() }, nil
	})
	c.Provide("storage").AliasTo("db")

	defer c.Close()

	db, err := tinydi.Get[*sql.DB](ctx, c, "storage")
	if err != nil {
		// handle error
	}

	handlers, err := c.ResolveAll(ctx, regexp.MustCompile(`^handler\.`))
	if err != nil {
		// handle error
	}

	countUsers := c.Using("db", func(ctx context.Context, db *sql.DB, table string) (int, error) {
		// query
	})
	n, err := countUsers(ctx, "users")

Functions:
  - tinydi.New
  - tinydi.Get
  - tinydi.MustGet
  - tinydi.GetAll
  - tinydi.T
  - tinydi.P
  - tinydi.KeyExpr
  - tinydi.Async
  - tinydi.SetDefaultLogger

Provider strategies:

	(*Provider).As(value)    - value, awaited if it is Eventual
	(*Provider).With(fn)     - fn is invoked once, its outcome (value or error) is memoized
	(*Provider).AliasTo(key) - resolves another key of the same Context

Factory types that can be used:
  - func() [T|(T, error)|(T, Cleanup, error)]
  - func(context.Context) [T|(T, error)|(T, Cleanup, error)]

Conditions accepted by ResolveAll and Using:
  - nothing or tinydi.All - every key in registration order
  - nil or tinydi.None - no key
  - string - single key
  - *regexp.Regexp, *regexp2.Regexp - matching keys
  - tinydi.Predicate, func(string) bool - keys for which it returns true
  - slice or array of conditions - concatenated results

ResolveAll drops falsy values (nil, false, 0, "") from its result.
Create the Context with tinydi.KeepFalsyValues to keep them.
*/
package tinydi
