package tinydi_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dlclark/regexp2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/andriiyaremenko/tinydi"
)

type keyName string

type stringerKey struct{ name string }

func (k stringerKey) String() string { return k.name }

var _ = Describe("ResolveAll", func() {
	var (
		ctx   context.Context
		c     *tinydi.Context
		calls atomic.Int32
	)

	BeforeEach(func() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(context.Background())

		DeferCleanup(func() {
			cancel()
		})

		calls.Store(0)
		c = tinydi.New()
		c.Provide("db.primary").With(countingFactory(&calls, "primary"))
		c.Provide("db.replica").As(delayed("replica", nil, time.Millisecond))
		c.Provide("cache").With(countingFactory(&calls, "cache"))
		c.Provide("alias.db").AliasTo("db.primary")
	})

	It("should resolve every key in registration order without condition", func() {
		values, err := c.ResolveAll(ctx)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{"primary", "replica", "cache", "primary"}))
	})

	It("should resolve every key for All", func() {
		values, err := c.ResolveAll(ctx, tinydi.All)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{"primary", "replica", "cache", "primary"}))
	})

	It("should resolve nothing for nil and None", func() {
		values, err := c.ResolveAll(ctx, nil)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(BeEmpty())

		values, err = c.ResolveAll(ctx, tinydi.None)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(BeEmpty())
		Expect(calls.Load()).To(BeZero())
	})

	It("should resolve keys matching regexp", func() {
		values, err := c.ResolveAll(ctx, regexp.MustCompile(`^db\.`))

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{"primary", "replica"}))
	})

	It("should resolve keys matching ECMAScript regexp", func() {
		values, err := c.ResolveAll(ctx, regexp2.MustCompile(`(?<!alias\.)db$`, regexp2.ECMAScript))

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(BeEmpty())

		values, err = c.ResolveAll(ctx, regexp2.MustCompile(`db(?=\.)`, regexp2.ECMAScript))

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{"primary", "replica"}))
	})

	It("should resolve nothing for regexp without matches", func() {
		values, err := c.ResolveAll(ctx, regexp.MustCompile(`^queue\.`))

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(BeEmpty())
		Expect(calls.Load()).To(BeZero())
	})

	It("should resolve keys matching predicate", func() {
		values, err := c.ResolveAll(ctx, func(key string) bool { return strings.HasSuffix(key, "db") })

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{"primary"}))

		values, err = c.ResolveAll(ctx, tinydi.Predicate(func(key string) bool { return key == "cache" }))

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{"cache"}))
	})

	It("should resolve nothing for always false predicate", func() {
		values, err := c.ResolveAll(ctx, func(string) bool { return false })

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(BeEmpty())
	})

	It("should accept named predicate types", func() {
		type filter func(string) bool

		values, err := c.ResolveAll(ctx, filter(func(key string) bool { return key == "db.replica" }))

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{"replica"}))
	})

	It("should resolve single key", func() {
		values, err := c.ResolveAll(ctx, "cache")

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{"cache"}))

		values, err = c.ResolveAll(ctx, keyName("db.replica"))

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{"replica"}))

		values, err = c.ResolveAll(ctx, stringerKey{"alias.db"})

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{"primary"}))
	})

	It("should resolve sequence with one key same as the key", func() {
		single, err := c.ResolveAll(ctx, "cache")
		Expect(err).ShouldNot(HaveOccurred())

		sequence, err := c.ResolveAll(ctx, []string{"cache"})
		Expect(err).ShouldNot(HaveOccurred())

		Expect(sequence).To(Equal(single))
	})

	It("should concatenate sequence results in order", func() {
		values, err := c.ResolveAll(
			ctx,
			[]any{"cache", regexp.MustCompile(`^db\.`), []string{"alias.db"}, nil, [1]string{"cache"}},
		)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{"cache", "primary", "replica", "primary", "cache"}))
	})

	It("should treat several conditions as sequence", func() {
		values, err := c.ResolveAll(ctx, "db.replica", "cache")

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{"replica", "cache"}))
	})

	It("should fail for a missing key", func() {
		_, err := c.ResolveAll(ctx, []string{"cache", "missing"})

		Expect(err).Should(BeAssignableToTypeOf(new(tinydi.ProviderNotFoundError)))
	})

	It("should report the earliest failing key", func() {
		for range 20 {
			_, err := c.ResolveAll(ctx, "cache", "m1", "m2", "m3")

			var notFound *tinydi.ProviderNotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(notFound.Key).To(Equal("m1"))
		}
	})

	It("should report the earliest failure even if it settles last", func() {
		c.Provide("late").As(delayed(nil, errUnfortunate, 5*time.Millisecond))

		_, err := c.ResolveAll(ctx, "late", "missing")

		Expect(err).Should(BeAssignableToTypeOf(new(tinydi.FactoryError)))
		Expect(errors.Unwrap(err)).Should(MatchError(errUnfortunate))
	})

	It("should invoke factories in match order", func() {
		var invoked []string

		c := tinydi.New()
		for _, key := range []string{"k0", "k1", "k2", "k3", "k4"} {
			c.Provide(key).With(func() string {
				invoked = append(invoked, key)
				return key
			})
		}

		values, err := c.ResolveAll(ctx, "k3", "k1", regexp.MustCompile(`^k[024]$`))

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{"k3", "k1", "k0", "k2", "k4"}))
		Expect(invoked).To(Equal([]string{"k3", "k1", "k0", "k2", "k4"}))
	})

	It("should refuse unsupported condition", func() {
		_, err := c.ResolveAll(ctx, 42)

		Expect(err).Should(BeAssignableToTypeOf(new(tinydi.UnsupportedConditionError)))
	})

	It("should use key expressions", func() {
		values, err := c.ResolveAll(ctx, tinydi.MustKeyExpr(`key startsWith "db." && key != "db.primary"`))

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{"replica"}))
	})

	It("should drop falsy values", func() {
		c := tinydi.New()
		c.Provide("zero").As(0)
		c.Provide("empty").As("")
		c.Provide("false").As(false)
		c.Provide("nil").As(nil)
		c.Provide("nil pointer").As((*Hero)(nil))
		c.Provide("one").As(1)
		c.Provide("empty slice").As([]int{})
		c.Provide("struct").As(struct{}{})

		values, err := c.ResolveAll(ctx)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{1, []int{}, struct{}{}}))
	})

	It("should drop falsy single value", func() {
		c := tinydi.New()
		c.Provide("a").As(0)

		values, err := c.ResolveAll(ctx)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(BeEmpty())

		value, err := c.Resolve(ctx, "a")

		Expect(err).ShouldNot(HaveOccurred())
		Expect(value).To(Equal(0))
	})

	It("should keep falsy values with KeepFalsyValues", func() {
		c := tinydi.New(tinydi.KeepFalsyValues)
		c.Provide("zero").As(0)
		c.Provide("empty").As("")
		c.Provide("nil").As(nil)

		values, err := c.ResolveAll(ctx)

		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).To(Equal([]any{0, "", nil}))
	})
})
