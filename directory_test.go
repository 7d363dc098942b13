package tinydi_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/andriiyaremenko/tinydi"
)

var _ = Describe("Directory", func() {
	It("should register named Context", func() {
		dir := tinydi.NewDirectory()
		c := tinydi.New(tinydi.WithName("app"), tinydi.WithDirectory(dir))

		found, ok := dir.Get("app")

		Expect(ok).To(BeTrue())
		Expect(found).To(BeIdenticalTo(c))
		Expect(dir.Names()).To(Equal([]string{"app"}))
	})

	It("should not register unnamed Context", func() {
		dir := tinydi.NewDirectory()
		_ = tinydi.New(tinydi.WithDirectory(dir))

		Expect(dir.Names()).To(BeEmpty())
	})

	It("should return not found for unknown name", func() {
		dir := tinydi.NewDirectory()

		found, ok := dir.Get("unknown")

		Expect(ok).To(BeFalse())
		Expect(found).To(BeNil())
	})

	It("should delete name", func() {
		dir := tinydi.NewDirectory()
		_ = tinydi.New(tinydi.WithName("app"), tinydi.WithDirectory(dir))

		dir.Delete("app")
		dir.Delete("never registered")

		_, ok := dir.Get("app")
		Expect(ok).To(BeFalse())
	})

	It("should replace Context registered under same name", func() {
		dir := tinydi.NewDirectory()
		first := tinydi.New(tinydi.WithName("app"), tinydi.WithDirectory(dir))
		second := tinydi.New(tinydi.WithName("app"), tinydi.WithDirectory(dir))

		found, _ := dir.Get("app")
		Expect(found).To(BeIdenticalTo(second))

		first.Close()

		found, ok := dir.Get("app")
		Expect(ok).To(BeTrue())
		Expect(found).To(BeIdenticalTo(second))

		second.Close()

		_, ok = dir.Get("app")
		Expect(ok).To(BeFalse())
	})

	It("should keep directories independent", func() {
		dir1, dir2 := tinydi.NewDirectory(), tinydi.NewDirectory()
		_ = tinydi.New(tinydi.WithName("app"), tinydi.WithDirectory(dir1))

		_, ok := dir2.Get("app")
		Expect(ok).To(BeFalse())
	})
})
