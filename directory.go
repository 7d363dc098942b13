package tinydi

import (
	"slices"
	"sync"
)

// Directory looks up named Contexts.
// A Context created with both WithName and WithDirectory registers itself on creation
// and is removed on Close.
type Directory struct {
	m sync.Map
}

func NewDirectory() *Directory {
	return &Directory{}
}

// Get returns the Context registered under name.
func (d *Directory) Get(name string) (*Context, bool) {
	c, ok := d.m.Load(name)
	if !ok {
		return nil, false
	}

	return c.(*Context), true
}

// Delete removes name. It is a no-op if name is not registered.
func (d *Directory) Delete(name string) {
	d.m.Delete(name)
}

// Names returns registered names in lexical order.
func (d *Directory) Names() []string {
	names := make([]string, 0)

	d.m.Range(func(key, _ any) bool {
		names = append(names, key.(string))
		return true
	})

	slices.Sort(names)

	return names
}

func (d *Directory) set(name string, c *Context) {
	if prev, loaded := d.m.Swap(name, c); loaded {
		c.log.Debug("named context replaced", "name", name, "previous", prev.(*Context).ID())
	}
}

// deleteContext removes name only while it still refers to c.
func (d *Directory) deleteContext(name string, c *Context) {
	d.m.CompareAndDelete(name, c)
}
