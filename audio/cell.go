package audio

import "sync/atomic"

const fresh = 0b100

// Cell publishes values from a single writer to a single reader without
// either side ever waiting on the other. It is a triple buffer: the writer
// fills a slot nobody else can see and swaps it into the shared position in
// one atomic step; the reader swaps the shared slot out when it is fresh and
// keeps reading it until its next Update.
//
// Publish and Set must not be called concurrently with each other; the same
// goes for Update and Get. Concurrent writers race on the private write slot.
// The types in this package that hand out cells serialize their writers.
type Cell[T any] struct {
	slots  [3]T
	shared atomic.Uint32 // slot index | fresh

	// writer side
	write uint32
	next  T

	// reader side
	read uint32
}

// NewCell returns a cell whose reader initially observes v.
func NewCell[T any](v T) *Cell[T] {
	c := &Cell[T]{write: 0, read: 1, next: v}
	c.slots[1] = v
	c.slots[2] = v
	c.shared.Store(2)
	return c
}

// Pending returns the writer's copy of the next value to publish. Changes to
// it become visible to the reader on the next Publish.
func (c *Cell[T]) Pending() *T {
	return &c.next
}

// Publish makes the writer's pending value current.
func (c *Cell[T]) Publish() {
	c.slots[c.write] = c.next
	prev := c.shared.Swap(c.write | fresh)
	c.write = prev &^ fresh
}

// Set replaces the pending value with v and publishes it.
func (c *Cell[T]) Set(v T) {
	c.next = v
	c.Publish()
}

// Update takes the most recently published value, if one arrived since the
// last Update, and reports whether it did.
func (c *Cell[T]) Update() bool {
	if c.shared.Load()&fresh == 0 {
		return false
	}
	prev := c.shared.Swap(c.read)
	c.read = prev &^ fresh
	return true
}

// Get returns the reader's current snapshot. It stays stable until the next
// Update.
func (c *Cell[T]) Get() *T {
	return &c.slots[c.read]
}
