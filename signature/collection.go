package signature

import "iter"

// Collection is a fixed-capacity set of signatures for one access unit.
// Len reports how many slots are populated; a collection can only be encoded
// once Len equals Cap. Storage grows with Add, so an empty collection costs
// nothing regardless of its capacity.
type Collection struct {
	sigs     []Signature
	capacity int
}

// NewCollection creates an empty collection with room for capacity signatures.
func NewCollection(capacity int) *Collection {
	return &Collection{capacity: max(capacity, 0)}
}

// CollectionOf creates a fully populated collection holding sigs.
func CollectionOf(sigs ...Signature) *Collection {
	return &Collection{sigs: append([]Signature(nil), sigs...), capacity: len(sigs)}
}

// Len returns the number of populated slots.
func (c *Collection) Len() int {
	return len(c.sigs)
}

// Cap returns the number of slots.
func (c *Collection) Cap() int {
	return c.capacity
}

// IsComplete reports whether every slot is populated.
func (c *Collection) IsComplete() bool {
	return len(c.sigs) == c.capacity
}

// Add stores s in the next free slot. It returns false when the collection is full.
func (c *Collection) Add(s Signature) bool {
	if len(c.sigs) >= c.capacity {
		return false
	}
	c.sigs = append(c.sigs, s)

	return true
}

// At returns the i-th populated signature.
func (c *Collection) At(i int) (Signature, bool) {
	if i < 0 || i >= len(c.sigs) {
		return Signature{}, false
	}

	return c.sigs[i], true
}

// Resize changes the capacity, keeping as many populated signatures as still fit.
func (c *Collection) Resize(capacity int) {
	c.capacity = max(capacity, 0)
	if len(c.sigs) > c.capacity {
		clear(c.sigs[c.capacity:])
		c.sigs = c.sigs[:c.capacity]
	}
}

// Contains reports whether one of the populated signatures equals s.
func (c *Collection) Contains(s Signature) bool {
	for _, sig := range c.sigs {
		if sig.Equal(s) {
			return true
		}
	}

	return false
}

// All yields the populated signatures with their slot index.
func (c *Collection) All() iter.Seq2[int, Signature] {
	return func(yield func(int, Signature) bool) {
		for i, s := range c.sigs {
			if !yield(i, s) {
				return
			}
		}
	}
}

// Equal reports whether both collections have the same capacity and signatures.
func (c *Collection) Equal(o *Collection) bool {
	if c.capacity != o.capacity || len(c.sigs) != len(o.sigs) {
		return false
	}
	for i := range c.sigs {
		if !c.sigs[i].Equal(o.sigs[i]) {
			return false
		}
	}

	return true
}
