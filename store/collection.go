package store

import "slices"

// Collection is an insertion ordered set of records keyed by id.
// It is not safe for concurrent use; the client loop owns it.
type Collection[T any] struct {
	index map[string]*T
	order []string
}

func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{index: make(map[string]*T)}
}

// Upsert creates the record for id when missing and hands it to merge.
// created reports whether the record is new.
func (c *Collection[T]) Upsert(id string, merge func(rec *T, created bool)) *T {
	rec, ok := c.index[id]
	if !ok {
		rec = new(T)
		c.index[id] = rec
		c.order = append(c.order, id)
	}
	merge(rec, !ok)
	return rec
}

func (c *Collection[T]) Get(id string) (*T, bool) {
	rec, ok := c.index[id]
	return rec, ok
}

// Remove deletes id. Missing ids are ignored.
func (c *Collection[T]) Remove(id string) bool {
	if _, ok := c.index[id]; !ok {
		return false
	}
	delete(c.index, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	return true
}

// RemoveWhere deletes every record matching pred in one pass and returns the
// removed ids in insertion order.
func (c *Collection[T]) RemoveWhere(pred func(id string, rec *T) bool) []string {
	var removed []string
	kept := c.order[:0]
	for _, id := range c.order {
		if pred(id, c.index[id]) {
			removed = append(removed, id)
			delete(c.index, id)
			continue
		}
		kept = append(kept, id)
	}
	clear(c.order[len(kept):])
	c.order = kept
	return removed
}

func (c *Collection[T]) Clear() {
	clear(c.index)
	c.order = c.order[:0]
}

func (c *Collection[T]) Len() int {
	return len(c.order)
}

// Each visits records in insertion order until fn returns false.
func (c *Collection[T]) Each(fn func(id string, rec *T) bool) {
	for _, id := range c.order {
		if !fn(id, c.index[id]) {
			return
		}
	}
}

func (c *Collection[T]) IDs() []string {
	return slices.Clone(c.order)
}
