package body

import "sync/atomic"

// IDAllocator hands out strictly increasing body ids starting at 1. One
// allocator may be shared by several systems so their ids never collide.
type IDAllocator struct {
	last atomic.Uint64
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

func (a *IDAllocator) Next() uint64 {
	return a.last.Add(1)
}

// Assign gives b the next id. A body that already has one is rejected.
func (a *IDAllocator) Assign(b *Body) error {
	if b.id != 0 {
		return ErrAlreadyOwned
	}
	b.id = a.Next()
	return nil
}
