package hazard

import (
	"sync/atomic"
	"unsafe"
)

// Guard is the scoped handle over a single hazard slot, implementing
// the safe-read protocol that keeps the value it protects alive until
// Release. A zero Guard is not usable; obtain one from AtomicBox.Load.
type Guard[T any] struct {
	domain *Domain
	box    *AtomicBox[T]
	s      *slot
	ptr    *T
}

// Value returns the protected pointer, or nil if the box held no
// value (or was empty) at the moment this guard was taken. The
// pointee is guaranteed live for as long as the guard is not released.
func (g *Guard[T]) Value() *T {
	return g.ptr
}

// Domain returns the Domain this guard's slot was acquired from, used
// by AtomicBox to reject (in Debug mode) guards from a different
// domain than its own.
func (g *Guard[T]) Domain() *Domain {
	return g.domain
}

// Release returns the guard's hazard slot to its domain, making it a
// candidate for reuse by a future acquire. Release is idempotent; it
// is safe to call more than once or via defer after an earlier
// explicit call.
func (g *Guard[T]) Release() {
	if g.s != nil {
		g.domain.releaseSlot(g.s)
		g.s = nil
	}
	g.ptr = nil
}

// Reload re-arms the guard to protect the box's current value,
// re-entering the canonical read loop without acquiring a new hazard
// slot. This avoids roster churn when a caller loads repeatedly in a
// tight loop.
//
// Reload panics if the guard has already been released.
func (g *Guard[T]) Reload() *T {
	assertf(g.s != nil, "Reload called on a released guard")
	g.ptr = loadProtected(&g.box.ptr, g.s)
	return g.ptr
}

// loadProtected implements the canonical hazard-pointer read loop
// against src, publishing into s:
//
//  1. p0 := src.Load()
//  2. if p0 == nil, clear the slot and return nil.
//  3. publish p0 into s.
//  4. re-read p1 := src.Load(); if p1 == p0, the slot now protects p0.
//  5. otherwise p0 = p1 and retry.
//
// Step 4 has to re-read src, not just trust that publishing in step 3
// was enough: a concurrent Store could have already swapped src to a
// new value and started reclaiming p0 in the window between steps 1
// and 3, before the publish was visible to a scan. The retry closes
// that window. No separate memory fence is needed between steps 3 and
// 4: the publish store and the re-read load are each already
// sequentially consistent atomic operations under the Go memory model.
func loadProtected[T any](src *atomic.Pointer[T], s *slot) *T {
	p0 := src.Load()
	for {
		if p0 == nil {
			s.reset()
			return nil
		}
		s.publish((*byte)(unsafe.Pointer(p0)))
		p1 := src.Load()
		if p1 == p0 {
			return p0
		}
		s.reset()
		p0 = p1
	}
}
