package hazard

import "sync/atomic"

// slot is a single hazard pointer: one atomic address cell plus an
// "in-use" flag. It is the unit a reader temporarily writes into to
// declare "I am reading this pointer."
//
// At most one goroutine writes to a claimed slot at a time; that is
// enforced by tryClaim's compare-and-swap on active. A released slot
// (active == false) always has ptr == nil, so a reclamation scan need
// not consult active at all — it only looks at ptr (see
// roster.snapshot).
type slot struct {
	ptr    atomic.Pointer[byte]
	active atomic.Bool
}

// tryClaim atomically transitions active from false to true. It is
// the only way to acquire exclusive write access to a slot; on success
// the caller owns the slot until it calls release.
func (s *slot) tryClaim() bool {
	return s.active.CompareAndSwap(false, true)
}

// publish stores p into the slot with release ordering, or clears it
// if p is nil. Every publish of a non-nil pointer must be followed by
// a re-read of the source atomic pointer (see loadProtected) so that a
// concurrent retirer either observes the publication or has not yet
// removed the pointer being published.
func (s *slot) publish(p *byte) {
	s.ptr.Store(p)
}

// reset clears the published pointer without releasing the slot.
func (s *slot) reset() {
	s.ptr.Store(nil)
}

// release clears the published pointer, then marks the slot free for
// a future claim. The order matters: clearing ptr before active
// guarantees a scan that observes active == false also sees ptr ==
// nil (or a value from whoever claims it next), never a stale
// published pointer paired with a "free" flag.
func (s *slot) release() {
	s.ptr.Store(nil)
	s.active.Store(false)
}

// load reads the currently published pointer under acquire ordering.
// Used by a reclamation scan to build the set of protected addresses;
// active is not consulted here — a released slot always reads back
// nil, so the scan doesn't need to check it separately.
func (s *slot) load() *byte {
	return s.ptr.Load()
}
