package hazard

import (
	"sync/atomic"
	"unsafe"
)

// Destroyer is implemented by values that need a finalization hook run
// at the moment their hazard-protected owning box considers them
// reclaimed. Plain memory is already handled by the Go garbage
// collector once nothing references a retired value any more; the
// hook exists for everything else a value might hold onto that the GC
// can't reclaim promptly — a pooled buffer to return, a file to close,
// an external refcount to decrement.
//
// Destroy is called at most once per value, after Domain.bulkReclaim
// or Domain.Close has determined no hazard slot protects it any more.
type Destroyer interface {
	Destroy()
}

// AtomicBox is a word-sized cell holding exclusive ownership of a
// heap-allocated T. It can be loaded, stored and swapped atomically
// across goroutines: readers never observe a value after it has been
// reclaimed, and every value stored into (or swapped out of) the box
// is eventually retired to its Domain exactly once.
type AtomicBox[T any] struct {
	ptr    atomic.Pointer[T]
	domain *Domain
}

// NewAtomicBox heap-allocates value and returns a box owning it, tied
// to Global() unless a WithDomain option overrides it.
func NewAtomicBox[T any](value T, opts ...BoxOption) *AtomicBox[T] {
	cfg := boxConfig{domain: Global()}
	for _, opt := range opts {
		opt(&cfg)
	}
	b := &AtomicBox[T]{domain: cfg.domain}
	v := value
	b.ptr.Store(&v)
	return b
}

// Domain returns the Domain this box retires into.
func (b *AtomicBox[T]) Domain() *Domain {
	return b.domain
}

// Load acquires a hazard slot from the box's domain and returns a
// Guard protecting the box's current value for the guard's scope. The
// returned guard's Value is nil if the box is currently empty (never
// true for a box created with NewAtomicBox and never emptied by
// Close, but possible for a zero-value AtomicBox, whose Load takes its
// hazard slot from Global()).
func (b *AtomicBox[T]) Load() *Guard[T] {
	d := b.domain
	if d == nil {
		d = Global()
	}
	s := d.acquireSlot()
	p := loadProtected(&b.ptr, s)
	return &Guard[T]{domain: d, box: b, s: s, ptr: p}
}

// Store heap-allocates value, installs it as the box's current value,
// and retires the previous value onto the box's domain.
func (b *AtomicBox[T]) Store(value T) {
	v := value
	old := b.ptr.Swap(&v)
	b.retireOld(old)
}

// Swap heap-allocates value, installs it as the box's current value,
// and returns the previous value wrapped in a StoreGuard. The caller
// decides whether to Release it (retiring it onto the domain, like
// Store would) or Extract it (taking ownership without retiring,
// e.g. to feed it into SwapGuard on another box in the same domain).
func (b *AtomicBox[T]) Swap(value T) *StoreGuard[T] {
	v := value
	old := b.ptr.Swap(&v)
	return &StoreGuard[T]{domain: b.domain, ptr: old}
}

// SwapGuard installs the value already held by g — a StoreGuard
// obtained from a prior Swap, possibly on a different AtomicBox in the
// same domain — as the box's current value, without a new heap
// allocation, and returns the box's previous value wrapped in a fresh
// StoreGuard. It lets a value move between boxes (e.g. a free-list or
// ring buffer slot) without ever being reallocated.
//
// SwapGuard panics if Debug is true and g's domain does not match the
// box's domain: installing a value retired on one domain's roster into
// a box that retires on another would let it be reclaimed while a
// hazard slot on the wrong domain still thinks it's protecting it.
func (b *AtomicBox[T]) SwapGuard(g *StoreGuard[T]) *StoreGuard[T] {
	if Debug {
		assertf(g.domain == b.domain, "SwapGuard: guard's domain does not match this box's domain")
	}
	newPtr := g.Extract()
	old := b.ptr.Swap(newPtr)
	return &StoreGuard[T]{domain: b.domain, ptr: old}
}

// CompareAndSwap performs a classic compare-and-swap against the
// box's current value: if it still equals expected's protected value,
// it is atomically replaced with value and the previous value is
// returned wrapped in a StoreGuard for the caller to Release or
// Extract. On failure (the box's value had already changed) it
// returns (nil, false) and expected is left untouched — the caller may
// Load again to observe the current value.
//
// CompareAndSwap panics if Debug is true and expected was acquired
// against a different domain than this box's, the same cross-domain
// mixing hazard SwapGuard guards against.
func (b *AtomicBox[T]) CompareAndSwap(expected *Guard[T], value T) (*StoreGuard[T], bool) {
	if Debug {
		assertf(expected.domain == b.domain, "CompareAndSwap: guard's domain does not match this box's domain")
	}
	v := value
	if !b.ptr.CompareAndSwap(expected.ptr, &v) {
		return nil, false
	}
	return &StoreGuard[T]{domain: b.domain, ptr: expected.ptr}, true
}

// CompareAndSwapGuard is CompareAndSwap's SwapGuard-style sibling: the
// replacement value comes from a StoreGuard already obtained elsewhere
// (e.g. from a prior Swap on another box in the same domain) instead
// of a fresh value, avoiding the heap allocation CompareAndSwap always
// pays for. On success it returns the box's previous value wrapped in
// a fresh StoreGuard and true; on failure it returns (nil, false) and
// repl is left untouched — the caller may still Release or Extract it.
//
// CompareAndSwapGuard panics if Debug is true and either guard's
// domain does not match this box's domain.
func (b *AtomicBox[T]) CompareAndSwapGuard(expected *Guard[T], repl *StoreGuard[T]) (*StoreGuard[T], bool) {
	if Debug {
		assertf(expected.domain == b.domain, "CompareAndSwapGuard: expected guard's domain does not match this box's domain")
		assertf(repl.domain == b.domain, "CompareAndSwapGuard: replacement guard's domain does not match this box's domain")
	}
	replPtr := repl.Value()
	if !b.ptr.CompareAndSwap(expected.ptr, replPtr) {
		return nil, false
	}
	repl.Extract()
	return &StoreGuard[T]{domain: b.domain, ptr: expected.ptr}, true
}

// Close retires the box's current value onto its domain unconditionally.
// A box must not be used after Close.
func (b *AtomicBox[T]) Close() {
	old := b.ptr.Swap(nil)
	b.retireOld(old)
}

func (b *AtomicBox[T]) retireOld(old *T) {
	if old == nil {
		return
	}
	b.domain.retire(unsafe.Pointer(old), destroyerDeleter(old))
}

// destroyerDeleter builds the type-erased deleter thunk a retired
// record invokes: if T (or *T) implements Destroyer, its Destroy hook
// runs; the Go garbage collector reclaims the backing memory itself
// once the retired record's own reference to ptr is dropped after the
// deleter returns.
func destroyerDeleter[T any](ptr *T) func() {
	return func() {
		if d, ok := any(ptr).(Destroyer); ok {
			d.Destroy()
		}
	}
}

// StoreGuard is the handle over a value just swapped out of an
// AtomicBox (via Swap or CompareAndSwap): the caller has exclusive
// ownership of it and decides whether to Release it (retiring it onto
// the domain so it is reclaimed once no hazard slot protects it) or
// Extract it to hand ownership elsewhere without retiring.
type StoreGuard[T any] struct {
	domain   *Domain
	ptr      *T
	resolved bool
}

// Value returns the held value. It remains valid until Release is
// called; after Extract, the caller is responsible for its lifetime.
func (g *StoreGuard[T]) Value() *T {
	return g.ptr
}

// Release retires the held value onto its domain. Idempotent: a
// second call (or a call after Extract) is a no-op.
func (g *StoreGuard[T]) Release() {
	if g.resolved || g.ptr == nil {
		return
	}
	g.resolved = true
	g.domain.retire(unsafe.Pointer(g.ptr), destroyerDeleter(g.ptr))
}

// Extract marks the guard resolved without retiring and returns the
// held pointer, transferring responsibility for its eventual
// retirement to the caller (e.g. via SwapGuard, which retires it when
// the box it was fed into later swaps it out).
func (g *StoreGuard[T]) Extract() *T {
	g.resolved = true
	return g.ptr
}
