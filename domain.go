package hazard

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// domainIDCounter hands out a runtime-unique ID to every constructed
// Domain, so a Guard or StoreGuard obtained from one domain can be
// cheaply checked against the domain a box retires into under Debug.
var domainIDCounter atomic.Uint64

// Domain is a holder for hazard pointers and retired objects awaiting
// reclamation. It owns a roster of hazard slots, one or more
// (sharded) retired lists, and a ReclaimStrategy deciding when a
// retire triggers an inline scan.
//
// Most programs never construct their own Domain; Global returns a
// process-global one whose hazard slots are never freed — they live as
// long as the process does, which is fine for a singleton but wasteful
// for a short-lived subsystem. A user-constructed Domain reclaims
// every retired record unconditionally when Close is called.
type Domain struct {
	id       uint64
	roster   roster
	shards   []retiredList
	strategy ReclaimStrategy
	scanning atomic.Bool // true while a scan is in flight on this domain
	closed   atomic.Bool

	scansRun      atomic.Int64
	lastReclaimed atomic.Int64
}

// NewDomain constructs a user-owned Domain. Its retired records are
// reclaimed when Close is called; Close does not touch its hazard
// slots, which the garbage collector frees once the Domain itself is
// no longer referenced.
func NewDomain(opts ...DomainOption) *Domain {
	cfg := domainConfig{shardCount: 1, strategy: defaultReclaimStrategy()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.shardCount < 1 {
		cfg.shardCount = 1
	}
	return &Domain{
		id:       domainIDCounter.Add(1),
		shards:   make([]retiredList, cfg.shardCount),
		strategy: cfg.strategy,
	}
}

var (
	globalDomain *Domain
	globalOnce   sync.Once
)

// Global returns the process-global Domain. Its storage duration is
// the program's: hazard slots allocated in it are never freed, even
// if the goroutines that claimed them exit. Construct a dedicated
// Domain instead for anything shorter-lived than the process.
func Global() *Domain {
	globalOnce.Do(func() {
		globalDomain = NewDomain()
	})
	return globalDomain
}

// acquireSlot returns a claimed hazard slot from the domain's roster.
func (d *Domain) acquireSlot() *slot {
	return d.roster.acquire()
}

// releaseSlot returns a claimed slot to the domain for reuse.
func (d *Domain) releaseSlot(s *slot) {
	s.release()
}

// retire places ptr on the retired list to be reclaimed once no
// hazard slot protects it, using an address-derived shard hint when
// the domain is sharded. deleter is invoked exactly once, either by a
// later scan or by Close, never more and never while any hazard slot
// still publishes ptr.
//
// Callers must ensure: no one else retires the same address on this
// domain; ptr was associated with this domain; ptr is not
// dereferenced by the caller again after this call.
func (d *Domain) retire(ptr unsafe.Pointer, deleter func()) {
	d.retireHinted(ptr, deleter, shardHint(0, false))
}

// retireHinted is retire with an explicit shard-selection hint,
// letting related retirements land on the same shard in a sharded
// domain.
func (d *Domain) retireHinted(ptr unsafe.Pointer, deleter func(), hint uint64) {
	if Debug {
		assertNoDoubleRetire(d, ptr)
	}
	rec := &retiredRecord{ptr: ptr, deleter: deleter}
	idx := hint % uint64(len(d.shards))
	count := d.shards[idx].push(rec)
	if d.strategy.shouldReclaim(d.roster.slotCount(), count) {
		d.bulkReclaim()
	}
}

// Reclaim runs a reclamation scan regardless of the domain's
// ReclaimStrategy and returns the number of retired records it freed.
// If another scan is already running on this domain, Reclaim returns 0
// without scanning. Useful under strategies like TimeCapped that otherwise
// only scan on their own schedule, when the caller wants to force a
// scan — e.g. under memory pressure, or to get a clean baseline before
// a benchmark.
func (d *Domain) Reclaim() int {
	return d.bulkReclaim()
}

// bulkReclaim detaches every shard's retired list, snapshots the
// roster, and partitions each detached chain into records to keep
// (still guarded) and records to reclaim (not guarded). It is
// non-reentrant per domain (scanning): a retire that arrives while a
// scan is already running on this domain simply enqueues onto the
// (fresh) retired list without triggering a nested scan.
func (d *Domain) bulkReclaim() int {
	if !d.scanning.CompareAndSwap(false, true) {
		return 0
	}
	defer d.scanning.Store(false)

	type detachedChain struct {
		head *retiredRecord
	}
	chains := make([]detachedChain, len(d.shards))
	anyWork := false
	for i := range d.shards {
		h := d.shards[i].detachAll()
		if h != nil {
			anyWork = true
		}
		chains[i].head = h
	}
	if !anyWork {
		return 0
	}

	// Detaching the retired lists before snapshotting the roster is the
	// ordering that makes the scan safe: a value retired after this
	// point can't yet be in the chains we're about to partition, so it
	// doesn't matter whether its publishing slot shows up in the
	// snapshot or not. Go's sync/atomic operations are already
	// sequentially consistent with respect to one another (the Go
	// memory model guarantees a single total order for atomic
	// operations), so the detachAll swap above and the snapshot loads
	// below are correctly ordered without a separate fence.
	guarded := d.roster.snapshot()

	reclaimed := 0
	for i := range chains {
		node := chains[i].head
		var stillHead, stillTail *retiredRecord
		var remaining int64
		for node != nil {
			next := node.next.Load()
			if _, stillGuarded := guarded[(*byte)(node.ptr)]; stillGuarded {
				// Still protected, or was released mid-scan after the
				// snapshot was taken — either way, conservatively keep
				// it for the next scan.
				node.next.Store(stillHead)
				stillHead = node
				if stillTail == nil {
					stillTail = node
				}
				remaining++
			} else {
				node.deleter()
				if Debug {
					clearRetired(d, node.ptr)
				}
				reclaimed++
			}
			node = next
		}
		if stillHead != nil {
			d.shards[i].pushAll(stillHead, stillTail, remaining)
		}
	}

	d.scansRun.Add(1)
	d.lastReclaimed.Store(int64(reclaimed))
	return reclaimed
}

// forceReclaimAll detaches every shard and runs every deleter
// unconditionally, ignoring the hazard snapshot entirely: by the time
// Close calls this, no goroutine may still be using the domain, so
// there is nothing left to protect against.
func (d *Domain) forceReclaimAll() int {
	reclaimed := 0
	for i := range d.shards {
		node := d.shards[i].detachAll()
		for node != nil {
			next := node.next.Load()
			node.deleter()
			if Debug {
				clearRetired(d, node.ptr)
			}
			reclaimed++
			node = next
		}
	}
	return reclaimed
}

// Close performs a final, unconditional reclamation of every retired
// record ever passed to retire on this domain and marks the domain
// closed. Close is idempotent: calling it more than once is a no-op
// after the first call. Retiring onto — or loading from — a closed
// Domain afterward is undefined behavior; the library does not detect
// it.
func (d *Domain) Close() {
	if !d.closed.CompareAndSwap(false, true) {
		return
	}
	d.forceReclaimAll()
	forgetDomain(d)
}
