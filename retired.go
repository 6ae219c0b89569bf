package hazard

import (
	"sync/atomic"
	"unsafe"
)

// retiredRecord pairs a retired object's address with the type-erased
// deleter that reclaims it; invoking the deleter is what "destroys"
// the retired value. The record carries only a raw address and a
// closure, never a strong reference to the retired value itself, so
// the retired list can't form a reference cycle back through a
// deleter into a live AtomicBox.
type retiredRecord struct {
	ptr     unsafe.Pointer
	deleter func()
	next    atomic.Pointer[retiredRecord]
}

// retiredList is a lock-free stack of retired records, pushed to by
// Domain.retire and detached wholesale by a reclamation scan.
type retiredList struct {
	head  atomic.Pointer[retiredRecord]
	count atomic.Int64 // approximate length
}

// push adds rec to the top of the stack and returns the new
// approximate count.
func (l *retiredList) push(rec *retiredRecord) int64 {
	for {
		head := l.head.Load()
		rec.next.Store(head)
		if l.head.CompareAndSwap(head, rec) {
			return l.count.Add(1)
		}
	}
}

// pushAll concatenates an externally-built chain [head..tail] back
// onto the list via a single CAS, used by a scan to return records
// that are still guarded. n is the number of records in the chain.
func (l *retiredList) pushAll(head, tail *retiredRecord, n int64) {
	if head == nil {
		return
	}
	for {
		cur := l.head.Load()
		tail.next.Store(cur)
		if l.head.CompareAndSwap(cur, head) {
			l.count.Add(n)
			return
		}
	}
}

// detachAll atomically swaps the list's head with nil, handing the
// entire chain to the caller for exclusive processing, and resets the
// approximate counter.
func (l *retiredList) detachAll() *retiredRecord {
	head := l.head.Swap(nil)
	l.count.Store(0)
	return head
}

// approxCount returns the approximate number of retired records
// currently on the list.
func (l *retiredList) approxCount() int64 {
	return l.count.Load()
}
