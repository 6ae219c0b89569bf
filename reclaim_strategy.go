package hazard

import (
	"sync/atomic"
	"time"
)

const (
	defaultSyncTimeout          = 2 * time.Second
	defaultRetiredThreshold     = 1000
	defaultHazardSlotMultiplier = 2
)

// ReclaimStrategy decides, after a retire, whether the retiring
// goroutine should run a reclamation scan immediately. It is consulted
// with the current hazard slot count and the approximate retired-list
// length.
type ReclaimStrategy interface {
	shouldReclaim(slotCount, retiredCount int64) bool
}

// eagerStrategy always triggers a scan.
type eagerStrategy struct{}

// Eager returns a ReclaimStrategy that scans after every single
// retire. Useful for tests and for domains that retire rarely enough
// that scan cost doesn't matter.
func Eager() ReclaimStrategy { return eagerStrategy{} }

func (eagerStrategy) shouldReclaim(int64, int64) bool { return true }

// thresholdStrategy scans once the retired count crosses a multiple of
// the hazard slot count (with a floor): a domain with more concurrent
// readers needs more slack before a scan is worth its cost, but a
// domain with very few readers still shouldn't let the retired list
// grow unbounded.
type thresholdStrategy struct {
	threshold  int64
	multiplier int64
}

// Threshold returns a ReclaimStrategy that scans once the retired
// count reaches n, or reaches slotCount*2, whichever is larger.
func Threshold(n int64) ReclaimStrategy {
	return &thresholdStrategy{threshold: n, multiplier: defaultHazardSlotMultiplier}
}

func (t *thresholdStrategy) shouldReclaim(slotCount, retiredCount int64) bool {
	return retiredCount >= t.threshold && retiredCount >= slotCount*t.multiplier
}

// timeCappedStrategy scans when the threshold rule fires, or when a
// sync timeout has elapsed since the last time-triggered scan (the
// first retire always counts as due) — whichever comes
// first. It is the library's default strategy: the threshold rule
// alone can leave a low-traffic domain's retired list unreclaimed
// indefinitely if it never crosses the count threshold, so a wall-clock
// cap bounds how long a retired value can sit around regardless of
// retire volume.
type timeCappedStrategy struct {
	threshold   thresholdStrategy
	lastSyncNs  atomic.Int64
	syncTimeout int64 // nanoseconds
}

// TimeCapped returns a ReclaimStrategy that scans when the retired
// count crosses the threshold rule (retiredThreshold, scaled by
// hazardPointerMultiplier against the slot count) or when syncTimeout
// has elapsed since the last time-triggered scan, whichever happens
// first. Threshold-triggered scans and Domain.Reclaim do not reset the
// timeout.
func TimeCapped(syncTimeout time.Duration, retiredThreshold int64, hazardPointerMultiplier int64) ReclaimStrategy {
	return &timeCappedStrategy{
		threshold:   thresholdStrategy{threshold: retiredThreshold, multiplier: hazardPointerMultiplier},
		syncTimeout: int64(syncTimeout),
	}
}

func defaultReclaimStrategy() ReclaimStrategy {
	return TimeCapped(defaultSyncTimeout, defaultRetiredThreshold, defaultHazardSlotMultiplier)
}

func (t *timeCappedStrategy) shouldReclaim(slotCount, retiredCount int64) bool {
	if t.threshold.shouldReclaim(slotCount, retiredCount) {
		return true
	}
	return t.checkSyncTime()
}

// checkSyncTime reports whether the deadline set by the previous
// successful checkSyncTime call has passed (the first call always
// succeeds), claiming the next scan window via CAS so that only one of
// several racing goroutines triggers it: if it isn't yet time to scan,
// or another goroutine just claimed the scan window, don't scan.
func (t *timeCappedStrategy) checkSyncTime() bool {
	now := time.Now().UnixNano()
	last := t.lastSyncNs.Load()
	if now <= last {
		return false
	}
	return t.lastSyncNs.CompareAndSwap(last, now+t.syncTimeout)
}
