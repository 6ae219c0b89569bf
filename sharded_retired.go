package hazard

import (
	"hash/maphash"
	"unsafe"
)

// shardSeed is process-wide so that shardHint produces a stable
// distribution across calls without needing to thread a seed through
// every Domain.
var shardSeed = maphash.MakeSeed()

// shardHint picks the retired-list shard a retire() call should land
// on in a sharded Domain. If the caller gave an explicit hint
// (hasHint), it's used directly so that related retirements from the
// same logical owner land on the same shard. With no hint, this hashes
// the address of a stack-local byte as a cheap per-goroutine affinity
// source: Go has no goroutine-local storage, but a stack-local byte's
// address is distinct per concurrently-executing goroutine (each
// goroutine has its own stack) and stable for the duration of this
// call, which is all shard selection needs to spread retirements
// across shards without real contention on a shard index.
func shardHint(hint uint64, hasHint bool) uint64 {
	if hasHint {
		return hint
	}
	var probe byte
	addr := uintptr(unsafe.Pointer(&probe))
	var h maphash.Hash
	h.SetSeed(shardSeed)
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(addr >> (8 * i))
	}
	h.Write(buf[:])
	return h.Sum64()
}
