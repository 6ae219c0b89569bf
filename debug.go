package hazard

import (
	"fmt"
	"sync"
	"testing"
	"unsafe"
)

// Debug enables the extra bookkeeping that turns hazard-pointer misuse
// (a cross-domain load, a double retire) into an immediate panic
// instead of quietly corrupting the retired list or reclaiming a value
// still in use. It is off by default because that bookkeeping costs a
// map lookup per retire; it is forced on automatically when the
// package is exercised under `go test`.
var Debug = false

func init() {
	if testing.Testing() {
		Debug = true
	}
}

// assertf panics with a "hazard: "-prefixed message if cond is false.
// The cross-domain checks call it only when Debug is true; Guard.Reload
// calls it unconditionally.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("hazard: "+format, args...))
	}
}

// retiredSets tracks, per domain and only when Debug is true, the set
// of addresses currently retired but not yet reclaimed, so a repeat
// retire of the same address panics instead of silently double-freeing.
var retiredSets sync.Map // map[*Domain]*sync.Map (unsafe.Pointer -> struct{})

func assertNoDoubleRetire(d *Domain, ptr unsafe.Pointer) {
	setAny, _ := retiredSets.LoadOrStore(d, &sync.Map{})
	set := setAny.(*sync.Map)
	if _, loaded := set.LoadOrStore(ptr, struct{}{}); loaded {
		panic(fmt.Sprintf("hazard: double retire of %p: a value must be retired at most once", ptr))
	}
}

// clearRetired removes ptr from the domain's debug retired-set once
// its deleter has run, so the address may legitimately be reused by a
// later, unrelated allocation and retired again.
func clearRetired(d *Domain, ptr unsafe.Pointer) {
	if setAny, ok := retiredSets.Load(d); ok {
		setAny.(*sync.Map).Delete(ptr)
	}
}

// forgetDomain drops a closed domain's debug bookkeeping so the
// *Domain itself can be garbage collected.
func forgetDomain(d *Domain) {
	retiredSets.Delete(d)
}
