// Package hazard implements safe memory reclamation (SMR) via hazard
// pointers for concurrent, lock-free data structures.
//
// # Overview
//
// A hazard pointer is a single-writer atomic cell a reader uses to
// declare "I am currently looking at this address" before dereferencing
// a pointer it loaded from shared memory. A writer that replaces that
// pointer does not destroy the old value immediately; instead it
// retires it, and the value is only reclaimed once no hazard pointer
// references it any more. This gives lock-free readers the same safety
// a garbage collector gives ordinary Go values, but for resources the
// GC alone can't reclaim promptly: pooled buffers, refcounted mmap
// regions, file descriptors, or anything else pinned by a pointer that
// concurrent readers may still be dereferencing.
//
// # Basic usage
//
//	box := hazard.NewAtomicBox(42)
//	defer box.Close()
//
//	guard := box.Load()
//	fmt.Println(*guard.Value())
//	guard.Release()
//
//	box.Store(7) // retires the old value (42) onto the domain
//
// # Domains
//
// Every AtomicBox is tied to a Domain, the scoping unit for hazard
// slots and retired records. Most programs never construct their own
// Domain and use the process-global one returned by Global(). A
// dedicated Domain with a custom ReclaimStrategy is appropriate when
// precise control over when reclamation scans run is needed:
//
//	d := hazard.NewDomain(hazard.WithReclaimStrategy(hazard.Eager()))
//	defer d.Close() // reclaims everything unconditionally
//
//	box := hazard.NewAtomicBox("hello", hazard.WithDomain(d))
//
// # Concurrency
//
// All Domain, Guard and AtomicBox operations are lock-free: they never
// block, and a scan triggered by a retire runs inline on the retiring
// goroutine. No operation is wait-free — Load may loop while a writer
// churns the source pointer, though in practice it converges in one or
// two iterations.
//
// # Non-goals
//
// This package does not provide wait-freedom, a bound on retired-list
// size, reclamation of hazard slots allocated from the global domain,
// or protection that crosses domain boundaries.
package hazard
