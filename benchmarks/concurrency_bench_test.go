package hazard_test

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/johnabell/atombox"
)

// BenchmarkConcurrencyPatterns measures Load/Store throughput on a
// single AtomicBox sequentially, under parallel readers, and under
// parallel readers with one concurrent writer.
func BenchmarkConcurrencyPatterns(b *testing.B) {
	b.Run("AtomicBox_Sequential", func(b *testing.B) {
		box := hazard.NewAtomicBox(0, hazard.WithDomain(hazard.NewDomain()))
		defer box.Domain().Close()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			box.Store(i)
			g := box.Load()
			g.Release()
		}
	})

	b.Run("AtomicBox_Parallel", func(b *testing.B) {
		box := hazard.NewAtomicBox(0, hazard.WithDomain(hazard.NewDomain()))
		defer box.Domain().Close()

		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				g := box.Load()
				_ = g.Value()
				g.Release()
			}
		})
	})

	b.Run("AtomicBox_ReadHeavy_OneWriter", func(b *testing.B) {
		box := hazard.NewAtomicBox(0, hazard.WithDomain(hazard.NewDomain()))
		defer box.Domain().Close()
		stop := make(chan struct{})
		go func() {
			i := 0
			for {
				select {
				case <-stop:
					return
				default:
					box.Store(i)
					i++
				}
			}
		}()

		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				g := box.Load()
				g.Release()
			}
		})
		b.StopTimer()
		close(stop)
	})
}

// BenchmarkGuardReloadVsFreshLoad compares reusing a guard via Reload
// against acquiring a fresh hazard slot on every read.
func BenchmarkGuardReloadVsFreshLoad(b *testing.B) {
	box := hazard.NewAtomicBox(0, hazard.WithDomain(hazard.NewDomain()))
	defer box.Domain().Close()

	b.Run("FreshLoadEveryIteration", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			g := box.Load()
			g.Release()
		}
	})

	b.Run("ReloadSameGuard", func(b *testing.B) {
		g := box.Load()
		defer g.Release()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			g.Reload()
		}
	})
}

// BenchmarkScalability measures AtomicBox.Load throughput across
// goroutine counts, against a domain with its default (single) shard.
func BenchmarkScalability(b *testing.B) {
	goroutineCounts := []int{1, 2, 4, 8, 16}

	for _, numGoroutines := range goroutineCounts {
		b.Run(fmt.Sprintf("AtomicBox_%dGoroutines", numGoroutines), func(b *testing.B) {
			box := hazard.NewAtomicBox(0, hazard.WithDomain(hazard.NewDomain()))
			defer box.Domain().Close()

			oldProcs := runtime.GOMAXPROCS(numGoroutines)
			defer runtime.GOMAXPROCS(oldProcs)

			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					g := box.Load()
					g.Release()
				}
			})
		})

		b.Run(fmt.Sprintf("Builtin_%dGoroutines", numGoroutines), func(b *testing.B) {
			var v atomic.Int64
			oldProcs := runtime.GOMAXPROCS(numGoroutines)
			defer runtime.GOMAXPROCS(oldProcs)

			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					_ = v.Load()
				}
			})
		})
	}
}
