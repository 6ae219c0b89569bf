package hazard_test

import (
	"fmt"
	"testing"

	"github.com/johnabell/atombox"
)

// BenchmarkWorstCaseScenarios probes situations where the hazard
// pointer scheme's overhead is most visible: scan cost growing with
// the size of the roster or the retired list, and roster growth under
// high slot churn.
func BenchmarkWorstCaseScenarios(b *testing.B) {
	// Scenario 1: a scan's cost grows with the number of live hazard
	// slots, since every scan snapshots the whole roster regardless of
	// how many retired records it is checking.
	b.Run("ScanCostByRosterSize", func(b *testing.B) {
		rosterSizes := []int{1, 16, 256, 4096}
		for _, n := range rosterSizes {
			b.Run(fmt.Sprintf("Slots_%d", n), func(b *testing.B) {
				d := hazard.NewDomain()
				defer d.Close()
				box := hazard.NewAtomicBox(0, hazard.WithDomain(d))

				guards := make([]*hazard.Guard[int], n)
				for i := range guards {
					guards[i] = box.Load()
				}
				defer func() {
					for _, g := range guards {
						g.Release()
					}
				}()

				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					box.Store(i)
					d.Reclaim()
				}
			})
		}
	})

	// Scenario 2: a single perpetually-held guard pins exactly the one
	// value it protects in the retired list forever (a one-object
	// leak), even under an Eager strategy that reclaims every other
	// retired record on every Store.
	b.Run("HeldGuardPinsItsValueForever", func(b *testing.B) {
		d := hazard.NewDomain(hazard.WithReclaimStrategy(hazard.Eager()))
		defer d.Close()
		box := hazard.NewAtomicBox(0, hazard.WithDomain(d))

		holder := box.Load() // never released during the loop
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			box.Store(i)
		}
		b.StopTimer()
		holder.Release()
		d.Reclaim()
	})

	// Scenario 3: a single-shard domain under high-throughput retire
	// traffic from many goroutines serializes every retire onto one
	// retired list, against the same traffic spread over several
	// shards.
	b.Run("SingleShardContentionUnderConcurrentRetire", func(b *testing.B) {
		shardCounts := []int{1, 4, 16}
		for _, shards := range shardCounts {
			b.Run(fmt.Sprintf("Shards_%d", shards), func(b *testing.B) {
				d := hazard.NewDomain(hazard.WithShards(shards), hazard.WithReclaimStrategy(hazard.Threshold(1 << 30)))
				defer d.Close()
				box := hazard.NewAtomicBox(0, hazard.WithDomain(d))

				b.ResetTimer()
				b.RunParallel(func(pb *testing.PB) {
					for pb.Next() {
						box.Store(0)
					}
				})
			})
		}
	})

	// Scenario 4: rapid slot acquire/release churn from parallel
	// goroutines, each iteration taking exactly one Load, grows the
	// roster to its historical peak concurrency and never shrinks it.
	b.Run("RosterGrowthUnderChurn", func(b *testing.B) {
		d := hazard.NewDomain()
		defer d.Close()
		box := hazard.NewAtomicBox(0, hazard.WithDomain(d))

		b.ResetTimer()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				g := box.Load()
				g.Release()
			}
		})
		b.StopTimer()
		b.ReportMetric(float64(d.Metrics().HazardSlotCount), "slots")
	})

	// Scenario 5: a scan that finds nothing to reclaim (every record
	// still guarded) still pays the full roster-snapshot cost.
	b.Run("ScanFindsNothingToReclaim", func(b *testing.B) {
		d := hazard.NewDomain()
		defer d.Close()
		box := hazard.NewAtomicBox(0, hazard.WithDomain(d))
		g := box.Load()
		defer g.Release()

		box.Store(1) // retires the still-guarded value 0

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			d.Reclaim()
		}
	})
}
