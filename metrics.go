package hazard

// DomainMetrics is a point-in-time snapshot of a Domain's internal
// statistics: a cheap, read-only view for monitoring and tests, not
// itself part of the reclamation protocol.
type DomainMetrics struct {
	HazardSlotCount   int64 // historical peak of concurrently-claimed slots
	RetiredCount      int64 // approximate number of records currently awaiting reclamation, summed across shards
	ShardCount        int   // 1 unless WithShards was used
	ScansRun          int64 // number of reclamation scans performed so far
	LastScanReclaimed int64 // records freed by the most recently completed scan
}

// Metrics returns a snapshot of the domain's statistics.
func (d *Domain) Metrics() DomainMetrics {
	var retired int64
	for i := range d.shards {
		retired += d.shards[i].approxCount()
	}
	return DomainMetrics{
		HazardSlotCount:   d.roster.slotCount(),
		RetiredCount:      retired,
		ShardCount:        len(d.shards),
		ScansRun:          d.scansRun.Load(),
		LastScanReclaimed: d.lastReclaimed.Load(),
	}
}
