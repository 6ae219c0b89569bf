package hazard

// domainConfig accumulates DomainOption settings before a Domain is
// constructed. Using functional options here instead of exposing the
// fields directly keeps NewDomain's signature stable as more knobs get
// added.
type domainConfig struct {
	shardCount int
	strategy   ReclaimStrategy
}

// DomainOption configures a Domain constructed with NewDomain.
type DomainOption func(*domainConfig)

// WithReclaimStrategy overrides the default TimeCapped reclamation
// strategy.
func WithReclaimStrategy(s ReclaimStrategy) DomainOption {
	return func(c *domainConfig) { c.strategy = s }
}

// WithShards enables the "bicephany" sharded retired list with n
// shards, reducing retire() contention at the cost of per-shard
// (rather than global) reclamation thresholds. n <= 1 leaves the
// domain with a single, unsharded retired list.
func WithShards(n int) DomainOption {
	return func(c *domainConfig) { c.shardCount = n }
}

// boxConfig accumulates BoxOption settings before an AtomicBox is
// constructed.
type boxConfig struct {
	domain *Domain
}

// BoxOption configures an AtomicBox constructed with NewAtomicBox.
type BoxOption func(*boxConfig)

// WithDomain ties an AtomicBox to d instead of the process-global
// domain returned by Global().
func WithDomain(d *Domain) BoxOption {
	return func(c *boxConfig) { c.domain = d }
}
