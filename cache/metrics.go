package cache

// NoopMetrics is the default Metrics; every hook is a no-op.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                           {}
func (NoopMetrics) Miss()                          {}
func (NoopMetrics) Evict(EvictReason)              {}
func (NoopMetrics) Size(entries int, weight int64) {}

var _ Metrics = NoopMetrics{}
