package collector

import "time"

// Sentinel is the reserved value written for a metric whose source failed
// (or was excluded by configuration) on a given tick. Downstream queries
// rely on it being present verbatim rather than the field being dropped.
const Sentinel float64 = -1

// Values is the successful result of a single Source.Sample call.
// Fields carries numeric metrics; Labels carries string-valued metrics
// (e.g. the name of the busiest process).
type Values struct {
	Fields map[string]float64
	Labels map[string]string
}

// Snapshot is the result of one collection cycle. It is built once by the
// Sampler, handed to the publisher, and never mutated afterwards. All
// metrics share the same collection timestamp.
type Snapshot struct {
	Timestamp time.Time
	Fields    map[string]float64
	Labels    map[string]string
}

// NewSnapshot creates an empty snapshot with the supplied time.
func NewSnapshot(ts time.Time) *Snapshot {
	return &Snapshot{
		Timestamp: ts,
		Fields:    make(map[string]float64),
		Labels:    make(map[string]string),
	}
}
