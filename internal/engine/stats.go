package engine

import "sync/atomic"

// Stats counts lines as they move through the engine.
type Stats struct {
	lines     atomic.Uint64
	matched   atomic.Uint64
	discarded atomic.Uint64
	notified  atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	Lines     uint64 `json:"lines"`
	Matched   uint64 `json:"matched"`
	Discarded uint64 `json:"discarded"`
	Notified  uint64 `json:"notified"`
}

// Snapshot reads all counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Lines:     s.lines.Load(),
		Matched:   s.matched.Load(),
		Discarded: s.discarded.Load(),
		Notified:  s.notified.Load(),
	}
}
