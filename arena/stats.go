package arena

import "fmt"

// Stats is a snapshot of arena usage.
type Stats struct {
	Reserved    int    // logical reservation size
	Committed   int    // bytes currently committed
	Offset      int    // current bump offset
	Peak        int    // highest offset since creation
	Granularity int    // commit granularity
	Allocs      uint64 // successful allocations
	Commits     uint64 // commit operations
	Resets      uint64 // Reset calls
}

// Utilization returns Offset/Committed, or 0 when nothing is committed.
func (s Stats) Utilization() float64 {
	if s.Committed == 0 {
		return 0
	}
	return float64(s.Offset) / float64(s.Committed)
}

// Stats returns a snapshot of the arena's counters.
func (a *Arena) Stats() Stats {
	return Stats{
		Reserved:    a.reserved,
		Committed:   a.committed,
		Offset:      a.offset,
		Peak:        a.peak,
		Granularity: a.granularity,
		Allocs:      a.allocs,
		Commits:     a.commits,
		Resets:      a.resets,
	}
}

func (a *Arena) String() string {
	return fmt.Sprintf("Arena{reserved=%d committed=%d offset=%d granularity=%d destroyed=%t}",
		a.reserved, a.committed, a.offset, a.granularity, a.destroyed)
}
