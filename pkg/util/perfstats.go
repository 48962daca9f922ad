package util

import (
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// PerfStats snapshots wall time and allocation counters at a given point, so
// that the cost of a pipeline stage can be reported against it.
type PerfStats struct {
	// Starting time
	startTime time.Time
	// Starting total memory allocation
	startMem uint64
	// Starting number of gc events
	startGc uint32
}

// NewPerfStats creates a new snapshot of the current time and allocation
// state.
func NewPerfStats() *PerfStats {
	var m runtime.MemStats
	//
	runtime.ReadMemStats(&m)
	//
	return &PerfStats{time.Now(), m.TotalAlloc, m.NumGC}
}

// Log reports, at debug level, what elapsed since this snapshot was taken.
func (p *PerfStats) Log(prefix string) {
	var m runtime.MemStats
	//
	runtime.ReadMemStats(&m)
	//
	var (
		alloc    = (m.TotalAlloc - p.startMem) / (1024 * 1024)
		gcs      = m.NumGC - p.startGc
		exectime = time.Since(p.startTime).Seconds()
	)
	//
	log.Debugf("%s took %0.2fs using %v Mb (%v GC events)", prefix, exectime, alloc, gcs)
}
