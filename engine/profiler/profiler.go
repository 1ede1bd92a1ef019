// Package profiler measures the stages of a pack run: wall time, heap allocation and
// garbage collections between consecutive marks.
package profiler

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
)

// Sample is the cost of one stage.
type Sample struct {
	Stage      string
	Elapsed    time.Duration
	AllocBytes uint64
	GCCount    uint32
	MaxPause   time.Duration
	HeapBytes  uint64
}

// Profiler tracks allocation and GC statistics between stage marks.
// Each call to Mark closes the running stage and logs its sample.
type Profiler struct {
	logger         *log.Logger
	lastTime       time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	samples        []Sample
}

// NewProfiler creates a new Profiler and starts the first stage.
//
// Parameters:
//   - logger: receives one debug line per stage; nil discards output
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *log.Logger) *Profiler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	p := &Profiler{
		logger:   logger,
		memStats: runtime.MemStats{},
	}
	p.Reset()
	return p
}

// Reset drops recorded samples and starts a new stage from now.
func (p *Profiler) Reset() {
	runtime.ReadMemStats(&p.memStats)
	p.lastTime = time.Now()
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.samples = nil
}

// Mark ends the running stage under the given name and starts the next one.
//
// Parameters:
//   - stage: the name of the stage that just finished
//
// Returns:
//   - Sample: the cost of the finished stage
func (p *Profiler) Mark(stage string) Sample {
	now := time.Now()
	runtime.ReadMemStats(&p.memStats)

	gcCount := p.memStats.NumGC
	var maxPause uint64
	// PauseNs is a circular buffer of the last 256 GC pauses.
	startIdx := p.lastGCCount
	if gcCount-startIdx > 256 {
		startIdx = gcCount - 256
	}
	for i := startIdx; i < gcCount; i++ {
		if pause := p.memStats.PauseNs[i%256]; pause > maxPause {
			maxPause = pause
		}
	}

	s := Sample{
		Stage:      stage,
		Elapsed:    now.Sub(p.lastTime),
		AllocBytes: p.memStats.TotalAlloc - p.lastTotalAlloc,
		GCCount:    gcCount - p.lastGCCount,
		MaxPause:   time.Duration(maxPause),
		HeapBytes:  p.memStats.HeapAlloc,
	}
	p.samples = append(p.samples, s)

	p.logger.Debug("stage",
		"stage", stage,
		"elapsed", s.Elapsed,
		"alloc_mb", float64(s.AllocBytes)/1024/1024,
		"gc", s.GCCount,
		"max_pause", s.MaxPause,
		"heap_mb", float64(s.HeapBytes)/1024/1024,
	)

	p.lastTime = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return s
}

// Samples returns the stages marked since the last Reset, in order.
//
// Returns:
//   - []Sample: the recorded samples
func (p *Profiler) Samples() []Sample {
	return p.samples
}

// Total sums the recorded samples.
//
// Returns:
//   - Sample: a sample named "total" covering every marked stage
func (p *Profiler) Total() Sample {
	total := Sample{Stage: "total"}
	for _, s := range p.samples {
		total.Elapsed += s.Elapsed
		total.AllocBytes += s.AllocBytes
		total.GCCount += s.GCCount
		total.MaxPause = max(total.MaxPause, s.MaxPause)
		total.HeapBytes = s.HeapBytes
	}
	return total
}
