package debug

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// BlockProfiler times Process calls against the real-time deadline of a
// block.
type BlockProfiler struct {
	mu         sync.Mutex
	sampleRate float64
	count      uint64
	total      time.Duration
	min        time.Duration
	max        time.Duration
	last       time.Duration
	overruns   uint64
}

// NewBlockProfiler creates a profiler for the given sample rate.
func NewBlockProfiler(sampleRate float64) *BlockProfiler {
	return &BlockProfiler{sampleRate: sampleRate}
}

// Deadline returns how long a block of n samples lasts.
func (p *BlockProfiler) Deadline(n int) time.Duration {
	if p.sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(n) / p.sampleRate * float64(time.Second))
}

// Start begins timing a block of n samples. Call the returned function when
// the block is done.
func (p *BlockProfiler) Start(n int) func() {
	start := time.Now()
	return func() {
		p.Record(n, time.Since(start))
	}
}

// Record adds one measured block.
func (p *BlockProfiler) Record(n int, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.count == 0 || elapsed < p.min {
		p.min = elapsed
	}
	if elapsed > p.max {
		p.max = elapsed
	}
	p.count++
	p.total += elapsed
	p.last = elapsed

	if d := p.Deadline(n); d > 0 && elapsed > d {
		p.overruns++
	}
}

// Stats is a snapshot of the profiler.
type Stats struct {
	Count    uint64
	Average  time.Duration
	Min      time.Duration
	Max      time.Duration
	Last     time.Duration
	Overruns uint64
}

// Stats returns the current statistics.
func (p *BlockProfiler) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Stats{
		Count:    p.count,
		Min:      p.min,
		Max:      p.max,
		Last:     p.last,
		Overruns: p.overruns,
	}
	if p.count > 0 {
		s.Average = p.total / time.Duration(p.count)
	}
	return s
}

// Load returns the average processing time as a percentage of the deadline
// of an n sample block.
func (p *BlockProfiler) Load(n int) float64 {
	d := p.Deadline(n)
	if d == 0 {
		return 0
	}
	return float64(p.Stats().Average) / float64(d) * 100
}

// Report generates a performance report for blocks of n samples.
func (p *BlockProfiler) Report(n int) string {
	s := p.Stats()
	if s.Count == 0 {
		return "No blocks processed"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Blocks:   %d\n", s.Count)
	fmt.Fprintf(&b, "Average:  %v\n", s.Average)
	fmt.Fprintf(&b, "Min:      %v\n", s.Min)
	fmt.Fprintf(&b, "Max:      %v\n", s.Max)
	fmt.Fprintf(&b, "Deadline: %v\n", p.Deadline(n))
	fmt.Fprintf(&b, "Load:     %.2f%%\n", p.Load(n))
	fmt.Fprintf(&b, "Overruns: %d\n", s.Overruns)
	return b.String()
}
