package tracer

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// SweepResult aggregates one sweep. Results is in emitter order.
type SweepResult struct {
	Total   int
	Hits    int
	Results []Result
}

// Percentage returns hits as a percentage of all rays, 0 for an empty sweep.
func (s SweepResult) Percentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Total) * 100
}

// Sweep traces every ray of the emitter over workers goroutines. Workers
// <= 0 uses one per CPU. The outcome does not depend on scheduling.
func (t *Tracer) Sweep(e Emitter, workers int) SweepResult {
	rays := e.Rays()
	results := make([]Result, len(rays))
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(rays) {
		workers = len(rays)
	}

	var hits int64
	var next int64 = -1
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&next, 1))
				if i >= len(rays) {
					return
				}
				r := t.Trace(rays[i].Origin, rays[i].Direction)
				results[i] = r
				if r.Hit() {
					atomic.AddInt64(&hits, 1)
				}
			}
		}()
	}
	wg.Wait()

	return SweepResult{Total: len(rays), Hits: int(hits), Results: results}
}
