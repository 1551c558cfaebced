package engine

import (
	"sync"

	"github.com/san-kum/rigid2d/internal/linalg"
)

// Below this body count the pair loop is cheaper than spawning workers.
const parallelThreshold = 32

// parallelFor runs fn(worker) on n goroutines and waits for all of them.
func parallelFor(n int, fn func(worker int)) {
	var wg sync.WaitGroup
	wg.Add(n)
	for w := 0; w < n; w++ {
		go func(w int) {
			defer wg.Done()
			fn(w)
		}(w)
	}
	wg.Wait()
}

// collideParallel deals rows of the pair triangle to workers round-robin.
// Each worker sums forces into its own buffer; buffers are merged in worker
// order once every worker is done.
func (s *System) collideParallel() {
	n := len(s.bodies)
	workers := s.workers
	buffers := make([][]linalg.Vector, workers)
	stats := make([]Stats, workers)

	parallelFor(workers, func(w int) {
		buf := make([]linalg.Vector, n)
		sink := func(idx int, f linalg.Vector) {
			if buf[idx] == nil {
				buf[idx] = f.Clone()
				return
			}
			buf[idx].Add(f, 1)
		}
		for i := w; i < n; i += workers {
			for j := i + 1; j < n; j++ {
				s.collide(i, j, sink, &stats[w])
			}
		}
		buffers[w] = buf
	})

	for w := 0; w < workers; w++ {
		s.stats.merge(stats[w])
		for idx, f := range buffers[w] {
			if f != nil {
				s.apply(idx, f)
			}
		}
	}
}
