package wh

import "sync"

// numChunks returns the number of chunks parallelChunks(n, minChunk, ...)
// will split [0, n) into, so a caller can size a per-chunk results slice
// before calling it.
func numChunks(n, minChunk int) int {
	if n <= minChunk {
		return 1
	}
	workers := n / minChunk
	if workers < 1 {
		workers = 1
	}
	return workers
}

// parallelChunks splits [0, n) into numChunks(n, minChunk) contiguous
// chunks of ceil(n/numChunks) elements each, the last one shorter (it can
// fall below minChunk, and fn is not called for it if it is empty), and
// runs fn(idx, start, end) for each, concurrently, where idx is the
// chunk's position in [0, numChunks(n, minChunk)). Particle
// acceleration and drift are independent per particle (spec §5), so each
// chunk's writes (death flags, positions, velocities) never overlap
// another chunk's. fn is called with a distinct idx per goroutine, so a
// caller can record per-chunk results (e.g. errors) into a pre-sized
// slice indexed by idx without further synchronization.
func parallelChunks(n, minChunk int, fn func(idx, start, end int)) {
	if n <= minChunk {
		fn(0, 0, n)
		return
	}

	workers := numChunks(n, minChunk)
	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		go func(idx, s, e int) {
			defer wg.Done()
			if e > s {
				fn(idx, s, e)
			}
		}(w, start, end)
	}
	wg.Wait()
}
