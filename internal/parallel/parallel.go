// Package parallel provides the data-parallel executor behind the CPU backend.
package parallel

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvNumWorkers   = "BORN_NUM_WORKERS"
	EnvMinChunkSize = "BORN_MIN_CHUNK"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.GOMAXPROCS(0)
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
	}
}

// ConfigFromEnv returns DefaultConfig overridden by BORN_NUM_WORKERS and BORN_MIN_CHUNK.
// BORN_NUM_WORKERS=1 disables parallel execution.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv(EnvNumWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("parallel: invalid %s=%q (want a positive integer)", EnvNumWorkers, v)
		}
		cfg.NumWorkers = n
		cfg.Enabled = n > 1
	}

	if v, ok := os.LookupEnv(EnvMinChunkSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("parallel: invalid %s=%q (want a positive integer)", EnvMinChunkSize, v)
		}
		cfg.MinChunkSize = n
	}

	return cfg, nil
}

// chunkSize returns the number of items per chunk for n items, or n when the
// work should run sequentially in a single chunk.
func (cfg Config) chunkSize(n int) int {
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize {
		return n
	}
	return max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)
}

// NumChunks returns how many chunks ForChunks splits n items into.
func (cfg Config) NumChunks(n int) int {
	if n <= 0 {
		return 0
	}
	size := cfg.chunkSize(n)
	return (n + size - 1) / size
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	ForChunks(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}

// ForChunks splits [0, n) into contiguous chunks and executes f(chunk, start, end)
// once per chunk, concurrently when parallelism is enabled. It returns after every
// chunk has finished and reports the number of chunks.
//
// Chunk boundaries depend only on n and cfg, so callers can keep per-chunk state
// (e.g. partial sums) and merge it in chunk order for scheduling-independent results.
func ForChunks(n int, f func(chunk, start, end int), cfg Config) int {
	if n <= 0 {
		return 0
	}

	size := cfg.chunkSize(n)
	if size >= n {
		// Sequential fallback.
		f(0, 0, n)
		return 1
	}

	var wg sync.WaitGroup
	chunk := 0
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		wg.Add(1)
		go func(c, s, e int) {
			defer wg.Done()
			f(c, s, e)
		}(chunk, start, end)
		chunk++
	}
	wg.Wait()

	return chunk
}
