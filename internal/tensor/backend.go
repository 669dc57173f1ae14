package tensor

// Backend defines the interface that all compute backends must implement.
// Sampling operators never touch worker scheduling directly: every elementwise
// kernel is handed to the backend as a per-index function.
//
// Implementations:
//   - CPU: goroutine fan-out over chunks of the index space
type Backend interface {
	// Launch runs kernel(i) for every i in [0, n).
	// Work items are independent; the call returns only after all of them
	// have completed, so it doubles as the device-to-host synchronization point.
	Launch(n int, kernel func(i int))

	// LaunchChunks splits [0, n) into contiguous chunks and runs
	// kernel(chunk, start, end) once per chunk. It returns the number of chunks,
	// which is also an exclusive upper bound on every chunk index passed to kernel.
	// Chunk boundaries depend only on n and the backend configuration.
	LaunchChunks(n int, kernel func(chunk, start, end int)) int

	// Add returns a + b for same-shape floating-point tensors.
	// Used by the gradient tape to accumulate gradients.
	Add(a, b *RawTensor) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
