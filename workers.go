package docassets

import "runtime"

// Worker sizing constants for batch rewrites.
const (
	// MinWorkers ensures at least one worker is available.
	MinWorkers = 1

	// MaxAutoWorkers caps the automatic worker count. Rewriting is I/O bound
	// and concurrent copies into one assets directory contend on its lock.
	MaxAutoWorkers = 8
)

// ResolveWorkers determines how many documents to rewrite concurrently.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	return min(max(runtime.GOMAXPROCS(0), MinWorkers), MaxAutoWorkers)
}
