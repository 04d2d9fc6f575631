package config

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// ResolveWorkers turns the configured worker count into the number of E-step
// shards to run. Zero or a negative value selects one worker per physical
// core, falling back to GOMAXPROCS when the core count cannot be detected.
func ResolveWorkers(n int) int {
	if n > 0 {
		return n
	}

	if cores := cpuid.CPU.PhysicalCores; cores > 0 {
		return cores
	}

	return max(runtime.GOMAXPROCS(0), 1)
}
