package config

import "runtime"

// EstimateParallelism returns the default number of temperatures evaluated
// concurrently. Each evaluation is CPU-bound and allocation-light, so one
// worker per logical CPU saturates the machine.
func EstimateParallelism() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}
