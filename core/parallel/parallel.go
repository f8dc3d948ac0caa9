// Package parallel provides loop-level parallel helpers used by the system
// assembly phase of the estimators.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides items across the available CPU cores and executes fn
// for each half-open range (start, end). Ranges are disjoint, so fn may write
// to per-index slots of a shared slice without synchronisation.
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so every item is covered.
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold parallelizes only when items exceeds threshold;
// below it the work runs sequentially in the calling goroutine.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// Sum evaluates fn over disjoint ranges in parallel and returns the total of
// the partial sums. Each worker accumulates into a private slot; the merge
// happens once after all workers finish, so fn needs no synchronisation.
func Sum(items int, fn func(start, end int) float64) float64 {
	if items == 0 {
		return 0
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	partials := make([]float64, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(slot, s, e int) {
			defer wg.Done()
			partials[slot] = fn(s, e)
		}(i, start, end)
	}

	wg.Wait()

	var total float64
	for _, p := range partials {
		total += p
	}
	return total
}

// SumWithThreshold runs the reduction sequentially when items is at or below
// threshold, in parallel otherwise.
func SumWithThreshold(items, threshold int, fn func(start, end int) float64) float64 {
	if items <= threshold {
		return fn(0, items)
	}
	return Sum(items, fn)
}
