package rgbvi

import (
	"runtime"
	"sync"
)

// forStrips calls fn over contiguous pixel ranges [start, end). Large images
// are cut into horizontal strips processed concurrently; fn must only write
// to indices inside its own range. The counts returned by fn are summed.
func forStrips(height, width int, s settings, fn func(start, end int) int) int {
	total := height * width
	if s.parallelThreshold <= 0 || total < s.parallelThreshold {
		return fn(0, total)
	}

	numWorkers := runtime.NumCPU()
	if height < numWorkers {
		numWorkers = height
	}
	if numWorkers <= 1 {
		return fn(0, total)
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	results := make(chan int, numWorkers)
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		startY := i * rowsPerWorker
		if startY >= height {
			break
		}
		endY := startY + rowsPerWorker
		if endY > height {
			endY = height
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			results <- fn(start, end)
		}(startY*width, endY*width)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	sum := 0
	for count := range results {
		sum += count
	}
	return sum
}
