package analyzer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anime-shed/vegindex-go/pkg/rgbvi"
)

// indexAnalyzer implements IndexAnalyzer, fanning formulas out over a worker pool
type indexAnalyzer struct {
	workerPool *WorkerPool
	calculator StatisticsCalculator
}

// NewIndexAnalyzer creates an analyzer with one worker per CPU
func NewIndexAnalyzer() (IndexAnalyzer, error) {
	return NewIndexAnalyzerWithWorkers(0)
}

// NewIndexAnalyzerWithWorkers creates an analyzer with the given pool size.
// Zero or less means one worker per CPU.
func NewIndexAnalyzerWithWorkers(workers int) (IndexAnalyzer, error) {
	workerPool := NewWorkerPool(workers)
	workerPool.Start()

	return &indexAnalyzer{
		workerPool: workerPool,
		calculator: NewStatisticsCalculator(),
	}, nil
}

func lookupAll(names []string) ([]rgbvi.Formula, error) {
	formulas := make([]rgbvi.Formula, len(names))
	for i, name := range names {
		f, ok := rgbvi.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", rgbvi.ErrUnknownFormula, name)
		}
		formulas[i] = f
	}
	return formulas, nil
}

// Analyze computes every selected formula concurrently and summarises each
// one. Statistics keep the order of options.Formulas. The first failing
// formula, in that order, determines the returned error.
func (a *indexAnalyzer) Analyze(ctx context.Context, img *rgbvi.Image, options AnalysisOptions) (*IndexReport, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	formulas, err := lookupAll(options.formulas())
	if err != nil {
		return nil, err
	}

	stats := make([]IndexStatistics, len(formulas))
	errs := make([]error, len(formulas))
	coreOpts := options.coreOptions()
	bins := options.bins()

	var wg sync.WaitGroup
	for i, f := range formulas {
		task := func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			res, err := f.Func(img, coreOpts...)
			if err != nil {
				errs[i] = fmt.Errorf("compute %s: %w", f.Name, err)
				return
			}
			stats[i] = a.calculator.Summarize(f, res, options.VegetationThreshold, bins)
		}

		wg.Add(1)
		if !options.UseWorkerPool || !a.workerPool.Submit(task) {
			task()
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	report := &IndexReport{
		Timestamp:         time.Now(),
		ProcessingTimeSec: time.Since(start).Seconds(),
		Threshold:         options.VegetationThreshold,
		Indices:           stats,
	}
	if img != nil {
		report.Width, report.Height = img.Width, img.Height
	}
	return report, nil
}

// Compute runs one formula on the calling goroutine.
func (a *indexAnalyzer) Compute(ctx context.Context, img *rgbvi.Image, formula string, options AnalysisOptions) (*rgbvi.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	formulas, err := lookupAll([]string{formula})
	if err != nil {
		return nil, err
	}
	return formulas[0].Func(img, options.coreOptions()...)
}

// Close releases the worker pool
func (a *indexAnalyzer) Close() error {
	a.workerPool.Close()
	return nil
}
