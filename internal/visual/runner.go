package visual

import (
	"sync"
)

// DefaultTestConcurrency bounds how many remote comparisons run at once.
const DefaultTestConcurrency = 5

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// TestConcurrency is the number of remote comparisons the grid
	// performs in parallel. Zero means DefaultTestConcurrency.
	TestConcurrency int
}

// Runner tracks every background remote comparison of a suite run.
//
// Create one Runner per suite and share it across tests; each Eyes client
// hands its finalize work to the runner, and GetAllTestResults is the
// single suite-end barrier that waits for all of it.
type Runner struct {
	sem chan struct{}

	wg sync.WaitGroup

	mu        sync.Mutex
	batchName string
	results   []TestResult
}

func NewRunner(opts RunnerOptions) *Runner {
	concurrency := opts.TestConcurrency
	if concurrency <= 0 {
		concurrency = DefaultTestConcurrency
	}
	return &Runner{
		sem: make(chan struct{}, concurrency),
	}
}

// noteBatch records the batch name for the summary. First writer wins;
// all tests in a suite share one batch.
func (r *Runner) noteBatch(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.batchName == "" {
		r.batchName = name
	}
}

// enqueue runs one remote-comparison job in the background, bounded by
// the concurrency limit, and records its results.
func (r *Runner) enqueue(job func() []TestResult) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		r.sem <- struct{}{}
		defer func() { <-r.sem }()

		results := job()

		r.mu.Lock()
		r.results = append(r.results, results...)
		r.mu.Unlock()
	}()
}

// GetAllTestResults returns the suite aggregate. With block set it waits
// for every outstanding remote comparison across all tests to resolve;
// call it exactly once, after the last test finishes.
func (r *Runner) GetAllTestResults(block bool) *Summary {
	if block {
		r.wg.Wait()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	results := make([]TestResult, len(r.results))
	copy(results, r.results)
	return &Summary{
		BatchName: r.batchName,
		Results:   results,
	}
}
