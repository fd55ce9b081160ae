package visual

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// Eyes client usage errors.
var (
	// ErrNotOpen is returned when Check is called before Open.
	ErrNotOpen = errors.New("eyes session not open")

	// ErrAlreadyOpen is returned on a second Open of the same client.
	ErrAlreadyOpen = errors.New("eyes session already open")
)

// clientState is the lifecycle of one Eyes client:
// unopened -> opened -> closing|aborting. Results resolve only through the
// runner's blocking collection, never synchronously.
type clientState int

const (
	stateUnopened clientState = iota
	stateOpened
	stateClosing
	stateAborting
)

// Eyes is one visual-testing session bound to a browser session and the
// shared suite Configuration. Each test creates its own Eyes after opening
// its browser, and finalizes it exactly once: CloseAsync on success,
// AbortAsync on failure. A second finalize of either kind is a logged no-op.
type Eyes struct {
	runner *Runner
	config *Configuration

	mu          sync.Mutex
	state       clientState
	session     PageSource
	appName     string
	testName    string
	viewport    Size
	checkpoints []Checkpoint
	client      *gridClient
}

func NewEyes(runner *Runner) *Eyes {
	return &Eyes{runner: runner}
}

// SetConfiguration attaches the shared suite configuration. Call before Open.
func (e *Eyes) SetConfiguration(cfg *Configuration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config = cfg
}

// Open binds the client to an already-open browser session and pins the
// local baseline viewport. All four inputs are required.
func (e *Eyes) Open(session PageSource, appName, testName string, viewport Size) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateUnopened {
		return ErrAlreadyOpen
	}
	if e.config == nil {
		return fmt.Errorf("eyes open: no configuration set")
	}
	if err := e.config.Validate(); err != nil {
		return fmt.Errorf("eyes open: %w", err)
	}

	if err := session.SetViewport(viewport.Width, viewport.Height); err != nil {
		return fmt.Errorf("eyes open: %w", err)
	}

	e.session = session
	e.appName = appName
	e.testName = testName
	e.viewport = viewport
	e.client = newGridClient(e.config)
	e.state = stateOpened
	e.runner.noteBatch(e.config.Batch.Name)
	return nil
}

// Check captures a full-page snapshot under the given checkpoint name and
// queues it for remote comparison. The call returns as soon as the local
// capture is done; the comparison outcome resolves later through the
// runner's aggregate.
func (e *Eyes) Check(name string, policy MatchPolicy) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateOpened {
		return fmt.Errorf("check %q: %w", name, ErrNotOpen)
	}
	if policy == "" {
		policy = MatchStrict
	}

	snapshot, err := CaptureSnapshot(e.session, e.viewport)
	if err != nil {
		return fmt.Errorf("check %q: %w", name, err)
	}

	e.checkpoints = append(e.checkpoints, Checkpoint{
		Name:     name,
		Policy:   policy,
		Snapshot: snapshot,
	})
	return nil
}

// CloseAsync finalizes the test: it submits one render-and-compare job per
// matrix target to the runner and returns immediately. Calling it on an
// already-finalized client is a no-op.
func (e *Eyes) CloseAsync() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateOpened {
		log.Printf("eyes: CloseAsync on %s client for %q ignored", e.stateName(), e.testName)
		return
	}
	e.state = stateClosing

	checkpoints := make([]Checkpoint, len(e.checkpoints))
	copy(checkpoints, e.checkpoints)

	batch := e.config.Batch
	appName, testName := e.appName, e.testName
	client := e.client

	for _, target := range e.config.Targets() {
		target := target
		e.runner.enqueue(func() []TestResult {
			return []TestResult{scoreTarget(client, batch, appName, testName, checkpoints, target)}
		})
	}
}

// AbortAsync finalizes a test that failed before completing its steps: the
// grid is told to discard the pending run rather than score it. Aborting an
// already-closed client is a no-op; comparisons already submitted by that
// close still resolve.
func (e *Eyes) AbortAsync() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateOpened {
		if e.state != stateUnopened {
			log.Printf("eyes: AbortAsync on %s client for %q ignored", e.stateName(), e.testName)
		}
		return
	}
	e.state = stateAborting

	batch := e.config.Batch
	appName, testName := e.appName, e.testName
	client := e.client

	e.runner.enqueue(func() []TestResult {
		result := TestResult{
			AppName:  appName,
			TestName: testName,
			Status:   StatusUnresolved,
			Aborted:  true,
		}
		if err := client.abortTest(batch, appName, testName); err != nil {
			result.Err = err
		}
		return []TestResult{result}
	})
}

func (e *Eyes) stateName() string {
	switch e.state {
	case stateUnopened:
		return "unopened"
	case stateOpened:
		return "opened"
	case stateClosing:
		return "closed"
	case stateAborting:
		return "aborted"
	default:
		return "unknown"
	}
}

// scoreTarget submits every checkpoint of a test for one target and folds
// the verdicts into a single per-target result. A submission failure marks
// only this target unresolved; nothing is retried.
func scoreTarget(client *gridClient, batch Batch, appName, testName string, checkpoints []Checkpoint, target RenderTarget) TestResult {
	result := TestResult{
		AppName:  appName,
		TestName: testName,
		Target:   target,
		Status:   StatusPassed,
	}
	if len(checkpoints) == 0 {
		result.Status = StatusUnresolved
		result.Err = fmt.Errorf("no checkpoints captured")
		return result
	}

	for _, cp := range checkpoints {
		status, err := client.submitCheckpoint(batch, appName, testName, cp, target)
		if err != nil {
			result.Status = StatusUnresolved
			result.Err = err
			return result
		}
		result.Status = worseStatus(result.Status, status)
	}
	return result
}

// worseStatus folds checkpoint verdicts: failed dominates, then new,
// then passed.
func worseStatus(a, b Status) Status {
	rank := map[Status]int{StatusPassed: 0, StatusNew: 1, StatusFailed: 2, StatusUnresolved: 3}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
