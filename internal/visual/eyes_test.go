package visual_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/acmebank/ui-workshop/internal/visual"
	"github.com/acmebank/ui-workshop/internal/visual/visualtest"
)

// fakePage is a PageSource serving canned markup, standing in for a real
// browser session.
type fakePage struct {
	html string
	url  string
}

func (f *fakePage) SetViewport(width, height int) error { return nil }
func (f *fakePage) HTML() (string, error)               { return f.html, nil }
func (f *fakePage) URL() (string, error)                { return f.url, nil }

const (
	loginHTML        = `<html><body><form><input id="username"><input id="password"><button id="log-in">Log In</button></form></body></html>`
	mainHTML         = `<html><body><div id="closing-banner">Your nearest branch closes in: 2h 15m 30s</div></body></html>`
	mainHTMLLater    = `<html><body><div id="closing-banner">Your nearest branch closes in: 2h 14m 02s</div></body></html>`
	mainHTMLRedesign = `<html><body><header><div id="closing-banner"><span>branch hours changed</span></div></header></body></html>`
)

func newTestSetup(t *testing.T, apiKey, clientKey string) (*visualtest.Server, *visual.Configuration, *visual.Runner) {
	t.Helper()

	grid := visualtest.New(apiKey)
	url := grid.Start()
	t.Cleanup(grid.Close)

	cfg := &visual.Configuration{
		APIKey:    clientKey,
		ServerURL: url,
		Batch:     visual.NewBatch("eyes tests"),
	}
	cfg.AddBrowser(800, 600, "chrome")
	cfg.AddBrowser(1600, 1200, "firefox")
	cfg.AddDeviceEmulation("Pixel 2", visual.Portrait)

	return grid, cfg, visual.NewRunner(visual.RunnerOptions{TestConcurrency: 5})
}

func runTest(t *testing.T, runner *visual.Runner, cfg *visual.Configuration, page visual.PageSource, testName string, policy visual.MatchPolicy) {
	t.Helper()

	eyes := visual.NewEyes(runner)
	eyes.SetConfiguration(cfg)
	require.NoError(t, eyes.Open(page, "ACME Bank Web App", testName, visual.Size{Width: 1024, Height: 768}))
	require.NoError(t, eyes.Check("Main page", policy))
	eyes.CloseAsync()
}

func TestFirstRunEstablishesBaselines(t *testing.T) {
	grid, cfg, runner := newTestSetup(t, "key", "key")
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	runTest(t, runner, cfg, &fakePage{html: mainHTML, url: "http://demo/app"}, "login", visual.MatchStrict)

	summary := runner.GetAllTestResults(true)
	require.Len(t, summary.Results, 3, "one result per target in the matrix")
	assert.Equal(t, 3, summary.Count(visual.StatusNew))
	assert.Equal(t, 3, grid.BaselineCount())
}

func TestStrictReportsContentDeltas(t *testing.T) {
	_, cfg, runner := newTestSetup(t, "key", "key")
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	runTest(t, runner, cfg, &fakePage{html: mainHTML}, "login", visual.MatchStrict)
	runner.GetAllTestResults(true)

	// Same page, countdown ticked: strict policy flags the delta.
	rerun := visual.NewRunner(visual.RunnerOptions{})
	runTest(t, rerun, cfg, &fakePage{html: mainHTMLLater}, "login", visual.MatchStrict)

	summary := rerun.GetAllTestResults(true)
	assert.Equal(t, 3, summary.Count(visual.StatusFailed))
	assert.True(t, summary.Errored())
}

func TestLayoutPolicySuppressesContentDeltas(t *testing.T) {
	_, cfg, runner := newTestSetup(t, "key", "key")
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	runTest(t, runner, cfg, &fakePage{html: mainHTML}, "login", visual.MatchLayout)
	runner.GetAllTestResults(true)

	t.Run("countdown tick passes", func(t *testing.T) {
		rerun := visual.NewRunner(visual.RunnerOptions{})
		runTest(t, rerun, cfg, &fakePage{html: mainHTMLLater}, "login", visual.MatchLayout)
		summary := rerun.GetAllTestResults(true)
		assert.Equal(t, 3, summary.Count(visual.StatusPassed))
	})

	t.Run("structural change still fails", func(t *testing.T) {
		rerun := visual.NewRunner(visual.RunnerOptions{})
		runTest(t, rerun, cfg, &fakePage{html: mainHTMLRedesign}, "login", visual.MatchLayout)
		summary := rerun.GetAllTestResults(true)
		assert.Equal(t, 3, summary.Count(visual.StatusFailed))
	})
}

func TestAuthenticationFailureSurfacesAtCollection(t *testing.T) {
	_, cfg, runner := newTestSetup(t, "server-key", "wrong-key")
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	// Open and Check succeed locally; the bad key only shows up in the
	// aggregate.
	eyes := visual.NewEyes(runner)
	eyes.SetConfiguration(cfg)
	require.NoError(t, eyes.Open(&fakePage{html: loginHTML}, "ACME Bank Web App", "login", visual.Size{Width: 1024, Height: 768}))
	require.NoError(t, eyes.Check("Login page", visual.MatchStrict))
	eyes.CloseAsync()

	summary := runner.GetAllTestResults(true)
	require.Len(t, summary.Results, 3)
	assert.Equal(t, 3, summary.Count(visual.StatusUnresolved))
	for _, r := range summary.Results {
		assert.ErrorIs(t, r.Err, visual.ErrAuthentication)
	}
}

func TestAbortDiscardsInsteadOfScoring(t *testing.T) {
	grid, cfg, runner := newTestSetup(t, "key", "key")
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	eyes := visual.NewEyes(runner)
	eyes.SetConfiguration(cfg)
	require.NoError(t, eyes.Open(&fakePage{html: loginHTML}, "ACME Bank Web App", "login", visual.Size{Width: 1024, Height: 768}))
	require.NoError(t, eyes.Check("Login page", visual.MatchStrict))
	eyes.AbortAsync()

	summary := runner.GetAllTestResults(true)
	require.Len(t, summary.Results, 1)
	assert.True(t, summary.Results[0].Aborted)
	assert.Equal(t, visual.StatusUnresolved, summary.Results[0].Status)
	assert.Equal(t, []string{"ACME Bank Web App/login"}, grid.Aborted())
	assert.Zero(t, grid.BaselineCount(), "aborted runs are not scored")
}

func TestFinalizeIsExactlyOnce(t *testing.T) {
	grid, cfg, runner := newTestSetup(t, "key", "key")
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	eyes := visual.NewEyes(runner)
	eyes.SetConfiguration(cfg)
	require.NoError(t, eyes.Open(&fakePage{html: loginHTML}, "ACME Bank Web App", "login", visual.Size{Width: 1024, Height: 768}))
	require.NoError(t, eyes.Check("Login page", visual.MatchStrict))

	// Close then abort in a cleanup path: the abort is a no-op.
	eyes.CloseAsync()
	eyes.AbortAsync()
	eyes.CloseAsync()

	summary := runner.GetAllTestResults(true)
	assert.Len(t, summary.Results, 3, "only the first finalize produced work")
	assert.Empty(t, grid.Aborted())
}

func TestClientUsageErrors(t *testing.T) {
	_, cfg, runner := newTestSetup(t, "key", "key")

	eyes := visual.NewEyes(runner)
	eyes.SetConfiguration(cfg)

	// Check before Open is a usage error.
	assert.ErrorIs(t, eyes.Check("Login page", visual.MatchStrict), visual.ErrNotOpen)

	require.NoError(t, eyes.Open(&fakePage{html: loginHTML}, "app", "test", visual.Size{Width: 1024, Height: 768}))
	assert.ErrorIs(t, eyes.Open(&fakePage{html: loginHTML}, "app", "test", visual.Size{Width: 1024, Height: 768}), visual.ErrAlreadyOpen)

	eyes.AbortAsync()
	runner.GetAllTestResults(true)
}

func TestOpenRequiresValidConfiguration(t *testing.T) {
	runner := visual.NewRunner(visual.RunnerOptions{})

	eyes := visual.NewEyes(runner)
	assert.Error(t, eyes.Open(&fakePage{}, "app", "test", visual.Size{Width: 1024, Height: 768}), "no configuration set")

	empty := &visual.Configuration{ServerURL: "http://localhost:1", Batch: visual.NewBatch("b")}
	eyes.SetConfiguration(empty)
	assert.Error(t, eyes.Open(&fakePage{}, "app", "test", visual.Size{Width: 1024, Height: 768}), "empty target matrix")
}
