// Package testenv provides the self-contained environment the workshop
// suites run in: the demo banking site and the mock visual grid started
// in-process, and a browser launched locally or in a container.
//
// Example usage:
//
//	func TestMain(m *testing.M) {
//	    env, err := testenv.Setup(context.Background(), testenv.DefaultConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer env.Teardown()
//
//	    os.Exit(m.Run())
//	}
package testenv

import (
	"context"
	"fmt"
	"os"

	"github.com/acmebank/ui-workshop/internal/browser"
	"github.com/acmebank/ui-workshop/internal/config"
	"github.com/acmebank/ui-workshop/internal/visual/visualtest"
)

// TestEnv holds all resources for the E2E suites.
type TestEnv struct {
	// Config is the suite configuration loaded from the environment.
	Config *config.Config

	// SiteURL is the base URL of the demo site under test.
	SiteURL string

	// GridURL is the visual grid endpoint the suites submit to.
	GridURL string

	// Grid is the in-process mock grid, nil when VISUAL_SERVER_URL points
	// at an external service.
	Grid *visualtest.Server

	// controlURL connects sessions to a containerized browser, when enabled.
	controlURL string

	// cleanupFuncs holds cleanup functions in reverse order.
	cleanupFuncs []func()
}

// EnvConfig holds configuration for the test environment.
type EnvConfig struct {
	// BrowserContainer runs the browser in a Docker container instead of
	// launching it locally. Requires Docker.
	BrowserContainer bool
}

// DefaultConfig returns the default test environment configuration.
//
// Set E2E_BROWSER_CONTAINER=true to drive a containerized browser.
func DefaultConfig() EnvConfig {
	return EnvConfig{
		BrowserContainer: os.Getenv("E2E_BROWSER_CONTAINER") == "true",
	}
}

// Setup initializes the complete E2E environment.
//
// This function:
//  1. Loads suite configuration from the environment
//  2. Starts the demo site on an ephemeral port (unless DEMO_BASE_URL is set)
//  3. Starts the mock visual grid (unless VISUAL_SERVER_URL is set)
//  4. Optionally starts a containerized browser
//
// Always call Teardown() when done, typically with defer.
func Setup(ctx context.Context, envCfg EnvConfig) (*TestEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	env := &TestEnv{
		Config:       cfg,
		cleanupFuncs: make([]func(), 0),
	}

	// Demo site: external or in-process.
	if cfg.DemoBaseURL != "" {
		env.SiteURL = cfg.DemoBaseURL
	} else {
		siteURL, siteCleanup, err := StartSite(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to start demo site: %w", err)
		}
		env.addCleanup(siteCleanup)
		env.SiteURL = siteURL
	}

	// Visual grid: external or in-process mock.
	if cfg.VisualServerURL != "" {
		env.GridURL = cfg.VisualServerURL
	} else {
		grid := visualtest.New(cfg.VisualAPIKey)
		env.GridURL = grid.Start()
		env.Grid = grid
		env.addCleanup(grid.Close)
	}

	if envCfg.BrowserContainer {
		controlURL, containerCleanup, err := StartBrowserContainer(ctx)
		if err != nil {
			env.Teardown()
			return nil, fmt.Errorf("failed to start browser container: %w", err)
		}
		env.addCleanup(containerCleanup)
		env.controlURL = controlURL
	}

	return env, nil
}

// Teardown releases all test resources in reverse order.
func (env *TestEnv) Teardown() {
	for i := len(env.cleanupFuncs) - 1; i >= 0; i-- {
		env.cleanupFuncs[i]()
	}
}

// OpenSession opens a fresh browser session configured for this
// environment. Each test owns its session exclusively and must close it.
func (env *TestEnv) OpenSession() (*browser.Session, error) {
	return browser.Open(browser.Options{
		Headless:   env.Config.Headless,
		Browser:    env.Config.Browser,
		ControlURL: env.controlURL,
	})
}

func (env *TestEnv) addCleanup(fn func()) {
	env.cleanupFuncs = append(env.cleanupFuncs, fn)
}
