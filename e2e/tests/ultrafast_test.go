//go:build e2e

package tests

import (
	"testing"

	"github.com/acmebank/ui-workshop/e2e/helpers"
	"github.com/acmebank/ui-workshop/internal/flow"
	"github.com/acmebank/ui-workshop/internal/visual"
)

// baselineViewport pins the local browser size for snapshot capture.
var baselineViewport = visual.Size{Width: 1024, Height: 768}

// TestUltrafastLogin runs the same four steps with the visual-snapshot
// strategy: the login and main page checkpoints are captured locally and
// rendered remotely against every target in the matrix. Outcomes resolve
// at the suite-end barrier, not here.
func TestUltrafastLogin(t *testing.T) {
	session, err := env.OpenSession()
	if err != nil {
		t.Fatalf("failed to open browser session: %v", err)
	}
	defer session.Close()

	eyes := visual.NewEyes(visualRunner)
	eyes.SetConfiguration(visualConfig)
	if err := eyes.Open(session, "ACME Bank Web App", t.Name(), baselineViewport); err != nil {
		t.Fatalf("failed to open eyes: %v", err)
	}
	// Abort on any early exit; after a successful CloseAsync this is a
	// no-op, so the happy path is not double-finalized.
	defer eyes.AbortAsync()

	login := flow.NewLoginFlow(session, visual.NewVerifier(eyes), env.SiteURL, env.Config.UseOriginalSite())
	if err := login.Run(); err != nil {
		t.Fatalf("login flow failed: %v", err)
	}

	eyes.CloseAsync()
}

// TestUltrafastDetectsChangedLogin establishes a baseline from the
// original login page and then submits the restyled variant: the login
// checkpoint must come back non-passed. A dedicated runner keeps this
// scenario's collection separate from the shared suite barrier.
func TestUltrafastDetectsChangedLogin(t *testing.T) {
	a := helpers.NewAssert(t)

	runOnce := func(runner *visual.Runner, useOriginal bool) {
		session, err := env.OpenSession()
		if err != nil {
			t.Fatalf("failed to open browser session: %v", err)
		}
		defer session.Close()

		eyes := visual.NewEyes(runner)
		eyes.SetConfiguration(visualConfig)
		if err := eyes.Open(session, "ACME Bank Web App", t.Name(), baselineViewport); err != nil {
			t.Fatalf("failed to open eyes: %v", err)
		}
		defer eyes.AbortAsync()

		login := flow.NewLoginFlow(session, visual.NewVerifier(eyes), env.SiteURL, useOriginal)
		if err := login.LoadLoginPage(); err != nil {
			t.Fatalf("load login page failed: %v", err)
		}
		if err := login.VerifyLoginPage(); err != nil {
			t.Fatalf("login checkpoint failed: %v", err)
		}
		eyes.CloseAsync()
	}

	// First run on the original variant establishes the baselines.
	first := visual.NewRunner(visual.RunnerOptions{TestConcurrency: 5})
	runOnce(first, true)
	summary := first.GetAllTestResults(true)
	a.Equal(len(visualConfig.Targets()), summary.Count(visual.StatusNew),
		"first run should create one baseline per target")

	// Second run on the changed variant must not pass.
	second := visual.NewRunner(visual.RunnerOptions{TestConcurrency: 5})
	runOnce(second, false)
	summary = second.GetAllTestResults(true)
	a.Equal(0, summary.Count(visual.StatusPassed),
		"restyled login page should not match the baseline")
	a.True(summary.Errored())
}
