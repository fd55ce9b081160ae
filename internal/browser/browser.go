// Package browser manages the local browser session each test drives.
//
// One Session is opened per test and closed on every exit path. All element
// operations apply the session's implicit wait, mirroring a 10-second
// implicit-wait policy: lookups block until the element exists or the wait
// window elapses.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultImplicitWait is applied to element lookups when Options does not
// override it.
const DefaultImplicitWait = 10 * time.Second

// ErrSessionStart wraps failures to launch or connect to the local browser,
// e.g. a missing or version-mismatched binary.
var ErrSessionStart = errors.New("browser session start failed")

// ErrTimeout marks an element wait that expired before a match appeared.
var ErrTimeout = errors.New("element wait timed out")

// Options configures a browser session.
type Options struct {
	// Headless runs the browser without a window. Use headless mode in CI,
	// headed mode for local debugging.
	Headless bool

	// Browser selects the local browser kind: "chrome" (default) or
	// "firefox". Chrome is resolved (and downloaded if needed) by the
	// launcher; firefox must be installed and reachable on PATH.
	Browser string

	// ControlURL connects to an already-running browser over remote
	// devtools instead of launching one. Used with the containerized
	// browser in E2E runs.
	ControlURL string

	// ImplicitWait bounds element lookups. Zero means DefaultImplicitWait.
	ImplicitWait time.Duration
}

// Session is one exclusive browser-automation connection.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	wait    time.Duration
}

// Open starts a browser and returns a connected session.
//
// Callers own the session exclusively and must Close it exactly once,
// typically with defer:
//
//	session, err := browser.Open(browser.Options{Headless: true})
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer session.Close()
func Open(opts Options) (*Session, error) {
	wait := opts.ImplicitWait
	if wait == 0 {
		wait = DefaultImplicitWait
	}

	controlURL := opts.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(opts.Headless)

		if bin, err := binaryFor(opts.Browser); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSessionStart, err)
		} else if bin != "" {
			l = l.Bin(bin)
		}

		url, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to launch %s: %v", ErrSessionStart, kindOrDefault(opts.Browser), err)
		}
		controlURL = url
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("%w: failed to connect: %v", ErrSessionStart, err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("%w: failed to open page: %v", ErrSessionStart, err)
	}

	return &Session{
		browser: b,
		page:    page,
		wait:    wait,
	}, nil
}

// binaryFor resolves a browser kind to an explicit binary path. An empty
// path means the launcher picks (and may download) its managed Chromium.
func binaryFor(kind string) (string, error) {
	switch strings.ToLower(kindOrDefault(kind)) {
	case "chrome", "chromium":
		return "", nil
	case "firefox":
		path, err := exec.LookPath("firefox")
		if err != nil {
			return "", fmt.Errorf("firefox not found on PATH: %w", err)
		}
		return path, nil
	default:
		return "", fmt.Errorf("unsupported browser kind %q", kind)
	}
}

func kindOrDefault(kind string) string {
	if kind == "" {
		return "chrome"
	}
	return kind
}

// SetViewport resizes the page viewport, used to pin the baseline size for
// visual checkpoints.
func (s *Session) SetViewport(width, height int) error {
	err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to set viewport %dx%d: %w", width, height, err)
	}
	return nil
}

// Navigate loads the URL and waits for the page load to finish.
func (s *Session) Navigate(url string) error {
	if err := s.page.Timeout(s.wait).Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := s.page.Timeout(s.wait).WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}
	return nil
}

// Fill types text into the element matching the CSS selector, replacing
// any existing value.
func (s *Session) Fill(selector, value string) error {
	el, err := s.page.Timeout(s.wait).Element(selector)
	if err != nil {
		return fmt.Errorf("failed to find element %s: %w", selector, err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("failed to select text in %s: %w", selector, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("failed to input text into %s: %w", selector, err)
	}
	return nil
}

// Click clicks the element matching the CSS selector.
func (s *Session) Click(selector string) error {
	el, err := s.page.Timeout(s.wait).Element(selector)
	if err != nil {
		return fmt.Errorf("failed to find element %s: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click element %s: %w", selector, err)
	}
	return nil
}

// Text returns the text content of the first element matching the selector.
func (s *Session) Text(selector string) (string, error) {
	el, err := s.page.Timeout(s.wait).Element(selector)
	if err != nil {
		return "", fmt.Errorf("failed to find element %s: %w", selector, err)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("failed to get text from %s: %w", selector, err)
	}
	return text, nil
}

// Texts returns the text of every element matching the selector, in DOM
// order. It waits for at least one match first.
func (s *Session) Texts(selector string) ([]string, error) {
	if _, err := s.page.Timeout(s.wait).Element(selector); err != nil {
		return nil, fmt.Errorf("failed to find element %s: %w", selector, err)
	}

	els, err := s.page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to list elements %s: %w", selector, err)
	}

	texts := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			return nil, fmt.Errorf("failed to get text from %s: %w", selector, err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// WaitAppearance blocks until at least one element matching the selector
// is visible, bounded by the given timeout rather than the implicit wait.
// An expired wait returns an error matching ErrTimeout.
func (s *Session) WaitAppearance(selector string, timeout time.Duration) error {
	el, err := s.page.Timeout(timeout).Element(selector)
	if err != nil {
		return waitErr(selector, timeout, err)
	}
	if err := el.Timeout(timeout).WaitVisible(); err != nil {
		return waitErr(selector, timeout, err)
	}
	return nil
}

// waitErr classifies a wait failure: a deadline expiry maps to ErrTimeout,
// anything else keeps the underlying error in the chain.
func waitErr(selector string, timeout time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: element %s did not appear within %v", ErrTimeout, selector, timeout)
	}
	return fmt.Errorf("failed to wait for element %s: %w", selector, err)
}

// HTML returns the full serialized markup of the current page.
func (s *Session) HTML() (string, error) {
	html, err := s.page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to capture page HTML: %w", err)
	}
	return html, nil
}

// URL returns the current page URL.
func (s *Session) URL() (string, error) {
	info, err := s.page.Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	return info.URL, nil
}

// Close releases the browser. Call exactly once per session.
func (s *Session) Close() error {
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		return s.browser.Close()
	}
	return nil
}
