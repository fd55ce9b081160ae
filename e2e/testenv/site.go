package testenv

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/acmebank/ui-workshop/internal/site"
)

// StartSite runs the demo site on an ephemeral port and waits until it
// answers. The cleanup function shuts the server down.
func StartSite(ctx context.Context) (string, func(), error) {
	e, err := site.New()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build demo site: %w", err)
	}

	// Bind the ephemeral port once and hand the live listener to echo, so
	// parallel suites cannot race for a released port.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to find available port: %w", err)
	}
	e.Listener = listener

	url := fmt.Sprintf("http://%s", listener.Addr().String())

	go func() {
		if err := e.Start(""); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Demo site error: %v\n", err)
		}
	}()

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}

	if err := waitForSite(ctx, url, 5*time.Second); err != nil {
		cleanup()
		return "", nil, err
	}

	return url, cleanup, nil
}

// waitForSite polls the site until it responds or the timeout elapses.
func waitForSite(ctx context.Context, url string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 1 * time.Second}

	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/", nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}

	return fmt.Errorf("demo site did not respond within %v", timeout)
}
