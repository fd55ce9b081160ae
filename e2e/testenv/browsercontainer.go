package testenv

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// browserImage is the headless Chrome image used when the suite drives a
// containerized browser.
const browserImage = "chromedp/headless-shell:latest"

// StartBrowserContainer spins up an ephemeral headless-Chrome container
// and resolves its remote devtools URL for sessions to connect to.
//
// Returns the control URL and a cleanup function. Always call the cleanup
// function when done, typically with defer:
//
//	controlURL, cleanup, err := StartBrowserContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer cleanup()
func StartBrowserContainer(ctx context.Context) (string, func(), error) {
	req := testcontainers.ContainerRequest{
		Image:        browserImage,
		ExposedPorts: []string{"9222/tcp"},
		WaitingFor: wait.ForListeningPort("9222/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to start browser container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return "", nil, fmt.Errorf("failed to get container host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, "9222")
	if err != nil {
		_ = container.Terminate(ctx)
		return "", nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	// Resolve the devtools websocket URL from the HTTP endpoint.
	controlURL, err := launcher.ResolveURL(fmt.Sprintf("%s:%s", host, mappedPort.Port()))
	if err != nil {
		_ = container.Terminate(ctx)
		return "", nil, fmt.Errorf("failed to resolve devtools URL: %w", err)
	}

	cleanup := func() {
		_ = container.Terminate(context.Background())
	}

	return controlURL, cleanup, nil
}
