package visual

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrAuthentication marks a missing or rejected API key. It surfaces
// inside the suite-end aggregate, never as a local panic or test failure.
var ErrAuthentication = errors.New("visual grid authentication failed")

// gridClient speaks the narrow HTTP contract the grid service exposes.
type gridClient struct {
	serverURL string
	apiKey    string
	client    *http.Client
}

func newGridClient(cfg *Configuration) *gridClient {
	return &gridClient{
		serverURL: cfg.ServerURL,
		apiKey:    cfg.APIKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
			// One-shot connections; submissions are infrequent and
			// lingering idle connections outlive the suite barrier.
			Transport: &http.Transport{DisableKeepAlives: true},
		},
	}
}

// checkpointSubmission is the wire payload for one checkpoint on one target.
type checkpointSubmission struct {
	BatchName  string       `json:"batchName"`
	AppName    string       `json:"appName"`
	TestName   string       `json:"testName"`
	Checkpoint string       `json:"checkpoint"`
	Policy     MatchPolicy  `json:"policy"`
	Target     RenderTarget `json:"target"`
	Snapshot   Snapshot     `json:"snapshot"`
}

type checkpointResponse struct {
	Status Status `json:"status"`
}

// submitCheckpoint uploads one checkpoint for rendering and comparison on
// one target and returns the grid's verdict.
func (g *gridClient) submitCheckpoint(batch Batch, appName, testName string, cp Checkpoint, target RenderTarget) (Status, error) {
	sub := checkpointSubmission{
		BatchName:  batch.Name,
		AppName:    appName,
		TestName:   testName,
		Checkpoint: cp.Name,
		Policy:     cp.Policy,
		Target:     target,
		Snapshot:   cp.Snapshot,
	}

	url := fmt.Sprintf("%s/api/v1/batches/%s/checkpoints", g.serverURL, batch.ID)
	body, err := g.post(url, sub)
	if err != nil {
		return "", err
	}

	var resp checkpointResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse grid response: %w", err)
	}
	return resp.Status, nil
}

// abortTest tells the grid to discard the test's pending run instead of
// scoring it.
func (g *gridClient) abortTest(batch Batch, appName, testName string) error {
	url := fmt.Sprintf("%s/api/v1/batches/%s/abort", g.serverURL, batch.ID)
	_, err := g.post(url, map[string]string{
		"appName":  appName,
		"testName": testName,
	})
	return err
}

func (g *gridClient) post(url string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach grid: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read grid response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrAuthentication
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("grid returned status %d: %s", resp.StatusCode, respBody)
	}
	return respBody, nil
}
