// Package visualtest provides an in-process stand-in for the remote visual
// grid, implementing only the narrow wire contract the client consumes:
// API-key auth, a baseline store, and a trivial comparison that returns
// new/passed/failed. It is not a reimplementation of a real grid's
// rendering or diff engine.
package visualtest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/acmebank/ui-workshop/internal/visual"
)

// baseline is the accepted reference for one (app, test, checkpoint, target).
type baseline struct {
	htmlHash   string
	layoutHash string
}

// Server is the mock grid.
type Server struct {
	// APIKey, when non-empty, must match the X-API-Key header of every
	// request. Empty accepts anything (development mode).
	APIKey string

	mu        sync.Mutex
	baselines map[string]baseline
	aborted   []string

	httpServer *httptest.Server
}

func New(apiKey string) *Server {
	return &Server{
		APIKey:    apiKey,
		baselines: make(map[string]baseline),
	}
}

// Handler builds the echo instance serving the grid contract.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api := e.Group("/api/v1", s.requireAPIKey)
	api.POST("/batches/:batch/checkpoints", s.handleCheckpoint)
	api.POST("/batches/:batch/abort", s.handleAbort)

	return e
}

// Start serves the mock grid on an ephemeral port and returns its URL.
// Call Close when done.
func (s *Server) Start() string {
	s.httpServer = httptest.NewServer(s.Handler())
	return s.httpServer.URL
}

func (s *Server) Close() {
	if s.httpServer != nil {
		s.httpServer.Close()
	}
}

func (s *Server) requireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.APIKey == "" {
			return next(c)
		}

		key := c.Request().Header.Get("X-API-Key")
		if key == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "missing X-API-Key header",
			})
		}
		if key != s.APIKey {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid API key",
			})
		}
		return next(c)
	}
}

// submission mirrors the client's checkpoint payload.
type submission struct {
	BatchName  string              `json:"batchName"`
	AppName    string              `json:"appName"`
	TestName   string              `json:"testName"`
	Checkpoint string              `json:"checkpoint"`
	Policy     visual.MatchPolicy  `json:"policy"`
	Target     visual.RenderTarget `json:"target"`
	Snapshot   visual.Snapshot     `json:"snapshot"`
}

func (s *Server) handleCheckpoint(c echo.Context) error {
	var sub submission
	if err := c.Bind(&sub); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed submission"})
	}

	key := baselineKey(sub.AppName, sub.TestName, sub.Checkpoint, sub.Target)
	incoming := baseline{
		htmlHash:   hashHTML(sub.Snapshot.HTML),
		layoutHash: sub.Snapshot.LayoutHash,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accepted, ok := s.baselines[key]
	if !ok {
		s.baselines[key] = incoming
		return c.JSON(http.StatusOK, map[string]visual.Status{"status": visual.StatusNew})
	}

	status := visual.StatusFailed
	switch sub.Policy {
	case visual.MatchLayout:
		if accepted.layoutHash == incoming.layoutHash {
			status = visual.StatusPassed
		}
	default:
		if accepted.htmlHash == incoming.htmlHash {
			status = visual.StatusPassed
		}
	}

	return c.JSON(http.StatusOK, map[string]visual.Status{"status": status})
}

func (s *Server) handleAbort(c echo.Context) error {
	var req struct {
		AppName  string `json:"appName"`
		TestName string `json:"testName"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed abort"})
	}

	s.mu.Lock()
	s.aborted = append(s.aborted, req.AppName+"/"+req.TestName)
	s.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]string{"status": "aborted"})
}

// BaselineCount reports how many baselines the grid holds.
func (s *Server) BaselineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.baselines)
}

// Aborted lists tests that aborted instead of closing, as "app/test".
func (s *Server) Aborted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.aborted))
	copy(out, s.aborted)
	return out
}

func baselineKey(app, test, checkpoint string, target visual.RenderTarget) string {
	return fmt.Sprintf("%s|%s|%s|%s", app, test, checkpoint, target)
}

func hashHTML(html string) string {
	sum := sha256.Sum256([]byte(html))
	return hex.EncodeToString(sum[:])
}
