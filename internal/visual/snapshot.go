package visual

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PageSource is the subset of a browser session the visual client needs.
// browser.Session satisfies it.
type PageSource interface {
	SetViewport(width, height int) error
	HTML() (string, error)
	URL() (string, error)
}

// Snapshot is a full-page UI state capture: the serialized markup plus
// capture metadata. It is not a raster screenshot; the grid re-renders it
// under every target in the matrix.
type Snapshot struct {
	URL        string    `json:"url"`
	HTML       string    `json:"html"`
	LayoutHash string    `json:"layoutHash"`
	Viewport   Size      `json:"viewport"`
	CapturedAt time.Time `json:"capturedAt"`
}

// Checkpoint is one named capture queued for remote comparison.
type Checkpoint struct {
	Name     string
	Policy   MatchPolicy
	Snapshot Snapshot
}

// CaptureSnapshot reads the current page state from the session.
func CaptureSnapshot(page PageSource, viewport Size) (Snapshot, error) {
	html, err := page.HTML()
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot capture: %w", err)
	}
	url, err := page.URL()
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot capture: %w", err)
	}

	return Snapshot{
		URL:        url,
		HTML:       html,
		LayoutHash: LayoutFingerprint(html),
		Viewport:   viewport,
		CapturedAt: time.Now(),
	}, nil
}

var tagPattern = regexp.MustCompile(`<\s*/?\s*([a-zA-Z][a-zA-Z0-9-]*)`)

// LayoutFingerprint hashes the tag skeleton of a page, ignoring text and
// attribute values. Two pages with identical structure but different text
// content share a fingerprint, which is what the layout match policy keys on.
func LayoutFingerprint(html string) string {
	matches := tagPattern.FindAllStringSubmatch(html, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.ToLower(m[1]))
	}

	sum := sha256.Sum256([]byte(strings.Join(tags, ",")))
	return hex.EncodeToString(sum[:])
}
