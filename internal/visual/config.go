// Package visual implements the visual-snapshot verification strategy:
// a client that captures full-page snapshots and delegates rendering and
// comparison to a remote visual grid service, plus the runner that tracks
// every remote comparison across a suite.
//
// The grid itself (cross-browser rendering, visual diffing, dashboard) is
// an opaque external collaborator reached over HTTP; this package only
// orchestrates calls to it.
package visual

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// MatchPolicy is the comparison strictness for a checkpoint.
type MatchPolicy string

const (
	// MatchStrict reports any visual delta. Default.
	MatchStrict MatchPolicy = "strict"

	// MatchLayout reports only structural deltas; content-only changes
	// inside an unchanged layout are suppressed. Use it for regions with
	// dynamic text such as countdown timers.
	MatchLayout MatchPolicy = "layout"
)

// Orientation of an emulated device.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Size is a viewport in CSS pixels.
type Size struct {
	Width  int `yaml:"width" json:"width" validate:"gt=0"`
	Height int `yaml:"height" json:"height" validate:"gt=0"`
}

// BrowserTarget is one desktop rendering target in the grid.
type BrowserTarget struct {
	Width  int    `yaml:"width" json:"width" validate:"gt=0"`
	Height int    `yaml:"height" json:"height" validate:"gt=0"`
	Kind   string `yaml:"kind" json:"kind" validate:"required"`
}

// DeviceTarget is one emulated mobile rendering target in the grid.
type DeviceTarget struct {
	Name        string      `yaml:"name" json:"name" validate:"required"`
	Orientation Orientation `yaml:"orientation" json:"orientation" validate:"oneof=portrait landscape"`
}

// RenderTarget is the uniform view over browser and device targets used
// for result reporting.
type RenderTarget struct {
	Kind        string      `json:"kind"`
	Width       int         `json:"width,omitempty"`
	Height      int         `json:"height,omitempty"`
	Orientation Orientation `json:"orientation,omitempty"`
}

func (t RenderTarget) String() string {
	if t.Kind == "" {
		return "local"
	}
	if t.Orientation != "" {
		return fmt.Sprintf("%s (%s)", t.Kind, t.Orientation)
	}
	return fmt.Sprintf("%s %dx%d", t.Kind, t.Width, t.Height)
}

// Batch groups every checkpoint produced by one suite run for dashboard
// organization.
type Batch struct {
	ID   string `validate:"required"`
	Name string `validate:"required"`
}

// NewBatch creates a batch with a fresh ID. Use meaningful names; batches
// are displayed on the grid dashboard.
func NewBatch(name string) Batch {
	return Batch{
		ID:   uuid.NewString(),
		Name: name,
	}
}

// Configuration holds the suite-wide visual testing settings. It is built
// once before any test runs and shared read-only by every test; tests must
// not mutate it after the first Eyes opens against it.
type Configuration struct {
	// APIKey authenticates against the grid. An empty or wrong key is not
	// rejected here; authentication fails at suite-end aggregation.
	APIKey string

	// ServerURL is the grid endpoint.
	ServerURL string `validate:"required,url"`

	// Batch groups this suite's checkpoints.
	Batch Batch

	// Browsers and Devices form the target matrix, order preserved.
	Browsers []BrowserTarget `validate:"dive"`
	Devices  []DeviceTarget  `validate:"dive"`
}

var validate = validator.New()

// AddBrowser appends a desktop target to the matrix.
func (c *Configuration) AddBrowser(width, height int, kind string) {
	c.Browsers = append(c.Browsers, BrowserTarget{Width: width, Height: height, Kind: kind})
}

// AddDeviceEmulation appends an emulated device target to the matrix.
func (c *Configuration) AddDeviceEmulation(name string, orientation Orientation) {
	c.Devices = append(c.Devices, DeviceTarget{Name: name, Orientation: orientation})
}

// Targets flattens the matrix into render targets: browsers first, then
// devices, input order preserved, duplicates removed.
func (c *Configuration) Targets() []RenderTarget {
	targets := make([]RenderTarget, 0, len(c.Browsers)+len(c.Devices))
	seen := make(map[RenderTarget]bool)

	for _, b := range c.Browsers {
		t := RenderTarget{Kind: b.Kind, Width: b.Width, Height: b.Height}
		if !seen[t] {
			seen[t] = true
			targets = append(targets, t)
		}
	}
	for _, d := range c.Devices {
		t := RenderTarget{Kind: d.Name, Orientation: d.Orientation}
		if !seen[t] {
			seen[t] = true
			targets = append(targets, t)
		}
	}
	return targets
}

// Validate checks the configuration before the first session opens.
func (c *Configuration) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid visual configuration: %w", err)
	}
	if len(c.Browsers)+len(c.Devices) == 0 {
		return fmt.Errorf("invalid visual configuration: empty target matrix")
	}
	return nil
}

// targetsFile is the YAML shape for LoadTargetsFile.
type targetsFile struct {
	Browsers []BrowserTarget `yaml:"browsers"`
	Devices  []DeviceTarget  `yaml:"devices"`
}

// LoadTargetsFile appends browser and device targets from a YAML file:
//
//	browsers:
//	  - { width: 800, height: 600, kind: chrome }
//	devices:
//	  - { name: Pixel 2, orientation: portrait }
func (c *Configuration) LoadTargetsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read targets file: %w", err)
	}

	var f targetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse targets file %s: %w", path, err)
	}

	for _, b := range f.Browsers {
		b.Kind = strings.ToLower(b.Kind)
		c.Browsers = append(c.Browsers, b)
	}
	c.Devices = append(c.Devices, f.Devices...)
	return nil
}
