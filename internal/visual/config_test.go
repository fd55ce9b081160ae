package visual

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfiguration() *Configuration {
	return &Configuration{
		APIKey:    "test-key",
		ServerURL: "http://localhost:9999",
		Batch:     NewBatch("unit tests"),
	}
}

func TestTargetsOrderAndShape(t *testing.T) {
	cfg := testConfiguration()
	cfg.AddBrowser(800, 600, "chrome")
	cfg.AddBrowser(1600, 1200, "firefox")
	cfg.AddBrowser(1024, 768, "safari")
	cfg.AddDeviceEmulation("Pixel 2", Portrait)
	cfg.AddDeviceEmulation("Nexus 10", Landscape)

	targets := cfg.Targets()
	require.Len(t, targets, 5)

	// Browsers first, then devices, insertion order preserved.
	assert.Equal(t, "chrome 800x600", targets[0].String())
	assert.Equal(t, "firefox 1600x1200", targets[1].String())
	assert.Equal(t, "safari 1024x768", targets[2].String())
	assert.Equal(t, "Pixel 2 (portrait)", targets[3].String())
	assert.Equal(t, "Nexus 10 (landscape)", targets[4].String())
}

func TestTargetsDeduplicates(t *testing.T) {
	cfg := testConfiguration()
	cfg.AddBrowser(800, 600, "chrome")
	cfg.AddBrowser(800, 600, "chrome")
	cfg.AddDeviceEmulation("Pixel 2", Portrait)
	cfg.AddDeviceEmulation("Pixel 2", Portrait)

	assert.Len(t, cfg.Targets(), 2)
}

func TestTargetsRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("N distinct browsers and M distinct devices yield N+M targets in order",
		prop.ForAll(func(n, m int) bool {
			cfg := testConfiguration()
			for i := 0; i < n; i++ {
				cfg.AddBrowser(800+i, 600+i, "chrome")
			}
			for i := 0; i < m; i++ {
				cfg.AddDeviceEmulation(deviceName(i), Portrait)
			}

			targets := cfg.Targets()
			if len(targets) != n+m {
				return false
			}
			for i := 0; i < n; i++ {
				if targets[i].Width != 800+i {
					return false
				}
			}
			for i := 0; i < m; i++ {
				if targets[n+i].Kind != deviceName(i) {
					return false
				}
			}
			return true
		}, gen.IntRange(0, 10), gen.IntRange(0, 10)))

	properties.TestingRun(t)
}

func deviceName(i int) string {
	return "Device " + string(rune('A'+i))
}

func TestValidate(t *testing.T) {
	cfg := testConfiguration()
	cfg.AddBrowser(800, 600, "chrome")
	assert.NoError(t, cfg.Validate())

	t.Run("empty matrix", func(t *testing.T) {
		bad := testConfiguration()
		assert.Error(t, bad.Validate())
	})

	t.Run("missing server URL", func(t *testing.T) {
		bad := testConfiguration()
		bad.ServerURL = ""
		bad.AddBrowser(800, 600, "chrome")
		assert.Error(t, bad.Validate())
	})

	t.Run("invalid browser target", func(t *testing.T) {
		bad := testConfiguration()
		bad.AddBrowser(0, 600, "chrome")
		assert.Error(t, bad.Validate())
	})

	t.Run("invalid orientation", func(t *testing.T) {
		bad := testConfiguration()
		bad.AddDeviceEmulation("Pixel 2", "sideways")
		assert.Error(t, bad.Validate())
	})

	// Empty API key is allowed here; authentication fails downstream.
	t.Run("empty api key", func(t *testing.T) {
		open := testConfiguration()
		open.APIKey = ""
		open.AddBrowser(800, 600, "chrome")
		assert.NoError(t, open.Validate())
	})
}

func TestNewBatch(t *testing.T) {
	a := NewBatch("suite run")
	b := NewBatch("suite run")

	assert.Equal(t, "suite run", a.Name)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestLoadTargetsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	content := `
browsers:
  - { width: 800, height: 600, kind: Chrome }
  - { width: 1600, height: 1200, kind: firefox }
devices:
  - { name: Pixel 2, orientation: portrait }
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := testConfiguration()
	require.NoError(t, cfg.LoadTargetsFile(path))

	targets := cfg.Targets()
	require.Len(t, targets, 3)
	assert.Equal(t, "chrome", targets[0].Kind, "browser kinds are normalized to lower case")
	assert.Equal(t, "Pixel 2", targets[2].Kind)

	assert.Error(t, cfg.LoadTargetsFile(filepath.Join(t.TempDir(), "missing.yaml")))
}
