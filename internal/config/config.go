package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Site variant values accepted in the DEMO_SITE environment variable.
const (
	SiteOriginal = "original"
	SiteChanged  = "changed"
)

type Config struct {
	// VisualAPIKey authenticates against the visual grid service.
	// An empty key is passed through as-is; authentication fails at the
	// grid, not here.
	VisualAPIKey string

	// Headless controls whether the local browser runs without a window.
	Headless bool

	// DemoSite selects which variant of the demo site to test,
	// "original" or "changed".
	DemoSite string

	// Browser is the local browser kind for the traditional suite,
	// "chrome" or "firefox".
	Browser string

	// VisualServerURL overrides the visual grid endpoint. Used by the
	// E2E environment to point at an in-process grid.
	VisualServerURL string

	// DemoBaseURL overrides the demo site location. Empty means the
	// test environment starts its own in-process site.
	DemoBaseURL string

	// Port is where the standalone demo site binary listens.
	Port string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		VisualAPIKey:    getEnv("VISUAL_API_KEY", ""),
		Headless:        getBoolEnv("HEADLESS", true),
		DemoSite:        getEnv("DEMO_SITE", SiteOriginal),
		Browser:         getEnv("BROWSER", "chrome"),
		VisualServerURL: getEnv("VISUAL_SERVER_URL", ""),
		DemoBaseURL:     getEnv("DEMO_BASE_URL", ""),
		Port:            getEnv("PORT", "8080"),
	}

	return cfg, nil
}

// UseOriginalSite reports whether the original site variant is selected.
// Comparison is case-insensitive; anything other than "original" selects
// the changed variant.
func (c *Config) UseOriginalSite() bool {
	return strings.EqualFold(c.DemoSite, SiteOriginal)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.EqualFold(value, "true")
}
