package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Strategy names accepted by YOKATLAS_STRATEGY.
const (
	StrategyQuery   = "query"
	StrategyBrowser = "browser"
)

// MaxPageSize is the largest page length the source accepts.
const MaxPageSize = 100

// Config holds all application configuration.
type Config struct {
	Strategy   string
	Categories []string
	Source     SourceConfig
	Browser    BrowserConfig
	Retry      RetryConfig
	Output     OutputConfig
	Log        LogConfig
}

// SourceConfig describes the upstream endpoints.
type SourceConfig struct {
	// QueryURL is the server-side paging endpoint used by the query strategy.
	QueryURL string

	// ListingURL is the HTML listing page; the category is appended as ?p=.
	ListingURL string

	// PageSize is the record count per query page. Capped at MaxPageSize.
	PageSize int // default: 100

	// RequestTimeout bounds one HTTP round trip.
	RequestTimeout time.Duration // default: 30s

	UserAgent string
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is passed to the launcher.
	Proxy string

	// Stealth injects go-rod/stealth into every tab.
	Stealth bool // default: true

	// NavigationTimeout bounds page.Navigate plus the wait for the
	// pagination control.
	NavigationTimeout time.Duration // default: 30s

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// RetryConfig is the bounded retry policy for transient page failures.
type RetryConfig struct {
	MaxAttempts    int           // default: 5
	InitialBackoff time.Duration // default: 500ms
	MaxBackoff     time.Duration // default: 10s
}

// OutputConfig names the files the CLI writes.
type OutputConfig struct {
	Dir      string // default: "output"
	JSONFile string // default: "yok-atlas-veriler.json"
	CSVFile  string // default: "yok-atlas-veriler.csv"
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"

	// File, when set, also writes logs to a rotating file.
	File string
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	cfg := &Config{
		Strategy:   envOr("YOKATLAS_STRATEGY", StrategyQuery),
		Categories: envSliceOr("YOKATLAS_CATEGORIES", []string{"dil", "ea", "söz", "say"}),
		Source: SourceConfig{
			QueryURL:       envOr("YOKATLAS_QUERY_URL", "https://yokatlas.yok.gov.tr/server_side/server_processing-atlas2016-TS-t4.php"),
			ListingURL:     envOr("YOKATLAS_LISTING_URL", "https://yokatlas.yok.gov.tr/tercih-sihirbazi-t4-tablo.php"),
			PageSize:       envIntOr("YOKATLAS_PAGE_SIZE", MaxPageSize),
			RequestTimeout: envDurationOr("YOKATLAS_REQUEST_TIMEOUT", 30*time.Second),
			UserAgent:      envOr("YOKATLAS_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64; rv:135.0) Gecko/20100101 Firefox/135.0"),
		},
		Browser: BrowserConfig{
			Headless:          envBoolOr("YOKATLAS_HEADLESS", true),
			NoSandbox:         envBoolOr("YOKATLAS_NO_SANDBOX", false),
			BrowserBin:        os.Getenv("YOKATLAS_BROWSER_BIN"),
			Proxy:             os.Getenv("YOKATLAS_PROXY"),
			Stealth:           envBoolOr("YOKATLAS_STEALTH", true),
			NavigationTimeout: envDurationOr("YOKATLAS_NAV_TIMEOUT", 30*time.Second),
			BlockedResourceTypes: envSliceOr("YOKATLAS_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Retry: RetryConfig{
			MaxAttempts:    envIntOr("YOKATLAS_MAX_ATTEMPTS", 5),
			InitialBackoff: envDurationOr("YOKATLAS_INITIAL_BACKOFF", 500*time.Millisecond),
			MaxBackoff:     envDurationOr("YOKATLAS_MAX_BACKOFF", 10*time.Second),
		},
		Output: OutputConfig{
			Dir:      envOr("YOKATLAS_OUTPUT_DIR", "output"),
			JSONFile: envOr("YOKATLAS_JSON_FILE", "yok-atlas-veriler.json"),
			CSVFile:  envOr("YOKATLAS_CSV_FILE", "yok-atlas-veriler.csv"),
		},
		Log: LogConfig{
			Level:  envOr("YOKATLAS_LOG_LEVEL", "info"),
			Format: envOr("YOKATLAS_LOG_FORMAT", "json"),
			File:   os.Getenv("YOKATLAS_LOG_FILE"),
		},
	}
	cfg.clamp()
	return cfg
}

// clamp pulls out-of-range values back to usable ones.
func (c *Config) clamp() {
	if c.Source.PageSize <= 0 || c.Source.PageSize > MaxPageSize {
		c.Source.PageSize = MaxPageSize
	}
	if c.Retry.MaxAttempts < 1 {
		c.Retry.MaxAttempts = 1
	}
	if c.Retry.MaxBackoff < c.Retry.InitialBackoff {
		c.Retry.MaxBackoff = c.Retry.InitialBackoff
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
