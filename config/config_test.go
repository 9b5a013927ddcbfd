package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, StrategyQuery, cfg.Strategy)
	assert.Equal(t, []string{"dil", "ea", "söz", "say"}, cfg.Categories)
	assert.Equal(t, 100, cfg.Source.PageSize)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"Image", "Stylesheet", "Font", "Media"}, cfg.Browser.BlockedResourceTypes)
	assert.Equal(t, "output", cfg.Output.Dir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("YOKATLAS_STRATEGY", "browser")
	t.Setenv("YOKATLAS_CATEGORIES", " say , ea ,")
	t.Setenv("YOKATLAS_MAX_ATTEMPTS", "9")
	t.Setenv("YOKATLAS_INITIAL_BACKOFF", "20ms")
	t.Setenv("YOKATLAS_HEADLESS", "false")
	t.Setenv("YOKATLAS_LOG_FILE", "/tmp/yokatlas.log")

	cfg := Load()

	assert.Equal(t, StrategyBrowser, cfg.Strategy)
	assert.Equal(t, []string{"say", "ea"}, cfg.Categories)
	assert.Equal(t, 9, cfg.Retry.MaxAttempts)
	assert.Equal(t, 20*time.Millisecond, cfg.Retry.InitialBackoff)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "/tmp/yokatlas.log", cfg.Log.File)
}

func TestLoad_Clamp(t *testing.T) {
	tests := []struct {
		name     string
		pageSize string
		attempts string
		wantSize int
		wantAtt  int
	}{
		{"oversized page", "500", "3", 100, 3},
		{"zero page", "0", "3", 100, 3},
		{"small page kept", "25", "3", 25, 3},
		{"zero attempts", "100", "0", 100, 1},
		{"garbage falls back", "abc", "xyz", 100, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("YOKATLAS_PAGE_SIZE", tt.pageSize)
			t.Setenv("YOKATLAS_MAX_ATTEMPTS", tt.attempts)

			cfg := Load()
			assert.Equal(t, tt.wantSize, cfg.Source.PageSize)
			assert.Equal(t, tt.wantAtt, cfg.Retry.MaxAttempts)
		})
	}
}
