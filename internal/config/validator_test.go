package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig_Defaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, ValidateConfig(cfg))

	assert.GreaterOrEqual(t, cfg.Resolver.Workers, 1)
	assert.Equal(t, int64(10*1024*1024), cfg.Scan.MaxFileSize)
}

func TestValidateConfig_EmptyRoot(t *testing.T) {
	cfg := Default()
	cfg.Project.Root = ""
	assert.Error(t, ValidateConfig(cfg))
}

func TestValidateConfig_BadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative max file size", func(c *Config) { c.Scan.MaxFileSize = -1 }},
		{"oversized max file size", func(c *Config) { c.Scan.MaxFileSize = 200 * 1024 * 1024 }},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -10 }},
		{"negative workers", func(c *Config) { c.Resolver.Workers = -1 }},
		{"threshold above one", func(c *Config) { c.Resolver.SuggestThreshold = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}

func TestValidateConfig_SmartDefaults(t *testing.T) {
	cfg := Default()
	cfg.Resolver.Workers = 0
	cfg.Watch.DebounceMs = 0
	cfg.Resolver.SuggestThreshold = 0

	require.NoError(t, ValidateConfig(cfg))
	assert.GreaterOrEqual(t, cfg.Resolver.Workers, 1)
	assert.Equal(t, 300, cfg.Watch.DebounceMs)
	assert.Equal(t, 0.85, cfg.Resolver.SuggestThreshold)
}
