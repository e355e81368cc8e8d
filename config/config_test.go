package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"brandpulse/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "brands.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[collector]
hosts = ["wss://jetstream1.us-east.bsky.network/subscribe"]
compress = true
workers = 2

[[brands]]
id = "tesla"
display_name = "Tesla"
query = ["tesla", "model 3"]
exclude = ["nikola tesla"]

[[brands]]
id = "starbucks"
display_name = "Starbucks"
query = ["starbucks"]
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.Brands, 2)
	assert.Equal(t, "tesla", cfg.Brands[0].Id)
	assert.Equal(t, "Tesla", cfg.Brands[0].DisplayName)
	assert.Equal(t, []string{"tesla", "model 3"}, cfg.Brands[0].Query)
	assert.Equal(t, []string{"nikola tesla"}, cfg.Brands[0].Exclude)

	assert.True(t, cfg.Collector.Compress)
	assert.Equal(t, 2, cfg.Collector.Workers)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig("/nonexistent/brands.toml")
	assert.Error(t, err)
}

func TestLoadConfigDuplicateBrand(t *testing.T) {
	path := writeConfig(t, `
[[brands]]
id = "tesla"
query = ["tesla"]

[[brands]]
id = "tesla"
query = ["tesla"]
`)

	_, err := config.LoadConfig(path)
	assert.ErrorContains(t, err, "duplicate brand id")
}

func TestLoadConfigBrandWithoutQuery(t *testing.T) {
	path := writeConfig(t, `
[[brands]]
id = "tesla"
`)

	_, err := config.LoadConfig(path)
	assert.ErrorContains(t, err, "no query terms")
}
