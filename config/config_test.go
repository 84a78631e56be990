package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hub.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, "highs", c.Engine)
	assert.Equal(t, "model.rlp", c.ModelFile)
	assert.Zero(t, c.TimeLimit)
	assert.Equal(t, slog.LevelInfo, c.SlogLevel())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
engine = "bnb"
time_limit = "90s"
relative_gap = 0.01
model_file = ""
node_limit = 500
log_level = "debug"
`)
	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "bnb", c.Engine)
	assert.Equal(t, 90*time.Second, c.TimeLimit)
	assert.Equal(t, 0.01, c.RelativeGap)
	assert.Empty(t, c.ModelFile)
	assert.Equal(t, 500, c.NodeLimit)
	assert.False(t, c.SkipNonNegativity)
	assert.Equal(t, slog.LevelDebug, c.SlogLevel())
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "engine = \"bnb\"\nthreads = 4\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threads")
}

func TestLoadRejectsBadSyntax(t *testing.T) {
	_, err := Load(writeConfig(t, "engine = \n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"engine", func(c *Config) { c.Engine = "cplex" }, "Engine"},
		{"negative time limit", func(c *Config) { c.TimeLimit = -time.Second }, "TimeLimit"},
		{"gap above one", func(c *Config) { c.RelativeGap = 2 }, "RelativeGap"},
		{"negative max size", func(c *Config) { c.MaxSize = -1 }, "MaxSize"},
		{"log level", func(c *Config) { c.LogLevel = "verbose" }, "LogLevel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
