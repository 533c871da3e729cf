package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, exit, err := Parse([]string{"scene.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "scene.hcl", cfg.ScenePath)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.TextAsTriangles)
	assert.Equal(t, "automatic", cfg.Decimation)
	assert.Equal(t, 1.0, cfg.DecimationPercentage)
	assert.Empty(t, cfg.PluginPaths)
}

func TestParse_Flags(t *testing.T) {
	cfg, _, err := Parse([]string{
		"-log-level", "DEBUG",
		"-log-format", "json",
		"-plugins", "a.lua,b.lua",
		"-plugins", "more/",
		"-plugin-timeout", "3s",
		"-text-as-triangles=false",
		"-approximate",
		"-decimation", "percentage",
		"-decimation-percentage", "0.25",
		"-write",
		"scene.hcl",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"a.lua", "b.lua", "more/"}, cfg.PluginPaths)
	assert.Equal(t, 3*time.Second, cfg.PluginTimeout)
	assert.False(t, cfg.TextAsTriangles)
	assert.True(t, cfg.Approximate)
	assert.Equal(t, 0.25, cfg.DecimationPercentage)
	assert.True(t, cfg.WriteScene)
}

func TestParse_SettingsFileAndPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenegrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: warn
plugins: [from-file/]
count:
  approximate: true
  text_as_triangles: false
`), 0o600))

	cfg, _, err := Parse([]string{"-config", path, "-log-level", "error", "scene.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.LogLevel, "flags win over the file")
	assert.Equal(t, []string{"from-file/"}, cfg.PluginPaths)
	assert.True(t, cfg.Approximate)
	assert.False(t, cfg.TextAsTriangles)
}

func TestParse_ShouldExit(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {}} {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(args, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_TypesWithoutScene(t *testing.T) {
	cfg, exit, err := Parse([]string{"-types"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, exit)
	assert.True(t, cfg.DumpTypes)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown flag", args: []string{"-nope"}, want: "flag provided but not defined"},
		{name: "log format", args: []string{"-log-format", "xml", "s.hcl"}, want: "invalid log-format"},
		{name: "log level", args: []string{"-log-level", "loud", "s.hcl"}, want: "invalid log-level"},
		{name: "decimation", args: []string{"-decimation", "medium", "s.hcl"}, want: "unknown decimation type"},
		{name: "settings file", args: []string{"-config", "/does/not/exist.yaml", "s.hcl"}, want: "failed to read settings file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}
