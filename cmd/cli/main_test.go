package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests share the process-wide type registry, so none of them run in parallel.

func TestRun_PanicRecovery(t *testing.T) {
	dir := t.TempDir()
	scenePath := filepath.Join(dir, "scene.hcl")
	pluginPath := filepath.Join(dir, "broken.lua")
	require.NoError(t, os.WriteFile(scenePath, []byte(`node "Cube" {}`), 0o600))
	require.NoError(t, os.WriteFile(pluginPath, []byte(`scene.register_node{ name = "Cube", parent = "Group" }`), 0o600))

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"-plugins", pluginPath, scenePath})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "application startup panicked")
	assert.Contains(t, err.Error(), "failed to load plugins")
}

func TestRun_ShouldExit(t *testing.T) {
	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"-h"})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_CountsScene(t *testing.T) {
	dir := t.TempDir()
	scenePath := filepath.Join(dir, "scene.hcl")
	require.NoError(t, os.WriteFile(scenePath, []byte(`
node "Separator" "root" {
  node "Cube" "a" {}
  node "Cube" "b" {}
}
`), 0o600))

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"-log-level", "error", scenePath})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "triangles: 24")
}

func TestRun_SceneError(t *testing.T) {
	dir := t.TempDir()
	scenePath := filepath.Join(dir, "scene.hcl")
	require.NoError(t, os.WriteFile(scenePath, []byte(`node "Cube" {`), 0o600))

	err := run(context.Background(), &bytes.Buffer{}, []string{"-log-level", "error", scenePath})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse scene file")
}
