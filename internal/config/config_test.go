package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "file", cfg.Index.URIScheme)
	assert.Equal(t, 100, cfg.Search.MaxResults)
	assert.NotEmpty(t, cfg.Index.Exclude)
	assert.False(t, cfg.Watch.Enabled)
}

func TestLoadWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Project.Root)
	assert.Equal(t, "file", cfg.Index.URIScheme)
}

func TestLoadKDL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".lsi.kdl", `
project {
    name "demo"
}
index {
    include "src/**/*.cc" "include/**/*.h"
    exclude "src/generated/**"
    uri_scheme "unittest"
    max_parallel 8
}
search {
    max_results 25
}
watch {
    enabled true
    debounce_ms 500
}
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, []string{"src/**/*.cc", "include/**/*.h"}, cfg.Index.Include)
	assert.Equal(t, []string{"src/generated/**"}, cfg.Index.Exclude, "explicit exclude replaces defaults")
	assert.Equal(t, "unittest", cfg.Index.URIScheme)
	assert.Equal(t, 8, cfg.Index.MaxParallel)
	assert.Equal(t, 25, cfg.Search.MaxResults)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 500, cfg.Watch.DebounceMs)
}

func TestLoadKDLPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".lsi.kdl", "search {\n    max_results 7\n}\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Search.MaxResults)
	assert.Equal(t, "file", cfg.Index.URIScheme)
	assert.NotEmpty(t, cfg.Index.Exclude)
}

func TestLoadTOMLFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".lsi.toml", `
[index]
uri_scheme = "test"

[search]
max_results = 10
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Index.URIScheme)
	assert.Equal(t, 10, cfg.Search.MaxResults)
}

func TestKDLPreferredOverTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".lsi.kdl", "index {\n    uri_scheme \"from-kdl\"\n}\n")
	writeFile(t, dir, ".lsi.toml", "[index]\nuri_scheme = \"from-toml\"\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-kdl", cfg.Index.URIScheme)
}

func TestRelativeRootResolvesAgainstConfigDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, dir, ".lsi.kdl", "project {\n    root \"sub\"\n}\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sub"), cfg.Project.Root)
}

func TestLoadRejectsMalformedKDL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".lsi.kdl", "index {\n    unclosed")

	_, err := Load(dir)
	assert.Error(t, err)
}
