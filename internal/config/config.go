// Package config loads indexer settings from the project root. A .lsi.kdl
// file is preferred; .lsi.toml is accepted as a fallback; missing files mean
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the resolved indexer configuration.
type Config struct {
	Project Project `toml:"project"`
	Index   Index   `toml:"index"`
	Search  Search  `toml:"search"`
	Watch   Watch   `toml:"watch"`
}

type Project struct {
	// Root is the directory scanned and watched. Relative roots in a config
	// file resolve against the file's directory.
	Root string `toml:"root"`
	Name string `toml:"name"`
}

type Index struct {
	// Include restricts indexing to matching paths; empty means every file
	// with a supported extension. Exclude wins over Include.
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
	// URIScheme is stamped into every symbol location, default "file".
	URIScheme string `toml:"uri_scheme"`
	// MaxFileSize skips files larger than this many bytes.
	MaxFileSize int64 `toml:"max_file_size"`
	// MaxParallel caps concurrent parses during a scan.
	MaxParallel int `toml:"max_parallel"`
}

type Search struct {
	// MaxResults caps fuzzy query results; zero means unlimited.
	MaxResults int `toml:"max_results"`
}

type Watch struct {
	Enabled bool `toml:"enabled"`
	// DebounceMs coalesces change bursts before reindexing a file.
	DebounceMs int `toml:"debounce_ms"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Project: Project{Root: "."},
		Index: Index{
			Exclude: []string{
				"**/.git/**",
				"**/node_modules/**",
				"**/vendor/**",
				"**/dist/**",
				"**/build/**",
				"**/target/**",
			},
			URIScheme:   "file",
			MaxFileSize: 2 * 1024 * 1024,
			MaxParallel: 4,
		},
		Search: Search{MaxResults: 100},
		Watch:  Watch{Enabled: false, DebounceMs: 200},
	}
}

// Load resolves the configuration for projectRoot: .lsi.kdl first, then
// .lsi.toml, then defaults. The returned Root is always absolute.
func Load(projectRoot string) (*Config, error) {
	cfg, err := LoadKDL(projectRoot)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg, err = LoadTOML(projectRoot)
		if err != nil {
			return nil, err
		}
	}
	if cfg == nil {
		cfg = Default()
		cfg.Project.Root = projectRoot
	}
	cfg.resolveRoot(projectRoot)
	return cfg, nil
}

// LoadTOML loads .lsi.toml from projectRoot, returning (nil, nil) when the
// file does not exist.
func LoadTOML(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, ".lsi.toml")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) resolveRoot(projectRoot string) {
	root := c.Project.Root
	if root == "" || root == "." {
		root = projectRoot
	} else if !filepath.IsAbs(root) {
		root = filepath.Join(projectRoot, root)
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	c.Project.Root = filepath.Clean(root)
}
