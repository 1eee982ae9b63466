// Package config handles jscore.toml engine configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file FindAndLoad looks for.
const FileName = "jscore.toml"

// Config represents a jscore.toml file.
type Config struct {
	Engine Engine `toml:"engine"`
	Log    Log    `toml:"log"`
	Host   Host   `toml:"host"`

	// Dir is the directory containing the jscore.toml file (set at load time).
	Dir string `toml:"-"`
}

// Engine configures the agent and the evaluator.
type Engine struct {
	Strict          bool `toml:"strict"`
	MaxCallDepth    int  `toml:"max_call_depth"`
	MaxJobsPerDrain int  `toml:"max_jobs_per_drain"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Host configures the embedding host.
type Host struct {
	AllowEval  bool   `toml:"allow_eval"`
	ModuleRoot string `toml:"module_root"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Engine: Engine{MaxCallDepth: 4000},
		Host:   Host{AllowEval: true, ModuleRoot: "."},
	}
}

// Load parses the jscore.toml file in dir. Keys missing from the file keep
// their Default values.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a jscore.toml file, then
// loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func (c *Config) validate() error {
	switch {
	case c.Engine.MaxCallDepth < 0:
		return fmt.Errorf("engine.max_call_depth must not be negative, got %d", c.Engine.MaxCallDepth)
	case c.Engine.MaxJobsPerDrain < 0:
		return fmt.Errorf("engine.max_jobs_per_drain must not be negative, got %d", c.Engine.MaxJobsPerDrain)
	case c.Log.Verbosity < -4 || c.Log.Verbosity > 2:
		return fmt.Errorf("log.verbosity must be between -4 and 2, got %d", c.Log.Verbosity)
	}
	return nil
}

// ModuleRootPath returns the absolute module root. Relative roots are
// taken relative to the directory of the configuration file.
func (c *Config) ModuleRootPath() string {
	root := c.Host.ModuleRoot
	if filepath.IsAbs(root) || c.Dir == "" {
		return root
	}
	return filepath.Join(c.Dir, root)
}

// LogFile returns the log file path or nil for stderr, in the form
// commonlog.Configure expects.
func (c *Config) LogFile() *string {
	if c.Log.File == "" {
		return nil
	}
	path := c.Log.File
	if !filepath.IsAbs(path) && c.Dir != "" {
		path = filepath.Join(c.Dir, path)
	}
	return &path
}
