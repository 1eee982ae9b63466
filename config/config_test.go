package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[engine]
strict = true
max_call_depth = 200
max_jobs_per_drain = 50

[log]
verbosity = 2
file = "jscore.log"

[host]
allow_eval = false
module_root = "src"
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !c.Engine.Strict {
		t.Error("engine strict = false, want true")
	}
	if c.Engine.MaxCallDepth != 200 {
		t.Errorf("max_call_depth = %d, want 200", c.Engine.MaxCallDepth)
	}
	if c.Engine.MaxJobsPerDrain != 50 {
		t.Errorf("max_jobs_per_drain = %d, want 50", c.Engine.MaxJobsPerDrain)
	}
	if c.Log.Verbosity != 2 {
		t.Errorf("log verbosity = %d, want 2", c.Log.Verbosity)
	}
	if c.Host.AllowEval {
		t.Error("allow_eval = true, want false")
	}
	if got := c.ModuleRootPath(); got != filepath.Join(c.Dir, "src") {
		t.Errorf("module root = %q, want %q", got, filepath.Join(c.Dir, "src"))
	}
	if got := c.LogFile(); got == nil || *got != filepath.Join(c.Dir, "jscore.log") {
		t.Errorf("log file = %v", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[engine]
strict = true
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Engine.MaxCallDepth != 4000 {
		t.Errorf("max_call_depth = %d, want default 4000", c.Engine.MaxCallDepth)
	}
	if !c.Host.AllowEval {
		t.Error("allow_eval should default to true")
	}
	if c.LogFile() != nil {
		t.Error("log file should default to stderr")
	}
	if got := c.ModuleRootPath(); got != c.Dir {
		t.Errorf("module root = %q, want %q", got, c.Dir)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for a missing file")
	}

	dir := t.TempDir()
	writeConfig(t, dir, `[engine`)
	if _, err := Load(dir); err == nil {
		t.Error("expected parse error")
	}

	dir = t.TempDir()
	writeConfig(t, dir, "[engine]\nmax_call_depth = -1\n")
	if _, err := Load(dir); err == nil {
		t.Error("expected validation error for a negative depth")
	}

	dir = t.TempDir()
	writeConfig(t, dir, "[log]\nverbosity = 9\n")
	if _, err := Load(dir); err == nil {
		t.Error("expected validation error for verbosity")
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[engine]\nmax_call_depth = 10\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c == nil {
		t.Fatal("expected to find the config in a parent directory")
	}
	if c.Engine.MaxCallDepth != 10 {
		t.Errorf("max_call_depth = %d, want 10", c.Engine.MaxCallDepth)
	}
	abs, _ := filepath.Abs(root)
	if c.Dir != abs {
		t.Errorf("dir = %q, want %q", c.Dir, abs)
	}
}

func TestFindAndLoadNone(t *testing.T) {
	c, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	// A jscore.toml above the temp directory would be found; none is
	// expected in a clean environment.
	if c != nil && c.Dir == "" {
		t.Error("a loaded config must record its directory")
	}
}
