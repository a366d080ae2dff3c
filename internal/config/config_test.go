package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plang-lang/plang/internal/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.ModulePaths) != 1 || c.ModulePaths[0] != "." {
		t.Fatalf("expected default module path '.', got %v", c.ModulePaths)
	}
	if c.Limits.MaxRecursion != 10000 || c.Limits.MaxIterations != 25000 {
		t.Fatalf("expected default limits, got %+v", c.Limits)
	}
}

func TestLoadParsesModulePathsAndLimits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plang.yaml")
	src := "module_paths:\n  - ./lib\n  - ./vendor\nlimits:\n  max_recursion: 500\n  max_iterations: 1000\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	c, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.ModulePaths) != 2 || c.ModulePaths[0] != "./lib" || c.ModulePaths[1] != "./vendor" {
		t.Fatalf("unexpected module paths: %v", c.ModulePaths)
	}
	if c.Limits.MaxRecursion != 500 || c.Limits.MaxIterations != 1000 {
		t.Fatalf("unexpected limits: %+v", c.Limits)
	}
	lim := c.EvaluatorLimits()
	if lim.MaxRecursion != 500 || lim.MaxIterations != 1000 {
		t.Fatalf("EvaluatorLimits mismatch: %+v", lim)
	}
}

func TestLoadFillsPartialLimitsWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plang.yaml")
	src := "limits:\n  max_recursion: 42\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	c, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Limits.MaxRecursion != 42 {
		t.Fatalf("expected overridden max_recursion 42, got %d", c.Limits.MaxRecursion)
	}
	if c.Limits.MaxIterations != 25000 {
		t.Fatalf("expected default max_iterations 25000, got %d", c.Limits.MaxIterations)
	}
}
