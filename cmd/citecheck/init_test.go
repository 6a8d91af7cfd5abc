package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matsen/citecheck/internal/config"
)

func TestInitProject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "thesis")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}

	root, err := initProject(dir)
	if err != nil {
		t.Fatalf("initProject() error = %v", err)
	}
	if !config.IsRepository(root) {
		t.Fatalf("%s has no %s after init", root, config.ConfigFile)
	}
	if info, err := os.Stat(filepath.Join(root, "research")); err != nil || !info.IsDir() {
		t.Errorf("research directory not created: %v", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, config.Default()) {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}

	found, err := config.FindRepository(filepath.Join(root, "research"))
	if err != nil || found != root {
		t.Errorf("FindRepository() = %q, %v; want %q", found, err, root)
	}
}

func TestInitProject_AlreadyInitialized(t *testing.T) {
	dir := t.TempDir()
	if _, err := initProject(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := initProject(dir); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second initProject() error = %v, want ErrAlreadyInitialized", err)
	}
}
