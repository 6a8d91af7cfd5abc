package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got := GlobalConfigPath(); got != "/custom/config/citecheck/config.yml" {
		t.Errorf("GlobalConfigPath() = %q", got)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	want := filepath.Join(home, ".config", "citecheck", "config.yml")
	if got := GlobalConfigPath(); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func writeGlobalConfig(t *testing.T, dir, data string) string {
	t.Helper()
	configDir := filepath.Join(dir, GlobalConfigDir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(configDir, GlobalConfigFile)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.Root != "" || cfg.ReportLog != "" {
		t.Errorf("LoadGlobalConfig() = %+v, want empty", cfg)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	tmpDir := t.TempDir()
	writeGlobalConfig(t, tmpDir, "root: ~/research/project\nreport_log: /var/log/citecheck.jsonl\n")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "research/project"); cfg.Root != want {
		t.Errorf("Root = %q, want %q", cfg.Root, want)
	}
	if GetReportLog() != "/var/log/citecheck.jsonl" {
		t.Errorf("GetReportLog() = %q", GetReportLog())
	}
}

func TestLoadGlobalConfig_Invalid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	tmpDir := t.TempDir()
	writeGlobalConfig(t, tmpDir, "root: [not, a, string")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() should return error for invalid YAML")
	}
	if GetRoot() != "" {
		t.Error("GetRoot() should be empty when config is invalid")
	}
}

func TestGlobalConfigCache(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	tmpDir := t.TempDir()
	path := writeGlobalConfig(t, tmpDir, "root: /first\n")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if got := GetRoot(); got != "/first" {
		t.Fatalf("GetRoot() = %q, want /first", got)
	}

	if err := os.WriteFile(path, []byte("root: /second\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := GetRoot(); got != "/first" {
		t.Errorf("GetRoot() = %q, want cached /first", got)
	}

	ResetGlobalConfigCache()
	if got := GetRoot(); got != "/second" {
		t.Errorf("GetRoot() = %q, want /second after reset", got)
	}
}

func TestHelpfulConfigMessage(t *testing.T) {
	msg := HelpfulConfigMessage()
	for _, want := range []string{ConfigFile, EnvRoot, "--root"} {
		if !strings.Contains(msg, want) {
			t.Errorf("HelpfulConfigMessage() missing %q", want)
		}
	}
}
