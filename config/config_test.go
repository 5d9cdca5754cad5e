package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cinema-booking-cli/service"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("HOME", dir)
	for _, name := range []string{EnvConfig, EnvBaseURL, EnvTimeout, EnvLogLevel, EnvLogFile} {
		t.Setenv(name, "")
	}
	return dir
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL || cfg.Timeout != DefaultTimeout || cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Path != "" {
		t.Fatalf("expected no config path, got %q", cfg.Path)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cinema.yaml")
	data := "base_url: http://cinema.test:8080\ntimeout: 3s\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.BaseURL != "http://cinema.test:8080" || cfg.Timeout != 3*time.Second || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Path != path {
		t.Fatalf("expected path %q, got %q", path, cfg.Path)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	dir := isolate(t)

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for a missing explicit config")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cinema.yaml")
	if err := os.WriteFile(path, []byte("base_url: http://file.test\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvBaseURL, "http://env.test")
	t.Setenv(EnvTimeout, "30")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.BaseURL != "http://env.test" || cfg.Timeout != 30*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	env := EnvBaseURL + "=http://dotenv.test\n" + EnvLogLevel + "=warn\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv(EnvBaseURL, "http://shell.test")
	os.Unsetenv(EnvLogLevel)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.BaseURL != "http://shell.test" {
		t.Fatalf("expected shell value to win, got %q", cfg.BaseURL)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected .env log level, got %q", cfg.LogLevel)
	}
}

func TestLoad_InvalidTimeoutEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTimeout, "soon")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), EnvTimeout) {
		t.Fatalf("expected timeout parse error, got %v", err)
	}
}

func TestApply_ValidatesOverrides(t *testing.T) {
	base := Default()

	bad := "localhost:4444"
	if _, err := base.Apply(Overrides{BaseURL: &bad}); err == nil {
		t.Fatal("expected relative base url to be rejected")
	}
	zero := time.Duration(0)
	if _, err := base.Apply(Overrides{Timeout: &zero}); err == nil {
		t.Fatal("expected zero timeout to be rejected")
	}
	level := "loud"
	if _, err := base.Apply(Overrides{LogLevel: &level}); err == nil {
		t.Fatal("expected unknown level to be rejected")
	}

	good := "https://cinema.example.com"
	cfg, err := base.Apply(Overrides{BaseURL: &good})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.BaseURL != good || cfg.Timeout != DefaultTimeout {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestDefault_MatchesClientDefaults(t *testing.T) {
	cfg := Default()
	if cfg.BaseURL != service.DefaultBaseURL || cfg.Timeout != service.DefaultTimeout {
		t.Fatalf("expected client defaults, got %+v", cfg)
	}
}
