package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TASKMGR_API_URL", "TASKMGR_TOKEN", "TASKMGR_TIMEOUT", "TASKMGR_THEME", "TASKMGR_LOG_FILE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected default api url, got %q", cfg.APIURL)
	}
	if cfg.Timeout != 0 {
		t.Errorf("expected no timeout, got %v", cfg.Timeout)
	}
	if cfg.Theme != "classic" {
		t.Errorf("expected classic theme, got %q", cfg.Theme)
	}
	if cfg.LogFile != filepath.Join(dir, LogFile) {
		t.Errorf("unexpected log file %q", cfg.LogFile)
	}
	if cfg.Dir != dir {
		t.Errorf("unexpected dir %q", cfg.Dir)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yaml := "api_url: http://file.example\ntimeout: 3s\ntheme: neon\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://file.example" || cfg.Timeout != 3*time.Second || cfg.Theme != "neon" {
		t.Errorf("file values not applied: %+v", cfg)
	}

	t.Setenv("TASKMGR_API_URL", "http://env.example")
	cfg, err = Load(dir, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://env.example" {
		t.Errorf("env should win, got %q", cfg.APIURL)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("TASKMGR_TOKEN=tok1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("TASKMGR_TOKEN") })

	cfg, err := Load(dir, envFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Token != "tok1" {
		t.Errorf("expected token from .env, got %q", cfg.Token)
	}
}

func TestLoad_MissingDotEnv(t *testing.T) {
	clearEnv(t)
	if _, err := Load(t.TempDir(), filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestLoad_NegativeTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKMGR_TIMEOUT", "-1s")
	if _, err := Load(t.TempDir(), ""); err == nil {
		t.Error("expected error for negative timeout")
	}
}

func TestWriteFile(t *testing.T) {
	clearEnv(t)
	dir := filepath.Join(t.TempDir(), "cfg")
	cfg, err := Load(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	cfg.APIURL = "http://written.example"
	cfg.Timeout = 5 * time.Second
	if err := cfg.WriteFile(false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := cfg.WriteFile(false); err == nil {
		t.Error("expected refusal to overwrite")
	}

	back, err := Load(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if back.APIURL != "http://written.example" || back.Timeout != 5*time.Second {
		t.Errorf("round trip lost values: %+v", back)
	}
}
