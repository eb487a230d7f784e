package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pders01/flick/internal/analytics"
	"github.com/pders01/flick/internal/config"
	"github.com/pders01/flick/internal/movie"
	"github.com/pders01/flick/internal/storage"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	w.Close()
	os.Stdout = old
	return <-outC
}

func TestVersionCommand(t *testing.T) {
	out := captureStdout(t, func() {
		versionCmd.Run(versionCmd, nil)
	})

	// Version is "dev" by default in tests
	if !strings.Contains(out, "flick dev") {
		t.Errorf("Expected version output to contain 'flick dev', got: %s", out)
	}
	if !strings.Contains(out, "github.com/pders01/flick") {
		t.Errorf("Expected version output to contain 'github.com/pders01/flick', got: %s", out)
	}
}

func TestGenerateConfigCommand(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, ".config", "flick", "config.toml")
	t.Setenv("HOME", tmpDir)

	out := captureStdout(t, func() {
		configGenCmd.Run(configGenCmd, nil)
	})

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		t.Errorf("Config file was not created at %s", configFile)
	}
	if !strings.Contains(out, "Generated default configuration at:") {
		t.Errorf("Expected output to contain 'Generated default configuration at:', got: %s", out)
	}
}

func TestGenerateConfigCommandExplicitPath(t *testing.T) {
	target := filepath.Join(t.TempDir(), "custom.toml")

	captureStdout(t, func() {
		configGenCmd.Run(configGenCmd, []string{target})
	})

	cfg, err := config.Load(target)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}
	if cfg.Search.Debounce.String() != "500ms" {
		t.Errorf("Generated debounce = %v, want 500ms", cfg.Search.Debounce)
	}
}

func TestConfigShowCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.Default()
	cfg.API.Token = "very-secret"
	if err := config.Save(cfg, target); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	oldPath, oldDebug := configPath, debug
	configPath, debug = target, true
	t.Cleanup(func() { configPath, debug = oldPath, oldDebug })

	var buf bytes.Buffer
	configShowCmd.SetOut(&buf)
	t.Cleanup(func() { configShowCmd.SetOut(nil) })

	if err := configShowCmd.RunE(configShowCmd, nil); err != nil {
		t.Fatalf("config show error = %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "very-secret") {
		t.Errorf("config show leaked the token:\n%s", out)
	}
	if !strings.Contains(out, "level = 'debug'") {
		t.Errorf("Expected --debug to be reflected in output:\n%s", out)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := config.GenerateDefaultConfig(target); err != nil {
		t.Fatalf("GenerateDefaultConfig() error = %v", err)
	}

	old := []interface{}{configPath, dbPath, logLevel, debug, allowLocal}
	t.Cleanup(func() {
		configPath = old[0].(string)
		dbPath = old[1].(string)
		logLevel = old[2].(string)
		debug = old[3].(bool)
		allowLocal = old[4].(bool)
	})

	configPath = target
	dbPath = "/tmp/override.db"
	logLevel = "warn"
	allowLocal = true

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("Database.Path = %s, want flag value", cfg.Database.Path)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %s, want warn", cfg.Log.Level)
	}
	if !cfg.API.AllowLocalEndpoints {
		t.Error("Expected --allow-local to enable local endpoints")
	}
}

func TestTrendingSource(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "flick.db"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	defer store.Close()

	cfg := config.TestConfig()
	for _, backend := range []string{"local", "none"} {
		cfg.Analytics.Backend = backend
		lister, err := trendingSource(cfg, store)
		if err != nil {
			t.Fatalf("trendingSource(%s) error = %v", backend, err)
		}
		if _, ok := lister.(*analytics.Local); !ok {
			t.Errorf("trendingSource(%s) = %T, want *analytics.Local", backend, lister)
		}
	}

	cfg.Analytics.Backend = "appwrite"
	cfg.Analytics.Endpoint = ""
	if _, err := trendingSource(cfg, store); err == nil {
		t.Error("Expected an error for appwrite without an endpoint")
	}
}

func TestRenderMovies(t *testing.T) {
	var buf bytes.Buffer
	movies := []movie.Movie{
		{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30", VoteAverage: 8.2},
		{ID: 1, Title: "Untitled"},
	}
	if err := renderMovies(&buf, movies); err != nil {
		t.Fatalf("renderMovies() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"The Matrix", "1999", "8.2", "N/A"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected table to contain %q, got:\n%s", want, out)
		}
	}
}
