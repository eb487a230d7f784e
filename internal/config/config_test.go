package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetDefaultOpener(t *testing.T) {
	expected := map[string]string{
		"darwin":  "open",
		"linux":   "xdg-open",
		"windows": "start",
	}

	opener := getDefaultOpener()

	if expectedOpener, ok := expected[runtime.GOOS]; ok {
		if opener != expectedOpener {
			t.Errorf("getDefaultOpener() = %s, want %s for %s", opener, expectedOpener, runtime.GOOS)
		}
	} else if opener != "open" {
		t.Errorf("getDefaultOpener() = %s, want 'open' for unknown OS", opener)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Timeout != 1*time.Second {
		t.Errorf("Database.Timeout = %v, want 1s", cfg.Database.Timeout)
	}

	if cfg.Search.Debounce != 500*time.Millisecond {
		t.Errorf("Search.Debounce = %v, want 500ms", cfg.Search.Debounce)
	}
	if cfg.Analytics.Delay != 500*time.Millisecond {
		t.Errorf("Analytics.Delay = %v, want 500ms", cfg.Analytics.Delay)
	}
	if cfg.Analytics.Backend != "local" {
		t.Errorf("Analytics.Backend = %s, want local", cfg.Analytics.Backend)
	}
	if cfg.API.Source != "tmdb" {
		t.Errorf("API.Source = %s, want tmdb", cfg.API.Source)
	}
	if cfg.API.UserAgent == "" {
		t.Error("API.UserAgent should not be empty")
	}

	if cfg.UI.Grid.Columns != 3 {
		t.Errorf("UI.Grid.Columns = %d, want 3", cfg.UI.Grid.Columns)
	}

	if cfg.Media.DefaultOpener == "" {
		t.Error("Media.DefaultOpener should not be empty")
	}

	if cfg.Keys.Bindings.Quit != "ctrl+c" {
		t.Errorf("Keys.Bindings.Quit = %s, want 'ctrl+c'", cfg.Keys.Bindings.Quit)
	}
}

func TestLoad_DefaultConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Search.Debounce != 500*time.Millisecond {
		t.Errorf("Search.Debounce = %v, want 500ms", cfg.Search.Debounce)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "test-config.toml")
	configContent := `
[database]
path = "/tmp/test.db"
timeout = "10s"

[api]
source = "local"
http_timeout = "60s"
user_agent = "test-agent"

[search]
debounce = "250ms"

[analytics]
backend = "appwrite"
endpoint = "https://cloud.appwrite.io/v1"

[ui.colors]
primary = "#FF0000"
`

	if writeErr := os.WriteFile(configPath, []byte(configContent), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %s, want '/tmp/test.db'", cfg.Database.Path)
	}
	if cfg.Database.Timeout != 10*time.Second {
		t.Errorf("Database.Timeout = %v, want 10s", cfg.Database.Timeout)
	}
	if cfg.API.Source != "local" {
		t.Errorf("API.Source = %s, want local", cfg.API.Source)
	}
	if cfg.API.HTTPTimeout != 60*time.Second {
		t.Errorf("API.HTTPTimeout = %v, want 60s", cfg.API.HTTPTimeout)
	}
	if cfg.API.UserAgent != "test-agent" {
		t.Errorf("API.UserAgent = %s, want 'test-agent'", cfg.API.UserAgent)
	}
	if cfg.Search.Debounce != 250*time.Millisecond {
		t.Errorf("Search.Debounce = %v, want 250ms", cfg.Search.Debounce)
	}
	if cfg.Analytics.Backend != "appwrite" {
		t.Errorf("Analytics.Backend = %s, want appwrite", cfg.Analytics.Backend)
	}
	if cfg.UI.Colors.Primary != "#FF0000" {
		t.Errorf("UI.Colors.Primary = %s, want '#FF0000'", cfg.UI.Colors.Primary)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.toml")
	content := `
[analytics]
backend = "kafka"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Load() should reject unknown analytics backend")
	}
}

func TestLoad_TokenFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("FLICK_API_TOKEN", "")
	t.Setenv("TMDB_API_KEY", "secret-token")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.Token != "secret-token" {
		t.Errorf("API.Token = %q, want env value", cfg.API.Token)
	}
}

func TestLoad_NestedKeysFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("FLICK_SEARCH_DEBOUNCE", "750ms")
	t.Setenv("FLICK_UI_GRID_COLUMNS", "5")
	t.Setenv("FLICK_ANALYTICS_BACKEND", "none")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Search.Debounce != 750*time.Millisecond {
		t.Errorf("Search.Debounce = %v, want 750ms", cfg.Search.Debounce)
	}
	if cfg.UI.Grid.Columns != 5 {
		t.Errorf("UI.Grid.Columns = %d, want 5", cfg.UI.Grid.Columns)
	}
	if cfg.Analytics.Backend != "none" {
		t.Errorf("Analytics.Backend = %q, want none", cfg.Analytics.Backend)
	}
	if cfg.Search.MaxResults != defaultConfig().Search.MaxResults {
		t.Errorf("Search.MaxResults = %d, want default", cfg.Search.MaxResults)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := "[search]\ndebounce = \"200ms\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FLICK_SEARCH_DEBOUNCE", "1s")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Search.Debounce != time.Second {
		t.Errorf("Search.Debounce = %v, want env value 1s", cfg.Search.Debounce)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := defaultConfig()
	cfg.Database.Path = "/test/path.db"
	cfg.Database.Timeout = 10 * time.Second
	cfg.API.UserAgent = "test-save-agent"
	cfg.Search.Debounce = 750 * time.Millisecond
	cfg.UI.Colors.Primary = "#00FF00"
	cfg.Keys.Bindings.Quit = "ctrl+q"

	savePath := filepath.Join(tmpDir, "saved-config.toml")
	if saveErr := Save(cfg, savePath); saveErr != nil {
		t.Fatalf("Save() error = %v", saveErr)
	}

	if _, statErr := os.Stat(savePath); os.IsNotExist(statErr) {
		t.Fatal("Save() did not create config file")
	}

	loaded, err := Load(savePath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Database.Path != cfg.Database.Path {
		t.Errorf("Loaded Database.Path = %s, want %s", loaded.Database.Path, cfg.Database.Path)
	}
	if loaded.API.UserAgent != cfg.API.UserAgent {
		t.Errorf("Loaded API.UserAgent = %s, want %s", loaded.API.UserAgent, cfg.API.UserAgent)
	}
	if loaded.Search.Debounce != cfg.Search.Debounce {
		t.Errorf("Loaded Search.Debounce = %v, want %v", loaded.Search.Debounce, cfg.Search.Debounce)
	}
	if loaded.Keys.Bindings.Quit != cfg.Keys.Bindings.Quit {
		t.Errorf("Loaded Keys.Bindings.Quit = %s, want %s", loaded.Keys.Bindings.Quit, cfg.Keys.Bindings.Quit)
	}
}

func TestGenerateDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "generated.toml")
	if genErr := GenerateDefaultConfig(configPath); genErr != nil {
		t.Fatalf("GenerateDefaultConfig() error = %v", genErr)
	}

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		t.Fatal("GenerateDefaultConfig() did not create file")
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}

	if cfg.UI.Grid.Columns != 3 {
		t.Errorf("Generated config has UI.Grid.Columns = %d, want 3", cfg.UI.Grid.Columns)
	}
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	if cfg == nil {
		t.Fatal("TestConfig() returned nil")
	}

	if cfg.Database.Path != ":memory:" {
		t.Errorf("TestConfig Database.Path = %s, want ':memory:'", cfg.Database.Path)
	}
	if cfg.API.UserAgent != "flick-test/1.0" {
		t.Errorf("TestConfig API.UserAgent = %s, want 'flick-test/1.0'", cfg.API.UserAgent)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("TestConfig should validate: %v", err)
	}
}

func TestMarshalRedactsSecrets(t *testing.T) {
	cfg := defaultConfig()
	cfg.API.Token = "tmdb-secret"
	cfg.Analytics.APIKey = "appwrite-secret"

	out, err := Marshal(cfg, true)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	text := string(out)
	if strings.Contains(text, "tmdb-secret") || strings.Contains(text, "appwrite-secret") {
		t.Errorf("Marshal() leaked a credential:\n%s", text)
	}
	for _, want := range []string{"[api]", "debounce = '500ms'", "columns = 3", "open_poster = 'p'"} {
		if !strings.Contains(text, want) {
			t.Errorf("Marshal() output missing %q:\n%s", want, text)
		}
	}
	if cfg.API.Token != "tmdb-secret" {
		t.Error("Marshal() must not modify the config")
	}

	plain, err := Marshal(cfg, false)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(plain), "tmdb-secret") {
		t.Error("Marshal() without redaction should keep the token")
	}
}
