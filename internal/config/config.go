package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	API       APIConfig       `mapstructure:"api"`
	Search    SearchConfig    `mapstructure:"search"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	UI        UIConfig        `mapstructure:"ui"`
	Media     MediaConfig     `mapstructure:"media"`
	Keys      KeyConfig       `mapstructure:"keys"`
	Log       LogConfig       `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

// APIConfig configures the movie fetch service.
type APIConfig struct {
	// Source selects the fetcher: "tmdb" or "local" (offline bleve index).
	Source              string        `mapstructure:"source"`
	BaseURL             string        `mapstructure:"base_url"`
	Token               string        `mapstructure:"token"`
	HTTPTimeout         time.Duration `mapstructure:"http_timeout"`
	UserAgent           string        `mapstructure:"user_agent"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	AllowLocalEndpoints bool          `mapstructure:"allow_local_endpoints"`
}

type SearchConfig struct {
	Debounce   time.Duration `mapstructure:"debounce"`
	MaxResults int           `mapstructure:"max_results"`
}

type AnalyticsConfig struct {
	// Backend is one of "local", "appwrite" or "none".
	Backend    string        `mapstructure:"backend"`
	Delay      time.Duration `mapstructure:"delay"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Endpoint   string        `mapstructure:"endpoint"`
	ProjectID  string        `mapstructure:"project_id"`
	APIKey     string        `mapstructure:"api_key"`
	DatabaseID string        `mapstructure:"database_id"`
	Collection string        `mapstructure:"collection"`
}

type UIConfig struct {
	Colors UIColors   `mapstructure:"colors"`
	Grid   GridConfig `mapstructure:"grid"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type GridConfig struct {
	Columns int `mapstructure:"columns"`
	Gap     int `mapstructure:"gap"`
}

type MediaConfig struct {
	Darwin        []string `mapstructure:"darwin"`
	Linux         []string `mapstructure:"linux"`
	Windows       []string `mapstructure:"windows"`
	DefaultOpener string   `mapstructure:"default_opener"`
}

type KeyConfig struct {
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit       string `mapstructure:"quit"`
	Focus      string `mapstructure:"focus"`
	Open       string `mapstructure:"open"`
	OpenPage   string `mapstructure:"open_page"`
	OpenPoster string `mapstructure:"open_poster"`
	Back       string `mapstructure:"back"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".flick.db")
	searchIndexPath := filepath.Join(homeDir, ".flick", "index.bleve")

	return &Config{
		Database: DatabaseConfig{
			Path:        dbPath,
			Timeout:     1 * time.Second,
			SearchIndex: searchIndexPath,
		},
		API: APIConfig{
			Source:      "tmdb",
			BaseURL:     "https://api.themoviedb.org/3",
			HTTPTimeout: 15 * time.Second,
			UserAgent:   "flick/1.0 (https://github.com/pders01/flick)",
			CacheTTL:    10 * time.Minute,
		},
		Search: SearchConfig{
			Debounce:   500 * time.Millisecond,
			MaxResults: 30,
		},
		Analytics: AnalyticsConfig{
			Backend:    "local",
			Delay:      500 * time.Millisecond,
			Timeout:    10 * time.Second,
			Collection: "metrics",
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#AB8BFF",
				Secondary:  "#D6C7FF",
				Accent:     "#AB8BFF",
				Background: "#030014",
				Surface:    "#0F0D23",
				Text:       "#EAEAEA",
				Muted:      "#9CA4AB",
				Error:      "#EF4444",
				Success:    "#10B981",
			},
			Grid: GridConfig{
				Columns: 3,
				Gap:     4,
			},
		},
		Media: MediaConfig{
			Darwin:        []string{"open"},
			Linux:         []string{"xdg-open", "sensible-browser", "firefox"},
			Windows:       []string{"start"},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Bindings: KeyBindings{
				Quit:       "ctrl+c",
				Focus:      "tab",
				Open:       "enter",
				OpenPage:   "o",
				OpenPoster: "p",
				Back:       "esc",
			},
		},
		Log: LogConfig{
			Level: "off",
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	setDefaults(v, "", cfg.Settings())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "flick")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	// FLICK_SEARCH_DEBOUNCE overrides search.debounce.
	v.SetEnvPrefix("FLICK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Decode over the defaults so sections that are only partially present
	// in the file keep their remaining default values.
	config := *cfg
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)
	applySecretEnv(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every leaf key so AutomaticEnv can see it;
// nested keys missing from the config file are otherwise invisible to
// Unmarshal.
func setDefaults(v *viper.Viper, prefix string, settings map[string]interface{}) {
	for key, value := range settings {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]interface{}); ok {
			setDefaults(v, key, nested)
			continue
		}
		v.SetDefault(key, value)
	}
}

// Validate rejects values the application cannot run with.
func (c *Config) Validate() error {
	switch c.API.Source {
	case "tmdb", "local":
	default:
		return fmt.Errorf("api.source must be \"tmdb\" or \"local\", got %q", c.API.Source)
	}
	switch c.Analytics.Backend {
	case "local", "appwrite", "none":
	default:
		return fmt.Errorf("analytics.backend must be \"local\", \"appwrite\" or \"none\", got %q", c.Analytics.Backend)
	}
	if c.Search.Debounce < 0 || c.Analytics.Delay < 0 {
		return fmt.Errorf("search.debounce and analytics.delay must not be negative")
	}
	if c.UI.Grid.Columns < 1 {
		return fmt.Errorf("ui.grid.columns must be at least 1")
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

// applySecretEnv fills credentials from the environment. Defaults are
// registered per section, so AutomaticEnv cannot see nested keys.
func applySecretEnv(cfg *Config) {
	if cfg.API.Token == "" {
		cfg.API.Token = firstEnv("FLICK_API_TOKEN", "TMDB_API_KEY")
	}
	if cfg.Analytics.APIKey == "" {
		cfg.Analytics.APIKey = firstEnv("FLICK_ANALYTICS_API_KEY", "APPWRITE_API_KEY")
	}
	if cfg.Analytics.ProjectID == "" {
		cfg.Analytics.ProjectID = firstEnv("FLICK_ANALYTICS_PROJECT_ID", "APPWRITE_PROJECT_ID")
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Log.File = expandPath(cfg.Log.File)
}

// Settings returns the configuration as nested maps keyed the way the
// config file spells them. Durations are written as strings.
func (c *Config) Settings() map[string]interface{} {
	return map[string]interface{}{
		"database": map[string]interface{}{
			"path":         c.Database.Path,
			"timeout":      c.Database.Timeout.String(),
			"search_index": c.Database.SearchIndex,
		},
		"api": map[string]interface{}{
			"source":                c.API.Source,
			"base_url":              c.API.BaseURL,
			"token":                 c.API.Token,
			"http_timeout":          c.API.HTTPTimeout.String(),
			"user_agent":            c.API.UserAgent,
			"cache_ttl":             c.API.CacheTTL.String(),
			"allow_local_endpoints": c.API.AllowLocalEndpoints,
		},
		"search": map[string]interface{}{
			"debounce":    c.Search.Debounce.String(),
			"max_results": c.Search.MaxResults,
		},
		"analytics": map[string]interface{}{
			"backend":     c.Analytics.Backend,
			"delay":       c.Analytics.Delay.String(),
			"timeout":     c.Analytics.Timeout.String(),
			"endpoint":    c.Analytics.Endpoint,
			"project_id":  c.Analytics.ProjectID,
			"api_key":     c.Analytics.APIKey,
			"database_id": c.Analytics.DatabaseID,
			"collection":  c.Analytics.Collection,
		},
		"ui": map[string]interface{}{
			"colors": map[string]interface{}{
				"primary":    c.UI.Colors.Primary,
				"secondary":  c.UI.Colors.Secondary,
				"accent":     c.UI.Colors.Accent,
				"background": c.UI.Colors.Background,
				"surface":    c.UI.Colors.Surface,
				"text":       c.UI.Colors.Text,
				"muted":      c.UI.Colors.Muted,
				"error":      c.UI.Colors.Error,
				"success":    c.UI.Colors.Success,
			},
			"grid": map[string]interface{}{
				"columns": c.UI.Grid.Columns,
				"gap":     c.UI.Grid.Gap,
			},
		},
		"media": map[string]interface{}{
			"darwin":         c.Media.Darwin,
			"linux":          c.Media.Linux,
			"windows":        c.Media.Windows,
			"default_opener": c.Media.DefaultOpener,
		},
		"keys": map[string]interface{}{
			"bindings": map[string]interface{}{
				"quit":        c.Keys.Bindings.Quit,
				"focus":       c.Keys.Bindings.Focus,
				"open":        c.Keys.Bindings.Open,
				"open_page":   c.Keys.Bindings.OpenPage,
				"open_poster": c.Keys.Bindings.OpenPoster,
				"back":        c.Keys.Bindings.Back,
			},
		},
		"log": map[string]interface{}{
			"level": c.Log.Level,
			"file":  c.Log.File,
		},
	}
}

// Marshal renders the configuration as TOML. With redact set, credentials
// are masked.
func Marshal(c *Config, redact bool) ([]byte, error) {
	cp := *c
	if redact {
		cp.API.Token = mask(cp.API.Token)
		cp.Analytics.APIKey = mask(cp.Analytics.APIKey)
	}
	return toml.Marshal(cp.Settings())
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

func Save(config *Config, path string) error {
	v := viper.New()
	for section, values := range config.Settings() {
		v.Set(section, values)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}

// DefaultPath returns the location GenerateDefaultConfig writes to by default.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "flick", "config.toml")
}
