package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/flick/internal/analytics"
	"github.com/pders01/flick/internal/config"
	"github.com/pders01/flick/internal/debuglog"
	"github.com/pders01/flick/internal/media"
	"github.com/pders01/flick/internal/movie"
	"github.com/pders01/flick/internal/search"
	"github.com/pders01/flick/internal/storage"
	"github.com/pders01/flick/internal/tmdb"
	"github.com/pders01/flick/internal/tui"
	"github.com/pders01/flick/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	dbPath     string
	logLevel   string
	quiet      bool
	debug      bool
	allowLocal bool
)

var rootCmd = &cobra.Command{
	Use:           "flick",
	Short:         "Search movies from the terminal",
	Long:          "flick searches TMDB as you type and keeps a local record of what you looked for.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to configuration file")
	flags.StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: off, error, warn, info, debug (overrides config)")
	flags.BoolVar(&debug, "debug", false, "Shorthand for --log-level debug")
	flags.BoolVar(&allowLocal, "allow-local", false, "Allow API endpoints on loopback or private networks")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Skip startup banner")

	rootCmd.AddCommand(versionCmd, configCmd, trendingCmd, searchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the resources shared by every command.
type app struct {
	cfg   *config.Config
	store *storage.Store
	index *search.Index
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if allowLocal {
		cfg.API.AllowLocalEndpoints = true
	}
	switch {
	case debug:
		cfg.Log.Level = "debug"
	case logLevel != "":
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// setup loads configuration and opens the database and search index.
func setup() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return nil, err
	}
	debuglog.Infof("flick %s starting", Version)

	if cfg.API.Source == "tmdb" {
		validator := validation.NewEndpointValidator()
		if cfg.API.AllowLocalEndpoints {
			validator = validation.NewPermissiveEndpointValidator()
		}
		if cfg.API.BaseURL, err = validator.ValidateAndNormalize(cfg.API.BaseURL); err != nil {
			return nil, fmt.Errorf("api.base_url: %w", err)
		}
	}

	if cfg.Database.Path, err = validation.PrepareFilePath(cfg.Database.Path); err != nil {
		return nil, fmt.Errorf("database.path: %w", err)
	}
	store, err := storage.NewStoreWithTimeout(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	indexPath := cfg.Database.SearchIndex
	if indexPath != "" && indexPath != ":memory:" {
		if indexPath, err = validation.PrepareDirPath(indexPath); err != nil {
			store.Close()
			return nil, fmt.Errorf("database.search_index: %w", err)
		}
	}
	index, err := search.Open(indexPath)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening search index: %w", err)
	}
	index.SetLimit(cfg.Search.MaxResults)

	if n, err := index.DocCount(); err == nil && n == 0 {
		if added, err := index.Reindex(store); err != nil {
			debuglog.Warnf("rebuilding search index: %v", err)
		} else if added > 0 {
			debuglog.Infof("indexed %d cached movies", added)
		}
	}

	if cfg.API.CacheTTL > 0 {
		if purged, err := store.PurgeCache(cfg.API.CacheTTL); err != nil {
			debuglog.Warnf("purging result cache: %v", err)
		} else if purged > 0 {
			debuglog.Debugf("purged %d expired result sets", purged)
		}
	}

	return &app{cfg: cfg, store: store, index: index}, nil
}

func (a *app) Close() {
	if err := a.index.Close(); err != nil {
		debuglog.Warnf("closing search index: %v", err)
	}
	if err := a.store.Close(); err != nil {
		debuglog.Warnf("closing database: %v", err)
	}
	debuglog.Close()
}

// fetcher returns the movie source selected by api.source. Remote
// results are cached in the store and fed into the offline index.
func (a *app) fetcher() movie.Fetcher {
	if a.cfg.API.Source == "local" {
		return a.index
	}
	return movie.NewCachingFetcher(tmdb.NewClient(a.cfg), a.store, a.index, a.cfg.API.CacheTTL)
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.API.Source == "tmdb" && a.cfg.API.Token == "" {
		return fmt.Errorf("no TMDB token configured: set api.token or TMDB_API_KEY, or use api.source = \"local\"")
	}

	recorder, err := analytics.New(a.cfg, a.store)
	if err != nil {
		return err
	}

	if !quiet {
		tui.ShowBanner(Version)
	}

	screen := tui.NewScreen(a.cfg, a.fetcher(), recorder, media.NewLauncher(a.cfg))
	defer screen.Unmount()

	p := tea.NewProgram(screen, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
