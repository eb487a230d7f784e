package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/pders01/flick/internal/analytics"
	"github.com/pders01/flick/internal/config"
	"github.com/pders01/flick/internal/movie"
	"github.com/pders01/flick/internal/storage"
	"github.com/pders01/flick/internal/tui"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", tui.AppName, Version)
		fmt.Println("Terminal movie search")
		fmt.Println("github.com/pders01/flick")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := config.DefaultPath()
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			pterm.Error.Printfln("Failed to generate config: %v", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default configuration at: %s\n", path)
	},
}

var showSecrets bool

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out, err := config.Marshal(cfg, !showSecrets)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var trendingLimit int

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List the most searched terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.Close()

		lister, err := trendingSource(a.cfg, a.store)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Analytics.Timeout)
		defer cancel()

		metrics, err := lister.Trending(ctx, trendingLimit)
		if err != nil {
			return fmt.Errorf("listing trending searches: %w", err)
		}
		if len(metrics) == 0 {
			pterm.Info.Println("No searches recorded yet")
			return nil
		}
		return renderTrending(metrics)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search once and print the results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.Close()

		query := strings.Join(args, " ")
		timeout := a.cfg.API.HTTPTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		spinner, _ := pterm.DefaultSpinner.
			WithWriter(cmd.ErrOrStderr()).
			Start(fmt.Sprintf("Searching for %q", query))
		movies, err := a.fetcher().FetchMovies(ctx, query)
		if err != nil {
			spinner.Fail(err.Error())
			return err
		}
		spinner.Success(tui.MsgResultsCount(len(movies)))

		if len(movies) == 0 {
			pterm.Info.Println(tui.MsgNoMovies)
			return nil
		}
		return renderMovies(cmd.OutOrStdout(), movies)
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print credentials instead of masking them")
	configCmd.AddCommand(configGenCmd, configShowCmd)

	trendingCmd.Flags().IntVarP(&trendingLimit, "limit", "n", 10, "Number of terms to list")
}

// trendingSource picks the backend that holds search counts. With the
// appwrite backend the counts live remotely.
func trendingSource(cfg *config.Config, store *storage.Store) (analytics.TrendingLister, error) {
	if cfg.Analytics.Backend == "none" {
		return analytics.NewLocal(store), nil
	}
	rec, err := analytics.New(cfg, store)
	if err != nil {
		return nil, err
	}
	lister, ok := rec.(analytics.TrendingLister)
	if !ok {
		return nil, fmt.Errorf("analytics backend %q cannot list trending searches", cfg.Analytics.Backend)
	}
	return lister, nil
}

func renderTrending(metrics []storage.SearchMetric) error {
	data := pterm.TableData{{"#", "Term", "Searches", "Top Result", "Last Searched"}}
	for i, m := range metrics {
		last := "-"
		if !m.UpdatedAt.IsZero() {
			last = m.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			m.SearchTerm,
			strconv.Itoa(m.Count),
			m.Title,
			last,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderMovies(w io.Writer, movies []movie.Movie) error {
	data := pterm.TableData{{"ID", "Title", "Year", "Rating"}}
	for _, m := range movies {
		year := m.Year()
		if year == "" {
			year = "N/A"
		}
		data = append(data, []string{strconv.Itoa(m.ID), m.Title, year, m.Rating()})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}
