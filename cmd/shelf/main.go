package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Cathesth/SHELF/internal/app"
	"github.com/Cathesth/SHELF/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const (
	version = "1.0.0"
	repoURL = "https://github.com/Cathesth/SHELF"
)

// applyEnvOverrides fills credentials from the environment when the config
// file leaves them empty. The file wins so a saved setup stays stable.
func applyEnvOverrides(cfg *app.Config) {
	if cfg.SteamAPIKey == "" {
		cfg.SteamAPIKey = os.Getenv("STEAM_API_KEY")
	}
	if cfg.SteamID == "" {
		cfg.SteamID = os.Getenv("STEAM_ID")
	}
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
}

func loadConfig() (app.Config, error) {
	cfg, err := app.LoadConfig(app.DefaultConfigPath())
	if err != nil {
		return cfg, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// runFetch drives one headless refresh and prints the result. An empty or
// private profile is a warning, not a failure exit.
func runFetch(ctx context.Context, application *app.Application, jsonOut bool, out io.Writer) error {
	if !application.HasSteamCredentials() {
		return fmt.Errorf("steam_api_key and steam_id are required; set them in %s or the STEAM_API_KEY / STEAM_ID environment", app.DefaultConfigPath())
	}

	session := application.NewSession()
	if err := session.Refresh(ctx); err != nil {
		if errors.Is(err, app.ErrEmptyLibrary) {
			fmt.Fprintln(out, "No games found. The profile may be private or the library empty.")
			return nil
		}
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(session.Games())
	}

	stats := session.Stats()
	fmt.Fprintf(out, "%d games, %d hours on record, top %d analyzed.\n\n",
		stats.TotalGames, stats.TotalHours, session.AnalysisLimit())
	fmt.Fprintln(out, app.LibrarySummary(session.Games()))
	return nil
}

func main() {
	root := &cobra.Command{
		Use:     "shelf",
		Short:   "SHELF - a Steam library dashboard in your terminal",
		Long:    "SHELF fetches your Steam library, labels every game with a genre, a play style, and a vibe, and answers questions about what to play next.\n\nFor more information, visit: " + repoURL,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Printf("SHELF v%s\n", version)
				fmt.Printf("Repository: %s\n", repoURL)
				return nil
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			application := app.NewApplication(cfg)

			p := tea.NewProgram(tui.NewMainModel(application), tea.WithAltScreen())

			if cfg.RefreshSchedule != "" {
				refresher := app.NewRefresher()
				if err := refresher.Start(cfg.RefreshSchedule, func() {
					p.Send(tui.RefreshRequestMsg{})
				}); err != nil {
					return err
				}
				defer refresher.Stop()
			}

			_, err = p.Run()
			return err
		},
	}

	root.Flags().BoolP("version", "v", false, "Print version information")

	var fetchJSON bool
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and classify the library without the dashboard",
		Long:  "Fetch the owned games, classify the analyzed slice, and print the result.\n\nExamples:\n  - shelf fetch\n  - shelf fetch --json > library.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigChan
				cancel()
			}()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runFetch(ctx, app.NewApplication(cfg), fetchJSON, os.Stdout)
		},
	}
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "Print the labeled library as JSON")
	root.AddCommand(fetchCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
