package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/user/jobboard/internal/bookmark"
	"github.com/user/jobboard/internal/notify"
	"github.com/user/jobboard/internal/render"
	"github.com/user/jobboard/internal/tui"
)

// logFile receives log output while the browser owns the terminal.
const logFile = "jobboard.log"

var noWatch bool

var rootCmd = &cobra.Command{
	Use:   "jobboard",
	Short: "Government job listings: API server and terminal browser",
	Long: "Browse government job openings, results, admit cards and answer keys from a jobboard\n" +
		"server, bookmark jobs and get alerted when new ones are posted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		f, err := os.OpenFile(filepath.Join(cfg.DataDir, logFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)

		kv, err := openState(cfg)
		if err != nil {
			return err
		}
		defer kv.Close()

		marks, err := bookmark.Load(kv)
		if err != nil {
			return fmt.Errorf("failed to load bookmarks: %w", err)
		}

		api := newClient(cfg)
		deps := tui.Deps{
			API:       api,
			Bookmarks: marks,
			Renderer:  render.New(cfg.Client.Locale),
			BaseURL:   cfg.Client.BaseURL,
		}
		if !noWatch {
			banner := tui.NewBanner()
			notifiers := notify.Multi{banner}
			w, err := newWatcher(cfg, api, kv, notifiers)
			if err != nil {
				return err
			}
			deps.Watcher = w
			deps.Banner = banner
		}

		return tui.Run(cmd.Context(), deps)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (default: ~/.jobboard)")
	rootCmd.PersistentFlags().String("server", "", "Base URL of the jobboard server (default: http://localhost:3000)")
	rootCmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not check for new jobs while browsing")
}
