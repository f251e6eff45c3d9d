package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/jobboard/internal/notify"
)

var watchOnce bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for newly posted jobs",
	Long: "Check the server for jobs posted since the last check and print an alert for them.\n" +
		"Runs until interrupted unless --once is given. Notifications must be enabled first\n" +
		"with 'jobboard notify enable'.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		kv, err := openState(cfg)
		if err != nil {
			return err
		}
		defer kv.Close()

		console := notify.NewConsole(os.Stdout, cfg.Client.BaseURL)
		w, err := newWatcher(cfg, newClient(cfg), kv, notify.Multi{console})
		if err != nil {
			return err
		}

		active, err := w.Active()
		if err != nil {
			return err
		}
		if !active {
			fmt.Println("Notifications are off. Run 'jobboard notify enable' first.")
			return nil
		}

		if watchOnce {
			res, err := w.Check(cmd.Context())
			if err != nil {
				return fmt.Errorf("check failed: %w", err)
			}
			switch {
			case !res.Ran:
				fmt.Println("Checked recently, skipping.")
			case len(res.NewJobs) == 0:
				fmt.Println("No new jobs.")
			}
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching %s every %s (Ctrl+C to stop)\n", cfg.Client.BaseURL, w.Config().Interval)
		return w.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Run a single check and exit")
	rootCmd.AddCommand(watchCmd)
}
