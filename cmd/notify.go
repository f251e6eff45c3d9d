package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/jobboard/internal/notify"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Manage new-job notifications",
}

// withWatcher runs fn against a watcher over the local state, printing
// alerts to stdout.
func withWatcher(cmd *cobra.Command, fn func(w *notify.Watcher) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	kv, err := openState(cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	w, err := newWatcher(cfg, newClient(cfg), kv, notify.Multi{notify.NewConsole(os.Stdout, cfg.Client.BaseURL)})
	if err != nil {
		return err
	}
	return fn(w)
}

var notifyEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Turn on new-job notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatcher(cmd, func(w *notify.Watcher) error {
			return w.Enable(cmd.Context())
		})
	},
}

var notifyDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Turn off new-job notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatcher(cmd, func(w *notify.Watcher) error {
			if err := w.Disable(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Notifications disabled")
			return nil
		})
	},
}

var notifyDenyCmd = &cobra.Command{
	Use:   "deny",
	Short: "Refuse notifications and stop being asked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatcher(cmd, func(w *notify.Watcher) error {
			if err := w.Deny(); err != nil {
				return err
			}
			fmt.Println("Notifications blocked")
			return nil
		})
	},
}

var notifyDismissCmd = &cobra.Command{
	Use:   "dismiss",
	Short: "Hide the notification prompt for a while",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatcher(cmd, func(w *notify.Watcher) error {
			if err := w.Dismiss(time.Now()); err != nil {
				return err
			}
			fmt.Printf("Prompt hidden for %s\n", w.Config().DismissalPeriod)
			return nil
		})
	},
}

var notifyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show notification state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatcher(cmd, func(w *notify.Watcher) error {
			st, err := w.Status()
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(st)
			}

			fmt.Printf("Permission:  %s\n", st.Permission)
			fmt.Printf("Active:      %t\n", st.Active)
			if st.LastJobID > 0 {
				fmt.Printf("Last job id: %d\n", st.LastJobID)
			} else {
				fmt.Println("Last job id: none")
			}
			fmt.Printf("Last check:  %s\n", formatTime(st.LastCheck))
			fmt.Printf("Dismissed:   %s\n", formatTime(st.Dismissed))
			return nil
		})
	},
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.DateTime)
}

func init() {
	notifyStatusCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	notifyCmd.AddCommand(notifyEnableCmd, notifyDisableCmd, notifyDenyCmd, notifyDismissCmd, notifyStatusCmd)
	rootCmd.AddCommand(notifyCmd)
}
