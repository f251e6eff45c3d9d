package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/jobboard/internal/client"
	"github.com/user/jobboard/internal/config"
	"github.com/user/jobboard/internal/db"
	"github.com/user/jobboard/internal/localstate"
	"github.com/user/jobboard/internal/notify"
)

// loadConfig applies the persistent flags on top of config.Load.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		os.Setenv("JOBBOARD_DATA_DIR", dir)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cfg.Client.BaseURL = server
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*db.Store, error) {
	store, err := db.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

func openState(cfg *config.Config) (*localstate.SQLite, error) {
	kv, err := localstate.OpenSQLite(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local state: %w", err)
	}
	return kv, nil
}

func newClient(cfg *config.Config) *client.Client {
	return client.New(cfg.Client.BaseURL, cfg.Client.Timeout)
}

// newWatcher builds a watcher delivering to notifiers. With a Telegram bot
// configured, alerts also go to the chat and the chat is registered as the
// push subscription endpoint.
func newWatcher(cfg *config.Config, api *client.Client, kv localstate.Store, notifiers notify.Multi) (*notify.Watcher, error) {
	wcfg := cfg.WatcherConfig()
	var opts []notify.Option

	if tg := cfg.Notify.Telegram; tg.Token != "" {
		bot, err := notify.NewTelegram(tg.Token, tg.ChatID, cfg.Client.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to start telegram notifier: %w", err)
		}
		notifiers = append(notifiers, bot)
		wcfg.Endpoint = bot.Endpoint()
		opts = append(opts, notify.WithSubscriber(api))
	}

	return notify.New(wcfg, api, kv, notifiers, opts...), nil
}
