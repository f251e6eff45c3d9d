package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/jobboard/internal/api"
	"github.com/user/jobboard/internal/db"
	"github.com/user/jobboard/internal/seed"
)

var (
	serveAddr string
	serveSeed bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the listing API server",
	Long:  "Open the record database, optionally load sample data and serve the listing API until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if serveSeed || cfg.Server.Seed {
			if err := seedStore(ctx, store, ""); err != nil {
				return err
			}
		}

		if err := api.New(store).Listen(ctx, cfg.ListenAddr()); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		log.Printf("[api] stopped")
		return nil
	},
}

// seedStore loads fixtures from path, or the built-in sample when path is
// empty, into the tables that are still empty.
func seedStore(ctx context.Context, store *db.Store, path string) error {
	var fixtures *seed.Fixtures
	var err error
	if path != "" {
		fixtures, err = seed.LoadFile(path)
	} else {
		fixtures, err = seed.Load()
	}
	if err != nil {
		return err
	}

	report, err := seed.Apply(ctx, store, fixtures)
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	if report.Total() == 0 {
		log.Printf("[seed] tables already populated, nothing inserted")
		return nil
	}
	for kind, n := range report {
		log.Printf("[seed] inserted %d %s", n, kind.Label())
	}
	return nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: :3000 or $PORT)")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "Insert sample data into empty tables before serving")
	rootCmd.AddCommand(serveCmd)
}
