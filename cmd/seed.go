package cmd

import (
	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample listings",
	Long:  "Insert the built-in sample data, or fixtures from a YAML file, into every table that is still empty.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		return seedStore(cmd.Context(), store, seedFile)
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML fixtures file (default: built-in sample)")
	rootCmd.AddCommand(seedCmd)
}
