package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/user/jobboard/internal/client"
	"github.com/user/jobboard/internal/render"
)

var jobCmd = &cobra.Command{
	Use:   "job <id>",
	Short: "Show a single job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		job, err := newClient(cfg).Job(cmd.Context(), id)
		if errors.Is(err, client.ErrNotFound) {
			return fmt.Errorf("job %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("failed to load job: %w", err)
		}

		if jsonOutput {
			return outputJSON(job)
		}

		r := render.New(cfg.Client.Locale)
		fmt.Printf("%s\n", job.Title)
		fmt.Printf("  Department:    %s\n", job.Department)
		fmt.Printf("  Category:      %s\n", job.Category)
		fmt.Printf("  Location:      %s\n", render.OrNotSpecified(job.Location))
		fmt.Printf("  Qualification: %s\n", render.OrNotSpecified(job.Qualification))
		if job.Posts > 0 {
			fmt.Printf("  Posts:         %s\n", r.Number(job.Posts))
		}
		fmt.Printf("  Last date:     %s\n", r.Date(job.LastDate))
		if job.ApplicationLink != "" {
			fmt.Printf("  Apply:         %s\n", job.ApplicationLink)
		}
		fmt.Printf("  Share:         %s\n", render.ShareURL(cfg.Client.BaseURL, job.ID))
		return nil
	},
}

func init() {
	jobCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	rootCmd.AddCommand(jobCmd)
}
