package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/user/jobboard/internal/bookmark"
)

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark <job-id>",
	Short: "Toggle a bookmark",
	Long:  "Bookmark a job, or remove the bookmark if it is already set.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}

		marks, closeState, err := openBookmarks(cmd)
		if err != nil {
			return err
		}
		defer closeState()

		on, err := marks.Toggle(id)
		if err != nil {
			return fmt.Errorf("failed to update bookmark: %w", err)
		}
		if on {
			fmt.Printf("Bookmarked job %d\n", id)
		} else {
			fmt.Printf("Removed bookmark for job %d\n", id)
		}
		return nil
	},
}

var bookmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarked job ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		marks, closeState, err := openBookmarks(cmd)
		if err != nil {
			return err
		}
		defer closeState()

		ids := marks.All()
		if jsonOutput {
			return outputJSON(ids)
		}
		if len(ids) == 0 {
			fmt.Println("No bookmarks yet.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

func openBookmarks(cmd *cobra.Command) (*bookmark.Store, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	kv, err := openState(cfg)
	if err != nil {
		return nil, nil, err
	}
	marks, err := bookmark.Load(kv)
	if err != nil {
		kv.Close()
		return nil, nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}
	return marks, kv.Close, nil
}

func init() {
	bookmarkListCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	bookmarkCmd.AddCommand(bookmarkListCmd)
	rootCmd.AddCommand(bookmarkCmd)
}
