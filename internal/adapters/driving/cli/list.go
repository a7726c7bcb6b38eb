package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if library == nil || statusStore == nil {
		return errors.New("library not configured")
	}

	ctx := context.Background()
	slugs, err := library.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(slugs) == 0 {
		cmd.Println("No documents stored.")
		return nil
	}

	for _, slug := range slugs {
		status := "unknown"
		title := ""
		if rec, err := statusStore.Read(ctx, slug); err == nil {
			status = string(rec.Status)
			title = rec.Title
		}
		cmd.Printf("  %-40s %-18s %s\n", slug, status, title)
	}
	cmd.Printf("\nTotal: %d documents\n", len(slugs))
	return nil
}
