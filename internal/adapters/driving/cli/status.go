package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [slug]",
	Short: "Show a document's ingestion status",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if statusStore == nil {
		return errors.New("status store not configured")
	}

	rec, err := statusStore.Read(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}

	cmd.Printf("Document: %s\n\n", rec.Slug)
	cmd.Printf("  Status:  %s\n", rec.Status)
	if rec.Title != "" {
		cmd.Printf("  Title:   %s\n", rec.Title)
	}
	if rec.Pages > 0 {
		cmd.Printf("  Pages:   %d\n", rec.Pages)
	}
	if rec.Chunks != nil {
		cmd.Printf("  Chunks:  %d\n", *rec.Chunks)
	}
	if rec.Images != nil {
		cmd.Printf("  Images:  %d\n", *rec.Images)
	}
	if rec.Error != "" {
		cmd.Printf("  Error:   %s\n", rec.Error)
	}
	return nil
}
