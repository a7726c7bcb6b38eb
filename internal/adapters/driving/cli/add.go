package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
)

var addCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Add a PDF document and ingest it",
	Long: `Copies the file into the document library, then runs the full
ingestion pipeline: text extraction, figure description, segmentation,
embedding and indexing. The command blocks until the document is ready.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if library == nil || statusStore == nil || ingestor == nil {
		return errors.New("ingestion not configured")
	}

	ctx := context.Background()
	slug, err := addToLibrary(ctx, args[0])
	if err != nil {
		return err
	}
	cmd.Printf("Added %s\n", slug)

	if err := ingestor.Ingest(ctx, slug); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	rec, err := statusStore.Read(ctx, slug)
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}
	cmd.Printf("Document %s is %s", slug, rec.Status)
	if rec.Chunks != nil {
		cmd.Printf(" (%d chunks)", *rec.Chunks)
	}
	cmd.Println()
	return nil
}

// addToLibrary stores the file under a fresh slug with a queued status
// record. Shared by the add and watch commands.
func addToLibrary(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	slug, err := library.Add(ctx, filepath.Base(path), f)
	if err != nil {
		return "", fmt.Errorf("failed to store document: %w", err)
	}
	if err := statusStore.Create(ctx, domain.StatusRecord{
		Slug:   slug,
		Status: domain.StatusQueued,
	}); err != nil {
		return "", fmt.Errorf("failed to create status record: %w", err)
	}
	return slug, nil
}
