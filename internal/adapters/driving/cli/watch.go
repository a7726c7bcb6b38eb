package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hardwick-labs/paperbase/internal/logger"
)

// settleDelay gives the writer time to finish copying a file before
// ingestion opens it.
const settleDelay = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and ingest new PDFs",
	Long: `Watches the directory for newly created PDF files and runs the
ingestion pipeline for each one. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if library == nil || statusStore == nil || ingestor == nil {
		return errors.New("ingestion not configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := args[0]
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for new PDF documents (ctrl-c to stop)\n", dir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if strings.ToLower(filepath.Ext(event.Name)) != ".pdf" {
				continue
			}

			handleNewDocument(ctx, cmd, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// handleNewDocument stores a freshly created file and spawns its
// ingestion, returning as soon as the document is queued so the event
// loop keeps draining while slow documents ingest in the background.
func handleNewDocument(ctx context.Context, cmd *cobra.Command, name string) {
	time.Sleep(settleDelay)
	slug, err := addToLibrary(ctx, name)
	if err != nil {
		logger.Error("failed to add %s: %v", name, err)
		return
	}
	cmd.Printf("Added %s\n", slug)

	go func() {
		if err := ingestor.Ingest(context.Background(), slug); err != nil {
			logger.Error("[%s] ingestion failed: %v", slug, err)
			return
		}
		logger.Info("[%s] document ready", slug)
	}()
}
