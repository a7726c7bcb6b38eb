package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hardwick-labs/paperbase/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serves the document API: upload, status polling, source file
download and passage search. Uploads are ingested in the background.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8093)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if library == nil || statusStore == nil || ingestor == nil || retriever == nil {
		return errors.New("server not configured")
	}

	addr := serveAddr
	if addr == "" && configStore != nil {
		addr = configStore.GetString("serve.addr")
	}
	if addr == "" {
		addr = httpapi.DefaultAddr
	}

	server := httpapi.New(httpapi.Services{
		Library:   library,
		Statuses:  statusStore,
		Ingestor:  ingestor,
		Retriever: retriever,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Serving on %s (ctrl-c to stop)\n", addr)
	return server.Run(ctx, addr)
}
