// Package cli implements the command-line driving adapter.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/hardwick-labs/paperbase/internal/core/ports/driven"
	"github.com/hardwick-labs/paperbase/internal/core/ports/driving"
	"github.com/hardwick-labs/paperbase/internal/logger"
)

// version is overridden at build time via ldflags.
var version = "dev"

// Collaborators the commands act on, wired once from the composition
// root before Execute.
var (
	configStore driven.ConfigStore
	library     driven.Library
	statusStore driven.StatusStore
	ingestor    driving.Ingestor
	retriever   driving.Retriever
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "paperbase",
	Short: "Ingest PDF documents and search them by meaning",
	Long: `Paperbase ingests PDF documents into a per-document vector index
and answers free-text queries with the closest passages.

Each added document is extracted, segmented into passages, embedded and
stored under the data directory. Ingestion progress is recorded per
document and can be polled at any time.`,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Services groups everything the commands need.
type Services struct {
	Config    driven.ConfigStore
	Library   driven.Library
	Statuses  driven.StatusStore
	Ingestor  driving.Ingestor
	Retriever driving.Retriever
}

// SetServices wires the collaborators into the command tree.
func SetServices(s Services) {
	configStore = s.Config
	library = s.Library
	statusStore = s.Statuses
	ingestor = s.Ingestor
	retriever = s.Retriever
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
