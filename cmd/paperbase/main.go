// Command paperbase ingests PDF documents into per-document vector
// indexes and answers free-text queries with the closest passages.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hardwick-labs/paperbase/internal/adapters/driven/ai"
	configfile "github.com/hardwick-labs/paperbase/internal/adapters/driven/config/file"
	"github.com/hardwick-labs/paperbase/internal/adapters/driven/extractor/fitz"
	storagefile "github.com/hardwick-labs/paperbase/internal/adapters/driven/storage/file"
	"github.com/hardwick-labs/paperbase/internal/adapters/driven/storage/sqlite"
	"github.com/hardwick-labs/paperbase/internal/adapters/driving/cli"
	"github.com/hardwick-labs/paperbase/internal/core/services"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := configfile.NewConfigStore(os.Getenv("PAPERBASE_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dataDir := cfg.GetString("data_dir")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".paperbase", "docs")
	}

	library, err := storagefile.NewLibrary(dataDir)
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}
	statuses := storagefile.NewStatusStore(library.Root())

	// Both services may be nil when no provider is configured; the
	// read-only commands still work and ingestion fails at the
	// embedding stage with a clear error.
	embedder, err := ai.NewEmbeddingService(cfg)
	if err != nil {
		return fmt.Errorf("embedding service: %w", err)
	}
	describer, err := ai.NewImageDescriber(cfg)
	if err != nil {
		return fmt.Errorf("describer: %w", err)
	}

	var batcherOpts []services.BatcherOption
	if n := cfg.GetInt("embedding.batch_size"); n > 0 {
		batcherOpts = append(batcherOpts, services.WithBatchSize(n))
	}
	batcher := services.NewEmbeddingBatcher(embedder, batcherOpts...)

	dimensions := batcher.Dimensions()
	if dimensions == 0 {
		dimensions = cfg.GetInt("embedding.dimensions")
	}
	if dimensions == 0 {
		dimensions = 1536
	}
	stores := sqlite.NewOpener(dimensions)

	var segOpts []services.SegmenterOption
	if size := cfg.GetFloat("segmenter.heading_font_size"); size > 0 {
		segOpts = append(segOpts, services.WithHeadingFontSize(size))
	}
	if n := cfg.GetInt("segmenter.min_words"); n > 0 {
		segOpts = append(segOpts, services.WithMinPassageWords(n))
	}
	if n := cfg.GetInt("segmenter.max_words"); n > 0 {
		segOpts = append(segOpts, services.WithMaxPassageWords(n))
	}
	segmenter := services.NewSegmenter(segOpts...)

	pipeline := services.NewIngestPipeline(
		library,
		statuses,
		fitz.NewExtractor(),
		describer,
		batcher,
		segmenter,
		stores,
	)
	retrieval := services.NewRetrievalService(library, batcher, stores)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Config:    cfg,
		Library:   library,
		Statuses:  statuses,
		Ingestor:  pipeline,
		Retriever: retrieval,
	})
	return cli.Execute()
}
