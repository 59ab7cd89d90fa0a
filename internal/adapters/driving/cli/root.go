// Package cli implements the docchat command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docchat-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/core/services"
	"github.com/custodia-labs/docchat-cli/internal/logger"
	"github.com/custodia-labs/docchat-cli/internal/normalisers"
	"github.com/custodia-labs/docchat-cli/internal/normalisers/markdown"
	"github.com/custodia-labs/docchat-cli/internal/normalisers/pdf"
	"github.com/custodia-labs/docchat-cli/internal/normalisers/plaintext"
	"github.com/custodia-labs/docchat-cli/internal/postprocessors"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configDir string
	verbose   bool
)

// Shared application state, populated by bootstrap.
var (
	appConfig *file.Config
	store     *sqlite.Store

	ingestService   *services.IngestService
	askService      *services.AskService
	catalogService  *services.CatalogService
	documentService *services.DocumentService

	normaliserRegistry *normalisers.Registry

	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Ask questions about your documents",
	Long: `docchat indexes documents into a local vector store and answers
questions about them using retrieval-augmented generation.

Upload text, markdown or PDF files, then ask questions. Answers are
grounded in the uploaded content and cite their sources.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.docchat)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// bootstrapOptions selects which backends a command needs.
type bootstrapOptions struct {
	embedding bool
	llm       bool
}

// bootstrap loads configuration and wires the service graph. AI
// backends are only created and pinged when the command needs them.
func bootstrap(opts bootstrapOptions) error {
	if appConfig == nil {
		cfg, err := file.Load(configDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		appConfig = cfg
	}

	if store == nil {
		s, err := sqlite.NewStore(appConfig.DataDir)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		store = s
		logger.Debug("Store: %s", s.Path())
	}

	if normaliserRegistry == nil {
		normaliserRegistry = normalisers.NewRegistry()
		normaliserRegistry.Register(plaintext.New())
		normaliserRegistry.Register(markdown.New())
		normaliserRegistry.Register(pdf.New())
	}

	if opts.embedding && embeddingService == nil {
		svc, err := ai.CreateAndValidateEmbeddingService(appConfig.EmbeddingSettings())
		if err != nil {
			return err
		}
		embeddingService = svc
		logger.Debug("Embedding model: %s (%d dims)", svc.ModelName(), svc.Dimensions())
	}

	if opts.llm && llmService == nil {
		svc, err := ai.CreateAndValidateLLMService(appConfig.LLMSettings())
		if err != nil {
			return err
		}
		llmService = svc
		logger.Debug("LLM model: %s", svc.ModelName())
	}

	buildServices()
	return nil
}

// buildServices constructs the core services from whatever backends
// are available.
func buildServices() {
	docStore := store.DocumentStore()
	vectorIndex := store.VectorIndex()

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	chunkerProc, err := registry.Build("chunker", map[string]any{
		"chunk_size": appConfig.Chunking.Size,
		"overlap":    appConfig.Chunking.Overlap,
		"page_lines": appConfig.Chunking.PageLines,
	})
	if err != nil {
		// Defaults registered above always include the chunker.
		panic(err)
	}
	pipeline := postprocessors.NewPipeline(chunkerProc)

	ingestService = services.NewIngestService(
		docStore, vectorIndex, embeddingService, normaliserRegistry, pipeline,
		services.WithWorkers(appConfig.Ingest.Workers),
		services.WithMaxAttempts(appConfig.Ingest.MaxAttempts),
		services.WithRateLimit(appConfig.Ingest.RequestsPerSecond, appConfig.Ingest.Burst),
	)
	askService = services.NewAskService(
		vectorIndex, embeddingService, llmService,
		services.WithTopK(appConfig.Retrieval.TopK),
		services.WithSimilarityFloor(appConfig.Retrieval.SimilarityFloor),
		services.WithDocURLBase("/api/documents/"),
	)
	catalogService = services.NewCatalogService(vectorIndex)
	documentService = services.NewDocumentService(docStore, vectorIndex)
}

// closeServices releases backends on exit.
func closeServices() {
	if embeddingService != nil {
		embeddingService.Close()
	}
	if llmService != nil {
		llmService.Close()
	}
	if store != nil {
		store.Close()
	}
}
