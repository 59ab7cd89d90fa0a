package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat-cli/internal/connectors/filesystem"
)

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Keep the index in sync with a directory",
	Long: `Ingests every supported file in the directory, then watches for
changes. New and modified files are re-ingested; removed files are
deleted from the index. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := bootstrap(bootstrapOptions{embedding: true}); err != nil {
		return err
	}

	watcher := filesystem.NewWatcher(ingestService, documentService,
		normaliserRegistry.SupportedExtensions())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := watcher.Watch(ctx, args[0])
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
