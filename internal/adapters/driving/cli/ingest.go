package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Index documents for question answering",
	Long: `Extracts text from the given files, splits it into chunks, embeds
each chunk and writes the result to the local index. Re-ingesting a
filename replaces its previous chunks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := bootstrap(bootstrapOptions{embedding: true}); err != nil {
		return err
	}

	var failures int
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failures++
			continue
		}

		filename := filepath.Base(path)
		result, err := ingestService.IngestFile(cmd.Context(), filename, content)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", filename, err)
			failures++
			continue
		}

		cmd.Printf("%s: %d chunks indexed", filename, result.ChunksIndexed)
		if result.ChunksFailed > 0 {
			cmd.Printf(", %d failed", result.ChunksFailed)
		}
		cmd.Println()
		for _, warning := range result.Warnings {
			cmd.PrintErrf("  warning: %s\n", warning)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(args))
	}
	return nil
}
