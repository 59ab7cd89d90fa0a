package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askJSON      bool
	askNoSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the indexed documents",
	Long: `Retrieves the most relevant chunks for the question and asks the
language model to answer using only that content. Questions naming a
topic marker (e.g. "Topic 3-2") look that topic up directly.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().BoolVar(&askNoSources, "no-sources", false, "omit the source listing")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := bootstrap(bootstrapOptions{embedding: true, llm: true}); err != nil {
		return err
	}

	answer, err := askService.Ask(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)

	if askNoSources || len(answer.Sources) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, source := range answer.Sources {
		cmd.Printf("  [%d] %s (%.0f%%)", i+1, source.Filename, source.Score)
		if source.Topic != "" {
			cmd.Printf(" %s", source.Topic)
		}
		if source.Page > 0 {
			cmd.Printf(", page %d", source.Page)
		}
		cmd.Println()
		cmd.Printf("      %s\n", source.Preview)
	}
	return nil
}
