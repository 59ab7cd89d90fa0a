package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	topicsPage  int
	topicsLimit int
	topicsJSON  bool
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Browse indexed chunks page by page",
	RunE:  runTopics,
}

func init() {
	topicsCmd.Flags().IntVar(&topicsPage, "page", 1, "page number (1-based)")
	topicsCmd.Flags().IntVarP(&topicsLimit, "limit", "n", 0, "entries per page")
	topicsCmd.Flags().BoolVar(&topicsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(topicsCmd)
}

func runTopics(cmd *cobra.Command, _ []string) error {
	if err := bootstrap(bootstrapOptions{}); err != nil {
		return err
	}

	page, err := catalogService.ListTopics(cmd.Context(), topicsPage, topicsLimit)
	if err != nil {
		return fmt.Errorf("listing topics: %w", err)
	}

	if topicsJSON {
		data, err := json.MarshalIndent(page, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling page: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(page.Topics) == 0 {
		cmd.Println("No indexed chunks.")
		return nil
	}

	for _, entry := range page.Topics {
		label := entry.Topic
		if label == "" {
			label = "(untitled)"
		}
		cmd.Printf("%-12s %s", label, entry.Filename)
		if entry.Page > 0 {
			cmd.Printf(" p.%d", entry.Page)
		}
		cmd.Println()
		cmd.Printf("  %s\n", entry.Preview)
	}

	cmd.Println()
	cmd.Printf("Page %d of %d entries", page.Page, page.Total)
	if page.HasMore {
		cmd.Printf(" (more available, try --page %d)", page.Page+1)
	}
	cmd.Println()
	return nil
}
