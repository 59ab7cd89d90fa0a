package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage indexed documents",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	RunE:  runDocumentsList,
}

var documentsContentCmd = &cobra.Command{
	Use:   "content <id>",
	Short: "Print the indexed text of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsContent,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document and its index entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

func init() {
	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsContentCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if err := bootstrap(bootstrapOptions{}); err != nil {
		return err
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	for _, doc := range docs {
		cmd.Printf("%s  %s  %s\n", doc.ID, doc.CreatedAt.Format("2006-01-02 15:04"), doc.Filename)
	}
	return nil
}

func runDocumentsContent(cmd *cobra.Command, args []string) error {
	if err := bootstrap(bootstrapOptions{}); err != nil {
		return err
	}

	content, err := documentService.GetContent(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting content: %w", err)
	}
	cmd.Print(content)
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if err := bootstrap(bootstrapOptions{}); err != nil {
		return err
	}

	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}
