package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [pdf]",
	Short: "Index a document for search and chat",
	Long: `Extracts the text of a PDF, splits it into chunks and embeds them.

The PDF may be a local path, an http(s) URL or an s3://bucket/key location.
Requires an embedding provider (folio settings embedding).`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ws, doc, release, err := openDocument(cmd, args[0])
	if err != nil {
		return err
	}
	defer release()

	cmd.Printf("Indexing %s (%d pages)...\n", doc.Filename, doc.Metadata.PageCount)
	if err := ws.Session.Index(cmd.Context()); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if ws.Store != nil {
		cmd.Printf("Indexed %d chunks.\n", ws.Store.Len())
	} else {
		cmd.Println("Indexed.")
	}

	if ws.Chat != nil {
		if suggestions := ws.Chat.Suggestions(); len(suggestions) > 0 {
			cmd.Println()
			cmd.Println("Try asking:")
			for _, s := range suggestions {
				cmd.Printf("  - %s\n", s)
			}
		}
	}
	return nil
}
