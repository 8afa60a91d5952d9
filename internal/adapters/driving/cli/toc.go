package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var (
	tocJSON bool
	tocRaw  bool
)

var tocCmd = &cobra.Command{
	Use:   "toc [pdf]",
	Short: "Print the table of contents of a document",
	Long: `Prints the table of contents of a PDF.

The outline embedded in the PDF is used when present; otherwise headings are
detected from font sizes. With an LLM configured, titles are cleaned up and
the result is cached for the next run. Use --raw to skip the cleaned titles.`,
	Args: cobra.ExactArgs(1),
	RunE: runTOC,
}

func init() {
	tocCmd.Flags().BoolVar(&tocJSON, "json", false, "output the outline as JSON")
	tocCmd.Flags().BoolVar(&tocRaw, "raw", false, "show extracted titles without AI enhancement")
	rootCmd.AddCommand(tocCmd)
}

func runTOC(cmd *cobra.Command, args []string) error {
	ws, doc, release, err := openDocument(cmd, args[0])
	if err != nil {
		return err
	}
	defer release()

	cache, err := ws.Session.TableOfContents()
	if err != nil {
		return fmt.Errorf("table of contents: %w", err)
	}
	items := cache.Best()
	if tocRaw {
		items = cache.Items
	}

	if tocJSON {
		return outputJSON(cmd, items)
	}

	if len(items) == 0 {
		cmd.Println("No table of contents found.")
		return nil
	}
	cmd.Printf("%s (%d pages)\n\n", doc.Filename, doc.Metadata.PageCount)
	printTOC(cmd, items, 0)
	return nil
}

func printTOC(cmd *cobra.Command, items []domain.TOCItem, depth int) {
	for _, item := range items {
		cmd.Printf("%s%s  p.%d\n", strings.Repeat("  ", depth), item.Title, item.PageNumber)
		printTOC(cmd, item.Children, depth+1)
	}
}
