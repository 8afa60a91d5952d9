package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var (
	summaryPage  int
	summaryDepth string
	summaryJSON  bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary [pdf]",
	Short: "Summarise a page or a whole document",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().IntVarP(&summaryPage, "page", "p", 0, "page to summarise (0 = whole document)")
	summaryCmd.Flags().StringVarP(&summaryDepth, "depth", "d", "", "brief, standard or deep (default from settings)")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "output the summary as JSON")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	ws, doc, release, err := openDocument(cmd, args[0])
	if err != nil {
		return err
	}
	defer release()

	depth, err := resolveDepth(summaryDepth, ws.Depth)
	if err != nil {
		return err
	}

	var summary *domain.Summary
	if summaryPage == 0 {
		summary, err = ws.Summaries.SummarizeDocument(cmd.Context(), doc, depth)
	} else {
		pages, selErr := selectPages(doc, summaryPage)
		if selErr != nil {
			return selErr
		}
		summary, err = ws.Summaries.SummarizePage(cmd.Context(), pages[0], depth)
	}
	if err != nil {
		return fmt.Errorf("summary failed: %w", err)
	}

	if summaryJSON {
		return outputJSON(cmd, summary)
	}

	if summary.PageNumber == 0 {
		cmd.Printf("Summary of %s\n\n", doc.Filename)
	} else {
		cmd.Printf("Summary of page %d\n\n", summary.PageNumber)
	}
	cmd.Println(summary.Text)
	if len(summary.KeyPoints) > 0 {
		cmd.Println()
		cmd.Println("Key points:")
		for _, p := range summary.KeyPoints {
			cmd.Printf("  - %s\n", p)
		}
	}
	return nil
}
