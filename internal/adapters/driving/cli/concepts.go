package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var (
	conceptsPage  int
	conceptsDepth string
	conceptsTotal int
	conceptsRAG   bool
	conceptsJSON  bool
)

var conceptsCmd = &cobra.Command{
	Use:   "concepts [pdf]",
	Short: "Extract the key concepts of a document",
	Long: `Asks the LLM for the key concepts of one page or of the whole document.

Without --page, pages are sent in batches and --total concepts are spread over
them. With --rag, each page is first enriched with related passages from the
rest of the document (requires an embedding provider).`,
	Args: cobra.ExactArgs(1),
	RunE: runConcepts,
}

func init() {
	conceptsCmd.Flags().IntVarP(&conceptsPage, "page", "p", 0, "page to use (0 = all pages)")
	conceptsCmd.Flags().StringVarP(&conceptsDepth, "depth", "d", "", "brief, standard or deep (default from settings)")
	conceptsCmd.Flags().IntVar(&conceptsTotal, "total", 0, "concepts to extract across all pages (0 = by depth)")
	conceptsCmd.Flags().BoolVar(&conceptsRAG, "rag", false, "use retrieved context from the whole document")
	conceptsCmd.Flags().BoolVar(&conceptsJSON, "json", false, "output concepts as JSON")
	rootCmd.AddCommand(conceptsCmd)
}

func runConcepts(cmd *cobra.Command, args []string) error {
	ws, doc, release, err := openDocument(cmd, args[0])
	if err != nil {
		return err
	}
	defer release()

	depth, err := resolveDepth(conceptsDepth, ws.Depth)
	if err != nil {
		return err
	}
	pages, err := selectPages(doc, conceptsPage)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var concepts []domain.Concept
	switch {
	case conceptsRAG:
		if err := ws.Session.Index(ctx); err != nil {
			return fmt.Errorf("indexing failed: %w", err)
		}
		concepts, err = ws.Concepts.GenerateWithRAG(ctx, pages, depth)
	case conceptsPage != 0:
		concepts, err = ws.Concepts.GenerateForPage(ctx, pages[0], depth)
	default:
		total := conceptsTotal
		if total <= 0 {
			total = depth.ConceptsPerPage() * len(pages)
		}
		concepts, err = ws.Concepts.GenerateBatch(ctx, pages, total)
	}
	if err != nil {
		return fmt.Errorf("concept generation failed: %w", err)
	}

	if conceptsJSON {
		return outputJSON(cmd, concepts)
	}
	if len(concepts) == 0 {
		cmd.Println("No concepts found.")
		return nil
	}

	for _, c := range concepts {
		title := c.Title
		if c.Emoji != "" {
			title = c.Emoji + " " + title
		}
		cmd.Printf("[p.%d] %s (%.1f)\n", c.PageNumber, title, c.Importance)
		if c.Description != "" {
			cmd.Printf("      %s\n", c.Description)
		}
		if len(c.Tags) > 0 {
			cmd.Printf("      #%s\n", strings.Join(c.Tags, " #"))
		}
		cmd.Println()
	}
	return nil
}
