package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var (
	searchLimit     int
	searchThreshold float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [pdf] [query]",
	Short: "Search a document by meaning",
	Long: `Indexes the document and returns the passages most similar to the query.
Results from the same page are combined and ranked by similarity.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().Float64VarP(&searchThreshold, "threshold", "t", domain.DefaultSearchThreshold,
		"minimum similarity (0-1)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[1]

	ws, _, release, err := openDocument(cmd, args[0])
	if err != nil {
		return err
	}
	defer release()

	if ws.Store == nil {
		return domain.ErrEmbeddingUnavailable
	}
	if err := ws.Session.Index(cmd.Context()); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	results, err := ws.Store.SimilaritySearch(cmd.Context(), query, searchLimit, searchThreshold)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SimilarityResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SimilarityResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] Page P (Similarity)
		cmd.Printf("  [%d] Page %d (%.2f)\n", i+1, results[i].Metadata.PageNumber, results[i].Similarity)
		if snippet := snippetOf(results[i].Content, snippetLength); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}

	return nil
}

const snippetLength = 160

// snippetOf flattens s onto one line and cuts it to at most n runes.
func snippetOf(s string, n int) string {
	flat := strings.Join(strings.Fields(s), " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return string(runes[:n-1]) + "…"
}
