package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [pdf] [question]",
	Short: "Ask a question about a document",
	Long: `Indexes the document, retrieves the passages closest to the question
and answers from them, citing the pages used.

Requires both an embedding and an LLM provider.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the reply as JSON")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the JSON form of a reply.
type askOutput struct {
	Question   string              `json:"question"`
	Answer     string              `json:"answer"`
	Confidence float64             `json:"confidence"`
	Sources    []domain.ChatSource `json:"sources"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args[1:], " "))
	if question == "" {
		return errors.New("question must not be empty")
	}

	ws, _, release, err := openDocument(cmd, args[0])
	if err != nil {
		return err
	}
	defer release()

	if ws.Chat == nil {
		return domain.ErrLLMUnavailable
	}
	if err := ws.Session.Index(cmd.Context()); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	reply, err := ws.Chat.GenerateReply(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, askOutput{
			Question:   question,
			Answer:     reply.Content,
			Confidence: reply.Metadata.Confidence,
			Sources:    reply.Metadata.Sources,
		})
	}

	cmd.Println(reply.Content)
	if len(reply.Metadata.Sources) > 0 {
		pages := make([]string, len(reply.Metadata.Sources))
		for i, src := range reply.Metadata.Sources {
			pages[i] = fmt.Sprintf("p.%d", src.PageNumber)
		}
		cmd.Println()
		cmd.Printf("Sources: %s\n", strings.Join(pages, ", "))
	}
	return nil
}
