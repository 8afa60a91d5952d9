package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	flashcardsPage   int
	flashcardsDepth  string
	flashcardsReview bool
	flashcardsJSON   bool
)

var flashcardsCmd = &cobra.Command{
	Use:   "flashcards [pdf]",
	Short: "Generate flashcards from a document",
	Long: `Generates question and answer cards for one page or every page.

With --review the cards are shown one at a time: press Enter to reveal the
answer, then y if you knew it. Cards you know are marked completed.`,
	Args: cobra.ExactArgs(1),
	RunE: runFlashcards,
}

func init() {
	flashcardsCmd.Flags().IntVarP(&flashcardsPage, "page", "p", 0, "page to use (0 = all pages)")
	flashcardsCmd.Flags().StringVarP(&flashcardsDepth, "depth", "d", "", "brief, standard or deep (default from settings)")
	flashcardsCmd.Flags().BoolVarP(&flashcardsReview, "review", "r", false, "review the cards interactively")
	flashcardsCmd.Flags().BoolVar(&flashcardsJSON, "json", false, "output cards as JSON")
	rootCmd.AddCommand(flashcardsCmd)
}

func runFlashcards(cmd *cobra.Command, args []string) error {
	ws, doc, release, err := openDocument(cmd, args[0])
	if err != nil {
		return err
	}
	defer release()

	depth, err := resolveDepth(flashcardsDepth, ws.Depth)
	if err != nil {
		return err
	}
	pages, err := selectPages(doc, flashcardsPage)
	if err != nil {
		return err
	}

	cards, err := ws.Flashcards.Generate(cmd.Context(), pages, depth)
	if err != nil {
		return fmt.Errorf("flashcard generation failed: %w", err)
	}

	if flashcardsJSON {
		return outputJSON(cmd, cards)
	}
	if len(cards) == 0 {
		cmd.Println("No flashcards generated.")
		return nil
	}

	if !flashcardsReview {
		for i, c := range cards {
			cmd.Printf("%d. [p.%d, %s] %s\n", i+1, c.PageNumber, c.Difficulty, c.Front)
			cmd.Printf("   %s\n\n", c.Back)
		}
		return nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	known := 0
	for i, c := range cards {
		cmd.Printf("Card %d of %d [p.%d, %s]\n", i+1, len(cards), c.PageNumber, c.Difficulty)
		cmd.Printf("  %s\n", c.Front)
		cmd.Print("Press Enter to reveal...")
		readLine(reader)
		cmd.Printf("  %s\n", c.Back)
		cmd.Print("Did you know it? [y/N]: ")
		answer := strings.ToLower(readLine(reader))
		completed := answer == "y" || answer == "yes"
		if _, err := ws.Flashcards.RecordAttempt(c.ID, completed); err != nil {
			return fmt.Errorf("recording attempt: %w", err)
		}
		if completed {
			known++
		}
		cmd.Println()
	}
	cmd.Printf("Known: %d/%d\n", known, len(cards))
	return nil
}
