package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var (
	quizPage  int
	quizDepth string
	quizJSON  bool
)

var quizCmd = &cobra.Command{
	Use:   "quiz [pdf]",
	Short: "Take a multiple-choice quiz on a document",
	Long: `Generates multiple-choice questions and asks them one at a time.

Answer with the option number, s to skip or q to stop. Use --json to print
the questions without taking the quiz.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuiz,
}

func init() {
	quizCmd.Flags().IntVarP(&quizPage, "page", "p", 0, "page to use (0 = all pages)")
	quizCmd.Flags().StringVarP(&quizDepth, "depth", "d", "", "brief, standard or deep (default from settings)")
	quizCmd.Flags().BoolVar(&quizJSON, "json", false, "output questions as JSON")
	rootCmd.AddCommand(quizCmd)
}

func runQuiz(cmd *cobra.Command, args []string) error {
	ws, doc, release, err := openDocument(cmd, args[0])
	if err != nil {
		return err
	}
	defer release()

	depth, err := resolveDepth(quizDepth, ws.Depth)
	if err != nil {
		return err
	}
	pages, err := selectPages(doc, quizPage)
	if err != nil {
		return err
	}

	questions, err := ws.MCQ.Generate(cmd.Context(), pages, depth)
	if err != nil {
		return fmt.Errorf("question generation failed: %w", err)
	}

	if quizJSON {
		return outputJSON(cmd, questions)
	}
	if len(questions) == 0 {
		cmd.Println("No questions generated.")
		return nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	correct, answered := 0, 0
	for i, q := range questions {
		cmd.Printf("Question %d of %d [p.%d, %s]\n", i+1, len(questions), q.PageNumber, q.Difficulty)
		cmd.Printf("  %s\n", q.Question)
		for j, opt := range q.Options {
			cmd.Printf("    %d. %s\n", j+1, opt)
		}

		choice, stop := promptChoice(cmd, reader, len(q.Options))
		if stop {
			break
		}
		if choice < 0 {
			cmd.Println("Skipped.")
			cmd.Println()
			continue
		}

		ok, err := ws.MCQ.RecordAnswer(q.ID, choice)
		if err != nil {
			return fmt.Errorf("recording answer: %w", err)
		}
		answered++
		if ok {
			correct++
			cmd.Println("Correct!")
		} else {
			cmd.Printf("Incorrect. The answer is %d. %s\n", q.CorrectIndex+1, optionText(q, q.CorrectIndex))
		}
		if q.Explanation != "" {
			cmd.Printf("  %s\n", q.Explanation)
		}
		cmd.Println()
	}

	cmd.Printf("Score: %d/%d\n", correct, answered)
	return nil
}

// promptChoice reads a 1-based option and returns it 0-based.
// It returns -1 for a skip and stop=true for q or end of input.
func promptChoice(cmd *cobra.Command, reader *bufio.Reader, options int) (int, bool) {
	for {
		cmd.Printf("Answer [1-%d, s to skip, q to quit]: ", options)
		input, err := reader.ReadString('\n')
		input = strings.ToLower(strings.TrimSpace(input))
		switch {
		case input == "q":
			return 0, true
		case input == "s":
			return -1, false
		case input == "" && err != nil:
			return 0, true
		}
		if n, convErr := strconv.Atoi(input); convErr == nil && n >= 1 && n <= options {
			return n - 1, false
		}
		if err != nil {
			return 0, true
		}
		cmd.Println("Please enter a valid option.")
	}
}

func optionText(q domain.MCQQuestion, i int) string {
	if i < 0 || i >= len(q.Options) {
		return ""
	}
	return q.Options[i]
}
