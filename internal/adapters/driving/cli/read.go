package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui"
)

// readCmd represents the read command.
var readCmd = &cobra.Command{
	Use:   "read [pdf]",
	Short: "Read a document in the terminal",
	Long: `Opens a PDF in the interactive terminal reader.

The reader shows the page text next to the table of contents, with a page
strip and controls below. Selecting a heading or a page scrolls the text to
it; scrolling the text updates the current page everywhere.

Controls:
  n/], p/[   - Next / previous page
  g, G       - First / last page
  Tab        - Switch pane
  Enter      - Go to the selected heading or page
  /          - Ask a question about the document
  ?          - Toggle help
  q          - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in reader: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("reader crashed: %v", r)
		}
	}()

	ws, _, release, err := openDocument(cmd, args[0])
	if err != nil {
		return err
	}
	defer release()

	app, err := tui.NewApp(tui.NewPorts(ws.Session, ws.Navigation, ws.Chat))
	if err != nil {
		return fmt.Errorf("failed to create reader: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("reader error: %w", err)
	}
	return nil
}
