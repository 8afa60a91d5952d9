package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [pdf]",
	Short: "Serve a document over an HTTP API",
	Long: `Opens a PDF and serves it as a JSON API for a browser viewer.

Routes include /api/document, /api/pages/:n, /api/toc, /api/chat,
/api/search, /api/concepts, /api/summary, /api/flashcards, /api/mcq and
/api/navigation. The server stops on Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "127.0.0.1:8080", "address to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ws, doc, release, err := openDocument(cmd, args[0])
	if err != nil {
		return err
	}
	defer release()

	server, err := httpapi.NewServer(apiPorts(ws), httpapi.WithDefaultDepth(ws.Depth))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Serving %s on http://%s\n", doc.Filename, serveAddr)
	if err := server.Run(ctx, serveAddr); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// apiPorts maps a workspace onto the HTTP ports, leaving a missing store unset.
func apiPorts(ws *Workspace) *httpapi.Ports {
	ports := &httpapi.Ports{
		Session:    ws.Session,
		Chat:       ws.Chat,
		Concepts:   ws.Concepts,
		Summaries:  ws.Summaries,
		Flashcards: ws.Flashcards,
		MCQ:        ws.MCQ,
		Navigation: ws.Navigation,
	}
	if ws.Store != nil {
		ports.Store = ws.Store
	}
	return ports
}
