// Package cli provides the command-line interface for folio.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Workspace is the set of driving ports of one reading session.
// Store is nil when no embedding provider is configured.
type Workspace struct {
	Session    driving.SessionService
	Store      driving.EmbeddingStore
	Chat       driving.ChatService
	Concepts   driving.ConceptService
	Summaries  driving.SummaryService
	Flashcards driving.FlashcardService
	MCQ        driving.MCQService
	Navigation driving.NavigationCoordinator

	// Depth is the configured default generation depth.
	Depth domain.Depth
}

// WorkspaceFactory creates a fresh workspace. The returned func releases it.
type WorkspaceFactory func(ctx context.Context) (*Workspace, func(), error)

var (
	settingsService driving.SettingsService
	newWorkspace    WorkspaceFactory
)

// SetServices injects the settings service and the workspace factory.
// Commands build their own from --config-dir when these are left unset.
func SetServices(settings driving.SettingsService, factory WorkspaceFactory) {
	settingsService = settings
	newWorkspace = factory
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Study companion for PDF documents",
	Long: `Folio reads a PDF and helps you study it.

It builds a table of contents, indexes the text for semantic search and
question answering, and generates key concepts, summaries, flashcards and
multiple-choice quizzes from its pages.

Configure an AI provider first:
  folio settings wizard`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.folio)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	// A missing .env file is normal.
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env loaded: %v", err)
	}
	return nil
}

// ensureServices builds whichever services were not injected.
func ensureServices() error {
	if settingsService != nil && newWorkspace != nil {
		return nil
	}
	settings, factory, err := defaultServices(configDir)
	if err != nil {
		return fmt.Errorf("initialising services: %w", err)
	}
	if settingsService == nil {
		settingsService = settings
	}
	if newWorkspace == nil {
		newWorkspace = factory
	}
	return nil
}

// openDocument creates a workspace and opens the PDF at url in it.
func openDocument(cmd *cobra.Command, url string) (*Workspace, *domain.Document, func(), error) {
	if err := ensureServices(); err != nil {
		return nil, nil, nil, err
	}
	ws, release, err := newWorkspace(cmd.Context())
	if err != nil {
		return nil, nil, nil, err
	}
	doc, err := ws.Session.Open(cmd.Context(), url)
	if err != nil {
		release()
		return nil, nil, nil, fmt.Errorf("opening %s: %w", url, err)
	}
	return ws, doc, release, nil
}

// resolveDepth parses a --depth value, falling back to the configured depth.
func resolveDepth(flag string, fallback domain.Depth) (domain.Depth, error) {
	if flag == "" {
		if fallback.IsValid() {
			return fallback, nil
		}
		return domain.DepthStandard, nil
	}
	depth := domain.Depth(flag)
	if !depth.IsValid() {
		return "", fmt.Errorf("%w: unknown depth %q (brief, standard or deep)", domain.ErrInvalidInput, flag)
	}
	return depth, nil
}

// selectPages returns the requested page, or every page with text for 0.
func selectPages(doc *domain.Document, n int) ([]domain.PageContent, error) {
	switch {
	case n < 0:
		return nil, fmt.Errorf("%w: page must not be negative", domain.ErrInvalidInput)
	case n == 0:
		pages := doc.PagesWithText()
		if len(pages) == 0 {
			return nil, fmt.Errorf("%w: %s has no extractable text", domain.ErrNoContent, doc.Filename)
		}
		return pages, nil
	}
	page, ok := doc.Page(n)
	if !ok {
		return nil, fmt.Errorf("%w: page %d of %d", domain.ErrNotFound, n, doc.Metadata.PageCount)
	}
	return []domain.PageContent{page}, nil
}

// outputJSON writes v as indented JSON.
func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
