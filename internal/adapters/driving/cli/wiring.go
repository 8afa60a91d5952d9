package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/folio/internal/adapters/driven/ai"
	"github.com/custodia-labs/folio/internal/adapters/driven/config/file"
	"github.com/custodia-labs/folio/internal/adapters/driven/pdf/ledongthuc"
	"github.com/custodia-labs/folio/internal/adapters/driven/source"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/services"
	"github.com/custodia-labs/folio/internal/logger"
	"github.com/custodia-labs/folio/internal/postprocessors"
	"github.com/custodia-labs/folio/internal/postprocessors/chunker"
)

// defaultServices builds the settings service over the TOML config in dir
// and a factory that assembles a session from the current settings.
func defaultServices(dir string) (*services.SettingsService, WorkspaceFactory, error) {
	if dir == "" {
		var err error
		if dir, err = file.DefaultConfigDir(); err != nil {
			return nil, nil, err
		}
	}
	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening config: %w", err)
	}
	settings := services.NewSettingsService(configStore, ai.NewConfigValidator())

	factory := func(ctx context.Context) (*Workspace, func(), error) {
		return buildWorkspace(ctx, settings, dir)
	}
	return settings, factory, nil
}

// buildWorkspace wires the driven adapters into a new session.
func buildWorkspace(ctx context.Context, settingsSvc *services.SettingsService, dir string) (*Workspace, func(), error) {
	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w", err)
	}

	router, err := source.NewDefaultRouter(settings.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("configuring sources: %w", err)
	}

	aiResult := ai.Init(settings)
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}

	var state driven.StateStore
	var closers []func() error
	store, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		logger.Warn("state store unavailable, learning aids will not be saved: %v", err)
		state = memory.NewStateStore()
	} else {
		state = store
		closers = append(closers, store.Close)
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	cfg := services.SessionConfig{
		Loader:   ledongthuc.NewLoader(router),
		Cleaner:  postprocessors.DefaultPipeline(),
		Splitter: chunker.New(),
		Embedder: aiResult.EmbeddingService,
		LLM:      aiResult.LLMService,
		State:    state,
		Settings: *settings,
	}
	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		logger.Warn("using built-in prompts: %v", err)
	} else {
		cfg.Prompts = prompts
		go func() {
			if err := prompts.Watch(watchCtx); err != nil {
				logger.Debug("prompt watcher stopped: %v", err)
			}
		}()
	}

	session := services.NewSession(cfg)
	ws := &Workspace{
		Session:    session,
		Chat:       session.Chat,
		Concepts:   session.Concepts,
		Summaries:  session.Summaries,
		Flashcards: session.Flashcards,
		MCQ:        session.MCQ,
		Navigation: session.Navigation,
		Depth:      settings.Generation.Depth,
	}
	if session.Store != nil {
		ws.Store = session.Store
	}

	release := func() {
		stopWatch()
		if err := session.Close(); err != nil {
			logger.Warn("closing session: %v", err)
		}
		aiResult.Close()
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				logger.Warn("closing state store: %v", err)
			}
		}
	}
	return ws, release, nil
}
