package tui

import "errors"

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("tui: session service is required")

// ErrMissingNavigation is returned when the navigation coordinator is not provided.
var ErrMissingNavigation = errors.New("tui: navigation coordinator is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")

// ErrChatUnavailable is reported when a question is asked without a chat service.
var ErrChatUnavailable = errors.New("tui: chat is not available, configure an LLM with 'folio settings'")
