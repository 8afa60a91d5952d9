package postprocessors

import (
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// DefaultProcessors is the cleaning order used when none is configured.
func DefaultProcessors() []string {
	return []string{"controlchars", "dehyphenate", "whitespace"}
}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("controlchars", func(map[string]any) (driven.PostProcessor, error) {
		return ControlChars{}, nil
	})
	r.Register("dehyphenate", func(map[string]any) (driven.PostProcessor, error) {
		return Dehyphenate{}, nil
	})
	r.Register("whitespace", buildWhitespace)
}

// DefaultPipeline returns the default cleaning pipeline.
func DefaultPipeline() *Pipeline {
	return NewPipeline(ControlChars{}, Dehyphenate{}, Whitespace{MaxBlankLines: 1})
}

// buildWhitespace creates a whitespace processor from generic config.
// Supported config keys:
//   - max_blank_lines (int): Empty lines kept between paragraphs (default: 1)
func buildWhitespace(cfg map[string]any) (driven.PostProcessor, error) {
	w := Whitespace{MaxBlankLines: 1}
	if n := getIntFromConfig(cfg, "max_blank_lines"); n > 0 {
		w.MaxBlankLines = n
	}
	return w, nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
