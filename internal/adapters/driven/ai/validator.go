package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// sampleText is embedded to check the vector size a model really returns.
const sampleText = "folio embedding check"

// ConfigValidator checks provider settings before the settings command saves them.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator with the default ping timeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// WithTimeout returns a copy of v that gives up on a provider after d.
func (v *ConfigValidator) WithTimeout(d time.Duration) *ConfigValidator {
	return &ConfigValidator{timeout: d}
}

// ValidateEmbedding pings the embedding provider and embeds a short sample.
// A model whose vectors differ from its expected size would break every
// similarity search, so that is reported as domain.ErrDimensionMismatch.
// Unconfigured settings are valid.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return unavailable(domain.ErrEmbeddingUnavailable, settings.Provider, err)
	}

	vec, err := svc.Embed(ctx, sampleText)
	if err != nil {
		return unavailable(domain.ErrEmbeddingUnavailable, settings.Provider, err)
	}
	if want := svc.Dimensions(); want > 0 && len(vec) != want {
		return fmt.Errorf("%w: %s returned %d values, expected %d",
			domain.ErrDimensionMismatch, svc.ModelName(), len(vec), want)
	}
	return nil
}

// ValidateLLM pings the completion provider. Unconfigured settings are valid.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return unavailable(domain.ErrLLMUnavailable, settings.Provider, err)
	}
	return nil
}

// unavailable tags err with sentinel unless it already names a config problem.
func unavailable(sentinel error, provider domain.AIProvider, err error) error {
	if errors.Is(err, domain.ErrInvalidConfig) || errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", sentinel, provider, err)
}
