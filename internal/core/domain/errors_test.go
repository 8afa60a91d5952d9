package domain

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrLoad", ErrLoad},
		{"ErrPageExtraction", ErrPageExtraction},
		{"ErrEmbeddingService", ErrEmbeddingService},
		{"ErrGenerationParse", ErrGenerationParse},
		{"ErrInvalidConfig", ErrInvalidConfig},
		{"ErrDuplicateInitialization", ErrDuplicateInitialization},
		{"ErrNotInitialized", ErrNotInitialized},
		{"ErrBusy", ErrBusy},
		{"ErrNoContent", ErrNoContent},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrVersionMismatch", ErrVersionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_WrappedJoin(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrLoad, io.ErrUnexpectedEOF)

	assert.True(t, errors.Is(err, ErrLoad))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.False(t, errors.Is(err, ErrPageExtraction))
}

func TestPageExtractionError(t *testing.T) {
	cause := errors.New("bad xref")
	err := fmt.Errorf("extract: %w", &PageExtractionError{Page: 4, Err: cause})

	assert.True(t, errors.Is(err, ErrPageExtraction))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "page 4")

	var pe *PageExtractionError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, 4, pe.Page)
}

func TestPageExtractionError_NilCause(t *testing.T) {
	err := &PageExtractionError{Page: 2}
	assert.Equal(t, "page 2: page extraction failed", err.Error())
	assert.Nil(t, err.Unwrap())
}
