package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/logger"
)

// maxDownloadBytes caps a single download.
const maxDownloadBytes = 512 << 20

// HTTPSource downloads over http and https.
type HTTPSource struct {
	client *http.Client
}

// NewHTTPSource creates a source whose requests time out after timeout.
func NewHTTPSource(timeout time.Duration) *HTTPSource {
	return &HTTPSource{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads location.
func (s *HTTPSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, location, err)
	}
	req.Header.Set("Accept", "application/pdf")

	defer logger.Timed("download " + location)()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", location, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, location)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("download %s: unexpected status %s", location, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", location, err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("download %s: larger than %d bytes", location, maxDownloadBytes)
	}
	logger.Debug("downloaded %d bytes from %s", len(data), location)
	return data, nil
}
