// Package envelope encodes persisted state slices with their schema version
// and save time, so stale slices are rejected instead of decoded into a new shape.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Envelope is the stored form of one slice.
type Envelope struct {
	Version int             `json:"version"`
	SavedAt string          `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

// Encode wraps v with version and savedAt (RFC 3339, UTC).
func Encode(version int, savedAt time.Time, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}
	return json.Marshal(Envelope{
		Version: version,
		SavedAt: savedAt.UTC().Format(time.RFC3339Nano),
		Data:    data,
	})
}

// Decode unwraps raw into v. It returns domain.ErrVersionMismatch without
// touching v when the stored version differs from want.
func Decode(raw []byte, want int, v any) (time.Time, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return time.Time{}, fmt.Errorf("decoding envelope: %w", err)
	}
	if env.Version != want {
		return time.Time{}, fmt.Errorf("%w: stored %d, want %d", domain.ErrVersionMismatch, env.Version, want)
	}
	savedAt, err := time.Parse(time.RFC3339Nano, env.SavedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("decoding saved_at: %w", err)
	}
	if len(env.Data) == 0 {
		return savedAt, errors.New("decoding state: empty data")
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return savedAt, fmt.Errorf("decoding state: %w", err)
	}
	return savedAt, nil
}
