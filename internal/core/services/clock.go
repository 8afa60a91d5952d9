package services

import (
	"time"

	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// systemClock is the wall clock.
type systemClock struct{}

var _ driven.Clock = systemClock{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) driven.Timer {
	return time.AfterFunc(d, f)
}
