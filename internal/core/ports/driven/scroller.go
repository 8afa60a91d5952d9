package driven

import "time"

// Scroller brings a rendered page anchor into view.
type Scroller interface {
	ScrollTo(anchor string)
}

// Clock abstracts time for components with cool-downs and expiry.
type Clock interface {
	Now() time.Time

	// AfterFunc calls f in its own goroutine after d.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable pending call.
type Timer interface {
	Stop() bool
}
