package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure NavigationCoordinator implements the interface.
var _ driving.NavigationCoordinator = (*NavigationCoordinator)(nil)

// Navigation timing defaults.
const (
	DefaultAutoScrollCooldown = time.Second
	DefaultExternalWindow     = 500 * time.Millisecond
)

// NavigationOption configures a NavigationCoordinator.
type NavigationOption func(*NavigationCoordinator)

// WithNavigationClock replaces the wall clock.
func WithNavigationClock(clock driven.Clock) NavigationOption {
	return func(n *NavigationCoordinator) {
		n.clock = clock
	}
}

// WithAutoScrollCooldown sets how long the auto-scroll flag stays up
// when no scroll-end is reported.
func WithAutoScrollCooldown(d time.Duration) NavigationOption {
	return func(n *NavigationCoordinator) {
		if d > 0 {
			n.cooldown = d
		}
	}
}

// WithExternalWindow sets how soon after another source's write a change
// counts as external.
func WithExternalWindow(d time.Duration) NavigationOption {
	return func(n *NavigationCoordinator) {
		if d > 0 {
			n.window = d
		}
	}
}

// NavigationCoordinator keeps the current page consistent across the viewer,
// the table of contents, the thumbnail strip and the page controls.
//
// A change from a non-viewer source that is not already active scrolls the viewer to the
// page and raises the auto-scroll flag; viewer events are ignored while it
// is up so the programmatic scroll cannot feed back into the state.
// A change from a non-active source that lands within the external window
// of the previous write updates the page immediately but claims the active
// source only when the window closes, unless a newer change supersedes it.
type NavigationCoordinator struct {
	scroller driven.Scroller
	clock    driven.Clock
	cooldown time.Duration
	window   time.Duration

	mu          sync.Mutex
	state       domain.NavigationState
	pageCount   int
	lastWrite   time.Time
	autoTimer   driven.Timer
	claimTimer  driven.Timer
	claimSeq    uint64
	subscribers map[int]func(domain.NavigationState)
	nextSubID   int
}

// NewNavigationCoordinator creates a coordinator on page 1 with the viewer active.
// scroller may be nil when nothing renders pages.
func NewNavigationCoordinator(scroller driven.Scroller, opts ...NavigationOption) *NavigationCoordinator {
	n := &NavigationCoordinator{
		scroller: scroller,
		clock:    systemClock{},
		cooldown: DefaultAutoScrollCooldown,
		window:   DefaultExternalWindow,
		state: domain.NavigationState{
			CurrentPage:  1,
			ActiveSource: domain.SourceViewer,
		},
		subscribers: make(map[int]func(domain.NavigationState)),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SetScroller replaces the scroll target, for renderers created after the coordinator.
func (n *NavigationCoordinator) SetScroller(scroller driven.Scroller) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scroller = scroller
}

// HandlePageChange records a page change requested by source.
func (n *NavigationCoordinator) HandlePageChange(source domain.NavigationSource, page int) {
	if !source.IsValid() {
		logger.Debug("navigation: ignoring unknown source %q", source)
		return
	}

	n.mu.Lock()
	if source == domain.SourceViewer && n.state.IsAutoScrolling {
		n.mu.Unlock()
		return
	}

	page = n.clampPage(page)
	now := n.clock.Now()
	active := n.state.ActiveSource
	sinceLast := now.Sub(n.lastWrite)
	external := source != active && !n.lastWrite.IsZero() && sinceLast < n.window

	n.cancelClaim()
	n.state.CurrentPage = page
	n.lastWrite = now

	if external {
		n.deferClaim(source, n.window-sinceLast)
	} else {
		n.state.ActiveSource = source
	}

	// Only a change of source scrolls the viewer; the active source keeps
	// its own view in step.
	var scroller driven.Scroller
	if source != domain.SourceViewer && source != active {
		scroller = n.scroller
		n.startAutoScroll()
	}
	snapshot, subs := n.snapshot()
	n.mu.Unlock()

	if scroller != nil {
		scroller.ScrollTo(domain.PageAnchor(page))
	}
	notify(subs, snapshot)
}

// deferClaim hands the active source to source once the window closes.
// Called with the lock held.
func (n *NavigationCoordinator) deferClaim(source domain.NavigationSource, after time.Duration) {
	if after <= 0 {
		after = n.window
	}
	n.claimSeq++
	seq := n.claimSeq
	n.claimTimer = n.clock.AfterFunc(after, func() {
		n.mu.Lock()
		if seq != n.claimSeq {
			n.mu.Unlock()
			return
		}
		n.claimTimer = nil
		n.state.ActiveSource = source
		snapshot, subs := n.snapshot()
		n.mu.Unlock()
		notify(subs, snapshot)
	})
}

// cancelClaim drops a pending deferred claim. Called with the lock held.
func (n *NavigationCoordinator) cancelClaim() {
	n.claimSeq++
	if n.claimTimer != nil {
		n.claimTimer.Stop()
		n.claimTimer = nil
	}
}

// startAutoScroll raises the auto-scroll flag and restarts its cool-down.
// Called with the lock held.
func (n *NavigationCoordinator) startAutoScroll() {
	n.state.IsAutoScrolling = true
	if n.autoTimer != nil {
		n.autoTimer.Stop()
	}
	var timer driven.Timer
	timer = n.clock.AfterFunc(n.cooldown, func() {
		n.mu.Lock()
		if n.autoTimer != timer || !n.state.IsAutoScrolling {
			n.mu.Unlock()
			return
		}
		n.autoTimer = nil
		n.state.IsAutoScrolling = false
		snapshot, subs := n.snapshot()
		n.mu.Unlock()
		notify(subs, snapshot)
	})
	n.autoTimer = timer
}

// EndAutoScroll clears the auto-scroll flag when a programmatic scroll finishes.
func (n *NavigationCoordinator) EndAutoScroll() {
	n.mu.Lock()
	if !n.state.IsAutoScrolling {
		n.mu.Unlock()
		return
	}
	if n.autoTimer != nil {
		n.autoTimer.Stop()
		n.autoTimer = nil
	}
	n.state.IsAutoScrolling = false
	snapshot, subs := n.snapshot()
	n.mu.Unlock()
	notify(subs, snapshot)
}

// State returns a snapshot of the navigation state.
func (n *NavigationCoordinator) State() domain.NavigationState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Subscribe registers fn to be called after every state change.
// fn runs outside the coordinator's lock and may call back into it.
func (n *NavigationCoordinator) Subscribe(fn func(domain.NavigationState)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextSubID
	n.nextSubID++
	n.subscribers[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subscribers, id)
	}
}

// SetPageCount bounds future page changes to [1, count]. 0 removes the bound.
func (n *NavigationCoordinator) SetPageCount(count int) {
	n.mu.Lock()
	n.pageCount = max(count, 0)
	clamped := n.clampPage(n.state.CurrentPage)
	changed := clamped != n.state.CurrentPage
	n.state.CurrentPage = clamped
	snapshot, subs := n.snapshot()
	n.mu.Unlock()
	if changed {
		notify(subs, snapshot)
	}
}

func (n *NavigationCoordinator) clampPage(page int) int {
	if n.pageCount > 0 && page > n.pageCount {
		page = n.pageCount
	}
	return max(page, 1)
}

// snapshot copies the state and subscriber list. Called with the lock held.
func (n *NavigationCoordinator) snapshot() (domain.NavigationState, []func(domain.NavigationState)) {
	subs := make([]func(domain.NavigationState), 0, len(n.subscribers))
	for id := 0; id < n.nextSubID; id++ {
		if fn, ok := n.subscribers[id]; ok {
			subs = append(subs, fn)
		}
	}
	return n.state, subs
}

func notify(subs []func(domain.NavigationState), state domain.NavigationState) {
	for _, fn := range subs {
		fn(state)
	}
}
