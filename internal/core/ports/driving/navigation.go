package driving

import "github.com/custodia-labs/folio/internal/core/domain"

// NavigationCoordinator arbitrates the current page across navigation sources.
type NavigationCoordinator interface {
	// HandlePageChange records a page change requested by source.
	HandlePageChange(source domain.NavigationSource, page int)

	// EndAutoScroll clears the auto-scroll flag when a programmatic scroll finishes.
	EndAutoScroll()

	// State returns a snapshot of the navigation state.
	State() domain.NavigationState

	// Subscribe registers fn to be called after every state change.
	// The returned func removes the subscription.
	Subscribe(fn func(domain.NavigationState)) func()

	// SetPageCount bounds future page changes to [1, n].
	SetPageCount(n int)
}
