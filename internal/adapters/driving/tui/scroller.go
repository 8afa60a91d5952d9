package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// bridgeBuffer bounds queued coordinator events. Only the latest matters.
const bridgeBuffer = 8

// Ensure bridge implements the scroller port.
var _ driven.Scroller = (*bridge)(nil)

// bridge carries coordinator callbacks, which may run on timer goroutines,
// into the Bubble Tea event loop as messages.
type bridge struct {
	scrolls chan string
	states  chan domain.NavigationState
}

func newBridge() *bridge {
	return &bridge{
		scrolls: make(chan string, bridgeBuffer),
		states:  make(chan domain.NavigationState, bridgeBuffer),
	}
}

// ScrollTo queues a programmatic scroll. It never blocks the coordinator.
func (b *bridge) ScrollTo(anchor string) {
	push(b.scrolls, anchor)
}

// publish queues a state snapshot.
func (b *bridge) publish(state domain.NavigationState) {
	push(b.states, state)
}

// push sends v, dropping the oldest queued value when the channel is full.
func push[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// waitForScroll delivers the next queued scroll as a ScrollRequested message.
func (b *bridge) waitForScroll(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case anchor := <-b.scrolls:
			return messages.ScrollRequested{Anchor: anchor}
		case <-ctx.Done():
			return nil
		}
	}
}

// waitForState delivers the next queued state as a NavigationChanged message.
func (b *bridge) waitForState(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case state := <-b.states:
			return messages.NavigationChanged{State: state}
		case <-ctx.Done():
			return nil
		}
	}
}
