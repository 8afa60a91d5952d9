package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/thumbnails"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/views/doccontent"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Layout constants.
const (
	maxTOCWidth      = 34
	minWidthForTOC   = 70
	stripRows        = 3 // border plus one row of cells
	askRows          = 3 // bordered input
	fixedRows        = 3 // header, page controls and status bar
	maxAnswerDivisor = 3 // the answer panel takes at most a third of the screen
)

// scrollerSetter is implemented by coordinators that accept a renderer after creation.
type scrollerSetter interface {
	SetScroller(driven.Scroller)
}

// App is the reader following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
//
// The viewer, the table of contents, the thumbnail strip and the page
// controls never move each other directly. Every page change goes through
// the navigation coordinator, which scrolls the viewer back through the
// bridge and publishes the resulting state to all panes.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	viewer    *doccontent.View
	toc       *list.TOCList
	strip     *thumbnails.Strip
	ask       *input.AskInput
	statusbar *status.Bar

	bridge      *bridge
	unsubscribe func()

	document  *domain.Document
	pageCount int
	nav       domain.NavigationState

	// viewerPage is the last page reported from a user scroll.
	viewerPage int

	focus     messages.Pane
	prevFocus messages.Pane
	answer    *domain.ChatMessage
	question  string
	showHelp  bool
	err       error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the reader and connects it to the navigation coordinator.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		viewer:     doccontent.NewView(s),
		toc:        list.NewTOCList(s),
		strip:      thumbnails.NewStrip(s),
		ask:        input.NewAskInput(s),
		statusbar:  status.NewBar(s, km),
		bridge:     newBridge(),
		viewerPage: 1,
		focus:      messages.PaneViewer,
	}

	if setter, ok := ports.Navigation.(scrollerSetter); ok {
		setter.SetScroller(a.bridge)
	}
	a.unsubscribe = ports.Navigation.Subscribe(a.bridge.publish)
	a.applyState(ports.Navigation.State())

	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Scroller returns the viewer's scroll target, for coordinators wired by hand.
func (a *App) Scroller() driven.Scroller {
	return a.bridge
}

// Close detaches the app from the navigation coordinator.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("folio"),
		a.loadDocument(),
		a.bridge.waitForScroll(a.ctx),
		a.bridge.waitForState(a.ctx),
	)
}

// loadDocument fetches the open document and its table of contents.
func (a *App) loadDocument() tea.Cmd {
	return func() tea.Msg {
		doc, err := a.ports.Session.Document()
		if err != nil {
			return messages.DocumentLoaded{Err: err}
		}
		cache, err := a.ports.Session.TableOfContents()
		if err != nil {
			logger.Warn("tui: table of contents unavailable: %v", err)
		}
		return messages.DocumentLoaded{Document: doc, TOC: cache.Best()}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.MouseMsg:
		if a.focus == messages.PaneAsk {
			return a, nil
		}
		var cmd tea.Cmd
		a.viewer, cmd = a.viewer.Update(msg)
		a.reportViewerPage()
		return a, cmd

	case messages.DocumentLoaded:
		return a, a.handleDocumentLoaded(msg)

	case messages.ScrollRequested:
		a.viewer.ScrollTo(msg.Anchor)
		a.viewerPage = a.viewer.CurrentPage()
		a.ports.Navigation.EndAutoScroll()
		return a, a.bridge.waitForScroll(a.ctx)

	case messages.NavigationChanged:
		a.applyState(msg.State)
		return a, a.bridge.waitForState(a.ctx)

	case messages.AnswerReceived:
		a.handleAnswer(msg)
		return a, nil

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil
	}

	return a, nil
}

func (a *App) handleDocumentLoaded(msg messages.DocumentLoaded) tea.Cmd {
	if msg.Err != nil {
		a.setError(msg.Err)
		return nil
	}

	a.document = msg.Document
	a.pageCount = msg.Document.Metadata.PageCount
	if a.pageCount == 0 {
		a.pageCount = len(msg.Document.Pages)
	}

	a.viewer.SetDocument(msg.Document)
	a.toc.SetItems(msg.TOC)
	a.strip.SetPageCount(a.pageCount)
	a.statusbar.SetPageCount(a.pageCount)
	a.statusbar.SetState(status.StateReady)
	a.ports.Navigation.SetPageCount(a.pageCount)
	a.layout()

	// Resume wherever the coordinator already is.
	a.applyState(a.ports.Navigation.State())
	a.viewer.ScrollTo(domain.PageAnchor(a.nav.CurrentPage))
	a.viewerPage = a.viewer.CurrentPage()

	logger.Debug("tui: loaded %s with %d pages and %d outline entries",
		msg.Document.Filename, a.pageCount, a.toc.Count())
	return tea.SetWindowTitle("folio - " + msg.Document.Filename)
}

// handleKeyMsg routes keys: global bindings first, then the focused pane.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		return a, tea.Quit
	}
	if a.focus == messages.PaneAsk {
		return a.handleAskKey(msg)
	}
	if a.showHelp {
		if keymap.Matches(keyStr, a.keymap.Quit) {
			return a, tea.Quit
		}
		a.showHelp = false
		return a, nil
	}

	switch {
	case keymap.Matches(keyStr, a.keymap.Quit):
		return a, tea.Quit
	case keymap.Matches(keyStr, a.keymap.Help):
		a.showHelp = true
		return a, nil
	case keymap.Matches(keyStr, a.keymap.Back):
		a.dismissAnswer()
		return a, nil
	case keymap.Matches(keyStr, a.keymap.Ask):
		return a, a.openAsk()
	case keymap.Matches(keyStr, a.keymap.Focus):
		a.setFocus(a.focus.Next())
		return a, nil
	case keymap.Matches(keyStr, a.keymap.NextPage):
		a.navigate(domain.SourceControls, a.nav.CurrentPage+1)
		return a, nil
	case keymap.Matches(keyStr, a.keymap.PrevPage):
		a.navigate(domain.SourceControls, a.nav.CurrentPage-1)
		return a, nil
	case keymap.Matches(keyStr, a.keymap.FirstPage):
		a.navigate(domain.SourceControls, 1)
		return a, nil
	case keymap.Matches(keyStr, a.keymap.LastPage):
		a.navigate(domain.SourceControls, a.pageCount)
		return a, nil
	}

	var cmd tea.Cmd
	switch a.focus {
	case messages.PaneTOC:
		if keymap.Matches(keyStr, a.keymap.Select) {
			if entry, ok := a.toc.SelectedEntry(); ok {
				a.navigate(domain.SourceTOC, entry.Page)
			}
			return a, nil
		}
		a.toc, cmd = a.toc.Update(msg)
	case messages.PaneThumbnails:
		if keymap.Matches(keyStr, a.keymap.Select) {
			a.navigate(domain.SourceThumbnails, a.strip.Cursor())
			return a, nil
		}
		a.strip, cmd = a.strip.Update(msg)
	default:
		a.viewer, cmd = a.viewer.Update(msg)
		a.reportViewerPage()
	}
	return a, cmd
}

// handleAskKey edits the question until it is sent or dismissed.
func (a *App) handleAskKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, a.keymap.Back):
		a.closeAsk()
		return a, nil
	case keymap.Matches(keyStr, a.keymap.Submit):
		question := a.ask.Question()
		if question == "" {
			return a, nil
		}
		a.ask.Reset()
		a.closeAsk()
		a.statusbar.SetState(status.StateThinking)
		return a, a.askQuestion(question)
	}

	var cmd tea.Cmd
	a.ask, cmd = a.ask.Update(msg)
	return a, cmd
}

// navigate hands a page change to the coordinator and shows the result at once.
func (a *App) navigate(source domain.NavigationSource, page int) {
	if a.document == nil {
		return
	}
	a.ports.Navigation.HandlePageChange(source, page)
	state := a.ports.Navigation.State()
	a.applyState(state)

	// The coordinator only scrolls when the source changes, so repeated
	// moves from the focused pane are followed here.
	if source != domain.SourceViewer && a.viewer.CurrentPage() != state.CurrentPage {
		a.viewer.ScrollTo(domain.PageAnchor(state.CurrentPage))
		a.viewerPage = a.viewer.CurrentPage()
	}
}

// reportViewerPage tells the coordinator when user scrolling crosses into another page.
func (a *App) reportViewerPage() {
	if a.document == nil {
		return
	}
	page := a.viewer.CurrentPage()
	if page == a.viewerPage {
		return
	}
	a.viewerPage = page
	a.navigate(domain.SourceViewer, page)
}

// applyState shows a navigation snapshot in every pane.
func (a *App) applyState(state domain.NavigationState) {
	a.nav = state
	a.strip.SetCurrent(state.CurrentPage)
	a.toc.SetCurrentPage(state.CurrentPage)
	a.statusbar.SetNavigation(state)
}

func (a *App) setFocus(p messages.Pane) {
	a.focus = p
	a.toc.SetFocused(p == messages.PaneTOC)
	a.strip.SetFocused(p == messages.PaneThumbnails)
	if p != messages.PaneAsk {
		a.ask.Blur()
	}
}

func (a *App) openAsk() tea.Cmd {
	if a.ports.Chat == nil {
		a.setError(ErrChatUnavailable)
		return nil
	}
	a.prevFocus = a.focus
	a.setFocus(messages.PaneAsk)
	a.statusbar.SetState(status.StateAsking)
	a.layout()
	return a.ask.Focus()
}

func (a *App) closeAsk() {
	a.setFocus(a.prevFocus)
	if a.statusbar.State() == status.StateAsking {
		a.statusbar.SetState(status.StateReady)
	}
	a.layout()
}

// askQuestion indexes the document on first use and asks the chat service.
func (a *App) askQuestion(question string) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		if a.ports.Chat.Status() == domain.ChatUninitialized {
			if err := a.ports.Session.Index(ctx); err != nil {
				return messages.AnswerReceived{Question: question, Err: err}
			}
		}
		reply, err := a.ports.Chat.GenerateReply(ctx, question)
		return messages.AnswerReceived{Question: question, Message: reply, Err: err}
	}
}

func (a *App) handleAnswer(msg messages.AnswerReceived) {
	if msg.Err != nil {
		a.setError(msg.Err)
		return
	}
	a.err = nil
	a.question = msg.Question
	a.answer = msg.Message
	a.statusbar.Clear()
	a.layout()
}

func (a *App) dismissAnswer() {
	if a.answer == nil {
		return
	}
	a.answer = nil
	a.question = ""
	a.layout()
}

func (a *App) setError(err error) {
	a.err = err
	a.statusbar.SetState(status.StateError)
	a.statusbar.SetMessage(err.Error())
}

// tocWidth returns the sidebar width, 0 when the terminal is too narrow.
func (a *App) tocWidth() int {
	if a.width < minWidthForTOC {
		return 0
	}
	return min(maxTOCWidth, a.width/3)
}

// layout sizes every pane for the terminal and the open panels.
func (a *App) layout() {
	if !a.ready {
		return
	}
	bodyHeight := a.height - fixedRows - stripRows
	if answer := a.answerView(); answer != "" {
		bodyHeight -= lipgloss.Height(answer)
	}
	if a.focus == messages.PaneAsk {
		bodyHeight -= askRows
	}
	bodyHeight = max(bodyHeight-2, 1) // pane borders

	tocWidth := a.tocWidth()
	viewerWidth := a.width - 2
	if tocWidth > 0 {
		a.toc.SetDimensions(tocWidth-2, bodyHeight)
		viewerWidth -= tocWidth
	}
	a.viewer.SetDimensions(max(viewerWidth, 1), bodyHeight)
	a.strip.SetWidth(max(a.width-2, 1))
	a.ask.SetWidth(a.width)
	a.statusbar.SetWidth(a.width)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	if a.showHelp {
		return a.viewHelp()
	}

	sections := make([]string, 0, 7)
	sections = append(sections, a.viewHeader(), a.viewBody())
	if answer := a.answerView(); answer != "" {
		sections = append(sections, answer)
	}
	sections = append(sections,
		a.styles.PaneStyle(a.focus == messages.PaneThumbnails).Width(max(a.width-2, 1)).Render(a.strip.View()),
		thumbnails.Controls(a.styles, a.nav.CurrentPage, a.pageCount),
	)
	if a.focus == messages.PaneAsk {
		sections = append(sections, a.ask.View())
	}
	sections = append(sections, a.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) viewHeader() string {
	header := a.styles.Title.Render("folio")
	if a.document != nil {
		header += a.styles.Muted.Render("  " + a.document.Filename)
	}
	return header
}

func (a *App) viewBody() string {
	viewer := a.styles.PaneStyle(a.focus == messages.PaneViewer).Render(a.viewer.View())
	if a.tocWidth() == 0 {
		return viewer
	}
	toc := a.styles.PaneStyle(a.focus == messages.PaneTOC).
		Width(a.tocWidth() - 2).
		Render(a.toc.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, toc, viewer)
}

// answerView renders the last reply, capped to a share of the screen.
func (a *App) answerView() string {
	if a.answer == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(a.styles.Subtitle.Render("Q: " + a.question))
	b.WriteString("\n")
	b.WriteString(a.styles.Normal.Render(a.answer.Content))
	if len(a.answer.Metadata.Sources) > 0 {
		pages := make([]string, 0, len(a.answer.Metadata.Sources))
		for _, src := range a.answer.Metadata.Sources {
			pages = append(pages, fmt.Sprintf("p.%d", src.PageNumber))
		}
		b.WriteString("\n")
		b.WriteString(a.styles.Muted.Render("Sources: " + strings.Join(pages, ", ")))
	}

	width := max(a.width-2, 10)
	panel := a.styles.Answer.Width(width).Render(b.String())
	limit := max(a.height/maxAnswerDivisor, 3)
	if lines := strings.Split(panel, "\n"); len(lines) > limit {
		panel = strings.Join(lines[:limit], "\n")
	}
	return panel
}

// viewHelp renders the key reference.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("folio keys"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-8s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("press any key to return"))
	return b.String()
}

// Run starts the reader and blocks until it exits.
func (a *App) Run() error {
	defer a.Close()

	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()
	a.ctx = ctx

	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Focus returns the pane with keyboard focus.
func (a *App) Focus() messages.Pane {
	return a.focus
}

// Navigation returns the last navigation state shown.
func (a *App) Navigation() domain.NavigationState {
	return a.nav
}

// Document returns the loaded document.
func (a *App) Document() *domain.Document {
	return a.document
}

// Answer returns the reply being shown.
func (a *App) Answer() *domain.ChatMessage {
	return a.answer
}

// ShowingHelp returns whether the key reference is open.
func (a *App) ShowingHelp() bool {
	return a.showHelp
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been sized.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.layout()
}
