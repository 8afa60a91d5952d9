package domain

// NavigationSource identifies a UI surface that can change the current page.
type NavigationSource string

// Navigation sources.
const (
	SourceViewer     NavigationSource = "viewer"
	SourceTOC        NavigationSource = "toc"
	SourceThumbnails NavigationSource = "thumbnails"
	SourceControls   NavigationSource = "controls"
)

// IsValid returns true if the source is recognised.
func (s NavigationSource) IsValid() bool {
	switch s {
	case SourceViewer, SourceTOC, SourceThumbnails, SourceControls:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s NavigationSource) String() string {
	return string(s)
}

// AllNavigationSources returns every navigation source.
func AllNavigationSources() []NavigationSource {
	return []NavigationSource{SourceViewer, SourceTOC, SourceThumbnails, SourceControls}
}

// NavigationState is the shared current-page record of a reading session.
type NavigationState struct {
	CurrentPage     int
	ActiveSource    NavigationSource
	IsAutoScrolling bool
}
