package domain

// OutlineNode is a PDF-native outline entry with its destination resolved.
type OutlineNode struct {
	Title string

	// PageNumber is 1-indexed. Unresolvable destinations default to 1.
	PageNumber int

	Children []OutlineNode
}

// TextRun is a positioned piece of text with a single font.
type TextRun struct {
	Text     string
	FontName string
	FontSize float64
	X        float64
	Y        float64
	Width    float64
}

// PageRuns are the text runs of one page.
type PageRuns struct {
	PageNumber int
	Runs       []TextRun
}

// TOCItem is one node of the table of contents.
type TOCItem struct {
	Title      string
	PageNumber int

	// Level is 0 for top-level entries.
	Level int

	Children []TOCItem
	Metadata TOCMetadata
}

// TOCMetadata records how an item was derived.
type TOCMetadata struct {
	FontSize     float64
	OriginalText string

	// IsProcessed marks items that have been rewritten. Later passes leave them alone.
	IsProcessed bool

	Tooltip string
}

// TOC processing states stored in TOCCache.ProcessingStatus.
const (
	TOCStatusPending    = "pending"
	TOCStatusProcessing = "processing"
	TOCStatusComplete   = "complete"
	TOCStatusFailed     = "failed"
)

// TOCCache is the persisted table of contents of a document.
type TOCCache struct {
	Items            []TOCItem
	AIProcessedItems []TOCItem
	IsAIProcessed    bool
	ProcessingStatus string
}

// Best returns the AI-processed items when available.
func (c TOCCache) Best() []TOCItem {
	if c.IsAIProcessed && len(c.AIProcessedItems) > 0 {
		return c.AIProcessedItems
	}
	return c.Items
}

// WalkTOC calls fn for every item depth-first, parents before children.
func WalkTOC(items []TOCItem, fn func(item *TOCItem)) {
	for i := range items {
		fn(&items[i])
		WalkTOC(items[i].Children, fn)
	}
}

// CountTOC returns the number of items in the tree.
func CountTOC(items []TOCItem) int {
	n := 0
	for i := range items {
		n += 1 + CountTOC(items[i].Children)
	}
	return n
}

// CloneTOC returns a deep copy of the tree.
func CloneTOC(items []TOCItem) []TOCItem {
	if items == nil {
		return nil
	}
	out := make([]TOCItem, len(items))
	for i, item := range items {
		out[i] = item
		out[i].Children = CloneTOC(item.Children)
	}
	return out
}

// OutlineSource is the raw material of a table of contents.
type OutlineSource struct {
	// Outline is the PDF-native outline, empty when the file has none.
	Outline []OutlineNode

	// Runs are positioned text runs per page. They are only collected
	// when the file has no outline.
	Runs []PageRuns
}

// HasOutline reports whether the PDF carries its own outline.
func (s OutlineSource) HasOutline() bool {
	return len(s.Outline) > 0
}
