package outline

import (
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// MergeFragments folds consecutive siblings on the same level and page into
// the previous entry unless they start a new section. The merged entry
// adopts the fragment's children.
func MergeFragments(items []domain.TOCItem) []domain.TOCItem {
	if len(items) == 0 {
		return items
	}
	out := make([]domain.TOCItem, 0, len(items))
	for _, it := range items {
		it.Children = MergeFragments(it.Children)
		if n := len(out); n > 0 && isFragmentOf(out[n-1], it) {
			prev := &out[n-1]
			prev.Title = joinTitle(prev.Title, it.Title)
			prev.Metadata.OriginalText = joinTitle(prev.Metadata.OriginalText, it.Metadata.OriginalText)
			prev.Children = append(prev.Children, it.Children...)
			continue
		}
		out = append(out, it)
	}
	return out
}

func isFragmentOf(prev, it domain.TOCItem) bool {
	if prev.Metadata.IsProcessed || it.Metadata.IsProcessed {
		return false
	}
	return prev.Level == it.Level &&
		prev.PageNumber == it.PageNumber &&
		!IsNewSection(strings.TrimSpace(it.Title))
}

func joinTitle(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}
