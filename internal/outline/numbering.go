package outline

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// NeedsNumbering reports whether a top-level title asks for a numbered outline.
func NeedsNumbering(title string) bool {
	return numberingTrigger.MatchString(title) || numberedPrefix.MatchString(title)
}

// StripNumbering removes a leading "1.", "2.3" or "4)" prefix.
func StripNumbering(title string) string {
	return strings.TrimSpace(numberedPrefix.ReplaceAllString(title, ""))
}

// ApplyNumbering gives every qualifying top-level entry the next "N." prefix
// and its descendants "N.M." prefixes, replacing any existing numbering.
// Processed entries keep their title but still take up a number.
func ApplyNumbering(items []domain.TOCItem) []domain.TOCItem {
	n := 0
	for i := range items {
		if !NeedsNumbering(items[i].Title) {
			continue
		}
		n++
		prefix := strconv.Itoa(n) + "."
		number(&items[i], prefix)
	}
	return items
}

func number(item *domain.TOCItem, prefix string) {
	if !item.Metadata.IsProcessed {
		item.Title = prefix + " " + StripNumbering(item.Title)
	}
	for j := range item.Children {
		number(&item.Children[j], prefix+strconv.Itoa(j+1)+".")
	}
}
