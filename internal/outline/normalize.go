package outline

import (
	"strings"
	"unicode"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Normalize removes boilerplate entries, splicing their children into their
// place, and cleans the remaining titles.
func Normalize(items []domain.TOCItem) []domain.TOCItem {
	if len(items) == 0 {
		return items
	}
	out := make([]domain.TOCItem, 0, len(items))
	for _, it := range items {
		children := Normalize(it.Children)
		if it.Metadata.IsProcessed {
			it.Children = children
			out = append(out, it)
			continue
		}
		title := CleanTitle(it.Title)
		if title == "" || IsExcluded(title) {
			for _, c := range children {
				out = append(out, relevel(c, it.Level))
			}
			continue
		}
		it.Title = title
		it.Children = children
		out = append(out, it)
	}
	return out
}

func relevel(item domain.TOCItem, level int) domain.TOCItem {
	item.Level = level
	for i := range item.Children {
		item.Children[i] = relevel(item.Children[i], level+1)
	}
	return item
}

// CleanTitle fixes numbering artifacts, ellipses, whitespace and ALL-CAPS.
func CleanTitle(title string) string {
	title = nanNumbering.ReplaceAllString(title, "$1.")
	title = strings.ReplaceAll(title, "…", "...")
	title = dotLeader.ReplaceAllString(title, "")
	title = spacedEllipsis.ReplaceAllString(title, "...")
	title = longEllipsis.ReplaceAllString(title, "...")
	title = strings.TrimSpace(whitespaceRun.ReplaceAllString(title, " "))
	return SentenceCase(title)
}

// SentenceCase lower-cases an ALL-CAPS title, capitalising its first letter
// and keeping any numbering prefix. Mixed-case titles are returned unchanged.
func SentenceCase(title string) string {
	if !isAllCaps(title) {
		return title
	}
	prefix := casePrefix.FindString(title)
	rest := []rune(strings.ToLower(title[len(prefix):]))
	for i, r := range rest {
		if unicode.IsLetter(r) {
			rest[i] = unicode.ToUpper(r)
			break
		}
	}
	return prefix + string(rest)
}

// isAllCaps needs at least two letters, all upper case.
func isAllCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters >= 2
}
