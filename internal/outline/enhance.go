package outline

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// MaxTooltipLength bounds generated tooltips.
const MaxTooltipLength = 120

// MaxTitleLength returns the longest acceptable title for a level.
func MaxTitleLength(level int) int {
	switch {
	case level <= 0:
		return 40
	case level == 1:
		return 50
	default:
		return 60
	}
}

// Refine runs fragment merging, numbering and normalisation in that order.
func Refine(items []domain.TOCItem) []domain.TOCItem {
	items = domain.CloneTOC(items)
	items = MergeFragments(items)
	items = ApplyNumbering(items)
	return Normalize(items)
}

// NeedsEnhancement reports whether an unprocessed item should be rewritten.
func NeedsEnhancement(item domain.TOCItem) bool {
	if item.Metadata.IsProcessed {
		return false
	}
	return utf8.RuneCountInString(item.Title) > MaxTitleLength(item.Level) || IsMalformed(item.Title)
}

// IsMalformed reports titles that read badly: no leading capital, doubled
// spaces, ellipses, dangling punctuation or unbalanced parentheses.
func IsMalformed(title string) bool {
	body := StripNumbering(title)
	if body == "" {
		return true
	}
	first, _ := utf8.DecodeRuneInString(body)
	if unicode.IsLetter(first) && !unicode.IsUpper(first) {
		return true
	}
	if strings.Contains(title, "  ") || strings.Contains(title, "...") || strings.Contains(title, "…") {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(title)
	if strings.ContainsRune(",;:-–", last) {
		return true
	}
	return strings.Count(title, "(") != strings.Count(title, ")")
}

// Candidate is an item selected for enhancement. Index is its position in
// depth-first order.
type Candidate struct {
	Index int
	Title string
	Level int
}

// Candidates returns the items that need enhancement in depth-first order.
func Candidates(items []domain.TOCItem) []Candidate {
	var out []Candidate
	i := 0
	domain.WalkTOC(items, func(it *domain.TOCItem) {
		if NeedsEnhancement(*it) {
			out = append(out, Candidate{Index: i, Title: it.Title, Level: it.Level})
		}
		i++
	})
	return out
}

// Rewrite is a generated replacement for one item.
type Rewrite struct {
	Title   string
	Tooltip string
}

// ApplyRewrites replaces the titles of items at the given depth-first
// positions, enforces the length limits and marks them processed.
// Processed items are never rewritten again.
func ApplyRewrites(items []domain.TOCItem, rewrites map[int]Rewrite) int {
	applied := 0
	i := 0
	domain.WalkTOC(items, func(it *domain.TOCItem) {
		rw, ok := rewrites[i]
		i++
		if !ok || it.Metadata.IsProcessed {
			return
		}
		title := CleanTitle(rw.Title)
		if title == "" {
			return
		}
		if it.Metadata.OriginalText == "" {
			it.Metadata.OriginalText = it.Title
		}
		it.Title = Truncate(title, MaxTitleLength(it.Level))
		it.Metadata.Tooltip = Truncate(strings.TrimSpace(rw.Tooltip), MaxTooltipLength)
		it.Metadata.IsProcessed = true
		applied++
	})
	return applied
}

// Truncate shortens s to at most n runes, cutting at a word boundary when
// one exists in the second half, and drops trailing punctuation.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	cut := string(runes[:n])
	if idx := strings.LastIndex(cut, " "); idx > 0 && utf8.RuneCountInString(cut[:idx]) >= n/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,;:-–.")
}
