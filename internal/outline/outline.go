// Package outline builds and refines tables of contents.
//
// Two acquisition paths are supported: the PDF's built-in outline
// (FromOutline) and headings derived from font sizes (DetectHeadings).
// Either result is then refined by Refine: fragment merging, numbering
// and normalisation. Every pass leaves items marked IsProcessed alone,
// so refining an already processed tree changes nothing.
package outline

import (
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// FromOutline converts resolved outline nodes into TOC items.
func FromOutline(nodes []domain.OutlineNode) []domain.TOCItem {
	return fromOutline(nodes, 0)
}

func fromOutline(nodes []domain.OutlineNode, level int) []domain.TOCItem {
	if len(nodes) == 0 {
		return nil
	}
	items := make([]domain.TOCItem, 0, len(nodes))
	for _, n := range nodes {
		title := strings.TrimSpace(n.Title)
		if title == "" && len(n.Children) == 0 {
			continue
		}
		page := n.PageNumber
		if page < 1 {
			page = 1
		}
		items = append(items, domain.TOCItem{
			Title:      title,
			PageNumber: page,
			Level:      level,
			Children:   fromOutline(n.Children, level+1),
			Metadata:   domain.TOCMetadata{OriginalText: n.Title},
		})
	}
	return items
}

// Nest turns a flat, ordered list into a tree. An item becomes a child of
// the nearest preceding item with a lower level. Levels are rewritten to
// the resulting depth.
func Nest(flat []domain.TOCItem) []domain.TOCItem {
	type node struct {
		item     domain.TOCItem
		children []int
	}
	type open struct{ level, idx int }

	nodes := make([]node, 0, len(flat))
	var roots []int
	var stack []open

	for _, it := range flat {
		for len(stack) > 0 && stack[len(stack)-1].level >= it.Level {
			stack = stack[:len(stack)-1]
		}
		it.Children = nil
		nodes = append(nodes, node{item: it})
		idx := len(nodes) - 1
		if len(stack) == 0 {
			roots = append(roots, idx)
		} else {
			parent := stack[len(stack)-1].idx
			nodes[parent].children = append(nodes[parent].children, idx)
		}
		stack = append(stack, open{it.Level, idx})
	}

	var build func(idx []int, depth int) []domain.TOCItem
	build = func(idx []int, depth int) []domain.TOCItem {
		if len(idx) == 0 {
			return nil
		}
		out := make([]domain.TOCItem, 0, len(idx))
		for _, i := range idx {
			it := nodes[i].item
			it.Level = depth
			it.Children = build(nodes[i].children, depth+1)
			out = append(out, it)
		}
		return out
	}
	return build(roots, 0)
}

// Flatten returns the tree in document order without children.
func Flatten(items []domain.TOCItem) []domain.TOCItem {
	var out []domain.TOCItem
	domain.WalkTOC(items, func(it *domain.TOCItem) {
		flat := *it
		flat.Children = nil
		out = append(out, flat)
	})
	return out
}
