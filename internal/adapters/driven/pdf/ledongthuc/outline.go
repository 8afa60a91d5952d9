package ledongthuc

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/logger"
)

// maxOutlineNodes bounds the walk over malformed, cyclic outlines.
const maxOutlineNodes = 10000

// Outline returns the document outline with destinations resolved to
// 1-indexed pages. Destinations that cannot be resolved point at page 1.
func (d *Document) Outline() (nodes []domain.OutlineNode, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, errClosed
	}
	defer recoverAs(&err, func(msg string) error { return fmt.Errorf("reading outline: %s", msg) })

	root := d.reader.Trailer().Key("Root")
	first := root.Key("Outlines").Key("First")
	if first.IsNull() {
		return nil, nil
	}
	w := &outlineWalker{doc: d, root: root}
	return w.siblings(first), nil
}

type outlineWalker struct {
	doc     *Document
	root    pdf.Value
	visited int
}

func (w *outlineWalker) siblings(item pdf.Value) []domain.OutlineNode {
	var nodes []domain.OutlineNode
	for ; !item.IsNull() && item.Kind() == pdf.Dict; item = item.Key("Next") {
		w.visited++
		if w.visited > maxOutlineNodes {
			logger.Warn("outline exceeds %d entries, truncating", maxOutlineNodes)
			return nodes
		}
		node := domain.OutlineNode{
			Title:      strings.TrimSpace(item.Key("Title").Text()),
			PageNumber: w.destination(item),
		}
		if child := item.Key("First"); !child.IsNull() {
			node.Children = w.siblings(child)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// destination resolves the Dest entry of an outline item, or the D entry
// of its GoTo action.
func (w *outlineWalker) destination(item pdf.Value) int {
	dest := item.Key("Dest")
	if dest.IsNull() {
		if action := item.Key("A"); action.Key("S").Name() == "GoTo" {
			dest = action.Key("D")
		}
	}
	if page, ok := w.resolve(dest, 0); ok {
		return page
	}
	logger.Debug("outline entry %q has no resolvable destination, using page 1", item.Key("Title").Text())
	return 1
}

func (w *outlineWalker) resolve(dest pdf.Value, depth int) (int, bool) {
	if depth > 4 {
		return 0, false
	}
	switch dest.Kind() {
	case pdf.Array:
		if dest.Len() == 0 {
			return 0, false
		}
		return w.pageOf(dest.Index(0))
	case pdf.Dict:
		// Named destinations may map to a dictionary holding D.
		return w.resolve(dest.Key("D"), depth+1)
	case pdf.Name:
		return w.resolve(w.root.Key("Dests").Key(dest.Name()), depth+1)
	case pdf.String:
		return w.resolve(lookupName(w.root.Key("Names").Key("Dests"), dest.RawString(), 0), depth+1)
	}
	return 0, false
}

// pageOf maps a page reference, or a 0-indexed page number as some
// producers write for remote destinations, to a 1-indexed page.
func (w *outlineWalker) pageOf(ref pdf.Value) (int, bool) {
	if ref.Kind() == pdf.Integer {
		n := int(ref.Int64()) + 1
		return n, n >= 1 && n <= w.doc.pageCount
	}
	if ref.Kind() != pdf.Dict {
		return 0, false
	}
	if w.doc.pages == nil {
		w.doc.pages = make([]pdf.Value, w.doc.pageCount)
		for i := range w.doc.pageCount {
			w.doc.pages[i] = w.doc.reader.Page(i + 1).V
		}
	}
	for i, p := range w.doc.pages {
		if reflect.DeepEqual(p, ref) {
			return i + 1, true
		}
	}
	return 0, false
}

// lookupName searches a name tree for key.
func lookupName(node pdf.Value, key string, depth int) pdf.Value {
	if node.IsNull() || depth > 32 {
		return pdf.Value{}
	}
	if names := node.Key("Names"); names.Kind() == pdf.Array {
		for i := 0; i+1 < names.Len(); i += 2 {
			if names.Index(i).RawString() == key {
				return names.Index(i + 1)
			}
		}
	}
	kids := node.Key("Kids")
	for i := range kids.Len() {
		kid := kids.Index(i)
		if limits := kid.Key("Limits"); limits.Len() == 2 {
			if key < limits.Index(0).RawString() || key > limits.Index(1).RawString() {
				continue
			}
		}
		if v := lookupName(kid, key, depth+1); !v.IsNull() {
			return v
		}
	}
	return pdf.Value{}
}
