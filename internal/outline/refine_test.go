package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func item(title string, page, level int, children ...domain.TOCItem) domain.TOCItem {
	return domain.TOCItem{Title: title, PageNumber: page, Level: level, Children: children}
}

func titles(items []domain.TOCItem) []string {
	var out []string
	domain.WalkTOC(items, func(it *domain.TOCItem) { out = append(out, it.Title) })
	return out
}

func TestMergeFragments(t *testing.T) {
	items := []domain.TOCItem{
		item("Chapter 1:", 1, 0),
		item("Overview", 1, 0, item("Details", 2, 1)),
		item("Chapter 2", 1, 0),
		item("continued", 5, 0),
		item("Introduction", 5, 0),
	}

	merged := MergeFragments(items)
	require.Len(t, merged, 4)
	assert.Equal(t, "Chapter 1: Overview", merged[0].Title)
	require.Len(t, merged[0].Children, 1)
	assert.Equal(t, "Chapter 2", merged[1].Title)
	assert.Equal(t, "continued", merged[2].Title)
	assert.Equal(t, "Introduction", merged[3].Title)
}

func TestMergeFragments_SkipsProcessed(t *testing.T) {
	a := item("Done", 1, 0)
	a.Metadata.IsProcessed = true
	merged := MergeFragments([]domain.TOCItem{a, item("tail", 1, 0)})
	assert.Len(t, merged, 2)
}

func TestIsNewSection(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"1. Scope", true},
		{"2.3 Definitions", true},
		{"Chapter 4", true},
		{"Appendix B", true},
		{"IV. Results", true},
		{"a) First point", true},
		{"Conclusion", true},
		{"Overview", false},
		{"continued from above", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNewSection(tt.title))
		})
	}
}

func TestApplyNumbering(t *testing.T) {
	items := []domain.TOCItem{
		item("Preface", 1, 0),
		item("Safety policy", 2, 0, item("Scope", 2, 1), item("3.9 Duties", 3, 1, item("Reporting", 3, 2))),
		item("7. Leave rules", 4, 0),
	}

	got := ApplyNumbering(items)
	assert.Equal(t, []string{
		"Preface",
		"1. Safety policy", "1.1. Scope", "1.2. Duties", "1.2.1. Reporting",
		"2. Leave rules",
	}, titles(got))
}

func TestNormalize(t *testing.T) {
	items := []domain.TOCItem{
		item("12", 1, 0, item("Orphan child", 1, 1)),
		item("GENERAL   INFORMATION", 2, 0),
		item("1.NaN. Purpose", 3, 0),
		item("Contents ........ 4", 4, 0),
		item("Wait… what", 5, 0),
		item("Copyright 2024 Acme", 6, 0),
		item("Figure 2", 7, 0),
		item("x", 8, 0),
		item("2. SCOPE OF WORK", 9, 0),
	}

	got := Normalize(items)
	assert.Equal(t, []string{
		"Orphan child",
		"General information",
		"1. Purpose",
		"Contents",
		"Wait... what",
		"2. Scope of work",
	}, titles(got))
	assert.Equal(t, 0, got[0].Level)
}

func TestSentenceCase(t *testing.T) {
	assert.Equal(t, "Mixed Case Title", SentenceCase("Mixed Case Title"))
	assert.Equal(t, "3.1 Data retention", SentenceCase("3.1 DATA RETENTION"))
	assert.Equal(t, "A", SentenceCase("A"))
}

func TestRefine_Idempotent(t *testing.T) {
	items := []domain.TOCItem{
		item("Employee handbook", 1, 0, item("WORKING HOURS", 1, 1), item("and overtime", 1, 1), item("Leave", 3, 1)),
		item("Benefits", 4, 0),
	}

	once := Refine(items)
	twice := Refine(once)
	assert.Equal(t, titles(once), titles(twice))
	assert.Equal(t, []string{"1. Employee handbook", "1.1. WORKING HOURS and overtime", "1.2. Leave", "Benefits"}, titles(once))
}

func TestRefine_ProcessedItemsUnchanged(t *testing.T) {
	items := []domain.TOCItem{
		item("GUIDE TO THINGS", 1, 0, item("sub… part", 1, 1)),
		item("12", 1, 0),
	}
	domain.WalkTOC(items, func(it *domain.TOCItem) { it.Metadata.IsProcessed = true })

	assert.Equal(t, titles(items), titles(Refine(items)))
	assert.Equal(t, titles(items), titles(Refine(Refine(items))))
}

func TestNeedsEnhancement(t *testing.T) {
	long := "A title that keeps going well beyond the limit for top level"
	tests := []struct {
		name string
		item domain.TOCItem
		want bool
	}{
		{"fine", item("Getting started", 1, 0), false},
		{"too long for level 0", item(long, 1, 0), true},
		{"fits level 2", item("A title that keeps going beyond forty chars", 1, 2), false},
		{"lower case start", item("getting started", 1, 0), true},
		{"numbered lower case", item("2. getting started", 1, 0), true},
		{"double space", item("Getting  started", 1, 0), true},
		{"ellipsis", item("Getting...", 1, 0), true},
		{"trailing colon", item("Getting started:", 1, 0), true},
		{"unbalanced", item("Getting (started", 1, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsEnhancement(tt.item))
		})
	}

	processed := item("getting started", 1, 0)
	processed.Metadata.IsProcessed = true
	assert.False(t, NeedsEnhancement(processed))
}

func TestCandidatesAndApplyRewrites(t *testing.T) {
	items := []domain.TOCItem{
		item("Fine title", 1, 0, item("bad child", 1, 1)),
		item("another bad one:", 2, 0),
	}

	cands := Candidates(items)
	require.Len(t, cands, 2)
	assert.Equal(t, 1, cands[0].Index)
	assert.Equal(t, 2, cands[1].Index)

	n := ApplyRewrites(items, map[int]Rewrite{
		1: {Title: "Better child title", Tooltip: "Explains the child"},
		2: {Title: "An extremely long generated title that will need to be cut down", Tooltip: ""},
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, "Better child title", items[0].Children[0].Title)
	assert.Equal(t, "bad child", items[0].Children[0].Metadata.OriginalText)
	assert.True(t, items[0].Children[0].Metadata.IsProcessed)
	assert.LessOrEqual(t, len([]rune(items[1].Title)), 40)
	assert.Empty(t, Candidates(items))

	assert.Equal(t, 0, ApplyRewrites(items, map[int]Rewrite{1: {Title: "again"}}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "The quick brown", Truncate("The quick brown fox jumps", 18))
	assert.Equal(t, "Supercalif", Truncate("Supercalifragilistic", 10))
	assert.Equal(t, "Ends with", Truncate("Ends with, comma here", 10))
}
