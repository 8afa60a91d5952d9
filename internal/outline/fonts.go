package outline

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Heading detection thresholds, as ratios of the body font size.
const (
	candidateRatio = 1.2
	level0Ratio    = 1.5
	level1Ratio    = 1.3

	// sameLineDelta is the largest vertical distance between runs on one line.
	sameLineDelta = 5.0

	minTitleLength = 3
	maxTitleLength = 200
)

func roundSize(size float64) float64 {
	return math.Round(size*100) / 100
}

// BodyFontSize returns the most frequent font size across all runs.
// Ties go to the smaller size. Returns 0 when there are no sized runs.
func BodyFontSize(pages []domain.PageRuns) float64 {
	counts := make(map[float64]int)
	for _, p := range pages {
		for _, r := range p.Runs {
			if r.FontSize <= 0 || strings.TrimSpace(r.Text) == "" {
				continue
			}
			counts[roundSize(r.FontSize)]++
		}
	}

	var body float64
	best := 0
	for size, n := range counts {
		if n > best || (n == best && size < body) {
			body, best = size, n
		}
	}
	return body
}

// LevelForSize maps a heading font size to a level. Larger fonts never get a deeper level.
func LevelForSize(size, body float64) int {
	ratio := size / body
	switch {
	case ratio >= level0Ratio:
		return 0
	case ratio >= level1Ratio:
		return 1
	default:
		return 2
	}
}

// isCandidate reports whether a run could be (part of) a heading.
func isCandidate(r domain.TextRun, body float64) bool {
	size := roundSize(r.FontSize)
	if size <= body {
		return false
	}
	return IsHeadingText(strings.TrimSpace(r.Text)) || size >= candidateRatio*body
}

// DetectHeadings derives a flat, ordered list of headings from font sizes.
// Consecutive candidate runs on the same line with the same size are joined.
// Pass the result to Nest for a tree.
func DetectHeadings(pages []domain.PageRuns, body float64) []domain.TOCItem {
	if body <= 0 {
		return nil
	}

	var items []domain.TOCItem
	var cur *domain.TOCItem
	var curY float64

	flush := func() {
		if cur == nil {
			return
		}
		cur.Title = strings.TrimSpace(whitespaceRun.ReplaceAllString(cur.Title, " "))
		if keepCandidate(cur.Title) {
			cur.Metadata.OriginalText = cur.Title
			items = append(items, *cur)
		}
		cur = nil
	}

	for _, p := range pages {
		for _, r := range p.Runs {
			text := strings.TrimSpace(r.Text)
			if text == "" {
				continue
			}
			if !isCandidate(r, body) {
				flush()
				continue
			}
			size := roundSize(r.FontSize)
			if cur != nil && cur.PageNumber == p.PageNumber &&
				math.Abs(r.Y-curY) < sameLineDelta && cur.Metadata.FontSize == size {
				cur.Title += " " + text
				curY = r.Y
				continue
			}
			flush()
			cur = &domain.TOCItem{
				Title:      text,
				PageNumber: p.PageNumber,
				Level:      LevelForSize(size, body),
				Metadata:   domain.TOCMetadata{FontSize: size},
			}
			curY = r.Y
		}
		flush()
	}
	return items
}

func keepCandidate(title string) bool {
	n := utf8.RuneCountInString(title)
	if n < minTitleLength || n > maxTitleLength {
		return false
	}
	return !captionPattern.MatchString(title)
}
