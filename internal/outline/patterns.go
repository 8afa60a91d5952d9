package outline

import "regexp"

// Heading candidates in content-derived outlines.
var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(chapter|section|part|appendix|unit|module|lesson)\s+([0-9]+|[ivxlc]+|[a-z])\b`),
	regexp.MustCompile(`^\d{1,3}(\.\d{1,3})*\.?\s+\S`),
	regexp.MustCompile(`^[IVXLC]+\.\s+\S`),
	regexp.MustCompile(`^[A-Z][A-Z0-9\s:,&'-]{3,}$`),
	regexp.MustCompile(`(?i)^(introduction|conclusions?|summary|abstract|references|bibliography|glossary|index|preface|foreword|acknowledge?ments|contents|table of contents)\b`),
}

// Titles that start a new section and are never merged into the previous entry.
var newSectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{1,3}(\.\d{1,3})*[.)]?\s`),
	regexp.MustCompile(`(?i)^(chapter|section|part|appendix|unit|module|lesson)\b`),
	regexp.MustCompile(`^[IVXLC]+[.)]\s`),
	regexp.MustCompile(`^[A-Za-z][.)]\s`),
	regexp.MustCompile(`(?i)^(introduction|conclusions?|summary|abstract|references|bibliography|glossary|index|preface|foreword|epilogue|prologue|acknowledge?ments|contents|table of contents)\b`),
}

// Candidates dropped after detection.
var captionPattern = regexp.MustCompile(`(?i)^(page|figure|fig\.|table)\s*\d+`)

// Titles that ask for a numbered outline.
var (
	numberingTrigger = regexp.MustCompile(`(?i)\b(policy|policies|guide|guidelines|rules|regulations|procedures|handbook|manual)\b`)
	numberedPrefix   = regexp.MustCompile(`^\s*\d{1,3}(\.\d{1,3})*[.)]?\s+`)
)

// Boilerplate removed during normalisation.
var excludedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`(?i)^(page\s+\d+|figure\s+\d+|fig\.\s*\d+|table\s+\d+)\b`),
	regexp.MustCompile(`(?i)(copyright|©|\(c\)\s*\d{4}|all rights reserved)`),
	regexp.MustCompile(`^\p{L}\.?$`),
}

var (
	nanNumbering   = regexp.MustCompile(`(\d+)\.NaN\.`)
	dotLeader      = regexp.MustCompile(`\s*(\.\s?){4,}\s*\d*\s*$`)
	spacedEllipsis = regexp.MustCompile(`\.\s\.\s\.`)
	longEllipsis   = regexp.MustCompile(`\.{4,}`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
	casePrefix     = regexp.MustCompile(`^(\d{1,3}(\.\d{1,3})*[.)]?\s+)`)
)

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// IsHeadingText reports whether s looks like a heading regardless of font size.
func IsHeadingText(s string) bool {
	return matchesAny(headingPatterns, s)
}

// IsNewSection reports whether title starts a new section.
func IsNewSection(title string) bool {
	return matchesAny(newSectionPatterns, title)
}

// IsExcluded reports whether title is boilerplate.
func IsExcluded(title string) bool {
	return matchesAny(excludedPatterns, title)
}
