package domain

import "time"

// Depth controls how many learning aids are generated per page.
type Depth string

// Available depths.
const (
	DepthBrief    Depth = "brief"
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// IsValid returns true if the depth is recognised.
func (d Depth) IsValid() bool {
	switch d {
	case DepthBrief, DepthStandard, DepthDeep:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d Depth) String() string {
	return string(d)
}

// ConceptsPerPage returns the number of concepts requested for one page.
func (d Depth) ConceptsPerPage() int {
	switch d {
	case DepthBrief:
		return 2
	case DepthDeep:
		return 6
	default:
		return 4
	}
}

// CardsPerPage returns the number of flashcards or questions requested for one page.
func (d Depth) CardsPerPage() int {
	switch d {
	case DepthBrief:
		return 2
	case DepthDeep:
		return 5
	default:
		return 3
	}
}

// KeyPoints returns the number of key points requested in a summary.
func (d Depth) KeyPoints() int {
	switch d {
	case DepthBrief:
		return 3
	case DepthDeep:
		return 8
	default:
		return 5
	}
}

// AllDepths returns every depth.
func AllDepths() []Depth {
	return []Depth{DepthBrief, DepthStandard, DepthDeep}
}

// Difficulty tiers for flashcards and questions.
type Difficulty string

// Available difficulties.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalises a generated difficulty, defaulting to medium.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s)
	default:
		return DifficultyMedium
	}
}

// Concept is a key idea extracted from a page.
type Concept struct {
	ID          string
	PageNumber  int
	Title       string
	Description string

	// Importance is in the configured priority range.
	Importance float64

	Tags  []string
	Emoji string
	Color string

	Highlighted bool
	Selected    bool
}

// Summary condenses a page, or the whole document when PageNumber is 0.
type Summary struct {
	ID         string
	PageNumber int
	Text       string
	KeyPoints  []string
	Emoji      string
	CreatedAt  time.Time
}

// Flashcard is a question/answer pair for spaced review.
type Flashcard struct {
	ID         string
	PageNumber int
	Front      string
	Back       string
	Difficulty Difficulty
	Tags       []string
	Emoji      string

	Attempts       int
	Completed      bool
	LastReviewedAt time.Time
}

// MCQQuestion is a multiple-choice question.
type MCQQuestion struct {
	ID           string
	PageNumber   int
	Question     string
	Options      []string
	CorrectIndex int
	Explanation  string
	Difficulty   Difficulty
	Emoji        string

	Attempts  int
	Completed bool
}

// IsCorrect reports whether choice is the right option.
func (q MCQQuestion) IsCorrect(choice int) bool {
	return choice == q.CorrectIndex
}
