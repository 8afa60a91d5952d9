package httpapi

import (
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Request bodies.

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type searchRequest struct {
	Query     string  `json:"query" binding:"required"`
	K         int     `json:"k"`
	Threshold float64 `json:"threshold"`
}

// generateRequest selects the pages and depth of a generator run.
// Page 0 means every page with text.
type generateRequest struct {
	Page  int    `json:"page"`
	Depth string `json:"depth"`
}

// Concept generation modes.
const (
	conceptModePage  = "page"
	conceptModeBatch = "batch"
	conceptModeRAG   = "rag"
)

type conceptsRequest struct {
	generateRequest
	Mode  string `json:"mode"`
	Total int    `json:"total"`
}

type navigationRequest struct {
	Source string `json:"source" binding:"required"`
	Page   int    `json:"page" binding:"required"`
}

// Responses.

type documentResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	PageCount int       `json:"pageCount"`
	Indexed   bool      `json:"indexed"`
}

type pageResponse struct {
	Page    int    `json:"page"`
	Anchor  string `json:"anchor"`
	Text    string `json:"text"`
	HasText bool   `json:"hasText"`
}

type tocItemResponse struct {
	Title    string            `json:"title"`
	Page     int               `json:"page"`
	Level    int               `json:"level"`
	Tooltip  string            `json:"tooltip,omitempty"`
	Children []tocItemResponse `json:"children,omitempty"`
}

type tocResponse struct {
	Items       []tocItemResponse `json:"items"`
	Status      string            `json:"status"`
	AIProcessed bool              `json:"aiProcessed"`
}

type chatSourceResponse struct {
	Page       int     `json:"page"`
	Similarity float64 `json:"similarity"`
	Excerpt    string  `json:"excerpt"`
}

type chatMessageResponse struct {
	ID         string               `json:"id"`
	Role       string               `json:"role"`
	Content    string               `json:"content"`
	CreatedAt  time.Time            `json:"createdAt"`
	Confidence float64              `json:"confidence"`
	Sources    []chatSourceResponse `json:"sources"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
	Status      string   `json:"status"`
}

type searchResultResponse struct {
	ID         string  `json:"id"`
	Page       int     `json:"page"`
	Similarity float64 `json:"similarity"`
	Content    string  `json:"content"`
	Members    int     `json:"members"`
}

type conceptResponse struct {
	ID          string   `json:"id"`
	Page        int      `json:"page"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Importance  float64  `json:"importance"`
	Tags        []string `json:"tags"`
	Emoji       string   `json:"emoji"`
	Color       string   `json:"color"`
}

type summaryResponse struct {
	ID        string   `json:"id"`
	Page      int      `json:"page"`
	Text      string   `json:"text"`
	KeyPoints []string `json:"keyPoints"`
	Emoji     string   `json:"emoji"`
}

type flashcardResponse struct {
	ID         string   `json:"id"`
	Page       int      `json:"page"`
	Front      string   `json:"front"`
	Back       string   `json:"back"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags"`
	Emoji      string   `json:"emoji"`
}

type mcqResponse struct {
	ID           string   `json:"id"`
	Page         int      `json:"page"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
	Difficulty   string   `json:"difficulty"`
	Emoji        string   `json:"emoji"`
}

type navigationResponse struct {
	Page            int    `json:"page"`
	Anchor          string `json:"anchor"`
	ActiveSource    string `json:"activeSource"`
	IsAutoScrolling bool   `json:"isAutoScrolling"`
}

type statsResponse struct {
	Entries        int        `json:"entries"`
	TotalDocuments int        `json:"totalDocuments"`
	Oldest         *time.Time `json:"oldest,omitempty"`
	Newest         *time.Time `json:"newest,omitempty"`
	ChatStatus     string     `json:"chatStatus,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toDocument(doc *domain.Document) documentResponse {
	return documentResponse{
		ID:        doc.ID,
		Filename:  doc.Filename,
		URL:       doc.URL,
		CreatedAt: doc.CreatedAt,
		PageCount: doc.Metadata.PageCount,
		Indexed:   len(doc.VectorIDs) > 0,
	}
}

func toTOCItems(items []domain.TOCItem) []tocItemResponse {
	out := make([]tocItemResponse, len(items))
	for i, item := range items {
		out[i] = tocItemResponse{
			Title:    item.Title,
			Page:     item.PageNumber,
			Level:    item.Level,
			Tooltip:  item.Metadata.Tooltip,
			Children: toTOCItems(item.Children),
		}
	}
	return out
}

func toChatMessage(msg *domain.ChatMessage) chatMessageResponse {
	sources := make([]chatSourceResponse, len(msg.Metadata.Sources))
	for i, src := range msg.Metadata.Sources {
		sources[i] = chatSourceResponse{Page: src.PageNumber, Similarity: src.Similarity, Excerpt: src.Excerpt}
	}
	return chatMessageResponse{
		ID:         msg.ID,
		Role:       string(msg.Role),
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
		Confidence: msg.Metadata.Confidence,
		Sources:    sources,
	}
}

func toConcepts(concepts []domain.Concept) []conceptResponse {
	out := make([]conceptResponse, len(concepts))
	for i, c := range concepts {
		out[i] = conceptResponse{
			ID:          c.ID,
			Page:        c.PageNumber,
			Title:       c.Title,
			Description: c.Description,
			Importance:  c.Importance,
			Tags:        c.Tags,
			Emoji:       c.Emoji,
			Color:       c.Color,
		}
	}
	return out
}

func toSummary(s *domain.Summary) summaryResponse {
	return summaryResponse{ID: s.ID, Page: s.PageNumber, Text: s.Text, KeyPoints: s.KeyPoints, Emoji: s.Emoji}
}

func toFlashcards(cards []domain.Flashcard) []flashcardResponse {
	out := make([]flashcardResponse, len(cards))
	for i, c := range cards {
		out[i] = flashcardResponse{
			ID:         c.ID,
			Page:       c.PageNumber,
			Front:      c.Front,
			Back:       c.Back,
			Difficulty: string(c.Difficulty),
			Tags:       c.Tags,
			Emoji:      c.Emoji,
		}
	}
	return out
}

func toQuestions(questions []domain.MCQQuestion) []mcqResponse {
	out := make([]mcqResponse, len(questions))
	for i, q := range questions {
		out[i] = mcqResponse{
			ID:           q.ID,
			Page:         q.PageNumber,
			Question:     q.Question,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
			Difficulty:   string(q.Difficulty),
			Emoji:        q.Emoji,
		}
	}
	return out
}

func toNavigation(state domain.NavigationState) navigationResponse {
	return navigationResponse{
		Page:            state.CurrentPage,
		Anchor:          domain.PageAnchor(state.CurrentPage),
		ActiveSource:    string(state.ActiveSource),
		IsAutoScrolling: state.IsAutoScrolling,
	}
}
