package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Search defaults.
const (
	defaultSearchLimit = domain.DefaultSearchK
	maxExcerptRunes    = 400
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the document"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string         `json:"answer"`
	Confidence float64        `json:"confidence"`
	Sources    []SourceOutput `json:"sources,omitempty"`
}

// SourceOutput is a page cited by an answer.
type SourceOutput struct {
	Page       int     `json:"page"`
	Similarity float64 `json:"similarity"`
	Excerpt    string  `json:"excerpt,omitempty"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query     string  `json:"query" jsonschema:"the text to find similar passages for"`
	Limit     int     `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"minimum similarity between 0 and 1 (default 0.5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ID         string  `json:"id"`
	Page       int     `json:"page"`
	Similarity float64 `json:"similarity"`
	Content    string  `json:"content"`
}

// TOCInput is the input schema for the toc tool.
type TOCInput struct {
	MaxLevel int `json:"max_level,omitempty" jsonschema:"number of outline levels to include, 0 for all"`
}

// TOCOutput is the output schema for the toc tool.
type TOCOutput struct {
	Title   string           `json:"title"`
	Entries []TOCEntryOutput `json:"entries"`
}

// TOCEntryOutput is one flattened table of contents entry.
type TOCEntryOutput struct {
	Title string `json:"title"`
	Page  int    `json:"page"`
	Level int    `json:"level"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using passages retrieved from the open document",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the passages of the open document most similar to a query",
	}, s.handleSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "toc",
		Description: "Return the table of contents of the open document",
	}, s.handleTOC)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Chat == nil {
		return nil, AskOutput{}, errChatUnavailable
	}
	reply, err := s.ports.Chat.GenerateReply(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:     reply.Content,
		Confidence: reply.Metadata.Confidence,
		Sources:    make([]SourceOutput, len(reply.Metadata.Sources)),
	}
	for i, src := range reply.Metadata.Sources {
		output.Sources[i] = SourceOutput{
			Page:       src.PageNumber,
			Similarity: src.Similarity,
			Excerpt:    src.Excerpt,
		}
	}
	return nil, output, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if s.ports.Store == nil {
		return nil, SearchOutput{}, errSearchUnavailable
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	threshold := input.Threshold
	if threshold <= 0 {
		threshold = domain.DefaultSearchThreshold
	}

	results, err := s.ports.Store.SimilaritySearch(ctx, input.Query, limit, threshold)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			ID:         results[i].ID,
			Page:       results[i].Metadata.PageNumber,
			Similarity: results[i].Similarity,
			Content:    truncate(results[i].Content, maxExcerptRunes),
		}
	}
	return nil, output, nil
}

// handleTOC handles the toc tool invocation.
func (s *Server) handleTOC(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input TOCInput,
) (*mcp.CallToolResult, TOCOutput, error) {
	doc, err := s.ports.Session.Document()
	if err != nil {
		return nil, TOCOutput{}, err
	}
	cache, err := s.ports.Session.TableOfContents()
	if err != nil {
		return nil, TOCOutput{}, err
	}

	output := TOCOutput{Title: doc.Filename, Entries: []TOCEntryOutput{}}
	domain.WalkTOC(cache.Best(), func(item *domain.TOCItem) {
		if input.MaxLevel > 0 && item.Level >= input.MaxLevel {
			return
		}
		output.Entries = append(output.Entries, TOCEntryOutput{
			Title: item.Title,
			Page:  item.PageNumber,
			Level: item.Level,
		})
	})
	return nil, output, nil
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
