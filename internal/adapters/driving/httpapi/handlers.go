package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/folio/internal/core/domain"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getDocument(c *gin.Context) {
	doc, err := s.ports.Session.Document()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toDocument(doc))
}

func (s *Server) getPage(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 1 {
		badRequest(c, fmt.Errorf("page must be a positive integer, got %q", c.Param("n")))
		return
	}
	doc, err := s.ports.Session.Document()
	if err != nil {
		fail(c, err)
		return
	}
	page, ok := doc.Page(n)
	if !ok {
		fail(c, fmt.Errorf("%w: page %d of %d", domain.ErrNotFound, n, doc.Metadata.PageCount))
		return
	}
	c.JSON(http.StatusOK, pageResponse{
		Page:    page.PageNumber,
		Anchor:  domain.PageAnchor(page.PageNumber),
		Text:    page.Text,
		HasText: page.Metadata.HasText,
	})
}

func (s *Server) getTOC(c *gin.Context) {
	cache, err := s.ports.Session.TableOfContents()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tocResponse{
		Items:       toTOCItems(cache.Best()),
		Status:      cache.ProcessingStatus,
		AIProcessed: cache.IsAIProcessed,
	})
}

// postIndex embeds the open document.
func (s *Server) postIndex(c *gin.Context) {
	if err := s.ports.Session.Index(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	doc, err := s.ports.Session.Document()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toDocument(doc))
}

// postChat answers a message. The document is indexed on first use.
func (s *Server) postChat(c *gin.Context) {
	if s.ports.Chat == nil {
		unavailable(c, "chat")
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	if s.ports.Chat.Status() == domain.ChatUninitialized {
		if err := s.ports.Session.Index(ctx); err != nil {
			fail(c, err)
			return
		}
	}
	reply, err := s.ports.Chat.GenerateReply(ctx, req.Message)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toChatMessage(reply))
}

func (s *Server) getChatMessages(c *gin.Context) {
	if s.ports.Chat == nil {
		unavailable(c, "chat")
		return
	}
	msgs := s.ports.Chat.Messages()
	out := make([]chatMessageResponse, len(msgs))
	for i := range msgs {
		out[i] = toChatMessage(&msgs[i])
	}
	c.JSON(http.StatusOK, gin.H{"messages": out, "status": s.ports.Chat.Status().String(), "error": s.ports.Chat.Err()})
}

// getSuggestions returns the current suggestions; ?refresh=true asks for new ones.
func (s *Server) getSuggestions(c *gin.Context) {
	if s.ports.Chat == nil {
		c.JSON(http.StatusOK, suggestionsResponse{Suggestions: domain.DefaultSuggestions()})
		return
	}
	suggestions := s.ports.Chat.Suggestions()
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		fresh, err := s.ports.Chat.GenerateSuggestions(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		suggestions = fresh
	}
	c.JSON(http.StatusOK, suggestionsResponse{
		Suggestions: suggestions,
		Status:      s.ports.Chat.Status().String(),
	})
}

func (s *Server) postSearch(c *gin.Context) {
	if s.ports.Store == nil {
		unavailable(c, "semantic search")
		return
	}
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.K == 0 {
		req.K = domain.DefaultSearchK
	}
	if req.Threshold == 0 {
		req.Threshold = domain.DefaultSearchThreshold
	}

	results, err := s.ports.Store.SimilaritySearch(c.Request.Context(), req.Query, req.K, req.Threshold)
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]searchResultResponse, len(results))
	for i, r := range results {
		out[i] = searchResultResponse{
			ID:         r.ID,
			Page:       r.Metadata.PageNumber,
			Similarity: r.Similarity,
			Content:    r.Content,
			Members:    len(r.MemberIDs),
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": out, "count": len(out)})
}

func (s *Server) postConcepts(c *gin.Context) {
	if s.ports.Concepts == nil {
		unavailable(c, "concept generation")
		return
	}
	var req conceptsRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	depth, pages, ok := s.resolve(c, req.generateRequest)
	if !ok {
		return
	}

	if req.Total <= 0 {
		req.Total = depth.ConceptsPerPage() * len(pages)
	}

	ctx := c.Request.Context()
	var concepts []domain.Concept
	var err error
	switch req.Mode {
	case "", conceptModePage:
		if req.Page == 0 {
			concepts, err = s.ports.Concepts.GenerateBatch(ctx, pages, req.Total)
		} else {
			concepts, err = s.ports.Concepts.GenerateForPage(ctx, pages[0], depth)
		}
	case conceptModeBatch:
		concepts, err = s.ports.Concepts.GenerateBatch(ctx, pages, req.Total)
	case conceptModeRAG:
		concepts, err = s.ports.Concepts.GenerateWithRAG(ctx, pages, depth)
	default:
		badRequest(c, fmt.Errorf("unknown mode %q", req.Mode))
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"concepts": toConcepts(concepts)})
}

func (s *Server) postSummary(c *gin.Context) {
	if s.ports.Summaries == nil {
		unavailable(c, "summaries")
		return
	}
	var req generateRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	depth, pages, ok := s.resolve(c, req)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var summary *domain.Summary
	var err error
	if req.Page == 0 {
		doc, docErr := s.ports.Session.Document()
		if docErr != nil {
			fail(c, docErr)
			return
		}
		summary, err = s.ports.Summaries.SummarizeDocument(ctx, doc, depth)
	} else {
		summary, err = s.ports.Summaries.SummarizePage(ctx, pages[0], depth)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummary(summary))
}

func (s *Server) postFlashcards(c *gin.Context) {
	if s.ports.Flashcards == nil {
		unavailable(c, "flashcards")
		return
	}
	var req generateRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	depth, pages, ok := s.resolve(c, req)
	if !ok {
		return
	}
	cards, err := s.ports.Flashcards.Generate(c.Request.Context(), pages, depth)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flashcards": toFlashcards(cards)})
}

func (s *Server) postMCQ(c *gin.Context) {
	if s.ports.MCQ == nil {
		unavailable(c, "questions")
		return
	}
	var req generateRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	depth, pages, ok := s.resolve(c, req)
	if !ok {
		return
	}
	questions, err := s.ports.MCQ.Generate(c.Request.Context(), pages, depth)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": toQuestions(questions)})
}

func (s *Server) getNavigation(c *gin.Context) {
	if s.ports.Navigation == nil {
		unavailable(c, "navigation")
		return
	}
	c.JSON(http.StatusOK, toNavigation(s.ports.Navigation.State()))
}

// postNavigation records a page change reported by the viewer or one of its panels.
func (s *Server) postNavigation(c *gin.Context) {
	if s.ports.Navigation == nil {
		unavailable(c, "navigation")
		return
	}
	var req navigationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	source := domain.NavigationSource(req.Source)
	if !source.IsValid() {
		badRequest(c, fmt.Errorf("unknown navigation source %q", req.Source))
		return
	}
	if req.Page < 1 {
		badRequest(c, fmt.Errorf("page must be positive, got %d", req.Page))
		return
	}
	s.ports.Navigation.HandlePageChange(source, req.Page)
	c.JSON(http.StatusOK, toNavigation(s.ports.Navigation.State()))
}

// postNavigationSettled tells the coordinator a programmatic scroll has finished.
func (s *Server) postNavigationSettled(c *gin.Context) {
	if s.ports.Navigation == nil {
		unavailable(c, "navigation")
		return
	}
	s.ports.Navigation.EndAutoScroll()
	c.JSON(http.StatusOK, toNavigation(s.ports.Navigation.State()))
}

func (s *Server) getStats(c *gin.Context) {
	var resp statsResponse
	if s.ports.Store != nil {
		stats := s.ports.Store.Stats()
		resp.Entries = s.ports.Store.Len()
		resp.TotalDocuments = stats.TotalDocuments
		if !stats.OldestDocument.IsZero() {
			resp.Oldest = &stats.OldestDocument
			resp.Newest = &stats.NewestDocument
		}
	}
	if s.ports.Chat != nil {
		resp.ChatStatus = s.ports.Chat.Status().String()
	}
	c.JSON(http.StatusOK, resp)
}

// resolve validates the depth and selects the pages of a generator request.
// It writes the error response itself and reports whether to continue.
func (s *Server) resolve(c *gin.Context, req generateRequest) (domain.Depth, []domain.PageContent, bool) {
	depth := s.depth
	if req.Depth != "" {
		depth = domain.Depth(req.Depth)
		if !depth.IsValid() {
			badRequest(c, fmt.Errorf("unknown depth %q", req.Depth))
			return "", nil, false
		}
	}

	doc, err := s.ports.Session.Document()
	if err != nil {
		fail(c, err)
		return "", nil, false
	}
	pages, err := selectPages(doc, req.Page)
	if err != nil {
		fail(c, err)
		return "", nil, false
	}
	return depth, pages, true
}

// selectPages returns the single requested page, or every page with text for 0.
func selectPages(doc *domain.Document, n int) ([]domain.PageContent, error) {
	switch {
	case n < 0:
		return nil, fmt.Errorf("%w: page must not be negative", domain.ErrInvalidInput)
	case n == 0:
		pages := doc.PagesWithText()
		if len(pages) == 0 {
			return nil, fmt.Errorf("%w: %s has no extractable text", domain.ErrNoContent, doc.Filename)
		}
		return pages, nil
	}
	page, ok := doc.Page(n)
	if !ok {
		return nil, fmt.Errorf("%w: page %d of %d", domain.ErrNotFound, n, doc.Metadata.PageCount)
	}
	return []domain.PageContent{page}, nil
}

// bindOptionalJSON decodes a JSON body when one was sent.
func bindOptionalJSON(c *gin.Context, v any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(v)
}
