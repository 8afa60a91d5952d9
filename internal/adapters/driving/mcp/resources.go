package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for folio resources.
	uriScheme = "folio://"
)

// documentInfo is the JSON body of the document resource.
type documentInfo struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	PageCount int    `json:"page_count"`
	Indexed   bool   `json:"indexed"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource describing the open document.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "document",
		Name:        "document",
		Description: "Metadata of the open document",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)

	// Template for page text.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "pages/{page}",
		Name:        "page-text",
		Description: "Extracted text of one page of the open document",
		MIMEType:    "text/plain",
	}, s.handlePageResource)
}

// handleDocumentResource returns the metadata of the open document.
func (s *Server) handleDocumentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	doc, err := s.ports.Session.Document()
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	data, err := json.MarshalIndent(documentInfo{
		ID:        doc.ID,
		Filename:  doc.Filename,
		URL:       doc.URL,
		PageCount: doc.Metadata.PageCount,
		Indexed:   len(doc.VectorIDs) > 0,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handlePageResource returns the text of a single page.
func (s *Server) handlePageResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	n := extractPageNumber(req.Params.URI)
	if n == 0 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Session.Document()
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	page, ok := doc.Page(n)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     page.Text,
		}},
	}, nil
}

// extractPageNumber extracts the page from a URI like folio://pages/{page}.
// It returns 0 when the URI does not name a positive page number.
func extractPageNumber(uri string) int {
	const prefix = uriScheme + "pages/"

	if !strings.HasPrefix(uri, prefix) {
		return 0
	}

	n, err := strconv.Atoi(strings.TrimPrefix(uri, prefix))
	if err != nil || n < 1 {
		return 0
	}
	return n
}
