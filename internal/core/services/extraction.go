package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// documentNamespace seeds the UUIDv5 document ids.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/custodia-labs/folio/document"))

// DocumentID returns the stable id of a PDF fingerprint.
func DocumentID(fingerprint string) string {
	return uuid.NewSHA1(documentNamespace, []byte(fingerprint)).String()
}

// ExtractionService turns PDFs into per-page text.
type ExtractionService struct {
	loader    driven.PDFLoader
	cleaner   driven.PostProcessorPipeline
	batchSize int
	clock     driven.Clock
}

// NewExtractionService creates an extraction service.
// cleaner may be nil, in which case page text is kept as extracted.
func NewExtractionService(
	loader driven.PDFLoader,
	cleaner driven.PostProcessorPipeline,
	batchSize int,
) *ExtractionService {
	if batchSize <= 0 {
		batchSize = domain.DefaultAppSettings().Index.PageBatchSize
	}
	return &ExtractionService{
		loader:    loader,
		cleaner:   cleaner,
		batchSize: batchSize,
		clock:     systemClock{},
	}
}

// SetClock replaces the wall clock used for ProcessedAt timestamps.
func (s *ExtractionService) SetClock(clock driven.Clock) {
	s.clock = clock
}

// Load opens the PDF at location. Failures wrap domain.ErrLoad.
func (s *ExtractionService) Load(ctx context.Context, location string) (driven.PDFDocument, error) {
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("%w: empty location", domain.ErrLoad)
	}
	doc, err := s.loader.Open(ctx, location)
	if err != nil {
		if errors.Is(err, domain.ErrLoad) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrLoad, location, err)
	}
	return doc, nil
}

// ExtractPages extracts every page of doc in batches. Pages within a batch
// run concurrently and are placed by index. A failing page is logged and
// returned with HasText=false.
func (s *ExtractionService) ExtractPages(ctx context.Context, doc driven.PDFDocument) ([]domain.PageContent, error) {
	count := doc.PageCount()
	pages := make([]domain.PageContent, count)

	for start := 0; start < count; start += s.batchSize {
		end := min(start+s.batchSize, count)

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				pages[i] = s.extractPage(gctx, doc, i+1)
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		logger.Debug("extracted pages %d-%d of %d", start+1, end, count)
	}

	return pages, nil
}

// extractPage reads and cleans one page.
func (s *ExtractionService) extractPage(ctx context.Context, doc driven.PDFDocument, n int) domain.PageContent {
	page := domain.PageContent{
		PageNumber: n,
		Metadata:   domain.PageMetadata{ProcessedAt: s.clock.Now()},
	}

	text, err := doc.PageText(n)
	if err != nil {
		logger.Warn("skipping page %d: %v", n, err)
		return page
	}
	page.Text = text
	page.Metadata.HasText = strings.TrimSpace(text) != ""

	if s.cleaner != nil {
		cleaned, err := s.cleaner.Process(ctx, page)
		if err != nil {
			logger.Warn("cleaning page %d: %v", n, err)
			return page
		}
		page = cleaned
	}
	return page
}

// ExtractContent returns the text of all pages separated by blank lines.
func (s *ExtractionService) ExtractContent(ctx context.Context, location string) (string, error) {
	doc, _, err := s.BuildDocument(ctx, location)
	if err != nil {
		return "", err
	}
	return doc.FullText(), nil
}

// BuildDocument loads the PDF at location and extracts its pages and outline.
// Without a built-in outline the positioned text runs are collected instead.
func (s *ExtractionService) BuildDocument(
	ctx context.Context, location string,
) (*domain.Document, domain.OutlineSource, error) {
	defer logger.Timed("extract " + location)()

	pdf, err := s.Load(ctx, location)
	if err != nil {
		return nil, domain.OutlineSource{}, err
	}
	defer pdf.Close()

	pages, err := s.ExtractPages(ctx, pdf)
	if err != nil {
		return nil, domain.OutlineSource{}, err
	}

	doc := &domain.Document{
		ID:        DocumentID(pdf.Fingerprint()),
		Filename:  filenameOf(location),
		URL:       location,
		CreatedAt: s.clock.Now(),
		Metadata:  domain.DocumentMetadata{PageCount: pdf.PageCount()},
		Pages:     pages,
	}

	var src domain.OutlineSource
	outline, err := pdf.Outline()
	if err != nil {
		logger.Warn("reading outline of %s: %v", doc.Filename, err)
	}
	src.Outline = outline

	if !src.HasOutline() {
		for n := 1; n <= doc.Metadata.PageCount; n++ {
			runs, err := pdf.PageRuns(n)
			if err != nil {
				logger.Warn("reading text runs of page %d: %v", n, err)
				continue
			}
			src.Runs = append(src.Runs, domain.PageRuns{PageNumber: n, Runs: runs})
		}
	}

	logger.Info("loaded %s: %d page(s), %d with text", doc.Filename, len(pages), len(doc.PagesWithText()))
	return doc, src, nil
}

// filenameOf returns the last path element of a path or URL.
func filenameOf(location string) string {
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(strings.ReplaceAll(location, "\\", "/"))
}
