// Package source fetches PDF bytes from local files, http(s) URLs and S3.
package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Router implements the interface.
var _ driven.ByteSource = (*Router)(nil)

// Router dispatches a location to the source registered for its scheme.
// Locations without a scheme are local paths.
type Router struct {
	sources map[string]driven.ByteSource
}

// NewRouter creates a router with the file source registered for "" and "file".
func NewRouter() *Router {
	files := NewFileSource()
	return &Router{sources: map[string]driven.ByteSource{
		"":     files,
		"file": files,
	}}
}

// NewDefaultRouter registers the file, http(s) and s3 sources.
func NewDefaultRouter(settings domain.SourceSettings) (*Router, error) {
	r := NewRouter()
	web := NewHTTPSource(settings.HTTPTimeout)
	r.Register("http", web)
	r.Register("https", web)

	s3, err := NewS3Source(settings.S3Region, settings.S3Endpoint)
	if err != nil {
		return nil, err
	}
	r.Register("s3", s3)
	return r, nil
}

// Register routes scheme to src, replacing any previous registration.
func (r *Router) Register(scheme string, src driven.ByteSource) {
	r.sources[strings.ToLower(scheme)] = src
}

// Fetch returns the bytes at location.
func (r *Router) Fetch(ctx context.Context, location string) ([]byte, error) {
	scheme := Scheme(location)
	src, ok := r.sources[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported scheme %q", domain.ErrInvalidInput, scheme)
	}
	return src.Fetch(ctx, location)
}

// Scheme returns the lower-cased URL scheme of location, or "" for a path.
// Single letter schemes are Windows drive letters.
func Scheme(location string) string {
	u, err := url.Parse(location)
	if err != nil || len(u.Scheme) < 2 {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
