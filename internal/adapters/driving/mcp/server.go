package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/folio/internal/logger"
)

// Version is the MCP server version reported to clients.
var Version = "0.1.0"

// EndpointPath is where RunHTTP serves the streamable MCP transport.
const EndpointPath = "/mcp"

const shutdownTimeout = 5 * time.Second

// Server exposes the open document to MCP clients.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a server for the document currently open in ports.Session.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{Name: "folio", Version: Version}
	s := &Server{
		ports:  ports,
		server: mcp.NewServer(impl, &mcp.ServerOptions{Instructions: ports.instructions()}),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// instructions tells clients which document the tools answer from and
// which tools this session can serve.
func (p *Ports) instructions() string {
	var b strings.Builder
	if doc, err := p.Session.Document(); err == nil && doc != nil {
		fmt.Fprintf(&b, "Tools answer from %q (%d pages). ", doc.Filename, doc.Metadata.PageCount)
	}
	b.WriteString("Use toc for the document structure")
	if p.Chat != nil {
		b.WriteString(", ask for questions")
	}
	if p.Store != nil {
		b.WriteString(", search for passages")
	}
	b.WriteString(". Cite page numbers from the results.")
	return b.String()
}

// Run serves over stdio until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler serves the streamable transport at EndpointPath and a health check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(EndpointPath, mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// RunHTTP serves Handler on addr until ctx is done, then drains open requests.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	logger.Debug("mcp: serving %s%s", addr, EndpointPath)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
