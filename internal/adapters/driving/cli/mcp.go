package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve [pdf]",
	Short: "Start the MCP server for a document",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server opens one PDF and exposes ask, search and toc tools over it.
By default it communicates over stdio using JSON-RPC and can be used with
Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for Claude Desktop)
  folio mcp serve ~/papers/attention.pdf

  # HTTP mode (for MCP Inspector, remote access)
  folio mcp serve --port 8080 ~/papers/attention.pdf

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "folio": {
        "command": "/path/to/folio",
        "args": ["mcp", "serve", "/path/to/document.pdf"]
      }
    }
  }`,
	Args: cobra.ExactArgs(1),
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, args []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ws, _, release, err := openDocument(cmd, args[0])
	if err != nil {
		return err
	}
	defer release()

	ports := &mcp.Ports{
		Session: ws.Session,
		Chat:    ws.Chat,
	}
	if ws.Store != nil {
		ports.Store = ws.Store
	}

	mcp.Version = version
	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s%s\n", addr, mcp.EndpointPath)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
