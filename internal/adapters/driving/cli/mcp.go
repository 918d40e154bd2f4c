package cli

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/adam/internal/adapters/driving/mcp"
	"github.com/custodia-labs/adam/internal/core/services"
	"github.com/custodia-labs/adam/internal/logger"
)

// portSearchRange is how many ports above --port are tried when it is busy.
const portSearchRange = 100

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server exposing Adam's document tools
(find, upload, process, status, metadata, search, chunks, types) and the
docs:// resources.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead. If the port is busy the next
free port is used.

Examples:
  # Stdio mode (default, for Claude Desktop)
  adam mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  adam mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "adam": {
        "command": "/path/to/adam",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("host", "127.0.0.1", "HTTP listen address")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return fmt.Errorf("getting host flag: %w", err)
	}

	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.Tools == nil {
		return errors.New("tool dispatcher not configured")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Tools:     svc.Tools,
		Documents: svc.Documents,
		Workspace: svc.Workspace,
		Prompts:   svc.Prompts,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	stop := startWatcher(ctx, svc)
	defer stop()

	if port > 0 {
		free, err := services.FindAvailablePort(host, port, port+portSearchRange)
		if err != nil {
			return err
		}
		if free != port {
			logger.Warn("port %d is busy, using %d", port, free)
		}
		addr := net.JoinHostPort(host, strconv.Itoa(free))
		cmd.PrintErrf("MCP server listening on http://%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
