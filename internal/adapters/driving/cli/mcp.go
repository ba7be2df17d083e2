package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
legal questions, query uploaded documents and draft defense strategies.

By default, the server communicates over stdio using JSON-RPC.
Use --port to serve streamable HTTP instead.

Examples:
  # Stdio mode (default, for desktop assistants)
  lexis mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  lexis mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "lexis": {
        "command": "/path/to/lexis",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	rt, release, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer release()

	if _, err := rt.Corpora.Preload(cmd.Context(), rt.Definitions); err != nil {
		return fmt.Errorf("load corpora: %w", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{Ask: rt.Ask, Corpora: rt.Corpora})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		// Stdout carries JSON-RPC in stdio mode, so only HTTP mode prints.
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
