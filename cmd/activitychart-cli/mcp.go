// ABOUTME: MCP command serving chart tools over stdio.
// ABOUTME: Runs the engine in-process or proxies a remote service.
package main

import (
	"github.com/claude/activitychart/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var (
	mcpRemote string
	mcpAPIKey string
)

// Version is set at build time via -ldflags.
var Version = "dev"

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over stdio",
	Long: `Run the Model Context Protocol server over stdin/stdout.

By default the tools run the engine in-process against the configured store.
With --remote they call a running activitychart service instead, which is
how a desktop assistant reaches a server on the tailnet:

  {
    "mcpServers": {
      "activitychart": {
        "command": "activitychart-cli",
        "args": ["mcp", "--remote", "http://activitychart", "--api-key", "..."]
      }
    }
  }

TOOLS:

  calculate_activity_chart   compute and store one chart
  get_activity_chart         stored stats, optionally with points
  get_activity_coordinates   stored GPS summary
  backfill_activity_charts   recompute all of a user's charts`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		var ds mcp.DataSource
		if mcpRemote != "" {
			ds = mcp.NewHTTPClient(mcpRemote, mcpAPIKey)
		} else {
			e, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			ds = mcp.Local{Calculator: e.calc, Reader: e.reader}
		}

		return server.ServeStdio(mcp.New(ds, Version, log))
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpRemote, "remote", "", "base URL of a running activitychart service")
	mcpCmd.Flags().StringVar(&mcpAPIKey, "api-key", "", "API key for --remote")
}
