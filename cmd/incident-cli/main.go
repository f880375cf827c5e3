// Package main provides incident-cli, the local front end to the incident
// dispatch pipeline.
//
// Commands:
//
//	incident-cli analyze [--video PATH]   analyze a dashcam video and print the report
//	incident-cli serve [--port 8080]      run the HTTP API locally
//	incident-cli mcp                      serve analyze_incident_video over MCP stdio
//	incident-cli version                  print build identity
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fpang/incident-dispatch/internal/logging"
	"github.com/fpang/incident-dispatch/internal/metrics"
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "incident-cli",
	Short: "Turn dashcam incident videos into emergency dispatch reports",
	Long: `incident-cli samples frames from a dashcam video, describes them with a
vision-language model, synthesizes an incident narrative and renders a
dispatch report with severity and recommended services.

Examples:
  incident-cli analyze --video crash.mp4
  incident-cli analyze -v crash.mp4 --backend gemini --json
  incident-cli analyze                   # pick a video in a file dialog
  incident-cli serve --port 8080
  incident-cli mcp`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
		// EMF lines are only meaningful inside Lambda.
		metrics.SetOutput(io.Discard)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd, serveCmd, mcpCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
