package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/incident-dispatch/internal/cli"
	"github.com/fpang/incident-dispatch/internal/incident"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the incident analyzer as an MCP tool over stdio",
	Long: `Runs a Model Context Protocol server on stdin/stdout exposing the
analyze_incident_video tool. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVarP(&backendFlag, "backend", "b", "", "Inference backend: bedrock, gemini or openai (default from INFERENCE_BACKEND)")
}

// analyzeVideoInput is the analyze_incident_video argument schema.
type analyzeVideoInput struct {
	Path string `json:"path" jsonschema:"absolute path to a local dashcam video file"`
}

// analyzeVideoOutput is the structured tool result. Frame images are omitted.
type analyzeVideoOutput struct {
	Severity   string                      `json:"severity"`
	Keywords   []string                    `json:"keywords"`
	Analysis   incident.StructuredAnalysis `json:"analysis"`
	FrameCount int                         `json:"frame_count"`
	Report     string                      `json:"report"`
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p, err := newPipeline(ctx, cli.InferenceOptions{Backend: backendFlag})
	if err != nil {
		return err
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "incident-dispatch", Version: commitHash}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_incident_video",
		Description: "Analyze a dashcam video of a traffic incident and return an emergency dispatch report with severity, detected hazards and recommended services.",
	}, analyzeVideoTool(p.processor))

	log.Info().Str("backend", backendFlag).Msg("MCP server listening on stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// analyzeVideoTool adapts processor to an MCP tool handler.
func analyzeVideoTool(processor videoProcessor) mcp.ToolHandlerFor[analyzeVideoInput, analyzeVideoOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in analyzeVideoInput) (*mcp.CallToolResult, analyzeVideoOutput, error) {
		path, err := cli.ResolveVideoPath(in.Path)
		if err != nil {
			return nil, analyzeVideoOutput{}, err
		}

		report, err := processor.ProcessVideo(ctx, path)
		if err != nil {
			return nil, analyzeVideoOutput{}, err
		}

		out := analyzeVideoOutput{
			Severity:   string(report.Severity),
			Keywords:   report.Keywords,
			Analysis:   report.Analysis,
			FrameCount: report.FrameCount,
			Report:     report.Report,
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: report.Report}},
		}, out, nil
	}
}

// videoProcessor is satisfied by *incident.Processor.
type videoProcessor interface {
	ProcessVideo(ctx context.Context, localVideoPath string) (*incident.IncidentReport, error)
}
