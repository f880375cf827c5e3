package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/fpang/incident-dispatch/internal/auth"
	"github.com/fpang/incident-dispatch/internal/cli"
	"github.com/fpang/incident-dispatch/internal/incident"
)

// analyze flags
var (
	videoFlag    string
	backendFlag  string
	modelFlag    string
	jsonFlag     bool
	validateFlag bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a dashcam video and print the dispatch report",
	Long: `Samples four frames from the video, describes each with the vision model,
synthesizes an incident narrative and prints the dispatch report.

Without --video a file dialog opens (or a prompt on headless systems).`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&videoFlag, "video", "v", "", "Path to the dashcam video")
	analyzeCmd.Flags().StringVarP(&backendFlag, "backend", "b", "", "Inference backend: bedrock, gemini or openai (default from INFERENCE_BACKEND)")
	analyzeCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Vision model ID override")
	analyzeCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the result as JSON")
	analyzeCmd.Flags().BoolVar(&validateFlag, "validate", true, "Verify backend credentials before processing")
}

// analyzeResult is the --json output. Frame images are omitted.
type analyzeResult struct {
	Video      string                      `json:"video"`
	Severity   incident.Severity           `json:"severity"`
	Keywords   []string                    `json:"keywords"`
	Analysis   incident.StructuredAnalysis `json:"analysis"`
	Timestamps []string                    `json:"frame_timestamps"`
	FrameCount int                         `json:"frame_count"`
	Report     string                      `json:"report"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	videoPath := videoFlag
	if videoPath == "" {
		picked, err := cli.PickVideo()
		if err != nil {
			if errors.Is(err, cli.ErrNoVideoSelected) {
				return errors.New("no video selected; pass --video PATH")
			}
			return err
		}
		videoPath = picked
	}
	videoPath, err := cli.ResolveVideoPath(videoPath)
	if err != nil {
		return err
	}

	bar := progressbar.Default(int64(incident.FramesPerVideo), "Describing frames")
	p, err := newPipeline(ctx, cli.InferenceOptions{
		Backend:  backendFlag,
		Model:    modelFlag,
		Validate: validateFlag,
	}, incident.WithProgress(func(done, total int) {
		_ = bar.Add(1)
	}))
	if err != nil {
		var valErr *auth.ValidationError
		if errors.As(err, &valErr) {
			cli.HandleValidationError(err)
		}
		return err
	}

	if info, err := p.source.Probe(ctx, videoPath); err == nil {
		log.Info().
			Str("video", videoPath).
			Str("clip", cli.DescribeVideo(info)).
			Int("frames", info.TotalFrames).
			Msg("Video loaded")
	}

	report, err := p.processor.ProcessVideo(ctx, videoPath)
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("analyze %s: %w", videoPath, err)
	}

	out := cmd.OutOrStdout()
	if jsonFlag {
		return writeJSON(out, videoPath, report)
	}
	writeText(out, report)
	return nil
}

func writeJSON(w io.Writer, videoPath string, report *incident.IncidentReport) error {
	timestamps := make([]string, len(report.Frames))
	for i, f := range report.Frames {
		timestamps[i] = f.Timestamp
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(analyzeResult{
		Video:      videoPath,
		Severity:   report.Severity,
		Keywords:   report.Keywords,
		Analysis:   report.Analysis,
		Timestamps: timestamps,
		FrameCount: report.FrameCount,
		Report:     report.Report,
	})
}

func writeText(w io.Writer, report *incident.IncidentReport) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, report.Report)

	if report.Analysis.IsEmpty() {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Structured analysis")
	fmt.Fprintln(w, strings.Repeat("-", 19))
	a := report.Analysis
	sections := []struct {
		header string
		items  []string
	}{
		{incident.HeaderVehicleDetails, a.VehicleDetails},
		{incident.HeaderCasualties, a.Casualties},
		{incident.HeaderHazards, a.Hazards},
		{incident.HeaderEnvironment, a.Environment},
		{incident.HeaderServices, a.Services},
	}
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		fmt.Fprintln(w, strings.Trim(s.header, "*"))
		for _, item := range s.items {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}
}
