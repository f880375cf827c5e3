package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fpang/incident-dispatch/internal/incident"
)

func testReport() *incident.IncidentReport {
	return &incident.IncidentReport{
		Frames: []incident.Frame{
			{ID: 1, Image: "aaa", Timestamp: "00:00"},
			{ID: 2, Image: "bbb", Timestamp: "00:03"},
		},
		Analysis: incident.StructuredAnalysis{
			VehicleDetails: []string{"red sedan, front damage"},
			Hazards:        []string{"smoke from engine bay"},
		},
		Keywords:   []string{"Smoke", "Vehicle Collision"},
		Severity:   incident.SeverityModerate,
		Report:     "EMERGENCY DISPATCH REPORT",
		FrameCount: 2,
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	writeText(&buf, testReport())
	out := buf.String()

	for _, want := range []string{"EMERGENCY DISPATCH REPORT", "Vehicle Details:", "  - red sedan, front damage", "Hazard Assessment:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Environmental Conditions") {
		t.Error("empty sections should be omitted")
	}
	if strings.Contains(out, "**") {
		t.Error("markdown markers should be stripped")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, "/videos/crash.mp4", testReport()); err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["severity"] != "MODERATE" || got["frame_count"] != float64(2) {
		t.Errorf("got %v", got)
	}
	if ts := got["frame_timestamps"].([]any); len(ts) != 2 || ts[1] != "00:03" {
		t.Errorf("frame_timestamps = %v", ts)
	}
	if strings.Contains(buf.String(), "bbb") {
		t.Error("frame images should not be printed")
	}
}

type stubProcessor struct {
	path string
	err  error
}

func (s *stubProcessor) ProcessVideo(ctx context.Context, path string) (*incident.IncidentReport, error) {
	s.path = path
	if s.err != nil {
		return nil, s.err
	}
	return testReport(), nil
}

func TestAnalyzeVideoTool(t *testing.T) {
	video := filepath.Join(t.TempDir(), "crash.mp4")
	if err := os.WriteFile(video, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	proc := &stubProcessor{}
	handler := analyzeVideoTool(proc)

	result, out, err := handler(context.Background(), &mcp.CallToolRequest{}, analyzeVideoInput{Path: video})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.path != video {
		t.Errorf("processed %q, want %q", proc.path, video)
	}
	if out.Severity != "MODERATE" || out.FrameCount != 2 || len(out.Keywords) != 2 {
		t.Errorf("out = %+v", out)
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok || text.Text != "EMERGENCY DISPATCH REPORT" {
		t.Errorf("content = %#v", result.Content)
	}
}

func TestAnalyzeVideoTool_Errors(t *testing.T) {
	handler := analyzeVideoTool(&stubProcessor{})
	if _, _, err := handler(context.Background(), &mcp.CallToolRequest{}, analyzeVideoInput{Path: "/does/not/exist.mp4"}); err == nil {
		t.Error("expected error for missing video")
	}

	video := filepath.Join(t.TempDir(), "crash.mp4")
	if err := os.WriteFile(video, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	readErr := &incident.VideoReadError{Path: video, Message: "cannot open video"}
	handler = analyzeVideoTool(&stubProcessor{err: readErr})
	if _, _, err := handler(context.Background(), &mcp.CallToolRequest{}, analyzeVideoInput{Path: video}); !errors.Is(err, readErr) {
		t.Errorf("expected VideoReadError, got %v", err)
	}
}
