package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strings"
)

// FrameSource reads video properties and decodes single frames.
type FrameSource interface {
	Probe(ctx context.Context, path string) (*Info, error)
	DecodeFrame(ctx context.Context, path string, index int) (image.Image, error)
}

// FFmpegSource is a FrameSource backed by the ffprobe and ffmpeg binaries.
type FFmpegSource struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpegSource locates ffmpeg and ffprobe in PATH.
func NewFFmpegSource() (*FFmpegSource, error) {
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: frame sampling requires ffmpeg")
	}
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: frame sampling requires ffmpeg")
	}
	return &FFmpegSource{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}, nil
}

// Probe returns the frame count, frame rate and dimensions of path.
func (s *FFmpegSource) Probe(ctx context.Context, path string) (*Info, error) {
	return probe(ctx, s.ffprobePath, path)
}

// DecodeFrame decodes the frame at zero-based index and returns it as an
// image. The frame is piped out of ffmpeg as PNG so nothing touches disk.
func (s *FFmpegSource) DecodeFrame(ctx context.Context, path string, index int) (image.Image, error) {
	// ffmpeg -v error -i in.mp4 -vf select=eq(n\,42) -fps_mode passthrough -frames:v 1 -f image2pipe -c:v png pipe:1
	// select=eq(n\,N): keep only decoded frame N (comma escaped for the filter graph)
	// -fps_mode passthrough: don't duplicate/drop frames to match a target rate
	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-v", "error",
		"-i", path,
		"-vf", fmt.Sprintf(`select=eq(n\,%d)`, index),
		"-fps_mode", "passthrough",
		"-frames:v", "1",
		"-f", "image2pipe",
		"-c:v", "png",
		"pipe:1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame %d: %w: %s", index, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for frame %d", index)
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %d: %w", index, err)
	}
	return img, nil
}
