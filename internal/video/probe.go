// Package video samples representative still frames from incident videos
// using ffprobe and ffmpeg.
package video

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Info describes the properties of a video needed for frame sampling.
type Info struct {
	TotalFrames int
	FrameRate   float64
	Duration    time.Duration
	Width       int
	Height      int
	Codec       string
}

// ffprobeOutput represents the JSON structure from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

type ffprobeStream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NbFrames     string `json:"nb_frames"`
	Duration     string `json:"duration"`
}

// CheckFFmpegAvailable returns an error if ffmpeg or ffprobe is missing
// from PATH.
func CheckFFmpegAvailable() error {
	for _, bin := range []string{"ffprobe", "ffmpeg"} {
		path, err := exec.LookPath(bin)
		if err != nil {
			return fmt.Errorf("%s not found in PATH: install FFmpeg with: brew install ffmpeg (macOS) or apt install ffmpeg (Linux)", bin)
		}
		log.Debug().Str("path", path).Msgf("%s found", bin)
	}
	return nil
}

// probe runs ffprobe on path and parses its JSON output.
func probe(ctx context.Context, ffprobePath, path string) (*Info, error) {
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbe(output)
}

// parseProbe extracts Info from ffprobe JSON. The frame count comes from
// the video stream's nb_frames; containers that omit it fall back to
// duration multiplied by frame rate.
func parseProbe(data []byte) (*Info, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var stream *ffprobeStream
	for i := range out.Streams {
		if out.Streams[i].CodecType == "video" {
			stream = &out.Streams[i]
			break
		}
	}
	if stream == nil {
		return nil, fmt.Errorf("no video stream found")
	}

	info := &Info{
		Width:     stream.Width,
		Height:    stream.Height,
		Codec:     stream.CodecName,
		FrameRate: parseFrameRate(stream.RFrameRate),
	}
	if info.FrameRate == 0 {
		info.FrameRate = parseFrameRate(stream.AvgFrameRate)
	}

	seconds := parseSeconds(stream.Duration)
	if seconds == 0 {
		seconds = parseSeconds(out.Format.Duration)
	}
	info.Duration = time.Duration(seconds * float64(time.Second))

	if n, err := strconv.Atoi(stream.NbFrames); err == nil && n > 0 {
		info.TotalFrames = n
	} else if seconds > 0 && info.FrameRate > 0 {
		info.TotalFrames = int(math.Floor(seconds * info.FrameRate))
	}

	return info, nil
}

// parseFrameRate parses frame rate from ffprobe format (e.g., "60/1" -> 60.0)
func parseFrameRate(value string) float64 {
	parts := strings.Split(value, "/")
	if len(parts) == 2 {
		num, _ := strconv.ParseFloat(parts[0], 64)
		den, _ := strconv.ParseFloat(parts[1], 64)
		if den != 0 {
			return num / den
		}
		return 0
	}
	rate, _ := strconv.ParseFloat(value, 64)
	return rate
}

func parseSeconds(value string) float64 {
	s, err := strconv.ParseFloat(value, 64)
	if err != nil || s < 0 {
		return 0
	}
	return s
}
