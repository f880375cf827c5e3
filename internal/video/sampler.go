package video

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/incident-dispatch/internal/incident"
)

// Sampler selects incident.FramesPerVideo evenly spaced frames from a video.
type Sampler struct {
	source       FrameSource
	maxDimension int
	quality      int
}

var _ incident.FrameSampler = (*Sampler)(nil)

// NewSampler returns a Sampler reading frames from source.
func NewSampler(source FrameSource) *Sampler {
	return &Sampler{
		source:       source,
		maxDimension: MaxFrameDimension,
		quality:      FrameJPEGQuality,
	}
}

// SampleIndices returns the k frame indices floor(i*total/k) for
// i = 0..k-1. Short videos may yield repeated indices.
func SampleIndices(total, k int) []int {
	if total <= 0 || k <= 0 {
		return nil
	}
	indices := make([]int, k)
	for i := range indices {
		indices[i] = i * total / k
	}
	return indices
}

// FormatTimestamp renders the position of frame index at fps as MM:SS.
func FormatTimestamp(index int, fps float64) string {
	if fps <= 0 {
		return "00:00"
	}
	seconds := int(float64(index) / fps)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Sample returns up to incident.FramesPerVideo frames from videoPath.
// A frame that fails to decode is skipped; IDs are assigned to the
// retained frames in order. Failing to probe the video or retaining no
// frames is an *incident.VideoReadError.
func (s *Sampler) Sample(ctx context.Context, videoPath string) ([]incident.Frame, error) {
	start := time.Now()

	info, err := s.source.Probe(ctx, videoPath)
	if err != nil {
		return nil, &incident.VideoReadError{Path: videoPath, Message: "cannot open video", Err: err}
	}
	if info.TotalFrames <= 0 {
		return nil, &incident.VideoReadError{Path: videoPath, Message: "video reports no frames"}
	}

	log.Debug().
		Str("path", videoPath).
		Int("total_frames", info.TotalFrames).
		Float64("frame_rate", info.FrameRate).
		Int("width", info.Width).
		Int("height", info.Height).
		Msg("Video probed")

	indices := SampleIndices(info.TotalFrames, incident.FramesPerVideo)
	frames := make([]incident.Frame, 0, len(indices))
	for _, idx := range indices {
		if err := ctx.Err(); err != nil {
			return nil, &incident.VideoReadError{Path: videoPath, Message: "sampling cancelled", Err: err}
		}

		img, err := s.source.DecodeFrame(ctx, videoPath, idx)
		if err != nil {
			log.Warn().Err(err).Int("index", idx).Str("path", videoPath).Msg("Skipping undecodable frame")
			continue
		}

		data, err := encodeJPEG(resize(img, s.maxDimension), s.quality)
		if err != nil {
			log.Warn().Err(err).Int("index", idx).Msg("Skipping frame that failed to encode")
			continue
		}

		frames = append(frames, incident.Frame{
			ID:        len(frames) + 1,
			Image:     base64.StdEncoding.EncodeToString(data),
			Timestamp: FormatTimestamp(idx, info.FrameRate),
		})
	}

	if len(frames) == 0 {
		return nil, &incident.VideoReadError{Path: videoPath, Message: "no frames could be decoded"}
	}

	log.Info().
		Int("frames", len(frames)).
		Ints("indices", indices).
		Dur("elapsed", time.Since(start)).
		Msg("Frames sampled")
	return frames, nil
}
