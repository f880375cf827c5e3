package main

import (
	"context"
	"fmt"

	"github.com/fpang/incident-dispatch/internal/cli"
	"github.com/fpang/incident-dispatch/internal/incident"
	"github.com/fpang/incident-dispatch/internal/inference"
	"github.com/fpang/incident-dispatch/internal/video"
)

// pipeline bundles what every command needs to process a video.
type pipeline struct {
	source    *video.FFmpegSource
	clients   *inference.Clients
	processor *incident.Processor
}

// newPipeline checks for ffmpeg, initializes the inference backend and
// builds a Processor. opts are appended to the processor options.
func newPipeline(ctx context.Context, infOpts cli.InferenceOptions, opts ...incident.Option) (*pipeline, error) {
	if err := video.CheckFFmpegAvailable(); err != nil {
		return nil, err
	}
	source, err := video.NewFFmpegSource()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg and ffprobe must be installed: %w", err)
	}

	clients, err := cli.InitInference(ctx, infOpts)
	if err != nil {
		return nil, err
	}

	opts = append([]incident.Option{incident.WithSynthesisModel(clients.Synthesis)}, opts...)
	return &pipeline{
		source:    source,
		clients:   clients,
		processor: incident.NewProcessor(video.NewSampler(source), clients.Frame, opts...),
	}, nil
}
