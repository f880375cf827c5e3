package incident

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/fpang/incident-dispatch/internal/inference"
	"github.com/fpang/incident-dispatch/internal/metrics"
)

// Processor runs the full video-to-report pipeline. It holds no
// per-request state and is safe for concurrent use.
type Processor struct {
	sampler     FrameSampler
	describer   *FrameDescriber
	synthesizer *IncidentSynthesizer
	generator   ReportGenerator
	onFrameDone func(done, total int)
}

// Option configures a Processor.
type Option func(*Processor)

// WithSynthesisModel uses a separate client for the synthesis call.
func WithSynthesisModel(model inference.Client) Option {
	return func(p *Processor) {
		p.synthesizer = NewIncidentSynthesizer(model)
	}
}

// WithClock sets the clock used for the report timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.generator.Now = now
	}
}

// WithProgress registers a callback invoked after each frame description
// completes. It may be called from several goroutines.
func WithProgress(fn func(done, total int)) Option {
	return func(p *Processor) {
		p.onFrameDone = fn
	}
}

// NewProcessor builds a Processor. model serves both frame description and
// synthesis unless WithSynthesisModel is given.
func NewProcessor(sampler FrameSampler, model inference.Client, opts ...Option) *Processor {
	p := &Processor{
		sampler:     sampler,
		describer:   NewFrameDescriber(model),
		synthesizer: NewIncidentSynthesizer(model),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessVideo samples localVideoPath, describes each frame, synthesizes a
// narrative and derives the structured analysis, keywords, severity and
// report. On any failure it returns a nil report and the component's
// error unchanged.
func (p *Processor) ProcessVideo(ctx context.Context, localVideoPath string) (*IncidentReport, error) {
	start := time.Now()
	log.Info().Str("video", localVideoPath).Msg("Processing incident video")

	frames, err := p.sampler.Sample(ctx, localVideoPath)
	if err != nil {
		p.recordFailure("sample", start)
		return nil, err
	}
	if len(frames) == 0 {
		p.recordFailure("sample", start)
		return nil, &VideoReadError{Path: localVideoPath, Message: "no frames retained"}
	}
	log.Debug().Int("frames", len(frames)).Dur("elapsed", time.Since(start)).Msg("Frames sampled")

	descriptions, err := p.describeAll(ctx, frames)
	if err != nil {
		p.recordFailure("describe", start)
		return nil, err
	}

	narrative, err := p.synthesizer.Synthesize(ctx, descriptions)
	if err != nil {
		p.recordFailure("synthesize", start)
		return nil, err
	}

	analysis := FormatAnalysis(narrative)
	if analysis.IsEmpty() {
		log.Warn().Int("narrativeLength", len(narrative)).Msg("Narrative contained no recognised sections")
	}
	keywords := ExtractKeywords(descriptions)
	severity := ClassifySeverity(keywords)
	report := p.generator.Generate(descriptions, keywords)

	elapsed := time.Since(start)
	metrics.New(metrics.Namespace).
		Dimension("Operation", "ProcessVideo").
		Dimension("Severity", string(severity)).
		Duration("PipelineLatencyMs", elapsed).
		Metric("FramesProcessed", float64(len(frames)), metrics.UnitCount).
		Count("IncidentsProcessed").
		Property("keywords", keywords.Sorted()).
		Flush()

	log.Info().
		Int("frames", len(frames)).
		Strs("keywords", keywords.Sorted()).
		Str("severity", string(severity)).
		Dur("elapsed", elapsed).
		Msg("Incident video processed")

	return &IncidentReport{
		Frames:     frames,
		Analysis:   analysis,
		Keywords:   keywords.Sorted(),
		Severity:   severity,
		Report:     report,
		FrameCount: len(frames),
		Narrative:  narrative,
	}, nil
}

// describeAll describes frames concurrently. Each goroutine writes only its
// own slot, so the result is in frame order. The first error cancels the
// remaining calls and is returned.
func (p *Processor) describeAll(ctx context.Context, frames []Frame) ([]string, error) {
	descriptions := make([]string, len(frames))
	var done atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(FramesPerVideo)
	for i, frame := range frames {
		g.Go(func() error {
			desc, err := p.describer.Describe(gctx, frame)
			if err != nil {
				log.Error().Err(err).Int("frameId", frame.ID).Msg("Frame description failed")
				return err
			}
			descriptions[i] = desc
			if p.onFrameDone != nil {
				p.onFrameDone(int(done.Add(1)), len(frames))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return descriptions, nil
}

func (p *Processor) recordFailure(stage string, start time.Time) {
	metrics.New(metrics.Namespace).
		Dimension("Operation", "ProcessVideo").
		Dimension("FailedStage", stage).
		Duration("PipelineLatencyMs", time.Since(start)).
		Count("PipelineFailures").
		Flush()
}
