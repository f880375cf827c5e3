package inference

import (
	"context"
	"time"

	"github.com/fpang/incident-dispatch/internal/metrics"
)

// Instrument wraps c so every call emits an EMF latency/count metric with
// Backend, Stage and Result dimensions.
func Instrument(c Client, backend, stage string) Client {
	return ClientFunc(func(ctx context.Context, req Request) (string, error) {
		start := time.Now()
		text, err := c.Infer(ctx, req)

		result := "success"
		if err != nil {
			result = KindOf(err).String()
		}
		metrics.New(metrics.Namespace).
			Dimension("Backend", backend).
			Dimension("Stage", stage).
			Dimension("Result", result).
			Duration("InferenceLatencyMs", time.Since(start)).
			Count("InferenceCount").
			Property("responseLength", len(text)).
			Flush()

		return text, err
	})
}
