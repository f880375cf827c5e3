// Package api serves the incident dispatch HTTP API.
//
// Endpoints:
//
//	GET  /api/health          health check
//	POST /api/get-upload-url  presigned S3 PUT URL for a dashcam video
//	POST /api/process-video   run the incident pipeline on an uploaded video
//	POST /api/save-incident   persist a reviewed incident
//	GET  /api/past-incidents  list saved incidents, newest first
//	POST /api/phone-call      dispatch summary plus optional outbound call
//
// The same Server backs the Lambda (through the API Gateway adapter) and
// the local `incident-cli serve` command.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fpang/incident-dispatch/internal/dispatch"
	"github.com/fpang/incident-dispatch/internal/incident"
	"github.com/fpang/incident-dispatch/internal/s3util"
	"github.com/fpang/incident-dispatch/internal/store"
)

// DefaultAllowedOrigin is the CORS origin used when none is configured.
const DefaultAllowedOrigin = "http://localhost:5173"

// maxBodyBytes limits JSON request bodies.
const maxBodyBytes = 1 << 20

// VideoProcessor runs the pipeline on a local file. Implemented by
// *incident.Processor.
type VideoProcessor interface {
	ProcessVideo(ctx context.Context, localVideoPath string) (*incident.IncidentReport, error)
}

// VideoFetcher downloads a stored video to a temporary local file. The
// returned cleanup removes it. Implemented by *s3util.Fetcher.
type VideoFetcher interface {
	Fetch(ctx context.Context, key string) (string, func(), error)
}

// Summarizer produces the spoken dispatch summary. Implemented by
// *dispatch.SummaryGenerator.
type Summarizer interface {
	Generate(ctx context.Context, analysis string) (*dispatch.Summary, error)
}

// EventPublisher announces processed incidents. Implemented by
// *dispatch.EventEmitter.
type EventPublisher interface {
	EmitIncidentReported(ctx context.Context, event dispatch.IncidentReported) error
}

// Config holds the Server's collaborators. Caller, Events and Archive are
// optional; a nil value disables that feature.
type Config struct {
	Processor  VideoProcessor
	Fetcher    VideoFetcher
	Presigner  s3util.PutPresigner
	Bucket     string
	Store      store.IncidentStore
	Summarizer Summarizer

	Caller        dispatch.Caller
	Events        EventPublisher
	Archive       s3util.ObjectPutter
	ArchivePrefix string

	AllowedOrigin string
	UploadExpiry  time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the API's http.Handler.
type Server struct {
	cfg     Config
	handler http.Handler
}

var _ http.Handler = (*Server)(nil)

// New builds a Server and its route table.
func New(cfg Config) *Server {
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = DefaultAllowedOrigin
	}
	if cfg.UploadExpiry <= 0 {
		cfg.UploadExpiry = s3util.UploadURLExpiry
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Server{cfg: cfg}

	routes := []struct {
		method, path string
		handler      http.HandlerFunc
	}{
		{http.MethodGet, "/api/health", s.handleHealth},
		{http.MethodPost, "/api/get-upload-url", s.handleUploadURL},
		{http.MethodPost, "/api/process-video", s.handleProcessVideo},
		{http.MethodPost, "/api/save-incident", s.handleSaveIncident},
		{http.MethodGet, "/api/past-incidents", s.handlePastIncidents},
		{http.MethodPost, "/api/phone-call", s.handlePhoneCall},
	}

	mux := http.NewServeMux()
	for _, rt := range routes {
		mux.HandleFunc(rt.method+" "+rt.path, rt.handler)
		// Method-less pattern catches every other method on the path.
		mux.HandleFunc(rt.path, methodNotAllowed(rt.method))
	}
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusNotFound, "Not found")
	})

	s.handler = withCORS(cfg.AllowedOrigin, withLogging(withMetrics(mux)))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
