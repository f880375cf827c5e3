package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/incident-dispatch/internal/dispatch"
	"github.com/fpang/incident-dispatch/internal/incident"
	"github.com/fpang/incident-dispatch/internal/inference"
	"github.com/fpang/incident-dispatch/internal/s3util"
	"github.com/fpang/incident-dispatch/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "incident-dispatch",
	})
}

// --- Presigned Upload URL ---

type uploadURLRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

// POST /api/get-upload-url {fileName, fileType}
// Returns a presigned S3 PUT URL so the browser uploads the video directly.
// The content type is part of the signature.
func (s *Server) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.FileName == "" || req.FileType == "" {
		httpError(w, http.StatusBadRequest, "Missing required fields: fileName and fileType")
		return
	}
	if !strings.HasPrefix(req.FileType, "video/") {
		log.Warn().Str("fileType", req.FileType).Msg("Unsupported upload content type")
		httpError(w, http.StatusBadRequest, "unsupported content type: "+req.FileType)
		return
	}

	key := s3util.UploadKey(req.FileName)
	url, err := s3util.PresignUpload(r.Context(), s.cfg.Presigner, s.cfg.Bucket, key, req.FileType, s.cfg.UploadExpiry)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to generate upload URL", err.Error())
		return
	}

	log.Debug().Str("key", key).Str("fileType", req.FileType).Msg("Upload URL issued")
	respondJSON(w, http.StatusOK, map[string]string{
		"uploadUrl": url,
		"videoKey":  key,
	})
}

// --- Process Video ---

type processVideoRequest struct {
	VideoKey string `json:"videoKey"`
}

type processVideoResponse struct {
	Status     string                      `json:"status"`
	Frames     []incident.Frame            `json:"frames"`
	Report     string                      `json:"report"`
	Analysis   incident.StructuredAnalysis `json:"analysis"`
	Keywords   []string                    `json:"keywords"`
	Severity   incident.Severity           `json:"severity"`
	FrameCount int                         `json:"frame_count"`
}

// POST /api/process-video {videoKey}
func (s *Server) handleProcessVideo(w http.ResponseWriter, r *http.Request) {
	var req processVideoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.VideoKey == "" {
		httpError(w, http.StatusBadRequest, "Missing required field: videoKey")
		return
	}

	ctx := r.Context()
	localPath, cleanup, err := s.cfg.Fetcher.Fetch(ctx, req.VideoKey)
	if err != nil {
		s.processError(w, req.VideoKey, err)
		return
	}
	defer cleanup()

	report, err := s.cfg.Processor.ProcessVideo(ctx, localPath)
	if err != nil {
		s.processError(w, req.VideoKey, err)
		return
	}

	s.publishReport(ctx, req.VideoKey, report)

	respondJSON(w, http.StatusOK, processVideoResponse{
		Status:     "success",
		Frames:     report.Frames,
		Report:     report.Report,
		Analysis:   report.Analysis,
		Keywords:   report.Keywords,
		Severity:   report.Severity,
		FrameCount: report.FrameCount,
	})
}

// processError maps pipeline and fetch failures to status codes.
func (s *Server) processError(w http.ResponseWriter, videoKey string, err error) {
	var (
		notFound *s3util.NotFoundError
		readErr  *incident.VideoReadError
		infErr   *incident.InferenceError
	)
	switch {
	case errors.As(err, &notFound):
		httpError(w, http.StatusNotFound, "video not found: "+videoKey)
	case errors.As(err, &readErr):
		httpError(w, http.StatusUnprocessableEntity, "video could not be read", err.Error())
	case errors.As(err, &infErr):
		httpError(w, http.StatusBadGateway, "video analysis failed", err.Error(), "kind="+inference.KindOf(err).String())
	default:
		httpError(w, http.StatusInternalServerError, "failed to process video", err.Error())
	}
}

// archivedReport is the document written to the report archive.
type archivedReport struct {
	VideoKey    string                   `json:"videoKey"`
	ProcessedAt string                   `json:"processedAt"`
	Narrative   string                   `json:"narrative"`
	Report      *incident.IncidentReport `json:"report"`
}

// publishReport archives the report and emits IncidentReported. Both are
// best-effort: failures are logged and the response is unaffected.
func (s *Server) publishReport(ctx context.Context, videoKey string, report *incident.IncidentReport) {
	now := s.cfg.Now().UTC()

	var archiveKey string
	if s.cfg.Archive != nil {
		key := s3util.ArchiveKey(s.cfg.ArchivePrefix, videoKey, now)
		err := s3util.ArchiveReport(ctx, s.cfg.Archive, s.cfg.Bucket, key, archivedReport{
			VideoKey:    videoKey,
			ProcessedAt: now.Format(time.RFC3339),
			Narrative:   report.Narrative,
			Report:      report,
		})
		if err != nil {
			log.Warn().Err(err).Str("videoKey", videoKey).Msg("Failed to archive incident report")
		} else {
			archiveKey = key
		}
	}

	if s.cfg.Events == nil {
		return
	}
	keywords := make(incident.KeywordSet, len(report.Keywords))
	for _, k := range report.Keywords {
		keywords[k] = struct{}{}
	}
	err := s.cfg.Events.EmitIncidentReported(ctx, dispatch.IncidentReported{
		VideoKey:    videoKey,
		Severity:    string(report.Severity),
		Keywords:    report.Keywords,
		Services:    incident.RecommendServices(keywords),
		FrameCount:  report.FrameCount,
		ArchiveKey:  archiveKey,
		ProcessedAt: now.Format(time.RFC3339),
	})
	if err != nil {
		log.Warn().Err(err).Str("videoKey", videoKey).Msg("Failed to emit IncidentReported")
	}
}

// --- Incidents ---

type saveIncidentRequest struct {
	Timestamp        string          `json:"timestamp"`
	IncidentReport   map[string]any  `json:"incidentReport"`
	SelectedServices map[string]bool `json:"selectedServices"`
	Notes            string          `json:"notes"`
}

// POST /api/save-incident
func (s *Server) handleSaveIncident(w http.ResponseWriter, r *http.Request) {
	var req saveIncidentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Timestamp == "" || len(req.IncidentReport) == 0 {
		httpError(w, http.StatusBadRequest, "Missing required fields: timestamp and incidentReport")
		return
	}

	item := store.NewIncident(req.Timestamp, req.IncidentReport, req.SelectedServices, req.Notes, s.cfg.Now())
	id, err := s.cfg.Store.SaveIncident(r.Context(), item)
	if err != nil {
		var valErr *store.ValidationError
		if errors.As(err, &valErr) {
			httpError(w, http.StatusBadRequest, valErr.Error())
			return
		}
		httpError(w, http.StatusInternalServerError, "failed to save incident", err.Error())
		return
	}

	log.Info().Str("incidentId", id).Msg("Incident saved")
	respondJSON(w, http.StatusOK, map[string]string{
		"status":     "success",
		"message":    "Incident details saved successfully",
		"incidentId": id,
	})
}

// GET /api/past-incidents
func (s *Server) handlePastIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := s.cfg.Store.ListIncidents(r.Context())
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to fetch incidents", err.Error())
		return
	}
	if incidents == nil {
		incidents = []store.Incident{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"incidents": incidents,
	})
}

// --- Phone Call ---

type phoneCallRequest struct {
	// IncidentAnalysis is the structured analysis or narrative shown to
	// the operator; any JSON value is accepted.
	IncidentAnalysis json.RawMessage `json:"incidentAnalysis"`
}

type phoneCallResponse struct {
	Status      string                `json:"status"`
	Message     string                `json:"message"`
	Summary     string                `json:"summary"`
	Location    dispatch.Location     `json:"location"`
	CallDetails *dispatch.CallDetails `json:"callDetails"`
}

// POST /api/phone-call {incidentAnalysis}
func (s *Server) handlePhoneCall(w http.ResponseWriter, r *http.Request) {
	var req phoneCallRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	analysis := analysisText(req.IncidentAnalysis)
	if analysis == "" {
		httpError(w, http.StatusBadRequest, "Missing required field: incidentAnalysis")
		return
	}

	ctx := r.Context()
	summary, err := s.cfg.Summarizer.Generate(ctx, analysis)
	if err != nil {
		var infErr *inference.Error
		if errors.As(err, &infErr) {
			httpError(w, http.StatusBadGateway, "failed to generate dispatch summary", err.Error())
			return
		}
		httpError(w, http.StatusInternalServerError, "failed to generate dispatch summary", err.Error())
		return
	}

	var details *dispatch.CallDetails
	if s.cfg.Caller != nil {
		details, err = s.cfg.Caller.PlaceCall(ctx, summary.Text)
		if err != nil {
			httpError(w, http.StatusBadGateway, "failed to create call", err.Error())
			return
		}
	} else {
		log.Info().Msg("Dispatch calls disabled, returning summary only")
	}

	respondJSON(w, http.StatusOK, phoneCallResponse{
		Status:      "success",
		Message:     "Phone call initiated",
		Summary:     summary.Text,
		Location:    summary.Location,
		CallDetails: details,
	})
}

// analysisText turns the incidentAnalysis value into prompt text. A JSON
// string is used as-is; any other non-null value is passed as compact JSON.
func analysisText(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	switch trimmed {
	case "{}", "[]":
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return trimmed
	}
	return buf.String()
}
