package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fpang/incident-dispatch/internal/dispatch"
	"github.com/fpang/incident-dispatch/internal/incident"
	"github.com/fpang/incident-dispatch/internal/inference"
	"github.com/fpang/incident-dispatch/internal/metrics"
	"github.com/fpang/incident-dispatch/internal/s3util"
	"github.com/fpang/incident-dispatch/internal/store"
)

func TestMain(m *testing.M) {
	metrics.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// --- fakes ---

type fakeFetcher struct {
	err       error
	fetched   []string
	cleanedUp int
}

func (f *fakeFetcher) Fetch(ctx context.Context, key string) (string, func(), error) {
	f.fetched = append(f.fetched, key)
	if f.err != nil {
		return "", nil, f.err
	}
	return "/tmp/incident-" + key, func() { f.cleanedUp++ }, nil
}

type fakeProcessor struct {
	report *incident.IncidentReport
	err    error
	paths  []string
}

func (p *fakeProcessor) ProcessVideo(ctx context.Context, path string) (*incident.IncidentReport, error) {
	p.paths = append(p.paths, path)
	return p.report, p.err
}

type fakePresigner struct {
	input *s3.PutObjectInput
}

func (p *fakePresigner) PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	p.input = params
	return &v4.PresignedHTTPRequest{URL: "https://bucket.s3.amazonaws.com/" + *params.Key + "?sig=1"}, nil
}

type fakeStore struct {
	mu        sync.Mutex
	saved     []store.Incident
	incidents []store.Incident
	err       error
}

func (s *fakeStore) SaveIncident(ctx context.Context, inc *store.Incident) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if err := inc.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, *inc)
	return inc.IncidentID, nil
}

func (s *fakeStore) ListIncidents(ctx context.Context) ([]store.Incident, error) {
	return s.incidents, s.err
}

type fakeSummarizer struct {
	analysis string
	err      error
}

func (s *fakeSummarizer) Generate(ctx context.Context, analysis string) (*dispatch.Summary, error) {
	s.analysis = analysis
	if s.err != nil {
		return nil, s.err
	}
	return &dispatch.Summary{Text: "Two-car collision with smoke.", Location: dispatch.MockLocations[0]}, nil
}

type fakeCaller struct {
	message string
	err     error
}

func (c *fakeCaller) PlaceCall(ctx context.Context, firstMessage string) (*dispatch.CallDetails, error) {
	c.message = firstMessage
	if c.err != nil {
		return nil, c.err
	}
	return &dispatch.CallDetails{Status: "success", Response: json.RawMessage(`{"id":"call-1"}`)}, nil
}

type fakeEvents struct {
	events []dispatch.IncidentReported
	err    error
}

func (e *fakeEvents) EmitIncidentReported(ctx context.Context, event dispatch.IncidentReported) error {
	e.events = append(e.events, event)
	return e.err
}

type fakePutter struct {
	keys []string
	err  error
}

func (p *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	p.keys = append(p.keys, *params.Key)
	if p.err != nil {
		return nil, p.err
	}
	return &s3.PutObjectOutput{}, nil
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func sampleReport() *incident.IncidentReport {
	return &incident.IncidentReport{
		Frames:     []incident.Frame{{ID: 1, Image: "aW1n", Timestamp: "00:00"}},
		Keywords:   []string{"Smoke", "Vehicle Collision"},
		Severity:   incident.SeverityHigh,
		Report:     "EMERGENCY DISPATCH REPORT",
		FrameCount: 1,
		Narrative:  "Vehicle Details:\n- red sedan",
	}
}

type testDeps struct {
	fetcher    *fakeFetcher
	processor  *fakeProcessor
	presigner  *fakePresigner
	store      *fakeStore
	summarizer *fakeSummarizer
	caller     *fakeCaller
	events     *fakeEvents
	archive    *fakePutter
}

func newTestServer(t *testing.T, mutate func(*Config, *testDeps)) (*Server, *testDeps) {
	t.Helper()
	d := &testDeps{
		fetcher:    &fakeFetcher{},
		processor:  &fakeProcessor{report: sampleReport()},
		presigner:  &fakePresigner{},
		store:      &fakeStore{},
		summarizer: &fakeSummarizer{},
		caller:     &fakeCaller{},
		events:     &fakeEvents{},
		archive:    &fakePutter{},
	}
	cfg := Config{
		Processor:     d.processor,
		Fetcher:       d.fetcher,
		Presigner:     d.presigner,
		Bucket:        "incident-uploads",
		Store:         d.store,
		Summarizer:    d.summarizer,
		Caller:        d.caller,
		Events:        d.events,
		Archive:       d.archive,
		ArchivePrefix: "reports/",
		Now:           func() time.Time { return fixedNow },
	}
	if mutate != nil {
		mutate(&cfg, d)
	}
	return New(cfg), d
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, decoded
}

// --- tests ---

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec, body := do(t, srv, http.MethodGet, "/api/health", "")

	if rec.Code != http.StatusOK || body["status"] != "ok" || body["service"] != "incident-dispatch" {
		t.Errorf("got %d %v", rec.Code, body)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id")
	}
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, func(c *Config, _ *testDeps) { c.AllowedOrigin = "https://dispatch.example.com" })

	req := httptest.NewRequest(http.MethodOptions, "/api/process-video", nil)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	h := rec.Header()
	if h.Get("Access-Control-Allow-Origin") != "https://dispatch.example.com" {
		t.Errorf("Allow-Origin = %q", h.Get("Access-Control-Allow-Origin"))
	}
	if h.Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("credentials should be allowed")
	}
	if h.Get("Access-Control-Allow-Headers") != "content-type" {
		t.Errorf("Allow-Headers = %q", h.Get("Access-Control-Allow-Headers"))
	}
}

func TestCORS_DefaultOrigin(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec, _ := do(t, srv, http.MethodGet, "/api/health", "")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != DefaultAllowedOrigin {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	tests := []struct {
		method    string
		path      string
		wantAllow string
	}{
		{http.MethodGet, "/api/process-video", "POST"},
		{http.MethodDelete, "/api/phone-call", "POST"},
		{http.MethodPost, "/api/past-incidents", "GET, HEAD"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			srv, _ := newTestServer(t, nil)
			rec, body := do(t, srv, tt.method, tt.path, "")
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want 405", rec.Code)
			}
			if got := rec.Header().Get("Allow"); got != tt.wantAllow {
				t.Errorf("Allow = %q, want %q", got, tt.wantAllow)
			}
			if body["status"] != "error" || body["error"] == "" {
				t.Errorf("body = %v, want JSON error", body)
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	for _, path := range []string{"/", "/api/unknown", "/api/health/extra"} {
		rec, body := do(t, srv, http.MethodGet, path, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, rec.Code)
		}
		if body["error"] != "Not found" {
			t.Errorf("%s: body = %v", path, body)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: Content-Type = %q", path, ct)
		}
	}
}

func TestUploadURL(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKey    string
	}{
		{"valid", `{"fileName":"dash cam.mp4","fileType":"video/mp4"}`, http.StatusOK, "videos/dash_cam.mp4"},
		{"path stripped", `{"fileName":"../../etc/crash.mov","fileType":"video/quicktime"}`, http.StatusOK, "videos/crash.mov"},
		{"missing type", `{"fileName":"a.mp4"}`, http.StatusBadRequest, ""},
		{"missing name", `{"fileType":"video/mp4"}`, http.StatusBadRequest, ""},
		{"not video", `{"fileName":"a.png","fileType":"image/png"}`, http.StatusBadRequest, ""},
		{"bad json", `{"fileName":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, d := newTestServer(t, nil)

			rec, body := do(t, srv, http.MethodPost, "/api/get-upload-url", tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%v)", rec.Code, tt.wantStatus, body)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if body["videoKey"] != tt.wantKey {
				t.Errorf("videoKey = %v, want %s", body["videoKey"], tt.wantKey)
			}
			if !strings.Contains(body["uploadUrl"].(string), tt.wantKey) {
				t.Errorf("uploadUrl = %v", body["uploadUrl"])
			}
			if *d.presigner.input.Bucket != "incident-uploads" || *d.presigner.input.ContentType == "" {
				t.Errorf("presign input = %+v", d.presigner.input)
			}
		})
	}
}

func TestUploadURL_MissingFieldsMessage(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	_, body := do(t, srv, http.MethodPost, "/api/get-upload-url", `{}`)
	if body["error"] != "Missing required fields: fileName and fileType" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestProcessVideo_Success(t *testing.T) {
	srv, d := newTestServer(t, nil)

	rec, body := do(t, srv, http.MethodPost, "/api/process-video", `{"videoKey":"videos/dash.mp4"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%v)", rec.Code, body)
	}
	if body["status"] != "success" || body["severity"] != "HIGH" || body["frame_count"] != float64(1) {
		t.Errorf("body = %v", body)
	}
	for _, key := range []string{"frames", "report", "analysis", "keywords"} {
		if _, ok := body[key]; !ok {
			t.Errorf("response missing %s", key)
		}
	}
	if len(d.processor.paths) != 1 || d.processor.paths[0] != "/tmp/incident-videos/dash.mp4" {
		t.Errorf("processor paths = %v", d.processor.paths)
	}
	if d.fetcher.cleanedUp != 1 {
		t.Errorf("temp file cleanup called %d times", d.fetcher.cleanedUp)
	}

	if len(d.archive.keys) != 1 || !strings.HasPrefix(d.archive.keys[0], "reports/2026/03/14/") {
		t.Errorf("archive keys = %v", d.archive.keys)
	}
	if len(d.events.events) != 1 {
		t.Fatalf("events = %d, want 1", len(d.events.events))
	}
	ev := d.events.events[0]
	if ev.VideoKey != "videos/dash.mp4" || ev.Severity != "HIGH" || ev.ArchiveKey != d.archive.keys[0] {
		t.Errorf("event = %+v", ev)
	}
	if strings.Join(ev.Services, ",") != incident.ServiceFireDepartment+","+incident.ServicePolice {
		t.Errorf("services = %v", ev.Services)
	}
}

func TestProcessVideo_SideEffectsAreBestEffort(t *testing.T) {
	srv, d := newTestServer(t, func(_ *Config, d *testDeps) {
		d.archive.err = errors.New("access denied")
		d.events.err = errors.New("bus missing")
	})

	rec, _ := do(t, srv, http.MethodPost, "/api/process-video", `{"videoKey":"videos/dash.mp4"}`)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 despite archive and event failures", rec.Code)
	}
	if len(d.events.events) != 1 || d.events.events[0].ArchiveKey != "" {
		t.Errorf("event should be sent without an archive key: %+v", d.events.events)
	}
}

func TestProcessVideo_OptionalFeaturesDisabled(t *testing.T) {
	srv, _ := newTestServer(t, func(c *Config, _ *testDeps) {
		c.Archive = nil
		c.Events = nil
	})
	rec, _ := do(t, srv, http.MethodPost, "/api/process-video", `{"videoKey":"videos/dash.mp4"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestProcessVideo_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fetchErr   error
		processErr error
		wantStatus int
	}{
		{"missing key", `{}`, nil, nil, http.StatusBadRequest},
		{"blob not found", `{"videoKey":"videos/x.mp4"}`, &s3util.NotFoundError{Bucket: "b", Key: "videos/x.mp4"}, nil, http.StatusNotFound},
		{"transfer failure", `{"videoKey":"videos/x.mp4"}`, &s3util.TransferError{Bucket: "b", Key: "videos/x.mp4", Op: "GetObject", Err: errors.New("reset")}, nil, http.StatusInternalServerError},
		{"unreadable video", `{"videoKey":"videos/x.mp4"}`, nil, &incident.VideoReadError{Path: "/tmp/x", Message: "cannot open video"}, http.StatusUnprocessableEntity},
		{"inference failure", `{"videoKey":"videos/x.mp4"}`, nil, &incident.InferenceError{Stage: incident.StageSynthesis, Err: &inference.Error{Kind: inference.KindQuota}}, http.StatusBadGateway},
		{"unexpected", `{"videoKey":"videos/x.mp4"}`, nil, errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, d := newTestServer(t, func(_ *Config, d *testDeps) {
				d.fetcher.err = tt.fetchErr
				d.processor.err = tt.processErr
				if tt.processErr != nil {
					d.processor.report = nil
				}
			})

			rec, body := do(t, srv, http.MethodPost, "/api/process-video", tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%v)", rec.Code, tt.wantStatus, body)
			}
			if body["status"] != "error" {
				t.Errorf("status field = %v", body["status"])
			}
			if strings.Contains(rec.Body.String(), "/tmp/x") {
				t.Error("internal paths must not leak to clients")
			}
			if len(d.events.events) != 0 || len(d.archive.keys) != 0 {
				t.Error("failed runs must not be published")
			}
			if tt.processErr != nil && d.fetcher.cleanedUp != 1 {
				t.Error("temp file should be released on failure")
			}
		})
	}
}

func TestSaveIncident(t *testing.T) {
	srv, d := newTestServer(t, nil)

	body := `{
		"timestamp": "2026-03-14T09:29:00Z",
		"incidentReport": {"severity": "HIGH", "keywords": ["Smoke"]},
		"selectedServices": {"police": true, "ambulance": true, "fire": false},
		"notes": "driver conscious"
	}`
	rec, resp := do(t, srv, http.MethodPost, "/api/save-incident", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%v)", rec.Code, resp)
	}
	if resp["status"] != "success" || resp["message"] != "Incident details saved successfully" {
		t.Errorf("resp = %v", resp)
	}
	if len(d.store.saved) != 1 {
		t.Fatalf("saved = %d", len(d.store.saved))
	}
	saved := d.store.saved[0]
	if resp["incidentId"] != saved.IncidentID {
		t.Errorf("incidentId = %v, stored %s", resp["incidentId"], saved.IncidentID)
	}
	if saved.CreatedAt != "2026-03-14T09:30:00Z" || saved.Notes != "driver conscious" {
		t.Errorf("saved = %+v", saved)
	}
	if !saved.SelectedServices["police"] || saved.SelectedServices["fire"] {
		t.Errorf("services = %v", saved.SelectedServices)
	}
}

func TestSaveIncident_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		storeErr   error
		wantStatus int
	}{
		{"missing timestamp", `{"incidentReport":{"a":1}}`, nil, http.StatusBadRequest},
		{"missing report", `{"timestamp":"t"}`, nil, http.StatusBadRequest},
		{"empty body", ``, nil, http.StatusBadRequest},
		{"store failure", `{"timestamp":"t","incidentReport":{"a":1}}`, errors.New("throttled"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, func(_ *Config, d *testDeps) { d.store.err = tt.storeErr })
			rec, _ := do(t, srv, http.MethodPost, "/api/save-incident", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestSaveIncident_BodyTooLarge(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	big := `{"timestamp":"t","incidentReport":{"x":"` + strings.Repeat("a", maxBodyBytes) + `"}}`

	rec, body := do(t, srv, http.MethodPost, "/api/save-incident", big)

	if rec.Code != http.StatusBadRequest || !strings.Contains(body["error"].(string), "exceeds") {
		t.Errorf("got %d %v", rec.Code, body)
	}
}

func TestPastIncidents(t *testing.T) {
	srv, _ := newTestServer(t, func(_ *Config, d *testDeps) {
		d.store.incidents = []store.Incident{
			{IncidentID: "b", Timestamp: "2026-03-14T10:00:00Z"},
			{IncidentID: "a", Timestamp: "2026-03-14T09:00:00Z"},
		}
	})

	rec, body := do(t, srv, http.MethodGet, "/api/past-incidents", "")

	if rec.Code != http.StatusOK || body["status"] != "success" {
		t.Fatalf("got %d %v", rec.Code, body)
	}
	incidents := body["incidents"].([]any)
	if len(incidents) != 2 || incidents[0].(map[string]any)["incident_id"] != "b" {
		t.Errorf("incidents = %v", incidents)
	}
}

func TestPastIncidents_EmptyIsArray(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec, _ := do(t, srv, http.MethodGet, "/api/past-incidents", "")
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"incidents":[]`)) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestPastIncidents_StoreError(t *testing.T) {
	srv, _ := newTestServer(t, func(_ *Config, d *testDeps) { d.store.err = errors.New("scan failed") })
	rec, body := do(t, srv, http.MethodGet, "/api/past-incidents", "")
	if rec.Code != http.StatusInternalServerError || strings.Contains(body["error"].(string), "scan failed") {
		t.Errorf("got %d %v", rec.Code, body)
	}
}

func TestPhoneCall(t *testing.T) {
	srv, d := newTestServer(t, nil)

	rec, body := do(t, srv, http.MethodPost, "/api/phone-call", `{"incidentAnalysis":"Two vehicles collided, smoke visible."}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%v)", rec.Code, body)
	}
	if body["message"] != "Phone call initiated" || body["summary"] != "Two-car collision with smoke." {
		t.Errorf("body = %v", body)
	}
	if body["callDetails"] == nil {
		t.Error("callDetails should be present when calls are enabled")
	}
	if d.summarizer.analysis != "Two vehicles collided, smoke visible." {
		t.Errorf("analysis = %q", d.summarizer.analysis)
	}
	if d.caller.message != "Two-car collision with smoke." {
		t.Errorf("call first message = %q", d.caller.message)
	}
}

func TestPhoneCall_StructuredAnalysis(t *testing.T) {
	srv, d := newTestServer(t, nil)

	rec, _ := do(t, srv, http.MethodPost, "/api/phone-call", `{"incidentAnalysis": {"hazards": ["Smoke"], "vehicleDetails": []}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if d.summarizer.analysis != `{"hazards":["Smoke"],"vehicleDetails":[]}` {
		t.Errorf("analysis = %q", d.summarizer.analysis)
	}
}

func TestPhoneCall_CallsDisabled(t *testing.T) {
	srv, _ := newTestServer(t, func(c *Config, _ *testDeps) { c.Caller = nil })

	rec, body := do(t, srv, http.MethodPost, "/api/phone-call", `{"incidentAnalysis":"fire"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if v, ok := body["callDetails"]; !ok || v != nil {
		t.Errorf("callDetails should be null, got %v", v)
	}
}

func TestPhoneCall_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		summaryErr error
		callErr    error
		wantStatus int
	}{
		{"missing analysis", `{}`, nil, nil, http.StatusBadRequest},
		{"empty string", `{"incidentAnalysis":"  "}`, nil, nil, http.StatusBadRequest},
		{"null", `{"incidentAnalysis":null}`, nil, nil, http.StatusBadRequest},
		{"empty object", `{"incidentAnalysis":{}}`, nil, nil, http.StatusBadRequest},
		{"model failure", `{"incidentAnalysis":"x"}`, &inference.Error{Kind: inference.KindNetwork}, nil, http.StatusBadGateway},
		{"summary failure", `{"incidentAnalysis":"x"}`, errors.New("empty summary"), nil, http.StatusInternalServerError},
		{"vapi rejects", `{"incidentAnalysis":"x"}`, nil, &dispatch.CallError{StatusCode: 400, Body: "bad number"}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, func(_ *Config, d *testDeps) {
				d.summarizer.err = tt.summaryErr
				d.caller.err = tt.callErr
			})
			rec, body := do(t, srv, http.MethodPost, "/api/phone-call", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%v)", rec.Code, tt.wantStatus, body)
			}
		})
	}
}

func TestEndpointName(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"POST /api/process-video", "/api/process-video"},
		{"GET /api/health", "/api/health"},
		{"/api/health", "unmatched"},
		{"/", "unmatched"},
		{"", "unmatched"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/whatever", nil)
		r.Pattern = tt.pattern
		if got := endpointName(r); got != tt.want {
			t.Errorf("endpointName(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}
