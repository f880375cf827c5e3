package assets

import (
	"bytes"
	_ "embed"
	"text/template"
)

// --- Static prompts ---

// FrameObservationPrompt asks the vision model to describe a single frame.
//
//go:embed prompts/frame-observation.txt
var FrameObservationPrompt string

// DispatcherSystemPrompt is the system prompt of the voice dispatch assistant.
//
//go:embed prompts/dispatcher-system.txt
var DispatcherSystemPrompt string

// --- Templates ---

//go:embed prompts/incident-synthesis.txt
var incidentSynthesisTemplate string

//go:embed prompts/dispatch-summary.txt
var dispatchSummaryTemplate string

// template.Must panics on malformed templates at startup rather than at call time.
var (
	synthesisTmpl = template.Must(template.New("synthesis").Parse(incidentSynthesisTemplate))
	summaryTmpl   = template.Must(template.New("summary").Parse(dispatchSummaryTemplate))
)

// SynthesisData holds the dynamic data of the synthesis prompt.
type SynthesisData struct {
	// Observations is the space-joined per-frame descriptions.
	Observations string
	// Headers are the exact section headers the model must emit.
	Headers []string
}

// SummaryData holds the dynamic data of the dispatch summary prompt.
type SummaryData struct {
	Address     string
	Landmark    string
	Coordinates string
	Analysis    string
}

// RenderSynthesisPrompt renders the cross-frame synthesis prompt.
func RenderSynthesisPrompt(data SynthesisData) string {
	return render(synthesisTmpl, data)
}

// RenderSummaryPrompt renders the dispatch summary prompt.
func RenderSummaryPrompt(data SummaryData) string {
	return render(summaryTmpl, data)
}

// render executes a pre-parsed template. Execution errors are not expected
// with these templates; whatever was rendered is returned.
func render(tmpl *template.Template, data interface{}) string {
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}
