package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Startup describes how an incident API process was wired. Both the Lambda
// and `incident-cli serve` fill one in after their init finishes, so a cold
// start can be checked against the deployed configuration in one event.
type Startup struct {
	Name         string
	CommitHash   string
	BuildTime    string
	InitDuration time.Duration

	Backend      string
	VisionModel  string
	SummaryModel string

	VideoBucket   string
	ArchivePrefix string
	Store         string // "dynamodb" or "postgres"
	IncidentTable string

	// EventBus is empty when IncidentReported events are disabled.
	EventBus  string
	VAPICalls bool

	// SecretParams maps a secret's name to the SSM path it was read from.
	// Values are never logged.
	SecretParams map[string]string
}

// Log emits the startup record as a single INFO event.
func (s Startup) Log() {
	proc := zerolog.Dict().
		Str("name", s.Name).
		Str("goVersion", runtime.Version()).
		Str("logLevel", ParseLevel(os.Getenv(LevelEnvVar)).String())
	if s.CommitHash != "" {
		proc = proc.Str("commitHash", s.CommitHash)
	}
	if s.BuildTime != "" {
		proc = proc.Str("buildTime", s.BuildTime)
	}
	if InLambda() {
		proc = proc.Dict("lambda", zerolog.Dict().
			Str("function", os.Getenv("AWS_LAMBDA_FUNCTION_NAME")).
			Str("version", os.Getenv("AWS_LAMBDA_FUNCTION_VERSION")).
			Str("memoryMB", os.Getenv("AWS_LAMBDA_FUNCTION_MEMORY_SIZE")).
			Str("region", os.Getenv("AWS_REGION")))
	}

	evt := log.Info().
		Dict("process", proc).
		Dict("inference", zerolog.Dict().
			Str("backend", s.Backend).
			Str("visionModel", s.VisionModel).
			Str("summaryModel", s.SummaryModel))

	storage := zerolog.Dict().
		Str("videoBucket", s.VideoBucket).
		Str("archivePrefix", s.ArchivePrefix).
		Str("store", s.Store)
	if s.IncidentTable != "" {
		storage = storage.Str("incidentTable", s.IncidentTable)
	}
	evt = evt.Dict("storage", storage)

	dispatch := zerolog.Dict().
		Bool("events", s.EventBus != "").
		Bool("vapiCalls", s.VAPICalls)
	if s.EventBus != "" {
		dispatch = dispatch.Str("eventBus", s.EventBus)
	}
	evt = evt.Dict("dispatch", dispatch)

	if len(s.SecretParams) > 0 {
		params := zerolog.Dict()
		for name, path := range s.SecretParams {
			params = params.Str(name, path)
		}
		evt = evt.Dict("secretParams", params)
	}
	if s.InitDuration > 0 {
		evt = evt.Dur("initDuration", s.InitDuration)
	}

	evt.Msg("Startup complete")
}
