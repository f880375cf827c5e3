// Package main provides the Lambda entry point for the incident dispatch API.
//
// API Gateway (HTTP API, payload v2) requests are adapted to net/http and
// served by api.Server. Everything is wired once at cold start.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/incident-dispatch/internal/api"
	"github.com/fpang/incident-dispatch/internal/dispatch"
	"github.com/fpang/incident-dispatch/internal/incident"
	"github.com/fpang/incident-dispatch/internal/inference"
	"github.com/fpang/incident-dispatch/internal/lambdaboot"
	"github.com/fpang/incident-dispatch/internal/logging"
	"github.com/fpang/incident-dispatch/internal/s3util"
	"github.com/fpang/incident-dispatch/internal/video"
)

var server *api.Server

func init() {
	initStart := time.Now()
	logging.Init()
	ctx := context.Background()

	awsc, err := lambdaboot.InitAWS(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize AWS")
	}
	s3c, err := lambdaboot.InitS3(awsc.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize S3")
	}
	incidents, tableName := lambdaboot.InitDynamo(awsc.Config)
	events := lambdaboot.InitEvents(awsc.Config)

	// Secrets already in the environment are not read from SSM.
	secretParams := map[string]string{}
	infCfg := inference.ConfigFromEnv("")
	infCfg.AWS = &awsc.Config
	if infCfg.Backend == inference.BackendGemini {
		if os.Getenv("GEMINI_API_KEY") == "" {
			secretParams["geminiKey"] = logging.EnvOrDefault(lambdaboot.EnvGeminiKeyParam, lambdaboot.DefaultGeminiKeyParam)
		}
		key, err := lambdaboot.LoadSecret(ctx, awsc.SSM, "GEMINI_API_KEY", lambdaboot.EnvGeminiKeyParam, lambdaboot.DefaultGeminiKeyParam)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load Gemini API key")
		}
		infCfg.GeminiAPIKey = key
	}
	clients, err := inference.New(ctx, infCfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", infCfg.Backend).Msg("Failed to initialize inference backend")
	}

	source, err := video.NewFFmpegSource()
	if err != nil {
		log.Fatal().Err(err).Msg("ffmpeg is required in the Lambda image")
	}
	processor := incident.NewProcessor(video.NewSampler(source), clients.Frame,
		incident.WithSynthesisModel(clients.Synthesis))

	vapiTokenFromSSM := os.Getenv(lambdaboot.EnvVAPIToken) == ""
	callCfg := lambdaboot.LoadCallConfig(ctx, awsc.SSM)
	if callCfg.Enabled() && vapiTokenFromSSM {
		secretParams["vapiToken"] = logging.EnvOrDefault(lambdaboot.EnvVAPITokenParam, lambdaboot.DefaultVAPITokenParam)
	}
	archivePrefix := logging.EnvOrDefault(lambdaboot.EnvArchivePrefix, lambdaboot.DefaultArchivePrefix)

	cfg := api.Config{
		Processor:     processor,
		Fetcher:       s3util.NewFetcher(s3c.Client, s3c.Bucket),
		Presigner:     s3c.Presigner,
		Bucket:        s3c.Bucket,
		Store:         incidents,
		Summarizer:    dispatch.NewSummaryGenerator(clients.Summary, nil),
		Events:        events,
		Archive:       s3c.Client,
		ArchivePrefix: archivePrefix,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
	}
	if callCfg.Enabled() {
		cfg.Caller = dispatch.NewVAPIClient(callCfg, &http.Client{Timeout: 30 * time.Second})
	}
	server = api.New(cfg)

	lambdaboot.StartupLog(logging.Startup{
		Name:          "incident-lambda",
		CommitHash:    commitHash,
		BuildTime:     buildTime,
		Backend:       infCfg.Backend,
		VisionModel:   infCfg.VisionModel,
		SummaryModel:  infCfg.SummaryModel,
		VideoBucket:   s3c.Bucket,
		ArchivePrefix: archivePrefix,
		Store:         "dynamodb",
		IncidentTable: tableName,
		EventBus:      events.Bus(),
		VAPICalls:     callCfg.Enabled(),
		SecretParams:  secretParams,
	}, initStart)
}

func main() {
	adapter := httpadapter.NewV2(server)
	lambda.Start(adapter.ProxyWithContext)
}
