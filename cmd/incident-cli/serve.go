package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/incident-dispatch/internal/api"
	"github.com/fpang/incident-dispatch/internal/cli"
	"github.com/fpang/incident-dispatch/internal/dispatch"
	"github.com/fpang/incident-dispatch/internal/inference"
	"github.com/fpang/incident-dispatch/internal/lambdaboot"
	"github.com/fpang/incident-dispatch/internal/logging"
	"github.com/fpang/incident-dispatch/internal/s3util"
	"github.com/fpang/incident-dispatch/internal/store"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the incident dispatch HTTP API locally",
	Long: `Serves the same API as the Lambda on a local port. Uploads and archives
use the S3 bucket from VIDEO_BUCKET_NAME. Incidents are stored in Postgres
when DATABASE_URL is set, otherwise in the DynamoDB table.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringVarP(&backendFlag, "backend", "b", "", "Inference backend: bedrock, gemini or openai (default from INFERENCE_BACKEND)")
}

func runServe(cmd *cobra.Command, args []string) error {
	initStart := time.Now()
	ctx := context.Background()

	awsc, err := lambdaboot.InitAWS(ctx)
	if err != nil {
		return err
	}
	s3c, err := lambdaboot.InitS3(awsc.Config)
	if err != nil {
		return err
	}

	startup := logging.Startup{
		Name:          "incident-cli serve",
		CommitHash:    commitHash,
		BuildTime:     buildTime,
		VideoBucket:   s3c.Bucket,
		ArchivePrefix: logging.EnvOrDefault(lambdaboot.EnvArchivePrefix, lambdaboot.DefaultArchivePrefix),
	}

	var incidents store.IncidentStore
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pg, err := store.NewPostgresStore(ctx, dsn)
		if err != nil {
			return err
		}
		defer pg.Close()
		incidents = pg
		startup.Store = "postgres"
	} else {
		dynamo, table := lambdaboot.InitDynamo(awsc.Config)
		incidents = dynamo
		startup.Store = "dynamodb"
		startup.IncidentTable = table
	}

	p, err := newPipeline(ctx, cli.InferenceOptions{Backend: backendFlag})
	if err != nil {
		return err
	}

	events := lambdaboot.InitEvents(awsc.Config)
	callCfg := lambdaboot.LoadCallConfig(ctx, awsc.SSM)
	cfg := api.Config{
		Processor:     p.processor,
		Fetcher:       s3util.NewFetcher(s3c.Client, s3c.Bucket),
		Presigner:     s3c.Presigner,
		Bucket:        s3c.Bucket,
		Store:         incidents,
		Summarizer:    dispatch.NewSummaryGenerator(p.clients.Summary, nil),
		Events:        events,
		Archive:       s3c.Client,
		ArchivePrefix: startup.ArchivePrefix,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
	}
	if callCfg.Enabled() {
		cfg.Caller = dispatch.NewVAPIClient(callCfg, nil)
	}

	infCfg := inference.ConfigFromEnv(backendFlag)
	startup.Backend = infCfg.Backend
	startup.VisionModel = infCfg.VisionModel
	startup.SummaryModel = infCfg.SummaryModel
	startup.EventBus = events.Bus()
	startup.VAPICalls = callCfg.Enabled()
	lambdaboot.StartupLog(startup, initStart)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", portFlag),
		Handler:      api.New(cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Shutdown did not complete cleanly")
		}
	}()

	log.Info().Int("port", portFlag).Msg("Starting incident API")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
