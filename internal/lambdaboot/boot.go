// Package lambdaboot provides shared cold-start bootstrap logic for the
// incident API.
//
// The Lambda and the local `serve` command both need some subset of: AWS
// config, S3, DynamoDB, EventBridge, SSM secret fetch, and startup
// logging. Each entry point's init is a short composition of these helpers.
package lambdaboot

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/incident-dispatch/internal/dispatch"
	"github.com/fpang/incident-dispatch/internal/logging"
	"github.com/fpang/incident-dispatch/internal/store"
)

// Environment variable names shared by the entry points.
const (
	EnvVideoBucket       = "VIDEO_BUCKET_NAME"
	EnvLegacyBucket      = "AWS_BUCKET_NAME"
	EnvIncidentsTable    = "INCIDENTS_TABLE_NAME"
	EnvEventBus          = "INCIDENT_EVENT_BUS"
	EnvArchivePrefix     = "REPORT_ARCHIVE_PREFIX"
	EnvGeminiKeyParam    = "SSM_GEMINI_KEY_PARAM"
	EnvVAPITokenParam    = "SSM_VAPI_TOKEN_PARAM"
	EnvVAPIToken         = "VAPI_AUTH_TOKEN"
	EnvVAPIPhoneNumberID = "VAPI_PHONE_NUMBER_ID"
	EnvVAPICustomer      = "VAPI_CUSTOMER_NUMBER"

	DefaultGeminiKeyParam = "/incident-dispatch/prod/gemini-api-key"
	DefaultVAPITokenParam = "/incident-dispatch/prod/vapi-auth-token"
	DefaultArchivePrefix  = "reports/"
)

// AWSClients holds the core AWS SDK clients.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// S3Clients holds S3 client, presigner, and bucket name.
type S3Clients struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
	Bucket    string
}

// InitAWS loads the default AWS config and returns it along with common clients.
func InitAWS(ctx context.Context) (AWSClients, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return AWSClients{}, fmt.Errorf("load AWS config: %w", err)
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}, nil
}

// InitS3 creates an S3 client and presigner. The bucket name is read from
// VIDEO_BUCKET_NAME, falling back to AWS_BUCKET_NAME.
func InitS3(cfg aws.Config) (S3Clients, error) {
	bucket := logging.EnvOrDefault(EnvVideoBucket, os.Getenv(EnvLegacyBucket))
	if bucket == "" {
		return S3Clients{}, fmt.Errorf("%s is required", EnvVideoBucket)
	}
	client := s3.NewFromConfig(cfg)
	return S3Clients{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
	}, nil
}

// InitDynamo creates the DynamoDB incident store. The table name comes from
// INCIDENTS_TABLE_NAME and defaults to EmergencyIncidents.
func InitDynamo(cfg aws.Config) (*store.DynamoStore, string) {
	tableName := logging.EnvOrDefault(EnvIncidentsTable, store.DefaultTableName)
	return store.NewDynamoStore(dynamodb.NewFromConfig(cfg), tableName), tableName
}

// InitEvents creates the IncidentReported emitter. When INCIDENT_EVENT_BUS
// is unset the returned emitter is disabled.
func InitEvents(cfg aws.Config) *dispatch.EventEmitter {
	bus := os.Getenv(EnvEventBus)
	if bus == "" {
		log.Warn().Str("envVar", EnvEventBus).Msg("Event bus not set, IncidentReported events disabled")
		return dispatch.NewEventEmitter(nil, "")
	}
	return dispatch.NewEventEmitter(eventbridge.NewFromConfig(cfg), bus)
}

// ParameterGetter is the subset of *ssm.Client used for secrets.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// LoadSecret returns the value of envVar if set. Otherwise it reads the
// SSM parameter named by paramEnvVar (or defaultParam), decrypts it and
// exports it as envVar so later lookups are free.
func LoadSecret(ctx context.Context, client ParameterGetter, envVar, paramEnvVar, defaultParam string) (string, error) {
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	paramName := logging.EnvOrDefault(paramEnvVar, defaultParam)

	ssmStart := time.Now()
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &paramName,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("read SSM parameter %s: %w", paramName, err)
	}
	value := aws.ToString(result.Parameter.Value)
	os.Setenv(envVar, value)
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(ssmStart)).Msg("Secret loaded from SSM")
	return value, nil
}

// LoadCallConfig resolves the VAPI call settings. A missing token is not
// an error: calls are disabled and the phone-call endpoint only returns
// the summary.
func LoadCallConfig(ctx context.Context, client ParameterGetter) dispatch.CallConfig {
	cfg := dispatch.CallConfig{
		PhoneNumberID:  os.Getenv(EnvVAPIPhoneNumberID),
		CustomerNumber: os.Getenv(EnvVAPICustomer),
	}
	if cfg.PhoneNumberID == "" || cfg.CustomerNumber == "" {
		log.Warn().Msg("VAPI phone number or customer number not set, dispatch calls disabled")
		return cfg
	}

	token, err := LoadSecret(ctx, client, EnvVAPIToken, EnvVAPITokenParam, DefaultVAPITokenParam)
	if err != nil {
		log.Warn().Err(err).Msg("VAPI auth token not available, dispatch calls disabled")
		return cfg
	}
	cfg.AuthToken = token
	return cfg
}

// StartupLog stamps the init duration on s and logs it.
func StartupLog(s logging.Startup, initStart time.Time) {
	s.InitDuration = time.Since(initStart)
	s.Log()
}
