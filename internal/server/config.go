package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/AmitMY/chimera/internal/util"
)

// Config is the viewer configuration, read from the environment.
type Config struct {
	Port      string
	StaticDir string

	ChimeraURL    string
	GraphsSource  string
	SamplesSource string
	DefaultGraph  int
	SampleCount   int
	ShuffleRounds int

	RemoteRPS     float64
	RemoteBurst   int
	RemoteTimeout time.Duration

	TranslateAdapter string
	AIChatURL        string
	AIChatKey        string
	AIChatModel      string
	AITemperature    float64
	AIParallel       int

	AuthURL        string
	MasterAPIKey   string
	MasterUserID   int64
	MasterUserRole string

	AWSRegion    string
	AWSEndpoint  string
	AWSAccessKey string
	AWSSecretKey string

	SessionIdle time.Duration
}

func LoadConfig() Config {
	masterUserID, _ := strconv.ParseInt(util.GetEnv("MASTER_USER_ID"), 10, 64)

	return Config{
		Port:      util.GetEnvString("PORT", "8080"),
		StaticDir: util.GetEnv("STATIC_DIR"),

		ChimeraURL:    util.GetEnvString("CHIMERA_URL", "http://localhost:5001"),
		GraphsSource:  util.GetEnv("GRAPHS_SOURCE"),
		SamplesSource: util.GetEnv("SAMPLES_SOURCE"),
		DefaultGraph:  util.GetEnvInt("DEFAULT_GRAPH", 500),
		SampleCount:   util.GetEnvInt("SAMPLE_COUNT", 11),
		ShuffleRounds: util.GetEnvInt("SHUFFLE_ROUNDS", 5),

		RemoteRPS:     util.GetEnvNumeric("REMOTE_RPS", 0),
		RemoteBurst:   util.GetEnvInt("REMOTE_BURST", 1),
		RemoteTimeout: time.Duration(util.GetEnvInt("REMOTE_TIMEOUT_SECONDS", 120)) * time.Second,

		TranslateAdapter: util.GetEnvString("TRANSLATE_ADAPTER", "chimera"),
		AIChatURL:        util.GetEnv("AI_CHAT_URL"),
		AIChatKey:        util.GetEnv("AI_CHAT_KEY"),
		AIChatModel:      util.GetEnv("AI_CHAT_MODEL"),
		AITemperature:    util.GetEnvNumeric("AI_TEMPERATURE", 0),
		AIParallel:       util.GetEnvInt("AI_PARALLEL_REQ", 4),

		AuthURL:        util.GetEnv("AUTH_URL"),
		MasterAPIKey:   util.GetEnv("MASTER_API_KEY"),
		MasterUserID:   masterUserID,
		MasterUserRole: util.GetEnv("MASTER_USER_ROLE"),

		AWSRegion:    util.GetEnvString("AWS_REGION", "us-east-1"),
		AWSEndpoint:  util.GetEnv("AWS_ENDPOINT"),
		AWSAccessKey: util.GetEnv("AWS_ACCESS_KEY"),
		AWSSecretKey: util.GetEnv("AWS_SECRET_KEY"),

		SessionIdle: time.Duration(util.GetEnvInt("SESSION_IDLE_MINUTES", 120)) * time.Minute,
	}
}

// needsS3 reports whether any document source lives in S3.
func (c Config) needsS3() bool {
	return strings.HasPrefix(c.GraphsSource, "s3://") || strings.HasPrefix(c.SamplesSource, "s3://")
}
