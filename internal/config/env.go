package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3100"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	// TimeZone decides which calendar day "today" is.
	TimeZone string `envconfig:"TIMEZONE" default:"Asia/Shanghai"`
	// CORSOrigins is a comma separated allow-list; empty allows any origin.
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`
}

type StorageEnv struct {
	// Type is local or s3 for YAML documents, or sqlite, mysql or postgres
	// for a relational database.
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".studio/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"studio/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-east-1"`
	// DatabaseDSN is used by the relational types.
	DatabaseDSN string `envconfig:"DATABASE_DSN" default:"file:.studio/studio.db?_foreign_keys=on"`
}

type PipelineEnv struct {
	// PipelineFile is an optional YAML stage pipeline, reloaded on change.
	PipelineFile string `envconfig:"PIPELINE_FILE"`
}

type NotifyEnv struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDContact    string `envconfig:"VAPID_CONTACT" default:"mailto:admin@example.com"`

	NtfyServer string `envconfig:"NTFY_SERVER" default:"https://ntfy.sh"`
	NtfyTopic  string `envconfig:"NTFY_TOPIC"`
	NtfyToken  string `envconfig:"NTFY_TOKEN"`

	SlackWebhookURL string `envconfig:"SLACK_WEBHOOK_URL"`
	SlackBotToken   string `envconfig:"SLACK_BOT_TOKEN"`
	SlackChannel    string `envconfig:"SLACK_CHANNEL"`

	FCMCredentialsFile string `envconfig:"FCM_CREDENTIALS_FILE"`
	FCMTopic           string `envconfig:"FCM_TOPIC" default:"schedule"`

	// AppURL prefixes links in notifications.
	AppURL string `envconfig:"APP_URL" default:"http://localhost:3000"`
}

type ReminderEnv struct {
	ReminderEnabled bool   `envconfig:"REMINDER_ENABLED" default:"true"`
	ReminderCron    string `envconfig:"REMINDER_CRON" default:"0 0 8 * * *"`
}

type SeedEnv struct {
	SeedDefaultWorkers bool `envconfig:"SEED_DEFAULT_WORKERS" default:"true"`
}

type Env struct {
	BaseEnv
	StorageEnv
	PipelineEnv
	NotifyEnv
	ReminderEnv
	SeedEnv
}

const namespace = "STUDIO"

// LoadEnv reads STUDIO_* variables. Files are loaded into the environment
// first when they exist; variables already set win.
func LoadEnv(dotenvFiles ...string) (*Env, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if _, err := env.Location(); err != nil {
		return nil, err
	}
	return &env, nil
}

func (e *BaseEnv) IsLocal() bool {
	return e.Env == "local"
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

func (e *BaseEnv) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(e.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", e.TimeZone, err)
	}
	return loc, nil
}

func (e *BaseEnv) Addr() string {
	return e.HTTPHost + ":" + e.HTTPPort
}

func (e *StorageEnv) Relational() bool {
	switch e.Type {
	case "sqlite", "mysql", "postgres":
		return true
	}
	return false
}

func (e *NotifyEnv) WebPushEnabled() bool {
	return e.VAPIDPublicKey != "" && e.VAPIDPrivateKey != ""
}
