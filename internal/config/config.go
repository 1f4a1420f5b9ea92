package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/kazz187/taskdeck/pkg/storage"
)

type BaseEnv struct {
	Env            string   `envconfig:"ENV" default:"local"`
	HTTPHost       string   `envconfig:"HTTP_HOST" default:""`
	HTTPPort       string   `envconfig:"HTTP_PORT" default:"3100"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"debug"`
	PublicBaseURL  string   `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3100"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

type StorageEnv struct {
	Type       string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir    string `envconfig:"STORAGE_BASE_DIR" default:".taskdeck/data"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:".taskdeck/taskdeck.db"`
	// S3 settings (used when Type == "s3")
	S3Bucket   string `envconfig:"S3_BUCKET"`
	S3Prefix   string `envconfig:"S3_PREFIX" default:"taskdeck/"`
	S3Region   string `envconfig:"S3_REGION" default:"ap-northeast-1"`
	S3Endpoint string `envconfig:"S3_ENDPOINT"`
}

// FileStorageEnv configures where uploaded attachments and avatars live.
// It is a separate storage instance so objects can sit in a public bucket.
type FileStorageEnv struct {
	Type              string        `envconfig:"FILE_STORAGE_TYPE" default:"local"`
	BaseDir           string        `envconfig:"FILE_STORAGE_BASE_DIR" default:".taskdeck/files"`
	S3Bucket          string        `envconfig:"FILE_S3_BUCKET"`
	S3Prefix          string        `envconfig:"FILE_S3_PREFIX" default:"files/"`
	S3Region          string        `envconfig:"FILE_S3_REGION" default:"ap-northeast-1"`
	S3Endpoint        string        `envconfig:"FILE_S3_ENDPOINT"`
	MaxAttachmentSize int64         `envconfig:"MAX_ATTACHMENT_SIZE" default:"5242880"`
	MaxRetries        int           `envconfig:"FILE_STORAGE_MAX_RETRIES" default:"3"`
	RetryDelay        time.Duration `envconfig:"FILE_STORAGE_RETRY_DELAY" default:"1s"`
}

type AuthEnv struct {
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"taskdeck"`
}

type VAPIDEnv struct {
	PublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	PrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	Contact    string `envconfig:"VAPID_CONTACT" default:"mailto:admin@taskdeck.local"`
}

type RedisEnv struct {
	URL     string `envconfig:"REDIS_URL"`
	Channel string `envconfig:"REDIS_CHANNEL" default:"taskdeck:events"`
}

type Env struct {
	BaseEnv
	StorageEnv
	FileStorageEnv
	AuthEnv
	VAPIDEnv
	RedisEnv
}

const namespace = "TASKDECK"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
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

func (e *BaseEnv) IsLocal() bool {
	return e.Env == "local"
}

func (e *StorageEnv) StorageConfig() storage.Config {
	return storage.Config{
		Type:       e.Type,
		BaseDir:    e.BaseDir,
		SQLitePath: e.SQLitePath,
		S3Bucket:   e.S3Bucket,
		S3Prefix:   e.S3Prefix,
		S3Region:   e.S3Region,
		S3Endpoint: e.S3Endpoint,
	}
}

// StorageConfig for uploaded files. SQLite is not offered here; blobs go to
// disk or S3.
func (e *FileStorageEnv) StorageConfig() storage.Config {
	return storage.Config{
		Type:       e.Type,
		BaseDir:    e.BaseDir,
		S3Bucket:   e.S3Bucket,
		S3Prefix:   e.S3Prefix,
		S3Region:   e.S3Region,
		S3Endpoint: e.S3Endpoint,
		MaxRetries: e.MaxRetries,
		RetryDelay: e.RetryDelay,
	}
}

func (e *VAPIDEnv) Enabled() bool {
	return e.PublicKey != "" && e.PrivateKey != ""
}
