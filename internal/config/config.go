package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment
// variables. A .env file in the working directory is loaded first when
// present.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Log    LogConfig
	Auth   AuthConfig
	AI     AIConfig
	Push   PushConfig
	Backup BackupConfig
}

type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

type DBConfig struct {
	Path string `envconfig:"DB_PATH" default:"./data/larder.db"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

type AuthConfig struct {
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"720h"`
}

// AIConfig configures the recipe draft generator. Generation is disabled
// when no API key is set.
type AIConfig struct {
	APIKey  string `envconfig:"AI_API_KEY" default:""`
	BaseURL string `envconfig:"AI_BASE_URL" default:"https://api.openai.com/v1"`
	Model   string `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
}

// PushConfig configures web push expiry notifications. Disabled unless
// both VAPID keys are set.
type PushConfig struct {
	VAPIDPublicKey  string        `envconfig:"VAPID_PUBLIC_KEY" default:""`
	VAPIDPrivateKey string        `envconfig:"VAPID_PRIVATE_KEY" default:""`
	Subscriber      string        `envconfig:"PUSH_SUBSCRIBER" default:"mailto:admin@localhost"`
	ExpiryWindow    time.Duration `envconfig:"PUSH_EXPIRY_WINDOW" default:"72h"`
	CheckInterval   time.Duration `envconfig:"PUSH_CHECK_INTERVAL" default:"1h"`
}

// BackupConfig configures encrypted S3 backups. Disabled unless a bucket
// is set.
type BackupConfig struct {
	Bucket     string        `envconfig:"BACKUP_S3_BUCKET" default:""`
	Region     string        `envconfig:"BACKUP_S3_REGION" default:"us-east-1"`
	Endpoint   string        `envconfig:"BACKUP_S3_ENDPOINT" default:""`
	AccessKey  string        `envconfig:"BACKUP_S3_ACCESS_KEY" default:""`
	SecretKey  string        `envconfig:"BACKUP_S3_SECRET_KEY" default:""`
	Passphrase string        `envconfig:"BACKUP_PASSPHRASE" default:""`
	Interval   time.Duration `envconfig:"BACKUP_INTERVAL" default:"24h"`
	Retention  time.Duration `envconfig:"BACKUP_RETENTION" default:"720h"`
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (a *AIConfig) Enabled() bool {
	return a.APIKey != ""
}

func (p *PushConfig) Enabled() bool {
	return p.VAPIDPublicKey != "" && p.VAPIDPrivateKey != ""
}

func (b *BackupConfig) Enabled() bool {
	return b.Bucket != ""
}

// Load reads configuration from the environment, consulting .env first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
