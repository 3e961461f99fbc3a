// Package config loads application configuration from defaults, an optional
// config file, .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Database drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Image providers
const (
	ImagesCloudflare = "cloudflare"
	ImagesS3         = "s3"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment     `mapstructure:"-"`
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	AI          AIConfig        `mapstructure:"ai"`
	Images      ImagesConfig    `mapstructure:"images"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Admin       AdminConfig     `mapstructure:"admin"`
}

type AppConfig struct {
	Name      string `mapstructure:"name"`
	Version   string `mapstructure:"version"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	// URI is the Mongo connection string or the postgres DSN.
	URI        string        `mapstructure:"uri"`
	Name       string        `mapstructure:"name"`
	SQLitePath string        `mapstructure:"sqlite_path"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type AIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	// BaseURL overrides the provider endpoint, mostly for tests.
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ImagesConfig struct {
	Provider   string           `mapstructure:"provider"`
	Cloudflare CloudflareConfig `mapstructure:"cloudflare"`
	S3         S3Config         `mapstructure:"s3"`
}

type CloudflareConfig struct {
	AccountID   string `mapstructure:"account_id"`
	APIToken    string `mapstructure:"api_token"`
	AccountHash string `mapstructure:"account_hash"`
	APIBaseURL  string `mapstructure:"api_base_url"`
}

type S3Config struct {
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type AdminConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Load reads configuration. configPath may be empty, in which case
// config.yaml is looked up in the working directory and ./config.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("RECIPEBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Environment = GetEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv loads .env when present. Variables already set win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "recipebook")
	v.SetDefault("app.version", "v1.0.0")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "")
	v.SetDefault("database.name", "recipes")
	v.SetDefault("database.sqlite_path", "recipebook.db")
	v.SetDefault("database.timeout", 10*time.Second)

	v.SetDefault("redis.url", "")

	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gpt-3.5-turbo")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.timeout", 60*time.Second)

	v.SetDefault("images.provider", ImagesCloudflare)
	v.SetDefault("images.cloudflare.account_id", "")
	v.SetDefault("images.cloudflare.api_token", "")
	v.SetDefault("images.cloudflare.account_hash", "")
	v.SetDefault("images.cloudflare.api_base_url", "https://api.cloudflare.com/client/v4")
	v.SetDefault("images.s3.bucket", "")
	v.SetDefault("images.s3.region", "us-east-1")
	v.SetDefault("images.s3.endpoint", "")

	v.SetDefault("rate_limit.requests", 20)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("admin.jwt_secret", "")
}

// bindLegacyEnv maps the un-prefixed variable names deployments already use.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"database.uri":                   {"RECIPEBOOK_DATABASE_URI", "MONGODB_URI", "DATABASE_URL"},
		"database.name":                  {"RECIPEBOOK_DATABASE_NAME", "MONGODB_DB"},
		"redis.url":                      {"RECIPEBOOK_REDIS_URL", "REDIS_URL"},
		"ai.api_key":                     {"RECIPEBOOK_AI_API_KEY", "OPENAI_API_KEY"},
		"images.cloudflare.account_id":   {"RECIPEBOOK_IMAGES_CLOUDFLARE_ACCOUNT_ID", "CLOUDFLARE_ACCOUNT_ID"},
		"images.cloudflare.api_token":    {"RECIPEBOOK_IMAGES_CLOUDFLARE_API_TOKEN", "CLOUDFLARE_API_TOKEN"},
		"images.cloudflare.account_hash": {"RECIPEBOOK_IMAGES_CLOUDFLARE_ACCOUNT_HASH", "CLOUDFLARE_ACCOUNT_HASH"},
		"images.s3.bucket":               {"RECIPEBOOK_IMAGES_S3_BUCKET", "S3_BUCKET_NAME"},
		"images.s3.region":               {"RECIPEBOOK_IMAGES_S3_REGION", "AWS_REGION"},
		"server.port":                    {"RECIPEBOOK_SERVER_PORT", "PORT"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}
