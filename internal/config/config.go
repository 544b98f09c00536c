package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the API server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Auth    AuthConfig    `yaml:"auth"`
	Redis   RedisConfig   `yaml:"redis"`
	Storage StorageConfig `yaml:"storage"`
	Upload  UploadConfig  `yaml:"upload"`
	Drafts  DraftConfig   `yaml:"drafts"`
	Share   ShareConfig   `yaml:"share"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// StoreConfig points at the relational record store. Both fields are secrets and
// only ever come from the environment.
type StoreConfig struct {
	URL       string `yaml:"-"`
	AccessKey string `yaml:"-"`
}

type AuthConfig struct {
	JWTSecret    string        `yaml:"-"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	SignupDomain string        `yaml:"signup_domain"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

// StorageConfig describes an S3-compatible bucket for contact photos.
type StorageConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	PublicBaseURL   string `yaml:"public_base_url"`
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
}

type UploadConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type DraftConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type ShareConfig struct {
	BackofficeEmail string `yaml:"backoffice_email"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads an optional .env file, an optional YAML file and then the environment.
// Missing store credentials or signing secret are fatal to startup.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "APP_PORT")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	cfg.Store.URL = os.Getenv("STORE_URL")
	cfg.Store.AccessKey = os.Getenv("STORE_ACCESS_KEY")

	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	setString(&cfg.Auth.SignupDomain, "SIGNUP_DOMAIN")
	setDuration(&cfg.Auth.TokenTTL, "TOKEN_TTL")

	setString(&cfg.Redis.URL, "REDIS_URL")

	setString(&cfg.Storage.Endpoint, "S3_ENDPOINT")
	setString(&cfg.Storage.Region, "S3_REGION")
	setString(&cfg.Storage.Bucket, "S3_BUCKET")
	setString(&cfg.Storage.PublicBaseURL, "S3_PUBLIC_BASE_URL")
	cfg.Storage.AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.Storage.SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")

	if v := os.Getenv("UPLOAD_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Upload.Concurrency = n
		}
	}
	setDuration(&cfg.Drafts.TTL, "DRAFT_TTL")
	setString(&cfg.Share.BackofficeEmail, "BACKOFFICE_EMAIL")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "product-photos"
	}
	if cfg.Upload.Concurrency <= 0 {
		cfg.Upload.Concurrency = 4
	}
	if cfg.Drafts.TTL == 0 {
		cfg.Drafts.TTL = 12 * time.Hour
	}
	if cfg.Share.BackofficeEmail == "" {
		cfg.Share.BackofficeEmail = "backoffice@yourcompany.com"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate reports the first missing mandatory setting.
func (c *Config) Validate() error {
	if c.Store.URL == "" {
		return fmt.Errorf("STORE_URL is required")
	}
	if c.Store.AccessKey == "" {
		return fmt.Errorf("STORE_ACCESS_KEY is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// DSN returns the store URL with the access key installed as the connection password.
func (c StoreConfig) DSN() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("invalid STORE_URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("invalid STORE_URL: unsupported scheme %q", u.Scheme)
	}
	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, c.AccessKey)
	return u.String(), nil
}

// StorageEnabled reports whether enough is configured to reach a bucket.
func (c StorageConfig) StorageEnabled() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
