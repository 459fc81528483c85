package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/interview-replay/core/internal/pkg/captcha"
	"github.com/interview-replay/core/internal/pkg/mail"
	"github.com/interview-replay/core/internal/pkg/storage"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 3365
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBName     = "interview_replay"
	defaultDBCharset  = "utf8mb4"
	defaultRedisURL   = "redis://localhost:6379/0"
	defaultWebURL     = "http://localhost:3000"
	defaultMediaTTL   = 60 // minutes
	defaultShareTTL   = 30 // minutes
	defaultUploadMax  = 512
	defaultJobTimeout = 30 // minutes before a stuck processing job is failed
)

// AIProvider describes one configured AI backend.
type AIProvider struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // openai | anthropic | openai-compatible
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// AIModelAssignment pins a job type to a provider/model pair.
type AIModelAssignment struct {
	ProviderID string `yaml:"provider_id"`
	Model      string `yaml:"model"`
}

// AIConfig holds provider settings for the AI job subsystem.
type AIConfig struct {
	Providers []AIProvider                 `yaml:"providers"`
	JobModels map[string]AIModelAssignment `yaml:"job_models"` // keyed by job type
}

// DatabaseConfig holds MySQL connection parts when no DSN is given.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

// MediaConfig controls upload limits and signed URL lifetimes.
type MediaConfig struct {
	SignedURLTTLMinutes      int `yaml:"signed_url_ttl_minutes"`
	ShareSignedURLTTLMinutes int `yaml:"share_signed_url_ttl_minutes"`
	MaxUploadMB              int `yaml:"max_upload_mb"`
}

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port              int             `yaml:"port"`
	Env               string          `yaml:"env"` // "development" | "production"
	DSN               string          `yaml:"dsn"`
	Database          DatabaseConfig  `yaml:"database"`
	RedisURL          string          `yaml:"redis_url"`
	JWTSecret         string          `yaml:"jwt_secret"`
	WebURL            string          `yaml:"web_url"`
	AllowedOrigins    []string        `yaml:"allowed_origins"`
	Storage           storage.Options `yaml:"storage"`
	Media             MediaConfig     `yaml:"media"`
	AI                AIConfig        `yaml:"ai"`
	Mail              mail.Config     `yaml:"mail"`
	Captcha           captcha.Options `yaml:"captcha"`
	JobTimeoutMinutes int             `yaml:"job_timeout_minutes"`
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }

// Load reads and validates the YAML config file.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = defaultRedisURL
	}
	if cfg.WebURL == "" {
		cfg.WebURL = defaultWebURL
	}
	cfg.WebURL = strings.TrimRight(cfg.WebURL, "/")
	if cfg.DSN == "" {
		cfg.DSN = buildDSN(cfg.Database)
	}
	if cfg.Media.SignedURLTTLMinutes <= 0 {
		cfg.Media.SignedURLTTLMinutes = defaultMediaTTL
	}
	if cfg.Media.ShareSignedURLTTLMinutes <= 0 {
		cfg.Media.ShareSignedURLTTLMinutes = defaultShareTTL
	}
	if cfg.Media.MaxUploadMB <= 0 {
		cfg.Media.MaxUploadMB = defaultUploadMax
	}
	if cfg.JobTimeoutMinutes <= 0 {
		cfg.JobTimeoutMinutes = defaultJobTimeout
	}
}

func buildDSN(db DatabaseConfig) string {
	host := db.Host
	if host == "" {
		host = defaultDBHost
	}
	port := db.Port
	if port == 0 {
		port = defaultDBPort
	}
	user := db.User
	if user == "" {
		user = defaultDBUser
	}
	name := db.Name
	if name == "" {
		name = defaultDBName
	}
	charset := db.Charset
	if charset == "" {
		charset = defaultDBCharset
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		user, db.Password, host, port, name, charset)
}
