package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Run      RunConfig
	Storage  StorageConfig
	Log      LogConfig
	Agent    AgentConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
}

// RunConfig holds run registry configuration. TTL bounds how long a
// suspended run waits for its client before being reclaimed.
type RunConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// StorageConfig holds blob storage configuration for screenshot archives.
type StorageConfig struct {
	Type            string        // "local" or "s3"
	BaseDir         string        // For local: "./screenshots"
	S3Bucket        string        // For S3: bucket name
	S3Region        string        // For S3: AWS region
	S3PresignExpiry time.Duration // Presigned URL expiration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
}

// AgentConfig holds agent pipeline configuration.
type AgentConfig struct {
	MaxIterations     int
	PerceptionEnabled bool
	BedrockRegion     string
	BedrockModel      string
	MaxTokens         int
	DetectorURL       string
	DetectorThreshold float64
	PromptsDir        string
	IngestBuffer      int
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Enable environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "browser_agent")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("run.ttl", "1h")
	v.SetDefault("run.cleanup_interval", "5m")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.base_dir", "./screenshots")
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_presign_expiry", "15m")

	v.SetDefault("log.level", "info")

	v.SetDefault("agent.max_iterations", 50)
	v.SetDefault("agent.perception_enabled", false)
	v.SetDefault("agent.bedrock_region", "us-east-1")
	v.SetDefault("agent.bedrock_model", "anthropic.claude-sonnet-4-6")
	v.SetDefault("agent.max_tokens", 4096)
	v.SetDefault("agent.detector_url", "http://localhost:8501")
	v.SetDefault("agent.detector_threshold", 0.25)
	v.SetDefault("agent.prompts_dir", "./prompts")
	v.SetDefault("agent.ingest_buffer", 64)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; using defaults
	}

	// Parse configuration
	var config Config

	config.Server.Host = v.GetString("server.host")
	config.Server.Port = v.GetInt("server.port")
	config.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	config.Server.WriteTimeout = v.GetDuration("server.write_timeout")

	config.Database.Host = v.GetString("database.host")
	config.Database.Port = v.GetInt("database.port")
	config.Database.User = v.GetString("database.user")
	config.Database.Password = v.GetString("database.password")
	config.Database.Database = v.GetString("database.database")
	config.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	config.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")

	config.Run.TTL = v.GetDuration("run.ttl")
	config.Run.CleanupInterval = v.GetDuration("run.cleanup_interval")

	config.Storage.Type = v.GetString("storage.type")
	config.Storage.BaseDir = v.GetString("storage.base_dir")
	config.Storage.S3Bucket = v.GetString("storage.s3_bucket")
	config.Storage.S3Region = v.GetString("storage.s3_region")
	config.Storage.S3PresignExpiry = v.GetDuration("storage.s3_presign_expiry")

	config.Log.Level = v.GetString("log.level")

	config.Agent.MaxIterations = v.GetInt("agent.max_iterations")
	config.Agent.PerceptionEnabled = v.GetBool("agent.perception_enabled")
	config.Agent.BedrockRegion = v.GetString("agent.bedrock_region")
	config.Agent.BedrockModel = v.GetString("agent.bedrock_model")
	config.Agent.MaxTokens = v.GetInt("agent.max_tokens")
	config.Agent.DetectorURL = v.GetString("agent.detector_url")
	config.Agent.DetectorThreshold = v.GetFloat64("agent.detector_threshold")
	config.Agent.PromptsDir = v.GetString("agent.prompts_dir")
	config.Agent.IngestBuffer = v.GetInt("agent.ingest_buffer")

	return &config, nil
}
