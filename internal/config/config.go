package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Logger   Logger
	Queue    QueueConfig
	Download DownloadConfig
	Render   RenderConfig
	Webhook  WebhookConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Cleanup  CleanupConfig
}

type ServerConfig struct {
	AppVersion string
	Port       string
	Mode       string
	APIKeys    []string
}

type Logger struct {
	Development bool
	Encoding    string
	Level       string
}

type QueueConfig struct {
	// MaxQueueSize is the admission capacity: the maximum number of jobs in a
	// non-terminal state at once.
	MaxQueueSize int
	// MaxConcurrentJobs is the worker pool size.
	MaxConcurrentJobs int
	// MaxCPUUsage gates job starts when > 0; a slot waits while system CPU
	// usage exceeds this percentage.
	MaxCPUUsage float64
}

type DownloadConfig struct {
	Concurrency    int
	TimeoutSec     int
	AllowedDomains []string
}

type RenderConfig struct {
	Concurrency   int
	FFmpegTimeout int
	TempDir       string
	Width         int
	Height        int
	FPS           int
	Codec         string
}

type WebhookConfig struct {
	Retries    int
	TimeoutSec int
}

type StorageConfig struct {
	// Provider is "localfs" or "s3".
	Provider string
	S3       S3Config
}

type S3Config struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	OutputBucket string
	PresignTTL   int
}

type RedisConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
	StatusKey     string
}

type CleanupConfig struct {
	RetentionHours int
	TemplatesDir   string
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Queue.MaxQueueSize <= 0 {
		c.Queue.MaxQueueSize = 10
	}
	if c.Queue.MaxConcurrentJobs <= 0 {
		c.Queue.MaxConcurrentJobs = 2
	}
	if c.Download.Concurrency <= 0 {
		c.Download.Concurrency = 4
	}
	if c.Download.TimeoutSec <= 0 {
		c.Download.TimeoutSec = 30
	}
	if c.Render.Concurrency <= 0 {
		c.Render.Concurrency = 1
	}
	if c.Render.FFmpegTimeout <= 0 {
		c.Render.FFmpegTimeout = 300
	}
	if c.Render.TempDir == "" {
		c.Render.TempDir = "/tmp/videos"
	}
	if c.Render.Width <= 0 {
		c.Render.Width = 720
	}
	if c.Render.Height <= 0 {
		c.Render.Height = 1280
	}
	if c.Render.FPS <= 0 {
		c.Render.FPS = 30
	}
	if c.Render.Codec == "" {
		c.Render.Codec = "libx264"
	}
	if c.Webhook.Retries <= 0 {
		c.Webhook.Retries = 3
	}
	if c.Webhook.TimeoutSec <= 0 {
		c.Webhook.TimeoutSec = 10
	}
	if c.Storage.Provider == "" {
		c.Storage.Provider = "localfs"
	}
	if c.Redis.StatusKey == "" {
		c.Redis.StatusKey = "video:progress:"
	}
	if c.Cleanup.RetentionHours <= 0 {
		c.Cleanup.RetentionHours = 24
	}
	if c.Cleanup.TemplatesDir == "" {
		c.Cleanup.TemplatesDir = "templates"
	}
}

func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Download.TimeoutSec) * time.Second
}

func (c *Config) FFmpegTimeout() time.Duration {
	return time.Duration(c.Render.FFmpegTimeout) * time.Second
}

func (c *Config) WebhookTimeout() time.Duration {
	return time.Duration(c.Webhook.TimeoutSec) * time.Second
}
