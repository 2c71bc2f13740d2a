package main

import (
	"log"
	"time"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/config"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs/notifier"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs/queue"
	jobsRepository "github.com/MrEmanAhmad/ffmpeg-video-api/internal/jobs/repository"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/render"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/server"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/storage"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/storage/localfs"
	s3Store "github.com/MrEmanAhmad/ffmpeg-video-api/internal/storage/s3"
	templatesRepository "github.com/MrEmanAhmad/ffmpeg-video-api/internal/templates/repository"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/db/aws"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/db/redis"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/ffmpeg"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/utils"
)

func main() {
	log.Println("Starting video render API")
	configFile := "config.yml"
	cfgFile, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}
	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	if !ffmpeg.Installed() {
		appLogger.Warnf("ffmpeg binary not found, render jobs will fail until it is installed")
	} else {
		appLogger.Infof("found %s", ffmpeg.Version())
	}

	var mirror jobs.StatusMirror
	if cfg.Redis.Enabled {
		redisClient := redis.NewRedisClient(cfg)
		defer redisClient.Close()
		mirror = jobsRepository.NewRedisMirror(redisClient, cfg.Redis.StatusKey, appLogger)
		appLogger.Infof("redis status mirror enabled at %s", cfg.Redis.RedisAddr)
	}

	registry := jobsRepository.NewMemoryRegistry(mirror, appLogger)

	tplRepo, err := templatesRepository.NewFsRepository(cfg.Cleanup.TemplatesDir, appLogger)
	if err != nil {
		appLogger.Fatalf("template repository: %v", err)
	}

	var store storage.ArtifactStore
	switch cfg.Storage.Provider {
	case "s3":
		s3Client, presignClient, err := aws.NewAWSClient(
			cfg.Storage.S3.Endpoint,
			cfg.Storage.S3.Region,
			cfg.Storage.S3.AccessKey,
			cfg.Storage.S3.SecretKey,
		)
		if err != nil {
			appLogger.Fatalf("could not connect to s3: %v", err)
		}
		store = s3Store.NewS3Store(cfg, s3Client, presignClient, appLogger)
		appLogger.Infof("artifact store: s3 bucket %s", cfg.Storage.S3.OutputBucket)
	default:
		store = localfs.NewLocalStore(appLogger)
		appLogger.Infof("artifact store: local disk")
	}

	runner := ffmpeg.NewRunner("ffmpeg", cfg.FFmpegTimeout(), appLogger)
	processor := render.NewPipeline(cfg, registry, tplRepo, runner, store, appLogger)
	webhooks := notifier.NewWebhookNotifier(cfg, appLogger)
	jobQueue := queue.NewJobQueue(cfg, registry, processor, webhooks, appLogger)

	retention := time.Duration(cfg.Cleanup.RetentionHours) * time.Hour
	if result, err := utils.CleanupOldFiles(cfg.Render.TempDir, retention); err == nil && result.Removed > 0 {
		appLogger.Infof("startup cleanup: %d files removed, %.2f MB freed", result.Removed, result.SpaceFreedMB)
	}

	s := server.NewServer(cfg, jobQueue, registry, tplRepo, appLogger)
	if err = s.Run(); err != nil {
		appLogger.Infof("could not start server: %s", err)
	}
}
