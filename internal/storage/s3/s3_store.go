package s3

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/config"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/storage"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
)

// s3Store uploads finished renders to the output bucket and hands back a
// presigned download URL, so the API never has to proxy artifact bytes.
type s3Store struct {
	client        *awss3.Client
	preSignClient *awss3.PresignClient
	bucket        string
	presignTTL    time.Duration
	logger        logger.Logger
}

func NewS3Store(cfg *config.Config, client *awss3.Client, preSignClient *awss3.PresignClient, log logger.Logger) storage.ArtifactStore {
	ttl := time.Duration(cfg.Storage.S3.PresignTTL) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &s3Store{
		client:        client,
		preSignClient: preSignClient,
		bucket:        cfg.Storage.S3.OutputBucket,
		presignTTL:    ttl,
		logger:        log,
	}
}

func (s *s3Store) Store(ctx context.Context, jobID, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to open artifact")
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", errors.Wrap(err, "failed to stat artifact")
	}

	key := fmt.Sprintf("renders/%s/%s", jobID, filepath.Base(localPath))
	contentType := "video/mp4"
	size := info.Size()
	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          file,
		ContentType:   &contentType,
		ContentLength: &size,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to upload artifact")
	}

	getObjectReq, err := s.preSignClient.PresignGetObject(
		ctx,
		&awss3.GetObjectInput{
			Bucket: &s.bucket,
			Key:    &key,
		},
		awss3.WithPresignExpires(s.presignTTL),
	)
	if err != nil {
		return "", errors.Wrap(err, "failed to presign artifact")
	}

	s.logger.Infof("job %s: artifact uploaded to s3://%s/%s", jobID, s.bucket, key)
	return getObjectReq.URL, nil
}
