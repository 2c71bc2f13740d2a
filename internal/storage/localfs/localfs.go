package localfs

import (
	"context"
	"os"

	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/pkg/errors"
	"github.com/MrEmanAhmad/ffmpeg-video-api/internal/storage"
	"github.com/MrEmanAhmad/ffmpeg-video-api/pkg/logger"
)

// localStore leaves artifacts where the pipeline wrote them; the API serves
// them from the download route until retention cleanup removes them.
type localStore struct {
	logger logger.Logger
}

func NewLocalStore(log logger.Logger) storage.ArtifactStore {
	return &localStore{logger: log}
}

func (s *localStore) Store(_ context.Context, jobID, localPath string) (string, error) {
	if _, err := os.Stat(localPath); err != nil {
		return "", errors.Wrap(err, errors.KindUnexpected, errors.CodeUnexpected, "artifact missing on disk")
	}
	s.logger.Debugf("job %s: artifact kept at %s", jobID, localPath)
	return "", nil
}
