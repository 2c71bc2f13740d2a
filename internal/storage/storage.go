package storage

import "context"

// ArtifactStore persists a finished render outside the working directory and
// returns an externally usable reference. An empty reference means the
// artifact is served from local disk through the download route.
type ArtifactStore interface {
	Store(ctx context.Context, jobID, localPath string) (ref string, err error)
}
