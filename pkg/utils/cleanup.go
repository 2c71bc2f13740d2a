package utils

import (
	"os"
	"path/filepath"
	"time"
)

// CleanupResult summarizes one retention sweep over the render directory.
type CleanupResult struct {
	Removed      int     `json:"files_deleted"`
	SpaceFreedMB float64 `json:"space_freed_mb"`
}

// TempStats is the render directory usage reported by health and cleanup
// endpoints.
type TempStats struct {
	TotalFiles  int     `json:"total_files"`
	TotalSizeMB float64 `json:"total_size_mb"`
}

// CleanupOldFiles removes top-level entries of tempDir (one directory per job)
// whose last modification is older than the retention window.
func CleanupOldFiles(tempDir string, olderThan time.Duration) (CleanupResult, error) {
	var result CleanupResult

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, err
	}

	cutoff := time.Now().Add(-olderThan)
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(tempDir, entry.Name())
		size, files := dirUsage(path)
		if err := os.RemoveAll(path); err != nil {
			continue
		}
		result.Removed += files
		result.SpaceFreedMB += float64(size) / (1024 * 1024)
	}
	return result, nil
}

// TempDirStats walks tempDir and reports file count and total size.
func TempDirStats(tempDir string) TempStats {
	size, files := dirUsage(tempDir)
	return TempStats{
		TotalFiles:  files,
		TotalSizeMB: float64(size) / (1024 * 1024),
	}
}

func dirUsage(path string) (int64, int) {
	var size int64
	var files int
	filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil || info == nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
			files++
		}
		return nil
	})
	return size, files
}
