// Package storage handles the on-disk layout for acquired media.
package storage

import (
	"os"
	"path/filepath"
)

// DefaultDirPermissions is the mode for created media directories.
const DefaultDirPermissions = 0755

// EnsureDir creates the directory if it doesn't exist.
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, DefaultDirPermissions)
	}
	return nil
}

// DownloadTemplate returns the downloader output template for a video.
// The extension is left to the tool, which picks the final container at
// negotiation time.
func DownloadTemplate(mediaDir, videoID string) string {
	return filepath.Join(mediaDir, videoID+".%(ext)s")
}

// TempTranscodePath returns the working path an optimize job encodes
// into before the atomic replacement.
func TempTranscodePath(tempDir, videoID string) string {
	return filepath.Join(tempDir, videoID+"-optimized.mp4")
}
