package download

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// streamFragment matches per-stream intermediate files like
// "id.f137.mp4" that yt-dlp leaves only mid-merge.
var streamFragment = regexp.MustCompile(`\.f[0-9]+\.`)

// ResolveOutput finds the artifact a finished download produced for a
// video id by scanning the media directory. yt-dlp expands the
// %(ext)s template at negotiation time, so the extension is not known
// up front. Partial files and per-stream fragments are skipped, and a
// merged container is preferred over anything carrying a stream marker.
func ResolveOutput(dir, videoID string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading media dir: %w", err)
	}

	var fallback string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, videoID+".") {
			continue
		}
		if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") {
			continue
		}
		if streamFragment.MatchString(name) {
			if fallback == "" {
				fallback = filepath.Join(dir, name)
			}
			continue
		}
		return filepath.Join(dir, name), nil
	}

	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("no output file found for %s in %s", videoID, dir)
}
