package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vodstudy/vodstudy/internal/model"
	"github.com/vodstudy/vodstudy/internal/progress"
	"github.com/vodstudy/vodstudy/internal/queue"
	"github.com/vodstudy/vodstudy/internal/storage"
)

// Runner drives yt-dlp for the download queue.
type Runner struct {
	ytdlpPath string
	mediaDir  string
	ceilings  []int
}

// NewRunner builds the download runner.
func NewRunner(ytdlpPath, mediaDir string, ceilings []int) *Runner {
	return &Runner{
		ytdlpPath: ytdlpPath,
		mediaDir:  mediaDir,
		ceilings:  ceilings,
	}
}

// Validate implements queue.Runner.
func (r *Runner) Validate(_ context.Context, job *model.Job) error {
	if strings.TrimSpace(job.SourceURL) == "" {
		return fmt.Errorf("source URL is required")
	}
	return storage.EnsureDir(r.mediaDir)
}

// Command implements queue.Runner.
func (r *Runner) Command(job *model.Job) (string, []string) {
	selector := Selector(job.Format, r.ceilings)
	template := storage.DownloadTemplate(r.mediaDir, job.VideoID)
	return r.ytdlpPath, BuildArgs(selector, template, job.SourceURL)
}

// ParseLine implements queue.Runner.
func (r *Runner) ParseLine(_ *model.Job, line string) queue.LineEvent {
	if dest, ok := progress.ParseDestination(line); ok {
		le := queue.NoProgress()
		le.Destination = dest
		return le
	}

	u, ok := progress.ParseDownloadLine(line)
	if !ok {
		return queue.NoProgress()
	}

	le := queue.LineEvent{
		Progress:  u.Percent,
		TotalSize: u.TotalSize,
		Speed:     u.Speed,
		ETA:       u.ETA,
	}
	if bytes := u.DownloadedBytes(); bytes > 0 {
		le.Downloaded = progress.FormatSize(bytes)
	}
	return le
}

// Finalize implements queue.Runner. The announced destination is
// trusted when present; otherwise the media directory is scanned for
// the artifact.
func (r *Runner) Finalize(_ context.Context, job *model.Job) (string, int64, error) {
	path := job.OutputPath
	if path == "" {
		resolved, err := ResolveOutput(r.mediaDir, job.VideoID)
		if err != nil {
			return "", 0, model.NewJobError(model.ErrorEmptyOutput, "Output file is empty")
		}
		path = resolved
	}

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return "", 0, model.NewJobError(model.ErrorEmptyOutput, "Output file is empty")
	}
	return path, info.Size(), nil
}

// Cleanup implements queue.Runner. It removes partial download state
// left behind by a cancelled or failed run.
func (r *Runner) Cleanup(job *model.Job) {
	entries, err := os.ReadDir(r.mediaDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, job.VideoID+".") {
			continue
		}
		if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") {
			os.Remove(filepath.Join(r.mediaDir, name))
		}
	}
}
