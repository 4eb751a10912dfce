package transcode

import (
	"context"
	"fmt"
	"os"

	"github.com/vodstudy/vodstudy/internal/model"
	"github.com/vodstudy/vodstudy/internal/progress"
	"github.com/vodstudy/vodstudy/internal/queue"
	"github.com/vodstudy/vodstudy/internal/storage"
)

// Runner drives ffmpeg for the optimize queue. The encoder writes to a
// temp file in tempDir; on success the temp file atomically replaces
// the original.
type Runner struct {
	ffmpegPath  string
	ffprobePath string
	tempDir     string
}

// NewRunner builds the optimize runner.
func NewRunner(ffmpegPath, ffprobePath, tempDir string) *Runner {
	return &Runner{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		tempDir:     tempDir,
	}
}

// Validate implements queue.Runner. It checks the input file, records
// its size for the savings report, and probes the duration that anchors
// progress.
func (r *Runner) Validate(ctx context.Context, job *model.Job) error {
	info, err := os.Stat(job.InputPath)
	if err != nil {
		return fmt.Errorf("input file not found: %s", job.InputPath)
	}
	if info.Size() == 0 {
		return fmt.Errorf("input file is empty: %s", job.InputPath)
	}
	if err := storage.EnsureDir(r.tempDir); err != nil {
		return err
	}

	job.OriginalSize = info.Size()
	job.TempPath = storage.TempTranscodePath(r.tempDir, job.VideoID)
	job.OutputPath = job.InputPath

	duration, err := ProbeDuration(ctx, r.ffprobePath, job.InputPath)
	if err != nil {
		return err
	}
	job.DurationSec = duration
	return nil
}

// Command implements queue.Runner.
func (r *Runner) Command(job *model.Job) (string, []string) {
	return r.ffmpegPath, BuildArgs(job.InputPath, job.TempPath, job.TargetHeight)
}

// ParseLine implements queue.Runner.
func (r *Runner) ParseLine(job *model.Job, line string) queue.LineEvent {
	outTime, ok := progress.ParseTranscodeLine(line)
	if !ok {
		return queue.NoProgress()
	}
	return queue.LineEvent{
		Progress: progress.TranscodePercent(outTime, job.DurationSec),
	}
}

// Finalize implements queue.Runner: verify the encoder produced a
// non-empty file, then replace the original in place.
func (r *Runner) Finalize(_ context.Context, job *model.Job) (string, int64, error) {
	info, err := os.Stat(job.TempPath)
	if err != nil || info.Size() == 0 {
		return "", 0, model.NewJobError(model.ErrorEmptyOutput, "Output file is empty")
	}
	size := info.Size()

	if err := Replace(job.InputPath, job.TempPath); err != nil {
		return "", 0, model.NewJobError(model.ErrorReplace, "failed to replace original: %v", err)
	}
	return job.InputPath, size, nil
}

// Cleanup implements queue.Runner. The original is never touched here;
// only the encoder's temp output goes away.
func (r *Runner) Cleanup(job *model.Job) {
	if job.TempPath != "" {
		os.Remove(job.TempPath)
	}
}
