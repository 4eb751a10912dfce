package transcode

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const probeTimeout = 15 * time.Second

// ProbeDuration returns the media duration in seconds using ffprobe.
// The duration anchors transcode progress; without it the queue can
// still run the job, just without a percent.
func ProbeDuration(ctx context.Context, ffprobePath, inputPath string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		inputPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("probing duration of %s: %w", inputPath, err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing probed duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("probed duration %f is not positive", seconds)
	}
	return seconds, nil
}
