package transcode

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodstudy/vodstudy/internal/model"
)

func TestValidateRejectsMissingInput(t *testing.T) {
	r := NewRunner("ffmpeg", "ffprobe", t.TempDir())

	err := r.Validate(context.Background(), &model.Job{InputPath: "/nope/missing.mp4"})
	assert.ErrorContains(t, err, "input file not found")
}

func TestValidateRejectsEmptyInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "video.mp4")
	require.NoError(t, os.WriteFile(input, nil, 0o644))
	r := NewRunner("ffmpeg", "ffprobe", dir)

	err := r.Validate(context.Background(), &model.Job{InputPath: input})
	assert.ErrorContains(t, err, "empty")
}

func TestCommandTargetsTempPath(t *testing.T) {
	r := NewRunner("/usr/bin/ffmpeg", "ffprobe", "/tmp/work")
	job := &model.Job{
		VideoID:   "abc",
		InputPath: "/media/abc.mp4",
		TempPath:  filepath.Join("/tmp/work", "abc-optimized.mp4"),
	}

	bin, args := r.Command(job)
	assert.Equal(t, "/usr/bin/ffmpeg", bin)
	assert.Contains(t, args, "/media/abc.mp4")
	assert.Equal(t, job.TempPath, args[len(args)-1])
}

func TestParseLineDerivesPercent(t *testing.T) {
	r := NewRunner("ffmpeg", "ffprobe", "/tmp")
	job := &model.Job{DurationSec: 120}

	le := r.ParseLine(job, "out_time_ms=60000000")
	assert.Equal(t, 50, le.Progress)

	le = r.ParseLine(job, "frame=100")
	assert.Equal(t, -1, le.Progress)

	// unknown duration yields zero percent, not garbage
	le = r.ParseLine(&model.Job{}, "out_time_ms=60000000")
	assert.Equal(t, 0, le.Progress)
}

func TestFinalizeReplacesOriginal(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "video.mp4")
	temp := filepath.Join(dir, "video-optimized.mp4")
	require.NoError(t, os.WriteFile(input, []byte("original-bytes"), 0o644))
	require.NoError(t, os.WriteFile(temp, []byte("smaller"), 0o644))

	r := NewRunner("ffmpeg", "ffprobe", dir)
	job := &model.Job{VideoID: "video", InputPath: input, TempPath: temp}

	path, size, err := r.Finalize(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, input, path)
	assert.Equal(t, int64(len("smaller")), size)

	data, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, "smaller", string(data))
}

func TestFinalizeEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "video.mp4")
	temp := filepath.Join(dir, "video-optimized.mp4")
	require.NoError(t, os.WriteFile(input, []byte("original"), 0o644))
	require.NoError(t, os.WriteFile(temp, nil, 0o644))

	r := NewRunner("ffmpeg", "ffprobe", dir)
	_, _, err := r.Finalize(context.Background(), &model.Job{InputPath: input, TempPath: temp})

	var je *model.JobError
	require.ErrorAs(t, err, &je)
	assert.Equal(t, model.ErrorEmptyOutput, je.Class)
	assert.Equal(t, "Output file is empty", je.Message)

	// the original survives
	data, readErr := os.ReadFile(input)
	require.NoError(t, readErr)
	assert.Equal(t, "original", string(data))
}

func TestCleanupRemovesTempOnly(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "video.mp4")
	temp := filepath.Join(dir, "video-optimized.mp4")
	require.NoError(t, os.WriteFile(input, []byte("original"), 0o644))
	require.NoError(t, os.WriteFile(temp, []byte("partial"), 0o644))

	r := NewRunner("ffmpeg", "ffprobe", dir)
	r.Cleanup(&model.Job{InputPath: input, TempPath: temp})

	_, err := os.Stat(temp)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(input)
	assert.NoError(t, err)
}
