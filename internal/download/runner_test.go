package download

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vodstudy/vodstudy/internal/model"
)

func TestBuildArgs(t *testing.T) {
	args := BuildArgs("best", "/media/abc.%(ext)s", "https://example.com/v")

	assert.Equal(t, []string{
		"--newline",
		"--no-playlist",
		"--no-colors",
		"-f", "best",
		"--merge-output-format", "mp4",
		"-o", "/media/abc.%(ext)s",
		"https://example.com/v",
	}, args)
}

func TestCommandUsesTemplateAndSelector(t *testing.T) {
	r := NewRunner("/usr/bin/yt-dlp", "/media", []int{720})
	bin, args := r.Command(&model.Job{VideoID: "abc", SourceURL: "https://example.com/v"})

	assert.Equal(t, "/usr/bin/yt-dlp", bin)
	assert.Contains(t, args, filepath.Join("/media", "abc.%(ext)s"))
	assert.Contains(t, args, "best[ext=mp4][vcodec^=avc1][height<=720]/bestvideo[height<=720]+bestaudio/best")
}

func TestValidateRequiresURL(t *testing.T) {
	r := NewRunner("yt-dlp", t.TempDir(), nil)

	assert.Error(t, r.Validate(context.Background(), &model.Job{}))
	assert.NoError(t, r.Validate(context.Background(), &model.Job{SourceURL: "https://example.com/v"}))
}

func TestParseLineProgress(t *testing.T) {
	r := NewRunner("yt-dlp", "/media", nil)
	job := &model.Job{VideoID: "abc"}

	le := r.ParseLine(job, "[download]  45.3% of 10.5MiB at 1.2MiB/s ETA 00:15")
	assert.Equal(t, 45, le.Progress)
	assert.Equal(t, "10.5MiB", le.TotalSize)
	assert.Equal(t, "1.2MiB/s", le.Speed)
	assert.Equal(t, "00:15", le.ETA)
	assert.NotEmpty(t, le.Downloaded)

	le = r.ParseLine(job, "[youtube] abc: Downloading webpage")
	assert.Equal(t, -1, le.Progress)
}

func TestParseLineDestination(t *testing.T) {
	r := NewRunner("yt-dlp", "/media", nil)
	job := &model.Job{VideoID: "abc"}

	le := r.ParseLine(job, "[download] Destination: /media/abc.f137.mp4")
	assert.Equal(t, "/media/abc.f137.mp4", le.Destination)

	le = r.ParseLine(job, `[Merger] Merging formats into "/media/abc.mp4"`)
	assert.Equal(t, "/media/abc.mp4", le.Destination)
}

func TestFinalize(t *testing.T) {
	dir := t.TempDir()
	r := NewRunner("yt-dlp", dir, nil)

	out := filepath.Join(dir, "abc.mp4")
	require.NoError(t, os.WriteFile(out, []byte("data"), 0o644))

	// announced destination
	path, size, err := r.Finalize(context.Background(), &model.Job{VideoID: "abc", OutputPath: out})
	require.NoError(t, err)
	assert.Equal(t, out, path)
	assert.Equal(t, int64(4), size)

	// resolved from the media dir
	path, _, err = r.Finalize(context.Background(), &model.Job{VideoID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, out, path)
}

func TestFinalizeEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	r := NewRunner("yt-dlp", dir, nil)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc.mp4"), nil, 0o644))

	_, _, err := r.Finalize(context.Background(), &model.Job{VideoID: "abc"})
	var je *model.JobError
	require.ErrorAs(t, err, &je)
	assert.Equal(t, model.ErrorEmptyOutput, je.Class)
	assert.Equal(t, "Output file is empty", je.Message)
}

func TestCleanupRemovesPartials(t *testing.T) {
	dir := t.TempDir()
	r := NewRunner("yt-dlp", dir, nil)

	keep := filepath.Join(dir, "abc.mp4")
	part := filepath.Join(dir, "abc.mp4.part")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(part, []byte("x"), 0o644))

	r.Cleanup(&model.Job{VideoID: "abc"})

	_, err := os.Stat(keep)
	assert.NoError(t, err)
	_, err = os.Stat(part)
	assert.True(t, os.IsNotExist(err))
}
