package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDownloadLineFull(t *testing.T) {
	u, ok := ParseDownloadLine("[download]  45.3% of 10.5MiB at 1.2MiB/s ETA 00:15")
	require.True(t, ok)

	assert.Equal(t, 45, u.Percent)
	assert.Equal(t, "10.5MiB", u.TotalSize)
	assert.Equal(t, "1.2MiB/s", u.Speed)
	assert.Equal(t, "00:15", u.ETA)

	// 45.3% of 10.5MiB ≈ 4.76MiB
	wantF := 0.453 * 10.5 * 1024 * 1024
	want := int64(wantF)
	assert.InDelta(t, want, u.DownloadedBytes(), 1)
}

func TestParseDownloadLinePartialFields(t *testing.T) {
	u, ok := ParseDownloadLine("[download] 100% of 3.2MiB in 00:02")
	require.True(t, ok)
	assert.Equal(t, 100, u.Percent)
	assert.Equal(t, "3.2MiB", u.TotalSize)
	assert.Empty(t, u.ETA)

	u, ok = ParseDownloadLine("[download]   0.0% of ~ 120.4MiB at  512.0KiB/s ETA 04:01")
	require.True(t, ok)
	assert.Equal(t, 0, u.Percent)
	assert.Equal(t, "120.4MiB", u.TotalSize)

	u, ok = ParseDownloadLine("[download]  12.5%")
	require.True(t, ok)
	assert.Equal(t, 12, u.Percent)
	assert.Empty(t, u.TotalSize)
	assert.Zero(t, u.DownloadedBytes())
}

func TestParseDownloadLineRejectsOtherLines(t *testing.T) {
	for _, line := range []string{
		"",
		"[youtube] abc123: Downloading webpage",
		"[download] Destination: /media/abc123.mp4",
		"[info] Downloading subtitles",
		"frame=  120 fps= 30",
	} {
		_, ok := ParseDownloadLine(line)
		assert.False(t, ok, "line %q should not parse as progress", line)
	}
}

func TestParseDestination(t *testing.T) {
	dest, ok := ParseDestination("[download] Destination: /media/abc123.f137.mp4")
	require.True(t, ok)
	assert.Equal(t, "/media/abc123.f137.mp4", dest)

	dest, ok = ParseDestination(`[Merger] Merging formats into "/media/abc123.mp4"`)
	require.True(t, ok)
	assert.Equal(t, "/media/abc123.mp4", dest)

	dest, ok = ParseDestination("[download] /media/abc123.mp4 has already been downloaded")
	require.True(t, ok)
	assert.Equal(t, "/media/abc123.mp4", dest)

	_, ok = ParseDestination("[download]  45.3% of 10.5MiB at 1.2MiB/s ETA 00:15")
	assert.False(t, ok)
}
