package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTranscodeLineMicros(t *testing.T) {
	d, ok := ParseTranscodeLine("out_time_us=1500000")
	require.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, d)

	// out_time_ms carries microseconds despite the name
	d, ok = ParseTranscodeLine("out_time_ms=60000000")
	require.True(t, ok)
	assert.Equal(t, 60*time.Second, d)
}

func TestParseTranscodeLineClock(t *testing.T) {
	d, ok := ParseTranscodeLine("out_time=00:01:30.500000")
	require.True(t, ok)
	assert.Equal(t, 90*time.Second+500*time.Millisecond, d)

	d, ok = ParseTranscodeLine("out_time=01:00:00")
	require.True(t, ok)
	assert.Equal(t, time.Hour, d)
}

func TestParseTranscodeLineRejectsOtherLines(t *testing.T) {
	for _, line := range []string{
		"",
		"frame=120",
		"fps=29.97",
		"progress=continue",
		"out_time_us=abc",
		"out_time=bogus",
		"out_time_us=-100",
	} {
		_, ok := ParseTranscodeLine(line)
		assert.False(t, ok, "line %q should not parse", line)
	}
}

func TestTranscodePercent(t *testing.T) {
	// 60s of output against a 120s source is 50%
	assert.Equal(t, 50, TranscodePercent(60*time.Second, 120))

	// never reports 100 while running
	assert.Equal(t, 99, TranscodePercent(120*time.Second, 120))
	assert.Equal(t, 99, TranscodePercent(500*time.Second, 120))

	assert.Equal(t, 0, TranscodePercent(10*time.Second, 0))
	assert.Equal(t, 0, TranscodePercent(0, 120))
}
