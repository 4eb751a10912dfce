package progress

import (
	"strconv"
	"strings"
	"time"
)

// The transcoder's -progress stream is a key=value protocol. Elapsed
// output time arrives either as a microsecond integer (out_time_us, and
// out_time_ms which is also microseconds despite the name) or as a
// wall-clock out_time=HH:MM:SS.micro value.

// ParseTranscodeLine extracts the elapsed output time from one line of
// the transcoder's progress stream. The second return value is false
// for lines that carry no timing information.
func ParseTranscodeLine(line string) (time.Duration, bool) {
	l := strings.TrimSpace(line)

	if v, ok := strings.CutPrefix(l, "out_time_us="); ok {
		return parseMicros(v)
	}
	if v, ok := strings.CutPrefix(l, "out_time_ms="); ok {
		return parseMicros(v)
	}
	if v, ok := strings.CutPrefix(l, "out_time="); ok {
		return parseClock(v)
	}
	return 0, false
}

// parseMicros parses a microsecond integer field.
func parseMicros(v string) (time.Duration, bool) {
	us, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || us < 0 {
		return 0, false
	}
	return time.Duration(us) * time.Microsecond, true
}

// parseClock parses HH:MM:SS or HH:MM:SS.micro.
func parseClock(v string) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	parts := strings.Split(v, ":")
	if len(parts) != 3 {
		return 0, false
	}

	hours, err1 := strconv.Atoi(parts[0])
	minutes, err2 := strconv.Atoi(parts[1])
	seconds, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil || hours < 0 || minutes < 0 || seconds < 0 {
		return 0, false
	}

	total := float64(hours)*3600 + float64(minutes)*60 + seconds
	return time.Duration(total * float64(time.Second)), true
}

// TranscodePercent derives a progress percent from elapsed output time
// against the known media duration. The result is clamped to 99 while
// the encoder is still running; only a clean process exit reports 100.
func TranscodePercent(outTime time.Duration, durationSec float64) int {
	if durationSec <= 0 {
		return 0
	}
	pct := int(outTime.Seconds() / durationSec * 100)
	if pct < 0 {
		return 0
	}
	if pct > 99 {
		return 99
	}
	return pct
}
