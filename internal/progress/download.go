package progress

import (
	"regexp"
	"strconv"
	"strings"
)

// yt-dlp progress lines look like
//
//	[download]  45.3% of 10.5MiB at 1.2MiB/s ETA 00:15
//
// where every field after the percent may be absent on any given line.
// Individual field regexes keep the parser tolerant of that.
var (
	rePercent = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)%`)
	reTotal   = regexp.MustCompile(`\bof\s+~?\s*([^\s]+)`)
	reSpeed   = regexp.MustCompile(`\bat\s+([^\s]+)`)
	reETA     = regexp.MustCompile(`\bETA\s+([0-9:]+)`)

	reDestination = regexp.MustCompile(`^\[download\]\s+Destination:\s+(.+)$`)
	reMerging     = regexp.MustCompile(`^\[Merger\]\s+Merging formats into\s+"(.+)"$`)
	reAlready     = regexp.MustCompile(`^\[download\]\s+(.+?)\s+has already been downloaded`)
)

// DownloadUpdate is the structured form of one yt-dlp progress line.
type DownloadUpdate struct {
	Percent   int     // truncated integer percent
	Fraction  float64 // exact fraction 0..1, kept for byte derivation
	TotalSize string  // e.g. "10.5MiB", empty when not reported
	Speed     string  // e.g. "1.2MiB/s", empty when not reported
	ETA       string  // e.g. "00:15", empty when not reported
}

// ParseDownloadLine extracts a progress update from one line of
// downloader output. The second return value is false for lines that
// carry no progress information.
func ParseDownloadLine(line string) (DownloadUpdate, bool) {
	l := strings.TrimSpace(line)
	if !strings.HasPrefix(l, "[download]") {
		return DownloadUpdate{}, false
	}

	m := rePercent.FindStringSubmatch(l)
	if m == nil {
		return DownloadUpdate{}, false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil || pct < 0 || pct > 100 {
		return DownloadUpdate{}, false
	}

	u := DownloadUpdate{
		Percent:  int(pct),
		Fraction: pct / 100,
	}
	if m := reTotal.FindStringSubmatch(l); m != nil {
		u.TotalSize = m[1]
	}
	if m := reSpeed.FindStringSubmatch(l); m != nil {
		u.Speed = m[1]
	}
	if m := reETA.FindStringSubmatch(l); m != nil {
		u.ETA = m[1]
	}
	return u, true
}

// DownloadedBytes estimates how much has been fetched so far as
// total × fraction. Returns 0 when the total size is unknown.
func (u DownloadUpdate) DownloadedBytes() int64 {
	total, err := ParseSize(u.TotalSize)
	if err != nil {
		return 0
	}
	return int64(float64(total) * u.Fraction)
}

// ParseDestination reports the output path announced by a downloader
// line. The tool may pick the final container at negotiation time, so a
// merger announcement arriving later supersedes earlier per-stream
// destinations; callers keep the most recent value.
func ParseDestination(line string) (string, bool) {
	l := strings.TrimSpace(line)
	if m := reMerging.FindStringSubmatch(l); m != nil {
		return m[1], true
	}
	if m := reDestination.FindStringSubmatch(l); m != nil {
		return m[1], true
	}
	if m := reAlready.FindStringSubmatch(l); m != nil {
		return m[1], true
	}
	return "", false
}
