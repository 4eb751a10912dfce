// Package download adapts yt-dlp to the queue: format selection,
// argument construction, progress parsing, and output resolution.
package download

import (
	"fmt"
	"strings"
)

// Selector builds the yt-dlp format selector string. An explicit
// selector from the user wins unchanged. Otherwise the policy prefers
// MP4/H.264 at each quality ceiling in order, then accepts any codec
// that can be merged into MP4, and finally falls back to whatever the
// site offers.
func Selector(explicit string, ceilings []int) string {
	if explicit != "" {
		return explicit
	}

	var alts []string
	for _, h := range ceilings {
		alts = append(alts, fmt.Sprintf("best[ext=mp4][vcodec^=avc1][height<=%d]", h))
	}
	for _, h := range ceilings {
		alts = append(alts, fmt.Sprintf("bestvideo[height<=%d]+bestaudio", h))
	}
	alts = append(alts, "best")
	return strings.Join(alts, "/")
}
