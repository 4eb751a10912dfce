// Package transcode adapts ffmpeg to the queue: argument construction,
// duration probing, progress from the -progress stream, and atomic
// in-place replacement of the original file.
package transcode

import "fmt"

// Encoding settings.
const (
	videoCodec   = "libx264"
	videoPreset  = "medium"
	videoCRF     = "23"
	audioCodec   = "aac"
	audioBitrate = "128k"
)

// heightBitrate maps a target height to a video bitrate ceiling used
// when downscaling. Constant-quality CRF handles the keep-resolution
// case instead.
var heightBitrate = map[int]string{
	2160: "8000k",
	1440: "5000k",
	1080: "3000k",
	720:  "1500k",
	480:  "800k",
	360:  "500k",
}

// BuildArgs assembles the ffmpeg argument vector for a re-encode. A
// targetHeight of 0 keeps the original resolution and encodes at
// constant quality; a nonzero height downscales (width derived, kept
// even for the encoder) and caps the bitrate.
func BuildArgs(inputPath, outputPath string, targetHeight int) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-nostdin",
		"-i", inputPath,
		"-c:v", videoCodec,
		"-preset", videoPreset,
	}

	if targetHeight > 0 {
		args = append(args, "-vf", fmt.Sprintf("scale=-2:%d", targetHeight))
		if bitrate, ok := heightBitrate[targetHeight]; ok {
			args = append(args, "-b:v", bitrate, "-maxrate", bitrate)
		} else {
			args = append(args, "-crf", videoCRF)
		}
	} else {
		args = append(args, "-crf", videoCRF)
	}

	args = append(args,
		"-c:a", audioCodec,
		"-b:a", audioBitrate,
		"-movflags", "+faststart",
		"-progress", "pipe:1",
		"-nostats",
		outputPath,
	)
	return args
}
