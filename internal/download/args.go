package download

// BuildArgs assembles the yt-dlp argument vector. --newline forces one
// progress report per line so the queue can parse the stream, and
// --no-playlist pins a playlist-entry URL to the single video.
func BuildArgs(formatSelector, outputTemplate, url string) []string {
	args := []string{
		"--newline",
		"--no-playlist",
		"--no-colors",
	}
	if formatSelector != "" {
		args = append(args, "-f", formatSelector)
	}
	args = append(args,
		"--merge-output-format", "mp4",
		"-o", outputTemplate,
		url,
	)
	return args
}
