package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vodstudy/vodstudy/internal/catalog"
	"github.com/vodstudy/vodstudy/internal/queue"
)

var downloadFormat string

// downloadCmd acquires one or more videos and waits for the queue to
// drain.
var downloadCmd = &cobra.Command{
	Use:   "download URL...",
	Short: "Download videos into the local library",
	Long: `Download queues each URL for acquisition with yt-dlp and waits until
every job reaches a terminal state. Videos are registered in the local
catalog; a URL already known to the catalog reuses its existing entry.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVar(&downloadFormat, "format", "", "explicit yt-dlp format selector (overrides the quality policy)")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cobraCmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cobraCmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var specs []queue.JobSpec
	for _, url := range args {
		video, err := a.registerVideo(ctx, url)
		if err != nil {
			return err
		}
		specs = append(specs, queue.JobSpec{
			VideoID:   video.ID.String(),
			SourceURL: url,
			Format:    downloadFormat,
		})
	}

	ids, addErr := a.downloads.Add(ctx, specs)
	if addErr != nil {
		fmt.Printf("rejected: %v\n", addErr)
	}
	if len(ids) == 0 {
		return fmt.Errorf("no jobs queued")
	}

	if failed := waitUntilIdle(ctx, a.downloads); failed > 0 {
		return fmt.Errorf("%d download(s) failed", failed)
	}
	return nil
}

// registerVideo finds or creates the catalog row for a source URL.
func (a *app) registerVideo(ctx context.Context, url string) (*catalog.Video, error) {
	video, err := a.videos.GetBySourceURL(ctx, url)
	if err != nil {
		return nil, err
	}
	if video != nil {
		return video, nil
	}

	video = &catalog.Video{
		Title:     url,
		SourceURL: url,
	}
	if err := a.videos.Create(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}
