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

var optimizeHeight int

// optimizeCmd re-encodes downloaded videos in place.
var optimizeCmd = &cobra.Command{
	Use:   "optimize FILE|ID...",
	Short: "Re-encode videos to reclaim disk space",
	Long: `Optimize queues each video for re-encoding with ffmpeg. The encoder
writes to a temporary file; only after a verified successful encode is
the original replaced, atomically. Arguments may be catalog ids or file
paths of downloaded videos.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().IntVar(&optimizeHeight, "height", 0, "downscale to this height (0 keeps the original resolution)")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cobraCmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cobraCmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var specs []queue.JobSpec
	for _, arg := range args {
		video, err := a.resolveVideo(ctx, arg)
		if err != nil {
			return err
		}
		specs = append(specs, queue.JobSpec{
			VideoID:      video.ID.String(),
			InputPath:    video.FilePath,
			TargetHeight: optimizeHeight,
		})
	}

	ids, addErr := a.optimizes.Add(ctx, specs)
	if addErr != nil {
		fmt.Printf("rejected: %v\n", addErr)
	}
	if len(ids) == 0 {
		return fmt.Errorf("no jobs queued")
	}

	if failed := waitUntilIdle(ctx, a.optimizes); failed > 0 {
		return fmt.Errorf("%d optimize(s) failed", failed)
	}
	return nil
}

// resolveVideo looks an argument up as a catalog id first, then as a
// file path of a downloaded video.
func (a *app) resolveVideo(ctx context.Context, arg string) (*catalog.Video, error) {
	if _, err := catalog.ParseULID(arg); err == nil {
		video, err := a.videos.GetByID(ctx, arg)
		if err != nil {
			return nil, err
		}
		if video != nil {
			return a.requireFile(video)
		}
	}

	video, err := a.videos.GetByFilePath(ctx, arg)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, fmt.Errorf("no catalog entry for %q", arg)
	}
	return a.requireFile(video)
}

func (a *app) requireFile(video *catalog.Video) (*catalog.Video, error) {
	if video.FilePath == "" {
		return nil, fmt.Errorf("video %s has not been downloaded yet", video.ID)
	}
	return video, nil
}
