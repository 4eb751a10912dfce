package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/vodstudy/vodstudy/internal/catalog"
	"github.com/vodstudy/vodstudy/internal/config"
	"github.com/vodstudy/vodstudy/internal/download"
	"github.com/vodstudy/vodstudy/internal/model"
	"github.com/vodstudy/vodstudy/internal/queue"
	"github.com/vodstudy/vodstudy/internal/storage"
	"github.com/vodstudy/vodstudy/internal/transcode"
)

// pollInterval is how often the CLI repaints queue progress.
const pollInterval = time.Second

// app wires the catalog, runners, and queue managers together for one
// CLI invocation.
type app struct {
	cfg       *config.Config
	db        *gorm.DB
	videos    catalog.VideoRepository
	downloads *queue.Manager
	optimizes *queue.Manager
	logger    *slog.Logger
}

// newApp builds and starts the application. Mirror rows left in-flight
// by a previous process are marked failed before any new work begins;
// the in-memory queues always start empty.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := slog.Default()

	for _, dir := range []string{cfg.Storage.MediaDir, cfg.Storage.TempDir} {
		if err := storage.EnsureDir(dir); err != nil {
			return nil, err
		}
	}

	db, err := catalog.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	videos := catalog.NewVideoRepository(db)

	if n, err := videos.FailStaleInFlight(ctx, "interrupted by restart"); err != nil {
		return nil, err
	} else if n > 0 {
		logger.Warn("marked stale in-flight jobs as failed", slog.Int64("count", n))
	}

	spawner := queue.NewExecSpawner()

	downloads := queue.NewManager(
		managerConfig(model.KindDownload, cfg.Download),
		download.NewRunner(cfg.Tools.YtdlpPath, cfg.Storage.MediaDir, cfg.Download.QualityCeilings),
		spawner,
		videos,
	).WithLogger(logger)

	optimizes := queue.NewManager(
		managerConfig(model.KindOptimize, cfg.Optimize),
		transcode.NewRunner(cfg.Tools.FFmpegPath, cfg.Tools.FFprobePath, cfg.Storage.TempDir),
		spawner,
		videos,
	).WithLogger(logger)

	if err := downloads.Start(ctx); err != nil {
		return nil, err
	}
	if err := optimizes.Start(ctx); err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		db:        db,
		videos:    videos,
		downloads: downloads,
		optimizes: optimizes,
		logger:    logger,
	}, nil
}

// Close stops both queue managers and waits for their workers.
func (a *app) Close() {
	a.downloads.Stop()
	a.optimizes.Stop()
}

// managerConfig translates one queue's configuration section.
func managerConfig(kind model.JobKind, qc config.QueueConfig) queue.Config {
	return queue.Config{
		Kind:                kind,
		MaxConcurrent:       qc.MaxConcurrent,
		TickInterval:        qc.TickInterval,
		MirrorWriteInterval: qc.MirrorWriteInterval,
		HistorySize:         qc.HistorySize,
	}
}

// waitUntilIdle polls one manager until all its jobs reach a terminal
// state, printing progress along the way. Returns the number of failed
// jobs observed in history.
func waitUntilIdle(ctx context.Context, m *queue.Manager) int {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0
		case <-ticker.C:
		}

		snap := m.Status()
		for _, job := range snap.Active {
			line := fmt.Sprintf("  %3d%%  %s", job.Progress, job.DisplayName())
			if job.Speed != "" {
				line += "  " + job.Speed
			}
			if job.ETA != "" {
				line += "  ETA " + job.ETA
			}
			fmt.Println(line)
		}

		if snap.Idle() {
			return reportFinished(snap)
		}
	}
}

// reportFinished prints a one-line summary per finished job and returns
// the failure count.
func reportFinished(snap queue.Snapshot) int {
	failed := 0
	for _, job := range snap.Failed {
		failed++
		fmt.Printf("failed: %s (%s: %s)\n", job.DisplayName(), job.ErrClass, job.ErrMessage)
	}
	for _, job := range snap.Completed {
		switch job.Kind {
		case model.KindOptimize:
			fmt.Printf("optimized: %s (%d -> %d bytes)\n", job.OutputPath, job.OriginalSize, job.FinalSize)
		default:
			fmt.Printf("downloaded: %s (%d bytes)\n", job.OutputPath, job.FinalSize)
		}
	}
	return failed
}
