package catalog

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vodstudy/vodstudy/internal/model"
)

// VideoRepository provides access to the video catalog. Its
// UpdateJobState and RecordResult methods satisfy the queue mirror
// contract.
type VideoRepository interface {
	Create(ctx context.Context, video *Video) error
	GetByID(ctx context.Context, id string) (*Video, error)
	GetBySourceURL(ctx context.Context, url string) (*Video, error)
	GetByFilePath(ctx context.Context, path string) (*Video, error)
	List(ctx context.Context) ([]*Video, error)

	UpdateJobState(ctx context.Context, videoID string, kind model.JobKind, status model.JobStatus, progress int, lastError string) error
	RecordResult(ctx context.Context, job *model.Job) error
	FailStaleInFlight(ctx context.Context, message string) (int64, error)
}

// videoRepo implements VideoRepository using GORM.
type videoRepo struct {
	db *gorm.DB
}

// NewVideoRepository creates a new VideoRepository.
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepo{db: db}
}

// Create creates a new video record.
func (r *videoRepo) Create(ctx context.Context, video *Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return fmt.Errorf("creating video: %w", err)
	}
	return nil
}

// GetByID retrieves a video by its ULID string.
func (r *videoRepo) GetByID(ctx context.Context, id string) (*Video, error) {
	var video Video
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&video).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting video by ID: %w", err)
	}
	return &video, nil
}

// GetBySourceURL retrieves a video by its acquisition origin.
func (r *videoRepo) GetBySourceURL(ctx context.Context, url string) (*Video, error) {
	var video Video
	if err := r.db.WithContext(ctx).Where("source_url = ?", url).First(&video).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting video by source URL: %w", err)
	}
	return &video, nil
}

// GetByFilePath retrieves a video by its on-disk artifact path.
func (r *videoRepo) GetByFilePath(ctx context.Context, path string) (*Video, error) {
	var video Video
	if err := r.db.WithContext(ctx).Where("file_path = ?", path).First(&video).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting video by file path: %w", err)
	}
	return &video, nil
}

// List retrieves all videos, newest first.
func (r *videoRepo) List(ctx context.Context) ([]*Video, error) {
	var videos []*Video
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}
	return videos, nil
}

// UpdateJobState mirrors queue status and progress for one video.
func (r *videoRepo) UpdateJobState(ctx context.Context, videoID string, kind model.JobKind, status model.JobStatus, progress int, lastError string) error {
	updates := map[string]any{
		"last_error": lastError,
	}
	switch kind {
	case model.KindOptimize:
		updates["optimize_status"] = status.String()
		updates["optimize_progress"] = progress
	default:
		updates["download_status"] = status.String()
		updates["download_progress"] = progress
	}

	if err := r.db.WithContext(ctx).Model(&Video{}).Where("id = ?", videoID).Updates(updates).Error; err != nil {
		return fmt.Errorf("updating job state: %w", err)
	}
	return nil
}

// RecordResult persists the artifact path, size, and completion
// timestamp of a successfully finished job.
func (r *videoRepo) RecordResult(ctx context.Context, job *model.Job) error {
	now := time.Now()
	updates := map[string]any{
		"file_size": job.FinalSize,
	}
	switch job.Kind {
	case model.KindOptimize:
		updates["optimized_at"] = &now
	default:
		updates["file_path"] = job.OutputPath
		updates["downloaded_at"] = &now
	}

	if err := r.db.WithContext(ctx).Model(&Video{}).Where("id = ?", job.VideoID).Updates(updates).Error; err != nil {
		return fmt.Errorf("recording job result: %w", err)
	}
	return nil
}

// FailStaleInFlight marks mirror rows stuck in queued/active states as
// failed. The in-memory queues start empty after a restart, so anything
// still marked in-flight belongs to a previous process.
func (r *videoRepo) FailStaleInFlight(ctx context.Context, message string) (int64, error) {
	inFlight := []string{model.StatusQueued.String(), model.StatusActive.String()}
	var total int64

	res := r.db.WithContext(ctx).Model(&Video{}).
		Where("download_status IN ?", inFlight).
		Updates(map[string]any{
			"download_status": model.StatusFailed.String(),
			"last_error":      message,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failing stale downloads: %w", res.Error)
	}
	total += res.RowsAffected

	res = r.db.WithContext(ctx).Model(&Video{}).
		Where("optimize_status IN ?", inFlight).
		Updates(map[string]any{
			"optimize_status": model.StatusFailed.String(),
			"last_error":      message,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failing stale optimizes: %w", res.Error)
	}
	total += res.RowsAffected

	return total, nil
}
