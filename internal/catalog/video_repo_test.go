package catalog

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vodstudy/vodstudy/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&Video{})
	require.NoError(t, err)

	return db
}

func TestVideoRepoCreateAndGet(t *testing.T) {
	repo := NewVideoRepository(setupTestDB(t))
	ctx := context.Background()

	video := &Video{
		Title:     "Intro to Phonetics",
		SourceURL: "https://example.com/watch?v=abc123",
	}
	require.NoError(t, repo.Create(ctx, video))
	assert.False(t, video.ID.IsZero())

	found, err := repo.GetByID(ctx, video.ID.String())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, video.Title, found.Title)

	byURL, err := repo.GetBySourceURL(ctx, video.SourceURL)
	require.NoError(t, err)
	require.NotNil(t, byURL)
	assert.Equal(t, video.ID.String(), byURL.ID.String())

	missing, err := repo.GetByID(ctx, NewULID().String())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestVideoRepoUpdateJobState(t *testing.T) {
	repo := NewVideoRepository(setupTestDB(t))
	ctx := context.Background()

	video := &Video{SourceURL: "https://example.com/v/1"}
	require.NoError(t, repo.Create(ctx, video))
	id := video.ID.String()

	err := repo.UpdateJobState(ctx, id, model.KindDownload, model.StatusActive, 40, "")
	require.NoError(t, err)

	found, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "active", found.DownloadStatus)
	assert.Equal(t, 40, found.DownloadProgress)
	assert.Empty(t, found.OptimizeStatus)

	err = repo.UpdateJobState(ctx, id, model.KindOptimize, model.StatusFailed, 10, "ffmpeg exited with code 1")
	require.NoError(t, err)

	found, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "failed", found.OptimizeStatus)
	assert.Equal(t, 10, found.OptimizeProgress)
	assert.Equal(t, "ffmpeg exited with code 1", found.LastError)
	// download fields untouched
	assert.Equal(t, "active", found.DownloadStatus)
}

func TestVideoRepoRecordResult(t *testing.T) {
	repo := NewVideoRepository(setupTestDB(t))
	ctx := context.Background()

	video := &Video{SourceURL: "https://example.com/v/2"}
	require.NoError(t, repo.Create(ctx, video))
	id := video.ID.String()

	dl := &model.Job{
		VideoID:    id,
		Kind:       model.KindDownload,
		OutputPath: "/media/abc123.mp4",
		FinalSize:  11_010_048,
	}
	require.NoError(t, repo.RecordResult(ctx, dl))

	found, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "/media/abc123.mp4", found.FilePath)
	assert.Equal(t, int64(11_010_048), found.FileSize)
	assert.NotNil(t, found.DownloadedAt)
	assert.Nil(t, found.OptimizedAt)

	opt := &model.Job{
		VideoID:   id,
		Kind:      model.KindOptimize,
		FinalSize: 5_000_000,
	}
	require.NoError(t, repo.RecordResult(ctx, opt))

	found, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(5_000_000), found.FileSize)
	assert.NotNil(t, found.OptimizedAt)
	// path survives an in-place optimize
	assert.Equal(t, "/media/abc123.mp4", found.FilePath)
}

func TestVideoRepoFailStaleInFlight(t *testing.T) {
	repo := NewVideoRepository(setupTestDB(t))
	ctx := context.Background()

	stale := &Video{SourceURL: "https://example.com/v/3", DownloadStatus: "active"}
	require.NoError(t, repo.Create(ctx, stale))
	queued := &Video{SourceURL: "https://example.com/v/4", OptimizeStatus: "queued"}
	require.NoError(t, repo.Create(ctx, queued))
	done := &Video{SourceURL: "https://example.com/v/5", DownloadStatus: "completed"}
	require.NoError(t, repo.Create(ctx, done))

	n, err := repo.FailStaleInFlight(ctx, "interrupted by restart")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	found, err := repo.GetByID(ctx, stale.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "failed", found.DownloadStatus)
	assert.Equal(t, "interrupted by restart", found.LastError)

	found, err = repo.GetByID(ctx, done.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "completed", found.DownloadStatus)
	assert.Empty(t, found.LastError)
}
