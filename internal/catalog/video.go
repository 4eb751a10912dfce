package catalog

import (
	"time"

	"gorm.io/gorm"
)

// Video is a catalog entry for one piece of acquired content. The
// Download*/Optimize*/LastError columns mirror queue state for external
// observers.
type Video struct {
	ID        ULID `gorm:"type:varchar(26);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Title is a human-readable name, defaulting to the source URL
	// until metadata is known.
	Title string `gorm:"size:512" json:"title,omitempty"`

	// SourceURL is the acquisition origin.
	SourceURL string `gorm:"size:2048;index" json:"source_url,omitempty"`

	// FilePath is the on-disk artifact once downloaded.
	FilePath string `gorm:"size:1024" json:"file_path,omitempty"`

	// FileSize is the current artifact size in bytes.
	FileSize int64 `json:"file_size,omitempty"`

	// DurationSec is the media duration in seconds, when probed.
	DurationSec float64 `json:"duration_sec,omitempty"`

	// DownloadStatus mirrors the download queue state for this video.
	DownloadStatus string `gorm:"size:20;index" json:"download_status,omitempty"`

	// DownloadProgress is the last persisted download percent.
	DownloadProgress int `json:"download_progress,omitempty"`

	// OptimizeStatus mirrors the optimize queue state for this video.
	OptimizeStatus string `gorm:"size:20;index" json:"optimize_status,omitempty"`

	// OptimizeProgress is the last persisted optimize percent.
	OptimizeProgress int `json:"optimize_progress,omitempty"`

	// LastError is the most recent job failure message, if any.
	LastError string `gorm:"size:4096" json:"last_error,omitempty"`

	// DownloadedAt is when the last successful download finished.
	DownloadedAt *time.Time `json:"downloaded_at,omitempty"`

	// OptimizedAt is when the last successful optimize finished.
	OptimizedAt *time.Time `json:"optimized_at,omitempty"`
}

// TableName returns the table name for Video.
func (Video) TableName() string {
	return "videos"
}

// BeforeCreate assigns a ULID primary key if one is not set.
func (v *Video) BeforeCreate(_ *gorm.DB) error {
	if v.ID.IsZero() {
		v.ID = NewULID()
	}
	return nil
}
