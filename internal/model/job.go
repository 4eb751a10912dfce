// Package model defines the job entities shared by the download and
// optimize queues.
package model

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// JobKind identifies which queue a job belongs to.
type JobKind string

const (
	// KindDownload is a media acquisition job driven by yt-dlp.
	KindDownload JobKind = "download"

	// KindOptimize is a re-encode job driven by ffmpeg.
	KindOptimize JobKind = "optimize"
)

// String returns the string representation of JobKind.
func (k JobKind) String() string {
	return string(k)
}

// idPrefix returns the job-id prefix for the kind.
func (k JobKind) idPrefix() string {
	if k == KindOptimize {
		return "opt-"
	}
	return "dl-"
}

// JobStatus represents the lifecycle state of a job.
// Jobs move queued → active → {completed, failed, cancelled}; the three
// right-hand states are terminal and never transition back.
type JobStatus string

const (
	// StatusQueued means the job is waiting for a scheduler slot.
	StatusQueued JobStatus = "queued"

	// StatusActive means the job owns a running external process.
	StatusActive JobStatus = "active"

	// StatusCompleted means the job finished successfully.
	StatusCompleted JobStatus = "completed"

	// StatusFailed means the job failed; the error class and message are
	// recorded on the job.
	StatusFailed JobStatus = "failed"

	// StatusCancelled means the job was cancelled by the user.
	StatusCancelled JobStatus = "cancelled"
)

// String returns the string representation of JobStatus.
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal returns true once the job can no longer change state.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// ErrorClass is the coarse failure taxonomy recorded on failed jobs.
type ErrorClass string

const (
	// ErrorSpawn means the external binary could not be started.
	ErrorSpawn ErrorClass = "spawn_error"

	// ErrorProcess means the external process exited with a nonzero code.
	ErrorProcess ErrorClass = "process_error"

	// ErrorReplace means the atomic in-place replacement failed; the
	// original file was rolled back first.
	ErrorReplace ErrorClass = "replace_error"

	// ErrorEmptyOutput means the process exited cleanly but produced a
	// missing or zero-byte artifact.
	ErrorEmptyOutput ErrorClass = "empty_output"
)

// JobError is an error carrying the failure class for a job.
type JobError struct {
	Class   ErrorClass
	Message string
}

// Error implements the error interface.
func (e *JobError) Error() string {
	return e.Message
}

// NewJobError builds a classified job error.
func NewJobError(class ErrorClass, format string, args ...any) *JobError {
	return &JobError{Class: class, Message: fmt.Sprintf(format, args...)}
}

// Job is the unit of work tracked by a queue manager. Fields are mutated
// only by the owning manager; everything handed out through snapshots is
// a copy.
type Job struct {
	ID      string
	VideoID string
	Kind    JobKind

	SourceURL  string // download: origin URL
	InputPath  string // optimize: file to re-encode
	OutputPath string // final artifact path once known
	TempPath   string // optimize: encoder output before replacement

	Format       string // download: explicit yt-dlp format selector
	TargetHeight int    // optimize: 0 keeps the original resolution

	Status   JobStatus
	Progress int // 0-100, monotonically non-decreasing while active

	TotalSize      string // download: reported total, e.g. "10.5MiB"
	DownloadedSize string // download: derived bytes fetched so far
	Speed          string
	ETA            string

	OriginalSize int64
	FinalSize    int64
	DurationSec  float64 // optimize: media duration driving progress

	ErrClass   ErrorClass
	ErrMessage string

	AddedAt    time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewJobID generates a unique job id using UUID v7, which embeds a
// timestamp and sorts chronologically.
func NewJobID(kind JobKind) string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf("%s%d", kind.idPrefix(), time.Now().UnixNano())
	}
	return kind.idPrefix() + id.String()
}

// Clone returns a copy of the job safe to hand to observers.
func (j *Job) Clone() *Job {
	c := *j
	return &c
}

// BytesSaved reports how many bytes an optimize job reclaimed. Zero for
// downloads and for jobs that grew the file.
func (j *Job) BytesSaved() int64 {
	if j.Kind != KindOptimize || j.Status != StatusCompleted {
		return 0
	}
	if saved := j.OriginalSize - j.FinalSize; saved > 0 {
		return saved
	}
	return 0
}

// DisplayName returns a short human label: the artifact filename when
// known, otherwise the source URL or input path.
func (j *Job) DisplayName() string {
	if j.OutputPath != "" {
		return filepath.Base(j.OutputPath)
	}
	if j.InputPath != "" {
		return filepath.Base(j.InputPath)
	}
	return j.SourceURL
}
