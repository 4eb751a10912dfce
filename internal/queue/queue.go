// Package queue implements the scheduling core: per-kind managers that
// promote queued jobs up to a concurrency cap, own their external
// processes, track progress parsed from tool output, and file finished
// jobs into bounded history rings.
package queue

import (
	"context"

	"github.com/vodstudy/vodstudy/internal/model"
)

// LineEvent is the structured interpretation of one line of tool
// output. A Progress of -1 means the line carried no progress value.
type LineEvent struct {
	Progress    int
	TotalSize   string
	Downloaded  string
	Speed       string
	ETA         string
	Destination string // non-empty when the tool announced its output path
}

// NoProgress is the LineEvent for lines that carry nothing of interest.
func NoProgress() LineEvent {
	return LineEvent{Progress: -1}
}

// Runner adapts one job kind's external tool to the queue manager.
// Implementations hold no per-job state; everything flows through the
// job passed in.
type Runner interface {
	// Validate rejects a job candidate before it is enqueued, e.g. a
	// missing source artifact for a transcode.
	Validate(ctx context.Context, job *model.Job) error

	// Command returns the binary and argument vector to spawn.
	Command(job *model.Job) (bin string, args []string)

	// ParseLine interprets one line of subprocess output.
	ParseLine(job *model.Job, line string) LineEvent

	// Finalize runs after a clean exit: it resolves the produced
	// artifact, performs any in-place replacement, and returns the
	// final path and size. Failures should be *model.JobError values
	// so the manager records the right error class.
	Finalize(ctx context.Context, job *model.Job) (path string, size int64, err error)

	// Cleanup removes temporary artifacts after a cancel or failure.
	Cleanup(job *model.Job)
}

// Mirror persists job status, progress, and results for external
// observers. The catalog's video repository satisfies this.
type Mirror interface {
	UpdateJobState(ctx context.Context, videoID string, kind model.JobKind, status model.JobStatus, progress int, lastError string) error
	RecordResult(ctx context.Context, job *model.Job) error
}

// NopMirror discards all writes. Useful in tests.
type NopMirror struct{}

// UpdateJobState implements Mirror.
func (NopMirror) UpdateJobState(context.Context, string, model.JobKind, model.JobStatus, int, string) error {
	return nil
}

// RecordResult implements Mirror.
func (NopMirror) RecordResult(context.Context, *model.Job) error {
	return nil
}

// Event is one observation from a running process: a line of output or
// the terminal exit.
type Event struct {
	Line string
	Exit bool
	Err  error // exit error; nil on a clean exit
}

// Process is a handle on one spawned external process. The event
// channel delivers output lines followed by exactly one exit event,
// then closes.
type Process interface {
	Events() <-chan Event
	Signal() error
}

// Spawner launches external processes. It exists as an interface so
// manager tests can script process behavior without spawning anything.
type Spawner interface {
	Spawn(ctx context.Context, bin string, args []string) (Process, error)
}
