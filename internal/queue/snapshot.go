package queue

import (
	"github.com/dustin/go-humanize"

	"github.com/vodstudy/vodstudy/internal/model"
)

// Stats aggregates queue activity for observers.
type Stats struct {
	Queued    int
	Active    int
	Completed int
	Failed    int

	// MeanActiveProgress is the average percent across active jobs,
	// 0 when nothing is active.
	MeanActiveProgress float64

	// BytesSaved is the cumulative space reclaimed by the completed
	// optimize jobs still in history.
	BytesSaved int64
}

// BytesSavedHuman renders BytesSaved with binary units.
func (s Stats) BytesSavedHuman() string {
	return humanize.IBytes(uint64(s.BytesSaved))
}

// Snapshot is a point-in-time copy of a manager's state. All jobs are
// clones; mutating them has no effect on the queue.
type Snapshot struct {
	Kind      model.JobKind
	Queued    []*model.Job
	Active    []*model.Job
	Completed []*model.Job
	Failed    []*model.Job
	Stats     Stats
}

// Idle reports whether the queue has no pending or running work.
func (s Snapshot) Idle() bool {
	return len(s.Queued) == 0 && len(s.Active) == 0
}
