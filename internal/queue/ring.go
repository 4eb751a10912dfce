package queue

import "github.com/vodstudy/vodstudy/internal/model"

// ring keeps the most recent finalized jobs for observability, evicting
// the oldest once capacity is reached. Jobs in a ring are immutable
// history.
type ring struct {
	capacity int
	jobs     []*model.Job
}

func newRing(capacity int) *ring {
	return &ring{capacity: capacity}
}

func (r *ring) push(job *model.Job) {
	r.jobs = append(r.jobs, job)
	if len(r.jobs) > r.capacity {
		r.jobs = r.jobs[len(r.jobs)-r.capacity:]
	}
}

// list returns clones, newest first.
func (r *ring) list() []*model.Job {
	out := make([]*model.Job, 0, len(r.jobs))
	for i := len(r.jobs) - 1; i >= 0; i-- {
		out = append(out, r.jobs[i].Clone())
	}
	return out
}

func (r *ring) len() int {
	return len(r.jobs)
}
