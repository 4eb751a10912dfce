package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vodstudy/vodstudy/internal/model"
)

func TestRingEvictsOldest(t *testing.T) {
	r := newRing(3)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		r.push(&model.Job{ID: id})
	}

	assert.Equal(t, 3, r.len())

	got := r.list()
	ids := make([]string, 0, len(got))
	for _, job := range got {
		ids = append(ids, job.ID)
	}
	// newest first, oldest two evicted
	assert.Equal(t, []string{"e", "d", "c"}, ids)
}

func TestRingListReturnsClones(t *testing.T) {
	r := newRing(2)
	r.push(&model.Job{ID: "a", Progress: 50})

	r.list()[0].Progress = 99
	assert.Equal(t, 50, r.list()[0].Progress)
}
