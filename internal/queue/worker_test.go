//go:build !windows

package queue

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, p Process) (lines []string, exitErr error) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-p.Events():
			if !ok {
				return lines, exitErr
			}
			if ev.Exit {
				exitErr = ev.Err
			} else {
				lines = append(lines, ev.Line)
			}
		case <-timeout:
			t.Fatal("process events never drained")
		}
	}
}

func TestExecSpawnerStreamsBothPipes(t *testing.T) {
	s := NewExecSpawner()
	p, err := s.Spawn(context.Background(), "sh", []string{"-c", "echo out-line; echo err-line >&2"})
	require.NoError(t, err)

	lines, exitErr := drain(t, p)
	assert.NoError(t, exitErr)
	assert.ElementsMatch(t, []string{"out-line", "err-line"}, lines)
}

func TestExecSpawnerReportsExitCode(t *testing.T) {
	s := NewExecSpawner()
	p, err := s.Spawn(context.Background(), "sh", []string{"-c", "exit 3"})
	require.NoError(t, err)

	_, exitErr := drain(t, p)
	var ee *exec.ExitError
	require.True(t, errors.As(exitErr, &ee))
	assert.Equal(t, 3, ee.ExitCode())
}

func TestExecSpawnerMissingBinary(t *testing.T) {
	s := NewExecSpawner()
	_, err := s.Spawn(context.Background(), "definitely-not-a-binary-vodstudy", nil)
	assert.Error(t, err)
}

func TestExecSpawnerSignalStopsProcess(t *testing.T) {
	s := NewExecSpawner()
	p, err := s.Spawn(context.Background(), "sh", []string{"-c", "sleep 30"})
	require.NoError(t, err)

	require.NoError(t, p.Signal())
	_, exitErr := drain(t, p)
	assert.Error(t, exitErr)
}
