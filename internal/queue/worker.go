package queue

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
)

// maxLineSize bounds a single line of tool output. ffmpeg and yt-dlp
// lines are short, but playlist metadata can be pathological.
const maxLineSize = 1024 * 1024

// ExecSpawner spawns real OS processes with exec.CommandContext.
type ExecSpawner struct{}

// NewExecSpawner returns the production spawner.
func NewExecSpawner() *ExecSpawner {
	return &ExecSpawner{}
}

// Spawn implements Spawner.
func (s *ExecSpawner) Spawn(ctx context.Context, bin string, args []string) (Process, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &osProcess{
		cmd:    cmd,
		events: make(chan Event, 64),
	}
	go p.pump(stdout, stderr)
	return p, nil
}

type osProcess struct {
	cmd    *exec.Cmd
	events chan Event
}

func (p *osProcess) Events() <-chan Event {
	return p.events
}

// Signal asks the process to stop gracefully, falling back to a hard
// kill on platforms or states where interrupt delivery fails.
func (p *osProcess) Signal() error {
	if p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Signal(os.Interrupt); err != nil {
		return p.cmd.Process.Kill()
	}
	return nil
}

// pump streams both output pipes as line events, then emits the single
// exit event and closes the channel.
func (p *osProcess) pump(stdout, stderr io.Reader) {
	var wg sync.WaitGroup
	for _, r := range []io.Reader{stdout, stderr} {
		wg.Add(1)
		go func(r io.Reader) {
			defer wg.Done()
			scanner := bufio.NewScanner(r)
			scanner.Buffer(make([]byte, 64*1024), maxLineSize)
			for scanner.Scan() {
				p.events <- Event{Line: scanner.Text()}
			}
		}(r)
	}
	wg.Wait()

	err := p.cmd.Wait()
	p.events <- Event{Exit: true, Err: err}
	close(p.events)
}
