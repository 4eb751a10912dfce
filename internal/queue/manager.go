package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"sync"
	"time"

	"github.com/vodstudy/vodstudy/internal/model"
)

// Config holds scheduling configuration for one manager.
type Config struct {
	// Kind is the job kind this manager schedules.
	Kind model.JobKind

	// MaxConcurrent caps simultaneously active jobs.
	MaxConcurrent int

	// TickInterval is the scheduler poll interval.
	TickInterval time.Duration

	// MirrorWriteInterval is the minimum gap between progress writes to
	// the mirror for one job. Status transitions are always written.
	MirrorWriteInterval time.Duration

	// HistorySize bounds the completed and failed rings.
	HistorySize int
}

// DefaultConfig returns the default configuration for a kind.
// Transcoding is CPU-bound and runs one at a time; downloads are
// I/O-bound and overlap.
func DefaultConfig(kind model.JobKind) Config {
	cfg := Config{
		Kind:                kind,
		MaxConcurrent:       2,
		TickInterval:        2 * time.Second,
		MirrorWriteInterval: 500 * time.Millisecond,
		HistorySize:         10,
	}
	if kind == model.KindOptimize {
		cfg.MaxConcurrent = 1
	}
	return cfg
}

// JobSpec describes one job candidate passed to Add.
type JobSpec struct {
	VideoID      string
	SourceURL    string
	InputPath    string
	Format       string
	TargetHeight int
}

// Manager is the scheduling authority for one job kind. It owns the
// queued FIFO, the active set, and the history rings; all mutation is
// serialized behind its mutex, entered only from the scheduler tick and
// the per-job event goroutines.
type Manager struct {
	cfg     Config
	runner  Runner
	spawner Spawner
	mirror  Mirror
	logger  *slog.Logger

	mu              sync.Mutex
	queued          []*model.Job
	active          map[string]*model.Job
	procs           map[string]Process
	cancelRequested map[string]bool
	lastMirrorWrite map[string]time.Time
	completed       *ring
	failed          *ring

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	poke    chan struct{}
	started bool
}

// NewManager creates a manager. A nil mirror discards mirror writes.
func NewManager(cfg Config, runner Runner, spawner Spawner, mirror Mirror) *Manager {
	if mirror == nil {
		mirror = NopMirror{}
	}
	return &Manager{
		cfg:             cfg,
		runner:          runner,
		spawner:         spawner,
		mirror:          mirror,
		logger:          slog.Default(),
		active:          make(map[string]*model.Job),
		procs:           make(map[string]Process),
		cancelRequested: make(map[string]bool),
		lastMirrorWrite: make(map[string]time.Time),
		completed:       newRing(cfg.HistorySize),
		failed:          newRing(cfg.HistorySize),
		poke:            make(chan struct{}, 1),
	}
}

// WithLogger sets a custom logger.
func (m *Manager) WithLogger(logger *slog.Logger) *Manager {
	m.logger = logger.With(slog.String("queue", m.cfg.Kind.String()))
	return m
}

// Start begins the scheduler poll loop.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return fmt.Errorf("queue manager already started")
	}
	m.started = true
	m.ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(1)
	go m.loop()

	m.logger.Info("queue manager started",
		slog.Int("max_concurrent", m.cfg.MaxConcurrent),
		slog.Duration("tick_interval", m.cfg.TickInterval))
	return nil
}

// Stop terminates the scheduler and any running processes, then waits
// for the per-job goroutines to drain.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	m.logger.Info("queue manager stopped")
}

func (m *Manager) loop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.tick()
		case <-m.poke:
			m.tick()
		}
	}
}

// kick nudges the scheduler without waiting for the next tick.
func (m *Manager) kick() {
	select {
	case m.poke <- struct{}{}:
	default:
	}
}

// Add enqueues job candidates. Each candidate is validated and checked
// against the queued/active set for its target; rejected candidates are
// reported in the joined error while accepted ones still enqueue. The
// returned ids correspond to accepted jobs in order.
func (m *Manager) Add(ctx context.Context, specs []JobSpec) ([]string, error) {
	var ids []string
	var errs []error

	for _, spec := range specs {
		job := &model.Job{
			ID:           model.NewJobID(m.cfg.Kind),
			VideoID:      spec.VideoID,
			Kind:         m.cfg.Kind,
			SourceURL:    spec.SourceURL,
			InputPath:    spec.InputPath,
			Format:       spec.Format,
			TargetHeight: spec.TargetHeight,
			Status:       model.StatusQueued,
			AddedAt:      time.Now(),
		}

		if m.isPending(spec.VideoID) {
			m.logger.Warn("target already queued or active",
				slog.String("video_id", spec.VideoID))
			errs = append(errs, fmt.Errorf("target %s already queued or active", spec.VideoID))
			continue
		}

		if err := m.runner.Validate(ctx, job); err != nil {
			errs = append(errs, fmt.Errorf("validating %s: %w", spec.VideoID, err))
			continue
		}

		m.mu.Lock()
		m.queued = append(m.queued, job)
		m.mu.Unlock()

		if err := m.mirror.UpdateJobState(ctx, job.VideoID, m.cfg.Kind, model.StatusQueued, 0, ""); err != nil {
			m.logger.Warn("mirror write failed",
				slog.String("job_id", job.ID), slog.Any("error", err))
		}

		m.logger.Info("job queued",
			slog.String("job_id", job.ID),
			slog.String("video_id", job.VideoID))
		ids = append(ids, job.ID)
	}

	m.kick()
	return ids, errors.Join(errs...)
}

// isPending reports whether a target already has a non-terminal job.
func (m *Manager) isPending(videoID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, job := range m.queued {
		if job.VideoID == videoID {
			return true
		}
	}
	for _, job := range m.active {
		if job.VideoID == videoID {
			return true
		}
	}
	return false
}

// tick promotes queued jobs into free scheduler slots, FIFO order.
func (m *Manager) tick() {
	m.mu.Lock()
	slots := m.cfg.MaxConcurrent - len(m.active)
	var promoted []*model.Job
	for slots > 0 && len(m.queued) > 0 {
		job := m.queued[0]
		m.queued = m.queued[1:]
		job.Status = model.StatusActive
		job.Progress = 0
		job.StartedAt = time.Now()
		m.active[job.ID] = job
		promoted = append(promoted, job)
		slots--
	}
	m.mu.Unlock()

	for _, job := range promoted {
		if err := m.mirror.UpdateJobState(m.ctx, job.VideoID, m.cfg.Kind, model.StatusActive, 0, ""); err != nil {
			m.logger.Warn("mirror write failed",
				slog.String("job_id", job.ID), slog.Any("error", err))
		}
		m.logger.Info("job started",
			slog.String("job_id", job.ID),
			slog.String("video_id", job.VideoID))

		m.wg.Add(1)
		go m.run(job)
	}
}

// run owns one active job from spawn to finalization, draining the
// process event stream.
func (m *Manager) run(job *model.Job) {
	defer m.wg.Done()

	bin, args := m.runner.Command(job)
	proc, err := m.spawner.Spawn(m.ctx, bin, args)
	if err != nil {
		m.finishFailed(job, model.NewJobError(model.ErrorSpawn, "failed to start %s: %v", bin, err))
		m.kick()
		return
	}

	m.mu.Lock()
	m.procs[job.ID] = proc
	cancelled := m.cancelRequested[job.ID]
	m.mu.Unlock()
	if cancelled {
		// cancel raced the spawn; terminate immediately
		_ = proc.Signal()
	}

	for ev := range proc.Events() {
		if ev.Exit {
			m.handleExit(job, ev.Err)
		} else {
			m.handleLine(job, ev.Line)
		}
	}
}

// handleLine folds one parsed output line into the job, throttling
// progress writes to the mirror.
func (m *Manager) handleLine(job *model.Job, line string) {
	le := m.runner.ParseLine(job, line)

	m.mu.Lock()
	if job.Status != model.StatusActive {
		m.mu.Unlock()
		return
	}
	if le.Destination != "" {
		job.OutputPath = le.Destination
	}
	write := false
	if le.Progress >= 0 {
		pct := le.Progress
		// 100 is reserved for confirmed success
		if pct > 99 {
			pct = 99
		}
		if pct > job.Progress {
			job.Progress = pct
		}
		if le.TotalSize != "" {
			job.TotalSize = le.TotalSize
		}
		if le.Downloaded != "" {
			job.DownloadedSize = le.Downloaded
		}
		if le.Speed != "" {
			job.Speed = le.Speed
		}
		if le.ETA != "" {
			job.ETA = le.ETA
		}
		if time.Since(m.lastMirrorWrite[job.ID]) >= m.cfg.MirrorWriteInterval {
			m.lastMirrorWrite[job.ID] = time.Now()
			write = true
		}
	}
	videoID, progress := job.VideoID, job.Progress
	m.mu.Unlock()

	if write {
		if err := m.mirror.UpdateJobState(m.ctx, videoID, m.cfg.Kind, model.StatusActive, progress, ""); err != nil {
			m.logger.Warn("mirror write failed",
				slog.String("job_id", job.ID), slog.Any("error", err))
		}
	}
}

// handleExit interprets the process's terminal event. A requested
// cancel always wins over the exit code; otherwise a nonzero exit is a
// process error and a clean exit hands over to the runner's Finalize.
func (m *Manager) handleExit(job *model.Job, exitErr error) {
	m.mu.Lock()
	cancelled := m.cancelRequested[job.ID]
	delete(m.procs, job.ID)
	delete(m.cancelRequested, job.ID)
	delete(m.lastMirrorWrite, job.ID)
	m.mu.Unlock()

	switch {
	case cancelled:
		m.runner.Cleanup(job)
		m.mu.Lock()
		job.Status = model.StatusCancelled
		job.FinishedAt = time.Now()
		delete(m.active, job.ID)
		m.mu.Unlock()

		if err := m.mirror.UpdateJobState(m.ctx, job.VideoID, m.cfg.Kind, model.StatusCancelled, job.Progress, ""); err != nil {
			m.logger.Warn("mirror write failed",
				slog.String("job_id", job.ID), slog.Any("error", err))
		}
		m.logger.Info("job cancelled", slog.String("job_id", job.ID))

	case exitErr != nil:
		msg := fmt.Sprintf("process failed: %v", exitErr)
		var ee *exec.ExitError
		if errors.As(exitErr, &ee) {
			msg = fmt.Sprintf("process exited with code %d", ee.ExitCode())
		}
		m.finishFailed(job, model.NewJobError(model.ErrorProcess, "%s", msg))

	default:
		path, size, err := m.runner.Finalize(m.ctx, job)
		if err != nil {
			var je *model.JobError
			if !errors.As(err, &je) {
				je = model.NewJobError(model.ErrorProcess, "%v", err)
			}
			m.finishFailed(job, je)
			break
		}
		m.finishCompleted(job, path, size)
	}

	m.kick()
}

// finishCompleted moves a job from the active map into completed
// history and persists the result.
func (m *Manager) finishCompleted(job *model.Job, path string, size int64) {
	m.mu.Lock()
	job.Status = model.StatusCompleted
	job.Progress = 100
	if path != "" {
		job.OutputPath = path
	}
	job.FinalSize = size
	job.FinishedAt = time.Now()
	delete(m.active, job.ID)
	m.completed.push(job)
	m.mu.Unlock()

	if err := m.mirror.UpdateJobState(m.ctx, job.VideoID, m.cfg.Kind, model.StatusCompleted, 100, ""); err != nil {
		m.logger.Warn("mirror write failed",
			slog.String("job_id", job.ID), slog.Any("error", err))
	}
	if err := m.mirror.RecordResult(m.ctx, job); err != nil {
		m.logger.Warn("mirror result write failed",
			slog.String("job_id", job.ID), slog.Any("error", err))
	}

	m.logger.Info("job completed",
		slog.String("job_id", job.ID),
		slog.String("output", job.OutputPath),
		slog.Int64("size", size))
}

// finishFailed moves a job from the active map into failed history.
func (m *Manager) finishFailed(job *model.Job, je *model.JobError) {
	m.mu.Lock()
	job.Status = model.StatusFailed
	job.ErrClass = je.Class
	job.ErrMessage = je.Message
	job.FinishedAt = time.Now()
	delete(m.active, job.ID)
	delete(m.cancelRequested, job.ID)
	delete(m.lastMirrorWrite, job.ID)
	m.failed.push(job)
	m.mu.Unlock()

	if err := m.mirror.UpdateJobState(m.ctx, job.VideoID, m.cfg.Kind, model.StatusFailed, job.Progress, je.Message); err != nil {
		m.logger.Warn("mirror write failed",
			slog.String("job_id", job.ID), slog.Any("error", err))
	}

	m.logger.Warn("job failed",
		slog.String("job_id", job.ID),
		slog.String("class", string(je.Class)),
		slog.String("error", je.Message))
}

// Cancel cancels a job. A queued job is removed without touching any
// file; an active job has its process signalled and is finalized as
// cancelled (never failed) once the process goes away.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	for i, job := range m.queued {
		if job.ID != id {
			continue
		}
		m.queued = append(m.queued[:i], m.queued[i+1:]...)
		job.Status = model.StatusCancelled
		job.FinishedAt = time.Now()
		m.mu.Unlock()

		if err := m.mirror.UpdateJobState(m.ctx, job.VideoID, m.cfg.Kind, model.StatusCancelled, 0, ""); err != nil {
			m.logger.Warn("mirror write failed",
				slog.String("job_id", id), slog.Any("error", err))
		}
		m.logger.Info("job cancelled", slog.String("job_id", id))
		return nil
	}

	if _, ok := m.active[id]; ok {
		m.cancelRequested[id] = true
		proc := m.procs[id]
		m.mu.Unlock()

		if proc != nil {
			if err := proc.Signal(); err != nil {
				m.logger.Warn("terminate signal failed",
					slog.String("job_id", id), slog.Any("error", err))
			}
		}
		return nil
	}
	m.mu.Unlock()

	return fmt.Errorf("job %s not found in queue", id)
}

// Status returns a point-in-time snapshot of the queue with aggregate
// stats.
func (m *Manager) Status() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{Kind: m.cfg.Kind}

	for _, job := range m.queued {
		snap.Queued = append(snap.Queued, job.Clone())
	}
	for _, job := range m.active {
		snap.Active = append(snap.Active, job.Clone())
	}
	sort.Slice(snap.Active, func(i, j int) bool {
		return snap.Active[i].StartedAt.Before(snap.Active[j].StartedAt)
	})
	snap.Completed = m.completed.list()
	snap.Failed = m.failed.list()

	snap.Stats = Stats{
		Queued:    len(snap.Queued),
		Active:    len(snap.Active),
		Completed: m.completed.len(),
		Failed:    m.failed.len(),
	}
	if len(snap.Active) > 0 {
		var sum int
		for _, job := range snap.Active {
			sum += job.Progress
		}
		snap.Stats.MeanActiveProgress = float64(sum) / float64(len(snap.Active))
	}
	for _, job := range snap.Completed {
		snap.Stats.BytesSaved += job.BytesSaved()
	}

	return snap
}
