package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sjperalta/creditos-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker runs named jobs on fixed intervals. At most maxConcurrent jobs run at
// the same time; a tick that finds its job still running is skipped.
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	sem           chan struct{}
	maxConcurrent int
	running       map[string]bool
	stats         WorkerStats
	statsMu       sync.RWMutex
}

// WorkerStats holds statistics about the worker
type WorkerStats struct {
	ActiveJobs    int                 `json:"active_jobs"`
	CompletedJobs int64               `json:"completed_jobs"`
	FailedJobs    int64               `json:"failed_jobs"`
	SkippedRuns   int64               `json:"skipped_runs"`
	MaxConcurrent int                 `json:"max_concurrent"`
	Jobs          map[string]JobStats `json:"jobs"`
}

// JobStats is the last outcome of one scheduled job
type JobStats struct {
	Runs      int64     `json:"runs"`
	Failures  int64     `json:"failures"`
	LastRun   time.Time `json:"last_run"`
	LastError string    `json:"last_error,omitempty"`
}

// NewWorker creates a worker running up to numWorkers jobs concurrently
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		ctx:           ctx,
		cancel:        cancel,
		sem:           make(chan struct{}, numWorkers),
		maxConcurrent: numWorkers,
		running:       make(map[string]bool),
		stats:         WorkerStats{Jobs: make(map[string]JobStats)},
	}
}

// ScheduleEvery runs a job at fixed intervals. The first run happens after the interval (not at startup).
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, job, false)
}

// ScheduleEveryImmediate runs a job once at startup, then at fixed intervals, so
// a restarted process does not wait a full interval for the first run.
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, job, true)
}

func (w *Worker) schedule(name string, interval time.Duration, job Job, immediate bool) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if immediate {
			w.runScheduledJob(name, job)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.runScheduledJob(name, job)
			}
		}
	}()
}

// RunNow runs a registered or ad-hoc job once, synchronously
func (w *Worker) RunNow(name string, job Job) error {
	return w.runScheduledJob(name, job)
}

func (w *Worker) runScheduledJob(name string, job Job) (err error) {
	if !w.trackJobStart(name) {
		logger.Warn("[Scheduler] Job still running, skipping tick", "job", name)
		return nil
	}

	select {
	case w.sem <- struct{}{}:
	case <-w.ctx.Done():
		w.trackJobEnd(name, w.ctx.Err())
		return w.ctx.Err()
	}
	defer func() { <-w.sem }()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			logger.Error("[Scheduler] Job panic", "job", name, "panic", r)
		}
		w.trackJobEnd(name, err)
	}()

	start := time.Now()
	if err = job(w.ctx); err != nil {
		logger.Error("[Scheduler] Job error", "job", name, "error", err)
		return err
	}
	logger.Info("[Scheduler] Job completed", "job", name, "duration", time.Since(start))
	return nil
}

// Shutdown stops the schedules and waits for running jobs to return
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.MaxConcurrent = w.maxConcurrent
	stats.Jobs = make(map[string]JobStats, len(w.stats.Jobs))
	for name, js := range w.stats.Jobs {
		stats.Jobs[name] = js
	}
	return stats
}

func (w *Worker) trackJobStart(name string) bool {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	if w.running[name] {
		w.stats.SkippedRuns++
		return false
	}
	w.running[name] = true
	w.stats.ActiveJobs++
	return true
}

// trackJobEnd counts every finished run in CompletedJobs; failures are also counted in FailedJobs.
func (w *Worker) trackJobEnd(name string, err error) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	delete(w.running, name)
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++

	js := w.stats.Jobs[name]
	js.Runs++
	js.LastRun = time.Now()
	js.LastError = ""
	if err != nil {
		w.stats.FailedJobs++
		js.Failures++
		js.LastError = err.Error()
	}
	w.stats.Jobs[name] = js
}
