package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	JobAutoBackup      = "auto_backup"
	JobArchiveDocument = "archive_document"

	StatusCompleted = "completed"
	StatusFailed    = "failed"

	maxRecordedRuns = 50
)

// BackupFunc creates one automatic backup.
type BackupFunc func(ctx context.Context) (any, error)

type Run struct {
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Details     any       `json:"details,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
}

type Service struct {
	backupInterval time.Duration
	backup         BackupFunc
	queue          chan job

	mu   sync.Mutex
	runs []Run
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(backupInterval time.Duration, backup BackupFunc) *Service {
	return &Service{
		backupInterval: backupInterval,
		backup:         backup,
		queue:          make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.backupInterval > 0 && s.backup != nil {
		go s.scheduleBackups(ctx, s.backupInterval)
	}
}

// Enqueue hands a job to the background worker, dropping it if the queue is full.
func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// Runs returns the most recent job runs, newest first.
func (s *Service) Runs() []Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Run, len(s.runs))
	for i, r := range s.runs {
		out[len(s.runs)-1-i] = r
	}
	return out
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	started := time.Now().UTC()
	details, err := j.Run(ctx)
	run := Run{Type: j.Type, Status: StatusCompleted, Details: details, StartedAt: started, CompletedAt: time.Now().UTC()}
	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
	}
	s.record(run)
	return details, err
}

func (s *Service) record(run Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	if len(s.runs) > maxRecordedRuns {
		s.runs = s.runs[len(s.runs)-maxRecordedRuns:]
	}
}

func (s *Service) scheduleBackups(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobAutoBackup, func(ctx context.Context) (any, error) {
				return s.backup(ctx)
			})
		}
	}
}
