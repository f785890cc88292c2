package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gcbaptista/skillmatch/internal/errors"
	"github.com/gcbaptista/skillmatch/model"
)

// JobFunc is the body of a background job
type JobFunc func(ctx context.Context, job *model.Job) error

// Manager handles background job execution and tracking
type Manager struct {
	mu        sync.RWMutex
	jobs      map[string]*model.Job
	workers   chan struct{} // limits concurrent jobs
	stopChan  chan struct{}
	stopOnce  sync.Once
	baseCtx   context.Context
	cancelAll context.CancelFunc
	wg        sync.WaitGroup
	metrics   *Metrics
	retention time.Duration
	logger    logrus.FieldLogger
}

// NewManager creates a job manager with the given worker count.
// Finished jobs older than retention are removed by the cleanup routine.
func NewManager(maxWorkers int, retention time.Duration, logger logrus.FieldLogger) *Manager {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:      make(map[string]*model.Job),
		workers:   make(chan struct{}, maxWorkers),
		stopChan:  make(chan struct{}),
		baseCtx:   ctx,
		cancelAll: cancel,
		metrics:   NewMetrics(),
		retention: retention,
		logger:    logger.WithField("component", "jobs"),
	}
}

// Start launches the background cleanup routine
func (m *Manager) Start() {
	m.logger.WithField("workers", cap(m.workers)).Info("Job manager started")
	go m.cleanupRoutine()
}

// Stop cancels running jobs and waits for them to return
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.cancelAll()
		m.wg.Wait()
		m.logger.Info("Job manager stopped")
	})
}

// CreateJob registers a new pending job and returns its ID
func (m *Manager) CreateJob(jobType model.JobType, subject string, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked(jobType, subject, metadata)
}

// CreateExclusiveJob creates a job unless one of the same type is pending or running.
// In that case the existing job's ID is returned and created is false.
func (m *Manager) CreateExclusiveJob(jobType model.JobType, subject string, metadata map[string]string) (jobID string, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, job := range m.jobs {
		if job.Type == jobType && isActive(job.Status) {
			return job.ID, false
		}
	}
	return m.createLocked(jobType, subject, metadata), true
}

func (m *Manager) createLocked(jobType model.JobType, subject string, metadata map[string]string) string {
	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		Subject:   subject,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	m.jobs[job.ID] = job
	m.metrics.RecordCreated(jobType)
	m.logger.WithFields(logrus.Fields{"job_id": job.ID, "type": job.Type, "subject": subject}).Info("Created job")
	return job.ID
}

func isActive(status model.JobStatus) bool {
	return status == model.JobStatusPending || status == model.JobStatusRunning
}

func copyJob(job *model.Job) *model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		jobCopy.Progress = &progressCopy
	}
	if job.Metadata != nil {
		jobCopy.Metadata = make(map[string]string, len(job.Metadata))
		for k, v := range job.Metadata {
			jobCopy.Metadata[k] = v
		}
	}
	return &jobCopy
}

// GetJob returns a copy of the job with the given ID
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns copies of all jobs, newest first, optionally filtered by status
func (m *Manager) ListJobs(status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if status == nil || job.Status == *status {
			result = append(result, copyJob(job))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// ExecuteJob runs jobFunc in a goroutine once a worker slot is free
func (m *Manager) ExecuteJob(jobID string, jobFunc JobFunc) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}

	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}
	jobType := job.Type
	m.mu.Unlock()

	select {
	case <-m.stopChan:
		m.updateJobStatus(jobID, model.JobStatusCancelled, "job manager shutting down")
		return fmt.Errorf("job manager is shutting down")
	default:
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		select {
		case m.workers <- struct{}{}:
		case <-m.stopChan:
			m.updateJobStatus(jobID, model.JobStatusCancelled, "job manager shutting down")
			return
		}
		defer func() { <-m.workers }()

		m.markRunning(jobID)
		log := m.logger.WithFields(logrus.Fields{"job_id": jobID, "type": jobType})

		startTime := time.Now()
		snapshot, _ := m.GetJob(jobID)
		err := jobFunc(m.baseCtx, snapshot)
		took := time.Since(startTime)

		switch {
		case err != nil && m.baseCtx.Err() != nil:
			m.updateJobStatus(jobID, model.JobStatusCancelled, err.Error())
			log.WithError(err).Warn("Job cancelled")
		case err != nil:
			m.updateJobStatus(jobID, model.JobStatusFailed, err.Error())
			m.metrics.RecordFailed(jobType)
			log.WithError(err).WithField("took", took).Warn("Job failed")
		default:
			m.updateJobStatus(jobID, model.JobStatusCompleted, "")
			m.metrics.RecordCompleted(jobType, took)
			log.WithField("took", took).Info("Job completed")
		}
	}()

	return nil
}

func (m *Manager) markRunning(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	oldStatus := job.Status
	job.Status = model.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	m.metrics.RecordStatusChange(oldStatus, job.Status)
}

// UpdateJobProgress updates the progress of a running job
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}
	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

// SetJobMetadata attaches a key/value pair to a job, e.g. a result summary
func (m *Manager) SetJobMetadata(jobID, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	if job.Metadata == nil {
		job.Metadata = make(map[string]string)
	}
	job.Metadata[key] = value
}

func (m *Manager) updateJobStatus(jobID string, status model.JobStatus, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	oldStatus := job.Status
	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}
	if !isActive(status) {
		now := time.Now()
		job.CompletedAt = &now
	}
	m.metrics.RecordStatusChange(oldStatus, status)
}

func (m *Manager) cleanupRoutine() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(m.retention)
		case <-m.stopChan:
			return
		}
	}
}

// CleanupOldJobs removes finished jobs older than maxAge
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0
	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		m.logger.WithField("jobs", cleaned).Info("Cleaned up old jobs")
	}
	return cleaned
}

// Metrics returns a snapshot of the job metrics
func (m *Manager) Metrics() MetricsSnapshot {
	return m.metrics.Snapshot()
}

// SuccessRate returns the overall job success rate
func (m *Manager) SuccessRate() float64 {
	return m.metrics.SuccessRate()
}

// Workload returns the number of pending and running jobs
func (m *Manager) Workload() int64 {
	return m.metrics.Workload()
}
