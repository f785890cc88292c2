package jobs

import (
	"sync"
	"time"

	"github.com/gcbaptista/skillmatch/model"
)

// maxSamplesPerType bounds the execution-time history kept for each job type
const maxSamplesPerType = 100

// MetricsSnapshot is a point-in-time copy of the job metrics
type MetricsSnapshot struct {
	JobsCreated          int64                           `json:"jobs_created"`
	JobsCompleted        int64                           `json:"jobs_completed"`
	JobsFailed           int64                           `json:"jobs_failed"`
	JobsCancelled        int64                           `json:"jobs_cancelled"`
	SuccessRate          float64                         `json:"success_rate"`
	CurrentWorkload      int64                           `json:"current_workload"`
	TotalExecutionTime   time.Duration                   `json:"total_execution_time_ns"`
	AverageExecutionTime time.Duration                   `json:"average_execution_time_ns"`
	AverageByType        map[model.JobType]time.Duration `json:"average_by_type_ns"`
	JobsByType           map[model.JobType]int64         `json:"jobs_by_type"`
	JobsByStatus         map[model.JobStatus]int64       `json:"jobs_by_status"`
	LastUpdated          time.Time                       `json:"last_updated"`
}

// Metrics collects counters and execution times for background jobs
type Metrics struct {
	mu             sync.RWMutex
	created        int64
	completed      int64
	failed         int64
	cancelled      int64
	totalExecution time.Duration
	byType         map[model.JobType]int64
	byStatus       map[model.JobStatus]int64
	samples        map[model.JobType][]time.Duration
	lastUpdated    time.Time
}

// NewMetrics creates an empty metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		byType:      make(map[model.JobType]int64),
		byStatus:    make(map[model.JobStatus]int64),
		samples:     make(map[model.JobType][]time.Duration),
		lastUpdated: time.Now(),
	}
}

// RecordCreated counts a new pending job
func (m *Metrics) RecordCreated(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.created++
	m.byType[jobType]++
	m.byStatus[model.JobStatusPending]++
	m.lastUpdated = time.Now()
}

// RecordStatusChange moves one job between status buckets
func (m *Metrics) RecordStatusChange(oldStatus, newStatus model.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oldStatus != "" && m.byStatus[oldStatus] > 0 {
		m.byStatus[oldStatus]--
	}
	m.byStatus[newStatus]++
	if newStatus == model.JobStatusCancelled {
		m.cancelled++
	}
	m.lastUpdated = time.Now()
}

// RecordCompleted records a successful run and its duration
func (m *Metrics) RecordCompleted(jobType model.JobType, took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.completed++
	m.totalExecution += took

	samples := append(m.samples[jobType], took)
	if len(samples) > maxSamplesPerType {
		samples = samples[len(samples)-maxSamplesPerType:]
	}
	m.samples[jobType] = samples
	m.lastUpdated = time.Now()
}

// RecordFailed records a failed run
func (m *Metrics) RecordFailed(jobType model.JobType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failed++
	m.lastUpdated = time.Now()
}

// Snapshot returns a copy of the current metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byType := make(map[model.JobType]int64, len(m.byType))
	for k, v := range m.byType {
		byType[k] = v
	}
	byStatus := make(map[model.JobStatus]int64, len(m.byStatus))
	for k, v := range m.byStatus {
		byStatus[k] = v
	}
	avgByType := make(map[model.JobType]time.Duration, len(m.samples))
	for k := range m.samples {
		avgByType[k] = m.averageLocked(k)
	}

	var avg time.Duration
	if m.completed > 0 {
		avg = m.totalExecution / time.Duration(m.completed)
	}

	return MetricsSnapshot{
		JobsCreated:          m.created,
		JobsCompleted:        m.completed,
		JobsFailed:           m.failed,
		JobsCancelled:        m.cancelled,
		SuccessRate:          m.successRateLocked(),
		CurrentWorkload:      m.byStatus[model.JobStatusPending] + m.byStatus[model.JobStatusRunning],
		TotalExecutionTime:   m.totalExecution,
		AverageExecutionTime: avg,
		AverageByType:        avgByType,
		JobsByType:           byType,
		JobsByStatus:         byStatus,
		LastUpdated:          m.lastUpdated,
	}
}

// AverageExecutionTime returns the mean of the recent runs of one job type
func (m *Metrics) AverageExecutionTime(jobType model.JobType) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.averageLocked(jobType)
}

func (m *Metrics) averageLocked(jobType model.JobType) time.Duration {
	samples := m.samples[jobType]
	if len(samples) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range samples {
		total += d
	}
	return total / time.Duration(len(samples))
}

// SuccessRate returns completed / (completed + failed), 1.0 when nothing has finished yet
func (m *Metrics) SuccessRate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.successRateLocked()
}

func (m *Metrics) successRateLocked() float64 {
	finished := m.completed + m.failed
	if finished == 0 {
		return 1.0
	}
	return float64(m.completed) / float64(finished)
}

// Workload returns the number of pending and running jobs
func (m *Metrics) Workload() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byStatus[model.JobStatusPending] + m.byStatus[model.JobStatusRunning]
}
