package jobs

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/gcbaptista/skillmatch/internal/errors"
	"github.com/gcbaptista/skillmatch/model"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func waitForStatus(t *testing.T, m *Manager, jobID string, want model.JobStatus) *model.Job {
	t.Helper()
	var job *model.Job
	require.Eventually(t, func() bool {
		var err error
		job, err = m.GetJob(jobID)
		return err == nil && job.Status == want
	}, 2*time.Second, 5*time.Millisecond, "job %s never reached %s", jobID, want)
	return job
}

func TestJobManager_CreateJob(t *testing.T) {
	manager := NewManager(2, time.Hour, quietLogger())
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeTaxonomyRefresh, "taxonomy", map[string]string{
		"trigger": "test",
	})
	require.NotEmpty(t, jobID)

	job, err := manager.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobTypeTaxonomyRefresh, job.Type)
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.Equal(t, "taxonomy", job.Subject)
	assert.Equal(t, "test", job.Metadata["trigger"])
}

func TestJobManager_ExecuteJob(t *testing.T) {
	manager := NewManager(2, time.Hour, quietLogger())
	manager.Start()
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeTaxonomyRefresh, "taxonomy", nil)

	err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		manager.UpdateJobProgress(jobID, 1, 2, "Fetching sources")
		manager.UpdateJobProgress(jobID, 2, 2, "Completed")
		manager.SetJobMetadata(jobID, "entries", "42")
		return nil
	})
	require.NoError(t, err)

	job := waitForStatus(t, manager, jobID, model.JobStatusCompleted)
	require.NotNil(t, job.Progress)
	assert.Equal(t, 2, job.Progress.Current)
	assert.Equal(t, 100.0, job.Progress.GetProgressPercentage())
	assert.Equal(t, "42", job.Metadata["entries"])
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.CompletedAt)

	metrics := manager.Metrics()
	assert.Equal(t, int64(1), metrics.JobsCreated)
	assert.Equal(t, int64(1), metrics.JobsCompleted)
	assert.Equal(t, int64(0), metrics.CurrentWorkload)
}

func TestJobManager_FailedJob(t *testing.T) {
	manager := NewManager(1, time.Hour, quietLogger())
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeTaxonomyRefresh, "taxonomy", nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		return errors.New("source unreachable")
	}))

	job := waitForStatus(t, manager, jobID, model.JobStatusFailed)
	assert.Equal(t, "source unreachable", job.Error)
	assert.Equal(t, 0.0, manager.SuccessRate())
}

func TestJobManager_ExecuteTwice(t *testing.T) {
	manager := NewManager(1, time.Hour, quietLogger())
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeTaxonomyRefresh, "taxonomy", nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error { return nil }))
	waitForStatus(t, manager, jobID, model.JobStatusCompleted)

	err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error { return nil })
	assert.Error(t, err)
}

func TestJobManager_CreateExclusiveJob(t *testing.T) {
	manager := NewManager(1, time.Hour, quietLogger())
	defer manager.Stop()

	release := make(chan struct{})
	firstID, created := manager.CreateExclusiveJob(model.JobTypeTaxonomyRefresh, "taxonomy", nil)
	require.True(t, created)
	require.NoError(t, manager.ExecuteJob(firstID, func(ctx context.Context, job *model.Job) error {
		<-release
		return nil
	}))

	secondID, created := manager.CreateExclusiveJob(model.JobTypeTaxonomyRefresh, "taxonomy", nil)
	assert.False(t, created)
	assert.Equal(t, firstID, secondID)

	close(release)
	waitForStatus(t, manager, firstID, model.JobStatusCompleted)

	thirdID, created := manager.CreateExclusiveJob(model.JobTypeTaxonomyRefresh, "taxonomy", nil)
	assert.True(t, created)
	assert.NotEqual(t, firstID, thirdID)
}

func TestJobManager_GetJobNotFound(t *testing.T) {
	manager := NewManager(1, time.Hour, quietLogger())
	defer manager.Stop()

	_, err := manager.GetJob("missing")
	assert.True(t, errors.Is(err, internalErrors.ErrJobNotFound))
}

func TestJobManager_ListJobs(t *testing.T) {
	manager := NewManager(1, time.Hour, quietLogger())
	defer manager.Stop()

	manager.CreateJob(model.JobTypeTaxonomyRefresh, "taxonomy", nil)
	manager.CreateJob(model.JobTypeTaxonomyRefresh, "taxonomy", nil)

	assert.Len(t, manager.ListJobs(nil), 2)

	pending := model.JobStatusPending
	assert.Len(t, manager.ListJobs(&pending), 2)

	completed := model.JobStatusCompleted
	assert.Empty(t, manager.ListJobs(&completed))
}

func TestJobManager_StopCancelsRunningJobs(t *testing.T) {
	manager := NewManager(1, time.Hour, quietLogger())

	started := make(chan struct{})
	jobID := manager.CreateJob(model.JobTypeTaxonomyRefresh, "taxonomy", nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))

	<-started
	manager.Stop()

	job, err := manager.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCancelled, job.Status)
}

func TestJobManager_CleanupOldJobs(t *testing.T) {
	manager := NewManager(1, time.Hour, quietLogger())
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeTaxonomyRefresh, "taxonomy", nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error { return nil }))
	waitForStatus(t, manager, jobID, model.JobStatusCompleted)

	assert.Equal(t, 0, manager.CleanupOldJobs(time.Hour))
	assert.Equal(t, 1, manager.CleanupOldJobs(-time.Second))

	_, err := manager.GetJob(jobID)
	assert.Error(t, err)
}
