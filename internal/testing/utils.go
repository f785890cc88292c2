// Package testing provides shared fixtures for skillmatch tests.
package testing

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/skillmatch/internal/taxonomy"
	"github.com/gcbaptista/skillmatch/model"
	"github.com/gcbaptista/skillmatch/services"
)

// QuietLogger returns a logger that discards everything
func QuietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// DefaultCurated returns the built-in curated data or fails the test
func DefaultCurated(t *testing.T) *taxonomy.CuratedData {
	t.Helper()
	curated, err := taxonomy.DefaultCurated()
	require.NoError(t, err, "Failed to parse built-in curated data")
	return curated
}

// DefaultTaxonomy compiles the built-in curated data plus optional fetched names
func DefaultTaxonomy(t *testing.T, fetched ...string) *taxonomy.Taxonomy {
	t.Helper()
	return CompileTaxonomy(t, DefaultCurated(t), fetched...)
}

// CompileTaxonomy compiles curated data plus one static list of fetched names
func CompileTaxonomy(t *testing.T, curated *taxonomy.CuratedData, fetched ...string) *taxonomy.Taxonomy {
	t.Helper()
	var lists []taxonomy.FetchedList
	if len(fetched) > 0 {
		lists = append(lists, taxonomy.FetchedList{Source: "static", Names: fetched})
	}
	tax, _, err := taxonomy.Compile(curated, lists)
	require.NoError(t, err, "Failed to compile test taxonomy")
	return tax
}

// SkillsOnly builds curated data holding just the given names
func SkillsOnly(names ...string) *taxonomy.CuratedData {
	return &taxonomy.CuratedData{
		Skills:            names,
		Variants:          map[string][]string{},
		SingleLetterAllow: []string{"r"},
	}
}

// NewTestStore creates a store whose cache lives in a per-test temp dir
func NewTestStore(t *testing.T, curated *taxonomy.CuratedData, sources ...services.SkillSource) *taxonomy.Store {
	t.Helper()
	return taxonomy.NewStore(TempCachePath(t), curated, sources, QuietLogger())
}

// TempCachePath returns a cache path inside a directory removed after the test
func TempCachePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "skills.gob")
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      5 * time.Second,
		PollInterval: 10 * time.Millisecond,
		LogProgress:  false,
	}
}

// WaitForJobCompletion polls a job until it finishes or times out.
// A failed or cancelled job fails the test.
func WaitForJobCompletion(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not complete within %v timeout", jobID, opts.Timeout)
			return nil
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			switch job.Status {
			case model.JobStatusCompleted:
				if opts.LogProgress {
					t.Logf("Job %s completed in %v", jobID, job.CompletedAt.Sub(job.CreatedAt))
				}
				return job
			case model.JobStatusFailed, model.JobStatusCancelled:
				t.Fatalf("Job %s ended with status %s: %s", jobID, job.Status, job.Error)
				return nil
			case model.JobStatusRunning:
				if opts.LogProgress && job.Progress != nil {
					t.Logf("Job %s progress: %d/%d - %s", jobID, job.Progress.Current, job.Progress.Total, job.Progress.Message)
				}
			}
		}
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}
