package services

import (
	"context"

	"github.com/gcbaptista/skillmatch/internal/jobs"
	"github.com/gcbaptista/skillmatch/model"
)

// SkillSource supplies canonical skill names from outside the process,
// e.g. a remote language list. Tests inject a static in-memory source.
type SkillSource interface {
	FetchSkills(ctx context.Context) ([]string, error)
}

// NamedSource is implemented by sources that can name themselves in logs and build reports
type NamedSource interface {
	SourceName() string
}

// Extractor finds the skills mentioned in one document.
// It fails with a TaxonomyUnavailable error until a taxonomy is loaded.
type Extractor interface {
	Extract(text string) (model.ExtractionResult, error)
}

// Analyzer extracts and compares the skills of a job description and a resume
type Analyzer interface {
	Extractor
	Match(job, resume model.ExtractionResult, topN int) model.MatchResult
	Analyze(jobText, resumeText string, topN int) (*model.Analysis, error)
}

// Commentator attaches free-text commentary to a match result.
// Implementations must never change the score.
type Commentator interface {
	Comment(result model.MatchResult) model.Commentary
}

// TaxonomyAdmin exposes taxonomy inspection and refresh
type TaxonomyAdmin interface {
	TaxonomyStats() model.TaxonomyStats
	LookupSkill(term string) model.SkillLookup
	RefreshTaxonomy(ctx context.Context) (model.TaxonomyStats, error)
	RefreshTaxonomyAsync() (jobID string, created bool, err error)
}

// JobManager defines operations for inspecting background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(status *model.JobStatus) []*model.Job
	JobMetrics() jobs.MetricsSnapshot
}

// AnalyticsRecorder records completed analyses and aggregates them
type AnalyticsRecorder interface {
	TrackAnalysis(event model.AnalysisEvent)
	GetDashboardData() model.AnalyticsDashboard
}
