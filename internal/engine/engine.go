// Package engine ties the skill taxonomy, extraction, matching and background
// jobs together. It implements services.Analyzer, services.TaxonomyAdmin and
// services.JobManager.
package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gcbaptista/skillmatch/internal/errors"
	"github.com/gcbaptista/skillmatch/internal/jobs"
	"github.com/gcbaptista/skillmatch/internal/matching"
	"github.com/gcbaptista/skillmatch/internal/taxonomy"
	"github.com/gcbaptista/skillmatch/internal/typoutil"
	"github.com/gcbaptista/skillmatch/model"
	"github.com/gcbaptista/skillmatch/services"
)

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	DefaultTopN  int
	FormatPolicy model.FormatPolicy
	Commentator  services.Commentator
	JobWorkers   int
	JobRetention time.Duration
	Logger       logrus.FieldLogger
}

// Engine serves analyses from the current taxonomy. The taxonomy is swapped
// atomically on refresh, so readers never block.
type Engine struct {
	store      *taxonomy.Store
	current    atomic.Pointer[taxonomy.Taxonomy]
	suggester  *typoutil.Suggester
	jobManager *jobs.Manager
	opts       Options
	logger     logrus.FieldLogger
}

// New creates an engine backed by store. No taxonomy is loaded until Load or
// SetTaxonomy is called.
func New(store *taxonomy.Store, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.DefaultTopN <= 0 {
		opts.DefaultTopN = matching.DefaultTopN
	}
	if opts.FormatPolicy == "" {
		opts.FormatPolicy = model.FormatFirstSeen
	}
	if opts.Commentator == nil {
		opts.Commentator = matching.DeterministicCommentator{}
	}

	e := &Engine{
		store:      store,
		suggester:  typoutil.NewSuggester(nil, opts.Logger),
		jobManager: jobs.NewManager(opts.JobWorkers, opts.JobRetention, opts.Logger),
		opts:       opts,
		logger:     opts.Logger.WithField("component", "engine"),
	}
	e.jobManager.Start()
	return e
}

// Load resolves the taxonomy through the store and makes it current
func (e *Engine) Load(ctx context.Context, force bool) (*taxonomy.Resolution, error) {
	if e.store == nil {
		return nil, errors.NewTaxonomyUnavailableError("no taxonomy store configured", nil)
	}
	res, err := e.store.Resolve(ctx, force)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		e.logger.Warn(w)
	}
	e.SetTaxonomy(res.Taxonomy)
	return res, nil
}

// SetTaxonomy replaces the current taxonomy
func (e *Engine) SetTaxonomy(tax *taxonomy.Taxonomy) {
	if tax == nil {
		return
	}
	e.current.Store(tax)
	e.suggester.SetTerms(tax.Variants())
	e.logger.WithFields(logrus.Fields{
		"entries":       tax.Len(),
		"source_digest": tax.Metadata().SourceDigest,
	}).Info("Skill taxonomy is now current")
}

// Taxonomy returns the current taxonomy or a TaxonomyUnavailable error
func (e *Engine) Taxonomy() (*taxonomy.Taxonomy, error) {
	tax := e.current.Load()
	if tax == nil {
		return nil, errors.NewTaxonomyUnavailableError("no taxonomy has been loaded", nil)
	}
	return tax, nil
}

// Ready reports whether a taxonomy is loaded
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// DefaultTopN returns the top_n used when a request gives none
func (e *Engine) DefaultTopN() int {
	return e.opts.DefaultTopN
}

// Stop cancels running jobs and waits for them
func (e *Engine) Stop() {
	e.jobManager.Stop()
}

// GetJob implements services.JobManager
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobManager.GetJob(jobID)
}

// ListJobs implements services.JobManager
func (e *Engine) ListJobs(status *model.JobStatus) []*model.Job {
	return e.jobManager.ListJobs(status)
}

// JobMetrics implements services.JobManager
func (e *Engine) JobMetrics() jobs.MetricsSnapshot {
	return e.jobManager.Metrics()
}
