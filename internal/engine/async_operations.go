package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gcbaptista/skillmatch/internal/tokenizer"
	"github.com/gcbaptista/skillmatch/model"
)

const (
	maxSuggestions  = 5
	refreshJobSteps = 2
)

// TaxonomyStats returns statistics of the current taxonomy, or zero stats when none is loaded
func (e *Engine) TaxonomyStats() model.TaxonomyStats {
	tax, err := e.Taxonomy()
	if err != nil {
		return model.TaxonomyStats{BySource: map[string]int{}, Sources: []string{}}
	}
	return tax.Stats()
}

// LookupSkill resolves a term to its taxonomy entry. Unknown terms get
// "did you mean" suggestions naming canonical skills.
func (e *Engine) LookupSkill(term string) model.SkillLookup {
	lookup := model.SkillLookup{Term: term, Suggestions: []string{}}
	tax, err := e.Taxonomy()
	if err != nil {
		return lookup
	}

	if entry, ok := tax.Lookup(term); ok {
		lookup.Found = true
		lookup.Entry = &entry
		return lookup
	}

	key := tokenizer.NormalizeSpace(term)
	seen := make(map[string]struct{})
	for _, variant := range e.suggester.Suggest(key, suggestionDistance(key), maxSuggestions*2) {
		canonical, ok := tax.LookupKey(variant)
		if !ok {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		lookup.Suggestions = append(lookup.Suggestions, canonical)
		if len(lookup.Suggestions) == maxSuggestions {
			break
		}
	}
	return lookup
}

// suggestionDistance allows one edit for short terms and two for longer ones
func suggestionDistance(key string) int {
	if len([]rune(key)) <= 4 {
		return 1
	}
	return 2
}

// RefreshTaxonomy rebuilds the taxonomy from its sources and makes the result current.
// When the rebuild fails or is partial and a cache exists, the cache stays current.
func (e *Engine) RefreshTaxonomy(ctx context.Context) (model.TaxonomyStats, error) {
	res, err := e.Load(ctx, true)
	if err != nil {
		return model.TaxonomyStats{}, err
	}
	return res.Taxonomy.Stats(), nil
}

// RefreshTaxonomyAsync starts a background refresh. While a refresh job is
// pending or running, its ID is returned instead and created is false.
func (e *Engine) RefreshTaxonomyAsync() (string, bool, error) {
	jobID, created := e.jobManager.CreateExclusiveJob(model.JobTypeTaxonomyRefresh, "taxonomy", map[string]string{
		"operation": "taxonomy_refresh",
	})
	if !created {
		return jobID, false, nil
	}

	err := e.jobManager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		return e.executeRefreshJob(ctx, job.ID)
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to start taxonomy refresh job: %w", err)
	}
	return jobID, true, nil
}

func (e *Engine) executeRefreshJob(ctx context.Context, jobID string) error {
	e.jobManager.UpdateJobProgress(jobID, 0, refreshJobSteps, "fetching skill sources")

	res, err := e.Load(ctx, true)
	if err != nil {
		return err
	}

	stats := res.Taxonomy.Stats()
	e.jobManager.SetJobMetadata(jobID, "entries", strconv.Itoa(stats.Entries))
	e.jobManager.SetJobMetadata(jobID, "variants", strconv.Itoa(stats.Variants))
	e.jobManager.SetJobMetadata(jobID, "from_cache", strconv.FormatBool(res.FromCache))
	if len(res.Warnings) > 0 {
		e.jobManager.SetJobMetadata(jobID, "warnings", strings.Join(res.Warnings, "; "))
	}
	e.jobManager.UpdateJobProgress(jobID, refreshJobSteps, refreshJobSteps, "taxonomy refreshed")

	e.logger.WithFields(logrus.Fields{
		"job_id":     jobID,
		"entries":    stats.Entries,
		"from_cache": res.FromCache,
	}).Info("Taxonomy refresh finished")
	return nil
}
