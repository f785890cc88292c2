package engine

import (
	"github.com/gcbaptista/skillmatch/internal/extraction"
	"github.com/gcbaptista/skillmatch/internal/matching"
	"github.com/gcbaptista/skillmatch/model"
)

// Extract returns the distinct skills mentioned in text
func (e *Engine) Extract(text string) (model.ExtractionResult, error) {
	tax, err := e.Taxonomy()
	if err != nil {
		return model.ExtractionResult{Skills: []model.ExtractedSkill{}}, err
	}
	return extraction.Extract(text, tax, e.opts.FormatPolicy), nil
}

// Match compares two extraction results. A non-positive topN uses the configured default.
func (e *Engine) Match(job, resume model.ExtractionResult, topN int) model.MatchResult {
	if topN <= 0 {
		topN = e.opts.DefaultTopN
	}
	return matching.Match(job, resume, topN)
}

// Analyze extracts both documents against one taxonomy snapshot, matches them
// and attaches commentary. The commentator never alters the score.
func (e *Engine) Analyze(jobText, resumeText string, topN int) (*model.Analysis, error) {
	tax, err := e.Taxonomy()
	if err != nil {
		return nil, err
	}

	job := extraction.Extract(jobText, tax, e.opts.FormatPolicy)
	resume := extraction.Extract(resumeText, tax, e.opts.FormatPolicy)
	result := e.Match(job, resume, topN)

	return &model.Analysis{
		MatchResult:  result,
		Commentary:   e.opts.Commentator.Comment(result),
		JobSkills:    job.Surfaces(),
		ResumeSkills: resume.Surfaces(),
	}, nil
}
