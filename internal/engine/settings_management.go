package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gcbaptista/skillmatch/config"
	"github.com/gcbaptista/skillmatch/internal/matching"
	"github.com/gcbaptista/skillmatch/internal/taxonomy"
	"github.com/gcbaptista/skillmatch/model"
	"github.com/gcbaptista/skillmatch/services"
)

// NewFromSettings wires an engine from validated settings. The taxonomy is not
// loaded; call Load before serving requests.
func NewFromSettings(settings config.Settings, logger logrus.FieldLogger) (*Engine, error) {
	store, err := NewStore(settings.Taxonomy, logger)
	if err != nil {
		return nil, err
	}
	return New(store, Options{
		DefaultTopN:  settings.Matching.DefaultTopN,
		FormatPolicy: model.FormatPolicy(settings.Matching.FormatPolicy),
		Commentator:  NewCommentator(settings.Commentary),
		JobWorkers:   settings.Jobs.Workers,
		JobRetention: settings.Jobs.Retention,
		Logger:       logger,
	}), nil
}

// NewStore creates the taxonomy store described by the taxonomy settings
func NewStore(settings config.TaxonomySettings, logger logrus.FieldLogger) (*taxonomy.Store, error) {
	curated, err := LoadCurated(settings.CuratedFile)
	if err != nil {
		return nil, err
	}
	sources, err := BuildSources(settings)
	if err != nil {
		return nil, err
	}
	return taxonomy.NewStore(settings.CachePath, curated, sources, logger), nil
}

// LoadCurated returns the curated data at path, or the built-in data when path is empty
func LoadCurated(path string) (*taxonomy.CuratedData, error) {
	if path == "" {
		return taxonomy.DefaultCurated()
	}
	curated, err := taxonomy.LoadCuratedFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load curated skills from %s: %w", path, err)
	}
	return curated, nil
}

// BuildSources creates the remote skill sources named in the settings, in order
func BuildSources(settings config.TaxonomySettings) ([]services.SkillSource, error) {
	sources := make([]services.SkillSource, 0, len(settings.Sources))
	for _, name := range settings.Sources {
		switch name {
		case config.SourceLinguist:
			sources = append(sources, taxonomy.NewLinguistSource(settings.LinguistURL, settings.FetchTimeout, settings.LinguistTypes))
		case config.SourceFile:
			if settings.SourceFile == "" {
				return nil, fmt.Errorf("source 'file' requires a source file path")
			}
			sources = append(sources, &taxonomy.FileSource{Path: settings.SourceFile})
		default:
			return nil, fmt.Errorf("unknown skill source '%s'", name)
		}
	}
	return sources, nil
}

// NewCommentator returns the commentator for a commentary mode
func NewCommentator(mode string) services.Commentator {
	if mode == config.CommentaryOff {
		return matching.OffCommentator{}
	}
	return matching.DeterministicCommentator{}
}
