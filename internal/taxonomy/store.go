package taxonomy

import (
	"context"
	stderrors "errors"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/gcbaptista/skillmatch/internal/errors"
	"github.com/gcbaptista/skillmatch/internal/persistence"
	"github.com/gcbaptista/skillmatch/services"
)

// Store owns the taxonomy cache artifact and the sources it is rebuilt from.
// Concurrent rebuilds share a single build, and cache writes are atomic.
type Store struct {
	path    string
	curated *CuratedData
	sources []services.SkillSource
	logger  logrus.FieldLogger

	group   singleflight.Group
	writeMu sync.Mutex
}

// Resolution is the outcome of LoadOrBuild with the details callers may report
type Resolution struct {
	Taxonomy  *Taxonomy
	Report    *BuildReport // nil when no build ran
	FromCache bool
	Stale     bool     // the served cache predates the running configuration
	Warnings  []string // degraded paths taken
}

// NewStore creates a store for the cache at path
func NewStore(path string, curated *CuratedData, sources []services.SkillSource, logger logrus.FieldLogger) *Store {
	if curated == nil {
		curated = &CuratedData{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{
		path:    path,
		curated: curated,
		sources: sources,
		logger:  logger.WithField("component", "taxonomy"),
	}
}

// Path returns the cache artifact path
func (s *Store) Path() string {
	return s.path
}

// Load reads the cache artifact. A missing file yields os.ErrNotExist;
// an unreadable or invalid artifact yields a CacheCorruptError.
func (s *Store) Load() (*Taxonomy, error) {
	tax := &Taxonomy{}
	if err := persistence.LoadGob(s.path, tax); err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}
		return nil, errors.NewCacheCorruptError(s.path, err.Error())
	}
	return tax, nil
}

// Save writes the taxonomy to the cache artifact
func (s *Store) Save(tax *Taxonomy) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return persistence.SaveGob(s.path, tax)
}

// IsStale reports whether a cached taxonomy was built under another format or configuration
func (s *Store) IsStale(tax *Taxonomy) bool {
	return tax.meta.FormatVersion != FormatVersion || tax.meta.ConfigDigest != s.curated.Digest()
}

// LoadOrBuild returns the cached taxonomy unless it is missing, stale or force is set,
// in which case it rebuilds and overwrites the cache. A present cache is the
// fallback whenever a rebuild fails or comes out partial.
func (s *Store) LoadOrBuild(ctx context.Context, force bool) (*Taxonomy, error) {
	res, err := s.Resolve(ctx, force)
	if err != nil {
		return nil, err
	}
	return res.Taxonomy, nil
}

// Resolve is LoadOrBuild with the build report and warnings attached
func (s *Store) Resolve(ctx context.Context, force bool) (*Resolution, error) {
	cached, err := s.Load()
	switch {
	case err == nil:
	case stderrors.Is(err, os.ErrNotExist):
		cached = nil
	default:
		s.logger.WithError(err).WithField("path", s.path).Warn("Ignoring unreadable taxonomy cache")
		cached = nil
	}

	stale := cached != nil && s.IsStale(cached)
	if cached != nil && !force && !stale {
		s.logger.WithFields(logrus.Fields{"path": s.path, "entries": cached.Len()}).Info("Loaded skill taxonomy from cache")
		return &Resolution{Taxonomy: cached, FromCache: true}, nil
	}

	v, err, _ := s.group.Do("rebuild", func() (interface{}, error) {
		return s.rebuild(ctx, cached, stale)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Resolution), nil
}

func (s *Store) rebuild(ctx context.Context, cached *Taxonomy, stale bool) (*Resolution, error) {
	tax, report, err := Build(ctx, s.curated, s.sources, s.logger)
	if err != nil {
		if stderrors.Is(err, errors.ErrVariantConflict) {
			return nil, err
		}
		if cached != nil {
			msg := "taxonomy rebuild failed, serving cached taxonomy: " + err.Error()
			s.logger.WithError(err).WithField("path", s.path).Warn("Taxonomy rebuild failed, serving cached taxonomy")
			return &Resolution{Taxonomy: cached, Report: report, FromCache: true, Stale: stale, Warnings: []string{msg}}, nil
		}
		if stderrors.Is(err, errors.ErrTaxonomyUnavailable) {
			return nil, err
		}
		return nil, errors.NewTaxonomyUnavailableError("rebuild failed and no cache exists", err)
	}

	if report.Partial && cached != nil {
		msg := "taxonomy rebuild was partial, serving cached taxonomy"
		s.logger.WithFields(logrus.Fields{"failed_sources": report.FailedSources, "path": s.path}).Warn("Taxonomy rebuild was partial, serving cached taxonomy")
		return &Resolution{Taxonomy: cached, Report: report, FromCache: true, Stale: stale, Warnings: []string{msg}}, nil
	}

	res := &Resolution{Taxonomy: tax, Report: report}
	if report.Partial {
		res.Warnings = append(res.Warnings, "taxonomy built without failed sources and no cache to fall back on")
		s.logger.WithField("failed_sources", report.FailedSources).Warn("No taxonomy cache present, using partial build")
	}
	if err := s.Save(tax); err != nil {
		res.Warnings = append(res.Warnings, "failed to write taxonomy cache: "+err.Error())
		s.logger.WithError(err).WithField("path", s.path).Warn("Failed to write taxonomy cache")
		return res, nil
	}
	s.logger.WithFields(logrus.Fields{"path": s.path, "entries": tax.Len()}).Info("Saved skill taxonomy cache")
	return res, nil
}
