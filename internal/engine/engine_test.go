package engine

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/skillmatch/config"
	"github.com/gcbaptista/skillmatch/internal/errors"
	"github.com/gcbaptista/skillmatch/internal/matching"
	"github.com/gcbaptista/skillmatch/internal/taxonomy"
	testutil "github.com/gcbaptista/skillmatch/internal/testing"
	"github.com/gcbaptista/skillmatch/model"
	"github.com/gcbaptista/skillmatch/services"
)

// Compile-time interface checks
var (
	_ services.Analyzer      = (*Engine)(nil)
	_ services.TaxonomyAdmin = (*Engine)(nil)
	_ services.JobManager    = (*Engine)(nil)
)

func newTestEngine(t *testing.T, sources ...services.SkillSource) *Engine {
	t.Helper()
	store := testutil.NewTestStore(t, testutil.DefaultCurated(t), sources...)
	e := New(store, Options{Logger: testutil.QuietLogger()})
	t.Cleanup(e.Stop)
	return e
}

func loadedEngine(t *testing.T, sources ...services.SkillSource) *Engine {
	t.Helper()
	e := newTestEngine(t, sources...)
	_, err := e.Load(context.Background(), false)
	require.NoError(t, err)
	return e
}

func TestEngineNotReadyBeforeLoad(t *testing.T) {
	e := newTestEngine(t)
	assert.False(t, e.Ready())

	_, err := e.Extract("Python")
	assert.True(t, stderrors.Is(err, errors.ErrTaxonomyUnavailable))

	_, err = e.Analyze("Python", "Python", 10)
	assert.True(t, stderrors.Is(err, errors.ErrTaxonomyUnavailable))

	assert.Equal(t, 0, e.TaxonomyStats().Entries)
	assert.False(t, e.LookupSkill("Python").Found)
}

func TestEngineAnalyze(t *testing.T) {
	e := loadedEngine(t)
	require.True(t, e.Ready())

	analysis, err := e.Analyze("Python, Docker, AWS, PostgreSQL", "Python, Docker, JavaScript, Git", 0)
	require.NoError(t, err)

	assert.Equal(t, 50.0, analysis.MatchScore)
	assert.Equal(t, "2/4", analysis.MatchRatio)
	assert.Equal(t, []string{"Python", "Docker"}, analysis.MatchedKeywords)
	assert.Equal(t, []string{"AWS", "PostgreSQL"}, analysis.MissingKeywords)
	assert.Equal(t, []string{"Python", "Docker", "AWS", "PostgreSQL"}, analysis.JobSkills)
	assert.Contains(t, analysis.ResumeSkills, "JavaScript")
	assert.NotEmpty(t, analysis.Summary)
	assert.NotEmpty(t, analysis.ConfidenceNotes)
}

func TestEngineAnalyzeWithoutJobSkills(t *testing.T) {
	e := loadedEngine(t)

	analysis, err := e.Analyze("We value hard work", "Python, Go", 10)
	require.NoError(t, err)
	assert.Equal(t, 0.0, analysis.MatchScore)
	assert.Equal(t, "0/0", analysis.MatchRatio)
	assert.Equal(t, matching.NoJobSkillsExplanation, analysis.Explanation)
}

func TestEngineCommentatorDoesNotChangeScore(t *testing.T) {
	store := testutil.NewTestStore(t, testutil.DefaultCurated(t))
	e := New(store, Options{Logger: testutil.QuietLogger(), Commentator: matching.OffCommentator{}})
	t.Cleanup(e.Stop)
	_, err := e.Load(context.Background(), false)
	require.NoError(t, err)

	analysis, err := e.Analyze("Python, Docker", "Python", 10)
	require.NoError(t, err)
	assert.Equal(t, 50.0, analysis.MatchScore)
	assert.Empty(t, analysis.Summary)
}

func TestEngineMatchDefaultTopN(t *testing.T) {
	store := testutil.NewTestStore(t, testutil.DefaultCurated(t))
	e := New(store, Options{Logger: testutil.QuietLogger(), DefaultTopN: 2})
	t.Cleanup(e.Stop)
	_, err := e.Load(context.Background(), false)
	require.NoError(t, err)

	analysis, err := e.Analyze("Python, Docker, AWS", "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "Docker"}, analysis.TopKeywords)
	assert.Equal(t, 2, e.DefaultTopN())
}

func TestEngineFormatPolicy(t *testing.T) {
	store := testutil.NewTestStore(t, testutil.DefaultCurated(t))
	e := New(store, Options{Logger: testutil.QuietLogger(), FormatPolicy: model.FormatBest})
	t.Cleanup(e.Stop)
	_, err := e.Load(context.Background(), false)
	require.NoError(t, err)

	result, err := e.Extract("nodejs then Node.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"Node.js"}, result.Surfaces())
}

func TestEngineLookupSkill(t *testing.T) {
	e := loadedEngine(t)

	lookup := e.LookupSkill("  golang ")
	require.True(t, lookup.Found)
	assert.Equal(t, "Go", lookup.Entry.Canonical)
	assert.Empty(t, lookup.Suggestions)

	lookup = e.LookupSkill("kubernets")
	assert.False(t, lookup.Found)
	assert.Nil(t, lookup.Entry)
	assert.Contains(t, lookup.Suggestions, "Kubernetes")

	lookup = e.LookupSkill("Pyhton")
	require.NotEmpty(t, lookup.Suggestions)
	assert.Equal(t, "Python", lookup.Suggestions[0])

	lookup = e.LookupSkill("zzzzzzzzzz")
	assert.NotNil(t, lookup.Suggestions)
	assert.Empty(t, lookup.Suggestions)
}

func TestEngineRefreshTaxonomy(t *testing.T) {
	src := taxonomy.StaticSource{Name: "static", Names: []string{"Zig"}}
	e := loadedEngine(t)
	before := e.TaxonomyStats().Entries

	// Same cache path, new source list
	store := taxonomy.NewStore(e.store.Path(), testutil.DefaultCurated(t), []services.SkillSource{src}, testutil.QuietLogger())
	e.store = store

	stats, err := e.RefreshTaxonomy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before+1, stats.Entries)

	result, err := e.Extract("Zig and Rust")
	require.NoError(t, err)
	assert.Contains(t, result.Canonicals(), "Zig")
}

func TestEngineRefreshKeepsCacheWhenSourceFails(t *testing.T) {
	e := loadedEngine(t, taxonomy.StaticSource{Name: "static", Names: []string{"Zig"}})
	before := e.TaxonomyStats()

	e.store = taxonomy.NewStore(e.store.Path(), testutil.DefaultCurated(t),
		[]services.SkillSource{taxonomy.StaticSource{Name: "static", Err: stderrors.New("offline")}},
		testutil.QuietLogger())

	stats, err := e.RefreshTaxonomy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before.Entries, stats.Entries)
	assert.Equal(t, before.SourceDigest, stats.SourceDigest)
}

func TestEngineConcurrentReadsDuringRefresh(t *testing.T) {
	e := loadedEngine(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				analysis, err := e.Analyze("Python and Docker", "Python", 10)
				if assert.NoError(t, err) {
					assert.Equal(t, 50.0, analysis.MatchScore)
				}
			}
		}()
	}
	for i := 0; i < 3; i++ {
		_, err := e.RefreshTaxonomy(context.Background())
		require.NoError(t, err)
	}
	wg.Wait()
}

func TestNewFromSettings(t *testing.T) {
	dir := t.TempDir()
	skillFile := filepath.Join(dir, "skills.txt")
	require.NoError(t, os.WriteFile(skillFile, []byte("# extra skills\nZig\n\nElixir\n"), 0600))

	settings := config.Default()
	settings.Taxonomy.CachePath = filepath.Join(dir, "cache", "skills.gob")
	settings.Taxonomy.Sources = []string{config.SourceFile}
	settings.Taxonomy.SourceFile = skillFile
	settings.Commentary = config.CommentaryOff
	settings.ApplyDefaults()
	require.Empty(t, settings.ValidateSettings())

	e, err := NewFromSettings(settings, testutil.QuietLogger())
	require.NoError(t, err)
	t.Cleanup(e.Stop)

	_, err = e.Load(context.Background(), false)
	require.NoError(t, err)
	assert.FileExists(t, settings.Taxonomy.CachePath)

	analysis, err := e.Analyze("Zig and Elixir", "Zig", 10)
	require.NoError(t, err)
	assert.Equal(t, 50.0, analysis.MatchScore)
	assert.Empty(t, analysis.Summary)
}

func TestBuildSources(t *testing.T) {
	settings := config.Default().Taxonomy
	settings.Sources = []string{config.SourceLinguist, config.SourceFile}
	settings.SourceFile = "/tmp/skills.txt"

	sources, err := BuildSources(settings)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.IsType(t, &taxonomy.LinguistSource{}, sources[0])
	assert.IsType(t, &taxonomy.FileSource{}, sources[1])

	settings.Sources = []string{"ftp"}
	_, err = BuildSources(settings)
	assert.Error(t, err)

	settings.Sources = []string{config.SourceFile}
	settings.SourceFile = ""
	_, err = BuildSources(settings)
	assert.Error(t, err)
}

func TestLoadCuratedMissingFile(t *testing.T) {
	_, err := LoadCurated(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	curated, err := LoadCurated("")
	require.NoError(t, err)
	assert.NotEmpty(t, curated.Skills)
}
