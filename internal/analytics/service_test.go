package analytics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "github.com/gcbaptista/skillmatch/internal/testing"
	"github.com/gcbaptista/skillmatch/model"
)

type fixedSizer int

func (f fixedSizer) TaxonomyStats() model.TaxonomyStats {
	return model.TaxonomyStats{Entries: int(f)}
}

func newTestService(t *testing.T, path string) *Service {
	t.Helper()
	service := NewService(fixedSizer(120), path, testutil.QuietLogger())
	t.Cleanup(service.Flush)
	return service
}

func TestTrackAnalysis(t *testing.T) {
	service := newTestService(t, "")

	service.TrackAnalysis(model.AnalysisEvent{
		Source:       "text",
		Score:        50,
		Band:         model.BandPartial,
		JobSkills:    4,
		ResumeSkills: 4,
		Matched:      []string{"Python", "Docker"},
		Missing:      []string{"AWS", "PostgreSQL"},
		ResponseTime: 20 * time.Millisecond,
	})

	require.Equal(t, 1, service.EventCount())
	assert.False(t, service.events[0].Timestamp.IsZero(), "timestamp should be set")
}

func TestGetDashboardData(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	service := newTestService(t, "")
	service.now = func() time.Time { return now }

	events := []model.AnalysisEvent{
		{Score: 100, Band: model.BandStrong, Matched: []string{"Go", "Docker"}, ResponseTime: 10 * time.Millisecond, Timestamp: now.Add(-time.Hour)},
		{Score: 50, Band: model.BandPartial, Matched: []string{"Go"}, Missing: []string{"AWS"}, ResponseTime: 40 * time.Millisecond, Timestamp: now.Add(-2 * time.Hour)},
		{Score: 0, Band: model.BandWeak, Missing: []string{"AWS", "Kubernetes"}, ResponseTime: 150 * time.Millisecond, Timestamp: now.Add(-3 * time.Hour)},
		// Previous day, counted only for trends
		{Score: 70, Band: model.BandGood, Missing: []string{"Terraform"}, ResponseTime: 60 * time.Millisecond, Timestamp: now.Add(-30 * time.Hour)},
	}
	for _, e := range events {
		service.TrackAnalysis(e)
	}

	dashboard := service.GetDashboardData()

	assert.Equal(t, 3, dashboard.TotalAnalyses)
	assert.Equal(t, 200.0, dashboard.AnalysesChangePercent)
	assert.Equal(t, 50.0, dashboard.AvgScore)
	assert.Equal(t, int64(66), dashboard.AvgResponseTime)
	assert.Equal(t, "stable", dashboard.ResponseTimeChange)
	assert.Equal(t, 120, dashboard.TaxonomyEntries)

	assert.Equal(t, model.BandDistribution{Strong: 1, Partial: 1, Weak: 1}, dashboard.Bands)

	require.NotEmpty(t, dashboard.TopMissingSkills)
	assert.Equal(t, model.SkillFrequency{Skill: "AWS", Count: 2}, dashboard.TopMissingSkills[0])
	assert.Equal(t, []model.SkillFrequency{{Skill: "Go", Count: 2}, {Skill: "Docker", Count: 1}}, dashboard.TopMatchedSkills)

	require.Len(t, dashboard.Performance24h, 24)
	assert.Equal(t, 1, dashboard.Performance24h[14].AnalysisCount)
	assert.Equal(t, 100.0, dashboard.Performance24h[14].AvgScore)

	dist := dashboard.ResponseTimeDistribution
	assert.Equal(t, 1, dist.Bucket0To25ms)
	assert.Equal(t, 1, dist.Bucket25To50ms)
	assert.Equal(t, 1, dist.Bucket100msPlus)
	assert.InDelta(t, 33.33, dist.Percentage0To25, 0.01)
}

func TestGetDashboardDataEmpty(t *testing.T) {
	service := newTestService(t, "")
	dashboard := service.GetDashboardData()

	assert.Equal(t, 0, dashboard.TotalAnalyses)
	assert.Equal(t, 0.0, dashboard.AvgScore)
	assert.NotNil(t, dashboard.TopMissingSkills)
	assert.Empty(t, dashboard.TopMissingSkills)
	assert.Len(t, dashboard.Performance24h, 24)
}

func TestTopSkillsLimit(t *testing.T) {
	service := newTestService(t, "")
	service.TrackAnalysis(model.AnalysisEvent{Missing: []string{"A", "B", "C", "D", "E", "F", "G"}})

	dashboard := service.GetDashboardData()
	require.Len(t, dashboard.TopMissingSkills, topSkillsLimit)
	assert.Equal(t, "A", dashboard.TopMissingSkills[0].Skill)
}

func TestEventsArePersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics", "events.json")

	service := NewService(fixedSizer(1), path, testutil.QuietLogger())
	service.TrackAnalysis(model.AnalysisEvent{Score: 80, Band: model.BandStrong, Matched: []string{"Go"}})
	service.TrackAnalysis(model.AnalysisEvent{Score: 20, Band: model.BandWeak, Missing: []string{"Go"}})
	service.Flush()

	_, err := os.Stat(path)
	require.NoError(t, err)

	reloaded := NewService(fixedSizer(1), path, testutil.QuietLogger())
	assert.Equal(t, 2, reloaded.EventCount())
}

func TestCorruptDataFileIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	service := NewService(nil, path, testutil.QuietLogger())
	assert.Equal(t, 0, service.EventCount())
	assert.Equal(t, 0, service.GetDashboardData().TaxonomyEntries)
}

func TestCalculateChangePercent(t *testing.T) {
	assert.Equal(t, 0.0, calculateChangePercent(0, 0))
	assert.Equal(t, 100.0, calculateChangePercent(5, 0))
	assert.Equal(t, 50.0, calculateChangePercent(15, 10))
	assert.Equal(t, -50.0, calculateChangePercent(5, 10))
}
