// Package analytics tracks completed analyses and aggregates them for the dashboard.
package analytics

import (
	"errors"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gcbaptista/skillmatch/internal/persistence"
	"github.com/gcbaptista/skillmatch/model"
)

const (
	maxEventsToKeep = 10000 // Keep last 10k events for performance
	topSkillsLimit  = 5
)

// TaxonomySizer reports the size of the taxonomy currently in use
type TaxonomySizer interface {
	TaxonomyStats() model.TaxonomyStats
}

// Service implements services.AnalyticsRecorder. Events are kept in memory
// and, when a data file is configured, persisted as JSON after each event.
type Service struct {
	mutex        sync.RWMutex
	events       []model.AnalysisEvent
	taxonomy     TaxonomySizer
	dataFilePath string
	logger       logrus.FieldLogger
	now          func() time.Time

	saveMu  sync.Mutex
	pending sync.WaitGroup
}

// NewService creates a new analytics service. An empty dataFilePath keeps events in memory only.
func NewService(taxonomy TaxonomySizer, dataFilePath string, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	service := &Service{
		events:       make([]model.AnalysisEvent, 0),
		taxonomy:     taxonomy,
		dataFilePath: dataFilePath,
		logger:       logger.WithField("component", "analytics"),
		now:          time.Now,
	}

	if err := service.loadData(); err != nil {
		service.logger.WithError(err).Warn("Failed to load analytics data")
	}

	return service
}

// TrackAnalysis records a completed analysis
func (s *Service) TrackAnalysis(event model.AnalysisEvent) {
	s.mutex.Lock()
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	s.events = append(s.events, event)

	// Keep only the latest events to prevent unbounded growth
	if len(s.events) > maxEventsToKeep {
		s.events = s.events[len(s.events)-maxEventsToKeep:]
	}
	s.mutex.Unlock()

	if s.dataFilePath == "" {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.saveData(); err != nil {
			s.logger.WithError(err).Warn("Failed to save analytics data")
		}
	}()
}

// Flush waits for pending writes of the data file
func (s *Service) Flush() {
	s.pending.Wait()
}

// EventCount returns the number of retained events
func (s *Service) EventCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.events)
}

// GetDashboardData returns complete analytics dashboard data
func (s *Service) GetDashboardData() model.AnalyticsDashboard {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := s.now()
	yesterday := now.Add(-24 * time.Hour)
	dayBefore := yesterday.Add(-24 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)

	last24h := filterEventsByTimeRange(s.events, yesterday, now)
	previous24h := filterEventsByTimeRange(s.events, dayBefore, yesterday)
	lastWeekEvents := filterEventsByTimeRange(s.events, lastWeek, now)

	dashboard := model.AnalyticsDashboard{
		TotalAnalyses:            len(last24h),
		AnalysesChangePercent:    calculateChangePercent(len(last24h), len(previous24h)),
		AvgScore:                 averageScore(last24h),
		AvgResponseTime:          calculateAvgResponseTime(last24h),
		ResponseTimeChange:       calculateResponseTimeChange(last24h, previous24h),
		Performance24h:           hourlyPerformance(last24h),
		TopMissingSkills:         topSkills(lastWeekEvents, func(e model.AnalysisEvent) []string { return e.Missing }),
		TopMatchedSkills:         topSkills(lastWeekEvents, func(e model.AnalysisEvent) []string { return e.Matched }),
		Bands:                    bandDistribution(last24h),
		ResponseTimeDistribution: responseTimeDistribution(last24h),
	}
	if s.taxonomy != nil {
		dashboard.TaxonomyEntries = s.taxonomy.TaxonomyStats().Entries
	}

	return dashboard
}

// filterEventsByTimeRange returns events in (start, end]
func filterEventsByTimeRange(events []model.AnalysisEvent, start, end time.Time) []model.AnalysisEvent {
	filtered := make([]model.AnalysisEvent, 0)
	for _, event := range events {
		if event.Timestamp.After(start) && !event.Timestamp.After(end) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// calculateChangePercent calculates percentage change between current and previous values
func calculateChangePercent(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100.0
		}
		return 0.0
	}
	return float64(current-previous) / float64(previous) * 100.0
}

func averageScore(events []model.AnalysisEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	var total float64
	for _, event := range events {
		total += event.Score
	}
	return total / float64(len(events))
}

// calculateAvgResponseTime calculates average response time for events in milliseconds
func calculateAvgResponseTime(events []model.AnalysisEvent) int64 {
	if len(events) == 0 {
		return 0
	}

	var total time.Duration
	for _, event := range events {
		total += event.ResponseTime
	}
	return (total / time.Duration(len(events))).Milliseconds()
}

// calculateResponseTimeChange calculates response time change trend
func calculateResponseTimeChange(current, previous []model.AnalysisEvent) string {
	currentAvg := calculateAvgResponseTime(current)
	previousAvg := calculateAvgResponseTime(previous)

	if previousAvg == 0 {
		return "stable"
	}

	change := float64(currentAvg-previousAvg) / float64(previousAvg)
	if change > 0.1 {
		return "up"
	} else if change < -0.1 {
		return "down"
	}
	return "stable"
}

func hourlyPerformance(events []model.AnalysisEvent) []model.AnalysisHourly {
	hourlyData := make(map[int][]model.AnalysisEvent)
	for _, event := range events {
		hour := event.Timestamp.Hour()
		hourlyData[hour] = append(hourlyData[hour], event)
	}

	performance := make([]model.AnalysisHourly, 0, 24)
	for hour := 0; hour < 24; hour++ {
		events := hourlyData[hour]
		performance = append(performance, model.AnalysisHourly{
			Hour:            hour,
			AnalysisCount:   len(events),
			AvgScore:        averageScore(events),
			AvgResponseTime: calculateAvgResponseTime(events),
		})
	}
	return performance
}

// topSkills counts skills across events, most frequent first, alphabetical among equals
func topSkills(events []model.AnalysisEvent, pick func(model.AnalysisEvent) []string) []model.SkillFrequency {
	counts := make(map[string]int)
	for _, event := range events {
		for _, skill := range pick(event) {
			counts[skill]++
		}
	}

	frequencies := make([]model.SkillFrequency, 0, len(counts))
	for skill, count := range counts {
		frequencies = append(frequencies, model.SkillFrequency{Skill: skill, Count: count})
	}
	sort.Slice(frequencies, func(i, j int) bool {
		if frequencies[i].Count != frequencies[j].Count {
			return frequencies[i].Count > frequencies[j].Count
		}
		return frequencies[i].Skill < frequencies[j].Skill
	})

	if len(frequencies) > topSkillsLimit {
		frequencies = frequencies[:topSkillsLimit]
	}
	return frequencies
}

func bandDistribution(events []model.AnalysisEvent) model.BandDistribution {
	var dist model.BandDistribution
	for _, event := range events {
		switch event.Band {
		case model.BandStrong:
			dist.Strong++
		case model.BandGood:
			dist.Good++
		case model.BandPartial:
			dist.Partial++
		case model.BandWeak:
			dist.Weak++
		}
	}
	return dist
}

func responseTimeDistribution(events []model.AnalysisEvent) model.ResponseTimeDistribution {
	dist := model.ResponseTimeDistribution{}
	total := len(events)
	if total == 0 {
		return dist
	}

	for _, event := range events {
		ms := event.ResponseTime.Milliseconds()
		switch {
		case ms <= 25:
			dist.Bucket0To25ms++
		case ms <= 50:
			dist.Bucket25To50ms++
		case ms <= 100:
			dist.Bucket50To100ms++
		default:
			dist.Bucket100msPlus++
		}
	}

	dist.Percentage0To25 = float64(dist.Bucket0To25ms) / float64(total) * 100
	dist.Percentage25To50 = float64(dist.Bucket25To50ms) / float64(total) * 100
	dist.Percentage50To100 = float64(dist.Bucket50To100ms) / float64(total) * 100
	dist.Percentage100Plus = float64(dist.Bucket100msPlus) / float64(total) * 100

	return dist
}

func (s *Service) loadData() error {
	if s.dataFilePath == "" {
		return nil
	}
	var events []model.AnalysisEvent
	if err := persistence.LoadJSON(s.dataFilePath, &events); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if events != nil {
		s.events = events
	}
	return nil
}

func (s *Service) saveData() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mutex.RLock()
	snapshot := append([]model.AnalysisEvent(nil), s.events...)
	s.mutex.RUnlock()

	return persistence.SaveJSON(s.dataFilePath, snapshot)
}
