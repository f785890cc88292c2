package model

import "time"

// AnalysisEvent records one completed analysis for analytics tracking
type AnalysisEvent struct {
	Source       string        `json:"source"` // "upload", "text", "cli"
	Score        float64       `json:"score"`
	Band         Band          `json:"band"`
	JobSkills    int           `json:"job_skills"`
	ResumeSkills int           `json:"resume_skills"`
	Matched      []string      `json:"matched"`
	Missing      []string      `json:"missing"`
	ResponseTime time.Duration `json:"response_time"`
	Timestamp    time.Time     `json:"timestamp"`
}

// SkillFrequency is an aggregated count for one skill
type SkillFrequency struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// BandDistribution counts analyses per classification band
type BandDistribution struct {
	Strong  int `json:"strong"`
	Good    int `json:"good"`
	Partial int `json:"partial"`
	Weak    int `json:"weak"`
}

// ResponseTimeDistribution represents response time distribution buckets
type ResponseTimeDistribution struct {
	Bucket0To25ms     int     `json:"bucket_0_25ms"`
	Bucket25To50ms    int     `json:"bucket_25_50ms"`
	Bucket50To100ms   int     `json:"bucket_50_100ms"`
	Bucket100msPlus   int     `json:"bucket_100ms_plus"`
	Percentage0To25   float64 `json:"percentage_0_25"`
	Percentage25To50  float64 `json:"percentage_25_50"`
	Percentage50To100 float64 `json:"percentage_50_100"`
	Percentage100Plus float64 `json:"percentage_100_plus"`
}

// AnalysisHourly represents hourly analysis volume and latency
type AnalysisHourly struct {
	Hour            int     `json:"hour"`
	AnalysisCount   int     `json:"analysis_count"`
	AvgScore        float64 `json:"avg_score"`
	AvgResponseTime int64   `json:"avg_response_time"` // in milliseconds
}

// AnalyticsDashboard represents the complete analytics dashboard data
type AnalyticsDashboard struct {
	// Summary metrics
	TotalAnalyses         int     `json:"total_analyses"`
	AnalysesChangePercent float64 `json:"analyses_change_percent"`
	AvgScore              float64 `json:"avg_score"`
	AvgResponseTime       int64   `json:"avg_response_time"` // in milliseconds
	ResponseTimeChange    string  `json:"response_time_change"`
	TaxonomyEntries       int     `json:"taxonomy_entries"`

	// Detailed analytics
	Performance24h           []AnalysisHourly         `json:"performance_24h"`
	TopMissingSkills         []SkillFrequency         `json:"top_missing_skills"`
	TopMatchedSkills         []SkillFrequency         `json:"top_matched_skills"`
	Bands                    BandDistribution         `json:"bands"`
	ResponseTimeDistribution ResponseTimeDistribution `json:"response_time_distribution"`
}
