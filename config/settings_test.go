package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestDefaultSettingsAreValid(t *testing.T) {
	s := Default()
	assert.Empty(t, s.ValidateSettings())
	assert.Equal(t, "8080", s.Server.Port)
	assert.Equal(t, 10, s.Matching.DefaultTopN)
	assert.Equal(t, FormatPolicyFirstSeen, s.Matching.FormatPolicy)
	assert.Equal(t, CommentaryDeterministic, s.Commentary)
	assert.Equal(t, []string{SourceLinguist}, s.Taxonomy.Sources)
	assert.Equal(t, []string{"programming"}, s.Taxonomy.LinguistTypes)
	assert.Equal(t, 15*time.Second, s.Taxonomy.FetchTimeout)
	assert.False(t, s.Taxonomy.FileSourceEnabled)
}

func TestFromEnv(t *testing.T) {
	s, err := FromEnv(envMap(map[string]string{
		"SKILLMATCH_PORT":           "9000",
		"SKILLMATCH_SOURCES":        "file, Linguist",
		"SKILLMATCH_SOURCE_FILE":    "/etc/skills.txt",
		"SKILLMATCH_FETCH_TIMEOUT":  "3s",
		"SKILLMATCH_FORCE_REFRESH":  "true",
		"SKILLMATCH_TOP_N":          "5",
		"SKILLMATCH_FORMAT_POLICY":  "best_format",
		"SKILLMATCH_COMMENTARY":     "off",
		"SKILLMATCH_JOB_WORKERS":    "4",
		"SKILLMATCH_JOB_RETENTION":  "1h",
		"SKILLMATCH_LOG_FORMAT":     "json",
		"SKILLMATCH_ANALYTICS_FILE": "/tmp/analytics.json",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", s.Server.Port)
	assert.Equal(t, []string{SourceFile, SourceLinguist}, s.Taxonomy.Sources)
	assert.True(t, s.Taxonomy.FileSourceEnabled)
	assert.Equal(t, 3*time.Second, s.Taxonomy.FetchTimeout)
	assert.True(t, s.Taxonomy.ForceRefresh)
	assert.Equal(t, 5, s.Matching.DefaultTopN)
	assert.Equal(t, FormatPolicyBest, s.Matching.FormatPolicy)
	assert.Equal(t, CommentaryOff, s.Commentary)
	assert.Equal(t, 4, s.Jobs.Workers)
	assert.Equal(t, time.Hour, s.Jobs.Retention)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, "/tmp/analytics.json", s.AnalyticsFile)
	assert.Empty(t, s.ValidateSettings())
}

func TestFromEnvNoSources(t *testing.T) {
	s, err := FromEnv(envMap(map[string]string{"SKILLMATCH_SOURCES": "none"}))
	require.NoError(t, err)
	assert.NotNil(t, s.Taxonomy.Sources)
	assert.Empty(t, s.Taxonomy.Sources)
	assert.Empty(t, s.ValidateSettings())
}

func TestFromEnvParseErrors(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{
		"SKILLMATCH_TOP_N":             "ten",
		"SKILLMATCH_FETCH_TIMEOUT":     "soon",
		"SKILLMATCH_FORCE_REFRESH":     "maybe",
		"SKILLMATCH_MAX_REQUEST_BYTES": "1MB",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SKILLMATCH_TOP_N must be an integer")
	assert.Contains(t, err.Error(), "SKILLMATCH_FETCH_TIMEOUT must be a duration")
	assert.Contains(t, err.Error(), "SKILLMATCH_FORCE_REFRESH must be a boolean")
	assert.Contains(t, err.Error(), "SKILLMATCH_MAX_REQUEST_BYTES must be an integer")
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(s *Settings)
		expected []string
	}{
		{
			name:     "unknown format policy",
			mutate:   func(s *Settings) { s.Matching.FormatPolicy = "fancy" },
			expected: []string{"Matching.FormatPolicy must be one of [first_seen best_format], got 'fancy'"},
		},
		{
			name:     "unknown commentary mode",
			mutate:   func(s *Settings) { s.Commentary = "llm" },
			expected: []string{"Commentary must be one of [deterministic off], got 'llm'"},
		},
		{
			name:     "unknown source",
			mutate:   func(s *Settings) { s.Taxonomy.Sources = []string{"wikipedia"} },
			expected: []string{"Taxonomy.Sources[0] must be one of [linguist file], got 'wikipedia'"},
		},
		{
			name:     "duplicate source",
			mutate:   func(s *Settings) { s.Taxonomy.Sources = []string{"linguist", "linguist"} },
			expected: []string{"Duplicate value 'linguist' found in taxonomy.sources"},
		},
		{
			name:     "negative top n",
			mutate:   func(s *Settings) { s.Matching.DefaultTopN = -1 },
			expected: []string{"Matching.DefaultTopN must be greater than 0"},
		},
		{
			name: "file source without a path",
			mutate: func(s *Settings) {
				s.Taxonomy.Sources = []string{SourceFile}
				s.ApplyDefaults()
			},
			expected: []string{"Taxonomy.SourceFile is required"},
		},
		{
			name:     "bad log format",
			mutate:   func(s *Settings) { s.Log.Format = "xml" },
			expected: []string{"Log.Format must be one of [text json], got 'xml'"},
		},
		{
			name:     "non-numeric port",
			mutate:   func(s *Settings) { s.Server.Port = "http" },
			expected: []string{"Server.Port must be numeric, got 'http'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			assert.Equal(t, tt.expected, s.ValidateSettings())
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SKILLMATCH_TOP_N=7\n"), 0600))
	t.Setenv("SKILLMATCH_TOP_N", "")
	os.Unsetenv("SKILLMATCH_TOP_N")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, s.Matching.DefaultTopN)
}

func TestLoadToleratesMissingDotEnv(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "8080", s.Server.Port)
}
