// Package config provides the runtime settings of skillmatch.
// Settings are read once at startup and injected into components.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/gcbaptista/skillmatch/internal/taxonomy"
)

// Recognized values of enumerated options
const (
	FormatPolicyFirstSeen = "first_seen"
	FormatPolicyBest      = "best_format"

	CommentaryDeterministic = "deterministic"
	CommentaryOff           = "off"

	SourceLinguist = "linguist"
	SourceFile     = "file"
)

// ServerSettings configures the HTTP surface
type ServerSettings struct {
	Port            string `json:"port" validate:"required,numeric"`
	GinMode         string `json:"gin_mode" validate:"oneof=debug release test"`
	MaxRequestBytes int64  `json:"max_request_bytes" validate:"gt=0"`
}

// TaxonomySettings configures where the skill taxonomy comes from and where it is cached
type TaxonomySettings struct {
	CachePath string `json:"cache_path" validate:"required"`
	// CuratedFile replaces the built-in curated data when set
	CuratedFile string `json:"curated_file"`
	// Sources lists remote skill sources; empty means curated only
	Sources []string `json:"sources" validate:"dive,oneof=linguist file"`

	LinguistURL   string        `json:"linguist_url" validate:"omitempty,url"`
	LinguistTypes []string      `json:"linguist_types"`
	SourceFile    string        `json:"source_file" validate:"required_if=FileSourceEnabled true"`
	FetchTimeout  time.Duration `json:"fetch_timeout" validate:"gt=0"`
	ForceRefresh  bool          `json:"force_refresh"`

	// FileSourceEnabled is derived from Sources by ApplyDefaults
	FileSourceEnabled bool `json:"-"`
}

// MatchingSettings configures extraction and scoring defaults
type MatchingSettings struct {
	DefaultTopN  int    `json:"default_top_n" validate:"gt=0"`
	FormatPolicy string `json:"format_policy" validate:"oneof=first_seen best_format"`
}

// JobSettings configures the background job manager
type JobSettings struct {
	Workers   int           `json:"workers" validate:"gt=0"`
	Retention time.Duration `json:"retention" validate:"gt=0"`
}

// LogSettings configures the process logger
type LogSettings struct {
	Level  string `json:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `json:"format" validate:"oneof=text json"`
}

// Settings holds every runtime option
type Settings struct {
	Server        ServerSettings   `json:"server"`
	Taxonomy      TaxonomySettings `json:"taxonomy"`
	Matching      MatchingSettings `json:"matching"`
	Commentary    string           `json:"commentary" validate:"oneof=deterministic off"`
	Jobs          JobSettings      `json:"jobs"`
	Log           LogSettings      `json:"log"`
	AnalyticsFile string           `json:"analytics_file"`
}

// Default returns settings with every default applied
func Default() Settings {
	var s Settings
	s.ApplyDefaults()
	return s
}

// Load reads a .env file when present, then the environment. The result has
// defaults applied but is not validated.
func Load(envFiles ...string) (Settings, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return Settings{}, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds settings from a lookup function
func FromEnv(getenv func(string) string) (Settings, error) {
	env := envReader{getenv: getenv}
	s := Settings{
		Server: ServerSettings{
			Port:            env.str("SKILLMATCH_PORT"),
			GinMode:         env.str("SKILLMATCH_GIN_MODE"),
			MaxRequestBytes: env.int64("SKILLMATCH_MAX_REQUEST_BYTES"),
		},
		Taxonomy: TaxonomySettings{
			CachePath:    env.str("SKILLMATCH_CACHE_PATH"),
			CuratedFile:  env.str("SKILLMATCH_CURATED_FILE"),
			Sources:      env.list("SKILLMATCH_SOURCES"),
			LinguistURL:  env.str("SKILLMATCH_LINGUIST_URL"),
			SourceFile:   env.str("SKILLMATCH_SOURCE_FILE"),
			FetchTimeout: env.duration("SKILLMATCH_FETCH_TIMEOUT"),
			ForceRefresh: env.bool("SKILLMATCH_FORCE_REFRESH"),
		},
		Matching: MatchingSettings{
			DefaultTopN:  int(env.int64("SKILLMATCH_TOP_N")),
			FormatPolicy: env.str("SKILLMATCH_FORMAT_POLICY"),
		},
		Commentary: env.str("SKILLMATCH_COMMENTARY"),
		Jobs: JobSettings{
			Workers:   int(env.int64("SKILLMATCH_JOB_WORKERS")),
			Retention: env.duration("SKILLMATCH_JOB_RETENTION"),
		},
		Log: LogSettings{
			Level:  env.str("SKILLMATCH_LOG_LEVEL"),
			Format: env.str("SKILLMATCH_LOG_FORMAT"),
		},
		AnalyticsFile: env.str("SKILLMATCH_ANALYTICS_FILE"),
	}
	if len(env.problems) > 0 {
		return Settings{}, fmt.Errorf("invalid environment: %s", strings.Join(env.problems, "; "))
	}
	s.ApplyDefaults()
	return s, nil
}

// ApplyDefaults fills zero values with defaults
func (s *Settings) ApplyDefaults() {
	if s.Server.Port == "" {
		s.Server.Port = "8080"
	}
	if s.Server.GinMode == "" {
		s.Server.GinMode = "release"
	}
	if s.Server.MaxRequestBytes == 0 {
		s.Server.MaxRequestBytes = 10 << 20
	}

	if s.Taxonomy.CachePath == "" {
		s.Taxonomy.CachePath = "./skillmatch_data/skills.gob"
	}
	if s.Taxonomy.Sources == nil {
		s.Taxonomy.Sources = []string{SourceLinguist}
	}
	if s.Taxonomy.LinguistURL == "" {
		s.Taxonomy.LinguistURL = taxonomy.DefaultLinguistURL
	}
	if len(s.Taxonomy.LinguistTypes) == 0 {
		s.Taxonomy.LinguistTypes = []string{"programming"}
	}
	if s.Taxonomy.FetchTimeout == 0 {
		s.Taxonomy.FetchTimeout = 15 * time.Second
	}
	s.Taxonomy.FileSourceEnabled = false
	for _, src := range s.Taxonomy.Sources {
		if src == SourceFile {
			s.Taxonomy.FileSourceEnabled = true
		}
	}

	if s.Matching.DefaultTopN == 0 {
		s.Matching.DefaultTopN = 10
	}
	if s.Matching.FormatPolicy == "" {
		s.Matching.FormatPolicy = FormatPolicyFirstSeen
	}
	if s.Commentary == "" {
		s.Commentary = CommentaryDeterministic
	}

	if s.Jobs.Workers == 0 {
		s.Jobs.Workers = 2
	}
	if s.Jobs.Retention == 0 {
		s.Jobs.Retention = 24 * time.Hour
	}

	if s.Log.Level == "" {
		s.Log.Level = "info"
	}
	if s.Log.Format == "" {
		s.Log.Format = "text"
	}
}

var validate = validator.New()

// ValidateSettings returns a human-readable problem per invalid option.
// An empty result means the settings are usable.
func (s *Settings) ValidateSettings() []string {
	var problems []string

	if err := validate.Struct(s); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []string{err.Error()}
		}
		for _, fe := range validationErrors {
			problems = append(problems, describe(fe))
		}
	}
	problems = append(problems, checkDuplicates("taxonomy.sources", s.Taxonomy.Sources)...)

	return problems
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Settings.")
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got '%v'", field, fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric, got '%v'", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed '%s' validation", field, fe.Tag())
	}
}

// checkDuplicates checks for duplicate values in a slice and returns error messages
func checkDuplicates(fieldName string, values []string) []string {
	var errors []string
	seen := make(map[string]bool)

	for _, v := range values {
		if seen[v] {
			errors = append(errors, "Duplicate value '"+v+"' found in "+fieldName)
		}
		seen[v] = true
	}

	return errors
}

// envReader collects parse problems instead of failing on the first one
type envReader struct {
	getenv   func(string) string
	problems []string
}

func (r *envReader) str(key string) string {
	return strings.TrimSpace(r.getenv(key))
}

func (r *envReader) list(key string) []string {
	raw := r.str(key)
	if raw == "" {
		return nil
	}
	if strings.EqualFold(raw, "none") {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

func (r *envReader) int64(key string) int64 {
	raw := r.str(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.problems = append(r.problems, fmt.Sprintf("%s must be an integer, got '%s'", key, raw))
	}
	return n
}

func (r *envReader) bool(key string) bool {
	raw := r.str(key)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		r.problems = append(r.problems, fmt.Sprintf("%s must be a boolean, got '%s'", key, raw))
	}
	return b
}

func (r *envReader) duration(key string) time.Duration {
	raw := r.str(key)
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		r.problems = append(r.problems, fmt.Sprintf("%s must be a duration like 15s, got '%s'", key, raw))
	}
	return d
}
