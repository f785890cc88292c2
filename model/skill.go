package model

// SkillSourceKind tells where a canonical skill came from.
// Curated entries outrank fetched ones when they compete for a variant.
type SkillSourceKind string

const (
	SourceCurated SkillSourceKind = "curated"
	SourceFetched SkillSourceKind = "fetched"
)

// SkillEntry is one canonical skill and every lowercase variant that normalizes to it
type SkillEntry struct {
	Canonical   string          `json:"canonical"`
	Variants    []string        `json:"variants"`     // sorted, case-folded, single-spaced
	TokenLength int             `json:"token_length"` // word count of the longest variant
	Source      SkillSourceKind `json:"source"`
}

// SkillMention is one located occurrence of a skill in a document
type SkillMention struct {
	Canonical  string `json:"canonical"`
	Surface    string `json:"surface"` // literal text as written, internal whitespace collapsed
	TokenStart int    `json:"token_start"`
	TokenEnd   int    `json:"token_end"` // exclusive
	ByteStart  int    `json:"byte_start"`
	ByteEnd    int    `json:"byte_end"`
}

// ExtractedSkill is one deduplicated skill of a document with its preferred surface form
type ExtractedSkill struct {
	Canonical   string `json:"canonical"`
	Surface     string `json:"surface"`
	Occurrences int    `json:"occurrences"`
	FirstOffset int    `json:"first_offset"`
}

// ExtractionResult holds the skills of one document in first-seen order
type ExtractionResult struct {
	Skills []ExtractedSkill `json:"skills"`
}

// Canonicals returns the canonical names in first-seen order
func (r ExtractionResult) Canonicals() []string {
	out := make([]string, len(r.Skills))
	for i, s := range r.Skills {
		out[i] = s.Canonical
	}
	return out
}

// Surfaces returns the preferred surface forms in first-seen order
func (r ExtractionResult) Surfaces() []string {
	out := make([]string, len(r.Skills))
	for i, s := range r.Skills {
		out[i] = s.Surface
	}
	return out
}

// Len returns the number of distinct skills
func (r ExtractionResult) Len() int {
	return len(r.Skills)
}

// FormatPolicy selects which surface form represents a skill in one document
type FormatPolicy string

const (
	// FormatFirstSeen keeps the first surface form observed
	FormatFirstSeen FormatPolicy = "first_seen"
	// FormatBest keeps the most frequent form, or the best formatted one when all forms are unique
	FormatBest FormatPolicy = "best_format"
)

// TaxonomyStats summarizes the loaded taxonomy
type TaxonomyStats struct {
	Entries          int            `json:"entries"`
	Variants         int            `json:"variants"`
	MultiWordEntries int            `json:"multi_word_entries"`
	BySource         map[string]int `json:"by_source"`
	FormatVersion    int            `json:"format_version"`
	ConfigDigest     string         `json:"config_digest"`
	SourceDigest     string         `json:"source_digest"`
	Sources          []string       `json:"sources"`
	Partial          bool           `json:"partial"`
}

// SkillLookup is the answer to a taxonomy lookup for a single term
type SkillLookup struct {
	Term        string      `json:"term"`
	Found       bool        `json:"found"`
	Entry       *SkillEntry `json:"entry,omitempty"`
	Suggestions []string    `json:"suggestions,omitempty"`
}
