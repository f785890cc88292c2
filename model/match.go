package model

// Band is a label derived from a match score
type Band string

const (
	BandStrong  Band = "strong"
	BandGood    Band = "good"
	BandPartial Band = "partial"
	BandWeak    Band = "weak"
)

// MatchResult compares the skills of a job description with those of a resume.
// MatchScore is authoritative: nothing downstream may recompute or alter it.
type MatchResult struct {
	TopKeywords     []string `json:"top_keywords"`
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
	MatchScore      float64  `json:"match_score"`
	MatchRatio      string   `json:"match_ratio"`
	Classification  Band     `json:"classification"`
	Explanation     string   `json:"explanation"`
}

// Commentary is free text attached to a match result by a commentator
type Commentary struct {
	Summary         string `json:"summary"`
	ConfidenceNotes string `json:"confidence_notes"`
}

// Analysis is the full answer to an analysis request
type Analysis struct {
	MatchResult
	Commentary
	JobSkills    []string `json:"job_skills"`
	ResumeSkills []string `json:"resume_skills"`
}
