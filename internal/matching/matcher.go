// Package matching compares the skills of a job description with those of a
// resume. Scoring is a pure function of the two skill sets.
package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/gcbaptista/skillmatch/internal/tokenizer"
	"github.com/gcbaptista/skillmatch/model"
)

// DefaultTopN is used when a caller passes a non-positive top_n
const DefaultTopN = 10

// NoJobSkillsExplanation is the explanation of a match whose job side has no skills
const NoJobSkillsExplanation = "No skills found in job description"

// Match compares job skills against resume skills. Identity is the case-folded
// canonical name; displayed names use the job side's surface form. Matched and
// missing skills keep the job's first-seen order.
func Match(job, resume model.ExtractionResult, topN int) model.MatchResult {
	if topN <= 0 {
		topN = DefaultTopN
	}

	resumeSet := make(map[string]struct{}, len(resume.Skills))
	for _, s := range resume.Skills {
		resumeSet[tokenizer.Fold(s.Canonical)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(job.Skills))
	jobSurfaces := make([]string, 0, len(job.Skills))
	matched := make([]string, 0, len(job.Skills))
	missing := make([]string, 0, len(job.Skills))
	for _, s := range job.Skills {
		key := tokenizer.Fold(s.Canonical)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		display := s.Surface
		if display == "" {
			display = s.Canonical
		}
		jobSurfaces = append(jobSurfaces, display)
		if _, ok := resumeSet[key]; ok {
			matched = append(matched, display)
		} else {
			missing = append(missing, display)
		}
	}

	total := len(jobSurfaces)
	if total == 0 {
		// No requirements extracted: there is no basis for a match.
		return model.MatchResult{
			TopKeywords:     []string{},
			MatchedKeywords: []string{},
			MissingKeywords: []string{},
			MatchScore:      0.0,
			MatchRatio:      "0/0",
			Classification:  Classify(0.0),
			Explanation:     NoJobSkillsExplanation,
		}
	}

	top := jobSurfaces
	if len(top) > topN {
		top = top[:topN]
	}

	score := Score(len(matched), total)
	result := model.MatchResult{
		TopKeywords:     append([]string(nil), top...),
		MatchedKeywords: matched,
		MissingKeywords: missing,
		MatchScore:      score,
		MatchRatio:      fmt.Sprintf("%d/%d", len(matched), total),
		Classification:  Classify(score),
	}
	result.Explanation = Explain(result)
	return result
}

// Score returns 100*matched/total rounded to two decimals, and 0 when total is 0
func Score(matched, total int) float64 {
	if total <= 0 {
		return 0.0
	}
	return math.Round(float64(matched)/float64(total)*100*100) / 100
}

// Classify maps a score to its band. Lower bounds are inclusive.
func Classify(score float64) model.Band {
	switch {
	case score >= 80:
		return model.BandStrong
	case score >= 60:
		return model.BandGood
	case score >= 40:
		return model.BandPartial
	default:
		return model.BandWeak
	}
}

var verdicts = map[model.Band]string{
	model.BandStrong:  "✓ Strong match",
	model.BandGood:    "~ Good match",
	model.BandPartial: "△ Partial match",
	model.BandWeak:    "✗ Weak match",
}

// Explain renders a multi-line verdict with the matched and missing skills
func Explain(result model.MatchResult) string {
	if result.MatchRatio == "0/0" {
		return NoJobSkillsExplanation
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s%%)", verdicts[Classify(result.MatchScore)], formatScore(result.MatchScore))
	if len(result.MatchedKeywords) > 0 {
		fmt.Fprintf(&b, "\n\nMatched skills (%d):\n  %s", len(result.MatchedKeywords), strings.Join(result.MatchedKeywords, ", "))
	}
	if len(result.MissingKeywords) > 0 {
		fmt.Fprintf(&b, "\n\nMissing skills (%d):\n  %s", len(result.MissingKeywords), strings.Join(result.MissingKeywords, ", "))
	}
	return b.String()
}

// formatScore prints a score the way it is serialized: 50 -> "50.0", 33.33 -> "33.33"
func formatScore(score float64) string {
	s := fmt.Sprintf("%.2f", score)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}
