package matching

import (
	"fmt"
	"strings"

	"github.com/gcbaptista/skillmatch/model"
)

// maxNamedSkills caps how many skills a summary sentence lists
const maxNamedSkills = 3

// DeterministicCommentator writes commentary from the match result alone.
// It implements services.Commentator and never touches the score.
type DeterministicCommentator struct{}

// Comment implements services.Commentator
func (DeterministicCommentator) Comment(result model.MatchResult) model.Commentary {
	return Summarize(result)
}

// OffCommentator leaves the commentary fields empty
type OffCommentator struct{}

// Comment implements services.Commentator
func (OffCommentator) Comment(model.MatchResult) model.Commentary {
	return model.Commentary{}
}

// Summarize produces a short summary and notes on how far the score can be trusted
func Summarize(result model.MatchResult) model.Commentary {
	total := len(result.MatchedKeywords) + len(result.MissingKeywords)
	if total == 0 {
		return model.Commentary{
			Summary:         "No technical skills were recognized in the job description, so no match score could be established.",
			ConfidenceNotes: "Score is 0 because the job description yielded no recognizable skills. Consider providing a more detailed description.",
		}
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "%s%% match (%s, %s).", formatScore(result.MatchScore), result.MatchRatio, result.Classification)
	if len(result.MatchedKeywords) > 0 {
		fmt.Fprintf(&summary, " Strong in %s.", listSkills(result.MatchedKeywords))
	}
	if len(result.MissingKeywords) > 0 {
		fmt.Fprintf(&summary, " Missing %s.", listSkills(result.MissingKeywords))
	}

	notes := make([]string, 0, 3)
	switch {
	case total < 3:
		notes = append(notes, fmt.Sprintf("Only %d skill(s) were extracted from the job description, so the score is coarse.", total))
	case total >= 10:
		notes = append(notes, fmt.Sprintf("%d skills were extracted from the job description; the score is well supported.", total))
	default:
		notes = append(notes, fmt.Sprintf("%d skills were extracted from the job description.", total))
	}
	if len(result.MatchedKeywords) == 0 {
		notes = append(notes, "No required skill appears in the resume; check that the resume lists its technologies explicitly.")
	}
	notes = append(notes, "Scoring is keyword overlap only: it does not weigh skill importance, experience duration or soft skills.")

	return model.Commentary{
		Summary:         summary.String(),
		ConfidenceNotes: strings.Join(notes, " "),
	}
}

func listSkills(skills []string) string {
	if len(skills) <= maxNamedSkills {
		return joinWithAnd(skills)
	}
	named := append([]string(nil), skills[:maxNamedSkills]...)
	named = append(named, fmt.Sprintf("%d more", len(skills)-maxNamedSkills))
	return joinWithAnd(named)
}

func joinWithAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
