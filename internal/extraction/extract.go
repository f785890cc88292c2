package extraction

import (
	"strings"
	"unicode"

	"github.com/gcbaptista/skillmatch/internal/tokenizer"
	"github.com/gcbaptista/skillmatch/model"
)

type surfaceCount struct {
	form  string
	count int
}

type skillAccumulator struct {
	canonical   string
	firstOffset int
	occurrences int
	forms       []surfaceCount // first-seen order
}

func (a *skillAccumulator) add(surface string) {
	a.occurrences++
	for i := range a.forms {
		if a.forms[i].form == surface {
			a.forms[i].count++
			return
		}
	}
	a.forms = append(a.forms, surfaceCount{form: surface, count: 1})
}

// Extract returns the distinct skills of one document in first-seen order.
// Duplicates are detected on the case-folded canonical name. Each skill keeps
// the surface form chosen by policy; empty text yields an empty result.
func Extract(text string, lex Lexicon, policy model.FormatPolicy) model.ExtractionResult {
	mentions := FindMentions(text, lex)

	order := make([]*skillAccumulator, 0, len(mentions))
	byKey := make(map[string]*skillAccumulator, len(mentions))
	for _, m := range mentions {
		key := tokenizer.Fold(m.Canonical)
		acc, ok := byKey[key]
		if !ok {
			acc = &skillAccumulator{canonical: m.Canonical, firstOffset: m.ByteStart}
			byKey[key] = acc
			order = append(order, acc)
		}
		acc.add(m.Surface)
	}

	skills := make([]model.ExtractedSkill, 0, len(order))
	for _, acc := range order {
		skills = append(skills, model.ExtractedSkill{
			Canonical:   acc.canonical,
			Surface:     pickSurface(acc.forms, policy),
			Occurrences: acc.occurrences,
			FirstOffset: acc.firstOffset,
		})
	}
	return model.ExtractionResult{Skills: skills}
}

func pickSurface(forms []surfaceCount, policy model.FormatPolicy) string {
	if policy != model.FormatBest || len(forms) == 1 {
		return forms[0].form
	}
	return bestFormat(forms)
}

// bestFormat picks the form seen most often when it occurs more than once;
// otherwise the form with the highest FormatQuality. Ties keep the earlier form.
func bestFormat(forms []surfaceCount) string {
	best := 0
	for i := 1; i < len(forms); i++ {
		if forms[i].count > forms[best].count {
			best = i
		}
	}
	if forms[best].count > 1 {
		return forms[best].form
	}

	best = 0
	bestScore := FormatQuality(forms[0].form)
	for i := 1; i < len(forms); i++ {
		if score := FormatQuality(forms[i].form); score > bestScore {
			best, bestScore = i, score
		}
	}
	return forms[best].form
}

// FormatQuality rates how deliberately a skill name is written.
// Mixed case scores 10, special characters (+ # . / -) add 5,
// all upper case scores 2 and all lower case 1.
func FormatQuality(form string) int {
	var hasUpper, hasLower bool
	for _, r := range form {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}

	score := 0
	switch {
	case hasUpper && hasLower:
		score += 10
	case hasUpper:
		score += 2
	case hasLower:
		score++
	}
	if strings.ContainsAny(form, "+#./-") {
		score += 5
	}
	return score
}
