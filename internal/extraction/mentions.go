// Package extraction locates skill mentions in free text and reduces them to
// an ordered, deduplicated skill list per document.
package extraction

import (
	"strings"
	"unicode"

	"github.com/gcbaptista/skillmatch/internal/tokenizer"
	"github.com/gcbaptista/skillmatch/model"
)

// Lexicon is the read-only view of a taxonomy that extraction needs.
// *taxonomy.Taxonomy implements it.
type Lexicon interface {
	LookupKey(key string) (string, bool)
	MultiWordLengths() []int
	Vocabulary() tokenizer.Vocabulary
}

// FindMentions scans text left to right. At each token it tries the longest
// multi-word variant first, then a single token; a hit consumes its tokens.
// Matching is case-insensitive and happens on whole tokens only.
func FindMentions(text string, lex Lexicon) []model.SkillMention {
	mentions := make([]model.SkillMention, 0)
	if lex == nil || strings.TrimSpace(text) == "" {
		return mentions
	}

	tokens := tokenizer.Tokenize(text, lex.Vocabulary())
	lengths := lex.MultiWordLengths()

	for i := 0; i < len(tokens); {
		if mention, ok := matchAt(text, tokens, i, lex, lengths); ok {
			mentions = append(mentions, mention)
			i = mention.TokenEnd
			continue
		}
		i++
	}
	return mentions
}

func matchAt(text string, tokens []tokenizer.Token, i int, lex Lexicon, lengths []int) (model.SkillMention, bool) {
	for _, n := range lengths {
		if i+n > len(tokens) {
			continue
		}
		span := tokens[i : i+n]
		if !spaced(text, span) {
			continue
		}
		if canonical, ok := lex.LookupKey(joinKeys(span)); ok {
			return newMention(canonical, span, i), true
		}
	}

	if canonical, ok := lex.LookupKey(tokens[i].Key); ok {
		return newMention(canonical, tokens[i:i+1], i), true
	}
	return model.SkillMention{}, false
}

// spaced reports whether consecutive tokens are separated by whitespace only.
// Punctuation such as a comma or slash breaks a multi-word span.
func spaced(text string, span []tokenizer.Token) bool {
	for k := 1; k < len(span); k++ {
		gap := text[span[k-1].End:span[k].Start]
		if gap == "" || strings.TrimFunc(gap, unicode.IsSpace) != "" {
			return false
		}
	}
	return true
}

func joinKeys(span []tokenizer.Token) string {
	if len(span) == 1 {
		return span[0].Key
	}
	var b strings.Builder
	for k, t := range span {
		if k > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Key)
	}
	return b.String()
}

func newMention(canonical string, span []tokenizer.Token, start int) model.SkillMention {
	surface := span[0].Text
	if len(span) > 1 {
		parts := make([]string, len(span))
		for k, t := range span {
			parts[k] = t.Text
		}
		surface = strings.Join(parts, " ")
	}
	return model.SkillMention{
		Canonical:  canonical,
		Surface:    surface,
		TokenStart: start,
		TokenEnd:   start + len(span),
		ByteStart:  span[0].Start,
		ByteEnd:    span[len(span)-1].End,
	}
}
