package taxonomy

import (
	"strings"
	"unicode/utf8"

	"github.com/gcbaptista/skillmatch/internal/tokenizer"
)

// claimKind orders how an entry came to claim a variant. Lower wins.
type claimKind int

const (
	claimSelf    claimKind = iota // the entry's own canonical name
	claimTable                    // explicit variant table row
	claimDerived                  // generated from the canonical spelling
)

func (k claimKind) String() string {
	switch k {
	case claimSelf:
		return "canonical"
	case claimTable:
		return "table"
	default:
		return "derived"
	}
}

// deriveVariants generates punctuation-insensitive spellings of a folded canonical.
//
//	vue.js  -> vue, vuejs
//	asp.net -> aspnet
//	.net    -> dotnet
//	node-red -> nodered
//
// A bare "net" is never derived from ".net".
func deriveVariants(key string) []string {
	out := make([]string, 0, 3)
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || v == key {
			return
		}
		for _, existing := range out {
			if existing == v {
				return
			}
		}
		out = append(out, v)
	}

	if strings.HasSuffix(key, ".js") && len(key) > len(".js") {
		base := strings.TrimSuffix(key, ".js")
		add(base)
		add(base + "js")
	}
	if strings.HasPrefix(key, ".") {
		if len(key) > 1 {
			add("dot" + key[1:])
		}
	} else if strings.Contains(key, ".") {
		add(strings.ReplaceAll(key, ".", ""))
	}
	if strings.Contains(key, "-") {
		add(strings.ReplaceAll(key, "-", ""))
	}
	return out
}

// isSingleLetter reports whether a folded variant is one rune long and not allow-listed
func isSingleLetter(key string, allow map[string]struct{}) bool {
	if utf8.RuneCountInString(key) != 1 {
		return false
	}
	_, ok := allow[key]
	return !ok
}

// wordCount returns the number of space-separated words in a normalized variant
func wordCount(key string) int {
	return strings.Count(key, " ") + 1
}

// roundTrips reports whether tokenizing key yields exactly its own words.
// Only such variants can ever be found in text, so others are dropped at build time.
func roundTrips(key string, vocab tokenizer.Vocabulary) bool {
	return strings.Join(tokenizer.Keys(tokenizer.Tokenize(key, vocab)), " ") == key
}
