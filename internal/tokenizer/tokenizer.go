package tokenizer

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Token is one word of the source text together with its lookup key and byte offsets.
type Token struct {
	Text  string // literal substring of the source text
	Key   string // case-folded form used for taxonomy lookups
	Start int    // byte offset of the first byte of Text
	End   int    // byte offset one past the last byte of Text
}

// Vocabulary reports whether a case-folded word is known as a whole.
// Known words are never split on their internal punctuation.
type Vocabulary interface {
	Contains(key string) bool
}

// WordSet is a map-backed Vocabulary.
type WordSet map[string]struct{}

// Contains implements Vocabulary.
func (w WordSet) Contains(key string) bool {
	_, ok := w[key]
	return ok
}

// Add inserts a word after folding it.
func (w WordSet) Add(word string) {
	w[Fold(word)] = struct{}{}
}

var folders = sync.Pool{
	New: func() any {
		c := cases.Fold()
		return &c
	},
}

// Fold returns the case-folded form of s. ASCII input takes a fast path.
func Fold(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			c := folders.Get().(*cases.Caser)
			folded := c.String(s)
			folders.Put(c)
			return folded
		}
	}
	return strings.ToLower(s)
}

// NormalizeSpace folds s and collapses runs of whitespace to a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(Fold(s)), " ")
}

// isChunkRune reports whether r may appear inside a technical token.
func isChunkRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '+', '#', '.', '/', '-', '_':
		return true
	}
	return false
}

// isSeparator reports whether r splits an unknown chunk into smaller tokens.
func isSeparator(b byte) bool {
	return b == '/' || b == '-' || b == '_' || b == '.'
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokenize splits text into tokens. Chunks found in vocab are kept whole, so
// "C++", ".NET", "Node.js" or "CI/CD" stay atomic when they are known; other
// chunks are split at / - _ . boundaries, preferring the longest known prefix.
// A nil vocab treats every word as unknown.
func Tokenize(text string, vocab Vocabulary) []Token {
	tokens := make([]Token, 0)

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isChunkRune(r) {
			i += size
			continue
		}
		start := i
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if !isChunkRune(r) {
				break
			}
			i += size
		}
		tokens = appendChunk(tokens, text, start, i, vocab)
	}
	return tokens
}

// trimChunk narrows [start,end) to drop leading punctuation (a dot directly
// before a letter survives) and trailing runes other than letters, digits, + and #.
func trimChunk(text string, start, end int) (int, int) {
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if isAlnum(r) {
			break
		}
		if r == '.' && start+size < end {
			next, _ := utf8.DecodeRuneInString(text[start+size : end])
			if unicode.IsLetter(next) {
				break
			}
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if isAlnum(r) || r == '+' || r == '#' {
			break
		}
		end -= size
	}
	return start, end
}

func known(vocab Vocabulary, s string) bool {
	return vocab != nil && vocab.Contains(Fold(s))
}

func newToken(text string, start, end int) Token {
	return Token{Text: text[start:end], Key: Fold(text[start:end]), Start: start, End: end}
}

func appendChunk(tokens []Token, text string, start, end int, vocab Vocabulary) []Token {
	start, end = trimChunk(text, start, end)
	if start >= end {
		return tokens
	}
	chunk := text[start:end]
	if known(vocab, chunk) || !strings.ContainsAny(chunk, "/-_.") {
		return append(tokens, newToken(text, start, end))
	}
	return segment(tokens, text, start, end, vocab)
}

// segment splits an unknown chunk. At every position it tries the longest
// run of parts that forms a known word before falling back to a single part.
func segment(tokens []Token, text string, start, end int, vocab Vocabulary) []Token {
	pos := start
	for pos < end {
		for pos < end && isSeparator(text[pos]) {
			// Keep a dot that opens a word such as ".NET" as a candidate start.
			if text[pos] == '.' && pos+1 < end && !isSeparator(text[pos+1]) {
				if next, ok := longestKnown(text, pos, end, vocab); ok {
					tokens = append(tokens, newToken(text, pos, next))
					pos = next
					continue
				}
			}
			pos++
		}
		if pos >= end {
			break
		}

		if next, ok := longestKnown(text, pos, end, vocab); ok {
			tokens = append(tokens, newToken(text, pos, next))
			pos = next
			continue
		}

		next := pos
		for next < end && !isSeparator(text[next]) {
			next++
		}
		if s, e := trimChunk(text, pos, next); s < e {
			tokens = append(tokens, newToken(text, s, e))
		}
		pos = next
	}
	return tokens
}

// longestKnown returns the end of the longest known word starting at from.
// Candidate ends sit right before a separator or at the end of the chunk.
func longestKnown(text string, from, end int, vocab Vocabulary) (int, bool) {
	if vocab == nil {
		return 0, false
	}
	for e := end; e > from; e-- {
		if e < end && (!isSeparator(text[e]) || isSeparator(text[e-1])) {
			continue
		}
		if isSeparator(text[e-1]) {
			continue
		}
		if vocab.Contains(Fold(text[from:e])) {
			return e, true
		}
	}
	return 0, false
}

// Keys returns the lookup keys of tokens in order.
func Keys(tokens []Token) []string {
	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = t.Key
	}
	return keys
}
