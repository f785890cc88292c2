// Package taxonomy holds the canonical universe of recognized skills, the
// variant-to-canonical mapping, and the build/cache lifecycle around them.
package taxonomy

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
	"strings"

	"github.com/gcbaptista/skillmatch/internal/tokenizer"
	"github.com/gcbaptista/skillmatch/model"
)

// FormatVersion changes whenever the artifact layout or build rules change.
const FormatVersion = 1

// Metadata identifies how a taxonomy was built
type Metadata struct {
	FormatVersion int
	ConfigDigest  string   // digest of the curated data and filters
	SourceDigest  string   // digest of every merged input
	Sources       []string // source names in merge order
	Partial       bool     // at least one configured source failed
}

// Taxonomy is an immutable mapping from variant strings to canonical skills.
// It is safe for concurrent readers; nothing mutates it after construction.
type Taxonomy struct {
	meta      Metadata
	entries   []model.SkillEntry
	byVariant map[string]int
	multiWord []int // distinct word counts above one, descending
	vocab     tokenizer.WordSet
}

// artifact is the gob payload. It holds only slices so the encoding is deterministic.
type artifact struct {
	Meta    Metadata
	Entries []model.SkillEntry
}

// newTaxonomy indexes entries and checks the taxonomy invariants
func newTaxonomy(meta Metadata, entries []model.SkillEntry) (*Taxonomy, error) {
	t := &Taxonomy{
		meta:      meta,
		entries:   entries,
		byVariant: make(map[string]int),
		vocab:     tokenizer.WordSet{},
	}

	canonicals := make(map[string]string, len(entries))
	lengths := make(map[int]struct{})
	for i, entry := range entries {
		if strings.TrimSpace(entry.Canonical) == "" {
			return nil, fmt.Errorf("entry %d has an empty canonical name", i)
		}
		key := tokenizer.NormalizeSpace(entry.Canonical)
		if prev, dup := canonicals[key]; dup {
			return nil, fmt.Errorf("canonical '%s' duplicates '%s'", entry.Canonical, prev)
		}
		canonicals[key] = entry.Canonical

		if len(entry.Variants) == 0 {
			return nil, fmt.Errorf("canonical '%s' has no variants", entry.Canonical)
		}
		for _, v := range entry.Variants {
			if v == "" || v != tokenizer.NormalizeSpace(v) {
				return nil, fmt.Errorf("canonical '%s' has unnormalized variant '%s'", entry.Canonical, v)
			}
			if owner, taken := t.byVariant[v]; taken {
				return nil, fmt.Errorf("variant '%s' maps to both '%s' and '%s'", v, entries[owner].Canonical, entry.Canonical)
			}
			t.byVariant[v] = i
			for _, w := range strings.Split(v, " ") {
				t.vocab[w] = struct{}{}
			}
			if n := wordCount(v); n > 1 {
				lengths[n] = struct{}{}
			}
		}
	}

	for n := range lengths {
		t.multiWord = append(t.multiWord, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(t.multiWord)))
	return t, nil
}

// Lookup returns the entry a variant maps to. The key is normalized first.
func (t *Taxonomy) Lookup(variant string) (model.SkillEntry, bool) {
	i, ok := t.byVariant[tokenizer.NormalizeSpace(variant)]
	if !ok {
		return model.SkillEntry{}, false
	}
	return t.entries[i], true
}

// LookupKey is Lookup for a key that is already folded and single-spaced.
// It returns the canonical name only, for the extraction hot path.
func (t *Taxonomy) LookupKey(key string) (string, bool) {
	i, ok := t.byVariant[key]
	if !ok {
		return "", false
	}
	return t.entries[i].Canonical, true
}

// MultiWordLengths returns the distinct multi-word variant lengths, longest first.
// Callers must not modify the returned slice.
func (t *Taxonomy) MultiWordLengths() []int {
	return t.multiWord
}

// Vocabulary returns every word that appears in any variant
func (t *Taxonomy) Vocabulary() tokenizer.Vocabulary {
	return t.vocab
}

// Len returns the number of canonical entries
func (t *Taxonomy) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entries, sorted by folded canonical name
func (t *Taxonomy) Entries() []model.SkillEntry {
	out := make([]model.SkillEntry, len(t.entries))
	for i, e := range t.entries {
		e.Variants = append([]string(nil), e.Variants...)
		out[i] = e
	}
	return out
}

// Variants returns every variant key in sorted order
func (t *Taxonomy) Variants() []string {
	out := make([]string, 0, len(t.byVariant))
	for v := range t.byVariant {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Metadata returns the build metadata
func (t *Taxonomy) Metadata() Metadata {
	m := t.meta
	m.Sources = append([]string(nil), t.meta.Sources...)
	return m
}

// Stats summarizes the taxonomy
func (t *Taxonomy) Stats() model.TaxonomyStats {
	stats := model.TaxonomyStats{
		Entries:       len(t.entries),
		Variants:      len(t.byVariant),
		BySource:      make(map[string]int),
		FormatVersion: t.meta.FormatVersion,
		ConfigDigest:  t.meta.ConfigDigest,
		SourceDigest:  t.meta.SourceDigest,
		Sources:       append([]string(nil), t.meta.Sources...),
		Partial:       t.meta.Partial,
	}
	for _, e := range t.entries {
		stats.BySource[string(e.Source)]++
		if e.TokenLength > 1 {
			stats.MultiWordEntries++
		}
	}
	return stats
}

// GobEncode serializes the taxonomy. Indices are rebuilt on decode.
func (t *Taxonomy) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(artifact{Meta: t.meta, Entries: t.entries}); err != nil {
		return nil, fmt.Errorf("failed to encode taxonomy: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode restores a taxonomy and re-validates its invariants
func (t *Taxonomy) GobDecode(data []byte) error {
	var a artifact
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&a); err != nil {
		return fmt.Errorf("failed to decode taxonomy: %w", err)
	}
	decoded, err := newTaxonomy(a.Meta, a.Entries)
	if err != nil {
		return fmt.Errorf("invalid taxonomy artifact: %w", err)
	}
	*t = *decoded
	return nil
}
