package taxonomy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/skillmatch/internal/errors"
	"github.com/gcbaptista/skillmatch/internal/tokenizer"
	"github.com/gcbaptista/skillmatch/model"
	"github.com/gcbaptista/skillmatch/services"
)

// maxConcurrentFetches bounds parallel source fetches during a build
const maxConcurrentFetches = 4

// FetchedList is the outcome of reading one external source
type FetchedList struct {
	Source string
	Names  []string
	Err    error
}

// BuildReport describes what a build merged, dropped and resolved
type BuildReport struct {
	Entries       int      `json:"entries"`
	Variants      int      `json:"variants"`
	Sources       []string `json:"sources"`
	FailedSources []string `json:"failed_sources,omitempty"`
	Partial       bool     `json:"partial"`
	Warnings      []string `json:"warnings,omitempty"`
}

func (r *BuildReport) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Build fetches every source and compiles the result with the curated data.
// A failing source makes the build partial; it never aborts the build.
func Build(ctx context.Context, curated *CuratedData, sources []services.SkillSource, logger logrus.FieldLogger) (*Taxonomy, *BuildReport, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	fetched := FetchAll(ctx, sources)
	for _, f := range fetched {
		if f.Err != nil {
			logger.WithError(f.Err).WithField("source", f.Source).Warn("Skill source unavailable, building without it")
		} else {
			logger.WithFields(logrus.Fields{"source": f.Source, "names": len(f.Names)}).Debug("Fetched skill source")
		}
	}

	tax, report, err := Compile(curated, fetched)
	if err != nil {
		return nil, report, err
	}
	logger.WithFields(logrus.Fields{
		"entries":  report.Entries,
		"variants": report.Variants,
		"partial":  report.Partial,
		"warnings": len(report.Warnings),
	}).Info("Built skill taxonomy")
	return tax, report, nil
}

// FetchAll reads every source concurrently. Results keep the order of sources.
func FetchAll(ctx context.Context, sources []services.SkillSource) []FetchedList {
	results := make([]FetchedList, len(sources))
	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, src := range sources {
		i, src := i, src
		results[i].Source = SourceName(src, i)
		g.Go(func() error {
			names, err := src.FetchSkills(ctx)
			if err != nil {
				results[i].Err = errors.NewSourceFetchError(results[i].Source, err)
				return nil
			}
			results[i].Names = names
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// SourceName returns the source's own name or a positional fallback
func SourceName(src services.SkillSource, i int) string {
	if named, ok := src.(services.NamedSource); ok && named.SourceName() != "" {
		return named.SourceName()
	}
	return fmt.Sprintf("source-%d", i)
}

type candidate struct {
	key     string // folded canonical
	display string
	source  model.SkillSourceKind
	alive   bool
}

type claim struct {
	cand *candidate
	kind claimKind
}

// outranks reports whether a beats b for the same variant
func (a claim) outranks(b claim) bool {
	if a.cand.source != b.cand.source {
		return a.cand.source == model.SourceCurated
	}
	return a.kind < b.kind
}

// Compile merges curated data with fetched name lists into a taxonomy.
// It is a pure function of its inputs: identical inputs give identical artifacts.
func Compile(curated *CuratedData, fetched []FetchedList) (*Taxonomy, *BuildReport, error) {
	if curated == nil {
		curated = &CuratedData{}
	}
	report := &BuildReport{}
	allow := curated.allowSet()
	blocked := curated.blockedSet()

	// Canonical candidates, curated first so curated casing wins on a shared name.
	byKey := make(map[string]*candidate)
	ordered := make([]*candidate, 0, len(curated.Skills))
	addCandidate := func(name string, source model.SkillSourceKind, origin string) {
		display := strings.Join(strings.Fields(name), " ")
		if display == "" {
			return
		}
		key := tokenizer.NormalizeSpace(display)
		if isSingleLetter(key, allow) {
			report.warnf("dropped single-letter skill '%s' from %s", display, origin)
			return
		}
		if source == model.SourceFetched {
			if _, isBlocked := blocked[key]; isBlocked {
				report.warnf("dropped blocked skill '%s' from %s", display, origin)
				return
			}
		}
		if existing, ok := byKey[key]; ok {
			if existing.display != display {
				report.warnf("'%s' from %s merged into '%s'", display, origin, existing.display)
			}
			return
		}
		c := &candidate{key: key, display: display, source: source, alive: true}
		byKey[key] = c
		ordered = append(ordered, c)
	}

	for _, name := range curated.Skills {
		addCandidate(name, model.SourceCurated, "curated list")
	}
	for _, f := range fetched {
		report.Sources = append(report.Sources, f.Source)
		if f.Err != nil {
			report.FailedSources = append(report.FailedSources, f.Source)
			report.Partial = true
			continue
		}
		for _, name := range f.Names {
			addCandidate(name, model.SourceFetched, f.Source)
		}
	}

	// Claims per variant.
	claims := make(map[string][]claim)
	addClaim := func(variant string, c *candidate, kind claimKind) {
		if variant == "" || isSingleLetter(variant, allow) {
			return
		}
		for i, existing := range claims[variant] {
			if existing.cand == c {
				if kind < existing.kind {
					claims[variant][i].kind = kind
				}
				return
			}
		}
		claims[variant] = append(claims[variant], claim{cand: c, kind: kind})
	}

	for _, c := range ordered {
		addClaim(c.key, c, claimSelf)
		for _, v := range deriveVariants(c.key) {
			if _, isBlocked := blocked[v]; isBlocked {
				continue
			}
			addClaim(v, c, claimDerived)
		}
	}

	tableKeys := make([]string, 0, len(curated.Variants))
	for k := range curated.Variants {
		tableKeys = append(tableKeys, k)
	}
	sort.Strings(tableKeys)
	for _, canonical := range tableKeys {
		c, ok := byKey[tokenizer.NormalizeSpace(canonical)]
		if !ok {
			report.warnf("variant table row '%s' skipped: no such canonical skill", canonical)
			continue
		}
		for _, v := range curated.Variants[canonical] {
			addClaim(tokenizer.NormalizeSpace(v), c, claimTable)
		}
	}

	// Drop variants the tokenizer can never reproduce, e.g. names with parentheses.
	vocab := tokenizer.WordSet{}
	for v := range claims {
		for _, w := range strings.Split(v, " ") {
			vocab[w] = struct{}{}
		}
	}
	for _, v := range sortedKeys(claims) {
		if !roundTrips(v, vocab) {
			report.warnf("variant '%s' dropped: it cannot be matched as written", v)
			delete(claims, v)
		}
	}

	winners, err := resolve(claims, report)
	if err != nil {
		return nil, report, err
	}

	won := make(map[*candidate][]string)
	for v, c := range winners {
		won[c] = append(won[c], v)
	}

	entries := make([]model.SkillEntry, 0, len(won))
	for _, c := range ordered {
		if !c.alive {
			continue
		}
		variants, ok := won[c]
		if !ok {
			report.warnf("'%s' dropped: none of its variants can be matched", c.display)
			continue
		}
		sort.Strings(variants)
		longest := 1
		for _, v := range variants {
			if n := wordCount(v); n > longest {
				longest = n
			}
		}
		entries = append(entries, model.SkillEntry{
			Canonical:   c.display,
			Variants:    variants,
			TokenLength: longest,
			Source:      c.source,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return tokenizer.NormalizeSpace(entries[i].Canonical) < tokenizer.NormalizeSpace(entries[j].Canonical)
	})

	if len(entries) == 0 {
		return nil, report, errors.NewTaxonomyUnavailableError("no skills could be built from the configured sources", nil)
	}

	meta := Metadata{
		FormatVersion: FormatVersion,
		ConfigDigest:  curated.Digest(),
		SourceDigest:  sourceDigest(curated, fetched),
		Sources:       append([]string(nil), report.Sources...),
		Partial:       report.Partial,
	}
	tax, err := newTaxonomy(meta, entries)
	if err != nil {
		return nil, report, fmt.Errorf("taxonomy invariant violated: %w", err)
	}
	report.Entries = tax.Len()
	report.Variants = len(tax.byVariant)
	return tax, report, nil
}

// resolve picks one owner per variant. An entry that loses its own canonical
// name is dropped and resolution restarts without it.
func resolve(claims map[string][]claim, report *BuildReport) (map[string]*candidate, error) {
	variants := sortedKeys(claims)
	for {
		winners := make(map[string]*candidate, len(claims))
		var dropped *candidate
		var kept []string

		for _, v := range variants {
			var best *claim
			for i := range claims[v] {
				cl := claims[v][i]
				if !cl.cand.alive {
					continue
				}
				if best == nil {
					best = &claims[v][i]
					continue
				}
				switch {
				case cl.outranks(*best):
					best = &claims[v][i]
				case best.outranks(cl):
				case cl.kind == claimTable:
					first, second := best.cand.display, cl.cand.display
					if cl.cand.key < best.cand.key {
						first, second = second, first
					}
					return nil, errors.NewVariantConflictError(v, first, second)
				default:
					if cl.cand.key < best.cand.key {
						best = &claims[v][i]
					}
				}
			}
			if best == nil {
				continue
			}
			winners[v] = best.cand

			for _, cl := range claims[v] {
				if cl.cand == best.cand || !cl.cand.alive {
					continue
				}
				if cl.kind == claimSelf {
					dropped = cl.cand
					report.warnf("'%s' dropped: its name is a %s variant of '%s'", cl.cand.display, best.kind, best.cand.display)
					break
				}
				if cl.kind == best.kind && cl.cand.source == best.cand.source {
					kept = append(kept, fmt.Sprintf("variant '%s' kept by '%s' over '%s'", v, best.cand.display, cl.cand.display))
				}
			}
			if dropped != nil {
				break
			}
		}

		if dropped == nil {
			report.Warnings = append(report.Warnings, kept...)
			return winners, nil
		}
		dropped.alive = false
	}
}

func sourceDigest(curated *CuratedData, fetched []FetchedList) string {
	h := sha256.New()
	fmt.Fprintf(h, "config:%s\n", curated.Digest())
	for _, f := range fetched {
		if f.Err != nil {
			fmt.Fprintf(h, "source:%s:failed\n", f.Source)
			continue
		}
		fmt.Fprintf(h, "source:%s:%d\n", f.Source, len(f.Names))
		for _, n := range f.Names {
			fmt.Fprintf(h, "%s\n", n)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
