package typoutil

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultMaxCacheSize = 1000
	defaultTimeLimit    = 50 * time.Millisecond
)

// Suggester finds known terms close to a misspelled one. Results are cached
// per term and distance until the term list is replaced.
type Suggester struct {
	mu    sync.RWMutex
	terms []string
	cache map[string][]string

	maxCacheSize int
	timeLimit    time.Duration
	logger       logrus.FieldLogger
}

// NewSuggester creates a suggester over a copy of terms
func NewSuggester(terms []string, logger logrus.FieldLogger) *Suggester {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Suggester{
		maxCacheSize: defaultMaxCacheSize,
		timeLimit:    defaultTimeLimit,
		logger:       logger,
	}
	s.SetTerms(terms)
	return s
}

// SetTerms replaces the term list and clears the cache
func (s *Suggester) SetTerms(terms []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms = append([]string(nil), terms...)
	s.cache = make(map[string][]string)
}

// Len returns the number of known terms
func (s *Suggester) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.terms)
}

type candidate struct {
	term string
	dist int
}

// Suggest returns up to maxResults terms within maxDistance of term, closest
// first and alphabetical among equals. The term itself is never suggested.
func (s *Suggester) Suggest(term string, maxDistance, maxResults int) []string {
	if term == "" || maxDistance <= 0 || maxResults <= 0 {
		return []string{}
	}

	cacheKey := term + "\x00" + strconv.Itoa(maxDistance)
	s.mu.RLock()
	cached, ok := s.cache[cacheKey]
	terms := s.terms
	s.mu.RUnlock()
	if ok {
		return truncate(cached, maxResults)
	}

	found := s.scan(term, terms, maxDistance)

	s.mu.Lock()
	if len(s.cache) < s.maxCacheSize {
		s.cache[cacheKey] = found
	}
	s.mu.Unlock()

	return truncate(found, maxResults)
}

func (s *Suggester) scan(term string, terms []string, maxDistance int) []string {
	query := []rune(term)
	started := time.Now()
	candidates := make([]candidate, 0)

	for i, t := range terms {
		if time.Since(started) >= s.timeLimit {
			s.logger.WithFields(logrus.Fields{
				"term":      term,
				"found":     len(candidates),
				"unchecked": len(terms) - i,
			}).Warn("Suggestion search time limit reached")
			break
		}
		if t == term {
			continue
		}
		if d := boundedDistance(query, []rune(t), maxDistance); d > 0 && d <= maxDistance {
			candidates = append(candidates, candidate{term: t, dist: d})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].term < candidates[j].term
	})

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.term
	}
	return out
}

func truncate(terms []string, n int) []string {
	if len(terms) > n {
		terms = terms[:n]
	}
	return append([]string{}, terms...)
}
