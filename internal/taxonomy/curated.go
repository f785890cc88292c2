package taxonomy

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gcbaptista/skillmatch/internal/tokenizer"
)

//go:embed data/curated.yaml
var defaultCuratedYAML []byte

// CuratedData is the hand-maintained part of the taxonomy: canonical names,
// explicit variant table, blocked words and the single-letter allow-list.
// It is configuration, so extending it never requires code changes.
type CuratedData struct {
	Skills            []string            `yaml:"curated"`
	Variants          map[string][]string `yaml:"variants"`
	Blocked           []string            `yaml:"blocked"`
	SingleLetterAllow []string            `yaml:"single_letter_allow"`
}

// DefaultCurated returns the curated data shipped with the binary
func DefaultCurated() (*CuratedData, error) {
	return ParseCurated(defaultCuratedYAML)
}

// LoadCuratedFile reads curated data from a YAML file, replacing the built-in data
func LoadCuratedFile(path string) (*CuratedData, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read curated file %s: %w", path, err)
	}
	curated, err := ParseCurated(data)
	if err != nil {
		return nil, fmt.Errorf("curated file %s: %w", path, err)
	}
	return curated, nil
}

// ParseCurated decodes curated YAML
func ParseCurated(data []byte) (*CuratedData, error) {
	var curated CuratedData
	if err := yaml.Unmarshal(data, &curated); err != nil {
		return nil, fmt.Errorf("failed to parse curated data: %w", err)
	}
	if curated.Variants == nil {
		curated.Variants = make(map[string][]string)
	}
	return &curated, nil
}

// Digest identifies this configuration. A cache built under a different
// digest is stale. Map and set fields are hashed in sorted order.
func (c *CuratedData) Digest() string {
	h := sha256.New()
	fmt.Fprintf(h, "format:%d\n", FormatVersion)
	for _, s := range c.Skills {
		fmt.Fprintf(h, "skill:%s\n", s)
	}

	keys := make([]string, 0, len(c.Variants))
	for k := range c.Variants {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		values := append([]string(nil), c.Variants[k]...)
		sort.Strings(values)
		fmt.Fprintf(h, "variant:%s=%s\n", k, strings.Join(values, "\x1f"))
	}

	for _, b := range sortedCopy(c.Blocked) {
		fmt.Fprintf(h, "blocked:%s\n", b)
	}
	for _, a := range sortedCopy(c.SingleLetterAllow) {
		fmt.Fprintf(h, "allow:%s\n", a)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *CuratedData) blockedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Blocked))
	for _, b := range c.Blocked {
		set[tokenizer.NormalizeSpace(b)] = struct{}{}
	}
	return set
}

func (c *CuratedData) allowSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.SingleLetterAllow))
	for _, a := range c.SingleLetterAllow {
		set[tokenizer.NormalizeSpace(a)] = struct{}{}
	}
	return set
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
