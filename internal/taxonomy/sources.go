package taxonomy

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultLinguistURL is the GitHub Linguist language list
const DefaultLinguistURL = "https://raw.githubusercontent.com/github/linguist/master/lib/linguist/languages.yml"

// maxSourceBytes caps how much of a remote list is read
const maxSourceBytes = 16 << 20

// StaticSource serves a fixed in-memory list. Err, when set, is returned instead.
type StaticSource struct {
	Name  string
	Names []string
	Err   error
}

// FetchSkills implements services.SkillSource
func (s StaticSource) FetchSkills(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]string(nil), s.Names...), nil
}

// SourceName implements services.NamedSource
func (s StaticSource) SourceName() string {
	if s.Name == "" {
		return "static"
	}
	return s.Name
}

// LinguistSource reads language names from a Linguist languages.yml document.
// Top-level keys are the names; Types, when set, keeps only languages whose
// "type" field is listed (e.g. "programming").
type LinguistSource struct {
	URL    string
	Types  []string
	Client *http.Client
}

// NewLinguistSource creates a Linguist source with its own HTTP client
func NewLinguistSource(url string, timeout time.Duration, types []string) *LinguistSource {
	if url == "" {
		url = DefaultLinguistURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &LinguistSource{
		URL:    url,
		Types:  types,
		Client: &http.Client{Timeout: timeout},
	}
}

// SourceName implements services.NamedSource
func (s *LinguistSource) SourceName() string {
	return "linguist"
}

// FetchSkills implements services.SkillSource
func (s *LinguistSource) FetchSkills(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid linguist url: %w", err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, s.URL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.URL, err)
	}
	return ParseLinguist(body, s.Types)
}

// ParseLinguist returns the top-level keys of a languages.yml document in file order
func ParseLinguist(data []byte, types []string) ([]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse languages document: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("languages document is not a mapping")
	}

	wanted := make(map[string]struct{}, len(types))
	for _, t := range types {
		wanted[strings.ToLower(t)] = struct{}{}
	}

	root := doc.Content[0]
	names := make([]string, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if len(wanted) > 0 {
			if _, ok := wanted[languageType(value)]; !ok {
				continue
			}
		}
		names = append(names, key.Value)
	}
	return names, nil
}

func languageType(node *yaml.Node) string {
	if node.Kind != yaml.MappingNode {
		return ""
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "type" {
			return strings.ToLower(node.Content[i+1].Value)
		}
	}
	return ""
}

// FileSource reads one skill name per line. Blank lines and lines starting with # are ignored.
type FileSource struct {
	Path string
}

// SourceName implements services.NamedSource
func (s FileSource) SourceName() string {
	return "file:" + s.Path
}

// FetchSkills implements services.SkillSource
func (s FileSource) FetchSkills(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read skill list %s: %w", s.Path, err)
	}

	names := make([]string, 0)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan skill list %s: %w", s.Path, err)
	}
	return names, nil
}
