package tokenizer

import (
	"reflect"
	"testing"
)

func testVocab() WordSet {
	vocab := WordSet{}
	for _, w := range []string{"c++", "c#", ".net", "node.js", "ci/cd", "asp.net", "python", "django", "node-red", "google", "cloud"} {
		vocab.Add(w)
	}
	return vocab
}

func TestTokenize(t *testing.T) {
	vocab := testVocab()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"simple words", "hello world", []string{"hello", "world"}},
		{"with punctuation", "hello, world!", []string{"hello", "world"}},
		{"leading/trailing spaces", "  hello world  ", []string{"hello", "world"}},
		{"camelCase is kept whole", "JavaScript developer", []string{"JavaScript", "developer"}},
		{"plus plus", "C++ and C#", []string{"C++", "and", "C#"}},
		{"trailing sentence dot", "We use Docker.", []string{"We", "use", "Docker"}},
		{"trailing dot after plus", "Know C++.", []string{"Know", "C++"}},
		{"leading dot word", "Built on .NET", []string{"Built", "on", ".NET"}},
		{"known dotted word", "Node.js backend", []string{"Node.js", "backend"}},
		{"unknown dotted word is split", "Vue.js app", []string{"Vue", "js", "app"}},
		{"known slash word", "CI/CD pipelines", []string{"CI/CD", "pipelines"}},
		{"slash between known words", "Python/Django", []string{"Python", "Django"}},
		{"longest known prefix", "Node.js/React", []string{"Node.js", "React"}},
		{"slash then dot word", "C#/.NET", []string{"C#", ".NET"}},
		{"known hyphenated word", "Node-RED flows", []string{"Node-RED", "flows"}},
		{"unknown hyphenated word", "state-of-the-art", []string{"state", "of", "the", "art"}},
		{"underscore split", "my_variable", []string{"my", "variable"}},
		{"only symbols", "!@#$%^", []string{}},
		{"numbers", "3.5 years", []string{"3", "5", "years"}},
		{"parenthesised", "(Python)", []string{"Python"}},
		{"hashtag", "#python", []string{"python"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]string, 0)
			for _, tok := range Tokenize(tt.input, vocab) {
				got = append(got, tok.Text)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizeNilVocabulary(t *testing.T) {
	got := Keys(Tokenize("Node.js and C++", nil))
	want := []string{"node", "js", "and", "c++"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize with nil vocabulary = %v, want %v", got, want)
	}
}

func TestTokenOffsets(t *testing.T) {
	text := "Senior  C#/.NET dev"
	tokens := Tokenize(text, testVocab())
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %d: %+v", len(tokens), tokens)
	}
	for _, tok := range tokens {
		if text[tok.Start:tok.End] != tok.Text {
			t.Errorf("offsets [%d:%d] give %q, token text is %q", tok.Start, tok.End, text[tok.Start:tok.End], tok.Text)
		}
	}
	if tokens[2].Text != ".NET" || tokens[2].Key != ".net" {
		t.Errorf("unexpected third token %+v", tokens[2])
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Python", "python"},
		{"NODE.JS", "node.js"},
		{"C#", "c#"},
		{"ÉLAN", "élan"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Fold(tt.input); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeSpace(t *testing.T) {
	if got := NormalizeSpace("  Google \t Cloud\n"); got != "google cloud" {
		t.Errorf("NormalizeSpace = %q, want %q", got, "google cloud")
	}
}
