// Package synonyms provides the static, curated synonym graph consulted by
// the matcher. The dictionary is loaded once from an embedded data file into
// an immutable graph; alternate dictionaries can be loaded for tests.
package synonyms

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gastobot/gastobot/internal/text"
)

//go:embed data/synonyms.yaml
var embeddedDictionary []byte

type dictionaryFile struct {
	Terms map[string][]string `yaml:"terms"`
}

// Graph is an immutable bidirectional keyword association table. All terms
// are stored normalized and singularized, matching tokenizer output.
type Graph struct {
	adjacency map[string]map[string]struct{}
}

// Load parses a dictionary and builds the bidirectional graph.
func Load(data []byte) (*Graph, error) {
	var file dictionaryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse synonym dictionary: %w", err)
	}

	g := &Graph{adjacency: make(map[string]map[string]struct{})}

	for key, values := range file.Terms {
		keyTokens := text.Tokenize(key)
		for _, value := range values {
			for _, kt := range keyTokens {
				for _, vt := range text.Tokenize(value) {
					g.link(kt, vt)
					g.link(vt, kt)
				}
			}
		}
	}

	return g, nil
}

// Default loads the embedded dictionary. The embedded file is validated by
// tests, so a parse failure here is a build defect.
func Default() (*Graph, error) {
	return Load(embeddedDictionary)
}

func (g *Graph) link(from, to string) {
	if from == to {
		return
	}
	if g.adjacency[from] == nil {
		g.adjacency[from] = make(map[string]struct{})
	}
	g.adjacency[from][to] = struct{}{}
}

// Related reports whether an association from one term to another exists.
// The graph is built symmetrically, so Related(a, b) == Related(b, a) for
// dictionary entries.
func (g *Graph) Related(from, to string) bool {
	_, ok := g.adjacency[from][to]
	return ok
}

// Len returns the number of distinct terms in the graph.
func (g *Graph) Len() int {
	return len(g.adjacency)
}
