// Package intent holds the static catalog mapping intent names to SQL and
// answer templates. The catalog is loaded once at startup and never mutated.
package intent

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed intents.yaml
var defaultCatalog []byte

var ErrNotFound = errors.New("intent not found")

type Definition struct {
	Name           string   `yaml:"intent"`
	Params         []string `yaml:"params"`
	SQLTemplate    string   `yaml:"sql_query"`
	AnswerTemplate string   `yaml:"answer"`
	Summary        string   `yaml:"summary"`
}

// Render substitutes params into both templates. A placeholder with no
// matching param fails; params with no matching placeholder are ignored.
func (d *Definition) Render(params map[string]any) (sql, answer string, err error) {
	sql, err = Render(d.SQLTemplate, params)
	if err != nil {
		return "", "", err
	}
	answer, err = Render(d.AnswerTemplate, params)
	if err != nil {
		return "", "", err
	}
	return sql, answer, nil
}

type Catalog struct {
	schema      string
	definitions []Definition
	byName      map[string]int
}

type catalogFile struct {
	Schema  string       `yaml:"schema"`
	Intents []Definition `yaml:"intents"`
}

func NewCatalog(schema string, definitions []Definition) (*Catalog, error) {
	byName := make(map[string]int, len(definitions))
	for i, def := range definitions {
		if def.Name == "" {
			return nil, fmt.Errorf("intent at index %d has no name", i)
		}
		if _, dup := byName[def.Name]; dup {
			return nil, fmt.Errorf("duplicate intent name: %s", def.Name)
		}
		byName[def.Name] = i
	}

	return &Catalog{
		schema:      schema,
		definitions: definitions,
		byName:      byName,
	}, nil
}

// Load reads the catalog from path, or the embedded default when path is
// empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return parse(defaultCatalog)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read intents file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse intents file: %w", err)
	}
	if len(file.Intents) == 0 {
		return nil, fmt.Errorf("intents file defines no intents")
	}
	return NewCatalog(file.Schema, file.Intents)
}

// All returns the definitions in declaration order, for prompt rendering.
func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.definitions))
	copy(out, c.definitions)
	return out
}

func (c *Catalog) Schema() string {
	return c.schema
}

func (c *Catalog) Find(name string) (*Definition, error) {
	i, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return &c.definitions[i], nil
}
