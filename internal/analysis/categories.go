package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/newsinsight/internal/errs"
)

// CategoryMap is an insertion-ordered mapping from category name to keywords.
// Keywords are stored normalized. A CategoryMap is read-only once built.
type CategoryMap struct {
	names    []string
	keywords map[string][]string
}

// NewCategoryMap builds a map from name/keyword pairs, keeping the given order.
func NewCategoryMap(entries ...CategoryEntry) (CategoryMap, error) {
	m := CategoryMap{keywords: make(map[string][]string, len(entries))}
	for _, e := range entries {
		if err := m.add(e.Name, e.Keywords); err != nil {
			return CategoryMap{}, err
		}
	}
	return m, nil
}

// CategoryEntry is one category of a CategoryMap.
type CategoryEntry struct {
	Name     string
	Keywords []string
}

func (m *CategoryMap) add(name string, keywords []string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("category name must not be empty")
	}
	if _, dup := m.keywords[name]; dup {
		return fmt.Errorf("category %q defined twice", name)
	}

	kws := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = Normalize(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		kws = append(kws, k)
	}
	m.names = append(m.names, name)
	m.keywords[name] = kws
	return nil
}

// Names returns category names in insertion order.
func (m CategoryMap) Names() []string {
	return append([]string(nil), m.names...)
}

func (m CategoryMap) Keywords(name string) []string {
	return append([]string(nil), m.keywords[name]...)
}

func (m CategoryMap) Len() int { return len(m.names) }

// LoadCategoryMap reads a category map from a JSON or YAML file.
// Missing or malformed files produce a config error.
func LoadCategoryMap(path string) (CategoryMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CategoryMap{}, errs.Config("load category map", fmt.Errorf("read %s: %w", path, err))
	}
	m, err := ParseCategoryMap(data)
	if err != nil {
		return CategoryMap{}, errs.Config("load category map", fmt.Errorf("parse %s: %w", path, err))
	}
	return m, nil
}

// ParseCategoryMap decodes a `{"category": ["kw", ...]}` document. JSON is
// decoded token by token and YAML through yaml.Node so the file order is
// kept either way.
func ParseCategoryMap(data []byte) (CategoryMap, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return CategoryMap{}, errors.New("category map is empty")
	}
	if json.Valid(trimmed) {
		return parseJSONCategories(trimmed)
	}
	return parseYAMLCategories(trimmed)
}

func parseJSONCategories(data []byte) (CategoryMap, error) {
	m := CategoryMap{keywords: make(map[string][]string)}
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return CategoryMap{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return CategoryMap{}, errors.New("category map must be an object of category to keyword list")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return CategoryMap{}, err
		}
		name, _ := tok.(string)

		var keywords []string
		if err := dec.Decode(&keywords); err != nil {
			return CategoryMap{}, fmt.Errorf("category %q: keywords must be a list of strings: %w", name, err)
		}
		if err := m.add(name, keywords); err != nil {
			return CategoryMap{}, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return CategoryMap{}, err
	}
	return m, nil
}

func parseYAMLCategories(data []byte) (CategoryMap, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return CategoryMap{}, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return CategoryMap{}, errors.New("category map is empty")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return CategoryMap{}, errors.New("category map must be a mapping of category to keyword list")
	}

	m := CategoryMap{keywords: make(map[string][]string, len(root.Content)/2)}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]

		var keywords []string
		switch {
		case value.Kind == yaml.SequenceNode:
			if err := value.Decode(&keywords); err != nil {
				return CategoryMap{}, fmt.Errorf("category %q: %w", key.Value, err)
			}
		case value.Kind == yaml.ScalarNode && value.Tag == "!!null":
		default:
			return CategoryMap{}, fmt.Errorf("category %q: keywords must be a list", key.Value)
		}
		if err := m.add(key.Value, keywords); err != nil {
			return CategoryMap{}, err
		}
	}
	return m, nil
}
