package criteria

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Document is a reference text describing the criteria for one condition.
type Document struct {
	Condition string `yaml:"condition"`
	Text      string `yaml:"text"`
}

type catalogFile struct {
	Documents []Document `yaml:"documents"`
}

// DefaultDocuments returns the built-in criteria reference set.
func DefaultDocuments() ([]Document, error) {
	return ParseDocuments(catalogYAML)
}

// ParseDocuments decodes a YAML criteria catalog. Entries without text are rejected.
func ParseDocuments(data []byte) ([]Document, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("criteria: parse catalog: %w", err)
	}
	docs := make([]Document, 0, len(file.Documents))
	for i, doc := range file.Documents {
		doc.Condition = strings.TrimSpace(doc.Condition)
		doc.Text = strings.TrimSpace(doc.Text)
		if doc.Text == "" {
			return nil, fmt.Errorf("criteria: catalog entry %d has no text", i)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
