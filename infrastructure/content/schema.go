package content

import (
	_ "embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed frontmatter.schema.json
var frontMatterSchema string

// Schema validates front matter documents
type Schema struct {
	compiled *jsonschema.Schema
}

// NewSchema compiles the front matter schema
func NewSchema() (*Schema, error) {
	compiled, err := jsonschema.CompileString("frontmatter.schema.json", frontMatterSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile front matter schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// Validate checks a document decoded from JSON against the schema
func (s *Schema) Validate(doc interface{}) error {
	if err := s.compiled.Validate(doc); err != nil {
		return fmt.Errorf("front matter does not match schema: %w", err)
	}
	return nil
}
