package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	errNoFrontMatter       = errors.New("missing front matter")
	errUnclosedFrontMatter = errors.New("front matter is not closed")
)

const delimiter = "---"

// frontMatter is the metadata block at the top of a post file
type frontMatter struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Date        string   `json:"date" validate:"required"`
	Tags        []string `json:"tags" validate:"required,min=1,dive,required"`
	Draft       bool     `json:"draft"`
}

var frontMatterValidator = validator.New()

// splitFrontMatter separates the YAML block delimited by "---" lines from
// the markdown that follows it
func splitFrontMatter(source []byte) (meta, body []byte, err error) {
	source = bytes.TrimPrefix(source, []byte("\uFEFF"))
	first, rest, _ := bytes.Cut(source, []byte("\n"))
	if !isDelimiter(first) {
		return nil, nil, errNoFrontMatter
	}

	for offset := 0; ; {
		line, next, more := bytes.Cut(rest[offset:], []byte("\n"))
		if isDelimiter(line) {
			return rest[:offset], next, nil
		}
		if !more {
			return nil, nil, errUnclosedFrontMatter
		}
		offset += len(line) + 1
	}
}

func isDelimiter(line []byte) bool {
	return strings.TrimRight(string(line), " \t\r") == delimiter
}

// decodeFrontMatter parses, schema checks, and validates a front matter block
func decodeFrontMatter(meta []byte, schema *Schema) (*frontMatter, error) {
	var doc interface{}
	if err := yaml.Unmarshal(meta, &doc); err != nil {
		return nil, fmt.Errorf("invalid front matter YAML: %w", err)
	}

	// JSON is the common denominator between the YAML document, the schema
	// validator, and the typed struct
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("front matter is not representable as JSON: %w", err)
	}
	var normalized interface{}
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, err
	}
	if err := schema.Validate(normalized); err != nil {
		return nil, err
	}

	var fm frontMatter
	if err := json.Unmarshal(raw, &fm); err != nil {
		return nil, fmt.Errorf("invalid front matter: %w", err)
	}
	if err := frontMatterValidator.Struct(&fm); err != nil {
		return nil, fmt.Errorf("invalid front matter: %w", err)
	}
	return &fm, nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp
func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", value)
}
