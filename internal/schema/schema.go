// Package schema validates model envelopes against the embedded JSON
// Schema documents before they are decoded into typed values.
package schema

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	baseURL    = "https://figsiner.dev/schema/"
	sectionURL = baseURL + "section.schema.json"
	patchURL   = baseURL + "patch.schema.json"
)

var (
	//go:embed section.schema.json
	sectionSchema []byte
	//go:embed patch.schema.json
	patchSchema []byte
)

var (
	schemaCacheMu sync.Mutex
	schemaCache   = make(map[string]*jsonschema.Schema)
)

// Issue is one schema violation.
type Issue struct {
	Path    string
	Message string
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Schema string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Path+": "+is.Message)
	}
	return fmt.Sprintf("%s schema validation failed: %s", e.Schema, strings.Join(parts, "; "))
}

// SectionJSON and PatchJSON expose the raw schema documents, for prompts.
func SectionJSON() []byte { return sectionSchema }
func PatchJSON() []byte   { return patchSchema }

// ValidateSection checks a decoded generation envelope.
func ValidateSection(doc any) error {
	return validate("section", sectionURL, doc)
}

// ValidatePatch checks a decoded edit envelope.
func ValidatePatch(doc any) error {
	return validate("patch", patchURL, doc)
}

func validate(name, url string, doc any) error {
	s, err := compiled(url)
	if err != nil {
		return fmt.Errorf("failed to compile %s schema: %w", name, err)
	}
	err = s.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("%s schema validation failed: %w", name, err)
	}
	return &ValidationError{Schema: name, Issues: flatten(ve)}
}

// flatten collects the leaf causes of a validation error. Leaves carry the
// specific messages; inner nodes only say that a combinator failed.
func flatten(ve *jsonschema.ValidationError) []Issue {
	seen := make(map[Issue]bool)
	var out []Issue
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			is := Issue{Path: instancePath(e.InstanceLocation), Message: e.Message}
			if !seen[is] {
				seen[is] = true
				out = append(out, is)
			}
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func instancePath(loc string) string {
	if loc == "" {
		return "/"
	}
	return loc
}

func compiled(url string) (*jsonschema.Schema, error) {
	schemaCacheMu.Lock()
	if cached, ok := schemaCache[url]; ok {
		schemaCacheMu.Unlock()
		return cached, nil
	}
	schemaCacheMu.Unlock()

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(sectionURL, bytes.NewReader(sectionSchema)); err != nil {
		return nil, err
	}
	if err := compiler.AddResource(patchURL, bytes.NewReader(patchSchema)); err != nil {
		return nil, err
	}
	s, err := compiler.Compile(url)
	if err != nil {
		return nil, err
	}

	schemaCacheMu.Lock()
	schemaCache[url] = s
	schemaCacheMu.Unlock()
	return s, nil
}
