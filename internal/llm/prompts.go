package llm

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"figsiner/internal/section"
)

var (
	//go:embed prompts/section-generate.txt
	generateTemplate string
	//go:embed prompts/section-edit.txt
	editTemplate string
	//go:embed prompts/design-rules.md
	designRules string
)

var placeholder = regexp.MustCompile(`<<<\{(.*?)\}>>>`)

// Substitute replaces every <<<{KEY}>>> in template. Unknown keys become "".
func Substitute(template string, replacements map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		return replacements[key]
	})
}

// PromptBuilder assembles the system prompts sent with each request.
type PromptBuilder struct {
	tokens  string
	rules   string
	catalog string
}

// NewPromptBuilder embeds the given token table and component catalog, both
// JSON, into every prompt.
func NewPromptBuilder(tokensJSON, catalogJSON []byte) *PromptBuilder {
	return &PromptBuilder{
		tokens:  indentJSON(tokensJSON),
		rules:   strings.TrimSpace(designRules),
		catalog: indentJSON(catalogJSON),
	}
}

func (pb *PromptBuilder) common() map[string]string {
	return map[string]string{
		"DESIGN_TOKENS_JSON":     pb.tokens,
		"DESIGN_RULES_MARKDOWN":  pb.rules,
		"COMPONENT_CATALOG_JSON": pb.catalog,
	}
}

func (pb *PromptBuilder) Generate(brief string) string {
	r := pb.common()
	r["USER_BRIEF"] = strings.TrimSpace(brief)
	return Substitute(generateTemplate, r)
}

func (pb *PromptBuilder) Edit(current *section.Section, brief string) (string, error) {
	b, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode current section: %w", err)
	}
	r := pb.common()
	r["CURRENT_SECTION_JSON"] = string(b)
	r["EDIT_BRIEF"] = strings.TrimSpace(brief)
	return Substitute(editTemplate, r), nil
}

func indentJSON(b []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, b, "", "  "); err != nil {
		return strings.TrimSpace(string(b))
	}
	return out.String()
}
