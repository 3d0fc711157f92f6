package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"figsiner/internal/schema"
	"figsiner/internal/section"
)

// RequestSection asks the model for a new section. Transport, empty,
// parse and schema failures all abort the request.
func RequestSection(ctx context.Context, c Client, pb *PromptBuilder, brief string) (*section.Response, error) {
	content, err := c.Complete(ctx, pb.Generate(brief), brief)
	if err != nil {
		return nil, fmt.Errorf("generation: %w", err)
	}
	return DecodeSection(content)
}

// DecodeSection unwraps, parses and validates raw generation output.
func DecodeSection(content string) (*section.Response, error) {
	raw := StripCodeFence(content)
	v, err := ParseJSON(raw, "Generation JSON parse error")
	if err != nil {
		return nil, err
	}
	if err := schema.ValidateSection(v); err != nil {
		return nil, err
	}
	var resp section.Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode section envelope: %w", err)
	}
	seen := make(map[section.Viewport]bool, len(resp.Variants))
	for _, v := range resp.Variants {
		if seen[v.Viewport] {
			return nil, fmt.Errorf("section envelope: viewport %q appears twice", v.Viewport)
		}
		seen[v.Viewport] = true
		if err := v.Section.Validate(); err != nil {
			return nil, fmt.Errorf("section envelope: %s variant: %w", v.Viewport, err)
		}
	}
	return &resp, nil
}

// RequestPatch asks the model for the operations that apply brief to current.
func RequestPatch(ctx context.Context, c Client, pb *PromptBuilder, current *section.Section, brief string) (*section.PatchResponse, error) {
	system, err := pb.Edit(current, brief)
	if err != nil {
		return nil, err
	}
	content, err := c.Complete(ctx, system, brief)
	if err != nil {
		return nil, fmt.Errorf("patch: %w", err)
	}
	return DecodePatch(content)
}

// DecodePatch unwraps, parses and validates raw edit output.
func DecodePatch(content string) (*section.PatchResponse, error) {
	raw := StripCodeFence(content)
	v, err := ParseJSON(raw, "Patch JSON parse error")
	if err != nil {
		return nil, err
	}
	if err := schema.ValidatePatch(v); err != nil {
		return nil, err
	}
	var resp section.PatchResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode patch envelope: %w", err)
	}
	return &resp, nil
}
