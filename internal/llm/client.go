// Package llm talks to the language model: chat completion, model listing
// for settings verification, prompt assembly and unwrapping of the raw text
// the model returns.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"
)

var (
	ErrNoModels      = errors.New("no models returned from host")
	ErrModelNotFound = errors.New("model not found")
)

// Client is a chat model endpoint.
type Client interface {
	// Complete sends one system prompt and one user message and returns the
	// text of the first answer.
	Complete(ctx context.Context, system, user string) (string, error)
	// ListModels lists the model ids the endpoint serves.
	ListModels(ctx context.Context) ([]string, error)
}

type Options struct {
	Provider   string
	Host       string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

const defaultTimeout = 90 * time.Second

// NewClient builds the client for opts.Provider. An empty provider means an
// OpenAI-compatible endpoint at opts.Host.
func NewClient(ctx context.Context, opts Options) (Client, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "openai":
		return NewOpenAIClient(opts), nil
	case "gemini":
		return NewGeminiClient(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", opts.Provider)
	}
}

// Verify checks that the endpoint answers, lists at least one model and
// serves model. The listed models are returned whenever they were fetched.
func Verify(ctx context.Context, c Client, model string) ([]string, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, ErrNoModels
	}
	if !slices.Contains(models, model) {
		return models, fmt.Errorf("%w: %q", ErrModelNotFound, model)
	}
	return models, nil
}
