package studio

import (
	"context"
	"errors"
	"net/http"

	"figsiner/internal/config"
	"figsiner/internal/llm"
	"figsiner/internal/storage"
)

var ErrNoSettings = errors.New("model settings are incomplete: set a host and a model first")

type settingsKey struct{}

// WithSettings attaches request-scoped settings that override the stored ones.
func WithSettings(ctx context.Context, s config.Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s)
}

func SettingsFrom(ctx context.Context) (config.Settings, bool) {
	s, ok := ctx.Value(settingsKey{}).(config.Settings)
	return s, ok
}

// ResolveSettings layers base, then the saved record, then any settings on ctx.
func ResolveSettings(ctx context.Context, base config.Settings, store storage.SettingsStore) (config.Settings, error) {
	s := base
	if store != nil {
		saved, ok, err := store.LoadSettings(ctx)
		if err != nil {
			return config.Settings{}, err
		}
		if ok {
			s = s.Merge(saved)
		}
	}
	if o, ok := SettingsFrom(ctx); ok {
		s = s.Merge(o)
	}
	return s, nil
}

// SettingsSource builds a model client from the resolved settings of each
// request.
func SettingsSource(base config.Settings, store storage.SettingsStore, hc *http.Client) ClientSource {
	return func(ctx context.Context) (llm.Client, error) {
		s, err := ResolveSettings(ctx, base, store)
		if err != nil {
			return nil, err
		}
		if !s.Complete() {
			return nil, ErrNoSettings
		}
		return llm.NewClient(ctx, llm.Options{
			Provider:   s.Provider,
			Host:       s.Host,
			APIKey:     s.APIKey,
			Model:      s.Model,
			HTTPClient: hc,
		})
	}
}
