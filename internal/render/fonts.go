package render

import (
	"context"
	"fmt"
	"sync"

	"figsiner/internal/scene"
	"figsiner/internal/section"
	"figsiner/internal/tokens"
)

// FallbackFont is used when a typography font cannot be loaded.
var FallbackFont = scene.Font{Family: "Roboto", Style: "Regular"}

// FontLoader loads each font at most once per host.
type FontLoader struct {
	host scene.Host

	mu     sync.Mutex
	loaded map[scene.Font]bool
}

func NewFontLoader(host scene.Host) *FontLoader {
	return &FontLoader{host: host, loaded: make(map[scene.Font]bool)}
}

// Load loads font unless it has been loaded already.
func (l *FontLoader) Load(ctx context.Context, font scene.Font) error {
	l.mu.Lock()
	done := l.loaded[font]
	l.mu.Unlock()
	if done {
		return nil
	}
	if err := l.host.LoadFont(ctx, font); err != nil {
		return err
	}
	l.mu.Lock()
	l.loaded[font] = true
	l.mu.Unlock()
	return nil
}

// LoadTypography loads the font for a typography token, falling back to
// FallbackFont. It returns the font that is actually usable.
func (l *FontLoader) LoadTypography(ctx context.Context, tok tokens.TypographyToken) (scene.Font, error) {
	font := scene.Font{Family: tok.FontFamily, Style: tok.FontStyle}
	if font.Family == "" {
		font = FallbackFont
	}
	err := l.Load(ctx, font)
	if err == nil {
		return font, nil
	}
	if font == FallbackFont {
		return scene.Font{}, err
	}
	if ferr := l.Load(ctx, FallbackFont); ferr != nil {
		return scene.Font{}, fmt.Errorf("failed to load %s (%v) and fallback %s: %w", font, err, FallbackFont, ferr)
	}
	return FallbackFont, nil
}

func typographyToken(t *tokens.Table, style section.TypographyStyle) tokens.TypographyToken {
	return t.TypographyFor(string(style))
}
