package scene

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed component-catalog.json
var defaultCatalogJSON []byte

// CatalogEntry describes one library component offered to the model.
type CatalogEntry struct {
	Key         string              `json:"key"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Width       float64             `json:"width"`
	Height      float64             `json:"height"`
	Variants    map[string][]string `json:"variants,omitempty"`
}

// Catalog is the component library, in the order it was declared.
type Catalog struct {
	Entries []CatalogEntry
	raw     []byte
}

// DefaultCatalog returns the embedded component catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogJSON)
	if err != nil {
		panic("scene: embedded component catalog is invalid: " + err.Error())
	}
	return c
}

// LoadCatalog reads a catalog file. An empty path yields DefaultCatalog().
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read component catalog: %w", err)
	}
	return ParseCatalog(b)
}

func ParseCatalog(b []byte) (*Catalog, error) {
	var entries []CatalogEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse component catalog: %w", err)
	}
	for i, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("component catalog entry %d has no key", i)
		}
	}
	return &Catalog{Entries: entries, raw: append([]byte(nil), b...)}, nil
}

// JSON returns the catalog as it was read.
func (c *Catalog) JSON() []byte { return c.raw }

// Components converts the catalog into host library components.
func (c *Catalog) Components() []*Component {
	out := make([]*Component, 0, len(c.Entries))
	for _, e := range c.Entries {
		out = append(out, &Component{
			Key:        e.Key,
			Name:       e.Name,
			Width:      e.Width,
			Height:     e.Height,
			Properties: e.Variants,
		})
	}
	return out
}
