package campaigns

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
)

//go:embed platforms.toml
var platformsTOML string

// Platform is a channel a campaign can run on
type Platform struct {
	ID      string   `toml:"id"`
	Name    string   `toml:"name"`
	Bullets []string `toml:"bullets"`
}

// Catalogue is the ordered list of platforms
type Catalogue struct {
	Platforms []Platform `toml:"platform"`
}

// LoadCatalogue parses a platform catalogue document
func LoadCatalogue(doc string) (*Catalogue, error) {
	var c Catalogue
	if _, err := toml.Decode(doc, &c); err != nil {
		return nil, fmt.Errorf("decode platform catalogue: %w", err)
	}
	seen := make(map[string]bool, len(c.Platforms))
	for _, p := range c.Platforms {
		if p.ID == "" {
			return nil, fmt.Errorf("platform %q has no id", p.Name)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate platform id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return &c, nil
}

// DefaultCatalogue returns the embedded platform catalogue
func DefaultCatalogue() *Catalogue {
	c, err := LoadCatalogue(platformsTOML)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup finds a platform by id
func (c *Catalogue) Lookup(id string) (Platform, bool) {
	for _, p := range c.Platforms {
		if p.ID == id {
			return p, true
		}
	}
	return Platform{}, false
}
