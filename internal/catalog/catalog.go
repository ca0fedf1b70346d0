// Package catalog loads the band's track list from YAML. The list is read
// once at start-up and never changes while the server runs.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aanand-mishra/sixth-rift-api/internal/types"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// ErrTrackNotFound is returned by Get for an unknown slug.
var ErrTrackNotFound = errors.New("track not found")

type file struct {
	Tracks []types.Track `yaml:"tracks"`
}

// Catalog is an immutable, ordered set of tracks indexed by slug.
type Catalog struct {
	tracks []types.Track
	bySlug map[string]int
}

// Load reads the catalogue at path. An empty path loads the built-in one.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog.Load: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes a YAML catalogue. Every track needs a slug and a title,
// and slugs must be unique.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog.Parse: %w", err)
	}

	c := &Catalog{
		tracks: f.Tracks,
		bySlug: make(map[string]int, len(f.Tracks)),
	}
	if c.tracks == nil {
		c.tracks = []types.Track{}
	}

	for i, t := range c.tracks {
		if t.Slug == "" || t.Title == "" {
			return nil, fmt.Errorf("catalog.Parse: track %d: slug and title are required", i)
		}
		if _, dup := c.bySlug[t.Slug]; dup {
			return nil, fmt.Errorf("catalog.Parse: duplicate slug %q", t.Slug)
		}
		c.bySlug[t.Slug] = i
	}

	return c, nil
}

// List returns a copy of all tracks in catalogue order.
func (c *Catalog) List() []types.Track {
	out := make([]types.Track, len(c.tracks))
	copy(out, c.tracks)
	return out
}

// Get looks a track up by slug.
func (c *Catalog) Get(slug string) (types.Track, error) {
	i, ok := c.bySlug[slug]
	if !ok {
		return types.Track{}, fmt.Errorf("%w: %s", ErrTrackNotFound, slug)
	}
	return c.tracks[i], nil
}
