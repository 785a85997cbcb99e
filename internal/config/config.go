// Package config handles configuration loading and shared data structures.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jwilliamsresearch/geon/internal/geo"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Load.
const (
	DefaultPlacesDir   = "places"
	DefaultPreviewSize = 256
)

// Source kinds.
const (
	KindInline   = "inline"
	KindGeoJSON  = "geojson"
	KindOverture = "overture"
	KindOverpass = "overpass"
)

// Config represents the root configuration file structure.
type Config struct {
	Title            string            `yaml:"title,omitempty" json:"title,omitempty"`
	Attribution      string            `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	PlacesDir        string            `yaml:"places_dir,omitempty" json:"-"`
	OverpassEndpoint string            `yaml:"overpass_endpoint,omitempty" json:"-"`
	TypeMapping      map[string]string `yaml:"type_mapping,omitempty" json:"-"`
	Sources          []Source          `yaml:"sources" json:"sources"`
	PreviewSize      int               `yaml:"preview_size,omitempty" json:"-"`
	AssignIDs        bool              `yaml:"assign_ids,omitempty" json:"-"`
}

// Source is one collection of places imported into its own .geon file.
type Source struct {
	Index *int `yaml:"index,omitempty" json:"index,omitempty"`

	// defining GeoJSON directly in config.yaml
	Inline *geo.GeoJSONFeatureCollection `yaml:"geojson_inline,omitempty" json:"-"`

	Name        string   `yaml:"name" json:"name"`
	Title       string   `yaml:"title,omitempty" json:"title,omitempty"`
	GeoJSON     string   `yaml:"geojson,omitempty" json:"-"` // URL or local path
	Overpass    string   `yaml:"overpass,omitempty" json:"-"` // Overpass QL query
	PartOf      string   `yaml:"part_of,omitempty" json:"part_of,omitempty"`
	Attribution string   `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	Aliases     []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Overture    bool     `yaml:"overture,omitempty" json:"-"` // GeoJSON is an Overture Maps export
}

// Kind reports where the source's places come from.
func (s Source) Kind() string {
	switch {
	case s.Inline != nil:
		return KindInline
	case s.Overpass != "":
		return KindOverpass
	case s.GeoJSON != "" && s.Overture:
		return KindOverture
	case s.GeoJSON != "":
		return KindGeoJSON
	}
	return ""
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes configuration, applies defaults and checks sources.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.PlacesDir == "" {
		cfg.PlacesDir = DefaultPlacesDir
	}
	if cfg.PreviewSize <= 0 {
		cfg.PreviewSize = DefaultPreviewSize
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	for i := range cfg.Sources {
		if cfg.Sources[i].Attribution == "" {
			cfg.Sources[i].Attribution = cfg.Attribution
		}
	}
	cfg.sortSources()

	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	names := make(map[string]string)

	for _, s := range c.Sources {
		if s.Name == "" {
			errs = append(errs, errors.New("source without name"))
			continue
		}
		if s.Kind() == "" {
			errs = append(errs, fmt.Errorf("source %q: no geojson, geojson_inline or overpass set", s.Name))
		}

		for _, n := range append([]string{s.Name}, s.Aliases...) {
			if owner, ok := names[n]; ok {
				errs = append(errs, fmt.Errorf("source %q: name %q already used by %q", s.Name, n, owner))
				continue
			}
			names[n] = s.Name
		}
	}

	return errors.Join(errs...)
}

// sortSources orders sources by Index, then by name.
func (c *Config) sortSources() {
	sort.SliceStable(c.Sources, func(i, j int) bool {
		idxI, idxJ := 999999, 999999
		if c.Sources[i].Index != nil {
			idxI = *c.Sources[i].Index
		}
		if c.Sources[j].Index != nil {
			idxJ = *c.Sources[j].Index
		}
		if idxI != idxJ {
			return idxI < idxJ
		}

		return c.Sources[i].Name < c.Sources[j].Name
	})
}

// Resolver maps every source name and alias to the source name.
func (c *Config) Resolver() map[string]string {
	resolver := make(map[string]string)
	for _, s := range c.Sources {
		resolver[s.Name] = s.Name
		for _, alias := range s.Aliases {
			resolver[alias] = s.Name
		}
	}
	return resolver
}

// Source returns the source with the given name.
func (c *Config) Source(name string) (Source, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}

// PlacesFile is the path of the .geon file holding a source's places.
func (c *Config) PlacesFile(name string) string {
	return filepath.Join(c.PlacesDir, name+".geon")
}

// PreviewFile is the path of a source's rendered preview.
func (c *Config) PreviewFile(name string) string {
	return filepath.Join(c.PlacesDir, name, "preview.webp")
}
