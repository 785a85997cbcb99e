// Package processor imports configured sources into the places directory.
package processor

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jwilliamsresearch/geon/internal/config"
	"github.com/jwilliamsresearch/geon/internal/convert"
	"github.com/jwilliamsresearch/geon/internal/geon"
	"github.com/jwilliamsresearch/geon/internal/validate"

	"github.com/rs/zerolog/log"
)

// ProcessSource fetches a source, converts it to places and writes them as
// one multi document .geon file. An existing file is kept unless force is
// set.
func ProcessSource(client *http.Client, cfg *config.Config, src config.Source, force bool) error {
	destFile := cfg.PlacesFile(src.Name)

	// Check if file exists
	if _, err := os.Stat(destFile); err == nil {
		if !force {
			log.Debug().Str("source", src.Name).Msg("Places file exists, skipping")
			return nil
		}
	}

	places, err := LoadSource(client, cfg, src)
	if err != nil {
		return fmt.Errorf("source %s: %w", src.Name, err)
	}

	for _, p := range places {
		decorate(p, src)
		logIssues(src.Name, p)
	}

	log.Info().
		Str("source", src.Name).
		Int("places", len(places)).
		Str("path", destFile).
		Msg("Writing places")

	return savePlaces(destFile, places)
}

// LoadSource reads a source's features and converts them to places.
func LoadSource(client *http.Client, cfg *config.Config, src config.Source) ([]*geon.Place, error) {
	opts := convert.Options{TypeMapping: cfg.TypeMapping, AssignIDs: cfg.AssignIDs}

	switch src.Kind() {
	case config.KindInline:
		log.Info().
			Str("source", src.Name).
			Msg("Using inline GeoJSON data from config")
		return convert.FromFeatureCollection(*src.Inline, opts), nil

	case config.KindGeoJSON, config.KindOverture:
		log.Info().
			Str("source", src.Name).
			Str("location", src.GeoJSON).
			Bool("overture", src.Overture).
			Msg("Processing GeoJSON")

		fc, err := convert.LoadFeatureCollection(client, src.GeoJSON)
		if err != nil {
			return nil, err
		}
		if src.Overture {
			return convert.FromOvertureCollection(fc, opts), nil
		}
		return convert.FromFeatureCollection(fc, opts), nil

	case config.KindOverpass:
		log.Info().
			Str("source", src.Name).
			Str("endpoint", cfg.OverpassEndpoint).
			Msg("Running Overpass query")

		resp, err := convert.FetchOverpass(client, cfg.OverpassEndpoint, src.Overpass)
		if err != nil {
			return nil, err
		}
		return convert.FromOverpass(resp, opts), nil
	}

	return nil, fmt.Errorf("no input configured")
}

// decorate applies source level settings to an imported place.
func decorate(p *geon.Place, src config.Source) {
	if p.PartOf == "" {
		p.PartOf = src.PartOf
	}
	if src.Attribution == "" {
		return
	}
	for _, s := range p.Source {
		if s == src.Attribution {
			return
		}
	}
	p.Source = append(p.Source, src.Attribution)
}

func logIssues(source string, p *geon.Place) {
	res := validate.Validate(p)
	for _, issue := range res.Issues {
		if issue.Severity == validate.SeverityInfo {
			continue
		}
		log.Debug().
			Str("source", source).
			Str("place", p.Name).
			Str("severity", string(issue.Severity)).
			Str("field", issue.Field).
			Msg(issue.Message)
	}
}

// savePlaces writes the places as one multi document file.
func savePlaces(path string, places []*geon.Place) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	_, err = f.WriteString(geon.GenerateMany(places))
	return err
}
