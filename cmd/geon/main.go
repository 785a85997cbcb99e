package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jwilliamsresearch/geon/internal/convert"
	"github.com/jwilliamsresearch/geon/internal/geon"
	"github.com/jwilliamsresearch/geon/internal/logger"
	"github.com/jwilliamsresearch/geon/internal/validate"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input       string            `short:"i" long:"in"         description:"Input file path. Reads from stdin if empty"`
	Output      string            `short:"o" long:"out"        description:"Output file path. Writes to stdout if empty"`
	From        string            `short:"f" long:"from"       description:"Input format" choice:"geon" choice:"geojson" choice:"overture" choice:"osm" default:"geon"`
	To          string            `short:"t" long:"to"         description:"Output format" choice:"geon" choice:"geojson" choice:"json" choice:"yaml" default:"geon"`
	TypeMapping map[string]string `short:"m" long:"type-map"   description:"Additional property value to TYPE mapping (value:type)"`
	Strict      bool              `short:"s" long:"strict"     description:"Fail when GEON input needed any recovery"`
	Validate    bool              `short:"V" long:"validate"   description:"Validate places and fail on errors"`
	AssignIDs   bool              `long:"assign-ids"           description:"Give places without an ID a urn:uuid identifier"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	// Read Input
	var inputData []byte
	var err error

	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
	} else {
		inputData, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.Input).Msg("Failed to read input")
	}

	places, err := decodePlaces(inputData, opts)
	if err != nil {
		log.Fatal().Err(err).Str("format", opts.From).Msg("Failed to read places")
	}

	if opts.Validate {
		if invalid := validatePlaces(places); invalid > 0 {
			log.Fatal().Int("invalid", invalid).Msg("Validation failed")
		}
	}

	outputData, err := encodePlaces(places, opts.To)
	if err != nil {
		log.Fatal().Err(err).Str("format", opts.To).Msg("Failed to marshal places")
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output")
		}
		log.Info().
			Int("places", len(places)).
			Str("path", opts.Output).
			Str("format", opts.To).
			Msg("Conversion done")
	} else {
		_, _ = os.Stdout.Write(outputData)
	}
}

// decodePlaces reads the input in the format selected by --from.
func decodePlaces(data []byte, opts Options) ([]*geon.Place, error) {
	convOpts := convert.Options{TypeMapping: opts.TypeMapping, AssignIDs: opts.AssignIDs}

	switch opts.From {
	case "geojson", "overture":
		fc, err := convert.DecodeFeatureCollection(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if opts.From == "overture" {
			return convert.FromOvertureCollection(fc, convOpts), nil
		}
		return convert.FromFeatureCollection(fc, convOpts), nil

	case "osm":
		var resp convert.OverpassResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("decode overpass response: %w", err)
		}
		return convert.FromOverpass(resp, convOpts), nil
	}

	p := geon.NewParser(log.With().Str("input", "geon").Logger())
	places := p.ParseMany(string(data))
	if opts.Strict {
		if diags := p.Diagnostics(); len(diags) > 0 {
			return places, fmt.Errorf("%d recoveries while parsing: %w", len(diags), diags[0])
		}
	}
	return places, nil
}

// validatePlaces logs every issue and returns the number of invalid places.
func validatePlaces(places []*geon.Place) int {
	invalid := 0
	for _, p := range places {
		res := validate.Validate(p)
		for _, issue := range res.Issues {
			ev := log.Info()
			switch issue.Severity {
			case validate.SeverityError:
				ev = log.Error()
			case validate.SeverityWarning:
				ev = log.Warn()
			}
			ev.Str("place", p.Name).Str("field", issue.Field).Msg(issue.Message)
		}
		if !res.Valid() {
			invalid++
		}
	}
	return invalid
}

// encodePlaces marshals places in the format selected by --to.
func encodePlaces(places []*geon.Place, format string) ([]byte, error) {
	switch format {
	case "geojson":
		return json.MarshalIndent(convert.ToFeatureCollection(places), "", "  ")
	case "json":
		return json.MarshalIndent(places, "", "  ")
	case "yaml":
		return yaml.Marshal(places)
	}
	return []byte(geon.GenerateMany(places)), nil
}
