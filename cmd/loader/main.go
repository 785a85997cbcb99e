package main

import (
	"net/http"
	"os"
	"time"

	"github.com/jwilliamsresearch/geon/internal/config"
	"github.com/jwilliamsresearch/geon/internal/logger"
	"github.com/jwilliamsresearch/geon/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string   `short:"c" long:"config"      env:"CONFIG_FILE"  description:"Path to configuration file" default:"config.yaml"`
	Limit       []string `short:"l" long:"limit"       env:"LIMIT_NAMES"  description:"Limit processing to specific source names or aliases"`
	Concurrency int      `short:"p" long:"concurrency" env:"CONCURRENCY"  description:"Preview rendering concurrency" default:"4"`
	Previews    bool     `short:"r" long:"previews"    description:"Render WebP previews after import"`
	PreviewOnly bool     `short:"P" long:"preview-only" description:"Only render previews from existing places files"`
	Force       bool     `short:"f" long:"force"       description:"Force overwrite of existing files"`
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

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
		},
		// Overpass queries can take a while
		Timeout: 90 * time.Second,
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	// Filter sources if limit is set
	sourcesToProcess := cfg.Sources
	if len(opts.Limit) > 0 {
		sourcesToProcess = make([]config.Source, 0)
		resolver := cfg.Resolver()

		seen := make(map[string]bool)

		for _, limitName := range opts.Limit {
			name, ok := resolver[limitName]
			if !ok {
				log.Error().
					Str("name", limitName).
					Msg("Source specified in --limit not found in configuration")
				continue
			}
			if seen[name] {
				continue
			}
			seen[name] = true

			src, _ := cfg.Source(name)
			sourcesToProcess = append(sourcesToProcess, src)
		}
	}

	log.Info().
		Int("sources_total", len(cfg.Sources)).
		Int("sources_queued", len(sourcesToProcess)).
		Str("places_dir", cfg.PlacesDir).
		Msg("Starting loader")

	failed := 0
	if !opts.PreviewOnly {
		for _, src := range sourcesToProcess {
			if err := processor.ProcessSource(client, cfg, src, opts.Force); err != nil {
				failed++
				log.Error().Err(err).Str("source", src.Name).Msg("Failed to process source")
			}
		}
	}

	if opts.Previews || opts.PreviewOnly {
		rendered, previewFailed := processor.ProcessPreviews(cfg, sourcesToProcess, opts.Concurrency, opts.Force)
		failed += previewFailed
		log.Info().
			Int("rendered", rendered).
			Int("failed", previewFailed).
			Msg("Previews done")
	}

	if failed > 0 {
		log.Fatal().Int("failed", failed).Msg("Loader finished with errors")
	}

	log.Info().Msg("Loader finished successfully")
}
