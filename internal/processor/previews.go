package processor

import (
	"os"

	"github.com/jwilliamsresearch/geon/internal/config"
	"github.com/jwilliamsresearch/geon/internal/geon"
	"github.com/jwilliamsresearch/geon/internal/render"

	"github.com/rs/zerolog/log"
)

// ProcessPreviews renders one preview per source, drawing every place of the
// source's .geon file. Sources without a places file are skipped.
func ProcessPreviews(cfg *config.Config, sources []config.Source, concurrency int, force bool) (rendered, failed int) {
	jobs := make([]render.Job, 0, len(sources))

	for _, src := range sources {
		data, err := os.ReadFile(cfg.PlacesFile(src.Name))
		if err != nil {
			log.Warn().Str("source", src.Name).Msg("No places file, preview skipped")
			continue
		}

		jobs = append(jobs, render.Job{
			Place: &geon.Place{Name: src.Name, Contains: geon.ParseMany(string(data))},
			Path:  cfg.PreviewFile(src.Name),
		})
	}

	log.Info().Int("previews", len(jobs)).Msg("Starting preview rendering")

	for _, res := range render.Batch(jobs, cfg.PreviewSize, concurrency, force) {
		switch {
		case res.Skipped:
			log.Debug().Str("path", res.Path).Msg("Preview exists, skipping")
		case res.Err != nil:
			failed++
		default:
			rendered++
		}
	}

	return rendered, failed
}
