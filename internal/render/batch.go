package render

import (
	"errors"
	"os"
	"sync"

	"github.com/jwilliamsresearch/geon/internal/geon"

	"github.com/rs/zerolog/log"
)

// Job renders one place to one file.
type Job struct {
	Place *geon.Place
	Path  string
}

// Result reports the outcome of a Job.
type Result struct {
	Path    string
	Err     error
	Skipped bool
}

// Batch renders jobs on a pool of concurrency workers. Existing non-empty
// files are kept unless force is set. Results are returned in job order.
func Batch(jobs []Job, size, concurrency int, force bool) []Result {
	if concurrency <= 0 {
		concurrency = 1
	}

	type indexed struct {
		idx int
		job Job
	}

	queue := make(chan indexed, len(jobs))
	results := make([]Result, len(jobs))

	go func() {
		for i, j := range jobs {
			queue <- indexed{idx: i, job: j}
		}
		close(queue)
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				res := renderOne(j.job, size, force)
				if res.Err != nil && !errors.Is(res.Err, ErrNoGeometry) {
					log.Error().
						Err(res.Err).
						Str("path", res.Path).
						Msg("Failed to render preview")
				}
				results[j.idx] = res
			}
		}()
	}
	wg.Wait()

	return results
}

func renderOne(j Job, size int, force bool) Result {
	if !force {
		if info, err := os.Stat(j.Path); err == nil && info.Size() > 0 {
			return Result{Path: j.Path, Skipped: true}
		}
	}

	err := WriteFile(j.Path, j.Place, size)
	if errors.Is(err, ErrNoGeometry) {
		log.Debug().Str("path", j.Path).Msg("No geometry, preview skipped")
	}

	return Result{Path: j.Path, Err: err}
}
