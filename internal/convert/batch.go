package convert

import (
	"context"
	"errors"
	"time"

	"github.com/svanichkin/qoi/internal/logging"
	"github.com/svanichkin/qoi/internal/oops"
	"golang.org/x/sync/errgroup"
)

var ErrNoInputs = errors.New("no input files")

// Result describes one conversion of a batch.
type Result struct {
	Input   string
	Output  string
	Bytes   int
	Elapsed time.Duration
	Err     error
}

// Batch converts every input on a pool of at most jobs workers. One failing
// file does not stop the others; the returned error joins every failure and
// results always has one entry per input, in input order.
//
// Files that have not started when ctx is cancelled are reported with the
// context's error.
func Batch(ctx context.Context, inputs []string, opts Options, jobs int) ([]Result, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	if opts.Output != "" && len(inputs) > 1 {
		return nil, oops.New(nil, "an explicit output path needs exactly one input, got %d", len(inputs))
	}
	if jobs < 1 {
		jobs = 1
	}

	results := make([]Result, len(inputs))
	var g errgroup.Group
	g.SetLimit(jobs)

	for i, in := range inputs {
		i, in := i, in
		results[i] = Result{Input: in, Output: OutputPath(in, opts)}

		g.Go(func() error {
			res := &results[i]
			if err := ctx.Err(); err != nil {
				res.Err = err
				return nil
			}

			start := time.Now()
			n, err := File(res.Input, res.Output, opts)
			res.Bytes = n
			res.Elapsed = time.Since(start)
			res.Err = err

			if err != nil {
				logging.Error().Err(err).Str("input", res.Input).Msg("Conversion failed")
			} else {
				logging.Debug().
					Str("input", res.Input).
					Str("output", res.Output).
					Int("bytes", n).
					Dur("elapsed", res.Elapsed).
					Msg("Converted")
			}
			return nil
		})
	}
	// workers record failures in results and always return nil
	_ = g.Wait()

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return results, errors.Join(errs...)
}
