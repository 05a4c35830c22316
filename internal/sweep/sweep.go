// Package sweep drives the triple generator through the prober under a
// concurrency cap and forwards crashes to the results log.
package sweep

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"trisect/internal/logging"
	"trisect/internal/probe"
	"trisect/internal/triple"
)

// DefaultJobs is the default cap on in-flight probes.
const DefaultJobs = 32

// Recorder receives each crash as its probe completes. Implementations
// must be safe for concurrent use.
type Recorder interface {
	Record(triple string, diagnostic []byte) error
}

// Config tunes one sweep run.
type Config struct {
	// Jobs caps concurrently outstanding probes. Zero means DefaultJobs.
	Jobs int
	// Limit stops the sweep after submitting this many triples. Zero
	// sweeps the whole product.
	Limit int
}

// Stats is the final tally of one run. Completed always equals
// Valid+Invalid+Crashed; on a clean run it also equals Submitted.
type Stats struct {
	Submitted int
	Completed int
	Valid     int
	Invalid   int
	Crashed   int
}

// Run pulls triples from gen and probes each one, never holding more than
// cfg.Jobs probes outstanding. Admission is pull-based: a slot must free up
// before the next triple is taken from the generator. Run returns only
// after every admitted probe has finished, even on error — a probe, once
// launched, always runs to completion.
//
// Any error from the prober is infrastructure failure and aborts admission;
// already-running probes still drain. Crash outcomes go to rec immediately.
func Run(ctx context.Context, gen *triple.Generator, prober probe.Prober, rec Recorder, cfg Config) (Stats, error) {
	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = DefaultJobs
	}

	logger := logging.New("sweep")
	logger.Info("sweep starting", "jobs", jobs, "remaining", gen.Remaining())

	var (
		mu         sync.Mutex
		stats      Stats
		lastReport = 1
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for {
		if cfg.Limit > 0 && stats.Submitted >= cfg.Limit {
			break
		}
		tr, ok := gen.Next()
		if !ok {
			break
		}
		// A failed probe cancels gctx; stop admitting, then drain.
		if gctx.Err() != nil {
			break
		}

		stats.Submitted++
		g.Go(func() error {
			res, err := prober.Probe(gctx, tr)
			if err != nil {
				return fmt.Errorf("probe %q: %w", tr, err)
			}

			mu.Lock()
			stats.Completed++
			switch res.Outcome {
			case probe.Valid:
				stats.Valid++
			case probe.Invalid:
				stats.Invalid++
			case probe.Crashed:
				stats.Crashed++
			}
			done := stats.Completed
			report := float64(done) > 1.1*float64(lastReport)
			if report {
				lastReport = done
			}
			mu.Unlock()

			if report {
				logger.Info("progress", "completed", done)
			}

			if res.Outcome == probe.Crashed {
				logger.Warn("toolchain crash", "triple", tr, "diagnostic_bytes", len(res.Diagnostic))
				if err := rec.Record(tr, res.Diagnostic); err != nil {
					return fmt.Errorf("record crash for %q: %w", tr, err)
				}
			}
			return nil
		})
	}

	// Full drain: every admitted probe finishes before we return. The
	// shared input file stays alive until then.
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	mu.Lock()
	final := stats
	mu.Unlock()

	logger.Info("sweep finished",
		"submitted", final.Submitted,
		"valid", final.Valid,
		"invalid", final.Invalid,
		"crashed", final.Crashed,
	)
	if err != nil {
		return final, fmt.Errorf("sweep aborted: %w", err)
	}
	return final, nil
}
