// Package probe invokes the toolchain on one candidate triple and
// classifies what happened.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"
)

// Outcome classifies one toolchain invocation.
type Outcome int

const (
	// Valid: the toolchain accepted the triple (exit 0, no sentinel).
	Valid Outcome = iota
	// Invalid: the toolchain rejected the triple cleanly (non-zero exit,
	// no sentinel). Expected and frequent; not persisted.
	Invalid
	// Crashed: the toolchain's own crash self-report appeared in its
	// output, regardless of exit code. The event of interest.
	Crashed
)

func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	case Crashed:
		return "crashed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is the classification of one probe. Diagnostic is the full
// concatenation of the child's stdout and stderr, non-empty only for
// Crashed.
type Result struct {
	Triple     string
	Outcome    Outcome
	Diagnostic []byte
}

// Prober runs one toolchain invocation per triple. A returned error means
// infrastructure failure (the process could not be run at all), never a
// classification; callers must abort the run on it.
type Prober interface {
	Probe(ctx context.Context, triple string) (Result, error)
}

// DefaultSentinel is the marker clang prints when it crashes itself
// ("PLEASE submit a bug report ...").
const DefaultSentinel = "PLEASE"

// Toolchain probes triples by running a clang-style compiler driver against
// a fixed input file. Safe for concurrent use.
type Toolchain struct {
	// Binary is the compiler driver to invoke.
	Binary string
	// InputPath points at the shared minimal source file. It must outlive
	// every in-flight probe.
	InputPath string
	// Sentinel marks a toolchain self-reported crash in combined output.
	// Empty means DefaultSentinel.
	Sentinel string
	// Timeout bounds one invocation; zero means no limit. A timed-out
	// probe classifies as Invalid.
	Timeout time.Duration
}

// Probe runs `<binary> -target <triple> -x c -o /dev/null <input>` and
// classifies the outcome. Both output streams are drained concurrently and
// to completion before the process is reaped, so neither can fill its pipe
// buffer and wedge the child.
func (t *Toolchain) Probe(ctx context.Context, triple string) (Result, error) {
	res := Result{Triple: triple}

	runCtx := ctx
	var cancel context.CancelFunc
	if t.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, t.Binary,
		"-target", triple,
		"-x", "c",
		"-o", os.DevNull,
		t.InputPath,
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return res, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return res, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return res, fmt.Errorf("start %s: %w", t.Binary, err)
	}

	var out, errOut []byte
	var g errgroup.Group
	g.Go(func() error {
		var readErr error
		out, readErr = io.ReadAll(stdout)
		return readErr
	})
	g.Go(func() error {
		var readErr error
		errOut, readErr = io.ReadAll(stderr)
		return readErr
	})
	drainErr := g.Wait()

	waitErr := cmd.Wait()

	if drainErr != nil {
		return res, fmt.Errorf("drain %s output: %w", t.Binary, drainErr)
	}

	// The run's own deadline kills the child; that is a rejection, not an
	// infrastructure failure. Cancellation from above still propagates.
	if runCtx.Err() != nil && ctx.Err() == nil {
		res.Outcome = Invalid
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	combined := append(out, errOut...)

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return res, fmt.Errorf("wait for %s: %w", t.Binary, waitErr)
		}
		exitCode = exitErr.ExitCode()
	}

	res.Outcome = Classify(exitCode, combined, t.sentinel())
	if res.Outcome == Crashed {
		res.Diagnostic = combined
	}
	return res, nil
}

func (t *Toolchain) sentinel() []byte {
	if t.Sentinel != "" {
		return []byte(t.Sentinel)
	}
	return []byte(DefaultSentinel)
}

// Classify maps one invocation's observables to an outcome. Pure function:
// sentinel presence wins over any exit code; exit 0 without it is Valid;
// anything else is Invalid.
func Classify(exitCode int, combined, sentinel []byte) Outcome {
	if bytes.Contains(combined, sentinel) {
		return Crashed
	}
	if exitCode == 0 {
		return Valid
	}
	return Invalid
}
