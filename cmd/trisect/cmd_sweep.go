package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"trisect/internal/catalog"
	"trisect/internal/logging"
	"trisect/internal/probe"
	"trisect/internal/results"
	"trisect/internal/store"
	"trisect/internal/sweep"
	"trisect/internal/triple"
)

var sweepFlags struct {
	binary      string
	wantVersion string
	catalogPath string
	resultsPath string
	dbPath      string
	workDir     string
	sentinel    string
	jobs        int
	limit       int
	timeout     time.Duration
	noStore     bool
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Probe the whole triple space and log every toolchain crash",
	Long: "Sweep walks the Cartesian product of the four triple axes, invokes the\n" +
		"toolchain once per candidate, and appends each crash with its full\n" +
		"diagnostic output to the results log. Interrupting the sweep still\n" +
		"drains every probe already in flight before exiting.",
	RunE: runSweep,
}

func init() {
	f := sweepCmd.Flags()
	f.StringVar(&sweepFlags.binary, "toolchain", envOr("TRISECT_TOOLCHAIN", "clang"),
		"Toolchain driver binary (env TRISECT_TOOLCHAIN)")
	f.StringVar(&sweepFlags.wantVersion, "toolchain-version", "",
		"Require this substring in the toolchain's --version output")
	f.StringVar(&sweepFlags.catalogPath, "catalog", "",
		"Axis catalog YAML (default: embedded LLVM 15 catalog)")
	f.StringVar(&sweepFlags.resultsPath, "results", "results.txt",
		"Append-only crash log")
	f.StringVar(&sweepFlags.dbPath, "db", store.DefaultDBPath,
		"Run-history SQLite database")
	f.StringVar(&sweepFlags.workDir, "workdir", "",
		"Directory for the shared probe input file (default: system temp dir)")
	f.StringVar(&sweepFlags.sentinel, "sentinel", probe.DefaultSentinel,
		"Substring of toolchain output that marks a crash")
	f.IntVarP(&sweepFlags.jobs, "jobs", "j", sweep.DefaultJobs,
		"Max probes in flight")
	f.IntVar(&sweepFlags.limit, "limit", 0,
		"Stop after this many triples (0 = whole product)")
	f.DurationVar(&sweepFlags.timeout, "timeout", 0,
		"Per-probe timeout; a timed-out probe counts as invalid (0 = none)")
	f.BoolVar(&sweepFlags.noStore, "no-store", false,
		"Skip recording this run in the history database")
}

// storeRecorder mirrors crashes into the run-history store.
type storeRecorder struct {
	st    store.Store
	runID int64
}

func (r storeRecorder) Record(tr string, diagnostic []byte) error {
	_, err := r.st.InsertCrash(&store.Crash{
		RunID:      r.runID,
		Triple:     tr,
		Diagnostic: string(diagnostic),
	})
	return err
}

// multiRecorder fans each crash out to every recorder; the first failure
// aborts the sweep.
type multiRecorder []sweep.Recorder

func (m multiRecorder) Record(tr string, diagnostic []byte) error {
	for _, r := range m {
		if err := r.Record(tr, diagnostic); err != nil {
			return err
		}
	}
	return nil
}

func runSweep(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := logging.New("cli")

	cat, err := loadCatalog(sweepFlags.catalogPath)
	if err != nil {
		return err
	}

	version, err := probe.Verify(ctx, sweepFlags.binary, sweepFlags.wantVersion)
	if err != nil {
		return err
	}
	logger.Info("toolchain verified", "binary", sweepFlags.binary, "version", version)

	input, err := probe.WriteTempInput(sweepFlags.workDir)
	if err != nil {
		return err
	}
	// Removed only after sweep.Run returns, which guarantees a full drain.
	defer os.Remove(input)

	sink, err := results.OpenSink(sweepFlags.resultsPath)
	if err != nil {
		return err
	}
	defer sink.Close()

	rec := multiRecorder{sink}

	var (
		st  store.Store
		run *store.Run
	)
	if !sweepFlags.noStore {
		st, err = store.Open(sweepFlags.dbPath)
		if err != nil {
			return err
		}
		defer st.Close()

		run = &store.Run{
			Binary:    sweepFlags.binary,
			Toolchain: version,
			Jobs:      sweepFlags.jobs,
		}
		if _, err := st.CreateRun(run); err != nil {
			return err
		}
		rec = append(rec, storeRecorder{st: st, runID: run.ID})
	}

	gen := triple.NewGenerator(cat)
	tc := &probe.Toolchain{
		Binary:    sweepFlags.binary,
		InputPath: input,
		Sentinel:  sweepFlags.sentinel,
		Timeout:   sweepFlags.timeout,
	}

	stats, sweepErr := sweep.Run(ctx, gen, tc, rec, sweep.Config{
		Jobs:  sweepFlags.jobs,
		Limit: sweepFlags.limit,
	})

	if st != nil {
		run.Status = "done"
		if sweepErr != nil {
			run.Status = "aborted"
		}
		run.Submitted = stats.Submitted
		run.Valid = stats.Valid
		run.Invalid = stats.Invalid
		run.Crashed = stats.Crashed
		if err := st.FinishRun(run); err != nil {
			logger.Error("finish run record", "error", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"submitted %d  valid %d  invalid %d  crashed %d\ncrash log: %s\n",
		stats.Submitted, stats.Valid, stats.Invalid, stats.Crashed,
		sweepFlags.resultsPath)
	return sweepErr
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFromPath(path)
}
