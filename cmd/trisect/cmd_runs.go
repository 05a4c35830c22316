package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"trisect/internal/store"
)

var runsFlags struct {
	dbPath string
}

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List past sweep runs, or show one run's crashes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsFlags.dbPath, "db", store.DefaultDBPath,
		"Run-history SQLite database")
}

func runRuns(cmd *cobra.Command, args []string) error {
	st, err := store.Open(runsFlags.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		return showRun(cmd, st, id)
	}

	runs, err := st.ListRuns()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return nil
	}
	fmt.Fprintf(out, "%-4s %-10s %-20s %-8s %10s %10s %8s\n",
		"ID", "STATUS", "STARTED", "BINARY", "SUBMITTED", "INVALID", "CRASHED")
	for _, r := range runs {
		fmt.Fprintf(out, "%-4d %-10s %-20s %-8s %10d %10d %8d\n",
			r.ID, r.Status, r.StartedAt, r.Binary, r.Submitted, r.Invalid, r.Crashed)
	}
	return nil
}

func showRun(cmd *cobra.Command, st store.Store, id int64) error {
	run, err := st.GetRun(id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %d not found", id)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %d  %s  %s\n", run.ID, run.Status, run.Toolchain)
	fmt.Fprintf(out, "submitted %d  valid %d  invalid %d  crashed %d\n",
		run.Submitted, run.Valid, run.Invalid, run.Crashed)

	crashes, err := st.ListCrashesByRun(id)
	if err != nil {
		return err
	}
	for _, c := range crashes {
		fmt.Fprintf(out, "\n%q\n%s\n", c.Triple, c.Diagnostic)
	}
	return nil
}
