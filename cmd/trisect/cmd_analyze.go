package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trisect/internal/logging"
	"trisect/internal/results"
	"trisect/internal/signature"
)

var analyzeFlags struct {
	resultsPath    string
	outputPath     string
	splitUnmatched bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Group logged crashes by stack-trace signature",
	Long: "Analyze reads the crash log a sweep produced, extracts the stack-frame\n" +
		"signature from each diagnostic, and prints one representative per\n" +
		"distinct signature in the order each class first appeared.",
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.resultsPath, "results", "results.txt",
		"Crash log to analyze")
	f.StringVarP(&analyzeFlags.outputPath, "output", "o", "",
		"Also write the full report as JSON to this file")
	f.BoolVar(&analyzeFlags.splitUnmatched, "split-unmatched", false,
		"Keep records with no recognizable frames as separate groups instead of one")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	records, err := results.ReadLog(analyzeFlags.resultsPath)
	if err != nil {
		return err
	}

	groups := signature.GroupRecords(records, signature.Options{
		SplitUnmatched: analyzeFlags.splitUnmatched,
	})
	report := signature.BuildReport(groups, len(records))

	fmt.Fprint(cmd.OutOrStdout(), signature.FormatReport(report))

	if analyzeFlags.outputPath != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if err := os.WriteFile(analyzeFlags.outputPath, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logging.New("cli").Info("report written", "path", analyzeFlags.outputPath, "groups", len(report.Groups))
	}
	return nil
}
