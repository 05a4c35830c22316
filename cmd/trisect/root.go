package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trisect/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "trisect",
	Short: "Hunt for toolchain crashes across the target-triple space",
	Long: "Trisect enumerates every target triple a clang-style toolchain could be\n" +
		"asked to build for, probes each one, and deduplicates the crashes it finds\n" +
		"by stack-trace signature so each crash class needs one look.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// envOr returns the environment value for key, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
