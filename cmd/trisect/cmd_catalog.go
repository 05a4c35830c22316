package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var catalogFlags struct {
	catalogPath string
	values      bool
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show the triple axes a sweep would enumerate",
	RunE:  runCatalog,
}

func init() {
	f := catalogCmd.Flags()
	f.StringVar(&catalogFlags.catalogPath, "catalog", "",
		"Axis catalog YAML (default: embedded LLVM 15 catalog)")
	f.BoolVar(&catalogFlags.values, "values", false,
		"List every value of every axis, not just counts")
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	cat, err := loadCatalog(catalogFlags.catalogPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, axis := range cat.Axes() {
		fmt.Fprintf(out, "%-20s %d values\n", axis.Name, len(axis.Values))
		if !catalogFlags.values {
			continue
		}
		for _, v := range axis.Values {
			if v == "" {
				v = "(absent)"
			}
			fmt.Fprintf(out, "  %s\n", v)
		}
	}
	fmt.Fprintf(out, "%-20s %d triples\n", "product", cat.Product())
	return nil
}
