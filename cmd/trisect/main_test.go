package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"trisect/internal/results"
	"trisect/internal/signature"
)

func runTrisect(t *testing.T, args ...string) string {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "./cmd/trisect"}, args...)...)
	cmd.Dir = filepath.Join("..", "..")
	cmd.Env = os.Environ()
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("trisect %v: %v\n%s", args, err, out)
	}
	return string(out)
}

func TestAnalyze_FileReport(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "results.txt")
	artifactPath := filepath.Join(dir, "report.json")

	sink, err := results.OpenSink(logPath)
	if err != nil {
		t.Fatal(err)
	}
	diag := []byte("PLEASE submit a bug report\n#0 0xdeadbeef crash_handler\n")
	for _, tr := range []string{"avr-apple-linux", "avr-pc-linux"} {
		if err := sink.Record(tr, diag); err != nil {
			t.Fatal(err)
		}
	}
	if err := sink.Record("m68k-ibm-aix", []byte("#0 0x00ff other_handler\n")); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	out := runTrisect(t, "analyze", "--results", logPath, "-o", artifactPath)
	if !strings.Contains(out, "3 crash record(s), 2 distinct signature(s)") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	if !strings.Contains(out, `"avr-apple-linux"`) {
		t.Fatalf("missing first-encountered representative:\n%s", out)
	}

	data, err := os.ReadFile(artifactPath)
	if err != nil {
		t.Fatalf("artifact not created: %v", err)
	}
	var report signature.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("artifact not valid JSON: %v", err)
	}
	if report.TotalRecords != 3 || len(report.Groups) != 2 {
		t.Fatalf("report = %d records / %d groups, want 3 / 2", report.TotalRecords, len(report.Groups))
	}
	if got := report.Groups[0].Count; got != 2 {
		t.Fatalf("first group count = %d, want 2", got)
	}
}

func TestCatalog_Counts(t *testing.T) {
	out := runTrisect(t, "catalog")
	for _, want := range []string{"architecture", "vendor", "os", "environment", "product"} {
		if !strings.Contains(out, want) {
			t.Fatalf("catalog output missing %q:\n%s", want, out)
		}
	}
}
