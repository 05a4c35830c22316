package probe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// MinimalProgram is the fixed, syntactically valid input every probe
// compiles. Its only job is to get the driver past argument parsing.
const MinimalProgram = "int main(){return 1;}"

// WriteTempInput creates the shared input file under dir (os.TempDir when
// empty) and returns its absolute path. The caller removes it with
// os.Remove on the same path, only after every probe has finished.
func WriteTempInput(dir string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("trisect-%d.c", os.Getpid()))
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve input path: %w", err)
	}
	if err := os.WriteFile(abs, []byte(MinimalProgram), 0644); err != nil {
		return "", fmt.Errorf("write input file: %w", err)
	}
	return abs, nil
}

// Verify checks that the toolchain binary runs at all, and optionally that
// its --version output mentions wantVersion. Returns the first line of the
// version output. Any failure here is a fatal setup error for the sweep.
func Verify(ctx context.Context, binary, wantVersion string) (string, error) {
	out, err := exec.CommandContext(ctx, binary, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("toolchain %s not runnable: %w", binary, err)
	}
	version := strings.TrimSpace(string(out))
	if i := strings.IndexByte(version, '\n'); i >= 0 {
		version = version[:i]
	}
	if wantVersion != "" && !strings.Contains(string(out), wantVersion) {
		return version, fmt.Errorf("toolchain %s reports %q, want version containing %q",
			binary, version, wantVersion)
	}
	return version, nil
}
