package extractors

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/custodia-labs/adam/internal/core/ports/driven"
)

// Ensure ExecRunner implements the interface.
var _ driven.CommandRunner = ExecRunner{}

// ExecRunner runs external binaries with os/exec.
type ExecRunner struct{}

// LookPath searches PATH for name.
func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes name and returns stdout. Stderr is folded into the error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
