package pkg

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
)

// RunCommandLine runs a shell-free command line in dir, e.g. "go vet ./...".
// Output is copied to out.
func RunCommandLine(ctx context.Context, dir string, line string, out io.Writer) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return errors.New("empty command line")
	}
	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out

	return cmd.Run()
}
