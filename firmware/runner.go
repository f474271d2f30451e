package firmware

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Runner executes an external command and reports its exit code and combined
// output. A non-zero exit is a normal outcome, not an error; the error return
// is reserved for infrastructure failures (command missing, pipe errors,
// context cancelled before completion).
type Runner interface {
	Run(ctx context.Context, dir string, argv []string) (int, string, error)
}

// ExecRunner runs commands via os/exec with stdout and stderr interleaved
// into one stream, the way a terminal would see them.
type ExecRunner struct {
	// OnLine, when set, receives each output line as it arrives. Used for
	// live progress display; the full output is still returned at the end.
	OnLine func(line string)

	// MaxLineLength bounds the scanner buffer; defaults to 1 MiB.
	MaxLineLength int
}

// Run executes argv in dir and blocks until it finishes.
func (r *ExecRunner) Run(ctx context.Context, dir string, argv []string) (int, string, error) {
	if len(argv) == 0 || argv[0] == "" {
		return -1, "", errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = os.Environ()

	pipeReader, pipeWriter := io.Pipe()
	cmd.Stdout = pipeWriter
	cmd.Stderr = pipeWriter

	maxLine := r.MaxLineLength
	if maxLine <= 0 {
		maxLine = 1024 * 1024
	}

	if err := cmd.Start(); err != nil {
		_ = pipeWriter.Close()
		_ = pipeReader.Close()
		return exitCodeFromError(err), "", err
	}

	var output strings.Builder
	var scanErr error
	var readWG sync.WaitGroup
	readWG.Add(1)
	go func() {
		defer readWG.Done()
		scanner := bufio.NewScanner(pipeReader)
		scanner.Buffer(make([]byte, 0, 1024), maxLine)
		for scanner.Scan() {
			line := scanner.Text()
			output.WriteString(line)
			output.WriteByte('\n')
			if r.OnLine != nil {
				r.OnLine(line)
			}
		}
		if err := scanner.Err(); err != nil {
			scanErr = err
			// Keep draining so the writer never blocks and Wait can return.
			_, _ = io.Copy(io.Discard, pipeReader)
		}
	}()

	waitErr := cmd.Wait()
	_ = pipeWriter.Close()
	readWG.Wait()
	_ = pipeReader.Close()

	if scanErr != nil {
		err := fmt.Errorf("reading build output: %w", scanErr)
		return exitCodeFromError(err), output.String(), err
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			// The tool ran and failed; that is a result, not an error.
			return exitErr.ExitCode(), output.String(), nil
		}
		return exitCodeFromError(waitErr), output.String(), waitErr
	}
	return 0, output.String(), nil
}

// exitCodeFromError maps infrastructure errors to conventional shell codes:
// 127 for a missing command, 1 otherwise.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, exec.ErrNotFound) {
		return 127
	}
	if strings.Contains(err.Error(), "executable file not found") {
		return 127
	}
	return 1
}
