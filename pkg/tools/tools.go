// Package tools wraps the external programs used for downloading, decompressing
// and converting GNSS files.
package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// DefaultTimeout limits a single tool invocation.
const DefaultTimeout = 10 * time.Minute

// ErrTimeout is returned when a tool invocation exceeds its timeout.
var ErrTimeout = errors.New("timeout")

// FetchRequest describes one download.
type FetchRequest struct {
	// URL is the remote directory, or the remote file if Pattern is empty.
	URL string

	// Pattern filters the files of the remote directory, e.g. "*0450.21d.*".
	Pattern string

	// CutDirs is the number of remote directories to drop so that the files land directly in Dir.
	CutDirs int

	// Dir is the local target directory.
	Dir string
}

// Fetcher downloads remote files into a local directory.
type Fetcher interface {
	// Fetch returns the local paths of the downloaded files. No match is not an error.
	Fetch(ctx context.Context, req FetchRequest) ([]string, error)
}

// Decompressor decompresses a .gz or .Z file in place.
type Decompressor interface {
	// Decompress returns the path of the decompressed file.
	Decompress(ctx context.Context, path string) (string, error)
}

// Converter converts a Hatanaka compressed observation file to a RINEX observation file.
type Converter interface {
	Convert(ctx context.Context, crxPath, rnxPath string) error
}

// ExitError is returned when a tool exits with a non-zero status.
type ExitError struct {
	Tool   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: rc:%d", e.Tool, e.Code)
	}
	return fmt.Sprintf("%s: rc:%d: %s", e.Tool, e.Code, e.Stderr)
}

// LookPath returns the path of the tool. A tool found in dir takes precedence over $PATH.
func LookPath(dir, name string) (string, error) {
	if dir != "" {
		p := filepath.Join(dir, name)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() && fi.Mode()&0o111 != 0 {
			return p, nil
		}
	}
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

// run executes the tool and waits at most timeout. The tool runs in its own process group
// which is killed as a whole when the timeout expires.
func run(ctx context.Context, timeout time.Duration, tool string, args ...string) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, tool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// Launch as new process group so that signals (ex: SIGINT) are not sent also the the child process.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true, // linux
	}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	err := cmd.Run()
	if err == nil {
		return nil
	}
	name := filepath.Base(tool)
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w after %s", name, ErrTimeout, timeout)
		}
		return fmt.Errorf("%s: %w", name, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Tool: name, Code: exitErr.ExitCode(), Stderr: string(bytes.TrimSpace(stderr.Bytes()))}
	}
	return fmt.Errorf("%s: %v", name, err)
}
