package rinex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// Crx2rnxOptions configures the Hatanaka decompression.
type Crx2rnxOptions struct {
	// Tool is the path of the CRX2RNX binary. Empty means look it up in $PATH.
	Tool string

	// Keep the compressed input file.
	KeepInput bool
}

// LookupCrx2rnx returns the path of the CRX2RNX tool in $PATH.
func LookupCrx2rnx() (string, error) {
	for _, name := range []string{"CRX2RNX", "crx2rnx"} {
		if tool, err := exec.LookPath(name); err == nil {
			return tool, nil
		}
	}
	return "", fmt.Errorf("crx2rnx: %w", exec.ErrNotFound)
}

// Crx2rnx decompresses the Hatanaka-compressed RINEX obs file crxPath and writes it to rnxPath.
// The compressed file is piped to the tool on stdin, the output is written to a temporary file
// in the target directory and renamed to rnxPath on success. Unless KeepInput is set, crxPath is
// removed afterwards.
// see http://terras.gsi.go.jp/ja/crx2rnx.html
func Crx2rnx(ctx context.Context, crxPath, rnxPath string, opts Crx2rnxOptions) error {
	if !IsHatanakaCompressed(crxPath) {
		return fmt.Errorf("crx2rnx: not a Hatanaka compressed file: %s", crxPath)
	}

	tool := opts.Tool
	if tool == "" {
		var err error
		if tool, err = LookupCrx2rnx(); err != nil {
			return err
		}
	}

	in, err := os.Open(crxPath)
	if err != nil {
		return fmt.Errorf("crx2rnx: %v", err)
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(rnxPath), "."+filepath.Base(rnxPath)+".*")
	if err != nil {
		return fmt.Errorf("crx2rnx: %v", err)
	}
	tmpPath := out.Name()
	defer os.Remove(tmpPath)

	// Run decompression tool, reading from stdin and writing to stdout.
	cmd := exec.CommandContext(ctx, tool, "-")
	cmd.Stdin = in
	cmd.Stdout = out
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// Launch as new process group so that signals (ex: SIGINT) are not sent also the the child process.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true, // linux
	}

	err = cmd.Run()
	if cerr := out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("crx2rnx: %s: %w", crxPath, ctx.Err())
		}
		rc := -1
		if cmd.ProcessState != nil {
			rc = cmd.ProcessState.ExitCode()
		}
		if rc == 2 { // Warning
			log.Printf("W! crx2rnx: %s: %s", crxPath, bytes.TrimSpace(stderr.Bytes()))
		} else { // Error
			return fmt.Errorf("crx2rnx: rc:%d: %v: %s", rc, err, bytes.TrimSpace(stderr.Bytes()))
		}
	}

	if fi, err := os.Stat(tmpPath); err != nil || fi.Size() == 0 {
		return fmt.Errorf("crx2rnx: no output for %s", crxPath)
	}
	if err := os.Rename(tmpPath, rnxPath); err != nil {
		return fmt.Errorf("crx2rnx: %v", err)
	}

	// Return filepath
	if _, err := os.Stat(rnxPath); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("crx2rnx: no such file: %s", rnxPath)
	}

	if !opts.KeepInput {
		if err := os.Remove(crxPath); err != nil {
			log.Printf("W! crx2rnx: %v", err)
		}
	}
	return nil
}
