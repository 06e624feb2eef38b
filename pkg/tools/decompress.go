package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mholt/archiver/v3"
)

// TrimCompression removes a .gz or .Z suffix from the filename.
func TrimCompression(path string) string {
	for _, ext := range []string{".gz", ".Z"} {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext)
		}
	}
	return path
}

// Gzip decompresses with the gzip tool, which handles both .gz and .Z.
type Gzip struct {
	Path    string
	Timeout time.Duration
}

// NewGzip looks up gzip in dir or $PATH.
func NewGzip(dir string) (*Gzip, error) {
	p, err := LookPath(dir, "gzip")
	if err != nil {
		return nil, err
	}
	return &Gzip{Path: p}, nil
}

// Decompress runs gzip -d -f. The compressed file is removed by gzip on success.
func (g *Gzip) Decompress(ctx context.Context, path string) (string, error) {
	out := TrimCompression(path)
	if out == path {
		return "", fmt.Errorf("gzip: unknown suffix: %s", path)
	}
	if err := run(ctx, g.Timeout, g.Path, "-d", "-f", path); err != nil {
		return "", err
	}
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("gzip: no output for %s", path)
	}
	return out, nil
}

// Archiver decompresses .gz files natively and hands .Z files to the gzip tool.
type Archiver struct {
	// Gzip handles the unix compress format. Can be nil if no .Z files are expected.
	Gzip *Gzip
}

// Decompress writes the decompressed file next to path and removes path on success.
func (a *Archiver) Decompress(ctx context.Context, path string) (string, error) {
	if strings.HasSuffix(path, ".Z") {
		if a.Gzip == nil {
			return "", fmt.Errorf("decompress: no tool for %s", path)
		}
		return a.Gzip.Decompress(ctx, path)
	}
	if !strings.HasSuffix(path, ".gz") {
		return "", fmt.Errorf("decompress: unknown suffix: %s", path)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out := TrimCompression(path)
	tmp := filepath.Join(filepath.Dir(out), "."+filepath.Base(out)+".part")
	os.Remove(tmp)
	if err := archiver.DecompressFile(path, tmp); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("decompress: %s: %v", path, err)
	}
	if err := os.Rename(tmp, out); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("decompress: %v", err)
	}
	if err := os.Remove(path); err != nil {
		return out, fmt.Errorf("decompress: %v", err)
	}
	return out, nil
}
