package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// wget exit status 8 means the server issued an error response, e.g. for a missing file.
const wgetServerError = 8

// Wget downloads with GNU wget.
type Wget struct {
	Path    string
	Verbose bool // print wget's progress information
	Timeout time.Duration
}

// NewWget looks up wget in dir or $PATH.
func NewWget(dir string) (*Wget, error) {
	p, err := LookPath(dir, "wget")
	if err != nil {
		return nil, err
	}
	return &Wget{Path: p}, nil
}

// Args returns the wget command line arguments for the request.
func (w *Wget) Args(req FetchRequest) []string {
	var args []string
	if !w.Verbose {
		args = append(args, "-q")
	}
	if req.Pattern == "" {
		return append(args, "-P", req.Dir, req.URL)
	}
	return append(args,
		"-r", "-nH",
		"-A", req.Pattern,
		"--cut-dirs="+strconv.Itoa(req.CutDirs),
		"-P", req.Dir,
		strings.TrimSuffix(req.URL, "/")+"/",
	)
}

// Fetch runs wget and returns the files in req.Dir matching the request.
func (w *Wget) Fetch(ctx context.Context, req FetchRequest) ([]string, error) {
	if req.Dir == "" {
		return nil, errors.New("wget: no target directory")
	}
	if err := os.MkdirAll(req.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("wget: %v", err)
	}

	err := run(ctx, w.Timeout, w.Path, w.Args(req)...)
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code == wgetServerError {
		err = nil
	}

	pattern := req.Pattern
	if pattern == "" {
		pattern = path.Base(req.URL)
	}
	files, globErr := filepath.Glob(filepath.Join(req.Dir, pattern))
	if globErr != nil {
		return nil, fmt.Errorf("wget: %v", globErr)
	}
	return files, err
}
