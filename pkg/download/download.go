// Package download fetches, decompresses and converts GNSS data and products.
//
// Every unit of work follows the same steps: skip if the local file exists, fetch into
// a private staging directory, locate the compressed file (.gz before .Z), decompress,
// rename or convert into the product directory, check the result and clean up.
// Failures are reported per unit and never stop a run.
package download

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/de-bkg/gnssget/pkg/archive"
	"github.com/de-bkg/gnssget/pkg/tools"
)

// Outcome is the result of one unit of work.
type Outcome int

// Outcomes.
const (
	Downloaded Outcome = iota
	AlreadyPresent
	NotPublished
	TransferFailed
	DecompressFailed
	RenameFailed
	ConvertFailed
)

var outcomeNames = [...]string{"downloaded", "already_present", "not_published", "transfer_failed", "decompress_failed", "rename_failed", "convert_failed"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// Failed reports whether the outcome is a failure.
func (o Outcome) Failed() bool {
	return o >= NotPublished
}

// errors
var (
	ErrNotPublished = errors.New("not published")
	ErrTransfer     = errors.New("transfer failed")
	ErrDecompress   = errors.New("decompression failed")
	ErrRename       = errors.New("rename failed")
	ErrConvert      = errors.New("conversion failed")
)

var outcomeErrs = map[Outcome]error{
	NotPublished:     ErrNotPublished,
	TransferFailed:   ErrTransfer,
	DecompressFailed: ErrDecompress,
	RenameFailed:     ErrRename,
	ConvertFailed:    ErrConvert,
}

// Result reports one unit of work.
type Result struct {
	Target archive.Target

	// Path is the final local file.
	Path     string
	Outcome  Outcome
	Err      error
	Duration time.Duration

	// Fallback is set if the result belongs to the fallback product of Target.
	Fallback bool
}

func (r *Result) fail(o Outcome, err error) Result {
	r.Outcome = o
	if err == nil {
		r.Err = outcomeErrs[o]
	} else {
		r.Err = fmt.Errorf("%w: %v", outcomeErrs[o], err)
	}
	return *r
}

// Recorder records the outcome of every unit of work, e.g. as metrics.
type Recorder interface {
	Observe(product, outcome string, d time.Duration)
}

// Unit is a resolved target together with its local directory.
type Unit struct {
	Dir    string
	Target archive.Target
}

// Downloader runs units of work with the configured tools.
type Downloader struct {
	Fetcher      tools.Fetcher
	Decompressor tools.Decompressor
	Converter    tools.Converter
	Table        archive.Table

	// Recorder is optional.
	Recorder Recorder

	// Workers limits the number of concurrent units. Values below 2 run sequentially.
	Workers int

	// Quiet suppresses the informational log messages.
	Quiet bool
}

func (d *Downloader) infof(format string, v ...interface{}) {
	if !d.Quiet {
		log.Printf("I! "+format, v...)
	}
}

// Get downloads the target into dir. t must not be a batch target, see GetBatch.
func (d *Downloader) Get(ctx context.Context, dir string, t archive.Target) Result {
	start := time.Now()
	res := d.get(ctx, dir, t)
	if res.Outcome == NotPublished && t.Fallback != 0 {
		req := t.Request
		req.Kind = t.Fallback
		if fb, err := d.Table.Resolve(req); err == nil {
			d.infof("%s not published, trying %s", t, fb)
			res = d.get(ctx, dir, fb)
			res.Fallback = true
		}
	}
	res.Duration = time.Since(start)
	d.report(res)
	return res
}

func (d *Downloader) get(ctx context.Context, dir string, t archive.Target) Result {
	res := Result{Target: t}
	if t.Batch || t.Local == "" {
		return res.fail(TransferFailed, fmt.Errorf("%s: no local filename", t))
	}
	res.Path = filepath.Join(dir, t.Local)
	if fileExists(res.Path) {
		res.Outcome = AlreadyPresent
		return res
	}
	stage, err := newStage(dir)
	if err != nil {
		return res.fail(TransferFailed, err)
	}
	defer d.cleanup(stage, t)

	src, err := d.fetch(ctx, stage, t)
	if err != nil {
		if errors.Is(err, ErrNotPublished) {
			res.Outcome, res.Err = NotPublished, err
			return res
		}
		return res.fail(TransferFailed, err)
	}
	return d.finish(ctx, res, src)
}

// newStage creates a private staging directory below dir. Every unit fetches and
// decompresses in its own stage, only the final file is moved to dir.
func newStage(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return os.MkdirTemp(dir, ".stage-")
}

// fetch downloads the target into the stage and returns the local path of the
// (compressed) remote file. Files of a failed transfer may be incomplete and are
// never returned.
func (d *Downloader) fetch(ctx context.Context, stage string, t archive.Target) (string, error) {
	if t.Direct {
		urls := []string{t.URL}
		if len(t.Suffixes) > 0 {
			urls = urls[:0]
			for _, s := range t.Suffixes {
				urls = append(urls, t.URL+s)
			}
		}
		for _, u := range urls {
			files, err := d.Fetcher.Fetch(ctx, tools.FetchRequest{URL: u, Dir: stage})
			if err != nil {
				return "", err
			}
			if len(files) > 0 {
				return files[0], nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrNotPublished, t.URL)
	}

	if _, err := d.Fetcher.Fetch(ctx, tools.FetchRequest{URL: t.URL, Pattern: t.Pattern(), CutDirs: t.CutDirs, Dir: stage}); err != nil {
		return "", err
	}
	src := tryInOrder(stage, t.Remote, t.Suffixes)
	if src == "" {
		return "", fmt.Errorf("%w: %s/%s", ErrNotPublished, t.URL, t.Pattern())
	}
	return src, nil
}

// finish decompresses src and renames or converts it to the final file.
func (d *Downloader) finish(ctx context.Context, res Result, src string) Result {
	t := res.Target
	path := src
	if tools.TrimCompression(src) != src {
		out, err := d.Decompressor.Decompress(ctx, src)
		if err != nil {
			return res.fail(DecompressFailed, err)
		}
		path = out
	}

	switch {
	case t.Convert:
		if err := d.Converter.Convert(ctx, path, res.Path); err != nil {
			return res.fail(ConvertFailed, err)
		}
	case path != res.Path:
		if err := os.Rename(path, res.Path); err != nil {
			return res.fail(RenameFailed, err)
		}
	}

	if !fileExists(res.Path) {
		if t.Convert {
			return res.fail(ConvertFailed, fmt.Errorf("no such file: %s", res.Path))
		}
		return res.fail(DecompressFailed, fmt.Errorf("no such file: %s", res.Path))
	}
	res.Outcome = Downloaded
	return res
}

// tryInOrder returns the first file in dir matching the remote name with one of the suffixes,
// trying the suffixes in the given order. Without suffixes the remote name itself is matched.
func tryInOrder(dir, remote string, suffixes []string) string {
	if len(suffixes) == 0 {
		return firstMatch(dir, remote)
	}
	for _, s := range suffixes {
		if p := firstMatch(dir, remote+s); p != "" {
			return p
		}
	}
	return ""
}

func firstMatch(dir, pattern string) string {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	for _, m := range matches {
		if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
			return m
		}
	}
	return ""
}

// cleanup removes the stage together with the directories mirrored as side effect
// of recursive downloads.
func (d *Downloader) cleanup(stage string, t archive.Target) {
	var errs []error
	for _, sub := range t.Cleanup {
		errs = append(errs, os.RemoveAll(filepath.Join(stage, sub)))
	}
	errs = append(errs, os.RemoveAll(stage))
	if err := errors.Join(errs...); err != nil {
		log.Printf("W! cleanup: %v", err)
	}
}

func (d *Downloader) report(res Result) {
	name := filepath.Base(res.Path)
	if res.Path == "" {
		name = res.Target.String()
	}
	switch {
	case res.Outcome == AlreadyPresent:
		d.infof("%s already exists", res.Path)
	case res.Outcome == Downloaded:
		d.infof("%s downloaded", res.Path)
	case res.Outcome == NotPublished:
		log.Printf("W! %s: %v", name, res.Err)
	default:
		log.Printf("E! %s: %v", name, res.Err)
	}
	if d.Recorder != nil {
		kind := res.Target.Request.Kind.String()
		d.Recorder.Observe(kind, res.Outcome.String(), res.Duration)
	}
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular() && !strings.HasPrefix(fi.Name(), ".")
}
