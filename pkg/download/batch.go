package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/de-bkg/gnssget/pkg/archive"
	"github.com/de-bkg/gnssget/pkg/rinex"
	"github.com/de-bkg/gnssget/pkg/tools"
	"golang.org/x/sync/errgroup"
)

// GetBatch downloads all stations published for the batch target t with a single
// listing and returns one result per station.
func (d *Downloader) GetBatch(ctx context.Context, dir string, t archive.Target) []Result {
	start := time.Now()
	failed := func(o Outcome, err error) []Result {
		res := Result{Target: t}
		if o == NotPublished {
			res.Outcome, res.Err = o, err
		} else {
			res = res.fail(o, err)
		}
		res.Duration = time.Since(start)
		d.report(res)
		return []Result{res}
	}

	stage, err := newStage(dir)
	if err != nil {
		return failed(TransferFailed, err)
	}
	defer d.cleanup(stage, t)

	if _, err := d.Fetcher.Fetch(ctx, tools.FetchRequest{URL: t.URL, Pattern: t.Pattern(), CutDirs: t.CutDirs, Dir: stage}); err != nil {
		return failed(TransferFailed, err)
	}
	files := listBatch(stage, t.Remote, t.Suffixes)
	if len(files) == 0 {
		return failed(NotPublished, fmt.Errorf("%w: %s/%s", ErrNotPublished, t.URL, t.Pattern()))
	}

	var results []Result
	seen := map[string]bool{}
	for _, src := range files {
		site := stationOf(src)
		if seen[site] {
			continue
		}
		seen[site] = true
		res := d.finishSite(ctx, dir, t, site, src)
		res.Duration = time.Since(start)
		d.report(res)
		results = append(results, res)
		start = time.Now()
	}
	return results
}

func (d *Downloader) finishSite(ctx context.Context, dir string, t archive.Target, site, src string) Result {
	req := t.Request
	req.Site = site
	st, err := d.Table.Resolve(req)
	if err != nil {
		res := Result{Target: t}
		return res.fail(RenameFailed, err)
	}
	res := Result{Target: st, Path: filepath.Join(dir, st.Local)}
	if fileExists(res.Path) {
		res.Outcome = AlreadyPresent
		return res
	}
	return d.finish(ctx, res, src)
}

// listBatch returns the downloaded files matching remote, ordered by suffix preference
// and then by name.
func listBatch(dir, remote string, suffixes []string) []string {
	if len(suffixes) == 0 {
		suffixes = []string{""}
	}
	var files []string
	for _, s := range suffixes {
		matches, err := filepath.Glob(filepath.Join(dir, remote+s))
		if err != nil {
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
				files = append(files, m)
			}
		}
	}
	return files
}

// stationOf returns the station ID of a downloaded file.
func stationOf(path string) string {
	name := filepath.Base(tools.TrimCompression(path))
	if fn, err := rinex.ParseFilename(name); err == nil {
		return fn.Station()
	}
	if len(name) >= 4 {
		return strings.ToLower(name[:4])
	}
	return strings.ToLower(name)
}

// GetAll runs the units with at most Workers in parallel. Units sharing a product
// directory fetch into separate stages, see newStage. The results are returned in
// unit order.
func (d *Downloader) GetAll(ctx context.Context, units []Unit) []Result {
	per := make([][]Result, len(units))
	g, ctx := errgroup.WithContext(ctx)
	workers := d.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			if u.Target.Batch {
				per[i] = d.GetBatch(ctx, u.Dir, u.Target)
			} else {
				per[i] = []Result{d.Get(ctx, u.Dir, u.Target)}
			}
			return nil
		})
	}
	g.Wait()

	var results []Result
	for _, rs := range per {
		results = append(results, rs...)
	}
	return results
}
