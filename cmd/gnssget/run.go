package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/de-bkg/gnssget/pkg/archive"
	"github.com/de-bkg/gnssget/pkg/config"
	"github.com/de-bkg/gnssget/pkg/download"
	"github.com/de-bkg/gnssget/pkg/gpstime"
	"github.com/de-bkg/gnssget/pkg/metrics"
	"github.com/de-bkg/gnssget/pkg/tools"
	"github.com/google/uuid"
	"github.com/robfig/cron"
	"github.com/urfave/cli/v2"
)

// missingTool stands in for a tool that was not found. Units that need it fail.
type missingTool struct {
	err error
}

func (m missingTool) Convert(ctx context.Context, crxPath, rnxPath string) error {
	return m.err
}

// newDownloader wires the external tools found in the third party directory or $PATH.
func newDownloader(c *cli.Context, opts config.Options) (*download.Downloader, error) {
	to := timeout(c)
	wget, err := tools.NewWget(opts.ThirdPartyDir)
	if err != nil {
		return nil, err
	}
	wget.Verbose = opts.PrintInfoWget
	wget.Timeout = to

	d := &download.Downloader{
		Fetcher: wget,
		Table:   archive.DefaultTable(),
		Workers: c.Int("workers"),
		Quiet:   c.Bool("quiet"),
	}

	gz, err := tools.NewGzip(opts.ThirdPartyDir)
	if err != nil {
		log.Printf("W! %v: .Z files cannot be decompressed", err)
	} else {
		gz.Timeout = to
	}
	d.Decompressor = &tools.Archiver{Gzip: gz}

	if crx, err := tools.NewCrx2rnx(opts.ThirdPartyDir); err != nil {
		d.Converter = missingTool{fmt.Errorf("crx2rnx: %w", err)}
	} else {
		crx.Timeout = to
		d.Converter = crx
	}
	return d, nil
}

// runOnce downloads everything configured in opts and reports the metrics.
func runOnce(ctx context.Context, c *cli.Context, opts config.Options) (download.Summary, error) {
	runID := uuid.NewString()
	log.SetPrefix(fmt.Sprintf("[%s] ", runID[:8]))
	defer log.SetPrefix("")

	d, err := newDownloader(c, opts)
	if err != nil {
		return download.Summary{}, err
	}
	rec := metrics.New()
	d.Recorder = rec
	rec.Start(runID, opts.Archive)
	if !d.Quiet {
		log.Printf("I! run %s: %s, %d day(s) from %s", runID, opts.Archive, opts.NDays, opts.Start.Time().Format("2006-01-02"))
	}

	sum, err := d.Run(ctx, opts)
	rec.Finish(time.Now())
	if path := c.String("metrics-textfile"); path != "" {
		if err := rec.WriteTextfile(path); err != nil {
			log.Printf("E! metrics: %v", err)
		}
	}
	if url := c.String("pushgateway"); url != "" {
		host, _ := os.Hostname()
		if err := rec.Push(url, "gnssget", host); err != nil {
			log.Printf("E! metrics: %v", err)
		}
	}
	return sum, err
}

func runAction(c *cli.Context) error {
	path, err := configArg(c)
	if err != nil {
		return err
	}
	opts, err := config.Load(path)
	if err != nil {
		return cli.Exit(err, 2)
	}
	sum, err := runOnce(c.Context, c, opts)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if sum.AllFailed() {
		return cli.Exit(fmt.Sprintf("all %d downloads failed", sum.Total), 1)
	}
	return nil
}

func resolveAction(c *cli.Context) error {
	path, err := configArg(c)
	if err != nil {
		return err
	}
	opts, err := config.Load(path)
	if err != nil {
		return cli.Exit(err, 2)
	}
	d := &download.Downloader{Table: archive.DefaultTable()}
	days, err := d.Units(opts)
	if err != nil {
		return cli.Exit(err, 2)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tURL\tPATTERN\tLOCAL")
	for _, units := range days {
		for _, u := range units {
			t := u.Target
			pattern := t.Pattern()
			if t.Direct {
				pattern = "-"
			}
			local := t.Local
			if t.Batch {
				local = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s/%s\n", t.Request.Kind, t.URL, pattern, u.Dir, local)
		}
	}
	return w.Flush()
}

func watchAction(c *cli.Context) error {
	path, err := configArg(c)
	if err != nil {
		return err
	}
	if _, err := config.Load(path); err != nil {
		return cli.Exit(err, 2)
	}
	spec := c.String("schedule")
	if _, err := cron.Parse(spec); err != nil {
		return cli.Exit(fmt.Sprintf("invalid schedule %q: %v", spec, err), 2)
	}
	latency, ndays := c.Int("latency"), c.Int("ndays")
	if ndays < 1 {
		ndays = 1
	}

	var mu sync.Mutex
	job := func() {
		if !mu.TryLock() {
			log.Printf("W! previous run still active, skipping")
			return
		}
		defer mu.Unlock()

		// Reload to pick up changes of the configuration.
		opts, err := config.Load(path)
		if err != nil {
			log.Printf("E! %v", err)
			return
		}
		today := gpstime.FromTime(time.Now().UTC()).StartOfDay()
		opts.Start = config.Date{Epoch: today.AddDays(-latency - ndays + 1)}
		opts.NDays = ndays
		if _, err := runOnce(c.Context, c, opts); err != nil {
			log.Printf("E! %v", err)
		}
	}

	cr := cron.New()
	if err := cr.AddFunc(spec, job); err != nil {
		return cli.Exit(err, 2)
	}
	cr.Start()
	defer cr.Stop()
	if !c.Bool("quiet") {
		log.Printf("I! watching %s on schedule %q", path, spec)
	}
	<-c.Context.Done()
	return nil
}

func gpsweekAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("gpsweek needs a date", 2)
	}
	ep, err := gpstime.Parse(c.Args().First())
	if err != nil {
		return cli.Exit(err, 2)
	}
	year, doy := ep.YearDoy()
	week, dow := ep.GPSWeek()

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "date\t%s\n", ep.Time().Format("2006-01-02"))
	fmt.Fprintf(w, "doy\t%04d-%03d\n", year, doy)
	fmt.Fprintf(w, "gpsweek\t%04d %d\n", week, dow)
	fmt.Fprintf(w, "mjd\t%d\n", ep.MJD)
	fmt.Fprintf(w, "utc-gps\t%d s\n", gpstime.UTCOffset(ep))
	if gpstime.LeapTableEnd.Before(ep) && ep.Sub(gpstime.LeapTableEnd) > 5*365*gpstime.SecondsPerDay {
		fmt.Fprintf(w, "note\tleap second table ends %s\n", gpstime.LeapTableEnd.Time().Format("2006-01-02"))
	}
	return w.Flush()
}
