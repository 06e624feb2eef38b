package download

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/de-bkg/gnssget/pkg/config"
)

// Summary counts the results of a run by outcome.
type Summary struct {
	Counts map[Outcome]int
	Total  int

	// Failures holds the failed results.
	Failures []Result
}

// Add adds the results to the summary.
func (s *Summary) Add(results ...Result) {
	if s.Counts == nil {
		s.Counts = make(map[Outcome]int)
	}
	for _, r := range results {
		s.Counts[r.Outcome]++
		s.Total++
		if r.Outcome.Failed() {
			s.Failures = append(s.Failures, r)
		}
	}
}

// Failed returns the number of failed units.
func (s Summary) Failed() int {
	return len(s.Failures)
}

// AllFailed reports whether units were attempted and every one of them failed.
func (s Summary) AllFailed() bool {
	return s.Total > 0 && s.Failed() == s.Total
}

func (s Summary) String() string {
	var parts []string
	for o := Downloaded; o <= ConvertFailed; o++ {
		if n := s.Counts[o]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", o, n))
		}
	}
	if len(parts) == 0 {
		return "no units"
	}
	return fmt.Sprintf("%d units: %s", s.Total, strings.Join(parts, " "))
}

// ErrNoUnits is returned by Run if no product is enabled.
var ErrNoUnits = errors.New("no products enabled")

// Units resolves the units of all days of the configured period. Any resolution error,
// e.g. a product without naming table entry, is a configuration error and returned
// before anything is downloaded.
func (d *Downloader) Units(opts config.Options) ([][]Unit, error) {
	lists, err := LoadSiteLists(opts)
	if err != nil {
		return nil, err
	}
	days := make([][]Unit, 0, opts.NDays)
	var errs []error
	for i := 0; i < opts.NDays; i++ {
		day := opts.Start.Epoch.StartOfDay().AddDays(i)
		units, err := Plan(opts, d.Table, day, lists)
		if err != nil {
			errs = append(errs, err)
			if i == 0 {
				// Errors repeat for every day.
				break
			}
		}
		days = append(days, units)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return days, nil
}

// Run downloads all enabled products for every day of the configured period.
// A failed unit never stops the run. The returned error is a configuration error
// or the cancellation of ctx.
func (d *Downloader) Run(ctx context.Context, opts config.Options) (Summary, error) {
	var sum Summary
	if !opts.Download {
		d.infof("downloading is switched off")
		return sum, nil
	}
	days, err := d.Units(opts)
	if err != nil {
		return sum, fmt.Errorf("check configuration: %w", err)
	}

	n := 0
	for _, units := range days {
		n += len(units)
	}
	if n == 0 {
		return sum, ErrNoUnits
	}

	for i, units := range days {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if len(units) == 0 {
			continue
		}
		day := opts.Start.Epoch.StartOfDay().AddDays(i)
		year, doy := day.YearDoy()
		d.infof("processing %04d-%03d (%d units)", year, doy, len(units))
		sum.Add(d.GetAll(ctx, units)...)
	}
	if sum.Failed() > 0 {
		log.Printf("W! %s", sum)
	} else {
		d.infof("%s", sum)
	}
	return sum, ctx.Err()
}
