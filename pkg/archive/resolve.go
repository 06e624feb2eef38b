package archive

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/de-bkg/gnssget/pkg/gnss"
	"github.com/de-bkg/gnssget/pkg/gpstime"
)

// AllSites selects all stations published by the archive.
const AllSites = "all"

// CompressionSuffixes are the compression suffixes tried in this order.
var CompressionSuffixes = []string{".gz", ".Z"}

// Request is the unit of work: one product for one epoch.
type Request struct {
	Epoch   gpstime.Epoch
	Kind    Kind
	Archive Archive // selected mirror
	Center  string  // analysis center for orbits, clocks, ERP and ionosphere maps
	Site    string  // four character station ID, empty or "all" for the whole batch
	Hour    int
	Minute  int
	System  gnss.System // hourly navigation only
}

// Target is a resolved request.
type Target struct {
	Request Request
	Host    Archive

	// URL is the remote directory, or the remote file without compression suffix for direct downloads.
	URL     string
	CutDirs int

	// Remote is the remote filename or glob pattern without compression suffix.
	Remote string

	// Local is the canonical local filename. It is empty for batches.
	Local  string
	SubDir string

	Suffixes []string
	Direct   bool
	Convert  bool
	Batch    bool
	Cleanup  []string
	Fallback Kind
}

// Pattern returns the accept pattern for the remote listing.
func (t Target) Pattern() string {
	if len(t.Suffixes) == 0 {
		return t.Remote
	}
	return t.Remote + ".*"
}

// Rename reports whether the remote file gets a new name locally.
func (t Target) Rename() bool {
	return !t.Convert && t.Local != "" && t.Local != t.Remote
}

func (t Target) String() string {
	name := t.Local
	if name == "" {
		name = t.Remote
	}
	return fmt.Sprintf("%s %s", t.Request.Kind, name)
}

// Resolve resolves the request to the remote location and the local filename.
func (t Table) Resolve(req Request) (Target, error) {
	if _, ok := kinds[req.Kind]; !ok {
		return Target{}, fmt.Errorf("%w: %v", ErrNoEntry, req.Kind)
	}
	if req.Kind.NeedsCenter() {
		if req.Center == "" {
			return Target{}, fmt.Errorf("%w: %s needs an analysis center", ErrUnknownCenter, req.Kind)
		}
		if req.Kind != Ionex {
			if err := checkCenter(req.Kind, strings.ToLower(req.Center)); err != nil {
				return Target{}, err
			}
		}
	}
	if _, ok := rnx2NavTypes[req.System]; req.Kind == NavHourlyRnx2 && !ok {
		return Target{}, fmt.Errorf("%s: no short filename for system %v", req.Kind, req.System)
	}
	if req.Hour < 0 || req.Hour > 23 || req.Minute < 0 || req.Minute > 59 {
		return Target{}, fmt.Errorf("invalid hour/minute %02d:%02d", req.Hour, req.Minute)
	}

	spec, err := t.Lookup(req.Archive, req.Kind, req.Center)
	if err != nil {
		return Target{}, err
	}
	host := spec.Host
	if host == 0 {
		host = req.Archive
	}
	base, err := BaseURL(host, spec.Category)
	if err != nil {
		return Target{}, err
	}

	site := strings.ToLower(strings.TrimSpace(req.Site))
	if site == AllSites {
		site = ""
	}
	batch := false
	switch req.Kind.Sites() {
	case SitesNone:
		site = ""
	case SitesListOnly:
		if site == "" {
			return Target{}, fmt.Errorf("%w: %s", ErrSiteListRequired, req.Kind)
		}
	case SitesAny:
		batch = site == ""
	}
	if site != "" && len(site) != 4 {
		return Target{}, fmt.Errorf("invalid station %q", req.Site)
	}
	req.Site = site

	f := Fields{Epoch: req.Epoch, Hour: req.Hour, Minute: req.Minute, Site: site, Center: req.Center, System: req.System}
	dir := spec.Dir
	if year, _ := req.Epoch.YearDoy(); spec.LegacyUntil > 0 && year < spec.LegacyUntil {
		dir = spec.LegacyDir
	}
	dirURL := joinURL(base, f.Expand(dir))

	tgt := Target{
		Request:  req,
		Host:     host,
		URL:      dirURL,
		CutDirs:  pathDepth(dirURL),
		Remote:   f.Expand(spec.Remote),
		SubDir:   f.Expand(spec.SubDir),
		Direct:   spec.Direct,
		Convert:  spec.Convert,
		Batch:    batch,
		Cleanup:  spec.Cleanup,
		Fallback: spec.Fallback,
	}
	if !spec.Plain {
		tgt.Suffixes = append([]string(nil), CompressionSuffixes...)
	}
	if spec.Direct {
		tgt.URL = joinURL(dirURL, tgt.Remote)
	}
	if !batch {
		tgt.Local = tgt.Remote
		if spec.Local != "" {
			tgt.Local = f.Expand(spec.Local)
		}
	}
	return tgt, nil
}

func joinURL(base, p string) string {
	if p == "" {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(p, "/")
}

// pathDepth returns the number of directories in the URL path. It is the number of
// directories to cut when mirroring a listing into a flat directory.
func pathDepth(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	p := strings.Trim(path.Clean("/"+u.Path), "/")
	if p == "" {
		return 0
	}
	return len(strings.Split(p, "/"))
}
