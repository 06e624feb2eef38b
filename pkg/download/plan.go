package download

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/de-bkg/gnssget/pkg/archive"
	"github.com/de-bkg/gnssget/pkg/config"
	"github.com/de-bkg/gnssget/pkg/gnss"
	"github.com/de-bkg/gnssget/pkg/gpstime"
)

// obsKinds maps the observation products and their types to kinds.
var obsKinds = map[string]map[string]archive.Kind{
	"obs": {"daily": archive.ObsIGSDaily, "hourly": archive.ObsIGSHourly, "highrate": archive.ObsIGSHighrate},
	"obm": {"daily": archive.ObsMGEXDaily, "hourly": archive.ObsMGEXHourly, "highrate": archive.ObsMGEXHighrate},
	"obc": {"daily": archive.ObsCUTDaily},
	"obg": {"daily": archive.ObsGADaily, "hourly": archive.ObsGAHourly, "highrate": archive.ObsGAHighrate},
	"obh": {"30s": archive.ObsHK30s, "5s": archive.ObsHK5s, "1s": archive.ObsHK1s},
	"obn": {"daily": archive.ObsNGSDaily},
	"obe": {"daily": archive.ObsEPNDaily},
}

var dailyNavKinds = map[string][]archive.Kind{
	"gps":   {archive.NavGPS},
	"glo":   {archive.NavGLO},
	"mixed": {archive.NavMixed},
	"all":   {archive.NavGPS, archive.NavGLO, archive.NavMixed},
}

// SiteLists holds the stations of the site list files, keyed by file path.
type SiteLists map[string][]string

// LoadSiteLists reads every site list named by an enabled product.
func LoadSiteLists(opts config.Options) (SiteLists, error) {
	lists := SiteLists{}
	p := opts.Products
	for _, prod := range []config.Product{p.Obs, p.Obm, p.Obc, p.Obg, p.Obh, p.Obn, p.Obe} {
		if !prod.Enabled || !config.IsSiteList(prod.Option) {
			continue
		}
		if _, ok := lists[prod.Option]; ok {
			continue
		}
		sites, err := config.ReadSiteList(prod.Option)
		if err != nil {
			return nil, err
		}
		lists[prod.Option] = sites
	}
	// Hourly navigation files and IGS troposphere products use the lists of the observation products.
	for _, prod := range []config.Product{p.Obs, p.Obm} {
		if _, ok := lists[prod.Option]; ok || !config.IsSiteList(prod.Option) {
			continue
		}
		if !(p.Nav.Enabled && strings.EqualFold(p.Nav.Type, "hourly")) && !(p.Trp.Enabled && strings.EqualFold(p.Trp.Option, "igs")) {
			continue
		}
		sites, err := config.ReadSiteList(prod.Option)
		if err != nil {
			return nil, err
		}
		lists[prod.Option] = sites
	}
	return lists, nil
}

// planner collects the units of one day.
type planner struct {
	opts   config.Options
	table  archive.Table
	mirror archive.Archive
	day    gpstime.Epoch
	lists  SiteLists
	units  []Unit
	errs   []error
}

// Plan resolves the units of all enabled products for one day.
func Plan(opts config.Options, table archive.Table, day gpstime.Epoch, lists SiteLists) ([]Unit, error) {
	mirror, err := archive.ParseArchive(opts.Archive)
	if err != nil {
		return nil, err
	}
	p := &planner{opts: opts, table: table, mirror: mirror, day: day.StartOfDay(), lists: lists}
	prods := opts.Products
	dirs := opts.Dirs

	for _, o := range []struct {
		name string
		prod config.Product
		dir  string
	}{
		{"obs", prods.Obs, dirs.Obs},
		{"obm", prods.Obm, dirs.Obm},
		{"obc", prods.Obc, dirs.Obc},
		{"obg", prods.Obg, dirs.Obg},
		{"obh", prods.Obh, dirs.Obh},
		{"obn", prods.Obn, dirs.Obn},
		{"obe", prods.Obe, dirs.Obe},
	} {
		if o.prod.Enabled {
			p.obs(o.name, o.prod, o.dir)
		}
	}
	if prods.Nav.Enabled {
		p.nav(prods.Nav)
	}
	if prods.OrbClk.Enabled {
		p.orbClk(prods.OrbClk)
	}
	if prods.Eop.Enabled {
		ac := strings.ToLower(prods.Eop.Option)
		for _, hr := range p.issueHours(ac, prods.Eop) {
			p.add(dirs.Eop, archive.Request{Epoch: p.day, Kind: archive.ERP, Center: ac, Hour: hr})
		}
	}
	if prods.Snx.Enabled {
		p.add(dirs.Snx, archive.Request{Epoch: p.day, Kind: archive.SinexWeekly})
	}
	if prods.Dcb.Enabled {
		for _, k := range []archive.Kind{archive.DCBP1P2, archive.DCBP1C1, archive.DCBP2C2, archive.DCBMGEX} {
			p.add(dirs.Dcb, archive.Request{Epoch: p.day, Kind: k})
		}
	}
	if prods.Ion.Enabled {
		p.add(dirs.Ion, archive.Request{Epoch: p.day, Kind: archive.Ionex, Center: strings.ToLower(prods.Ion.Option)})
	}
	if prods.Roti.Enabled {
		p.add(dirs.Ion, archive.Request{Epoch: p.day, Kind: archive.ROTI})
	}
	if prods.Trp.Enabled {
		p.trop(prods.Trp)
	}
	if prods.RtOrbClk.Enabled {
		for _, ep := range p.days() {
			p.add(dirs.Sp3, archive.Request{Epoch: ep, Kind: archive.RTOrbit})
			p.add(dirs.Clk, archive.Request{Epoch: ep, Kind: archive.RTClock})
		}
	}
	if prods.RtBias.Enabled {
		p.add(dirs.Bia, archive.Request{Epoch: p.day, Kind: archive.RTBias})
	}
	if prods.Atx.Enabled {
		p.add(dirs.Tbl, archive.Request{Epoch: p.day, Kind: archive.ANTEX})
	}
	return p.units, errors.Join(p.errs...)
}

// add resolves the request and appends the unit. The target's sub-directory is appended to dir.
func (p *planner) add(dir string, req archive.Request) {
	if req.Archive == 0 {
		req.Archive = p.mirror
	}
	t, err := p.table.Resolve(req)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s %s: %w", req.Kind, req.Epoch, err))
		return
	}
	if t.SubDir != "" {
		dir = filepath.Join(dir, filepath.FromSlash(t.SubDir))
	}
	p.units = append(p.units, Unit{Dir: dir, Target: t})
}

// dayDir returns dir/YYYY/DDD.
func (p *planner) dayDir(dir string) string {
	year, doy := p.day.YearDoy()
	return filepath.Join(dir, fmt.Sprintf("%04d", year), fmt.Sprintf("%03d", doy))
}

// days returns the day and, with MinusAdd1Day, the days before and after.
func (p *planner) days() []gpstime.Epoch {
	if !p.opts.MinusAdd1Day {
		return []gpstime.Epoch{p.day}
	}
	return []gpstime.Epoch{p.day.AddDays(-1), p.day, p.day.AddDays(1)}
}

func nHours(prod config.Product) int {
	if prod.NHours < 1 {
		return 1
	}
	return prod.NHours
}

func (p *planner) issueHours(ac string, prod config.Product) []int {
	if archive.IssueStep(ac) == 24 {
		return []int{0}
	}
	return archive.IssueHours(ac, prod.Hour, nHours(prod))
}

// sites returns the stations of the option, or nil for all stations.
func (p *planner) sites(option string) ([]string, error) {
	if !config.IsSiteList(option) {
		return nil, nil
	}
	sites, ok := p.lists[option]
	if !ok {
		return nil, fmt.Errorf("site list %s not loaded", option)
	}
	return sites, nil
}

// addSites adds one unit per station, or one batch unit for all stations.
func (p *planner) addSites(dir string, req archive.Request, sites []string) {
	if sites == nil {
		req.Site = archive.AllSites
		p.add(dir, req)
		return
	}
	for _, s := range sites {
		r := req
		r.Site = s
		p.add(dir, r)
	}
}

func (p *planner) obs(name string, prod config.Product, dir string) {
	typ := strings.ToLower(prod.Type)
	kind, ok := obsKinds[name][typ]
	if !ok {
		p.errs = append(p.errs, fmt.Errorf("%s: unknown type %q", name, prod.Type))
		return
	}
	sites, err := p.sites(prod.Option)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", name, err))
		return
	}

	dir = p.dayDir(dir)
	switch kind.Grid() {
	case archive.GridDaily:
		p.addSites(dir, archive.Request{Epoch: p.day, Kind: kind}, sites)
	case archive.GridHourly:
		for _, hr := range archive.Hours(prod.Hour, nHours(prod)) {
			p.addSites(dir, archive.Request{Epoch: p.day, Kind: kind, Hour: hr}, sites)
		}
	case archive.GridQuarter:
		for _, hr := range archive.Hours(prod.Hour, nHours(prod)) {
			for _, min := range archive.Quarters {
				p.addSites(dir, archive.Request{Epoch: p.day, Kind: kind, Hour: hr, Minute: min}, sites)
			}
		}
	}
}

func (p *planner) nav(prod config.Product) {
	dir := p.dayDir(p.opts.Dirs.Nav)
	switch strings.ToLower(prod.Type) {
	case "daily":
		kinds, ok := dailyNavKinds[strings.ToLower(prod.Option)]
		if !ok {
			p.errs = append(p.errs, fmt.Errorf("nav: daily files are published for gps, glo and mixed only, not %q", prod.Option))
			return
		}
		for _, k := range kinds {
			p.add(dir, archive.Request{Epoch: p.day, Kind: k})
		}
	case "hourly":
		syss, err := gnss.ParseSystems(prod.Option)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("nav: %w", err))
			return
		}
		opt := p.opts.Products.Obs.Option
		if !config.IsSiteList(opt) {
			opt = p.opts.Products.Obm.Option
		}
		sites, err := p.sites(opt)
		if err != nil || sites == nil {
			p.errs = append(p.errs, fmt.Errorf("nav: hourly files need the site list of obs or obm: %w", archive.ErrSiteListRequired))
			return
		}
		for _, hr := range archive.Hours(prod.Hour, nHours(prod)) {
			for _, sys := range syss {
				kind := archive.NavHourly
				if sys == gnss.SysGPS || sys == gnss.SysGLO {
					kind = archive.NavHourlyRnx2
				}
				for _, s := range sites {
					p.add(dir, archive.Request{Epoch: p.day, Kind: kind, Hour: hr, System: sys, Site: s})
				}
			}
		}
	case "rtnav":
		p.add(dir, archive.Request{Epoch: p.day, Kind: archive.NavRealtime})
	default:
		p.errs = append(p.errs, fmt.Errorf("nav: unknown type %q", prod.Type))
	}
}

func (p *planner) orbClk(prod config.Product) {
	ac := strings.ToLower(prod.Option)
	lat, err := archive.ClassifyCenter(ac)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("orbclk: %w", err))
		return
	}
	dirs := p.opts.Dirs
	if lat == archive.Ultra {
		for _, hr := range p.issueHours(ac, prod) {
			p.add(dirs.Sp3, archive.Request{Epoch: p.day, Kind: archive.Orbit, Center: ac, Hour: hr})
		}
		return
	}
	for _, ep := range p.days() {
		p.add(dirs.Sp3, archive.Request{Epoch: ep, Kind: archive.Orbit, Center: ac})
		p.add(dirs.Clk, archive.Request{Epoch: ep, Kind: archive.Clock, Center: ac})
	}
}

func (p *planner) trop(prod config.Product) {
	dir := p.dayDir(p.opts.Dirs.Ztd)
	switch strings.ToLower(prod.Option) {
	case "igs":
		sites, err := p.sites(p.opts.Products.Obs.Option)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("trp: %w", err))
			return
		}
		p.addSites(dir, archive.Request{Epoch: p.day, Kind: archive.TropIGS}, sites)
	case "cod":
		p.add(dir, archive.Request{Epoch: p.day, Kind: archive.TropCODE})
	default:
		p.errs = append(p.errs, fmt.Errorf("trp: unknown product %q", prod.Option))
	}
}
