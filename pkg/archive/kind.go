package archive

import "fmt"

// Kind is a product kind, e.g. IGS daily observations or final clocks.
type Kind int

// Product kinds.
const (
	ObsIGSDaily Kind = iota + 1
	ObsIGSHourly
	ObsIGSHighrate
	ObsMGEXDaily
	ObsMGEXHourly
	ObsMGEXHighrate
	ObsCUTDaily
	ObsGADaily
	ObsGAHourly
	ObsGAHighrate
	ObsHK30s
	ObsHK5s
	ObsHK1s
	ObsNGSDaily
	ObsEPNDaily
	NavGPS
	NavGLO
	NavMixed
	NavHourly
	NavHourlyRnx2
	NavRealtime
	Orbit
	Clock
	ERP
	SinexWeekly
	SinexDaily
	DCBMGEX
	DCBP1P2
	DCBP1C1
	DCBP2C2
	Ionex
	ROTI
	TropIGS
	TropCODE
	RTOrbit
	RTClock
	RTBias
	ANTEX

	numKinds = iota
)

// SiteMode tells whether a kind is requested per station.
type SiteMode int

// Site modes.
const (
	SitesNone     SiteMode = iota // not station specific
	SitesAny                      // site list or all published stations
	SitesListOnly                 // site list only
)

// Grid is the time granularity of a kind.
type Grid int

// Grids.
const (
	GridDaily   Grid = iota
	GridHourly       // one file per hour
	GridQuarter      // one file per 15 minutes
	GridIssue        // ultra-rapid issues, see IssueHours
)

type kindInfo struct {
	name  string
	sites SiteMode
	grid  Grid
}

var kinds = map[Kind]kindInfo{
	ObsIGSDaily:     {"obs-igs-daily", SitesAny, GridDaily},
	ObsIGSHourly:    {"obs-igs-hourly", SitesAny, GridHourly},
	ObsIGSHighrate:  {"obs-igs-highrate", SitesAny, GridQuarter},
	ObsMGEXDaily:    {"obs-mgex-daily", SitesAny, GridDaily},
	ObsMGEXHourly:   {"obs-mgex-hourly", SitesAny, GridHourly},
	ObsMGEXHighrate: {"obs-mgex-highrate", SitesAny, GridQuarter},
	ObsCUTDaily:     {"obs-cut-daily", SitesListOnly, GridDaily},
	ObsGADaily:      {"obs-ga-daily", SitesAny, GridDaily},
	ObsGAHourly:     {"obs-ga-hourly", SitesAny, GridHourly},
	ObsGAHighrate:   {"obs-ga-highrate", SitesAny, GridQuarter},
	ObsHK30s:        {"obs-hk-30s", SitesListOnly, GridDaily},
	ObsHK5s:         {"obs-hk-5s", SitesListOnly, GridHourly},
	ObsHK1s:         {"obs-hk-1s", SitesListOnly, GridHourly},
	ObsNGSDaily:     {"obs-ngs-daily", SitesListOnly, GridDaily},
	ObsEPNDaily:     {"obs-epn-daily", SitesAny, GridDaily},
	NavGPS:          {"nav-gps", SitesNone, GridDaily},
	NavGLO:          {"nav-glo", SitesNone, GridDaily},
	NavMixed:        {"nav-mixed", SitesNone, GridDaily},
	NavHourly:       {"nav-hourly", SitesListOnly, GridHourly},
	NavHourlyRnx2:   {"nav-hourly-rnx2", SitesListOnly, GridHourly},
	NavRealtime:     {"nav-rt", SitesNone, GridDaily},
	Orbit:           {"orbit", SitesNone, GridIssue},
	Clock:           {"clock", SitesNone, GridDaily},
	ERP:             {"erp", SitesNone, GridIssue},
	SinexWeekly:     {"snx-weekly", SitesNone, GridDaily},
	SinexDaily:      {"snx-daily", SitesNone, GridDaily},
	DCBMGEX:         {"dcb-mgex", SitesNone, GridDaily},
	DCBP1P2:         {"dcb-p1p2", SitesNone, GridDaily},
	DCBP1C1:         {"dcb-p1c1", SitesNone, GridDaily},
	DCBP2C2:         {"dcb-p2c2", SitesNone, GridDaily},
	Ionex:           {"ionex", SitesNone, GridDaily},
	ROTI:            {"roti", SitesNone, GridDaily},
	TropIGS:         {"trop-igs", SitesAny, GridDaily},
	TropCODE:        {"trop-code", SitesNone, GridDaily},
	RTOrbit:         {"rt-orbit", SitesNone, GridDaily},
	RTClock:         {"rt-clock", SitesNone, GridDaily},
	RTBias:          {"rt-bias", SitesNone, GridDaily},
	ANTEX:           {"antex", SitesNone, GridDaily},
}

// Kinds returns all product kinds.
func Kinds() []Kind {
	ks := make([]Kind, 0, numKinds)
	for k := Kind(1); k <= Kind(numKinds); k++ {
		ks = append(ks, k)
	}
	return ks
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sites returns the site mode of the kind.
func (k Kind) Sites() SiteMode {
	return kinds[k].sites
}

// Grid returns the time granularity of the kind.
func (k Kind) Grid() Grid {
	return kinds[k].grid
}

// IsObs reports whether the kind is a Hatanaka compressed observation product.
func (k Kind) IsObs() bool {
	return k >= ObsIGSDaily && k <= ObsEPNDaily
}

// NeedsCenter reports whether the kind is selected by analysis center.
func (k Kind) NeedsCenter() bool {
	return k == Orbit || k == Clock || k == ERP || k == Ionex
}
