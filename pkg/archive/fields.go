package archive

import (
	"fmt"
	"strings"

	"github.com/de-bkg/gnssget/pkg/gnss"
	"github.com/de-bkg/gnssget/pkg/gpstime"
	"github.com/de-bkg/gnssget/pkg/rinex"
)

// Fields are the values substituted into path and filename templates.
//
//	{YYYY} 4-digit year       {YY} 2-digit year     {DDD} day of year    {MO} month
//	{WWWW} GPS week           {D} day of week       {HH} hour            {H} hour as letter
//	{MM} minute               {site} station, lower {SITE} station, upper
//	{ac} center, lower        {AC} center, upper    {S} system, RINEX abbr {s} lower
//	{t} RINEX 2 navigation file type (n for GPS, g for GLONASS)
//
// An empty station expands to the wildcard "*".
type Fields struct {
	Epoch  gpstime.Epoch
	Hour   int
	Minute int
	Site   string
	Center string
	System gnss.System
}

var rnx2NavTypes = map[gnss.System]string{gnss.SysGPS: "n", gnss.SysGLO: "g"}

// Expand substitutes the fields into tmpl.
func (f Fields) Expand(tmpl string) string {
	year, doy := f.Epoch.YearDoy()
	_, month, _ := f.Epoch.Date()
	week, dow := f.Epoch.GPSWeek()
	hourChar, err := rinex.HourChar(f.Hour)
	if err != nil {
		hourChar = "0"
	}

	site, siteUpper := "*", "*"
	if f.Site != "" {
		site, siteUpper = strings.ToLower(f.Site), strings.ToUpper(f.Site)
	}

	sys := ""
	if f.System != 0 {
		sys = f.System.Abbr()
	}

	r := strings.NewReplacer(
		"{YYYY}", fmt.Sprintf("%04d", year),
		"{YY}", fmt.Sprintf("%02d", year%100),
		"{DDD}", fmt.Sprintf("%03d", doy),
		"{MO}", fmt.Sprintf("%02d", month),
		"{WWWW}", fmt.Sprintf("%04d", week),
		"{D}", fmt.Sprintf("%d", dow),
		"{HH}", fmt.Sprintf("%02d", f.Hour),
		"{H}", hourChar,
		"{MM}", fmt.Sprintf("%02d", f.Minute),
		"{site}", site,
		"{SITE}", siteUpper,
		"{ac}", strings.ToLower(f.Center),
		"{AC}", strings.ToUpper(f.Center),
		"{S}", sys,
		"{s}", strings.ToLower(sys),
		"{t}", rnx2NavTypes[f.System],
	)
	s := r.Replace(tmpl)
	for strings.Contains(s, "**") {
		s = strings.ReplaceAll(s, "**", "*")
	}
	return s
}
