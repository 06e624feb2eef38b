package archive

import (
	"errors"
	"fmt"
	"strings"
)

// Spec describes where one product is published and how it is named.
type Spec struct {
	// Host serves the files. Zero means the requested mirror.
	Host     Archive
	Category Category

	// Dir is the directory template below the base URL.
	Dir string

	// LegacyDir replaces Dir for years before LegacyUntil.
	LegacyDir   string
	LegacyUntil int

	// Remote is the remote filename template without compression suffix. It may contain wildcards.
	Remote string

	// Local is the template of the canonical local filename. Empty keeps the remote name.
	Local string

	// SubDir is the template of the local directory below the product directory.
	SubDir string

	Direct   bool // fetch the file URL instead of a filtered directory listing
	Plain    bool // published without compression
	Convert  bool // Hatanaka compressed observations
	Cleanup  []string
	Fallback Kind // tried when the product is not published
}

// Key identifies a table entry. An empty Center matches all centers.
type Key struct {
	Archive Archive
	Kind    Kind
	Center  string
}

// Table maps archive, kind and center to the naming convention.
type Table map[Key]Spec

// Lookup returns the spec for the product. Center specific entries take precedence.
func (t Table) Lookup(a Archive, k Kind, ac string) (Spec, error) {
	ac = strings.ToLower(ac)
	if ac != "" {
		if s, ok := t[Key{a, k, ac}]; ok {
			return s, nil
		}
	}
	if s, ok := t[Key{a, k, ""}]; ok {
		return s, nil
	}
	if ac != "" {
		return Spec{}, fmt.Errorf("%w: %s %s %s", ErrNoEntry, a, k, ac)
	}
	return Spec{}, fmt.Errorf("%w: %s %s", ErrNoEntry, a, k)
}

// Check verifies that a request for kind (and center) from mirror a can be resolved.
func (t Table) Check(a Archive, k Kind, ac string) error {
	if k.NeedsCenter() && k != Ionex {
		if err := checkCenter(k, ac); err != nil {
			return err
		}
	}
	s, err := t.Lookup(a, k, ac)
	if err != nil {
		return err
	}
	host := s.Host
	if host == 0 {
		host = a
	}
	if _, err := BaseURL(host, s.Category); err != nil {
		return err
	}
	if s.Fallback != 0 {
		return t.Check(a, s.Fallback, ac)
	}
	return nil
}

// Validate checks that every kind and center can be resolved for every mirror
// and that all entries are well-formed.
func (t Table) Validate() error {
	var errs []error
	for _, a := range Mirrors {
		for _, k := range Kinds() {
			acs := CentersFor(k)
			if len(acs) == 0 {
				acs = []string{""}
			}
			for _, ac := range acs {
				if err := t.Check(a, k, ac); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}

	for key, s := range t {
		if s.Remote == "" {
			errs = append(errs, fmt.Errorf("%v: empty remote filename", key))
		}
		if strings.ContainsAny(s.Remote, "*?") && s.Local == "" && key.Kind.Sites() == SitesNone {
			errs = append(errs, fmt.Errorf("%v: wildcard remote filename without local name", key))
		}
		if s.Convert && !key.Kind.IsObs() {
			errs = append(errs, fmt.Errorf("%v: conversion for non observation kind", key))
		}
		if s.Direct && strings.ContainsAny(s.Remote, "*?") {
			errs = append(errs, fmt.Errorf("%v: wildcard remote filename for direct download", key))
		}
		if s.Direct && key.Kind.Sites() == SitesAny {
			errs = append(errs, fmt.Errorf("%v: direct download for all stations", key))
		}
		if s.LegacyUntil > 0 && s.LegacyDir == "" {
			errs = append(errs, fmt.Errorf("%v: legacy year without legacy directory", key))
		}
	}
	return errors.Join(errs...)
}

// mgexPrefixes are the long filename prefixes of the MGEX final products.
var mgexPrefixes = map[string]string{
	"com": "COD0MGXFIN_",
	"gbm": "GFZ0MGXRAP_",
	"grm": "GRG0MGXFIN_",
	"wum": "WUM0MGXFIN_",
}

// DefaultTable returns the naming conventions of all supported archives.
func DefaultTable() Table {
	t := Table{}
	for _, m := range Mirrors {
		addMirror(t, m)
		addHosts(t, m)
	}
	return t
}

// addMirror adds the products taken from the mirror m itself.
func addMirror(t Table, m Archive) {
	obsDaily := "{YYYY}/{DDD}/{YY}d"
	obsHourly := "{YYYY}/{DDD}/{HH}"
	obsHighrate := "{YYYY}/{DDD}/{YY}d/{HH}"
	navDaily := "{YYYY}/brdc"
	brdcMixed := "BRDC00IGS_R_{YYYY}{DDD}0000_01D_MN.rnx"
	if m == IGN {
		obsDaily, obsHourly, obsHighrate, navDaily = "{YYYY}/{DDD}", "{YYYY}/{DDD}", "{YYYY}/{DDD}", "{YYYY}/{DDD}"
		brdcMixed = "BRDC00IGN_R_{YYYY}{DDD}0000_01D_MN.rnx"
	}

	obs := func(cat Category, dir, remote, local, sub string) Spec {
		return Spec{Category: cat, Dir: dir, Remote: remote, Local: local, SubDir: sub, Convert: true}
	}
	t[Key{m, ObsIGSDaily, ""}] = obs(CatDaily, obsDaily, "{site}{DDD}0.{YY}d", "{site}{DDD}0.{YY}o", "daily")
	t[Key{m, ObsIGSHourly, ""}] = obs(CatHourly, obsHourly, "{site}{DDD}{H}.{YY}d", "{site}{DDD}{H}.{YY}o", "hourly/{HH}")
	t[Key{m, ObsIGSHighrate, ""}] = obs(CatHighrate, obsHighrate, "{site}{DDD}{H}{MM}.{YY}d", "{site}{DDD}{H}{MM}.{YY}o", "highrate/{HH}")
	t[Key{m, ObsMGEXDaily, ""}] = obs(CatDaily, obsDaily, "{SITE}*_R_{YYYY}{DDD}0000_01D_30S_MO.crx", "{site}{DDD}0.{YY}o", "daily")
	t[Key{m, ObsMGEXHourly, ""}] = obs(CatHourly, obsHourly, "{SITE}*_R_{YYYY}{DDD}{HH}00_01H_30S_MO.crx", "{site}{DDD}{H}.{YY}o", "hourly/{HH}")
	t[Key{m, ObsMGEXHighrate, ""}] = obs(CatHighrate, obsHighrate, "{SITE}*_R_{YYYY}{DDD}{HH}{MM}_15M_01S_MO.crx", "{site}{DDD}{H}{MM}.{YY}o", "highrate/{HH}")

	nav := func(remote, local, legacy string) Spec {
		s := Spec{Category: CatNav, Dir: navDaily, Remote: remote, Local: local, SubDir: "daily"}
		if m == WHU {
			s.LegacyDir, s.LegacyUntil = legacy, 2020
		}
		return s
	}
	t[Key{m, NavGPS, ""}] = nav("brdc{DDD}0.{YY}n", "", "{YYYY}/{DDD}/{YY}n")
	t[Key{m, NavGLO, ""}] = nav("brdc{DDD}0.{YY}g", "", "{YYYY}/{DDD}/{YY}g")
	t[Key{m, NavMixed, ""}] = nav(brdcMixed, "brdm{DDD}0.{YY}p", "{YYYY}/{DDD}/{YY}p")

	hourlyNav := Spec{Category: CatHourly, Dir: obsHourly, Remote: "{SITE}*_R_{YYYY}{DDD}{HH}00_01H_{S}N.rnx", Local: "{site}{DDD}{H}.{YY}{s}n", SubDir: "hourly/{HH}"}
	if m == WHU { // WHU has no hourly navigation files
		hourlyNav.Host = CDDIS
	}
	t[Key{m, NavHourly, ""}] = hourlyNav

	// Some stations still publish GPS and GLONASS navigation files with short names.
	hourlyNav2 := hourlyNav
	hourlyNav2.Remote, hourlyNav2.Fallback = "{site}{DDD}{H}.{YY}{t}", NavHourly
	t[Key{m, NavHourlyRnx2, ""}] = hourlyNav2

	// Ultra-rapid
	t[Key{m, Orbit, "igu"}] = Spec{Category: CatProducts, Dir: "{WWWW}", Remote: "igu{WWWW}{D}_{HH}.sp3", SubDir: "ultra", Cleanup: []string{"repro3"}}
	t[Key{m, Orbit, "wuu"}] = Spec{Category: CatMGEX, Dir: "{WWWW}", Remote: "WUM0MGXULA_{YYYY}{DDD}{HH}00_01D_*_ORB.SP3", Local: "wuu{WWWW}{D}_{HH}.sp3", SubDir: "ultra"}
	t[Key{m, ERP, "igu"}] = Spec{Category: CatProducts, Dir: "{WWWW}", Remote: "igu{WWWW}{D}_{HH}.erp", Cleanup: []string{"repro3"}}

	// Rapid
	t[Key{m, Orbit, "igr"}] = Spec{Category: CatProducts, Dir: "{WWWW}", Remote: "igr{WWWW}{D}.sp3", SubDir: "rapid", Cleanup: []string{"repro3"}}
	t[Key{m, Clock, "igr"}] = Spec{Category: CatProducts, Dir: "{WWWW}", Remote: "igr{WWWW}{D}.clk", SubDir: "rapid", Cleanup: []string{"repro3"}}
	t[Key{m, ERP, "igr"}] = Spec{Category: CatProducts, Dir: "{WWWW}", Remote: "igr{WWWW}{D}.erp", Cleanup: []string{"repro3"}}

	// Final
	for _, ac := range Centers(Final) {
		sp3, clk := "{ac}{WWWW}{D}.sp3", "{ac}{WWWW}{D}.clk"
		switch ac {
		case "cod":
			sp3, clk = "{ac}{WWWW}{D}.eph", "{ac}{WWWW}{D}.clk_05s"
		case "igs":
			clk = "{ac}{WWWW}{D}.clk_30s"
		}
		t[Key{m, Orbit, ac}] = Spec{Category: CatProducts, Dir: "{WWWW}", Remote: sp3, SubDir: "final", Cleanup: []string{"repro3"}}
		t[Key{m, Clock, ac}] = Spec{Category: CatProducts, Dir: "{WWWW}", Remote: clk, SubDir: "final", Cleanup: []string{"repro3"}}
		t[Key{m, ERP, ac}] = Spec{Category: CatProducts, Dir: "{WWWW}", Remote: "{ac}{WWWW}7.erp", Cleanup: []string{"repro3"}}
	}
	for ac, prefix := range mgexPrefixes {
		t[Key{m, Orbit, ac}] = Spec{Category: CatMGEX, Dir: "{WWWW}", Remote: prefix + "{YYYY}{DDD}0000_01D_*_ORB.SP3", Local: "{ac}{WWWW}{D}.sp3", SubDir: "final"}
		t[Key{m, Clock, ac}] = Spec{Category: CatMGEX, Dir: "{WWWW}", Remote: prefix + "{YYYY}{DDD}0000_01D_*_CLK.CLK", Local: "{ac}{WWWW}{D}.clk", SubDir: "final"}
	}

	t[Key{m, SinexWeekly, ""}] = Spec{Category: CatProducts, Dir: "{WWWW}", Remote: "igs*P{WWWW}.snx", Local: "igs{WWWW}.snx", Fallback: SinexDaily}
	t[Key{m, SinexDaily, ""}] = Spec{Category: CatProducts, Dir: "{WWWW}", Remote: "igs*P{WWWW}{D}.snx", Local: "igs{WWWW}{D}.snx"}
	t[Key{m, DCBMGEX, ""}] = Spec{Category: CatBias, Dir: "{YYYY}", Remote: "CAS0MGXRAP_{YYYY}{DDD}0000_01D_01D_DCB.BSX"}
	t[Key{m, Ionex, ""}] = Spec{Category: CatIonex, Dir: "{YYYY}/{DDD}", Remote: "{ac}g{DDD}0.{YY}i", Cleanup: []string{"topex"}}
	t[Key{m, ROTI, ""}] = Spec{Category: CatIonex, Dir: "{YYYY}/{DDD}", Remote: "roti{DDD}0.{YY}f", Cleanup: []string{"topex"}}
	t[Key{m, TropIGS, ""}] = Spec{Category: CatTrop, Dir: "{YYYY}/{DDD}", Remote: "{site}{DDD}0.{YY}zpd"}
}

// addHosts adds the products served by single-purpose hosts. They are reachable
// independent of the selected mirror m.
func addHosts(t Table, m Archive) {
	obs := func(host Archive, dir, remote, local, sub string) Spec {
		return Spec{Host: host, Category: CatRoot, Dir: dir, Remote: remote, Local: local, SubDir: sub, Convert: true}
	}
	// CUT, HK and NGS publish per-station files under fixed names and are fetched by URL.
	direct := func(s Spec) Spec {
		s.Direct = true
		return s
	}
	t[Key{m, ObsCUTDaily, ""}] = direct(obs(CUT, "{YYYY}/{DDD}", "{SITE}00AUS_R_{YYYY}{DDD}0000_01D_30S_MO.crx", "{site}{DDD}0.{YY}o", "daily"))
	t[Key{m, ObsGADaily, ""}] = obs(GA, "daily/{YYYY}/{DDD}", "{SITE}*_R_{YYYY}{DDD}0000_01D_30S_MO.crx", "{site}{DDD}0.{YY}o", "daily")
	t[Key{m, ObsGAHourly, ""}] = obs(GA, "hourly/{YYYY}/{DDD}/{HH}", "{SITE}*_R_{YYYY}{DDD}{HH}00_01H_30S_MO.crx", "{site}{DDD}{H}.{YY}o", "hourly/{HH}")
	t[Key{m, ObsGAHighrate, ""}] = obs(GA, "highrate/{YYYY}/{DDD}/{HH}", "{SITE}*_R_{YYYY}{DDD}{HH}{MM}_15M_01S_MO.crx", "{site}{DDD}{H}{MM}.{YY}o", "highrate/{HH}")
	t[Key{m, ObsHK30s, ""}] = direct(obs(HK, "{YYYY}/{DDD}/{site}/30s", "{SITE}00HKG_R_{YYYY}{DDD}0000_01D_30S_MO.crx", "{site}{DDD}0.{YY}o", "30s"))
	t[Key{m, ObsHK5s, ""}] = direct(obs(HK, "{YYYY}/{DDD}/{site}/5s", "{SITE}00HKG_R_{YYYY}{DDD}{HH}00_01H_05S_MO.crx", "{site}{DDD}{H}.{YY}o", "5s/{HH}"))
	t[Key{m, ObsHK1s, ""}] = direct(obs(HK, "{YYYY}/{DDD}/{site}/1s", "{SITE}00HKG_R_{YYYY}{DDD}{HH}00_01H_01S_MO.crx", "{site}{DDD}{H}.{YY}o", "1s/{HH}"))
	t[Key{m, ObsNGSDaily, ""}] = direct(obs(NGS, "{YYYY}/{DDD}/{site}", "{site}{DDD}0.{YY}d", "{site}{DDD}0.{YY}o", "daily"))
	t[Key{m, ObsEPNDaily, ""}] = obs(EPN, "{YYYY}/{DDD}", "{SITE}*_R_{YYYY}{DDD}0000_01D_30S_MO.crx", "{site}{DDD}0.{YY}o", "daily")

	t[Key{m, NavRealtime, ""}] = Spec{Host: LRZ, Remote: "brdm{DDD}z.{YY}p", SubDir: "daily"}

	// ESA serves single files over http.
	t[Key{m, Orbit, "esu"}] = Spec{Host: ESA, Dir: "{WWWW}", Remote: "esu{WWWW}{D}_{HH}.sp3", SubDir: "ultra", Direct: true}
	t[Key{m, ERP, "esu"}] = Spec{Host: ESA, Dir: "{WWWW}", Remote: "esu{WWWW}{D}_{HH}.erp", Direct: true}
	t[Key{m, Orbit, "esr"}] = Spec{Host: ESA, Dir: "{WWWW}", Remote: "esr{WWWW}{D}.sp3", SubDir: "rapid", Direct: true}
	t[Key{m, Clock, "esr"}] = Spec{Host: ESA, Dir: "{WWWW}", Remote: "esr{WWWW}{D}.clk", SubDir: "rapid", Direct: true}

	t[Key{m, Orbit, "gfu"}] = Spec{Host: GFZ, Dir: "ultra/w{WWWW}", Remote: "gfu{WWWW}{D}_{HH}.sp3", SubDir: "ultra"}
	t[Key{m, ERP, "gfu"}] = Spec{Host: GFZ, Dir: "ultra/w{WWWW}", Remote: "gfu{WWWW}{D}_{HH}.erp"}
	t[Key{m, Orbit, "gfr"}] = Spec{Host: GFZ, Dir: "rapid/w{WWWW}", Remote: "gfz{WWWW}{D}.sp3", SubDir: "rapid"}
	t[Key{m, Clock, "gfr"}] = Spec{Host: GFZ, Dir: "rapid/w{WWWW}", Remote: "gfz{WWWW}{D}.clk", SubDir: "rapid"}

	t[Key{m, Orbit, "cor"}] = Spec{Host: CODE, Dir: "{YYYY}_M", Remote: "COD{WWWW}{D}.EPH_M", Local: "cor{WWWW}{D}.sp3", SubDir: "rapid"}
	t[Key{m, Clock, "cor"}] = Spec{Host: CODE, Dir: "{YYYY}_M", Remote: "COD{WWWW}{D}.CLK_M", Local: "cor{WWWW}{D}.clk", SubDir: "rapid"}
	t[Key{m, Orbit, "emp"}] = Spec{Host: NRCan, Dir: "rapid/{WWWW}", Remote: "emr{WWWW}{D}.sp3", SubDir: "rapid"}
	t[Key{m, Clock, "emp"}] = Spec{Host: NRCan, Dir: "rapid/{WWWW}", Remote: "emr{WWWW}{D}.clk", SubDir: "rapid"}

	t[Key{m, DCBP1P2, ""}] = Spec{Host: CODE, Dir: "{YYYY}", Remote: "P1P2{YY}{MO}.DCB"}
	t[Key{m, DCBP1C1, ""}] = Spec{Host: CODE, Dir: "{YYYY}", Remote: "P1C1{YY}{MO}.DCB"}
	t[Key{m, DCBP2C2, ""}] = Spec{Host: CODE, Dir: "{YYYY}", Remote: "P2C2{YY}{MO}_RINEX.DCB", Local: "P2C2{YY}{MO}.DCB"}
	t[Key{m, TropCODE, ""}] = Spec{Host: CODE, Dir: "{YYYY}", Remote: "COD{WWWW}{D}.TRO"}

	t[Key{m, RTOrbit, ""}] = Spec{Host: CNES, Remote: "cnt{WWWW}{D}.sp3", SubDir: "real_time", Direct: true}
	t[Key{m, RTClock, ""}] = Spec{Host: CNES, Remote: "cnt{WWWW}{D}.clk", SubDir: "real_time", Direct: true}
	t[Key{m, RTBias, ""}] = Spec{Host: CNES, Remote: "cnt{WWWW}{D}.bia", Direct: true}
	t[Key{m, ANTEX, ""}] = Spec{Host: IGSFiles, Remote: "igs14.atx", Direct: true, Plain: true}
}
