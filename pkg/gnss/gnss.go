// Package gnss contains common constants and type definitions.
package gnss

import (
	"fmt"
	"strings"
)

// System is a satellite system.
type System int

// Available satellite systems.
const (
	SysGPS System = iota + 1
	SysGLO
	SysGAL
	SysQZSS
	SysBDS
	SysIRNSS
	SysSBAS
	SysMIXED
)

func (sys System) String() string {
	return [...]string{"", "GPS", "GLO", "GAL", "QZSS", "BDS", "IRNSS", "SBAS", "MIXED"}[sys]
}

// Abbr returns the systems' abbreviation used in RINEX.
func (sys System) Abbr() string {
	return [...]string{"", "G", "R", "E", "J", "C", "I", "S", "M"}[sys]
}

// optionNames are the names used in the download configuration for navigation data.
var optionNames = map[string]System{
	"gps":   SysGPS,
	"glo":   SysGLO,
	"gal":   SysGAL,
	"qzs":   SysQZSS,
	"bds":   SysBDS,
	"irn":   SysIRNSS,
	"mixed": SysMIXED,
}

// ParseSystems parses a navigation option like "gps", "mixed" or "all".
// "all" returns every system that is published as hourly navigation file.
func ParseSystems(opt string) (Systems, error) {
	opt = strings.ToLower(strings.TrimSpace(opt))
	if opt == "all" {
		return Systems{SysGPS, SysGLO, SysBDS, SysGAL, SysQZSS, SysIRNSS, SysMIXED}, nil
	}
	sys, ok := optionNames[opt]
	if !ok {
		return nil, fmt.Errorf("unknown satellite system %q", opt)
	}
	return Systems{sys}, nil
}

// Systems specifies a list of satellite systems.
type Systems []System

// String returns the contained systems in sitelog manner GPS+GLO+...
func (syss Systems) String() string {
	str := make([]string, 0, len(syss))
	for _, sys := range syss {
		str = append(str, sys.String())
	}
	return strings.Join(str, "+")
}
