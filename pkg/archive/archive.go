// Package archive resolves GNSS data and product requests to remote URLs and local file names.
//
// The naming conventions of the supported archives are kept in a Table keyed by
// archive, product kind and analysis center. The table is checked for completeness
// before a download run starts.
package archive

import (
	"errors"
	"fmt"
	"strings"
)

// Archive is a GNSS data center.
type Archive int

// Supported archives. CDDIS, IGN and WHU are global mirrors, the others are
// single-purpose hosts.
const (
	CDDIS Archive = iota + 1
	IGN
	WHU
	CUT
	GA
	HK
	NGS
	EPN
	ESA
	GFZ
	CODE
	NRCan
	CNES
	LRZ
	IGSFiles
)

var archiveNames = [...]string{"", "CDDIS", "IGN", "WHU", "CUT", "GA", "HK", "NGS", "EPN", "ESA", "GFZ", "CODE", "NRCAN", "CNES", "LRZ", "IGS"}

func (a Archive) String() string {
	if a <= 0 || int(a) >= len(archiveNames) {
		return fmt.Sprintf("Archive(%d)", int(a))
	}
	return archiveNames[a]
}

// Mirrors are the archives that can be selected for the global IGS/MGEX data and products.
var Mirrors = []Archive{CDDIS, IGN, WHU}

// IsMirror reports whether a is one of the selectable global mirrors.
func (a Archive) IsMirror() bool {
	return a == CDDIS || a == IGN || a == WHU
}

// ParseArchive returns the mirror archive with the given name, case-insensitive.
func ParseArchive(name string) (Archive, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, a := range Mirrors {
		if a.String() == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownArchive, name)
}

// Category selects one of the base directories of an archive.
type Category int

// Base directories.
const (
	CatRoot Category = iota
	CatDaily
	CatHourly
	CatHighrate
	CatNav
	CatProducts
	CatMGEX
	CatBias
	CatIonex
	CatTrop
)

func (c Category) String() string {
	return [...]string{"root", "daily", "hourly", "highrate", "nav", "products", "mgex", "bias", "ionex", "trop"}[c]
}

// errors
var (
	ErrUnknownArchive   = errors.New("unknown archive")
	ErrUnknownCenter    = errors.New("unknown analysis center")
	ErrNoEntry          = errors.New("no naming table entry")
	ErrSiteListRequired = errors.New("site list required")
)

const (
	cddis = "ftps://gdc.cddis.eosdis.nasa.gov/pub/gnss"
	ign   = "ftp://igs.ign.fr/pub/igs"
	whu   = "ftp://igs.gnsswhu.cn/pub/gps"
)

// baseURLs holds the base directory per archive and category.
var baseURLs = map[Archive]map[Category]string{
	CDDIS: {
		CatDaily:    cddis + "/data/daily",
		CatHourly:   cddis + "/data/hourly",
		CatHighrate: cddis + "/data/highrate",
		CatNav:      cddis + "/data/daily",
		CatProducts: cddis + "/products",
		CatMGEX:     cddis + "/products/mgex",
		CatBias:     cddis + "/products/bias",
		CatIonex:    cddis + "/products/ionex",
		CatTrop:     cddis + "/products/troposphere/zpd",
	},
	IGN: {
		CatDaily:    ign + "/data",
		CatHourly:   ign + "/data/hourly",
		CatHighrate: ign + "/data/highrate",
		CatNav:      ign + "/data",
		CatProducts: ign + "/products",
		CatMGEX:     ign + "/products/mgex",
		CatBias:     ign + "/products/mgex/dcb",
		CatIonex:    ign + "/products/ionosphere",
		CatTrop:     ign + "/products/troposphere",
	},
	WHU: {
		CatDaily:    whu + "/data/daily",
		CatHourly:   whu + "/data/hourly",
		CatHighrate: whu + "/data/highrate",
		CatNav:      whu + "/data/daily",
		CatProducts: whu + "/products",
		CatMGEX:     whu + "/products/mgex",
		CatBias:     whu + "/products/mgex/dcb",
		CatIonex:    whu + "/products/ionex",
		CatTrop:     whu + "/products/troposphere/new",
	},
	CUT:      {CatRoot: "http://saegnss2.curtin.edu/ldc/rinex3/daily"},
	GA:       {CatRoot: "ftp://ftp.data.gnss.ga.gov.au"},
	HK:       {CatRoot: "ftp://ftp.geodetic.gov.hk/rinex3"},
	NGS:      {CatRoot: "https://noaa-cors-pds.s3.amazonaws.com/rinex"},
	EPN:      {CatRoot: "ftp://ftp.epncb.oma.be/pub/obs"},
	ESA:      {CatRoot: "http://navigation-office.esa.int/products/gnss-products"},
	GFZ:      {CatRoot: "ftp://ftp.gfz-potsdam.de/pub/GNSS/products"},
	CODE:     {CatRoot: "ftp://ftp.aiub.unibe.ch/CODE"},
	NRCan:    {CatRoot: "ftp://rtopsdata1.geod.nrcan.gc.ca/gps/products"},
	CNES:     {CatRoot: "http://www.ppp-wizard.net/products/REAL_TIME"},
	LRZ:      {CatRoot: "ftp://ftp.lrz.de/transfer/steigenb/brdm"},
	IGSFiles: {CatRoot: "https://files.igs.org/pub/station/general"},
}

// BaseURL returns the base directory of the archive for the given category.
func BaseURL(a Archive, c Category) (string, error) {
	u, ok := baseURLs[a][c]
	if !ok {
		return "", fmt.Errorf("%w: %s has no %s directory", ErrNoEntry, a, c)
	}
	return u, nil
}
