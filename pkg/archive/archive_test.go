package archive

import (
	"fmt"
	"testing"

	"github.com/de-bkg/gnssget/pkg/gnss"
	"github.com/de-bkg/gnssget/pkg/gpstime"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEpoch(t *testing.T, year, doy int) gpstime.Epoch {
	t.Helper()
	ep, err := gpstime.FromYearDoy(year, doy)
	require.NoError(t, err)
	return ep
}

func TestDefaultTable_Validate(t *testing.T) {
	assert.NoError(t, DefaultTable().Validate())
}

func TestTable_ValidateMissingEntry(t *testing.T) {
	tbl := DefaultTable()
	delete(tbl, Key{IGN, Orbit, "gfz"})
	delete(tbl, Key{WHU, ROTI, ""})
	err := tbl.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoEntry)
	assert.Contains(t, err.Error(), "IGN orbit gfz")
	assert.Contains(t, err.Error(), "WHU roti")
}

func TestTable_ValidateDirect(t *testing.T) {
	tbl := DefaultTable()
	s := tbl[Key{CDDIS, ObsGADaily, ""}]
	s.Direct = true
	tbl[Key{CDDIS, ObsGADaily, ""}] = s
	err := tbl.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wildcard remote filename for direct download")
	assert.Contains(t, err.Error(), "direct download for all stations")
}

func TestTable_Check(t *testing.T) {
	tbl := DefaultTable()
	assert.NoError(t, tbl.Check(CDDIS, Clock, "igs"))
	assert.ErrorIs(t, tbl.Check(CDDIS, Clock, "igu"), ErrNoEntry)
	assert.ErrorIs(t, tbl.Check(CDDIS, Orbit, "xyz"), ErrUnknownCenter)
	assert.ErrorIs(t, tbl.Check(CDDIS, ERP, "wuu"), ErrNoEntry)
	assert.ErrorIs(t, tbl.Check(Archive(99), NavGPS, ""), ErrNoEntry)
}

func TestResolve_IGSDailyObs(t *testing.T) {
	tbl := DefaultTable()
	ep := mustEpoch(t, 2021, 45)

	batch, err := tbl.Resolve(Request{Epoch: ep, Kind: ObsIGSDaily, Archive: CDDIS, Site: AllSites})
	require.NoError(t, err)
	want := Target{
		Request:  Request{Epoch: ep, Kind: ObsIGSDaily, Archive: CDDIS},
		Host:     CDDIS,
		URL:      "ftps://gdc.cddis.eosdis.nasa.gov/pub/gnss/data/daily/2021/045/21d",
		CutDirs:  7,
		Remote:   "*0450.21d",
		SubDir:   "daily",
		Suffixes: []string{".gz", ".Z"},
		Convert:  true,
		Batch:    true,
	}
	if diff := cmp.Diff(want, batch); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "*0450.21d.*", batch.Pattern())

	site, err := tbl.Resolve(Request{Epoch: ep, Kind: ObsIGSDaily, Archive: CDDIS, Site: "XXXX"})
	require.NoError(t, err)
	assert.Equal(t, "xxxx0450.21d", site.Remote)
	assert.Equal(t, "xxxx0450.21o", site.Local)
	assert.False(t, site.Batch)
	assert.False(t, site.Rename())

	ign, err := tbl.Resolve(Request{Epoch: ep, Kind: ObsIGSDaily, Archive: IGN, Site: "xxxx"})
	require.NoError(t, err)
	assert.Equal(t, "ftp://igs.ign.fr/pub/igs/data/2021/045", ign.URL)
	assert.Equal(t, 5, ign.CutDirs)
}

func TestResolve(t *testing.T) {
	tbl := DefaultTable()
	ep := mustEpoch(t, 2021, 45)
	week2150, err := gpstime.FromGPSWeek(2150, 3, 0)
	require.NoError(t, err)

	tests := []struct {
		name       string
		req        Request
		wantURL    string
		wantRemote string
		wantLocal  string
		wantSubDir string
		wantDirect bool
	}{
		{
			name:       "igs final clock",
			req:        Request{Epoch: week2150, Kind: Clock, Archive: CDDIS, Center: "igs"},
			wantURL:    "ftps://gdc.cddis.eosdis.nasa.gov/pub/gnss/products/2150",
			wantRemote: "igs21503.clk_30s", wantLocal: "igs21503.clk_30s", wantSubDir: "final",
		},
		{
			name:       "code final orbit",
			req:        Request{Epoch: week2150, Kind: Orbit, Archive: WHU, Center: "COD"},
			wantURL:    "ftp://igs.gnsswhu.cn/pub/gps/products/2150",
			wantRemote: "cod21503.eph", wantLocal: "cod21503.eph", wantSubDir: "final",
		},
		{
			name:       "mgex final orbit renamed",
			req:        Request{Epoch: week2150, Kind: Orbit, Archive: CDDIS, Center: "com"},
			wantURL:    "ftps://gdc.cddis.eosdis.nasa.gov/pub/gnss/products/mgex/2150",
			wantRemote: "COD0MGXFIN_20210830000_01D_*_ORB.SP3", wantLocal: "com21503.sp3", wantSubDir: "final",
		},
		{
			name:       "esa ultra orbit direct",
			req:        Request{Epoch: week2150, Kind: Orbit, Archive: IGN, Center: "esu", Hour: 6},
			wantURL:    "http://navigation-office.esa.int/products/gnss-products/2150/esu21503_06.sp3",
			wantRemote: "esu21503_06.sp3", wantLocal: "esu21503_06.sp3", wantSubDir: "ultra", wantDirect: true,
		},
		{
			name:       "code rapid orbit renamed",
			req:        Request{Epoch: week2150, Kind: Orbit, Archive: CDDIS, Center: "cor"},
			wantURL:    "ftp://ftp.aiub.unibe.ch/CODE/2021_M",
			wantRemote: "COD21503.EPH_M", wantLocal: "cor21503.sp3", wantSubDir: "rapid",
		},
		{
			name:       "igs hourly obs",
			req:        Request{Epoch: ep, Kind: ObsIGSHourly, Archive: CDDIS, Site: "abcd", Hour: 13},
			wantURL:    "ftps://gdc.cddis.eosdis.nasa.gov/pub/gnss/data/hourly/2021/045/13",
			wantRemote: "abcd045n.21d", wantLocal: "abcd045n.21o", wantSubDir: "hourly/13",
		},
		{
			name:       "mgex highrate obs",
			req:        Request{Epoch: ep, Kind: ObsMGEXHighrate, Archive: CDDIS, Site: "algo", Hour: 10, Minute: 30},
			wantURL:    "ftps://gdc.cddis.eosdis.nasa.gov/pub/gnss/data/highrate/2021/045/21d/10",
			wantRemote: "ALGO*_R_20210451030_15M_01S_MO.crx", wantLocal: "algo045k30.21o", wantSubDir: "highrate/10",
		},
		{
			name:       "mixed nav renamed on IGN",
			req:        Request{Epoch: ep, Kind: NavMixed, Archive: IGN},
			wantURL:    "ftp://igs.ign.fr/pub/igs/data/2021/045",
			wantRemote: "BRDC00IGN_R_20210450000_01D_MN.rnx", wantLocal: "brdm0450.21p", wantSubDir: "daily",
		},
		{
			name:       "whu gps nav before 2020",
			req:        Request{Epoch: mustEpoch(t, 2019, 45), Kind: NavGPS, Archive: WHU},
			wantURL:    "ftp://igs.gnsswhu.cn/pub/gps/data/daily/2019/045/19n",
			wantRemote: "brdc0450.19n", wantLocal: "brdc0450.19n", wantSubDir: "daily",
		},
		{
			name:       "whu gps nav since 2020",
			req:        Request{Epoch: ep, Kind: NavGPS, Archive: WHU},
			wantURL:    "ftp://igs.gnsswhu.cn/pub/gps/data/daily/2021/brdc",
			wantRemote: "brdc0450.21n", wantLocal: "brdc0450.21n", wantSubDir: "daily",
		},
		{
			name:       "hourly galileo nav from CDDIS for WHU",
			req:        Request{Epoch: ep, Kind: NavHourly, Archive: WHU, Site: "abmf", Hour: 1, System: gnss.SysGAL},
			wantURL:    "ftps://gdc.cddis.eosdis.nasa.gov/pub/gnss/data/hourly/2021/045/01",
			wantRemote: "ABMF*_R_20210450100_01H_EN.rnx", wantLocal: "abmf045b.21en", wantSubDir: "hourly/01",
		},
		{
			name:       "hourly gps nav short name",
			req:        Request{Epoch: ep, Kind: NavHourlyRnx2, Archive: CDDIS, Site: "abmf", Hour: 1, System: gnss.SysGPS},
			wantURL:    "ftps://gdc.cddis.eosdis.nasa.gov/pub/gnss/data/hourly/2021/045/01",
			wantRemote: "abmf045b.21n", wantLocal: "abmf045b.21gn", wantSubDir: "hourly/01",
		},
		{
			name:       "hourly glonass nav short name",
			req:        Request{Epoch: ep, Kind: NavHourlyRnx2, Archive: CDDIS, Site: "abmf", Hour: 1, System: gnss.SysGLO},
			wantURL:    "ftps://gdc.cddis.eosdis.nasa.gov/pub/gnss/data/hourly/2021/045/01",
			wantRemote: "abmf045b.21g", wantLocal: "abmf045b.21rn", wantSubDir: "hourly/01",
		},
		{
			name:       "hong kong 5s",
			req:        Request{Epoch: ep, Kind: ObsHK5s, Archive: CDDIS, Site: "hkws", Hour: 2},
			wantURL:    "ftp://ftp.geodetic.gov.hk/rinex3/2021/045/hkws/5s/HKWS00HKG_R_20210450200_01H_05S_MO.crx",
			wantRemote: "HKWS00HKG_R_20210450200_01H_05S_MO.crx", wantLocal: "hkws045c.21o", wantSubDir: "5s/02", wantDirect: true,
		},
		{
			name:       "curtin direct",
			req:        Request{Epoch: ep, Kind: ObsCUTDaily, Archive: CDDIS, Site: "abcd"},
			wantURL:    "http://saegnss2.curtin.edu/ldc/rinex3/daily/2021/045/ABCD00AUS_R_20210450000_01D_30S_MO.crx",
			wantRemote: "ABCD00AUS_R_20210450000_01D_30S_MO.crx", wantLocal: "abcd0450.21o", wantSubDir: "daily", wantDirect: true,
		},
		{
			name:       "ngs direct",
			req:        Request{Epoch: ep, Kind: ObsNGSDaily, Archive: CDDIS, Site: "p123"},
			wantURL:    "https://noaa-cors-pds.s3.amazonaws.com/rinex/2021/045/p123/p1230450.21d",
			wantRemote: "p1230450.21d", wantLocal: "p1230450.21o", wantSubDir: "daily", wantDirect: true,
		},
		{
			name:       "code monthly dcb renamed",
			req:        Request{Epoch: ep, Kind: DCBP2C2, Archive: CDDIS},
			wantURL:    "ftp://ftp.aiub.unibe.ch/CODE/2021",
			wantRemote: "P2C22102_RINEX.DCB", wantLocal: "P2C22102.DCB",
		},
		{
			name:       "weekly sinex",
			req:        Request{Epoch: week2150, Kind: SinexWeekly, Archive: CDDIS},
			wantURL:    "ftps://gdc.cddis.eosdis.nasa.gov/pub/gnss/products/2150",
			wantRemote: "igs*P2150.snx", wantLocal: "igs2150.snx",
		},
		{
			name:       "ionex",
			req:        Request{Epoch: ep, Kind: Ionex, Archive: IGN, Center: "cod"},
			wantURL:    "ftp://igs.ign.fr/pub/igs/products/ionosphere/2021/045",
			wantRemote: "codg0450.21i", wantLocal: "codg0450.21i",
		},
		{
			name:       "final erp",
			req:        Request{Epoch: week2150, Kind: ERP, Archive: CDDIS, Center: "jpl"},
			wantURL:    "ftps://gdc.cddis.eosdis.nasa.gov/pub/gnss/products/2150",
			wantRemote: "jpl21507.erp", wantLocal: "jpl21507.erp",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tbl.Resolve(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, got.URL)
			assert.Equal(t, tt.wantRemote, got.Remote)
			assert.Equal(t, tt.wantLocal, got.Local)
			assert.Equal(t, tt.wantSubDir, got.SubDir)
			assert.Equal(t, tt.wantDirect, got.Direct)
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	tbl := DefaultTable()
	ep := mustEpoch(t, 2021, 45)

	_, err := tbl.Resolve(Request{Epoch: ep, Kind: Orbit, Archive: CDDIS, Center: "abc"})
	assert.ErrorIs(t, err, ErrUnknownCenter)

	_, err = tbl.Resolve(Request{Epoch: ep, Kind: Orbit, Archive: CDDIS})
	assert.ErrorIs(t, err, ErrUnknownCenter)

	_, err = tbl.Resolve(Request{Epoch: ep, Kind: Clock, Archive: CDDIS, Center: "gfu"})
	assert.ErrorIs(t, err, ErrNoEntry)

	_, err = tbl.Resolve(Request{Epoch: ep, Kind: ObsHK30s, Archive: CDDIS, Site: "all"})
	assert.ErrorIs(t, err, ErrSiteListRequired)

	_, err = tbl.Resolve(Request{Epoch: ep, Kind: ObsIGSDaily, Archive: CDDIS, Site: "toolong"})
	assert.Error(t, err)

	_, err = tbl.Resolve(Request{Epoch: ep, Kind: ObsIGSHourly, Archive: CDDIS, Site: "abcd", Hour: 24})
	assert.Error(t, err)

	_, err = tbl.Resolve(Request{Epoch: ep, Kind: NavHourlyRnx2, Archive: CDDIS, Site: "abmf", System: gnss.SysGAL})
	assert.Error(t, err)

	_, err = tbl.Resolve(Request{Epoch: ep, Kind: Kind(0), Archive: CDDIS})
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestResolve_Plain(t *testing.T) {
	got, err := DefaultTable().Resolve(Request{Epoch: mustEpoch(t, 2021, 45), Kind: ANTEX, Archive: CDDIS})
	require.NoError(t, err)
	assert.Empty(t, got.Suffixes)
	assert.Equal(t, "igs14.atx", got.Pattern())
	assert.Equal(t, "https://files.igs.org/pub/station/general/igs14.atx", got.URL)
}

func TestClassifyCenter(t *testing.T) {
	tests := []struct {
		ac      string
		want    Latency
		wantErr bool
	}{
		{ac: "igu", want: Ultra},
		{ac: "WUU", want: Ultra},
		{ac: "emp", want: Rapid},
		{ac: "mit", want: Final},
		{ac: "gbm", want: MGEXFinal},
		{ac: "xyz", wantErr: true},
		{ac: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.ac, func(t *testing.T) {
			got, err := ClassifyCenter(tt.ac)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownCenter)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	// every center belongs to exactly one class
	seen := map[string]int{}
	for _, l := range []Latency{Ultra, Rapid, Final, MGEXFinal} {
		for _, ac := range Centers(l) {
			seen[ac]++
		}
	}
	assert.Len(t, seen, 21)
	for ac, n := range seen {
		assert.Equal(t, 1, n, ac)
	}
	assert.Equal(t, []string{"esu", "gfu", "igu", "wuu"}, Centers(Ultra))
	assert.Equal(t, "final", MGEXFinal.Dir())
}

func TestIssueHours(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]int{6, 12}, IssueHours("igu", 5, 2))
	assert.Equal([]int{0, 6, 12, 18}, IssueHours("esu", 0, 10))
	assert.Equal([]int{0, 3, 6, 9, 12, 15, 18, 21}, IssueHours("gfu", 0, 8))
	assert.Equal([]int{22, 23}, IssueHours("wuu", 22, 5))
	assert.Equal([]int{0}, IssueHours("igs", 0, 1))
	assert.Nil(IssueHours("igu", 19, 1))
	assert.Equal(24, IssueStep("cod"))
}

func TestHours(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]int{20, 21, 22, 23}, Hours(20, 10))
	assert.Equal([]int{0, 1}, Hours(0, 2))
	assert.Nil(Hours(3, 0))
}

func TestParseArchive(t *testing.T) {
	a, err := ParseArchive("cddis")
	assert.NoError(t, err)
	assert.Equal(t, CDDIS, a)
	assert.True(t, a.IsMirror())
	assert.False(t, ESA.IsMirror())

	_, err = ParseArchive("ESA")
	assert.ErrorIs(t, err, ErrUnknownArchive)
}

func TestKinds(t *testing.T) {
	ks := Kinds()
	assert.Len(t, ks, numKinds)
	names := map[string]bool{}
	for _, k := range ks {
		assert.NotContains(t, k.String(), "Kind(")
		names[k.String()] = true
	}
	assert.Len(t, names, numKinds)
	assert.True(t, ObsEPNDaily.IsObs())
	assert.False(t, NavGPS.IsObs())
}

func ExampleFields_Expand() {
	ep, _ := gpstime.FromGPSWeek(2150, 3, 0)
	f := Fields{Epoch: ep, Hour: 6, Site: "WTZR", Center: "igu"}
	fmt.Println(f.Expand("{ac}{WWWW}{D}_{HH}.sp3"))
	fmt.Println(f.Expand("{site}{DDD}{H}.{YY}d"))
	fmt.Println(Fields{Epoch: ep}.Expand("{SITE}*_R_{YYYY}{DDD}0000_01D_30S_MO.crx"))
	// Output:
	// igu21503_06.sp3
	// wtzr083g.21d
	// *_R_20210830000_01D_30S_MO.crx
}
