package download

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/de-bkg/gnssget/pkg/archive"
	"github.com/de-bkg/gnssget/pkg/config"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(t *testing.T, main string) config.Options {
	t.Helper()
	opts := config.Default()
	opts.Dirs = config.Dirs{Main: main}
	for name, dir := range map[string]*string{
		"obs": &opts.Dirs.Obs, "obm": &opts.Dirs.Obm, "obh": &opts.Dirs.Obh, "nav": &opts.Dirs.Nav,
		"sp3": &opts.Dirs.Sp3, "clk": &opts.Dirs.Clk, "eop": &opts.Dirs.Eop, "snx": &opts.Dirs.Snx,
		"dcb": &opts.Dirs.Dcb, "bia": &opts.Dirs.Bia, "ion": &opts.Dirs.Ion, "ztd": &opts.Dirs.Ztd, "tbl": &opts.Dirs.Tbl,
	} {
		*dir = filepath.Join(main, name)
	}
	opts.Start = config.Date{Epoch: epoch(t, 2021, 45)}
	opts.Download = true
	return opts
}

// describe returns "dir local" per unit, "dir batch:remote" for batches.
func describe(units []Unit) []string {
	var out []string
	for _, u := range units {
		name := u.Target.Local
		if u.Target.Batch {
			name = "batch:" + u.Target.Remote
		}
		out = append(out, u.Dir+" "+name)
	}
	return out
}

func TestPlan(t *testing.T) {
	lists := SiteLists{"sites.txt": {"wtzr", "algo"}, "one.txt": {"wtzr"}}
	tests := []struct {
		name   string
		modify func(o *config.Options)
		want   []string
	}{
		{
			name: "hourly obs from site list",
			modify: func(o *config.Options) {
				o.Products.Obs = config.Product{Enabled: true, Type: "hourly", Option: "sites.txt", Hour: 22, NHours: 4}
			},
			want: []string{
				"/data/obs/2021/045/hourly/22 wtzr045w.21o",
				"/data/obs/2021/045/hourly/22 algo045w.21o",
				"/data/obs/2021/045/hourly/23 wtzr045x.21o",
				"/data/obs/2021/045/hourly/23 algo045x.21o",
			},
		},
		{
			name: "daily obs all",
			modify: func(o *config.Options) {
				o.Products.Obs = config.Product{Enabled: true, Type: "daily", Option: "all"}
			},
			want: []string{"/data/obs/2021/045/daily batch:*0450.21d"},
		},
		{
			name: "highrate mgex obs",
			modify: func(o *config.Options) {
				o.Products.Obm = config.Product{Enabled: true, Type: "highrate", Option: "one.txt", Hour: 3, NHours: 1}
			},
			want: []string{
				"/data/obm/2021/045/highrate/03 wtzr045d00.21o",
				"/data/obm/2021/045/highrate/03 wtzr045d15.21o",
				"/data/obm/2021/045/highrate/03 wtzr045d30.21o",
				"/data/obm/2021/045/highrate/03 wtzr045d45.21o",
			},
		},
		{
			name: "final orbits and clocks with adjacent days",
			modify: func(o *config.Options) {
				o.Products.OrbClk = config.Product{Enabled: true, Option: "igs"}
			},
			want: []string{
				"/data/sp3/final igs21446.sp3",
				"/data/clk/final igs21446.clk_30s",
				"/data/sp3/final igs21450.sp3",
				"/data/clk/final igs21450.clk_30s",
				"/data/sp3/final igs21451.sp3",
				"/data/clk/final igs21451.clk_30s",
			},
		},
		{
			name: "final orbits and clocks",
			modify: func(o *config.Options) {
				o.MinusAdd1Day = false
				o.Products.OrbClk = config.Product{Enabled: true, Option: "cod"}
			},
			want: []string{"/data/sp3/final cod21450.eph", "/data/clk/final cod21450.clk_05s"},
		},
		{
			name: "ultra-rapid orbits",
			modify: func(o *config.Options) {
				o.Products.OrbClk = config.Product{Enabled: true, Option: "igu", Hour: 5, NHours: 2}
			},
			want: []string{"/data/sp3/ultra igu21450_06.sp3", "/data/sp3/ultra igu21450_12.sp3"},
		},
		{
			name: "daily navigation all",
			modify: func(o *config.Options) {
				o.Products.Nav = config.Product{Enabled: true, Type: "daily", Option: "all"}
			},
			want: []string{
				"/data/nav/2021/045/daily brdc0450.21n",
				"/data/nav/2021/045/daily brdc0450.21g",
				"/data/nav/2021/045/daily brdm0450.21p",
			},
		},
		{
			name: "hourly navigation",
			modify: func(o *config.Options) {
				o.Products.Obs.Option = "one.txt"
				o.Products.Nav = config.Product{Enabled: true, Type: "hourly", Option: "gps", Hour: 0, NHours: 1}
			},
			want: []string{"/data/nav/2021/045/hourly/00 wtzr045a.21gn"},
		},
		{
			name: "igs troposphere",
			modify: func(o *config.Options) {
				o.Products.Obs.Option = "one.txt"
				o.Products.Trp = config.Product{Enabled: true, Option: "igs"}
			},
			want: []string{"/data/ztd/2021/045 wtzr0450.21zpd"},
		},
		{
			name: "products",
			modify: func(o *config.Options) {
				o.MinusAdd1Day = false
				p := &o.Products
				p.Eop = config.Product{Enabled: true, Option: "igs"}
				p.Snx.Enabled = true
				p.Dcb.Enabled = true
				p.Ion = config.Product{Enabled: true, Option: "cod"}
				p.Roti.Enabled = true
				p.Trp = config.Product{Enabled: true, Option: "cod"}
				p.RtOrbClk.Enabled = true
				p.RtBias.Enabled = true
				p.Atx.Enabled = true
			},
			want: []string{
				"/data/eop igs21457.erp",
				"/data/snx igs2145.snx",
				"/data/dcb P1P22102.DCB",
				"/data/dcb P1C12102.DCB",
				"/data/dcb P2C22102.DCB",
				"/data/dcb CAS0MGXRAP_20210450000_01D_01D_DCB.BSX",
				"/data/ion codg0450.21i",
				"/data/ion roti0450.21f",
				"/data/ztd/2021/045 COD21450.TRO",
				"/data/sp3/real_time cnt21450.sp3",
				"/data/clk/real_time cnt21450.clk",
				"/data/bia cnt21450.bia",
				"/data/tbl igs14.atx",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t, "/data")
			tt.modify(&opts)
			units, err := Plan(opts, archive.DefaultTable(), opts.Start.Epoch, lists)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, describe(units)); diff != "" {
				t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlan_Errors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(o *config.Options)
		wantErr error
	}{
		{
			name: "hong kong needs site list",
			modify: func(o *config.Options) {
				o.Products.Obh = config.Product{Enabled: true, Type: "30s", Option: "all"}
			},
			wantErr: archive.ErrSiteListRequired,
		},
		{
			name: "hourly navigation needs site list",
			modify: func(o *config.Options) {
				o.Products.Nav = config.Product{Enabled: true, Type: "hourly", Option: "gps"}
			},
			wantErr: archive.ErrSiteListRequired,
		},
		{
			name: "unknown center",
			modify: func(o *config.Options) {
				o.Products.OrbClk = config.Product{Enabled: true, Option: "xyz"}
			},
			wantErr: archive.ErrUnknownCenter,
		},
		{
			name: "no daily galileo navigation",
			modify: func(o *config.Options) {
				o.Products.Nav = config.Product{Enabled: true, Type: "daily", Option: "gal"}
			},
		},
		{
			name: "site list not loaded",
			modify: func(o *config.Options) {
				o.Products.Obs = config.Product{Enabled: true, Type: "daily", Option: "missing.txt"}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t, "/data")
			tt.modify(&opts)
			_, err := Plan(opts, archive.DefaultTable(), opts.Start.Epoch, SiteLists{})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPlan_MissingTableEntry(t *testing.T) {
	table := archive.DefaultTable()
	delete(table, archive.Key{Archive: archive.IGN, Kind: archive.ROTI})
	opts := testOptions(t, "/data")
	opts.Archive = "IGN"
	opts.Products.Roti.Enabled = true

	_, err := Plan(opts, table, opts.Start.Epoch, nil)
	assert.ErrorIs(t, err, archive.ErrNoEntry)
}

func TestLoadSiteLists(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sites.txt")
	require.NoError(t, os.WriteFile(p, []byte("WTZR\nalgo\n"), 0o644))

	opts := testOptions(t, "/data")
	opts.Products.Obs.Option = p
	opts.Products.Nav = config.Product{Enabled: true, Type: "hourly", Option: "gps"}
	lists, err := LoadSiteLists(opts)
	require.NoError(t, err)
	assert.Equal(t, SiteLists{p: {"wtzr", "algo"}}, lists)

	opts.Products.Nav.Enabled = false
	lists, err = LoadSiteLists(opts)
	require.NoError(t, err)
	assert.Empty(t, lists, "list of disabled product not needed")

	opts.Products.Obm = config.Product{Enabled: true, Type: "daily", Option: p + ".missing"}
	_, err = LoadSiteLists(opts)
	var cfgErr *config.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRun(t *testing.T) {
	main := t.TempDir()
	opts := testOptions(t, main)
	opts.NDays = 2
	opts.Products.Dcb.Enabled = true
	opts.Products.Atx.Enabled = true

	atx := resolve(t, archive.Request{Epoch: opts.Start.Epoch, Kind: archive.ANTEX})
	d, f := newDownloader(map[string][]string{atx.URL: {"igs14.atx"}})
	d.Workers = 2
	sum, err := d.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 10, sum.Total)
	assert.Equal(t, 1, sum.Counts[Downloaded])
	assert.Equal(t, 1, sum.Counts[AlreadyPresent], "antenna file of the second day")
	assert.Equal(t, 8, sum.Counts[NotPublished])
	assert.Equal(t, 8, sum.Failed())
	assert.False(t, sum.AllFailed())
	assert.Equal(t, "10 units: downloaded=1 already_present=1 not_published=8", sum.String())
	assert.FileExists(t, filepath.Join(main, "tbl", "igs14.atx"))
	assert.Equal(t, 9, f.fetcher.calls())
}

func TestRun_AllFailed(t *testing.T) {
	opts := testOptions(t, t.TempDir())
	opts.Products.Snx.Enabled = true
	d, _ := newDownloader(nil)

	sum, err := d.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)
	assert.True(t, sum.AllFailed())
	require.Len(t, sum.Failures, 1)
	assert.Equal(t, archive.SinexDaily, sum.Failures[0].Target.Request.Kind, "fallback tried")
}

func TestRun_Checks(t *testing.T) {
	t.Run("download off", func(t *testing.T) {
		opts := testOptions(t, t.TempDir())
		opts.Download = false
		opts.Products.Snx.Enabled = true
		d, f := newDownloader(nil)
		sum, err := d.Run(context.Background(), opts)
		assert.NoError(t, err)
		assert.Zero(t, sum.Total)
		assert.Zero(t, f.fetcher.calls())
	})
	t.Run("no products", func(t *testing.T) {
		d, _ := newDownloader(nil)
		_, err := d.Run(context.Background(), testOptions(t, t.TempDir()))
		assert.ErrorIs(t, err, ErrNoUnits)
	})
	t.Run("configuration error before download", func(t *testing.T) {
		opts := testOptions(t, t.TempDir())
		opts.Products.Snx.Enabled = true
		opts.Products.Obh = config.Product{Enabled: true, Type: "1s", Option: "all"}
		d, f := newDownloader(nil)
		_, err := d.Run(context.Background(), opts)
		assert.ErrorIs(t, err, archive.ErrSiteListRequired)
		assert.Zero(t, f.fetcher.calls())
	})
	t.Run("canceled", func(t *testing.T) {
		opts := testOptions(t, t.TempDir())
		opts.Products.Snx.Enabled = true
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		d, f := newDownloader(nil)
		_, err := d.Run(ctx, opts)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, f.fetcher.calls())
	})
}
