// Package config reads the download configuration.
//
// Two formats are supported: the flat "key = value" file known from the GOOD downloader
// and an equivalent YAML document (selected by the .yaml or .yml extension).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/de-bkg/gnssget/pkg/gpstime"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ConfigError is an error in a configuration or site list file.
type ConfigError struct {
	File string
	Line int // 0 if the error does not belong to a line
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Dirs are the local directories. Relative directories are relative to Main.
type Dirs struct {
	Main string `yaml:"main" validate:"required"`
	Obs  string `yaml:"obs"` // IGS observations
	Obm  string `yaml:"obm"` // MGEX observations
	Obc  string `yaml:"obc"` // Curtin University observations
	Obg  string `yaml:"obg"` // Geoscience Australia observations
	Obh  string `yaml:"obh"` // Hong Kong CORS observations
	Obn  string `yaml:"obn"` // NGS/NOAA CORS observations
	Obe  string `yaml:"obe"` // EUREF Permanent Network observations
	Nav  string `yaml:"nav"`
	Sp3  string `yaml:"sp3"`
	Clk  string `yaml:"clk"`
	Eop  string `yaml:"eop"`
	Snx  string `yaml:"snx"`
	Dcb  string `yaml:"dcb"`
	Bia  string `yaml:"bia"`
	Ion  string `yaml:"ion"`
	Ztd  string `yaml:"ztd"`
	Tbl  string `yaml:"tbl"`
}

// Product selects one product group.
type Product struct {
	Enabled bool `yaml:"enabled"`

	// Type is e.g. "daily", "hourly" or "highrate" for observations, "daily", "hourly" or "rtnav" for navigation.
	Type string `yaml:"type"`

	// Option is "all" or the path of a site list for observations, the satellite system for
	// navigation and the analysis center for orbits, clocks, EOP, ionosphere and troposphere.
	Option string `yaml:"option"`

	// Hour and NHours select the hours of sub-daily products.
	Hour   int `yaml:"hour" validate:"gte=0,lte=23"`
	NHours int `yaml:"nhours" validate:"gte=0,lte=24"`
}

// Products are the product groups to download.
type Products struct {
	Obs      Product `yaml:"obs"`
	Obm      Product `yaml:"obm"`
	Obc      Product `yaml:"obc"`
	Obg      Product `yaml:"obg"`
	Obh      Product `yaml:"obh"`
	Obn      Product `yaml:"obn"`
	Obe      Product `yaml:"obe"`
	Nav      Product `yaml:"nav"`
	OrbClk   Product `yaml:"orbclk"`
	Eop      Product `yaml:"eop"`
	Snx      Product `yaml:"snx"`
	Dcb      Product `yaml:"dcb"`
	Ion      Product `yaml:"ion"`
	Roti     Product `yaml:"roti"`
	Trp      Product `yaml:"trp"`
	RtOrbClk Product `yaml:"rtorbclk"`
	RtBias   Product `yaml:"rtbias"`
	Atx      Product `yaml:"atx"`
}

// Date is a processing day, given as YYYY-MM-DD or YYYY-DDD.
type Date struct {
	gpstime.Epoch
}

// UnmarshalYAML parses the date.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	ep, err := gpstime.Parse(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %v", value.Line, err)
	}
	d.Epoch = ep
	return nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Epoch == gpstime.Epoch{}
}

// Options is the complete download configuration.
type Options struct {
	Dirs Dirs `yaml:"dirs"`

	// ThirdPartyDir holds wget, gzip and crx2rnx if they are not in $PATH.
	ThirdPartyDir string `yaml:"thirdPartyDir"`

	Start Date `yaml:"start"`
	NDays int  `yaml:"ndays" validate:"gte=1,lte=3660"`

	// MinusAdd1Day downloads rapid and final orbits and clocks also for the day before and after.
	MinusAdd1Day  bool `yaml:"minusAdd1day"`
	PrintInfoWget bool `yaml:"printInfoWget"`

	// Download is the master switch.
	Download bool   `yaml:"download"`
	Archive  string `yaml:"archive" validate:"required,oneof=CDDIS IGN WHU"`

	Products Products `yaml:"products"`
}

// Default returns the options with the defaults applied.
func Default() Options {
	return Options{
		NDays:        1,
		MinusAdd1Day: true,
		Archive:      "CDDIS",
	}
}

// Load reads the configuration file, resolves the directories and validates the options.
func Load(path string) (Options, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Options{}, &ConfigError{File: path, Err: err}
	}

	opts := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &opts); err != nil {
			return Options{}, &ConfigError{File: path, Err: err}
		}
	default:
		if err := parseFlat(path, string(b), &opts); err != nil {
			return Options{}, err
		}
	}

	opts.Archive = strings.ToUpper(strings.TrimSpace(opts.Archive))
	opts.resolveDirs()
	if err := opts.Validate(); err != nil {
		return Options{}, &ConfigError{File: path, Err: err}
	}
	return opts, nil
}

// resolveDirs makes the product directories absolute or relative to the main directory.
// Unset directories default to their name below the main directory.
func (o *Options) resolveDirs() {
	d := &o.Dirs
	for name, dir := range map[string]*string{
		"obs": &d.Obs, "obm": &d.Obm, "obc": &d.Obc, "obg": &d.Obg, "obh": &d.Obh, "obn": &d.Obn, "obe": &d.Obe,
		"nav": &d.Nav, "sp3": &d.Sp3, "clk": &d.Clk, "eop": &d.Eop, "snx": &d.Snx, "dcb": &d.Dcb, "bia": &d.Bia,
		"ion": &d.Ion, "ztd": &d.Ztd, "tbl": &d.Tbl,
	} {
		switch {
		case *dir == "":
			*dir = filepath.Join(d.Main, name)
		case !filepath.IsAbs(*dir):
			*dir = filepath.Join(d.Main, *dir)
		}
	}
}

var obsTypes = map[string][]string{
	"obs": {"daily", "hourly", "highrate"},
	"obm": {"daily", "hourly", "highrate"},
	"obc": {"daily"},
	"obg": {"daily", "hourly", "highrate"},
	"obh": {"30s", "5s", "1s"},
	"obn": {"daily"},
	"obe": {"daily"},
	"nav": {"daily", "hourly", "rtnav"},
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// validateProducts checks the product types and the required options of enabled products.
func validateProducts(sl validator.StructLevel) {
	p := sl.Current().Interface().(Products)
	for name, prod := range p.byName() {
		if !prod.Enabled {
			continue
		}
		if types, ok := obsTypes[name]; ok && !contains(types, strings.ToLower(prod.Type)) {
			sl.ReportError(prod.Type, name+".type", "Type", "oneof", strings.Join(types, " "))
		}
		switch name {
		case "obs", "obm", "obc", "obg", "obh", "obn", "obe", "orbclk", "eop", "ion", "trp":
			if prod.Option == "" {
				sl.ReportError(prod.Option, name+".option", "Option", "required", "")
			}
		case "nav":
			if prod.Option == "" && strings.ToLower(prod.Type) != "rtnav" {
				sl.ReportError(prod.Option, name+".option", "Option", "required", "")
			}
		}
	}
}

// byName returns the products by their configuration name.
func (p Products) byName() map[string]Product {
	return map[string]Product{
		"obs": p.Obs, "obm": p.Obm, "obc": p.Obc, "obg": p.Obg, "obh": p.Obh, "obn": p.Obn, "obe": p.Obe,
		"nav": p.Nav, "orbclk": p.OrbClk, "eop": p.Eop, "snx": p.Snx, "dcb": p.Dcb, "ion": p.Ion,
		"roti": p.Roti, "trp": p.Trp, "rtorbclk": p.RtOrbClk, "rtbias": p.RtBias, "atx": p.Atx,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	validate := validator.New()
	validate.RegisterStructValidation(validateProducts, Products{})

	var errs []error
	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Errorf("invalid %s: %q fails %s %s", fe.Namespace(), fmt.Sprint(fe.Value()), fe.Tag(), fe.Param()))
		}
	}
	if o.Start.IsZero() {
		errs = append(errs, errors.New("no start time"))
	} else if year, _ := o.Start.YearDoy(); year < 1980 {
		errs = append(errs, fmt.Errorf("start time before 1980: %s", o.Start))
	}
	return errors.Join(errs...)
}
