package config

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/de-bkg/gnssget/pkg/gpstime"
)

// productKeys maps the "getXxx" keys to the products and the order of their fields after the on/off switch.
var productKeys = map[string]struct {
	get    func(*Products) *Product
	fields []string
}{
	"getObs":      {func(p *Products) *Product { return &p.Obs }, []string{"type", "option", "hour", "nhours"}},
	"getObm":      {func(p *Products) *Product { return &p.Obm }, []string{"type", "option", "hour", "nhours"}},
	"getObc":      {func(p *Products) *Product { return &p.Obc }, []string{"type", "option", "hour", "nhours"}},
	"getObg":      {func(p *Products) *Product { return &p.Obg }, []string{"type", "option", "hour", "nhours"}},
	"getObh":      {func(p *Products) *Product { return &p.Obh }, []string{"type", "option", "hour", "nhours"}},
	"getObn":      {func(p *Products) *Product { return &p.Obn }, []string{"type", "option", "hour", "nhours"}},
	"getObe":      {func(p *Products) *Product { return &p.Obe }, []string{"type", "option", "hour", "nhours"}},
	"getNav":      {func(p *Products) *Product { return &p.Nav }, []string{"type", "option", "hour", "nhours"}},
	"getOrbClk":   {func(p *Products) *Product { return &p.OrbClk }, []string{"option", "hour", "nhours"}},
	"getEop":      {func(p *Products) *Product { return &p.Eop }, []string{"option", "hour", "nhours"}},
	"getSnx":      {func(p *Products) *Product { return &p.Snx }, nil},
	"getDcb":      {func(p *Products) *Product { return &p.Dcb }, nil},
	"getIon":      {func(p *Products) *Product { return &p.Ion }, []string{"option"}},
	"getRoti":     {func(p *Products) *Product { return &p.Roti }, nil},
	"getTrp":      {func(p *Products) *Product { return &p.Trp }, []string{"option"}},
	"getRtOrbClk": {func(p *Products) *Product { return &p.RtOrbClk }, nil},
	"getRtBias":   {func(p *Products) *Product { return &p.RtBias }, nil},
	"getAtx":      {func(p *Products) *Product { return &p.Atx }, nil},
}

func dirKeys(d *Dirs) map[string]*string {
	return map[string]*string{
		"obsDir": &d.Obs, "obmDir": &d.Obm, "obcDir": &d.Obc, "obgDir": &d.Obg, "obhDir": &d.Obh,
		"obnDir": &d.Obn, "obeDir": &d.Obe, "navDir": &d.Nav, "sp3Dir": &d.Sp3, "clkDir": &d.Clk,
		"eopDir": &d.Eop, "snxDir": &d.Snx, "dcbDir": &d.Dcb, "biaDir": &d.Bia, "ionDir": &d.Ion,
		"ztdDir": &d.Ztd, "tblDir": &d.Tbl,
	}
}

// parseFlat parses the flat configuration format:
//
//	# comment
//	mainDir        = /data                  % comment
//	obsDir         = 0  obs                 % 0: below mainDir, 1: absolute path
//	procTime       = 2  2021  045  1        % 1: year month day ndays, 2: year doy ndays
//	ftpDownloading = 1  CDDIS
//	getObs         = 1  daily  all  0  24
func parseFlat(file, content string, opts *Options) error {
	dirs := dirKeys(&opts.Dirs)
	sc := bufio.NewScanner(strings.NewReader(content))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.LastIndex(line, "=")
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := line[eq+1:]
		if i := strings.Index(val, "%"); i >= 0 {
			val = val[:i]
		}
		fields := strings.Fields(val)

		var err error
		switch {
		case key == "mainDir":
			opts.Dirs.Main = strings.TrimSpace(val)
		case dirs[key] != nil:
			*dirs[key], err = parseDir(fields)
		case key == "3partyDir":
			var dir string
			if dir, err = parseDir(fields); err == nil && fields[0] == "1" {
				opts.ThirdPartyDir = dir
			}
		case key == "procTime":
			err = parseProcTime(fields, opts)
		case key == "minusAdd1day":
			opts.MinusAdd1Day, err = parseSwitch(fields)
		case key == "printInfoWget":
			opts.PrintInfoWget, err = parseSwitch(fields)
		case key == "ftpDownloading":
			if opts.Download, err = parseSwitch(fields); err == nil && len(fields) > 1 {
				opts.Archive = fields[1]
			}
		default:
			pk, ok := productKeys[key]
			if !ok {
				continue // unknown keys belong to the processing part of the file
			}
			err = parseProduct(fields, pk.fields, pk.get(&opts.Products))
		}
		if err != nil {
			return &ConfigError{File: file, Line: lineNo, Err: fmt.Errorf("%s: %v", key, err)}
		}
	}
	if err := sc.Err(); err != nil {
		return &ConfigError{File: file, Err: err}
	}
	return nil
}

func parseSwitch(fields []string) (bool, error) {
	if len(fields) == 0 {
		return false, errors.New("missing value")
	}
	switch fields[0] {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("invalid switch %q (0:off 1:on)", fields[0])
}

// parseDir parses "0 sub" (below the main directory) or "1 path" (as given).
func parseDir(fields []string) (string, error) {
	if len(fields) < 2 {
		return "", errors.New("expected '0|1 path'")
	}
	dir := strings.Join(fields[1:], " ")
	switch fields[0] {
	case "0":
		return strings.TrimLeft(dir, `/\`), nil
	case "1":
		return dir, nil
	}
	return "", fmt.Errorf("invalid path mode %q", fields[0])
}

func parseProcTime(fields []string, opts *Options) error {
	nums := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return fmt.Errorf("invalid number %q", f)
		}
		nums[i] = n
	}
	if len(nums) == 0 {
		return errors.New("missing value")
	}

	var (
		ep  gpstime.Epoch
		err error
	)
	switch nums[0] {
	case 1:
		if len(nums) < 5 {
			return errors.New("expected '1 year month day ndays'")
		}
		ep, err = gpstime.FromDate(nums[1], nums[2], nums[3], 0, 0, 0)
		opts.NDays = nums[4]
	case 2:
		if len(nums) < 4 {
			return errors.New("expected '2 year doy ndays'")
		}
		ep, err = gpstime.FromYearDoy(nums[1], nums[2])
		opts.NDays = nums[3]
	default:
		return fmt.Errorf("invalid time mode %d", nums[0])
	}
	if err != nil {
		return err
	}
	opts.Start = Date{ep}
	return nil
}

func parseProduct(fields, layout []string, p *Product) error {
	on, err := parseSwitch(fields)
	if err != nil {
		return err
	}
	p.Enabled = on
	for i, name := range layout {
		if i+1 >= len(fields) {
			break
		}
		v := fields[i+1]
		switch name {
		case "type":
			p.Type = strings.ToLower(v)
		case "option":
			p.Option = v
		case "hour", "nhours":
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q", name, v)
			}
			if name == "hour" {
				p.Hour = n
			} else {
				p.NHours = n
			}
		}
	}
	return nil
}
