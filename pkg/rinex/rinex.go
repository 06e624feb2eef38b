// Package rinex provides functions for RINEX file names and the decompression of Hatanaka compressed observation files.
package rinex

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// rnx3StartTimeFormat is the time format for the start time in RINEX3 file names.
	rnx3StartTimeFormat string = "20060021504"
)

var (
	// Rnx2FileNamePattern is the regex for RINEX2 filenames.
	Rnx2FileNamePattern = regexp.MustCompile(`(([a-z0-9]{4})(\d{3})([a-x0])(\d{2})?\.(\d{2})([domnglqfph]))\.?([a-zA-Z0-9]+)?`)

	// Rnx3FileNamePattern is the regex for RINEX3 filenames.
	Rnx3FileNamePattern = regexp.MustCompile(`((([A-Z0-9]{4})(\d)(\d)([A-Z]{3})_([RSU])_((\d{4})(\d{3})(\d{2})(\d{2}))_(\d{2}[A-Z])_?(\d{2}[CZSMHDU])?_([GREJCISM][MNO]))\.(rnx|crx))\.?([a-zA-Z0-9]+)?`)
)

// FileName contains the fields encoded in a RINEX2 or RINEX3 filename.
type FileName struct {
	FourCharID     string
	MonumentNumber int
	ReceiverNumber int
	CountryCode    string // ISO 3char
	StartTime      time.Time
	DataSource     string // [RSU]
	FilePeriod     string // 15M, 01H, 01D
	DataFreq       string // 30S, not for nav files
	DataType       string // The data type abbreviations GO, RO, MN, MM, ...
	Format         string // rnx or crx
	Compression    string // gz, Z, ...
}

// ParseFilename parses the specified filename, which must be a valid RINEX filename.
func ParseFilename(path string) (*FileName, error) {
	if path == "" {
		return nil, fmt.Errorf("could not parse filename: path is empty")
	}

	f := &FileName{}
	fn := filepath.Base(path)
	if len(fn) > 20 { // Rnx3
		res := Rnx3FileNamePattern.FindStringSubmatch(fn)
		if res == nil {
			return nil, fmt.Errorf("no RINEX3 filename: %s", fn)
		}
		f.FourCharID = strings.ToUpper(res[3])
		f.MonumentNumber, _ = strconv.Atoi(res[4])
		f.ReceiverNumber, _ = strconv.Atoi(res[5])
		f.CountryCode = strings.ToUpper(res[6])
		f.DataSource = strings.ToUpper(res[7])
		t, err := time.Parse(rnx3StartTimeFormat, res[8])
		if err != nil {
			return nil, fmt.Errorf("could not parse start time: %s: %v", res[8], err)
		}
		f.StartTime = t
		f.FilePeriod = strings.ToUpper(res[13])
		f.DataFreq = strings.ToUpper(res[14])
		f.DataType = strings.ToUpper(res[15])
		f.Format = strings.ToLower(res[16])
		f.Compression = res[17]
		return f, nil
	}

	// Rnx2
	res := Rnx2FileNamePattern.FindStringSubmatch(fn)
	if res == nil {
		return nil, fmt.Errorf("no RINEX2 filename: %s", fn)
	}
	f.FourCharID = strings.ToUpper(res[2])
	switch {
	case res[4] == "0":
		f.FilePeriod, f.DataFreq = "01D", "30S"
	case res[5] != "": // highrate minutes
		f.FilePeriod, f.DataFreq = "15M", "01S"
	default:
		f.FilePeriod, f.DataFreq = "01H", "30S"
	}

	doy, err := time.Parse("06002", res[6]+res[3])
	if err != nil {
		return nil, fmt.Errorf("could not parse DoY: %v", err)
	}
	hr := 0
	if res[4] != "0" {
		if hr, err = HourOfChar(rune(res[4][0])); err != nil {
			return nil, err
		}
	}
	min := 0
	if res[5] != "" {
		min, _ = strconv.Atoi(res[5])
	}
	f.StartTime = doy.Add(time.Duration(hr)*time.Hour + time.Duration(min)*time.Minute)

	switch strings.ToLower(res[7]) {
	case "o":
		f.DataType, f.Format = "MO", "rnx"
	case "d":
		f.DataType, f.Format = "MO", "crx"
	case "n":
		f.DataType, f.Format = "GN", "rnx"
	case "g":
		f.DataType, f.Format = "RN", "rnx"
	case "l":
		f.DataType, f.Format = "EN", "rnx"
	case "p":
		f.DataType, f.Format = "MN", "rnx"
	case "m":
		f.DataType, f.Format = "MM", "rnx"
	default:
		return nil, fmt.Errorf("could not determine the DATA TYPE: %s", fn)
	}
	f.Compression = res[8]

	return f, nil
}

// Station returns the lowercase four character station ID.
func (f *FileName) Station() string {
	return strings.ToLower(f.FourCharID)
}

// HourChar returns the RINEX2 session character of the hour, 'a' for 0 up to 'x' for 23.
func HourChar(hr int) (string, error) {
	if hr < 0 || hr > 23 {
		return "", fmt.Errorf("invalid hour %d", hr)
	}
	return string(rune(hr + 'a')), nil
}

// HourOfChar returns the hour of a RINEX2 session character.
func HourOfChar(char rune) (int, error) {
	hr := int(char) - int('a')
	if hr < 0 || hr > 23 {
		return 0, fmt.Errorf("could not get hour for %c", char)
	}
	return hr, nil
}

// IsHatanakaCompressed returns true if the file giveb by filename is Hatanaka compressed.
// This is checked by the filenames' extension, a compression suffix is ignored.
func IsHatanakaCompressed(filename string) bool {
	filename = strings.TrimSuffix(strings.TrimSuffix(filename, ".gz"), ".Z")
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".crx" || (len(ext) == 4 && strings.HasSuffix(ext, "d")) // .21d
}
