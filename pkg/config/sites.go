package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// AllSites selects all stations published by the archive.
const AllSites = "all"

// IsSiteList reports whether the product option names a site list file.
func IsSiteList(option string) bool {
	return option != "" && !strings.EqualFold(option, AllSites)
}

// ReadSiteList reads the 4-character station IDs from the file, one per line.
// The IDs are returned in lowercase and in file order without duplicates.
// Empty lines and lines starting with # are skipped, only the first word of a line is used.
func ReadSiteList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{File: path, Err: err}
	}
	defer f.Close()

	var sites []string
	seen := map[string]bool{}
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		site := strings.ToLower(fields[0])
		if len(site) != 4 {
			return nil, &ConfigError{File: path, Line: lineNo, Err: fmt.Errorf("invalid station ID %q", fields[0])}
		}
		if seen[site] {
			continue
		}
		seen[site] = true
		sites = append(sites, site)
	}
	if err := sc.Err(); err != nil {
		return nil, &ConfigError{File: path, Err: err}
	}
	return sites, nil
}
