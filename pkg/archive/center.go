package archive

import (
	"fmt"
	"sort"
	"strings"
)

// Latency is the latency class of precise orbit and clock products.
type Latency int

// Latency classes.
const (
	Ultra Latency = iota + 1
	Rapid
	Final
	MGEXFinal
)

func (l Latency) String() string {
	return [...]string{"", "ultra", "rapid", "final", "mgex"}[l]
}

// Dir returns the local sub-directory for products of this class.
func (l Latency) Dir() string {
	if l == MGEXFinal {
		return Final.String()
	}
	return l.String()
}

var centers = map[string]Latency{
	"esu": Ultra, "gfu": Ultra, "igu": Ultra, "wuu": Ultra,
	"cor": Rapid, "emp": Rapid, "esr": Rapid, "gfr": Rapid, "igr": Rapid,
	"cod": Final, "emr": Final, "esa": Final, "gfz": Final, "grg": Final, "igs": Final, "jpl": Final, "mit": Final,
	"com": MGEXFinal, "gbm": MGEXFinal, "grm": MGEXFinal, "wum": MGEXFinal,
}

// issueSteps are the hours between two ultra-rapid issues.
var issueSteps = map[string]int{"igu": 6, "esu": 6, "gfu": 3, "wuu": 1}

// erpCenters publish earth rotation parameters.
var erpCenters = map[string]bool{
	"esu": true, "gfu": true, "igu": true, "igr": true,
	"cod": true, "emr": true, "esa": true, "gfz": true, "grg": true, "igs": true, "jpl": true, "mit": true,
}

// ClassifyCenter returns the latency class of the analysis center.
func ClassifyCenter(ac string) (Latency, error) {
	l, ok := centers[strings.ToLower(ac)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCenter, ac)
	}
	return l, nil
}

// Centers returns the sorted analysis centers of a latency class.
func Centers(l Latency) []string {
	var acs []string
	for ac, cl := range centers {
		if cl == l {
			acs = append(acs, ac)
		}
	}
	sort.Strings(acs)
	return acs
}

// CentersFor returns the sorted analysis centers that publish the given kind.
// Kinds that are not selected by center return nil.
func CentersFor(k Kind) []string {
	var acs []string
	switch k {
	case Orbit:
		for ac := range centers {
			acs = append(acs, ac)
		}
	case Clock:
		for ac, l := range centers {
			if l != Ultra {
				acs = append(acs, ac)
			}
		}
	case ERP:
		for ac := range erpCenters {
			acs = append(acs, ac)
		}
	default:
		return nil
	}
	sort.Strings(acs)
	return acs
}

// checkCenter checks that the center publishes the kind.
func checkCenter(k Kind, ac string) error {
	l, err := ClassifyCenter(ac)
	if err != nil {
		return err
	}
	switch {
	case k == Clock && l == Ultra:
		return fmt.Errorf("%w: no clock products for ultra-rapid center %s", ErrNoEntry, ac)
	case k == ERP && !erpCenters[ac]:
		return fmt.Errorf("%w: no earth rotation parameters for center %s", ErrNoEntry, ac)
	}
	return nil
}

// IssueStep returns the hours between two issues of the center's products.
// Non ultra-rapid centers issue once per day.
func IssueStep(ac string) int {
	if step, ok := issueSteps[strings.ToLower(ac)]; ok {
		return step
	}
	return 24
}

// IssueHours returns n issue hours of the center starting at hour start.
// A start hour between two issues is moved to the next issue.
func IssueHours(ac string, start, n int) []int {
	step := IssueStep(ac)
	if rem := start % step; rem != 0 {
		start += step - rem
	}
	var hrs []int
	for hr := start; hr < 24 && hr < start+n*step; hr += step {
		hrs = append(hrs, hr)
	}
	return hrs
}

// Hours returns the hours start..start+n-1, limited to the day.
func Hours(start, n int) []int {
	if start < 0 {
		start = 0
	}
	var hrs []int
	for hr := start; hr < 24 && hr < start+n; hr++ {
		hrs = append(hrs, hr)
	}
	return hrs
}

// Quarters are the start minutes of the 15 minute highrate files.
var Quarters = []int{0, 15, 30, 45}
