// Package gpstime converts between calendar dates, day of year, GPS week and a continuous
// day counter (Modified Julian Date). It computes the identifiers used in GNSS archive paths.
package gpstime

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// SecondsPerDay is the length of a day without leap seconds.
	SecondsPerDay = 86400

	// SecondsPerWeek is the length of a GPS week.
	SecondsPerWeek = 7 * SecondsPerDay

	// MJDGPSEpoch is the Modified Julian Date of the GPS reference epoch 1980-01-06T00:00:00.
	MJDGPSEpoch = 44244

	// mjdUnixEpoch is the Modified Julian Date of 1970-01-01.
	mjdUnixEpoch = 40587

	minYear = 1901
)

// ErrInvalidDate is returned for calendar input outside the supported range.
var ErrInvalidDate = errors.New("gpstime: invalid date")

// Epoch is an instant given by an integer day count (MJD) and the seconds of that day.
// SOD always lies in [0, 86400).
type Epoch struct {
	MJD int
	SOD float64
}

// IsLeapYear reports whether year is a leap year in the Gregorian calendar.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

var daysPerMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func daysInMonth(year, month int) int {
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return daysPerMonth[month-1]
}

func checkDate(year, month, day int) error {
	if year < minYear {
		return fmt.Errorf("%w: year %d before %d", ErrInvalidDate, year, minYear)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	if day < 1 || day > daysInMonth(year, month) {
		return fmt.Errorf("%w: day %d in %04d-%02d", ErrInvalidDate, day, year, month)
	}
	return nil
}

func checkDoy(year, doy int) error {
	if year < minYear {
		return fmt.Errorf("%w: year %d before %d", ErrInvalidDate, year, minYear)
	}
	if doy < 1 || doy > DaysInYear(year) {
		return fmt.Errorf("%w: day of year %d in %d", ErrInvalidDate, doy, year)
	}
	return nil
}

// DayOfYear returns the day of year of the given date.
func DayOfYear(year, month, day int) (int, error) {
	if err := checkDate(year, month, day); err != nil {
		return 0, err
	}
	doy := day
	for m := 1; m < month; m++ {
		doy += daysInMonth(year, m)
	}
	return doy, nil
}

// DateOfYearDay returns month and day for the given year and day of year.
func DateOfYearDay(year, doy int) (month, day int, err error) {
	if err := checkDoy(year, doy); err != nil {
		return 0, 0, err
	}
	day = doy
	for month = 1; month <= 12; month++ {
		n := daysInMonth(year, month)
		if day <= n {
			break
		}
		day -= n
	}
	return month, day, nil
}

// mjd returns the Modified Julian Date of a valid calendar date.
func mjd(year, month, day int) int {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return int(t.Unix()/SecondsPerDay) + mjdUnixEpoch
}

// FromDate returns the epoch for the given calendar date and time of day.
func FromDate(year, month, day, hour, min int, sec float64) (Epoch, error) {
	if err := checkDate(year, month, day); err != nil {
		return Epoch{}, err
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 || sec < 0 || sec >= 60 {
		return Epoch{}, fmt.Errorf("%w: time %02d:%02d:%06.3f", ErrInvalidDate, hour, min, sec)
	}
	return Epoch{MJD: mjd(year, month, day), SOD: float64(hour*3600+min*60) + sec}, nil
}

// FromYearDoy returns the epoch at the beginning of the given day of year.
func FromYearDoy(year, doy int) (Epoch, error) {
	month, day, err := DateOfYearDay(year, doy)
	if err != nil {
		return Epoch{}, err
	}
	return Epoch{MJD: mjd(year, month, day)}, nil
}

// FromGPSWeek returns the epoch for the GPS week, day of week (0=Sunday) and seconds of day.
func FromGPSWeek(week, dow int, sod float64) (Epoch, error) {
	if week < 0 || dow < 0 || dow > 6 {
		return Epoch{}, fmt.Errorf("%w: GPS week %d day %d", ErrInvalidDate, week, dow)
	}
	if sod < 0 || sod >= SecondsPerDay {
		return Epoch{}, fmt.Errorf("%w: seconds of day %f", ErrInvalidDate, sod)
	}
	return Epoch{MJD: MJDGPSEpoch + 7*week + dow, SOD: sod}, nil
}

// FromTime converts t to an epoch, ignoring its location offset.
func FromTime(t time.Time) Epoch {
	t = t.UTC()
	y, m, d := t.Date()
	sod := float64(t.Hour()*3600+t.Minute()*60+t.Second()) + float64(t.Nanosecond())/1e9
	return Epoch{MJD: mjd(y, int(m), d), SOD: sod}
}

// Time returns the epoch as UTC time.Time, without leap second correction.
func (e Epoch) Time() time.Time {
	sec := int64(e.MJD-mjdUnixEpoch) * SecondsPerDay
	whole, frac := math.Modf(e.SOD)
	return time.Unix(sec+int64(whole), int64(math.Round(frac*1e9))).UTC()
}

// Date returns year, month and day of the epoch.
func (e Epoch) Date() (year, month, day int) {
	y, m, d := e.Time().Date()
	return y, int(m), d
}

// YearDoy returns the year and day of year of the epoch.
func (e Epoch) YearDoy() (year, doy int) {
	t := e.Time()
	return t.Year(), t.YearDay()
}

// Hour returns the hour of the day.
func (e Epoch) Hour() int {
	return int(e.SOD) / 3600
}

// GPSWeek returns the GPS week and the day of week (0=Sunday).
func (e Epoch) GPSWeek() (week, dow int) {
	days := e.MJD - MJDGPSEpoch
	week = floorDiv(days, 7)
	return week, days - 7*week
}

// SecondsOfWeek returns the seconds elapsed since the start of the GPS week.
func (e Epoch) SecondsOfWeek() float64 {
	_, dow := e.GPSWeek()
	return float64(dow*SecondsPerDay) + e.SOD
}

// AddSeconds returns the epoch shifted by dt seconds.
func (e Epoch) AddSeconds(dt float64) Epoch {
	sod := e.SOD + dt
	days := math.Floor(sod / SecondsPerDay)
	sod -= days * SecondsPerDay
	mjd := e.MJD + int(days)
	if sod >= SecondsPerDay { // rounding
		sod -= SecondsPerDay
		mjd++
	}
	if sod < 0 {
		sod = 0
	}
	return Epoch{MJD: mjd, SOD: sod}
}

// AddDays returns the epoch shifted by n days.
func (e Epoch) AddDays(n int) Epoch {
	return Epoch{MJD: e.MJD + n, SOD: e.SOD}
}

// Sub returns e-o in seconds.
func (e Epoch) Sub(o Epoch) float64 {
	return float64(e.MJD-o.MJD)*SecondsPerDay + (e.SOD - o.SOD)
}

// Before reports whether e is before o.
func (e Epoch) Before(o Epoch) bool {
	return e.MJD < o.MJD || (e.MJD == o.MJD && e.SOD < o.SOD)
}

// Equal reports whether both epochs denote the same instant.
func (e Epoch) Equal(o Epoch) bool {
	return e.MJD == o.MJD && e.SOD == o.SOD
}

// StartOfDay truncates the epoch to 00:00:00.
func (e Epoch) StartOfDay() Epoch {
	return Epoch{MJD: e.MJD}
}

func (e Epoch) String() string {
	return e.Time().Format("2006-01-02 15:04:05")
}

// Parse parses a date given as "YYYY-MM-DD", "YYYY-DDD" or "YYYY/DDD".
func Parse(s string) (Epoch, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return FromDate(t.Year(), int(t.Month()), t.Day(), 0, 0, 0)
	}

	f := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' })
	if len(f) != 2 {
		return Epoch{}, fmt.Errorf("%w: could not parse %q", ErrInvalidDate, s)
	}
	year, err := strconv.Atoi(f[0])
	if err != nil {
		return Epoch{}, fmt.Errorf("%w: year %q", ErrInvalidDate, f[0])
	}
	doy, err := strconv.Atoi(f[1])
	if err != nil {
		return Epoch{}, fmt.Errorf("%w: day of year %q", ErrInvalidDate, f[1])
	}
	return FromYearDoy(year, doy)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
