package gpstime

// leapSecond is one entry of the leap second table: from MJD on, UTC-GPS equals offset.
type leapSecond struct {
	mjd    int
	offset int
}

// leaps must be sorted descending by date.
// The last announced leap second took effect 2017-01-01. Entries after that have to be
// added by hand whenever the IERS announces a new one.
var leaps = []leapSecond{
	{57754, -18}, // 2017-01-01
	{57204, -17}, // 2015-07-01
	{56109, -16}, // 2012-07-01
	{54832, -15}, // 2009-01-01
	{53736, -14}, // 2006-01-01
	{51179, -13}, // 1999-01-01
	{50630, -12}, // 1997-07-01
	{50083, -11}, // 1996-01-01
	{49534, -10}, // 1994-07-01
	{49169, -9},  // 1993-07-01
	{48804, -8},  // 1992-07-01
	{48257, -7},  // 1991-01-01
	{47892, -6},  // 1990-01-01
	{47161, -5},  // 1988-01-01
	{46247, -4},  // 1985-07-01
	{45516, -3},  // 1983-07-01
	{45151, -2},  // 1982-07-01
	{44786, -1},  // 1981-07-01
}

// LeapTableEnd is the effective date of the newest entry in the leap second table.
var LeapTableEnd = Epoch{MJD: leaps[0].mjd}

// UTCOffset returns UTC-GPS in seconds valid at the given UTC epoch.
// Epochs before 1981-07-01 return 0. The table is static, offsets for epochs after
// a leap second that is not listed are wrong by that leap second.
func UTCOffset(utc Epoch) int {
	for _, l := range leaps {
		if utc.MJD >= l.mjd {
			return l.offset
		}
	}
	return 0
}

// GPSToUTC converts an epoch in GPS time to UTC.
func GPSToUTC(gps Epoch) Epoch {
	for _, l := range leaps {
		utc := gps.AddSeconds(float64(l.offset))
		if utc.MJD >= l.mjd {
			return utc
		}
	}
	return gps
}

// UTCToGPS converts an epoch in UTC to GPS time.
func UTCToGPS(utc Epoch) Epoch {
	return utc.AddSeconds(float64(-UTCOffset(utc)))
}
