/*
Copyright © 2022 the stokes authors.
This file is part of stokes.

stokes is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

stokes is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with stokes.  If not, see <http://www.gnu.org/licenses/>.
*/

package stokes

import (
	"fmt"
	"strings"
	"time"
)

// leapSeconds holds TAI-UTC in seconds, starting at the given UTC instant.
var leapSeconds = []struct {
	start  time.Time
	offset int
}{
	{time.Date(1972, 1, 1, 0, 0, 0, 0, time.UTC), 10},
	{time.Date(1972, 7, 1, 0, 0, 0, 0, time.UTC), 11},
	{time.Date(1973, 1, 1, 0, 0, 0, 0, time.UTC), 12},
	{time.Date(1974, 1, 1, 0, 0, 0, 0, time.UTC), 13},
	{time.Date(1975, 1, 1, 0, 0, 0, 0, time.UTC), 14},
	{time.Date(1976, 1, 1, 0, 0, 0, 0, time.UTC), 15},
	{time.Date(1977, 1, 1, 0, 0, 0, 0, time.UTC), 16},
	{time.Date(1978, 1, 1, 0, 0, 0, 0, time.UTC), 17},
	{time.Date(1979, 1, 1, 0, 0, 0, 0, time.UTC), 18},
	{time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), 19},
	{time.Date(1981, 7, 1, 0, 0, 0, 0, time.UTC), 20},
	{time.Date(1982, 7, 1, 0, 0, 0, 0, time.UTC), 21},
	{time.Date(1983, 7, 1, 0, 0, 0, 0, time.UTC), 22},
	{time.Date(1985, 7, 1, 0, 0, 0, 0, time.UTC), 23},
	{time.Date(1988, 1, 1, 0, 0, 0, 0, time.UTC), 24},
	{time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), 25},
	{time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC), 26},
	{time.Date(1992, 7, 1, 0, 0, 0, 0, time.UTC), 27},
	{time.Date(1993, 7, 1, 0, 0, 0, 0, time.UTC), 28},
	{time.Date(1994, 7, 1, 0, 0, 0, 0, time.UTC), 29},
	{time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC), 30},
	{time.Date(1997, 7, 1, 0, 0, 0, 0, time.UTC), 31},
	{time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), 32},
	{time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC), 33},
	{time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC), 34},
	{time.Date(2012, 7, 1, 0, 0, 0, 0, time.UTC), 35},
	{time.Date(2015, 7, 1, 0, 0, 0, 0, time.UTC), 36},
	{time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), 37},
}

// taiOffset returns TAI-UTC at UTC instant t. Before 1972 it returns
// the 1972 value.
func taiOffset(t time.Time) time.Duration {
	o := leapSeconds[0].offset
	for _, l := range leapSeconds {
		if t.Before(l.start) {
			break
		}
		o = l.offset
	}
	return time.Duration(o) * time.Second
}

// UTCToTAI returns the TAI clock reading at UTC instant t, expressed as a
// time.Time in the UTC location.
func UTCToTAI(t time.Time) time.Time {
	t = t.UTC()
	return t.Add(taiOffset(t))
}

// TAIToUTC converts a TAI clock reading (stored as a UTC time.Time) to the
// corresponding UTC instant.
func TAIToUTC(t time.Time) time.Time {
	t = t.UTC()
	u := t.Add(-taiOffset(t))
	return t.Add(-taiOffset(u))
}

// ParseTimestamp parses a file name timestamp token of the form
// YYYYMMDD_HHMMSS with an optional _TAI or _UTC suffix. Times without a
// suffix are taken to be UTC. The returned time is in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	parts := strings.Split(s, "_")
	if len(parts) < 2 || len(parts) > 3 {
		return time.Time{}, fmt.Errorf("stokes: invalid timestamp %q", s)
	}
	t, err := time.Parse("20060102150405", parts[0]+parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("stokes: invalid timestamp %q: %v", s, err)
	}
	if len(parts) == 3 {
		switch strings.ToUpper(parts[2]) {
		case "TAI":
			return TAIToUTC(t), nil
		case "UTC", "Z":
		default:
			return time.Time{}, fmt.Errorf("stokes: invalid time scale %q in timestamp %q", parts[2], s)
		}
	}
	return t, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006.01.02_15:04:05",
	"20060102_150405",
	"2006-01-02",
}

// ParseTime parses an observation time given by a user. Accepted layouts
// are RFC 3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", the JSOC
// form "2006.01.02_15:04:05", the file name form "20060102_150405" and
// "2006-01-02". A trailing "TAI" or "UTC" (optionally preceded by a space
// or underscore) sets the time scale; UTC is the default.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	tai := false
	upper := strings.ToUpper(s)
	for _, scale := range []string{"TAI", "UTC"} {
		if strings.HasSuffix(upper, scale) && len(s) > len(scale) {
			tai = scale == "TAI"
			s = strings.TrimRight(s[:len(s)-len(scale)], " _")
			break
		}
	}
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if tai {
			return TAIToUTC(t), nil
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("stokes: unable to parse time %q", s)
}
