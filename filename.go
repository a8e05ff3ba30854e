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
	"io/ioutil"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
)

// NamingConvention specifies how a data file name is split into
// instrument, series, timestamp and segment tokens.
type NamingConvention int

const (
	// JSOC names are dot delimited, e.g.
	// hmi.S_720s.20140910_120000_TAI.3.I0.fits
	JSOC NamingConvention = iota

	// VSO names are underscore delimited, e.g.
	// aia_lev1_20140910_120000_tai_171a.fits
	// The series token cannot itself contain an underscore.
	VSO
)

func (c NamingConvention) String() string {
	switch c {
	case JSOC:
		return "jsoc"
	case VSO:
		return "vso"
	default:
		return fmt.Sprintf("NamingConvention(%d)", int(c))
	}
}

// ParseNamingConvention returns the convention with the given name
// ("jsoc" or "vso").
func ParseNamingConvention(s string) (NamingConvention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jsoc":
		return JSOC, nil
	case "vso":
		return VSO, nil
	default:
		return 0, fmt.Errorf("stokes: invalid naming convention %q; valid options are 'jsoc' and 'vso'", s)
	}
}

// minTokens is the number of tokens needed to fill every FileRecord field.
const minTokens = 5

// tokens splits a file base name. VSO names have their extension removed
// first, because the extension is not delimited by an underscore.
func (c NamingConvention) tokens(name string) []string {
	switch c {
	case VSO:
		return strings.Split(strings.TrimSuffix(name, filepath.Ext(name)), "_")
	default:
		return strings.Split(name, ".")
	}
}

// FileRecord holds the identifiers encoded in the name of a data file.
type FileRecord struct {
	Path       string // location of the file
	Name       string // base name of the file
	Instrument string
	Series     string
	Timestamp  string // timestamp token as written in the file name
	Segment    string // data segment, e.g. a Stokes/wavelength pair or inversion parameter

	// Time is the observation time encoded in Timestamp, in UTC.
	Time time.Time
}

// Parameter returns the segment of the file, which identifies the
// physical parameter stored in it.
func (r FileRecord) Parameter() string { return r.Segment }

// ParseFileRecord extracts the identifiers from the name of the file at
// path according to convention c.
func ParseFileRecord(path string, c NamingConvention) (FileRecord, error) {
	name := filepath.Base(path)
	tok := c.tokens(name)
	if len(tok) < minTokens {
		return FileRecord{}, &ConventionMismatchError{Name: name, Convention: c, Tokens: len(tok), Want: minTokens}
	}
	r := FileRecord{
		Path:       path,
		Name:       name,
		Instrument: tok[0],
		Series:     tok[1],
	}
	switch c {
	case VSO:
		r.Timestamp = tok[2] + "_" + tok[3]
		if s := strings.ToLower(tok[4]); (s == "tai" || s == "utc") && len(tok) > minTokens {
			r.Timestamp += "_" + tok[4]
		}
		r.Segment = tok[len(tok)-1]
	default:
		r.Timestamp = tok[2]
		r.Segment = tok[len(tok)-2]
	}
	t, err := ParseTimestamp(r.Timestamp)
	if err != nil {
		return FileRecord{}, fmt.Errorf("stokes: file %s: %w", name, err)
	}
	r.Time = t
	return r, nil
}

// Filter returns the files in paths whose instrument and series tokens
// match the given values, ignoring case. The order of paths is preserved,
// so paths should already be sorted with NaturalSort. Names with fewer than
// two tokens are skipped. An empty result is not an error.
func Filter(paths []string, instrument, series string, c NamingConvention) ([]FileRecord, error) {
	instrument, series = strings.ToLower(instrument), strings.ToLower(series)
	var o []FileRecord
	for _, p := range paths {
		tok := c.tokens(strings.ToLower(filepath.Base(p)))
		if len(tok) < 2 || tok[0] != instrument || tok[1] != series {
			continue
		}
		r, err := ParseFileRecord(p, c)
		if err != nil {
			return nil, err
		}
		o = append(o, r)
	}
	return o, nil
}

// NaturalSort sorts names in place so that embedded numbers are compared
// by value: "I2" sorts before "I10".
func NaturalSort(names []string) {
	sort.Sort(natural.StringSlice(names))
}

// ReadDir returns the paths of the regular files in dir in natural order.
func ReadDir(dir string) ([]string, error) {
	infos, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("stokes: reading data directory: %w", err)
	}
	var o []string
	for _, fi := range infos {
		if !fi.Mode().IsRegular() {
			continue
		}
		o = append(o, filepath.Join(dir, fi.Name()))
	}
	NaturalSort(o)
	return o, nil
}
