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
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ctessum/sparse"
)

// ScanResult holds the assembled cubes of a Hinode SP scan together with
// the headers they were built from.
type ScanResult struct {
	Result

	// Headers are the primary headers of the Level 1 files, one per
	// slit position.
	Headers []Header

	// Level1Header is the primary header of the first Level 1 file and
	// Level2Header the primary header of the Level 2 file.
	Level1Header, Level2Header Header
}

// HinodeSP assembles the Hinode SP scan whose first observation is
// identified by scan, e.g. "20140910_120000". Level 1 files are read from
// Dir/Level1/<scan>/, one per slit position, each with shape
// (stokes, y, wavelength). Level 2 parameters are read from the named
// extensions of Dir/Level2/<scan>.fits in opts.Parameters order, which
// defaults to HinodeParameters.
//
// The pointing of the Level 1 and Level 2 headers often disagrees, so the
// reference value of the spatial axes is the median of the XCEN and YCEN
// keywords of the individual slit positions.
func (c *Config) HinodeSP(scan string, opts Options) (*ScanResult, error) {
	if opts.Download {
		return nil, fmt.Errorf("stokes: Hinode SP scans cannot be downloaded")
	}
	if opts.Derotate {
		return nil, fmt.Errorf("stokes: Hinode SP scans cannot be derotated")
	}
	if err := c.checkOptions(opts); err != nil {
		return nil, err
	}
	params := opts.Parameters
	if len(params) == 0 {
		params = HinodeParameters
	}
	r := &ScanResult{Result: Result{Parameters: params}}

	// Level 1.
	dir := filepath.Join(c.Dir, "Level1", scan)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, &NoMatchError{Product: ProductSPLevel1, Dir: dir}
	}
	all, err := ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if strings.EqualFold(filepath.Ext(p), ".fits") {
			r.Level1Files = append(r.Level1Files, p)
		}
	}
	if len(r.Level1Files) == 0 {
		return nil, &NoMatchError{Product: ProductSPLevel1, Dir: dir}
	}
	if c.Observer != nil {
		c.Observer.Matched(ProductSPLevel1, r.Level1Files, []string{scan})
	}
	positions := make([]*sparse.DenseArray, len(r.Level1Files))
	xcen := make([]float64, len(r.Level1Files))
	ycen := make([]float64, len(r.Level1Files))
	for i, p := range r.Level1Files {
		im, err := c.decode(p, false)
		if err != nil {
			return nil, err
		}
		if len(im.Data.Shape) != 3 {
			return nil, &ShapeMismatchError{Op: "read slit position " + filepath.Base(p), Want: []int{0, 0, 0}, Got: im.Data.Shape}
		}
		if xcen[i], err = im.Header.Float("XCEN"); err != nil {
			return nil, fmt.Errorf("stokes: %s: %w", p, err)
		}
		if ycen[i], err = im.Header.Float("YCEN"); err != nil {
			return nil, fmt.Errorf("stokes: %s: %w", p, err)
		}
		positions[i] = im.Data
		r.Headers = append(r.Headers, im.Header)
	}
	r.Level1Header = r.Headers[0]

	// (position, stokes, y, wavelength) -> (stokes, wavelength, y, x)
	stack, err := Stack(positions)
	if err != nil {
		return nil, err
	}
	if r.Level1, err = Transpose(stack, 1, 3, 2, 0); err != nil {
		return nil, err
	}
	c.assembled(ProductSPLevel1, r.Level1)

	// Level 2.
	l2 := filepath.Join(c.Dir, "Level2", scan+".fits")
	if _, err := os.Stat(l2); err != nil {
		if os.IsNotExist(err) {
			return nil, &NoMatchError{Product: ProductSPLevel2, Dir: filepath.Dir(l2)}
		}
		return nil, fmt.Errorf("stokes: %w", err)
	}
	r.Level2Files = []string{l2}
	if c.Observer != nil {
		c.Observer.Matched(ProductSPLevel2, r.Level2Files, []string{scan})
	}
	primary, err := c.Decoder.Decode(l2)
	if err != nil {
		return nil, fmt.Errorf("stokes: decoding %s: %w", l2, err)
	}
	r.Level2Header = primary.Header
	names, err := c.Decoder.Extensions(l2)
	if err != nil {
		return nil, fmt.Errorf("stokes: listing extensions of %s: %w", l2, err)
	}
	sources := make([]Source, len(names))
	for i, n := range names {
		sources[i] = Extension{Path: l2, Name: n}
	}
	r.Level2, err = AssembleParameters(sources, params, func(s Source) (*sparse.DenseArray, error) {
		e := s.(Extension)
		im, err := c.Decoder.DecodeExtension(e.Path, e.Name)
		if err != nil {
			return nil, err
		}
		if im.Data == nil {
			return nil, fmt.Errorf("extension %s contains no image data", e.Name)
		}
		return im.Data, nil
	})
	if err != nil {
		return nil, err
	}
	c.assembled(ProductSPLevel2, r.Level2)

	// Coordinates.
	base, err := scanCoordinates(r.Level2Header, r.Level2.Shape, xcen, ycen)
	if err != nil {
		return nil, err
	}
	wave, err := scanWavelengthAxis(r.Level1Header)
	if err != nil {
		return nil, err
	}
	if r.Level1Coords, err = Extend(base, wave, StokesAxis()); err != nil {
		return nil, err
	}
	if r.Level2Coords, err = Extend(base, ParameterAxis()); err != nil {
		return nil, err
	}
	return r, nil
}

// scanCoordinates returns the spatial axes of a scan. The reference pixel
// is the center of the Level 2 map.
func scanCoordinates(h2 Header, shape []int, xcen, ycen []float64) (*CoordinateSystem, error) {
	nx := h2.FloatOr("NAXIS1", float64(shape[len(shape)-1]))
	ny := h2.FloatOr("NAXIS2", float64(shape[len(shape)-2]))
	xscale, err := h2.Float("XSCALE")
	if err != nil {
		return nil, err
	}
	yscale, err := h2.Float("YSCALE")
	if err != nil {
		return nil, err
	}
	cs := &CoordinateSystem{Axes: []Axis{
		{CRPix: (nx + 1) / 2, CRVal: median(xcen), CDelt: xscale, CUnit: "arcsec", CType: "HPLN-TAN"},
		{CRPix: (ny + 1) / 2, CRVal: median(ycen), CDelt: yscale, CUnit: "arcsec", CType: "HPLT-TAN"},
	}}
	if d, err := h2.String("DATE_OBS"); err == nil {
		cs.Frame.DateObs = d
	}
	return cs, nil
}

// scanWavelengthAxis returns the spectral axis described by the first axis
// of a Level 1 header.
func scanWavelengthAxis(h1 Header) (Axis, error) {
	a := Axis{CType: "WAVE"}
	var err error
	if a.CRPix, err = h1.Float("CRPIX1"); err != nil {
		return a, err
	}
	if a.CDelt, err = h1.Float("CDELT1"); err != nil {
		return a, err
	}
	if a.CRVal, err = h1.Float("CRVAL1"); err != nil {
		return a, err
	}
	if a.CUnit, err = h1.String("CUNIT1"); err != nil {
		return a, err
	}
	return a, nil
}

// median returns the median of x, averaging the two central values when
// len(x) is even.
func median(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
