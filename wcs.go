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
	"math"
	"strings"

	"github.com/ctessum/unit"
)

// Axis describes one coordinate axis using the FITS WCS keywords.
type Axis struct {
	CRPix float64 // reference pixel
	CRVal float64 // coordinate value at the reference pixel
	CDelt float64 // coordinate increment per pixel
	CUnit string  // unit of CRVal and CDelt
	CType string  // axis type, e.g. HPLN-TAN, WAVE or STOKES
}

// Central wavelength and filtergram spacing of the HMI Fe I line [m].
const (
	HMILineCenter  = 6173.345e-10
	HMILineSpacing = 0.0688e-10
)

// HMIWavelengthAxis returns the wavelength axis of an HMI Stokes cube.
func HMIWavelengthAxis() Axis {
	return Axis{CRPix: 3.5, CDelt: HMILineSpacing, CUnit: "m", CType: "WAVE", CRVal: HMILineCenter}
}

// StokesAxis returns the polarization axis of a Stokes cube.
func StokesAxis() Axis {
	return Axis{CRPix: 0, CDelt: 1, CUnit: "", CType: "STOKES", CRVal: 0}
}

// ParameterAxis returns the generic axis of a parameter cube.
func ParameterAxis() Axis {
	return Axis{CRPix: 0, CDelt: 1, CUnit: "", CType: "Parameter", CRVal: 0}
}

var angle = unit.Dimensions{unit.AngleDim: 1}

// axisUnits maps FITS unit strings to dimensions and the factor that
// converts a value to SI.
var axisUnits = map[string]struct {
	dims  unit.Dimensions
	scale float64
}{
	"":         {unit.Dimless, 1},
	"m":        {unit.Meter, 1},
	"cm":       {unit.Meter, 1e-2},
	"mm":       {unit.Meter, 1e-3},
	"um":       {unit.Meter, 1e-6},
	"nm":       {unit.Meter, 1e-9},
	"angstrom": {unit.Meter, 1e-10},
	"rad":      {angle, 1},
	"deg":      {angle, math.Pi / 180},
	"arcmin":   {angle, math.Pi / (180 * 60)},
	"arcsec":   {angle, math.Pi / (180 * 3600)},
}

func lookupUnit(cunit string) (unit.Dimensions, float64, error) {
	u, ok := axisUnits[strings.ToLower(strings.TrimSpace(cunit))]
	if !ok {
		return nil, 0, fmt.Errorf("stokes: unsupported axis unit %q", cunit)
	}
	return u.dims, u.scale, nil
}

// World returns the coordinate at the given pixel position, converted to
// SI units.
func (a Axis) World(pixel float64) (*unit.Unit, error) {
	dims, scale, err := lookupUnit(a.CUnit)
	if err != nil {
		return nil, err
	}
	return unit.New((a.CRVal+(pixel-a.CRPix)*a.CDelt)*scale, dims), nil
}

// check makes sure the unit of a suits its type.
func (a Axis) check() error {
	dims, _, err := lookupUnit(a.CUnit)
	if err != nil {
		return err
	}
	v := unit.New(a.CRVal, dims)
	switch strings.ToUpper(a.CType) {
	case "WAVE", "WAVELENGTH":
		err = v.Check(unit.Meter)
	case "STOKES", "PARAMETER":
		err = v.Check(unit.Dimless)
	}
	if err != nil {
		return fmt.Errorf("stokes: %s axis: %v", a.CType, err)
	}
	return nil
}

// ObserverFrame holds the observer position keywords that accompany the
// spatial axes.
type ObserverFrame struct {
	DateObs string  // DATE-OBS
	DSun    float64 // DSUN_OBS [m]
	HGLon   float64 // HGLN_OBS [deg]
	HGLat   float64 // HGLT_OBS [deg]
	RSun    float64 // RSUN_REF [m]
}

// CoordinateSystem is a world coordinate system. Axes are ordered fastest
// varying first, the reverse of the array axis order of the data it
// describes.
type CoordinateSystem struct {
	Axes []Axis

	// Rotation is the rotation of the spatial axes (CROTA2) in degrees.
	Rotation float64

	Frame ObserverFrame
}

// NAxis returns the number of axes.
func (cs *CoordinateSystem) NAxis() int { return len(cs.Axes) }

// Check returns an error if cs cannot describe an array with the given
// shape.
func (cs *CoordinateSystem) Check(shape []int) error {
	if len(shape) != len(cs.Axes) {
		return &ShapeMismatchError{Op: "coordinate system", Want: []int{len(cs.Axes)}, Got: []int{len(shape)}}
	}
	return nil
}

// ArrayAxis returns the coordinate axis describing array axis i of a
// len(cs.Axes)-dimensional array.
func (cs *CoordinateSystem) ArrayAxis(i int) (Axis, error) {
	j := len(cs.Axes) - 1 - i
	if j < 0 || j >= len(cs.Axes) {
		return Axis{}, fmt.Errorf("stokes: array axis %d out of range for %d coordinate axes", i, len(cs.Axes))
	}
	return cs.Axes[j], nil
}

// Copy returns a deep copy of cs.
func (cs *CoordinateSystem) Copy() *CoordinateSystem {
	o := *cs
	o.Axes = append([]Axis(nil), cs.Axes...)
	return &o
}

// Extend returns a coordinate system made of the two spatial axes of base
// followed by the extra axes in the order given. Because coordinate axes
// run opposite to array axes, the last extra axis describes the leading
// axis of the data array.
func Extend(base *CoordinateSystem, extra ...Axis) (*CoordinateSystem, error) {
	if base == nil || len(base.Axes) != 2 {
		n := 0
		if base != nil {
			n = len(base.Axes)
		}
		return nil, fmt.Errorf("stokes: extending coordinates: base has %d axes; want 2 spatial axes", n)
	}
	for _, a := range extra {
		if err := a.check(); err != nil {
			return nil, err
		}
	}
	o := base.Copy()
	o.Axes = append(o.Axes, extra...)
	return o, nil
}

// Header returns cs as FITS WCS keywords.
func (cs *CoordinateSystem) Header() Header {
	h := Header{"WCSAXES": len(cs.Axes)}
	for i, a := range cs.Axes {
		n := i + 1
		h[fmt.Sprintf("CRPIX%d", n)] = a.CRPix
		h[fmt.Sprintf("CRVAL%d", n)] = a.CRVal
		h[fmt.Sprintf("CDELT%d", n)] = a.CDelt
		h[fmt.Sprintf("CUNIT%d", n)] = a.CUnit
		h[fmt.Sprintf("CTYPE%d", n)] = a.CType
	}
	h["CROTA2"] = cs.Rotation
	if f := cs.Frame; f.DateObs != "" {
		h["DATE-OBS"] = f.DateObs
	}
	for k, v := range map[string]float64{
		"DSUN_OBS": cs.Frame.DSun,
		"HGLN_OBS": cs.Frame.HGLon,
		"HGLT_OBS": cs.Frame.HGLat,
		"RSUN_REF": cs.Frame.RSun,
	} {
		if v != 0 {
			h[k] = v
		}
	}
	return h
}

// SpatialCoordinates returns the two spatial axes described by the
// CRPIXn, CRVALn, CDELTn, CUNITn and CTYPEn keywords (n = 1, 2) of h,
// together with the image rotation and observer position.
func SpatialCoordinates(h Header) (*CoordinateSystem, error) {
	cs := &CoordinateSystem{Axes: make([]Axis, 2)}
	defaultType := []string{"HPLN-TAN", "HPLT-TAN"}
	for i := range cs.Axes {
		n := i + 1
		a := &cs.Axes[i]
		var err error
		if a.CRPix, err = h.Float(fmt.Sprintf("CRPIX%d", n)); err != nil {
			return nil, err
		}
		if a.CRVal, err = h.Float(fmt.Sprintf("CRVAL%d", n)); err != nil {
			return nil, err
		}
		if a.CDelt, err = h.Float(fmt.Sprintf("CDELT%d", n)); err != nil {
			return nil, err
		}
		if a.CUnit, err = h.String(fmt.Sprintf("CUNIT%d", n)); err != nil {
			a.CUnit = "arcsec"
		}
		if a.CType, err = h.String(fmt.Sprintf("CTYPE%d", n)); err != nil {
			a.CType = defaultType[i]
		}
	}
	cs.Rotation = h.FloatOr("CROTA2", 0)
	cs.Frame = ObserverFrame{
		DSun:  h.FloatOr("DSUN_OBS", 0),
		HGLon: h.FloatOr("HGLN_OBS", 0),
		HGLat: h.FloatOr("HGLT_OBS", 0),
		RSun:  h.FloatOr("RSUN_REF", 0),
	}
	if d, err := h.String("DATE-OBS"); err == nil {
		cs.Frame.DateObs = d
	}
	return cs, nil
}
