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
	"math"
	"reflect"
	"testing"

	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/floats"
)

func spatialHeader() Header {
	return Header{
		"CRPIX1": 2048.5, "CRVAL1": 0.0, "CDELT1": 0.504, "CUNIT1": "arcsec", "CTYPE1": "HPLN-TAN",
		"CRPIX2": 2048.5, "CRVAL2": 0.0, "CDELT2": 0.504, "CUNIT2": "arcsec", "CTYPE2": "HPLT-TAN",
		"CROTA2":   180.08,
		"DATE-OBS": "2014-09-10T11:58:50.00",
		"DSUN_OBS": 1.5e11,
		"RSUN_REF": 696000000,
	}
}

func TestSpatialCoordinates(t *testing.T) {
	cs, err := SpatialCoordinates(spatialHeader())
	if err != nil {
		t.Fatal(err)
	}
	want := []Axis{
		{CRPix: 2048.5, CRVal: 0, CDelt: 0.504, CUnit: "arcsec", CType: "HPLN-TAN"},
		{CRPix: 2048.5, CRVal: 0, CDelt: 0.504, CUnit: "arcsec", CType: "HPLT-TAN"},
	}
	if !reflect.DeepEqual(cs.Axes, want) {
		t.Errorf("axes: have %+v, want %+v", cs.Axes, want)
	}
	if cs.Rotation != 180.08 {
		t.Errorf("rotation: have %g", cs.Rotation)
	}
	if cs.Frame.DateObs != "2014-09-10T11:58:50.00" || cs.Frame.DSun != 1.5e11 || cs.Frame.RSun != 696000000 {
		t.Errorf("frame: have %+v", cs.Frame)
	}

	h := spatialHeader()
	delete(h, "CDELT2")
	if _, err := SpatialCoordinates(h); err == nil {
		t.Error("a missing CDELT2 should be an error")
	}

	h = spatialHeader()
	delete(h, "CUNIT1")
	delete(h, "CTYPE2")
	cs, err = SpatialCoordinates(h)
	if err != nil {
		t.Fatal(err)
	}
	if cs.Axes[0].CUnit != "arcsec" || cs.Axes[1].CType != "HPLT-TAN" {
		t.Errorf("defaults: have %+v", cs.Axes)
	}
}

func TestExtend(t *testing.T) {
	base, err := SpatialCoordinates(spatialHeader())
	if err != nil {
		t.Fatal(err)
	}
	cs, err := Extend(base, HMIWavelengthAxis(), StokesAxis())
	if err != nil {
		t.Fatal(err)
	}
	if cs.NAxis() != base.NAxis()+2 {
		t.Fatalf("have %d axes, want %d", cs.NAxis(), base.NAxis()+2)
	}
	if !reflect.DeepEqual(cs.Axes[:2], base.Axes) {
		t.Errorf("spatial axes changed: have %+v, want %+v", cs.Axes[:2], base.Axes)
	}
	if err := cs.Check([]int{4, 6, 4096, 4096}); err != nil {
		t.Error(err)
	}
	if err := cs.Check([]int{3, 4096, 4096}); err == nil {
		t.Error("a 3-D shape should not fit a 4-axis system")
	}

	// Array axis 0 is the last coordinate axis.
	a, err := cs.ArrayAxis(0)
	if err != nil {
		t.Fatal(err)
	}
	if a.CType != "STOKES" {
		t.Errorf("array axis 0: have %s, want STOKES", a.CType)
	}
	a, err = cs.ArrayAxis(1)
	if err != nil {
		t.Fatal(err)
	}
	if a.CType != "WAVE" || a.CUnit != "m" || a.CRVal != 6.173345e-7 {
		t.Errorf("array axis 1: have %+v", a)
	}
	if _, err := cs.ArrayAxis(4); err == nil {
		t.Error("array axis 4 should be out of range")
	}

	// Extending does not modify the base.
	cs.Axes[0].CRVal = 100
	if base.Axes[0].CRVal != 0 {
		t.Error("base was modified")
	}
}

func TestExtendInvalid(t *testing.T) {
	base, err := SpatialCoordinates(spatialHeader())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Extend(&CoordinateSystem{Axes: base.Axes[:1]}, StokesAxis()); err == nil {
		t.Error("a one-axis base should be an error")
	}
	if _, err := Extend(nil, StokesAxis()); err == nil {
		t.Error("a nil base should be an error")
	}
	bad := []Axis{
		{CType: "WAVE", CUnit: "arcsec", CDelt: 1},
		{CType: "STOKES", CUnit: "m", CDelt: 1},
		{CType: "WAVE", CUnit: "furlong", CDelt: 1},
	}
	for _, a := range bad {
		if _, err := Extend(base, a); err == nil {
			t.Errorf("axis %+v should be rejected", a)
		}
	}
	if _, err := Extend(base, Axis{CType: "WAVE", CUnit: "Angstrom", CRVal: 6302.5, CDelt: 0.0215}); err != nil {
		t.Errorf("angstrom wavelength axis: %v", err)
	}
}

func TestAxisWorld(t *testing.T) {
	a := HMIWavelengthAxis()
	for i, want := range []float64{
		HMILineCenter - 2.5*HMILineSpacing,
		HMILineCenter - 1.5*HMILineSpacing,
		HMILineCenter - 0.5*HMILineSpacing,
		HMILineCenter + 0.5*HMILineSpacing,
		HMILineCenter + 1.5*HMILineSpacing,
		HMILineCenter + 2.5*HMILineSpacing,
	} {
		w, err := a.World(float64(i + 1))
		if err != nil {
			t.Fatal(err)
		}
		if err := w.Check(unit.Meter); err != nil {
			t.Error(err)
		}
		if !floats.EqualWithinAbs(w.Value(), want, 1e-18) {
			t.Errorf("pixel %d: have %g m, want %g m", i+1, w.Value(), want)
		}
	}
	w, err := Axis{CRPix: 1, CRVal: 3600, CDelt: 1, CUnit: "arcsec"}.World(1)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(w.Value(), math.Pi/180, 1e-15) {
		t.Errorf("have %g rad, want %g", w.Value(), math.Pi/180)
	}
}

func TestCoordinateSystemHeader(t *testing.T) {
	base, err := SpatialCoordinates(spatialHeader())
	if err != nil {
		t.Fatal(err)
	}
	cs, err := Extend(base, ParameterAxis())
	if err != nil {
		t.Fatal(err)
	}
	h := cs.Header()
	if n, _ := h.Float("WCSAXES"); n != 3 {
		t.Errorf("WCSAXES: have %g, want 3", n)
	}
	if s, _ := h.String("CTYPE3"); s != "Parameter" {
		t.Errorf("CTYPE3: have %q", s)
	}
	if s, _ := h.String("DATE-OBS"); s != "2014-09-10T11:58:50.00" {
		t.Errorf("DATE-OBS: have %q", s)
	}
	if h.Has("HGLN_OBS") {
		t.Error("zero HGLN_OBS should be omitted")
	}

	// The header describes the same spatial axes it was read from.
	back, err := SpatialCoordinates(h)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back.Axes, base.Axes) || back.Rotation != base.Rotation {
		t.Errorf("have %+v, want %+v", back, base)
	}
}
