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

package fitsfile

import (
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/spatialmodel/stokes"
)

func writeImage(t *testing.T, path string, nx, ny int, data []float64, cards ...fitsio.Card) {
	t.Helper()
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	f, err := fitsio.Create(w)
	if err != nil {
		t.Fatal(err)
	}
	im := fitsio.NewImage(-64, []int{nx, ny})
	defer im.Close()
	if err := im.Header().Append(cards...); err != nil {
		t.Fatal(err)
	}
	if err := im.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := f.Write(im); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDecode(t *testing.T) {
	dir, err := ioutil.TempDir("", "fitsfile")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "hmi.s_720s.20140910_120000_tai.I0.fits")
	data := []float64{0, 1, 2, 3, 4, 5}
	writeImage(t, path, 3, 2, data,
		fitsio.Card{Name: "CRPIX1", Value: 1.5},
		fitsio.Card{Name: "CUNIT1", Value: "arcsec"},
		fitsio.Card{Name: "CTYPE1", Value: "HPLN-TAN"},
	)

	var d stokes.Decoder = Decoder{}
	im, err := d.Decode(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{2, 3}; !reflect.DeepEqual(im.Data.Shape, want) {
		t.Errorf("shape: have %v, want %v", im.Data.Shape, want)
	}
	if !reflect.DeepEqual(im.Data.Elements, data) {
		t.Errorf("data: have %v, want %v", im.Data.Elements, data)
	}
	if im.Path != path {
		t.Errorf("path: have %s, want %s", im.Path, path)
	}
	if v, err := im.Header.Float("CRPIX1"); err != nil || v != 1.5 {
		t.Errorf("CRPIX1: have %v (%v), want 1.5", v, err)
	}
	if v, err := im.Header.String("CUNIT1"); err != nil || v != "arcsec" {
		t.Errorf("CUNIT1: have %q (%v), want arcsec", v, err)
	}
	if v, err := im.Header.Float("NAXIS1"); err != nil || v != 3 {
		t.Errorf("NAXIS1: have %v (%v), want 3", v, err)
	}

	names, err := d.Extensions(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Errorf("extensions: have %v, want none", names)
	}
	if _, err := d.DecodeExtension(path, "Field_Strength"); err == nil {
		t.Error("expected an error for a missing extension")
	}
}

func TestDecodeMissingFile(t *testing.T) {
	if _, err := (Decoder{}).Decode("does/not/exist.fits"); err == nil {
		t.Error("expected an error")
	}
}

func newImage(t *testing.T, bitpix int, axes []int, data interface{}, cards ...fitsio.Card) fitsio.Image {
	t.Helper()
	im := fitsio.NewImage(bitpix, axes)
	if err := im.Header().Append(cards...); err != nil {
		t.Fatal(err)
	}
	if data != nil {
		if err := im.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	return im
}

// writeHDUs writes the images to path, the first one as the primary HDU.
func writeHDUs(t *testing.T, path string, hdus ...fitsio.Image) {
	t.Helper()
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	f, err := fitsio.Create(w)
	if err != nil {
		t.Fatal(err)
	}
	for _, im := range hdus {
		if err := f.Write(im); err != nil {
			t.Fatal(err)
		}
		im.Close()
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func sameValues(have, want []float64) bool {
	if len(have) != len(want) {
		return false
	}
	for i := range have {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(have[i]) {
				return false
			}
			continue
		}
		if have[i] != want[i] {
			return false
		}
	}
	return true
}

func TestDecodeScaledIntegers(t *testing.T) {
	dir, err := ioutil.TempDir("", "fitsfile")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	want := []float64{10.5, 11, math.NaN(), 12}
	for _, test := range []struct {
		bitpix int
		data   interface{}
	}{
		{bitpix: 8, data: []uint8{1, 2, 255, 4}},
		{bitpix: 16, data: []int16{1, 2, 255, 4}},
		{bitpix: 32, data: []int32{1, 2, 255, 4}},
		{bitpix: 64, data: []int64{1, 2, 255, 4}},
	} {
		path := filepath.Join(dir, fmt.Sprintf("scaled%d.fits", test.bitpix))
		writeHDUs(t, path, newImage(t, test.bitpix, []int{2, 2}, test.data,
			fitsio.Card{Name: "BSCALE", Value: 0.5},
			fitsio.Card{Name: "BZERO", Value: 10.0},
			fitsio.Card{Name: "BLANK", Value: 255},
		))
		im, err := (Decoder{}).Decode(path)
		if err != nil {
			t.Errorf("BITPIX %d: %v", test.bitpix, err)
			continue
		}
		if !sameValues(im.Data.Elements, want) {
			t.Errorf("BITPIX %d: have %v, want %v", test.bitpix, im.Data.Elements, want)
		}
	}
}

func TestDecodeImageExtension(t *testing.T) {
	dir, err := ioutil.TempDir("", "fitsfile")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "hmi.s_720s.20140910_120000_tai.Q0.fits")
	data := []float64{1, 2, 3, 4}
	writeHDUs(t, path,
		newImage(t, 8, nil, nil,
			fitsio.Card{Name: "TELESCOP", Value: "SDO/HMI"},
			fitsio.Card{Name: "BUNIT", Value: "counts"},
		),
		newImage(t, -64, []int{2, 2}, data,
			fitsio.Card{Name: "EXTNAME", Value: "Stokes_Q"},
			fitsio.Card{Name: "CRPIX1", Value: 1.5},
			fitsio.Card{Name: "BUNIT", Value: "DN/s"},
		),
	)

	im, err := (Decoder{}).Decode(path)
	if err != nil {
		t.Fatal(err)
	}
	if im.Data == nil {
		t.Fatal("no data read from the image extension")
	}
	if want := []int{2, 2}; !reflect.DeepEqual(im.Data.Shape, want) {
		t.Errorf("shape: have %v, want %v", im.Data.Shape, want)
	}
	if !reflect.DeepEqual(im.Data.Elements, data) {
		t.Errorf("data: have %v, want %v", im.Data.Elements, data)
	}
	if v, err := im.Header.String("TELESCOP"); err != nil || v != "SDO/HMI" {
		t.Errorf("TELESCOP: have %q (%v), want SDO/HMI", v, err)
	}
	if v, err := im.Header.Float("CRPIX1"); err != nil || v != 1.5 {
		t.Errorf("CRPIX1: have %v (%v), want 1.5", v, err)
	}
	if v, err := im.Header.String("BUNIT"); err != nil || v != "DN/s" {
		t.Errorf("BUNIT: have %q (%v), want DN/s", v, err)
	}
}

func TestDecodeExtensions(t *testing.T) {
	dir, err := ioutil.TempDir("", "fitsfile")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "SP3D20140910_120000.fits")
	strength := []float64{100, 200, 300, 400, 500, 600}
	inclination := []float64{10, 20, 30, 40, 50, 60}
	writeHDUs(t, path,
		newImage(t, 8, nil, nil, fitsio.Card{Name: "TELESCOP", Value: "HINODE"}),
		newImage(t, -64, []int{3, 2}, strength,
			fitsio.Card{Name: "EXTNAME", Value: "Field_Strength"},
			fitsio.Card{Name: "BUNIT", Value: "Gauss"},
		),
		newImage(t, -64, []int{3, 2}, inclination,
			fitsio.Card{Name: "EXTNAME", Value: "Field_Inclination"},
			fitsio.Card{Name: "BUNIT", Value: "deg"},
		),
	)

	d := Decoder{}
	names, err := d.Extensions(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Field_Strength", "Field_Inclination"}; !reflect.DeepEqual(names, want) {
		t.Errorf("extensions: have %v, want %v", names, want)
	}

	im, err := d.DecodeExtension(path, "Field_Inclination")
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{2, 3}; !reflect.DeepEqual(im.Data.Shape, want) {
		t.Errorf("shape: have %v, want %v", im.Data.Shape, want)
	}
	if !reflect.DeepEqual(im.Data.Elements, inclination) {
		t.Errorf("data: have %v, want %v", im.Data.Elements, inclination)
	}
	if v, err := im.Header.String("BUNIT"); err != nil || v != "deg" {
		t.Errorf("BUNIT: have %q (%v), want deg", v, err)
	}

	// The primary is empty, so Decode returns the first extension.
	im, err = d.Decode(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(im.Data.Elements, strength) {
		t.Errorf("primary fallback: have %v, want %v", im.Data.Elements, strength)
	}

	if _, err := d.DecodeExtension(path, "Field_Azimuth"); err == nil {
		t.Error("expected an error for a missing extension")
	}
}
