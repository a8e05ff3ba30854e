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

// Package fitsfile decodes FITS image files for the stokes package.
package fitsfile

import (
	"fmt"
	"math"
	"os"

	"github.com/astrogo/fitsio"
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/stokes"
)

// Decoder reads images from FITS files. It implements stokes.Decoder.
type Decoder struct{}

// Decode reads the primary HDU of the file at path. If the primary HDU
// holds no array, the data come from the first image extension that does,
// and that extension's keywords override the primary header. The returned
// image has nil Data if no HDU holds an array.
func (Decoder) Decode(path string) (*stokes.Image, error) {
	f, closer, err := open(path)
	if err != nil {
		return nil, err
	}
	defer closer()
	primary, ok := f.HDU(0).(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("fitsfile: primary HDU of %s is not an image", path)
	}
	data, err := imageData(primary)
	if err != nil {
		return nil, fmt.Errorf("fitsfile: reading %s: %v", path, err)
	}
	hdr := convertHeader(primary.Header())
	if data == nil {
		for i, hdu := range f.HDUs() {
			ext, ok := hdu.(fitsio.Image)
			if i == 0 || !ok || hdu.Type() != fitsio.IMAGE_HDU {
				continue
			}
			if data, err = imageData(ext); err != nil {
				return nil, fmt.Errorf("fitsfile: reading %s[%d]: %v", path, i, err)
			}
			if data == nil {
				continue
			}
			for k, v := range convertHeader(ext.Header()) {
				hdr[k] = v
			}
			break
		}
	}
	return &stokes.Image{Path: path, Data: data, Header: hdr}, nil
}

// DecodeExtension reads the image extension with the given EXTNAME.
func (Decoder) DecodeExtension(path, name string) (*stokes.Image, error) {
	return readHDU(path, func(f *fitsio.File) (fitsio.HDU, error) {
		if !f.Has(name) {
			return nil, fmt.Errorf("fitsfile: %s has no extension %q", path, name)
		}
		return f.Get(name), nil
	})
}

// Extensions returns the EXTNAMEs of the image extensions of the file at
// path, in file order.
func (Decoder) Extensions(path string) ([]string, error) {
	f, closer, err := open(path)
	if err != nil {
		return nil, err
	}
	defer closer()
	var names []string
	for i, hdu := range f.HDUs() {
		if i == 0 || hdu.Type() != fitsio.IMAGE_HDU || hdu.Name() == "" {
			continue
		}
		names = append(names, hdu.Name())
	}
	return names, nil
}

func open(path string) (*fitsio.File, func(), error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("fitsfile: %v", err)
	}
	f, err := fitsio.Open(r)
	if err != nil {
		r.Close()
		return nil, nil, fmt.Errorf("fitsfile: opening %s: %v", path, err)
	}
	return f, func() {
		f.Close()
		r.Close()
	}, nil
}

func readHDU(path string, get func(*fitsio.File) (fitsio.HDU, error)) (*stokes.Image, error) {
	f, closer, err := open(path)
	if err != nil {
		return nil, err
	}
	defer closer()
	hdu, err := get(f)
	if err != nil {
		return nil, err
	}
	img, ok := hdu.(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("fitsfile: HDU %q of %s is not an image", hdu.Name(), path)
	}
	data, err := imageData(img)
	if err != nil {
		return nil, fmt.Errorf("fitsfile: reading %s: %v", path, err)
	}
	return &stokes.Image{
		Path:   path,
		Data:   data,
		Header: convertHeader(img.Header()),
	}, nil
}

// imageData returns the physical values of img, with BSCALE and BZERO
// applied and BLANK pixels set to NaN. FITS lists axes fastest first, so
// the shape is the reverse of the NAXISn values.
func imageData(img fitsio.Image) (*sparse.DenseArray, error) {
	hdr := img.Header()
	axes := hdr.Axes()
	if len(axes) == 0 {
		return nil, nil
	}
	shape := make([]int, len(axes))
	n := 1
	for i, a := range axes {
		shape[len(axes)-1-i] = a
		n *= a
	}
	if n == 0 {
		return nil, nil
	}
	out := sparse.ZerosDense(shape...)
	raw := out.Elements

	blank, hasBlank := intCard(hdr, "BLANK")
	var err error
	switch hdr.Bitpix() {
	case 8:
		v := make([]uint8, n)
		if err = img.Read(&v); err == nil {
			for i, x := range v {
				raw[i] = intValue(int64(x), blank, hasBlank)
			}
		}
	case 16:
		v := make([]int16, n)
		if err = img.Read(&v); err == nil {
			for i, x := range v {
				raw[i] = intValue(int64(x), blank, hasBlank)
			}
		}
	case 32:
		v := make([]int32, n)
		if err = img.Read(&v); err == nil {
			for i, x := range v {
				raw[i] = intValue(int64(x), blank, hasBlank)
			}
		}
	case 64:
		v := make([]int64, n)
		if err = img.Read(&v); err == nil {
			for i, x := range v {
				raw[i] = intValue(x, blank, hasBlank)
			}
		}
	case -32:
		v := make([]float32, n)
		if err = img.Read(&v); err == nil {
			for i, x := range v {
				raw[i] = float64(x)
			}
		}
	case -64:
		err = img.Read(&raw)
		out.Elements = raw
	default:
		return nil, fmt.Errorf("unsupported BITPIX %d", hdr.Bitpix())
	}
	if err != nil {
		return nil, err
	}

	scale := floatCard(hdr, "BSCALE", 1)
	zero := floatCard(hdr, "BZERO", 0)
	if scale != 1 || zero != 0 {
		for i, x := range out.Elements {
			out.Elements[i] = x*scale + zero
		}
	}
	return out, nil
}

func intValue(x, blank int64, hasBlank bool) float64 {
	if hasBlank && x == blank {
		return math.NaN()
	}
	return float64(x)
}

func intCard(hdr *fitsio.Header, key string) (int64, bool) {
	c := hdr.Get(key)
	if c == nil {
		return 0, false
	}
	switch v := c.Value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func floatCard(hdr *fitsio.Header, key string, def float64) float64 {
	c := hdr.Get(key)
	if c == nil {
		return def
	}
	switch v := c.Value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// skipKeys are commentary keywords that do not carry values.
var skipKeys = map[string]bool{"": true, "COMMENT": true, "HISTORY": true, "END": true}

func convertHeader(hdr *fitsio.Header) stokes.Header {
	h := make(stokes.Header)
	for _, k := range hdr.Keys() {
		if skipKeys[k] {
			continue
		}
		c := hdr.Get(k)
		if c == nil {
			continue
		}
		switch v := c.Value.(type) {
		case float32:
			h[k] = float64(v)
		case int64:
			h[k] = int(v)
		case int32:
			h[k] = int(v)
		default:
			h[k] = v
		}
	}
	return h
}
