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
	"context"

	"github.com/ctessum/sparse"
)

// Image is a decoded data array together with its metadata.
type Image struct {
	Path string

	// Data holds the pixel values, slowest axis first. It is nil when
	// the decoded unit has no data.
	Data *sparse.DenseArray

	Header Header
}

// A Decoder reads images from data files.
type Decoder interface {
	// Decode reads the primary image of the file at path.
	Decode(path string) (*Image, error)

	// Extensions returns the names of the named data extensions in the
	// file at path, in file order.
	Extensions(path string) ([]string, error)

	// DecodeExtension reads the named extension of the file at path.
	DecodeExtension(path, name string) (*Image, error)
}

// Query describes a remote search for one data series.
type Query struct {
	// Series is the fully qualified series name, e.g. "hmi.S_720s".
	Series string

	// Window bounds the observation times to retrieve.
	Window TimeWindow

	// Notify is the contact address registered with the remote service.
	Notify string

	// Dir is the local directory files are written to.
	Dir string
}

// A Fetcher searches a remote archive and downloads the matching files.
type Fetcher interface {
	// Fetch downloads the files matching q and returns their local paths.
	Fetch(ctx context.Context, q Query) ([]string, error)
}

// A Rotator rotates an image, for example to remove the roll angle of
// the spacecraft, using spline interpolation of the given order. The
// returned image carries a header consistent with its new orientation.
type Rotator interface {
	Rotate(im *Image, order int) (*Image, error)
}

// RotationOrder is the interpolation order used when derotating images.
const RotationOrder = 3
