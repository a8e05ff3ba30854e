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
	"fmt"
	"os"
	"time"

	"github.com/ctessum/sparse"
)

// HMI assembles the HMI Stokes and inversion observations closest to
// target. Level 1 is the 720 s Stokes cube with shape (4, 6, y, x); Level 2
// holds the inversion parameters in opts.Parameters order, which defaults
// to HMIParameters.
//
// Both series are located before anything is decoded, so a missing series
// results in a *NoMatchError without partial output.
func (c *Config) HMI(ctx context.Context, target time.Time, opts Options) (*Result, error) {
	if err := c.checkOptions(opts); err != nil {
		return nil, err
	}
	if err := c.checkSeries(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.Dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("stokes: creating data directory: %w", err)
	}
	params := opts.Parameters
	if len(params) == 0 {
		params = HMIParameters
	}

	stokesMatch, err := c.locate(ctx, ProductHMIStokes, c.stokesSeries(), target, opts.Download)
	if err != nil {
		return nil, err
	}
	invMatch, err := c.locate(ctx, ProductHMIInversion, c.inversionSeries(), target, opts.Download)
	if err != nil {
		return nil, err
	}

	r := &Result{
		Level1Files: stokesMatch.Paths(),
		Parameters:  params,
	}

	// Level 1.
	images := make([]*sparse.DenseArray, len(stokesMatch.Records))
	var last *Image
	for i, rec := range stokesMatch.Records {
		if last, err = c.decode(rec.Path, opts.Derotate); err != nil {
			return nil, err
		}
		images[i] = last.Data
	}
	if r.Level1, err = AssembleStokes(images); err != nil {
		return nil, err
	}
	if r.Level1Coords, err = c.extendFrom(last, HMIWavelengthAxis(), StokesAxis()); err != nil {
		return nil, err
	}
	c.assembled(ProductHMIStokes, r.Level1)

	// Level 2.
	sources := make([]Source, len(invMatch.Records))
	for i, rec := range invMatch.Records {
		sources[i] = rec
	}
	last = nil
	r.Level2, err = AssembleParameters(sources, params, func(s Source) (*sparse.DenseArray, error) {
		rec := s.(FileRecord)
		im, err := c.decode(rec.Path, opts.Derotate)
		if err != nil {
			return nil, err
		}
		last = im
		r.Level2Files = append(r.Level2Files, rec.Path)
		return im.Data, nil
	})
	if err != nil {
		return nil, err
	}
	if r.Level2Coords, err = c.extendFrom(last, ParameterAxis()); err != nil {
		return nil, err
	}
	c.assembled(ProductHMIInversion, r.Level2)
	return r, nil
}

// extendFrom builds the coordinates of a cube from the spatial
// coordinates of im, one of the images it was assembled from.
func (c *Config) extendFrom(im *Image, extra ...Axis) (*CoordinateSystem, error) {
	base, err := SpatialCoordinates(im.Header)
	if err != nil {
		return nil, fmt.Errorf("stokes: coordinates of %s: %w", im.Path, err)
	}
	return Extend(base, extra...)
}
