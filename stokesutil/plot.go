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

package stokesutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/stokes"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Profile returns the spectral profile of Stokes parameter s at pixel
// (x, y) of a Level 1 cube with shape (stokes, wavelength, y, x), along
// with the wavelength of each sample in meters. Array index i is FITS
// pixel i+1.
func Profile(cube *sparse.DenseArray, cs *stokes.CoordinateSystem, s string, x, y int) (wavelength, vals []float64, err error) {
	if len(cube.Shape) != 4 {
		return nil, nil, fmt.Errorf("stokesutil: profile needs a 4-d cube, not shape %v", cube.Shape)
	}
	si := -1
	for i, l := range stokes.StokesLabels {
		if strings.EqualFold(l, s) {
			si = i
		}
	}
	if si < 0 || si >= cube.Shape[0] {
		return nil, nil, fmt.Errorf("stokesutil: invalid Stokes parameter %q", s)
	}
	if y < 0 || y >= cube.Shape[2] || x < 0 || x >= cube.Shape[3] {
		return nil, nil, fmt.Errorf("stokesutil: pixel (%d, %d) is outside the %dx%d image", x, y, cube.Shape[3], cube.Shape[2])
	}
	waveAxis, err := cs.ArrayAxis(1)
	if err != nil {
		return nil, nil, err
	}
	nw := cube.Shape[1]
	wavelength = make([]float64, nw)
	vals = make([]float64, nw)
	for i := 0; i < nw; i++ {
		wl, err := waveAxis.World(float64(i + 1))
		if err != nil {
			return nil, nil, err
		}
		wavelength[i] = wl.Value()
		vals[i] = cube.Get(si, i, y, x)
	}
	return wavelength, vals, nil
}

// PlotProfile plots a spectral profile returned by Profile, with the
// wavelength in Ångströms.
func PlotProfile(s string, x, y int, wavelength, vals []float64) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = fmt.Sprintf("Stokes %s profile at (%d, %d)", strings.ToUpper(s), x, y)
	p.X.Label.Text = "Wavelength (Å)"
	p.Y.Label.Text = strings.ToUpper(s)
	xy := make(plotter.XYs, len(wavelength))
	for i, wl := range wavelength {
		xy[i].X = wl * 1e10
		xy[i].Y = vals[i]
	}
	if err := plotutil.AddLinePoints(p, xy); err != nil {
		return nil, err
	}
	return p, nil
}

// WritePlot writes p to w as a PNG image.
func WritePlot(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(4*vg.Inch, 3*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
