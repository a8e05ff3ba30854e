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
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/stokes"
)

// Names of the variables in an output file.
const (
	Level1Var = "level1"
	Level2Var = "level2"
)

var (
	level1Dims = []string{"stokes", "wavelength", "y1", "x1"}
	level2Dims = []string{"parameter", "y2", "x2"}
)

// WriteResult writes the cubes in r and their coordinate systems to
// netCDF file w. Each cube variable carries its coordinate system as the
// attributes CRPIX, CRVAL and CDELT (one value per coordinate axis), CTYPE
// and CUNIT (comma separated), and CROTA2.
func WriteResult(w *os.File, r *stokes.Result) error {
	for _, c := range []struct {
		name string
		data *sparse.DenseArray
		cs   *stokes.CoordinateSystem
	}{
		{Level1Var, r.Level1, r.Level1Coords},
		{Level2Var, r.Level2, r.Level2Coords},
	} {
		if c.data == nil || c.cs == nil {
			return fmt.Errorf("stokesutil: result is missing %s", c.name)
		}
		if err := c.cs.Check(c.data.Shape); err != nil {
			return fmt.Errorf("stokesutil: %s: %v", c.name, err)
		}
	}
	if len(r.Level1.Shape) != len(level1Dims) || len(r.Level2.Shape) != len(level2Dims) {
		return fmt.Errorf("stokesutil: unexpected cube shapes %v and %v", r.Level1.Shape, r.Level2.Shape)
	}

	h := cdf.NewHeader(
		append(append([]string{}, level1Dims...), level2Dims...),
		append(append([]int{}, r.Level1.Shape...), r.Level2.Shape...))
	h.AddAttribute("", "comment", "stokes polarimetric data cubes")
	h.AddAttribute("", "stokes_version", stokes.Version)
	h.AddAttribute("", "stokes_labels", strings.Join(stokes.StokesLabels, ","))
	h.AddAttribute("", "parameters", strings.Join(r.Parameters, ","))

	h.AddVariable(Level1Var, level1Dims, []float64{0})
	addCoordinates(h, Level1Var, r.Level1Coords)
	h.AddVariable(Level2Var, level2Dims, []float64{0})
	addCoordinates(h, Level2Var, r.Level2Coords)
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("stokesutil: creating output file: %v", err)
	}
	if err := writeVar(f, Level1Var, r.Level1); err != nil {
		return err
	}
	if err := writeVar(f, Level2Var, r.Level2); err != nil {
		return err
	}
	return cdf.UpdateNumRecs(w)
}

func addCoordinates(h *cdf.Header, v string, cs *stokes.CoordinateSystem) {
	n := len(cs.Axes)
	crpix, crval, cdelt := make([]float64, n), make([]float64, n), make([]float64, n)
	ctype, cunit := make([]string, n), make([]string, n)
	for i, a := range cs.Axes {
		crpix[i], crval[i], cdelt[i] = a.CRPix, a.CRVal, a.CDelt
		ctype[i], cunit[i] = a.CType, a.CUnit
	}
	h.AddAttribute(v, "CRPIX", crpix)
	h.AddAttribute(v, "CRVAL", crval)
	h.AddAttribute(v, "CDELT", cdelt)
	h.AddAttribute(v, "CTYPE", strings.Join(ctype, ","))
	h.AddAttribute(v, "CUNIT", strings.Join(cunit, ","))
	h.AddAttribute(v, "CROTA2", []float64{cs.Rotation})
	if cs.Frame.DateObs != "" {
		h.AddAttribute(v, "DATE_OBS", cs.Frame.DateObs)
	}
}

func writeVar(f *cdf.File, v string, data *sparse.DenseArray) error {
	end := f.Header.Lengths(v)
	start := make([]int, len(end))
	if _, err := f.Writer(v, start, end).Write(data.Elements); err != nil {
		return fmt.Errorf("stokesutil: writing %s: %v", v, err)
	}
	return nil
}

// ReadCube reads cube variable v and its coordinate system from a file
// created by WriteResult.
func ReadCube(rw cdf.ReaderWriterAt, v string) (*sparse.DenseArray, *stokes.CoordinateSystem, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, nil, fmt.Errorf("stokesutil: opening cube file: %v", err)
	}
	dims := f.Header.Lengths(v)
	if len(dims) == 0 {
		return nil, nil, fmt.Errorf("stokesutil: variable %s not in file", v)
	}
	data := sparse.ZerosDense(dims...)
	if _, err := f.Reader(v, nil, nil).Read(data.Elements); err != nil {
		return nil, nil, fmt.Errorf("stokesutil: reading %s: %v", v, err)
	}

	crpix, ok1 := f.Header.GetAttribute(v, "CRPIX").([]float64)
	crval, ok2 := f.Header.GetAttribute(v, "CRVAL").([]float64)
	cdelt, ok3 := f.Header.GetAttribute(v, "CDELT").([]float64)
	ctype, ok4 := f.Header.GetAttribute(v, "CTYPE").(string)
	cunit, ok5 := f.Header.GetAttribute(v, "CUNIT").(string)
	if !(ok1 && ok2 && ok3 && ok4 && ok5) {
		return nil, nil, fmt.Errorf("stokesutil: %s has no coordinate system", v)
	}
	types, units := strings.Split(ctype, ","), strings.Split(cunit, ",")
	n := len(crpix)
	if len(crval) != n || len(cdelt) != n || len(types) != n || len(units) != n {
		return nil, nil, fmt.Errorf("stokesutil: %s has inconsistent coordinate attributes", v)
	}
	cs := &stokes.CoordinateSystem{Axes: make([]stokes.Axis, n)}
	for i := range cs.Axes {
		cs.Axes[i] = stokes.Axis{CRPix: crpix[i], CRVal: crval[i], CDelt: cdelt[i], CType: types[i], CUnit: units[i]}
	}
	if rot, ok := f.Header.GetAttribute(v, "CROTA2").([]float64); ok && len(rot) == 1 {
		cs.Rotation = rot[0]
	}
	if d, ok := f.Header.GetAttribute(v, "DATE_OBS").(string); ok {
		cs.Frame.DateObs = d
	}
	if err := cs.Check(data.Shape); err != nil {
		return nil, nil, err
	}
	return data, cs, nil
}

// ReadParameters returns the parameter names labeling the Level 2 cube of
// a file created by WriteResult.
func ReadParameters(rw cdf.ReaderWriterAt) (stokes.ParameterSpec, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("stokesutil: opening cube file: %v", err)
	}
	p, ok := f.Header.GetAttribute("", "parameters").(string)
	if !ok {
		return nil, fmt.Errorf("stokesutil: file has no parameter list")
	}
	return stokes.ParameterSpec(strings.Split(p, ",")), nil
}
