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

	"github.com/ctessum/sparse"
)

// ParameterSpec is an ordered list of parameter names. It selects which
// data sources go into a cube and fixes the order of the cube's leading
// axis.
type ParameterSpec []string

// Source is a unit of data identified by the physical parameter it holds,
// for example a file or a named extension within a file.
type Source interface {
	Parameter() string
}

// Extension is a named data extension of a file.
type Extension struct {
	Path string
	Name string
}

// Parameter returns the extension name.
func (e Extension) Parameter() string { return e.Name }

// ReadFunc reads the data array held by a source.
type ReadFunc func(Source) (*sparse.DenseArray, error)

// AssembleParameters builds a cube whose leading axis follows spec. For
// each parameter in spec, every source with that parameter is read, in
// source order, and appended. A parameter without any source results in a
// *MissingParameterError.
func AssembleParameters(sources []Source, spec ParameterSpec, read ReadFunc) (*sparse.DenseArray, error) {
	if len(spec) == 0 {
		return nil, fmt.Errorf("stokes: no parameters specified")
	}
	var slices []*sparse.DenseArray
	for _, p := range spec {
		found := false
		for _, s := range sources {
			if s.Parameter() != p {
				continue
			}
			found = true
			a, err := read(s)
			if err != nil {
				return nil, fmt.Errorf("stokes: reading parameter %s: %w", p, err)
			}
			slices = append(slices, a)
		}
		if !found {
			return nil, &MissingParameterError{Parameter: p, Available: parameterNames(sources)}
		}
	}
	return Stack(slices)
}

func parameterNames(sources []Source) []string {
	o := make([]string, len(sources))
	for i, s := range sources {
		o[i] = s.Parameter()
	}
	return o
}

// AssembleStokes arranges NumStokes×NumWavelengths two-dimensional images,
// ordered Stokes state first and wavelength second (I0…I5, Q0…Q5, …), into
// a cube with shape (stokes, wavelength, y, x).
func AssembleStokes(images []*sparse.DenseArray) (*sparse.DenseArray, error) {
	const n = NumStokes * NumWavelengths
	if len(images) != n {
		return nil, &ShapeMismatchError{Op: "assemble Stokes cube", Want: []int{n}, Got: []int{len(images)}}
	}
	for i, im := range images {
		if len(im.Shape) != 2 {
			return nil, &ShapeMismatchError{Op: fmt.Sprintf("assemble Stokes cube image %d", i), Want: []int{0, 0}, Got: im.Shape}
		}
	}
	stack, err := Stack(images)
	if err != nil {
		return nil, err
	}
	ny, nx := images[0].Shape[0], images[0].Shape[1]
	return Reshape(stack, NumStokes, NumWavelengths, ny, nx)
}
