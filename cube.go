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

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Stack joins arrays of identical shape along a new leading axis, in the
// given order.
func Stack(arrays []*sparse.DenseArray) (*sparse.DenseArray, error) {
	if len(arrays) == 0 {
		return nil, &ShapeMismatchError{Op: "stack", Want: []int{1}, Got: []int{0}}
	}
	shape := arrays[0].Shape
	n := numElements(shape)
	o := sparse.ZerosDense(append([]int{len(arrays)}, shape...)...)
	for i, a := range arrays {
		if !sameShape(a.Shape, shape) || len(a.Elements) != n {
			return nil, &ShapeMismatchError{Op: fmt.Sprintf("stack array %d", i), Want: shape, Got: a.Shape}
		}
		copy(o.Elements[i*n:(i+1)*n], a.Elements)
	}
	return o, nil
}

// Reshape returns an array sharing the elements of a with a new shape.
// The element count of dims must equal that of a; nothing is truncated
// or padded.
func Reshape(a *sparse.DenseArray, dims ...int) (*sparse.DenseArray, error) {
	if numElements(dims) != len(a.Elements) {
		return nil, &ShapeMismatchError{Op: "reshape", Want: dims, Got: a.Shape}
	}
	o := sparse.ZerosDense(dims...)
	o.Elements = a.Elements
	return o, nil
}

// Transpose returns a copy of a with its axes permuted: axis i of the
// result is axis perm[i] of a.
func Transpose(a *sparse.DenseArray, perm ...int) (*sparse.DenseArray, error) {
	nd := len(a.Shape)
	if len(perm) != nd {
		return nil, fmt.Errorf("stokes: transpose: %d axes in permutation for a %d-d array", len(perm), nd)
	}
	used := make([]bool, nd)
	shape := make([]int, nd)
	for i, p := range perm {
		if p < 0 || p >= nd || used[p] {
			return nil, fmt.Errorf("stokes: transpose: invalid permutation %v", perm)
		}
		used[p] = true
		shape[i] = a.Shape[p]
	}

	// Strides of a, in elements.
	stride := make([]int, nd)
	s := 1
	for i := nd - 1; i >= 0; i-- {
		stride[i] = s
		s *= a.Shape[i]
	}

	o := sparse.ZerosDense(shape...)
	index := make([]int, nd)
	for i := range o.Elements {
		src := 0
		for j, ix := range index {
			src += ix * stride[perm[j]]
		}
		o.Elements[i] = a.Elements[src]

		// Advance the output index, last axis fastest.
		for j := nd - 1; j >= 0; j-- {
			index[j]++
			if index[j] < shape[j] {
				break
			}
			index[j] = 0
		}
	}
	return o, nil
}

// Slice returns a copy of the sub-array at index i of the leading axis of a.
func Slice(a *sparse.DenseArray, i int) (*sparse.DenseArray, error) {
	if len(a.Shape) < 2 || i < 0 || i >= a.Shape[0] {
		return nil, fmt.Errorf("stokes: slice index %d out of range for shape %v", i, a.Shape)
	}
	shape := append([]int(nil), a.Shape[1:]...)
	n := numElements(shape)
	o := sparse.ZerosDense(shape...)
	copy(o.Elements, a.Elements[i*n:(i+1)*n])
	return o, nil
}
