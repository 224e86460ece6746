// Package meta holds the machinery shared by the metadata-aware front ends:
// dimension reordering into the (lat, lon, fields) layout the diagnostics
// engine expects, grid type detection from latitude values, and the
// vocabulary of names and units attached to computed quantities.
package meta

import (
	"fmt"

	"github.com/ctessum/sparse"

	"github.com/ajdawson/windspharm"
)

// APIOrder returns the permutation moving the latitude and longitude
// dimensions of a rank-ndim array to the front, and the inverse permutation
// that undoes it. Remaining dimensions keep their relative order.
func APIOrder(ndim, latdim, londim int) (apiorder, reorder []int, err error) {
	if latdim < 0 || latdim >= ndim || londim < 0 || londim >= ndim || latdim == londim {
		return nil, nil, fmt.Errorf("%w: latitude dimension %d and longitude dimension %d in a rank %d array",
			windspharm.ErrDimensionMismatch, latdim, londim, ndim)
	}
	apiorder = make([]int, 0, ndim)
	apiorder = append(apiorder, latdim, londim)
	for d := 0; d < ndim; d++ {
		if d != latdim && d != londim {
			apiorder = append(apiorder, d)
		}
	}
	reorder = make([]int, ndim)
	for i, d := range apiorder {
		reorder[d] = i
	}
	return apiorder, reorder, nil
}

// Transpose returns a copy of the array with dimensions permuted: output
// dimension i is input dimension perm[i].
func Transpose(a *sparse.DenseArray, perm []int) *sparse.DenseArray {
	shape := make([]int, len(perm))
	for i, d := range perm {
		shape[i] = a.Shape[d]
	}
	out := sparse.ZerosDense(shape...)
	inStrides := strides(a.Shape)
	idx := make([]int, len(shape))
	for oi := range out.Elements {
		ii := 0
		for d, v := range idx {
			ii += v * inStrides[perm[d]]
		}
		out.Elements[oi] = a.Elements[ii]
		increment(idx, shape)
	}
	return out
}

// ReverseAxis returns a copy of the array with the given axis reversed.
func ReverseAxis(a *sparse.DenseArray, axis int) *sparse.DenseArray {
	out := sparse.ZerosDense(a.Shape...)
	st := strides(a.Shape)
	n := a.Shape[axis]
	idx := make([]int, len(a.Shape))
	for oi := range out.Elements {
		ii := 0
		for d, v := range idx {
			if d == axis {
				v = n - 1 - v
			}
			ii += v * st[d]
		}
		out.Elements[oi] = a.Elements[ii]
		increment(idx, a.Shape)
	}
	return out
}

// Reshape returns a copy of the array with a new shape covering the same
// number of elements in row-major order.
func Reshape(a *sparse.DenseArray, shape []int) (*sparse.DenseArray, error) {
	n := 1
	for _, s := range shape {
		n *= s
	}
	if n != len(a.Elements) {
		return nil, fmt.Errorf("%w: cannot reshape %v into %v", windspharm.ErrShapeMismatch, a.Shape, shape)
	}
	out := sparse.ZerosDense(shape...)
	copy(out.Elements, a.Elements)
	return out, nil
}

// To3D collapses all dimensions after the first two into one, so a
// (lat, lon, d3, d4, ...) array becomes (lat, lon, d3*d4*...). Rank-2 arrays
// pass through unchanged.
func To3D(a *sparse.DenseArray) (*sparse.DenseArray, error) {
	switch {
	case len(a.Shape) < 2:
		return nil, fmt.Errorf("%w: need at least 2 dimensions (got %d)", windspharm.ErrRank, len(a.Shape))
	case len(a.Shape) == 2:
		return a, nil
	}
	rest := 1
	for _, s := range a.Shape[2:] {
		rest *= s
	}
	return Reshape(a, []int{a.Shape[0], a.Shape[1], rest})
}

func strides(shape []int) []int {
	st := make([]int, len(shape))
	acc := 1
	for d := len(shape) - 1; d >= 0; d-- {
		st[d] = acc
		acc *= shape[d]
	}
	return st
}

func increment(idx, shape []int) {
	for d := len(idx) - 1; d >= 0; d-- {
		idx[d]++
		if idx[d] < shape[d] {
			return
		}
		idx[d] = 0
	}
}
