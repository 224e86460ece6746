// Package tools prepares arbitrary gridded data for the diagnostics engine
// and maps results back. The engine wants arrays shaped (lat, lon) or
// (lat, lon, fields) with latitude north to south; data in the wild rarely
// arrives that way.
package tools

import (
	"fmt"
	"strings"

	"github.com/ctessum/sparse"

	"github.com/ajdawson/windspharm"
	"github.com/ajdawson/windspharm/internal/meta"
)

// RecoveryInfo records how PrepData rearranged an array, so RecoverData can
// apply the exact inverse to arrays of the same layout.
type RecoveryInfo struct {
	intermediateShape []int
	reorder           []int
}

// PrepData rearranges an array into the (lat, lon, fields) layout of the
// diagnostics engine. The dimorder string names each dimension of data with
// one character, where 'y' marks latitude and 'x' marks longitude; any other
// characters mark dimensions that are collapsed into the trailing fields
// dimension. The returned RecoveryInfo undoes the rearrangement.
func PrepData(data *sparse.DenseArray, dimorder string) (*sparse.DenseArray, *RecoveryInfo, error) {
	if data == nil || len(dimorder) != len(data.Shape) {
		return nil, nil, fmt.Errorf("%w: dimension order %q does not describe a rank %d array",
			windspharm.ErrDimensionMismatch, dimorder, rank(data))
	}
	latdim := strings.IndexByte(dimorder, 'y')
	londim := strings.IndexByte(dimorder, 'x')
	if latdim < 0 || londim < 0 {
		return nil, nil, fmt.Errorf("%w: dimension order %q must contain both 'x' and 'y'",
			windspharm.ErrDimensionMismatch, dimorder)
	}
	apiorder, reorder, err := meta.APIOrder(len(data.Shape), latdim, londim)
	if err != nil {
		return nil, nil, err
	}
	pdata := meta.Transpose(data, apiorder)
	info := &RecoveryInfo{
		intermediateShape: append([]int(nil), pdata.Shape...),
		reorder:           reorder,
	}
	if pdata, err = meta.To3D(pdata); err != nil {
		return nil, nil, err
	}
	return pdata, info, nil
}

// RecoverData restores an array prepared by PrepData, or any diagnostic
// output with the same layout, to the original dimension order.
func RecoverData(pdata *sparse.DenseArray, info *RecoveryInfo) (*sparse.DenseArray, error) {
	if pdata == nil || info == nil {
		return nil, fmt.Errorf("%w: prepared data and recovery info are required",
			windspharm.ErrDimensionMismatch)
	}
	data, err := meta.Reshape(pdata, info.intermediateShape)
	if err != nil {
		return nil, err
	}
	return meta.Transpose(data, info.reorder), nil
}

// ReverseLatDim reverses the latitude dimension, assumed to be the leading
// dimension, of a field and its latitude values. Both are returned as
// copies.
func ReverseLatDim(lat []float64, field *sparse.DenseArray) ([]float64, *sparse.DenseArray) {
	rlat := make([]float64, len(lat))
	for i, v := range lat {
		rlat[len(lat)-1-i] = v
	}
	return rlat, meta.ReverseAxis(field, 0)
}

// OrderLatDim ensures latitude, assumed to be the leading dimension of both
// wind components, runs north to south, reversing all three when it does
// not. The inputs are returned unchanged when already ordered.
func OrderLatDim(lat []float64, u, v *sparse.DenseArray) ([]float64, *sparse.DenseArray, *sparse.DenseArray) {
	if len(lat) > 1 && lat[0] < lat[len(lat)-1] {
		lat, u = ReverseLatDim(lat, u)
		_, v = ReverseLatDim(nil, v)
	}
	return lat, u, v
}

func rank(a *sparse.DenseArray) int {
	if a == nil {
		return 0
	}
	return len(a.Shape)
}
