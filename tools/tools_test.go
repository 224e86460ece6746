package tools

import (
	"testing"

	"github.com/ctessum/sparse"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ajdawson/windspharm"
)

func sequential(shape ...int) *sparse.DenseArray {
	a := sparse.ZerosDense(shape...)
	for i := range a.Elements {
		a.Elements[i] = float64(i)
	}
	return a
}

func TestPrepData_MovesGridToFront(t *testing.T) {
	// (time, level, lat, lon)
	data := sequential(5, 3, 73, 144)

	pdata, _, err := PrepData(data, "tzyx")
	require.NoError(t, err)
	require.Equal(t, []int{73, 144, 15}, pdata.Shape)
}

func TestPrepData_RecoverData_RoundTrip(t *testing.T) {
	cases := map[string][]int{
		"yx":   {73, 144},
		"xy":   {144, 73},
		"tyx":  {5, 73, 144},
		"tzyx": {5, 3, 73, 144},
		"xzty": {144, 3, 5, 73},
	}
	for dimorder, shape := range cases {
		t.Run(dimorder, func(t *testing.T) {
			data := sequential(shape...)
			pdata, info, err := PrepData(data, dimorder)
			require.NoError(t, err)

			back, err := RecoverData(pdata, info)
			require.NoError(t, err)
			require.Equal(t, data.Shape, back.Shape)
			if diff := cmp.Diff(data.Elements, back.Elements); diff != "" {
				t.Errorf("round trip changed the array:\n%s", diff)
			}
		})
	}
}

func TestPrepData_Invalid(t *testing.T) {
	data := sequential(5, 73, 144)
	t.Run("wrong length", func(t *testing.T) {
		_, _, err := PrepData(data, "yx")
		require.ErrorIs(t, err, windspharm.ErrDimensionMismatch)
	})
	t.Run("missing latitude", func(t *testing.T) {
		_, _, err := PrepData(data, "tzx")
		require.ErrorIs(t, err, windspharm.ErrDimensionMismatch)
	})
	t.Run("missing longitude", func(t *testing.T) {
		_, _, err := PrepData(data, "tzy")
		require.ErrorIs(t, err, windspharm.ErrDimensionMismatch)
	})
}

func TestReverseLatDim(t *testing.T) {
	lat := []float64{-90, 0, 90}
	field := sequential(3, 4)

	rlat, rfield := ReverseLatDim(lat, field)
	require.Equal(t, []float64{90, 0, -90}, rlat)
	require.Equal(t, field.Get(2, 0), rfield.Get(0, 0))
	require.Equal(t, field.Get(0, 3), rfield.Get(2, 3))
	// inputs untouched
	require.Equal(t, []float64{-90, 0, 90}, lat)
	require.Equal(t, 0.0, field.Get(0, 0))
}

func TestOrderLatDim(t *testing.T) {
	u := sequential(3, 4)
	v := sequential(3, 4)

	t.Run("ascending is reversed", func(t *testing.T) {
		lat, ru, rv := OrderLatDim([]float64{-90, 0, 90}, u, v)
		require.Equal(t, []float64{90, 0, -90}, lat)
		require.Equal(t, u.Get(2, 0), ru.Get(0, 0))
		require.Equal(t, v.Get(2, 0), rv.Get(0, 0))
	})
	t.Run("descending passes through", func(t *testing.T) {
		lat, ru, rv := OrderLatDim([]float64{90, 0, -90}, u, v)
		require.Equal(t, []float64{90, 0, -90}, lat)
		require.Same(t, u, ru)
		require.Same(t, v, rv)
	})
}
