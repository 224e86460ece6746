package spharm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajdawson/windspharm"
)

func TestNewGrid(t *testing.T) {
	cases := []struct {
		name       string
		nlon, nlat int
		gridtype   GridType
		radius     float64
		wantErr    bool
	}{
		{"regular", 144, 73, Regular, DefaultRadius, false},
		{"gaussian", 128, 64, Gaussian, DefaultRadius, false},
		{"minimum size", 4, 3, Regular, DefaultRadius, false},
		{"unknown type", 144, 73, GridType("mercator"), DefaultRadius, true},
		{"too few longitudes", 3, 73, Regular, DefaultRadius, true},
		{"too few latitudes", 144, 2, Regular, DefaultRadius, true},
		{"zero radius", 144, 73, Regular, 0, true},
		{"negative radius", 144, 73, Regular, -1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := NewGrid(tc.nlon, tc.nlat, tc.gridtype, tc.radius)
			if tc.wantErr {
				require.ErrorIs(t, err, windspharm.ErrInvalidGrid)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.nlon, g.NLon)
			require.Equal(t, tc.nlat, g.NLat)
			require.Equal(t, tc.gridtype, g.Type)
		})
	}
}

// The default factory and the Gaussian latitude generator come from whatever
// transform implementation is linked in; with none registered both must
// fail, and registration must make both available.
func TestRegisterDefault(t *testing.T) {
	_, err := Default()
	require.ErrorIs(t, err, windspharm.ErrInvalidGrid)
	_, err = GaussianLatitudes(64)
	require.ErrorIs(t, err, windspharm.ErrInvalidGrid)

	factory := func(Grid) (Transform, error) { return nil, nil }
	gauss := func(nlat int) ([]float64, []float64, error) {
		return make([]float64, nlat), make([]float64, nlat), nil
	}
	RegisterDefault(factory, gauss)
	t.Cleanup(func() { RegisterDefault(nil, nil) })

	f, err := Default()
	require.NoError(t, err)
	require.NotNil(t, f)

	lats, err := GaussianLatitudes(64)
	require.NoError(t, err)
	require.Len(t, lats, 64)

	lats, weights, err := GaussianLatitudesWeights(64)
	require.NoError(t, err)
	require.Len(t, lats, 64)
	require.Len(t, weights, 64)
}
