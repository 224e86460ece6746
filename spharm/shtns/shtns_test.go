package shtns

import (
	"math"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/require"

	"github.com/ajdawson/windspharm/spharm"
)

// newTestTransform builds a transform on a Gaussian grid, skipping the test
// when the native library cannot serve it.
func newTestTransform(t *testing.T, nlon, nlat int) spharm.Transform {
	t.Helper()
	grid, err := spharm.NewGrid(nlon, nlat, spharm.Gaussian, spharm.DefaultRadius)
	require.NoError(t, err)
	tr, err := New(grid)
	if err != nil {
		t.Skipf("native transform unavailable: %v", err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

// Solid body rotation u = U0 cos(lat), v = 0 has vorticity 2 U0 sin(lat)/r,
// zero divergence and streamfunction -U0 r sin(lat), and is reconstructed
// entirely by the rotated streamfunction gradient. This pins down the sign
// and scale conventions of the toroidal and spheroidal coefficients.
func TestTransform_SolidBodyRotation(t *testing.T) {
	const (
		nlat = 32
		nlon = 64
		u0   = 20.0
	)
	tr := newTestTransform(t, nlon, nlat)
	r := tr.Grid().Radius
	lats := tr.Latitudes()
	require.Len(t, lats, nlat)
	require.Greater(t, lats[0], lats[nlat-1], "latitudes must run north to south")

	u := sparse.ZerosDense(nlat, nlon)
	v := sparse.ZerosDense(nlat, nlon)
	for i, lat := range lats {
		uval := u0 * math.Cos(lat*math.Pi/180)
		for j := 0; j < nlon; j++ {
			u.Set(uval, i, j)
		}
	}

	vrtSpec, divSpec, err := tr.VorticityDivergence(u, v, spharm.DefaultTruncation)
	require.NoError(t, err)
	vrt, err := tr.ToGrid(vrtSpec)
	require.NoError(t, err)
	div, err := tr.ToGrid(divSpec)
	require.NoError(t, err)
	for i, lat := range lats {
		want := 2 * u0 * math.Sin(lat*math.Pi/180) / r
		for j := 0; j < nlon; j++ {
			require.InDelta(t, want, vrt.Get(i, j), 1e-10)
			require.InDelta(t, 0, div.Get(i, j), 1e-10)
		}
	}

	psi, chi, err := tr.StreamfunctionPotential(u, v, spharm.DefaultTruncation)
	require.NoError(t, err)
	for i, lat := range lats {
		want := -u0 * r * math.Sin(lat*math.Pi/180)
		for j := 0; j < nlon; j++ {
			require.InDelta(t, want, psi.Get(i, j), 1e-2)
			require.InDelta(t, 0, chi.Get(i, j), 1e-2)
		}
	}

	// the non-divergent wind is (-meridional, +zonal) of the streamfunction
	// gradient and must reproduce the input exactly
	psiSpec, err := tr.ToSpectral(psi, spharm.DefaultTruncation)
	require.NoError(t, err)
	zonal, merid, err := tr.Gradient(psiSpec)
	require.NoError(t, err)
	for i, lat := range lats {
		uval := u0 * math.Cos(lat*math.Pi/180)
		for j := 0; j < nlon; j++ {
			require.InDelta(t, uval, -merid.Get(i, j), 1e-6)
			require.InDelta(t, 0, zonal.Get(i, j), 1e-6)
		}
	}
}

// A field band-limited below the truncation must survive an analysis and
// synthesis round trip unchanged.
func TestTransform_TruncationRoundTrip(t *testing.T) {
	const (
		nlat = 32
		nlon = 64
	)
	tr := newTestTransform(t, nlon, nlat)
	lats := tr.Latitudes()

	f := sparse.ZerosDense(nlat, nlon)
	for i, lat := range lats {
		for j := 0; j < nlon; j++ {
			f.Set(math.Sin(lat*math.Pi/180), i, j)
		}
	}
	spec, err := tr.ToSpectral(f, 4)
	require.NoError(t, err)
	out, err := tr.ToGrid(spec)
	require.NoError(t, err)
	for i := range f.Elements {
		require.InDelta(t, f.Elements[i], out.Elements[i], 1e-10)
	}
}

func TestGaussianLatitudesWeights(t *testing.T) {
	const nlat = 32
	lats, weights, err := GaussianLatitudesWeights(nlat)
	require.NoError(t, err)
	require.Len(t, lats, nlat)
	require.Len(t, weights, nlat)

	sum := 0.0
	for i := range lats {
		require.InDelta(t, lats[i], -lats[nlat-1-i], 1e-10)
		require.InDelta(t, weights[i], weights[nlat-1-i], 1e-12)
		require.Greater(t, weights[i], 0.0)
		sum += weights[i]
	}
	require.InDelta(t, 2.0, sum, 1e-10)
	for i := 1; i < nlat; i++ {
		require.Less(t, lats[i], lats[i-1])
	}
}
