package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajdawson/windspharm"
	"github.com/ajdawson/windspharm/field"
	"github.com/ajdawson/windspharm/internal/spharmtest"
	"github.com/ajdawson/windspharm/standard"
)

func init() {
	field.SetLogger(nil)
}

func testRequest(nlat, nlon int) DiagnosticsRequest {
	lons := make([]float64, nlon)
	for i := range lons {
		lons[i] = float64(i) * 360 / float64(nlon)
	}
	u := make([][]float64, nlat)
	v := make([][]float64, nlat)
	for i := range u {
		u[i] = make([]float64, nlon)
		v[i] = make([]float64, nlon)
		for j := range u[i] {
			u[i][j] = float64(i*nlon + j + 1)
			v[i][j] = 2 * float64(i*nlon+j+1)
		}
	}
	return DiagnosticsRequest{
		Latitudes:  spharmtest.RegularLatitudes(nlat),
		Longitudes: lons,
		U:          u,
		V:          v,
	}
}

func testUseCase() *DiagnosticsUseCase {
	factory := &spharmtest.Factory{}
	return NewDiagnosticsUseCase(nil, standard.WithFactory(factory.New))
}

func TestExecute_DefaultQuantities(t *testing.T) {
	uc := testUseCase()

	resp, err := uc.Execute(testRequest(5, 8))
	require.NoError(t, err)
	require.Equal(t, "regular", resp.GridType)
	require.Equal(t, 5, resp.NLat)
	require.Equal(t, 8, resp.NLon)
	require.Len(t, resp.Quantities, len(defaultQuantities))

	names := make([]string, len(resp.Quantities))
	for i, q := range resp.Quantities {
		names[i] = q.Name
		require.Len(t, q.Data, 5)
		require.Len(t, q.Data[0], 8)
	}
	require.Equal(t, []string{"speed", "vrt", "div", "psi", "chi"}, names)
}

func TestExecute_SelectedQuantities(t *testing.T) {
	uc := testUseCase()
	req := testRequest(5, 8)
	req.Quantities = []string{"absolute_vorticity", "u_psi"}

	resp, err := uc.Execute(req)
	require.NoError(t, err)
	require.Len(t, resp.Quantities, 2)
	require.Equal(t, "absvrt", resp.Quantities[0].Name)
	require.Equal(t, "u_psi", resp.Quantities[1].Name)
}

func TestExecute_UnknownQuantity(t *testing.T) {
	uc := testUseCase()
	req := testRequest(5, 8)
	req.Quantities = []string{"enstrophy"}

	_, err := uc.Execute(req)
	require.ErrorIs(t, err, windspharm.ErrInvalidParameter)
}

func TestExecute_Validation(t *testing.T) {
	uc := testUseCase()

	t.Run("no grid", func(t *testing.T) {
		_, err := uc.Execute(DiagnosticsRequest{})
		require.ErrorIs(t, err, windspharm.ErrGridNotFound)
	})
	t.Run("ragged u", func(t *testing.T) {
		req := testRequest(5, 8)
		req.U[2] = req.U[2][:4]
		_, err := uc.Execute(req)
		require.ErrorIs(t, err, windspharm.ErrShapeMismatch)
	})
	t.Run("wrong row count", func(t *testing.T) {
		req := testRequest(5, 8)
		req.V = req.V[:3]
		_, err := uc.Execute(req)
		require.ErrorIs(t, err, windspharm.ErrShapeMismatch)
	})
	t.Run("non-global latitudes", func(t *testing.T) {
		req := testRequest(5, 8)
		req.Latitudes = []float64{60, 50, 40, 30, 20}
		_, err := uc.Execute(req)
		require.ErrorIs(t, err, windspharm.ErrInvalidGrid)
	})
}

func TestExecute_TruncationApplied(t *testing.T) {
	factory := &spharmtest.Factory{}
	uc := NewDiagnosticsUseCase(nil, standard.WithFactory(factory.New))
	req := testRequest(5, 8)
	tr := 21
	req.Truncation = &tr
	req.Quantities = []string{"vorticity"}

	_, err := uc.Execute(req)
	require.NoError(t, err)
	require.Contains(t, factory.Last.Truncations, 21)
}
