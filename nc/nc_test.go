package nc

import (
	"path/filepath"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/fhs/go-netcdf/netcdf"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ajdawson/windspharm/field"
	"github.com/ajdawson/windspharm/internal/spharmtest"
	"github.com/ajdawson/windspharm/standard"
)

func init() {
	field.SetLogger(nil)
}

// createWindNC writes a minimal wind file with latitude, longitude, u and v.
func createWindNC(t *testing.T, path string, nlat, nlon int) ([]float64, []float64) {
	t.Helper()
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}
	defer func() { _ = f.Close() }()

	latDim, _ := f.AddDim("latitude", uint64(nlat))
	lonDim, _ := f.AddDim("longitude", uint64(nlon))
	vlat, _ := f.AddVar("latitude", netcdf.DOUBLE, []netcdf.Dim{latDim})
	vlon, _ := f.AddVar("longitude", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	vu, _ := f.AddVar("u", netcdf.DOUBLE, []netcdf.Dim{latDim, lonDim})
	vv, _ := f.AddVar("v", netcdf.FLOAT, []netcdf.Dim{latDim, lonDim})

	lats := spharmtest.RegularLatitudes(nlat)
	lons := make([]float64, nlon)
	for i := range lons {
		lons[i] = float64(i) * 360 / float64(nlon)
	}
	u := make([]float64, nlat*nlon)
	v := make([]float32, nlat*nlon)
	for i := range u {
		u[i] = float64(i + 1)
		v[i] = float32(2 * (i + 1))
	}
	if err := vlat.WriteFloat64s(lats); err != nil {
		t.Fatalf("write latitude: %v", err)
	}
	if err := vlon.WriteFloat64s(lons); err != nil {
		t.Fatalf("write longitude: %v", err)
	}
	if err := vu.WriteFloat64s(u); err != nil {
		t.Fatalf("write u: %v", err)
	}
	if err := vv.WriteFloat32s(v); err != nil {
		t.Fatalf("write v: %v", err)
	}
	return lats, u
}

func TestReadField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wind.nc")
	lats, u := createWindNC(t, path, 5, 8)

	ds, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = ds.Close() }()

	f, err := ds.ReadField("u")
	require.NoError(t, err)
	require.Equal(t, []string{"latitude", "longitude"}, f.Dims)
	require.Equal(t, []int{5, 8}, f.Data.Shape)
	require.Equal(t, lats, f.Coords["latitude"])
	if diff := cmp.Diff(u, f.Data.Elements); diff != "" {
		t.Errorf("values differ:\n%s", diff)
	}
}

func TestReadField_FloatVariable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wind.nc")
	createWindNC(t, path, 5, 8)

	ds, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = ds.Close() }()

	// v is stored as 32 bit floats and must come back widened
	f, err := ds.ReadField("v")
	require.NoError(t, err)
	require.Equal(t, 2.0, f.Data.Elements[0])
}

func TestVectorWind_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wind.nc")
	createWindNC(t, path, 5, 8)

	ds, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = ds.Close() }()

	factory := &spharmtest.Factory{}
	w, err := ds.VectorWind("u", "v", standard.WithFactory(factory.New))
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	vrt, err := w.Vorticity(-1)
	require.NoError(t, err)
	require.Equal(t, "vrt", vrt.Name)
	// fake vorticity is u - v = -u
	require.InDelta(t, -1.0, vrt.Data.Elements[0], 1e-6)
}

func TestWriteField_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	data := sparse.ZerosDense(3, 4)
	for i := range data.Elements {
		data.Elements[i] = float64(i)
	}
	f, err := field.New("psi", data, []string{"latitude", "longitude"}, map[string][]float64{
		"latitude":  {90, 0, -90},
		"longitude": {0, 90, 180, 270},
	})
	require.NoError(t, err)

	path := filepath.Join(dir, "psi.nc")
	require.NoError(t, WriteField(path, f))

	ds, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = ds.Close() }()

	back, err := ds.ReadField("psi")
	require.NoError(t, err)
	require.Equal(t, f.Dims, back.Dims)
	require.Equal(t, f.Coords["latitude"], back.Coords["latitude"])
	if diff := cmp.Diff(f.Data.Elements, back.Data.Elements); diff != "" {
		t.Errorf("values differ:\n%s", diff)
	}
}
