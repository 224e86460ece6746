package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ajdawson/windspharm/field"
	"github.com/ajdawson/windspharm/internal/spharmtest"
	"github.com/ajdawson/windspharm/internal/usecase"
	"github.com/ajdawson/windspharm/standard"
)

func init() {
	gin.SetMode(gin.TestMode)
	field.SetLogger(nil)
}

func testRouter() *gin.Engine {
	factory := &spharmtest.Factory{}
	uc := usecase.NewDiagnosticsUseCase(nil, standard.WithFactory(factory.New))
	return SetupRouter(uc)
}

func testBody(t *testing.T, nlat, nlon int) []byte {
	t.Helper()
	lats := spharmtest.RegularLatitudes(nlat)
	lons := make([]float64, nlon)
	for i := range lons {
		lons[i] = float64(i) * 360 / float64(nlon)
	}
	grid := make([][]float64, nlat)
	for i := range grid {
		grid[i] = make([]float64, nlon)
		for j := range grid[i] {
			grid[i][j] = float64(i + j)
		}
	}
	body, err := json.Marshal(usecase.DiagnosticsRequest{
		Latitudes:  lats,
		Longitudes: lons,
		U:          grid,
		V:          grid,
	})
	require.NoError(t, err)
	return body
}

func TestComputeDiagnostics_OK(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodPost, "/v1/wind/diagnostics", bytes.NewReader(testBody(t, 5, 8)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp usecase.DiagnosticsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "regular", resp.GridType)
	require.NotEmpty(t, resp.Quantities)
}

func TestComputeDiagnostics_BadBody(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodPost, "/v1/wind/diagnostics", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComputeDiagnostics_BadGrid(t *testing.T) {
	router := testRouter()

	body := []byte(`{"latitudes":[60,50,40],"longitudes":[0,90,180,270],
		"u":[[0,0,0,0],[0,0,0,0],[0,0,0,0]],
		"v":[[0,0,0,0],[0,0,0,0],[0,0,0,0]]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/wind/diagnostics", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetInterfaces(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/interfaces", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Interfaces []InterfaceInfo `json:"interfaces"`
		Count      int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, len(resp.Interfaces), resp.Count)

	// the field front end is linked into this binary
	names := map[string]bool{}
	for _, iface := range resp.Interfaces {
		names[iface.Name] = true
	}
	require.True(t, names["field"])
}

func TestHealthCheck(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}
