// Package usecase orchestrates wind diagnostics for the HTTP service.
package usecase

import (
	"fmt"

	"github.com/ctessum/sparse"
	"go.uber.org/zap"

	"github.com/ajdawson/windspharm"
	"github.com/ajdawson/windspharm/field"
	"github.com/ajdawson/windspharm/standard"
)

// DiagnosticsRequest is a wind field with the quantities to compute from it.
// The u and v arrays are (lat, lon); latitude may run in either direction.
type DiagnosticsRequest struct {
	Latitudes  []float64   `json:"latitudes"`
	Longitudes []float64   `json:"longitudes"`
	U          [][]float64 `json:"u"`
	V          [][]float64 `json:"v"`
	// Truncation limits the spectral resolution; omitted means the grid's
	// natural maximum.
	Truncation *int `json:"truncation,omitempty"`
	// Quantities selects what to compute. Empty means a standard set.
	Quantities []string `json:"quantities,omitempty"`
}

// Quantity is one computed diagnostic.
type Quantity struct {
	Name         string      `json:"name"`
	Units        string      `json:"units,omitempty"`
	StandardName string      `json:"standard_name,omitempty"`
	LongName     string      `json:"long_name,omitempty"`
	Data         [][]float64 `json:"data"`
}

// DiagnosticsResponse contains the computed quantities and what was detected
// about the grid.
type DiagnosticsResponse struct {
	GridType   string     `json:"grid_type"`
	NLat       int        `json:"nlat"`
	NLon       int        `json:"nlon"`
	Quantities []Quantity `json:"quantities"`
}

// defaultQuantities is computed when a request names none.
var defaultQuantities = []string{"speed", "vorticity", "divergence", "streamfunction", "velocity_potential"}

// DiagnosticsUseCase validates requests and runs them through the field
// front end.
type DiagnosticsUseCase struct {
	log  *zap.SugaredLogger
	opts []standard.Option
}

// NewDiagnosticsUseCase creates a diagnostics use case. Options are passed
// to every diagnostics engine built for a request.
func NewDiagnosticsUseCase(log *zap.SugaredLogger, opts ...standard.Option) *DiagnosticsUseCase {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &DiagnosticsUseCase{log: log, opts: opts}
}

// Validate checks the request for structural problems before any analysis.
func (r *DiagnosticsRequest) Validate() error {
	if len(r.Latitudes) == 0 || len(r.Longitudes) == 0 {
		return fmt.Errorf("%w: latitudes and longitudes are required", windspharm.ErrGridNotFound)
	}
	for name, grid := range map[string][][]float64{"u": r.U, "v": r.V} {
		if len(grid) != len(r.Latitudes) {
			return fmt.Errorf("%w: %s has %d rows for %d latitudes",
				windspharm.ErrShapeMismatch, name, len(grid), len(r.Latitudes))
		}
		for _, row := range grid {
			if len(row) != len(r.Longitudes) {
				return fmt.Errorf("%w: %s has a row of %d values for %d longitudes",
					windspharm.ErrShapeMismatch, name, len(row), len(r.Longitudes))
			}
		}
	}
	return nil
}

// Execute computes the requested diagnostics.
func (uc *DiagnosticsUseCase) Execute(req DiagnosticsRequest) (*DiagnosticsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	u, err := uc.buildField("u", req)
	if err != nil {
		return nil, err
	}
	v, err := uc.buildField("v", req)
	if err != nil {
		return nil, err
	}
	vw, err := field.NewVectorWind(u, v, uc.opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = vw.Close() }()

	truncation := -1
	if req.Truncation != nil {
		truncation = *req.Truncation
	}
	names := req.Quantities
	if len(names) == 0 {
		names = defaultQuantities
	}
	uc.log.Infow("computing diagnostics",
		"nlat", len(req.Latitudes), "nlon", len(req.Longitudes),
		"grid_type", string(vw.GridType()), "quantities", names)

	resp := &DiagnosticsResponse{
		GridType: string(vw.GridType()),
		NLat:     len(req.Latitudes),
		NLon:     len(req.Longitudes),
	}
	for _, name := range names {
		out, err := uc.compute(vw, name, truncation)
		if err != nil {
			return nil, err
		}
		resp.Quantities = append(resp.Quantities, Quantity{
			Name:         out.Name,
			Units:        out.Units,
			StandardName: out.StandardName,
			LongName:     out.LongName,
			Data:         rows(out),
		})
	}
	return resp, nil
}

func (uc *DiagnosticsUseCase) compute(vw *field.VectorWind, name string, truncation int) (*field.Field, error) {
	switch name {
	case "speed", "magnitude":
		return vw.Magnitude()
	case "vorticity":
		return vw.Vorticity(truncation)
	case "divergence":
		return vw.Divergence(truncation)
	case "planetary_vorticity":
		return vw.PlanetaryVorticity(0)
	case "absolute_vorticity":
		return vw.AbsoluteVorticity(truncation, 0)
	case "streamfunction":
		return vw.Streamfunction(truncation)
	case "velocity_potential":
		return vw.VelocityPotential(truncation)
	case "u_chi":
		uchi, _, err := vw.IrrotationalComponent(truncation)
		return uchi, err
	case "v_chi":
		_, vchi, err := vw.IrrotationalComponent(truncation)
		return vchi, err
	case "u_psi":
		upsi, _, err := vw.NonDivergentComponent(truncation)
		return upsi, err
	case "v_psi":
		_, vpsi, err := vw.NonDivergentComponent(truncation)
		return vpsi, err
	default:
		return nil, fmt.Errorf("%w: unknown quantity %q", windspharm.ErrInvalidParameter, name)
	}
}

func (uc *DiagnosticsUseCase) buildField(name string, req DiagnosticsRequest) (*field.Field, error) {
	grid := req.U
	if name == "v" {
		grid = req.V
	}
	data := sparse.ZerosDense(len(req.Latitudes), len(req.Longitudes))
	for i, row := range grid {
		copy(data.Elements[i*len(req.Longitudes):], row)
	}
	return field.New(name, data, []string{"latitude", "longitude"}, map[string][]float64{
		"latitude":  req.Latitudes,
		"longitude": req.Longitudes,
	})
}

func rows(f *field.Field) [][]float64 {
	nlat, nlon := f.Data.Shape[0], f.Data.Shape[1]
	out := make([][]float64, nlat)
	for i := range out {
		out[i] = append([]float64(nil), f.Data.Elements[i*nlon:(i+1)*nlon]...)
	}
	return out
}
