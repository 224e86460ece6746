// Package standard provides vector wind diagnostics on plain numeric arrays.
//
// A VectorWind is built from gridded eastward and northward wind components
// and answers for the classic rotational and divergent quantities of
// large-scale dynamics: vorticity, divergence, streamfunction, velocity
// potential and the Helmholtz partition of the flow. Inputs must be shaped
// (nlat, nlon) or (nlat, nlon, nfields) with latitude running north to south;
// the tools package can reorder arbitrary field layouts into this form.
package standard

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"

	"github.com/ajdawson/windspharm"
	"github.com/ajdawson/windspharm/spharm"
)

func init() {
	windspharm.RegisterInterface(windspharm.Interface{
		Name:        "standard",
		Container:   "*sparse.DenseArray",
		Description: "plain numeric arrays with an explicit grid type",
	})
}

// DefaultOmega is the rotation rate of the Earth in radians per second.
const DefaultOmega = 7.292e-5

// Option configures a VectorWind.
type Option func(*config)

type config struct {
	gridtype spharm.GridType
	rsphere  float64
	factory  spharm.Factory
}

// GridType sets the latitude distribution of the wind grid. The default is
// a regular (evenly spaced) grid.
func GridType(t spharm.GridType) Option {
	return func(c *config) { c.gridtype = t }
}

// Rsphere sets the sphere radius in metres used by all differential
// operators. The default is the mean Earth radius.
func Rsphere(r float64) Option {
	return func(c *config) { c.rsphere = r }
}

// WithFactory sets the transform factory backing the diagnostics. The
// default is the registered transform implementation.
func WithFactory(f spharm.Factory) Option {
	return func(c *config) { c.factory = f }
}

// VectorWind computes diagnostics of a global vector wind field. Instances
// are independent of one another and hold a transform resource until Close.
type VectorWind struct {
	u, v  *sparse.DenseArray
	trans spharm.Transform
}

// New validates the wind components and acquires a spectral transform for
// their grid. Both components must have the same shape, rank 2 or 3, with
// latitude as the leading dimension ordered north to south, and must not
// contain missing (NaN) values.
func New(u, v *sparse.DenseArray, opts ...Option) (*VectorWind, error) {
	cfg := config{gridtype: spharm.Regular, rsphere: spharm.DefaultRadius}
	for _, opt := range opts {
		opt(&cfg)
	}
	if u == nil || v == nil {
		return nil, fmt.Errorf("%w: both wind components are required", windspharm.ErrShapeMismatch)
	}
	if err := checkNaN(u); err != nil {
		return nil, fmt.Errorf("u: %w", err)
	}
	if err := checkNaN(v); err != nil {
		return nil, fmt.Errorf("v: %w", err)
	}
	if !sameShape(u, v) {
		return nil, fmt.Errorf("%w: u is %v, v is %v", windspharm.ErrShapeMismatch, u.Shape, v.Shape)
	}
	if len(u.Shape) < 2 || len(u.Shape) > 3 {
		return nil, fmt.Errorf("%w: wind components must be rank 2 or 3 (got rank %d)",
			windspharm.ErrRank, len(u.Shape))
	}
	grid, err := spharm.NewGrid(u.Shape[1], u.Shape[0], cfg.gridtype, cfg.rsphere)
	if err != nil {
		return nil, err
	}
	factory := cfg.factory
	if factory == nil {
		if factory, err = spharm.Default(); err != nil {
			return nil, err
		}
	}
	trans, err := factory(grid)
	if err != nil {
		return nil, err
	}
	return &VectorWind{u: copyArray(u), v: copyArray(v), trans: trans}, nil
}

// Close releases the transform resource. The VectorWind must not be used
// afterwards.
func (w *VectorWind) Close() error { return w.trans.Close() }

// Grid returns the grid descriptor of the wind field.
func (w *VectorWind) Grid() spharm.Grid { return w.trans.Grid() }

// Latitudes returns the grid latitudes in degrees, north to south.
func (w *VectorWind) Latitudes() []float64 { return w.trans.Latitudes() }

// U returns a copy of the eastward wind component.
func (w *VectorWind) U() *sparse.DenseArray { return copyArray(w.u) }

// V returns a copy of the northward wind component.
func (w *VectorWind) V() *sparse.DenseArray { return copyArray(w.v) }

// Magnitude computes the wind speed, sqrt(u**2 + v**2).
func (w *VectorWind) Magnitude() *sparse.DenseArray {
	out := sparse.ZerosDense(w.u.Shape...)
	for i, uv := range w.u.Elements {
		vv := w.v.Elements[i]
		out.Elements[i] = math.Hypot(uv, vv)
	}
	return out
}

// Vorticity computes the relative vorticity of the wind field, optionally
// truncated at the given total wavenumber. A negative truncation keeps the
// grid's full resolution.
func (w *VectorWind) Vorticity(truncation int) (*sparse.DenseArray, error) {
	vrt, _, err := w.VorticityDivergence(truncation)
	return vrt, err
}

// Divergence computes the horizontal divergence of the wind field.
func (w *VectorWind) Divergence(truncation int) (*sparse.DenseArray, error) {
	_, div, err := w.VorticityDivergence(truncation)
	return div, err
}

// VorticityDivergence computes relative vorticity and divergence together,
// at the cost of a single vector analysis.
func (w *VectorWind) VorticityDivergence(truncation int) (vrt, div *sparse.DenseArray, err error) {
	vs, ds, err := w.trans.VorticityDivergence(w.u, w.v, truncation)
	if err != nil {
		return nil, nil, err
	}
	if vrt, err = w.trans.ToGrid(vs); err != nil {
		return nil, nil, err
	}
	if div, err = w.trans.ToGrid(ds); err != nil {
		return nil, nil, err
	}
	return vrt, div, nil
}

// PlanetaryVorticity computes the Coriolis parameter f = 2*omega*sin(lat) at
// every grid point, broadcast over any trailing fields. An omega of zero
// selects the Earth's rotation rate.
func (w *VectorWind) PlanetaryVorticity(omega float64) (*sparse.DenseArray, error) {
	if omega == 0 {
		omega = DefaultOmega
	}
	if math.IsNaN(omega) || omega < 0 {
		return nil, fmt.Errorf("%w: invalid rotation rate %g", windspharm.ErrInvalidParameter, omega)
	}
	lats := w.trans.Latitudes()
	out := sparse.ZerosDense(w.u.Shape...)
	nlon := w.u.Shape[1]
	nt := 1
	if len(w.u.Shape) == 3 {
		nt = w.u.Shape[2]
	}
	for i, lat := range lats {
		f := 2 * omega * math.Sin(lat*math.Pi/180)
		base := i * nlon * nt
		for j := 0; j < nlon*nt; j++ {
			out.Elements[base+j] = f
		}
	}
	return out, nil
}

// AbsoluteVorticity computes the sum of relative and planetary vorticity.
func (w *VectorWind) AbsoluteVorticity(truncation int, omega float64) (*sparse.DenseArray, error) {
	f, err := w.PlanetaryVorticity(omega)
	if err != nil {
		return nil, err
	}
	vrt, err := w.Vorticity(truncation)
	if err != nil {
		return nil, err
	}
	for i := range vrt.Elements {
		vrt.Elements[i] += f.Elements[i]
	}
	return vrt, nil
}

// Streamfunction computes the streamfunction of the rotational wind.
func (w *VectorWind) Streamfunction(truncation int) (*sparse.DenseArray, error) {
	psi, _, err := w.SfVp(truncation)
	return psi, err
}

// VelocityPotential computes the velocity potential of the divergent wind.
func (w *VectorWind) VelocityPotential(truncation int) (*sparse.DenseArray, error) {
	_, chi, err := w.SfVp(truncation)
	return chi, err
}

// SfVp computes the streamfunction and velocity potential together, at the
// cost of a single vector analysis.
func (w *VectorWind) SfVp(truncation int) (psi, chi *sparse.DenseArray, err error) {
	return w.trans.StreamfunctionPotential(w.u, w.v, truncation)
}

// Helmholtz partitions the wind into its irrotational and non-divergent
// parts, returning the eastward and northward components of each:
// u = upsi + uchi and v = vpsi + vchi.
func (w *VectorWind) Helmholtz(truncation int) (uchi, vchi, upsi, vpsi *sparse.DenseArray, err error) {
	psi, chi, err := w.SfVp(truncation)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if uchi, vchi, err = w.Gradient(chi, truncation); err != nil {
		return nil, nil, nil, nil, err
	}
	psiZonal, psiMerid, err := w.Gradient(psi, truncation)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	// rotational wind: upsi = -dpsi/dy, vpsi = dpsi/dx
	for i := range psiMerid.Elements {
		psiMerid.Elements[i] = -psiMerid.Elements[i]
	}
	return uchi, vchi, psiMerid, psiZonal, nil
}

// IrrotationalComponent computes the divergent part of the wind field.
func (w *VectorWind) IrrotationalComponent(truncation int) (uchi, vchi *sparse.DenseArray, err error) {
	_, chi, err := w.SfVp(truncation)
	if err != nil {
		return nil, nil, err
	}
	return w.Gradient(chi, truncation)
}

// NonDivergentComponent computes the rotational part of the wind field.
func (w *VectorWind) NonDivergentComponent(truncation int) (upsi, vpsi *sparse.DenseArray, err error) {
	psi, _, err := w.SfVp(truncation)
	if err != nil {
		return nil, nil, err
	}
	zonal, merid, err := w.Gradient(psi, truncation)
	if err != nil {
		return nil, nil, err
	}
	for i := range merid.Elements {
		merid.Elements[i] = -merid.Elements[i]
	}
	return merid, zonal, nil
}

// RotationalComponent is another name for NonDivergentComponent.
func (w *VectorWind) RotationalComponent(truncation int) (upsi, vpsi *sparse.DenseArray, err error) {
	return w.NonDivergentComponent(truncation)
}

// DivergentComponent is another name for IrrotationalComponent.
func (w *VectorWind) DivergentComponent(truncation int) (uchi, vchi *sparse.DenseArray, err error) {
	return w.IrrotationalComponent(truncation)
}

// Gradient computes the zonal and meridional components of the vector
// gradient of a scalar field on the wind's grid.
func (w *VectorWind) Gradient(field *sparse.DenseArray, truncation int) (zonal, meridional *sparse.DenseArray, err error) {
	if err := w.checkField(field); err != nil {
		return nil, nil, err
	}
	spec, err := w.trans.ToSpectral(field, truncation)
	if err != nil {
		return nil, nil, err
	}
	return w.trans.Gradient(spec)
}

// Truncate filters a scalar field by spectral truncation. A negative
// truncation uses nlat-1, the grid's natural resolution.
func (w *VectorWind) Truncate(field *sparse.DenseArray, truncation int) (*sparse.DenseArray, error) {
	if err := w.checkField(field); err != nil {
		return nil, err
	}
	if truncation < 0 {
		truncation = w.trans.Grid().NLat - 1
	}
	spec, err := w.trans.ToSpectral(field, truncation)
	if err != nil {
		return nil, err
	}
	return w.trans.ToGrid(spec)
}

// checkField validates a scalar field argument against the wind's grid. The
// field may carry a different number of trailing fields than the wind, but
// its grid dimensions must match.
func (w *VectorWind) checkField(field *sparse.DenseArray) error {
	if field == nil {
		return fmt.Errorf("%w: a scalar field is required", windspharm.ErrIncompatibleField)
	}
	if err := checkNaN(field); err != nil {
		return err
	}
	if len(field.Shape) < 2 || len(field.Shape) > 3 {
		return fmt.Errorf("%w: scalar fields must be rank 2 or 3 (got rank %d)",
			windspharm.ErrRank, len(field.Shape))
	}
	if field.Shape[0] != w.u.Shape[0] || field.Shape[1] != w.u.Shape[1] {
		return fmt.Errorf("%w: field grid is %dx%d, wind grid is %dx%d",
			windspharm.ErrIncompatibleField, field.Shape[0], field.Shape[1], w.u.Shape[0], w.u.Shape[1])
	}
	return nil
}

func checkNaN(a *sparse.DenseArray) error {
	for _, v := range a.Elements {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: fields must not contain NaN", windspharm.ErrMissingValues)
		}
	}
	return nil
}

func sameShape(a, b *sparse.DenseArray) bool {
	if len(a.Shape) != len(b.Shape) {
		return false
	}
	for i := range a.Shape {
		if a.Shape[i] != b.Shape[i] {
			return false
		}
	}
	return true
}

func copyArray(a *sparse.DenseArray) *sparse.DenseArray {
	out := sparse.ZerosDense(a.Shape...)
	copy(out.Elements, a.Elements)
	return out
}
