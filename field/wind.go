package field

import (
	"fmt"

	"github.com/ctessum/sparse"

	"github.com/ajdawson/windspharm"
	"github.com/ajdawson/windspharm/internal/meta"
	"github.com/ajdawson/windspharm/spharm"
	"github.com/ajdawson/windspharm/standard"
)

func init() {
	windspharm.RegisterInterface(windspharm.Interface{
		Name:        "field",
		Container:   "*field.Field",
		Description: "self-describing fields with named dimensions and coordinates",
	})
}

// VectorWind computes diagnostics of a vector wind given as a pair of
// fields. The latitude and longitude dimensions are located by name, may
// appear in any position and order, and latitude may run in either
// direction; outputs always use the layout of the inputs.
type VectorWind struct {
	core *meta.Core
	u    *Field
}

// NewVectorWind validates the wind component fields and builds the diagnostics
// engine. Both components must share dimension names, shape and
// coordinates, and be in metres per second or a recognized speed unit.
// Options are passed to the underlying engine, so the sphere radius or the
// transform factory can be overridden.
func NewVectorWind(u, v *Field, opts ...standard.Option) (*VectorWind, error) {
	if u == nil || v == nil {
		return nil, fmt.Errorf("%w: both wind components are required", windspharm.ErrShapeMismatch)
	}
	if err := sameLayout(u, v); err != nil {
		return nil, err
	}
	latAxis, lats, err := u.LatDim()
	if err != nil {
		return nil, err
	}
	lonAxis, _, err := u.LonDim()
	if err != nil {
		return nil, err
	}
	uc, err := u.toMetresPerSecond()
	if err != nil {
		return nil, err
	}
	vc, err := v.toMetresPerSecond()
	if err != nil {
		return nil, err
	}
	core, err := meta.NewCore(meta.Source{
		U: uc.Data, V: vc.Data,
		LatAxis: latAxis, LonAxis: lonAxis,
		Latitudes: lats,
		Options:   opts,
	})
	if err != nil {
		return nil, err
	}
	return &VectorWind{core: core, u: uc.Copy()}, nil
}

// Close releases the underlying diagnostics engine.
func (w *VectorWind) Close() error { return w.core.Close() }

// GridType returns the latitude grid type detected from the coordinates.
func (w *VectorWind) GridType() spharm.GridType { return w.core.GridType }

// Magnitude computes the wind speed.
func (w *VectorWind) Magnitude() (*Field, error) {
	return w.output(w.core.VW.Magnitude(), meta.Speed)
}

// Vorticity computes the relative vorticity of the wind field. A negative
// truncation keeps the grid's full spectral resolution.
func (w *VectorWind) Vorticity(truncation int) (*Field, error) {
	vrt, err := w.core.VW.Vorticity(truncation)
	if err != nil {
		return nil, err
	}
	return w.output(vrt, meta.Vorticity)
}

// Divergence computes the horizontal divergence of the wind field.
func (w *VectorWind) Divergence(truncation int) (*Field, error) {
	div, err := w.core.VW.Divergence(truncation)
	if err != nil {
		return nil, err
	}
	return w.output(div, meta.Divergence)
}

// VorticityDivergence computes relative vorticity and divergence together.
func (w *VectorWind) VorticityDivergence(truncation int) (vrt, div *Field, err error) {
	v, d, err := w.core.VW.VorticityDivergence(truncation)
	if err != nil {
		return nil, nil, err
	}
	if vrt, err = w.output(v, meta.Vorticity); err != nil {
		return nil, nil, err
	}
	if div, err = w.output(d, meta.Divergence); err != nil {
		return nil, nil, err
	}
	return vrt, div, nil
}

// PlanetaryVorticity computes the Coriolis parameter at every grid point.
// An omega of zero selects the Earth's rotation rate.
func (w *VectorWind) PlanetaryVorticity(omega float64) (*Field, error) {
	f, err := w.core.VW.PlanetaryVorticity(omega)
	if err != nil {
		return nil, err
	}
	return w.output(f, meta.PlanetaryVorticity)
}

// AbsoluteVorticity computes the sum of relative and planetary vorticity.
func (w *VectorWind) AbsoluteVorticity(truncation int, omega float64) (*Field, error) {
	av, err := w.core.VW.AbsoluteVorticity(truncation, omega)
	if err != nil {
		return nil, err
	}
	return w.output(av, meta.AbsoluteVorticity)
}

// Streamfunction computes the streamfunction of the rotational wind.
func (w *VectorWind) Streamfunction(truncation int) (*Field, error) {
	psi, _, err := w.SfVp(truncation)
	return psi, err
}

// VelocityPotential computes the velocity potential of the divergent wind.
func (w *VectorWind) VelocityPotential(truncation int) (*Field, error) {
	_, chi, err := w.SfVp(truncation)
	return chi, err
}

// SfVp computes the streamfunction and velocity potential together.
func (w *VectorWind) SfVp(truncation int) (psi, chi *Field, err error) {
	p, c, err := w.core.VW.SfVp(truncation)
	if err != nil {
		return nil, nil, err
	}
	if psi, err = w.output(p, meta.Streamfunction); err != nil {
		return nil, nil, err
	}
	if chi, err = w.output(c, meta.VelocityPotential); err != nil {
		return nil, nil, err
	}
	return psi, chi, nil
}

// Helmholtz partitions the wind into its irrotational and non-divergent
// parts.
func (w *VectorWind) Helmholtz(truncation int) (uchi, vchi, upsi, vpsi *Field, err error) {
	uc, vc, up, vp, err := w.core.VW.Helmholtz(truncation)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if uchi, err = w.output(uc, meta.IrrotationalEastward); err != nil {
		return nil, nil, nil, nil, err
	}
	if vchi, err = w.output(vc, meta.IrrotationalNorthward); err != nil {
		return nil, nil, nil, nil, err
	}
	if upsi, err = w.output(up, meta.NonDivergentEastward); err != nil {
		return nil, nil, nil, nil, err
	}
	if vpsi, err = w.output(vp, meta.NonDivergentNorthward); err != nil {
		return nil, nil, nil, nil, err
	}
	return uchi, vchi, upsi, vpsi, nil
}

// IrrotationalComponent computes the divergent part of the wind field.
func (w *VectorWind) IrrotationalComponent(truncation int) (uchi, vchi *Field, err error) {
	uc, vc, err := w.core.VW.IrrotationalComponent(truncation)
	if err != nil {
		return nil, nil, err
	}
	if uchi, err = w.output(uc, meta.IrrotationalEastward); err != nil {
		return nil, nil, err
	}
	if vchi, err = w.output(vc, meta.IrrotationalNorthward); err != nil {
		return nil, nil, err
	}
	return uchi, vchi, nil
}

// NonDivergentComponent computes the rotational part of the wind field.
func (w *VectorWind) NonDivergentComponent(truncation int) (upsi, vpsi *Field, err error) {
	up, vp, err := w.core.VW.NonDivergentComponent(truncation)
	if err != nil {
		return nil, nil, err
	}
	if upsi, err = w.output(up, meta.NonDivergentEastward); err != nil {
		return nil, nil, err
	}
	if vpsi, err = w.output(vp, meta.NonDivergentNorthward); err != nil {
		return nil, nil, err
	}
	return upsi, vpsi, nil
}

// RotationalComponent is another name for NonDivergentComponent.
func (w *VectorWind) RotationalComponent(truncation int) (upsi, vpsi *Field, err error) {
	return w.NonDivergentComponent(truncation)
}

// DivergentComponent is another name for IrrotationalComponent.
func (w *VectorWind) DivergentComponent(truncation int) (uchi, vchi *Field, err error) {
	return w.IrrotationalComponent(truncation)
}

// Gradient computes the zonal and meridional gradient components of a
// scalar field on the same latitude-longitude grid as the wind components.
// The scalar may order its dimensions differently and carry extra
// dimensions of its own; outputs use the scalar's layout.
func (w *VectorWind) Gradient(f *Field, truncation int) (zonal, meridional *Field, err error) {
	prepped, layout, err := w.prepScalar(f)
	if err != nil {
		return nil, nil, err
	}
	z, m, err := w.core.VW.Gradient(prepped, truncation)
	if err != nil {
		return nil, nil, err
	}
	zm, mm := meta.GradientMeta(f.Name)
	if zonal, err = w.scalarOutput(z, layout, f, zm); err != nil {
		return nil, nil, err
	}
	if meridional, err = w.scalarOutput(m, layout, f, mm); err != nil {
		return nil, nil, err
	}
	return zonal, meridional, nil
}

// Truncate filters a scalar field by spectral truncation, keeping the
// field's own metadata and marking the name with the truncation.
func (w *VectorWind) Truncate(f *Field, truncation int) (*Field, error) {
	prepped, layout, err := w.prepScalar(f)
	if err != nil {
		return nil, err
	}
	out, err := w.core.VW.Truncate(prepped, truncation)
	if err != nil {
		return nil, err
	}
	if truncation < 0 {
		truncation = w.core.VW.Grid().NLat - 1
	}
	return w.scalarOutput(out, layout, f, meta.FieldMeta{
		Name:  meta.TruncatedName(f.Name, truncation),
		Units: f.Units, StandardName: f.StandardName, LongName: f.LongName,
	})
}

// prepScalar locates the scalar field's own latitude and longitude
// dimensions, checks them against the wind grid and canonicalizes the data.
// The scalar's latitude may run in either direction.
func (w *VectorWind) prepScalar(f *Field) (*sparse.DenseArray, *meta.Layout, error) {
	if f == nil {
		return nil, nil, fmt.Errorf("%w: a scalar field is required", windspharm.ErrIncompatibleField)
	}
	latAxis, lats, err := f.LatDim()
	if err != nil {
		return nil, nil, err
	}
	lonAxis, lons, err := f.LonDim()
	if err != nil {
		return nil, nil, err
	}
	_, wlats, err := w.u.LatDim()
	if err != nil {
		return nil, nil, err
	}
	_, wlons, err := w.u.LonDim()
	if err != nil {
		return nil, nil, err
	}
	if !floatsEqual(lons, wlons) || !(floatsEqual(lats, wlats) || floatsEqual(lats, reversed(wlats))) {
		return nil, nil, fmt.Errorf("%w: %q is not on the wind grid",
			windspharm.ErrIncompatibleField, f.Name)
	}
	ascending := lats[0] < lats[len(lats)-1]
	return w.core.PrepScalar(f.Data, latAxis, lonAxis, ascending)
}

// scalarOutput maps a Gradient or Truncate result back to the scalar
// field's own layout and coordinates.
func (w *VectorWind) scalarOutput(data *sparse.DenseArray, l *meta.Layout, src *Field, m meta.FieldMeta) (*Field, error) {
	restored, err := w.core.RestoreScalar(data, l)
	if err != nil {
		return nil, err
	}
	out, err := New(m.Name, restored, src.Dims, src.Coords)
	if err != nil {
		return nil, err
	}
	out.Units = m.Units
	out.StandardName = m.StandardName
	out.LongName = m.LongName
	return out, nil
}

// output maps an engine result back to the input layout and wraps it with
// the quantity's metadata and the input coordinates.
func (w *VectorWind) output(data *sparse.DenseArray, m meta.FieldMeta) (*Field, error) {
	restored, err := w.core.Restore(data)
	if err != nil {
		return nil, err
	}
	out, err := New(m.Name, restored, w.u.Dims, w.u.Coords)
	if err != nil {
		return nil, err
	}
	out.Units = m.Units
	out.StandardName = m.StandardName
	out.LongName = m.LongName
	return out, nil
}

// sameLayout checks that two fields agree on dimension names, shape and
// coordinate values.
func sameLayout(a, b *Field) error {
	if len(a.Dims) != len(b.Dims) || !shapeEqual(a.Data.Shape, b.Data.Shape) {
		return fmt.Errorf("%w: %q is %v, %q is %v", windspharm.ErrShapeMismatch,
			a.Name, a.Data.Shape, b.Name, b.Data.Shape)
	}
	for i, d := range a.Dims {
		if b.Dims[i] != d {
			return fmt.Errorf("%w: dimension %d is %q in %q but %q in %q",
				windspharm.ErrDimensionMismatch, i, d, a.Name, b.Dims[i], b.Name)
		}
		av, aok := a.Coords[d]
		bv, bok := b.Coords[d]
		if aok != bok || !floatsEqual(av, bv) {
			return fmt.Errorf("%w: coordinate %q differs between %q and %q",
				windspharm.ErrDimensionMismatch, d, a.Name, b.Name)
		}
	}
	return nil
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func reversed(a []float64) []float64 {
	out := make([]float64, len(a))
	for i, v := range a {
		out[len(a)-1-i] = v
	}
	return out
}
