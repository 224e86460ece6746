// Package native implements vector wind diagnostics on variables from the
// pure-Go netCDF reader. Wind components are looked up by name in an open
// dataset (or anything else that can serve api.Variable values), latitude
// and longitude dimensions are located by their conventional names, and
// every diagnostic is returned as an api.Variable with CF-style attributes.
package native

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
	"github.com/ctessum/sparse"

	"github.com/ajdawson/windspharm"
	"github.com/ajdawson/windspharm/internal/meta"
	"github.com/ajdawson/windspharm/spharm"
	"github.com/ajdawson/windspharm/standard"
)

func init() {
	windspharm.RegisterInterface(windspharm.Interface{
		Name:        "native",
		Container:   "*api.Variable",
		Description: "variables read with the pure-Go netCDF library",
	})
}

// VariableSource serves named variables. api.Group, as returned by the
// netcdf open functions, satisfies it.
type VariableSource interface {
	GetVariable(name string) (*api.Variable, error)
}

var (
	latNames = []string{"latitude", "lat", "y"}
	lonNames = []string{"longitude", "lon", "x"}
)

// VectorWind computes diagnostics of a vector wind read from a netCDF
// dataset.
type VectorWind struct {
	core *meta.Core
	dims []string
	// coordinate variables carried onto outputs
	latName string
	lonName string
	// scalar fields share the wind's coordinate variables, so its
	// latitude direction applies to them too
	latAscending bool
}

// New looks up the wind component variables and builds the diagnostics
// engine. The components must share dimensions, one of which is named as a
// latitude and one as a longitude, each with a coordinate variable of the
// same name in the source.
func New(src VariableSource, uName, vName string, opts ...standard.Option) (*VectorWind, error) {
	uVar, err := src.GetVariable(uName)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", uName, err)
	}
	vVar, err := src.GetVariable(vName)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", vName, err)
	}
	if len(uVar.Dimensions) != len(vVar.Dimensions) {
		return nil, fmt.Errorf("%w: %q has dimensions %v, %q has %v", windspharm.ErrShapeMismatch,
			uName, uVar.Dimensions, vName, vVar.Dimensions)
	}
	for i, d := range uVar.Dimensions {
		if vVar.Dimensions[i] != d {
			return nil, fmt.Errorf("%w: %q has dimensions %v, %q has %v", windspharm.ErrDimensionMismatch,
				uName, uVar.Dimensions, vName, vVar.Dimensions)
		}
	}
	latAxis, latName, err := findDim(uVar.Dimensions, latNames, "latitude")
	if err != nil {
		return nil, err
	}
	lonAxis, lonName, err := findDim(uVar.Dimensions, lonNames, "longitude")
	if err != nil {
		return nil, err
	}
	latVar, err := src.GetVariable(latName)
	if err != nil {
		return nil, fmt.Errorf("%w: no coordinate variable %q", windspharm.ErrGridNotFound, latName)
	}
	lats, err := coordValues(latVar.Values)
	if err != nil {
		return nil, fmt.Errorf("coordinate %q: %w", latName, err)
	}
	u, err := denseFromValues(uVar.Values)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", uName, err)
	}
	v, err := denseFromValues(vVar.Values)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", vName, err)
	}
	core, err := meta.NewCore(meta.Source{
		U: u, V: v,
		LatAxis: latAxis, LonAxis: lonAxis,
		Latitudes: lats,
		Options:   opts,
	})
	if err != nil {
		return nil, err
	}
	return &VectorWind{
		core:         core,
		dims:         append([]string(nil), uVar.Dimensions...),
		latName:      latName,
		lonName:      lonName,
		latAscending: len(lats) > 1 && lats[0] < lats[len(lats)-1],
	}, nil
}

// Close releases the underlying diagnostics engine.
func (w *VectorWind) Close() error { return w.core.Close() }

// GridType returns the latitude grid type detected from the coordinates.
func (w *VectorWind) GridType() spharm.GridType { return w.core.GridType }

// Magnitude computes the wind speed.
func (w *VectorWind) Magnitude() (*api.Variable, error) {
	return w.output(w.core.VW.Magnitude(), meta.Speed)
}

// Vorticity computes the relative vorticity of the wind field. A negative
// truncation keeps the grid's full spectral resolution.
func (w *VectorWind) Vorticity(truncation int) (*api.Variable, error) {
	vrt, err := w.core.VW.Vorticity(truncation)
	if err != nil {
		return nil, err
	}
	return w.output(vrt, meta.Vorticity)
}

// Divergence computes the horizontal divergence of the wind field.
func (w *VectorWind) Divergence(truncation int) (*api.Variable, error) {
	div, err := w.core.VW.Divergence(truncation)
	if err != nil {
		return nil, err
	}
	return w.output(div, meta.Divergence)
}

// VorticityDivergence computes relative vorticity and divergence together.
func (w *VectorWind) VorticityDivergence(truncation int) (vrt, div *api.Variable, err error) {
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
func (w *VectorWind) PlanetaryVorticity(omega float64) (*api.Variable, error) {
	f, err := w.core.VW.PlanetaryVorticity(omega)
	if err != nil {
		return nil, err
	}
	return w.output(f, meta.PlanetaryVorticity)
}

// AbsoluteVorticity computes the sum of relative and planetary vorticity.
func (w *VectorWind) AbsoluteVorticity(truncation int, omega float64) (*api.Variable, error) {
	av, err := w.core.VW.AbsoluteVorticity(truncation, omega)
	if err != nil {
		return nil, err
	}
	return w.output(av, meta.AbsoluteVorticity)
}

// Streamfunction computes the streamfunction of the rotational wind.
func (w *VectorWind) Streamfunction(truncation int) (*api.Variable, error) {
	psi, _, err := w.SfVp(truncation)
	return psi, err
}

// VelocityPotential computes the velocity potential of the divergent wind.
func (w *VectorWind) VelocityPotential(truncation int) (*api.Variable, error) {
	_, chi, err := w.SfVp(truncation)
	return chi, err
}

// SfVp computes the streamfunction and velocity potential together.
func (w *VectorWind) SfVp(truncation int) (psi, chi *api.Variable, err error) {
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
func (w *VectorWind) Helmholtz(truncation int) (uchi, vchi, upsi, vpsi *api.Variable, err error) {
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
func (w *VectorWind) IrrotationalComponent(truncation int) (uchi, vchi *api.Variable, err error) {
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
func (w *VectorWind) NonDivergentComponent(truncation int) (upsi, vpsi *api.Variable, err error) {
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
func (w *VectorWind) RotationalComponent(truncation int) (upsi, vpsi *api.Variable, err error) {
	return w.NonDivergentComponent(truncation)
}

// DivergentComponent is another name for IrrotationalComponent.
func (w *VectorWind) DivergentComponent(truncation int) (uchi, vchi *api.Variable, err error) {
	return w.IrrotationalComponent(truncation)
}

// Gradient computes the zonal and meridional gradient components of a
// scalar variable carrying the wind grid's latitude and longitude
// dimensions, in any position and with any extra dimensions of its own.
// Outputs use the variable's layout.
func (w *VectorWind) Gradient(v *api.Variable, name string, truncation int) (zonal, meridional *api.Variable, err error) {
	prepped, layout, err := w.prepScalar(v)
	if err != nil {
		return nil, nil, err
	}
	z, m, err := w.core.VW.Gradient(prepped, truncation)
	if err != nil {
		return nil, nil, err
	}
	zm, mm := meta.GradientMeta(name)
	if zonal, err = w.scalarOutput(z, layout, v.Dimensions, zm); err != nil {
		return nil, nil, err
	}
	if meridional, err = w.scalarOutput(m, layout, v.Dimensions, mm); err != nil {
		return nil, nil, err
	}
	return zonal, meridional, nil
}

// Truncate filters a scalar variable by spectral truncation.
func (w *VectorWind) Truncate(v *api.Variable, name string, truncation int) (*api.Variable, error) {
	prepped, layout, err := w.prepScalar(v)
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
	tname := meta.TruncatedName(name, truncation)
	return w.scalarOutput(out, layout, v.Dimensions, meta.FieldMeta{Name: tname, LongName: tname})
}

// prepScalar locates the wind's latitude and longitude dimensions in the
// scalar variable and canonicalizes its data.
func (w *VectorWind) prepScalar(v *api.Variable) (*sparse.DenseArray, *meta.Layout, error) {
	if v == nil {
		return nil, nil, fmt.Errorf("%w: a scalar variable is required", windspharm.ErrIncompatibleField)
	}
	latAxis := indexOf(v.Dimensions, w.latName)
	lonAxis := indexOf(v.Dimensions, w.lonName)
	if latAxis < 0 || lonAxis < 0 {
		return nil, nil, fmt.Errorf("%w: variable dimensions %v lack the wind grid dimensions %q and %q",
			windspharm.ErrDimensionMismatch, v.Dimensions, w.latName, w.lonName)
	}
	data, err := denseFromValues(v.Values)
	if err != nil {
		return nil, nil, err
	}
	return w.core.PrepScalar(data, latAxis, lonAxis, w.latAscending)
}

// output maps an engine result back to the wind layout and wraps it as a
// variable with descriptive attributes.
func (w *VectorWind) output(data *sparse.DenseArray, m meta.FieldMeta) (*api.Variable, error) {
	restored, err := w.core.Restore(data)
	if err != nil {
		return nil, err
	}
	return wrapVariable(restored, w.dims, m)
}

// scalarOutput maps a Gradient or Truncate result back to the scalar
// variable's own layout.
func (w *VectorWind) scalarOutput(data *sparse.DenseArray, l *meta.Layout, dims []string, m meta.FieldMeta) (*api.Variable, error) {
	restored, err := w.core.RestoreScalar(data, l)
	if err != nil {
		return nil, err
	}
	return wrapVariable(restored, dims, m)
}

func wrapVariable(data *sparse.DenseArray, dims []string, m meta.FieldMeta) (*api.Variable, error) {
	keys := []string{}
	vals := map[string]interface{}{}
	for _, kv := range [][2]string{
		{"units", m.Units},
		{"standard_name", m.StandardName},
		{"long_name", m.LongName},
	} {
		if kv[1] != "" {
			keys = append(keys, kv[0])
			vals[kv[0]] = kv[1]
		}
	}
	attrs, err := util.NewOrderedMap(keys, vals)
	if err != nil {
		return nil, err
	}
	return &api.Variable{
		Values:     nestedFromDense(data),
		Dimensions: append([]string(nil), dims...),
		Attributes: attrs,
	}, nil
}

func indexOf(dims []string, name string) int {
	for i, d := range dims {
		if d == name {
			return i
		}
	}
	return -1
}

func findDim(dims, candidates []string, what string) (int, string, error) {
	found := -1
	for i, d := range dims {
		for _, name := range candidates {
			if strings.EqualFold(d, name) {
				if found >= 0 {
					return 0, "", fmt.Errorf("%w: both %q and %q look like %s dimensions",
						windspharm.ErrGridNotFound, dims[found], d, what)
				}
				found = i
				break
			}
		}
	}
	if found < 0 {
		return 0, "", fmt.Errorf("%w: no %s dimension in %v", windspharm.ErrGridNotFound, what, dims)
	}
	return found, dims[found], nil
}

// denseFromValues flattens the nested slices a netCDF read produces into a
// dense array. Any numeric element type is accepted.
func denseFromValues(values interface{}) (*sparse.DenseArray, error) {
	shape, err := valueShape(values)
	if err != nil {
		return nil, err
	}
	out := sparse.ZerosDense(shape...)
	i := 0
	if err := flattenInto(reflect.ValueOf(values), shape, out.Elements, &i); err != nil {
		return nil, err
	}
	return out, nil
}

func valueShape(values interface{}) ([]int, error) {
	shape := []int{}
	rv := reflect.ValueOf(values)
	for rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Len() == 0 {
			return nil, fmt.Errorf("%w: empty dimension", windspharm.ErrContainerType)
		}
		shape = append(shape, rv.Len())
		rv = rv.Index(0)
	}
	if !isNumeric(rv.Kind()) {
		return nil, fmt.Errorf("%w: element type %s is not numeric", windspharm.ErrContainerType, rv.Kind())
	}
	return shape, nil
}

// flattenInto walks the nested slices in row-major order, checking every
// level against the shape inferred from the first element so ragged values
// are rejected rather than zero filled.
func flattenInto(rv reflect.Value, shape []int, dst []float64, i *int) error {
	if len(shape) > 0 {
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return fmt.Errorf("%w: ragged variable values", windspharm.ErrContainerType)
		}
		if rv.Len() != shape[0] {
			return fmt.Errorf("%w: ragged variable values (%d elements where %d expected)",
				windspharm.ErrContainerType, rv.Len(), shape[0])
		}
		for j := 0; j < rv.Len(); j++ {
			if err := flattenInto(rv.Index(j), shape[1:], dst, i); err != nil {
				return err
			}
		}
		return nil
	}
	if !isNumeric(rv.Kind()) {
		return fmt.Errorf("%w: element type %s is not numeric", windspharm.ErrContainerType, rv.Kind())
	}
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		dst[*i] = rv.Float()
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		dst[*i] = float64(rv.Uint())
	default:
		dst[*i] = float64(rv.Int())
	}
	*i++
	return nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Float32, reflect.Float64,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func coordValues(values interface{}) ([]float64, error) {
	a, err := denseFromValues(values)
	if err != nil {
		return nil, err
	}
	if len(a.Shape) != 1 {
		return nil, fmt.Errorf("%w: coordinate variables must be one dimensional", windspharm.ErrRank)
	}
	return a.Elements, nil
}

// nestedFromDense rebuilds the nested []float64 slices of a variable from a
// dense array.
func nestedFromDense(a *sparse.DenseArray) interface{} {
	return buildNested(a, 0, 0)
}

func buildNested(a *sparse.DenseArray, dim, offset int) interface{} {
	if dim == len(a.Shape)-1 {
		out := make([]float64, a.Shape[dim])
		copy(out, a.Elements[offset:offset+a.Shape[dim]])
		return out
	}
	stride := 1
	for _, s := range a.Shape[dim+1:] {
		stride *= s
	}
	outer := reflect.MakeSlice(reflect.SliceOf(nestedType(len(a.Shape)-dim-1)), a.Shape[dim], a.Shape[dim])
	for j := 0; j < a.Shape[dim]; j++ {
		outer.Index(j).Set(reflect.ValueOf(buildNested(a, dim+1, offset+j*stride)))
	}
	return outer.Interface()
}

func nestedType(depth int) reflect.Type {
	t := reflect.TypeOf(float64(0))
	for i := 0; i < depth; i++ {
		t = reflect.SliceOf(t)
	}
	return t
}
