// Package field implements vector wind diagnostics on self-describing
// fields: numeric arrays bundled with named dimensions, coordinate values
// and descriptive attributes. Latitude and longitude are located by
// dimension name and coordinate units, wind components are converted to
// metres per second when given in other speed units, and every diagnostic
// carries coordinates and metadata describing what it is.
package field

import (
	"fmt"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
	"go.uber.org/zap"

	"github.com/ajdawson/windspharm"
)

var logger = zap.Must(zap.NewProduction()).Sugar()

// SetLogger replaces the package logger. Passing nil silences it.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	logger = l
}

// Field is a numeric array with named dimensions, per-dimension coordinate
// values and descriptive attributes.
type Field struct {
	Name         string
	Units        string
	StandardName string
	LongName     string
	Dims         []string
	Coords       map[string][]float64
	Data         *sparse.DenseArray
}

// New builds a field, checking that the dimension names and coordinate
// values are consistent with the data shape. Coordinates are optional per
// dimension but must match the dimension length when present.
func New(name string, data *sparse.DenseArray, dims []string, coords map[string][]float64) (*Field, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: field %q has no data", windspharm.ErrDimensionMismatch, name)
	}
	if len(dims) != len(data.Shape) {
		return nil, fmt.Errorf("%w: field %q has %d dimension names for a rank %d array",
			windspharm.ErrDimensionMismatch, name, len(dims), len(data.Shape))
	}
	for i, d := range dims {
		if vals, ok := coords[d]; ok && len(vals) != data.Shape[i] {
			return nil, fmt.Errorf("%w: coordinate %q has %d values for a dimension of length %d",
				windspharm.ErrDimensionMismatch, d, len(vals), data.Shape[i])
		}
	}
	f := &Field{Name: name, Dims: append([]string(nil), dims...), Coords: map[string][]float64{}, Data: data}
	for k, v := range coords {
		f.Coords[k] = append([]float64(nil), v...)
	}
	return f, nil
}

// Copy returns a deep copy of the field.
func (f *Field) Copy() *Field {
	data := sparse.ZerosDense(f.Data.Shape...)
	copy(data.Elements, f.Data.Elements)
	out, _ := New(f.Name, data, f.Dims, f.Coords)
	out.Units = f.Units
	out.StandardName = f.StandardName
	out.LongName = f.LongName
	return out
}

var (
	latNames = []string{"latitude", "lat", "y"}
	lonNames = []string{"longitude", "lon", "x"}
)

// LatDim locates the latitude dimension by name, returning its position and
// coordinate values.
func (f *Field) LatDim() (int, []float64, error) {
	return f.findDim(latNames, "latitude")
}

// LonDim locates the longitude dimension by name, returning its position and
// coordinate values.
func (f *Field) LonDim() (int, []float64, error) {
	return f.findDim(lonNames, "longitude")
}

func (f *Field) findDim(candidates []string, what string) (int, []float64, error) {
	found := -1
	for i, d := range f.Dims {
		for _, name := range candidates {
			if strings.EqualFold(d, name) {
				if found >= 0 {
					return 0, nil, fmt.Errorf("%w: both %q and %q look like %s dimensions",
						windspharm.ErrGridNotFound, f.Dims[found], d, what)
				}
				found = i
				break
			}
		}
	}
	if found < 0 {
		return 0, nil, fmt.Errorf("%w: no %s dimension in %v", windspharm.ErrGridNotFound, what, f.Dims)
	}
	vals, ok := f.Coords[f.Dims[found]]
	if !ok {
		return 0, nil, fmt.Errorf("%w: dimension %q has no coordinate values",
			windspharm.ErrGridNotFound, f.Dims[found])
	}
	return found, vals, nil
}

// metresPerSecond is the unit all wind components are converted to before
// analysis.
var metresPerSecond = unit.Dimensions{unit.LengthDim: 1, unit.TimeDim: -1}

// speedUnits maps recognized speed unit spellings to their value in metres
// per second.
var speedUnits = map[string]*unit.Unit{
	"m s**-1":  unit.New(1, metresPerSecond),
	"m s-1":    unit.New(1, metresPerSecond),
	"m/s":      unit.New(1, metresPerSecond),
	"cm s**-1": unit.New(0.01, metresPerSecond),
	"cm/s":     unit.New(0.01, metresPerSecond),
	"km h**-1": unit.New(1000.0/3600.0, metresPerSecond),
	"km/h":     unit.New(1000.0/3600.0, metresPerSecond),
	"knots":    unit.New(0.514444, metresPerSecond),
	"kt":       unit.New(0.514444, metresPerSecond),
}

// toMetresPerSecond converts the field's data to metres per second when its
// units are a recognized speed unit. Empty units are assumed to already be
// metres per second. Unrecognized units are an error.
func (f *Field) toMetresPerSecond() (*Field, error) {
	if f.Units == "" {
		return f, nil
	}
	scale, ok := speedUnits[strings.ToLower(strings.TrimSpace(f.Units))]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported wind units %q", windspharm.ErrInvalidParameter, f.Units)
	}
	factor := scale.Value()
	if factor == 1 {
		return f, nil
	}
	logger.Warnw("converting wind component units", "field", f.Name, "from", f.Units, "to", "m s**-1")
	out := f.Copy()
	for i := range out.Data.Elements {
		out.Data.Elements[i] *= factor
	}
	out.Units = "m s**-1"
	return out, nil
}
