package meta

import (
	"fmt"

	"github.com/ctessum/sparse"

	"github.com/ajdawson/windspharm"
	"github.com/ajdawson/windspharm/spharm"
	"github.com/ajdawson/windspharm/standard"
)

// Source describes a wind field the way a metadata front end found it: the
// raw component arrays, which dimensions are latitude and longitude, and the
// latitude values themselves.
type Source struct {
	U, V      *sparse.DenseArray
	LatAxis   int
	LonAxis   int
	Latitudes []float64
	// Options are passed through to the diagnostics engine.
	Options []standard.Option
	// GaussianReference overrides the reference Gaussian latitudes used
	// during grid detection. Nil uses the registered transform.
	GaussianReference func(int) ([]float64, error)
}

// Layout records the reconciliation applied to one array so the matching
// output can be mapped back: the axis permutation, the shape before the
// trailing dimensions were collapsed, and whether latitude was reversed.
type Layout struct {
	apiorder []int
	reorder  []int
	midShape []int
	flipLat  bool
}

// Core adapts a Source to the diagnostics engine and maps results back to
// the source layout. Every front end delegates the dimension bookkeeping
// here: latitude is reversed to run north to south when needed, latitude and
// longitude are moved to the front, trailing dimensions are collapsed, and
// Restore applies the exact inverse so outputs line up with the inputs.
// Scalar fields passed to Gradient and Truncate carry their own layout,
// reconciled per call by PrepScalar.
type Core struct {
	VW       *standard.VectorWind
	GridType spharm.GridType

	layout Layout
}

// NewCore detects the grid, canonicalizes the wind components and builds the
// diagnostics engine.
func NewCore(src Source) (*Core, error) {
	if src.U == nil || src.V == nil {
		return nil, fmt.Errorf("%w: both wind components are required", windspharm.ErrShapeMismatch)
	}
	ndim := len(src.U.Shape)
	if src.LatAxis < 0 || src.LatAxis >= ndim || len(src.Latitudes) != src.U.Shape[src.LatAxis] {
		return nil, fmt.Errorf("%w: %d latitude values for a dimension of length %d",
			windspharm.ErrDimensionMismatch, len(src.Latitudes), src.U.Shape[src.LatAxis])
	}
	gridtype, err := InspectGridType(src.Latitudes, src.GaussianReference)
	if err != nil {
		return nil, err
	}
	c := &Core{GridType: gridtype}
	ascending := src.Latitudes[0] < src.Latitudes[len(src.Latitudes)-1]
	u, layout, err := canonicalize(src.U, src.LatAxis, src.LonAxis, ascending)
	if err != nil {
		return nil, err
	}
	v, _, err := canonicalize(src.V, src.LatAxis, src.LonAxis, ascending)
	if err != nil {
		return nil, err
	}
	c.layout = layout
	opts := append([]standard.Option{standard.GridType(gridtype)}, src.Options...)
	if c.VW, err = standard.New(u, v, opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases the underlying diagnostics engine.
func (c *Core) Close() error { return c.VW.Close() }

// LatAxis and LonAxis return the positions of latitude and longitude in the
// source layout.
func (c *Core) LatAxis() int { return c.layout.apiorder[0] }
func (c *Core) LonAxis() int { return c.layout.apiorder[1] }

// PrepScalar canonicalizes a scalar field for Gradient or Truncate. The
// field carries its own axis positions and may have trailing dimensions the
// wind components do not, as long as its grid extents match the wind's. The
// returned Layout maps the matching output back via RestoreScalar.
func (c *Core) PrepScalar(field *sparse.DenseArray, latAxis, lonAxis int, ascending bool) (*sparse.DenseArray, *Layout, error) {
	if field == nil {
		return nil, nil, fmt.Errorf("%w: a scalar field is required", windspharm.ErrIncompatibleField)
	}
	ndim := len(field.Shape)
	if latAxis < 0 || latAxis >= ndim || lonAxis < 0 || lonAxis >= ndim {
		return nil, nil, fmt.Errorf("%w: latitude or longitude axis out of range for rank %d",
			windspharm.ErrIncompatibleField, ndim)
	}
	grid := c.VW.Grid()
	if field.Shape[latAxis] != grid.NLat || field.Shape[lonAxis] != grid.NLon {
		return nil, nil, fmt.Errorf("%w: field grid is %dx%d, wind grid is %dx%d",
			windspharm.ErrIncompatibleField, field.Shape[latAxis], field.Shape[lonAxis], grid.NLat, grid.NLon)
	}
	out, layout, err := canonicalize(field, latAxis, lonAxis, ascending)
	if err != nil {
		return nil, nil, err
	}
	return out, &layout, nil
}

// RestoreScalar maps a Gradient or Truncate output back to the layout the
// scalar field arrived in.
func (c *Core) RestoreScalar(out *sparse.DenseArray, l *Layout) (*sparse.DenseArray, error) {
	return restore(out, l)
}

// Restore maps an engine output back to the source wind layout, undoing the
// flattening, the dimension permutation and any latitude reversal.
func (c *Core) Restore(out *sparse.DenseArray) (*sparse.DenseArray, error) {
	return restore(out, &c.layout)
}

// canonicalize reverses an ascending latitude axis, moves latitude and
// longitude to the front and collapses the trailing dimensions.
func canonicalize(a *sparse.DenseArray, latAxis, lonAxis int, ascending bool) (*sparse.DenseArray, Layout, error) {
	var l Layout
	if ascending {
		l.flipLat = true
		a = ReverseAxis(a, latAxis)
	}
	var err error
	if l.apiorder, l.reorder, err = APIOrder(len(a.Shape), latAxis, lonAxis); err != nil {
		return nil, l, err
	}
	a = Transpose(a, l.apiorder)
	l.midShape = append([]int(nil), a.Shape...)
	a, err = To3D(a)
	return a, l, err
}

func restore(out *sparse.DenseArray, l *Layout) (*sparse.DenseArray, error) {
	out, err := Reshape(out, l.midShape)
	if err != nil {
		return nil, err
	}
	out = Transpose(out, l.reorder)
	if l.flipLat {
		out = ReverseAxis(out, l.apiorder[0])
	}
	return out, nil
}
