// Package spharm defines the boundary to the external spherical harmonic
// transform engine. The engine itself (associated Legendre functions,
// Gaussian quadrature, the forward and inverse transforms) lives in a native
// library; this package only describes the grid and the operations the
// diagnostics layer consumes.
package spharm

import (
	"fmt"

	"github.com/ctessum/sparse"

	"github.com/ajdawson/windspharm"
)

// GridType identifies the latitude point distribution of a global grid.
type GridType string

const (
	// Regular is an evenly-spaced latitude grid, pole-to-pole when the
	// number of latitudes is odd, offset by half a grid cell when even.
	Regular GridType = "regular"
	// Gaussian is a grid whose latitudes are roots of a Legendre
	// polynomial, paired with quadrature weights.
	Gaussian GridType = "gaussian"
)

// DefaultTruncation selects the grid's natural maximum spectral resolution.
// Any negative truncation value has the same meaning.
const DefaultTruncation = -1

// DefaultRadius is the approximate mean spherical Earth radius in metres.
const DefaultRadius = 6.3712e6

// Grid describes a global latitude-longitude grid for the transform.
// Latitudes run north to south and longitudes west to east.
type Grid struct {
	NLon   int
	NLat   int
	Type   GridType
	Radius float64
}

// NewGrid validates and returns a grid descriptor. The transform requires at
// least 4 longitudes and 3 latitudes, one of the two canonical grid types,
// and a positive sphere radius.
func NewGrid(nlon, nlat int, gridtype GridType, radius float64) (Grid, error) {
	if gridtype != Regular && gridtype != Gaussian {
		return Grid{}, fmt.Errorf("%w: unknown grid type %q", windspharm.ErrInvalidGrid, string(gridtype))
	}
	if nlon < 4 || nlat < 3 {
		return Grid{}, fmt.Errorf("%w: nlon must be >= 4 and nlat must be >= 3 (got %d x %d)",
			windspharm.ErrInvalidGrid, nlon, nlat)
	}
	if radius <= 0 {
		return Grid{}, fmt.Errorf("%w: sphere radius must be positive (got %g)",
			windspharm.ErrInvalidGrid, radius)
	}
	return Grid{NLon: nlon, NLat: nlat, Type: gridtype, Radius: radius}, nil
}

// Spec holds spectral coefficients. The coefficients are produced and
// consumed by the same Transform and are opaque to the diagnostics layer,
// which only passes them between transform calls.
type Spec interface{}

// Transform is the consumed interface of the external engine. Spatial fields
// are *sparse.DenseArray values shaped (nlat, nlon) or (nlat, nlon, nfields)
// with latitude north to south. A negative truncation means the grid's
// natural maximum resolution.
//
// Implementations are assumed numerically exact up to floating point
// precision; the diagnostics layer only sequences these calls and interprets
// signs and orientations.
type Transform interface {
	// Grid returns the descriptor the transform was built for.
	Grid() Grid

	// ToSpectral computes spectral coefficients of a scalar field,
	// truncated at the given total wavenumber.
	ToSpectral(field *sparse.DenseArray, truncation int) (Spec, error)

	// ToGrid synthesizes a scalar field from spectral coefficients.
	ToGrid(s Spec) (*sparse.DenseArray, error)

	// VorticityDivergence computes spectral relative vorticity and
	// divergence from the eastward and northward wind components.
	VorticityDivergence(u, v *sparse.DenseArray, truncation int) (vrt, div Spec, err error)

	// StreamfunctionPotential computes the streamfunction and velocity
	// potential grids of the wind field.
	StreamfunctionPotential(u, v *sparse.DenseArray, truncation int) (psi, chi *sparse.DenseArray, err error)

	// Gradient computes the zonal and meridional components of the vector
	// gradient of a spectrally-represented scalar field.
	Gradient(s Spec) (zonal, meridional *sparse.DenseArray, err error)

	// Latitudes returns the grid's latitude points in degrees, north to
	// south.
	Latitudes() []float64

	// Close releases the native resources owned by the transform.
	Close() error
}

// Factory builds a transform for a grid. The diagnostics layer acquires one
// transform per wind field at construction and owns it until Close.
type Factory func(Grid) (Transform, error)

var (
	defaultFactory Factory
	gaussianRef    func(nlat int) (lats, weights []float64, err error)
)

// RegisterDefault installs the process-wide default transform factory and
// the reference Gaussian latitude and quadrature weight generator used for
// grid type detection. A transform implementation calls this from init;
// importing it for side effects is enough to wire the whole module.
func RegisterDefault(f Factory, gauss func(nlat int) (lats, weights []float64, err error)) {
	defaultFactory = f
	gaussianRef = gauss
}

// Default returns the registered default factory, or an error when no
// transform implementation has been linked in.
func Default() (Factory, error) {
	if defaultFactory == nil {
		return nil, fmt.Errorf("%w: no spherical harmonic transform registered", windspharm.ErrInvalidGrid)
	}
	return defaultFactory, nil
}

// GaussianLatitudes returns the reference Gaussian latitudes for an nlat
// point grid, in degrees north to south, from the registered transform
// implementation.
func GaussianLatitudes(nlat int) ([]float64, error) {
	lats, _, err := GaussianLatitudesWeights(nlat)
	return lats, err
}

// GaussianLatitudesWeights returns the Gaussian latitudes for an nlat point
// grid together with the matching quadrature weights. Latitudes are in
// degrees north to south; the weights sum to 2.
func GaussianLatitudesWeights(nlat int) (lats, weights []float64, err error) {
	if gaussianRef == nil {
		return nil, nil, fmt.Errorf("%w: no spherical harmonic transform registered", windspharm.ErrInvalidGrid)
	}
	return gaussianRef(nlat)
}
