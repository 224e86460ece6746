// Package shtns binds the native SHTns spherical harmonic transform library
// (https://nschaeff.bitbucket.io/shtns/) to the spharm.Transform interface.
//
// SHTns owns everything spectral: associated Legendre functions, Gaussian
// nodes and quadrature weights, and the forward/inverse scalar and vector
// transforms. This package maps between the module's (nlat, nlon[, nfields])
// arrays and SHTns buffers, applies triangular truncation by zeroing
// coefficients above the requested total wavenumber, and fixes the sign and
// orientation conventions: latitude runs north to south, u is eastward and v
// northward, while SHTns works in colatitude.
package shtns

/*
#cgo LDFLAGS: -lshtns -lfftw3 -lm
#include <stdlib.h>
#include <complex.h>
#include <shtns.h>
*/
import "C"

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/ctessum/sparse"

	"github.com/ajdawson/windspharm"
	"github.com/ajdawson/windspharm/spharm"
)

// Transform wraps one SHTns configuration. It is bound to a single grid and
// owned by a single diagnostics engine; distinct instances are independent.
type Transform struct {
	cfg  C.shtns_cfg
	grid spharm.Grid
	lmax int
	// degree of each packed spectral mode, copied out of the configuration
	// so truncation does not touch native memory
	li []int
	// scratch buffers sized (nlat*nlon), reused across calls
	spatA, spatB []float64
}

// coeffs is the opaque spectral representation: one packed coefficient slab
// per trailing field, plus the grid shape needed to rebuild the output array.
type coeffs struct {
	slabs [][]complex128
	shape []int
}

// New builds a transform for the grid. The spectral resolution is triangular
// at nlat-1, matching the natural resolution of a global grid.
func New(g spharm.Grid) (spharm.Transform, error) {
	if _, err := spharm.NewGrid(g.NLon, g.NLat, g.Type, g.Radius); err != nil {
		return nil, err
	}
	lmax := g.NLat - 1
	mmax := lmax
	if g.NLon/2 < mmax {
		mmax = g.NLon / 2
	}
	cfg := C.shtns_create(C.int(lmax), C.int(mmax), 1, C.sht_orthonormal)
	if cfg == nil {
		return nil, fmt.Errorf("%w: shtns_create failed for lmax=%d mmax=%d",
			windspharm.ErrInvalidGrid, lmax, mmax)
	}
	var kind C.enum_shtns_type
	switch {
	case g.Type == spharm.Gaussian:
		kind = C.sht_gauss
	case g.NLat%2 == 1:
		// pole-inclusive equally spaced grid
		kind = C.sht_reg_poles
	default:
		// equally spaced grid offset by half a cell from the poles
		kind = C.sht_reg_fast
	}
	// SHT_PHI_CONTIGUOUS keeps the spatial layout latitude-major, matching
	// the (nlat, nlon) arrays used throughout this module.
	if C.shtns_set_grid(cfg, kind|C.SHT_PHI_CONTIGUOUS, 1e-10, C.int(g.NLat), C.int(g.NLon)) == 0 {
		C.shtns_destroy(cfg)
		return nil, fmt.Errorf("%w: shtns_set_grid rejected %d x %d %s grid",
			windspharm.ErrInvalidGrid, g.NLat, g.NLon, g.Type)
	}
	t := &Transform{
		cfg:   cfg,
		grid:  g,
		lmax:  lmax,
		li:    make([]int, int(cfg.nlm)),
		spatA: make([]float64, g.NLat*g.NLon),
		spatB: make([]float64, g.NLat*g.NLon),
	}
	nlm := int(cfg.nlm)
	lis := unsafe.Slice((*C.ushort)(unsafe.Pointer(cfg.li)), nlm)
	for i := 0; i < nlm; i++ {
		t.li[i] = int(lis[i])
	}
	return t, nil
}

// Grid returns the descriptor the transform was built for.
func (t *Transform) Grid() spharm.Grid { return t.grid }

// Close releases the native SHTns configuration. The transform must not be
// used afterwards.
func (t *Transform) Close() error {
	if t.cfg != nil {
		C.shtns_destroy(t.cfg)
		t.cfg = nil
	}
	return nil
}

// Latitudes returns the grid latitudes in degrees, north to south.
func (t *Transform) Latitudes() []float64 {
	nlat := t.grid.NLat
	ct := unsafe.Slice((*C.double)(unsafe.Pointer(t.cfg.ct)), nlat)
	lats := make([]float64, nlat)
	for i := 0; i < nlat; i++ {
		lats[i] = rad2deg(math.Asin(float64(ct[i])))
	}
	return lats
}

// ToSpectral analyzes a scalar field into spectral coefficients, applying
// triangular truncation when truncation >= 0.
func (t *Transform) ToSpectral(field *sparse.DenseArray, truncation int) (spharm.Spec, error) {
	if err := t.checkShape(field); err != nil {
		return nil, err
	}
	nt := fieldCount(field)
	c := &coeffs{slabs: make([][]complex128, nt), shape: append([]int(nil), field.Shape...)}
	for k := 0; k < nt; k++ {
		t.extract(field, k, t.spatA)
		qlm := make([]complex128, len(t.li))
		C.spat_to_SH(t.cfg, (*C.double)(&t.spatA[0]), cptr(qlm))
		t.truncate(qlm, truncation)
		c.slabs[k] = qlm
	}
	return c, nil
}

// ToGrid synthesizes a scalar field from spectral coefficients.
func (t *Transform) ToGrid(s spharm.Spec) (*sparse.DenseArray, error) {
	c, ok := s.(*coeffs)
	if !ok {
		return nil, fmt.Errorf("shtns: spectral coefficients from a different transform implementation")
	}
	out := sparse.ZerosDense(c.shape...)
	for k, qlm := range c.slabs {
		// synthesis works on a scratch copy: SHTns may clobber its input
		slab := append([]complex128(nil), qlm...)
		C.SH_to_spat(t.cfg, cptr(slab), (*C.double)(&t.spatA[0]))
		t.insert(out, k, t.spatA)
	}
	return out, nil
}

// VorticityDivergence computes spectral relative vorticity and divergence of
// the wind field. SHTns decomposes the field into spheroidal and toroidal
// parts; scaling by l(l+1)/r turns those into divergence and vorticity.
func (t *Transform) VorticityDivergence(u, v *sparse.DenseArray, truncation int) (spharm.Spec, spharm.Spec, error) {
	slm, tlm, err := t.sphtor(u, v)
	if err != nil {
		return nil, nil, err
	}
	nt := fieldCount(u)
	vrt := &coeffs{slabs: make([][]complex128, nt), shape: append([]int(nil), u.Shape...)}
	div := &coeffs{slabs: make([][]complex128, nt), shape: append([]int(nil), u.Shape...)}
	r := t.grid.Radius
	for k := 0; k < nt; k++ {
		vs := make([]complex128, len(t.li))
		ds := make([]complex128, len(t.li))
		for lm, l := range t.li {
			eig := float64(l) * float64(l+1)
			vs[lm] = tlm[k][lm] * complex(eig/r, 0)
			ds[lm] = slm[k][lm] * complex(-eig/r, 0)
		}
		t.truncate(vs, truncation)
		t.truncate(ds, truncation)
		vrt.slabs[k] = vs
		div.slabs[k] = ds
	}
	return vrt, div, nil
}

// StreamfunctionPotential computes the streamfunction and velocity potential
// grids of the wind field. In spectral space psi = -r*T and chi = r*S, where
// S and T are the spheroidal and toroidal coefficients of the wind.
func (t *Transform) StreamfunctionPotential(u, v *sparse.DenseArray, truncation int) (*sparse.DenseArray, *sparse.DenseArray, error) {
	slm, tlm, err := t.sphtor(u, v)
	if err != nil {
		return nil, nil, err
	}
	nt := fieldCount(u)
	psi := sparse.ZerosDense(u.Shape...)
	chi := sparse.ZerosDense(u.Shape...)
	r := t.grid.Radius
	for k := 0; k < nt; k++ {
		ps := make([]complex128, len(t.li))
		cs := make([]complex128, len(t.li))
		for lm := range t.li {
			ps[lm] = tlm[k][lm] * complex(-r, 0)
			cs[lm] = slm[k][lm] * complex(r, 0)
		}
		t.truncate(ps, truncation)
		t.truncate(cs, truncation)
		C.SH_to_spat(t.cfg, cptr(ps), (*C.double)(&t.spatA[0]))
		t.insert(psi, k, t.spatA)
		C.SH_to_spat(t.cfg, cptr(cs), (*C.double)(&t.spatA[0]))
		t.insert(chi, k, t.spatA)
	}
	return psi, chi, nil
}

// Gradient computes the zonal and meridional components of the vector
// gradient of a spectrally-represented scalar field.
func (t *Transform) Gradient(s spharm.Spec) (*sparse.DenseArray, *sparse.DenseArray, error) {
	c, ok := s.(*coeffs)
	if !ok {
		return nil, nil, fmt.Errorf("shtns: spectral coefficients from a different transform implementation")
	}
	zonal := sparse.ZerosDense(c.shape...)
	merid := sparse.ZerosDense(c.shape...)
	r := t.grid.Radius
	for k, qlm := range c.slabs {
		slab := append([]complex128(nil), qlm...)
		// SHsph_to_spat returns d/dtheta and 1/sin(theta) d/dphi;
		// colatitude increases southward, so the meridional component
		// changes sign.
		C.SHsph_to_spat(t.cfg, cptr(slab), (*C.double)(&t.spatA[0]), (*C.double)(&t.spatB[0]))
		n := len(t.spatA)
		for i := 0; i < n; i++ {
			t.spatB[i] /= r
			t.spatA[i] = -t.spatA[i] / r
		}
		t.insert(zonal, k, t.spatB)
		t.insert(merid, k, t.spatA)
	}
	return zonal, merid, nil
}

// sphtor runs the vector analysis, returning spheroidal and toroidal
// coefficient slabs per trailing field.
func (t *Transform) sphtor(u, v *sparse.DenseArray) ([][]complex128, [][]complex128, error) {
	if err := t.checkShape(u); err != nil {
		return nil, nil, err
	}
	if err := t.checkShape(v); err != nil {
		return nil, nil, err
	}
	nt := fieldCount(u)
	slm := make([][]complex128, nt)
	tlm := make([][]complex128, nt)
	for k := 0; k < nt; k++ {
		// theta points south: Vtheta = -v, Vphi = u
		t.extract(v, k, t.spatA)
		for i := range t.spatA {
			t.spatA[i] = -t.spatA[i]
		}
		t.extract(u, k, t.spatB)
		s := make([]complex128, len(t.li))
		tt := make([]complex128, len(t.li))
		C.spat_to_SHsphtor(t.cfg, (*C.double)(&t.spatA[0]), (*C.double)(&t.spatB[0]), cptr(s), cptr(tt))
		slm[k] = s
		tlm[k] = tt
	}
	return slm, tlm, nil
}

// truncate zeroes coefficients with total wavenumber above the limit.
func (t *Transform) truncate(qlm []complex128, truncation int) {
	if truncation < 0 || truncation >= t.lmax {
		return
	}
	for lm, l := range t.li {
		if l > truncation {
			qlm[lm] = 0
		}
	}
}

func (t *Transform) checkShape(a *sparse.DenseArray) error {
	if a == nil || len(a.Shape) < 2 || len(a.Shape) > 3 {
		return fmt.Errorf("%w: transform fields must be rank 2 or 3", windspharm.ErrRank)
	}
	if a.Shape[0] != t.grid.NLat || a.Shape[1] != t.grid.NLon {
		return fmt.Errorf("%w: field is %dx%d, grid is %dx%d", windspharm.ErrIncompatibleField,
			a.Shape[0], a.Shape[1], t.grid.NLat, t.grid.NLon)
	}
	return nil
}

// extract copies trailing field k into a flat (nlat*nlon) buffer.
func (t *Transform) extract(a *sparse.DenseArray, k int, buf []float64) {
	if len(a.Shape) == 2 {
		copy(buf, a.Elements)
		return
	}
	nt := a.Shape[2]
	for i := range buf {
		buf[i] = a.Elements[i*nt+k]
	}
}

// insert writes a flat (nlat*nlon) buffer back as trailing field k.
func (t *Transform) insert(a *sparse.DenseArray, k int, buf []float64) {
	if len(a.Shape) == 2 {
		copy(a.Elements, buf)
		return
	}
	nt := a.Shape[2]
	for i := range buf {
		a.Elements[i*nt+k] = buf[i]
	}
}

func fieldCount(a *sparse.DenseArray) int {
	if len(a.Shape) == 3 {
		return a.Shape[2]
	}
	return 1
}

func cptr(qlm []complex128) *C.complexdouble {
	return (*C.complexdouble)(unsafe.Pointer(&qlm[0]))
}

func rad2deg(r float64) float64 { return r * 180 / math.Pi }
