// Package spharmtest provides a deterministic in-memory transform for
// testing the diagnostics layers without the native spectral library.
package spharmtest

import (
	"fmt"

	"github.com/ctessum/sparse"

	"github.com/ajdawson/windspharm/spharm"
)

// Fake implements spharm.Transform with simple arithmetic stand-ins for the
// spectral operations: analysis and synthesis are copies, vorticity is u-v,
// divergence is u+v, the streamfunction is 2u, the velocity potential is 3v
// and the gradient of a field f is (f, -f). Tests can then assert exactly
// how a diagnostics layer sequences and signs transform results.
type Fake struct {
	GridVal spharm.Grid

	// Calls counts invocations by method name.
	Calls map[string]int
	// Truncations records the truncation passed to each analysis call.
	Truncations []int
	// Closed reports whether Close was called.
	Closed bool
}

type fakeSpec struct {
	data *sparse.DenseArray
}

// Factory builds Fake transforms and records the last one made, so tests
// can inspect call counts after the engine is built.
type Factory struct {
	Last *Fake
}

// New is a spharm.Factory.
func (f *Factory) New(g spharm.Grid) (spharm.Transform, error) {
	f.Last = &Fake{GridVal: g, Calls: map[string]int{}}
	return f.Last, nil
}

func (f *Fake) Grid() spharm.Grid { return f.GridVal }

func (f *Fake) Close() error {
	f.Closed = true
	return nil
}

// Latitudes returns evenly spaced global latitudes, north to south.
func (f *Fake) Latitudes() []float64 {
	nlat := f.GridVal.NLat
	lats := make([]float64, nlat)
	if nlat%2 == 1 {
		delta := 180 / float64(nlat-1)
		for i := range lats {
			lats[i] = 90 - float64(i)*delta
		}
	} else {
		delta := 180 / float64(nlat)
		for i := range lats {
			lats[i] = 90 - 0.5*delta - float64(i)*delta
		}
	}
	return lats
}

func (f *Fake) ToSpectral(field *sparse.DenseArray, truncation int) (spharm.Spec, error) {
	f.record("ToSpectral", truncation)
	return &fakeSpec{data: clone(field)}, nil
}

func (f *Fake) ToGrid(s spharm.Spec) (*sparse.DenseArray, error) {
	f.record("ToGrid", 0)
	fs, ok := s.(*fakeSpec)
	if !ok {
		return nil, fmt.Errorf("spharmtest: foreign spectral coefficients")
	}
	return clone(fs.data), nil
}

func (f *Fake) VorticityDivergence(u, v *sparse.DenseArray, truncation int) (spharm.Spec, spharm.Spec, error) {
	f.record("VorticityDivergence", truncation)
	vrt := clone(u)
	div := clone(u)
	for i := range vrt.Elements {
		vrt.Elements[i] = u.Elements[i] - v.Elements[i]
		div.Elements[i] = u.Elements[i] + v.Elements[i]
	}
	return &fakeSpec{data: vrt}, &fakeSpec{data: div}, nil
}

func (f *Fake) StreamfunctionPotential(u, v *sparse.DenseArray, truncation int) (*sparse.DenseArray, *sparse.DenseArray, error) {
	f.record("StreamfunctionPotential", truncation)
	psi := clone(u)
	chi := clone(v)
	for i := range psi.Elements {
		psi.Elements[i] = 2 * u.Elements[i]
		chi.Elements[i] = 3 * v.Elements[i]
	}
	return psi, chi, nil
}

func (f *Fake) Gradient(s spharm.Spec) (*sparse.DenseArray, *sparse.DenseArray, error) {
	f.record("Gradient", 0)
	fs, ok := s.(*fakeSpec)
	if !ok {
		return nil, nil, fmt.Errorf("spharmtest: foreign spectral coefficients")
	}
	zonal := clone(fs.data)
	merid := clone(fs.data)
	for i := range merid.Elements {
		merid.Elements[i] = -merid.Elements[i]
	}
	return zonal, merid, nil
}

func (f *Fake) record(method string, truncation int) {
	f.Calls[method]++
	f.Truncations = append(f.Truncations, truncation)
}

func clone(a *sparse.DenseArray) *sparse.DenseArray {
	out := sparse.ZerosDense(a.Shape...)
	copy(out.Elements, a.Elements)
	return out
}

// RegularLatitudes returns evenly spaced global latitudes for nlat points,
// north to south, matching what a real transform would report.
func RegularLatitudes(nlat int) []float64 {
	f := &Fake{GridVal: spharm.Grid{NLat: nlat}}
	return f.Latitudes()
}
