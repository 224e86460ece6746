package shtns

/*
#include <shtns.h>
*/
import "C"

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/ajdawson/windspharm"
	"github.com/ajdawson/windspharm/spharm"
)

func init() {
	spharm.RegisterDefault(New, GaussianLatitudesWeights)
}

// GaussianLatitudesWeights computes the nlat Gaussian latitudes in degrees,
// ordered north to south, together with the matching quadrature weights.
// The latitudes are the roots of the Legendre polynomial of degree nlat, as
// placed by the quadrature grid of the transform; the weights sum to 2.
func GaussianLatitudesWeights(nlat int) (lats, weights []float64, err error) {
	if nlat < 3 {
		return nil, nil, fmt.Errorf("%w: need at least 3 latitudes (got %d)", windspharm.ErrInvalidGrid, nlat)
	}
	cfg := C.shtns_create(C.int(nlat-1), 0, 1, C.sht_orthonormal)
	if cfg == nil {
		return nil, nil, fmt.Errorf("%w: shtns_create failed for nlat=%d", windspharm.ErrInvalidGrid, nlat)
	}
	defer C.shtns_destroy(cfg)
	if C.shtns_set_grid(cfg, C.sht_gauss|C.SHT_PHI_CONTIGUOUS, 1e-10, C.int(nlat), 4) == 0 {
		return nil, nil, fmt.Errorf("%w: shtns_set_grid rejected %d Gaussian latitudes", windspharm.ErrInvalidGrid, nlat)
	}
	ct := unsafe.Slice((*C.double)(unsafe.Pointer(cfg.ct)), nlat)
	lats = make([]float64, nlat)
	for i := 0; i < nlat; i++ {
		lats[i] = rad2deg(math.Asin(float64(ct[i])))
	}
	// shtns_gauss_wts fills the northern-hemisphere half; the weights are
	// symmetric about the equator.
	half := make([]C.double, (nlat+1)/2)
	n := int(C.shtns_gauss_wts(cfg, &half[0]))
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: no quadrature weights for nlat=%d", windspharm.ErrInvalidGrid, nlat)
	}
	weights = make([]float64, nlat)
	for i := 0; i < n; i++ {
		weights[i] = float64(half[i])
		weights[nlat-1-i] = float64(half[i])
	}
	return lats, weights, nil
}
