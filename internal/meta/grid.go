package meta

import (
	"fmt"
	"math"

	"github.com/ajdawson/windspharm"
	"github.com/ajdawson/windspharm/spharm"
)

// gridTolerance is the maximum difference allowed between supplied and
// reference latitudes. It must be much smaller than any expected grid
// spacing.
const gridTolerance = 5e-4

// InspectGridType determines whether a set of latitude values describes a
// regular (evenly spaced, global) or Gaussian grid. Comparisons use absolute
// values so both north-to-south and south-to-north orderings are accepted.
// The gaussRef function supplies reference Gaussian latitudes; a nil value
// uses the registered transform implementation.
func InspectGridType(lats []float64, gaussRef func(int) ([]float64, error)) (spharm.GridType, error) {
	nlat := len(lats)
	if nlat < 3 {
		return "", fmt.Errorf("%w: need at least 3 latitudes (got %d)", windspharm.ErrInvalidGrid, nlat)
	}
	if gaussRef == nil {
		gaussRef = spharm.GaussianLatitudes
	}
	d0 := math.Abs(lats[1] - lats[0])
	equallySpaced := true
	for i := 2; i < nlat; i++ {
		if math.Abs(math.Abs(lats[i]-lats[i-1])-d0) > gridTolerance {
			equallySpaced = false
			break
		}
	}
	if !equallySpaced {
		// unevenly spaced latitudes might be Gaussian
		ref, err := gaussRef(nlat)
		if err != nil {
			return "", err
		}
		if !matchesAbs(lats, ref) {
			return "", fmt.Errorf("%w: latitudes are unevenly spaced but are not Gaussian",
				windspharm.ErrInvalidGrid)
		}
		return spharm.Gaussian, nil
	}
	ref := make([]float64, nlat)
	if nlat%2 == 1 {
		// odd number of latitudes includes the poles
		delta := 180 / float64(nlat-1)
		for i := range ref {
			ref[i] = 90 - float64(i)*delta
		}
	} else {
		// even number of latitudes is offset half a cell from the poles
		delta := 180 / float64(nlat)
		for i := range ref {
			ref[i] = 90 - 0.5*delta - float64(i)*delta
		}
	}
	if !matchesAbs(lats, ref) {
		return "", fmt.Errorf("%w: equally-spaced latitudes are not global", windspharm.ErrInvalidGrid)
	}
	return spharm.Regular, nil
}

func matchesAbs(lats, ref []float64) bool {
	for i := range lats {
		if math.Abs(math.Abs(lats[i])-math.Abs(ref[i])) > gridTolerance {
			return false
		}
	}
	return true
}
