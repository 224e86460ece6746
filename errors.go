package windspharm

import "errors"

// Validation failures are reported by wrapping one of these sentinel errors,
// so callers can classify them with errors.Is while still receiving a message
// naming the violated precondition.
var (
	// ErrMissingValues reports NaN or fill values in a wind component or
	// scalar field. Missing values are never permitted.
	ErrMissingValues = errors.New("missing values are not allowed")

	// ErrShapeMismatch reports u and v components with different shapes.
	ErrShapeMismatch = errors.New("u and v must be the same shape")

	// ErrRank reports an input field that is not rank 2 or rank 3.
	ErrRank = errors.New("fields must be rank 2 or rank 3 arrays")

	// ErrInvalidGrid reports an unrecognized grid type, a latitude
	// coordinate matching neither the regular nor the Gaussian template, or
	// grid dimensions too small for the spectral transform.
	ErrInvalidGrid = errors.New("invalid grid")

	// ErrDimensionMismatch reports labeled u and v inputs that disagree on
	// dimension names or coordinate values.
	ErrDimensionMismatch = errors.New("u and v must have the same dimension coordinates")

	// ErrGridNotFound reports that a latitude or longitude dimension could
	// not be uniquely identified in a labeled input.
	ErrGridNotFound = errors.New("latitude-longitude grid not found")

	// ErrIncompatibleField reports a scalar field whose latitude-longitude
	// extents do not match the grid of the wind components.
	ErrIncompatibleField = errors.New("scalar field is not compatible with the grid")

	// ErrInvalidParameter reports a numeric parameter outside its valid
	// range, such as a NaN angular velocity.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrContainerType reports an input container of the wrong kind for a
	// front end, or one holding an unsupported element type.
	ErrContainerType = errors.New("unsupported container type")
)
