// Package windspharm computes vector wind diagnostics (vorticity,
// divergence, streamfunction, velocity potential, Helmholtz decomposition,
// gradients and spectral truncation) for wind fields on global
// latitude-longitude grids using spherical harmonics.
//
// The spherical harmonic transform itself is delegated to the native SHTns
// library through the spharm/shtns bindings; this module sequences the
// transform calls and reconciles labeled multi-dimensional data with the
// (latitude, longitude, fields) layout the transform requires.
//
// Four front ends expose the same diagnostics for different container
// conventions:
//
//   - standard: raw *sparse.DenseArray fields with an explicit grid type
//   - field: in-memory labeled fields with named dimensions, coordinates
//     and attributes, including physical unit normalization of the inputs
//   - native: variables from the pure-Go netCDF reader
//     (github.com/batchatco/go-native-netcdf)
//   - nc: variables from an open libnetcdf dataset (github.com/fhs/go-netcdf)
//
// The labeled front ends auto-detect the grid type from the latitude
// coordinate, accept any dimension ordering, and return results with the
// input's ordering and descriptive metadata attached.
package windspharm

// Version is the module version reported by the HTTP front end.
const Version = "2.0.0"
