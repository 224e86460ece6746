// Package nc reads and writes wind fields with the C netCDF library. A
// Dataset loads variables into field values, so all diagnostics run through
// the field front end, and WriteField saves any field (a diagnostic result
// included) back to disk.
package nc

import (
	"fmt"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/ajdawson/windspharm"
	"github.com/ajdawson/windspharm/field"
	"github.com/ajdawson/windspharm/standard"
	"github.com/ctessum/sparse"
)

func init() {
	windspharm.RegisterInterface(windspharm.Interface{
		Name:        "nc",
		Container:   "netCDF files",
		Description: "wind fields read from netCDF files with the C library",
	})
}

// Dataset is an open netCDF file.
type Dataset struct {
	ds netcdf.Dataset
}

// Open opens a netCDF file read-only.
func Open(path string) (*Dataset, error) {
	ds, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open netCDF file: %w", err)
	}
	return &Dataset{ds: ds}, nil
}

// Close closes the underlying file.
func (d *Dataset) Close() error { return d.ds.Close() }

// VectorWind reads the named wind component variables and builds a
// diagnostics engine on them.
func (d *Dataset) VectorWind(uName, vName string, opts ...standard.Option) (*field.VectorWind, error) {
	u, err := d.ReadField(uName)
	if err != nil {
		return nil, err
	}
	v, err := d.ReadField(vName)
	if err != nil {
		return nil, err
	}
	return field.NewVectorWind(u, v, opts...)
}

// ReadField reads a variable and its coordinate variables into a field.
// Each dimension with a variable of the same name gets coordinate values.
func (d *Dataset) ReadField(name string) (*field.Field, error) {
	v, err := d.ds.Var(name)
	if err != nil {
		return nil, fmt.Errorf("%w: variable %q: %v", windspharm.ErrGridNotFound, name, err)
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions of %q: %w", name, err)
	}
	dimNames := make([]string, len(dims))
	shape := make([]int, len(dims))
	for i, dim := range dims {
		if dimNames[i], err = dim.Name(); err != nil {
			return nil, fmt.Errorf("failed to get dimension name: %w", err)
		}
		n, err := dim.Len()
		if err != nil {
			return nil, fmt.Errorf("failed to get length of dimension %q: %w", dimNames[i], err)
		}
		shape[i] = int(n)
	}
	flat, err := readFloat64Var(v, shape)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}
	coords := map[string][]float64{}
	for i, dn := range dimNames {
		cv, err := d.ds.Var(dn)
		if err != nil {
			continue
		}
		vals, err := readFloat64Var(cv, []int{shape[i]})
		if err != nil {
			continue
		}
		coords[dn] = vals
	}
	data := sparse.ZerosDense(shape...)
	copy(data.Elements, flat)
	return field.New(name, data, dimNames, coords)
}

// WriteField writes a field to a new netCDF file, with one coordinate
// variable per dimension that has coordinate values.
func WriteField(path string, f *field.Field) error {
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = ds.Close() }()

	ncDims := make([]netcdf.Dim, len(f.Dims))
	for i, dn := range f.Dims {
		if ncDims[i], err = ds.AddDim(dn, uint64(f.Data.Shape[i])); err != nil {
			return fmt.Errorf("failed to add dimension %q: %w", dn, err)
		}
	}
	for i, dn := range f.Dims {
		vals, ok := f.Coords[dn]
		if !ok {
			continue
		}
		cv, err := ds.AddVar(dn, netcdf.DOUBLE, []netcdf.Dim{ncDims[i]})
		if err != nil {
			return fmt.Errorf("failed to add coordinate %q: %w", dn, err)
		}
		if err := cv.WriteFloat64s(vals); err != nil {
			return fmt.Errorf("failed to write coordinate %q: %w", dn, err)
		}
	}
	name := f.Name
	if name == "" {
		name = "data"
	}
	dv, err := ds.AddVar(name, netcdf.DOUBLE, ncDims)
	if err != nil {
		return fmt.Errorf("failed to add variable %q: %w", name, err)
	}
	if err := dv.WriteFloat64s(f.Data.Elements); err != nil {
		return fmt.Errorf("failed to write variable %q: %w", name, err)
	}
	return nil
}

// readFloat64Var reads a whole variable as float64, whatever its on-disk
// numeric type.
func readFloat64Var(v netcdf.Var, shape []int) ([]float64, error) {
	total := 1
	for _, s := range shape {
		total *= s
	}
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, total)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, total)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.INT:
		tmp := make([]int32, total)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.SHORT:
		tmp := make([]int16, total)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
}
