package meta

import "fmt"

// FieldMeta carries the descriptive metadata attached to a computed
// quantity by the metadata-aware front ends.
type FieldMeta struct {
	Name         string
	Units        string
	StandardName string
	LongName     string
}

// Canonical metadata for each diagnostic quantity, following the CF
// vocabulary where a standard name exists.
var (
	Speed = FieldMeta{
		Name: "speed", Units: "m s**-1",
		StandardName: "wind_speed", LongName: "wind_speed",
	}
	Vorticity = FieldMeta{
		Name: "vrt", Units: "s**-1",
		StandardName: "atmosphere_relative_vorticity", LongName: "relative_vorticity",
	}
	Divergence = FieldMeta{
		Name: "div", Units: "s**-1",
		StandardName: "divergence_of_wind", LongName: "horizontal_divergence",
	}
	PlanetaryVorticity = FieldMeta{
		Name: "f", Units: "s**-1",
		StandardName: "coriolis_parameter", LongName: "planetary_vorticity (coriolis parameter)",
	}
	AbsoluteVorticity = FieldMeta{
		Name: "absvrt", Units: "s**-1",
		StandardName: "atmosphere_absolute_vorticity", LongName: "absolute_vorticity (sum of relative and planetary)",
	}
	Streamfunction = FieldMeta{
		Name: "psi", Units: "m**2 s**-1",
		StandardName: "atmosphere_horizontal_streamfunction", LongName: "streamfunction",
	}
	VelocityPotential = FieldMeta{
		Name: "chi", Units: "m**2 s**-1",
		StandardName: "atmosphere_horizontal_velocity_potential", LongName: "velocity_potential",
	}
	IrrotationalEastward = FieldMeta{
		Name: "u_chi", Units: "m s**-1", LongName: "irrotational_eastward_wind",
	}
	IrrotationalNorthward = FieldMeta{
		Name: "v_chi", Units: "m s**-1", LongName: "irrotational_northward_wind",
	}
	NonDivergentEastward = FieldMeta{
		Name: "u_psi", Units: "m s**-1", LongName: "non_divergent_eastward_wind",
	}
	NonDivergentNorthward = FieldMeta{
		Name: "v_psi", Units: "m s**-1", LongName: "non_divergent_northward_wind",
	}
)

// GradientMeta builds metadata for the gradient components of a named
// scalar field.
func GradientMeta(base string) (zonal, meridional FieldMeta) {
	if base == "" {
		base = "field"
	}
	zonal = FieldMeta{
		Name:     fmt.Sprintf("zonal_gradient_of_%s", base),
		LongName: fmt.Sprintf("zonal gradient of %s", base),
	}
	meridional = FieldMeta{
		Name:     fmt.Sprintf("meridional_gradient_of_%s", base),
		LongName: fmt.Sprintf("meridional gradient of %s", base),
	}
	return zonal, meridional
}

// TruncatedName names a spectrally truncated copy of a field.
func TruncatedName(base string, truncation int) string {
	if base == "" {
		base = "field"
	}
	return fmt.Sprintf("%s_T%d", base, truncation)
}
