package units

type MicrogramsPerCubicMeter float64
type PerCubicCentimeter float64
type PerCubicFoot float64
type Micrometers float64

// CubicCentimetersPerCubicFoot is the volumetric conversion constant used
// by downstream aggregation: 1 ft³ = 28,316.8 cm³.
const CubicCentimetersPerCubicFoot = 28316.8

// PerCubicFoot converts a number concentration from the sensor's native
// per-cm³ to per-ft³.
func (c PerCubicCentimeter) PerCubicFoot() PerCubicFoot {
	return PerCubicFoot(float64(c) * CubicCentimetersPerCubicFoot)
}
