package telemetry

import (
	"particle-telemetry/sps30"
	"particle-telemetry/units"
)

// NumberConcentrations are the sensor's cumulative-to-cutoff number
// channels converted to per-ft³.
type NumberConcentrations struct {
	PM05 units.PerCubicFoot
	PM1  units.PerCubicFoot
	PM25 units.PerCubicFoot
	PM4  units.PerCubicFoot
	PM10 units.PerCubicFoot
}

// DifferentialBins are disjoint size bands between adjacent cutoffs,
// derived by subtracting converted channels. The sensor's staged binning
// occasionally yields a marginally decreasing series near the limit of
// detection, so every bin is clamped to zero rather than reporting a
// physically impossible negative count.
type DifferentialBins struct {
	From03To05 units.PerCubicFoot
	From05To1  units.PerCubicFoot
	From1To25  units.PerCubicFoot
	From25To4  units.PerCubicFoot
	From4To10  units.PerCubicFoot
}

// CumulativeCounts are "number at or above cutoff" counts derived by
// telescoping subtraction from the PM10 channel. The sensor's range ends
// at 10 µm, so the ≥10 count is pinned to zero.
type CumulativeCounts struct {
	AtLeast03 units.PerCubicFoot
	AtLeast05 units.PerCubicFoot
	AtLeast1  units.PerCubicFoot
	AtLeast4  units.PerCubicFoot
	AtLeast10 units.PerCubicFoot
}

// MassConcentrations pass through in the unit the sensor reports.
type MassConcentrations struct {
	PM1  units.MicrogramsPerCubicMeter
	PM25 units.MicrogramsPerCubicMeter
	PM4  units.MicrogramsPerCubicMeter
	PM10 units.MicrogramsPerCubicMeter
}

// ConvertedReading is derived from one measurement and consumed
// immediately; it is never retained across ticks.
type ConvertedReading struct {
	Number              NumberConcentrations
	Bins                DifferentialBins
	Cumulative          CumulativeCounts
	Mass                MassConcentrations
	TypicalParticleSize units.Micrometers

	// FirstReadingSuspect marks the first reading taken after a warm-up
	// ready-poll that timed out; whether such a reading is reliable is
	// unresolved in the sensor documentation. Not part of the wire
	// document.
	FirstReadingSuspect bool
}

// Convert derives bins, cumulative counts, and unit-converted number
// concentrations from one measurement. Pure: the same measurement always
// yields identical values.
func Convert(m *sps30.Measurement) *ConvertedReading {
	n := NumberConcentrations{
		PM05: m.NumberPM05.PerCubicFoot(),
		PM1:  m.NumberPM1.PerCubicFoot(),
		PM25: m.NumberPM25.PerCubicFoot(),
		PM4:  m.NumberPM4.PerCubicFoot(),
		PM10: m.NumberPM10.PerCubicFoot(),
	}

	bins := DifferentialBins{
		From03To05: clamp(n.PM05),
		From05To1:  clamp(n.PM1 - n.PM05),
		From1To25:  clamp(n.PM25 - n.PM1),
		From25To4:  clamp(n.PM4 - n.PM25),
		From4To10:  clamp(n.PM10 - n.PM4),
	}

	cumulative := CumulativeCounts{
		AtLeast03: clamp(n.PM10),
		AtLeast05: clamp(n.PM10 - n.PM05),
		AtLeast1:  clamp(n.PM10 - n.PM1),
		AtLeast4:  clamp(n.PM10 - n.PM4),
		AtLeast10: 0,
	}

	return &ConvertedReading{
		Number:     n,
		Bins:       bins,
		Cumulative: cumulative,
		Mass: MassConcentrations{
			PM1:  m.MassPM1,
			PM25: m.MassPM25,
			PM4:  m.MassPM4,
			PM10: m.MassPM10,
		},
		TypicalParticleSize: m.TypicalParticleSize,
	}
}

func clamp(v units.PerCubicFoot) units.PerCubicFoot {
	if v < 0 {
		return 0
	}
	return v
}
