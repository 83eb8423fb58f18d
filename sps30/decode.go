package sps30

import (
	"math"
	"particle-telemetry/units"

	"github.com/pkg/errors"
)

// MeasurementBlockLength is the size of one measured-values transfer: ten
// floats, each split into two checksum-protected words.
const MeasurementBlockLength = 60

// ErrChecksum is the cause of any decode failure due to a received word
// failing validation.
var ErrChecksum = errors.New("checksum mismatch")

// Measurement is one atomic measured-values read, in datasheet order.
// It is never partially valid; a checksum failure on any word fails the
// whole read.
type Measurement struct {
	// Mass concentrations by particle-size cutoff, µg/m³
	MassPM1  units.MicrogramsPerCubicMeter
	MassPM25 units.MicrogramsPerCubicMeter
	MassPM4  units.MicrogramsPerCubicMeter
	MassPM10 units.MicrogramsPerCubicMeter
	// Number concentrations by particle-size cutoff, #/cm³
	NumberPM05 units.PerCubicCentimeter
	NumberPM1  units.PerCubicCentimeter
	NumberPM25 units.PerCubicCentimeter
	NumberPM4  units.PerCubicCentimeter
	NumberPM10 units.PerCubicCentimeter
	// Typical particle size, µm
	TypicalParticleSize units.Micrometers
}

// DecodeMeasurement reinterprets a measured-values block as ten big-endian
// IEEE-754 floats. Each float spans 6 bytes laid out as
// [b0 b1 crc b2 b3 crc]; both checksums must verify or the whole decode
// fails.
func DecodeMeasurement(block []byte) (*Measurement, error) {
	if len(block) != MeasurementBlockLength {
		return nil, errors.Errorf("failed to decode measurement block of %d bytes (expected %d)", len(block), MeasurementBlockLength)
	}

	var values [10]float32
	for i := range values {
		group := block[i*6 : i*6+6]
		words := [2][3]byte{
			{group[0], group[1], group[2]},
			{group[3], group[4], group[5]},
		}
		for _, w := range words {
			if actual := WordChecksum(w[0], w[1]); actual != w[2] {
				return nil, errors.Wrapf(ErrChecksum, "failed to validate word %v of float %d (expected %v but got %v)", w[:2], i, w[2], actual)
			}
		}

		bits := uint32(group[0])<<24 | uint32(group[1])<<16 | uint32(group[3])<<8 | uint32(group[4])
		values[i] = math.Float32frombits(bits)
	}

	measurement := &Measurement{
		MassPM1:             units.MicrogramsPerCubicMeter(values[0]),
		MassPM25:            units.MicrogramsPerCubicMeter(values[1]),
		MassPM4:             units.MicrogramsPerCubicMeter(values[2]),
		MassPM10:            units.MicrogramsPerCubicMeter(values[3]),
		NumberPM05:          units.PerCubicCentimeter(values[4]),
		NumberPM1:           units.PerCubicCentimeter(values[5]),
		NumberPM25:          units.PerCubicCentimeter(values[6]),
		NumberPM4:           units.PerCubicCentimeter(values[7]),
		NumberPM10:          units.PerCubicCentimeter(values[8]),
		TypicalParticleSize: units.Micrometers(values[9]),
	}
	return measurement, nil
}
