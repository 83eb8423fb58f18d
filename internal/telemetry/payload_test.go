package telemetry

import (
	"testing"
	"time"

	"particle-telemetry/sps30"

	"github.com/stretchr/testify/assert"
)

func Test_NewDocument_rounds_raw_to_3_and_converted_to_2_decimals(t *testing.T) {
	// Arrange
	measurement := &sps30.Measurement{
		MassPM1:             1.23456,
		MassPM25:            2.34567,
		NumberPM05:          0.123456,
		TypicalParticleSize: 0.54321,
	}
	reading := Convert(measurement)

	// Act
	doc := NewDocument("room", "001", time.Unix(1700000000, 0), measurement, reading)

	// Assert
	assert.Equal(t, 1.235, doc.Raw.MassPM1)
	assert.Equal(t, 2.346, doc.Raw.MassPM25)
	assert.Equal(t, 0.123, doc.Raw.NumPM05)
	assert.Equal(t, 0.543, doc.Raw.TypicalParticleSizeUm)
	assert.Equal(t, round(float64(reading.Number.PM05), 2), doc.Converted.NumberConcentrationsFt3.PM05)
	assert.Equal(t, 1.23, doc.Converted.MassConcentrationsUgM3.PM1)
}

func Test_NewDocument_uses_local_epoch_seconds(t *testing.T) {
	// Arrange
	measurement := &sps30.Measurement{}
	local := time.Unix(1700000000, 0).Add(-7 * time.Hour)

	// Act
	doc := NewDocument("room", "001", local, measurement, Convert(measurement))

	// Assert
	assert.Equal(t, local.Unix(), doc.Timestamp)
}
